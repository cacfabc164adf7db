package middlewarectx

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/accountable/internal/http/response"
)

// APIKeyHeader — заголовок с публичным ключом API.
const APIKeyHeader = "apikey"

// APIKeyMiddleware требует заголовок apikey, равный key. Пустой key отключает проверку.
func APIKeyMiddleware(key string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(APIKeyHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				log.Info("rejected request with invalid api key", slog.String("path", r.URL.Path))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid api key"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
