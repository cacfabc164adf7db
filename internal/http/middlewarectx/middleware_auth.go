// Package middlewarectx содержит HTTP middleware API: проверку сессии по
// заголовку Authorization, проверку ключа apikey, ограничение частоты запросов
// и сбор метрик.
//
// Данные проверенной сессии кладутся в контекст запроса и читаются
// обработчиками через SessionFrom.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/accountable/internal/http/response"
	"github.com/magabrotheeeer/accountable/internal/lib/sl"
	"github.com/magabrotheeeer/accountable/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// SessionKey — ключ проверенной сессии в контексте.
	SessionKey Key = "session"
)

// Sessions проверяет токен сессии через identity-сервис.
type Sessions interface {
	GetSession(ctx context.Context, token string) (models.Session, error)
}

// SessionFrom возвращает проверенную сессию запроса.
func SessionFrom(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(SessionKey).(models.Session)
	return s, ok
}

// WithSession кладёт сессию в контекст.
func WithSession(ctx context.Context, s models.Session) context.Context {
	return context.WithValue(ctx, SessionKey, s)
}

// BearerToken извлекает токен из заголовка Authorization.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

// JWTMiddleware требует действующую сессию в заголовке Authorization.
// Иначе отвечает 401 Unauthorized.
func JWTMiddleware(sessions Sessions, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token, ok := BearerToken(r)
			if !ok {
				log.Info("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}

			sess, err := sessions.GetSession(r.Context(), token)
			if err != nil {
				log.Info("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// OptionalAuth кладёт сессию в контекст, если токен передан и действителен.
// Запрос без токена или с недействительным токеном обрабатывается анонимно.
func OptionalAuth(sessions Sessions, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			sess, err := sessions.GetSession(r.Context(), token)
			if err != nil {
				log.Debug("ignoring invalid token", sl.Err(err),
					slog.String("request_id", middleware.GetReqID(r.Context())))
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}
