package accountable

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/accountable/internal/http/handlers/functions/publicconfig"
	"github.com/magabrotheeeer/accountable/internal/http/handlers/views/resolve"
	"github.com/magabrotheeeer/accountable/internal/http/middlewarectx"
	adminservice "github.com/magabrotheeeer/accountable/internal/services/admin"
	blogservice "github.com/magabrotheeeer/accountable/internal/services/blog"
	viewservice "github.com/magabrotheeeer/accountable/internal/services/views"
)

func newTestRouter() http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	blog := blogservice.New()
	r := chi.NewRouter()
	RegisterRoutes(r, logger, Services{
		Blog:         blog,
		Views:        viewservice.New(blog),
		Admin:        adminservice.New(nil, nil, nil, "root", "s3cret", logger),
		AdminLimiter: middlewarectx.NewClientLimiter(1, 1),
		PublicConfig: publicconfig.Config{URL: "http://localhost:8080", AnonKey: "anon"},
		APIKey:       "anon",
	})
	return r
}

func TestRoutes(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name       string
		method     string
		target     string
		apiKey     string
		wantStatus int
	}{
		{name: "health", method: http.MethodGet, target: "/health", wantStatus: http.StatusOK},
		{name: "public config needs no key", method: http.MethodGet, target: "/functions/v1/get-public-config", wantStatus: http.StatusOK},
		{name: "pricing with key", method: http.MethodGet, target: "/api/v1/pricing", apiKey: "anon", wantStatus: http.StatusOK},
		{name: "pricing without key", method: http.MethodGet, target: "/api/v1/pricing", wantStatus: http.StatusUnauthorized},
		{name: "blog post", method: http.MethodGet, target: "/api/v1/blog/1", apiKey: "anon", wantStatus: http.StatusOK},
		{name: "missing blog post", method: http.MethodGet, target: "/api/v1/blog/404", apiKey: "anon", wantStatus: http.StatusNotFound},
		{name: "profile requires token", method: http.MethodGet, target: "/api/v1/profile", apiKey: "anon", wantStatus: http.StatusUnauthorized},
		{name: "anonymous view resolution", method: http.MethodGet, target: "/api/v1/views/resolve?path=/pricing", apiKey: "anon", wantStatus: http.StatusOK},
		{name: "unknown route", method: http.MethodGet, target: "/nowhere", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.apiKey != "" {
				req.Header.Set(middlewarectx.APIKeyHeader, tt.apiKey)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRoutes_ViewResolveLimitsAdminGuesses(t *testing.T) {
	router := newTestRouter()

	call := func(user, password string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/views/resolve?path=/admin", nil)
		req.Header.Set(middlewarectx.APIKeyHeader, "anon")
		if user != "" {
			req.Header.Set(resolve.AdminUserHeader, user)
			req.Header.Set(resolve.AdminPasswordHeader, password)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	first := call("root", "guess-0")
	require.Equal(t, http.StatusOK, first.Code)
	assert.NotContains(t, first.Body.String(), `"view":"admin"`)

	limited := 0
	for i := 1; i < 20; i++ {
		if call("root", "guess").Code == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Equal(t, 19, limited)

	rec := call("root", "s3cret")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "correct pair is limited too once the budget is spent")
	assert.Equal(t, http.StatusOK, call("", "").Code, "anonymous resolution is not limited")
}
