package publicconfig

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicConfigHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	rec := httptest.NewRecorder()
	New(logger, Config{URL: "https://api.example.com", AnonKey: "anon"}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/functions/v1/get-public-config", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"url":"https://api.example.com","anonKey":"anon"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	New(logger, Config{}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/functions/v1/get-public-config", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
