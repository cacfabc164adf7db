package read

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/accountable/internal/models"
	"github.com/magabrotheeeer/accountable/internal/services/blog"
)

func TestReadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	svc := blog.NewWithPosts([]models.BlogPost{
		{ID: 7, Title: "Habits", Content: "# Habits\n\nStart **small**."},
	})

	tests := []struct {
		name       string
		id         string
		wantStatus int
	}{
		{name: "existing", id: "7", wantStatus: http.StatusOK},
		{name: "missing", id: "8", wantStatus: http.StatusNotFound},
		{name: "not a number", id: "abc", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/blog/"+tt.id, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			rec := httptest.NewRecorder()

			New(logger, svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var got struct {
				Data models.BlogPost `json:"data"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, "Habits", got.Data.Title)
			assert.Contains(t, got.Data.HTML, "<strong>small</strong>")
			assert.Empty(t, got.Data.Content)
		})
	}
}
