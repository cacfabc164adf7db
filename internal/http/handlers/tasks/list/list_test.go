package list

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/accountable/internal/http/middlewarectx"
	"github.com/magabrotheeeer/accountable/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, userID string) ([]models.Task, error) {
	args := m.Called(ctx, userID)
	res, _ := args.Get(0).([]models.Task)
	return res, args.Error(1)
}

func TestListHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	t.Run("empty list is an array", func(t *testing.T) {
		svc := new(MockService)
		svc.On("List", mock.Anything, "u1").Return([]models.Task{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
		req = req.WithContext(middlewarectx.WithSession(req.Context(), models.Session{UserID: "u1"}))
		rec := httptest.NewRecorder()
		New(logger, svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var got map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.JSONEq(t, `"OK"`, string(got["status"]))
	})

	t.Run("service error", func(t *testing.T) {
		svc := new(MockService)
		svc.On("List", mock.Anything, "u1").Return(nil, errors.New("db down")).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
		req = req.WithContext(middlewarectx.WithSession(req.Context(), models.Session{UserID: "u1"}))
		rec := httptest.NewRecorder()
		New(logger, svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		svc.AssertExpectations(t)
	})
}
