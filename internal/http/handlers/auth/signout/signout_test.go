package signout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/accountable/internal/http/middlewarectx"
	"github.com/magabrotheeeer/accountable/internal/models"
)

type IdentityMock struct {
	mock.Mock
}

func (m *IdentityMock) SignOut(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func TestSignOutHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name       string
		withSess   bool
		mockErr    error
		wantStatus int
	}{
		{name: "success", withSess: true, wantStatus: http.StatusOK},
		{name: "no session", wantStatus: http.StatusUnauthorized},
		{name: "identity failure", withSess: true, mockErr: errors.New("down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(IdentityMock)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signout", nil)
			if tt.withSess {
				svc.On("SignOut", mock.Anything, "tok").Return(tt.mockErr).Once()
				req = req.WithContext(middlewarectx.WithSession(req.Context(), models.Session{Token: "tok", UserID: "u1"}))
			}
			rec := httptest.NewRecorder()

			New(logger, svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}
