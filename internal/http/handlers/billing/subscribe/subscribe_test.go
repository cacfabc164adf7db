package subscribe

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/accountable/internal/http/middlewarectx"
	"github.com/magabrotheeeer/accountable/internal/models"
	"github.com/magabrotheeeer/accountable/internal/services/billing"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Subscribe(ctx context.Context, userID string, tier models.Tier) (billing.Receipt, error) {
	args := m.Called(ctx, userID, tier)
	return args.Get(0).(billing.Receipt), args.Error(1)
}

func TestSubscribeHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name       string
		body       string
		setupMock  func(m *MockService)
		wantStatus int
	}{
		{
			name: "pro",
			body: `{"tier":"PRO"}`,
			setupMock: func(m *MockService) {
				m.On("Subscribe", mock.Anything, "u1", models.TierPro).
					Return(billing.Receipt{AmountCents: 4000}, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{name: "free tier is not sold", body: `{"tier":"NONE"}`, setupMock: func(*MockService) {}, wantStatus: http.StatusUnprocessableEntity},
		{name: "empty", body: `{}`, setupMock: func(*MockService) {}, wantStatus: http.StatusUnprocessableEntity},
		{
			name: "profile missing",
			body: `{"tier":"BASIC"}`,
			setupMock: func(m *MockService) {
				m.On("Subscribe", mock.Anything, "u1", models.TierBasic).
					Return(billing.Receipt{}, models.ErrNotFound).Once()
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/subscribe", bytes.NewBufferString(tt.body))
			req = req.WithContext(middlewarectx.WithSession(req.Context(), models.Session{UserID: "u1"}))
			rec := httptest.NewRecorder()

			New(logger, svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}
