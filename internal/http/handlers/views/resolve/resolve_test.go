package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/accountable/internal/http/middlewarectx"
	"github.com/magabrotheeeer/accountable/internal/metrics"
	"github.com/magabrotheeeer/accountable/internal/models"
	"github.com/magabrotheeeer/accountable/internal/router"
	"github.com/magabrotheeeer/accountable/internal/services/admin"
	"github.com/magabrotheeeer/accountable/internal/services/blog"
	"github.com/magabrotheeeer/accountable/internal/services/views"
)

type ProfilesMock struct {
	mock.Mock
}

func (m *ProfilesMock) Get(ctx context.Context, userID string) (models.Profile, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.Profile), args.Error(1)
}

type AdminsMock struct {
	mock.Mock
}

func (m *AdminsMock) Authorize(ctx context.Context, c admin.Credentials) error {
	return m.Called(ctx, c).Error(0)
}

func TestResolveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	resolver := views.New(blog.New())

	tests := []struct {
		name          string
		path          string
		session       *models.Session
		adminUser     string
		setupMocks    func(p *ProfilesMock, a *AdminsMock)
		wantView      router.View
		wantPath      string
		wantRedirects []string
		wantIdentity  string
	}{
		{
			name:          "anonymous dashboard goes to auth",
			path:          "/dashboard",
			setupMocks:    func(*ProfilesMock, *AdminsMock) {},
			wantView:      router.ViewAuth,
			wantPath:      "/auth",
			wantRedirects: []string{"/auth"},
			wantIdentity:  "anonymous",
		},
		{
			name:    "user dashboard renders",
			path:    "#/dashboard",
			session: &models.Session{UserID: "u1", Token: "tok"},
			setupMocks: func(p *ProfilesMock, _ *AdminsMock) {
				p.On("Get", mock.Anything, "u1").Return(models.Profile{ID: "u1", Tier: models.TierBasic}, nil).Once()
			},
			wantView:      router.ViewDashboard,
			wantPath:      "/dashboard",
			wantRedirects: []string{},
			wantIdentity:  "user",
		},
		{
			name:    "missing profile still counts as user",
			path:    "/admin",
			session: &models.Session{UserID: "u2", Email: "bo@example.com", Token: "tok"},
			setupMocks: func(p *ProfilesMock, _ *AdminsMock) {
				p.On("Get", mock.Anything, "u2").Return(models.Profile{}, models.ErrNotFound).Once()
			},
			wantView:      router.ViewDashboard,
			wantPath:      "/dashboard",
			wantRedirects: []string{"/dashboard"},
			wantIdentity:  "user",
		},
		{
			name:    "profile failure resolves as anonymous",
			path:    "/dashboard",
			session: &models.Session{UserID: "u3", Token: "tok"},
			setupMocks: func(p *ProfilesMock, _ *AdminsMock) {
				p.On("Get", mock.Anything, "u3").Return(models.Profile{}, errors.New("db down")).Once()
			},
			wantView:      router.ViewAuth,
			wantPath:      "/auth",
			wantRedirects: []string{"/auth"},
			wantIdentity:  "anonymous",
		},
		{
			name:      "admin pair opens admin",
			path:      "/auth",
			adminUser: "root",
			setupMocks: func(_ *ProfilesMock, a *AdminsMock) {
				a.On("Authorize", mock.Anything, admin.Credentials{Username: "root", Password: "pw"}).Return(nil).Once()
			},
			wantView:      router.ViewAdmin,
			wantPath:      "/admin",
			wantRedirects: []string{"/admin"},
			wantIdentity:  "admin",
		},
		{
			name:          "unknown blog post goes home",
			path:          "/blog/999",
			setupMocks:    func(*ProfilesMock, *AdminsMock) {},
			wantView:      router.ViewLanding,
			wantPath:      "/",
			wantRedirects: []string{"/"},
			wantIdentity:  "anonymous",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles := new(ProfilesMock)
			admins := new(AdminsMock)
			tt.setupMocks(profiles, admins)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/views/resolve", nil)
			q := req.URL.Query()
			q.Set("path", tt.path)
			req.URL.RawQuery = q.Encode()
			if tt.session != nil {
				req = req.WithContext(middlewarectx.WithSession(req.Context(), *tt.session))
			}
			if tt.adminUser != "" {
				req.Header.Set(AdminUserHeader, tt.adminUser)
				req.Header.Set(AdminPasswordHeader, "pw")
			}
			rec := httptest.NewRecorder()

			New(logger, resolver, profiles, admins).ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			var got struct {
				Data views.Result `json:"data"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantView, got.Data.View)
			assert.Equal(t, tt.wantPath, got.Data.Path)
			assert.Equal(t, tt.wantRedirects, got.Data.Redirects)
			assert.Equal(t, tt.wantIdentity, got.Data.Identity)
			profiles.AssertExpectations(t)
			admins.AssertExpectations(t)
		})
	}
}

func TestResolveHandler_RejectedAdminPairIsCounted(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	admins := new(AdminsMock)
	admins.On("Authorize", mock.Anything, admin.Credentials{Username: "root", Password: "wrong"}).
		Return(admin.ErrUnauthorized).Once()

	before := testutil.ToFloat64(metrics.AdminAuthFailures)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/views/resolve?path=/admin", nil)
	req.Header.Set(AdminUserHeader, "root")
	req.Header.Set(AdminPasswordHeader, "wrong")
	rec := httptest.NewRecorder()
	New(logger, views.New(blog.New()), new(ProfilesMock), admins).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Data views.Result `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "anonymous", got.Data.Identity)
	assert.NotEqual(t, router.ViewAdmin, got.Data.View)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.AdminAuthFailures))
	admins.AssertExpectations(t)
}

func TestHasAdminHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, HasAdminHeaders(req))
	req.Header.Set(AdminPasswordHeader, "x")
	assert.True(t, HasAdminHeaders(req))
}
