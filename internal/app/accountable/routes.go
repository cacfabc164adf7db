// Package accountable собирает HTTP API Accountable: маршруты, middleware и зависимости.
package accountable

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/magabrotheeeer/accountable/docs" // регистрация описания API для /docs
	"github.com/magabrotheeeer/accountable/internal/grpc/client"
	"github.com/magabrotheeeer/accountable/internal/http/handlers/auth/current"
	"github.com/magabrotheeeer/accountable/internal/http/handlers/auth/signin"
	"github.com/magabrotheeeer/accountable/internal/http/handlers/auth/signout"
	"github.com/magabrotheeeer/accountable/internal/http/handlers/auth/signup"
	"github.com/magabrotheeeer/accountable/internal/http/handlers/billing/subscribe"
	"github.com/magabrotheeeer/accountable/internal/http/handlers/billing/topup"
	bloglist "github.com/magabrotheeeer/accountable/internal/http/handlers/blog/list"
	blogread "github.com/magabrotheeeer/accountable/internal/http/handlers/blog/read"
	"github.com/magabrotheeeer/accountable/internal/http/handlers/functions/adminstats"
	"github.com/magabrotheeeer/accountable/internal/http/handlers/functions/publicconfig"
	"github.com/magabrotheeeer/accountable/internal/http/handlers/health"
	"github.com/magabrotheeeer/accountable/internal/http/handlers/pricing"
	profileread "github.com/magabrotheeeer/accountable/internal/http/handlers/profile/read"
	profileupdate "github.com/magabrotheeeer/accountable/internal/http/handlers/profile/update"
	taskcreate "github.com/magabrotheeeer/accountable/internal/http/handlers/tasks/create"
	tasklist "github.com/magabrotheeeer/accountable/internal/http/handlers/tasks/list"
	"github.com/magabrotheeeer/accountable/internal/http/handlers/views/resolve"
	"github.com/magabrotheeeer/accountable/internal/http/middlewarectx"
	adminservice "github.com/magabrotheeeer/accountable/internal/services/admin"
	billingservice "github.com/magabrotheeeer/accountable/internal/services/billing"
	blogservice "github.com/magabrotheeeer/accountable/internal/services/blog"
	profileservice "github.com/magabrotheeeer/accountable/internal/services/profile"
	taskservice "github.com/magabrotheeeer/accountable/internal/services/tasks"
	viewservice "github.com/magabrotheeeer/accountable/internal/services/views"
)

// Services — зависимости обработчиков.
type Services struct {
	Identity     *client.IdentityClient
	Profiles     *profileservice.Service
	Tasks        *taskservice.Service
	Billing      *billingservice.Service
	Blog         *blogservice.Service
	Views        *viewservice.Service
	Admin        *adminservice.Service
	AdminLimiter *middlewarectx.ClientLimiter
	PublicConfig publicconfig.Config
	APIKey       string
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.Metrics,
	)

	r.Get("/health", health.New(logger).ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.APIKeyMiddleware(s.APIKey, logger))

		// Открытые конечные точки
		r.Post("/auth/signup", signup.New(logger, s.Identity).ServeHTTP)
		r.Post("/auth/signin", signin.New(logger, s.Identity).ServeHTTP)
		r.Get("/pricing", pricing.New(logger).ServeHTTP)
		r.Get("/blog", bloglist.New(logger, s.Blog).ServeHTTP)
		r.Get("/blog/{id}", blogread.New(logger, s.Blog).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitIf(s.AdminLimiter, logger, resolve.HasAdminHeaders))
			r.Use(middlewarectx.OptionalAuth(s.Identity, logger))
			r.Get("/views/resolve", resolve.New(logger, s.Views, s.Profiles, s.Admin).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Identity, logger))
			r.Post("/auth/signout", signout.New(logger, s.Identity).ServeHTTP)
			r.Get("/auth/session", current.New(logger).ServeHTTP)
			r.Get("/profile", profileread.New(logger, s.Profiles).ServeHTTP)
			r.Patch("/profile", profileupdate.New(logger, s.Profiles).ServeHTTP)
			r.Get("/tasks", tasklist.New(logger, s.Tasks).ServeHTTP)
			r.Post("/tasks", taskcreate.New(logger, s.Tasks).ServeHTTP)
			r.Post("/billing/subscribe", subscribe.New(logger, s.Billing).ServeHTTP)
			r.Post("/billing/topup", topup.New(logger, s.Billing).ServeHTTP)
		})
	})

	r.Route("/functions/v1", func(r chi.Router) {
		r.Get("/get-public-config", publicconfig.New(logger, s.PublicConfig).ServeHTTP)
		r.With(middlewarectx.RateLimitMiddleware(s.AdminLimiter, logger)).
			Post("/get-admin-stats", adminstats.New(logger, s.Admin).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
