package accountable

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/accountable/internal/cache"
	"github.com/magabrotheeeer/accountable/internal/config"
	"github.com/magabrotheeeer/accountable/internal/grpc/client"
	"github.com/magabrotheeeer/accountable/internal/http/handlers/functions/publicconfig"
	"github.com/magabrotheeeer/accountable/internal/http/middlewarectx"
	"github.com/magabrotheeeer/accountable/internal/lib/sl"
	"github.com/magabrotheeeer/accountable/internal/migrations"
	adminservice "github.com/magabrotheeeer/accountable/internal/services/admin"
	billingservice "github.com/magabrotheeeer/accountable/internal/services/billing"
	blogservice "github.com/magabrotheeeer/accountable/internal/services/blog"
	profileservice "github.com/magabrotheeeer/accountable/internal/services/profile"
	taskservice "github.com/magabrotheeeer/accountable/internal/services/tasks"
	viewservice "github.com/magabrotheeeer/accountable/internal/services/views"
	"github.com/magabrotheeeer/accountable/internal/storage/repository"
)

// App — HTTP API Accountable.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *repository.Storage
	cache    *cache.Cache
	identity *client.IdentityClient
}

// New подключает хранилища и identity-сервис и собирает HTTP-сервер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "accountable.New"

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	identityClient, err := client.NewIdentityClient(cfg.IdentityAddress, logger)
	if err != nil {
		_ = db.Close()
		_ = cacheRedis.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	blog := blogservice.New()
	services := Services{
		Identity: identityClient,
		Profiles: profileservice.New(db, logger),
		Tasks:    taskservice.New(db, logger),
		Billing:  billingservice.New(db, logger),
		Blog:     blog,
		Views:    viewservice.New(blog),
		Admin: adminservice.New(db, cacheRedis, identityClient,
			cfg.AdminUser, cfg.AdminPassword, logger),
		AdminLimiter: middlewarectx.NewClientLimiter(cfg.AdminRateLimit, cfg.AdminRateBurst),
		PublicConfig: publicconfig.Config{URL: cfg.PublicURL, AnonKey: cfg.AnonKey},
		APIKey:       cfg.AnonKey,
	}
	if !cfg.AdminSecretsConfigured() {
		logger.Warn("admin secrets are not configured, admin RPC accepts admin profiles only")
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, services)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		cache:    cacheRedis,
		identity: identityClient,
	}, nil
}

// Run обслуживает запросы до отмены ctx и затем плавно останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if err := a.identity.Close(); err != nil {
		a.logger.Error("failed to close identity client", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close cache", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
