// Package identity собирает gRPC identity-сервис: учётные записи, сессии и события сессий.
package identity

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"

	"github.com/magabrotheeeer/accountable/internal/cache"
	"github.com/magabrotheeeer/accountable/internal/config"
	"github.com/magabrotheeeer/accountable/internal/grpc/identitypb"
	"github.com/magabrotheeeer/accountable/internal/grpc/server"
	"github.com/magabrotheeeer/accountable/internal/lib/jwt"
	"github.com/magabrotheeeer/accountable/internal/lib/sl"
	"github.com/magabrotheeeer/accountable/internal/migrations"
	identityservice "github.com/magabrotheeeer/accountable/internal/services/identity"
	"github.com/magabrotheeeer/accountable/internal/storage/repository"
)

type App struct {
	grpcServer *grpc.Server
	listener   net.Listener
	logger     *slog.Logger
	db         *repository.Storage
	cache      *cache.Cache
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "identity.New"

	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("%s: jwt secret key is not set", op)
	}

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

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	identityService := identityservice.New(logger, db, db, cacheRedis, jwtMaker)

	lis, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		_ = db.Close()
		_ = cacheRedis.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	grpcServer := grpc.NewServer()
	identitypb.RegisterIdentityServer(grpcServer, server.NewIdentityServer(identityService, logger))

	return &App{
		grpcServer: grpcServer,
		listener:   lis,
		logger:     logger,
		db:         db,
		cache:      cacheRedis,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("identity gRPC service listening on", slog.String("address", a.listener.Addr().String()))
		errCh <- a.grpcServer.Serve(a.listener)
	}()

	var err error
	select {
	case <-ctx.Done():
		a.logger.Info("shutting down identity service gracefully")
		a.grpcServer.GracefulStop()
	case err = <-errCh:
	}

	if cerr := a.cache.Close(); cerr != nil {
		a.logger.Error("failed to close cache", sl.Err(cerr))
	}
	if cerr := a.db.Close(); cerr != nil {
		a.logger.Error("failed to close database", sl.Err(cerr))
	}
	return err
}
