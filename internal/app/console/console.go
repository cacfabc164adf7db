// Package console собирает клиентскую оболочку Accountable: локальное хранилище,
// определение идентичности, роутер с охраной представлений и текстовый интерфейс.
package console

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/magabrotheeeer/accountable/internal/config"
	"github.com/magabrotheeeer/accountable/internal/grpc/client"
	"github.com/magabrotheeeer/accountable/internal/lib/sl"
	"github.com/magabrotheeeer/accountable/internal/router"
	"github.com/magabrotheeeer/accountable/internal/services/blog"
	"github.com/magabrotheeeer/accountable/internal/services/views"
	"github.com/magabrotheeeer/accountable/internal/session"
	"github.com/magabrotheeeer/accountable/internal/shell"
	"github.com/magabrotheeeer/accountable/internal/shell/api"
	"github.com/magabrotheeeer/accountable/internal/shell/store"
)

// App — клиентская оболочка.
type App struct {
	log      *slog.Logger
	store    *store.Store
	identity *client.IdentityClient
	api      *api.Client
	blog     *blog.Service
	resolver *session.Resolver
	shell    *shell.Shell
	backend  store.BackendConfig

	in    io.Reader
	outMu sync.Mutex
	out   io.Writer
}

// ResolveBackend выбирает реквизиты API: адрес из конфигурации важнее сохранённого локально.
// ok == false означает офлайн-режим.
func ResolveBackend(ctx context.Context, cfg config.Shell, st *store.Store) (store.BackendConfig, bool, error) {
	const op = "console.ResolveBackend"
	if cfg.APIURL != "" {
		return store.BackendConfig{URL: cfg.APIURL, Key: cfg.APIKey}, true, nil
	}
	saved, ok, err := st.LoadBackendConfig(ctx)
	if err != nil {
		return store.BackendConfig{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return saved, ok, nil
}

// New создаёт оболочку, читающую команды из in и пишущую ответы в out.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, in io.Reader, out io.Writer) (*App, error) {
	const op = "console.New"

	st, err := store.Open(ctx, cfg.Shell.StorePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	backend, online, err := ResolveBackend(ctx, cfg.Shell, st)
	if err != nil {
		logger.Warn("stored backend config is unreadable, starting offline", sl.Err(err))
	}

	app := &App{
		log:     logger,
		store:   st,
		blog:    blog.New(),
		backend: backend,
		in:      in,
		out:     out,
	}

	var (
		svc      session.IdentityService
		profiles session.ProfileSource
		verifier session.AdminVerifier
		tasks    shell.TaskSource
		stats    shell.StatsSource
	)
	if online {
		idClient, err := client.NewIdentityClient(cfg.GRPC.IdentityAddress, logger)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.identity = idClient
		app.api = api.NewClient(backend.URL, backend.Key)

		svc, profiles, verifier = idClient, app.api, app.api
		tasks, stats = app.api, app.api
		logger.Info("backend configured", slog.String("url", backend.URL))
	} else {
		logger.Info("backend is not configured, running in demo mode")
	}

	clock := clockwork.NewRealClock()
	app.resolver = session.NewResolver(logger, session.Options{
		Service:       svc,
		Profiles:      profiles,
		Admin:         verifier,
		Store:         st,
		AdminUser:     cfg.Shell.LocalAdminUser,
		AdminPassword: cfg.Shell.LocalAdminPassword,
		Clock:         clock,
	})
	app.shell = shell.New(logger, shell.Options{
		Router:       router.New(router.PathLanding),
		Identity:     app.resolver,
		Views:        views.New(app.blog),
		Tasks:        tasks,
		Stats:        stats,
		Clock:        clock,
		PollInterval: cfg.Shell.PollInterval,
		Offline:      !online,
		Notifier: shell.NotifierFunc(func(_ context.Context, n shell.Notice) {
			app.printf("! %s: %s\n", noticeText(n.Kind), n.Task.Title)
		}),
	})

	return app, nil
}

// Run запускает оболочку и обрабатывает команды до конца ввода, команды quit или отмены ctx.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.close()

	a.resolver.Bootstrap(ctx)

	unsubscribe := a.shell.Subscribe(func(st shell.State) {
		a.printf("[%s] %s as %s\n", st.View, st.Location.Pathname, describe(st.Identity))
	})
	defer unsubscribe()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := a.resolver.Watch(ctx); err != nil && ctx.Err() == nil {
			a.log.Error("session watch stopped", sl.Err(err))
		}
	}()
	go func() {
		defer wg.Done()
		_ = a.shell.Run(ctx)
	}()

	err := a.repl(ctx)
	cancel()
	wg.Wait()
	return err
}

func (a *App) close() {
	if a.identity != nil {
		if err := a.identity.Close(); err != nil {
			a.log.Error("failed to close identity client", sl.Err(err))
		}
	}
	if err := a.store.Close(); err != nil {
		a.log.Error("failed to close local store", sl.Err(err))
	}
}

func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	_, _ = fmt.Fprintf(a.out, format, args...)
}

func noticeText(k shell.NoticeKind) string {
	switch k {
	case shell.NoticeVerified:
		return "task verified"
	case shell.NoticeMissed:
		return "task missed"
	case shell.NoticeDueSoon:
		return "task starts soon"
	}
	return string(k)
}
