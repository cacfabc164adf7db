package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/go-playground/validator"
	"github.com/jonboulle/clockwork"

	"github.com/magabrotheeeer/accountable/internal/identity"
	"github.com/magabrotheeeer/accountable/internal/lib/password"
	"github.com/magabrotheeeer/accountable/internal/lib/sl"
	"github.com/magabrotheeeer/accountable/internal/models"
)

// Listener получает каждую новую идентичность.
type Listener func(identity.Identity)

// Options — зависимости Resolver. Service == nil означает офлайн-режим.
type Options struct {
	Service  IdentityService
	Profiles ProfileSource
	Admin    AdminVerifier
	Store    ArtifactStore
	// AdminUser/AdminPassword — секреты оператора для входа без обращения к API.
	AdminUser     string
	AdminPassword string
	Clock         clockwork.Clock
	// WatchRetry — пауза перед повторной подпиской на события сессии.
	WatchRetry time.Duration
}

// Resolver хранит текущую идентичность и пересчитывает её при изменении сессии.
//
// Каждое определение идентичности получает номер поколения. Результат
// применяется, только если после его запуска не началось более новое,
// поэтому устаревший ответ не перезаписывает свежее состояние.
type Resolver struct {
	log   *slog.Logger
	svc   IdentityService
	prof  ProfileSource
	admin AdminVerifier
	store ArtifactStore
	clock clockwork.Clock
	retry time.Duration

	validate *validator.Validate

	adminUser     string
	adminPassword string

	mu        sync.Mutex
	current   identity.Identity
	gen       uint64
	listeners map[int]Listener
	nextID    int

	wake chan struct{}
}

// NewResolver создаёт Resolver с анонимной идентичностью.
func NewResolver(log *slog.Logger, opts Options) *Resolver {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	retry := opts.WatchRetry
	if retry <= 0 {
		retry = 5 * time.Second
	}
	return &Resolver{
		log:           log,
		svc:           opts.Service,
		prof:          opts.Profiles,
		admin:         opts.Admin,
		store:         opts.Store,
		clock:         clock,
		retry:         retry,
		validate:      validator.New(),
		adminUser:     opts.AdminUser,
		adminPassword: opts.AdminPassword,
		current:       identity.NewAnonymous(),
		listeners:     make(map[int]Listener),
		wake:          make(chan struct{}, 1),
	}
}

// Online сообщает, настроен ли identity-сервис.
func (r *Resolver) Online() bool {
	return r.svc != nil
}

// Current возвращает текущую идентичность.
func (r *Resolver) Current() identity.Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// OnIdentityChange регистрирует подписчика. Повторная отписка ничего не делает.
func (r *Resolver) OnIdentityChange(l Listener) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = l
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.listeners, id)
			r.mu.Unlock()
		})
	}
}

// begin открывает новое поколение и делает все предыдущие устаревшими.
func (r *Resolver) begin() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	return r.gen
}

// commit применяет идентичность поколения gen, если оно всё ещё последнее,
// и возвращает идентичность, действующую после вызова.
func (r *Resolver) commit(gen uint64, id identity.Identity) identity.Identity {
	r.mu.Lock()
	if gen != r.gen {
		cur := r.current
		r.mu.Unlock()
		r.log.Debug("discarding stale identity", slog.Uint64("generation", gen))
		return cur
	}
	r.current = id
	ids := make([]int, 0, len(r.listeners))
	for lid := range r.listeners {
		ids = append(ids, lid)
	}
	r.mu.Unlock()

	slices.Sort(ids)
	for _, lid := range ids {
		r.mu.Lock()
		l, ok := r.listeners[lid]
		r.mu.Unlock()
		if ok {
			l(id)
		}
	}
	return id
}

func (r *Resolver) signalWatch() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Bootstrap определяет идентичность при старте.
func (r *Resolver) Bootstrap(ctx context.Context) identity.Identity {
	gen := r.begin()
	return r.commit(gen, r.resolve(ctx))
}

// Refresh пересчитывает идентичность, например после изменения профиля.
// Вход администратора сохраняется до SignOut.
func (r *Resolver) Refresh(ctx context.Context) identity.Identity {
	if cur := r.Current(); cur.IsAdminSession() {
		return cur
	}
	gen := r.begin()
	return r.commit(gen, r.resolve(ctx))
}

func (r *Resolver) resolve(ctx context.Context) identity.Identity {
	const op = "session.resolve"
	log := r.log.With(sl.Op(op))

	if !r.Online() {
		return r.resolveMock(ctx)
	}

	token, ok, err := r.store.Get(ctx, KeySessionToken)
	if err != nil {
		log.Error("failed to read session token", sl.Err(err))
		return identity.NewAnonymous()
	}
	if !ok || token == "" {
		return identity.NewAnonymous()
	}

	sess, err := r.svc.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			r.forgetToken(ctx)
		} else {
			log.Warn("identity service unavailable, falling back to anonymous", sl.Err(err))
		}
		return identity.NewAnonymous()
	}

	id, err := r.profileIdentity(ctx, sess)
	if err != nil {
		log.Warn("failed to fetch profile, falling back to anonymous", sl.Err(err))
		return identity.NewAnonymous()
	}
	return id
}

// profileIdentity строит идентичность по профилю владельца сессии.
// Отсутствующий профиль заменяется профилем по умолчанию.
func (r *Resolver) profileIdentity(ctx context.Context, sess models.Session) (identity.Identity, error) {
	const op = "session.profileIdentity"
	p, err := r.prof.Profile(ctx, sess.Token)
	switch {
	case errors.Is(err, models.ErrNotFound):
		r.log.Info("profile missing, using default", slog.String("user_id", sess.UserID))
		p = models.DefaultProfile(sess.UserID, sess.Email, r.clock.Now())
	case err != nil:
		return identity.Identity{}, fmt.Errorf("%s: %w", op, err)
	}
	return identity.FromProfile(p, sess.Token), nil
}

func (r *Resolver) resolveMock(ctx context.Context) identity.Identity {
	if r.store == nil {
		return identity.NewAnonymous()
	}
	raw, ok, err := r.store.Get(ctx, KeyMockUser)
	if err != nil {
		r.log.Error("failed to read demo session", sl.Err(err))
		return identity.NewAnonymous()
	}
	if !ok {
		return identity.NewAnonymous()
	}
	var p models.Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		r.log.Warn("corrupted demo session, ignoring", sl.Err(err))
		return identity.NewAnonymous()
	}
	return identity.FromProfile(p, "")
}

func (r *Resolver) forgetToken(ctx context.Context) {
	if err := r.store.Delete(ctx, KeySessionToken); err != nil {
		r.log.Error("failed to forget session token", sl.Err(err))
	}
}

// SignIn входит по email и паролю. В офлайн-режиме создаёт демо-сессию.
func (r *Resolver) SignIn(ctx context.Context, email, pass string) (identity.Identity, error) {
	return r.authenticate(ctx, "session.SignIn", email, pass, r.signIn)
}

// SignUp регистрирует пользователя и входит. В офлайн-режиме создаёт демо-сессию.
func (r *Resolver) SignUp(ctx context.Context, email, pass string) (identity.Identity, error) {
	return r.authenticate(ctx, "session.SignUp", email, pass, r.signUp)
}

func (r *Resolver) signIn(ctx context.Context, email, pass string) (models.Session, error) {
	return r.svc.SignIn(ctx, email, pass)
}

func (r *Resolver) signUp(ctx context.Context, email, pass string) (models.Session, error) {
	return r.svc.SignUp(ctx, email, pass)
}

func (r *Resolver) authenticate(
	ctx context.Context,
	op, email, pass string,
	call func(context.Context, string, string) (models.Session, error),
) (identity.Identity, error) {
	gen := r.begin()

	if !r.Online() {
		id, err := r.mockSignIn(ctx, email)
		if err != nil {
			return r.Current(), fmt.Errorf("%s: %w", op, err)
		}
		return r.commit(gen, id), nil
	}

	sess, err := call(ctx, email, pass)
	if err != nil {
		return r.Current(), fmt.Errorf("%s: %w", op, err)
	}
	if err := r.store.Set(ctx, KeySessionToken, sess.Token); err != nil {
		r.log.Error("failed to remember session token", sl.Op(op), sl.Err(err))
	}
	r.signalWatch()

	id, err := r.profileIdentity(ctx, sess)
	if err != nil {
		r.log.Warn("signed in but profile unavailable", sl.Op(op), sl.Err(err))
		id = identity.FromProfile(models.DefaultProfile(sess.UserID, sess.Email, r.clock.Now()), sess.Token)
	}
	return r.commit(gen, id), nil
}

func (r *Resolver) mockSignIn(ctx context.Context, email string) (identity.Identity, error) {
	p := mockUser(email, r.clock.Now())
	raw, err := json.Marshal(p)
	if err != nil {
		return identity.Identity{}, err
	}
	if r.store != nil {
		if err := r.store.Set(ctx, KeyMockUser, string(raw)); err != nil {
			return identity.Identity{}, err
		}
	}
	return identity.FromProfile(p, ""), nil
}

// SignOut завершает сессию и сбрасывает вход администратора.
// Ошибка identity-сервиса логируется, локальное состояние очищается в любом случае.
func (r *Resolver) SignOut(ctx context.Context) identity.Identity {
	const op = "session.SignOut"
	log := r.log.With(sl.Op(op))
	gen := r.begin()

	if r.Online() {
		token, ok, err := r.store.Get(ctx, KeySessionToken)
		if err != nil {
			log.Error("failed to read session token", sl.Err(err))
		}
		if ok && token != "" {
			if err := r.svc.SignOut(ctx, token); err != nil {
				log.Warn("failed to revoke session", sl.Err(err))
			}
		}
		r.forgetToken(ctx)
		r.signalWatch()
	} else if r.store != nil {
		if err := r.store.Delete(ctx, KeyMockUser); err != nil {
			log.Error("failed to clear demo session", sl.Err(err))
		}
	}

	return r.commit(gen, identity.NewAnonymous())
}

// ElevateToAdmin входит в админ-панель.
//
// Порядок проверок: секреты оператора, admin RPC по паре логин/пароль,
// вход обычным пользователем с флагом администратора в профиле.
// Любая неудача возвращает ErrUnauthorized.
func (r *Resolver) ElevateToAdmin(ctx context.Context, creds Credentials) (identity.Identity, error) {
	const op = "session.ElevateToAdmin"
	log := r.log.With(sl.Op(op))
	gen := r.begin()

	if password.SecretsEqual(creds.Username, creds.Password, r.adminUser, r.adminPassword) {
		return r.commit(gen, identity.NewAdmin(identity.AdminSession{
			Username: creds.Username,
			Password: creds.Password,
		})), nil
	}

	if !r.Online() {
		return r.Current(), fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}

	if r.admin != nil {
		err := r.admin.VerifyAdmin(ctx, creds.Username, creds.Password)
		if err == nil {
			return r.commit(gen, identity.NewAdmin(identity.AdminSession{
				Username: creds.Username,
				Password: creds.Password,
			})), nil
		}
		if !errors.Is(err, ErrUnauthorized) {
			log.Warn("admin verification failed", sl.Err(err))
		}
	}

	if err := r.validate.Var(creds.Username, "required,email"); err != nil {
		return r.Current(), fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}

	sess, err := r.svc.SignIn(ctx, creds.Username, creds.Password)
	if err != nil {
		log.Info("admin sign-in rejected", sl.Err(err))
		return r.Current(), fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}
	p, err := r.prof.Profile(ctx, sess.Token)
	if err != nil || !p.IsAdmin {
		if err != nil {
			log.Warn("failed to fetch admin profile", sl.Err(err))
		}
		if signOutErr := r.svc.SignOut(ctx, sess.Token); signOutErr != nil {
			log.Warn("failed to revoke rejected admin session", sl.Err(signOutErr))
		}
		return r.Current(), fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}

	return r.commit(gen, identity.NewAdmin(identity.AdminSession{Token: sess.Token})), nil
}

// Watch следит за событиями сессии и пересчитывает идентичность на каждое событие.
// Блокируется до отмены ctx. В офлайн-режиме сразу возвращает nil.
func (r *Resolver) Watch(ctx context.Context) error {
	const op = "session.Watch"
	if !r.Online() {
		return nil
	}
	log := r.log.With(sl.Op(op))

	for {
		select {
		case <-r.wake:
		default:
		}
		token, ok, err := r.store.Get(ctx, KeySessionToken)
		if err != nil {
			log.Error("failed to read session token", sl.Err(err))
		}
		if err != nil || !ok || token == "" {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-r.wake:
				continue
			}
		}

		streamCtx, cancel := context.WithCancel(ctx)
		events, err := r.svc.WatchSession(streamCtx, token)
		if err != nil {
			cancel()
			log.Warn("failed to subscribe to session events", sl.Err(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-r.wake:
			case <-r.clock.After(r.retry):
			}
			continue
		}

		closed, err := r.drain(ctx, events)
		cancel()
		if err != nil {
			return err
		}
		if closed {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-r.wake:
			case <-r.clock.After(r.retry):
			}
		}
	}
}

// drain обрабатывает поток событий до его закрытия или смены токена.
// closed == true, если сервер закрыл поток сам.
func (r *Resolver) drain(ctx context.Context, events <-chan models.SessionEvent) (closed bool, err error) {
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-r.wake:
			return false, nil
		case ev, ok := <-events:
			if !ok {
				return true, nil
			}
			r.log.Debug("session event", slog.String("kind", string(ev.Kind)), slog.String("user_id", ev.UserID))
			r.Refresh(ctx)
			if ev.Kind == models.SessionSignedOut {
				return false, nil
			}
		}
	}
}
