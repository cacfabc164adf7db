// Package shell связывает роутер, определение идентичности и охрану представлений.
//
// Все изменения состояния проходят через одну очередь событий, которую
// обрабатывает одна горутина, поэтому итоговое состояние не зависит от того,
// в каком порядке пришли ответы сервисов.
package shell

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/magabrotheeeer/accountable/internal/identity"
	"github.com/magabrotheeeer/accountable/internal/lib/sl"
	"github.com/magabrotheeeer/accountable/internal/router"
	"github.com/magabrotheeeer/accountable/internal/services/views"
	"github.com/magabrotheeeer/accountable/internal/session"
)

// State — то, что видит пользователь после обработки события.
type State struct {
	Location router.Location
	View     router.View
	Identity identity.Identity
}

// IdentitySource — источник текущей идентичности.
type IdentitySource interface {
	Current() identity.Identity
	OnIdentityChange(l session.Listener) (unsubscribe func())
}

// ViewResolver разрешает адрес в показываемое представление.
type ViewResolver interface {
	Resolve(path string, id identity.Identity) views.Result
}

// Options — зависимости Shell.
type Options struct {
	Router   *router.Router
	Identity IdentitySource
	Views    ViewResolver
	// Tasks и Stats могут быть nil, тогда используются демо-данные.
	Tasks    TaskSource
	Stats    StatsSource
	Notifier Notifier
	Clock    clockwork.Clock
	// PollInterval — период обновления данных открытого представления.
	PollInterval time.Duration
	// DueSoon — за сколько до начала задачи присылать напоминание.
	DueSoon time.Duration
	// Offline включает демо-данные при недоступных сервисах.
	Offline bool
}

type eventKind int

const (
	eventNavigate eventKind = iota
	eventIdentity
	eventBarrier
)

type event struct {
	kind eventKind
	path string
	id   identity.Identity
	done chan struct{}
}

// Shell владеет очередью событий и текущим состоянием оболочки.
type Shell struct {
	log      *slog.Logger
	router   *router.Router
	idSource IdentitySource
	views    ViewResolver
	clock    clockwork.Clock
	interval time.Duration

	dashboard *dashboardLoader
	admin     *adminLoader

	qmu    sync.Mutex
	queue  []event
	notify chan struct{}

	mu        sync.Mutex
	state     State
	listeners map[int]func(State)
	nextID    int

	// поля ниже читает и пишет только горутина Run
	id     identity.Identity
	active *activeView
}

// activeView — представление с запущенным опросом.
type activeView struct {
	view  router.View
	id    identity.Identity
	stop  func()
	owner viewLoader
}

// New создаёт Shell. Обработка событий начинается после вызова Run.
func New(log *slog.Logger, opts Options) *Shell {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	dueSoon := opts.DueSoon
	if dueSoon <= 0 {
		dueSoon = 15 * time.Minute
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = LogNotifier(log)
	}

	id := opts.Identity.Current()
	return &Shell{
		log:       log,
		router:    opts.Router,
		idSource:  opts.Identity,
		views:     opts.Views,
		clock:     clock,
		interval:  interval,
		dashboard: newDashboardLoader(log, opts.Tasks, notifier, clock, dueSoon, opts.Offline),
		admin:     newAdminLoader(log, opts.Stats, clock, opts.Offline),
		notify:    make(chan struct{}, 1),
		state: State{
			Location: opts.Router.Current(),
			View:     router.ViewLanding,
			Identity: id,
		},
		listeners: make(map[int]func(State)),
		id:        id,
	}
}

// Run обрабатывает события до отмены ctx. Первым событием разрешается текущий адрес роутера.
func (s *Shell) Run(ctx context.Context) error {
	unsubscribe := s.idSource.OnIdentityChange(func(id identity.Identity) {
		s.enqueue(event{kind: eventIdentity, id: id})
	})
	defer unsubscribe()
	defer s.leaveView()

	s.id = s.idSource.Current()
	s.apply(ctx, s.router.Current().Pathname)

	for {
		for {
			ev, ok := s.dequeue()
			if !ok {
				break
			}
			s.handle(ctx, ev)
		}
		select {
		case <-ctx.Done():
			s.releaseBarriers()
			return ctx.Err()
		case <-s.notify:
		}
	}
}

// Navigate ставит переход по адресу в очередь.
func (s *Shell) Navigate(path string) {
	s.enqueue(event{kind: eventNavigate, path: path})
}

// Sync ждёт, пока будут обработаны все события, поставленные в очередь до вызова.
func (s *Shell) Sync(ctx context.Context) error {
	done := make(chan struct{})
	s.enqueue(event{kind: eventBarrier, done: done})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State возвращает последнее опубликованное состояние.
func (s *Shell) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe регистрирует подписчика состояний. Подписчики вызываются из горутины Run.
func (s *Shell) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Dashboard возвращает данные панели задач.
func (s *Shell) Dashboard() DashboardData {
	return s.dashboard.snapshot()
}

// AdminStats возвращает данные админ-панели.
func (s *Shell) AdminStats() AdminData {
	return s.admin.snapshot()
}

func (s *Shell) enqueue(ev event) {
	s.qmu.Lock()
	s.queue = append(s.queue, ev)
	s.qmu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Shell) dequeue() (event, bool) {
	s.qmu.Lock()
	defer s.qmu.Unlock()
	if len(s.queue) == 0 {
		return event{}, false
	}
	ev := s.queue[0]
	s.queue[0] = event{}
	s.queue = s.queue[1:]
	return ev, true
}

// releaseBarriers отпускает ожидающих Sync при остановке.
func (s *Shell) releaseBarriers() {
	for {
		ev, ok := s.dequeue()
		if !ok {
			return
		}
		if ev.kind == eventBarrier {
			close(ev.done)
		}
	}
}

func (s *Shell) handle(ctx context.Context, ev event) {
	switch ev.kind {
	case eventNavigate:
		s.apply(ctx, ev.path)
	case eventIdentity:
		s.id = ev.id
		s.apply(ctx, s.router.Current().Pathname)
	case eventBarrier:
		close(ev.done)
	}
}

// apply разрешает адрес для текущей идентичности, переводит роутер на итоговый
// адрес и публикует новое состояние.
func (s *Shell) apply(ctx context.Context, path string) {
	res := s.views.Resolve(path, s.id)
	if len(res.Redirects) > 0 {
		s.log.Debug("view redirected",
			slog.String("requested", res.Requested),
			slog.String("path", res.Path),
			slog.Int("hops", len(res.Redirects)),
		)
	}
	s.router.NavigateWithParams(res.Path, res.Params)
	s.enterView(ctx, res.View)

	st := State{Location: s.router.Current(), View: res.View, Identity: s.id}
	s.publish(st)
}

func (s *Shell) publish(st State) {
	s.mu.Lock()
	s.state = st
	listeners := make([]func(State), 0, len(s.listeners))
	for i := 0; i < s.nextID; i++ {
		if l, ok := s.listeners[i]; ok {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(st.clone())
	}
}

func (st State) clone() State {
	st.Location = st.Location.Clone()
	return st
}

// enterView запускает опрос данных для представлений, которым он нужен,
// и останавливает опрос покинутого представления.
func (s *Shell) enterView(ctx context.Context, view router.View) {
	if s.active != nil && s.active.view == view && s.active.id.Equal(s.id) {
		return
	}
	s.leaveView()

	var loader viewLoader
	switch view {
	case router.ViewDashboard:
		loader = s.dashboard
	case router.ViewAdmin:
		loader = s.admin
	default:
		return
	}

	if err := loader.start(ctx, s.id); err != nil {
		s.log.Warn("failed to load view data", slog.String("view", string(view)), sl.Err(err))
	}
	stop := startPolling(ctx, s.clock, s.interval, loader, s.id)
	s.active = &activeView{view: view, id: s.id, stop: stop, owner: loader}
}

func (s *Shell) leaveView() {
	if s.active == nil {
		return
	}
	s.active.stop()
	s.active.owner.reset()
	s.active = nil
}
