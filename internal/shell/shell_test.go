package shell

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/accountable/internal/identity"
	"github.com/magabrotheeeer/accountable/internal/models"
	"github.com/magabrotheeeer/accountable/internal/router"
	"github.com/magabrotheeeer/accountable/internal/services/blog"
	"github.com/magabrotheeeer/accountable/internal/services/views"
	"github.com/magabrotheeeer/accountable/internal/session"
)

type fakeIdentity struct {
	mu        sync.Mutex
	current   identity.Identity
	listeners []session.Listener
}

func (f *fakeIdentity) Current() identity.Identity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *fakeIdentity) OnIdentityChange(l session.Listener) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, l)
	return func() {}
}

func (f *fakeIdentity) set(id identity.Identity) {
	f.mu.Lock()
	f.current = id
	ls := append([]session.Listener(nil), f.listeners...)
	f.mu.Unlock()
	for _, l := range ls {
		l(id)
	}
}

type fakeTasks struct {
	mu    sync.Mutex
	tasks []models.Task
	err   error
	calls int
}

func (f *fakeTasks) Tasks(_ context.Context, _ string) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Task(nil), f.tasks...), nil
}

func (f *fakeTasks) setTasks(t []models.Task) {
	f.mu.Lock()
	f.tasks = t
	f.mu.Unlock()
}

func (f *fakeTasks) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeStats struct {
	stats models.AdminStats
	err   error
	got   identity.AdminSession
}

func (f *fakeStats) AdminStats(_ context.Context, a identity.AdminSession) (models.AdminStats, error) {
	f.got = a
	return f.stats, f.err
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

var testUser = identity.FromProfile(models.Profile{ID: "u1", Email: "ann@example.com", Tier: models.TierBasic}, "tok")

func startShell(t *testing.T, opts Options) *Shell {
	t.Helper()
	if opts.Router == nil {
		opts.Router = router.New("/")
	}
	if opts.Views == nil {
		opts.Views = views.New(blog.New())
	}
	s := New(newNoopLogger(), opts)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	syncShell(t, s)
	return s
}

func syncShell(t *testing.T, s *Shell) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Sync(ctx))
}

func TestShell_Navigate(t *testing.T) {
	tests := []struct {
		name     string
		id       identity.Identity
		path     string
		wantPath string
		wantView router.View
	}{
		{name: "public page", id: identity.NewAnonymous(), path: "#/pricing", wantPath: "/pricing", wantView: router.ViewPricing},
		{name: "anonymous dashboard", id: identity.NewAnonymous(), path: "/dashboard", wantPath: "/auth", wantView: router.ViewAuth},
		{name: "user on auth", id: testUser, path: "/auth", wantPath: "/dashboard", wantView: router.ViewDashboard},
		{name: "existing post", id: identity.NewAnonymous(), path: "/blog/2", wantPath: "/blog/2", wantView: router.ViewBlog},
		{name: "missing post", id: identity.NewAnonymous(), path: "/blog/99", wantPath: "/", wantView: router.ViewLanding},
		{name: "unknown path", id: testUser, path: "/nowhere", wantPath: "/", wantView: router.ViewLanding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := router.New("/")
			s := startShell(t, Options{
				Router:   r,
				Identity: &fakeIdentity{current: tt.id},
				Tasks:    &fakeTasks{},
			})

			s.Navigate(tt.path)
			syncShell(t, s)

			st := s.State()
			assert.Equal(t, tt.wantPath, st.Location.Pathname)
			assert.Equal(t, tt.wantView, st.View)
			assert.Equal(t, tt.wantPath, r.Current().Pathname)
		})
	}
}

func TestShell_StateIsACopy(t *testing.T) {
	s := startShell(t, Options{
		Router:   router.New("/"),
		Identity: &fakeIdentity{current: identity.NewAnonymous()},
		Tasks:    &fakeTasks{},
	})

	s.Navigate("/blog/2")
	syncShell(t, s)

	st := s.State()
	st.Location.Params["id"] = "99"

	assert.Equal(t, "2", s.State().Location.Params["id"])
}

func TestShell_LastNavigationWins(t *testing.T) {
	s := startShell(t, Options{Identity: &fakeIdentity{current: identity.NewAnonymous()}})

	var seen []string
	s.Subscribe(func(st State) { seen = append(seen, st.Location.Pathname) })

	s.Navigate("/pricing")
	s.Navigate("/blog/1")
	s.Navigate("/setup")
	syncShell(t, s)

	assert.Equal(t, []string{"/pricing", "/blog/1", "/setup"}, seen)
	assert.Equal(t, router.ViewSetup, s.State().View)
}

func TestShell_IdentityChangeReroutes(t *testing.T) {
	ids := &fakeIdentity{current: identity.NewAnonymous()}
	tasks := &fakeTasks{tasks: []models.Task{{ID: "t1", Title: "Write report", Status: models.TaskPending}}}
	s := startShell(t, Options{Identity: ids, Tasks: tasks})

	s.Navigate("/dashboard")
	syncShell(t, s)
	require.Equal(t, router.ViewAuth, s.State().View)

	ids.set(testUser)
	syncShell(t, s)

	st := s.State()
	assert.Equal(t, router.ViewDashboard, st.View)
	assert.True(t, st.Identity.IsUser())
	assert.Len(t, s.Dashboard().Tasks, 1)

	ids.set(identity.NewAnonymous())
	syncShell(t, s)

	assert.Equal(t, router.ViewAuth, s.State().View)
	assert.Empty(t, s.Dashboard().Tasks)
}

func TestShell_DashboardPollerNotifies(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))

	tasks := &fakeTasks{tasks: []models.Task{
		{ID: "t1", Title: "Write report", Status: models.TaskPending, ScheduledAt: clock.Now().Add(-time.Hour)},
		{ID: "t2", Title: "Call mom", Status: models.TaskPending, ScheduledAt: clock.Now().Add(10 * time.Minute)},
	}}
	notices := make(chan Notice, 10)
	s := startShell(t, Options{
		Identity:     &fakeIdentity{current: testUser},
		Tasks:        tasks,
		Clock:        clock,
		PollInterval: time.Minute,
		DueSoon:      15 * time.Minute,
		Notifier:     NotifierFunc(func(_ context.Context, n Notice) { notices <- n }),
	})

	s.Navigate("/dashboard")
	syncShell(t, s)

	n := <-notices
	assert.Equal(t, NoticeDueSoon, n.Kind)
	assert.Equal(t, "t2", n.Task.ID)

	tasks.setTasks([]models.Task{
		{ID: "t1", Title: "Write report", Status: models.TaskVerified, ScheduledAt: clock.Now().Add(-time.Hour)},
		{ID: "t2", Title: "Call mom", Status: models.TaskPending, ScheduledAt: clock.Now().Add(10 * time.Minute)},
	})
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Minute)

	select {
	case n = <-notices:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for notice")
	}
	assert.Equal(t, NoticeVerified, n.Kind)
	assert.Equal(t, "t1", n.Task.ID)

	select {
	case n = <-notices:
		t.Fatalf("unexpected notice %s for %s", n.Kind, n.Task.ID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestShell_LeavingViewStopsPolling(t *testing.T) {
	clock := clockwork.NewFakeClock()
	tasks := &fakeTasks{}
	s := startShell(t, Options{
		Identity:     &fakeIdentity{current: testUser},
		Tasks:        tasks,
		Clock:        clock,
		PollInterval: time.Minute,
	})

	s.Navigate("/dashboard")
	syncShell(t, s)
	require.Equal(t, 1, tasks.callCount())

	s.Navigate("/pricing")
	syncShell(t, s)

	clock.Advance(5 * time.Minute)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, tasks.callCount())
}

func TestShell_FailedRefreshKeepsData(t *testing.T) {
	tasks := &fakeTasks{tasks: []models.Task{{ID: "t1", Status: models.TaskPending}}}
	ids := &fakeIdentity{current: testUser}
	s := startShell(t, Options{Identity: ids, Tasks: tasks})

	s.Navigate("/dashboard")
	syncShell(t, s)
	require.Len(t, s.Dashboard().Tasks, 1)

	tasks.mu.Lock()
	tasks.err = errors.New("boom")
	tasks.mu.Unlock()

	err := s.dashboard.refresh(context.Background(), testUser)
	require.Error(t, err)
	assert.Len(t, s.Dashboard().Tasks, 1)
}

func TestShell_AdminView(t *testing.T) {
	admin := identity.NewAdmin(identity.AdminSession{Username: "admin", Password: "secret"})

	t.Run("offline demo stats", func(t *testing.T) {
		s := startShell(t, Options{Identity: &fakeIdentity{current: admin}, Offline: true})

		s.Navigate("/admin")
		syncShell(t, s)

		require.Equal(t, router.ViewAdmin, s.State().View)
		data := s.AdminStats()
		assert.True(t, data.Demo)
		assert.Equal(t, 1248, data.Stats.TotalUsers)
		assert.Len(t, data.Stats.RecentSignups, 3)
	})

	t.Run("online stats use admin credentials", func(t *testing.T) {
		stats := &fakeStats{stats: models.AdminStats{TotalUsers: 7}}
		s := startShell(t, Options{Identity: &fakeIdentity{current: admin}, Stats: stats})

		s.Navigate("/admin")
		syncShell(t, s)

		data := s.AdminStats()
		assert.False(t, data.Demo)
		assert.Equal(t, 7, data.Stats.TotalUsers)
		assert.Equal(t, "admin", stats.got.Username)
	})

	t.Run("online failure has no demo fallback", func(t *testing.T) {
		stats := &fakeStats{err: errors.New("down")}
		s := startShell(t, Options{Identity: &fakeIdentity{current: admin}, Stats: stats, Offline: false})

		s.Navigate("/admin")
		syncShell(t, s)

		assert.False(t, s.AdminStats().Demo)
		assert.Zero(t, s.AdminStats().Stats.TotalUsers)
	})
}

func TestShell_OfflineDashboardUsesDemoTasks(t *testing.T) {
	mock := identity.NewUser(identity.UserInfo{ID: "mock-1", Email: "demo@example.com"})
	s := startShell(t, Options{Identity: &fakeIdentity{current: mock}, Offline: true})

	s.Navigate("/dashboard")
	syncShell(t, s)

	data := s.Dashboard()
	assert.True(t, data.Demo)
	require.Len(t, data.Tasks, 3)
	assert.Equal(t, "Finish Q3 Report", data.Tasks[0].Title)
}

func TestStatusChanges(t *testing.T) {
	prev := []models.Task{
		{ID: "1", Status: models.TaskPending},
		{ID: "2", Status: models.TaskPending},
		{ID: "3", Status: models.TaskVerified},
		{ID: "4", Status: models.TaskPending},
	}
	next := []models.Task{
		{ID: "1", Status: models.TaskVerified},
		{ID: "2", Status: models.TaskMissed},
		{ID: "3", Status: models.TaskMissed},
		{ID: "4", Status: models.TaskPending},
		{ID: "5", Status: models.TaskVerified},
	}

	got := statusChanges(prev, next)
	require.Len(t, got, 2)
	assert.Equal(t, NoticeVerified, got[0].Kind)
	assert.Equal(t, "1", got[0].Task.ID)
	assert.Equal(t, NoticeMissed, got[1].Kind)
	assert.Equal(t, "2", got[1].Task.ID)
}
