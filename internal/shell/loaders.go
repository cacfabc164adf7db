package shell

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/magabrotheeeer/accountable/internal/identity"
	"github.com/magabrotheeeer/accountable/internal/lib/schedule"
	"github.com/magabrotheeeer/accountable/internal/lib/sl"
	"github.com/magabrotheeeer/accountable/internal/models"
)

// ErrNoSource — источник данных не настроен, а демо-режим выключен.
var ErrNoSource = errors.New("data source is not configured")

// TaskSource читает задачи владельца токена.
type TaskSource interface {
	Tasks(ctx context.Context, token string) ([]models.Task, error)
}

// StatsSource читает статистику админ-панели.
type StatsSource interface {
	AdminStats(ctx context.Context, admin identity.AdminSession) (models.AdminStats, error)
}

// DashboardData — задачи панели пользователя.
type DashboardData struct {
	Tasks     []models.Task
	Demo      bool
	UpdatedAt time.Time
}

// AdminData — статистика админ-панели.
type AdminData struct {
	Stats     models.AdminStats
	Demo      bool
	UpdatedAt time.Time
}

type viewLoader interface {
	start(ctx context.Context, id identity.Identity) error
	refresh(ctx context.Context, id identity.Identity) error
	reset()
}

// startPolling обновляет данные представления каждые interval и возвращает функцию остановки.
func startPolling(ctx context.Context, clock clockwork.Clock, interval time.Duration, l viewLoader, id identity.Identity) func() {
	task := schedule.Every(ctx, clock, interval, func(ctx context.Context) {
		_ = l.refresh(ctx, id)
	})
	return task.Stop
}

type dashboardLoader struct {
	log      *slog.Logger
	src      TaskSource
	notifier Notifier
	clock    clockwork.Clock
	dueSoon  time.Duration
	offline  bool

	mu       sync.Mutex
	data     DashboardData
	loaded   bool
	reminded map[string]struct{}
}

func newDashboardLoader(log *slog.Logger, src TaskSource, n Notifier, clock clockwork.Clock, dueSoon time.Duration, offline bool) *dashboardLoader {
	return &dashboardLoader{
		log:      log,
		src:      src,
		notifier: n,
		clock:    clock,
		dueSoon:  dueSoon,
		offline:  offline,
		reminded: make(map[string]struct{}),
	}
}

func (l *dashboardLoader) start(ctx context.Context, id identity.Identity) error {
	return l.refresh(ctx, id)
}

// refresh загружает задачи и сообщает о сменах статуса и приближающихся задачах.
// При ошибке остаются прежние данные.
func (l *dashboardLoader) refresh(ctx context.Context, id identity.Identity) error {
	const op = "shell.dashboard.refresh"

	token := ""
	if id.IsUser() {
		token = id.User.Token
	}

	var (
		tasks []models.Task
		demo  bool
	)
	switch {
	case l.src != nil && token != "":
		var err error
		tasks, err = l.src.Tasks(ctx, token)
		if err != nil {
			l.log.Warn("failed to refresh tasks", sl.Op(op), sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}
	case l.offline:
		tasks, demo = demoTasks(), true
	default:
		return fmt.Errorf("%s: %w", op, ErrNoSource)
	}

	now := l.clock.Now()

	l.mu.Lock()
	var notices []Notice
	if l.loaded {
		notices = statusChanges(l.data.Tasks, tasks)
	}
	for _, t := range tasks {
		if t.Status != models.TaskPending {
			continue
		}
		if t.ScheduledAt.Before(now) || t.ScheduledAt.Sub(now) > l.dueSoon {
			continue
		}
		if _, ok := l.reminded[t.ID]; ok {
			continue
		}
		l.reminded[t.ID] = struct{}{}
		notices = append(notices, Notice{Kind: NoticeDueSoon, Task: t})
	}
	l.data = DashboardData{Tasks: tasks, Demo: demo, UpdatedAt: now}
	l.loaded = true
	l.mu.Unlock()

	for _, n := range notices {
		l.notifier.Notify(ctx, n)
	}
	return nil
}

func (l *dashboardLoader) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data = DashboardData{}
	l.loaded = false
	l.reminded = make(map[string]struct{})
}

func (l *dashboardLoader) snapshot() DashboardData {
	l.mu.Lock()
	defer l.mu.Unlock()
	d := l.data
	d.Tasks = slices.Clone(l.data.Tasks)
	return d
}

// statusChanges находит задачи, вышедшие из ожидания между двумя загрузками.
func statusChanges(prev, next []models.Task) []Notice {
	before := make(map[string]models.TaskStatus, len(prev))
	for _, t := range prev {
		before[t.ID] = t.Status
	}
	var out []Notice
	for _, t := range next {
		if before[t.ID] != models.TaskPending {
			continue
		}
		switch t.Status {
		case models.TaskVerified:
			out = append(out, Notice{Kind: NoticeVerified, Task: t})
		case models.TaskMissed:
			out = append(out, Notice{Kind: NoticeMissed, Task: t})
		}
	}
	return out
}

type adminLoader struct {
	log     *slog.Logger
	src     StatsSource
	clock   clockwork.Clock
	offline bool

	mu   sync.Mutex
	data AdminData
}

func newAdminLoader(log *slog.Logger, src StatsSource, clock clockwork.Clock, offline bool) *adminLoader {
	return &adminLoader{log: log, src: src, clock: clock, offline: offline}
}

func (l *adminLoader) start(ctx context.Context, id identity.Identity) error {
	return l.refresh(ctx, id)
}

// refresh загружает статистику. Демо-статистика подставляется только в офлайн-режиме.
func (l *adminLoader) refresh(ctx context.Context, id identity.Identity) error {
	const op = "shell.admin.refresh"

	if l.src == nil {
		if !l.offline {
			return fmt.Errorf("%s: %w", op, ErrNoSource)
		}
		now := l.clock.Now()
		l.set(AdminData{Stats: demoStats(now), Demo: true, UpdatedAt: now})
		return nil
	}

	stats, err := l.src.AdminStats(ctx, adminCredentials(id))
	if err != nil {
		l.log.Warn("failed to refresh admin stats", sl.Op(op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	l.set(AdminData{Stats: stats, UpdatedAt: l.clock.Now()})
	return nil
}

func (l *adminLoader) set(d AdminData) {
	l.mu.Lock()
	l.data = d
	l.mu.Unlock()
}

func (l *adminLoader) reset() {
	l.set(AdminData{})
}

func (l *adminLoader) snapshot() AdminData {
	l.mu.Lock()
	defer l.mu.Unlock()
	d := l.data
	d.Stats.RecentSignups = slices.Clone(l.data.Stats.RecentSignups)
	return d
}

// adminCredentials — реквизиты, с которыми идентичность обращается к admin RPC.
func adminCredentials(id identity.Identity) identity.AdminSession {
	switch {
	case id.IsAdminSession():
		return *id.Admin
	case id.IsUser():
		return identity.AdminSession{Token: id.User.Token}
	}
	return identity.AdminSession{}
}
