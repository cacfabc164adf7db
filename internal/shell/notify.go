package shell

import (
	"context"
	"log/slog"

	"github.com/magabrotheeeer/accountable/internal/models"
)

// NoticeKind — тип уведомления о задаче.
type NoticeKind string

const (
	NoticeVerified NoticeKind = "task_verified"
	NoticeMissed   NoticeKind = "task_missed"
	NoticeDueSoon  NoticeKind = "task_due_soon"
)

// Notice — уведомление, которое панель задач отправляет пользователю.
type Notice struct {
	Kind NoticeKind
	Task models.Task
}

// Notifier доставляет уведомления. Доставка не гарантируется, ошибки не возвращаются.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// NotifierFunc позволяет использовать функцию как Notifier.
type NotifierFunc func(ctx context.Context, n Notice)

func (f NotifierFunc) Notify(ctx context.Context, n Notice) { f(ctx, n) }

// LogNotifier пишет уведомления в лог.
func LogNotifier(log *slog.Logger) Notifier {
	return NotifierFunc(func(_ context.Context, n Notice) {
		log.Info("task notice",
			slog.String("kind", string(n.Kind)),
			slog.String("task_id", n.Task.ID),
			slog.String("title", n.Task.Title),
		)
	})
}
