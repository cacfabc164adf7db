// Package scheduler периодически ищет задачи с приближающимся звонком
// и задачи с истёкшим дедлайном и публикует уведомления в брокер.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/magabrotheeeer/accountable/internal/config"
	"github.com/magabrotheeeer/accountable/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/accountable/internal/lib/schedule"
	"github.com/magabrotheeeer/accountable/internal/lib/sl"
	"github.com/magabrotheeeer/accountable/internal/metrics"
	"github.com/magabrotheeeer/accountable/internal/models"
)

// TaskRepository отбирает задачи для уведомлений.
type TaskRepository interface {
	ClaimUpcoming(ctx context.Context, now time.Time, window, grace time.Duration) ([]models.TaskNotice, error)
	MarkMissed(ctx context.Context, now time.Time, grace time.Duration) ([]models.TaskNotice, error)
}

// SchedulerService публикует напоминания и отмечает пропущенные задачи.
type SchedulerService struct {
	repo    TaskRepository
	channel rabbitmq.Channel
	clock   clockwork.Clock
	cfg     config.Scheduler
	log     *slog.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo TaskRepository, channel rabbitmq.Channel, clock clockwork.Clock, cfg config.Scheduler, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo:    repo,
		channel: channel,
		clock:   clock,
		cfg:     cfg,
		log:     log,
	}
}

// Run выполняет проверку сразу и затем каждые cfg.Interval до отмены ctx.
func (s *SchedulerService) Run(ctx context.Context) {
	s.Tick(ctx)
	task := schedule.Every(ctx, s.clock, s.cfg.Interval, s.Tick)
	<-ctx.Done()
	task.Stop()
}

// Tick выполняет одну проверку.
func (s *SchedulerService) Tick(ctx context.Context) {
	now := s.clock.Now().UTC()
	s.remindUpcoming(ctx, now)
	s.markMissed(ctx, now)
}

func (s *SchedulerService) remindUpcoming(ctx context.Context, now time.Time) {
	notices, err := s.repo.ClaimUpcoming(ctx, now, s.cfg.ReminderWindow, s.cfg.MissedGrace)
	if err != nil {
		s.log.Error("failed to claim upcoming tasks", sl.Err(err))
		return
	}
	if len(notices) > 0 {
		s.log.Info("found upcoming tasks", slog.Int("count", len(notices)))
	}
	s.publish(notices, rabbitmq.RoutingTaskUpcoming)
}

func (s *SchedulerService) markMissed(ctx context.Context, now time.Time) {
	notices, err := s.repo.MarkMissed(ctx, now, s.cfg.MissedGrace)
	if err != nil {
		s.log.Error("failed to mark missed tasks", sl.Err(err))
		return
	}
	if len(notices) > 0 {
		s.log.Info("marked tasks as missed", slog.Int("count", len(notices)))
	}
	s.publish(notices, rabbitmq.RoutingTaskMissed)
}

// publish отправляет уведомления по одному. Ошибка публикации не отменяет
// изменение статуса: уведомления доставляются по возможности.
func (s *SchedulerService) publish(notices []models.TaskNotice, routingKey string) {
	for _, n := range notices {
		err := rabbitmq.PublishMessage(s.channel, rabbitmq.Exchange, routingKey, n)
		metrics.NotificationsPublished.WithLabelValues(routingKey, metrics.Result(err)).Inc()
		if err != nil {
			s.log.Error("failed to publish message",
				slog.String("task_id", n.TaskID),
				slog.String("routing_key", routingKey),
				sl.Err(err),
			)
		}
	}
}
