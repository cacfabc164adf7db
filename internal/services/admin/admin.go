// Package admin реализует admin RPC оператора: статистику, список задач
// и подтверждение выполнения задачи.
//
// Доступ проверяется либо по паре логин/пароль против секретов оператора,
// либо по токену сессии пользователя с флагом is_admin в профиле.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/accountable/internal/lib/password"
	"github.com/magabrotheeeer/accountable/internal/lib/sl"
	"github.com/magabrotheeeer/accountable/internal/models"
)

// ErrUnauthorized — запрос не прошёл проверку прав администратора.
var ErrUnauthorized = errors.New("unauthorized")

// Действия admin RPC.
const (
	ActionStats      = "stats"
	ActionTasks      = "tasks"
	ActionVerifyTask = "verify_task"
)

const (
	statsCacheKey     = "admin:stats"
	statsCacheTTL     = 30 * time.Second
	recentSignupLimit = 5
	taskListLimit     = 200
)

// Repository — данные, которые читает и изменяет админ-панель.
type Repository interface {
	GetProfile(ctx context.Context, id string) (models.Profile, error)
	TierCounts(ctx context.Context) (total, basic, pro int, err error)
	RecentSignups(ctx context.Context, limit int) ([]models.RecentSignup, error)
	ListTaskOverviews(ctx context.Context, limit int) ([]models.TaskOverview, error)
	VerifyTask(ctx context.Context, taskID, notes string) (models.Task, error)
}

// Cache — кэш агрегатов.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Sessions проверяет токены пользователей.
type Sessions interface {
	GetSession(ctx context.Context, token string) (models.Session, error)
}

// Credentials — данные для проверки прав: пара логин/пароль или токен сессии.
type Credentials struct {
	Username string
	Password string
	Token    string
}

// Request — вызов admin RPC.
type Request struct {
	Credentials
	Action string
	TaskID string
	Notes  string
}

// Service обслуживает admin RPC.
type Service struct {
	repo      Repository
	cache     Cache
	sessions  Sessions
	adminUser string
	adminPass string
	log       *slog.Logger
}

// New создаёт Service. Пустые adminUser/adminPass отключают вход по паре.
func New(repo Repository, cache Cache, sessions Sessions, adminUser, adminPass string, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		cache:     cache,
		sessions:  sessions,
		adminUser: adminUser,
		adminPass: adminPass,
		log:       log,
	}
}

// Authorize проверяет права администратора.
func (s *Service) Authorize(ctx context.Context, c Credentials) error {
	const op = "admin.Authorize"

	if password.SecretsEqual(c.Username, c.Password, s.adminUser, s.adminPass) {
		return nil
	}
	if c.Token == "" || s.sessions == nil {
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}
	sess, err := s.sessions.GetSession(ctx, c.Token)
	if err != nil {
		s.log.Info("admin token rejected", sl.Op(op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}
	p, err := s.repo.GetProfile(ctx, sess.UserID)
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !p.IsAdmin {
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}
	return nil
}

// Do проверяет права и выполняет действие. Пустое действие означает stats.
func (s *Service) Do(ctx context.Context, req Request) (any, error) {
	const op = "admin.Do"

	action := strings.TrimSpace(req.Action)
	if action == "" {
		action = ActionStats
	}
	if err := s.Authorize(ctx, req.Credentials); err != nil {
		return nil, err
	}

	switch action {
	case ActionStats:
		return s.Stats(ctx)
	case ActionTasks:
		return s.Tasks(ctx)
	case ActionVerifyTask:
		return s.VerifyTask(ctx, req.TaskID, req.Notes)
	default:
		return nil, fmt.Errorf("%s: %w: unknown action %q", op, models.ErrValidation, action)
	}
}

// Stats возвращает агрегаты, кэшируя их на statsCacheTTL.
func (s *Service) Stats(ctx context.Context) (models.AdminStats, error) {
	const op = "admin.Stats"

	var cached models.AdminStats
	found, err := s.cache.Get(ctx, statsCacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read stats from cache", sl.Op(op), sl.Err(err))
	}
	if found {
		return cached, nil
	}

	total, basic, pro, err := s.repo.TierCounts(ctx)
	if err != nil {
		return models.AdminStats{}, fmt.Errorf("%s: %w", op, err)
	}
	recent, err := s.repo.RecentSignups(ctx, recentSignupLimit)
	if err != nil {
		return models.AdminStats{}, fmt.Errorf("%s: %w", op, err)
	}
	stats := models.ComputeStats(total, basic, pro, recent)

	if err := s.cache.Set(ctx, statsCacheKey, stats, statsCacheTTL); err != nil {
		s.log.Warn("failed to cache stats", sl.Op(op), sl.Err(err))
	}
	return stats, nil
}

// Tasks возвращает задачи всех пользователей.
func (s *Service) Tasks(ctx context.Context) ([]models.TaskOverview, error) {
	const op = "admin.Tasks"
	list, err := s.repo.ListTaskOverviews(ctx, taskListLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if list == nil {
		list = []models.TaskOverview{}
	}
	return list, nil
}

// VerifyTask подтверждает выполнение задачи и списывает звонок у владельца.
func (s *Service) VerifyTask(ctx context.Context, taskID, notes string) (models.Task, error) {
	const op = "admin.VerifyTask"
	if _, err := uuid.Parse(taskID); err != nil {
		return models.Task{}, fmt.Errorf("%s: %w: taskId must be a uuid", op, models.ErrValidation)
	}
	task, err := s.repo.VerifyTask(ctx, taskID, notes)
	if err != nil {
		return models.Task{}, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("task verified", slog.String("task_id", taskID), slog.String("user_id", task.UserID))
	return task, nil
}
