// Package tasks содержит бизнес-логику задач подотчётности пользователя.
package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/accountable/internal/models"
)

// Repository — хранилище задач.
type Repository interface {
	CreateTask(ctx context.Context, t models.Task) (models.Task, error)
	ListTasks(ctx context.Context, userID string) ([]models.Task, error)
}

// Service создаёт задачи и отдаёт список задач пользователя.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создаёт Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// List возвращает задачи пользователя, новые по времени звонка первыми.
func (s *Service) List(ctx context.Context, userID string) ([]models.Task, error) {
	const op = "tasks.List"
	list, err := s.repo.ListTasks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if list == nil {
		list = []models.Task{}
	}
	return list, nil
}

// Create создаёт задачу в статусе pending.
// Даты принимаются в RFC3339, end_at должен быть позже scheduled_at.
func (s *Service) Create(ctx context.Context, userID string, req models.DummyTask) (models.Task, error) {
	const op = "tasks.Create"

	task, err := parseTask(req)
	if err != nil {
		return models.Task{}, fmt.Errorf("%s: %w", op, err)
	}
	task.UserID = userID

	created, err := s.repo.CreateTask(ctx, task)
	if err != nil {
		return models.Task{}, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("task created", slog.String("task_id", created.ID), slog.String("user_id", userID))
	return created, nil
}

func parseTask(req models.DummyTask) (models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return models.Task{}, fmt.Errorf("%w: title is empty", models.ErrValidation)
	}
	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return models.Task{}, fmt.Errorf("%w: scheduled_at must be RFC3339", models.ErrValidation)
	}
	task := models.Task{
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		ScheduledAt: scheduledAt.UTC(),
		Status:      models.TaskPending,
	}
	if req.EndAt != "" {
		endAt, err := time.Parse(time.RFC3339, req.EndAt)
		if err != nil {
			return models.Task{}, fmt.Errorf("%w: end_at must be RFC3339", models.ErrValidation)
		}
		if !endAt.After(scheduledAt) {
			return models.Task{}, fmt.Errorf("%w: end_at must be after scheduled_at", models.ErrValidation)
		}
		endAt = endAt.UTC()
		task.EndAt = &endAt
	}
	return task, nil
}
