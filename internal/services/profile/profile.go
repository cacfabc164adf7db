// Package profile содержит бизнес-логику чтения и изменения профиля пользователя.
package profile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/accountable/internal/models"
)

// Repository — хранилище профилей.
type Repository interface {
	GetProfile(ctx context.Context, id string) (models.Profile, error)
	UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (models.Profile, error)
}

// Service отдаёт и изменяет профиль.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создаёт Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Get возвращает профиль пользователя. Отсутствующий профиль — models.ErrNotFound.
func (s *Service) Get(ctx context.Context, userID string) (models.Profile, error) {
	const op = "profile.Get"
	p, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Update изменяет имя и номер WhatsApp. Пустой запрос возвращает профиль без изменений.
func (s *Service) Update(ctx context.Context, userID string, upd models.ProfileUpdate) (models.Profile, error) {
	const op = "profile.Update"
	if upd.FullName == nil && upd.WhatsApp == nil {
		return s.Get(ctx, userID)
	}
	p, err := s.repo.UpdateProfile(ctx, userID, upd)
	if err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("profile updated", slog.String("user_id", userID))
	return p, nil
}
