// Package session определяет текущую идентичность пользователя оболочки.
//
// Источник идентичности — identity-сервис, если он настроен, иначе локальный
// демо-артефакт. Ошибки сервисов при определении идентичности приводят к Anonymous.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/magabrotheeeer/accountable/internal/models"
)

var (
	// ErrUnauthorized — неверные учётные данные или отсутствие прав.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrServiceUnavailable — identity-сервис не настроен или недоступен.
	ErrServiceUnavailable = errors.New("identity service unavailable")
)

// Ключи локального хранилища артефактов.
const (
	KeySessionToken = "accountable_session"
	KeyMockUser     = "mock_user_session"
)

// IdentityService — клиент identity-сервиса.
type IdentityService interface {
	SignUp(ctx context.Context, email, password string) (models.Session, error)
	SignIn(ctx context.Context, email, password string) (models.Session, error)
	SignOut(ctx context.Context, token string) error
	GetSession(ctx context.Context, token string) (models.Session, error)
	WatchSession(ctx context.Context, token string) (<-chan models.SessionEvent, error)
}

// ProfileSource читает профиль владельца токена. Отсутствие профиля — models.ErrNotFound.
type ProfileSource interface {
	Profile(ctx context.Context, token string) (models.Profile, error)
}

// AdminVerifier проверяет пару логин/пароль администратора через admin RPC.
type AdminVerifier interface {
	VerifyAdmin(ctx context.Context, username, password string) error
}

// ArtifactStore — локальное хранилище строковых артефактов.
type ArtifactStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Credentials — пара логин/пароль для входа в админ-панель.
type Credentials struct {
	Username string
	Password string
}

// mockUser — профиль демо-пользователя офлайн-режима, email подставляется при входе.
func mockUser(email string, now time.Time) models.Profile {
	return models.Profile{
		ID:             "mock-1",
		Email:          email,
		Tier:           models.TierBasic,
		CallsRemaining: 12,
		IsAdmin:        true,
		CreatedAt:      now,
	}
}
