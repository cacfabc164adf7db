// Package models содержит доменные структуры Accountable: учётные записи, профили,
// задачи, тарифы, статистику для админ-панели и посты блога.
// Структуры используются в бизнес‑логике, хранилище и в JSON‑ответах.
package models

import "time"

// User представляет учётную запись identity-сервиса.
type User struct {
	ID           string    // Уникальный идентификатор пользователя
	Email        string    // Электронная почта (уникальная)
	PasswordHash string    // Хэш пароля пользователя
	CreatedAt    time.Time // Дата регистрации
}

// Profile — запись таблицы profiles, создаваемая при регистрации.
type Profile struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name,omitempty"`
	Tier           Tier      `json:"tier"`
	CallsRemaining int       `json:"calls_remaining"`
	IsAdmin        bool      `json:"is_admin"`
	WhatsApp       string    `json:"whatsapp,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// DefaultProfile строит профиль по умолчанию: без тарифа, без звонков, без прав администратора.
// Используется, когда запись профиля отсутствует.
func DefaultProfile(id, email string, now time.Time) Profile {
	return Profile{
		ID:        id,
		Email:     email,
		Tier:      TierNone,
		CreatedAt: now,
	}
}

// ProfileUpdate используется для приёма изменяемых полей профиля из JSON‑запроса.
type ProfileUpdate struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,max=120"`
	WhatsApp *string `json:"whatsapp,omitempty" validate:"omitempty,max=32"`
}

// Session описывает активную сессию identity-сервиса.
type Session struct {
	Token     string    `json:"token"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionEventKind — тип события изменения сессии.
type SessionEventKind string

const (
	// SessionSignedIn — пользователь вошёл (в том числе на другом устройстве).
	SessionSignedIn SessionEventKind = "signed_in"
	// SessionSignedOut — сессия отозвана.
	SessionSignedOut SessionEventKind = "signed_out"
	// SessionRefreshed — данные профиля или сессии изменились.
	SessionRefreshed SessionEventKind = "refreshed"
)

// SessionEvent — событие, рассылаемое подписчикам сессий пользователя.
type SessionEvent struct {
	Kind      SessionEventKind `json:"kind"`
	UserID    string           `json:"user_id"`
	SessionID string           `json:"session_id,omitempty"`
}
