// Package identity описывает текущего участника: аноним, пользователь или администратор.
package identity

import "github.com/magabrotheeeer/accountable/internal/models"

// Kind — вариант идентичности.
type Kind int

const (
	// Anonymous — пользователь не вошёл.
	Anonymous Kind = iota
	// User — вошедший пользователь с профилем.
	User
	// Admin — сессия администратора, полученная отдельным входом.
	Admin
)

func (k Kind) String() string {
	switch k {
	case User:
		return "user"
	case Admin:
		return "admin"
	default:
		return "anonymous"
	}
}

// UserInfo — данные варианта User.
type UserInfo struct {
	ID             string
	Email          string
	Tier           models.Tier
	CallsRemaining int
	IsAdmin        bool
	// Token — токен сессии identity-сервиса; пуст в офлайн-режиме.
	Token string
}

// AdminSession — данные варианта Admin.
// Для входа по секретам оператора заполнены Username и Password,
// для входа через профиль с флагом администратора — Token.
type AdminSession struct {
	Username string
	Password string
	Token    string
}

// Identity — размеченное объединение. Заполнено не более одного из полей User, Admin.
type Identity struct {
	Kind  Kind
	User  *UserInfo
	Admin *AdminSession
}

// NewAnonymous возвращает анонимную идентичность.
func NewAnonymous() Identity {
	return Identity{Kind: Anonymous}
}

// NewUser возвращает идентичность пользователя.
func NewUser(u UserInfo) Identity {
	return Identity{Kind: User, User: &u}
}

// FromProfile строит идентичность пользователя по профилю и токену сессии.
func FromProfile(p models.Profile, token string) Identity {
	return NewUser(UserInfo{
		ID:             p.ID,
		Email:          p.Email,
		Tier:           p.Tier,
		CallsRemaining: p.CallsRemaining,
		IsAdmin:        p.IsAdmin,
		Token:          token,
	})
}

// NewAdmin возвращает идентичность администратора.
func NewAdmin(s AdminSession) Identity {
	return Identity{Kind: Admin, Admin: &s}
}

// IsAnonymous сообщает, что участник не вошёл.
func (i Identity) IsAnonymous() bool { return i.Kind == Anonymous }

// IsUser сообщает, что участник — пользователь.
func (i Identity) IsUser() bool { return i.Kind == User && i.User != nil }

// IsAdminSession сообщает, что участник вошёл как администратор.
func (i Identity) IsAdminSession() bool { return i.Kind == Admin && i.Admin != nil }

// HasAdminRole сообщает, может ли участник открывать админ-панель.
func (i Identity) HasAdminRole() bool {
	return i.IsAdminSession() || (i.IsUser() && i.User.IsAdmin)
}

// Equal сравнивает две идентичности по значению.
func (i Identity) Equal(o Identity) bool {
	if i.Kind != o.Kind {
		return false
	}
	switch i.Kind {
	case User:
		return i.User != nil && o.User != nil && *i.User == *o.User
	case Admin:
		return i.Admin != nil && o.Admin != nil && *i.Admin == *o.Admin
	}
	return true
}
