package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/accountable/internal/models"
)

// CreateUser сохраняет учётную запись. Занятый email — ErrConflict.
func (s *Storage) CreateUser(ctx context.Context, email, passwordHash string) (models.User, error) {
	const op = "storage.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return models.User{}, err
	}

	u := models.User{Email: normalizeEmail(email), PasswordHash: passwordHash}
	query := `INSERT INTO users (email, password_hash)
			  VALUES ($1, $2)
			  RETURNING id, created_at`
	if err := s.DB.QueryRowContext(ctx, query, u.Email, u.PasswordHash).Scan(&u.ID, &u.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return models.User{}, fmt.Errorf("%s: %w", op, ErrConflict)
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByEmail возвращает учётную запись по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	const op = "storage.GetUserByEmail"
	if err := checkCtx(ctx, op); err != nil {
		return models.User{}, err
	}

	var u models.User
	query := `SELECT id, email, password_hash, created_at FROM users WHERE email = $1`
	err := s.DB.QueryRowContext(ctx, query, normalizeEmail(email)).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return models.User{}, wrapNoRows(op, err)
	}
	return u, nil
}

// GetUser возвращает учётную запись по ID.
func (s *Storage) GetUser(ctx context.Context, id string) (models.User, error) {
	const op = "storage.GetUser"
	if err := checkCtx(ctx, op); err != nil {
		return models.User{}, err
	}

	var u models.User
	query := `SELECT id, email, password_hash, created_at FROM users WHERE id = $1`
	if err := s.DB.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		return models.User{}, wrapNoRows(op, err)
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
