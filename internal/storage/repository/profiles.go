package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/accountable/internal/models"
)

const profileColumns = `id, email, full_name, tier, calls_remaining, is_admin, whatsapp, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.Tier, &p.CallsRemaining, &p.IsAdmin, &p.WhatsApp, &p.CreatedAt)
	return p, err
}

// CreateProfile создаёт профиль для учётной записи. Существующий профиль не изменяется.
func (s *Storage) CreateProfile(ctx context.Context, p models.Profile) error {
	const op = "storage.CreateProfile"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO profiles (id, email, full_name, tier, calls_remaining, is_admin, whatsapp)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  ON CONFLICT (id) DO NOTHING`
	_, err := s.DB.ExecContext(ctx, query,
		p.ID, normalizeEmail(p.Email), p.FullName, p.Tier, p.CallsRemaining, p.IsAdmin, p.WhatsApp)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetProfile возвращает профиль по ID пользователя.
func (s *Storage) GetProfile(ctx context.Context, id string) (models.Profile, error) {
	const op = "storage.GetProfile"
	if err := checkCtx(ctx, op); err != nil {
		return models.Profile{}, err
	}

	p, err := scanProfile(s.DB.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if err != nil {
		return models.Profile{}, wrapNoRows(op, err)
	}
	return p, nil
}

// UpdateProfile меняет переданные поля профиля и возвращает результат.
func (s *Storage) UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (models.Profile, error) {
	const op = "storage.UpdateProfile"
	if err := checkCtx(ctx, op); err != nil {
		return models.Profile{}, err
	}

	query := `UPDATE profiles
			  SET full_name = COALESCE($2, full_name),
			      whatsapp  = COALESCE($3, whatsapp)
			  WHERE id = $1
			  RETURNING ` + profileColumns
	p, err := scanProfile(s.DB.QueryRowContext(ctx, query, id, upd.FullName, upd.WhatsApp))
	if err != nil {
		return models.Profile{}, wrapNoRows(op, err)
	}
	return p, nil
}

// SetTier переводит профиль на тариф и начисляет звонки тарифа.
func (s *Storage) SetTier(ctx context.Context, id string, tier models.Tier, calls int) (models.Profile, error) {
	const op = "storage.SetTier"
	if err := checkCtx(ctx, op); err != nil {
		return models.Profile{}, err
	}

	query := `UPDATE profiles
			  SET tier = $2, calls_remaining = calls_remaining + $3
			  WHERE id = $1
			  RETURNING ` + profileColumns
	p, err := scanProfile(s.DB.QueryRowContext(ctx, query, id, tier, calls))
	if err != nil {
		return models.Profile{}, wrapNoRows(op, err)
	}
	return p, nil
}

// AddCalls начисляет дополнительные звонки.
func (s *Storage) AddCalls(ctx context.Context, id string, calls int) (models.Profile, error) {
	const op = "storage.AddCalls"
	if err := checkCtx(ctx, op); err != nil {
		return models.Profile{}, err
	}

	query := `UPDATE profiles
			  SET calls_remaining = calls_remaining + $2
			  WHERE id = $1
			  RETURNING ` + profileColumns
	p, err := scanProfile(s.DB.QueryRowContext(ctx, query, id, calls))
	if err != nil {
		return models.Profile{}, wrapNoRows(op, err)
	}
	return p, nil
}

// TierCounts возвращает общее число профилей и число профилей на тарифах BASIC и PRO.
func (s *Storage) TierCounts(ctx context.Context) (total, basic, pro int, err error) {
	const op = "storage.TierCounts"
	if err := checkCtx(ctx, op); err != nil {
		return 0, 0, 0, err
	}

	query := `SELECT COUNT(*),
			         COUNT(*) FILTER (WHERE tier = 'BASIC'),
			         COUNT(*) FILTER (WHERE tier = 'PRO')
			  FROM profiles`
	if err := s.DB.QueryRowContext(ctx, query).Scan(&total, &basic, &pro); err != nil {
		return 0, 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, basic, pro, nil
}

// RecentSignups возвращает последние limit регистраций, новые первыми.
func (s *Storage) RecentSignups(ctx context.Context, limit int) ([]models.RecentSignup, error) {
	const op = "storage.RecentSignups"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT email, tier, created_at FROM profiles ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := make([]models.RecentSignup, 0, limit)
	for rows.Next() {
		var r models.RecentSignup
		if err := rows.Scan(&r.Email, &r.Tier, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}
