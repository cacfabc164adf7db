package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/accountable/internal/models"
)

const taskColumns = `id, user_id, title, description, scheduled_at, end_at, status, notes, reminded_at, created_at`

func scanTask(row rowScanner) (models.Task, error) {
	var (
		t                 models.Task
		endAt, remindedAt sql.NullTime
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.ScheduledAt, &endAt,
		&t.Status, &t.Notes, &remindedAt, &t.CreatedAt)
	if err != nil {
		return models.Task{}, err
	}
	if endAt.Valid {
		t.EndAt = &endAt.Time
	}
	if remindedAt.Valid {
		t.RemindedAt = &remindedAt.Time
	}
	return t, nil
}

// CreateTask сохраняет задачу со статусом pending.
func (s *Storage) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	const op = "storage.CreateTask"
	if err := checkCtx(ctx, op); err != nil {
		return models.Task{}, err
	}

	query := `INSERT INTO tasks (user_id, title, description, scheduled_at, end_at, status)
			  VALUES ($1, $2, $3, $4, $5, 'pending')
			  RETURNING ` + taskColumns
	created, err := scanTask(s.DB.QueryRowContext(ctx, query,
		t.UserID, t.Title, t.Description, t.ScheduledAt, t.EndAt))
	if err != nil {
		return models.Task{}, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// ListTasks возвращает задачи пользователя, самые поздние первыми.
func (s *Storage) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	const op = "storage.ListTasks"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY scheduled_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tasks, nil
}

// ListTaskOverviews возвращает задачи всех пользователей с данными владельца, ближайшие первыми.
func (s *Storage) ListTaskOverviews(ctx context.Context, limit int) ([]models.TaskOverview, error) {
	const op = "storage.ListTaskOverviews"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT t.id, t.title, t.status, t.scheduled_at, t.end_at, p.id, p.email, p.calls_remaining
			  FROM tasks t
			  JOIN profiles p ON p.id = t.user_id
			  ORDER BY t.scheduled_at ASC
			  LIMIT $1`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := make([]models.TaskOverview, 0)
	for rows.Next() {
		var (
			o     models.TaskOverview
			endAt sql.NullTime
		)
		if err := rows.Scan(&o.ID, &o.Title, &o.Status, &o.ScheduledAt, &endAt,
			&o.OwnerID, &o.OwnerEmail, &o.OwnerCalls); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if endAt.Valid {
			o.EndAt = &endAt.Time
		}
		res = append(res, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// VerifyTask отмечает ожидающую задачу подтверждённой и списывает один звонок владельца,
// не опуская баланс ниже нуля. Задача не в статусе pending — ErrConflict.
func (s *Storage) VerifyTask(ctx context.Context, taskID, notes string) (models.Task, error) {
	const op = "storage.VerifyTask"
	if err := checkCtx(ctx, op); err != nil {
		return models.Task{}, err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Task{}, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	t, err := scanTask(tx.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, taskID))
	if err != nil {
		return models.Task{}, wrapNoRows(op, err)
	}
	if t.Status != models.TaskPending {
		return models.Task{}, fmt.Errorf("%s: task is %s: %w", op, t.Status, ErrConflict)
	}

	t, err = scanTask(tx.QueryRowContext(ctx,
		`UPDATE tasks SET status = 'verified', notes = COALESCE(NULLIF($2, ''), notes)
		 WHERE id = $1
		 RETURNING `+taskColumns, taskID, notes))
	if err != nil {
		return models.Task{}, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE profiles SET calls_remaining = GREATEST(calls_remaining - 1, 0) WHERE id = $1`, t.UserID); err != nil {
		return models.Task{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return models.Task{}, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

const noticeReturning = `RETURNING t.id, t.title, p.email, t.scheduled_at, t.end_at`

func scanNotices(rows *sql.Rows, grace time.Duration) ([]models.TaskNotice, error) {
	res := make([]models.TaskNotice, 0)
	for rows.Next() {
		var (
			t     models.Task
			email string
			endAt sql.NullTime
		)
		if err := rows.Scan(&t.ID, &t.Title, &email, &t.ScheduledAt, &endAt); err != nil {
			return nil, err
		}
		if endAt.Valid {
			t.EndAt = &endAt.Time
		}
		res = append(res, models.TaskNotice{
			TaskID:      t.ID,
			Title:       t.Title,
			Email:       email,
			ScheduledAt: t.ScheduledAt,
			Deadline:    t.Deadline(grace),
		})
	}
	return res, rows.Err()
}

// ClaimUpcoming помечает напомненными ожидающие задачи, звонок по которым
// начнётся в течение window после now, и возвращает их. Каждая задача возвращается один раз.
func (s *Storage) ClaimUpcoming(ctx context.Context, now time.Time, window, grace time.Duration) ([]models.TaskNotice, error) {
	const op = "storage.ClaimUpcoming"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `UPDATE tasks t SET reminded_at = $1
			  FROM profiles p
			  WHERE p.id = t.user_id
			    AND t.status = 'pending'
			    AND t.reminded_at IS NULL
			    AND t.scheduled_at > $1
			    AND t.scheduled_at <= $2
			  ` + noticeReturning
	rows, err := s.DB.QueryContext(ctx, query, now, now.Add(window))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res, err := scanNotices(rows, grace)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// MarkMissed переводит в missed ожидающие задачи, дедлайн которых прошёл к now,
// и возвращает их. Дедлайн — end_at, а без него scheduled_at + grace.
func (s *Storage) MarkMissed(ctx context.Context, now time.Time, grace time.Duration) ([]models.TaskNotice, error) {
	const op = "storage.MarkMissed"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `UPDATE tasks t SET status = 'missed'
			  FROM profiles p
			  WHERE p.id = t.user_id
			    AND t.status = 'pending'
			    AND COALESCE(t.end_at, t.scheduled_at + $2::float8 * INTERVAL '1 second') < $1
			  ` + noticeReturning
	rows, err := s.DB.QueryContext(ctx, query, now, grace.Seconds())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res, err := scanNotices(rows, grace)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}
