// Package store — локальное хранилище артефактов оболочки на SQLite:
// настройки подключения к API, токен сессии и демо-сессия офлайн-режима.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // драйвер database/sql "sqlite"
)

// KeyBackendConfig — ключ сохранённой пары {url,key}.
const KeyBackendConfig = "accountable_db_config"

const schema = `CREATE TABLE IF NOT EXISTS artifacts (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

// Store — хранилище строковых артефактов по ключу.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open открывает или создаёт базу по пути path. ":memory:" — база в памяти.
func Open(ctx context.Context, path string) (*Store, error) {
	const op = "store.Open"

	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: create schema: %w", op, err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close закрывает базу.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get возвращает значение по ключу; ok == false, если ключа нет.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	const op = "store.Get"
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM artifacts WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return value, true, nil
}

// Set сохраняет значение, заменяя прежнее.
func (s *Store) Set(ctx context.Context, key, value string) error {
	const op = "store.Set"
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO artifacts (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Delete удаляет ключ. Отсутствующий ключ не считается ошибкой.
func (s *Store) Delete(ctx context.Context, key string) error {
	const op = "store.Delete"
	if _, err := s.db.ExecContext(ctx, `DELETE FROM artifacts WHERE key = ?`, key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// BackendConfig — адрес API и публичный ключ, введённые оператором на странице настройки.
type BackendConfig struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Valid сообщает, что оба поля заполнены.
func (c BackendConfig) Valid() bool {
	return strings.TrimSpace(c.URL) != "" && strings.TrimSpace(c.Key) != ""
}

// LoadBackendConfig читает сохранённую пару {url,key}.
func (s *Store) LoadBackendConfig(ctx context.Context) (BackendConfig, bool, error) {
	const op = "store.LoadBackendConfig"
	raw, ok, err := s.Get(ctx, KeyBackendConfig)
	if err != nil || !ok {
		return BackendConfig{}, false, err
	}
	var cfg BackendConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return BackendConfig{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return cfg, cfg.Valid(), nil
}

// SaveBackendConfig сохраняет пару {url,key}.
func (s *Store) SaveBackendConfig(ctx context.Context, cfg BackendConfig) error {
	const op = "store.SaveBackendConfig"
	if !cfg.Valid() {
		return fmt.Errorf("%s: url and key are required", op)
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.Set(ctx, KeyBackendConfig, string(raw))
}

// ClearBackendConfig удаляет сохранённую пару {url,key}.
func (s *Store) ClearBackendConfig(ctx context.Context) error {
	return s.Delete(ctx, KeyBackendConfig)
}
