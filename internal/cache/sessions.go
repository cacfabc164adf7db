package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/accountable/internal/lib/sl"
	"github.com/magabrotheeeer/accountable/internal/models"
)

func revokedKey(sessionID string) string {
	return "sessions:revoked:" + sessionID
}

// SessionChannel — канал pub/sub событий сессий пользователя.
func SessionChannel(userID string) string {
	return "sessions:" + userID
}

// RevokeSession отмечает сессию отозванной на ttl, то есть до истечения токена.
func (c *Cache) RevokeSession(ctx context.Context, sessionID string, ttl time.Duration) error {
	const op = "cache.RevokeSession"
	if ttl <= 0 {
		return nil
	}
	if err := c.Db.Set(ctx, revokedKey(sessionID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// IsRevoked сообщает, была ли сессия отозвана.
func (c *Cache) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	const op = "cache.IsRevoked"
	n, err := c.Db.Exists(ctx, revokedKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}

// PublishSessionEvent рассылает событие подписчикам сессий пользователя.
func (c *Cache) PublishSessionEvent(ctx context.Context, ev models.SessionEvent) error {
	const op = "cache.PublishSessionEvent"
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.Db.Publish(ctx, SessionChannel(ev.UserID), body).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SubscribeSessionEvents подписывается на события сессий пользователя.
// Канал закрывается после отмены ctx. Нераспознанные сообщения пропускаются.
func (c *Cache) SubscribeSessionEvents(ctx context.Context, userID string, log *slog.Logger) (<-chan models.SessionEvent, error) {
	const op = "cache.SubscribeSessionEvents"
	pubsub := c.Db.Subscribe(ctx, SessionChannel(userID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make(chan models.SessionEvent)
	go func() {
		defer close(out)
		defer func() {
			if err := pubsub.Close(); err != nil {
				log.Warn("failed to close subscription", sl.Err(err))
			}
		}()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev models.SessionEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Warn("skipping malformed session event", sl.Err(err))
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
