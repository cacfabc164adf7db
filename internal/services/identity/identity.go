// Package identity реализует бизнес-логику identity-сервиса: регистрацию,
// вход и выход, проверку сессии и рассылку событий изменения сессии.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/accountable/internal/lib/jwt"
	"github.com/magabrotheeeer/accountable/internal/lib/password"
	"github.com/magabrotheeeer/accountable/internal/lib/sl"
	"github.com/magabrotheeeer/accountable/internal/models"
)

var (
	// ErrInvalidCredentials — неверный email или пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken — токен не прошёл проверку, истёк или отозван.
	ErrInvalidToken = errors.New("invalid session token")
)

// UserRepository — хранилище учётных записей.
type UserRepository interface {
	CreateUser(ctx context.Context, email, passwordHash string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}

// ProfileRepository — хранилище профилей.
type ProfileRepository interface {
	CreateProfile(ctx context.Context, p models.Profile) error
}

// SessionStore хранит отозванные сессии и рассылает события сессий.
type SessionStore interface {
	RevokeSession(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
	PublishSessionEvent(ctx context.Context, ev models.SessionEvent) error
	SubscribeSessionEvents(ctx context.Context, userID string, log *slog.Logger) (<-chan models.SessionEvent, error)
}

type credentials struct {
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,min=6,max=72"`
}

// Service отвечает за учётные записи и сессии.
type Service struct {
	log      *slog.Logger
	users    UserRepository
	profiles ProfileRepository
	sessions SessionStore
	tokens   jwt.Maker
	validate *validator.Validate
	now      func() time.Time
}

// New создаёт Service.
func New(log *slog.Logger, users UserRepository, profiles ProfileRepository, sessions SessionStore, tokens jwt.Maker) *Service {
	return &Service{
		log:      log,
		users:    users,
		profiles: profiles,
		sessions: sessions,
		tokens:   tokens,
		validate: validator.New(),
		now:      time.Now,
	}
}

// SignUp создаёт учётную запись, заводит профиль и открывает сессию.
// Ошибка создания профиля логируется и не прерывает регистрацию:
// клиент в этом случае получает профиль по умолчанию.
func (s *Service) SignUp(ctx context.Context, email, pass string) (models.Session, error) {
	const op = "identity.SignUp"
	log := s.log.With(sl.Op(op))

	if err := s.validate.Struct(credentials{Email: email, Password: pass}); err != nil {
		return models.Session{}, fmt.Errorf("%s: %w: %v", op, models.ErrValidation, err)
	}
	hash, err := password.GetHash(pass)
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.users.CreateUser(ctx, email, hash)
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	profile := models.DefaultProfile(user.ID, user.Email, user.CreatedAt)
	if err := s.profiles.CreateProfile(ctx, profile); err != nil {
		log.Error("failed to provision profile", slog.String("user_id", user.ID), sl.Err(err))
	}

	log.Info("user signed up", slog.String("user_id", user.ID))
	return s.openSession(ctx, user)
}

// SignIn проверяет пароль и открывает новую сессию.
func (s *Service) SignIn(ctx context.Context, email, pass string) (models.Session, error) {
	const op = "identity.SignIn"

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return models.Session{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, pass); err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	return s.openSession(ctx, user)
}

func (s *Service) openSession(ctx context.Context, user models.User) (models.Session, error) {
	const op = "identity.openSession"

	token, claims, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	sess := sessionFromClaims(token, claims)
	s.publish(ctx, models.SessionEvent{Kind: models.SessionSignedIn, UserID: user.ID, SessionID: sess.SessionID})
	return sess, nil
}

// SignOut отзывает сессию до истечения её токена.
func (s *Service) SignOut(ctx context.Context, token string) error {
	const op = "identity.SignOut"

	sess, err := s.GetSession(ctx, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.sessions.RevokeSession(ctx, sess.SessionID, sess.ExpiresAt.Sub(s.now())); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.publish(ctx, models.SessionEvent{Kind: models.SessionSignedOut, UserID: sess.UserID, SessionID: sess.SessionID})
	return nil
}

// GetSession проверяет токен и возвращает описание активной сессии.
func (s *Service) GetSession(ctx context.Context, token string) (models.Session, error) {
	const op = "identity.GetSession"

	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w: %v", op, ErrInvalidToken, err)
	}
	revoked, err := s.sessions.IsRevoked(ctx, claims.SessionID())
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	if revoked {
		return models.Session{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	return sessionFromClaims(token, claims), nil
}

// Watch подписывает владельца токена на события его сессий.
// Поток завершается после выхода из этой сессии или отмены ctx.
func (s *Service) Watch(ctx context.Context, token string) (<-chan models.SessionEvent, error) {
	const op = "identity.Watch"

	sess, err := s.GetSession(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ctx, cancel := context.WithCancel(ctx)
	events, err := s.sessions.SubscribeSessionEvents(ctx, sess.UserID, s.log)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make(chan models.SessionEvent)
	go func() {
		defer cancel()
		defer close(out)
		for ev := range events {
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
			if ev.Kind == models.SessionSignedOut && ev.SessionID == sess.SessionID {
				return
			}
		}
	}()
	return out, nil
}

func (s *Service) publish(ctx context.Context, ev models.SessionEvent) {
	if err := s.sessions.PublishSessionEvent(ctx, ev); err != nil {
		s.log.Warn("failed to publish session event",
			slog.String("kind", string(ev.Kind)),
			slog.String("user_id", ev.UserID),
			sl.Err(err),
		)
	}
}

func sessionFromClaims(token string, claims *jwt.SessionClaims) models.Session {
	sess := models.Session{
		Token:     token,
		SessionID: claims.SessionID(),
		UserID:    claims.UserID,
		Email:     claims.Email,
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess
}
