package identitypb

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/magabrotheeeer/accountable/internal/models"
)

// Credentials строит сообщение с email и паролем.
func Credentials(email, password string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"email":    structpb.NewStringValue(email),
		"password": structpb.NewStringValue(password),
	}}
}

// CredentialsFrom извлекает email и пароль из сообщения.
func CredentialsFrom(s *structpb.Struct) (email, password string) {
	return str(s, "email"), str(s, "password")
}

// FromSession кодирует сессию.
func FromSession(sess models.Session) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"token":      structpb.NewStringValue(sess.Token),
		"session_id": structpb.NewStringValue(sess.SessionID),
		"user_id":    structpb.NewStringValue(sess.UserID),
		"email":      structpb.NewStringValue(sess.Email),
		"expires_at": structpb.NewStringValue(sess.ExpiresAt.UTC().Format(time.RFC3339Nano)),
	}}
}

// ToSession декодирует сессию.
func ToSession(s *structpb.Struct) (models.Session, error) {
	const op = "identitypb.ToSession"
	sess := models.Session{
		Token:     str(s, "token"),
		SessionID: str(s, "session_id"),
		UserID:    str(s, "user_id"),
		Email:     str(s, "email"),
	}
	if sess.UserID == "" {
		return models.Session{}, fmt.Errorf("%s: missing user_id", op)
	}
	if raw := str(s, "expires_at"); raw != "" {
		exp, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return models.Session{}, fmt.Errorf("%s: %w", op, err)
		}
		sess.ExpiresAt = exp
	}
	return sess, nil
}

// FromEvent кодирует событие сессии.
func FromEvent(ev models.SessionEvent) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"event":      structpb.NewStringValue(string(ev.Kind)),
		"user_id":    structpb.NewStringValue(ev.UserID),
		"session_id": structpb.NewStringValue(ev.SessionID),
	}}
}

// ToEvent декодирует событие сессии.
func ToEvent(s *structpb.Struct) (models.SessionEvent, error) {
	kind := models.SessionEventKind(str(s, "event"))
	switch kind {
	case models.SessionSignedIn, models.SessionSignedOut, models.SessionRefreshed:
	default:
		return models.SessionEvent{}, fmt.Errorf("identitypb.ToEvent: unknown event %q", kind)
	}
	return models.SessionEvent{
		Kind:      kind,
		UserID:    str(s, "user_id"),
		SessionID: str(s, "session_id"),
	}, nil
}

func str(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}
