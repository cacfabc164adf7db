// Package client — клиент gRPC identity-сервиса для API и клиентской оболочки.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/accountable/internal/grpc/identitypb"
	"github.com/magabrotheeeer/accountable/internal/lib/sl"
	"github.com/magabrotheeeer/accountable/internal/models"
	"github.com/magabrotheeeer/accountable/internal/session"
)

// IdentityClient реализует session.IdentityService поверх gRPC.
type IdentityClient struct {
	conn *grpc.ClientConn
	api  *identitypb.IdentityClient
	log  *slog.Logger
}

var _ session.IdentityService = (*IdentityClient)(nil)

// NewIdentityClient создаёт клиента. Соединение устанавливается лениво при первом вызове.
func NewIdentityClient(addr string, log *slog.Logger, opts ...grpc.DialOption) (*IdentityClient, error) {
	const op = "client.NewIdentityClient"
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &IdentityClient{conn: conn, api: identitypb.NewIdentityClient(conn), log: log}, nil
}

// Close закрывает соединение.
func (c *IdentityClient) Close() error {
	return c.conn.Close()
}

func (c *IdentityClient) SignUp(ctx context.Context, email, password string) (models.Session, error) {
	resp, err := c.api.SignUp(ctx, identitypb.Credentials(email, password))
	return toSession("client.SignUp", resp, err)
}

func (c *IdentityClient) SignIn(ctx context.Context, email, password string) (models.Session, error) {
	resp, err := c.api.SignIn(ctx, identitypb.Credentials(email, password))
	return toSession("client.SignIn", resp, err)
}

func (c *IdentityClient) SignOut(ctx context.Context, token string) error {
	if _, err := c.api.SignOut(ctx, wrapperspb.String(token)); err != nil {
		return fmt.Errorf("client.SignOut: %w", fromStatus(err))
	}
	return nil
}

func (c *IdentityClient) GetSession(ctx context.Context, token string) (models.Session, error) {
	resp, err := c.api.GetSession(ctx, wrapperspb.String(token))
	return toSession("client.GetSession", resp, err)
}

// WatchSession подписывается на события сессии. Канал закрывается,
// когда сервер завершает поток, соединение рвётся или ctx отменён.
func (c *IdentityClient) WatchSession(ctx context.Context, token string) (<-chan models.SessionEvent, error) {
	const op = "client.WatchSession"
	stream, err := c.api.WatchSession(ctx, wrapperspb.String(token))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, fromStatus(err))
	}

	out := make(chan models.SessionEvent)
	go func() {
		defer close(out)
		for {
			msg, err := stream.Recv()
			if err != nil {
				if !errors.Is(err, io.EOF) && status.Code(err) != codes.Canceled {
					c.log.Warn("session stream closed", sl.Op(op), sl.Err(err))
				}
				return
			}
			ev, err := identitypb.ToEvent(msg)
			if err != nil {
				c.log.Warn("skipping malformed session event", sl.Op(op), sl.Err(err))
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func toSession(op string, resp *structpb.Struct, err error) (models.Session, error) {
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, fromStatus(err))
	}
	sess, err := identitypb.ToSession(resp)
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	return sess, nil
}

// fromStatus переводит коды gRPC в ошибки, которые понимают вызывающие пакеты.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", session.ErrUnauthorized, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", models.ErrValidation, st.Message())
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", models.ErrConflict, st.Message())
	case codes.Unavailable:
		return fmt.Errorf("%w: %s", session.ErrServiceUnavailable, st.Message())
	default:
		return err
	}
}
