// Package server реализует gRPC-сервер identity-сервиса.
//
// IdentityServer переводит сообщения protobuf в вызовы IdentityService,
// логирует операции и сопоставляет доменные ошибки кодам gRPC.
package server

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/accountable/internal/grpc/identitypb"
	"github.com/magabrotheeeer/accountable/internal/lib/sl"
	"github.com/magabrotheeeer/accountable/internal/models"
	identitysvc "github.com/magabrotheeeer/accountable/internal/services/identity"
)

// IdentityService описывает бизнес-логику identity-сервиса.
type IdentityService interface {
	SignUp(ctx context.Context, email, password string) (models.Session, error)
	SignIn(ctx context.Context, email, password string) (models.Session, error)
	SignOut(ctx context.Context, token string) error
	GetSession(ctx context.Context, token string) (models.Session, error)
	Watch(ctx context.Context, token string) (<-chan models.SessionEvent, error)
}

// IdentityServer реализует identitypb.IdentityServer.
type IdentityServer struct {
	svc IdentityService
	log *slog.Logger
}

var _ identitypb.IdentityServer = (*IdentityServer)(nil)

// NewIdentityServer создаёт сервер.
func NewIdentityServer(svc IdentityService, log *slog.Logger) *IdentityServer {
	return &IdentityServer{svc: svc, log: log}
}

// SignUp регистрирует пользователя и возвращает новую сессию.
func (s *IdentityServer) SignUp(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	email, pass := identitypb.CredentialsFrom(req)
	s.log.Info("SignUp request", slog.String("email", email))

	sess, err := s.svc.SignUp(ctx, email, pass)
	if err != nil {
		s.log.Error("SignUp failed", slog.String("email", email), sl.Err(err))
		return nil, toStatus(err)
	}
	return identitypb.FromSession(sess), nil
}

// SignIn проверяет учётные данные и возвращает новую сессию.
func (s *IdentityServer) SignIn(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	email, pass := identitypb.CredentialsFrom(req)
	s.log.Info("SignIn request", slog.String("email", email))

	sess, err := s.svc.SignIn(ctx, email, pass)
	if err != nil {
		s.log.Error("SignIn failed", slog.String("email", email), sl.Err(err))
		return nil, toStatus(err)
	}
	return identitypb.FromSession(sess), nil
}

// SignOut отзывает сессию.
func (s *IdentityServer) SignOut(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.svc.SignOut(ctx, req.GetValue()); err != nil {
		s.log.Error("SignOut failed", sl.Err(err))
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

// GetSession проверяет токен.
func (s *IdentityServer) GetSession(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	sess, err := s.svc.GetSession(ctx, req.GetValue())
	if err != nil {
		s.log.Debug("GetSession rejected", sl.Err(err))
		return nil, toStatus(err)
	}
	return identitypb.FromSession(sess), nil
}

// WatchSession отправляет события сессий владельца токена до закрытия потока.
func (s *IdentityServer) WatchSession(req *wrapperspb.StringValue, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ctx := stream.Context()
	events, err := s.svc.Watch(ctx, req.GetValue())
	if err != nil {
		s.log.Debug("WatchSession rejected", sl.Err(err))
		return toStatus(err)
	}
	for ev := range events {
		if err := stream.Send(identitypb.FromEvent(ev)); err != nil {
			s.log.Warn("failed to send session event", sl.Err(err))
			return err
		}
	}
	return nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, identitysvc.ErrInvalidCredentials), errors.Is(err, identitysvc.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, models.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, models.ErrConflict):
		return status.Error(codes.AlreadyExists, "email already registered")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
