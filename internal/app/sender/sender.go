// Package sender собирает отправщик писем, читающий очереди уведомлений о задачах.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/accountable/internal/config"
	"github.com/magabrotheeeer/accountable/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/accountable/internal/lib/resend"
	"github.com/magabrotheeeer/accountable/internal/lib/sl"
	"github.com/magabrotheeeer/accountable/internal/lib/smtp"
	senderservice "github.com/magabrotheeeer/accountable/internal/services/sender"
)

type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.TaskQueues())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	senderService := senderservice.NewSenderService(logger, transport)
	if cfg.ResendAPIKey != "" {
		senderService.WithRelay(resend.NewRelay(cfg.ResendAPIKey, cfg.ResendFrom, logger))
		logger.Info("delivering email via resend")
	}

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	for queue, handler := range a.senderService.Handlers() {
		if err := rabbitmq.ConsumeMessages(ctx, a.ch, queue, a.logger, handler); err != nil {
			a.logger.Error("failed to start consumer", slog.String("queue", queue), sl.Err(err))
			return err
		}
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}

	return nil
}
