// Package sender отправляет пользователям письма о задачах из очередей уведомлений.
package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/accountable/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/accountable/internal/lib/sl"
	"github.com/magabrotheeeer/accountable/internal/lib/smtp"
	"github.com/magabrotheeeer/accountable/internal/metrics"
	"github.com/magabrotheeeer/accountable/internal/models"
)

const (
	timeLayout   = "Jan 2, 2006 15:04 MST"
	relayTimeout = 15 * time.Second
)

// Relay отправляет письмо через внешний почтовый API.
type Relay interface {
	Send(ctx context.Context, to []string, subject, text string) error
}

// SenderService формирует и отправляет письма.
type SenderService struct {
	transport smtp.Dialer
	relay     Relay
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport smtp.Dialer) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// WithRelay переключает отправку с SMTP на relay.
func (s *SenderService) WithRelay(relay Relay) *SenderService {
	s.relay = relay
	return s
}

// Handlers возвращает обработчики очередей отправщика.
func (s *SenderService) Handlers() map[string]func([]byte) error {
	return map[string]func([]byte) error{
		rabbitmq.QueueTaskUpcoming: s.SendTaskUpcoming,
		rabbitmq.QueueTaskMissed:   s.SendTaskMissed,
	}
}

// SendTaskUpcoming напоминает о предстоящем звонке по задаче.
func (s *SenderService) SendTaskUpcoming(body []byte) error {
	notice, err := decodeNotice(body)
	if err != nil {
		return err
	}
	subject := "Upcoming accountability call: " + notice.Title
	text := fmt.Sprintf("Hi!\n\nYour accountability call for %q is scheduled at %s.\n"+
		"Be ready to show your progress. The task must be verified before %s.\n\n- Accountable",
		notice.Title,
		notice.ScheduledAt.UTC().Format(timeLayout),
		notice.Deadline.UTC().Format(timeLayout),
	)
	err = s.sendEmail([]string{notice.Email}, subject, text)
	metrics.EmailsSent.WithLabelValues(rabbitmq.QueueTaskUpcoming, metrics.Result(err)).Inc()
	return err
}

// SendTaskMissed сообщает, что задача не была подтверждена до дедлайна.
func (s *SenderService) SendTaskMissed(body []byte) error {
	notice, err := decodeNotice(body)
	if err != nil {
		return err
	}
	subject := "Task missed: " + notice.Title
	text := fmt.Sprintf("Hi!\n\nThe deadline for %q passed at %s without verification, "+
		"so the task is marked as missed.\nSchedule a new one from your dashboard.\n\n- Accountable",
		notice.Title,
		notice.Deadline.UTC().Format(timeLayout),
	)
	err = s.sendEmail([]string{notice.Email}, subject, text)
	metrics.EmailsSent.WithLabelValues(rabbitmq.QueueTaskMissed, metrics.Result(err)).Inc()
	return err
}

func decodeNotice(body []byte) (models.TaskNotice, error) {
	var notice models.TaskNotice
	if err := json.Unmarshal(body, &notice); err != nil {
		return models.TaskNotice{}, fmt.Errorf("error unmarshalling message: %w", err)
	}
	if notice.Email == "" {
		return models.TaskNotice{}, fmt.Errorf("notice %s has no recipient", notice.TaskID)
	}
	return notice, nil
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	if s.relay != nil {
		ctx, cancel := context.WithTimeout(context.Background(), relayTimeout)
		defer cancel()
		if err := s.relay.Send(ctx, to, subject, bodyText); err != nil {
			s.log.Error("failed to send email via relay", slog.Any("to", to), sl.Err(err))
			return err
		}
		s.log.Info("email sent successfully", slog.Any("to", to))
		return nil
	}

	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"Date: " + time.Now().UTC().Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			s.log.Debug("smtp client close", sl.Err(err))
		}
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", s.transport.GetSMTPUser()), sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}
	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
