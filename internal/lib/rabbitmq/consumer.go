package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/accountable/internal/lib/sl"
)

// maxInFlight ограничивает число одновременно обрабатываемых сообщений.
const maxInFlight = 10

// ConsumeMessages читает очередь queueName и передаёт тела сообщений в handler.
// Успешно обработанные сообщения подтверждаются, при ошибке сообщение возвращается в очередь.
// Чтение прекращается при отмене ctx или закрытии канала.
func ConsumeMessages(ctx context.Context, ch *amqp.Channel, queueName string, log *slog.Logger, handler func([]byte) error) error {
	const op = "rabbitmq.ConsumeMessages"
	deliveries, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	go dispatch(ctx, deliveries, log.With(slog.String("queue", queueName)), handler)
	return nil
}

// Acknowledger — подтверждение одного сообщения.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func dispatch(ctx context.Context, deliveries <-chan amqp.Delivery, log *slog.Logger, handler func([]byte) error) {
	sem := make(chan struct{}, maxInFlight)
	for {
		select {
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			sem <- struct{}{}
			go func(d amqp.Delivery) {
				defer func() { <-sem }()
				handle(d.Body, d, log, handler)
			}(d)
		case <-ctx.Done():
			return
		}
	}
}

func handle(body []byte, ack Acknowledger, log *slog.Logger, handler func([]byte) error) {
	if err := handler(body); err != nil {
		log.Error("failed to handle message", sl.Err(err))
		if nackErr := ack.Nack(false, true); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
		return
	}
	if ackErr := ack.Ack(false); ackErr != nil {
		log.Error("failed to ack message", sl.Err(ackErr))
	}
}
