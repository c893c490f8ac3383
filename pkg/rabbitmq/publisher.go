package rabbitmq

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"voice-capture/config"
	"voice-capture/dto"
)

// Publisher emits one event per finalized chunk; the transcription
// collaborator consumes them.
type Publisher interface {
	PublishChunkCompleted(ctx context.Context, message dto.ChunkCompletedMessage) error
	Close() error
}

type publisher struct {
	ch *amqp.Channel
}

func NewPublisher(conn *amqp.Connection, cfg *config.RabbitMQ) (Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	err = ch.ExchangeDeclare(exchangeName, cfg.Kind, true, false, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, err
	}

	return &publisher{ch: ch}, nil
}

func (p *publisher) PublishChunkCompleted(ctx context.Context, message dto.ChunkCompletedMessage) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	err = p.ch.PublishWithContext(ctx, exchangeName, chunkCompletedRoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Debug().
		Str("chunk_id", message.ChunkId.String()).
		Str("routing_key", chunkCompletedRoutingKey).
		Msg("chunk completed event published")
	return nil
}

func (p *publisher) Close() error {
	return p.ch.Close()
}
