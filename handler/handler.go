package handler

import (
	"context"
	"encoding/json"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"voice-capture/dto"
	"voice-capture/service"
)

type ServiceDependencies struct {
	TranscriptService service.TranscriptService
}

// TranscriptResultHandler stores transcription results arriving from the
// transcription collaborator. Non-retryable failures are logged and acked so
// the consumer does not spin on a message that can never succeed.
func TranscriptResultHandler(ctx context.Context, msg amqp.Delivery, deps ServiceDependencies) error {
	var result dto.TranscriptResultMessage
	if err := json.Unmarshal(msg.Body, &result); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal transcript result message")
		return nil
	}

	zerolog.Ctx(ctx).Info().
		Str("chunk_id", result.ChunkId.String()).
		Int("segments", len(result.Segments)).
		Msg("received transcript result message")

	err := deps.TranscriptService.Ingest(ctx, result)
	if err != nil {
		if errors.Is(err, service.ErrNonRetryable) {
			zerolog.Ctx(ctx).Error().Err(err).Msg("dropping non-retryable transcript result")
			return nil
		}
		return err
	}

	return nil
}
