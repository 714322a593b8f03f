package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/aesthiq-api/internal/model"
	"github.com/jwalitptl/aesthiq-api/internal/repository"
)

// Emitter records domain events for asynchronous publication.
type Emitter interface {
	Emit(ctx context.Context, eventType string, payload interface{}) error
}

type Service struct {
	outboxRepo repository.OutboxRepository
	logger     zerolog.Logger
}

func NewService(outboxRepo repository.OutboxRepository, logger zerolog.Logger) *Service {
	return &Service{
		outboxRepo: outboxRepo,
		logger:     logger.With().Str("component", "events").Logger(),
	}
}

// Emit writes the event to the outbox; the worker publishes it.
func (s *Service) Emit(ctx context.Context, eventType string, payload interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	event := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   payloadJSON,
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}

	s.logger.Debug().Str("event_id", event.ID.String()).Str("event_type", eventType).Msg("event recorded")
	return nil
}

// EmitBestEffort logs instead of failing; the triggering write has already committed.
func EmitBestEffort(ctx context.Context, e Emitter, logger zerolog.Logger, eventType string, payload interface{}) {
	if err := e.Emit(ctx, eventType, payload); err != nil {
		logger.Error().Err(err).Str("event_type", eventType).Msg("failed to record event")
	}
}
