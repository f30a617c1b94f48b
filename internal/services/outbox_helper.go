package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"buildtrack/internal/domain/outbox"
	"buildtrack/internal/repository"
)

// appendOutboxEvent writes an integration event inside the caller's
// transaction, so the event and the entity mutation commit or roll
// back together.
func appendOutboxEvent(ctx context.Context, repo repository.OutboxRepository, tx repository.DBTX, eventType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return repo.Create(ctx, tx, &outbox.IntegrationEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   data,
		CreatedAt: time.Now(),
	})
}
