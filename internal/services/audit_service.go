package services

import (
	"context"

	"buildtrack/internal/domain/outbox"
	"buildtrack/internal/repository"
)

// AuditService exposes the outbox for inspection. Poisoned rows, those
// at the attempt ceiling with processed_at still null, are only visible
// here.
type AuditService struct {
	outboxRepo repository.OutboxRepository
}

func NewAuditService(outboxRepo repository.OutboxRepository) *AuditService {
	return &AuditService{outboxRepo: outboxRepo}
}

func (s *AuditService) ListEvents(ctx context.Context, onlyUnprocessed bool, limit int) ([]outbox.IntegrationEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.outboxRepo.List(ctx, onlyUnprocessed, limit)
}
