package outbox

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// IntegrationEvent is a durable outbox row written in the same
// transaction as the entity mutation that produced it. Entity ids live
// only inside the payload so the outbox schema stays stable as
// producers and consumers evolve.
//
// Once ProcessedAt is non-null the row is terminal and is never
// reprocessed. Attempts only ever grows; rows at the attempt ceiling
// are skipped at selection time and kept for inspection.
type IntegrationEvent struct {
	ID          uuid.UUID
	EventType   string
	Payload     []byte
	Attempts    int
	Error       sql.NullString
	CreatedAt   time.Time
	ProcessedAt *time.Time
}
