package outbox

import (
	"context"
	"fmt"
	"time"

	"buildtrack/config"
	domain "buildtrack/internal/domain/outbox"
	"buildtrack/internal/events"
	"buildtrack/internal/repository"
	"buildtrack/pkg/logger"
)

// Handler processes one decoded event payload. Handlers must be
// idempotent: a crash between handling and the processed mark means the
// event is delivered again.
type Handler interface {
	Handle(ctx context.Context, eventType string, payload interface{}) error
}

// Processor polls the outbox and dispatches unprocessed events to
// registered handlers, oldest first. One event's failure never aborts
// the batch; failures are recorded on the event row and count against
// the attempt ceiling.
type Processor struct {
	repo        repository.OutboxRepository
	handlers    map[string]Handler
	log         *logger.Logger
	clock       func() time.Time
	interval    time.Duration
	batchSize   int
	maxAttempts int
}

func NewProcessor(repo repository.OutboxRepository, cfg config.OutboxConfig, log *logger.Logger) *Processor {
	return &Processor{
		repo:        repo,
		handlers:    make(map[string]Handler),
		log:         log,
		clock:       time.Now,
		interval:    cfg.PollInterval,
		batchSize:   cfg.BatchSize,
		maxAttempts: cfg.MaxAttempts,
	}
}

// Register binds a handler to an event type. Not safe to call after Run.
func (p *Processor) Register(eventType string, h Handler) {
	p.handlers[eventType] = h
}

func (p *Processor) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch runs one poll cycle. Exported so a deployment can drive
// polling from an external scheduler instead of Run.
func (p *Processor) ProcessBatch(ctx context.Context) {
	batch, err := p.repo.PendingBatch(ctx, p.batchSize, p.maxAttempts)
	if err != nil {
		if p.log != nil {
			p.log.Errorf("outbox: selecting pending events: %v", err)
		}
		return
	}

	for _, e := range batch {
		// cancellation stops between events, never mid-event
		select {
		case <-ctx.Done():
			return
		default:
		}
		p.processEvent(ctx, e)
	}
}

func (p *Processor) processEvent(ctx context.Context, e domain.IntegrationEvent) {
	payload, err := events.Decode(e.EventType, e.Payload)
	if err != nil {
		p.recordFailure(ctx, e, err)
		return
	}

	handler, ok := p.handlers[e.EventType]
	if payload == nil || !ok {
		// Unrecognized events must never poison the queue.
		if p.log != nil {
			p.log.Warnf("outbox: no handler for event type %q, marking processed", e.EventType)
		}
		p.markProcessed(ctx, e)
		return
	}

	if err := invoke(ctx, handler, e.EventType, payload); err != nil {
		p.recordFailure(ctx, e, err)
		return
	}
	p.markProcessed(ctx, e)
}

// invoke converts handler panics into errors so a misbehaving handler
// counts against its event's attempts instead of killing the loop.
func invoke(ctx context.Context, h Handler, eventType string, payload interface{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h.Handle(ctx, eventType, payload)
}

func (p *Processor) markProcessed(ctx context.Context, e domain.IntegrationEvent) {
	if err := p.repo.MarkProcessed(ctx, e.ID, p.clock()); err != nil && p.log != nil {
		p.log.Errorf("outbox: marking event %s processed: %v", e.ID, err)
	}
}

func (p *Processor) recordFailure(ctx context.Context, e domain.IntegrationEvent, cause error) {
	if p.log != nil {
		p.log.Errorf("outbox: event %s (%s) attempt %d failed: %v", e.ID, e.EventType, e.Attempts+1, cause)
	}
	if err := p.repo.RecordFailure(ctx, e.ID, cause.Error()); err != nil && p.log != nil {
		p.log.Errorf("outbox: recording failure for event %s: %v", e.ID, err)
	}
}
