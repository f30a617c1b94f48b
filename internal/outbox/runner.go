package outbox

import (
	"context"
	"sync"
)

// Runner owns the processor goroutine. One runner per deployment; the
// poll loop itself is single-threaded so batches never overlap.
type Runner struct {
	processor *Processor
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func NewRunner(processor *Processor) *Runner {
	return &Runner{processor: processor}
}

func (r *Runner) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.processor.Run(ctx)
	}()
}

// Stop signals the processor and waits for the in-flight event, if any,
// to finish.
func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}
