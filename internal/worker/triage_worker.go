package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/agent"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/events"
)

const triageRunBudget = 60 * time.Second

// Triager is implemented by the agent service.
type Triager interface {
	Triage(ctx context.Context, ticketID string) (*agent.Result, error)
}

// Pool drains the triage queue with a fixed number of workers.
type Pool struct {
	queue       Queue
	triager     Triager
	logger      *zap.Logger
	concurrency int

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewPool builds a worker pool; Start launches it.
func NewPool(queue Queue, triager Triager, logger *zap.Logger, concurrency int) *Pool {
	if concurrency <= 0 {
		concurrency = 2
	}
	return &Pool{
		queue:       queue,
		triager:     triager,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Start launches the workers. They run until Stop is called or the parent
// context ends.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.concurrency; i++ {
		p.wg.Add(1)
		go p.work(ctx, i)
	}
}

// Stop cancels the workers and waits for in-flight triage runs to finish.
func (p *Pool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

func (p *Pool) work(ctx context.Context, id int) {
	defer p.wg.Done()
	L := p.logger.With(zap.Int("worker", id))
	for {
		ticketID, err := p.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, ErrQueueClosed) {
				return
			}
			L.Error("dequeue failed", zap.Error(err))
			select {
			case <-time.After(time.Second):
				continue
			case <-ctx.Done():
				return
			}
		}
		p.runOne(ctx, L, ticketID)
	}
}

// runOne executes a single triage with its own deadline so a stuck run cannot
// stall the worker forever.
func (p *Pool) runOne(ctx context.Context, L *zap.Logger, ticketID string) {
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), triageRunBudget)
	defer cancel()

	_, err := p.triager.Triage(runCtx, ticketID)
	switch {
	case err == nil:
	case errors.Is(err, agent.ErrTriageInProgress):
		L.Info("triage skipped, lease held elsewhere", zap.String("ticket_id", ticketID))
	case errors.Is(err, agent.ErrTicketNotFound):
		L.Warn("triage skipped, ticket gone", zap.String("ticket_id", ticketID))
	default:
		L.Error("triage failed", zap.String("ticket_id", ticketID), zap.Error(err))
	}
}

// RegisterEnqueuer subscribes ticket-created events to the queue, so every
// new ticket is scheduled for triage exactly once per creation.
func RegisterEnqueuer(dispatcher events.Dispatcher, queue Queue, logger *zap.Logger) {
	dispatcher.Subscribe(events.EventTicketCreated, func(ctx context.Context, event events.Event) error {
		fresh, err := queue.Enqueue(ctx, event.TicketID)
		if err != nil {
			logger.Error("failed to enqueue ticket for triage",
				zap.String("ticket_id", event.TicketID), zap.Error(err))
			return err
		}
		if !fresh {
			logger.Debug("ticket already queued for triage", zap.String("ticket_id", event.TicketID))
		}
		return nil
	})
}
