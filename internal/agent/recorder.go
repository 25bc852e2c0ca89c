package agent

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/domain"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/observability"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/repository"
)

const (
	recorderBuffer       = 256
	recorderAppendBudget = 5 * time.Second
)

// Recorder is the append-only audit sink for pipeline events. Appends are
// fire-and-forget: Record never blocks the pipeline and a failed write is
// logged, counted and dropped, never retried synchronously and never
// surfaced to the caller.
type Recorder struct {
	audits  repository.AuditLogRepository
	logger  *zap.Logger
	metrics *observability.Metrics

	entries   chan *domain.AuditLogEntry
	done      chan struct{}
	closeOnce sync.Once
}

// NewRecorder starts the background writer.
func NewRecorder(audits repository.AuditLogRepository, logger *zap.Logger, metrics *observability.Metrics) *Recorder {
	r := &Recorder{
		audits:  audits,
		logger:  logger,
		metrics: metrics,
		entries: make(chan *domain.AuditLogEntry, recorderBuffer),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// Record queues one audit entry, stamped now. When the buffer is full the
// entry is dropped rather than blocking the pipeline.
func (r *Recorder) Record(ticketID, traceID string, actor domain.AuditActor, action domain.AuditAction, meta map[string]any) {
	if meta == nil {
		meta = map[string]any{}
	}
	entry := &domain.AuditLogEntry{
		TicketID:  ticketID,
		TraceID:   traceID,
		Actor:     actor,
		Action:    action,
		Meta:      meta,
		Timestamp: time.Now(),
	}
	select {
	case r.entries <- entry:
	default:
		r.metrics.AuditDropped()
		r.logger.Warn("audit buffer full, entry dropped",
			zap.String("ticket_id", ticketID),
			zap.String("action", string(action)))
	}
}

// Close stops accepting entries and drains the buffer.
func (r *Recorder) Close() {
	r.closeOnce.Do(func() {
		close(r.entries)
		<-r.done
	})
}

func (r *Recorder) run() {
	defer close(r.done)
	for entry := range r.entries {
		ctx, cancel := context.WithTimeout(context.Background(), recorderAppendBudget)
		if err := r.audits.Append(ctx, entry); err != nil {
			r.logger.Warn("audit append failed",
				zap.String("ticket_id", entry.TicketID),
				zap.String("action", string(entry.Action)),
				zap.Error(err))
		}
		cancel()
	}
}
