package agent

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/domain"
)

func TestRecorderAppendsInOrder(t *testing.T) {
	t.Parallel()
	audits := &mockAuditRepo{}
	recorder := NewRecorder(audits, zap.NewNop(), nil)

	recorder.Record("ticket-1", "trace-1", domain.ActorSystem, domain.AuditTicketCreated, nil)
	recorder.Record("ticket-1", "trace-1", domain.ActorAgent, domain.AuditAgentClassified, map[string]any{
		"category": "billing",
	})
	recorder.Close()

	entries, err := audits.ListByTicket(context.Background(), "ticket-1")
	if err != nil {
		t.Fatalf("ListByTicket() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Action != domain.AuditTicketCreated || entries[1].Action != domain.AuditAgentClassified {
		t.Errorf("order = %v, %v", entries[0].Action, entries[1].Action)
	}
	if entries[0].Meta == nil {
		t.Error("nil meta must be recorded as an empty map")
	}
	if entries[1].Meta["category"] != "billing" {
		t.Errorf("meta = %v", entries[1].Meta)
	}
	if entries[0].Timestamp.IsZero() {
		t.Error("entry must be stamped at record time")
	}
	if entries[0].Timestamp.After(entries[1].Timestamp) {
		t.Error("timestamps must be monotonic across sequential records")
	}
}

func TestRecorderCloseIsIdempotent(t *testing.T) {
	t.Parallel()
	audits := &mockAuditRepo{}
	recorder := NewRecorder(audits, zap.NewNop(), nil)

	recorder.Record("ticket-1", "trace-1", domain.ActorSystem, domain.AuditTriageFailed, nil)
	recorder.Close()
	recorder.Close()

	entries, _ := audits.ListByTicket(context.Background(), "ticket-1")
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
}

type stallAuditRepo struct {
	mockAuditRepo
	gate chan struct{}
}

func (s *stallAuditRepo) Append(ctx context.Context, entry *domain.AuditLogEntry) error {
	<-s.gate
	return s.mockAuditRepo.Append(ctx, entry)
}

func TestRecorderDropsWhenBufferFull(t *testing.T) {
	t.Parallel()
	audits := &stallAuditRepo{gate: make(chan struct{})}
	recorder := NewRecorder(audits, zap.NewNop(), nil)

	// one entry stalls inside Append, the rest fill the buffer
	for i := 0; i < recorderBuffer+1; i++ {
		recorder.Record("ticket-1", "trace-1", domain.ActorSystem, domain.AuditTicketCreated, nil)
	}
	waitForStalledAppend(t, recorder)

	// buffer is full now, so this one is dropped without blocking
	done := make(chan struct{})
	go func() {
		recorder.Record("ticket-1", "trace-1", domain.ActorSystem, domain.AuditTicketCreated, nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Record blocked on a full buffer")
	}

	close(audits.gate)
	recorder.Close()

	entries, _ := audits.ListByTicket(context.Background(), "ticket-1")
	if len(entries) != recorderBuffer+1 {
		t.Errorf("entries = %d, want %d queued, overflow dropped", len(entries), recorderBuffer+1)
	}
}

// waitForStalledAppend blocks until the background writer has pulled one
// entry off the channel, leaving the buffer exactly full.
func waitForStalledAppend(t *testing.T, r *Recorder) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("writer never picked up the stalled entry")
		case <-time.After(5 * time.Millisecond):
			if len(r.entries) == recorderBuffer {
				return
			}
		}
	}
}
