package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/agent"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/events"
)

func TestMemoryQueueDeduplicatesPendingTickets(t *testing.T) {
	t.Parallel()
	q := NewMemoryQueue(8)
	defer q.Close()

	ctx := context.Background()
	fresh, err := q.Enqueue(ctx, "ticket-1")
	if err != nil || !fresh {
		t.Fatalf("first enqueue: fresh=%v err=%v", fresh, err)
	}
	fresh, err = q.Enqueue(ctx, "ticket-1")
	if err != nil {
		t.Fatalf("duplicate enqueue error: %v", err)
	}
	if fresh {
		t.Error("duplicate enqueue of a pending ticket must be suppressed")
	}

	got, err := q.Dequeue(ctx)
	if err != nil || got != "ticket-1" {
		t.Fatalf("Dequeue() = %q, %v", got, err)
	}

	// once dequeued the ticket may be enqueued again
	fresh, err = q.Enqueue(ctx, "ticket-1")
	if err != nil || !fresh {
		t.Errorf("re-enqueue after dequeue: fresh=%v err=%v", fresh, err)
	}
}

func TestMemoryQueueDequeueHonorsContext(t *testing.T) {
	t.Parallel()
	q := NewMemoryQueue(1)
	defer q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := q.Dequeue(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Dequeue() error = %v, want deadline exceeded", err)
	}
}

func TestMemoryQueueClosed(t *testing.T) {
	t.Parallel()
	q := NewMemoryQueue(1)
	if err := q.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := q.Enqueue(context.Background(), "ticket-1"); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Enqueue() error = %v, want ErrQueueClosed", err)
	}
	if _, err := q.Dequeue(context.Background()); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Dequeue() error = %v, want ErrQueueClosed", err)
	}
}

type mockTriager struct {
	mu    sync.Mutex
	seen  []string
	err   error
	sawIt chan string
}

func (m *mockTriager) Triage(ctx context.Context, ticketID string) (*agent.Result, error) {
	m.mu.Lock()
	m.seen = append(m.seen, ticketID)
	m.mu.Unlock()
	if m.sawIt != nil {
		m.sawIt <- ticketID
	}
	if m.err != nil {
		return nil, m.err
	}
	return &agent.Result{TicketID: ticketID}, nil
}

func TestPoolDrainsQueue(t *testing.T) {
	t.Parallel()
	q := NewMemoryQueue(8)
	defer q.Close()
	triager := &mockTriager{sawIt: make(chan string, 8)}

	pool := NewPool(q, triager, zap.NewNop(), 2)
	pool.Start(context.Background())
	defer pool.Stop()

	for _, id := range []string{"a", "b", "c"} {
		if _, err := q.Enqueue(context.Background(), id); err != nil {
			t.Fatalf("Enqueue(%q) error = %v", id, err)
		}
	}

	got := map[string]bool{}
	for i := 0; i < 3; i++ {
		select {
		case id := <-triager.sawIt:
			got[id] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for triage, saw %v", got)
		}
	}
	for _, id := range []string{"a", "b", "c"} {
		if !got[id] {
			t.Errorf("ticket %q was never triaged", id)
		}
	}
}

func TestPoolSurvivesTriageErrors(t *testing.T) {
	t.Parallel()
	q := NewMemoryQueue(8)
	defer q.Close()
	triager := &mockTriager{err: errors.New("boom"), sawIt: make(chan string, 8)}

	pool := NewPool(q, triager, zap.NewNop(), 1)
	pool.Start(context.Background())
	defer pool.Stop()

	for _, id := range []string{"a", "b"} {
		if _, err := q.Enqueue(context.Background(), id); err != nil {
			t.Fatalf("Enqueue(%q) error = %v", id, err)
		}
	}
	for i := 0; i < 2; i++ {
		select {
		case <-triager.sawIt:
		case <-time.After(2 * time.Second):
			t.Fatal("worker stopped after a triage error")
		}
	}
}

func TestRegisterEnqueuerSchedulesCreatedTickets(t *testing.T) {
	t.Parallel()
	q := NewMemoryQueue(8)
	defer q.Close()
	dispatcher := events.NewInMemoryDispatcher()
	RegisterEnqueuer(dispatcher, q, zap.NewNop())

	event := events.Event{Type: events.EventTicketCreated, TicketID: "ticket-9"}
	if err := dispatcher.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	got, err := q.Dequeue(context.Background())
	if err != nil || got != "ticket-9" {
		t.Fatalf("Dequeue() = %q, %v", got, err)
	}
}
