package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherFansOutToAllSubscribers(t *testing.T) {
	t.Parallel()
	d := NewInMemoryDispatcher()

	var first, second []string
	d.Subscribe(EventTicketCreated, func(ctx context.Context, e Event) error {
		first = append(first, e.TicketID)
		return nil
	})
	d.Subscribe(EventTicketCreated, func(ctx context.Context, e Event) error {
		second = append(second, e.TicketID)
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: "ticket-1"})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Errorf("handler calls = %d, %d, want 1 each", len(first), len(second))
	}
}

func TestDispatcherRoutesByEventType(t *testing.T) {
	t.Parallel()
	d := NewInMemoryDispatcher()

	calls := 0
	d.Subscribe(EventTicketCreated, func(ctx context.Context, e Event) error {
		calls++
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventTicketStatusChanged, TicketID: "ticket-1"}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if calls != 0 {
		t.Errorf("handler called for a foreign event type")
	}
}

func TestDispatcherIsolatesFailingHandlers(t *testing.T) {
	t.Parallel()
	d := NewInMemoryDispatcher()

	survived := false
	d.Subscribe(EventTriageCompleted, func(ctx context.Context, e Event) error {
		return errors.New("handler blew up")
	})
	d.Subscribe(EventTriageCompleted, func(ctx context.Context, e Event) error {
		survived = true
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventTriageCompleted}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if !survived {
		t.Error("a failing handler must not block later subscribers")
	}
}

func TestDispatcherPublishWithNoSubscribers(t *testing.T) {
	t.Parallel()
	d := NewInMemoryDispatcher()
	if err := d.Publish(context.Background(), Event{Type: EventTicketReplyAdded}); err != nil {
		t.Errorf("Publish() error = %v", err)
	}
}
