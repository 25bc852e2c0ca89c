package agent

import (
	"context"
	"sync"
	"testing"
)

func TestMemoryLockerExcludesConcurrentAcquire(t *testing.T) {
	t.Parallel()
	locker := NewMemoryLocker()
	ctx := context.Background()

	release, acquired, err := locker.Acquire(ctx, "ticket-1")
	if err != nil || !acquired {
		t.Fatalf("Acquire() = %v, %v, want acquired", acquired, err)
	}

	if _, again, _ := locker.Acquire(ctx, "ticket-1"); again {
		t.Fatal("second Acquire on a held lease must fail")
	}

	// an unrelated ticket is not blocked
	otherRelease, acquired, err := locker.Acquire(ctx, "ticket-2")
	if err != nil || !acquired {
		t.Fatalf("Acquire(ticket-2) = %v, %v, want acquired", acquired, err)
	}
	otherRelease()

	release()
	release, acquired, err = locker.Acquire(ctx, "ticket-1")
	if err != nil || !acquired {
		t.Fatalf("Acquire after release = %v, %v, want acquired", acquired, err)
	}
	release()
}

func TestMemoryLockerSingleWinnerUnderContention(t *testing.T) {
	t.Parallel()
	locker := NewMemoryLocker()

	const goroutines = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, acquired, _ := locker.Acquire(context.Background(), "ticket-1"); acquired {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("winners = %d, want exactly 1", winners)
	}
}
