// Package worker runs triage asynchronously: ticket ids are enqueued when a
// ticket is created and a pool of workers drains the queue at least once per
// ticket.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrQueueClosed is returned by Dequeue once the queue stops producing.
var ErrQueueClosed = errors.New("queue closed")

// Queue hands ticket ids from producers to triage workers with at-least-once
// delivery. Enqueue deduplicates: a ticket already waiting is not enqueued
// again.
type Queue interface {
	// Enqueue schedules a ticket for triage. It reports whether the ticket
	// was newly enqueued.
	Enqueue(ctx context.Context, ticketID string) (bool, error)
	// Dequeue blocks until a ticket id is available or the context ends.
	Dequeue(ctx context.Context) (string, error)
	Close() error
}

// MemoryQueue is the in-process variant used in tests and single-node runs.
type MemoryQueue struct {
	mu      sync.Mutex
	ch      chan string
	pending map[string]struct{}
	closed  bool
}

// NewMemoryQueue creates a queue buffered to size.
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 128
	}
	return &MemoryQueue{
		ch:      make(chan string, size),
		pending: make(map[string]struct{}),
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, ticketID string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false, ErrQueueClosed
	}
	if _, dup := q.pending[ticketID]; dup {
		return false, nil
	}
	select {
	case q.ch <- ticketID:
		q.pending[ticketID] = struct{}{}
		return true, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (string, error) {
	select {
	case ticketID, ok := <-q.ch:
		if !ok {
			return "", ErrQueueClosed
		}
		q.mu.Lock()
		delete(q.pending, ticketID)
		q.mu.Unlock()
		return ticketID, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
	return nil
}

const (
	redisQueueKey   = "triage:queue"
	redisDedupKey   = "triage:enqueued:"
	dequeuePollStep = 2 * time.Second
)

// RedisQueue is the multi-node variant: a Redis list carries the ticket ids
// and a SETNX key per ticket suppresses duplicate enqueues while the ticket
// waits.
type RedisQueue struct {
	client   *redis.Client
	dedupTTL time.Duration
}

// NewRedisQueue wraps the given client. dedupTTL bounds how long a duplicate
// enqueue is suppressed; after expiry a lost ticket can be re-enqueued.
func NewRedisQueue(client *redis.Client, dedupTTL time.Duration) *RedisQueue {
	if dedupTTL <= 0 {
		dedupTTL = 5 * time.Minute
	}
	return &RedisQueue{client: client, dedupTTL: dedupTTL}
}

func (q *RedisQueue) Enqueue(ctx context.Context, ticketID string) (bool, error) {
	fresh, err := q.client.SetNX(ctx, redisDedupKey+ticketID, "1", q.dedupTTL).Result()
	if err != nil {
		return false, err
	}
	if !fresh {
		return false, nil
	}
	if err := q.client.LPush(ctx, redisQueueKey, ticketID).Err(); err != nil {
		// roll the marker back so a later enqueue can retry
		q.client.Del(context.WithoutCancel(ctx), redisDedupKey+ticketID)
		return false, err
	}
	return true, nil
}

func (q *RedisQueue) Dequeue(ctx context.Context) (string, error) {
	for {
		// short poll interval so context cancellation is honored promptly
		values, err := q.client.BRPop(ctx, dequeuePollStep, redisQueueKey).Result()
		if errors.Is(err, redis.Nil) {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			continue
		}
		if err != nil {
			return "", err
		}
		ticketID := values[1]
		q.client.Del(ctx, redisDedupKey+ticketID)
		return ticketID, nil
	}
}

func (q *RedisQueue) Close() error { return nil }
