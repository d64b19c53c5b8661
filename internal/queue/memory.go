package queue

import (
	"context"
	"fmt"
	"sync"
)

// MemoryQueue is an in-process Consumer/Publisher pair with queue
// semantics: received messages stay invisible until deleted or re-enqueued
// explicitly. It backs tests and single-process setups.
type MemoryQueue struct {
	mu       sync.Mutex
	pending  []Message
	inflight map[string]Message
	nextID   int
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{inflight: make(map[string]Message)}
}

func (q *MemoryQueue) Publish(ctx context.Context, body []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	q.pending = append(q.pending, Message{
		ID:   fmt.Sprintf("mem-%d", q.nextID),
		Body: body,
	})
	return nil
}

func (q *MemoryQueue) Receive(ctx context.Context) ([]Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil, nil
	}
	msg := q.pending[0]
	q.pending = q.pending[1:]
	q.inflight[msg.ID] = msg
	return []Message{msg}, nil
}

func (q *MemoryQueue) Delete(ctx context.Context, msg Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.inflight, msg.ID)
	return nil
}

// Redeliver moves every in-flight message back to pending, imitating a
// visibility timeout expiring.
func (q *MemoryQueue) Redeliver() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for id, msg := range q.inflight {
		q.pending = append(q.pending, msg)
		delete(q.inflight, id)
	}
}

// Depth reports how many messages are waiting for delivery.
func (q *MemoryQueue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Inflight reports how many messages were received but not deleted.
func (q *MemoryQueue) Inflight() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.inflight)
}
