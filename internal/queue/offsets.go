package queue

import (
	"sync"

	"github.com/segmentio/kafka-go"
)

// offsetTracker gates consumer-group commits. Committing an offset marks
// everything before it on the partition as consumed, so a commit must never
// jump past a fetched message that was retained for redelivery. The tracker
// holds every fetched-but-undeleted message per partition and only releases
// a commit once the deletions are contiguous from the front of the window.
type offsetTracker struct {
	mu         sync.Mutex
	partitions map[int]*partitionWindow
}

type partitionWindow struct {
	pending []kafka.Message // fetched, not yet deleted; offset order
	deleted map[int64]bool
}

func newOffsetTracker() *offsetTracker {
	return &offsetTracker{partitions: make(map[int]*partitionWindow)}
}

// Fetched records a message handed to the caller. Messages arrive in offset
// order per partition.
func (t *offsetTracker) Fetched(msg kafka.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, ok := t.partitions[msg.Partition]
	if !ok {
		w = &partitionWindow{deleted: make(map[int64]bool)}
		t.partitions[msg.Partition] = w
	}
	w.pending = append(w.pending, msg)
}

// Deleted marks msg as done and reports the newest message now safe to
// commit, if its deletion unblocked the front of the partition's window. A
// false return means an earlier message is still retained; the commit stays
// deferred and the done message will simply be redelivered, which is safe
// because downstream writes are idempotent.
func (t *offsetTracker) Deleted(msg kafka.Message) (kafka.Message, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, ok := t.partitions[msg.Partition]
	if !ok {
		return kafka.Message{}, false
	}
	w.deleted[msg.Offset] = true

	var commit kafka.Message
	released := false
	for len(w.pending) > 0 && w.deleted[w.pending[0].Offset] {
		commit = w.pending[0]
		delete(w.deleted, commit.Offset)
		w.pending = w.pending[1:]
		released = true
	}
	return commit, released
}
