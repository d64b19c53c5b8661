package blob

import (
	"context"
	"sync"

	"github.com/tomislacker/photos3/internal/errs"
)

// Memory is a map-backed Store. It exists for tests and local experiments.
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func memKey(bucket, key string) string { return bucket + "/" + key }

func (m *Memory) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	const op = "blob.Memory.Get"
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[memKey(bucket, key)]
	if !ok {
		return nil, errs.New(errs.KindNotFound, op, "no object %s/%s", bucket, key)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *Memory) Put(ctx context.Context, bucket, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	m.objects[memKey(bucket, key)] = stored
	return nil
}

func (m *Memory) Copy(ctx context.Context, bucket, srcKey, dstKey string) error {
	const op = "blob.Memory.Copy"
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[memKey(bucket, srcKey)]
	if !ok {
		return errs.New(errs.KindNotFound, op, "no object %s/%s", bucket, srcKey)
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	m.objects[memKey(bucket, dstKey)] = stored
	return nil
}

func (m *Memory) Delete(ctx context.Context, bucket, key string) error {
	const op = "blob.Memory.Delete"
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey(bucket, key)
	if _, ok := m.objects[k]; !ok {
		return errs.New(errs.KindNotFound, op, "no object %s/%s", bucket, key)
	}
	delete(m.objects, k)
	return nil
}

func (m *Memory) Size(ctx context.Context, bucket, key string) (int64, error) {
	const op = "blob.Memory.Size"
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[memKey(bucket, key)]
	if !ok {
		return 0, errs.New(errs.KindNotFound, op, "no object %s/%s", bucket, key)
	}
	return int64(len(data)), nil
}

// Exists reports whether an object is present. Test helper.
func (m *Memory) Exists(bucket, key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[memKey(bucket, key)]
	return ok
}

// Len reports the number of stored objects. Test helper.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
