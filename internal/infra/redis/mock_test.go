package redis

import (
	"context"
	"sync"
	"time"
)

// memClient is an in-memory RedisClient for unit tests.
type memClient struct {
	mu      sync.Mutex
	vals    map[string]string
	counts  map[string]int64
	ttls    map[string]time.Duration
	IncrErr error
}

var _ RedisClient = (*memClient)(nil)

func newMemClient() *memClient {
	return &memClient{vals: map[string]string{}, counts: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (m *memClient) Ping(context.Context) error { return nil }

func (m *memClient) Set(_ context.Context, key string, value interface{}, exp time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[key] = value.(string)
	m.ttls[key] = exp
	return nil
}

func (m *memClient) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vals[key]
	if !ok {
		return "", Nil
	}
	return v, nil
}

func (m *memClient) IncrWindow(_ context.Context, key string, window time.Duration) (int64, error) {
	if m.IncrErr != nil {
		return 0, m.IncrErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	if m.counts[key] == 1 {
		m.ttls[key] = window
	}
	return m.counts[key], nil
}

func (m *memClient) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.vals, k)
		delete(m.counts, k)
	}
	return nil
}

func (m *memClient) Close() error { return nil }
