// Package kvstore is the durable key-value layer behind the project store.
package kvstore

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/dgallion1/coursedraft/internal/metrics"
)

// ErrNotFound is returned by Get when the key has never been written or was deleted.
var ErrNotFound = errors.New("key not found")

// Store persists opaque values by key. Values are JSON documents.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keys derives the fixed keys used by the editor under a common prefix.
type Keys struct {
	Prefix string
}

func (k Keys) Projects() string      { return k.join("projects") }
func (k Keys) ActiveProject() string { return k.join("active-project") }
func (k Keys) Theme() string         { return k.join("theme") }

func (k Keys) join(name string) string {
	p := strings.Trim(k.Prefix, "/")
	if p == "" {
		return name
	}
	return p + "/" + name
}

// Memory is a process-local Store used in tests and as a fallback backend.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) Close() error { return nil }

// Instrument counts every call on s under the given backend label.
func Instrument(backend string, s Store) Store {
	return &instrumented{backend: backend, next: s}
}

type instrumented struct {
	backend string
	next    Store
}

func (i *instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := i.next.Get(ctx, key)
	result := metrics.Result(err)
	if errors.Is(err, ErrNotFound) {
		result = "miss"
	}
	metrics.StoreOps.WithLabelValues(i.backend, "get", result).Inc()
	return v, err
}

func (i *instrumented) Put(ctx context.Context, key string, value []byte) error {
	err := i.next.Put(ctx, key, value)
	metrics.StoreOps.WithLabelValues(i.backend, "put", metrics.Result(err)).Inc()
	return err
}

func (i *instrumented) Delete(ctx context.Context, key string) error {
	err := i.next.Delete(ctx, key)
	metrics.StoreOps.WithLabelValues(i.backend, "delete", metrics.Result(err)).Inc()
	return err
}

func (i *instrumented) Close() error { return i.next.Close() }
