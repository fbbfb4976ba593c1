// Package tokenstore persists the current session record under a single key
// in a durable key-value backend.
package tokenstore

import (
	"context"
	"sync"

	"github.com/gogotex/gogotex/backend/auth-widget/pkg/logger"
)

// DefaultKey is the storage key used when none is configured.
const DefaultKey = "idp_auth_session"

var log = logger.Named("tokenstore")

// Store provides session record persistence. Get returns (nil, nil) when no
// usable record is stored; unreadable data counts as no record.
type Store interface {
	Get(ctx context.Context) (*Record, error)
	Set(ctx context.Context, r Record) error
	Clear(ctx context.Context) error
}

// absentOnCorrupt maps a decode failure to "absent" so a bad value degrades
// the session to logged out instead of failing the caller.
func absentOnCorrupt(backend, key string, b []byte) *Record {
	r, err := decodeRecord(b)
	if err != nil {
		log.Warnf("%s: ignoring unreadable record under %q: %v", backend, key, err)
		return nil
	}
	return r
}

// MemoryStore keeps the encoded record in process memory.
type MemoryStore struct {
	mu  sync.RWMutex
	raw []byte
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Get(ctx context.Context) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.raw == nil {
		return nil, nil
	}
	return absentOnCorrupt("memory", "", m.raw), nil
}

func (m *MemoryStore) Set(ctx context.Context, r Record) error {
	b, err := encodeRecord(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.raw = b
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.raw = nil
	m.mu.Unlock()
	return nil
}

// setRaw stores bytes as-is; tests use it to simulate foreign data.
func (m *MemoryStore) setRaw(b []byte) {
	m.mu.Lock()
	m.raw = b
	m.mu.Unlock()
}
