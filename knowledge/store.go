package knowledge

import (
	"context"
	"sync"
)

// Store persists knowledge records between sessions. A store is opened
// exclusively for the duration of one session. Implementations must make
// each Put atomic with respect to a process crash: a crash may lose the
// in-flight record but must not corrupt committed ones.
//
// Storing a zero Record deletes the entry; Get reports ok == false for keys
// never stored or deleted, which callers read as level 0.
type Store interface {
	Get(ctx context.Context, key Key) (Record, bool, error)
	Put(ctx context.Context, key Key, rec Record) error
	Close() error
}

// MemoryStore is an in-process Store used by tests and by sessions that
// should not persist anything.
type MemoryStore struct {
	mu   sync.Mutex
	recs map[Key]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: map[Key]Record{}}
}

func (m *MemoryStore) Get(_ context.Context, key Key) (Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[key]
	return rec, ok, nil
}

func (m *MemoryStore) Put(_ context.Context, key Key, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.IsZero() {
		delete(m.recs, key)
	} else {
		m.recs[key] = rec
	}
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

// Len returns the number of stored records.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.recs)
}
