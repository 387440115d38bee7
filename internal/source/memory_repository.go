package source

import (
	"context"
	"sync"

	"github.com/homelabdash/homelabdash/internal/catalog"
)

// InMemoryRepository is an in-memory Repository for tests and local runs.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records []catalog.Record
	err     error
}

// NewInMemoryRepository creates a repository holding records.
func NewInMemoryRepository(records ...catalog.Record) *InMemoryRepository {
	return &InMemoryRepository{records: append([]catalog.Record(nil), records...)}
}

// Add appends a record.
func (r *InMemoryRepository) Add(rec catalog.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

// FailWith makes subsequent ListServices calls return err.
func (r *InMemoryRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// ListServices returns a copy of the stored records.
func (r *InMemoryRepository) ListServices(_ context.Context) ([]catalog.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.err != nil {
		return nil, r.err
	}
	out := make([]catalog.Record, len(r.records))
	copy(out, r.records)
	return out, nil
}

var _ Repository = (*InMemoryRepository)(nil)
