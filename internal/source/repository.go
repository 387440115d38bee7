package source

import (
	"context"
	"fmt"

	"github.com/homelabdash/homelabdash/internal/catalog"
)

// DatabaseSourceName identifies the repository-backed source.
const DatabaseSourceName = "database"

// Repository reads service records from storage.
type Repository interface {
	// ListServices returns every record in display order.
	ListServices(ctx context.Context) ([]catalog.Record, error)
}

// Database loads the collection from a Repository with a single query.
type Database struct {
	repo Repository
}

// NewDatabase creates a repository-backed source.
func NewDatabase(repo Repository) *Database {
	return &Database{repo: repo}
}

// Name implements Source.
func (d *Database) Name() string {
	return DatabaseSourceName
}

// Load implements Source.
func (d *Database) Load(ctx context.Context) ([]catalog.Record, error) {
	records, err := d.repo.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return records, nil
}

var _ Source = (*Database)(nil)
