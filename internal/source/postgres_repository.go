package source

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homelabdash/homelabdash/internal/catalog"
)

// PostgresRepository reads records from the services table:
//
//	CREATE TABLE services (
//	    position   SERIAL PRIMARY KEY,
//	    id         TEXT NOT NULL UNIQUE,
//	    name       TEXT NOT NULL DEFAULT '',
//	    type       TEXT NOT NULL DEFAULT '',
//	    url        TEXT,
//	    status     TEXT NOT NULL DEFAULT '',
//	    notes      TEXT
//	);
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a PostgreSQL services repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// ListServices returns every record ordered by insertion position.
func (r *PostgresRepository) ListServices(ctx context.Context) ([]catalog.Record, error) {
	query := `
		SELECT id, name, type, COALESCE(url, ''), status, COALESCE(notes, '')
		FROM services
		ORDER BY position
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Record, error) {
		var (
			rec    catalog.Record
			id     string
			status string
		)
		if err := row.Scan(&id, &rec.Name, &rec.Type, &rec.URL, &status, &rec.Notes); err != nil {
			return catalog.Record{}, err
		}
		rec.ID = catalog.ID(id)
		rec.Status = catalog.Status(status)
		return rec, nil
	})
}

var _ Repository = (*PostgresRepository)(nil)
