// Package store persists scored record batches for later review and
// export. The engine itself is stateless; the store only serves the CLI.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/permit-leads/internal/config"
	"github.com/sells-group/permit-leads/internal/model"
)

// Batch describes one persisted pipeline run.
type Batch struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	InputCount  int       `json:"input_count"`
	OutputCount int       `json:"output_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// BatchFilter specifies criteria for listing batches.
type BatchFilter struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Store defines the persistence interface for pipeline output.
type Store interface {
	// SaveBatch persists a deduplicated, scored record set.
	SaveBatch(ctx context.Context, label string, inputCount int, records []*model.Record) (*Batch, error)
	// GetBatchRecords loads the records of one batch.
	GetBatchRecords(ctx context.Context, batchID string) ([]*model.Record, error)
	// ListBatches returns recent batches, newest first.
	ListBatches(ctx context.Context, filter BatchFilter) ([]Batch, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open constructs the configured store backend.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.SQLitePath)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
