package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/permit-leads/internal/model"
)

// PgxPool is the subset of pgxpool.Pool the store needs; pgxmock
// satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresStore implements Store backed by PostgreSQL.
type PostgresStore struct {
	pool PgxPool
}

// NewPostgres connects a pgx pool to the given database URL.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, eris.New("postgres: database_url is required")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool; used by tests.
func NewPostgresFromPool(pool PgxPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS batches (
	id           UUID PRIMARY KEY,
	label        TEXT NOT NULL,
	input_count  INTEGER NOT NULL,
	output_count INTEGER NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS batch_records (
	batch_id  UUID NOT NULL REFERENCES batches(id),
	record_id TEXT NOT NULL,
	score     INTEGER,
	payload   JSONB NOT NULL,
	PRIMARY KEY (batch_id, record_id)
);

CREATE INDEX IF NOT EXISTS idx_batch_records_batch_id ON batch_records(batch_id);
CREATE INDEX IF NOT EXISTS idx_batch_records_score ON batch_records(score);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveBatch(ctx context.Context, label string, inputCount int, records []*model.Record) (*Batch, error) {
	batch := &Batch{
		ID:          uuid.New().String(),
		Label:       label,
		InputCount:  inputCount,
		OutputCount: len(records),
		CreatedAt:   time.Now().UTC(),
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin batch")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx,
		`INSERT INTO batches (id, label, input_count, output_count, created_at) VALUES ($1, $2, $3, $4, $5)`,
		batch.ID, batch.Label, batch.InputCount, batch.OutputCount, batch.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert batch")
	}

	for _, rec := range records {
		payload, err := json.Marshal(rec)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: marshal record %s", rec.ID)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO batch_records (batch_id, record_id, score, payload) VALUES ($1, $2, $3, $4)`,
			batch.ID, rec.ID, rec.Score, payload,
		)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: insert record %s", rec.ID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit batch")
	}

	zap.L().Info("store: saved batch",
		zap.String("batch_id", batch.ID),
		zap.String("label", label),
		zap.Int("records", len(records)),
	)
	return batch, nil
}

func (s *PostgresStore) GetBatchRecords(ctx context.Context, batchID string) ([]*model.Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT payload FROM batch_records WHERE batch_id = $1 ORDER BY score DESC NULLS LAST, record_id`,
		batchID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query batch records")
	}
	defer rows.Close()

	var records []*model.Record
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan batch record")
		}
		var rec model.Record
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal batch record")
		}
		records = append(records, &rec)
	}
	return records, eris.Wrap(rows.Err(), "postgres: iterate batch records")
}

func (s *PostgresStore) ListBatches(ctx context.Context, filter BatchFilter) ([]Batch, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, label, input_count, output_count, created_at
		 FROM batches ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, filter.Offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query batches")
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.Label, &b.InputCount, &b.OutputCount, &b.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan batch")
		}
		batches = append(batches, b)
	}
	return batches, eris.Wrap(rows.Err(), "postgres: iterate batches")
}
