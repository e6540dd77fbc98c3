package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sells-group/permit-leads/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS batches (
	id           TEXT PRIMARY KEY,
	label        TEXT NOT NULL,
	input_count  INTEGER NOT NULL,
	output_count INTEGER NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS batch_records (
	batch_id  TEXT NOT NULL REFERENCES batches(id),
	record_id TEXT NOT NULL,
	score     INTEGER,
	payload   TEXT NOT NULL,
	PRIMARY KEY (batch_id, record_id)
);

CREATE INDEX IF NOT EXISTS idx_batch_records_batch_id ON batch_records(batch_id);
CREATE INDEX IF NOT EXISTS idx_batch_records_score ON batch_records(score);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveBatch(ctx context.Context, label string, inputCount int, records []*model.Record) (*Batch, error) {
	batch := &Batch{
		ID:          uuid.New().String(),
		Label:       label,
		InputCount:  inputCount,
		OutputCount: len(records),
		CreatedAt:   time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin batch")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO batches (id, label, input_count, output_count, created_at) VALUES (?, ?, ?, ?, ?)`,
		batch.ID, batch.Label, batch.InputCount, batch.OutputCount, batch.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert batch")
	}

	for _, rec := range records {
		payload, err := json.Marshal(rec)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: marshal record %s", rec.ID)
		}
		var score *int
		if rec.Score != nil {
			score = rec.Score
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO batch_records (batch_id, record_id, score, payload) VALUES (?, ?, ?, ?)`,
			batch.ID, rec.ID, score, string(payload),
		)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: insert record %s", rec.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit batch")
	}

	zap.L().Info("store: saved batch",
		zap.String("batch_id", batch.ID),
		zap.String("label", label),
		zap.Int("records", len(records)),
	)
	return batch, nil
}

func (s *SQLiteStore) GetBatchRecords(ctx context.Context, batchID string) ([]*model.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM batch_records WHERE batch_id = ? ORDER BY score DESC, record_id`,
		batchID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query batch records")
	}
	defer rows.Close()

	var records []*model.Record
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan batch record")
		}
		var rec model.Record
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal batch record")
		}
		records = append(records, &rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: iterate batch records")
}

func (s *SQLiteStore) ListBatches(ctx context.Context, filter BatchFilter) ([]Batch, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, label, input_count, output_count, created_at
		 FROM batches ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, filter.Offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query batches")
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.Label, &b.InputCount, &b.OutputCount, &b.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan batch")
		}
		batches = append(batches, b)
	}
	return batches, eris.Wrap(rows.Err(), "sqlite: iterate batches")
}
