package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/permit-leads/internal/model"
)

func newMockPostgres(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresFromPool(mock), mock
}

func TestPostgresSaveBatch(t *testing.T) {
	s, mock := newMockPostgres(t)

	score := 88
	records := []*model.Record{
		{ID: "r1", Address: "123 Main St", City: "Seattle", Score: &score},
		{ID: "r2", Address: "700 Harbor Ave", City: "Seattle"},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO batches").
		WithArgs(pgxmock.AnyArg(), "spring import", 4, 2, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO batch_records").
		WithArgs(pgxmock.AnyArg(), "r1", &score, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO batch_records").
		WithArgs(pgxmock.AnyArg(), "r2", (*int)(nil), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	batch, err := s.SaveBatch(context.Background(), "spring import", 4, records)
	require.NoError(t, err)
	assert.NotEmpty(t, batch.ID)
	assert.Equal(t, "spring import", batch.Label)
	assert.Equal(t, 4, batch.InputCount)
	assert.Equal(t, 2, batch.OutputCount)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveBatchRollsBackOnError(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO batches").
		WithArgs(pgxmock.AnyArg(), "bad", 1, 1, pgxmock.AnyArg()).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := s.SaveBatch(context.Background(), "bad", 1, []*model.Record{{ID: "r1"}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetBatchRecords(t *testing.T) {
	s, mock := newMockPostgres(t)

	score := 91
	rec := &model.Record{ID: "r1", Address: "123 Main St", City: "Seattle", Score: &score}
	payload, err := json.Marshal(rec)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT payload FROM batch_records").
		WithArgs("batch-1").
		WillReturnRows(pgxmock.NewRows([]string{"payload"}).AddRow(payload))

	got, err := s.GetBatchRecords(context.Background(), "batch-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec, got[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListBatches(t *testing.T) {
	s, mock := newMockPostgres(t)

	created := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, label, input_count, output_count, created_at").
		WithArgs(50, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "label", "input_count", "output_count", "created_at"}).
			AddRow("b1", "newest", 10, 7, created).
			AddRow("b2", "older", 3, 3, created.Add(-time.Hour)))

	batches, err := s.ListBatches(context.Background(), BatchFilter{})
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "newest", batches[0].Label)
	assert.Equal(t, 7, batches[0].OutputCount)
	assert.Equal(t, "older", batches[1].Label)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMigrate(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS batches").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPostgresRequiresURL(t *testing.T) {
	_, err := NewPostgres(context.Background(), "")
	require.Error(t, err)
}
