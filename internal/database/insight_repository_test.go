package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightlab/insight-engine-go/internal/models"
)

// MockPoolAdapter wraps pgxmock.PgxPoolIface to implement DatabasePool interface
type MockPoolAdapter struct {
	mock pgxmock.PgxPoolIface
}

func NewMockPoolAdapter(mock pgxmock.PgxPoolIface) DatabasePool {
	return &MockPoolAdapter{mock: mock}
}

func (m *MockPoolAdapter) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return m.mock.QueryRow(ctx, sql, args...)
}

func (m *MockPoolAdapter) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	result, err := m.mock.Exec(ctx, sql, args...)
	if err == nil {
		rows := result.RowsAffected()
		return pgconn.NewCommandTag(fmt.Sprintf("INSERT %d", rows)), nil
	}
	return pgconn.CommandTag{}, err
}

func (m *MockPoolAdapter) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return m.mock.Query(ctx, sql, args...)
}

// anyInsertArgs matches the 12 insert-column arguments without checking
// values; pgxmock requires the expected and actual argument counts to agree.
func anyInsertArgs() []interface{} {
	args := make([]interface{}, 12)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func sampleCandidate() models.InsightCandidate {
	return models.InsightCandidate{
		ID:          "abc123def456abcd",
		Type:        models.InsightTrend,
		Severity:    models.SeverityHigh,
		Confidence:  decimal.NewFromFloat(0.92),
		Magnitude:   0.2,
		Subject:     "revenue",
		TableID:     "t1",
		Window:      models.Window{Start: 5, End: 11},
		SummaryText: "Increasing trend in revenue",
		Rationale:   "revenue has strongly increased",
	}
}

func TestSaveCandidates(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewInsightRepository(NewMockPoolAdapter(mockPool))

	mockPool.ExpectExec(`INSERT INTO insight_candidates`).
		WithArgs(anyInsertArgs()...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.SaveCandidates(context.Background(), "gen-1", []models.InsightCandidate{sampleCandidate()})
	require.NoError(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestSaveCandidatesConflictIsNoOp(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewInsightRepository(NewMockPoolAdapter(mockPool))

	// A duplicate id hits the conflict clause: zero rows affected, no error.
	mockPool.ExpectExec(`INSERT INTO insight_candidates`).
		WithArgs(anyInsertArgs()...).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	err = repo.SaveCandidates(context.Background(), "gen-2", []models.InsightCandidate{sampleCandidate()})
	assert.NoError(t, err)
}

func TestSaveCandidatesPropagatesError(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewInsightRepository(NewMockPoolAdapter(mockPool))

	mockPool.ExpectExec(`INSERT INTO insight_candidates`).
		WillReturnError(fmt.Errorf("connection refused"))

	err = repo.SaveCandidates(context.Background(), "gen-3", []models.InsightCandidate{sampleCandidate()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save insight candidate")
}

func TestGetCandidate(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewInsightRepository(NewMockPoolAdapter(mockPool))

	now := time.Now()
	mockPool.ExpectQuery(`SELECT (.+) FROM insight_candidates`).
		WithArgs("abc123def456abcd").
		WillReturnRows(
			pgxmock.NewRows([]string{
				"id", "generation_id", "table_id", "type", "severity", "confidence",
				"magnitude", "subject", "summary_text", "rationale", "evidence", "provenance", "created_at",
			}).AddRow(
				"abc123def456abcd", "gen-1", "t1", "trend", "high", decimal.NewFromFloat(0.92),
				0.2, "revenue", "Increasing trend in revenue", "revenue has strongly increased",
				[]byte(`[]`), []byte(`[]`), now,
			),
		)

	rec, err := repo.GetCandidate(context.Background(), "abc123def456abcd")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "gen-1", rec.GenerationID)
	assert.Equal(t, "trend", rec.Type)
	assert.Equal(t, "revenue", rec.Subject)
}

func TestGetCandidateNotFound(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewInsightRepository(NewMockPoolAdapter(mockPool))

	mockPool.ExpectQuery(`SELECT (.+) FROM insight_candidates`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	rec, err := repo.GetCandidate(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestListByGeneration(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewInsightRepository(NewMockPoolAdapter(mockPool))

	now := time.Now()
	mockPool.ExpectQuery(`SELECT (.+) FROM insight_candidates`).
		WithArgs("gen-1").
		WillReturnRows(
			pgxmock.NewRows([]string{
				"id", "generation_id", "table_id", "type", "severity", "confidence",
				"magnitude", "subject", "summary_text", "rationale", "evidence", "provenance", "created_at",
			}).AddRow(
				"id-a", "gen-1", "t1", "trend", "high", decimal.NewFromFloat(0.9),
				0.2, "revenue", "s", "r", []byte(`[]`), []byte(`[]`), now,
			).AddRow(
				"id-b", "gen-1", "t1", "anomaly", "critical", decimal.NewFromFloat(0.8),
				4.2, "latency", "s", "r", []byte(`[]`), []byte(`[]`), now,
			),
		)

	records, err := repo.ListByGeneration(context.Background(), "gen-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "id-a", records[0].ID)
	assert.Equal(t, "anomaly", records[1].Type)
}

func TestDeleteOlderThan(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewInsightRepository(NewMockPoolAdapter(mockPool))

	mockPool.ExpectExec(`DELETE FROM insight_candidates`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 7))

	n, err := repo.DeleteOlderThan(context.Background(), time.Now().Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}
