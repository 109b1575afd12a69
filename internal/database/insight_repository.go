package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/insightlab/insight-engine-go/internal/models"
)

// InsightRecord is the persisted form of a composed insight candidate.
type InsightRecord struct {
	ID           string          `json:"id" db:"id"`
	GenerationID string          `json:"generation_id" db:"generation_id"`
	TableID      string          `json:"table_id" db:"table_id"`
	Type         string          `json:"type" db:"type"`
	Severity     string          `json:"severity" db:"severity"`
	Confidence   decimal.Decimal `json:"confidence" db:"confidence"`
	Magnitude    float64         `json:"magnitude" db:"magnitude"`
	Subject      string          `json:"subject" db:"subject"`
	SummaryText  string          `json:"summary_text" db:"summary_text"`
	Rationale    string          `json:"rationale" db:"rationale"`
	Evidence     []byte          `json:"evidence" db:"evidence"`
	Provenance   []byte          `json:"provenance" db:"provenance"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// DatabasePool defines the interface for database pool operations.
// This interface allows for both real pool and mock pool implementations.
type DatabasePool interface {
	// QueryRow executes a query that is expected to return at most one row.
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	// Exec executes a query without returning any rows.
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	// Query executes a query that returns rows.
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// InsightRepository handles database operations for insight candidates.
// The candidate id is content-derived, so inserts are write-once: re-running
// a generation over unchanged data hits the conflict clause and is a no-op.
type InsightRepository struct {
	pool DatabasePool
}

// NewInsightRepository creates a new insight repository.
func NewInsightRepository(pool DatabasePool) *InsightRepository {
	return &InsightRepository{
		pool: pool,
	}
}

// SaveCandidates persists the composed candidates of one generation run.
// Candidates that already exist (same content-derived id) are skipped.
func (r *InsightRepository) SaveCandidates(ctx context.Context, generationID string, candidates []models.InsightCandidate) error {
	query := `
		INSERT INTO insight_candidates
			(id, generation_id, table_id, type, severity, confidence, magnitude, subject, summary_text, rationale, evidence, provenance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING
	`

	for _, cand := range candidates {
		evidence, err := json.Marshal(cand.Evidence)
		if err != nil {
			return fmt.Errorf("failed to encode evidence for candidate %s: %w", cand.ID, err)
		}
		provenance, err := json.Marshal(cand.Provenance)
		if err != nil {
			return fmt.Errorf("failed to encode provenance for candidate %s: %w", cand.ID, err)
		}

		_, err = r.pool.Exec(ctx, query,
			cand.ID,
			generationID,
			cand.TableID,
			string(cand.Type),
			string(cand.Severity),
			cand.Confidence,
			cand.Magnitude,
			cand.Subject,
			cand.SummaryText,
			cand.Rationale,
			evidence,
			provenance,
		)
		if err != nil {
			return fmt.Errorf("failed to save insight candidate %s: %w", cand.ID, err)
		}
	}

	return nil
}

// GetCandidate fetches one persisted candidate by its content-derived id.
// Returns (nil, nil) when no row exists.
func (r *InsightRepository) GetCandidate(ctx context.Context, id string) (*InsightRecord, error) {
	query := `
		SELECT id, generation_id, table_id, type, severity, confidence, magnitude, subject, summary_text, rationale, evidence, provenance, created_at
		FROM insight_candidates
		WHERE id = $1
	`

	var rec InsightRecord
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.GenerationID,
		&rec.TableID,
		&rec.Type,
		&rec.Severity,
		&rec.Confidence,
		&rec.Magnitude,
		&rec.Subject,
		&rec.SummaryText,
		&rec.Rationale,
		&rec.Evidence,
		&rec.Provenance,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get insight candidate: %w", err)
	}

	return &rec, nil
}

// ListByGeneration returns all candidates persisted for a generation run
// in insert order.
func (r *InsightRepository) ListByGeneration(ctx context.Context, generationID string) ([]InsightRecord, error) {
	query := `
		SELECT id, generation_id, table_id, type, severity, confidence, magnitude, subject, summary_text, rationale, evidence, provenance, created_at
		FROM insight_candidates
		WHERE generation_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, generationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list insight candidates: %w", err)
	}
	defer rows.Close()

	var records []InsightRecord
	for rows.Next() {
		var rec InsightRecord
		err := rows.Scan(
			&rec.ID,
			&rec.GenerationID,
			&rec.TableID,
			&rec.Type,
			&rec.Severity,
			&rec.Confidence,
			&rec.Magnitude,
			&rec.Subject,
			&rec.SummaryText,
			&rec.Rationale,
			&rec.Evidence,
			&rec.Provenance,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan insight candidate: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating insight candidates: %w", err)
	}

	return records, nil
}

// DeleteOlderThan prunes persisted candidates older than the cutoff.
func (r *InsightRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM insight_candidates WHERE created_at < $1`

	result, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune insight candidates: %w", err)
	}

	return result.RowsAffected(), nil
}
