package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// InsightType mirrors SignalKind on the insight side; the ranker additionally
// accepts synonyms (e.g. "benchmark" for comparison).
type InsightType string

const (
	InsightTrend       InsightType = "trend"
	InsightAnomaly     InsightType = "anomaly"
	InsightCorrelation InsightType = "correlation"
	InsightComparison  InsightType = "comparison"
)

// Severity bands an insight by magnitude. Bands are strictly ordered.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// SeverityRank orders severities for sorting: higher rank is more severe.
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// ProvenanceEntry links an insight back to the data that produced it.
type ProvenanceEntry struct {
	TableID    string `json:"table_id"`
	Column     string `json:"column"`
	StartRow   int    `json:"start_row"`
	EndRow     int    `json:"end_row"`
	Rows       []int  `json:"rows,omitempty"`
	SampleSize int    `json:"sample_size"`
}

// InsightCandidate is a synthesized, explainable unit derived from one or
// more signals on the same subject and window. The composer fills Rationale
// and Provenance in place; after ranking the candidate is never mutated.
type InsightCandidate struct {
	ID          string            `json:"id"`
	Type        InsightType       `json:"type"`
	Severity    Severity          `json:"severity"`
	Confidence  decimal.Decimal   `json:"confidence"`
	Magnitude   float64           `json:"magnitude"`
	Subject     string            `json:"subject"`
	TableID     string            `json:"table_id"`
	Window      Window            `json:"window"`
	Evidence    []Signal          `json:"evidence"`
	SummaryText string            `json:"summary_text"`
	Rationale   string            `json:"rationale,omitempty"`
	Provenance  []ProvenanceEntry `json:"provenance,omitempty"`
}

// CandidateID derives the stable insight id from subject, kind and window so
// repeated generation over the same data window is idempotent.
func CandidateID(tableID, subject string, kind SignalKind, window Window) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%s", tableID, subject, kind, window)))
	return hex.EncodeToString(sum[:])[:16]
}

// SkippedColumn records a column the analyzer could not use, and why.
type SkippedColumn struct {
	TableID string `json:"table_id"`
	Column  string `json:"column"`
	Reason  string `json:"reason"`
}

// ListSummary aggregates a ranked list for downstream rendering.
type ListSummary struct {
	Total         int             `json:"total"`
	Critical      int             `json:"critical"`
	High          int             `json:"high"`
	AvgConfidence decimal.Decimal `json:"avg_confidence"`
}

// RankedInsightList is the terminal artifact of one generation request.
type RankedInsightList struct {
	GenerationID    string             `json:"generation_id"`
	RoleID          string             `json:"role_id"`
	GeneratedAt     time.Time          `json:"generated_at"`
	FallbackApplied bool               `json:"fallback_applied"`
	Insights        []InsightCandidate `json:"insights"`
	Summary         ListSummary        `json:"summary"`
	SkippedColumns  []SkippedColumn    `json:"skipped_columns,omitempty"`
}
