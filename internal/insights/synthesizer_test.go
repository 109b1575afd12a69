package insights

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightlab/insight-engine-go/internal/config"
	"github.com/insightlab/insight-engine-go/internal/models"
)

func testSynthesizer() *Synthesizer {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewSynthesizer(config.DefaultInsights(), logger)
}

func trendSignal(subject string, magnitude float64) models.Signal {
	return models.Signal{
		Kind:         models.SignalTrend,
		Subject:      subject,
		TableID:      "t1",
		Magnitude:    magnitude,
		Direction:    models.DirectionIncreasing,
		Window:       models.Window{Start: 0, End: 11},
		SampleSize:   7,
		Completeness: 1.0,
		Strength:     0.9,
		Detail:       map[string]float64{"pct_change": magnitude * 100, "periods": 7},
	}
}

func TestSynthesizeProducesOneCandidatePerSubjectWindow(t *testing.T) {
	s := testSynthesizer()

	signals := []models.Signal{
		trendSignal("revenue", 0.2),
		trendSignal("cost", 0.1),
	}

	candidates := s.Synthesize(signals)
	require.Len(t, candidates, 2)

	subjects := []string{candidates[0].Subject, candidates[1].Subject}
	assert.ElementsMatch(t, []string{"revenue", "cost"}, subjects)
	for _, cand := range candidates {
		assert.Len(t, cand.Evidence, 1)
		assert.Equal(t, models.InsightTrend, cand.Type)
		assert.NotEmpty(t, cand.SummaryText)
	}
}

func TestSynthesizeCollapsesDuplicateSignals(t *testing.T) {
	s := testSynthesizer()

	z1, z2 := 3.0, 5.0
	base := models.Signal{
		Kind:         models.SignalAnomaly,
		Subject:      "latency",
		TableID:      "t1",
		Direction:    models.DirectionPositive,
		Window:       models.Window{Start: 0, End: 19},
		SampleSize:   20,
		Completeness: 1.0,
	}
	a := base
	a.Magnitude, a.ZScore, a.Strength, a.Rows = z1, &z1, 0.75, []int{12}
	b := base
	b.Magnitude, b.ZScore, b.Strength, b.Rows = z2, &z2, 1.0, []int{17}

	candidates := s.Synthesize([]models.Signal{a, b})
	require.Len(t, candidates, 1)

	cand := candidates[0]
	assert.Len(t, cand.Evidence, 2)
	assert.Equal(t, 5.0, cand.Magnitude, "aggregate takes the max magnitude")
	assert.Equal(t, models.SeverityCritical, cand.Severity)
	assert.Equal(t, models.CandidateID("t1", "latency", models.SignalAnomaly, base.Window), cand.ID)
}

func TestSynthesizeConfidenceBounds(t *testing.T) {
	s := testSynthesizer()

	tests := []struct {
		name         string
		strength     float64
		completeness float64
	}{
		{name: "zero inputs", strength: 0, completeness: 0},
		{name: "full inputs", strength: 1, completeness: 1},
		{name: "mixed", strength: 0.8, completeness: 0.4},
		{name: "out of range strength", strength: 1.5, completeness: 1.2},
	}

	one := decimal.NewFromInt(1)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := s.confidence(tt.strength, tt.completeness)
			assert.True(t, c.GreaterThanOrEqual(decimal.Zero), "confidence %s below 0", c)
			assert.True(t, c.LessThanOrEqual(one), "confidence %s above 1", c)
		})
	}
}

func TestSynthesizeConfidenceBlendsWeights(t *testing.T) {
	s := testSynthesizer()

	// 0.7*1.0 + 0.3*0.5 = 0.85
	c := s.confidence(1.0, 0.5)
	assert.True(t, c.Equal(decimal.NewFromFloat(0.85)), "got %s", c)
}

func TestSeverityMonotonicInMagnitude(t *testing.T) {
	kinds := []models.SignalKind{
		models.SignalTrend, models.SignalAnomaly,
		models.SignalCorrelation, models.SignalComparison,
	}
	for _, kind := range kinds {
		prev := -1
		for _, m := range []float64{0.01, 0.1, 0.3, 0.6, 0.9, 1.5, 3.0, 5.0} {
			rank := models.SeverityRank(severityFor(kind, m))
			assert.GreaterOrEqual(t, rank, prev, "kind=%s magnitude=%g", kind, m)
			prev = rank
		}
	}
}

func TestSeverityBands(t *testing.T) {
	tests := []struct {
		kind      models.SignalKind
		magnitude float64
		want      models.Severity
	}{
		{models.SignalTrend, 0.20, models.SeverityHigh},
		{models.SignalTrend, 0.40, models.SeverityCritical},
		{models.SignalTrend, 0.05, models.SeverityMedium},
		{models.SignalTrend, 0.01, models.SeverityLow},
		{models.SignalAnomaly, 4.0, models.SeverityCritical},
		{models.SignalAnomaly, 3.2, models.SeverityHigh},
		{models.SignalAnomaly, 2.6, models.SeverityMedium},
		{models.SignalCorrelation, 0.96, models.SeverityCritical},
		{models.SignalCorrelation, 0.72, models.SeverityMedium},
		{models.SignalComparison, 1.1, models.SeverityCritical},
		{models.SignalComparison, 0.3, models.SeverityMedium},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, severityFor(tt.kind, tt.magnitude),
			"kind=%s magnitude=%g", tt.kind, tt.magnitude)
	}
}

func TestSynthesizeEmptyInput(t *testing.T) {
	s := testSynthesizer()
	assert.Empty(t, s.Synthesize(nil))
}

func TestSummaryTextTitlesDirection(t *testing.T) {
	tests := []struct {
		direction models.Direction
		want      string
	}{
		{models.DirectionIncreasing, "Increasing trend in revenue"},
		{models.DirectionDecreasing, "Decreasing trend in revenue"},
		{models.DirectionNone, "Flat trend in revenue"},
		{"", "Flat trend in revenue"},
	}
	for _, tt := range tests {
		sig := trendSignal("revenue", 0.2)
		sig.Direction = tt.direction
		assert.Equal(t, tt.want, summaryText(sig, 1))
	}
}

func TestSummaryTextStripsGroupSuffixFromComparisonMetric(t *testing.T) {
	sig := models.Signal{
		Kind:    models.SignalComparison,
		Subject: "sales:North vs South",
		TableID: "t1",
		GroupA:  "North",
		GroupB:  "South",
	}
	assert.Equal(t, "North outperforms South in sales", summaryText(sig, 1))
}
