package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnFloat64s(t *testing.T) {
	col := Column{
		Name:   "revenue",
		Type:   ColumnNumeric,
		Values: []interface{}{10.0, nil, 20.0, "n/a", 30.0},
	}

	values, rows, completeness := col.Float64s()
	assert.Equal(t, []float64{10, 20, 30}, values)
	assert.Equal(t, []int{0, 2, 4}, rows)
	assert.InDelta(t, 0.6, completeness, 1e-9)
}

func TestColumnLabels(t *testing.T) {
	col := Column{
		Name:   "region",
		Type:   ColumnCategorical,
		Values: []interface{}{"North", nil, "South"},
	}

	assert.Equal(t, []string{"North", "", "South"}, col.Labels())
}

func TestTableAccessors(t *testing.T) {
	table := Table{
		ID: "t1",
		Columns: []Column{
			{Name: "a", Type: ColumnNumeric, Values: []interface{}{1.0, 2.0, 3.0}},
			{Name: "b", Type: ColumnCategorical, Values: []interface{}{"x", "y"}},
		},
	}

	require.NotNil(t, table.Column("a"))
	assert.Nil(t, table.Column("missing"))
	assert.Equal(t, 3, table.RowCount())

	numeric := table.NumericColumns()
	require.Len(t, numeric, 1)
	assert.Equal(t, "a", numeric[0].Name)
}

func TestSignalValid(t *testing.T) {
	tests := []struct {
		name   string
		signal Signal
		want   bool
	}{
		{
			name:   "magnitude with direction",
			signal: Signal{Magnitude: 0.2, Direction: DirectionIncreasing},
			want:   true,
		},
		{
			name:   "magnitude without direction",
			signal: Signal{Magnitude: 0.2, Direction: DirectionNone},
			want:   false,
		},
		{
			name:   "direction without magnitude",
			signal: Signal{Magnitude: 0, Direction: DirectionPositive},
			want:   false,
		},
		{
			name:   "neither",
			signal: Signal{Direction: DirectionNone},
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.signal.Valid())
		})
	}
}

func TestCandidateIDIsStable(t *testing.T) {
	w := Window{Start: 0, End: 11}

	first := CandidateID("t1", "revenue", SignalTrend, w)
	assert.Len(t, first, 16)
	assert.Equal(t, first, CandidateID("t1", "revenue", SignalTrend, w))

	assert.NotEqual(t, first, CandidateID("t1", "revenue", SignalAnomaly, w))
	assert.NotEqual(t, first, CandidateID("t1", "cost", SignalTrend, w))
	assert.NotEqual(t, first, CandidateID("t2", "revenue", SignalTrend, w))
	assert.NotEqual(t, first, CandidateID("t1", "revenue", SignalTrend, Window{Start: 1, End: 11}))
}

func TestSeverityRankOrdering(t *testing.T) {
	assert.Greater(t, SeverityRank(SeverityCritical), SeverityRank(SeverityHigh))
	assert.Greater(t, SeverityRank(SeverityHigh), SeverityRank(SeverityMedium))
	assert.Greater(t, SeverityRank(SeverityMedium), SeverityRank(SeverityLow))
	assert.Equal(t, 0, SeverityRank(Severity("bogus")))
}

func TestWindowString(t *testing.T) {
	assert.Equal(t, "5-11", Window{Start: 5, End: 11}.String())
}
