package models

import "fmt"

// SignalKind discriminates the four statistical test outputs.
type SignalKind string

const (
	SignalTrend       SignalKind = "trend"
	SignalAnomaly     SignalKind = "anomaly"
	SignalCorrelation SignalKind = "correlation"
	SignalComparison  SignalKind = "comparison"
)

// Direction qualifies a signal's magnitude.
type Direction string

const (
	DirectionIncreasing Direction = "increasing"
	DirectionDecreasing Direction = "decreasing"
	DirectionPositive   Direction = "positive"
	DirectionNegative   Direction = "negative"
	DirectionNone       Direction = "none"
)

// Window is an inclusive row range of the analysis window a signal was
// computed over.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (w Window) String() string {
	return fmt.Sprintf("%d-%d", w.Start, w.End)
}

// Signal is the output of one statistical test. Magnitude and Direction are
// jointly populated: a signal without a measurable effect is never emitted.
// ZScore and PValue are set only where the test produces them.
type Signal struct {
	Kind         SignalKind         `json:"kind"`
	Subject      string             `json:"subject"`
	TableID      string             `json:"table_id"`
	Magnitude    float64            `json:"magnitude"`
	Direction    Direction          `json:"direction"`
	ZScore       *float64           `json:"z_score,omitempty"`
	PValue       *float64           `json:"p_value,omitempty"`
	Window       Window             `json:"window"`
	Rows         []int              `json:"rows,omitempty"`
	GroupA       string             `json:"group_a,omitempty"`
	GroupB       string             `json:"group_b,omitempty"`
	SampleSize   int                `json:"sample_size"`
	Completeness float64            `json:"completeness"`
	Strength     float64            `json:"strength"`
	Detail       map[string]float64 `json:"detail,omitempty"`
	Note         string             `json:"note,omitempty"`
}

// Valid reports whether the magnitude/direction invariant holds.
func (s *Signal) Valid() bool {
	if s.Direction == DirectionNone || s.Direction == "" {
		return s.Magnitude == 0
	}
	return s.Magnitude != 0
}
