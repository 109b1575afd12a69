package insights

import (
	"fmt"
	"math"
	"strings"

	"github.com/insightlab/insight-engine-go/internal/models"
)

// Composer attaches a rationale and a data-provenance trail to each insight
// candidate. The rationale is built from structured templates keyed by signal
// kind, so identical inputs always produce identical text; no language model
// is involved.
type Composer struct{}

// NewComposer creates a new explainability composer.
func NewComposer() *Composer {
	return &Composer{}
}

// Compose enriches the candidate in place.
func (c *Composer) Compose(cand *models.InsightCandidate) {
	cand.Rationale = c.rationale(cand)
	cand.Provenance = c.provenance(cand)
}

// ComposeAll enriches every candidate in the slice.
func (c *Composer) ComposeAll(cands []models.InsightCandidate) {
	for i := range cands {
		c.Compose(&cands[i])
	}
}

func (c *Composer) rationale(cand *models.InsightCandidate) string {
	lead := cand.Evidence[0]
	confidence := cand.Confidence.StringFixed(2)

	switch cand.Type {
	case models.InsightTrend:
		return trendRationale(lead, confidence)
	case models.InsightAnomaly:
		return anomalyRationale(cand, confidence)
	case models.InsightCorrelation:
		return correlationRationale(lead, confidence)
	case models.InsightComparison:
		return comparisonRationale(lead, confidence)
	default:
		return fmt.Sprintf("Observation on %s (confidence %s).", cand.Subject, confidence)
	}
}

func trendRationale(sig models.Signal, confidence string) string {
	d := sig.Detail
	strengthWord := "slightly"
	if sig.Strength > 0.7 {
		strengthWord = "strongly"
	} else if sig.Strength > 0.4 {
		strengthWord = "moderately"
	}

	verb := "increased"
	if sig.Direction == models.DirectionDecreasing {
		verb = "decreased"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s has %s %s by %.1f%% over %.0f periods (from %.2f to %.2f); slope of %+.2f per period, R²=%.2f, confidence %s. ",
		sig.Subject, strengthWord, verb, math.Abs(d["pct_change"]), d["periods"],
		d["first"], d["last"], d["slope"], d["r_squared"], confidence)

	pct := math.Abs(d["pct_change"])
	switch {
	case pct > 25:
		b.WriteString("This represents a significant change that warrants attention.")
	case pct > 10:
		b.WriteString("This is a notable change in the metric.")
	default:
		b.WriteString("This is a modest change.")
	}
	return b.String()
}

func anomalyRationale(cand *models.InsightCandidate, confidence string) string {
	var b strings.Builder
	for i, sig := range cand.Evidence {
		if i > 0 {
			b.WriteString(" ")
		}
		d := sig.Detail
		side := "above"
		if sig.Direction == models.DirectionNegative {
			side = "below"
		}
		row := -1
		if len(sig.Rows) > 0 {
			row = sig.Rows[0]
		}
		fmt.Fprintf(&b, "An unusual value of %.2f was detected in %s at row %d, %.1f standard deviations %s the expected %.2f.",
			d["value"], sig.Subject, row, math.Abs(d["z_score"]), side, d["expected"])
	}

	z := cand.Magnitude
	switch {
	case z > 4:
		b.WriteString(" This is an extreme outlier that requires immediate investigation.")
	case z > 3:
		b.WriteString(" This is a significant anomaly that should be reviewed.")
	default:
		b.WriteString(" This warrants further examination.")
	}
	fmt.Fprintf(&b, " Confidence %s.", confidence)
	return b.String()
}

func correlationRationale(sig models.Signal, confidence string) string {
	d := sig.Detail
	parts := strings.SplitN(sig.Subject, "::", 2)
	varA, varB := parts[0], parts[0]
	if len(parts) == 2 {
		varB = parts[1]
	}

	strengthWord := "weak"
	if math.Abs(d["r"]) >= 0.7 {
		strengthWord = "strong"
	} else if math.Abs(d["r"]) >= 0.5 {
		strengthWord = "moderate"
	}

	relation := "positive"
	tendency := "increase as well"
	if sig.Direction == models.DirectionNegative {
		relation = "negative"
		tendency = "decrease"
	}

	return fmt.Sprintf("A %s %s correlation (r=%.3f, n=%.0f) exists between %s and %s; confidence %s. As %s increases, %s tends to %s.",
		strengthWord, relation, d["r"], d["sample_size"], varA, varB, confidence, varA, varB, tendency)
}

func comparisonRationale(sig models.Signal, confidence string) string {
	d := sig.Detail
	metric := sig.Subject
	if idx := strings.Index(metric, ":"); idx > 0 {
		metric = metric[:idx]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s leads %s in %s by %.1f%% (%.2f vs %.2f", sig.GroupA, sig.GroupB, metric,
		math.Abs(d["pct_diff"]), d["value_a"], d["value_b"])
	if sig.PValue != nil {
		fmt.Fprintf(&b, "; p=%.3f", *sig.PValue)
	} else {
		b.WriteString("; significance unknown")
	}
	fmt.Fprintf(&b, "), confidence %s. ", confidence)

	pct := math.Abs(d["pct_diff"])
	switch {
	case pct > 50:
		b.WriteString("This represents a substantial performance gap.")
	case pct > 25:
		b.WriteString("This is a significant difference in performance.")
	default:
		b.WriteString("The performance gap is relatively modest.")
	}
	return b.String()
}

// provenance builds one trail entry per evidence signal, referencing the
// originating table, column and row range.
func (c *Composer) provenance(cand *models.InsightCandidate) []models.ProvenanceEntry {
	entries := make([]models.ProvenanceEntry, 0, len(cand.Evidence))
	for _, sig := range cand.Evidence {
		for _, column := range subjectColumns(sig) {
			entries = append(entries, models.ProvenanceEntry{
				TableID:    sig.TableID,
				Column:     column,
				StartRow:   sig.Window.Start,
				EndRow:     sig.Window.End,
				Rows:       append([]int(nil), sig.Rows...),
				SampleSize: sig.SampleSize,
			})
		}
	}
	return entries
}

// subjectColumns breaks a signal subject into the column names it touches.
func subjectColumns(sig models.Signal) []string {
	switch sig.Kind {
	case models.SignalCorrelation:
		return strings.SplitN(sig.Subject, "::", 2)
	case models.SignalComparison:
		if idx := strings.Index(sig.Subject, ":"); idx > 0 {
			return []string{sig.Subject[:idx]}
		}
		return []string{sig.Subject}
	default:
		return []string{sig.Subject}
	}
}
