package insights

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/insightlab/insight-engine-go/internal/config"
	"github.com/insightlab/insight-engine-go/internal/models"
)

// Synthesizer converts statistical signals into typed insight candidates.
// Signals sharing subject, kind and window collapse into one candidate whose
// evidence list aggregates every contributing signal, so repeated generation
// never produces duplicate insights for the same subject/type/window.
type Synthesizer struct {
	cfg    config.InsightsConfig
	logger *logrus.Logger
}

// NewSynthesizer creates a new insight synthesizer.
func NewSynthesizer(cfg config.InsightsConfig, logger *logrus.Logger) *Synthesizer {
	return &Synthesizer{cfg: cfg, logger: logger}
}

// Synthesize maps signals to insight candidates with severity, confidence
// and aggregated evidence.
func (s *Synthesizer) Synthesize(signals []models.Signal) []models.InsightCandidate {
	grouped := make(map[string][]models.Signal)
	var order []string
	for _, sig := range signals {
		key := models.CandidateID(sig.TableID, sig.Subject, sig.Kind, sig.Window)
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], sig)
	}
	sort.Strings(order)

	candidates := make([]models.InsightCandidate, 0, len(order))
	for _, key := range order {
		evidence := grouped[key]
		candidates = append(candidates, s.synthesizeOne(key, evidence))
	}

	s.logger.WithFields(logrus.Fields{
		"signals":    len(signals),
		"candidates": len(candidates),
	}).Debug("Signals synthesized into candidates")
	return candidates
}

func (s *Synthesizer) synthesizeOne(id string, evidence []models.Signal) models.InsightCandidate {
	lead := evidence[0]
	magnitude := lead.Magnitude
	strength := lead.Strength
	completeness := lead.Completeness
	for _, sig := range evidence[1:] {
		if sig.Magnitude > magnitude {
			magnitude = sig.Magnitude
		}
		if sig.Strength > strength {
			strength = sig.Strength
		}
		if sig.Completeness < completeness {
			completeness = sig.Completeness
		}
	}

	return models.InsightCandidate{
		ID:          id,
		Type:        models.InsightType(lead.Kind),
		Severity:    severityFor(lead.Kind, magnitude),
		Confidence:  s.confidence(strength, completeness),
		Magnitude:   magnitude,
		Subject:     lead.Subject,
		TableID:     lead.TableID,
		Window:      lead.Window,
		Evidence:    evidence,
		SummaryText: summaryText(lead, len(evidence)),
	}
}

// confidence blends statistical strength with data completeness using the
// configured weights, clamped to [0,1].
func (s *Synthesizer) confidence(strength, completeness float64) decimal.Decimal {
	weights := map[string]decimal.Decimal{
		"strength":     decimal.NewFromFloat(s.cfg.StrengthWeight),
		"completeness": decimal.NewFromFloat(s.cfg.CompletenessWeight),
	}
	scores := map[string]decimal.Decimal{
		"strength":     decimal.NewFromFloat(strength),
		"completeness": decimal.NewFromFloat(completeness),
	}

	weightedSum := decimal.Zero
	totalWeight := decimal.Zero
	for factor, score := range scores {
		weightedSum = weightedSum.Add(score.Mul(weights[factor]))
		totalWeight = totalWeight.Add(weights[factor])
	}
	if totalWeight.IsZero() {
		return decimal.Zero
	}

	confidence := weightedSum.Div(totalWeight)
	one := decimal.NewFromInt(1)
	if confidence.GreaterThan(one) {
		confidence = one
	}
	if confidence.LessThan(decimal.Zero) {
		confidence = decimal.Zero
	}
	return confidence
}

// severityFor bands magnitude into strictly ordered severities. Boundary
// values land in the higher band.
func severityFor(kind models.SignalKind, magnitude float64) models.Severity {
	switch kind {
	case models.SignalTrend:
		switch {
		case magnitude >= 0.40:
			return models.SeverityCritical
		case magnitude >= 0.15:
			return models.SeverityHigh
		case magnitude >= 0.05:
			return models.SeverityMedium
		default:
			return models.SeverityLow
		}
	case models.SignalAnomaly:
		switch {
		case magnitude >= 4.0:
			return models.SeverityCritical
		case magnitude >= 3.0:
			return models.SeverityHigh
		default:
			return models.SeverityMedium
		}
	case models.SignalCorrelation:
		switch {
		case magnitude >= 0.95:
			return models.SeverityCritical
		case magnitude >= 0.85:
			return models.SeverityHigh
		case magnitude >= 0.70:
			return models.SeverityMedium
		default:
			return models.SeverityLow
		}
	case models.SignalComparison:
		switch {
		case magnitude >= 1.0:
			return models.SeverityCritical
		case magnitude >= 0.50:
			return models.SeverityHigh
		case magnitude >= 0.25:
			return models.SeverityMedium
		default:
			return models.SeverityLow
		}
	default:
		return models.SeverityLow
	}
}

func summaryText(lead models.Signal, evidenceCount int) string {
	switch lead.Kind {
	case models.SignalTrend:
		return fmt.Sprintf("%s trend in %s", titleDirection(lead.Direction), lead.Subject)
	case models.SignalAnomaly:
		if evidenceCount > 1 {
			return fmt.Sprintf("%d anomalies detected in %s", evidenceCount, lead.Subject)
		}
		return fmt.Sprintf("Anomaly detected in %s", lead.Subject)
	case models.SignalCorrelation:
		return fmt.Sprintf("%s correlation: %s", titleDirection(lead.Direction), lead.Subject)
	case models.SignalComparison:
		metric := lead.Subject
		if idx := strings.Index(metric, ":"); idx > 0 {
			metric = metric[:idx]
		}
		return fmt.Sprintf("%s outperforms %s in %s", lead.GroupA, lead.GroupB, metric)
	default:
		return fmt.Sprintf("Insight on %s", lead.Subject)
	}
}

func titleDirection(d models.Direction) string {
	if d == models.DirectionNone || d == "" {
		return "Flat"
	}
	return cases.Title(language.English).String(string(d))
}
