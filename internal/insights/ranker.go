package insights

import (
	"math"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/insightlab/insight-engine-go/internal/config"
	"github.com/insightlab/insight-engine-go/internal/models"
)

// typeSynonyms maps the words recognized for each insight type when matching
// a profile's preferred types.
var typeSynonyms = map[models.InsightType][]string{
	models.InsightTrend:       {"trend", "trending", "pattern", "movement"},
	models.InsightAnomaly:     {"anomaly", "outlier", "unusual", "spike", "drop"},
	models.InsightComparison:  {"comparison", "benchmark", "compare", "difference", "versus", "vs"},
	models.InsightCorrelation: {"correlation", "relationship", "association", "related"},
}

// Ranker filters candidates against a role requirement profile and orders
// the survivors. It never fails for "no matches": when strict filtering
// removes everything, the unfiltered top candidates are returned instead,
// because an empty result is a worse outcome than a lower-confidence one.
type Ranker struct {
	cfg    config.InsightsConfig
	logger *logrus.Logger
}

// NewRanker creates a new role filter and ranker.
func NewRanker(cfg config.InsightsConfig, logger *logrus.Logger) *Ranker {
	return &Ranker{cfg: cfg, logger: logger}
}

// Rank applies the role's filters, sorts, truncates to MaxInsights and
// applies the fallback rule. An empty candidate set returns an empty list
// with FallbackApplied=false, distinct from "everything filtered out".
func (r *Ranker) Rank(candidates []models.InsightCandidate, profile models.RoleRequirementProfile) models.RankedInsightList {
	list := models.RankedInsightList{RoleID: profile.RoleID}
	if len(candidates) == 0 {
		list.Insights = []models.InsightCandidate{}
		return list
	}

	var qualified []models.InsightCandidate
	for _, cand := range candidates {
		if !cand.Confidence.GreaterThanOrEqual(profile.MinConfidence) {
			continue
		}
		if !typeMatches(cand.Type, profile.PreferredTypes) {
			continue
		}
		if !focusMatches(cand.Subject, profile.FocusAreas) {
			continue
		}
		qualified = append(qualified, cand)
	}

	if len(qualified) == 0 {
		// Fallback: ignore the filters and surface the strongest
		// candidates so the caller never receives an empty report.
		fallback := append([]models.InsightCandidate(nil), candidates...)
		sortBySeverityConfidence(fallback)
		limit := r.cfg.FallbackCount
		if limit > len(fallback) {
			limit = len(fallback)
		}
		list.Insights = fallback[:limit]
		list.FallbackApplied = true

		r.logger.WithFields(logrus.Fields{
			"role":       profile.RoleID,
			"candidates": len(candidates),
			"returned":   limit,
		}).Warn("All candidates filtered out, applying fallback")
		return list
	}

	sortRanked(qualified)
	if len(qualified) > profile.MaxInsights {
		qualified = qualified[:profile.MaxInsights]
	}
	list.Insights = qualified
	return list
}

// typeMatches accepts a direct type match or any synonym overlap with the
// profile's preferred types.
func typeMatches(t models.InsightType, preferred []models.InsightType) bool {
	if len(preferred) == 0 {
		return true
	}
	synonyms := typeSynonyms[t]
	for _, p := range preferred {
		if p == t {
			return true
		}
		lower := strings.ToLower(string(p))
		for _, syn := range synonyms {
			if strings.Contains(lower, syn) || strings.Contains(syn, lower) {
				return true
			}
		}
	}
	return false
}

// focusMatches checks the subject against the focus-area patterns with
// case-insensitive substring/prefix matching.
func focusMatches(subject string, focusAreas []string) bool {
	if len(focusAreas) == 0 {
		return true
	}
	lowerSubject := strings.ToLower(subject)
	for _, pattern := range focusAreas {
		lower := strings.ToLower(pattern)
		if strings.Contains(lowerSubject, lower) || strings.HasPrefix(lower, lowerSubject) {
			return true
		}
	}
	return false
}

// sortRanked orders by severity desc, confidence desc, |magnitude| desc and
// finally candidate id for determinism.
func sortRanked(cands []models.InsightCandidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		ri, rj := models.SeverityRank(cands[i].Severity), models.SeverityRank(cands[j].Severity)
		if ri != rj {
			return ri > rj
		}
		if cmp := cands[i].Confidence.Cmp(cands[j].Confidence); cmp != 0 {
			return cmp > 0
		}
		mi, mj := math.Abs(cands[i].Magnitude), math.Abs(cands[j].Magnitude)
		if mi != mj {
			return mi > mj
		}
		return cands[i].ID < cands[j].ID
	})
}

// sortBySeverityConfidence is the fallback ordering.
func sortBySeverityConfidence(cands []models.InsightCandidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		ri, rj := models.SeverityRank(cands[i].Severity), models.SeverityRank(cands[j].Severity)
		if ri != rj {
			return ri > rj
		}
		if cmp := cands[i].Confidence.Cmp(cands[j].Confidence); cmp != 0 {
			return cmp > 0
		}
		return cands[i].ID < cands[j].ID
	})
}
