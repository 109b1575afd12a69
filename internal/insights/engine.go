package insights

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/insightlab/insight-engine-go/internal/analysis"
	"github.com/insightlab/insight-engine-go/internal/config"
	"github.com/insightlab/insight-engine-go/internal/models"
	"github.com/insightlab/insight-engine-go/internal/roles"
	"github.com/insightlab/insight-engine-go/internal/utils"
)

// InsightStore persists composed candidates. Writes are idempotent on the
// candidate id, so re-running a generation never duplicates rows.
type InsightStore interface {
	SaveCandidates(ctx context.Context, generationID string, candidates []models.InsightCandidate) error
}

// ResultCache caches ranked lists keyed by input fingerprint and role.
type ResultCache interface {
	GetResult(ctx context.Context, tables map[string]*models.Table, roleID string) (*models.RankedInsightList, bool)
	SetResult(ctx context.Context, tables map[string]*models.Table, roleID string, list *models.RankedInsightList) error
}

// Engine drives one full generation pass: analyze, synthesize, compose,
// filter and rank. Store and cache are optional; a nil store disables
// persistence and a nil cache disables result caching.
type Engine struct {
	analyzer    *analysis.Analyzer
	synthesizer *Synthesizer
	composer    *Composer
	ranker      *Ranker
	resolver    *roles.Resolver
	store       InsightStore
	cache       ResultCache
	logger      *logrus.Logger
	persist     bool
}

// NewEngine wires the pipeline stages together.
func NewEngine(cfg *config.Config, resolver *roles.Resolver, store InsightStore, cache ResultCache, logger *logrus.Logger) *Engine {
	return &Engine{
		analyzer:    analysis.NewAnalyzer(cfg.Analysis, logger),
		synthesizer: NewSynthesizer(cfg.Insights, logger),
		composer:    NewComposer(),
		ranker:      NewRanker(cfg.Insights, logger),
		resolver:    resolver,
		store:       store,
		cache:       cache,
		logger:      logger,
		persist:     cfg.Insights.PersistCandidates,
	}
}

// Generate produces a ranked insight list for one role over a set of tables.
// Role resolution happens first so an unknown role fails before any analysis
// work is spent. Table analysis runs in parallel, one goroutine per table;
// the analyzer bounds per-column parallelism internally.
func (e *Engine) Generate(ctx context.Context, tables map[string]*models.Table, roleID string) (*models.RankedInsightList, error) {
	profile, err := e.resolver.Resolve(roleID)
	if err != nil {
		return nil, fmt.Errorf("resolving role: %w", err)
	}
	if len(tables) == 0 {
		return nil, utils.NewInvalidTableError("", "no tables provided")
	}

	if e.cache != nil {
		if cached, ok := e.cache.GetResult(ctx, tables, roleID); ok {
			e.logger.WithField("role", roleID).Debug("Returning cached insight list")
			return cached, nil
		}
	}

	candidates, skipped, err := e.analyzeAll(ctx, tables)
	if err != nil {
		return nil, err
	}

	e.composer.ComposeAll(candidates)

	list := e.ranker.Rank(candidates, profile)
	list.GenerationID = uuid.New().String()
	list.GeneratedAt = time.Now().UTC()
	list.Summary = summarize(list.Insights)
	list.SkippedColumns = skipped

	e.logger.WithFields(logrus.Fields{
		"generation_id": list.GenerationID,
		"role":          roleID,
		"tables":        len(tables),
		"candidates":    len(candidates),
		"returned":      len(list.Insights),
		"fallback":      list.FallbackApplied,
	}).Info("Insight generation completed")

	if e.persist && e.store != nil {
		if err := e.store.SaveCandidates(ctx, list.GenerationID, candidates); err != nil {
			// Persistence is best-effort; the list is still valid.
			e.logger.WithError(err).Warn("Failed to persist insight candidates")
		}
	}
	if e.cache != nil {
		if err := e.cache.SetResult(ctx, tables, roleID, &list); err != nil {
			e.logger.WithError(err).Warn("Failed to cache insight list")
		}
	}

	return &list, nil
}

// GenerateBatch serves several roles from a single analysis pass. Analysis
// and synthesis run once; only filtering and ranking are repeated per role.
func (e *Engine) GenerateBatch(ctx context.Context, tables map[string]*models.Table, roleIDs []string) (map[string]*models.RankedInsightList, error) {
	if len(roleIDs) == 0 {
		return map[string]*models.RankedInsightList{}, nil
	}

	profiles := make(map[string]models.RoleRequirementProfile, len(roleIDs))
	for _, roleID := range roleIDs {
		profile, err := e.resolver.Resolve(roleID)
		if err != nil {
			return nil, fmt.Errorf("resolving role: %w", err)
		}
		profiles[roleID] = profile
	}
	if len(tables) == 0 {
		return nil, utils.NewInvalidTableError("", "no tables provided")
	}

	candidates, skipped, err := e.analyzeAll(ctx, tables)
	if err != nil {
		return nil, err
	}
	e.composer.ComposeAll(candidates)

	results := make(map[string]*models.RankedInsightList, len(roleIDs))
	for _, roleID := range roleIDs {
		list := e.ranker.Rank(candidates, profiles[roleID])
		list.GenerationID = uuid.New().String()
		list.GeneratedAt = time.Now().UTC()
		list.Summary = summarize(list.Insights)
		list.SkippedColumns = skipped
		results[roleID] = &list
	}

	e.logger.WithFields(logrus.Fields{
		"roles":      len(roleIDs),
		"tables":     len(tables),
		"candidates": len(candidates),
	}).Info("Batch insight generation completed")

	return results, nil
}

// analyzeAll runs the analyzer over every table concurrently, synthesizes
// the merged signals and returns candidates in deterministic order.
func (e *Engine) analyzeAll(ctx context.Context, tables map[string]*models.Table) ([]models.InsightCandidate, []models.SkippedColumn, error) {
	tableIDs := make([]string, 0, len(tables))
	for id := range tables {
		tableIDs = append(tableIDs, id)
	}
	sort.Strings(tableIDs)

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		signals  []models.Signal
		skipped  []models.SkippedColumn
		firstErr error
	)

	for _, id := range tableIDs {
		wg.Add(1)
		go func(table *models.Table) {
			defer wg.Done()
			result, err := e.analyzer.Analyze(ctx, table)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			signals = append(signals, result.Signals...)
			skipped = append(skipped, result.Skipped...)
		}(tables[id])
	}
	wg.Wait()

	if firstErr != nil {
		return nil, nil, firstErr
	}

	// Goroutine completion order is not deterministic; restore a stable
	// order before synthesis so outputs are reproducible byte for byte.
	sort.SliceStable(signals, func(i, j int) bool {
		if signals[i].TableID != signals[j].TableID {
			return signals[i].TableID < signals[j].TableID
		}
		if signals[i].Kind != signals[j].Kind {
			return signals[i].Kind < signals[j].Kind
		}
		return signals[i].Subject < signals[j].Subject
	})
	sort.SliceStable(skipped, func(i, j int) bool {
		if skipped[i].TableID != skipped[j].TableID {
			return skipped[i].TableID < skipped[j].TableID
		}
		return skipped[i].Column < skipped[j].Column
	})

	candidates := e.synthesizer.Synthesize(signals)
	return candidates, skipped, nil
}

// summarize computes the aggregate stats for a ranked list.
func summarize(insights []models.InsightCandidate) models.ListSummary {
	summary := models.ListSummary{Total: len(insights)}
	if len(insights) == 0 {
		summary.AvgConfidence = decimal.Zero
		return summary
	}
	sum := decimal.Zero
	for _, ins := range insights {
		sum = sum.Add(ins.Confidence)
		switch ins.Severity {
		case models.SeverityCritical:
			summary.Critical++
		case models.SeverityHigh:
			summary.High++
		}
	}
	summary.AvgConfidence = sum.Div(decimal.NewFromInt(int64(len(insights)))).Round(4)
	return summary
}
