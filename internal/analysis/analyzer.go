package analysis

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/sirupsen/logrus"

	"github.com/insightlab/insight-engine-go/internal/config"
	"github.com/insightlab/insight-engine-go/internal/models"
	"github.com/insightlab/insight-engine-go/internal/utils"
)

// Result holds the partial output of one table analysis: the signals that
// fired plus a skip record for every column that could not be used.
type Result struct {
	TableID string                 `json:"table_id"`
	Signals []models.Signal        `json:"signals"`
	Skipped []models.SkippedColumn `json:"skipped"`
}

// Analyzer computes primitive statistical signals (trend, anomaly,
// correlation, comparison) over the numeric columns of a table. Per-column
// computations are independent and run on a bounded worker pool; a failing
// column never aborts the rest.
type Analyzer struct {
	cfg    config.AnalysisConfig
	logger *logrus.Logger
}

// NewAnalyzer creates a new statistical analyzer.
func NewAnalyzer(cfg config.AnalysisConfig, logger *logrus.Logger) *Analyzer {
	return &Analyzer{cfg: cfg, logger: logger}
}

// Analyze runs all detectors over the table and returns partial results.
// It fails only for malformed input (InvalidTableError) or a cancelled
// context; insufficient columns are skipped and reported.
func (a *Analyzer) Analyze(ctx context.Context, table *models.Table) (*Result, error) {
	if table == nil {
		return nil, utils.NewInvalidTableError("", "table is nil")
	}
	if len(table.Columns) == 0 {
		return nil, utils.NewInvalidTableError(table.ID, "table has no columns")
	}
	if table.RowCount() == 0 {
		return nil, utils.NewInvalidTableError(table.ID, "table has no rows")
	}

	result := &Result{TableID: table.ID}

	order := rowOrder(table)
	series, skipped := a.extractSeries(table, order)
	result.Skipped = skipped

	if len(series) == 0 {
		a.logger.WithFields(logrus.Fields{
			"table":   table.ID,
			"skipped": len(skipped),
		}).Warn("No usable numeric columns")
		return result, nil
	}

	// Per-column detectors run independently on a bounded pool.
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		jobs    = make(chan models.MetricSeries)
		workers = a.cfg.MaxWorkers
	)
	if workers > len(series) {
		workers = len(series)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range jobs {
				// Keep draining on cancellation so the producer never
				// blocks on a send.
				if ctx.Err() != nil {
					continue
				}
				signals := a.analyzeColumn(s)
				mu.Lock()
				result.Signals = append(result.Signals, signals...)
				mu.Unlock()
			}
		}()
	}
	for _, s := range series {
		jobs <- s
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.Signals = append(result.Signals, a.detectCorrelations(table.ID, series)...)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.Signals = append(result.Signals, a.compareGroups(table.ID, series)...)

	// Parallel merge order is arbitrary; fix it so downstream output is
	// deterministic.
	sort.Slice(result.Signals, func(i, j int) bool {
		si, sj := result.Signals[i], result.Signals[j]
		if si.Kind != sj.Kind {
			return si.Kind < sj.Kind
		}
		if si.Subject != sj.Subject {
			return si.Subject < sj.Subject
		}
		if si.Window != sj.Window {
			return si.Window.Start < sj.Window.Start ||
				(si.Window.Start == sj.Window.Start && si.Window.End < sj.Window.End)
		}
		return firstRow(si) < firstRow(sj)
	})

	a.logger.WithFields(logrus.Fields{
		"table":   table.ID,
		"signals": len(result.Signals),
		"skipped": len(result.Skipped),
	}).Info("Table analysis completed")

	return result, nil
}

func firstRow(s models.Signal) int {
	if len(s.Rows) == 0 {
		return -1
	}
	return s.Rows[0]
}

// rowOrder returns the row permutation sorted by the time column, or the
// identity order when no usable time column exists.
func rowOrder(table *models.Table) []int {
	n := table.RowCount()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	if table.TimeColumn == "" {
		return order
	}
	col := table.Column(table.TimeColumn)
	if col == nil {
		return order
	}

	times := make([]time.Time, n)
	usable := true
	for i := 0; i < n && usable; i++ {
		if i >= len(col.Values) {
			usable = false
			break
		}
		switch v := col.Values[i].(type) {
		case time.Time:
			times[i] = v
		case string:
			parsed, err := time.Parse(time.RFC3339, v)
			if err != nil {
				parsed, err = time.Parse("2006-01-02", v)
			}
			if err != nil {
				usable = false
				break
			}
			times[i] = parsed
		default:
			usable = false
		}
	}
	if !usable {
		return order
	}

	sort.SliceStable(order, func(i, j int) bool {
		return times[order[i]].Before(times[order[j]])
	})
	return order
}

// extractSeries builds one MetricSeries per numeric column in time order,
// recording a skip reason for columns below the minimum sample count.
func (a *Analyzer) extractSeries(table *models.Table, order []int) ([]models.MetricSeries, []models.SkippedColumn) {
	var (
		series  []models.MetricSeries
		skipped []models.SkippedColumn
	)

	var groupLabels []string
	if table.GroupColumn != "" {
		if col := table.Column(table.GroupColumn); col != nil {
			groupLabels = col.Labels()
		}
	}

	for _, col := range table.NumericColumns() {
		values := make([]float64, 0, len(order))
		rows := make([]int, 0, len(order))
		for _, row := range order {
			if row >= len(col.Values) {
				continue
			}
			if f, ok := numericCell(col.Values[row]); ok {
				values = append(values, f)
				rows = append(rows, row)
			}
		}

		if len(values) < a.cfg.MinSampleSize {
			err := utils.NewInsufficientDataError(table.ID, col.Name, len(values), a.cfg.MinSampleSize)
			a.logger.WithFields(logrus.Fields{
				"table":  table.ID,
				"column": col.Name,
			}).Warn(err.Error())
			skipped = append(skipped, models.SkippedColumn{
				TableID: table.ID,
				Column:  col.Name,
				Reason:  err.Error(),
			})
			continue
		}

		s := models.MetricSeries{
			Name:         col.Name,
			TableID:      table.ID,
			Values:       values,
			Rows:         rows,
			Completeness: float64(len(values)) / float64(len(col.Values)),
		}
		if groupLabels != nil {
			groups := make([]string, len(rows))
			for i, row := range rows {
				if row < len(groupLabels) {
					groups[i] = groupLabels[row]
				}
			}
			s.Groups = groups
		}
		series = append(series, s)
	}

	return series, skipped
}

func numericCell(v interface{}) (float64, bool) {
	switch value := v.(type) {
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return 0, false
		}
		return value, true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	default:
		return 0, false
	}
}

// analyzeColumn runs the single-column detectors.
func (a *Analyzer) analyzeColumn(s models.MetricSeries) []models.Signal {
	var signals []models.Signal
	if sig := a.detectTrend(s); sig != nil {
		signals = append(signals, *sig)
	}
	signals = append(signals, a.detectAnomalies(s)...)
	return signals
}

// detectTrend fits a regression over the trailing window and signals when the
// slope, normalized by the full-series standard deviation, clears the
// threshold.
func (a *Analyzer) detectTrend(s models.MetricSeries) *models.Signal {
	window := a.cfg.TrendWindow
	if window > len(s.Values) {
		window = len(s.Values)
	}
	start := len(s.Values) - window
	tail := s.Values[start:]

	slope, _, r := linearRegression(tail)
	seriesStd := stdDev(s.Values)
	if seriesStd == 0 {
		return nil
	}
	if math.Abs(slope)/seriesStd < a.cfg.TrendThreshold {
		return nil
	}

	first, last := tail[0], tail[len(tail)-1]
	if first == 0 {
		return nil
	}
	pctChange := (last - first) / math.Abs(first)
	if pctChange == 0 {
		return nil
	}

	direction := models.DirectionIncreasing
	if slope < 0 {
		direction = models.DirectionDecreasing
	}

	return &models.Signal{
		Kind:         models.SignalTrend,
		Subject:      s.Name,
		TableID:      s.TableID,
		Magnitude:    math.Abs(pctChange),
		Direction:    direction,
		Window:       models.Window{Start: s.Rows[start], End: s.Rows[len(s.Rows)-1]},
		SampleSize:   window,
		Completeness: s.Completeness,
		Strength:     clamp01(math.Abs(r)),
		Detail: map[string]float64{
			"slope":      slope,
			"r_squared":  r * r,
			"pct_change": pctChange * 100,
			"first":      first,
			"last":       last,
			"periods":    float64(window),
		},
	}
}

// detectAnomalies flags points whose z-score against the rolling mean/std of
// the preceding window exceeds the threshold. The rolling mean comes from an
// SMA over the series; the current point is excluded from its own baseline.
func (a *Analyzer) detectAnomalies(s models.MetricSeries) []models.Signal {
	window := a.cfg.AnomalyWindow
	if len(s.Values) <= window {
		return nil
	}

	sma := trend.NewSmaWithPeriod[float64](window)
	rolling := helper.ChanToSlice(sma.Compute(helper.SliceToChan(s.Values)))

	seriesStd := stdDev(s.Values)
	var signals []models.Signal
	for i := window; i < len(s.Values); i++ {
		// rolling[i-window] is the mean of values[i-window : i].
		baseline := rolling[i-window]
		std := stdDev(s.Values[i-window : i])
		if std == 0 {
			std = seriesStd
		}
		if std == 0 {
			continue
		}

		z := (s.Values[i] - baseline) / std
		if math.Abs(z) < a.cfg.AnomalyThreshold {
			continue
		}

		direction := models.DirectionPositive
		if z < 0 {
			direction = models.DirectionNegative
		}
		zCopy := z
		signals = append(signals, models.Signal{
			Kind:         models.SignalAnomaly,
			Subject:      s.Name,
			TableID:      s.TableID,
			Magnitude:    math.Abs(z),
			Direction:    direction,
			ZScore:       &zCopy,
			Window:       models.Window{Start: s.Rows[0], End: s.Rows[len(s.Rows)-1]},
			Rows:         []int{s.Rows[i]},
			SampleSize:   len(s.Values),
			Completeness: s.Completeness,
			Strength:     clamp01(math.Abs(z) / 4),
			Detail: map[string]float64{
				"value":    s.Values[i],
				"expected": baseline,
				"std":      std,
				"z_score":  z,
			},
		})
	}
	return signals
}

// detectCorrelations computes pairwise Pearson coefficients across numeric
// series over rows where both values are present.
func (a *Analyzer) detectCorrelations(tableID string, series []models.MetricSeries) []models.Signal {
	var signals []models.Signal
	for i := 0; i < len(series); i++ {
		for j := i + 1; j < len(series); j++ {
			x, y, rows := pairedValues(series[i], series[j])
			if len(x) < a.cfg.MinSampleSize {
				continue
			}
			r := pearson(x, y)
			if math.Abs(r) < a.cfg.CorrelationThreshold {
				continue
			}

			direction := models.DirectionPositive
			if r < 0 {
				direction = models.DirectionNegative
			}
			completeness := (series[i].Completeness + series[j].Completeness) / 2
			signals = append(signals, models.Signal{
				Kind:         models.SignalCorrelation,
				Subject:      series[i].Name + "::" + series[j].Name,
				TableID:      tableID,
				Magnitude:    math.Abs(r),
				Direction:    direction,
				Window:       models.Window{Start: rows[0], End: rows[len(rows)-1]},
				SampleSize:   len(x),
				Completeness: completeness,
				Strength:     clamp01(math.Abs(r)),
				Detail: map[string]float64{
					"r":           r,
					"sample_size": float64(len(x)),
				},
			})
		}
	}
	return signals
}

// pairedValues aligns two series on their shared row indexes.
func pairedValues(a, b models.MetricSeries) (x, y []float64, rows []int) {
	byRow := make(map[int]float64, len(b.Rows))
	for i, row := range b.Rows {
		byRow[row] = b.Values[i]
	}
	for i, row := range a.Rows {
		if v, ok := byRow[row]; ok {
			x = append(x, a.Values[i])
			y = append(y, v)
			rows = append(rows, row)
		}
	}
	return x, y, rows
}

// compareGroups aggregates each numeric series by group label and tests the
// deltas between adjacent top groups. Groups too small for the two-sample
// test still report, flagged "significance unknown" with reduced strength.
func (a *Analyzer) compareGroups(tableID string, series []models.MetricSeries) []models.Signal {
	var signals []models.Signal
	for _, s := range series {
		if s.Groups == nil {
			continue
		}

		byGroup := make(map[string][]float64)
		rowsByGroup := make(map[string][]int)
		for i, g := range s.Groups {
			if g == "" {
				continue
			}
			byGroup[g] = append(byGroup[g], s.Values[i])
			rowsByGroup[g] = append(rowsByGroup[g], s.Rows[i])
		}
		if len(byGroup) < 2 {
			continue
		}

		type groupAgg struct {
			name string
			sum  float64
		}
		groups := make([]groupAgg, 0, len(byGroup))
		for name, values := range byGroup {
			sum := 0.0
			for _, v := range values {
				sum += v
			}
			groups = append(groups, groupAgg{name: name, sum: sum})
		}
		sort.Slice(groups, func(i, j int) bool {
			if groups[i].sum != groups[j].sum {
				return groups[i].sum > groups[j].sum
			}
			return groups[i].name < groups[j].name
		})

		top := len(groups)
		if top > 3 {
			top = 3
		}
		for i := 0; i < top-1; i++ {
			ga, gb := groups[i], groups[i+1]
			if gb.sum == 0 {
				continue
			}
			pct := (ga.sum - gb.sum) / math.Abs(gb.sum)
			if pct == 0 {
				continue
			}

			sig := models.Signal{
				Kind:      models.SignalComparison,
				Subject:   s.Name + ":" + ga.name + " vs " + gb.name,
				TableID:   tableID,
				Magnitude: math.Abs(pct),
				Direction: models.DirectionPositive,
				Window: models.Window{
					Start: minInt(rowsByGroup[ga.name][0], rowsByGroup[gb.name][0]),
					End:   maxInt(lastInt(rowsByGroup[ga.name]), lastInt(rowsByGroup[gb.name])),
				},
				GroupA:       ga.name,
				GroupB:       gb.name,
				SampleSize:   len(byGroup[ga.name]) + len(byGroup[gb.name]),
				Completeness: s.Completeness,
				Detail: map[string]float64{
					"value_a":    ga.sum,
					"value_b":    gb.sum,
					"delta":      ga.sum - gb.sum,
					"pct_diff":   pct * 100,
					"group_a_n":  float64(len(byGroup[ga.name])),
					"group_b_n":  float64(len(byGroup[gb.name])),
					"mean_a":     mean(byGroup[ga.name]),
					"mean_b":     mean(byGroup[gb.name]),
				},
			}

			if len(byGroup[ga.name]) >= a.cfg.ComparisonMinGroupSize &&
				len(byGroup[gb.name]) >= a.cfg.ComparisonMinGroupSize {
				t, p := welchTest(byGroup[ga.name], byGroup[gb.name])
				if p > a.cfg.SignificanceLevel {
					continue
				}
				pCopy := p
				sig.PValue = &pCopy
				sig.Strength = clamp01(1 - p)
				sig.Detail["t_statistic"] = t
			} else {
				sig.Note = "significance unknown"
				sig.Strength = 0.4
			}
			signals = append(signals, sig)
		}
	}
	return signals
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func lastInt(values []int) int {
	return values[len(values)-1]
}
