package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, mean(nil))
	assert.Equal(t, 5.0, mean([]float64{5}))
	assert.Equal(t, 2.5, mean([]float64{1, 2, 3, 4}))
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, stdDev(nil))
	assert.Equal(t, 0.0, stdDev([]float64{7, 7, 7}))
	// Population std of {2,4,4,4,5,5,7,9} is exactly 2.
	assert.InDelta(t, 2.0, stdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
}

func TestSampleVariance(t *testing.T) {
	assert.Equal(t, 0.0, sampleVariance([]float64{3}))
	// Sample variance of {1,2,3,4,5} is 2.5.
	assert.InDelta(t, 2.5, sampleVariance([]float64{1, 2, 3, 4, 5}), 1e-9)
}

func TestLinearRegression(t *testing.T) {
	tests := []struct {
		name      string
		y         []float64
		wantSlope float64
		wantR     float64
	}{
		{name: "perfect rising line", y: []float64{1, 2, 3, 4, 5}, wantSlope: 1, wantR: 1},
		{name: "perfect falling line", y: []float64{10, 8, 6, 4, 2}, wantSlope: -2, wantR: -1},
		{name: "constant series", y: []float64{3, 3, 3, 3}, wantSlope: 0, wantR: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slope, _, r := linearRegression(tt.y)
			assert.InDelta(t, tt.wantSlope, slope, 1e-9)
			assert.InDelta(t, tt.wantR, r, 1e-9)
		})
	}
}

func TestLinearRegressionTooShort(t *testing.T) {
	slope, intercept, r := linearRegression([]float64{42})
	assert.Equal(t, 0.0, slope)
	assert.Equal(t, 42.0, intercept)
	assert.Equal(t, 0.0, r)
}

func TestPearson(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}

	assert.InDelta(t, 1.0, pearson(x, []float64{2, 4, 6, 8, 10}), 1e-9)
	assert.InDelta(t, -1.0, pearson(x, []float64{10, 8, 6, 4, 2}), 1e-9)

	// Zero variance on one side gives no correlation.
	assert.Equal(t, 0.0, pearson(x, []float64{5, 5, 5, 5, 5}))

	// Mismatched lengths are rejected.
	assert.Equal(t, 0.0, pearson(x, []float64{1, 2}))
}

func TestWelchTest(t *testing.T) {
	t.Run("clearly different groups", func(t *testing.T) {
		a := []float64{100, 102, 98, 101, 99, 100, 103, 97}
		b := []float64{50, 52, 48, 51, 49, 50, 53, 47}
		tStat, p := welchTest(a, b)
		assert.Greater(t, tStat, 10.0)
		assert.Less(t, p, 0.001)
	})

	t.Run("identical groups", func(t *testing.T) {
		a := []float64{10, 12, 11, 13, 9}
		tStat, p := welchTest(a, a)
		assert.Equal(t, 0.0, tStat)
		assert.InDelta(t, 1.0, p, 1e-9)
	})

	t.Run("undersized groups", func(t *testing.T) {
		_, p := welchTest([]float64{1}, []float64{2, 3})
		assert.Equal(t, 1.0, p)
	})

	t.Run("zero variance different means", func(t *testing.T) {
		tStat, p := welchTest([]float64{5, 5, 5}, []float64{9, 9, 9})
		assert.True(t, math.IsInf(tStat, 1))
		assert.Equal(t, 0.0, p)
	})
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-0.5))
	assert.Equal(t, 0.3, clamp01(0.3))
	assert.Equal(t, 1.0, clamp01(1.7))
}
