package analysis

import "math"

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the population standard deviation.
func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// sampleVariance uses the n-1 denominator; it feeds the two-sample test.
func sampleVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(values)-1)
}

// linearRegression fits y against x = 0..n-1 by least squares and returns
// the slope, intercept and Pearson r of the fit.
func linearRegression(y []float64) (slope, intercept, r float64) {
	n := float64(len(y))
	if n < 2 {
		return 0, mean(y), 0
	}

	var sumX, sumY, sumXY, sumXX, sumYY float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
		sumYY += v * v
	}

	denomX := n*sumXX - sumX*sumX
	if denomX == 0 {
		return 0, mean(y), 0
	}
	slope = (n*sumXY - sumX*sumY) / denomX
	intercept = (sumY - slope*sumX) / n

	denomY := n*sumYY - sumY*sumY
	if denomY <= 0 {
		// Constant series: slope is zero and r undefined.
		return slope, intercept, 0
	}
	r = (n*sumXY - sumX*sumY) / math.Sqrt(denomX*denomY)
	return slope, intercept, r
}

// pearson computes the correlation coefficient of two equal-length samples.
func pearson(x, y []float64) float64 {
	n := len(x)
	if n != len(y) || n < 2 {
		return 0
	}
	mx, my := mean(x), mean(y)
	var cov, vx, vy float64
	for i := 0; i < n; i++ {
		dx := x[i] - mx
		dy := y[i] - my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	return cov / math.Sqrt(vx*vy)
}

// welchTest runs Welch's two-sample t-test and returns the t statistic and a
// two-sided p-value. The p-value uses the normal approximation to the t
// distribution, which is adequate at the group sizes the analyzer requires.
func welchTest(a, b []float64) (t, p float64) {
	na, nb := float64(len(a)), float64(len(b))
	if na < 2 || nb < 2 {
		return 0, 1
	}
	va, vb := sampleVariance(a), sampleVariance(b)
	se := math.Sqrt(va/na + vb/nb)
	if se == 0 {
		if mean(a) == mean(b) {
			return 0, 1
		}
		// Identical within groups but different between them.
		return math.Inf(1), 0
	}
	t = (mean(a) - mean(b)) / se
	p = math.Erfc(math.Abs(t) / math.Sqrt2)
	return t, p
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
