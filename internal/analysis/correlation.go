package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Autocorrelation returns r[0..maxLag] with r[0] = 1. A constant series has
// no defined correlation and yields nil.
func Autocorrelation(data []float64, maxLag int) []float64 {
	n := len(data)
	if n == 0 || maxLag < 0 {
		return nil
	}
	if maxLag > n-1 {
		maxLag = n - 1
	}

	c := make([]float64, n)
	copy(c, data)
	floats.AddConst(-stat.Mean(data, nil), c)

	norm := floats.Dot(c, c)
	if norm == 0 {
		return nil
	}

	r := make([]float64, maxLag+1)
	for k := range r {
		r[k] = floats.Dot(c[:n-k], c[k:]) / norm
	}
	return r
}

// CorrelationTime is the first lag whose autocorrelation falls below 1/e,
// or len(r) when it never does.
func CorrelationTime(r []float64) int {
	for k, v := range r {
		if v < 1/math.E {
			return k
		}
	}
	return len(r)
}

type Summary struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

func Summarize(data []float64) Summary {
	if len(data) == 0 {
		return Summary{}
	}
	mean, std := stat.MeanStdDev(data, nil)
	if len(data) == 1 {
		std = 0
	}
	return Summary{
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(data),
		Max:    floats.Max(data),
	}
}
