package domain

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// line is a fitted model y = Intercept + Slope*x.
type line struct {
	Intercept float64
	Slope     float64
}

func (l line) at(x float64) float64 {
	return l.Intercept + l.Slope*x
}

// fitLine runs an ordinary least-squares fit of ys on xs with a free
// intercept. It reports false when the fit is undefined: mismatched input,
// fewer than two distinct x values, or a non-finite result.
func fitLine(xs, ys []float64) (line, bool) {
	if len(xs) != len(ys) || distinct(xs) < 2 {
		return line{}, false
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) || math.IsInf(alpha, 0) || math.IsInf(beta, 0) {
		return line{}, false
	}
	return line{Intercept: alpha, Slope: beta}, true
}

func distinct(xs []float64) int {
	seen := make(map[float64]struct{}, len(xs))
	for _, x := range xs {
		seen[x] = struct{}{}
	}
	return len(seen)
}
