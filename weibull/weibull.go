// Package weibull provides the two-parameter Weibull quantile and CDF used
// to turn uniform draws into lifecycle durations.
package weibull

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// MaxP is the largest cumulative probability the quantile is evaluated at.
// The quantile diverges at p = 1.
var MaxP = math.Nextafter(1, 0)

// ClampP limits p to [0, MaxP].
func ClampP(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > MaxP {
		return MaxP
	}
	return p
}

// Quantile returns the duration at cumulative probability p for a Weibull
// with shape k and scale l: l * (-ln(1-p))^(1/k).
// Non-positive parameters yield zero.
func Quantile(k, l, p float64) float64 {
	if k <= 0 || l <= 0 {
		return 0
	}
	return distuv.Weibull{K: k, Lambda: l}.Quantile(ClampP(p))
}

// CDF returns 1 - exp(-(x/tc)^k), the probability that the event has
// happened after x. Non-positive parameters or x yield zero.
func CDF(tc, k, x float64) float64 {
	if k <= 0 || tc <= 0 || x <= 0 {
		return 0
	}
	return distuv.Weibull{K: k, Lambda: tc}.CDF(x)
}
