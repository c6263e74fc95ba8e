package main

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/progeny/telemetry"
)

// Fit is a Weibull maximum-likelihood fit of one duration.
type Fit struct {
	Duration      string  `csv:"duration"`
	N             int     `csv:"n"`
	K             float64 `csv:"k"`
	Lambda        float64 `csv:"lambda"`
	LogLikelihood float64 `csv:"log_likelihood"`
	SampleMean    float64 `csv:"sample_mean"`
	FitMean       float64 `csv:"fit_mean"`
	SampleMedian  float64 `csv:"sample_median"`
	FitMedian     float64 `csv:"fit_median"`
}

var errTooFewSamples = errors.New("need at least two positive samples")

// Samples extracts the drawn durations of one kind from lifecycle events.
// Maturation comes from conceive events and aging from found and promote
// events, so every organism contributes once whether or not it lived out
// the duration.
func Samples(events []telemetry.LifeEvent, duration string) ([]float64, error) {
	var out []float64
	for _, ev := range events {
		var v float64
		switch duration {
		case "maturation":
			if ev.Type != telemetry.EventConceive {
				continue
			}
			v = ev.Maturation
		case "aging":
			if ev.Type != telemetry.EventFound && ev.Type != telemetry.EventPromote {
				continue
			}
			v = ev.Aging
		default:
			return nil, fmt.Errorf("unknown duration %q (want maturation or aging)", duration)
		}
		if v > 0 {
			out = append(out, v)
		}
	}
	return out, nil
}

// negLogLikelihood returns the Weibull negative log-likelihood of samples.
func negLogLikelihood(k, lambda float64, samples []float64) float64 {
	dist := distuv.Weibull{K: k, Lambda: lambda}
	sum := 0.0
	for _, s := range samples {
		sum += dist.LogProb(s)
	}
	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return math.MaxFloat64
	}
	return -sum
}

// FitWeibull fits shape and scale to samples by Nelder-Mead minimization
// of the negative log-likelihood.
func FitWeibull(duration string, samples []float64, maxEvals int) (Fit, error) {
	if len(samples) < 2 {
		return Fit{}, errTooFewSamples
	}
	params := NewParamVector(samples)
	mean := stat.Mean(samples, nil)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			return negLogLikelihood(raw[0], raw[1], samples)
		},
	}
	settings := &optimize.Settings{
		FuncEvaluations: maxEvals,
	}

	result, err := optimize.Minimize(problem, params.Start(mean), settings, &optimize.NelderMead{})
	if err != nil && result == nil {
		return Fit{}, fmt.Errorf("minimizing: %w", err)
	}

	raw := params.Denormalize(result.X)
	dist := distuv.Weibull{K: raw[0], Lambda: raw[1]}
	return Fit{
		Duration:      duration,
		N:             len(samples),
		K:             raw[0],
		Lambda:        raw[1],
		LogLikelihood: -result.F,
		SampleMean:    mean,
		FitMean:       dist.Mean(),
		SampleMedian:  telemetry.ComputeDistribution(samples).P50,
		FitMedian:     dist.Quantile(0.5),
	}, nil
}
