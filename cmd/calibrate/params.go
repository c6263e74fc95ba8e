package main

import "math"

// ParamSpec defines a single fitted parameter.
type ParamSpec struct {
	Name string  // Human-readable name
	Min  float64 // Lower bound
	Max  float64 // Upper bound
}

// ParamVector holds the Weibull parameters being fitted. The optimizer
// works on their logarithms so both stay positive.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector returns the shape and scale parameters. The scale bounds
// follow the sample range.
func NewParamVector(samples []float64) *ParamVector {
	lo, hi := math.Inf(1), 0.0
	for _, s := range samples {
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "k", Min: 0.05, Max: 50},
			{Name: "lambda", Min: lo / 10, Max: hi * 10},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Start returns the log-space starting point: k = 1 and lambda at the
// sample mean.
func (pv *ParamVector) Start(mean float64) []float64 {
	return []float64{0, math.Log(mean)}
}

// Denormalize converts log-space values to clamped raw parameters.
func (pv *ParamVector) Denormalize(x []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = math.Max(spec.Min, math.Min(spec.Max, math.Exp(x[i])))
	}
	return raw
}
