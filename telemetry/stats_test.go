package telemetry

import (
	"math"
	"testing"
)

func TestComputeDistribution(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Distribution
	}{
		{"empty slice", []float64{}, Distribution{}},
		{"single element", []float64{5}, Distribution{N: 1, Mean: 5, P10: 5, P50: 5, P90: 5}},
		{"constant", []float64{2, 2, 2, 2}, Distribution{N: 4, Mean: 2, P10: 2, P50: 2, P90: 2}},
		{
			"one to ten unsorted",
			[]float64{10, 3, 1, 7, 2, 9, 4, 8, 6, 5},
			Distribution{N: 10, Mean: 5.5, Std: math.Sqrt(82.5 / 9), P10: 1, P50: 5, P90: 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDistribution(tt.values)
			if got.N != tt.want.N {
				t.Errorf("N = %d, want %d", got.N, tt.want.N)
			}
			check := func(field string, got, want float64) {
				if math.Abs(got-want) > 1e-9 {
					t.Errorf("%s = %v, want %v", field, got, want)
				}
			}
			check("Mean", got.Mean, tt.want.Mean)
			check("Std", got.Std, tt.want.Std)
			check("P10", got.P10, tt.want.P10)
			check("P50", got.P50, tt.want.P50)
			check("P90", got.P90, tt.want.P90)
		})
	}
}

func TestComputeDistributionLeavesInput(t *testing.T) {
	values := []float64{3, 1, 2}
	ComputeDistribution(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input reordered: %v", values)
	}
}
