package weibull

import (
	"math"
	"testing"
)

func TestQuantileScenario(t *testing.T) {
	got := Quantile(2.0, 1000, 0.5)
	want := 1000 * math.Sqrt(math.Ln2)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Quantile(2, 1000, 0.5) = %v, want %v", got, want)
	}
	if math.Abs(got-832.555) > 0.01 {
		t.Errorf("Quantile(2, 1000, 0.5) = %v, want ~832.55", got)
	}
}

func TestQuantileZeroP(t *testing.T) {
	if got := Quantile(3, 500, 0); got != 0 {
		t.Errorf("Quantile(3, 500, 0) = %v, want 0", got)
	}
}

func TestQuantileIncreasing(t *testing.T) {
	params := []struct{ k, l float64 }{
		{0.5, 10},
		{1, 1},
		{2, 1000},
		{5, 1e7},
	}
	for _, pr := range params {
		prev := -1.0
		for i := 0; i < 1000; i++ {
			p := float64(i) / 1000
			q := Quantile(pr.k, pr.l, p)
			if math.IsInf(q, 0) || math.IsNaN(q) {
				t.Fatalf("Quantile(%v, %v, %v) = %v, want finite", pr.k, pr.l, p, q)
			}
			if q <= prev {
				t.Fatalf("Quantile(%v, %v, %v) = %v, not above previous %v", pr.k, pr.l, p, q, prev)
			}
			prev = q
		}
	}
}

func TestQuantileClampsAtOne(t *testing.T) {
	for _, p := range []float64{1, 1.5, math.Inf(1)} {
		q := Quantile(2, 1000, p)
		if math.IsInf(q, 0) || math.IsNaN(q) {
			t.Errorf("Quantile(2, 1000, %v) = %v, want finite", p, q)
		}
		if q <= Quantile(2, 1000, 0.999) {
			t.Errorf("Quantile(2, 1000, %v) = %v, want above p=0.999", p, q)
		}
	}
}

func TestQuantileDegenerate(t *testing.T) {
	tests := []struct{ k, l float64 }{
		{0, 100},
		{-1, 100},
		{2, 0},
		{2, -5},
	}
	for _, tt := range tests {
		if got := Quantile(tt.k, tt.l, 0.5); got != 0 {
			t.Errorf("Quantile(%v, %v, 0.5) = %v, want 0", tt.k, tt.l, got)
		}
	}
}

func TestCDFScenario(t *testing.T) {
	got := CDF(100, 2, 100)
	want := 1 - math.Exp(-1)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("CDF(100, 2, 100) = %v, want %v", got, want)
	}
}

func TestCDFInvertsQuantile(t *testing.T) {
	for _, p := range []float64{0.01, 0.25, 0.5, 0.9, 0.99} {
		x := Quantile(2.5, 300, p)
		if got := CDF(300, 2.5, x); math.Abs(got-p) > 1e-9 {
			t.Errorf("CDF(Quantile(%v)) = %v", p, got)
		}
	}
}

func TestClampP(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.3, 0.3},
		{1, MaxP},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := ClampP(tt.in); got != tt.want {
			t.Errorf("ClampP(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if MaxP >= 1 {
		t.Errorf("MaxP = %v, want below 1", MaxP)
	}
}
