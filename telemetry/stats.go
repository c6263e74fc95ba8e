package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStart float64 `csv:"window_start"`
	WindowEnd   float64 `csv:"window_end"`

	// Population counts at window end
	Juveniles   int `csv:"juveniles"`
	Adults      int `csv:"adults"`
	Generations int `csv:"generations"`

	// Events during window
	Founders    int `csv:"founders"`
	Conceptions int `csv:"conceptions"`
	Promotions  int `csv:"promotions"`
	Deaths      int `csv:"deaths"`
	Matings     int `csv:"matings"`
	Declines    int `csv:"declines"`

	// Maturation times of living juveniles
	MaturationMean float64 `csv:"maturation_mean"`
	MaturationStd  float64 `csv:"maturation_std"`
	MaturationP10  float64 `csv:"maturation_p10"`
	MaturationP50  float64 `csv:"maturation_p50"`
	MaturationP90  float64 `csv:"maturation_p90"`

	// Aging times of living adults
	AgingMean float64 `csv:"aging_mean"`
	AgingStd  float64 `csv:"aging_std"`
	AgingP10  float64 `csv:"aging_p10"`
	AgingP50  float64 `csv:"aging_p50"`
	AgingP90  float64 `csv:"aging_p90"`

	// Receptivity of living adults at window end
	InterestMean float64 `csv:"interest_mean"`
	InterestP50  float64 `csv:"interest_p50"`
	InterestP90  float64 `csv:"interest_p90"`
}

// Distribution summarizes a sample.
type Distribution struct {
	N    int
	Mean float64
	Std  float64 // Sample standard deviation, 0 below two values
	P10  float64
	P50  float64
	P90  float64
}

// ComputeDistribution calculates mean, standard deviation and percentiles.
// Percentiles use gonum's linear interpolation of the empirical CDF.
func ComputeDistribution(values []float64) Distribution {
	n := len(values)
	if n == 0 {
		return Distribution{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	d := Distribution{
		N:    n,
		Mean: stat.Mean(sorted, nil),
		P10:  stat.Quantile(0.10, stat.LinInterp, sorted, nil),
		P50:  stat.Quantile(0.50, stat.LinInterp, sorted, nil),
		P90:  stat.Quantile(0.90, stat.LinInterp, sorted, nil),
	}
	if n > 1 {
		d.Std = stat.StdDev(sorted, nil)
	}
	return d
}

func (s *WindowStats) setMaturation(d Distribution) {
	s.MaturationMean, s.MaturationStd = d.Mean, d.Std
	s.MaturationP10, s.MaturationP50, s.MaturationP90 = d.P10, d.P50, d.P90
}

func (s *WindowStats) setAging(d Distribution) {
	s.AgingMean, s.AgingStd = d.Mean, d.Std
	s.AgingP10, s.AgingP50, s.AgingP90 = d.P10, d.P50, d.P90
}

func (s *WindowStats) setInterest(d Distribution) {
	s.InterestMean, s.InterestP50, s.InterestP90 = d.Mean, d.P50, d.P90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("window_start", s.WindowStart),
		slog.Float64("window_end", s.WindowEnd),
		slog.Int("juveniles", s.Juveniles),
		slog.Int("adults", s.Adults),
		slog.Int("generations", s.Generations),
		slog.Int("founders", s.Founders),
		slog.Int("conceptions", s.Conceptions),
		slog.Int("promotions", s.Promotions),
		slog.Int("deaths", s.Deaths),
		slog.Int("matings", s.Matings),
		slog.Int("declines", s.Declines),
		slog.Float64("maturation_p50", s.MaturationP50),
		slog.Float64("aging_p50", s.AgingP50),
		slog.Float64("interest_mean", s.InterestMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEnd,
		"juveniles", s.Juveniles,
		"adults", s.Adults,
		"generations", s.Generations,
		"founders", s.Founders,
		"conceptions", s.Conceptions,
		"promotions", s.Promotions,
		"deaths", s.Deaths,
		"matings", s.Matings,
		"declines", s.Declines,
		"maturation_mean", s.MaturationMean,
		"maturation_p10", s.MaturationP10,
		"maturation_p50", s.MaturationP50,
		"maturation_p90", s.MaturationP90,
		"aging_mean", s.AgingMean,
		"aging_p50", s.AgingP50,
		"interest_mean", s.InterestMean,
	)
}
