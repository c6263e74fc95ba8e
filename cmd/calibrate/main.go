// Package main fits Weibull distributions to the maturation and aging
// durations recorded in a run's events.csv, for calibrating bio_clock
// parameters.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/progeny/config"
	"github.com/pthm-cable/progeny/telemetry"
)

func main() {
	// CLI flags
	eventsPath := flag.String("events", "", "events.csv from a run with --output-dir")
	durations := flag.String("duration", "maturation,aging", "Comma-separated durations to fit")
	maxEvals := flag.Int("max-evals", 2000, "Maximum likelihood evaluations per fit")
	outputDir := flag.String("output", "", "Directory for fits.csv and calibrated.yaml (empty = print only)")
	configPath := flag.String("config", "", "Base config YAML for calibrated.yaml (empty = use defaults)")
	flag.Parse()

	if *eventsPath == "" {
		log.Fatal("--events is required")
	}

	events, err := telemetry.ReadEvents(*eventsPath)
	if err != nil {
		log.Fatalf("failed to read events: %v", err)
	}
	fmt.Printf("Loaded %d events from %s\n", len(events), *eventsPath)

	var fits []*Fit
	for _, d := range strings.Split(*durations, ",") {
		d = strings.TrimSpace(d)
		samples, err := Samples(events, d)
		if err != nil {
			log.Fatal(err)
		}
		fit, err := FitWeibull(d, samples, *maxEvals)
		if err != nil {
			log.Printf("%s: %v (%d samples)", d, err, len(samples))
			continue
		}
		fits = append(fits, &fit)

		fmt.Printf("\n%s (n=%d)\n", d, fit.N)
		fmt.Printf("  k:      %.4f\n", fit.K)
		fmt.Printf("  lambda: %.1f\n", fit.Lambda)
		fmt.Printf("  mean:   %.1f sample, %.1f fit\n", fit.SampleMean, fit.FitMean)
		fmt.Printf("  median: %.1f sample, %.1f fit\n", fit.SampleMedian, fit.FitMedian)
	}

	if *outputDir == "" || len(fits) == 0 {
		return
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	fitsPath := filepath.Join(*outputDir, "fits.csv")
	f, err := os.Create(fitsPath)
	if err != nil {
		log.Fatalf("failed to create fits file: %v", err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&fits, f); err != nil {
		log.Fatalf("failed to write fits: %v", err)
	}
	fmt.Printf("\nFits saved to: %s\n", fitsPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	Apply(cfg, fits)

	configOutPath := filepath.Join(*outputDir, "calibrated.yaml")
	if err := cfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write calibrated config: %v", err)
	} else {
		fmt.Printf("Calibrated config saved to: %s\n", configOutPath)
	}
}

// Apply writes aging fits into the bio-clock config. The fitted scale is
// taken as the base lifespan, which holds while bio-clock ratios average
// one. Maturation shape is heritable, so maturation fits are reported only.
func Apply(cfg *config.Config, fits []*Fit) {
	for _, fit := range fits {
		if fit.Duration != "aging" {
			continue
		}
		cfg.BioClock.AgingK = fit.K
		cfg.BioClock.AgingScale = fit.Lambda
	}
}
