// Package lifecycle models the stages of an organism's life: a juvenile
// maturing towards adulthood and an adult aging towards death, both driven
// by Weibull draws over the organism's genome.
package lifecycle

import (
	"log/slog"

	"github.com/pthm-cable/progeny/genome"
	"github.com/pthm-cable/progeny/traits"
)

// FemaleLabel is the Gender phenotype of a female.
const FemaleLabel = "F"

// Zygote is the part shared by every stage: the genome and the bio-clock
// gene pairs read from it.
type Zygote struct {
	genome          genome.Genome
	clock           *traits.BioClock
	bioClock        traits.GenePair
	bioClockInverse traits.GenePair
	female          bool
}

// newZygote binds a genome to the registry's bio-clock. A registry without a
// bio-clock or a genome without its pairs panics.
func newZygote(g genome.Genome, reg *traits.Registry) Zygote {
	clock := reg.BioClock()
	return Zygote{
		genome:          g,
		clock:           clock,
		bioClock:        g.Get(clock.Name()),
		bioClockInverse: g.Get(clock.InverseName()),
		female:          reg.Decode(g.Get(traits.Gender)).Label == FemaleLabel,
	}
}

// Genome returns the organism's genome.
func (z *Zygote) Genome() genome.Genome {
	return z.genome
}

// BioClock returns the bio-clock gene pair.
func (z *Zygote) BioClock() traits.GenePair {
	return z.bioClock
}

// BioClockInverse returns the inverse bio-clock gene pair.
func (z *Zygote) BioClockInverse() traits.GenePair {
	return z.bioClockInverse
}

// Female reports whether the Gender phenotype is female.
func (z *Zygote) Female() bool {
	return z.female
}

// parseField reads an optional persisted number. Empty fields are absent;
// malformed ones are logged and reported absent.
func parseField(field, raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := traits.ParseValue(raw)
	if err != nil {
		slog.Warn("record_field_malformed",
			"field", field,
			"value", raw,
			"error", err,
		)
		return 0, false
	}
	return v, true
}

// parseSubP reads a persisted sub-draw, drawing a fresh one when absent or
// outside [0, 1).
func parseSubP(raw string, draw func() float64) float64 {
	p, ok := parseField("p", raw)
	if ok && (p < 0 || p >= 1) {
		slog.Warn("record_field_malformed", "field", "p", "value", raw)
		ok = false
	}
	if !ok {
		return draw()
	}
	return p
}
