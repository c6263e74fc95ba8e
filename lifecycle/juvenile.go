package lifecycle

import (
	"math/rand"

	"github.com/pthm-cable/progeny/genome"
	"github.com/pthm-cable/progeny/traits"
	"github.com/pthm-cable/progeny/weibull"
)

// Juvenile is the pre-maturity stage.
type Juvenile struct {
	Zygote
	birthUT    float64
	subp       float64 // Uniform draw behind the maturation time, persisted
	maturation float64 // Derived from genome and subp
}

// JuvenileRecord is the persisted form of a juvenile.
type JuvenileRecord struct {
	Genome  genome.Record `yaml:"genome"`
	BirthUT string        `yaml:"birthUT,omitempty"`
	P       string        `yaml:"p,omitempty"`
}

// Conceive creates a juvenile born at now from two parent genomes.
func Conceive(a, b genome.Genome, reg *traits.Registry, now float64, rng *rand.Rand) *Juvenile {
	g := genome.Inherit(a, b, reg, rng)
	return newJuvenile(g, reg, now, rng.Float64())
}

// RestoreJuvenile rebuilds a juvenile from its record and re-derives its
// maturation time. rng is only used for fields the record lacks.
func RestoreJuvenile(rec JuvenileRecord, reg *traits.Registry, rng *rand.Rand) *Juvenile {
	g := genome.Restore(rec.Genome, reg, "", rng)
	birth, _ := parseField("birthUT", rec.BirthUT)
	subp := parseSubP(rec.P, func() float64 { return rng.Float64() })
	return newJuvenile(g, reg, birth, subp)
}

func newJuvenile(g genome.Genome, reg *traits.Registry, birth, subp float64) *Juvenile {
	j := &Juvenile{
		Zygote:  newZygote(g, reg),
		birthUT: birth,
		subp:    subp,
	}
	j.maturation = maturationTime(&j.Zygote, reg, subp)
	return j
}

// maturationTime evaluates the Weibull quantile with shape from
// MaturationTimeK and scale from the bio-clock, at the cumulative
// probability MaturationTimeP maps subp to.
func maturationTime(z *Zygote, reg *traits.Registry, subp float64) float64 {
	k := reg.Decode(z.genome.Get(traits.MaturationTimeK)).Value
	pRange := reg.Decode(z.genome.Get(traits.MaturationTimeP)).Range
	p := weibull.ClampP(pRange.At(subp))
	l := z.clock.MaturationTime(z.bioClock, z.bioClockInverse)
	return weibull.Quantile(k, l, p)
}

// Maturation returns the time from birth to maturity.
func (j *Juvenile) Maturation() float64 {
	return j.maturation
}

// Birth returns the birth time.
func (j *Juvenile) Birth() float64 {
	return j.birthUT
}

// MatureAt returns the time the juvenile becomes an adult.
func (j *Juvenile) MatureAt() float64 {
	return j.birthUT + j.maturation
}

// Mature reports whether the juvenile has reached maturity at now.
func (j *Juvenile) Mature(now float64) bool {
	return now >= j.MatureAt()
}

// P returns the persisted sub-draw.
func (j *Juvenile) P() float64 {
	return j.subp
}

// Record returns the persisted form.
func (j *Juvenile) Record() JuvenileRecord {
	return JuvenileRecord{
		Genome:  j.genome.Record(),
		BirthUT: traits.FormatValue(j.birthUT),
		P:       traits.FormatValue(j.subp),
	}
}
