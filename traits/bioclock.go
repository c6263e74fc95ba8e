package traits

import (
	"fmt"

	"github.com/pthm-cable/progeny/weibull"
)

// BioClock is the trait setting an organism's characteristic life scale.
// Its alleles are clock rates; a faster clock shortens both maturation and
// aging. The paired inverse trait scales the other way.
type BioClock struct {
	bounds
	inverse         string
	maturationScale float64
	agingK          float64
	agingScale      float64
}

// BioClockParams holds the population-wide constants of a bio-clock.
type BioClockParams struct {
	Inverse         string  // Name of the inverse trait
	MaturationScale float64 // Characteristic maturation life at unit rates
	AgingK          float64 // Weibull shape of the adult lifespan
	AgingScale      float64 // Characteristic adult lifespan at unit rates
}

// NewBioClock creates a bio-clock trait. Rates must be positive.
func NewBioClock(name string, min, max float64, params BioClockParams) (*BioClock, error) {
	if min <= 0 {
		return nil, fmt.Errorf("trait %s: clock rates must be positive", name)
	}
	if params.Inverse == "" {
		return nil, fmt.Errorf("trait %s: no inverse trait", name)
	}
	if params.MaturationScale <= 0 || params.AgingScale <= 0 || params.AgingK <= 0 {
		return nil, fmt.Errorf("trait %s: scales and shape must be positive", name)
	}
	b, err := newBounds(name, min, max)
	if err != nil {
		return nil, err
	}
	return &BioClock{
		bounds:          b,
		inverse:         params.Inverse,
		maturationScale: params.MaturationScale,
		agingK:          params.AgingK,
		agingScale:      params.AgingScale,
	}, nil
}

func (c *BioClock) Kind() Kind { return KindBioClock }

func (c *BioClock) Express(gp GenePair) Phenotype {
	return Phenotype{Value: gp.Mean()}
}

// InverseName returns the name of the inverse trait.
func (c *BioClock) InverseName() string {
	return c.inverse
}

// factor is the life-scale multiplier: inverse rate over clock rate.
func (c *BioClock) factor(clock, inverse GenePair) float64 {
	rate := clock.Mean()
	if rate <= 0 {
		return 0
	}
	return inverse.Mean() / rate
}

// MaturationTime returns the characteristic maturation life L.
func (c *BioClock) MaturationTime(clock, inverse GenePair) float64 {
	return c.maturationScale * c.factor(clock, inverse)
}

// AgingTime returns the adult lifespan at cumulative probability p.
func (c *BioClock) AgingTime(clock, inverse GenePair, p float64) float64 {
	return weibull.Quantile(c.agingK, c.agingScale*c.factor(clock, inverse), p)
}
