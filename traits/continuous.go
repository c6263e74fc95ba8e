package traits

import (
	"fmt"
	"math"
	"math/rand"
)

// bounds is the real allele domain [min, max] shared by continuous kinds.
type bounds struct {
	name     string
	min, max float64
}

func newBounds(name string, min, max float64) (bounds, error) {
	if math.IsNaN(min) || math.IsNaN(max) || min > max {
		return bounds{}, fmt.Errorf("trait %s: invalid range [%v, %v]", name, min, max)
	}
	return bounds{name: name, min: min, max: max}, nil
}

func (b bounds) Name() string { return b.name }

// Random draws uniformly over [min, max).
func (b bounds) Random(rng *rand.Rand) Allele {
	return Allele(b.min + rng.Float64()*(b.max-b.min))
}

func (b bounds) Contains(a Allele) bool {
	f := float64(a)
	return f >= b.min && f <= b.max
}

func (b bounds) FormatAllele(a Allele) string {
	return FormatValue(float64(a))
}

func (b bounds) ParseAllele(s string) (Allele, error) {
	v, err := ParseValue(s)
	if err != nil {
		return 0, fmt.Errorf("trait %s: %w", b.name, err)
	}
	return Allele(v), nil
}

// Shape decodes to a Weibull shape parameter k.
type Shape struct{ bounds }

// NewShape creates a shape trait. Shapes must be positive.
func NewShape(name string, min, max float64) (*Shape, error) {
	if min <= 0 {
		return nil, fmt.Errorf("trait %s: shape bounds must be positive", name)
	}
	b, err := newBounds(name, min, max)
	if err != nil {
		return nil, err
	}
	return &Shape{b}, nil
}

func (s *Shape) Kind() Kind { return KindShape }

func (s *Shape) Express(gp GenePair) Phenotype {
	return Phenotype{Value: gp.Mean()}
}

// K returns the decoded shape.
func (s *Shape) K(gp GenePair) float64 {
	return gp.Mean()
}

// Scale decodes to a positive scale such as a characteristic time.
type Scale struct{ bounds }

// NewScale creates a scale trait. Scales must be positive.
func NewScale(name string, min, max float64) (*Scale, error) {
	if min <= 0 {
		return nil, fmt.Errorf("trait %s: scale bounds must be positive", name)
	}
	b, err := newBounds(name, min, max)
	if err != nil {
		return nil, err
	}
	return &Scale{b}, nil
}

func (s *Scale) Kind() Kind { return KindScale }

func (s *Scale) Express(gp GenePair) Phenotype {
	return Phenotype{Value: gp.Mean()}
}

// Value returns the decoded scale.
func (s *Scale) Value(gp GenePair) float64 {
	return gp.Mean()
}

// Range is a closed probability interval a sub-draw is mapped into.
type Range struct {
	Lo, Hi float64
}

// At maps u in [0,1) linearly into the range.
func (r Range) At(u float64) float64 {
	return r.Lo + u*(r.Hi-r.Lo)
}

// RangeTrait decodes a pair into the range spanned by its two alleles.
type RangeTrait struct{ bounds }

// NewRange creates a range trait. Alleles are probabilities and must stay below 1.
func NewRange(name string, min, max float64) (*RangeTrait, error) {
	if min < 0 || max >= 1 {
		return nil, fmt.Errorf("trait %s: range bounds must lie in [0, 1)", name)
	}
	b, err := newBounds(name, min, max)
	if err != nil {
		return nil, err
	}
	return &RangeTrait{b}, nil
}

func (r *RangeTrait) Kind() Kind { return KindRange }

func (r *RangeTrait) Express(gp GenePair) Phenotype {
	return Phenotype{Range: r.Range(gp)}
}

// Range returns [min(a,b), max(a,b)].
func (r *RangeTrait) Range(gp GenePair) Range {
	lo, hi := float64(gp.A), float64(gp.B)
	if lo > hi {
		lo, hi = hi, lo
	}
	return Range{Lo: lo, Hi: hi}
}
