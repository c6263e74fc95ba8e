package traits

import (
	"fmt"
	"math"
	"math/rand"
)

// Discrete is a trait whose alleles come from a small fixed symbol set.
// One copy of the dominant symbol yields DominantLabel.
type Discrete struct {
	name           string
	values         []string
	dominant       int
	dominantLabel  string
	recessiveLabel string
}

// NewDiscrete creates a discrete trait. dominant must be one of values.
func NewDiscrete(name string, values []string, dominant, dominantLabel, recessiveLabel string) (*Discrete, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("trait %s: no values", name)
	}
	idx := -1
	seen := make(map[string]bool, len(values))
	for i, v := range values {
		if seen[v] {
			return nil, fmt.Errorf("trait %s: duplicate value %q", name, v)
		}
		seen[v] = true
		if v == dominant {
			idx = i
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("trait %s: dominant value %q not in values", name, dominant)
	}
	return &Discrete{
		name:           name,
		values:         append([]string(nil), values...),
		dominant:       idx,
		dominantLabel:  dominantLabel,
		recessiveLabel: recessiveLabel,
	}, nil
}

func (d *Discrete) Name() string { return d.name }
func (d *Discrete) Kind() Kind   { return KindDiscrete }

// Random draws uniformly over the value set.
func (d *Discrete) Random(rng *rand.Rand) Allele {
	return Allele(rng.Intn(len(d.values)))
}

func (d *Discrete) Contains(a Allele) bool {
	f := float64(a)
	return f == math.Trunc(f) && f >= 0 && int(f) < len(d.values)
}

// Express applies the dominance rule.
func (d *Discrete) Express(gp GenePair) Phenotype {
	if gp.Has(Allele(d.dominant)) {
		return Phenotype{Label: d.dominantLabel}
	}
	return Phenotype{Label: d.recessiveLabel}
}

// Label is a shorthand for Express(gp).Label.
func (d *Discrete) Label(gp GenePair) string {
	return d.Express(gp).Label
}

// Symbol returns the value symbol of an allele.
func (d *Discrete) Symbol(a Allele) string {
	if !d.Contains(a) {
		return "?"
	}
	return d.values[int(a)]
}

func (d *Discrete) FormatAllele(a Allele) string {
	return d.Symbol(a)
}

func (d *Discrete) ParseAllele(s string) (Allele, error) {
	for i, v := range d.values {
		if v == s {
			return Allele(i), nil
		}
	}
	return 0, fmt.Errorf("trait %s: unknown value %q", d.name, s)
}
