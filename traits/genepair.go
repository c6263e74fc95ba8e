package traits

import "fmt"

// GenePair is the two allele values an organism carries for one trait.
type GenePair struct {
	Trait Trait
	A, B  Allele
}

// Mean returns the average of both alleles. Continuous traits are codominant.
func (gp GenePair) Mean() float64 {
	return (float64(gp.A) + float64(gp.B)) / 2
}

// Valid checks that the pair is bound to a trait and both alleles lie in its domain.
func (gp GenePair) Valid() bool {
	return gp.Trait != nil && gp.Trait.Contains(gp.A) && gp.Trait.Contains(gp.B)
}

// Has reports whether either allele equals a.
func (gp GenePair) Has(a Allele) bool {
	return gp.A == a || gp.B == a
}

// String formats the pair as name(a/b).
func (gp GenePair) String() string {
	if gp.Trait == nil {
		return "<unbound>"
	}
	return fmt.Sprintf("%s(%s/%s)", gp.Trait.Name(), gp.Trait.FormatAllele(gp.A), gp.Trait.FormatAllele(gp.B))
}
