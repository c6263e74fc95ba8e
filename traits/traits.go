// Package traits defines heritable trait kinds, gene pairs and the registry
// that owns them.
package traits

import (
	"fmt"
	"math/rand"
)

// Standard trait names used by the lifecycle models.
const (
	Gender          = "Gender"
	MaturationTimeK = "MaturationTimeK"
	MaturationTimeP = "MaturationTimeP"
	InterestK       = "InterestK"
	InterestTC      = "InterestTC"
)

// Kind identifies a trait variant.
type Kind uint8

const (
	KindDiscrete Kind = iota // Alleles from a fixed symbol set, dominance decoded
	KindShape                // Real alleles decoded to a Weibull shape
	KindScale                // Real alleles decoded to a scale or time constant
	KindRange                // Real alleles decoded to a probability range
	KindBioClock             // Real alleles decoded to a clock rate
)

var kindNames = map[Kind]string{
	KindDiscrete: "discrete",
	KindShape:    "shape",
	KindScale:    "scale",
	KindRange:    "range",
	KindBioClock: "bioclock",
}

// String returns the config name of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind maps a config name to a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown trait kind %q", s)
}

// Allele is one allele value. Continuous kinds store the real value;
// discrete kinds store the index of the symbol in the trait's value set.
type Allele float64

// Phenotype is the decoded form of a gene pair.
type Phenotype struct {
	Label string  // Discrete kinds
	Value float64 // Shape, scale and bio-clock kinds
	Range Range   // Range kinds
}

// Trait defines a heritable characteristic's domain and decoding rule.
// Traits are immutable once registered.
type Trait interface {
	Name() string
	Kind() Kind
	// Random draws a fresh allele uniformly from the trait's domain.
	Random(rng *rand.Rand) Allele
	// Contains reports whether a lies in the trait's domain.
	Contains(a Allele) bool
	// Express decodes a gene pair into its phenotype.
	Express(gp GenePair) Phenotype
	FormatAllele(a Allele) string
	ParseAllele(s string) (Allele, error)
}
