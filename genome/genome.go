// Package genome holds an organism's complete set of gene pairs.
package genome

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/progeny/traits"
)

// Genome maps trait name to gene pair, one entry per registered trait.
// It is immutable after construction.
type Genome struct {
	genes map[string]traits.GenePair
	order []string
}

// GeneRecord is the persisted form of one gene pair.
type GeneRecord struct {
	A string `yaml:"a"`
	B string `yaml:"b"`
}

// Record is the persisted genome block: trait name -> alleles.
type Record map[string]GeneRecord

func newGenome(n int) Genome {
	return Genome{
		genes: make(map[string]traits.GenePair, n),
		order: make([]string, 0, n),
	}
}

func (g *Genome) set(gp traits.GenePair) {
	name := gp.Trait.Name()
	if _, exists := g.genes[name]; !exists {
		g.order = append(g.order, name)
	}
	g.genes[name] = gp
}

// Found draws a founder genome for a character, using prefab alleles where configured.
func Found(character string, reg *traits.Registry, rng *rand.Rand) Genome {
	g := newGenome(reg.Len())
	for _, t := range reg.Traits() {
		g.set(reg.SampleFounder(t, character, rng))
	}
	return g
}

// Inherit combines two parent genomes, passing one allele from each parent per trait.
func Inherit(a, b Genome, reg *traits.Registry, rng *rand.Rand) Genome {
	g := newGenome(reg.Len())
	for _, t := range reg.Traits() {
		g.set(reg.Inherit(t, a.Get(t.Name()), b.Get(t.Name()), rng))
	}
	return g
}

// Restore rebuilds a genome from persisted alleles without sampling.
// Traits missing from the record, or with malformed alleles, are backfilled
// as founder genes for the character.
func Restore(rec Record, reg *traits.Registry, character string, rng *rand.Rand) Genome {
	g := newGenome(reg.Len())
	for _, t := range reg.Traits() {
		if gr, ok := rec[t.Name()]; ok {
			gp, err := restorePair(t, gr)
			if err == nil {
				g.set(gp)
				continue
			}
			slog.Warn("genome_allele_malformed",
				"trait", t.Name(),
				"a", gr.A,
				"b", gr.B,
				"error", err,
			)
		}
		g.set(reg.SampleFounder(t, character, rng))
	}
	for name := range rec {
		if _, known := reg.Find(name); !known {
			slog.Warn("genome_trait_unknown", "trait", name)
		}
	}
	return g
}

func restorePair(t traits.Trait, gr GeneRecord) (traits.GenePair, error) {
	a, err := t.ParseAllele(gr.A)
	if err != nil {
		return traits.GenePair{}, err
	}
	b, err := t.ParseAllele(gr.B)
	if err != nil {
		return traits.GenePair{}, err
	}
	gp := traits.GenePair{Trait: t, A: a, B: b}
	if !gp.Valid() {
		return traits.GenePair{}, fmt.Errorf("alleles outside domain of %s", t.Name())
	}
	return gp, nil
}

// Get returns the gene pair for a trait. Every registered trait is present;
// asking for any other name is a setup defect and panics.
func (g Genome) Get(name string) traits.GenePair {
	gp, ok := g.genes[name]
	if !ok {
		panic(fmt.Sprintf("genome: no gene pair for trait %q", name))
	}
	return gp
}

// Lookup returns the gene pair for a trait if present.
func (g Genome) Lookup(name string) (traits.GenePair, bool) {
	gp, ok := g.genes[name]
	return gp, ok
}

// Pairs returns all gene pairs in registry order.
func (g Genome) Pairs() []traits.GenePair {
	pairs := make([]traits.GenePair, 0, len(g.order))
	for _, name := range g.order {
		pairs = append(pairs, g.genes[name])
	}
	return pairs
}

// Len returns the number of gene pairs.
func (g Genome) Len() int {
	return len(g.order)
}

// Record returns the persisted form of the genome.
func (g Genome) Record() Record {
	rec := make(Record, len(g.genes))
	for name, gp := range g.genes {
		rec[name] = GeneRecord{
			A: gp.Trait.FormatAllele(gp.A),
			B: gp.Trait.FormatAllele(gp.B),
		}
	}
	return rec
}
