package traits

import (
	"fmt"
	"math/rand"
)

// PrefabSource supplies fixed founder alleles keyed by character identity.
type PrefabSource interface {
	Prefab(character string, t Trait) (Allele, bool)
}

// Registry owns the set of known traits, addressable by name.
// It is populated before any genome is created and read-only afterwards.
type Registry struct {
	traits  map[string]Trait
	order   []Trait
	prefabs PrefabSource
	clock   *BioClock
}

// NewRegistry creates an empty registry. prefabs may be nil.
func NewRegistry(prefabs PrefabSource) *Registry {
	return &Registry{
		traits:  make(map[string]Trait),
		prefabs: prefabs,
	}
}

// Register adds a trait. Names are unique and at most one bio-clock is allowed.
func (r *Registry) Register(t Trait) error {
	name := t.Name()
	if name == "" {
		return fmt.Errorf("trait with empty name")
	}
	if _, exists := r.traits[name]; exists {
		return fmt.Errorf("trait %s already registered", name)
	}
	if c, ok := t.(*BioClock); ok {
		if r.clock != nil {
			return fmt.Errorf("trait %s: bio-clock %s already registered", name, r.clock.Name())
		}
		r.clock = c
	}
	r.traits[name] = t
	r.order = append(r.order, t)
	return nil
}

// Lookup returns the named trait. Unknown names are a setup defect and panic.
func (r *Registry) Lookup(name string) Trait {
	t, ok := r.traits[name]
	if !ok {
		panic(fmt.Sprintf("traits: unknown trait %q", name))
	}
	return t
}

// Find returns the named trait if registered.
func (r *Registry) Find(name string) (Trait, bool) {
	t, ok := r.traits[name]
	return t, ok
}

// Traits returns all traits in registration order.
func (r *Registry) Traits() []Trait {
	return append([]Trait(nil), r.order...)
}

// Len returns the number of registered traits.
func (r *Registry) Len() int {
	return len(r.order)
}

// BioClock returns the registered bio-clock. Panics if none is registered.
func (r *Registry) BioClock() *BioClock {
	if r.clock == nil {
		panic("traits: no bio-clock trait registered")
	}
	return r.clock
}

// SampleRandom draws a fresh allele respecting the trait's domain.
func (r *Registry) SampleRandom(t Trait, rng *rand.Rand) Allele {
	return t.Random(rng)
}

// SampleFounder uses the character's prefab allele for both slots when one is
// configured, otherwise draws two independent random alleles.
func (r *Registry) SampleFounder(t Trait, character string, rng *rand.Rand) GenePair {
	if r.prefabs != nil {
		if a, ok := r.prefabs.Prefab(character, t); ok {
			return GenePair{Trait: t, A: a, B: a}
		}
	}
	a := r.SampleRandom(t, rng)
	b := r.SampleRandom(t, rng)
	return GenePair{Trait: t, A: a, B: b}
}

// Inherit passes one allele from each parent, chosen uniformly from that
// parent's pair. There is no mutation.
func (r *Registry) Inherit(t Trait, a, b GenePair, rng *rand.Rand) GenePair {
	return GenePair{Trait: t, A: pick(a, rng), B: pick(b, rng)}
}

func pick(gp GenePair, rng *rand.Rand) Allele {
	if rng.Intn(2) == 0 {
		return gp.A
	}
	return gp.B
}

// Decode expresses a gene pair through its trait.
func (r *Registry) Decode(gp GenePair) Phenotype {
	return gp.Trait.Express(gp)
}
