package traits

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/progeny/config"
)

// ConfigPrefabs looks up founder alleles in the configured prefab table.
// The wildcard character applies to every founder without an own entry.
type ConfigPrefabs map[string]map[string]string

// Prefab returns the configured allele for the character and trait.
func (p ConfigPrefabs) Prefab(character string, t Trait) (Allele, bool) {
	for _, key := range []string{character, config.WildcardCharacter} {
		raw, ok := p[key][t.Name()]
		if !ok {
			continue
		}
		a, err := t.ParseAllele(raw)
		if err != nil || !t.Contains(a) {
			slog.Warn("prefab_allele_invalid",
				"character", key,
				"trait", t.Name(),
				"value", raw,
			)
			continue
		}
		return a, true
	}
	return 0, false
}

// Build creates a registry from the configured trait definitions.
func Build(cfg *config.Config) (*Registry, error) {
	r := NewRegistry(founderPrefabs(cfg))

	for _, tc := range cfg.Traits {
		t, err := newTrait(tc, cfg.BioClock)
		if err != nil {
			return nil, err
		}
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}

	clock, ok := r.Find(cfg.BioClock.Trait)
	if !ok || clock.Kind() != KindBioClock {
		return nil, fmt.Errorf("bio_clock.trait %q is not a registered bioclock trait", cfg.BioClock.Trait)
	}
	if inverse, ok := r.Find(cfg.BioClock.InverseTrait); !ok || inverse.Kind() != KindScale {
		return nil, fmt.Errorf("bio_clock.inverse_trait %q is not a registered scale trait", cfg.BioClock.InverseTrait)
	}
	for _, name := range []string{Gender, MaturationTimeK, MaturationTimeP, InterestK, InterestTC} {
		if _, ok := r.Find(name); !ok {
			return nil, fmt.Errorf("required trait %s is not configured", name)
		}
	}
	if err := checkKinds(r); err != nil {
		return nil, err
	}

	return r, nil
}

// founderPrefabs merges the founders' configured genders over the prefab
// table.
func founderPrefabs(cfg *config.Config) ConfigPrefabs {
	p := make(ConfigPrefabs, len(cfg.Prefabs)+len(cfg.Colony.Founders))
	for character, alleles := range cfg.Prefabs {
		p[character] = make(map[string]string, len(alleles)+1)
		for name, raw := range alleles {
			p[character][name] = raw
		}
	}
	for _, f := range cfg.Colony.Founders {
		if f.Gender == "" {
			continue
		}
		if p[f.Name] == nil {
			p[f.Name] = make(map[string]string, 1)
		}
		p[f.Name][Gender] = f.Gender
	}
	return p
}

// checkKinds verifies the lifecycle traits decode the way the models read them.
func checkKinds(r *Registry) error {
	want := map[string]Kind{
		Gender:          KindDiscrete,
		MaturationTimeK: KindShape,
		MaturationTimeP: KindRange,
		InterestK:       KindShape,
		InterestTC:      KindScale,
	}
	for name, kind := range want {
		if got := r.Lookup(name).Kind(); got != kind {
			return fmt.Errorf("trait %s: kind %s, want %s", name, got, kind)
		}
	}
	return nil
}

func newTrait(tc config.TraitConfig, bc config.BioClockConfig) (Trait, error) {
	kind, err := ParseKind(tc.Kind)
	if err != nil {
		return nil, fmt.Errorf("trait %s: %w", tc.Name, err)
	}
	switch kind {
	case KindDiscrete:
		return NewDiscrete(tc.Name, tc.Values, tc.Dominant, tc.DominantLabel, tc.RecessiveLabel)
	case KindShape:
		return NewShape(tc.Name, tc.Min, tc.Max)
	case KindScale:
		return NewScale(tc.Name, tc.Min, tc.Max)
	case KindRange:
		return NewRange(tc.Name, tc.Min, tc.Max)
	case KindBioClock:
		return NewBioClock(tc.Name, tc.Min, tc.Max, BioClockParams{
			Inverse:         bc.InverseTrait,
			MaturationScale: bc.MaturationScale,
			AgingK:          bc.AgingK,
			AgingScale:      bc.AgingScale,
		})
	}
	return nil, fmt.Errorf("trait %s: unhandled kind %s", tc.Name, kind)
}
