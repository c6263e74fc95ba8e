// Package config provides configuration loading and access for the colony.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// WildcardCharacter is the prefab key that applies to every founder.
const WildcardCharacter = "*"

// Config holds all genetics and colony configuration parameters.
type Config struct {
	Traits    []TraitConfig                `yaml:"traits"`
	BioClock  BioClockConfig               `yaml:"bio_clock"`
	Interest  InterestConfig               `yaml:"interest"`
	Prefabs   map[string]map[string]string `yaml:"prefabs"`
	Colony    ColonyConfig                 `yaml:"colony"`
	Telemetry TelemetryConfig              `yaml:"telemetry"`
	Store     StoreConfig                  `yaml:"store"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// TraitConfig defines one heritable trait.
// Kind selects the variant: discrete, shape, scale, range or bioclock.
type TraitConfig struct {
	Name string  `yaml:"name"`
	Kind string  `yaml:"kind"`
	Min  float64 `yaml:"min,omitempty"` // Lower allele bound (continuous kinds)
	Max  float64 `yaml:"max,omitempty"` // Upper allele bound (continuous kinds)

	// Discrete kinds only
	Values         []string `yaml:"values,omitempty"`
	Dominant       string   `yaml:"dominant,omitempty"`        // One copy of this allele decides the phenotype
	DominantLabel  string   `yaml:"dominant_label,omitempty"`  // Phenotype when the dominant allele is present
	RecessiveLabel string   `yaml:"recessive_label,omitempty"` // Phenotype otherwise
}

// BioClockConfig holds the characteristic-life parameters shared by the
// maturation and aging models.
type BioClockConfig struct {
	Trait           string  `yaml:"trait"`            // Name of the bio-clock trait
	InverseTrait    string  `yaml:"inverse_trait"`    // Name of the opposing bio-clock trait
	MaturationScale float64 `yaml:"maturation_scale"` // Base characteristic maturation life (UT seconds)
	AgingK          float64 `yaml:"aging_k"`          // Weibull shape of the adult lifespan
	AgingScale      float64 `yaml:"aging_scale"`      // Base characteristic adult lifespan (UT seconds)
}

// InterestConfig holds mating receptivity parameters.
type InterestConfig struct {
	MateCooldown float64 `yaml:"mate_cooldown"` // Refractory delay after a mating (UT seconds)
}

// FounderConfig names a character present when the colony starts.
type FounderConfig struct {
	Name   string `yaml:"name"`
	Gender string `yaml:"gender,omitempty"` // Gender allele written to both slots, empty = random
}

// ColonyConfig holds headless colony run parameters.
type ColonyConfig struct {
	Founders        []FounderConfig `yaml:"founders"`
	Tick            float64         `yaml:"tick"`             // UT seconds per simulation step
	MaxJuveniles    int             `yaml:"max_juveniles"`    // Conception stops above this many juveniles
	PairingAttempts int             `yaml:"pairing_attempts"` // Random pairings tried per step
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // UT seconds per stats window
}

// StoreConfig holds persistence locations.
type StoreConfig struct {
	RosterPath  string `yaml:"roster_path"`  // YAML roster document, empty = disabled
	ArchivePath string `yaml:"archive_path"` // SQLite archive, empty = disabled
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	TraitIndex map[string]int // name -> index into Traits
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects values the genetics model cannot run with.
func (c *Config) validate() error {
	if len(c.Traits) == 0 {
		return fmt.Errorf("config: no traits defined")
	}
	if c.BioClock.MaturationScale <= 0 || c.BioClock.AgingScale <= 0 {
		return fmt.Errorf("config: bio_clock scales must be positive")
	}
	if c.BioClock.AgingK <= 0 {
		return fmt.Errorf("config: bio_clock.aging_k must be positive")
	}
	if c.Interest.MateCooldown < 0 {
		return fmt.Errorf("config: interest.mate_cooldown must not be negative")
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.Colony.Tick <= 0 {
		c.Colony.Tick = 60
	}
	if c.Telemetry.StatsWindow <= 0 {
		c.Telemetry.StatsWindow = c.Colony.Tick * 100
	}

	c.Derived.TraitIndex = make(map[string]int, len(c.Traits))
	for i, t := range c.Traits {
		c.Derived.TraitIndex[t.Name] = i
	}
}

// Trait returns the named trait definition.
func (c *Config) Trait(name string) (TraitConfig, bool) {
	i, ok := c.Derived.TraitIndex[name]
	if !ok {
		return TraitConfig{}, false
	}
	return c.Traits[i], true
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
