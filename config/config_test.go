package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Traits) != 7 {
		t.Errorf("traits = %d, want 7", len(cfg.Traits))
	}
	for i, tc := range cfg.Traits {
		if got, ok := cfg.Trait(tc.Name); !ok || got.Name != tc.Name || cfg.Derived.TraitIndex[tc.Name] != i {
			t.Errorf("Trait(%s) = %+v, %v", tc.Name, got, ok)
		}
	}
	if _, ok := cfg.Trait("Wings"); ok {
		t.Error("Trait found an unconfigured name")
	}
	if cfg.Interest.MateCooldown != 600 {
		t.Errorf("mate_cooldown = %v, want 600", cfg.Interest.MateCooldown)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "scalar override keeps other sections",
			body: "colony:\n  tick: 120\n",
			check: func(t *testing.T, cfg *Config) {
				if cfg.Colony.Tick != 120 {
					t.Errorf("tick = %v, want 120", cfg.Colony.Tick)
				}
				if len(cfg.Traits) != 7 || cfg.BioClock.AgingK != 3.5 {
					t.Errorf("defaults lost: %d traits, aging_k %v", len(cfg.Traits), cfg.BioClock.AgingK)
				}
			},
		},
		{
			name: "traits list is replaced",
			body: "traits:\n  - name: BioClock\n    kind: bioclock\n    min: 1\n    max: 2\n",
			check: func(t *testing.T, cfg *Config) {
				if len(cfg.Traits) != 1 || cfg.Traits[0].Min != 1 {
					t.Errorf("traits = %+v, want the single file trait", cfg.Traits)
				}
				if _, ok := cfg.Trait("Gender"); ok {
					t.Error("default trait survived a replaced list")
				}
			},
		},
		{
			name: "prefabs merge by character",
			body: "prefabs:\n  Bob Kerman:\n    Gender: X\n  \"*\":\n    InterestK: \"2\"\n",
			check: func(t *testing.T, cfg *Config) {
				if got := cfg.Prefabs["Bob Kerman"]["Gender"]; got != "X" {
					t.Errorf("Bob gender = %q, want X", got)
				}
				if got := cfg.Prefabs["Jebediah Kerman"]["Gender"]; got != "Y" {
					t.Errorf("Jebediah gender = %q, want default Y", got)
				}
				if got := cfg.Prefabs[WildcardCharacter]["InterestK"]; got != "2" {
					t.Errorf("wildcard InterestK = %q, want 2", got)
				}
			},
		},
		{
			name: "derived defaults fill zero values",
			body: "colony:\n  tick: 0\ntelemetry:\n  stats_window: 0\n",
			check: func(t *testing.T, cfg *Config) {
				if cfg.Colony.Tick != 60 || cfg.Telemetry.StatsWindow != 6000 {
					t.Errorf("tick/window = %v/%v, want 60/6000", cfg.Colony.Tick, cfg.Telemetry.StatsWindow)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.body))
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"no traits", "traits: []\n", "no traits"},
		{"zero maturation scale", "bio_clock:\n  maturation_scale: 0\n", "scales"},
		{"negative aging scale", "bio_clock:\n  aging_scale: -1\n", "scales"},
		{"zero aging shape", "bio_clock:\n  aging_k: 0\n", "aging_k"},
		{"negative cooldown", "interest:\n  mate_cooldown: -5\n", "mate_cooldown"},
		{"malformed yaml", "colony: [unclosed\n", "parsing config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load error = %v, want %q", err, tt.want)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load(writeConfig(t, "interest:\n  mate_cooldown: 900\n"))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}
	again, err := Load(path)
	if err != nil {
		t.Fatalf("Load of written config failed: %v", err)
	}
	if again.Interest.MateCooldown != 900 || len(again.Traits) != len(cfg.Traits) {
		t.Errorf("round trip = cooldown %v, %d traits", again.Interest.MateCooldown, len(again.Traits))
	}
}

func TestCfgBeforeInitPanics(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("expected panic from Cfg before Init")
		}
	}()
	Cfg()
}
