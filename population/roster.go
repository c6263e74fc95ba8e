package population

import (
	"log/slog"

	"github.com/pthm-cable/progeny/lifecycle"
	"github.com/pthm-cable/progeny/traits"
)

// RosterVersion is incremented when the roster format changes.
const RosterVersion = 1

// Stage names used in persisted entries.
const (
	StageJuvenile = "juvenile"
	StageAdult    = "adult"
)

// Roster is the persisted state of a colony.
type Roster struct {
	Version   int     `yaml:"version"`
	UT        string  `yaml:"ut"`
	Organisms []Entry `yaml:"organisms"`
}

// Entry is one organism in a roster. Exactly one of Juvenile and Adult is set.
type Entry struct {
	ID         string                    `yaml:"id"`
	Generation int                       `yaml:"generation,omitempty"`
	Parents    []string                  `yaml:"parents,omitempty"`
	Juvenile   *lifecycle.JuvenileRecord `yaml:"juvenile,omitempty"`
	Adult      *lifecycle.AdultRecord    `yaml:"adult,omitempty"`

	// Lifetime counters
	Children int `yaml:"children,omitempty"`
	Matings  int `yaml:"matings,omitempty"`
	Declines int `yaml:"declines,omitempty"`
}

// Stage returns the entry's lifecycle stage, or "" when it has none.
func (e Entry) Stage() string {
	switch {
	case e.Adult != nil:
		return StageAdult
	case e.Juvenile != nil:
		return StageJuvenile
	}
	return ""
}

// Time returns the roster's saved UT, or 0 if it is missing or malformed.
func (r *Roster) Time() float64 {
	if r.UT == "" {
		return 0
	}
	ut, err := traits.ParseValue(r.UT)
	if err != nil {
		slog.Warn("record_field_malformed", "field", "ut", "value", r.UT, "error", err)
		return 0
	}
	return ut
}
