package telemetry

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// HallEntry is a deceased organism ranked by its offspring.
type HallEntry struct {
	ID         string  `yaml:"id"`
	Generation int     `yaml:"generation"`
	Children   int     `yaml:"children"`
	Age        float64 `yaml:"age"`
	DiedUT     float64 `yaml:"died_ut"`
}

// better orders entries by children, then by age.
func (e HallEntry) better(o HallEntry) bool {
	if e.Children != o.Children {
		return e.Children > o.Children
	}
	return e.Age > o.Age
}

// HallOfFame keeps the most prolific deceased organisms of each gender.
type HallOfFame struct {
	Females []HallEntry `yaml:"females"`
	Males   []HallEntry `yaml:"males"`

	maxSize int
}

// NewHallOfFame creates a hall holding up to maxSize entries per gender.
func NewHallOfFame(maxSize int) *HallOfFame {
	if maxSize < 1 {
		maxSize = 10
	}
	return &HallOfFame{maxSize: maxSize}
}

// Consider evaluates a death event for entry. Organisms that left no
// children never enter. Returns true if the organism was added.
func (hof *HallOfFame) Consider(ev LifeEvent) bool {
	if hof == nil || ev.Type != EventDeath || ev.Children == 0 {
		return false
	}

	entry := HallEntry{
		ID:         ev.ID,
		Generation: ev.Generation,
		Children:   ev.Children,
		Age:        ev.Age,
		DiedUT:     ev.UT,
	}
	hall := &hof.Males
	if ev.Female {
		hall = &hof.Females
	}

	*hall = hof.insertEntry(*hall, entry)
	return containsID(*hall, entry.ID)
}

func containsID(hall []HallEntry, id string) bool {
	for _, e := range hall {
		if e.ID == id {
			return true
		}
	}
	return false
}

// insertEntry adds an entry keeping the hall sorted best first.
// If the hall is full, the lowest entry is removed.
func (hof *HallOfFame) insertEntry(hall []HallEntry, entry HallEntry) []HallEntry {
	idx := sort.Search(len(hall), func(i int) bool {
		return entry.better(hall[i])
	})

	if len(hall) >= hof.maxSize && idx >= hof.maxSize {
		return hall
	}

	hall = append(hall, HallEntry{})
	copy(hall[idx+1:], hall[idx:])
	hall[idx] = entry

	if len(hall) > hof.maxSize {
		hall = hall[:hof.maxSize]
	}
	return hall
}

// Size returns the number of entries for a gender.
func (hof *HallOfFame) Size(female bool) int {
	if female {
		return len(hof.Females)
	}
	return len(hof.Males)
}

// Top returns the best entry for a gender, or false if the hall is empty.
func (hof *HallOfFame) Top(female bool) (HallEntry, bool) {
	hall := hof.Males
	if female {
		hall = hof.Females
	}
	if len(hall) == 0 {
		return HallEntry{}, false
	}
	return hall[0], true
}

// WriteYAML writes the hall to a YAML file.
func (hof *HallOfFame) WriteYAML(path string) error {
	data, err := yaml.Marshal(hof)
	if err != nil {
		return fmt.Errorf("marshaling hall of fame: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing hall of fame: %w", err)
	}
	return nil
}

// LoadHallOfFame reads a hall written by WriteYAML. The hall keeps at
// least maxSize entries per gender, or more if the file holds more.
func LoadHallOfFame(path string, maxSize int) (*HallOfFame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hall of fame: %w", err)
	}

	var raw HallOfFame
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing hall of fame: %w", err)
	}

	maxSize = max(maxSize, len(raw.Females), len(raw.Males))
	hof := NewHallOfFame(maxSize)
	for _, e := range raw.Females {
		hof.Females = hof.insertEntry(hof.Females, e)
	}
	for _, e := range raw.Males {
		hof.Males = hof.insertEntry(hof.Males, e)
	}
	return hof, nil
}
