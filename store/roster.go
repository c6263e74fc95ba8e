// Package store persists colony rosters: whole-colony YAML documents and a
// SQLite archive that also keeps the records of deceased organisms.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/progeny/population"
)

// ErrVersion is returned for rosters written by a newer format.
var ErrVersion = errors.New("store: unsupported roster version")

// SaveRoster writes a roster to disk as YAML. The file is replaced
// atomically.
func SaveRoster(path string, r *population.Roster) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create roster dir: %w", err)
		}
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal roster: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write roster: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace roster: %w", err)
	}
	return nil
}

// LoadRoster reads a roster from disk.
func LoadRoster(path string) (*population.Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var r population.Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal roster: %w", err)
	}
	if r.Version > population.RosterVersion {
		return nil, fmt.Errorf("%w: %d", ErrVersion, r.Version)
	}
	return &r, nil
}
