package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/pthm-cable/progeny/population"
)

// stageDeceased marks archived organisms that have died.
const stageDeceased = "deceased"

// Burial is the final record of a deceased organism.
type Burial struct {
	Entry population.Entry
	UT    float64 // Time of death
}

// Archive keeps organism records in a SQLite database, one row per
// organism with its roster entry as a YAML payload. Living organisms are
// replaced on every save; deceased ones accumulate.
type Archive struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// OpenArchive opens or creates the archive at path.
func OpenArchive(path string) (*Archive, error) {
	if path == "" {
		return nil, errors.New("store: empty archive path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS organisms (
			id TEXT PRIMARY KEY,
			stage TEXT NOT NULL,
			generation INTEGER NOT NULL,
			died_ut REAL,
			payload BLOB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS organisms_stage ON organisms(stage)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &Archive{db: db, path: path}, nil
}

// Path returns the database path.
func (a *Archive) Path() string { return a.path }

// Close closes the database.
func (a *Archive) Close() error {
	return a.db.Close()
}

const upsertOrganism = `INSERT INTO organisms(id, stage, generation, died_ut, payload) VALUES(?,?,?,?,?)
	ON CONFLICT(id) DO UPDATE SET stage=excluded.stage, generation=excluded.generation,
	died_ut=excluded.died_ut, payload=excluded.payload`

// SaveRoster replaces the living organisms with the roster's entries.
func (a *Archive) SaveRoster(ctx context.Context, r *population.Roster) (retErr error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM organisms WHERE stage != ?`, stageDeceased); err != nil {
		return fmt.Errorf("clear living: %w", err)
	}
	for _, e := range r.Organisms {
		payload, err := yaml.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", e.ID, err)
		}
		if _, err := tx.ExecContext(ctx, upsertOrganism, e.ID, e.Stage(), e.Generation, nil, payload); err != nil {
			return fmt.Errorf("upsert %s: %w", e.ID, err)
		}
	}
	for key, value := range map[string]string{
		"ut":      r.UT,
		"version": strconv.Itoa(r.Version),
	} {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta(key,value) VALUES(?,?) ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, value); err != nil {
			return fmt.Errorf("upsert meta %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Bury records an organism's death at ut. Its row leaves the living roster.
func (a *Archive) Bury(ctx context.Context, e population.Entry, ut float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	payload, err := yaml.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", e.ID, err)
	}
	if _, err := a.db.ExecContext(ctx, upsertOrganism, e.ID, stageDeceased, e.Generation, ut, payload); err != nil {
		return fmt.Errorf("bury %s: %w", e.ID, err)
	}
	return nil
}

// LoadRoster returns the living organisms of the last save. An archive that
// was never saved yields an empty roster.
func (a *Archive) LoadRoster(ctx context.Context) (*population.Roster, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	r := &population.Roster{Version: population.RosterVersion}

	meta, err := a.meta(ctx)
	if err != nil {
		return nil, err
	}
	if v, ok := meta["version"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("archive version %q: %w", v, err)
		}
		if n > population.RosterVersion {
			return nil, fmt.Errorf("%w: %d", ErrVersion, n)
		}
	}
	r.UT = meta["ut"]

	rows, err := a.db.QueryContext(ctx, `SELECT payload FROM organisms WHERE stage != ? ORDER BY id`, stageDeceased)
	if err != nil {
		return nil, fmt.Errorf("select organisms: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var e population.Entry
		if err := yaml.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("decode organism: %w", err)
		}
		r.Organisms = append(r.Organisms, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select organisms: %w", err)
	}
	return r, nil
}

func (a *Archive) meta(ctx context.Context) (map[string]string, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return nil, fmt.Errorf("select meta: %w", err)
	}
	defer func() { _ = rows.Close() }()
	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		meta[k] = v
	}
	return meta, rows.Err()
}

// Deceased returns every buried organism in order of death.
func (a *Archive) Deceased(ctx context.Context) ([]Burial, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rows, err := a.db.QueryContext(ctx, `SELECT died_ut, payload FROM organisms WHERE stage = ? ORDER BY died_ut, id`, stageDeceased)
	if err != nil {
		return nil, fmt.Errorf("select deceased: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Burial
	for rows.Next() {
		var (
			b       Burial
			payload []byte
		)
		if err := rows.Scan(&b.UT, &payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if err := yaml.Unmarshal(payload, &b.Entry); err != nil {
			return nil, fmt.Errorf("decode deceased: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
