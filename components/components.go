// Package components defines ECS components for the colony roster.
package components

import (
	"github.com/google/uuid"

	"github.com/pthm-cable/progeny/lifecycle"
)

// Identity names an organism across stages and reloads.
type Identity struct {
	ID         uuid.UUID
	Generation int          // 0 for founders
	Parents    [2]uuid.UUID // Zero for founders
}

// Founder reports whether the organism has no recorded parents.
func (id Identity) Founder() bool {
	return id.Parents[0] == uuid.Nil && id.Parents[1] == uuid.Nil
}

// ParentIDs returns the parent IDs as strings, or nil for founders.
func (id Identity) ParentIDs() []string {
	if id.Founder() {
		return nil
	}
	return []string{id.Parents[0].String(), id.Parents[1].String()}
}

// Youth marks an organism in the juvenile stage.
type Youth struct {
	Stage *lifecycle.Juvenile
}

// Maturity marks an organism in the adult stage.
type Maturity struct {
	Stage *lifecycle.Adult
}
