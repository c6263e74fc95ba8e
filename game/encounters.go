package game

import (
	"log/slog"

	"github.com/google/uuid"
)

// encounters runs the pairing attempts for one tick. A random adult takes
// the initiative with its current interest probability and approaches a
// random adult of the other gender, who accepts with its own. Acceptance
// conceives a juvenile; a refusal restarts the partner's interest.
func (g *Game) encounters() {
	for i := 0; i < g.cfg.Colony.PairingAttempts; i++ {
		if juveniles, _ := g.colony.Counts(); juveniles >= g.cfg.Colony.MaxJuveniles {
			return
		}

		adults := g.colony.Adults()
		if len(adults) < 2 {
			return
		}
		initiator := adults[g.rng.Intn(len(adults))]
		if !g.willing(initiator) {
			continue
		}

		partners := g.partnersOf(initiator, adults)
		if len(partners) == 0 {
			continue
		}
		partner := partners[g.rng.Intn(len(partners))]

		if !g.willing(partner) {
			if err := g.colony.Decline(partner, g.now); err != nil {
				slog.Error("decline failed", "id", partner, "error", err)
			}
			continue
		}
		if _, err := g.colony.Conceive(initiator, partner, g.now); err != nil {
			slog.Error("conception failed", "initiator", initiator, "partner", partner, "error", err)
		}
	}
}

// willing rolls the adult's interest at the current time.
func (g *Game) willing(id uuid.UUID) bool {
	p, err := g.colony.Interested(id, g.now)
	if err != nil {
		return false
	}
	return g.rng.Float64() < p
}

// partnersOf returns the adults of the other gender.
func (g *Game) partnersOf(id uuid.UUID, adults []uuid.UUID) []uuid.UUID {
	self, err := g.colony.Adult(id)
	if err != nil {
		return nil
	}
	var out []uuid.UUID
	for _, other := range adults {
		a, err := g.colony.Adult(other)
		if err != nil {
			continue
		}
		if a.Female() != self.Female() {
			out = append(out, other)
		}
	}
	return out
}
