// Package population keeps a colony's roster of organisms in an ark ECS
// world and moves them through their lifecycle: founding, conception,
// promotion to adulthood and death.
//
// When organisms meet is left to the caller; the colony only applies the
// consequences of a mating or a declined attempt.
package population

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"slices"

	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/progeny/components"
	"github.com/pthm-cable/progeny/config"
	"github.com/pthm-cable/progeny/lifecycle"
	"github.com/pthm-cable/progeny/telemetry"
	"github.com/pthm-cable/progeny/traits"
)

var (
	ErrUnknownOrganism = errors.New("population: unknown organism")
	ErrNotAdult        = errors.New("population: organism is not an adult")
	ErrNotJuvenile     = errors.New("population: organism is not a juvenile")
	ErrIncompatible    = errors.New("population: conception needs a female and a male adult")
	ErrCharacterBound  = errors.New("population: character already bound to an adult")
	ErrNotEmpty        = errors.New("population: colony is not empty")
)

// Colony owns the organisms of one settlement.
type Colony struct {
	cfg       *config.Config
	reg       *traits.Registry
	rng       *rand.Rand
	collector *telemetry.Collector
	lifetimes *telemetry.LifetimeTracker

	world *ecs.World

	youthMapper *ecs.Map2[components.Identity, components.Youth]
	adultMapper *ecs.Map2[components.Identity, components.Maturity]
	youthFilter *ecs.Filter2[components.Identity, components.Youth]
	adultFilter *ecs.Filter2[components.Identity, components.Maturity]

	idMap    *ecs.Map[components.Identity]
	youthMap *ecs.Map[components.Youth]
	adultMap *ecs.Map[components.Maturity]

	index     map[uuid.UUID]ecs.Entity
	juveniles int
	adults    int
}

// StepResult reports the lifecycle transitions applied by Step.
type StepResult struct {
	Promoted []uuid.UUID
	Died     []Death
}

// Death is the final record of an adult and the time it died.
type Death struct {
	Entry Entry
	UT    float64
}

// NewColony creates an empty colony. A nil collector gets one sized from the
// telemetry config.
func NewColony(cfg *config.Config, reg *traits.Registry, rng *rand.Rand, collector *telemetry.Collector) *Colony {
	if collector == nil {
		collector = telemetry.NewCollector(cfg.Telemetry.StatsWindow)
	}
	world := ecs.NewWorld()
	return &Colony{
		cfg:       cfg,
		reg:       reg,
		rng:       rng,
		collector: collector,
		lifetimes: telemetry.NewLifetimeTracker(),
		world:     world,

		youthMapper: ecs.NewMap2[components.Identity, components.Youth](world),
		adultMapper: ecs.NewMap2[components.Identity, components.Maturity](world),
		youthFilter: ecs.NewFilter2[components.Identity, components.Youth](world),
		adultFilter: ecs.NewFilter2[components.Identity, components.Maturity](world),

		idMap:    ecs.NewMap[components.Identity](world),
		youthMap: ecs.NewMap[components.Youth](world),
		adultMap: ecs.NewMap[components.Maturity](world),

		index: make(map[uuid.UUID]ecs.Entity),
	}
}

// Collector returns the colony's telemetry collector.
func (c *Colony) Collector() *telemetry.Collector {
	return c.collector
}

// newID draws an organism ID from the colony's random source so seeded runs
// reproduce their IDs.
func (c *Colony) newID() uuid.UUID {
	id, err := uuid.NewRandomFromReader(c.rng)
	if err != nil {
		panic(fmt.Sprintf("population: drawing organism id: %v", err))
	}
	return id
}

func (c *Colony) cooldown() float64 {
	return c.cfg.Interest.MateCooldown
}

func (c *Colony) addJuvenile(ident components.Identity, j *lifecycle.Juvenile) {
	c.index[ident.ID] = c.youthMapper.NewEntity(&ident, &components.Youth{Stage: j})
	c.juveniles++
}

func (c *Colony) addAdult(ident components.Identity, a *lifecycle.Adult) {
	c.index[ident.ID] = c.adultMapper.NewEntity(&ident, &components.Maturity{Stage: a})
	c.adults++
}

// Found adds an adult for a character present at now, bound to it.
func (c *Colony) Found(character string, now float64) (uuid.UUID, error) {
	if character == "" {
		return uuid.Nil, fmt.Errorf("population: founding: empty character name")
	}
	if _, ok := c.Bound(character); ok {
		return uuid.Nil, fmt.Errorf("founding %s: %w", character, ErrCharacterBound)
	}

	a := lifecycle.Found(character, c.reg, now, c.cooldown(), c.rng)
	ident := components.Identity{ID: c.newID()}
	c.addAdult(ident, a)
	c.lifetimes.Register(ident.ID, now, 0)

	ev := lifeEvent(telemetry.EventFound, now, ident, &a.Zygote)
	ev.Aging = a.Aging()
	c.collector.Record(ev)

	slog.Info("organism_founded",
		"id", ident.ID,
		"character", character,
		"female", a.Female(),
		"death_ut", a.DeathAt(),
	)
	return ident.ID, nil
}

// Conceive mates two adults at now and adds their offspring as a juvenile.
// Both parents' interest restarts after the mating cooldown.
func (c *Colony) Conceive(a, b uuid.UUID, now float64) (uuid.UUID, error) {
	pa, ia, err := c.adult(a)
	if err != nil {
		return uuid.Nil, err
	}
	pb, ib, err := c.adult(b)
	if err != nil {
		return uuid.Nil, err
	}
	if a == b || pa.Female() == pb.Female() {
		return uuid.Nil, ErrIncompatible
	}

	j := lifecycle.Conceive(pa.Genome(), pb.Genome(), c.reg, now, c.rng)
	pa.Interest().Mate(now)
	pb.Interest().Mate(now)

	ident := components.Identity{
		ID:         c.newID(),
		Generation: max(ia.Generation, ib.Generation) + 1,
		Parents:    [2]uuid.UUID{a, b},
	}
	c.addJuvenile(ident, j)
	c.lifetimes.Register(ident.ID, now, ident.Generation)

	for _, p := range [][2]uuid.UUID{{a, b}, {b, a}} {
		c.lifetimes.RecordChild(p[0])
		c.lifetimes.RecordMating(p[0])
		c.collector.Record(telemetry.LifeEvent{
			Type:    telemetry.EventMate,
			UT:      now,
			ID:      p[0].String(),
			Partner: p[1].String(),
		})
	}
	ev := lifeEvent(telemetry.EventConceive, now, ident, &j.Zygote)
	ev.Partner = b.String()
	ev.Maturation = j.Maturation()
	c.collector.Record(ev)

	slog.Debug("organism_conceived",
		"id", ident.ID,
		"parents", ident.ParentIDs(),
		"generation", ident.Generation,
		"mature_ut", j.MatureAt(),
	)
	return ident.ID, nil
}

// Decline records a rejected mating attempt: the adult's interest restarts
// immediately.
func (c *Colony) Decline(id uuid.UUID, now float64) error {
	a, _, err := c.adult(id)
	if err != nil {
		return err
	}
	a.Interest().NonMate(now)
	c.lifetimes.RecordDecline(id)
	c.collector.Record(telemetry.LifeEvent{
		Type: telemetry.EventDecline,
		UT:   now,
		ID:   id.String(),
	})
	return nil
}

// Interested returns the adult's receptivity probability at now.
func (c *Colony) Interested(id uuid.UUID, now float64) (float64, error) {
	a, _, err := c.adult(id)
	if err != nil {
		return 0, err
	}
	return a.Interest().IsInterested(now), nil
}

// Step promotes every juvenile whose maturity time has passed, then removes
// every adult whose lifespan has ended.
func (c *Colony) Step(now float64) StepResult {
	var res StepResult

	type maturing struct {
		entity ecs.Entity
		ident  components.Identity
		stage  *lifecycle.Juvenile
	}
	var toPromote []maturing

	// First pass: collect (must complete before modifying the world)
	query := c.youthFilter.Query()
	for query.Next() {
		ident, youth := query.Get()
		if youth.Stage.Mature(now) {
			toPromote = append(toPromote, maturing{query.Entity(), *ident, youth.Stage})
		}
	}

	for _, m := range toPromote {
		c.world.RemoveEntity(m.entity)
		c.juveniles--

		a := lifecycle.Promote(m.stage, c.cooldown())
		c.addAdult(m.ident, a)
		res.Promoted = append(res.Promoted, m.ident.ID)

		ev := lifeEvent(telemetry.EventPromote, a.Adulthood(), m.ident, &a.Zygote)
		ev.Maturation = m.stage.Maturation()
		ev.Aging = a.Aging()
		c.collector.Record(ev)

		slog.Info("organism_promoted",
			"id", m.ident.ID,
			"ut", a.Adulthood(),
			"maturation", m.stage.Maturation(),
		)
	}

	type dying struct {
		entity ecs.Entity
		ident  components.Identity
		stage  *lifecycle.Adult
	}
	var toRemove []dying

	adultQuery := c.adultFilter.Query()
	for adultQuery.Next() {
		ident, maturity := adultQuery.Get()
		if maturity.Stage.Dead(now) {
			toRemove = append(toRemove, dying{adultQuery.Entity(), *ident, maturity.Stage})
		}
	}

	for _, d := range toRemove {
		res.Died = append(res.Died, Death{Entry: c.withLifetime(adultEntry(d.ident, d.stage), d.ident.ID), UT: d.stage.DeathAt()})
		c.world.RemoveEntity(d.entity)
		delete(c.index, d.ident.ID)
		c.adults--

		ev := lifeEvent(telemetry.EventDeath, d.stage.DeathAt(), d.ident, &d.stage.Zygote)
		ev.Aging = d.stage.Aging()
		ev.Age = d.stage.Age(d.stage.DeathAt())
		if stats := c.lifetimes.Remove(d.ident.ID); stats != nil {
			ev.Children = stats.Children
		}
		c.collector.Record(ev)

		character, _ := d.stage.Character()
		slog.Info("organism_died",
			"id", d.ident.ID,
			"ut", d.stage.DeathAt(),
			"age", ev.Age,
			"character", character,
			"children", ev.Children,
		)
	}

	return res
}

func lifeEvent(t telemetry.EventType, ut float64, ident components.Identity, z *lifecycle.Zygote) telemetry.LifeEvent {
	return telemetry.LifeEvent{
		Type:       t,
		UT:         ut,
		ID:         ident.ID.String(),
		Generation: ident.Generation,
		Female:     z.Female(),
	}
}

// Obituary rebuilds the death event of a buried adult from its final entry
// and time of death. The colony's random stream is not consumed.
func (c *Colony) Obituary(e Entry, ut float64) (telemetry.LifeEvent, error) {
	if e.Adult == nil {
		return telemetry.LifeEvent{}, fmt.Errorf("%w: %s", ErrNotAdult, e.ID)
	}
	id, err := uuid.Parse(e.ID)
	if err != nil {
		return telemetry.LifeEvent{}, fmt.Errorf("obituary: %w", err)
	}

	a := lifecycle.RestoreAdult(*e.Adult, c.reg, c.cooldown(), rand.New(rand.NewSource(int64(id.ID()))))
	ev := lifeEvent(telemetry.EventDeath, ut, components.Identity{ID: id, Generation: e.Generation}, &a.Zygote)
	ev.Aging = a.Aging()
	ev.Age = a.Age(ut)
	ev.Children = e.Children
	return ev, nil
}

func (c *Colony) entity(id uuid.UUID) (ecs.Entity, error) {
	e, ok := c.index[id]
	if !ok {
		return ecs.Entity{}, fmt.Errorf("%w: %s", ErrUnknownOrganism, id)
	}
	return e, nil
}

func (c *Colony) adult(id uuid.UUID) (*lifecycle.Adult, components.Identity, error) {
	e, err := c.entity(id)
	if err != nil {
		return nil, components.Identity{}, err
	}
	if !c.adultMap.Has(e) {
		return nil, components.Identity{}, fmt.Errorf("%w: %s", ErrNotAdult, id)
	}
	return c.adultMap.Get(e).Stage, *c.idMap.Get(e), nil
}

// Juvenile returns the juvenile stage of an organism.
func (c *Colony) Juvenile(id uuid.UUID) (*lifecycle.Juvenile, error) {
	e, err := c.entity(id)
	if err != nil {
		return nil, err
	}
	if !c.youthMap.Has(e) {
		return nil, fmt.Errorf("%w: %s", ErrNotJuvenile, id)
	}
	return c.youthMap.Get(e).Stage, nil
}

// Adult returns the adult stage of an organism.
func (c *Colony) Adult(id uuid.UUID) (*lifecycle.Adult, error) {
	a, _, err := c.adult(id)
	return a, err
}

// Identity returns an organism's identity.
func (c *Colony) Identity(id uuid.UUID) (components.Identity, error) {
	e, err := c.entity(id)
	if err != nil {
		return components.Identity{}, err
	}
	return *c.idMap.Get(e), nil
}

// Adults returns the IDs of all living adults in ID order.
func (c *Colony) Adults() []uuid.UUID {
	ids := make([]uuid.UUID, 0, c.adults)
	query := c.adultFilter.Query()
	for query.Next() {
		ident, _ := query.Get()
		ids = append(ids, ident.ID)
	}
	sortIDs(ids)
	return ids
}

// Juveniles returns the IDs of all juveniles in ID order.
func (c *Colony) Juveniles() []uuid.UUID {
	ids := make([]uuid.UUID, 0, c.juveniles)
	query := c.youthFilter.Query()
	for query.Next() {
		ident, _ := query.Get()
		ids = append(ids, ident.ID)
	}
	sortIDs(ids)
	return ids
}

func sortIDs(ids []uuid.UUID) {
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})
}

// Bound returns the adult bound to the character, if any.
func (c *Colony) Bound(character string) (uuid.UUID, bool) {
	found := uuid.Nil
	query := c.adultFilter.Query()
	for query.Next() {
		ident, maturity := query.Get()
		if name, ok := maturity.Stage.Character(); ok && name == character {
			found = ident.ID
		}
	}
	return found, found != uuid.Nil
}

// Counts returns the number of juveniles and adults.
func (c *Colony) Counts() (juveniles, adults int) {
	return c.juveniles, c.adults
}

// Flush closes the current telemetry window at now with the colony's
// population and lifecycle time samples.
func (c *Colony) Flush(now float64) telemetry.WindowStats {
	maturations := make([]float64, 0, c.juveniles)
	query := c.youthFilter.Query()
	for query.Next() {
		_, youth := query.Get()
		maturations = append(maturations, youth.Stage.Maturation())
	}

	agings := make([]float64, 0, c.adults)
	interests := make([]float64, 0, c.adults)
	adultQuery := c.adultFilter.Query()
	for adultQuery.Next() {
		_, maturity := adultQuery.Get()
		agings = append(agings, maturity.Stage.Aging())
		interests = append(interests, maturity.Stage.Interest().IsInterested(now))
	}

	return c.collector.Flush(now, c.juveniles, c.adults, c.lifetimes.MaxGeneration(),
		maturations, agings, interests)
}

// Snapshot returns the colony's persisted form at now, organisms in ID order.
func (c *Colony) Snapshot(now float64) *Roster {
	r := &Roster{
		Version:   RosterVersion,
		UT:        traits.FormatValue(now),
		Organisms: make([]Entry, 0, c.juveniles+c.adults),
	}

	query := c.youthFilter.Query()
	for query.Next() {
		ident, youth := query.Get()
		rec := youth.Stage.Record()
		r.Organisms = append(r.Organisms, c.withLifetime(Entry{
			ID:         ident.ID.String(),
			Generation: ident.Generation,
			Parents:    ident.ParentIDs(),
			Juvenile:   &rec,
		}, ident.ID))
	}
	adultQuery := c.adultFilter.Query()
	for adultQuery.Next() {
		ident, maturity := adultQuery.Get()
		r.Organisms = append(r.Organisms, c.withLifetime(adultEntry(*ident, maturity.Stage), ident.ID))
	}

	slices.SortFunc(r.Organisms, func(a, b Entry) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return r
}

// withLifetime copies the organism's lifetime counters into e.
func (c *Colony) withLifetime(e Entry, id uuid.UUID) Entry {
	if stats := c.lifetimes.Get(id); stats != nil {
		e.Children = stats.Children
		e.Matings = stats.Matings
		e.Declines = stats.Declines
	}
	return e
}

// restoreLifetime registers the organism with the counters saved in e.
func (c *Colony) restoreLifetime(id uuid.UUID, e Entry, birth float64, generation int) {
	c.lifetimes.Register(id, birth, generation)
	stats := c.lifetimes.Get(id)
	stats.Children = e.Children
	stats.Matings = e.Matings
	stats.Declines = e.Declines
}

func adultEntry(ident components.Identity, a *lifecycle.Adult) Entry {
	rec := a.Record()
	return Entry{
		ID:         ident.ID.String(),
		Generation: ident.Generation,
		Parents:    ident.ParentIDs(),
		Adult:      &rec,
	}
}

// Restore loads a roster into an empty colony. Entries with a malformed ID
// get a fresh one; entries without a stage or with a duplicate ID are
// skipped. Lifecycle times are re-derived from the records. A character
// stays bound to the first adult naming it; later ones are unbound.
func (c *Colony) Restore(r *Roster) error {
	if len(c.index) > 0 {
		return ErrNotEmpty
	}
	bound := make(map[string]uuid.UUID)

	for i, e := range r.Organisms {
		ident := components.Identity{Generation: e.Generation}
		id, err := uuid.Parse(e.ID)
		if err != nil {
			id = c.newID()
			slog.Warn("record_field_malformed", "field", "id", "value", e.ID, "replacement", id)
		}
		ident.ID = id
		if _, dup := c.index[id]; dup {
			slog.Warn("roster_entry_duplicate", "index", i, "id", id)
			continue
		}
		ident.Parents = parseParents(e.Parents)

		switch e.Stage() {
		case StageAdult:
			a := lifecycle.RestoreAdult(*e.Adult, c.reg, c.cooldown(), c.rng)
			if name, ok := a.Character(); ok {
				if holder, taken := bound[name]; taken {
					a.Unbind()
					slog.Warn("record_field_duplicate_binding", "id", id, "character", name, "bound_to", holder)
				} else {
					bound[name] = id
				}
			}
			c.addAdult(ident, a)
			c.restoreLifetime(id, e, a.Birth(), ident.Generation)
		case StageJuvenile:
			j := lifecycle.RestoreJuvenile(*e.Juvenile, c.reg, c.rng)
			c.addJuvenile(ident, j)
			c.restoreLifetime(id, e, j.Birth(), ident.Generation)
		default:
			slog.Warn("roster_entry_without_stage", "index", i, "id", e.ID)
		}
	}

	slog.Info("roster_restored",
		"juveniles", c.juveniles,
		"adults", c.adults,
		"ut", r.Time(),
	)
	return nil
}

func parseParents(raw []string) [2]uuid.UUID {
	var parents [2]uuid.UUID
	if len(raw) != 2 {
		if len(raw) != 0 {
			slog.Warn("record_field_malformed", "field", "parents", "value", raw)
		}
		return parents
	}
	for i, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			slog.Warn("record_field_malformed", "field", "parents", "value", s)
			continue
		}
		parents[i] = id
	}
	return parents
}
