package population

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/progeny/config"
	"github.com/pthm-cable/progeny/telemetry"
	"github.com/pthm-cable/progeny/traits"
)

func testColony(t *testing.T, seed int64) *Colony {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load failed: %v", err)
	}
	reg, err := traits.Build(cfg)
	if err != nil {
		t.Fatalf("traits.Build failed: %v", err)
	}
	return NewColony(cfg, reg, rand.New(rand.NewSource(seed)), telemetry.NewCollector(cfg.Telemetry.StatsWindow))
}

func mustFound(t *testing.T, c *Colony, name string, now float64) uuid.UUID {
	t.Helper()
	id, err := c.Found(name, now)
	if err != nil {
		t.Fatalf("Found(%q) failed: %v", name, err)
	}
	return id
}

// couple founds a male and a female at 0.
func couple(t *testing.T, c *Colony) (male, female uuid.UUID) {
	t.Helper()
	return mustFound(t, c, "Jebediah Kerman", 0), mustFound(t, c, "Valentina Kerman", 0)
}

func TestFound(t *testing.T) {
	c := testColony(t, 1)
	jeb, val := couple(t, c)

	if j, a := c.Counts(); j != 0 || a != 2 {
		t.Errorf("Counts = %d/%d, want 0/2", j, a)
	}
	a, err := c.Adult(val)
	if err != nil {
		t.Fatalf("Adult failed: %v", err)
	}
	if !a.Female() {
		t.Error("Valentina should be female")
	}
	if name, _ := a.Character(); name != "Valentina Kerman" {
		t.Errorf("Character = %q", name)
	}
	if got, ok := c.Bound("Jebediah Kerman"); !ok || got != jeb {
		t.Errorf("Bound(Jebediah) = %v, %v, want %v", got, ok, jeb)
	}

	if _, err := c.Found("Jebediah Kerman", 10); !errors.Is(err, ErrCharacterBound) {
		t.Errorf("second Found error = %v, want ErrCharacterBound", err)
	}
	if _, err := c.Found("", 10); err == nil {
		t.Error("expected error for empty character")
	}
	if n := c.Collector().Count(telemetry.EventFound); n != 2 {
		t.Errorf("found events = %d, want 2", n)
	}
}

func TestConceive(t *testing.T) {
	c := testColony(t, 2)
	jeb, val := couple(t, c)
	bob := mustFound(t, c, "Bob Kerman", 0)

	kid, err := c.Conceive(jeb, val, 1000)
	if err != nil {
		t.Fatalf("Conceive failed: %v", err)
	}
	if j, a := c.Counts(); j != 1 || a != 3 {
		t.Errorf("Counts = %d/%d, want 1/3", j, a)
	}

	ident, err := c.Identity(kid)
	if err != nil {
		t.Fatal(err)
	}
	if ident.Generation != 1 || ident.Parents != [2]uuid.UUID{jeb, val} {
		t.Errorf("identity = %+v", ident)
	}
	j, err := c.Juvenile(kid)
	if err != nil {
		t.Fatalf("Juvenile failed: %v", err)
	}
	if j.Birth() != 1000 {
		t.Errorf("Birth = %v, want 1000", j.Birth())
	}

	// Both parents are in their refractory period
	cooldown := c.cfg.Interest.MateCooldown
	for _, id := range []uuid.UUID{jeb, val} {
		a, _ := c.Adult(id)
		if a.Interest().Time() != 1000+cooldown {
			t.Errorf("interest time = %v, want %v", a.Interest().Time(), 1000+cooldown)
		}
		if p, _ := c.Interested(id, 1000+cooldown/2); p != 0 {
			t.Errorf("Interested during cooldown = %v, want 0", p)
		}
	}

	tests := []struct {
		name string
		a, b uuid.UUID
		want error
	}{
		{"same gender", jeb, bob, ErrIncompatible},
		{"self", val, val, ErrIncompatible},
		{"unknown", jeb, uuid.New(), ErrUnknownOrganism},
		{"juvenile parent", kid, val, ErrNotAdult},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Conceive(tt.a, tt.b, 2000); !errors.Is(err, tt.want) {
				t.Errorf("Conceive error = %v, want %v", err, tt.want)
			}
		})
	}

	col := c.Collector()
	if col.Count(telemetry.EventConceive) != 1 || col.Count(telemetry.EventMate) != 2 {
		t.Errorf("conceive/mate events = %d/%d, want 1/2",
			col.Count(telemetry.EventConceive), col.Count(telemetry.EventMate))
	}
}

func TestDecline(t *testing.T) {
	c := testColony(t, 3)
	jeb, _ := couple(t, c)

	if err := c.Decline(jeb, 5000); err != nil {
		t.Fatalf("Decline failed: %v", err)
	}
	a, _ := c.Adult(jeb)
	if a.Interest().Time() != 5000 {
		t.Errorf("interest time = %v, want 5000", a.Interest().Time())
	}
	if p, _ := c.Interested(jeb, 5000); p != 0 {
		t.Errorf("Interested right after decline = %v, want 0", p)
	}
	if p, _ := c.Interested(jeb, 5000+a.Interest().TC()*3); p <= 0.5 {
		t.Errorf("Interested well after decline = %v, want > 0.5", p)
	}
	if err := c.Decline(uuid.New(), 5000); !errors.Is(err, ErrUnknownOrganism) {
		t.Errorf("Decline error = %v, want ErrUnknownOrganism", err)
	}
}

func TestStepPromotesAndKills(t *testing.T) {
	c := testColony(t, 4)
	jeb, val := couple(t, c)
	kid, err := c.Conceive(jeb, val, 100)
	if err != nil {
		t.Fatal(err)
	}
	j, _ := c.Juvenile(kid)
	matureAt := j.MatureAt()

	// Founders may die before the juvenile matures; collect every death
	var died []Death
	res := c.Step(matureAt - 1)
	if len(res.Promoted) != 0 {
		t.Fatalf("promoted before maturity: %v", res.Promoted)
	}
	died = append(died, res.Died...)

	res = c.Step(matureAt)
	if len(res.Promoted) != 1 || res.Promoted[0] != kid {
		t.Fatalf("Promoted = %v, want [%v]", res.Promoted, kid)
	}
	died = append(died, res.Died...)
	if _, err := c.Juvenile(kid); !errors.Is(err, ErrNotJuvenile) {
		t.Errorf("Juvenile after promotion error = %v", err)
	}
	a, err := c.Adult(kid)
	if err != nil {
		t.Fatalf("Adult after promotion failed: %v", err)
	}
	if a.Adulthood() != matureAt || a.Birth() != 100 {
		t.Errorf("Birth/Adulthood = %v/%v, want 100/%v", a.Birth(), a.Adulthood(), matureAt)
	}
	if _, bound := a.Character(); bound {
		t.Error("promoted adult should be unbound")
	}
	if ident, _ := c.Identity(kid); ident.Generation != 1 {
		t.Errorf("generation lost on promotion: %+v", ident)
	}

	// Kill off everyone
	last := 0.0
	for _, id := range c.Adults() {
		a, _ := c.Adult(id)
		last = max(last, a.DeathAt())
	}
	res = c.Step(last)
	died = append(died, res.Died...)
	if len(died) != 3 {
		t.Fatalf("Died = %d entries, want 3", len(died))
	}
	if j, a := c.Counts(); j != 0 || a != 0 {
		t.Errorf("Counts = %d/%d after deaths, want 0/0", j, a)
	}
	if _, err := c.Adult(jeb); !errors.Is(err, ErrUnknownOrganism) {
		t.Errorf("Adult after death error = %v", err)
	}

	var jebDeath float64
	for _, d := range died {
		e := d.Entry
		if e.Stage() != StageAdult {
			t.Errorf("dead entry stage = %q", e.Stage())
		}
		if e.ID == jeb.String() {
			if e.Adult.Character != "Jebediah Kerman" {
				t.Errorf("dead entry lost character binding: %+v", e.Adult)
			}
			jebDeath = d.UT
			if got := restoredDeath(t, c, e); got != d.UT {
				t.Errorf("death time from record = %v, want %v", got, d.UT)
			}
		}
	}

	var deaths []telemetry.LifeEvent
	for _, ev := range c.Collector().Events() {
		if ev.Type == telemetry.EventDeath {
			deaths = append(deaths, ev)
		}
	}
	if len(deaths) != 3 {
		t.Fatalf("death events = %d, want 3", len(deaths))
	}
	for _, ev := range deaths {
		if ev.ID == jeb.String() {
			if ev.Children != 1 {
				t.Errorf("Jebediah children = %d, want 1", ev.Children)
			}
			if ev.UT != jebDeath {
				t.Errorf("death UT = %v, want %v", ev.UT, jebDeath)
			}
		}
	}
}

func TestSnapshotRestore(t *testing.T) {
	c := testColony(t, 5)
	jeb, val := couple(t, c)
	mustFound(t, c, "Bob Kerman", 0)
	for i := 0; i < 3; i++ {
		if _, err := c.Conceive(jeb, val, float64(i)*1000); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Decline(val, 4000); err != nil {
		t.Fatal(err)
	}

	snap := c.Snapshot(4500)
	data, err := yaml.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var loaded Roster
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if loaded.Time() != 4500 || loaded.Version != RosterVersion {
		t.Errorf("roster ut/version = %v/%d", loaded.Time(), loaded.Version)
	}

	// A different seed proves nothing is re-drawn
	restored := testColony(t, 99)
	if err := restored.Restore(&loaded); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	cj, ca := c.Counts()
	rj, ra := restored.Counts()
	if cj != rj || ca != ra {
		t.Fatalf("Counts = %d/%d, want %d/%d", rj, ra, cj, ca)
	}
	for _, id := range c.Juveniles() {
		want, _ := c.Juvenile(id)
		got, err := restored.Juvenile(id)
		if err != nil {
			t.Fatalf("restored Juvenile(%v) failed: %v", id, err)
		}
		if got.Maturation() != want.Maturation() {
			t.Errorf("maturation = %v, want %v", got.Maturation(), want.Maturation())
		}
		gi, _ := restored.Identity(id)
		wi, _ := c.Identity(id)
		if gi != wi {
			t.Errorf("identity = %+v, want %+v", gi, wi)
		}
	}
	for _, id := range c.Adults() {
		want, _ := c.Adult(id)
		got, err := restored.Adult(id)
		if err != nil {
			t.Fatalf("restored Adult(%v) failed: %v", id, err)
		}
		if got.Aging() != want.Aging() || got.Interest().Time() != want.Interest().Time() {
			t.Errorf("aging/interest = %v/%v, want %v/%v",
				got.Aging(), got.Interest().Time(), want.Aging(), want.Interest().Time())
		}
	}
	if id, ok := restored.Bound("Valentina Kerman"); !ok || id != val {
		t.Errorf("Bound(Valentina) = %v, %v after restore", id, ok)
	}

	if err := restored.Restore(&loaded); !errors.Is(err, ErrNotEmpty) {
		t.Errorf("second Restore error = %v, want ErrNotEmpty", err)
	}
}

func TestRestoreMalformedEntries(t *testing.T) {
	src := testColony(t, 6)
	jeb, val := couple(t, src)
	kid, err := src.Conceive(jeb, val, 0)
	if err != nil {
		t.Fatal(err)
	}
	snap := src.Snapshot(0)

	var kidEntry, jebEntry Entry
	for _, e := range snap.Organisms {
		switch e.ID {
		case kid.String():
			kidEntry = e
		case jeb.String():
			jebEntry = e
		}
	}
	kidEntry.ID = "not-a-uuid"
	kidEntry.Parents = []string{jeb.String(), "garbage"}

	r := &Roster{
		Version: RosterVersion,
		UT:      "0",
		Organisms: []Entry{
			kidEntry,
			{ID: uuid.New().String()},
			jebEntry,
			jebEntry,
		},
	}
	c := testColony(t, 7)
	if err := c.Restore(r); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	// The malformed ID was replaced, the stageless entry and the duplicate skipped
	juveniles, adults := c.Juveniles(), c.Adults()
	if len(juveniles) != 1 || len(adults) != 1 {
		t.Fatalf("restored %d/%d organisms, want 1/1", len(juveniles), len(adults))
	}
	if adults[0] != jeb {
		t.Errorf("adult = %v, want %v", adults[0], jeb)
	}
	ident, _ := c.Identity(juveniles[0])
	if ident.ID == kid || ident.Parents[0] != jeb || ident.Parents[1] != uuid.Nil {
		t.Errorf("identity = %+v", ident)
	}
	j, _ := c.Juvenile(juveniles[0])
	want, _ := src.Juvenile(kid)
	if j.Maturation() != want.Maturation() {
		t.Errorf("maturation = %v, want %v", j.Maturation(), want.Maturation())
	}
}

func TestFlush(t *testing.T) {
	c := testColony(t, 8)
	jeb, val := couple(t, c)
	if _, err := c.Conceive(jeb, val, 10); err != nil {
		t.Fatal(err)
	}

	stats := c.Flush(100)
	if stats.Juveniles != 1 || stats.Adults != 2 || stats.Generations != 1 {
		t.Errorf("population = %d/%d/%d, want 1/2/1", stats.Juveniles, stats.Adults, stats.Generations)
	}
	if stats.Founders != 2 || stats.Conceptions != 1 || stats.Matings != 2 {
		t.Errorf("events = %+v", stats)
	}
	if stats.MaturationMean <= 0 || stats.AgingMean <= 0 {
		t.Errorf("means = %v/%v, want positive", stats.MaturationMean, stats.AgingMean)
	}
	if stats.WindowEnd != 100 {
		t.Errorf("WindowEnd = %v, want 100", stats.WindowEnd)
	}
}

func TestSeededRunsMatch(t *testing.T) {
	run := func() []uuid.UUID {
		c := testColony(t, 42)
		jeb, val := couple(t, c)
		if _, err := c.Conceive(jeb, val, 0); err != nil {
			t.Fatal(err)
		}
		return append(c.Adults(), c.Juveniles()...)
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("run IDs differ at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

// restoredDeath re-derives a dead adult's death time from its final record.
func restoredDeath(t *testing.T, c *Colony, e Entry) float64 {
	t.Helper()
	r := &Roster{Version: RosterVersion, Organisms: []Entry{e}}
	fresh := NewColony(c.cfg, c.reg, rand.New(rand.NewSource(0)), nil)
	if err := fresh.Restore(r); err != nil {
		t.Fatal(err)
	}
	id, _ := uuid.Parse(e.ID)
	a, err := fresh.Adult(id)
	if err != nil {
		t.Fatal(err)
	}
	return a.DeathAt()
}

func TestRestoreKeepsLifetimeCounters(t *testing.T) {
	c := testColony(t, 11)
	jeb, val := couple(t, c)
	for _, now := range []float64{0, 1000} {
		if _, err := c.Conceive(jeb, val, now); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Decline(jeb, 2000); err != nil {
		t.Fatal(err)
	}

	data, err := yaml.Marshal(c.Snapshot(2500))
	if err != nil {
		t.Fatal(err)
	}
	var loaded Roster
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		t.Fatal(err)
	}

	restored := testColony(t, 12)
	if err := restored.Restore(&loaded); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	father, err := restored.Adult(jeb)
	if err != nil {
		t.Fatal(err)
	}

	res := restored.Step(father.DeathAt())
	var died *Death
	for i := range res.Died {
		if res.Died[i].Entry.ID == jeb.String() {
			died = &res.Died[i]
		}
	}
	if died == nil {
		t.Fatal("father did not die at his death time")
	}
	if e := died.Entry; e.Children != 2 || e.Matings != 2 || e.Declines != 1 {
		t.Errorf("final counters = %d/%d/%d, want 2/2/1", e.Children, e.Matings, e.Declines)
	}

	var death telemetry.LifeEvent
	for _, ev := range restored.Collector().Events() {
		if ev.Type == telemetry.EventDeath && ev.ID == jeb.String() {
			death = ev
		}
	}
	if death.Children != 2 {
		t.Errorf("death event children = %d, want 2", death.Children)
	}

	// The buried entry alone rebuilds the same death event.
	obit, err := testColony(t, 15).Obituary(died.Entry, died.UT)
	if err != nil {
		t.Fatalf("Obituary failed: %v", err)
	}
	if obit.ID != death.ID || obit.Female != death.Female || obit.Children != death.Children ||
		math.Abs(obit.Age-death.Age) > 1e-6 || obit.UT != death.UT {
		t.Errorf("Obituary = %+v, want %+v", obit, death)
	}
	if _, err := restored.Obituary(Entry{ID: jeb.String()}, 0); !errors.Is(err, ErrNotAdult) {
		t.Errorf("Obituary without an adult record: err = %v, want ErrNotAdult", err)
	}
}

func TestRestoreDuplicateBinding(t *testing.T) {
	c := testColony(t, 13)
	jeb, _ := couple(t, c)
	snap := c.Snapshot(0)

	var dup Entry
	for _, e := range snap.Organisms {
		if e.ID == jeb.String() {
			dup = e
		}
	}
	rec := *dup.Adult
	dup.Adult = &rec
	dup.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("second jeb")).String()
	snap.Organisms = append(snap.Organisms, dup)

	restored := testColony(t, 14)
	if err := restored.Restore(snap); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if _, a := restored.Counts(); a != 3 {
		t.Fatalf("adults = %d, want 3", a)
	}

	bound := 0
	for _, id := range restored.Adults() {
		a, _ := restored.Adult(id)
		if name, ok := a.Character(); ok && name == "Jebediah Kerman" {
			bound++
		}
	}
	if bound != 1 {
		t.Errorf("adults bound to Jebediah = %d, want 1", bound)
	}
	if id, ok := restored.Bound("Jebediah Kerman"); !ok || id != jeb {
		t.Errorf("Bound(Jebediah) = %v, %v, want %v", id, ok, jeb)
	}
}
