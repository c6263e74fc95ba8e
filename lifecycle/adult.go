package lifecycle

import (
	"math/rand"

	"github.com/pthm-cable/progeny/genome"
	"github.com/pthm-cable/progeny/traits"
)

// Adult is the mature stage. It may be bound to an active character by name;
// the roster owning that character is external.
type Adult struct {
	Zygote
	birthUT     float64
	adulthoodUT float64
	subp        float64
	aging       float64 // Derived from the bio-clock and subp
	interest    *Interest
	character   string
}

// AdultRecord is the persisted form of an adult.
type AdultRecord struct {
	Genome         genome.Record `yaml:"genome"`
	BirthUT        string        `yaml:"birthUT,omitempty"`
	AdulthoodUT    string        `yaml:"adulthoodUT,omitempty"`
	P              string        `yaml:"p,omitempty"`
	Character      string        `yaml:"character,omitempty"`
	InterestRecord `yaml:",inline"`
}

// Promote turns a matured juvenile into an adult. The juvenile's genome,
// birth time and sub-draw carry over; adulthood starts at its maturity time.
// The adult is not yet bound to a character.
func Promote(j *Juvenile, cooldown float64) *Adult {
	a := &Adult{
		Zygote:      j.Zygote,
		birthUT:     j.birthUT,
		adulthoodUT: j.MatureAt(),
		subp:        j.subp,
	}
	a.init(cooldown)
	return a
}

// Found creates an adult for a character already present at now, with a
// founder genome and no juvenile phase.
func Found(character string, reg *traits.Registry, now, cooldown float64, rng *rand.Rand) *Adult {
	g := genome.Found(character, reg, rng)
	a := &Adult{
		Zygote:      newZygote(g, reg),
		birthUT:     now,
		adulthoodUT: now,
		subp:        rng.Float64(),
		character:   character,
	}
	a.init(cooldown)
	return a
}

// RestoreAdult rebuilds an adult from its record and re-derives its aging
// time. rng is only used for fields the record lacks.
func RestoreAdult(rec AdultRecord, reg *traits.Registry, cooldown float64, rng *rand.Rand) *Adult {
	g := genome.Restore(rec.Genome, reg, rec.Character, rng)
	birth, _ := parseField("birthUT", rec.BirthUT)
	adulthood, _ := parseField("adulthoodUT", rec.AdulthoodUT)
	a := &Adult{
		Zygote:      newZygote(g, reg),
		birthUT:     birth,
		adulthoodUT: adulthood,
		subp:        parseSubP(rec.P, func() float64 { return rng.Float64() }),
		character:   rec.Character,
	}
	a.init(cooldown)
	a.interest.Load(rec.InterestRecord)
	return a
}

func (a *Adult) init(cooldown float64) {
	a.aging = a.clock.AgingTime(a.bioClock, a.bioClockInverse, a.subp)
	a.interest = NewInterest(a.genome, a.adulthoodUT, cooldown)
}

// Aging returns the adult lifespan from adulthood to death.
func (a *Adult) Aging() float64 {
	return a.aging
}

// Birth returns the birth time.
func (a *Adult) Birth() float64 {
	return a.birthUT
}

// Adulthood returns the time the organism became an adult.
func (a *Adult) Adulthood() float64 {
	return a.adulthoodUT
}

// DeathAt returns the time the adult dies of old age.
func (a *Adult) DeathAt() float64 {
	return a.adulthoodUT + a.aging
}

// Dead reports whether the adult has outlived its lifespan at now.
func (a *Adult) Dead(now float64) bool {
	return now >= a.DeathAt()
}

// Age returns the time since birth.
func (a *Adult) Age(now float64) float64 {
	return now - a.birthUT
}

// P returns the persisted sub-draw.
func (a *Adult) P() float64 {
	return a.subp
}

// Interest returns the mating receptivity model.
func (a *Adult) Interest() *Interest {
	return a.interest
}

// Character returns the bound character, if any.
func (a *Adult) Character() (string, bool) {
	return a.character, a.character != ""
}

// Bind attaches the adult to an active character.
func (a *Adult) Bind(character string) {
	a.character = character
}

// Unbind detaches the adult from its character.
func (a *Adult) Unbind() {
	a.character = ""
}

// Record returns the persisted form.
func (a *Adult) Record() AdultRecord {
	return AdultRecord{
		Genome:         a.genome.Record(),
		BirthUT:        traits.FormatValue(a.birthUT),
		AdulthoodUT:    traits.FormatValue(a.adulthoodUT),
		P:              traits.FormatValue(a.subp),
		Character:      a.character,
		InterestRecord: a.interest.Record(),
	}
}
