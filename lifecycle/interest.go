package lifecycle

import (
	"github.com/pthm-cable/progeny/genome"
	"github.com/pthm-cable/progeny/traits"
	"github.com/pthm-cable/progeny/weibull"
)

// Interest is an adult's mating receptivity: a Weibull CDF rising from the
// last reset. TC and K are copied from the genome at construction.
type Interest struct {
	time     float64
	tc       float64
	k        float64
	cooldown float64
}

// InterestRecord is the persisted form of an Interest.
type InterestRecord struct {
	Time string `yaml:"interestTime,omitempty"`
	TC   string `yaml:"interestTC,omitempty"`
	K    string `yaml:"interestK,omitempty"`
}

// NewInterest creates an Interest rising from start.
func NewInterest(g genome.Genome, start, cooldown float64) *Interest {
	tc := g.Get(traits.InterestTC)
	k := g.Get(traits.InterestK)
	return &Interest{
		time:     start,
		tc:       tc.Trait.Express(tc).Value,
		k:        k.Trait.Express(k).Value,
		cooldown: cooldown,
	}
}

// IsInterested returns the probability of receptivity at now: zero before
// the reset time, then 1 - exp(-((now-time)/TC)^K).
func (in *Interest) IsInterested(now float64) float64 {
	if now < in.time {
		return 0
	}
	return weibull.CDF(in.tc, in.k, now-in.time)
}

// Mate restarts the curve at now plus the refractory cooldown. The reset
// time never moves backwards, so a Mate inside a later pending reset keeps
// the later one.
func (in *Interest) Mate(now float64) {
	in.advance(now + in.cooldown)
}

// NonMate restarts the curve at now after a rejected attempt. During a
// mating cooldown the reset time is already past now and is left unchanged.
func (in *Interest) NonMate(now float64) {
	in.advance(now)
}

// advance moves the reset time forward; it never moves back.
func (in *Interest) advance(t float64) {
	if t > in.time {
		in.time = t
	}
}

// Time returns the time the curve last restarted from.
func (in *Interest) Time() float64 { return in.time }

// TC returns the characteristic time.
func (in *Interest) TC() float64 { return in.tc }

// K returns the shape.
func (in *Interest) K() float64 { return in.k }

// Cooldown returns the refractory delay applied by Mate.
func (in *Interest) Cooldown() float64 { return in.cooldown }

// Load applies persisted values. TC and K keep their genome-derived values
// unless the record holds a positive number.
func (in *Interest) Load(rec InterestRecord) {
	if t, ok := parseField("interestTime", rec.Time); ok {
		in.time = t
	}
	if tc, ok := parseField("interestTC", rec.TC); ok && tc > 0 {
		in.tc = tc
	}
	if k, ok := parseField("interestK", rec.K); ok && k > 0 {
		in.k = k
	}
}

// Record returns the persisted form.
func (in *Interest) Record() InterestRecord {
	return InterestRecord{
		Time: traits.FormatValue(in.time),
		TC:   traits.FormatValue(in.tc),
		K:    traits.FormatValue(in.k),
	}
}
