// Package telemetry provides colony lifecycle event tracking, windowed
// statistics and CSV output.
package telemetry

import "fmt"

// EventType identifies lifecycle events.
type EventType uint8

const (
	EventFound EventType = iota
	EventConceive
	EventPromote
	EventDeath
	EventMate
	EventDecline

	eventTypeCount
)

var eventNames = [eventTypeCount]string{
	EventFound:    "found",
	EventConceive: "conceive",
	EventPromote:  "promote",
	EventDeath:    "death",
	EventMate:     "mate",
	EventDecline:  "decline",
}

// String returns the event name used in logs and CSV.
func (e EventType) String() string {
	if e < eventTypeCount {
		return eventNames[e]
	}
	return "unknown"
}

// ParseEventType returns the event type with the given name.
func ParseEventType(s string) (EventType, error) {
	for i, name := range eventNames {
		if name == s {
			return EventType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown event type %q", s)
}

// MarshalCSV implements gocsv.TypeMarshaller.
func (e EventType) MarshalCSV() (string, error) {
	return e.String(), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (e *EventType) UnmarshalCSV(s string) error {
	t, err := ParseEventType(s)
	if err != nil {
		return err
	}
	*e = t
	return nil
}

// LifeEvent is one organism lifecycle event, written as a row of events.csv.
// Fields that do not apply to the event type are zero.
type LifeEvent struct {
	Type       EventType `csv:"event"`
	UT         float64   `csv:"ut"`
	ID         string    `csv:"id"`
	Generation int       `csv:"generation"`
	Female     bool      `csv:"female"`
	Partner    string    `csv:"partner"`    // Mate, or the other parent on conceive
	Maturation float64   `csv:"maturation"` // Birth to maturity (conceive, promote)
	Aging      float64   `csv:"aging"`      // Adulthood to death (found, promote, death)
	Age        float64   `csv:"age"`        // Birth to death (death)
	Children   int       `csv:"children"`   // Lifetime offspring (death)
}
