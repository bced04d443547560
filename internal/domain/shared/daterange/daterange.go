package daterange

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout is the wire format for calendar dates.
const Layout = "2006-01-02"

var (
	ErrInvalidRange  = errors.New("daterange: start date cannot be after end date")
	ErrMissingDate   = errors.New("daterange: start and end dates are required")
	ErrMalformedDate = errors.New("daterange: malformed date")
)

// DateRange represents a closed interval of calendar days [Start, End].
// Both ends are normalised to midnight UTC.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (DateRange, error) {
	dr := DateRange{Start: Day(start), End: Day(end)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Between normalises both ends without checking their order. Callers that
// must report an inverted range themselves use it instead of New.
func Between(start, end time.Time) DateRange {
	return DateRange{Start: Day(start), End: Day(end)}
}

// Parse builds a range from two YYYY-MM-DD strings.
func Parse(start, end string) (DateRange, error) {
	s, err := ParseDay(start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := ParseDay(end)
	if err != nil {
		return DateRange{}, err
	}
	return New(s, e)
}

func ParseDay(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrMissingDate
	}
	t, err := time.Parse(Layout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q, expected %s: %v", ErrMalformedDate, value, Layout, err)
	}
	return t, nil
}

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (dr DateRange) Validate() error {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ErrMissingDate
	}
	if dr.Start.After(dr.End) {
		return ErrInvalidRange
	}
	return nil
}

// Days counts the calendar days covered, both ends included.
func (dr DateRange) Days() int {
	return int(dr.End.Sub(dr.Start).Hours()/24) + 1
}

// Overlaps reports whether the two ranges share at least one day.
// Ranges touching on a single day overlap.
func (dr DateRange) Overlaps(other DateRange) bool {
	return !dr.Start.After(other.End) && !other.Start.After(dr.End)
}

func (dr DateRange) Contains(other DateRange) bool {
	return !dr.Start.After(other.Start) && !dr.End.Before(other.End)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	d := Day(t)
	return !d.Before(dr.Start) && !d.After(dr.End)
}

// Adjacent reports whether other starts the day after dr ends, or the reverse.
func (dr DateRange) Adjacent(other DateRange) bool {
	return dr.End.AddDate(0, 0, 1).Equal(other.Start) || other.End.AddDate(0, 0, 1).Equal(dr.Start)
}

func (dr DateRange) Merge(other DateRange) (DateRange, bool) {
	if !(dr.Overlaps(other) || dr.Adjacent(other)) {
		return DateRange{}, false
	}
	start := dr.Start
	if other.Start.Before(start) {
		start = other.Start
	}
	end := dr.End
	if other.End.After(end) {
		end = other.End
	}
	return DateRange{Start: start, End: end}, true
}

func (dr DateRange) String() string {
	return dr.Start.Format(Layout) + ".." + dr.End.Format(Layout)
}

type wireRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (dr DateRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireRange{Start: dr.Start.Format(Layout), End: dr.End.Format(Layout)})
}

func (dr *DateRange) UnmarshalJSON(data []byte) error {
	var w wireRange
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	parsed, err := Parse(w.Start, w.End)
	if err != nil {
		return err
	}
	*dr = parsed
	return nil
}
