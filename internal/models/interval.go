package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInterval marks intervals that are unparsable, empty, inverted
// or outside the operating window.
var ErrInvalidInterval = errors.New("invalid interval")

// Interval is a half-open time-of-day range [Start, End) in minutes from
// midnight. Two bookings that touch at a boundary do not overlap.
type Interval struct {
	StartMin int
	EndMin   int
}

// Window is the operating window of the service. Bookings must fit inside it.
type Window struct {
	OpenMin  int
	CloseMin int
}

// ParseClock parses "HH:MM" into minutes from midnight. The whole string
// must be a clock value; trailing text is rejected.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: bad time %q", ErrInvalidInterval, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes from midnight as "HH:MM".
func FormatClock(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// NewWindow builds an operating window from "HH:MM" bounds.
func NewWindow(open, close string) (Window, error) {
	o, err := ParseClock(open)
	if err != nil {
		return Window{}, err
	}
	c, err := ParseClock(close)
	if err != nil {
		return Window{}, err
	}
	if o >= c {
		return Window{}, fmt.Errorf("%w: window %s-%s", ErrInvalidInterval, open, close)
	}
	return Window{OpenMin: o, CloseMin: c}, nil
}

// NewInterval parses and validates a booking interval against the window.
func NewInterval(start, end string, w Window) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	if s >= e {
		return Interval{}, fmt.Errorf("%w: start %s must be before end %s", ErrInvalidInterval, start, end)
	}
	if s < w.OpenMin || e > w.CloseMin {
		return Interval{}, fmt.Errorf("%w: %s-%s outside operating window %s-%s",
			ErrInvalidInterval, start, end, FormatClock(w.OpenMin), FormatClock(w.CloseMin))
	}
	return Interval{StartMin: s, EndMin: e}, nil
}

// Overlaps reports whether two half-open intervals intersect.
// Back-to-back intervals (a ends where b starts) do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.StartMin < other.EndMin && other.StartMin < i.EndMin
}

// Hours returns the interval duration in hours.
func (i Interval) Hours() (float64, error) {
	if i.EndMin <= i.StartMin {
		return 0, fmt.Errorf("%w: non-positive duration", ErrInvalidInterval)
	}
	return float64(i.EndMin-i.StartMin) / 60.0, nil
}

func (i Interval) Start() string { return FormatClock(i.StartMin) }
func (i Interval) End() string   { return FormatClock(i.EndMin) }

func (i Interval) String() string {
	return i.Start() + "-" + i.End()
}

type intervalJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (i Interval) MarshalJSON() ([]byte, error) {
	return json.Marshal(intervalJSON{Start: i.Start(), End: i.End()})
}

func (i *Interval) UnmarshalJSON(data []byte) error {
	var raw intervalJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s, err := ParseClock(raw.Start)
	if err != nil {
		return err
	}
	e, err := ParseClock(raw.End)
	if err != nil {
		return err
	}
	// Ordering holds on every decode path, not just NewInterval.
	if s >= e {
		return fmt.Errorf("%w: start %s must be before end %s", ErrInvalidInterval, raw.Start, raw.End)
	}
	i.StartMin = s
	i.EndMin = e
	return nil
}
