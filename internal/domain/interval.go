package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidInterval = errors.New("invalid interval")

type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewInterval(start, end time.Time) (Interval, error) {
	iv := Interval{Start: start, End: end}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

func (iv Interval) Validate() error {
	if iv.Start.IsZero() || iv.End.IsZero() {
		return fmt.Errorf("%w: missing start or end", ErrInvalidInterval)
	}
	if !iv.Start.Before(iv.End) {
		return fmt.Errorf("%w: start %s is not before end %s", ErrInvalidInterval, iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339))
	}
	return nil
}

// Weekday is derived from Start alone (0 = Sunday). Shifts crossing midnight belong to the day they start.
func (iv Interval) Weekday(loc *time.Location) int {
	return int(iv.Start.In(loc).Weekday())
}

// Shift is one calendar event: an interval at a location plus the raw course mentions typed by the tutor.
type Shift struct {
	Interval
	Location string   `json:"location"`
	Mentions []string `json:"mentions"`
}
