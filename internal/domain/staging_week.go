package domain

import "time"

// StagingWeek is the half-open window [Start, End) a scheduling run draws shifts from.
type StagingWeek struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewStagingWeek(date time.Time, loc *time.Location) StagingWeek {
	d := date.In(loc)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	return StagingWeek{
		Start: start,
		End:   start.AddDate(0, 0, 7),
	}
}

func (w StagingWeek) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}
