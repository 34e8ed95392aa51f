package calendar

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/domain"
)

const statusCancelled = "CANCELLED"

var ErrNotICalendar = errors.New("body is not an iCalendar feed")

// MentionParser extracts course mentions from event text.
type MentionParser interface {
	Parse(text string) []string
}

// Stats counts what happened to every VEVENT of a feed.
type Stats struct {
	Events      int `json:"events"`
	Recurring   int `json:"recurring"`
	Cancelled   int `json:"cancelled"`
	AllDay      int `json:"allDay"`
	OutsideWeek int `json:"outsideWeek"`
	Overridden  int `json:"overridden"`
	Invalid     int `json:"invalid"`
	Shifts      int `json:"shifts"`
}

func (s *Stats) Add(other *Stats) {
	s.Events += other.Events
	s.Recurring += other.Recurring
	s.Cancelled += other.Cancelled
	s.AllDay += other.AllDay
	s.OutsideWeek += other.OutsideWeek
	s.Overridden += other.Overridden
	s.Invalid += other.Invalid
	s.Shifts += other.Shifts
}

// ParseShifts decodes an iCalendar stream and returns the shifts of label that start inside week.
// Recurring events are expanded, and occurrences replaced by a RECURRENCE-ID override are left to the override.
func ParseShifts(r io.Reader, label string, week domain.StagingWeek, loc *time.Location, parser MentionParser) ([]domain.Shift, *Stats, error) {
	var events []*ical.Component

	decoder := ical.NewDecoder(r)
	for {
		cal, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("decode calendar: %w", err)
		}
		for _, comp := range cal.Children {
			if comp.Name == ical.CompEvent {
				events = append(events, comp)
			}
		}
	}

	overrides := collectOverrides(events, loc)

	shifts := make([]domain.Shift, 0)
	stats := &Stats{}

	for _, comp := range events {
		stats.Events++

		if status := comp.Props.Get(ical.PropStatus); status != nil && strings.EqualFold(status.Value, statusCancelled) {
			stats.Cancelled++
			continue
		}

		startProp := comp.Props.Get(ical.PropDateTimeStart)
		if startProp == nil || startProp.ValueType() == ical.ValueDate {
			stats.AllDay++
			continue
		}

		event := ical.Event{Component: comp}
		start, err := event.DateTimeStart(loc)
		if err != nil {
			stats.Invalid++
			continue
		}
		end, err := event.DateTimeEnd(loc)
		if err != nil {
			stats.Invalid++
			continue
		}
		duration := end.Sub(start)

		mentions := parser.Parse(eventText(comp))

		starts := []time.Time{start}
		recurring := false
		if comp.Props.Get(ical.PropRecurrenceID) == nil {
			set, err := comp.RecurrenceSet(loc)
			if err != nil {
				stats.Invalid++
				continue
			}
			if set != nil {
				recurring = true
				stats.Recurring++
				starts = occurrences(set, week)
			}
		}

		uid := propValue(comp, ical.PropUID)
		for _, occurrence := range starts {
			if !week.Contains(occurrence) {
				stats.OutsideWeek++
				continue
			}
			if recurring && overrides[overrideKey(uid, occurrence)] {
				stats.Overridden++
				continue
			}

			interval, err := domain.NewInterval(occurrence, occurrence.Add(duration))
			if err != nil {
				stats.Invalid++
				continue
			}

			shifts = append(shifts, domain.Shift{
				Interval: interval,
				Location: label,
				Mentions: append([]string(nil), mentions...),
			})
			stats.Shifts++
		}
	}

	return shifts, stats, nil
}

// occurrences lists the recurrence starts inside week, DTSTART included when it falls there.
func occurrences(set *rrule.Set, week domain.StagingWeek) []time.Time {
	return set.Between(week.Start, week.End, true)
}

// collectOverrides indexes the occurrences that a RECURRENCE-ID event replaces.
func collectOverrides(events []*ical.Component, loc *time.Location) map[string]bool {
	overrides := make(map[string]bool)
	for _, comp := range events {
		prop := comp.Props.Get(ical.PropRecurrenceID)
		if prop == nil {
			continue
		}
		t, err := prop.DateTime(loc)
		if err != nil {
			continue
		}
		overrides[overrideKey(propValue(comp, ical.PropUID), t)] = true
	}
	return overrides
}

func overrideKey(uid string, t time.Time) string {
	return uid + "|" + t.UTC().Format(time.RFC3339)
}

// eventText prefers DESCRIPTION and falls back to SUMMARY.
func eventText(comp *ical.Component) string {
	if text, err := comp.Props.Text(ical.PropDescription); err == nil && strings.TrimSpace(text) != "" {
		return text
	}
	if text, err := comp.Props.Text(ical.PropSummary); err == nil {
		return text
	}
	return ""
}

func propValue(comp *ical.Component, name string) string {
	if prop := comp.Props.Get(name); prop != nil {
		return prop.Value
	}
	return ""
}

// validateBody rejects HTML pages served in place of a feed, typically a login redirect.
func validateBody(body []byte) error {
	trimmed := strings.TrimSpace(string(body))
	upper := strings.ToUpper(trimmed)
	if strings.HasPrefix(upper, "<!DOCTYPE") || strings.HasPrefix(upper, "<HTML") {
		return fmt.Errorf("%w: received HTML, check that the feed URL is the secret iCal address", ErrNotICalendar)
	}
	if !strings.HasPrefix(upper, "BEGIN:VCALENDAR") {
		preview := trimmed
		if len(preview) > 100 {
			preview = preview[:100]
		}
		return fmt.Errorf("%w: expected BEGIN:VCALENDAR, got %q", ErrNotICalendar, preview)
	}
	return nil
}
