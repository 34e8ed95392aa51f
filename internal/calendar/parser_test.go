package calendar

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/ulc-tools/blurb-scheduler/backend/internal/domain"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/scheduler"
)

var week = domain.NewStagingWeek(time.Date(2024, 9, 9, 0, 0, 0, 0, time.UTC), time.UTC)

func feed(events ...string) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//ULC//Shifts//EN",
	}
	for _, event := range events {
		lines = append(lines, strings.Split(event, "\n")...)
	}
	lines = append(lines, "END:VCALENDAR")
	return strings.Join(lines, "\r\n") + "\r\n"
}

const (
	singleEvent = `BEGIN:VEVENT
UID:single@ulc
DTSTAMP:20240901T000000Z
DTSTART:20240909T090000Z
DTEND:20240909T110000Z
SUMMARY:Jane at ARC
DESCRIPTION:Jane Doe - ARC - CALC1\, CHEM1
END:VEVENT`

	cancelledEvent = `BEGIN:VEVENT
UID:cancelled@ulc
DTSTAMP:20240901T000000Z
DTSTART:20240909T130000Z
DTEND:20240909T140000Z
STATUS:CANCELLED
DESCRIPTION:Jane Doe - ARC - CALC1
END:VEVENT`

	allDayEvent = `BEGIN:VEVENT
UID:allday@ulc
DTSTAMP:20240901T000000Z
DTSTART;VALUE=DATE:20240910
DTEND;VALUE=DATE:20240911
SUMMARY:Closed for training
END:VEVENT`

	outsideEvent = `BEGIN:VEVENT
UID:outside@ulc
DTSTAMP:20240901T000000Z
DTSTART:20240916T090000Z
DTEND:20240916T100000Z
DESCRIPTION:Jane Doe - ARC - CALC1
END:VEVENT`

	recurringEvent = `BEGIN:VEVENT
UID:series@ulc
DTSTAMP:20240901T000000Z
DTSTART:20240906T140000Z
DTEND:20240906T150000Z
RRULE:FREQ=DAILY;COUNT=5
DESCRIPTION:Sam Lee - ARC - PHYS1
END:VEVENT`

	overrideEvent = `BEGIN:VEVENT
UID:series@ulc
DTSTAMP:20240901T000000Z
RECURRENCE-ID:20240910T140000Z
DTSTART:20240910T160000Z
DTEND:20240910T170000Z
DESCRIPTION:Sam Lee - ARC - PHYS1
END:VEVENT`

	summaryOnlyEvent = `BEGIN:VEVENT
UID:summary@ulc
DTSTAMP:20240901T000000Z
DTSTART:20240912T180000Z
DTEND:20240912T200000Z
SUMMARY:Kim - ARC - ECON1
END:VEVENT`
)

func parse(t *testing.T, body string) ([]domain.Shift, *Stats) {
	t.Helper()
	shifts, stats, err := ParseShifts(strings.NewReader(body), "ARC", week, time.UTC, scheduler.DashCommaParser{})
	if err != nil {
		t.Fatalf("ParseShifts failed: %v", err)
	}
	return shifts, stats
}

func TestParseShifts_SingleEvent(t *testing.T) {
	shifts, stats := parse(t, feed(singleEvent))

	if len(shifts) != 1 {
		t.Fatalf("expected 1 shift, got %d", len(shifts))
	}
	shift := shifts[0]
	if shift.Location != "ARC" {
		t.Errorf("expected location ARC, got %q", shift.Location)
	}
	if !shift.Start.Equal(time.Date(2024, 9, 9, 9, 0, 0, 0, time.UTC)) || !shift.End.Equal(time.Date(2024, 9, 9, 11, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected interval %s-%s", shift.Start, shift.End)
	}
	if !slices.Equal(shift.Mentions, []string{"CALC1", "CHEM1"}) {
		t.Errorf("expected mentions [CALC1 CHEM1], got %q", shift.Mentions)
	}
	if stats.Events != 1 || stats.Shifts != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestParseShifts_FullWeek(t *testing.T) {
	shifts, stats := parse(t, feed(
		singleEvent, cancelledEvent, allDayEvent, outsideEvent,
		recurringEvent, overrideEvent, summaryOnlyEvent,
	))

	want := Stats{
		Events:      7,
		Recurring:   1,
		Cancelled:   1,
		AllDay:      1,
		OutsideWeek: 1,
		Overridden:  1,
		Shifts:      4,
	}
	if *stats != want {
		t.Fatalf("expected stats %+v, got %+v", want, *stats)
	}

	var starts []string
	for _, shift := range shifts {
		starts = append(starts, shift.Start.Format("Mon 15:04"))
	}
	slices.Sort(starts)
	wantStarts := []string{"Mon 09:00", "Mon 14:00", "Thu 18:00", "Tue 16:00"}
	if !slices.Equal(starts, wantStarts) {
		t.Fatalf("expected starts %v, got %v", wantStarts, starts)
	}
}

func TestParseShifts_SummaryFallback(t *testing.T) {
	shifts, _ := parse(t, feed(summaryOnlyEvent))

	if len(shifts) != 1 {
		t.Fatalf("expected 1 shift, got %d", len(shifts))
	}
	if !slices.Equal(shifts[0].Mentions, []string{"ECON1"}) {
		t.Fatalf("expected mentions [ECON1], got %q", shifts[0].Mentions)
	}
}

func TestParseShifts_EventWithoutEndIsInvalid(t *testing.T) {
	shifts, stats := parse(t, feed(`BEGIN:VEVENT
UID:noend@ulc
DTSTAMP:20240901T000000Z
DTSTART:20240909T090000Z
DESCRIPTION:Jane Doe - ARC - CALC1
END:VEVENT`))

	if len(shifts) != 0 {
		t.Fatalf("expected no shifts, got %d", len(shifts))
	}
	if stats.Invalid != 1 {
		t.Fatalf("expected 1 invalid event, got %d", stats.Invalid)
	}
}

func TestParseShifts_EmptyCalendar(t *testing.T) {
	shifts, stats := parse(t, feed())

	if shifts == nil || len(shifts) != 0 {
		t.Fatalf("expected an empty non-nil slice, got %#v", shifts)
	}
	if stats.Events != 0 {
		t.Fatalf("expected no events, got %d", stats.Events)
	}
}

func TestValidateBody(t *testing.T) {
	cases := map[string]bool{
		"<!DOCTYPE html><html></html>":    false,
		"<html><body>login</body></html>": false,
		"not a calendar":                  false,
		"\r\n  BEGIN:VCALENDAR\r\n":       true,
	}

	for body, ok := range cases {
		err := validateBody([]byte(body))
		if ok && err != nil {
			t.Errorf("%q: unexpected error %v", body, err)
		}
		if !ok && !errors.Is(err, ErrNotICalendar) {
			t.Errorf("%q: expected ErrNotICalendar, got %v", body, err)
		}
	}
}
