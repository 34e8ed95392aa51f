package scheduler

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/ulc-tools/blurb-scheduler/backend/internal/domain"
)

var monday = time.Date(2024, 9, 9, 0, 0, 0, 0, time.UTC)

// at returns monday at hh:mm.
func at(hour, minute int) time.Time {
	return monday.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func iv(startHour, startMinute, endHour, endMinute int) domain.Interval {
	return domain.Interval{Start: at(startHour, startMinute), End: at(endHour, endMinute)}
}

func assertIntervals(t *testing.T, got, want []domain.Interval) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d intervals, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if !got[i].Start.Equal(want[i].Start) || !got[i].End.Equal(want[i].End) {
			t.Fatalf("interval %d: expected %s-%s, got %s-%s", i,
				want[i].Start.Format("15:04"), want[i].End.Format("15:04"),
				got[i].Start.Format("15:04"), got[i].End.Format("15:04"))
		}
	}
}

func TestMergeIntervals_OverlapAndGap(t *testing.T) {
	got, err := MergeIntervals([]domain.Interval{iv(9, 0, 10, 0), iv(9, 30, 11, 0), iv(13, 0, 14, 0)})
	if err != nil {
		t.Fatalf("MergeIntervals failed: %v", err)
	}
	assertIntervals(t, got, []domain.Interval{iv(9, 0, 11, 0), iv(13, 0, 14, 0)})
}

func TestMergeIntervals_TouchingMerges(t *testing.T) {
	got, err := MergeIntervals([]domain.Interval{iv(9, 0, 10, 0), iv(10, 0, 11, 0)})
	if err != nil {
		t.Fatalf("MergeIntervals failed: %v", err)
	}
	assertIntervals(t, got, []domain.Interval{iv(9, 0, 11, 0)})
}

func TestMergeIntervals_Empty(t *testing.T) {
	got, err := MergeIntervals(nil)
	if err != nil {
		t.Fatalf("MergeIntervals failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected an empty non-nil slice, got %#v", got)
	}
}

func TestMergeIntervals_UnsortedInput(t *testing.T) {
	got, err := MergeIntervals([]domain.Interval{iv(15, 0, 16, 0), iv(9, 0, 10, 0), iv(9, 45, 10, 30)})
	if err != nil {
		t.Fatalf("MergeIntervals failed: %v", err)
	}
	assertIntervals(t, got, []domain.Interval{iv(9, 0, 10, 30), iv(15, 0, 16, 0)})
}

func TestMergeIntervals_ContainedAndDuplicateStart(t *testing.T) {
	got, err := MergeIntervals([]domain.Interval{
		iv(9, 0, 10, 0),
		iv(9, 0, 12, 0),  // same start, later end
		iv(10, 0, 11, 0), // contained
		iv(9, 0, 9, 30),  // same start, earlier end
	})
	if err != nil {
		t.Fatalf("MergeIntervals failed: %v", err)
	}
	assertIntervals(t, got, []domain.Interval{iv(9, 0, 12, 0)})
}

func TestMergeIntervals_DoesNotModifyInput(t *testing.T) {
	input := []domain.Interval{iv(13, 0, 14, 0), iv(9, 0, 10, 0)}
	if _, err := MergeIntervals(input); err != nil {
		t.Fatalf("MergeIntervals failed: %v", err)
	}
	if !input[0].Start.Equal(at(13, 0)) || !input[1].Start.Equal(at(9, 0)) {
		t.Fatalf("input was reordered: %v", input)
	}
}

func TestMergeIntervals_InvalidInterval(t *testing.T) {
	cases := map[string]domain.Interval{
		"missing start": {End: at(10, 0)},
		"missing end":   {Start: at(9, 0)},
		"reversed":      iv(11, 0, 10, 0),
		"empty":         iv(10, 0, 10, 0),
	}

	for name, bad := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := MergeIntervals([]domain.Interval{iv(9, 0, 10, 0), bad})
			if !errors.Is(err, ErrInvalidInterval) {
				t.Fatalf("expected ErrInvalidInterval, got %v", err)
			}
			if got != nil {
				t.Fatalf("expected no result on failure, got %v", got)
			}
		})
	}
}

func randomIntervals(rng *rand.Rand, n int) []domain.Interval {
	intervals := make([]domain.Interval, n)
	for i := range intervals {
		// quarter-hour grid between 08:00 and 22:00 makes touching intervals common
		start := 8*60 + rng.Intn(14*4)*15
		length := (rng.Intn(12) + 1) * 15
		intervals[i] = domain.Interval{
			Start: monday.Add(time.Duration(start) * time.Minute),
			End:   monday.Add(time.Duration(start+length) * time.Minute),
		}
	}
	return intervals
}

// coveredMinutes returns the set of minutes covered by intervals.
func coveredMinutes(intervals []domain.Interval) map[int]bool {
	covered := make(map[int]bool)
	for _, interval := range intervals {
		for m := int(interval.Start.Sub(monday).Minutes()); m < int(interval.End.Sub(monday).Minutes()); m++ {
			covered[m] = true
		}
	}
	return covered
}

func TestMergeIntervals_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(20240909))

	for round := 0; round < 200; round++ {
		input := randomIntervals(rng, rng.Intn(10))

		merged, err := MergeIntervals(input)
		if err != nil {
			t.Fatalf("round %d: MergeIntervals failed: %v", round, err)
		}

		// windows are ascending and separated by real gaps
		for i := 1; i < len(merged); i++ {
			if !merged[i].Start.After(merged[i-1].End) {
				t.Fatalf("round %d: windows %d and %d overlap or touch: %v", round, i-1, i, merged)
			}
		}

		// no time gained or lost
		want, got := coveredMinutes(input), coveredMinutes(merged)
		if len(want) != len(got) {
			t.Fatalf("round %d: coverage changed from %d to %d minutes", round, len(want), len(got))
		}
		for m := range want {
			if !got[m] {
				t.Fatalf("round %d: minute %d lost by merging", round, m)
			}
		}

		// idempotence
		again, err := MergeIntervals(merged)
		if err != nil {
			t.Fatalf("round %d: second MergeIntervals failed: %v", round, err)
		}
		assertIntervals(t, again, merged)
	}
}
