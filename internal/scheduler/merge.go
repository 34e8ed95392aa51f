package scheduler

import (
	"fmt"
	"slices"

	"github.com/ulc-tools/blurb-scheduler/backend/internal/domain"
)

var ErrInvalidInterval = domain.ErrInvalidInterval

/**
 * MergeIntervals collapses the intervals of one bucket into the fewest maximal windows.
 * Intervals that overlap or merely touch (end == next start) are merged.
 * Every interval must have a start strictly before its end, otherwise the whole call fails
 * with ErrInvalidInterval and nothing is returned.
 */
func MergeIntervals(intervals []domain.Interval) ([]domain.Interval, error) {
	for i, iv := range intervals {
		if err := iv.Validate(); err != nil {
			return nil, fmt.Errorf("interval %d: %w", i, err)
		}
	}

	if len(intervals) == 0 {
		return make([]domain.Interval, 0), nil
	}

	sorted := slices.Clone(intervals)
	slices.SortStableFunc(sorted, func(a, b domain.Interval) int {
		return a.Start.Compare(b.Start)
	})

	merged := make([]domain.Interval, 0, len(sorted))
	start, end := sorted[0].Start, sorted[0].End

	for _, cur := range sorted[1:] {
		switch {
		case cur.Start.Equal(start) && cur.End.After(end):
			end = cur.End
		case !cur.Start.After(end) && cur.End.After(end):
			end = cur.End
		case cur.Start.After(end):
			// gap: close the window and seed the next one with cur
			merged = append(merged, domain.Interval{Start: start, End: end})
			start, end = cur.Start, cur.End
		}
	}
	merged = append(merged, domain.Interval{Start: start, End: end})

	return merged, nil
}
