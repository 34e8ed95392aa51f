package scheduler

import (
	"errors"
	"fmt"

	"github.com/ulc-tools/blurb-scheduler/backend/internal/domain"
)

type Scheduler struct {
	parameters *Parameters
	matcher    Matcher
}

// New returns a Scheduler using matcher for scoring. A nil matcher falls back to ExactMatcher.
func New(parameters *Parameters, matcher Matcher) (*Scheduler, error) {
	if parameters == nil {
		return nil, errors.New("scheduler parameters are required")
	}
	if parameters.Location == nil {
		return nil, errors.New("scheduler time zone is required")
	}
	if parameters.ConfidenceThreshold < 0 || parameters.ConfidenceThreshold > 1 {
		return nil, fmt.Errorf("confidence threshold %v is outside [0, 1]", parameters.ConfidenceThreshold)
	}

	if matcher == nil {
		matcher = ExactMatcher{CaseInsensitive: parameters.CaseInsensitive}
	}

	return &Scheduler{
		parameters: parameters,
		matcher:    matcher,
	}, nil
}

// Bin distributes the intervals of shifts over the course × location × weekday grid without merging them.
func (s *Scheduler) Bin(courses []domain.Course, locations []string, shifts []domain.Shift) domain.Schedule {
	schedule, _ := s.bin(courses, locations, shifts)
	return schedule
}

// Produce bins the shifts and merges every bucket into its maximal availability windows.
func (s *Scheduler) Produce(courses []domain.Course, locations []string, shifts []domain.Shift) (*Result, error) {
	schedule, report := s.bin(courses, locations, shifts)

	for i := range schedule {
		for j := range schedule[i].LocationSchedules {
			ls := &schedule[i].LocationSchedules[j]
			for d := range ls.DailySchedules {
				merged, err := MergeIntervals(ls.DailySchedules[d].Intervals)
				if err != nil {
					return nil, fmt.Errorf("course %s at %s on weekday %d: %w", schedule[i].Course.UID, ls.Location, d, err)
				}
				ls.DailySchedules[d].Intervals = merged
			}
		}
	}

	return &Result{
		Schedule: schedule,
		Report:   report,
	}, nil
}

func (s *Scheduler) bin(courses []domain.Course, locations []string, shifts []domain.Shift) (domain.Schedule, domain.ScheduleReport) {
	labels := uniqueLocations(locations)

	// build the whole grid first so courses without shifts still appear
	schedule := make(domain.Schedule, len(courses))
	for i, course := range courses {
		cs := domain.CourseSchedule{
			Course:            course,
			LocationSchedules: make([]domain.LocationSchedule, len(labels)),
		}
		for j, label := range labels {
			ls := domain.LocationSchedule{
				Location:       label,
				DailySchedules: make([]domain.DailySchedule, domain.DaysPerWeek),
			}
			for day := range ls.DailySchedules {
				ls.DailySchedules[day] = domain.DailySchedule{
					WeekDay:   day,
					Intervals: make([]domain.Interval, 0),
				}
			}
			cs.LocationSchedules[j] = ls
		}
		schedule[i] = cs
	}

	// the grid is never resized after this point, so bucket pointers stay valid
	buckets := make(map[bucketKey]*domain.DailySchedule, len(courses)*len(labels)*domain.DaysPerWeek)
	for i := range schedule {
		for j := range schedule[i].LocationSchedules {
			ls := &schedule[i].LocationSchedules[j]
			for day := range ls.DailySchedules {
				buckets[bucketKey{course: i, location: ls.Location, weekDay: day}] = &ls.DailySchedules[day]
			}
		}
	}

	inScope := make(map[string]bool, len(labels))
	for _, label := range labels {
		inScope[label] = true
	}

	report := domain.ScheduleReport{
		UnmatchedMentions: make([]string, 0),
		AmbiguousMentions: make(map[string][]string),
	}
	matches := make(map[string]mentionMatch)
	unmatchedSeen := make(map[string]bool)

	for _, shift := range shifts {
		report.ShiftCount++

		if !inScope[shift.Location] {
			report.OutOfScopeShifts++
			continue
		}

		weekDay := shift.Weekday(s.parameters.Location)

		for _, mention := range shift.Mentions {
			match, ok := matches[mention]
			if !ok {
				match = s.match(courses, mention)
				matches[mention] = match

				if len(match.all) > 1 {
					uids := make([]string, len(match.all))
					for k, idx := range match.all {
						uids[k] = courses[idx].UID
					}
					report.AmbiguousMentions[mention] = uids
				}
			}

			if match.first < 0 {
				if !unmatchedSeen[mention] {
					unmatchedSeen[mention] = true
					report.UnmatchedMentions = append(report.UnmatchedMentions, mention)
				}
				continue
			}

			// first match wins even when the mention is a confident match for several courses
			bucket := buckets[bucketKey{course: match.first, location: shift.Location, weekDay: weekDay}]
			bucket.Intervals = append(bucket.Intervals, shift.Interval)
			report.MatchedMentionHits++
		}
	}

	return schedule, report
}

func (s *Scheduler) match(courses []domain.Course, mention string) mentionMatch {
	m := mentionMatch{first: -1}
	for i := range courses {
		if s.matcher.MatchScore(&courses[i], mention) > s.parameters.ConfidenceThreshold {
			if m.first < 0 {
				m.first = i
			}
			m.all = append(m.all, i)
		}
	}
	return m
}

func uniqueLocations(locations []string) []string {
	seen := make(map[string]bool, len(locations))
	labels := make([]string, 0, len(locations))
	for _, label := range locations {
		if seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	return labels
}
