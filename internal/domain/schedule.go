package domain

import "time"

const DaysPerWeek = 7

// DailySchedule holds the intervals of one (course, location, weekday) bucket.
type DailySchedule struct {
	WeekDay   int        `json:"weekDay"`
	Intervals []Interval `json:"intervals"`
}

type LocationSchedule struct {
	Location       string          `json:"location"`
	DailySchedules []DailySchedule `json:"dailySchedules"` // always DaysPerWeek entries, index == WeekDay
}

type CourseSchedule struct {
	Course            Course             `json:"course"`
	LocationSchedules []LocationSchedule `json:"locationSchedules"`
}

type Schedule []CourseSchedule

// ScheduleReport lists what the binner skipped or could not disambiguate. It never changes the schedule.
type ScheduleReport struct {
	UnmatchedMentions  []string            `json:"unmatchedMentions"`
	AmbiguousMentions  map[string][]string `json:"ambiguousMentions"` // mention -> uids of every course it matched
	OutOfScopeShifts   int                 `json:"outOfScopeShifts"`
	ShiftCount         int                 `json:"shiftCount"`
	MatchedMentionHits int                 `json:"matchedMentionHits"`
}

type ScheduleRun struct {
	ID          int64          `json:"id"`
	StagingWeek StagingWeek    `json:"stagingWeek"`
	Locations   []string       `json:"locations"`
	Schedule    Schedule       `json:"schedule,omitempty"`
	Report      ScheduleReport `json:"report"`
	CreatedBy   int64          `json:"createdBy"`
	CreatedAt   time.Time      `json:"createdAt"`
}
