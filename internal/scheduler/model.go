package scheduler

import (
	"time"

	"github.com/ulc-tools/blurb-scheduler/backend/internal/domain"
)

const DefaultConfidenceThreshold = 0.9

// Parameters is the matching policy of a Scheduler.
type Parameters struct {
	ConfidenceThreshold float64        // a mention matches a course only when its score is strictly greater
	CaseInsensitive     bool           // compare mentions and course names in lower case
	Location            *time.Location // time zone weekdays are computed in
}

type Result struct {
	Schedule domain.Schedule       `json:"schedule"`
	Report   domain.ScheduleReport `json:"report"`
}

type bucketKey struct {
	course   int
	location string
	weekDay  int
}

// mentionMatch caches the outcome of scoring one mention against the whole catalog.
type mentionMatch struct {
	first int // index of the first confident course, -1 when none
	all   []int
}
