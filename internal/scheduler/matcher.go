package scheduler

import (
	"strings"

	"github.com/ulc-tools/blurb-scheduler/backend/internal/domain"
)

// Matcher scores how likely a free-text mention refers to a course. Scores lie in [0, 1].
type Matcher interface {
	MatchScore(course *domain.Course, mention string) float64
}

// ExactMatcher gives 1 when the mention equals the course abbreviation or official name and 0 otherwise.
type ExactMatcher struct {
	CaseInsensitive bool
}

func (m ExactMatcher) MatchScore(course *domain.Course, mention string) float64 {
	// an empty mention must never match a course that has no abbreviation
	if !course.Supported || mention == "" {
		return 0
	}

	for _, candidate := range []string{course.EffectiveAbbreviation(), course.Name} {
		if candidate == "" {
			continue
		}
		if m.equal(candidate, mention) {
			return 1
		}
	}

	return 0
}

func (m ExactMatcher) equal(a, b string) bool {
	if m.CaseInsensitive {
		return strings.ToLower(a) == strings.ToLower(b)
	}
	return a == b
}
