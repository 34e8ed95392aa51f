package utils

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ulc-tools/blurb-scheduler/backend/internal/domain"
)

// mentionSeparators split event descriptions into mentions, so no abbreviation may contain them.
const mentionSeparators = ",-"

// ParseStagingWeek accepts a yyyy-mm-dd date and returns the week starting on that day in loc.
func ParseStagingWeek(date string, loc *time.Location) (domain.StagingWeek, error) {
	day, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(date), loc)
	if err != nil {
		return domain.StagingWeek{}, fmt.Errorf("staging week must be a date like 2024-09-09: %q", date)
	}
	return domain.NewStagingWeek(day, loc), nil
}

func ValidateCourse(course *domain.Course) error {
	if strings.TrimSpace(course.Name) == "" {
		return errors.New("course name must not be empty")
	}
	if strings.ContainsAny(course.Name, mentionSeparators) && course.Abbreviation == "" && course.Supported {
		return fmt.Errorf("course %q contains %q and can only be matched through an abbreviation", course.Name, mentionSeparators)
	}
	if strings.ContainsAny(course.Abbreviation, mentionSeparators) {
		return fmt.Errorf("abbreviation %q must not contain any of %q", course.Abbreviation, mentionSeparators)
	}
	if course.Abbreviation != strings.TrimSpace(course.Abbreviation) {
		return fmt.Errorf("abbreviation %q must not start or end with spaces", course.Abbreviation)
	}
	return nil
}

// ValidateFeedURL accepts http, https and webcal links that carry a host.
func ValidateFeedURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid feed url: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "webcal":
	default:
		return fmt.Errorf("feed url scheme must be http, https or webcal, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("feed url has no host")
	}
	return nil
}

func ValidateLocation(location *domain.Location) error {
	if strings.TrimSpace(location.Label) == "" {
		return errors.New("location label must not be empty")
	}
	return ValidateFeedURL(location.FeedURL)
}
