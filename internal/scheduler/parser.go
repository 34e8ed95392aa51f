package scheduler

import "strings"

// MentionParser extracts candidate course mentions from the free text of a calendar event.
type MentionParser interface {
	Parse(text string) []string
}

// DashCommaParser reads descriptions shaped like "Tutor Name - Location - CALC1, CHEM1".
// The third dash-separated segment holds the comma-separated courses. When that yields
// nothing the whole text is split on commas instead.
//
// Em dashes and semicolons are not recognised.
type DashCommaParser struct{}

func (DashCommaParser) Parse(text string) []string {
	segments := strings.Split(text, "-")
	if len(segments) > 2 {
		if mentions := splitMentions(segments[2]); len(mentions) > 0 {
			return mentions
		}
	}

	return splitMentions(text)
}

func splitMentions(s string) []string {
	mentions := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		mentions = append(mentions, part)
	}
	return mentions
}
