package blurb

import (
	"strings"
	"time"

	"github.com/ulc-tools/blurb-scheduler/backend/internal/domain"
)

const timeLayout = "3:04 PM"

// Render turns a merged schedule into the plain-text blurb handed to students:
//
//	CALC1
//	ARC
//	Monday: 9:00 AM - 11:00 AM; 1:00 PM - 2:00 PM
//
// Courses and locations without availability are left out. Times are shown in loc.
func Render(schedule domain.Schedule, loc *time.Location) string {
	var courses []string
	for i := range schedule {
		if text := renderCourse(&schedule[i], loc); text != "" {
			courses = append(courses, text)
		}
	}
	return strings.Join(courses, "\n")
}

func renderCourse(cs *domain.CourseSchedule, loc *time.Location) string {
	var b strings.Builder
	for _, ls := range cs.LocationSchedules {
		block := renderLocation(ls, loc)
		if block == "" {
			continue
		}
		b.WriteString(block)
	}
	if b.Len() == 0 {
		return ""
	}
	return Heading(&cs.Course) + "\n" + b.String()
}

func renderLocation(ls domain.LocationSchedule, loc *time.Location) string {
	var b strings.Builder
	for _, ds := range ls.DailySchedules {
		if len(ds.Intervals) == 0 {
			continue
		}
		windows := make([]string, len(ds.Intervals))
		for i, interval := range ds.Intervals {
			windows[i] = interval.Start.In(loc).Format(timeLayout) + " - " + interval.End.In(loc).Format(timeLayout)
		}
		b.WriteString(time.Weekday(ds.WeekDay).String())
		b.WriteString(": ")
		b.WriteString(strings.Join(windows, "; "))
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return ""
	}
	return ls.Location + "\n" + b.String()
}

// Heading is the abbreviation students know a course by, or its official name when it has none.
func Heading(course *domain.Course) string {
	if abbreviation := course.EffectiveAbbreviation(); abbreviation != "" {
		return abbreviation
	}
	return course.Name
}
