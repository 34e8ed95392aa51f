package blurb

import (
	"testing"
	"time"

	"github.com/ulc-tools/blurb-scheduler/backend/internal/domain"
)

func emptyWeek() []domain.DailySchedule {
	days := make([]domain.DailySchedule, domain.DaysPerWeek)
	for i := range days {
		days[i] = domain.DailySchedule{WeekDay: i, Intervals: []domain.Interval{}}
	}
	return days
}

func window(day, startHour, endHour int) domain.Interval {
	date := time.Date(2024, 9, 8+day, 0, 0, 0, 0, time.UTC) // 2024-09-08 is a Sunday
	return domain.Interval{
		Start: date.Add(time.Duration(startHour) * time.Hour),
		End:   date.Add(time.Duration(endHour) * time.Hour),
	}
}

func TestRender(t *testing.T) {
	arc := domain.LocationSchedule{Location: "ARC", DailySchedules: emptyWeek()}
	arc.DailySchedules[1].Intervals = []domain.Interval{window(1, 9, 11), window(1, 13, 14)}
	arc.DailySchedules[3].Intervals = []domain.Interval{window(3, 18, 20)}
	bobst := domain.LocationSchedule{Location: "Bobst", DailySchedules: emptyWeek()}

	schedule := domain.Schedule{
		{
			Course:            domain.Course{Name: "Calculus I", Abbreviation: "CALC1", Supported: true},
			LocationSchedules: []domain.LocationSchedule{arc, bobst},
		},
		{
			Course:            domain.Course{Name: "General Chemistry I", Abbreviation: "CHEM1", Supported: true},
			LocationSchedules: []domain.LocationSchedule{{Location: "ARC", DailySchedules: emptyWeek()}},
		},
	}

	want := "CALC1\n" +
		"ARC\n" +
		"Monday: 9:00 AM - 11:00 AM; 1:00 PM - 2:00 PM\n" +
		"Wednesday: 6:00 PM - 8:00 PM\n"

	if got := Render(schedule, time.UTC); got != want {
		t.Fatalf("unexpected blurb:\n%s\nwant:\n%s", got, want)
	}
}

func TestRender_SeparatesCourses(t *testing.T) {
	first := domain.LocationSchedule{Location: "ARC", DailySchedules: emptyWeek()}
	first.DailySchedules[0].Intervals = []domain.Interval{window(0, 12, 15)}
	second := domain.LocationSchedule{Location: "Bobst", DailySchedules: emptyWeek()}
	second.DailySchedules[6].Intervals = []domain.Interval{window(6, 10, 12)}

	schedule := domain.Schedule{
		{Course: domain.Course{Name: "Linear Algebra", Supported: true}, LocationSchedules: []domain.LocationSchedule{first}},
		{Course: domain.Course{Name: "Microeconomics", Abbreviation: "ECON1", Supported: true}, LocationSchedules: []domain.LocationSchedule{second}},
	}

	want := "Linear Algebra\nARC\nSunday: 12:00 PM - 3:00 PM\n" +
		"\n" +
		"ECON1\nBobst\nSaturday: 10:00 AM - 12:00 PM\n"

	if got := Render(schedule, time.UTC); got != want {
		t.Fatalf("unexpected blurb:\n%q\nwant:\n%q", got, want)
	}
}

func TestRender_Empty(t *testing.T) {
	if got := Render(nil, time.UTC); got != "" {
		t.Fatalf("expected empty blurb, got %q", got)
	}
}

func TestHeading(t *testing.T) {
	if got := Heading(&domain.Course{Name: "Calculus II", Abbreviation: "CALC2"}); got != "Calculus II" {
		t.Fatalf("unsupported course should use its name, got %q", got)
	}
	if got := Heading(&domain.Course{Name: "Calculus II", Abbreviation: "CALC2", Supported: true}); got != "CALC2" {
		t.Fatalf("expected abbreviation, got %q", got)
	}
}
