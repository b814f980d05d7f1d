package schedule

import (
	"testing"
	"time"

	"github.com/Zoja7431/task-manage/internal/models"
)

func TestWeekStart(t *testing.T) {
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{date(2025, time.March, 12), date(2025, time.March, 10)}, // Wednesday
		{date(2025, time.March, 10), date(2025, time.March, 10)}, // Monday itself
		{date(2025, time.March, 16), date(2025, time.March, 10)}, // Sunday belongs to the week before
		{date(2025, time.March, 17), date(2025, time.March, 17)}, // next Monday
	}
	for _, tt := range tests {
		if got := WeekStart(tt.in); !got.Equal(tt.want) {
			t.Errorf("WeekStart(%s) = %s, want %s", tt.in.Format("2006-01-02"), got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
		}
	}
}

func TestWeekWindowOffset(t *testing.T) {
	ref := date(2025, time.March, 12)

	monday, sunday := WeekWindow(ref, 0)
	if !monday.Equal(date(2025, time.March, 10)) || !sunday.Equal(date(2025, time.March, 16)) {
		t.Fatalf("offset 0: got [%s, %s]", monday, sunday)
	}

	monday, _ = WeekWindow(ref, 1)
	if !monday.Equal(date(2025, time.March, 17)) {
		t.Errorf("offset +1: got monday %s", monday)
	}

	monday, _ = WeekWindow(ref, -2)
	if !monday.Equal(date(2025, time.February, 24)) {
		t.Errorf("offset -2: got monday %s", monday)
	}
}

func nTasksDue(n int, due time.Time) []models.Task {
	tasks := make([]models.Task, n)
	for i := range tasks {
		tasks[i] = models.Task{Title: "t", Status: models.StatusInProgress, DueDate: &due}
	}
	return tasks
}

func TestBuildWeekIntensities(t *testing.T) {
	ref := date(2025, time.March, 12) // Wednesday
	monday := date(2025, time.March, 10)
	wednesday := date(2025, time.March, 12)

	var tasks []models.Task
	tasks = append(tasks, nTasksDue(2, monday)...)
	tasks = append(tasks, nTasksDue(5, wednesday)...)

	week := BuildWeek(tasks, ref, 0)
	if len(week.Days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(week.Days))
	}

	for i, day := range week.Days {
		switch day.Key {
		case "2025-03-10":
			if day.TaskCount != 2 || day.Intensity != IntensityLow {
				t.Errorf("monday: count=%d intensity=%s", day.TaskCount, day.Intensity)
			}
		case "2025-03-12":
			if day.TaskCount != 5 || day.Intensity != IntensityHigh {
				t.Errorf("wednesday: count=%d intensity=%s", day.TaskCount, day.Intensity)
			}
		default:
			if day.TaskCount != 0 || day.Intensity != IntensityEmpty {
				t.Errorf("day %d (%s): count=%d intensity=%s", i, day.Key, day.TaskCount, day.Intensity)
			}
		}
	}
}

func TestBuildWeekIntensityTiers(t *testing.T) {
	tests := []struct {
		count int
		want  Intensity
	}{
		{0, IntensityEmpty},
		{1, IntensityLow},
		{2, IntensityLow},
		{3, IntensityMedium},
		{4, IntensityMedium},
		{5, IntensityHigh},
		{9, IntensityHigh},
	}
	for _, tt := range tests {
		if got := intensityFor(tt.count); got != tt.want {
			t.Errorf("intensityFor(%d) = %s, want %s", tt.count, got, tt.want)
		}
	}
}

func TestBuildWeekFlags(t *testing.T) {
	ref := date(2025, time.March, 12) // Wednesday
	week := BuildWeek(nil, ref, 0)

	for i, day := range week.Days {
		wantToday := i == 2
		wantPast := i < 2
		if day.IsToday != wantToday {
			t.Errorf("day %s: IsToday=%v, want %v", day.Key, day.IsToday, wantToday)
		}
		if day.IsPast != wantPast {
			t.Errorf("day %s: IsPast=%v, want %v", day.Key, day.IsPast, wantPast)
		}
	}

	// Paging a week forward: nothing is today, nothing is past.
	next := BuildWeek(nil, ref, 1)
	for _, day := range next.Days {
		if day.IsToday || day.IsPast {
			t.Errorf("next week day %s: IsToday=%v IsPast=%v", day.Key, day.IsToday, day.IsPast)
		}
	}
}

func TestBuildWeekMixedZones(t *testing.T) {
	// Reference clock in a zone west of UTC, due dates at UTC midnight: every
	// task must land in the bucket of its own calendar day, including the
	// window edges, which sit outside the window as instants.
	west := time.FixedZone("UTC-5", -5*60*60)
	ref := time.Date(2025, time.March, 12, 10, 0, 0, 0, west)

	monday := date(2025, time.March, 10)
	sunday := date(2025, time.March, 16)
	var tasks []models.Task
	tasks = append(tasks, nTasksDue(1, monday)...)
	tasks = append(tasks, nTasksDue(1, sunday)...)

	week := BuildWeek(tasks, ref, 0)
	for _, day := range week.Days {
		want := 0
		if day.Key == "2025-03-10" || day.Key == "2025-03-16" {
			want = 1
		}
		if day.TaskCount != want {
			t.Errorf("day %s: count=%d, want %d", day.Key, day.TaskCount, want)
		}
	}
}

func TestBuildWeekIgnoresOutOfWindowTasks(t *testing.T) {
	ref := date(2025, time.March, 12)
	outside := date(2025, time.March, 20)
	var tasks []models.Task
	tasks = append(tasks, nTasksDue(1, outside)...)
	tasks = append(tasks, models.Task{Title: "unscheduled", Status: models.StatusInProgress})

	week := BuildWeek(tasks, ref, 0)
	for _, day := range week.Days {
		if day.TaskCount != 0 {
			t.Errorf("day %s: expected empty, got %d tasks", day.Key, day.TaskCount)
		}
	}
}
