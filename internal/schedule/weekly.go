package schedule

import (
	"time"

	"github.com/Zoja7431/task-manage/internal/models"
)

// Intensity buckets the task density of a single day.
type Intensity string

const (
	IntensityEmpty  Intensity = "empty"  // no tasks
	IntensityLow    Intensity = "low"    // 1-2 tasks
	IntensityMedium Intensity = "medium" // 3-4 tasks
	IntensityHigh   Intensity = "high"   // 5+
)

// intensityFor maps a task count to its tier.
func intensityFor(count int) Intensity {
	switch {
	case count == 0:
		return IntensityEmpty
	case count <= 2:
		return IntensityLow
	case count <= 4:
		return IntensityMedium
	default:
		return IntensityHigh
	}
}

// Day is one bucket of the weekly timeline.
type Day struct {
	Date      time.Time
	Key       string // YYYY-MM-DD
	DayName   string // Mon, Tue, ...
	DayNumber int
	Tasks     []models.Task
	TaskCount int
	Intensity Intensity
	IsToday   bool
	IsPast    bool
}

// Week is a Monday-Sunday window with its seven day buckets.
type Week struct {
	Start time.Time // Monday
	End   time.Time // Sunday
	Days  []Day
}

// DayKey formats a date as the bucket key used throughout the weekly view.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// WeekStart returns the Monday of the week containing date.
func WeekStart(date time.Time) time.Time {
	d := DateOf(date)
	// time.Weekday has Sunday = 0; shift so Monday = 0.
	back := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -back)
}

// WeekWindow returns the [Monday, Sunday] window for the reference date,
// paged forward or backward by offset whole weeks.
func WeekWindow(reference time.Time, offset int) (monday, sunday time.Time) {
	monday = WeekStart(reference).AddDate(0, 0, 7*offset)
	sunday = monday.AddDate(0, 0, 6)
	return monday, sunday
}

// BuildWeek groups tasks into the seven day buckets of the window around
// reference (paged by offset weeks). Tasks without a due date or due outside
// the window are ignored; callers normally pass tasks already fetched for the
// window. IsToday and IsPast are computed against the reference date.
func BuildWeek(tasks []models.Task, reference time.Time, offset int) Week {
	monday, sunday := WeekWindow(reference, offset)
	today := DateOf(reference)

	// Bucket by calendar-day key rather than by instant so a due date in a
	// different zone than the reference still lands on its own day.
	mondayKey, sundayKey := DayKey(monday), DayKey(sunday)
	byDay := make(map[string][]models.Task, 7)
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		key := DayKey(*t.DueDate)
		if key < mondayKey || key > sundayKey {
			continue
		}
		byDay[key] = append(byDay[key], t)
	}

	week := Week{Start: monday, End: sunday, Days: make([]Day, 0, 7)}
	for i := 0; i < 7; i++ {
		day := monday.AddDate(0, 0, i)
		key := DayKey(day)
		dayTasks := byDay[key]
		week.Days = append(week.Days, Day{
			Date:      day,
			Key:       key,
			DayName:   day.Format("Mon"),
			DayNumber: day.Day(),
			Tasks:     dayTasks,
			TaskCount: len(dayTasks),
			Intensity: intensityFor(len(dayTasks)),
			IsToday:   key == DayKey(today),
			IsPast:    day.Before(today),
		})
	}
	return week
}
