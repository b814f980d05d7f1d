package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Zoja7431/task-manage/internal/db"
	"github.com/Zoja7431/task-manage/internal/models"
	"github.com/Zoja7431/task-manage/internal/schedule"
	"github.com/Zoja7431/task-manage/internal/ui/keys"
	"github.com/Zoja7431/task-manage/internal/ui/styles"
)

// ShowTasks signals the app to switch back to the task list.
type ShowTasks struct{}

// WeeklyView shows a Monday-to-Sunday timeline of due tasks
type WeeklyView struct {
	db     *db.DB
	user   *models.User
	styles *styles.Styles
	keys   keys.KeyMap

	offset int
	week   schedule.Week
	err    error

	width  int
	height int
}

// NewWeeklyView creates a new weekly timeline view for a user
func NewWeeklyView(database *db.DB, user *models.User) *WeeklyView {
	return &WeeklyView{
		db:     database,
		user:   user,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
	}
}

type weekLoadedMsg struct {
	week schedule.Week
}

// Init initializes the view
func (v *WeeklyView) Init() tea.Cmd {
	return v.loadWeek
}

func (v *WeeklyView) loadWeek() tea.Msg {
	now := time.Now()
	start, end := schedule.WeekWindow(now, v.offset)
	// A day of slack on each side keeps zone-shifted due dates in the
	// fetch; BuildWeek buckets them by calendar day.
	tasks, err := v.db.ListTasksDueBetween(v.user.ID, start.AddDate(0, 0, -1), end.AddDate(0, 0, 1))
	if err != nil {
		return err
	}
	schedule.Annotate(tasks, now)
	return weekLoadedMsg{week: schedule.BuildWeek(tasks, now, v.offset)}
}

// Update handles messages
func (v *WeeklyView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case weekLoadedMsg:
		v.week = msg.week
		return v, nil

	case error:
		v.err = msg
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit

		case key.Matches(msg, v.keys.PrevWeek):
			v.offset--
			return v, v.loadWeek

		case key.Matches(msg, v.keys.NextWeek):
			v.offset++
			return v, v.loadWeek

		case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Weekly):
			return v, func() tea.Msg { return ShowTasks{} }
		}
	}

	return v, nil
}

// View renders the weekly timeline
func (v *WeeklyView) View() string {
	return clampWidth(v.render(), v.width)
}

func (v *WeeklyView) render() string {
	var b strings.Builder

	label := fmt.Sprintf("Week %s – %s",
		v.week.Start.Format("Jan 2"), v.week.End.Format("Jan 2"))
	if v.offset == 0 {
		label += " (this week)"
	}
	b.WriteString(v.styles.Title.Render("Weekly timeline"))
	b.WriteString(v.styles.TitleMuted.Render("  " + label))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.TaskOverdue.Render("error: " + v.err.Error()))
		b.WriteString("\n\n")
	}

	boxes := make([]string, 0, len(v.week.Days))
	for _, day := range v.week.Days {
		boxes = append(boxes, v.renderDay(day))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	b.WriteString("\n\n")

	for _, day := range v.week.Days {
		if len(day.Tasks) == 0 {
			continue
		}
		b.WriteString(v.styles.TaskTitle.Render(day.DayName + " " + day.Date.Format("Jan 2")))
		b.WriteString("\n")
		for _, task := range day.Tasks {
			b.WriteString("  " + v.renderDue(task) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(v.styles.StatusBar.Render("←/h prev week · →/l next week · esc back · q quit"))
	return b.String()
}

func (v *WeeklyView) renderDay(day schedule.Day) string {
	style := v.styles.DayBox
	if day.IsToday {
		style = v.styles.DayBoxToday
	}

	count := fmt.Sprintf("%d", day.TaskCount)
	switch day.Intensity {
	case schedule.IntensityHigh:
		count = v.styles.PriorityHigh.Render(count)
	case schedule.IntensityMedium:
		count = v.styles.PriorityMedium.Render(count)
	case schedule.IntensityLow:
		count = v.styles.Tag.Render(count)
	default:
		count = v.styles.TitleMuted.Render("·")
	}

	name := day.DayName
	if day.IsPast {
		name = v.styles.TitleMuted.Render(name)
	}
	return style.Render(fmt.Sprintf("%s %2d\n%s", name, day.DayNumber, count))
}

func (v *WeeklyView) renderDue(task models.Task) string {
	titleStyle := v.styles.TaskTitle
	if task.Status == models.StatusOverdue {
		titleStyle = v.styles.TaskOverdue
	}
	parts := []string{titleStyle.Render(task.Title)}
	if task.DueDate != nil {
		hhmm := task.DueDate.Format("15:04")
		if hhmm != "00:00" {
			parts = append(parts, v.styles.TitleMuted.Render(hhmm))
		}
	}
	for _, tag := range task.Tags {
		parts = append(parts, v.styles.Tag.Render("#"+tag.Name))
	}
	return strings.Join(parts, " ")
}
