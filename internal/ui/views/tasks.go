package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Zoja7431/task-manage/internal/db"
	"github.com/Zoja7431/task-manage/internal/models"
	"github.com/Zoja7431/task-manage/internal/schedule"
	"github.com/Zoja7431/task-manage/internal/ui/keys"
	"github.com/Zoja7431/task-manage/internal/ui/styles"
)

// statusFilters is the cycle order for the f key. Empty means no filter.
var statusFilters = []models.Status{"", models.StatusInProgress, models.StatusOverdue, models.StatusCompleted}

// ShowWeekly signals the app to switch to the weekly timeline.
type ShowWeekly struct{}

// TaskListView shows the user's tasks
type TaskListView struct {
	db     *db.DB
	user   *models.User
	styles *styles.Styles
	keys   keys.KeyMap

	tasks     []models.Task
	cursor    int
	filterIdx int
	err       error

	width  int
	height int

	// Task creation
	creating      bool
	inputTitle    textinput.Model
	inputDue      textinput.Model
	inputPriority textinput.Model
	inputTags     textinput.Model
	focusIdx      int // 0=title, 1=due, 2=priority, 3=tags

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   int64
	deleteTargetName string

	showHelp bool
}

// NewTaskListView creates a new task list view for a user
func NewTaskListView(database *db.DB, user *models.User) *TaskListView {
	s := styles.NewStyles()

	title := textinput.New()
	title.Placeholder = "Task title"
	title.CharLimit = 100

	due := textinput.New()
	due.Placeholder = "Due date YYYY-MM-DD (optional)"
	due.CharLimit = 10

	priority := textinput.New()
	priority.Placeholder = "low/medium/high"
	priority.CharLimit = 6

	tags := textinput.New()
	tags.Placeholder = "Tags, comma separated"
	tags.CharLimit = 200

	return &TaskListView{
		db:            database,
		user:          user,
		styles:        s,
		keys:          keys.DefaultKeyMap(),
		inputTitle:    title,
		inputDue:      due,
		inputPriority: priority,
		inputTags:     tags,
	}
}

type tasksLoadedMsg struct {
	tasks []models.Task
}

// Init initializes the view
func (v *TaskListView) Init() tea.Cmd {
	return v.loadTasks
}

func (v *TaskListView) loadTasks() tea.Msg {
	filter := db.TaskFilter{}
	status := statusFilters[v.filterIdx]
	switch status {
	case models.StatusCompleted:
		filter.Status = models.StatusCompleted
	case models.StatusInProgress, models.StatusOverdue:
		filter.Status = models.StatusInProgress
	}

	tasks, err := v.db.ListTasks(v.user.ID, filter)
	if err != nil {
		return err
	}
	schedule.Annotate(tasks, time.Now())

	if status == models.StatusInProgress || status == models.StatusOverdue {
		var narrowed []models.Task
		for _, t := range tasks {
			if t.Status == status {
				narrowed = append(narrowed, t)
			}
		}
		tasks = narrowed
	}
	return tasksLoadedMsg{tasks: tasks}
}

// Update handles messages
func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case tasksLoadedMsg:
		v.tasks = msg.tasks
		if v.cursor >= len(v.tasks) {
			v.cursor = max(0, len(v.tasks)-1)
		}
		return v, nil

	case error:
		v.err = msg
		return v, nil

	case tea.KeyMsg:
		if v.showHelp {
			v.showHelp = false
			return v, nil
		}
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.creating {
			return v.updateCreating(msg)
		}
		return v.updateList(msg)
	}

	return v, nil
}

func (v *TaskListView) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.tasks)-1 {
			v.cursor++
		}

	case key.Matches(msg, v.keys.Complete):
		if task := v.selected(); task != nil {
			id := task.ID
			return v, func() tea.Msg {
				if _, err := v.db.ToggleCompleted(v.user.ID, id); err != nil {
					return err
				}
				return v.loadTasks()
			}
		}

	case key.Matches(msg, v.keys.Delete):
		if task := v.selected(); task != nil {
			v.confirmingDelete = true
			v.deleteTargetID = task.ID
			v.deleteTargetName = task.Title
		}

	case key.Matches(msg, v.keys.Filter):
		v.filterIdx = (v.filterIdx + 1) % len(statusFilters)
		return v, v.loadTasks

	case key.Matches(msg, v.keys.New):
		v.creating = true
		v.focusIdx = 0
		v.inputTitle.SetValue("")
		v.inputDue.SetValue("")
		v.inputPriority.SetValue("")
		v.inputTags.SetValue("")
		return v, v.inputTitle.Focus()

	case key.Matches(msg, v.keys.Weekly):
		return v, func() tea.Msg { return ShowWeekly{} }

	case key.Matches(msg, v.keys.Help):
		v.showHelp = true
	}

	return v, nil
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Confirm):
		v.confirmingDelete = false
		id := v.deleteTargetID
		return v, func() tea.Msg {
			if err := v.db.DeleteTask(v.user.ID, id); err != nil {
				return err
			}
			return v.loadTasks()
		}
	case key.Matches(msg, v.keys.Cancel):
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *TaskListView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.creating = false
		return v, nil

	case "tab", "down":
		v.focusIdx = (v.focusIdx + 1) % 4
		return v, v.focusCurrent()

	case "shift+tab", "up":
		v.focusIdx = (v.focusIdx + 3) % 4
		return v, v.focusCurrent()

	case "enter":
		if v.focusIdx < 3 {
			v.focusIdx++
			return v, v.focusCurrent()
		}
		return v.saveNewTask()
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.inputTitle, cmd = v.inputTitle.Update(msg)
	case 1:
		v.inputDue, cmd = v.inputDue.Update(msg)
	case 2:
		v.inputPriority, cmd = v.inputPriority.Update(msg)
	case 3:
		v.inputTags, cmd = v.inputTags.Update(msg)
	}
	return v, cmd
}

func (v *TaskListView) focusCurrent() tea.Cmd {
	inputs := []*textinput.Model{&v.inputTitle, &v.inputDue, &v.inputPriority, &v.inputTags}
	for i, input := range inputs {
		if i == v.focusIdx {
			continue
		}
		input.Blur()
	}
	return inputs[v.focusIdx].Focus()
}

func (v *TaskListView) saveNewTask() (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(v.inputTitle.Value())
	if title == "" {
		v.err = fmt.Errorf("task title is required")
		return v, nil
	}

	var due *time.Time
	if raw := strings.TrimSpace(v.inputDue.Value()); raw != "" {
		// Due dates are stored at UTC midnight, matching the web layer.
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			v.err = fmt.Errorf("invalid due date %q", raw)
			return v, nil
		}
		due = &parsed
	}

	priority := models.ParsePriority(strings.TrimSpace(v.inputPriority.Value()))
	tagNames := db.ParseTagList(v.inputTags.Value())

	v.creating = false
	v.err = nil
	return v, func() tea.Msg {
		task, err := v.db.CreateTask(v.user.ID, title, "", models.StatusInProgress, priority, due)
		if err != nil {
			return err
		}
		if len(tagNames) > 0 {
			if err := v.db.SetTaskTags(v.user.ID, task.ID, tagNames); err != nil {
				return err
			}
		}
		return v.loadTasks()
	}
}

func (v *TaskListView) selected() *models.Task {
	if v.cursor < 0 || v.cursor >= len(v.tasks) {
		return nil
	}
	return &v.tasks[v.cursor]
}

// View renders the task list
func (v *TaskListView) View() string {
	return clampWidth(v.render(), v.width)
}

func (v *TaskListView) render() string {
	var b strings.Builder

	filterName := "all"
	if f := statusFilters[v.filterIdx]; f != "" {
		filterName = string(f)
	}
	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Tasks — %s", v.user.Username)))
	b.WriteString(v.styles.TitleMuted.Render(fmt.Sprintf("  [%s]", filterName)))
	b.WriteString("\n\n")

	if v.showHelp {
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if v.creating {
		b.WriteString(v.renderCreateForm())
		return b.String()
	}

	if len(v.tasks) == 0 {
		b.WriteString(v.styles.TitleMuted.Render("No tasks. Press n to add one."))
		b.WriteString("\n")
	}

	for i, task := range v.tasks {
		row := v.renderTask(task)
		if i == v.cursor {
			b.WriteString(v.styles.ListSelected.Render(row))
		} else {
			b.WriteString(v.styles.ListItem.Render(row))
		}
		b.WriteString("\n")
	}

	if v.confirmingDelete {
		b.WriteString("\n")
		b.WriteString(v.styles.TaskOverdue.Render(fmt.Sprintf("Delete %q? (y/n)", v.deleteTargetName)))
		b.WriteString("\n")
	}

	if v.err != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.TaskOverdue.Render("error: " + v.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.StatusBar.Render("space complete · n new · d delete · f filter · w weekly · ? help · q quit"))
	return b.String()
}

func (v *TaskListView) renderTask(task models.Task) string {
	check := "[ ]"
	titleStyle := v.styles.TaskTitle
	switch task.Status {
	case models.StatusCompleted:
		check = "[x]"
		titleStyle = v.styles.TaskCompleted
	case models.StatusOverdue:
		check = "[!]"
		titleStyle = v.styles.TaskOverdue
	}

	var priorityStyle lipgloss.Style
	switch task.Priority {
	case models.PriorityHigh:
		priorityStyle = v.styles.PriorityHigh
	case models.PriorityLow:
		priorityStyle = v.styles.PriorityLow
	default:
		priorityStyle = v.styles.PriorityMedium
	}

	parts := []string{check, titleStyle.Render(task.Title), priorityStyle.Render(string(task.Priority))}
	if task.DueDate != nil {
		parts = append(parts, v.styles.TitleMuted.Render("due "+task.DueDate.Format("2006-01-02")))
	}
	for _, tag := range task.Tags {
		parts = append(parts, v.styles.Tag.Render("#"+tag.Name))
	}
	return strings.Join(parts, " ")
}

func (v *TaskListView) renderCreateForm() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("New task"))
	b.WriteString("\n\n")
	b.WriteString(v.inputTitle.View())
	b.WriteString("\n")
	b.WriteString(v.inputDue.View())
	b.WriteString("\n")
	b.WriteString(v.inputPriority.View())
	b.WriteString("\n")
	b.WriteString(v.inputTags.View())
	b.WriteString("\n\n")
	b.WriteString(v.styles.StatusBar.Render("enter next/save · tab move · esc cancel"))
	return b.String()
}

func (v *TaskListView) renderHelp() string {
	rows := [][2]string{
		{"↑/k ↓/j", "move"},
		{"space", "toggle complete"},
		{"n", "new task"},
		{"d", "delete task"},
		{"f", "cycle status filter"},
		{"w", "weekly timeline"},
		{"q", "quit"},
	}
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(v.styles.HelpKey.Render(row[0]))
		b.WriteString("  " + row[1] + "\n")
	}
	return v.styles.Help.Render(b.String())
}

// clampWidth truncates rendered lines to the usable content width.
func clampWidth(s string, terminalWidth int) string {
	if terminalWidth <= 0 {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(styles.ContentWidth(terminalWidth)).Render(s)
}
