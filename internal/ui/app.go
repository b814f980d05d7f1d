package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zoja7431/task-manage/internal/db"
	"github.com/Zoja7431/task-manage/internal/models"
	"github.com/Zoja7431/task-manage/internal/ui/views"
)

// App is the root model of the terminal client. It owns the task list and
// weekly timeline views and switches between them.
type App struct {
	db   *db.DB
	user *models.User

	tasks  tea.Model
	weekly tea.Model
	active tea.Model

	width  int
	height int
}

// NewApp creates the terminal client for a user
func NewApp(database *db.DB, user *models.User) *App {
	tasks := views.NewTaskListView(database, user)
	return &App{
		db:     database,
		user:   user,
		tasks:  tasks,
		weekly: views.NewWeeklyView(database, user),
		active: tasks,
	}
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.active.Init()
}

// Update handles messages and view switching
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Both views track the size so switching stays seamless.
		var cmds []tea.Cmd
		var cmd tea.Cmd
		a.tasks, cmd = a.tasks.Update(msg)
		cmds = append(cmds, cmd)
		a.weekly, cmd = a.weekly.Update(msg)
		cmds = append(cmds, cmd)
		return a, tea.Batch(cmds...)

	case views.ShowWeekly:
		a.active = a.weekly
		return a, a.weekly.Init()

	case views.ShowTasks:
		a.active = a.tasks
		return a, a.tasks.Init()
	}

	updated, cmd := a.active.Update(msg)
	if a.active == a.tasks {
		a.tasks = updated
	} else {
		a.weekly = updated
	}
	a.active = updated
	return a, cmd
}

// View renders the active view
func (a *App) View() string {
	return a.active.View()
}
