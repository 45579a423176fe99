package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/taskflow/internal/models"
	"github.com/tgienger/taskflow/internal/store"
	"github.com/tgienger/taskflow/internal/ui/views"
)

// Preferences persists UI settings outside the task collection
type Preferences interface {
	LoadViewMode(fallback models.ViewMode) models.ViewMode
	SaveViewMode(mode models.ViewMode)
}

type App struct {
	store  *store.Store
	board  *views.BoardView
	width  int
	height int
}

// Creates a new application. The saved view mode wins over defaultView.
func NewApp(s *store.Store, prefs Preferences, defaultView models.ViewMode) *App {
	mode := prefs.LoadViewMode(defaultView)
	return &App{
		store: s,
		board: views.NewBoardView(s, prefs, mode),
	}
}

func (a *App) Init() tea.Cmd {
	return a.board.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		a.width = msg.Width
		a.height = msg.Height
	}

	_, cmd := a.board.Update(msg)
	return a, cmd
}

// Mode returns the presentation mode currently on screen
func (a *App) Mode() models.ViewMode {
	return a.board.Mode()
}

func (a *App) View() string {
	return a.board.View()
}
