package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskflow/internal/models"
	"github.com/tgienger/taskflow/internal/store"
	"github.com/tgienger/taskflow/internal/ui/keys"
	"github.com/tgienger/taskflow/internal/ui/styles"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

const toastDuration = 3 * time.Second

// FocusArea represents which part of the UI has focus
type FocusArea int

const (
	FocusBoard FocusArea = iota
	FocusSearchInput
)

// Preferences stores the view mode between runs
type Preferences interface {
	SaveViewMode(mode models.ViewMode)
}

// BoardView shows the tasks as a kanban board or a table
type BoardView struct {
	store  *store.Store
	prefs  Preferences
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	mode        models.ViewMode
	focus       FocusArea
	searchInput textinput.Model

	// Kanban cursor: column index and row per column
	col  int
	rows [3]int

	// List mode
	table table.Model

	// Task creation/editing
	editing bool
	form    *taskForm

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   string
	deleteTargetName string

	toast    string
	toastSeq int

	// Help popup (shown with ?)
	showHelpPopup bool
}

// NewBoardView creates the board in the given mode
func NewBoardView(s *store.Store, prefs Preferences, mode models.ViewMode) *BoardView {
	st := styles.NewStyles()
	km := keys.DefaultKeyMap()

	search := textinput.New()
	search.Placeholder = "Search title or responsible..."
	search.CharLimit = 100
	search.SetValue(s.Filters().Search)

	tbl := table.New(
		table.WithColumns(tableColumns(styles.MaxWidth)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Current.Border).
		BorderBottom(true).
		Bold(true)
	ts.Selected = ts.Selected.
		Foreground(styles.Current.Primary).
		Background(styles.Current.Selection).
		Bold(true)
	tbl.SetStyles(ts)

	if !mode.Valid() {
		mode = models.ViewKanban
	}

	v := &BoardView{
		store:       s,
		prefs:       prefs,
		styles:      st,
		keys:        km,
		mode:        mode,
		focus:       FocusBoard,
		searchInput: search,
		table:       tbl,
		form:        newTaskForm(km),
	}
	v.refreshTable()
	return v
}

// Mode returns the current presentation mode
func (v *BoardView) Mode() models.ViewMode {
	return v.mode
}

// Init initializes the view
func (v *BoardView) Init() tea.Cmd {
	return nil
}

type toastExpiredMsg struct {
	seq int
}

// Update handles messages
func (v *BoardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(v.width)
		v.form.setWidth(clamp(contentWidth-10, 20, 50))
		v.table.SetColumns(tableColumns(contentWidth))
		v.table.SetHeight(max(v.height-12, 3))
		return v, nil

	case toastExpiredMsg:
		if msg.seq == v.toastSeq {
			v.toast = ""
		}
		return v, nil

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.editing {
			return v.updateEditing(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *BoardView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle search input typing first - don't process hotkeys while typing
	if v.focus == FocusSearchInput {
		switch {
		case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter):
			v.searchInput.Blur()
			v.focus = FocusBoard
			return v, nil
		default:
			var cmd tea.Cmd
			v.searchInput, cmd = v.searchInput.Update(msg)
			f := v.store.Filters()
			f.Search = v.searchInput.Value()
			v.applyFilters(f)
			return v, cmd
		}
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil

	case key.Matches(msg, v.keys.Search):
		v.focus = FocusSearchInput
		v.searchInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.StatusFilter):
		f := v.store.Filters()
		f.Status = cycle(append([]models.TaskStatus{models.StatusAll}, models.Statuses()...), f.Status, 1)
		v.applyFilters(f)
		return v, nil

	case key.Matches(msg, v.keys.PriorityFilter):
		f := v.store.Filters()
		f.Priority = cycle(append([]models.TaskPriority{models.PriorityAll}, models.Priorities()...), f.Priority, 1)
		v.applyFilters(f)
		return v, nil

	case key.Matches(msg, v.keys.ClearFilters), key.Matches(msg, v.keys.Back):
		v.searchInput.Reset()
		v.applyFilters(models.DefaultFilters())
		return v, nil

	case key.Matches(msg, v.keys.ToggleView):
		v.mode = v.mode.Toggle()
		v.prefs.SaveViewMode(v.mode)
		v.refreshTable()
		return v, nil

	case key.Matches(msg, v.keys.New):
		status := models.StatusTodo
		if v.mode == models.ViewKanban {
			status = models.Statuses()[v.col]
		}
		v.form.startNew(status)
		v.editing = true
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Edit), key.Matches(msg, v.keys.Enter):
		if task, ok := v.selectedTask(); ok {
			v.form.startEdit(task)
			v.editing = true
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if task, ok := v.selectedTask(); ok {
			v.confirmingDelete = true
			v.deleteTargetID = task.ID
			v.deleteTargetName = task.Title
		}
		return v, nil

	case key.Matches(msg, v.keys.MoveLeft):
		v.moveSelected(-1)
		return v, nil

	case key.Matches(msg, v.keys.MoveRight):
		v.moveSelected(1)
		return v, nil

	case key.Matches(msg, v.keys.Left):
		if v.mode == models.ViewKanban && v.col > 0 {
			v.col--
		}
		return v, nil

	case key.Matches(msg, v.keys.Right):
		if v.mode == models.ViewKanban && v.col < len(models.Statuses())-1 {
			v.col++
		}
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.mode == models.ViewList {
			v.table.MoveUp(1)
		} else if v.rows[v.col] > 0 {
			v.rows[v.col]--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.mode == models.ViewList {
			v.table.MoveDown(1)
		} else if v.rows[v.col] < len(v.columnTasks(v.col))-1 {
			v.rows[v.col]++
		}
		return v, nil
	}

	return v, nil
}

func (v *BoardView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.store.Delete(v.deleteTargetID)
		v.confirmingDelete = false
		v.clampCursors()
		return v, v.showToast("Task deleted")
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *BoardView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	result, cmd := v.form.update(msg)
	switch result {
	case formCancel:
		v.editing = false
		return v, nil
	case formSubmit:
		v.editing = false
		return v, v.saveTask()
	}
	return v, cmd
}

func (v *BoardView) saveTask() tea.Cmd {
	if v.form.isNew() {
		task := v.store.Create(v.form.input())
		v.focusTask(task.ID)
		return v.showToast("Task created")
	}

	id := v.form.task.ID
	if _, ok := v.store.Get(id); !ok {
		v.clampCursors()
		return v.showToast("Task no longer exists")
	}
	v.store.Update(id, v.form.patch())
	v.focusTask(id)
	return v.showToast("Task updated")
}

// moveSelected shifts the selected task one column left or right
func (v *BoardView) moveSelected(dir int) {
	task, ok := v.selectedTask()
	if !ok {
		return
	}
	next := task.Status.Next()
	if dir < 0 {
		next = task.Status.Prev()
	}
	if next == task.Status {
		return
	}
	v.store.ChangeStatus(task.ID, next)
	v.focusTask(task.ID)
}

func (v *BoardView) applyFilters(f models.TaskFilters) {
	v.store.SetFilters(f)
	v.clampCursors()
}

// focusTask moves the cursor onto the task if it is visible
func (v *BoardView) focusTask(id string) {
	v.refreshTable()
	if v.mode == models.ViewList {
		for i, t := range v.store.Tasks() {
			if t.ID == id {
				v.table.SetCursor(i)
				return
			}
		}
		v.clampCursors()
		return
	}

	cols := v.store.Columns()
	for ci, st := range models.Statuses() {
		for ri, t := range cols[st] {
			if t.ID == id {
				v.col = ci
				v.rows[ci] = ri
				return
			}
		}
	}
	v.clampCursors()
}

func (v *BoardView) clampCursors() {
	v.refreshTable()
	cols := v.store.Columns()
	for ci, st := range models.Statuses() {
		v.rows[ci] = clamp(v.rows[ci], 0, max(len(cols[st])-1, 0))
	}
	if n := len(v.table.Rows()); v.table.Cursor() >= n {
		v.table.SetCursor(max(n-1, 0))
	}
}

func (v *BoardView) columnTasks(col int) []models.Task {
	return v.store.Columns()[models.Statuses()[col]]
}

// selectedTask returns the task under the cursor in the current mode
func (v *BoardView) selectedTask() (models.Task, bool) {
	if v.mode == models.ViewList {
		tasks := v.store.Tasks()
		idx := v.table.Cursor()
		if idx < 0 || idx >= len(tasks) {
			return models.Task{}, false
		}
		return tasks[idx], true
	}

	tasks := v.columnTasks(v.col)
	row := v.rows[v.col]
	if row < 0 || row >= len(tasks) {
		return models.Task{}, false
	}
	return tasks[row], true
}

func (v *BoardView) showToast(text string) tea.Cmd {
	v.toastSeq++
	v.toast = text
	seq := v.toastSeq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

func tableColumns(width int) []table.Column {
	fixed := 12 + 10 + 12 + 17 + 17
	flexible := max(width-fixed-16, 24)
	titleWidth := flexible / 2
	return []table.Column{
		{Title: "Title", Width: titleWidth},
		{Title: "Description", Width: flexible - titleWidth},
		{Title: "Responsible", Width: 12},
		{Title: "Priority", Width: 10},
		{Title: "Status", Width: 12},
		{Title: "Created", Width: 17},
		{Title: "Completed", Width: 17},
	}
}

func (v *BoardView) refreshTable() {
	tasks := v.store.Tasks()
	rows := make([]table.Row, len(tasks))
	for i, t := range tasks {
		rows[i] = table.Row{
			t.Title,
			oneLine(t.Description),
			t.Responsible,
			t.Priority.Label(),
			t.Status.Label(),
			formatTime(&t.CreatedAt),
			formatTime(t.CompletedAt),
		}
	}
	v.table.SetRows(rows)
}

// View renders the view
func (v *BoardView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	if v.editing {
		return v.form.view(v.styles, v.width, v.height)
	}

	var b strings.Builder

	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")

	if v.mode == models.ViewList {
		b.WriteString(v.renderTable())
	} else {
		b.WriteString(v.renderBoard())
	}

	b.WriteString("\n")
	if line := v.renderStatusBar(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if v.toast != "" {
		b.WriteString(v.styles.Toast.Render("✓ " + v.toast))
		b.WriteString("\n")
	}
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *BoardView) renderHeader() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	titleText := "Kanban Board"
	if v.mode == models.ViewList {
		titleText = "Task List"
	}
	stats := v.store.Stats()
	counts := s.TitleMuted.Render(fmt.Sprintf("%d tasks • %d to do • %d in progress • %d done",
		stats.Total, stats.Todo, stats.InProgress, stats.Done))
	title := lipgloss.JoinHorizontal(lipgloss.Bottom, s.Title.Render(titleText), "  ", counts)

	searchStyle := s.Input
	if v.focus == FocusSearchInput {
		searchStyle = s.InputFocused
	}
	searchWidth := clamp(contentWidth-40, 10, 40)
	searchBox := searchStyle.Width(searchWidth).Render(v.searchInput.View())

	f := v.store.Filters()
	chip := func(label string, active bool) string {
		if active {
			return s.ChipOn.Render(label)
		}
		return s.Chip.Render(label)
	}
	statusChip := chip("Status: "+f.Status.Label(), f.Status != models.StatusAll && f.Status != "")
	priorityChip := chip("Priority: "+f.Priority.Label(), f.Priority != models.PriorityAll && f.Priority != "")

	bar := lipgloss.JoinHorizontal(lipgloss.Center, searchBox, "  ", statusChip, " ", priorityChip)
	return lipgloss.JoinVertical(lipgloss.Left, title, bar)
}

func (v *BoardView) renderBoard() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	colWidth := max((contentWidth-6)/3-4, 16)

	// Each card is up to 3 lines + 1 margin
	availableHeight := max(v.height-14, 3)
	visibleCards := max(availableHeight/4, 1)

	cols := v.store.Columns()
	rendered := make([]string, 0, len(models.Statuses()))
	for ci, st := range models.Statuses() {
		tasks := cols[st]
		focused := ci == v.col

		header := s.ColumnHeader.Foreground(styles.StatusColor(st)).
			Render(fmt.Sprintf("%s (%d)", st.Label(), len(tasks)))

		var cards []string
		if len(tasks) == 0 {
			cards = append(cards, s.TitleMuted.Render("No tasks"))
		}

		start := 0
		if v.rows[ci] >= visibleCards {
			start = v.rows[ci] - visibleCards + 1
		}
		end := min(start+visibleCards, len(tasks))
		for ri := start; ri < end; ri++ {
			cards = append(cards, v.renderCard(tasks[ri], colWidth, focused && ri == v.rows[ci]))
		}
		if end < len(tasks) {
			cards = append(cards, s.TitleMuted.Render(fmt.Sprintf("+%d more", len(tasks)-end)))
		}

		colStyle := s.Column
		if focused {
			colStyle = s.ColumnFocused
		}
		body := lipgloss.JoinVertical(lipgloss.Left, append([]string{header}, cards...)...)
		rendered = append(rendered, colStyle.Width(colWidth+2).Render(body))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (v *BoardView) renderCard(task models.Task, width int, selected bool) string {
	s := v.styles

	style := s.Card
	if selected {
		style = s.CardSelected
	}

	title := task.Title
	if lipgloss.Width(title) > width-2 {
		title = truncate(title, width-2)
	}
	lines := []string{title}
	if desc := oneLine(task.Description); desc != "" {
		lines = append(lines, s.CardMeta.Render(truncate(desc, width-2)))
	}
	lines = append(lines, s.CardMeta.Render(truncate(task.Responsible, width/2))+" "+s.Badge(task.Priority))

	return style.Width(width).MarginBottom(1).Render(strings.Join(lines, "\n"))
}

// oneLine collapses whitespace so multi-line text fits a single row
func oneLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func truncate(text string, width int) string {
	r := []rune(text)
	if len(r) <= width || width < 2 {
		return text
	}
	return string(r[:width-1]) + "…"
}

func (v *BoardView) renderTable() string {
	if len(v.table.Rows()) == 0 {
		return v.styles.TitleMuted.Render("No tasks. Press 'n' to create one.")
	}
	return v.table.View()
}

// renderStatusBar reports how many tasks the active filters hide
func (v *BoardView) renderStatusBar() string {
	shown, total := len(v.store.Tasks()), v.store.Stats().Total
	if shown == total {
		return ""
	}
	return v.styles.StatusBar.Render(fmt.Sprintf("Showing %d of %d tasks • %s clear filters",
		shown, total, v.styles.HelpKey.Render("x")))
}

func (v *BoardView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 60 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return v.styles.Help.Render(
		fmt.Sprintf("%s new • %s edit • %s move • %s del • %s search • %s view • %s help • %s quit",
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("H/L"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("/"),
			v.styles.HelpKey.Render("v"),
			v.styles.HelpKey.Render("?"),
			v.styles.HelpKey.Render("q"),
		),
	)
}

func (v *BoardView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	bindings := []key.Binding{
		v.keys.New, v.keys.Edit, v.keys.Delete,
		v.keys.Left, v.keys.Right, v.keys.Up, v.keys.Down,
		v.keys.MoveLeft, v.keys.MoveRight,
		v.keys.Search, v.keys.StatusFilter, v.keys.PriorityFilter, v.keys.ClearFilters,
		v.keys.ToggleView, v.keys.Quit,
	}
	helpItems := make([]string, 0, len(bindings)+2)
	for _, b := range bindings {
		h := b.Help()
		helpItems = append(helpItems, s.HelpKey.Width(8).Render(h.Key)+s.HelpDesc.Render(h.Desc))
	}
	helpItems = append(helpItems, "", s.TitleMuted.Render("Press any key to close"))

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.FilterBar.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *BoardView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("\"%s\" will be removed permanently.", v.deleteTargetName)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}
