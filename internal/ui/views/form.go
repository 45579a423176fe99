package views

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskflow/internal/models"
	"github.com/tgienger/taskflow/internal/ui/keys"
	"github.com/tgienger/taskflow/internal/ui/styles"
)

var (
	errTitleRequired       = errors.New("title is required")
	errResponsibleRequired = errors.New("responsible is required")
)

// form field order
const (
	fieldTitle = iota
	fieldDesc
	fieldResponsible
	fieldPriority
	fieldStatus
	fieldSave
	fieldCount
)

// taskForm edits a new or existing task
type taskForm struct {
	keys keys.KeyMap

	task *models.Task // nil when creating

	title       textinput.Model
	desc        textarea.Model
	responsible textinput.Model
	priority    models.TaskPriority
	status      models.TaskStatus

	focusIdx int
	err      error
}

func newTaskForm(km keys.KeyMap) *taskForm {
	title := textinput.New()
	title.Placeholder = "Task title"
	title.CharLimit = 200

	desc := textarea.New()
	desc.Placeholder = "Description"
	desc.CharLimit = 1000
	desc.SetWidth(50)
	desc.SetHeight(3)
	desc.ShowLineNumbers = false

	responsible := textinput.New()
	responsible.Placeholder = "Who owns it"
	responsible.CharLimit = 100

	return &taskForm{
		keys:        km,
		title:       title,
		desc:        desc,
		responsible: responsible,
		priority:    models.PriorityMedium,
		status:      models.StatusTodo,
	}
}

// startNew clears the form. status preselects the column the user is on.
func (f *taskForm) startNew(status models.TaskStatus) {
	f.task = nil
	f.title.Reset()
	f.desc.Reset()
	f.responsible.Reset()
	f.priority = models.PriorityMedium
	f.status = status
	f.err = nil
	f.focusIdx = fieldTitle
	f.updateFocus()
}

func (f *taskForm) startEdit(task models.Task) {
	f.task = &task
	f.title.SetValue(task.Title)
	f.desc.SetValue(task.Description)
	f.responsible.SetValue(task.Responsible)
	f.priority = task.Priority
	f.status = task.Status
	f.err = nil
	f.focusIdx = fieldTitle
	f.updateFocus()
}

func (f *taskForm) isNew() bool {
	return f.task == nil
}

func (f *taskForm) setWidth(w int) {
	f.desc.SetWidth(w)
}

func (f *taskForm) validate() error {
	if strings.TrimSpace(f.title.Value()) == "" {
		return errTitleRequired
	}
	if strings.TrimSpace(f.responsible.Value()) == "" {
		return errResponsibleRequired
	}
	return nil
}

func (f *taskForm) input() models.TaskInput {
	return models.TaskInput{
		Title:       strings.TrimSpace(f.title.Value()),
		Description: strings.TrimSpace(f.desc.Value()),
		Priority:    f.priority,
		Status:      f.status,
		Responsible: strings.TrimSpace(f.responsible.Value()),
	}
}

// patch carries every field, the way the modal always submits the full form
func (f *taskForm) patch() models.TaskPatch {
	in := f.input()
	return models.TaskPatch{
		Title:       &in.Title,
		Description: &in.Description,
		Priority:    &in.Priority,
		Status:      &in.Status,
		Responsible: &in.Responsible,
	}
}

// formResult tells the board what the form wants
type formResult int

const (
	formContinue formResult = iota
	formCancel
	formSubmit
)

func (f *taskForm) update(msg tea.KeyMsg) (formResult, tea.Cmd) {
	switch {
	case key.Matches(msg, f.keys.Back):
		return formCancel, nil

	case key.Matches(msg, f.keys.Save):
		return f.submit(), nil

	case key.Matches(msg, f.keys.Tab):
		f.focusIdx = (f.focusIdx + 1) % fieldCount
		f.updateFocus()
		return formContinue, nil

	case msg.String() == "shift+tab":
		f.focusIdx = (f.focusIdx + fieldCount - 1) % fieldCount
		f.updateFocus()
		return formContinue, nil

	case key.Matches(msg, f.keys.Enter):
		switch f.focusIdx {
		case fieldSave:
			return f.submit(), nil
		case fieldDesc:
			// newline in the textarea
		default:
			f.focusIdx++
			f.updateFocus()
			return formContinue, nil
		}
	}

	// Selectors cycle with left/right (or space)
	if f.focusIdx == fieldPriority || f.focusIdx == fieldStatus {
		dir := 0
		switch {
		case key.Matches(msg, f.keys.Left):
			dir = -1
		case key.Matches(msg, f.keys.Right), msg.String() == " ":
			dir = 1
		}
		if dir != 0 {
			if f.focusIdx == fieldPriority {
				f.priority = cycle(models.Priorities(), f.priority, dir)
			} else {
				f.status = cycle(models.Statuses(), f.status, dir)
			}
		}
		return formContinue, nil
	}

	var cmd tea.Cmd
	switch f.focusIdx {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldDesc:
		f.desc, cmd = f.desc.Update(msg)
	case fieldResponsible:
		f.responsible, cmd = f.responsible.Update(msg)
	}
	return formContinue, cmd
}

func (f *taskForm) submit() formResult {
	if err := f.validate(); err != nil {
		f.err = err
		if errors.Is(err, errTitleRequired) {
			f.focusIdx = fieldTitle
		} else {
			f.focusIdx = fieldResponsible
		}
		f.updateFocus()
		return formContinue
	}
	f.err = nil
	return formSubmit
}

func (f *taskForm) updateFocus() {
	f.title.Blur()
	f.desc.Blur()
	f.responsible.Blur()

	switch f.focusIdx {
	case fieldTitle:
		f.title.Focus()
	case fieldDesc:
		f.desc.Focus()
	case fieldResponsible:
		f.responsible.Focus()
	}
}

// cycle returns the value dir steps away from cur, wrapping around
func cycle[T comparable](values []T, cur T, dir int) T {
	for i, v := range values {
		if v == cur {
			return values[(i+dir+len(values))%len(values)]
		}
	}
	return values[0]
}

func (f *taskForm) view(s *styles.Styles, width, height int) string {
	contentWidth := styles.ContentWidth(width)
	inputWidth := clamp(contentWidth-10, 20, 50)

	fieldStyle := func(idx int) lipgloss.Style {
		if f.focusIdx == idx {
			return s.InputFocused
		}
		return s.Input
	}

	heading := "New Task"
	if !f.isNew() {
		heading = "Edit Task"
	}

	selector := func(idx int, label string, color lipgloss.Color) string {
		text := lipgloss.NewStyle().Foreground(color).Render("‹ " + label + " ›")
		return fieldStyle(idx).Width(inputWidth).Render(text)
	}

	btnStyle := s.Button
	if f.focusIdx == fieldSave {
		btnStyle = s.ButtonFocused
	}

	rows := []string{
		s.Title.Render(heading),
		"",
		"Title:",
		fieldStyle(fieldTitle).Width(inputWidth).Render(f.title.View()),
		"Description:",
		fieldStyle(fieldDesc).Width(inputWidth).Render(f.desc.View()),
		"Responsible:",
		fieldStyle(fieldResponsible).Width(inputWidth).Render(f.responsible.View()),
		"Priority:",
		selector(fieldPriority, f.priority.Label(), styles.PriorityColor(f.priority)),
		"Status:",
		selector(fieldStatus, f.status.Label(), styles.StatusColor(f.status)),
		"",
		btnStyle.Render(" Save "),
	}

	if f.err != nil {
		rows = append(rows, "", s.FieldError.Render(f.err.Error()))
	}

	if f.task != nil {
		rows = append(rows, "", s.TitleMuted.Render("Created "+formatTime(&f.task.CreatedAt)))
		if f.task.UpdatedAt != nil {
			rows = append(rows, s.TitleMuted.Render("Updated "+formatTime(f.task.UpdatedAt)))
		}
		if f.task.CompletedAt != nil {
			rows = append(rows, lipgloss.NewStyle().Foreground(styles.Current.Success).
				Render("Completed "+formatTime(f.task.CompletedAt)))
		}
	}

	rows = append(rows, "", s.TitleMuted.Render("Tab: next • ←/→: change • Ctrl+S: save • Esc: cancel"))

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)
	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, width, height)
}

// formatTime renders a timestamp for the table and form, "-" when unset
func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("02/01/2006 15:04")
}
