// Package tui is the terminal front end: a student table with a live
// search box and a modal add/edit form.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"student-manager-go/app"
	"student-manager-go/form"
	"student-manager-go/models"
)

type focus int

const (
	focusTable focus = iota
	focusSearch
	focusForm
)

// ColumnTitles heads every student table, on screen and in `list`
var ColumnTitles = []string{"ID", "Name", "Age", "Address", "Class"}

var (
	columnWidths = []int{12, 22, 5, 32, 8}
	fieldLabels  = []string{"Name", "Age", "Address", "Class"}
	fieldKeys    = []string{"name", "age", "address", "class"}
)

// Model is the bubbletea model for the student page
type Model struct {
	ctx     context.Context
	session *app.Session
	view    app.View

	table  table.Model
	search textinput.Model
	inputs []textinput.Model
	field  int
	focus  focus
	status string

	styles styles
}

// New creates the page model bound to session
func New(ctx context.Context, session *app.Session) Model {
	columns := make([]table.Column, len(ColumnTitles))
	for i, title := range ColumnTitles {
		columns[i] = table.Column{Title: title, Width: columnWidths[i]}
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	si := textinput.New()
	si.Placeholder = "Search by name or class"
	si.CharLimit = 50
	si.Width = 40

	inputs := make([]textinput.Model, len(fieldLabels))
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 100
		ti.Width = 36
		inputs[i] = ti
	}
	inputs[1].CharLimit = 3

	m := Model{
		ctx:     ctx,
		session: session,
		table:   t,
		search:  si,
		inputs:  inputs,
		styles:  defaultStyles(),
	}
	m.apply(session.View())
	return m
}

// Run starts the program and blocks until the user quits
func Run(ctx context.Context, session *app.Session) error {
	_, err := tea.NewProgram(New(ctx, session), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetHeight(max(3, msg.Height-10))
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.focus {
		case focusForm:
			return m.updateForm(msg)
		case focusSearch:
			return m.updateSearch(msg)
		default:
			return m.updateTable(msg)
		}
	}
	return m, nil
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		m.focus = focusSearch
		m.table.Blur()
		return m, m.search.Focus()
	case "a":
		m.status = ""
		m.apply(m.session.OpenForAdd())
		return m, m.openForm()
	case "e", "enter":
		student, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.status = ""
		m.apply(m.session.OpenForEditStudent(student))
		return m, m.openForm()
	case "d":
		student, ok := m.selected()
		if !ok {
			return m, nil
		}
		id := student.ID
		view, err := m.session.Delete(m.ctx, id)
		m.apply(view)
		if err != nil {
			m.status = err.Error()
		} else {
			m.status = "Deleted " + id
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.focus = focusTable
		m.search.Blur()
		m.table.Focus()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	// Filter on every keystroke.
	m.apply(m.session.Search(m.search.Value()))
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.apply(m.session.Cancel())
		m.closeForm()
		return m, nil
	case "tab", "down":
		return m, m.focusField((m.field + 1) % len(m.inputs))
	case "shift+tab", "up":
		return m, m.focusField((m.field + len(m.inputs) - 1) % len(m.inputs))
	case "enter":
		view, err := m.session.Submit(m.ctx, m.formValues())
		m.view = view
		m.refreshRows()
		if err != nil {
			var verr *form.ValidationError
			if errors.As(err, &verr) {
				m.status = "Please fill in the highlighted fields"
			} else {
				m.status = err.Error()
			}
			return m, nil
		}
		m.status = "Saved"
		m.closeForm()
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.field], cmd = m.inputs[m.field].Update(msg)
	return m, cmd
}

// apply stores the session view and refreshes the table rows
func (m *Model) apply(view app.View) {
	m.view = view
	m.refreshRows()
}

func (m *Model) refreshRows() {
	rows := make([]table.Row, 0, len(m.view.Students))
	for _, s := range m.view.Students {
		rows = append(rows, Row(s))
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(0, len(rows)-1))
	}
}

// Row is the cell text of a student in ColumnTitles order
func Row(s models.Student) []string {
	return []string{s.ID, s.Name, strconv.Itoa(s.Age), s.Address, s.Class}
}

// selected returns the highlighted student by cursor position, so a
// repeated id still edits the row the user picked
func (m Model) selected() (models.Student, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.view.Students) {
		return models.Student{}, false
	}
	return m.view.Students[i], true
}

func (m *Model) openForm() tea.Cmd {
	v := m.view.Form.Values
	for i, val := range []string{v.Name, v.Age, v.Address, v.Class} {
		m.inputs[i].SetValue(val)
		m.inputs[i].CursorEnd()
	}
	m.focus = focusForm
	m.table.Blur()
	return m.focusField(0)
}

func (m *Model) closeForm() {
	for i := range m.inputs {
		m.inputs[i].Blur()
		m.inputs[i].SetValue("")
	}
	m.field = 0
	m.focus = focusTable
	m.table.Focus()
}

func (m *Model) focusField(i int) tea.Cmd {
	m.inputs[m.field].Blur()
	m.field = i
	return m.inputs[i].Focus()
}

func (m Model) formValues() form.Values {
	return form.Values{
		Name:    m.inputs[0].Value(),
		Age:     m.inputs[1].Value(),
		Address: m.inputs[2].Value(),
		Class:   m.inputs[3].Value(),
	}
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.title.Render("Student Management Form"))
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.label.Render("Search: "))
	sb.WriteString(m.search.View())
	sb.WriteString("\n\n")

	if m.view.Form.Open() {
		sb.WriteString(m.renderForm())
	} else {
		sb.WriteString(m.styles.content.Render(m.table.View()))
		sb.WriteString("\n")
		sb.WriteString(m.styles.help.Render(fmt.Sprintf("%d of %d students", len(m.view.Students), m.view.Total)))
	}
	sb.WriteString("\n")
	if m.status != "" {
		sb.WriteString(m.styles.status.Render(m.status))
		sb.WriteString("\n")
	}
	sb.WriteString(m.styles.help.Render(m.helpLine()))
	return sb.String()
}

func (m Model) renderForm() string {
	var sb strings.Builder
	sb.WriteString(m.styles.title.Render(m.view.Form.Title))
	sb.WriteString("\n\n")
	for i, label := range fieldLabels {
		sb.WriteString(m.styles.label.Render(fmt.Sprintf("%-8s", label)))
		sb.WriteString(m.inputs[i].View())
		if msg, ok := m.view.Form.Errors[fieldKeys[i]]; ok {
			sb.WriteString("  ")
			sb.WriteString(m.styles.fieldError.Render(msg))
		}
		sb.WriteString("\n")
	}
	return m.styles.modal.Render(sb.String())
}

func (m Model) helpLine() string {
	switch m.focus {
	case focusForm:
		return "tab/shift+tab: move • enter: submit • esc: cancel"
	case focusSearch:
		return "type to filter • enter/esc: back to table"
	default:
		return "/: search • a: add • e/enter: edit • d: delete • q: quit"
	}
}

type styles struct {
	title      lipgloss.Style
	label      lipgloss.Style
	content    lipgloss.Style
	modal      lipgloss.Style
	fieldError lipgloss.Style
	status     lipgloss.Style
	help       lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		label:      lipgloss.NewStyle().Bold(true),
		content:    lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240")),
		modal:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("12")).Padding(1, 2),
		fieldError: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		status:     lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		help:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}
