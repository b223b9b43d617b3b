package ui

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bgunnarsson/dictbase/internal/print"
	"github.com/bgunnarsson/dictbase/internal/query"
	"github.com/bgunnarsson/dictbase/internal/record"
)

const maxColWidth = 40

// Catppuccin Mocha.
var (
	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#595B72"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89DCEB"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C0A1F0"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8"))
	grayStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9399B2"))
)

// Source is what the browser reads from; *record.Table satisfies it.
type Source interface {
	Name() string
	Columns() []string
	All(ctx context.Context) ([]record.Row, error)
	Where(ctx context.Context, conds query.Conditions) ([]record.Row, error)
}

type rowsMsg struct {
	rows    []record.Row
	filter  string
	elapsed time.Duration
	err     error
}

type model struct {
	ctx    context.Context
	src    Source
	label  string
	table  table.Model
	filter textinput.Model
	status string
	width  int
	height int
}

// Run starts the interactive browser over src.
func Run(ctx context.Context, src Source, label string) error {
	_, err := tea.NewProgram(newModel(ctx, src, label), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func newModel(ctx context.Context, src Source, label string) model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "col=val col=val (Enter to filter, empty for all)"
	ti.Focus()

	t := table.New(
		table.WithColumns(columnsFor(src.Columns(), nil)),
		table.WithFocused(false),
		table.WithHeight(10),
	)

	return model{
		ctx:    ctx,
		src:    src,
		label:  label,
		table:  t,
		filter: ti,
		status: grayStyle.Render("Loading rows…"),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.load(""))
}

// load runs All for an empty filter, Where otherwise.
func (m model) load(filter string) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		filter = strings.TrimSpace(filter)
		if filter == "" {
			rows, err := m.src.All(m.ctx)
			return rowsMsg{rows: rows, elapsed: time.Since(start), err: err}
		}
		conds, err := query.ParseFilter(filter)
		if err != nil {
			return rowsMsg{filter: filter, err: err}
		}
		rows, err := m.src.Where(m.ctx, conds)
		return rowsMsg{rows: rows, filter: filter, elapsed: time.Since(start), err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		// header, filter and status boxes take 3 lines each, plus the table border
		if h := msg.Height - 11; h > 3 {
			m.table.SetHeight(h)
		}
		m.table.SetWidth(msg.Width - 2)
		return m, nil

	case rowsMsg:
		if msg.err != nil {
			m.status = errStyle.Render("Query error: ") + msg.err.Error()
			return m, nil
		}
		m.setRows(msg.rows)
		m.status = okStyle.Render("Query OK ") + grayStyle.Render(fmt.Sprintf(
			"(%d rows, %s)", len(msg.rows), msg.elapsed.Truncate(time.Millisecond)))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+r":
			m.status = grayStyle.Render("Reloading…")
			return m, m.load(m.filter.Value())
		case "tab":
			// toggle focus between filter and results
			if m.filter.Focused() {
				m.filter.Blur()
				m.table.Focus()
			} else {
				m.table.Blur()
				return m, m.filter.Focus()
			}
			return m, nil
		case "enter":
			if m.filter.Focused() {
				m.status = grayStyle.Render("Running query…")
				return m, m.load(m.filter.Value())
			}
		}
	}

	if m.filter.Focused() {
		m.filter, cmd = m.filter.Update(msg)
	} else {
		m.table, cmd = m.table.Update(msg)
	}
	return m, cmd
}

func (m *model) setRows(rows []record.Row) {
	cols := m.src.Columns()
	data := print.Cells(rows, cols)

	// rows first: bubbles/table indexes rows by the current column count
	m.table.SetRows(nil)
	m.table.SetColumns(columnsFor(cols, data))

	out := make([]table.Row, len(data))
	for i, cells := range data {
		for j := range cells {
			cells[j] = truncateRunes(cells[j], maxColWidth)
		}
		out[i] = table.Row(cells)
	}
	m.table.SetRows(out)
	m.table.GotoTop()
}

func (m model) View() string {
	header := borderStyle.Render(titleStyle.Render("DICTBASE") + "  " +
		accentStyle.Render(strings.ToUpper(m.label)) + "  " + m.src.Name())

	help := grayStyle.Render("tab: filter/results  enter: run  ctrl+r: reload  esc: quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		borderStyle.Render(m.table.View()),
		borderStyle.Render(m.filter.View()),
		borderStyle.Render(m.status+"  "+help),
	)
}

// columnsFor sizes each column to its widest cell, capped at maxColWidth.
func columnsFor(names []string, data [][]string) []table.Column {
	cols := make([]table.Column, len(names))
	for i, name := range names {
		w := runeLen(name)
		for _, r := range data {
			if i < len(r) {
				if l := runeLen(r[i]); l > w {
					w = l
				}
			}
		}
		if w > maxColWidth {
			w = maxColWidth
		}
		cols[i] = table.Column{Title: name, Width: w}
	}
	return cols
}

// runeLen counts runes so we don’t under/over-pad UTF-8 text.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if runeLen(s) <= n {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	i := 0
	for _, r := range s {
		if i >= n-1 {
			break
		}
		b.WriteRune(r)
		i++
	}
	b.WriteRune('…')
	return b.String()
}
