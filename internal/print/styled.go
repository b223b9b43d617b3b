package print

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/bgunnarsson/dictbase/internal/record"
)

// Catppuccin Mocha, same palette as the browser.
var (
	borderColor = lipgloss.Color("#595B72")
	titleColor  = lipgloss.Color("#89DCEB")
	mantle      = lipgloss.Color("#181825")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(titleColor).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	zebraStyle  = cellStyle.Background(mantle)
)

// RenderStyled writes rows as a bordered lipgloss table, for terminals.
func RenderStyled(w io.Writer, header []string, rows []record.Row, opts Options) {
	if len(header) == 0 {
		fmt.Fprintln(w, "(no columns)")
		return
	}
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = 40
	}

	data := Cells(rows, header)
	for _, r := range data {
		for i := range r {
			r[i] = truncate(r[i], opts.MaxWidth)
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(borderColor)).
		Headers(header...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row%2 == 1:
				return zebraStyle
			default:
				return cellStyle
			}
		})

	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "(%d rows)\n", len(rows))
}
