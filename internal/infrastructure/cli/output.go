package cli

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			PaddingLeft(1).
			PaddingRight(1)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// renderTable draws rows as a static bubbles table. Columns are sized to
// their widest cell so nothing is truncated.
func renderTable(titles []string, rows []table.Row, noColor bool) string {
	columns := make([]table.Column, len(titles))
	for i, name := range titles {
		width := lipgloss.Width(name)
		for _, row := range rows {
			if i < len(row) {
				width = max(width, lipgloss.Width(row[i]))
			}
		}
		columns[i] = table.Column{Title: name, Width: width}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
	)
	t.Blur()

	s := table.DefaultStyles()
	s.Selected = s.Cell
	if noColor {
		s.Header = lipgloss.NewStyle().Padding(0, 1)
	} else {
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(true)
	}
	t.SetStyles(s)

	return strings.TrimRight(t.View(), "\n") + "\n"
}

func heading(s string, noColor bool) string {
	if noColor {
		return s
	}
	return titleStyle.Render(s)
}

func muted(s string, noColor bool) string {
	if noColor {
		return s
	}
	return mutedStyle.Render(s)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
