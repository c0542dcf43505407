package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/frops/planner/pkg/domain/timeline"
)

// TerminalOptions controls text rendering.
type TerminalOptions struct {
	// CellWidth is the number of characters per period column.
	CellWidth int
	// LabelWidth is the width of the task label gutter.
	LabelWidth int
	NoColor    bool
}

func (o TerminalOptions) normalized() TerminalOptions {
	if o.CellWidth <= 0 {
		o.CellWidth = 16
	}
	if o.LabelWidth <= 0 {
		o.LabelWidth = 24
	}
	return o
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	gridStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	todayStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

const (
	barRune   = '█'
	gridRune  = '·'
	edgeRune  = '│'
	todayRune = '┃'
)

// Terminal renders v as a text Gantt chart. Bars are scaled from pixel
// geometry to character cells so the chart matches the SVG layout.
func Terminal(v *timeline.View, opts TerminalOptions) string {
	opts = opts.normalized()
	scale := float64(opts.CellWidth) / v.PeriodWidth
	cols := len(v.Columns) * opts.CellWidth

	style := func(s lipgloss.Style, text string) string {
		if opts.NoColor {
			return text
		}
		return s.Render(text)
	}

	todayCol := -1
	if v.Today.Visible {
		todayCol = min(int(math.Round(v.Today.PixelOffset*scale)), cols-1)
	}

	var b strings.Builder

	b.WriteString(strings.Repeat(" ", opts.LabelWidth))
	for _, col := range v.Columns {
		b.WriteString(style(headerStyle, fit(col.Label, opts.CellWidth)))
	}
	b.WriteString("\n")

	if len(v.Tasks) == 0 {
		b.WriteString(style(labelStyle, fit("(no tasks in range)", opts.LabelWidth)))
		b.WriteString(style(gridStyle, gridLine(cols, opts.CellWidth, todayCol)))
		b.WriteString("\n")
	}

	for _, p := range v.Tasks {
		b.WriteString(style(labelStyle, fit(p.Task.Code+" "+p.Task.Title, opts.LabelWidth)))

		start := int(math.Round(p.Left * scale))
		end := max(int(math.Round((p.Left+p.Width)*scale)), start+1)
		start, end = max(start, 0), min(end, cols)

		line := []rune(gridLine(cols, opts.CellWidth, todayCol))
		barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color.Hex))

		var row strings.Builder
		row.WriteString(style(gridStyle, string(line[:start])))
		row.WriteString(style(barStyle, strings.Repeat(string(barRune), end-start)))
		row.WriteString(styleTail(line[end:], todayCol-end, opts.NoColor))
		b.WriteString(row.String())
		b.WriteString("\n")
	}

	return b.String()
}

// styleTail renders the grid after a bar, highlighting the today marker.
func styleTail(tail []rune, todayIdx int, noColor bool) string {
	if noColor {
		return string(tail)
	}
	if todayIdx < 0 || todayIdx >= len(tail) {
		return gridStyle.Render(string(tail))
	}
	return gridStyle.Render(string(tail[:todayIdx])) +
		todayStyle.Render(string(tail[todayIdx])) +
		gridStyle.Render(string(tail[todayIdx+1:]))
}

func gridLine(cols, cellWidth, todayCol int) string {
	line := make([]rune, cols)
	for i := range line {
		switch {
		case i == todayCol:
			line[i] = todayRune
		case i%cellWidth == 0:
			line[i] = edgeRune
		default:
			line[i] = gridRune
		}
	}
	return string(line)
}

// fit pads or truncates s to exactly width runes.
func fit(s string, width int) string {
	r := []rune(s)
	if len(r) > width-1 {
		if width <= 1 {
			return string(r[:width])
		}
		return string(r[:width-2]) + "… "
	}
	return s + strings.Repeat(" ", width-len(r))
}
