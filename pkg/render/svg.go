// Package render draws composed timeline views as SVG documents and as
// terminal text.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/frops/planner/pkg/domain/timeline"
)

// SVGStyle controls the chrome around the timeline grid.
type SVGStyle struct {
	HeaderHeight  float64
	LabelWidth    float64
	BarPadding    float64
	FontFamily    string
	FontSize      int
	Background    string
	TextColor     string
	GridColor     string
	BoundaryColor string
	TodayColor    string
}

// DefaultSVGStyle returns a light theme sized for 200px columns.
func DefaultSVGStyle() SVGStyle {
	return SVGStyle{
		HeaderHeight:  32,
		LabelWidth:    180,
		BarPadding:    4,
		FontFamily:    "Helvetica, Arial, sans-serif",
		FontSize:      12,
		Background:    "#ffffff",
		TextColor:     "#111827",
		GridColor:     "#f3f4f6",
		BoundaryColor: "#d1d5db",
		TodayColor:    "#ef4444",
	}
}

// SVG renders v as a standalone SVG document.
func SVG(v *timeline.View, style SVGStyle) string {
	gridX := style.LabelWidth
	gridY := style.HeaderHeight
	width := gridX + v.Width
	height := gridY + v.Height

	var svg strings.Builder
	fmt.Fprintf(&svg, `<?xml version="1.0" encoding="UTF-8"?>
<svg width="%s" height="%s" viewBox="0 0 %s %s" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="%s"/>
<defs>
<style>
.label { font-family: %s; font-size: %dpx; fill: %s; }
.header { font-family: %s; font-size: %dpx; font-weight: bold; fill: %s; }
</style>
</defs>
`, num(width), num(height), num(width), num(height), style.Background,
		style.FontFamily, style.FontSize, style.TextColor,
		style.FontFamily, style.FontSize, style.TextColor)

	for _, sep := range v.Separators {
		stroke, strokeWidth := style.GridColor, 1
		if sep.Boundary {
			stroke, strokeWidth = style.BoundaryColor, 2
		}
		x := gridX + sep.Left
		fmt.Fprintf(&svg, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%d"/>`+"\n",
			num(x), num(gridY), num(x), num(height), stroke, strokeWidth)
	}

	for _, col := range v.Columns {
		fmt.Fprintf(&svg, `<text class="header" x="%s" y="%s" text-anchor="middle">%s</text>`+"\n",
			num(gridX+col.Left+col.Width/2), num(gridY-10), escapeXML(col.Label))
	}

	for _, p := range v.Tasks {
		y := gridY + p.Top(v.RowHeight)
		fmt.Fprintf(&svg, `<text class="label" x="8" y="%s">%s</text>`+"\n",
			num(y+v.RowHeight/2+float64(style.FontSize)/3), escapeXML(p.Task.Code+" "+p.Task.Title))
		fmt.Fprintf(&svg, `<rect x="%s" y="%s" width="%s" height="%s" rx="3" fill="%s"><title>%s</title></rect>`+"\n",
			num(gridX+p.Left), num(y+style.BarPadding), num(p.Width), num(v.RowHeight-2*style.BarPadding),
			p.Color.Hex, escapeXML(barTitle(p)))
	}

	if v.Today.Visible {
		x := gridX + v.Today.PixelOffset
		fmt.Fprintf(&svg, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="2"/>`+"\n",
			num(x), num(gridY), num(x), num(height), style.TodayColor)
	}

	svg.WriteString("</svg>\n")
	return svg.String()
}

// WriteSVG renders v to w.
func WriteSVG(w io.Writer, v *timeline.View, style SVGStyle) error {
	_, err := io.WriteString(w, SVG(v, style))
	return err
}

func barTitle(p timeline.PlacedTask) string {
	return fmt.Sprintf("%s: %s (%s to %s)", p.Task.Code, p.Task.Title, p.Task.StartDate, p.Task.EndDate)
}

// num formats a coordinate with at most two decimals.
func num(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// escapeXML escapes special XML characters for embedding in SVG content.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
