package server

import (
	"fmt"
	"html/template"
	"math"
	"strings"

	"stock-dashboard/src/models"
)

const (
	chartWidth   = 800
	chartHeight  = 320
	chartPadding = 24

	colorUp       = "#16a34a"
	colorDown     = "#dc2626"
	colorSMAShort = "#f59e0b"
	colorSMALong  = "#6366f1"
)

// chartInput is everything drawn on the price chart. The overlays are aligned
// index for index with Bars.
type chartInput struct {
	Bars     []models.MBar
	SMAShort []models.MIndicatorPoint
	SMALong  []models.MIndicatorPoint
	Up       bool
}

// -----------------------------------------------------------------------------

// renderChart draws closes as a filled area with SMA polylines on top. The
// output is a self-contained inline SVG element.
func renderChart(in chartInput) template.HTML {
	if len(in.Bars) == 0 {
		return ""
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, b := range in.Bars {
		lo = math.Min(lo, b.Close)
		hi = math.Max(hi, b.Close)
	}
	for _, series := range [][]models.MIndicatorPoint{in.SMAShort, in.SMALong} {
		for _, p := range series {
			if p.Valid {
				lo = math.Min(lo, p.Value)
				hi = math.Max(hi, p.Value)
			}
		}
	}
	if hi == lo {
		hi, lo = hi+1, lo-1
	}

	plotW := float64(chartWidth - 2*chartPadding)
	plotH := float64(chartHeight - 2*chartPadding)
	n := len(in.Bars)
	x := func(i int) float64 {
		if n == 1 {
			return chartPadding + plotW/2
		}
		return chartPadding + plotW*float64(i)/float64(n-1)
	}
	y := func(v float64) float64 {
		return chartPadding + plotH*(hi-v)/(hi-lo)
	}

	color := colorUp
	if !in.Up {
		color = colorDown
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" class="chart" role="img">`, chartWidth, chartHeight)

	// grid and price labels
	for i := 0; i <= 4; i++ {
		v := lo + (hi-lo)*float64(i)/4
		gy := y(v)
		fmt.Fprintf(&sb, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#e5e7eb" stroke-width="1"/>`,
			chartPadding, gy, chartWidth-chartPadding, gy)
		fmt.Fprintf(&sb, `<text x="%d" y="%.1f" font-size="10" fill="#6b7280">%s</text>`,
			chartPadding+2, gy-2, template.HTMLEscapeString(formatPrice(v)))
	}

	line := make([]string, n)
	for i, b := range in.Bars {
		line[i] = fmt.Sprintf("%.1f,%.1f", x(i), y(b.Close))
	}
	base := float64(chartHeight - chartPadding)
	area := fmt.Sprintf("%.1f,%.1f %s %.1f,%.1f", x(0), base, strings.Join(line, " "), x(n-1), base)

	fmt.Fprintf(&sb, `<polygon points="%s" fill="%s" fill-opacity="0.12" stroke="none"/>`, area, color)
	fmt.Fprintf(&sb, `<polyline points="%s" fill="none" stroke="%s" stroke-width="2"/>`, strings.Join(line, " "), color)

	writeOverlay(&sb, in.SMAShort, x, y, colorSMAShort)
	writeOverlay(&sb, in.SMALong, x, y, colorSMALong)

	sb.WriteString(`</svg>`)
	return template.HTML(sb.String())
}

// writeOverlay draws the valid stretch of an indicator; points before the
// window fills are skipped.
func writeOverlay(sb *strings.Builder, points []models.MIndicatorPoint, x func(int) float64, y func(float64) float64, color string) {
	coords := make([]string, 0, len(points))
	for i, p := range points {
		if p.Valid {
			coords = append(coords, fmt.Sprintf("%.1f,%.1f", x(i), y(p.Value)))
		}
	}
	if len(coords) < 2 {
		return
	}
	fmt.Fprintf(sb, `<polyline points="%s" fill="none" stroke="%s" stroke-width="1.5" stroke-dasharray="4 2"/>`,
		strings.Join(coords, " "), color)
}
