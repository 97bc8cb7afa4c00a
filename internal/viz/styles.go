package viz

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/matflow/internal/render"
)

var (
	statusRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	statusPaused = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	statusRecording = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444")).
			Blink(true)

	statusDisabled = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#888899"))

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// sidebarStyle builds the stats panel style for a theme.
func sidebarStyle(t Theme) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(t.Muted).
		Padding(1, 2).
		Width(sidebarWidth - 3)
}

func headerStyle(t Theme) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1)
}

// ClassBar renders a share in [0, 1] as a bar tinted with the class colour.
func ClassBar(share float64, width int, c color.RGBA) string {
	filled := int(share*float64(width) + 0.5)
	filled = min(max(filled, 0), width)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex6(c))).Render(bar)
}

// SparklineChart renders a mini sparkline from values.
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	start := max(len(values)-width, 0)
	var sb strings.Builder
	for _, v := range values[start:] {
		idx := int((v - lo) / rng * float64(len(chars)-1))
		sb.WriteRune(chars[min(max(idx, 0), len(chars)-1)])
	}
	return sb.String()
}

func hex6(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// over composites c onto an opaque base.
func over(base, c color.RGBA) color.RGBA {
	a := float64(c.A) / 255
	mix := func(b, s uint8) uint8 {
		return uint8(float64(s)*a + float64(b)*(1-a) + 0.5)
	}
	return color.RGBA{R: mix(base.R, c.R), G: mix(base.G, c.G), B: mix(base.B, c.B), A: 255}
}

type cellKey struct {
	fg, bg color.RGBA
}

// cellStyles caches one lipgloss style per foreground/background pair.
type cellStyles struct {
	styles map[cellKey]lipgloss.Style
}

func newCellStyles() *cellStyles {
	return &cellStyles{styles: make(map[cellKey]lipgloss.Style)}
}

func (c *cellStyles) get(fg, bg color.RGBA) lipgloss.Style {
	k := cellKey{fg, bg}
	if s, ok := c.styles[k]; ok {
		return s
	}
	s := lipgloss.NewStyle().
		Foreground(lipgloss.Color(hex6(fg))).
		Background(lipgloss.Color(hex6(bg)))
	c.styles[k] = s
	return s
}

// paintBraille renders the braille grid with per-cell colours. Runs of
// cells sharing colours are rendered with one style call.
func paintBraille(b *render.Braille, base color.RGBA, styles *cellStyles) string {
	var sb strings.Builder
	var run []rune
	for row := range b.Grid {
		var cur cellKey
		run = run[:0]
		for col, r := range b.Grid[row] {
			bg := over(base, b.Halo[row][col])
			fg := over(bg, b.Fg[row][col])
			k := cellKey{fg, bg}
			if len(run) > 0 && k != cur {
				sb.WriteString(styles.get(cur.fg, cur.bg).Render(string(run)))
				run = run[:0]
			}
			cur = k
			run = append(run, r)
		}
		if len(run) > 0 {
			sb.WriteString(styles.get(cur.fg, cur.bg).Render(string(run)))
		}
		if row < len(b.Grid)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
