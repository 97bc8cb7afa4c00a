package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the colour scheme of the terminal host. Background is the
// canvas colour that particle halos are blended over.
type Theme struct {
	Name       string
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
	Warning    lipgloss.Color
}

// newTheme takes colours in field order. Warning reuses Secondary, which
// every palette below keeps warm.
func newTheme(name, primary, secondary, accent, bg, text, muted string) Theme {
	return Theme{
		Name:       name,
		Primary:    lipgloss.Color(primary),
		Secondary:  lipgloss.Color(secondary),
		Accent:     lipgloss.Color(accent),
		Background: lipgloss.Color(bg),
		Text:       lipgloss.Color(text),
		Muted:      lipgloss.Color(muted),
		Warning:    lipgloss.Color(secondary),
	}
}

var (
	// ThemeIndustrial matches the particle palette on a navy canvas.
	ThemeIndustrial = newTheme("industrial", "#00f0ff", "#ffaa00", "#3b82f6", "#0a0e1a", "#e5e7eb", "#4b5563")
	ThemeSlate      = newTheme("slate", "#94a3b8", "#f59e0b", "#38bdf8", "#0f172a", "#e2e8f0", "#475569")
	ThemeEmber      = newTheme("ember", "#fb923c", "#fbbf24", "#ef4444", "#1c0f0a", "#fde7d9", "#7c4a36")
	ThemeAurora     = newTheme("aurora", "#34d399", "#facc15", "#a78bfa", "#06121a", "#ecfdf5", "#3f6b63")
	ThemeMono       = newTheme("mono", "#d4d4d4", "#fafafa", "#a3a3a3", "#000000", "#f5f5f5", "#525252")

	Themes = []Theme{ThemeIndustrial, ThemeSlate, ThemeEmber, ThemeAurora, ThemeMono}
)

func themeIndex(name string) int {
	for i, t := range Themes {
		if t.Name == name {
			return i
		}
	}
	return -1
}

// GetTheme returns a theme by name, falling back to industrial.
func GetTheme(name string) Theme {
	if i := themeIndex(name); i >= 0 {
		return Themes[i]
	}
	return ThemeIndustrial
}

// NextTheme cycles through Themes. An unknown theme restarts the cycle.
func NextTheme(current Theme) Theme {
	return Themes[(themeIndex(current.Name)+1)%len(Themes)]
}

func ThemeNames() []string {
	names := make([]string, 0, len(Themes))
	for _, t := range Themes {
		names = append(names, t.Name)
	}
	return names
}
