package config

import "sort"

// Presets tune the background look. Mail and server settings always come
// from the defaults.
var Presets = map[string]BackgroundConfig{
	"industrial": {
		Count: 80, Margin: 20, FPS: 60, Blur: 15,
	},
	"dense": {
		Count: 240, Margin: 20, FPS: 60, Blur: 10,
	},
	"calm": {
		Count: 40, Margin: 30, FPS: 30, Blur: 25,
	},
	"storm": {
		Count: 400, Margin: 40, FPS: 60, Blur: 6,
		Palette: PaletteConfig{Orange: "#ff5500cc", Cyan: "#e0f7ffcc", Blue: "#1e40afcc"},
	},
}

// GetPreset returns the default config with the named background preset
// applied, or nil when no such preset exists.
func GetPreset(name string) *Config {
	bg, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	bg.Width = cfg.Background.Width
	bg.Height = cfg.Background.Height
	bg.Ticks = cfg.Background.Ticks
	cfg.Background = bg
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
