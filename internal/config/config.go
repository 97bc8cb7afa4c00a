package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/matflow/internal/lifecycle"
	"github.com/san-kum/matflow/internal/particle"
	"github.com/san-kum/matflow/internal/render"
	"github.com/san-kum/matflow/internal/sim"
)

const (
	DefaultWidth       = 1280
	DefaultHeight      = 720
	DefaultFPS         = 60
	DefaultTicks       = 600
	DefaultAddr        = ":8080"
	DefaultMaxSessions = 32
	DefaultAPIKeyEnv   = "RESEND_API_KEY"
	DefaultFrom        = "Portfolio <onboarding@resend.dev>"
	DefaultSubject     = "New message from"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Background BackgroundConfig `yaml:"background"`
	Mail       MailConfig       `yaml:"mail"`
	Server     ServerConfig     `yaml:"server"`
}

type BackgroundConfig struct {
	Count   int           `yaml:"count"`
	Margin  float64       `yaml:"margin"`
	FPS     int           `yaml:"fps"`
	Seed    int64         `yaml:"seed"`
	Width   int           `yaml:"width"`
	Height  int           `yaml:"height"`
	Ticks   int           `yaml:"ticks"`
	Blur    float64       `yaml:"blur"`
	Palette PaletteConfig `yaml:"palette"`
}

// PaletteConfig overrides class colours with "#rrggbb" or "#rrggbbaa".
// Empty entries keep the default colour.
type PaletteConfig struct {
	Orange string `yaml:"orange,omitempty"`
	Cyan   string `yaml:"cyan,omitempty"`
	Blue   string `yaml:"blue,omitempty"`
}

type MailConfig struct {
	From          string `yaml:"from"`
	To            string `yaml:"to"`
	APIKeyEnv     string `yaml:"api_key_env"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

type ServerConfig struct {
	Addr        string `yaml:"addr"`
	MaxSessions int    `yaml:"max_sessions"`
}

func DefaultConfig() *Config {
	return &Config{
		Background: BackgroundConfig{
			Count:  particle.DefaultCount,
			Margin: particle.Margin,
			FPS:    DefaultFPS,
			Width:  DefaultWidth,
			Height: DefaultHeight,
			Ticks:  DefaultTicks,
			Blur:   render.DefaultBlur,
		},
		Mail: MailConfig{
			From:          DefaultFrom,
			APIKeyEnv:     DefaultAPIKeyEnv,
			SubjectPrefix: DefaultSubject,
		},
		Server: ServerConfig{
			Addr:        DefaultAddr,
			MaxSessions: DefaultMaxSessions,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	bg := c.Background
	switch {
	case bg.Count <= 0:
		return fmt.Errorf("%w: background.count must be positive, got %d", ErrInvalidConfig, bg.Count)
	case bg.Margin < 0:
		return fmt.Errorf("%w: background.margin must not be negative, got %g", ErrInvalidConfig, bg.Margin)
	case bg.FPS <= 0:
		return fmt.Errorf("%w: background.fps must be positive, got %d", ErrInvalidConfig, bg.FPS)
	case bg.Ticks < 0:
		return fmt.Errorf("%w: background.ticks must not be negative, got %d", ErrInvalidConfig, bg.Ticks)
	case bg.Blur < 0:
		return fmt.Errorf("%w: background.blur must not be negative, got %g", ErrInvalidConfig, bg.Blur)
	case c.Server.MaxSessions < 0:
		return fmt.Errorf("%w: server.max_sessions must not be negative, got %d", ErrInvalidConfig, c.Server.MaxSessions)
	}
	if _, err := c.Palette(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Palette resolves the configured colours over the default palette.
func (c *Config) Palette() (render.Palette, error) {
	p := render.DefaultPalette
	overrides := []struct {
		class particle.ColorClass
		hex   string
	}{
		{particle.Orange, c.Background.Palette.Orange},
		{particle.Cyan, c.Background.Palette.Cyan},
		{particle.Blue, c.Background.Palette.Blue},
	}
	for _, o := range overrides {
		if o.hex == "" {
			continue
		}
		col, err := render.ParseHex(o.hex)
		if err != nil {
			return p, fmt.Errorf("palette.%s: %w", o.class, err)
		}
		p[o.class] = col
	}
	return p, nil
}

// Renderer builds a renderer from the palette and blur settings. The
// palette is assumed valid; invalid entries fall back to the defaults.
func (c *Config) Renderer() *render.Renderer {
	r := render.NewRenderer()
	if p, err := c.Palette(); err == nil {
		r.Palette = p
	}
	r.Blur = c.Background.Blur
	return r
}

func (c *Config) ControllerOptions() lifecycle.Options {
	return lifecycle.Options{
		Count:    c.Background.Count,
		Margin:   c.Background.Margin,
		Seed:     c.Background.Seed,
		Renderer: c.Renderer(),
	}
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Width:  float64(c.Background.Width),
		Height: float64(c.Background.Height),
		Ticks:  c.Background.Ticks,
		Count:  c.Background.Count,
		Margin: c.Background.Margin,
		Seed:   c.Background.Seed,
	}
}
