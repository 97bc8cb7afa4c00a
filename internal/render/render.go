// Package render paints particle frames onto drawing surfaces.
//
// A [Surface] is any pixel-addressable target sized in device pixels:
//
//   - [Raster]: an in-memory RGBA image (PNG/GIF export, headless runs)
//   - [Braille]: a terminal canvas using 2x4 braille dots per cell
//   - [Recorder]: a draw-command list (websocket stream, SVG export)
//
// [Renderer] clears a surface and draws every particle as a soft glow halo
// under a filled circle. It never mutates particle state.
package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/san-kum/matflow/internal/particle"
)

const DefaultBlur = 15.0

// Surface is a drawing target sized in device pixels.
type Surface interface {
	Size() (w, h int)
	Resize(w, h int)
	Clear()
	FillCircle(x, y, r float64, c color.RGBA)
	Glow(x, y, r, blur float64, c color.RGBA)
}

// Palette maps colour classes to non-premultiplied RGBA colours.
type Palette [particle.NumClasses]color.RGBA

var DefaultPalette = Palette{
	particle.Orange: {R: 255, G: 170, B: 0, A: 204},
	particle.Cyan:   {R: 0, G: 240, B: 255, A: 204},
	particle.Blue:   {R: 59, G: 130, B: 246, A: 204},
}

func (p Palette) Color(c particle.ColorClass) color.RGBA {
	if int(c) >= len(p) {
		return color.RGBA{R: 255, G: 255, B: 255, A: 204}
	}
	return p[c]
}

// ParseHex parses "#rrggbb" or "#rrggbbaa".
func ParseHex(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if len(s) != 7 && len(s) != 9 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", s)
	}

	var vals [4]uint8
	vals[3] = 255
	for i := 0; i*2+1 < len(s); i++ {
		v, err := strconv.ParseUint(s[1+i*2:3+i*2], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
		}
		vals[i] = uint8(v)
	}
	return color.RGBA{R: vals[0], G: vals[1], B: vals[2], A: vals[3]}, nil
}

// Hex formats c as "#rrggbbaa".
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

type Renderer struct {
	Palette Palette
	Blur    float64
}

func NewRenderer() *Renderer {
	return &Renderer{Palette: DefaultPalette, Blur: DefaultBlur}
}

// Render clears s and draws one frame of the store. Later particles are drawn
// over earlier ones.
func (r *Renderer) Render(s Surface, store *particle.Store) {
	s.Clear()
	for _, p := range store.All() {
		c := r.Palette.Color(p.Class)
		if r.Blur > 0 {
			s.Glow(p.X, p.Y, p.Radius, r.Blur, c)
		}
		s.FillCircle(p.X, p.Y, p.Radius, c)
	}
}
