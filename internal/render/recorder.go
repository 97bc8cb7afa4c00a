package render

import "image/color"

type Shape uint8

const (
	ShapeGlow Shape = iota
	ShapeCircle
)

// Command is one recorded draw call.
type Command struct {
	Shape Shape
	X, Y  float64
	R     float64
	Blur  float64
	Color color.RGBA
}

// Recorder is a surface that keeps the draw calls of the current frame
// instead of rasterizing them.
type Recorder struct {
	width, height int
	cmds          []Command
}

func NewRecorder(w, h int) *Recorder {
	return &Recorder{width: w, height: h}
}

func (r *Recorder) Size() (int, int)    { return r.width, r.height }
func (r *Recorder) Resize(w, h int)     { r.width, r.height = w, h }
func (r *Recorder) Clear()              { r.cmds = r.cmds[:0] }
func (r *Recorder) Commands() []Command { return r.cmds }

func (r *Recorder) FillCircle(x, y, rad float64, c color.RGBA) {
	r.cmds = append(r.cmds, Command{Shape: ShapeCircle, X: x, Y: y, R: rad, Color: c})
}

func (r *Recorder) Glow(x, y, rad, blur float64, c color.RGBA) {
	r.cmds = append(r.cmds, Command{Shape: ShapeGlow, X: x, Y: y, R: rad, Blur: blur, Color: c})
}

// Replay draws the recorded frame onto another surface.
func (r *Recorder) Replay(s Surface) {
	s.Clear()
	for _, c := range r.cmds {
		switch c.Shape {
		case ShapeGlow:
			s.Glow(c.X, c.Y, c.R, c.Blur, c.Color)
		case ShapeCircle:
			s.FillCircle(c.X, c.Y, c.R, c.Color)
		}
	}
}
