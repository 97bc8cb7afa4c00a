package export

import (
	"errors"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"io"
	"os"

	xdraw "golang.org/x/image/draw"
)

var ErrNoFrames = errors.New("export: no frames captured")

// Flatten composites img over an opaque background colour.
func Flatten(img image.Image, bg color.RGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	bg.A = 255
	draw.Draw(out, b, &image.Uniform{C: bg}, image.Point{}, draw.Src)
	draw.Draw(out, b, img, b.Min, draw.Over)
	return out
}

func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePNG(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Downscale returns img scaled to at most maxWidth pixels wide, keeping the
// aspect ratio. Images already narrow enough are returned unchanged.
func Downscale(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}
	h := max(b.Dy()*maxWidth/b.Dx(), 1)
	out := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	xdraw.ApproxBiLinear.Scale(out, out.Bounds(), img, b, draw.Src, nil)
	return out
}

// Animation collects frames for an animated GIF. Frames are dithered onto
// the web-safe palette.
type Animation struct {
	Delay     int // hundredths of a second per frame
	MaxFrames int
	// MaxWidth downscales wider frames before quantizing. Zero keeps them.
	MaxWidth int
	frames   []*image.Paletted
}

func NewAnimation(delay, maxFrames int) *Animation {
	return &Animation{Delay: delay, MaxFrames: maxFrames}
}

// Add quantizes img and appends it. It reports false once MaxFrames is
// reached.
func (a *Animation) Add(img image.Image) bool {
	if a.MaxFrames > 0 && len(a.frames) >= a.MaxFrames {
		return false
	}
	img = Downscale(img, a.MaxWidth)
	b := img.Bounds()
	p := image.NewPaletted(b, palette.WebSafe)
	draw.FloydSteinberg.Draw(p, b, img, b.Min)
	a.frames = append(a.frames, p)
	return true
}

func (a *Animation) Len() int { return len(a.frames) }

func (a *Animation) Encode(w io.Writer) error {
	if len(a.frames) == 0 {
		return ErrNoFrames
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range a.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, a.Delay)
	}
	return gif.EncodeAll(w, &anim)
}

func (a *Animation) Save(path string) error {
	if len(a.frames) == 0 {
		return ErrNoFrames
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := a.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
