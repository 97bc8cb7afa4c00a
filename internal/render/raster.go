package render

import (
	"image"
	"image/color"
	"math"
)

// glowStrength scales the halo alpha relative to the particle colour.
const glowStrength = 0.6

// Raster is an in-memory RGBA surface.
type Raster struct {
	img *image.RGBA
}

func NewRaster(w, h int) *Raster {
	r := &Raster{}
	r.Resize(w, h)
	return r
}

func (r *Raster) Image() *image.RGBA { return r.img }

func (r *Raster) Size() (int, int) {
	b := r.img.Bounds()
	return b.Dx(), b.Dy()
}

// Resize reallocates the pixel buffer. Negative sizes become empty images.
func (r *Raster) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	r.img = image.NewRGBA(image.Rect(0, 0, w, h))
}

func (r *Raster) Clear() {
	clear(r.img.Pix)
}

// FillCircle draws an anti-aliased disc using one-pixel edge coverage.
func (r *Raster) FillCircle(x, y, rad float64, c color.RGBA) {
	r.shade(x, y, rad+1, func(d float64) float64 {
		return clamp01(rad - d + 0.5)
	}, c)
}

// Glow draws a halo extending blur pixels past the radius with a quadratic
// falloff.
func (r *Raster) Glow(x, y, rad, blur float64, c color.RGBA) {
	if blur <= 0 {
		return
	}
	r.shade(x, y, rad+blur, func(d float64) float64 {
		if d <= rad {
			return glowStrength
		}
		t := 1 - (d-rad)/blur
		if t <= 0 {
			return 0
		}
		return glowStrength * t * t
	}, c)
}

func (r *Raster) shade(x, y, extent float64, coverage func(d float64) float64, c color.RGBA) {
	b := r.img.Bounds()
	x0 := max(int(math.Floor(x-extent)), b.Min.X)
	y0 := max(int(math.Floor(y-extent)), b.Min.Y)
	x1 := min(int(math.Ceil(x+extent)), b.Max.X)
	y1 := min(int(math.Ceil(y+extent)), b.Max.Y)

	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			d := math.Hypot(float64(px)+0.5-x, float64(py)+0.5-y)
			if cov := coverage(d); cov > 0 {
				r.blend(px, py, c, cov)
			}
		}
	}
}

// blend composites c over the pixel with source-over on premultiplied data.
func (r *Raster) blend(px, py int, c color.RGBA, cov float64) {
	a := cov * float64(c.A) / 255
	if a <= 0 {
		return
	}
	i := r.img.PixOffset(px, py)
	pix := r.img.Pix[i : i+4 : i+4]
	inv := 1 - a

	pix[0] = uint8(math.Round(float64(c.R)*a + float64(pix[0])*inv))
	pix[1] = uint8(math.Round(float64(c.G)*a + float64(pix[1])*inv))
	pix[2] = uint8(math.Round(float64(c.B)*a + float64(pix[2])*inv))
	pix[3] = uint8(math.Round(255*a + float64(pix[3])*inv))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
