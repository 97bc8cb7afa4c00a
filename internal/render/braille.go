package render

import (
	"image/color"
	"math"
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Braille is a terminal surface. Each cell holds a braille rune, the colour
// of the last particle drawn into it and a halo colour from glows. Surface
// coordinates are device pixels; Scale pixels map onto one braille dot.
type Braille struct {
	Cols, Rows int
	Scale      float64
	Grid       [][]rune
	Fg         [][]color.RGBA
	Halo       [][]color.RGBA

	width, height int
}

func NewBraille(cols, rows int, scale float64) *Braille {
	if scale <= 0 {
		scale = 1
	}
	b := &Braille{Scale: scale}
	b.Resize(int(float64(cols*2)*scale), int(float64(rows*4)*scale))
	return b
}

func (b *Braille) Size() (int, int) { return b.width, b.height }

// Resize sets the pixel size and reallocates enough cells to cover it.
func (b *Braille) Resize(w, h int) {
	b.width, b.height = w, h
	cols := int(math.Ceil(float64(max(w, 0)) / b.Scale / 2))
	rows := int(math.Ceil(float64(max(h, 0)) / b.Scale / 4))

	b.Cols, b.Rows = cols, rows
	b.Grid = make([][]rune, rows)
	b.Fg = make([][]color.RGBA, rows)
	b.Halo = make([][]color.RGBA, rows)
	for i := range b.Grid {
		b.Grid[i] = make([]rune, cols)
		b.Fg[i] = make([]color.RGBA, cols)
		b.Halo[i] = make([]color.RGBA, cols)
	}
	b.Clear()
}

func (b *Braille) Clear() {
	for i := range b.Grid {
		for j := range b.Grid[i] {
			b.Grid[i][j] = brailleBlank
			b.Fg[i][j] = color.RGBA{}
			b.Halo[i][j] = color.RGBA{}
		}
	}
}

// Set lights a dot at (x, y) in dot coordinates. The canvas size in dots is
// (Cols*2) x (Rows*4).
func (b *Braille) Set(x, y int, c color.RGBA) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= b.Cols || row >= b.Rows {
		return
	}
	b.Grid[row][col] |= pixelMap[y%4][x%2]
	b.Fg[row][col] = c
}

func (b *Braille) FillCircle(x, y, r float64, c color.RGBA) {
	cx, cy := x/b.Scale, y/b.Scale
	dr := math.Max(r/b.Scale, 0.5)

	lit := false
	for dy := int(math.Floor(cy - dr)); dy <= int(math.Ceil(cy+dr)); dy++ {
		for dx := int(math.Floor(cx - dr)); dx <= int(math.Ceil(cx+dr)); dx++ {
			if math.Hypot(float64(dx)+0.5-cx, float64(dy)+0.5-cy) <= dr {
				b.Set(dx, dy, c)
				lit = true
			}
		}
	}
	if !lit {
		b.Set(int(math.Floor(cx)), int(math.Floor(cy)), c)
	}
}

// Glow tints the background of cells around the particle. The strongest halo
// wins per cell.
func (b *Braille) Glow(x, y, r, blur float64, c color.RGBA) {
	if blur <= 0 {
		return
	}
	// cell centres in pixel space are (col*2+1, row*4+2) dots
	cellW, cellH := 2*b.Scale, 4*b.Scale
	extent := r + blur

	col0 := max(int(math.Floor((x-extent)/cellW)), 0)
	col1 := min(int(math.Floor((x+extent)/cellW)), b.Cols-1)
	row0 := max(int(math.Floor((y-extent)/cellH)), 0)
	row1 := min(int(math.Floor((y+extent)/cellH)), b.Rows-1)

	for row := row0; row <= row1; row++ {
		for col := col0; col <= col1; col++ {
			d := math.Hypot((float64(col)+0.5)*cellW-x, (float64(row)+0.5)*cellH-y)
			t := 1.0
			if d > r {
				t = 1 - (d-r)/blur
			}
			if t <= 0 {
				continue
			}
			a := uint8(float64(c.A) * glowStrength * t * t)
			if a > b.Halo[row][col].A {
				b.Halo[row][col] = color.RGBA{R: c.R, G: c.G, B: c.B, A: a}
			}
		}
	}
}

func (b *Braille) String() string {
	var sb strings.Builder
	for _, row := range b.Grid {
		sb.WriteString(string(row) + "\n")
	}
	return sb.String()
}

// Lit counts cells with at least one dot set.
func (b *Braille) Lit() int {
	n := 0
	for _, row := range b.Grid {
		for _, r := range row {
			if r != brailleBlank {
				n++
			}
		}
	}
	return n
}
