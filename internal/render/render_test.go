package render

import (
	"image/color"
	"testing"

	"github.com/san-kum/matflow/internal/particle"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#ffaa00", color.RGBA{255, 170, 0, 255}, false},
		{"#00F0FFcc", color.RGBA{0, 240, 255, 204}, false},
		{" #3b82f6 ", color.RGBA{59, 130, 246, 255}, false},
		{"ffaa00", color.RGBA{}, true},
		{"#ffaa0", color.RGBA{}, true},
		{"#gg0000", color.RGBA{}, true},
		{"#+f0000", color.RGBA{}, true},
		{"#ff00_0", color.RGBA{}, true},
		{"", color.RGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHex(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestHexRoundTrip(t *testing.T) {
	for _, c := range DefaultPalette {
		got, err := ParseHex(Hex(c))
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if got != c {
			t.Errorf("round trip %v -> %v", c, got)
		}
	}
}

func TestPaletteColor(t *testing.T) {
	if DefaultPalette.Color(particle.Cyan) != (color.RGBA{0, 240, 255, 204}) {
		t.Error("unexpected cyan")
	}
	if c := DefaultPalette.Color(particle.ColorClass(7)); c.A == 0 {
		t.Error("expected fallback colour for unknown class")
	}
}

func TestRendererDrawOrder(t *testing.T) {
	st := particle.NewStore(3, particle.NewSpawner(1), 200, 100)
	rec := NewRecorder(200, 100)
	rec.FillCircle(1, 1, 1, color.RGBA{}) // stale command from a previous frame

	NewRenderer().Render(rec, st)

	cmds := rec.Commands()
	if len(cmds) != 6 {
		t.Fatalf("expected 6 commands (glow+circle per particle), got %d", len(cmds))
	}
	for i, p := range st.All() {
		glow, fill := cmds[i*2], cmds[i*2+1]
		if glow.Shape != ShapeGlow || fill.Shape != ShapeCircle {
			t.Errorf("particle %d: expected glow before circle", i)
		}
		if fill.X != p.X || fill.Y != p.Y || fill.R != p.Radius {
			t.Errorf("particle %d: circle does not match particle", i)
		}
		if fill.Color != DefaultPalette.Color(p.Class) {
			t.Errorf("particle %d: wrong colour", i)
		}
		if glow.Blur != DefaultBlur {
			t.Errorf("particle %d: expected blur %f, got %f", i, DefaultBlur, glow.Blur)
		}
	}
}

func TestRendererNoGlow(t *testing.T) {
	st := particle.NewStore(4, particle.NewSpawner(1), 200, 100)
	rec := NewRecorder(200, 100)

	r := NewRenderer()
	r.Blur = 0
	r.Render(rec, st)

	for _, c := range rec.Commands() {
		if c.Shape == ShapeGlow {
			t.Fatal("glow drawn with zero blur")
		}
	}
}

func TestRendererReadOnly(t *testing.T) {
	st := particle.NewStore(20, particle.NewSpawner(4), 300, 300)
	before := st.Snapshot()

	NewRenderer().Render(NewRaster(300, 300), st)

	for i, p := range st.All() {
		if p != before[i] {
			t.Fatalf("particle %d mutated by render", i)
		}
	}
}

func TestRasterFillCircle(t *testing.T) {
	r := NewRaster(40, 40)
	r.FillCircle(20, 20, 5, color.RGBA{255, 0, 0, 255})

	img := r.Image()
	center := img.RGBAAt(20, 20)
	if center.R != 255 || center.A != 255 {
		t.Errorf("expected opaque red centre, got %v", center)
	}
	if corner := img.RGBAAt(0, 0); corner.A != 0 {
		t.Errorf("expected transparent corner, got %v", corner)
	}
}

func TestRasterGlowFalloff(t *testing.T) {
	r := NewRaster(100, 20)
	r.Glow(10, 10, 3, 15, color.RGBA{0, 240, 255, 204})

	img := r.Image()
	near := img.RGBAAt(14, 10).A
	far := img.RGBAAt(24, 10).A
	outside := img.RGBAAt(40, 10).A

	if near <= far {
		t.Errorf("expected glow to fade: near %d, far %d", near, far)
	}
	if outside != 0 {
		t.Errorf("expected no glow past radius+blur, got alpha %d", outside)
	}
}

func TestRasterClipping(t *testing.T) {
	r := NewRaster(10, 10)
	// partially and fully off-surface draws must not panic
	r.FillCircle(-20, 5, 6, color.RGBA{255, 255, 255, 255})
	r.FillCircle(-2, -2, 6, color.RGBA{255, 255, 255, 255})
	r.Glow(12, 12, 4, 15, color.RGBA{255, 255, 255, 255})

	if r.Image().RGBAAt(0, 0).A == 0 {
		t.Error("expected the clipped circle to reach the corner")
	}
}

func TestRasterResizeAndClear(t *testing.T) {
	r := NewRaster(10, 10)
	r.FillCircle(5, 5, 3, color.RGBA{255, 255, 255, 255})
	r.Clear()
	for _, v := range r.Image().Pix {
		if v != 0 {
			t.Fatal("clear left pixels behind")
		}
	}

	r.Resize(30, 20)
	if w, h := r.Size(); w != 30 || h != 20 {
		t.Errorf("expected 30x20, got %dx%d", w, h)
	}

	r.Resize(-5, -5)
	if w, h := r.Size(); w != 0 || h != 0 {
		t.Errorf("expected empty raster for negative size, got %dx%d", w, h)
	}
	r.FillCircle(0, 0, 3, color.RGBA{255, 255, 255, 255})
}

func TestBrailleSet(t *testing.T) {
	b := NewBraille(4, 2, 1)
	if w, h := b.Size(); w != 8 || h != 8 {
		t.Fatalf("expected 8x8 pixels, got %dx%d", w, h)
	}

	b.Set(0, 0, color.RGBA{255, 0, 0, 255})
	b.Set(1, 3, color.RGBA{255, 0, 0, 255})
	if b.Grid[0][0] != 0x2800|0x1|0x80 {
		t.Errorf("unexpected rune %U", b.Grid[0][0])
	}

	b.Set(-1, 0, color.RGBA{})
	b.Set(100, 100, color.RGBA{})
	if b.Lit() != 1 {
		t.Errorf("expected 1 lit cell, got %d", b.Lit())
	}

	b.Clear()
	if b.Lit() != 0 {
		t.Error("expected clear canvas")
	}
}

func TestBrailleScale(t *testing.T) {
	b := NewBraille(10, 5, 4)
	if w, h := b.Size(); w != 80 || h != 80 {
		t.Fatalf("expected 80x80 pixels, got %dx%d", w, h)
	}

	c := color.RGBA{0, 240, 255, 204}
	b.FillCircle(40, 40, 3, c)
	row, col := 40/4/4, 40/4/2
	if b.Grid[row][col] == brailleBlank {
		t.Error("expected dots around the particle")
	}
	if b.Fg[row][col] != c {
		t.Errorf("expected cell colour %v, got %v", c, b.Fg[row][col])
	}

	b.Glow(40, 40, 3, 15, c)
	if b.Halo[row][col].A == 0 {
		t.Error("expected halo under the particle")
	}
	if b.Halo[0][0].A != 0 {
		t.Error("expected no halo far from the particle")
	}
}

func TestBrailleResize(t *testing.T) {
	b := NewBraille(4, 4, 2)
	b.Resize(33, 17)
	if b.Cols != 9 || b.Rows != 3 {
		t.Errorf("expected 9x3 cells, got %dx%d", b.Cols, b.Rows)
	}
	b.Resize(-1, 0)
	if b.Cols != 0 || b.Rows != 0 {
		t.Errorf("expected no cells, got %dx%d", b.Cols, b.Rows)
	}
	b.FillCircle(1, 1, 2, color.RGBA{})
	b.Glow(1, 1, 2, 5, color.RGBA{A: 255})
}

func TestRecorderReplay(t *testing.T) {
	st := particle.NewStore(5, particle.NewSpawner(8), 100, 100)
	rec := NewRecorder(100, 100)
	NewRenderer().Render(rec, st)

	direct := NewRaster(100, 100)
	NewRenderer().Render(direct, st)

	replayed := NewRaster(100, 100)
	rec.Replay(replayed)

	a, b := direct.Image().Pix, replayed.Image().Pix
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("replay differs at byte %d", i)
		}
	}
}
