package viz

import (
	"image/color"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/matflow/internal/lifecycle"
	"github.com/san-kum/matflow/internal/particle"
	"github.com/san-kum/matflow/internal/render"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	opts := lifecycle.DefaultOptions()
	opts.Seed = 11
	return NewModel(Options{
		Controller: opts,
		Scale:      2,
		GIFPath:    filepath.Join(t.TempDir(), "out.gif"),
	})
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", next)
	}
	return nm, cmd
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModelMounts(t *testing.T) {
	m := newTestModel(t)
	if m.ctrl.State() != lifecycle.Running {
		t.Fatalf("expected running, got %s", m.ctrl.State())
	}
	if m.Init() == nil {
		t.Error("expected tick command from Init")
	}
	w, h := m.ctrl.Size()
	if w != float64((defaultCols-sidebarWidth)*2*2) || h != float64((defaultRows-statusHeight)*4*2) {
		t.Errorf("unexpected initial surface %fx%f", w, h)
	}
}

func TestTickAdvancesFrames(t *testing.T) {
	m := newTestModel(t)
	for range 10 {
		var cmd tea.Cmd
		m, cmd = update(t, m, TickMsg(time.Now()))
		if cmd == nil {
			t.Fatal("expected next tick")
		}
	}
	if m.ctrl.Frames() != 10 {
		t.Errorf("expected 10 frames, got %d", m.ctrl.Frames())
	}
	if len(m.recycleHistory) != 10 {
		t.Errorf("expected 10 history entries, got %d", len(m.recycleHistory))
	}
}

func TestPause(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m, _ = update(t, m, TickMsg(time.Now()))
	if m.ctrl.Frames() != 0 {
		t.Errorf("expected no frames while paused, got %d", m.ctrl.Frames())
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("expected paused status")
	}
}

func TestWindowResize(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 138, Height: 41})

	w, h := m.ctrl.Size()
	if w != 100*2*2 || h != 40*4*2 {
		t.Errorf("expected 400x320, got %fx%f", w, h)
	}
	if m.canvas.Cols != 100 || m.canvas.Rows != 40 {
		t.Errorf("expected 100x40 cells, got %dx%d", m.canvas.Cols, m.canvas.Rows)
	}

	m, _ = update(t, m, key("s"))
	if w, _ := m.ctrl.Size(); w != 138*2*2 {
		t.Errorf("expected full width without sidebar, got %f", w)
	}
}

func TestQuitTearsDown(t *testing.T) {
	m := newTestModel(t)
	m, cmd := update(t, m, key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if m.ctrl.State() != lifecycle.TornDown {
		t.Errorf("expected torn down, got %s", m.ctrl.State())
	}
	if m.sched.Pending() != 0 || m.view.Subscribers() != 0 {
		t.Error("expected frame and subscription released")
	}
}

func TestReseed(t *testing.T) {
	m := newTestModel(t)
	old := m.ctrl
	m, _ = update(t, m, TickMsg(time.Now()))
	m, _ = update(t, m, key("r"))

	if old.State() != lifecycle.TornDown {
		t.Error("expected previous controller torn down")
	}
	if m.ctrl == old || m.ctrl.State() != lifecycle.Running {
		t.Error("expected a fresh running controller")
	}
	if m.view.Subscribers() != 1 || m.sched.Pending() != 1 {
		t.Errorf("expected exactly one subscription and frame, got %d and %d", m.view.Subscribers(), m.sched.Pending())
	}
}

func TestThemeCycle(t *testing.T) {
	m := newTestModel(t)
	first := m.theme.Name
	for range len(Themes) {
		m, _ = update(t, m, key("t"))
	}
	if m.theme.Name != first {
		t.Errorf("expected to cycle back to %s, got %s", first, m.theme.Name)
	}
}

func TestRecordGIF(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, key("g"))
	for range 6 {
		m, _ = update(t, m, TickMsg(time.Now()))
	}
	m, _ = update(t, m, key("g"))

	if m.recording {
		t.Error("expected recording stopped")
	}
	if _, err := os.Stat(m.opts.GIFPath); err != nil {
		t.Errorf("expected gif written: %v", err)
	}
}

func TestViewContainsSidebar(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, TickMsg(time.Now()))
	m, _ = update(t, m, TickMsg(time.Now()))
	v := m.View()
	for _, want := range []string{"MATFLOW", "Frames", "orange", "RUNNING"} {
		if !strings.Contains(v, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestPaintBraille(t *testing.T) {
	b := render.NewBraille(3, 1, 1)
	b.Set(0, 0, color.RGBA{255, 0, 0, 255})
	out := paintBraille(b, color.RGBA{0, 0, 0, 255}, newCellStyles())
	if !strings.ContainsRune(out, 0x2801) {
		t.Errorf("expected lit braille rune in %q", out)
	}
	if strings.Count(out, "\n") != 0 {
		t.Error("expected single row without trailing newline")
	}
}

func TestOver(t *testing.T) {
	base := color.RGBA{0, 0, 0, 255}
	if got := over(base, color.RGBA{}); got != base {
		t.Errorf("expected transparent to keep base, got %v", got)
	}
	if got := over(base, color.RGBA{255, 255, 255, 255}); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("expected opaque to replace base, got %v", got)
	}
}

func TestSparklineAndBar(t *testing.T) {
	if s := SparklineChart(nil, 5); s != "─────" {
		t.Errorf("unexpected empty sparkline %q", s)
	}
	if s := SparklineChart([]float64{0, 1, 2, 3}, 2); len([]rune(s)) != 2 {
		t.Errorf("expected 2 runes, got %q", s)
	}
	if bar := ClassBar(0.5, 10, render.DefaultPalette.Color(particle.Blue)); strings.Count(bar, "█") != 5 {
		t.Errorf("expected half-filled bar, got %q", bar)
	}
}

func TestGetTheme(t *testing.T) {
	if GetTheme("aurora").Name != "aurora" {
		t.Error("expected aurora theme")
	}
	if GetTheme("missing").Name != ThemeIndustrial.Name {
		t.Error("expected industrial fallback")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("theme names length mismatch")
	}
	if next := NextTheme(Theme{Name: "missing"}); next.Name != Themes[0].Name {
		t.Errorf("expected unknown theme to restart at %s, got %s", Themes[0].Name, next.Name)
	}
}

func TestSpringFieldConverges(t *testing.T) {
	s := newSpringField(60, 2)
	for range 300 {
		s.step(0, 1)
		s.step(1, 0.25)
	}
	if d := s.value(0) - 1; d > 1e-3 || d < -1e-3 {
		t.Errorf("expected value near 1, got %f", s.value(0))
	}
	if d := s.value(1) - 0.25; d > 1e-3 || d < -1e-3 {
		t.Errorf("expected value near 0.25, got %f", s.value(1))
	}

	s.snap([]float64{0.5, 0.5})
	if s.value(0) != 0.5 || s.vel[0] != 0 {
		t.Errorf("expected snap to 0.5 at rest, got %f moving %f", s.value(0), s.vel[0])
	}
}

func TestSharesSnapOnMount(t *testing.T) {
	m := newTestModel(t)
	total := 0.0
	for class := range particle.NumClasses {
		total += m.shares.value(class)
	}
	if d := total - 1; d > 1e-9 || d < -1e-9 {
		t.Errorf("expected shares to sum to 1 after mount, got %f", total)
	}
}
