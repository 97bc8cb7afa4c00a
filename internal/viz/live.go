package viz

import (
	"fmt"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/matflow/internal/export"
	"github.com/san-kum/matflow/internal/lifecycle"
	"github.com/san-kum/matflow/internal/particle"
	"github.com/san-kum/matflow/internal/render"
	"github.com/san-kum/matflow/internal/scheduler"
)

const (
	defaultCols     = 80
	defaultRows     = 24
	sidebarWidth    = 38
	statusHeight    = 1
	historyCapacity = 600
	maxGIFFrames    = 300
	gifMaxWidth     = 480
)

type TickMsg time.Time

type Options struct {
	Controller lifecycle.Options
	FPS        int
	// Scale is the number of surface pixels per braille dot.
	Scale   float64
	Theme   string
	GIFPath string
}

// Model hosts a lifecycle controller in the terminal. Each tick pumps the
// scheduler once, so the controller steps and renders into the braille
// surface; window resizes feed the viewport.
type Model struct {
	opts   Options
	sched  *scheduler.Scheduler
	view   *scheduler.Viewport
	canvas *render.Braille
	ctrl   *lifecycle.Controller

	cols, rows int
	running    bool
	showStats  bool
	showHelp   bool
	theme      Theme
	styles     *cellStyles

	recycleHistory []float64
	lastRecycles   int
	shares         *springField

	recording bool
	anim      *export.Animation
	status    string
}

func NewModel(opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.Scale <= 0 {
		opts.Scale = 4
	}
	if opts.Controller.Renderer == nil {
		opts.Controller.Renderer = render.NewRenderer()
	}
	if opts.GIFPath == "" {
		opts.GIFPath = "matflow.gif"
	}

	m := Model{
		opts:           opts,
		sched:          scheduler.New(),
		canvas:         render.NewBraille(0, 0, opts.Scale),
		cols:           defaultCols,
		rows:           defaultRows,
		running:        true,
		showStats:      true,
		theme:          GetTheme(opts.Theme),
		styles:         newCellStyles(),
		recycleHistory: make([]float64, 0, historyCapacity),
		shares:         newSpringField(opts.FPS, particle.NumClasses),
	}
	w, h := m.surfaceSize()
	m.view = scheduler.NewViewport(w, h)
	m.mount()
	return m
}

func (m *Model) mount() {
	host := lifecycle.NewLocalHost(m.sched, m.view, lifecycle.StaticSurface(m.canvas))
	m.ctrl = lifecycle.New(host, m.opts.Controller)
	if err := m.ctrl.Mount(); err != nil {
		m.status = err.Error()
	}
	m.lastRecycles = 0
	m.recycleHistory = m.recycleHistory[:0]
	m.shares.snap(classShares(m.ctrl.Store()))
}

// classShares returns the fraction of particles in each colour class.
func classShares(store *particle.Store) []float64 {
	shares := make([]float64, particle.NumClasses)
	if store == nil || store.Len() == 0 {
		return shares
	}
	for class, n := range store.ClassCounts() {
		shares[class] = float64(n) / float64(store.Len())
	}
	return shares
}

// surfaceSize converts the canvas cell area to surface pixels.
func (m *Model) surfaceSize() (int, int) {
	cols := m.cols
	if m.showStats {
		cols -= sidebarWidth
	}
	rows := m.rows - statusHeight
	cols, rows = max(cols, 1), max(rows, 1)
	return int(float64(cols*2) * m.opts.Scale), int(float64(rows*4) * m.opts.Scale)
}

func (m *Model) resizeViewport() {
	w, h := m.surfaceSize()
	m.view.Resize(w, h)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.stopRecording()
			m.ctrl.Unmount()
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.ctrl.Unmount()
			m.mount()
		case "s":
			m.showStats = !m.showStats
			m.resizeViewport()
		case "t":
			m.theme = NextTheme(m.theme)
		case "g":
			if m.recording {
				m.stopRecording()
			} else {
				m.recording = true
				m.anim = export.NewAnimation(max(200/m.opts.FPS, 2), maxGIFFrames)
				m.anim.MaxWidth = gifMaxWidth
				m.status = "recording"
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		m.resizeViewport()
	case TickMsg:
		if m.running {
			m.sched.Pump()
			m.recordTick()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) recordTick() {
	if m.ctrl.State() != lifecycle.Running {
		return
	}
	total := m.ctrl.Recycles()
	m.recycleHistory = append(m.recycleHistory, float64(total-m.lastRecycles))
	if len(m.recycleHistory) > historyCapacity {
		m.recycleHistory = m.recycleHistory[1:]
	}
	m.lastRecycles = total

	for class, share := range classShares(m.ctrl.Store()) {
		m.shares.step(class, share)
	}

	if m.recording && m.ctrl.Frames()%2 == 0 {
		m.captureFrame()
	}
}

func (m *Model) captureFrame() {
	w, h := m.view.Size()
	raster := render.NewRaster(w, h)
	m.opts.Controller.Renderer.Render(raster, m.ctrl.Store())
	bg, _ := render.ParseHex(string(m.theme.Background))
	if !m.anim.Add(export.Flatten(raster.Image(), bg)) {
		m.stopRecording()
	}
}

func (m *Model) stopRecording() {
	if !m.recording {
		return
	}
	m.recording = false
	if err := m.anim.Save(m.opts.GIFPath); err != nil {
		log.Printf("viz: gif: %v", err)
		m.status = "gif failed: " + err.Error()
	} else {
		m.status = fmt.Sprintf("saved %d frames to %s", m.anim.Len(), m.opts.GIFPath)
	}
	m.anim = nil
}

func (m Model) View() string {
	base, _ := render.ParseHex(string(m.theme.Background))
	canvasView := paintBraille(m.canvas, base, m.styles)

	main := canvasView
	if m.showStats {
		main = lipgloss.JoinHorizontal(lipgloss.Top, canvasView, m.sidebar())
	}
	return main + "\n" + m.statusLine()
}

func (m Model) statusLine() string {
	var state string
	switch {
	case m.ctrl.State() != lifecycle.Running:
		state = statusDisabled.Render(strings.ToUpper(m.ctrl.State().String()))
	case m.recording:
		state = statusRecording.Render("● REC")
	case !m.running:
		state = statusPaused.Render("PAUSED")
	default:
		state = statusRunning.Render("RUNNING")
	}
	line := state
	if m.status != "" {
		line += "  " + valueStyle.Render(m.status)
	}
	return line
}

func (m Model) sidebar() string {
	var s strings.Builder
	s.WriteString(headerStyle(m.theme).Render("MATFLOW") + "\n")

	w, h := m.ctrl.Size()
	s.WriteString(labelStyle.Render("Frames") + valueStyle.Render(fmt.Sprintf("%d", m.ctrl.Frames())) + "\n")
	s.WriteString(labelStyle.Render("Recycles") + valueStyle.Render(fmt.Sprintf("%d", m.ctrl.Recycles())) + "\n")
	s.WriteString(labelStyle.Render("Surface") + valueStyle.Render(fmt.Sprintf("%.0fx%.0f", w, h)) + "\n")
	s.WriteString(labelStyle.Render("Theme") + valueStyle.Render(m.theme.Name) + "\n")

	if store := m.ctrl.Store(); store != nil {
		s.WriteString(labelStyle.Render("Particles") + valueStyle.Render(fmt.Sprintf("%d", store.Len())) + "\n\n")
		for class, n := range store.ClassCounts() {
			c := particle.ColorClass(class)
			bar := ClassBar(m.shares.value(class), 12, m.opts.Controller.Renderer.Palette.Color(c))
			s.WriteString(labelStyle.Render(c.String()) + bar + fmt.Sprintf(" %d", n) + "\n")
		}
	}

	if len(m.recycleHistory) > 1 {
		window := m.recycleHistory[max(len(m.recycleHistory)-60, 0):]
		chart := asciigraph.Plot(window, asciigraph.Height(4), asciigraph.Width(26), asciigraph.Caption("recycles/frame"))
		s.WriteString(graphStyle.Render(chart) + "\n")
		s.WriteString(SparklineChart(m.recycleHistory, 26) + "\n")
	}

	if m.showHelp {
		s.WriteString(helpStyle.Render("SP  pause/resume\nR   reseed\nS   toggle stats\nT   cycle theme\nG   record gif\nQ   quit"))
	} else {
		s.WriteString(helpStyle.Render("SP:Pause R:Reseed S:Stats\nT:Theme G:GIF ?:Help Q:Quit"))
	}
	return sidebarStyle(m.theme).Render(s.String())
}
