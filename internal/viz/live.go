package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/stickbox/internal/metrics"
	"github.com/san-kum/stickbox/internal/physics"
	"github.com/san-kum/stickbox/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	canvasPadTop    = 1
	canvasPadLeft   = 2
	gifPath         = "stickbox.gif"
)

// Snapshot stores one recorded frame for replay.
type Snapshot struct {
	State   sim.State
	Time    float64
	Energy  float64
	Stretch float64
}

var (
	canvasStyle      = lipgloss.NewStyle().Padding(canvasPadTop, canvasPadLeft)
	statsStyle       = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeParamStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type TickMsg time.Time

// WorldBuilder returns a fresh world. The live view calls it again on reset.
type WorldBuilder func() (*sim.World, error)

// Model is the Bubble Tea live view of one world.
type Model struct {
	name          string
	build         WorldBuilder
	world         *sim.World
	canvas        *Canvas
	proj          Projection
	pool          *sim.StatePool
	running       bool
	lastTick      time.Time
	params        map[string]float64
	initialParams map[string]float64
	paramKeys     []string
	selected      int
	stretch       *metrics.ConstraintError
	energyHistory []float64
	stretchHist   []float64
	history       []Snapshot
	playHead      int
	recording     bool
	frames        []*image.Paletted
	showHelp      bool
	err           error
}

func NewModel(name string, build WorldBuilder) (Model, error) {
	m := Model{
		name:     name,
		build:    build,
		canvas:   NewCanvas(width, height),
		running:  true,
		stretch:  metrics.NewConstraintError(),
		playHead: -1,
	}
	if err := m.load(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// load (re)builds the world and forgets all recorded frames.
func (m *Model) load() error {
	w, err := m.build()
	if err != nil {
		return err
	}
	if m.pool != nil {
		for _, snap := range m.history {
			m.pool.Put(snap.State)
		}
	}

	m.world = w
	m.proj = NewProjection(w.Params().Bounds, m.canvas)
	m.pool = sim.NewStatePool(2 * len(w.Points()))
	m.lastTick = time.Time{}
	m.energyHistory = make([]float64, 0, historyCapacity)
	m.stretchHist = make([]float64, 0, historyCapacity)
	m.history = make([]Snapshot, 0, historyCapacity)
	m.playHead = -1

	m.params = w.GetParams()
	m.paramKeys = w.ParamNames()
	m.initialParams = make(map[string]float64, len(m.params))
	for k, v := range m.params {
		if v == 0 {
			v = 1e-6
		}
		m.initialParams[k] = v
	}
	if m.selected >= len(m.paramKeys) {
		m.selected = 0
	}
	return nil
}

// World exposes the live world.
func (m Model) World() *sim.World { return m.world }

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
			m.lastTick = time.Time{}
		case "r":
			if err := m.load(); err != nil {
				m.err = err
			}
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.MouseMsg:
		m.handleMouse(msg)
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				m.step(time.Time(msg))
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		if m.recording {
			m.draw()
			m.captureFrame()
		}
		return m, tick()
	}
	return m, nil
}

// handleMouse forwards left-button drags to the world. Replayed frames
// are read-only, but a release still ends a drag begun before the replay.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	pos := m.mouseToWorld(msg.X, msg.Y)
	if m.playHead != -1 {
		if msg.Action == tea.MouseActionRelease {
			m.world.OnPointerUp(pos[0], pos[1])
		}
		return
	}
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.grab(pos)
		}
	case tea.MouseActionMotion:
		m.world.OnPointerMove(pos[0], pos[1])
	case tea.MouseActionRelease:
		m.world.OnPointerUp(pos[0], pos[1])
	}
}

func (m *Model) mouseToWorld(x, y int) mgl64.Vec2 {
	return m.proj.CellToWorld(x-canvasPadLeft, y-canvasPadTop)
}

// grab presses at pos. A terminal cell is much coarser than a point's
// hit radius, so a miss falls back to the nearest box corner within one
// cell.
func (m *Model) grab(pos mgl64.Vec2) {
	if m.world.OnPointerDown(pos[0], pos[1]) {
		return
	}
	tolerance := 4 / m.proj.Scale()
	var nearest *physics.PointMass
	for _, b := range m.world.Boxes() {
		for _, p := range b.Points() {
			if d := p.Pos.Sub(pos).Len(); d < tolerance {
				tolerance, nearest = d, p
			}
		}
	}
	if nearest != nil {
		m.world.OnPointerDown(nearest.X(), nearest.Y())
	}
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

// adjustParam scales the selected parameter. Values the world rejects
// leave it unchanged.
func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.params[key] * factor
	if err := m.world.SetParam(key, val); err != nil {
		return
	}
	m.params[key] = val
}

// step advances the world by the wall time since the previous tick.
func (m *Model) step(now time.Time) {
	dt := 1.0 / 60
	if !m.lastTick.IsZero() {
		dt = now.Sub(m.lastTick).Seconds()
	}
	m.lastTick = now
	dt = m.world.Step(dt)

	energy := metrics.Kinetic(m.world, dt)
	m.stretch.Reset()
	m.stretch.Observe(m.world, dt)
	stretch := m.stretch.Value()

	m.energyHistory = pushBounded(m.energyHistory, energy)
	m.stretchHist = pushBounded(m.stretchHist, stretch)

	m.history = append(m.history, Snapshot{
		State:   m.pool.Capture(m.world),
		Time:    m.world.Time(),
		Energy:  energy,
		Stretch: stretch,
	})
	if len(m.history) > historyCapacity {
		m.pool.Put(m.history[0].State)
		m.history = m.history[1:]
	}
}

func pushBounded(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

// draw renders the current or replayed frame onto the canvas.
func (m *Model) draw() {
	prims := m.world.Render()
	if m.playHead >= 0 && m.playHead < len(m.history) {
		if replay, err := m.world.RenderState(m.history[m.playHead].State); err == nil {
			prims = replay
		}
	}
	m.canvas.Clear()
	m.canvas.DrawFrame(m.proj)
	m.canvas.DrawPrimitives(prims, m.proj)
}

func (m Model) status() string {
	replaying := m.playHead >= 0 && m.playHead < len(m.history)
	switch {
	case replaying:
		offset := m.history[m.playHead].Time - m.history[len(m.history)-1].Time
		if !m.running {
			return StatusPaused.Render(fmt.Sprintf("REPLAY PAUSED (%.1fs)", offset))
		}
		return StatusPaused.Render(fmt.Sprintf("REPLAYING (%.1fs)", offset))
	case !m.running:
		return StatusPaused.Render("PAUSED")
	}
	for _, b := range m.world.Boxes() {
		if c, ok := b.Dragging(); ok {
			return StatusDragging.Render("DRAGGING " + c.String() + " (" + c.Side().String() + ")")
		}
	}
	return StatusRunning.Render("RUNNING")
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	t, energy, stretch := m.world.Time(), 0.0, 0.0
	if m.playHead >= 0 && m.playHead < len(m.history) {
		snap := m.history[m.playHead]
		t, energy, stretch = snap.Time, snap.Energy, snap.Stretch
	} else if n := len(m.history); n > 0 {
		energy, stretch = m.history[n-1].Energy, m.history[n-1].Stretch
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.status())
	if m.recording {
		s.WriteString("  " + StatusRecording.Render("REC"))
	}
	s.WriteString("\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", t)) + "\n")
	s.WriteString(labelStyle.Render("Frames") + valueStyle.Render(fmt.Sprintf("%d", m.world.Frames())) + "\n")
	s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.1f", energy)) + "\n")
	s.WriteString(labelStyle.Render("Stretch") + valueStyle.Render(fmt.Sprintf("%.4f", stretch)) + "\n")
	s.WriteString(labelStyle.Render("") + SparklineChart(m.stretchHist, 30) + "\n")

	s.WriteString("\nPARAMETERS\n")
	for i, k := range m.paramKeys {
		val, initial := m.params[k], m.initialParams[k]
		barWidth, ratio := 10, val/(2.0*initial)
		ratio = math.Max(0, math.Min(1, ratio))
		filled := int(ratio * float64(barWidth))
		bar := "[" + strings.Repeat("=", filled) + strings.Repeat("-", barWidth-filled) + "]"
		line := fmt.Sprintf("%-12s %s %.2f", k, bar, val)
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}
	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}
	s.WriteString(helpStyle.Render("\n" + Separator(21) + "\nSP:Pause R:Reset Q:Quit\nG:Record ?:Help\n[ ]:Time-Travel ↑↓:Tune\nDrag a corner to resize"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return mainView + "\n" + helpOverlay
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Rebuild the scene        ║
║  Q        - Quit                     ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter (+5%) ║
║  Down/J   - Decrease parameter (-5%) ║
║  [        - Rewind (time travel)     ║
║  ]        - Forward (time travel)    ║
║  G        - Toggle GIF recording     ║
║  Mouse    - Drag a box corner        ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = make([]*image.Paletted, 0)
		return
	}
	if err := m.saveGIF(gifPath); err != nil {
		m.err = err
	}
	m.recording = false
	m.frames = nil
}

// captureFrame rasterises the braille canvas, one 4x4 block per dot.
func (m *Model) captureFrame() {
	const dot = 4
	img := image.NewPaletted(image.Rect(0, 0, m.canvas.SubWidth()*dot, m.canvas.SubHeight()*dot), color.Palette{color.Black, color.White})
	for y := 0; y < m.canvas.SubHeight(); y++ {
		for x := 0; x < m.canvas.SubWidth(); x++ {
			if !m.canvas.IsSet(x, y) {
				continue
			}
			for py := 0; py < dot; py++ {
				for px := 0; px < dot; px++ {
					img.SetColorIndex(x*dot+px, y*dot+py, 1)
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF(path string) error {
	if len(m.frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}

// Run starts the live view with mouse tracking on the alternate screen.
func Run(name string, build WorldBuilder) error {
	m, err := NewModel(name, build)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
