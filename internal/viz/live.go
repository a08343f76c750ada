package viz

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/mrilab/internal/dynamo"
	"github.com/san-kum/mrilab/internal/physics"
	"github.com/san-kum/mrilab/internal/sim"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	canvasWidth  = 40
	canvasHeight = 20
	graphWidth   = 40
	graphHeight  = 6
	graphWindow  = 120

	// dipole lattice coordinates span about ±8
	dipoleScale = 1.0 / 8
)

var seriesColors = []asciigraph.AnsiColor{asciigraph.Red, asciigraph.Green, asciigraph.Blue}

// Additive steps for continuous parameters.
var paramSteps = map[string]float64{
	"b0":    0.1,
	"phase": 5,
	"m0":    0.1,
	"k":     0.1,
}

// Allowed values for parameters restricted to a set.
var paramLadders = map[string][]float64{
	"b0":   physics.DiscreteB0,
	"b1":   physics.DiscreteB1,
	"tilt": physics.TiltAngles,
	"ppm":  {-5, 1, 10},
}

type tickMsg time.Time

// arrowSpring eases an arrow's drawn length towards its true length.
type arrowSpring struct {
	spring   harmonica.Spring
	pos, vel float64
	started  bool
}

func newArrowSpring(fps int) *arrowSpring {
	return &arrowSpring{spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 0.8)}
}

func (a *arrowSpring) step(target float64) float64 {
	if !a.started {
		a.pos, a.started = target, true
		return target
	}
	a.pos, a.vel = a.spring.Update(a.pos, a.vel, target)
	return a.pos
}

type dipoleSource interface {
	Dipoles() []r3.Vec
}

// Model is the live view of one session. Space plays and pauses; every
// parameter or mode change goes through the session.
type Model struct {
	session  *sim.Session
	canvas   *Canvas
	camera   *Camera
	theme    Theme
	styles   Styles
	params   []string
	selected int
	springs  map[string]*arrowSpring
	lengths  map[string]float64
	err      error
	showHelp bool
}

func NewModel(s *sim.Session) Model {
	var params []string
	if c, ok := s.Evolver().(dynamo.Configurable); ok {
		for k := range c.GetParams() {
			params = append(params, k)
		}
		sort.Strings(params)
	}
	return Model{
		session: s,
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		camera:  NewCamera(),
		theme:   Themes[0],
		styles:  NewStyles(Themes[0]),
		params:  params,
		springs: make(map[string]*arrowSpring),
		lengths: make(map[string]float64),
	}
}

// Run starts a full-screen program on the session and blocks until quit.
func Run(s *sim.Session, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	_, err := tea.NewProgram(NewModel(s), opts...).Run()
	return err
}

func (m Model) fps() int {
	if fr := m.session.Timing().FrameRate; fr > 0 {
		return fr
	}
	return physics.SlowFrameRate
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps()), func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.session.Toggle()
			m.err = nil
		case "r":
			m.session.Reset()
			m.err = nil
		case "m":
			m.cycleMode()
		case "tab":
			if len(m.params) > 0 {
				m.selected = (m.selected + 1) % len(m.params)
			}
		case "up", "k":
			m.nudge(1)
		case "down", "j":
			m.nudge(-1)
		case "left", "h":
			m.camera.Orbit(-0.1, 0)
		case "right", "l":
			m.camera.Orbit(0.1, 0)
		case "[":
			m.camera.Orbit(0, -0.1)
		case "]":
			m.camera.Orbit(0, 0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "t":
			m.theme = NextTheme(m.theme.Name)
			m.styles = NewStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case tickMsg:
		if _, _, err := m.session.Tick(); err != nil {
			m.err = err
			m.session.Pause()
		}
		m.smooth()
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) cycleMode() {
	md, ok := m.session.Evolver().(dynamo.Moded)
	if !ok {
		return
	}
	modes := md.Modes()
	for i, name := range modes {
		if name == md.Mode() {
			m.err = m.session.SetMode(modes[(i+1)%len(modes)])
			return
		}
	}
}

// candidates lists the values tried, in order, when nudging a parameter.
func candidates(name string, v float64, dir int) []float64 {
	if name == "snap" {
		return []float64{1 - v}
	}
	var out []float64
	if step, ok := paramSteps[name]; ok {
		out = append(out, scalar.Round(v+float64(dir)*step, 9))
	}
	ladder := paramLadders[name]
	tol := 1e-9 * math.Max(math.Abs(v), 1e-6)
	if dir > 0 {
		for _, c := range ladder {
			if c > v+tol {
				out = append(out, c)
				break
			}
		}
	} else {
		for i := len(ladder) - 1; i >= 0; i-- {
			if ladder[i] < v-tol {
				out = append(out, ladder[i])
				break
			}
		}
	}
	return out
}

func (m *Model) nudge(dir int) {
	c, ok := m.session.Evolver().(dynamo.Configurable)
	if !ok || len(m.params) == 0 {
		return
	}
	name := m.params[m.selected]
	tries := candidates(name, c.GetParams()[name], dir)
	if len(tries) == 0 {
		m.err = fmt.Errorf("%w: %s is at its limit", dynamo.ErrParameterBounds, name)
		return
	}
	for _, v := range tries {
		m.err = m.session.SetParam(name, v)
		if m.err == nil || !errors.Is(m.err, dynamo.ErrParameterBounds) {
			return
		}
	}
}

func (m Model) frame() dynamo.Frame {
	if f, ok := m.session.Frame(); ok {
		return f
	}
	return m.session.Preview()
}

// smooth advances the arrow springs towards the current vector lengths.
func (m Model) smooth() {
	f := m.frame()
	for name, v := range f.Vectors {
		sp, ok := m.springs[name]
		if !ok {
			sp = newArrowSpring(m.fps())
			m.springs[name] = sp
		}
		m.lengths[name] = sp.step(r3.Norm(v))
	}
}

func (m Model) scene(f dynamo.Frame) Scene {
	s := NewScene(f, m.session.Trail())
	for i, a := range s.Arrows {
		l, ok := m.lengths[a.Name]
		n := r3.Norm(a.Vec)
		if ok && n > 0 {
			s.Arrows[i].Vec = r3.Scale(l/n, a.Vec)
		}
	}
	if d, ok := m.session.Evolver().(dipoleSource); ok {
		for _, p := range d.Dipoles() {
			s.Points = append(s.Points, r3.Scale(dipoleScale, p))
		}
	}
	return s
}

func (m Model) graph() string {
	var data [][]float64
	var legends []string
	for _, ch := range m.session.Channels() {
		w := m.session.Window(ch, graphWindow)
		if len(w) < 2 {
			return ""
		}
		data = append(data, w)
		legends = append(legends, ch)
	}
	if len(data) == 0 {
		return ""
	}
	return asciigraph.PlotMany(data,
		asciigraph.Height(graphHeight),
		asciigraph.Width(graphWidth),
		asciigraph.Caption(m.session.Timing().Caption()),
		asciigraph.SeriesColors(seriesColors[:min(len(data), len(seriesColors))]...),
		asciigraph.SeriesLegends(legends...),
	)
}

func (m Model) status() string {
	if m.session.Playing() {
		return m.styles.Playing.Render("▶ PLAYING")
	}
	return m.styles.Paused.Render("⏸ PAUSED")
}

func (m Model) View() string {
	f := m.frame()
	m.canvas.Clear()
	Render(m.canvas, m.scene(f), m.camera)
	canvasView := m.styles.Canvas.Render(m.canvas.String())

	ev := m.session.Evolver()
	title := strings.ToUpper(ev.Name())
	if md, ok := ev.(dynamo.Moded); ok {
		title += " [" + md.Mode() + "]"
	}

	var s strings.Builder
	s.WriteString(m.styles.Header.Render(title) + "\n")
	s.WriteString(m.status() + "\n\n")

	tm := m.session.Timing()
	s.WriteString(m.styles.Row("Step", fmt.Sprintf("%d", m.session.Step())))
	s.WriteString(m.styles.Row(tm.Caption(), fmt.Sprintf("%.3f", f.Time)))
	labels := make([]string, 0, len(f.Labels))
	for k := range f.Labels {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	for _, k := range labels {
		s.WriteString(m.styles.Value.Render(f.Labels[k]) + "\n")
	}

	if g := m.graph(); g != "" {
		s.WriteString(m.styles.Graph.Render(g) + "\n")
	}

	s.WriteString("\nPARAMETERS\n")
	if c, ok := ev.(dynamo.Configurable); ok && len(m.params) > 0 {
		values := c.GetParams()
		for i, k := range m.params {
			line := fmt.Sprintf("%-8s %s", k, formatParam(k, values[k]))
			if i == m.selected {
				s.WriteString(m.styles.Active.Render("> "+line) + "\n")
			} else {
				s.WriteString("  " + m.styles.Label.Width(0).Render(line) + "\n")
			}
		}
	} else {
		s.WriteString(m.styles.Label.Render("  (none)") + "\n")
	}
	if m.err != nil {
		s.WriteString("\n" + m.styles.Error.Render(m.err.Error()) + "\n")
	}
	s.WriteString(m.styles.Help.Render("SP:Play/Pause R:Reset M:Mode Q:Quit\nTab:Param ↑↓:Tune ←→[]:Orbit ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, m.styles.Panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

func formatParam(name string, v float64) string {
	switch name {
	case "b0":
		return fmt.Sprintf("%.1f T", v)
	case "b1":
		return fmt.Sprintf("%.0f µT", v*1e6)
	case "tilt", "phase":
		return fmt.Sprintf("%.0f°", v)
	case "ppm":
		return fmt.Sprintf("%+.0f ppm", v)
	}
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.3g", v)
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Play/Pause               ║
║  R        - Reset to step 0          ║
║  M        - Switch reference frame   ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Next parameter value     ║
║  Down/J   - Previous parameter value ║
║  ←/→ [ ]  - Orbit camera             ║
║  + / -    - Zoom                     ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`
