package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/kepler/internal/config"
	"github.com/san-kum/kepler/internal/dynamo"
	"github.com/san-kum/kepler/internal/integrators"
	"github.com/san-kum/kepler/internal/kepler"
)

const (
	canvasWidth   = 60
	canvasHeight  = 24
	trailLength   = 2000
	historyLength = 200
	maxPerFrame   = 1000
)

type TickMsg time.Time

// LiveModel integrates an orbit a few steps per frame and draws its trail.
type LiveModel struct {
	plan   *config.Plan
	integ  dynamo.Integrator
	canvas *Canvas
	bounds Bounds

	state    dynamo.State
	t        float64
	steps    int
	maxSteps int
	perFrame int
	running  bool
	err      error

	xs, ys  []float64
	history []float64
	fps     int
}

// NewLive prepares a live view of plan at the given frame rate.
func NewLive(plan *config.Plan, fps int) (*LiveModel, error) {
	integ, err := integrators.Lookup(plan.Method)
	if err != nil {
		return nil, err
	}
	if fps <= 0 {
		fps = 30
	}

	// Frame the whole orbit: apoapsis is a(1+e) for bound orbits.
	r := 2 * plan.Z0[:2].Norm()
	if el, err := kepler.ElementsFromState(plan.Z0, plan.Mass); err == nil {
		r = el.A * (1 + el.E)
	}
	if !finite(r) || r <= 0 {
		r = 1
	}

	m := &LiveModel{
		plan:     plan,
		integ:    integ,
		canvas:   NewCanvas(canvasWidth, canvasHeight),
		bounds:   Bounds{MinX: -1.1 * r, MaxX: 1.1 * r, MinY: -1.1 * r, MaxY: 1.1 * r},
		maxSteps: dynamo.Steps(plan.TEnd, plan.Step),
		perFrame: 10,
		running:  true,
		fps:      fps,
	}
	m.reset()
	return m, nil
}

func (m *LiveModel) reset() {
	m.state = m.plan.Z0.Clone()
	m.t = 0
	m.steps = 0
	m.err = nil
	m.xs = m.xs[:0]
	m.ys = m.ys[:0]
	m.history = m.history[:0]
	m.record()
}

func (m *LiveModel) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m *LiveModel) Init() tea.Cmd {
	return m.tick()
}

func (m *LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "+", "=":
			m.perFrame = min(m.perFrame*2, maxPerFrame)
		case "-":
			m.perFrame = max(m.perFrame/2, 1)
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, m.tick()
	}
	return m, nil
}

// advance takes up to perFrame steps, stopping at the last step of the plan.
func (m *LiveModel) advance() {
	if m.err != nil {
		return
	}
	for i := 0; i < m.perFrame; i++ {
		if m.steps >= m.maxSteps {
			m.running = false
			break
		}
		next, err := m.integ.Step(kepler.Derivs, m.t, m.state, m.plan.Step, m.plan.Mass)
		if err != nil {
			m.err = err
			m.running = false
			break
		}
		m.state = next
		m.t += m.plan.Step
		m.steps++
		m.record()
	}
}

func (m *LiveModel) record() {
	m.xs = appendBounded(m.xs, m.state[0], trailLength)
	m.ys = appendBounded(m.ys, m.state[1], trailLength)
	m.history = appendBounded(m.history, m.relativeEnergyError(), historyLength)
}

func (m *LiveModel) energy() float64 {
	return kepler.TotalEnergy(m.state, m.plan.Mass)
}

func (m *LiveModel) relativeEnergyError() float64 {
	if m.plan.Energy == 0 {
		return 0
	}
	return (m.energy() - m.plan.Energy) / math.Abs(m.plan.Energy)
}

func appendBounded(s []float64, v float64, n int) []float64 {
	s = append(s, v)
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return s
}

func (m *LiveModel) View() string {
	m.canvas.Clear()
	m.canvas.DrawPath(m.bounds, m.xs, m.ys)
	m.canvas.DrawMarker(m.bounds, 0, 0)
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render("KEPLER  "+m.plan.Method) + "\n")

	status := StatusRunning.Render("running")
	if !m.running {
		status = StatusPaused.Render("paused")
	}
	s.WriteString(status + "\n\n")

	s.WriteString(KeyValues([]Row{
		{"time", fmt.Sprintf("%.4f / %.4f", m.t, m.plan.TEnd)},
		{"orbits", fmt.Sprintf("%.2f", m.t/m.plan.Period)},
		{"steps", fmt.Sprintf("%d (x%d)", m.steps, m.perFrame)},
		{"x, y", fmt.Sprintf("%.4f, %.4f", m.state[0], m.state[1])},
		{"energy", fmt.Sprintf("%.8f", m.energy())},
		{"rel dE", fmt.Sprintf("%.3e", m.relativeEnergyError())},
	}) + "\n")

	if m.err != nil {
		s.WriteString("\n" + StatusPaused.Render(m.err.Error()) + "\n")
	}

	if len(m.history) > 1 {
		chart := asciigraph.Plot(finiteOnly(m.history),
			asciigraph.Height(6),
			asciigraph.Width(30),
			asciigraph.Caption("rel energy error"),
		)
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(helpStyle.Render("SPACE:Pause R:Reset +/-:Speed Q:Quit"))
	statsView := statsStyle.Render(s.String())

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}

// RunLive runs the live view until the user quits.
func RunLive(plan *config.Plan, fps int) error {
	m, err := NewLive(plan, fps)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
