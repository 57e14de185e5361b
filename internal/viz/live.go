package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/spinsim/internal/metrics"
	"github.com/san-kum/spinsim/internal/spin"
)

const (
	width     = 60
	height    = 20
	frameRate = 60
	// nudge is the change applied per up/down key press.
	nudge = 0.1
)

var params = []string{"temperature", "field"}

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model hosts a simulator inside a Bubble Tea program: every frame tick
// advances the simulation by one Tick.
type Model struct {
	sim        *spin.Simulator
	name       string
	canvas     *Canvas
	acceptance *metrics.AcceptanceRate
	smoothed   []float64
	last       spin.Signal
	running    bool
	showEdges  bool
	showHelp   bool
	selected   int
	theme      int
	style      palette
	err        error
}

func NewModel(s *spin.Simulator, name string) Model {
	m := Model{
		sim:     s,
		name:    name,
		canvas:  NewCanvas(width, height),
		running: true,
		style:   newPalette(Themes[0]),
	}
	m.attach()
	return m
}

func (m *Model) attach() {
	m.acceptance = metrics.NewAcceptanceRate()
	m.sim.Subscribe(m.acceptance)
	m.smoothed = make([]float64, 0, m.sim.Config().HistoryCapacity)
}

// Simulator returns the hosted simulator.
func (m Model) Simulator() *spin.Simulator { return m.sim }

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.step()
			}
		case "r":
			m.reset()
		case "tab":
			m.selected = (m.selected + 1) % len(params)
		case "up", "k":
			m.adjust(nudge)
		case "down", "j":
			m.adjust(-nudge)
		case "e":
			m.showEdges = !m.showEdges
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
			m.style = newPalette(Themes[m.theme])
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() {
	m.last = m.sim.Tick()
	m.smoothed = append(m.smoothed, m.last.Smoothed)
	if len(m.smoothed) > m.sim.Config().HistoryCapacity {
		m.smoothed = m.smoothed[1:]
	}
}

func (m *Model) adjust(delta float64) {
	switch params[m.selected] {
	case "temperature":
		m.sim.SetTemperature(m.sim.Temperature() + delta)
	case "field":
		m.sim.SetField(m.sim.Field() + delta)
	}
}

// reset rebuilds the simulator from its configuration, restarting the run.
func (m *Model) reset() {
	s, err := spin.New(m.sim.Config())
	if err != nil {
		m.err = err
		return
	}
	m.sim = s
	m.last = spin.Signal{}
	m.attach()
}

// View renders the TUI interface.
func (m Model) View() string {
	cfg := m.sim.Config()
	m.canvas.PlotSpins(m.sim.Positions(), m.sim.Spins(), cfg.BoxSize, m.sim.Graph(), m.showEdges)
	canvasView := canvasStyle.Render(m.canvas.String())

	st := m.style
	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.name)) + "\n")
	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")

	if hist := m.sim.History(); len(hist) > 1 {
		chart := asciigraph.Plot(hist,
			asciigraph.Height(6),
			asciigraph.Width(36),
			asciigraph.LowerBound(-1),
			asciigraph.UpperBound(1),
			asciigraph.Caption("magnetization"),
		)
		s.WriteString(st.graph.Render(chart) + "\n")
	}
	s.WriteString(st.label.Render("Smoothed") + st.Sparkline(m.smoothed, 30, -1, 1) + "\n\n")

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Tick", fmt.Sprintf("%d", m.sim.Ticks()))
	row("m", fmt.Sprintf("%+.3f", m.last.Magnetization))
	row("Smoothed", fmt.Sprintf("%+.4f", m.sim.Smoothed()))
	row("Disorder", fmt.Sprintf("%.3f", 1-math.Abs(m.sim.Smoothed())))
	row("Energy", fmt.Sprintf("%.1f", m.sim.Energy()))
	s.WriteString(st.label.Render("Accepted") + st.ProgressBar(m.acceptance.Value(), 20) +
		st.value.Render(fmt.Sprintf(" %.0f%%", 100*m.acceptance.Value())) + "\n")

	s.WriteString("\nPARAMETERS\n")
	values := []float64{m.sim.Temperature(), m.sim.Field()}
	for i, p := range params {
		line := fmt.Sprintf("%-12s %+.3f", p, values[i])
		if i == m.selected {
			s.WriteString(st.active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + st.label.Render(line) + "\n")
		}
	}
	if m.err != nil {
		s.WriteString("\n" + st.low.Render("error: "+m.err.Error()) + "\n")
	}
	s.WriteString(st.help.Render("SP:Pause N:Step R:Reset Q:Quit\nTab:Param ↑↓:Tune E:Edges T:Theme"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  N        - Single tick while paused ║
║  R        - Restart with same seed   ║
║  Q        - Quit                     ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter       ║
║  Down/J   - Decrease parameter       ║
║  E        - Toggle neighbour edges   ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// Run starts the live view on the terminal and blocks until the user quits.
func Run(s *spin.Simulator, name string) error {
	p := tea.NewProgram(NewModel(s, name), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
