// Package tui is the interactive terminal front end: the layout drawn as
// character cells, mouse hover and selection, and keyboard controls.
package tui

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/scholarnet/kgraph/internal/clipboard"
	"github.com/scholarnet/kgraph/internal/force"
	"github.com/scholarnet/kgraph/internal/graph"
	"github.com/scholarnet/kgraph/internal/interact"
	"github.com/scholarnet/kgraph/internal/metrics"
	"github.com/scholarnet/kgraph/internal/render"
	"github.com/scholarnet/kgraph/internal/view"
)

// Layout
const (
	sidebarWidth = 34
	headerRows   = 1
	footerRows   = 1
	minCols      = 10
	minRows      = 5
)

// Styles
var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9FAFB")).Background(lipgloss.Color("#1F2937")).Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	pausedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	sidebarStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

// TickMsg reports that the simulation advanced.
type TickMsg struct {
	Tick uint64
}

// ReloadMsg carries a freshly loaded dataset.
type ReloadMsg struct {
	Graph *graph.Graph
}

// Option configures a Model.
type Option func(*Model)

// WithMetrics records control changes in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(model *Model) {
		model.metrics = m
	}
}

// WithLogger sets the logger for user actions.
func WithLogger(l *slog.Logger) Option {
	return func(model *Model) {
		model.logger = l
	}
}

// WithCopier replaces the function used to copy the selected node id.
func WithCopier(fn func(string) error) Option {
	return func(model *Model) {
		model.copy = fn
	}
}

// Model is the bubbletea model of the interactive view.
type Model struct {
	controls *view.Controls
	renderer *render.Renderer
	tracker  interact.Tracker
	search   textinput.Model

	searching bool
	width     int
	height    int
	canvas    *render.Cells
	snap      force.Snapshot
	status    string

	metrics *metrics.Metrics
	logger  *slog.Logger
	copy    func(string) error
}

// New creates the model for c.
func New(c *view.Controls, opts ...Option) Model {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "search labels"
	ti.CharLimit = 64

	m := Model{
		controls: c,
		renderer: render.New(),
		search:   ti,
		logger:   slog.Default(),
		copy:     clipboard.Copy,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.snap = c.Runner().Engine().Snapshot()
	m.recordControls()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case TickMsg:
		m.refresh()

	case ReloadMsg:
		m.controls.Runner().Engine().Load(msg.Graph)
		m.refresh()
		m.status = fmt.Sprintf("reloaded %d nodes, %d links", msg.Graph.Len(), len(msg.Graph.Links()))

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	p := m.controls.Runner().Engine().Params()
	cols := max(width-sidebarWidth-2, minCols)
	rows := max(height-headerRows-footerRows, minRows)
	m.canvas = render.NewCells(cols, rows, p.Width, p.Height)
	// A node smaller than a cell is drawn as one glyph, so a pointer
	// anywhere in that glyph's cell picks it.
	cw, ch := m.canvas.CellSize()
	m.tracker.SetSlop(force.Vec{X: cw / 2, Y: ch / 2})
	m.search.Width = max(cols-2, 1)
}

// refresh takes a new snapshot and drops a hover or selection that is no
// longer visible.
func (m *Model) refresh() {
	m.snap = m.controls.Runner().Engine().Snapshot()
	m.tracker.Prune(m.snap, m.controls.Eligible())
}

func (m *Model) recordControls() {
	if m.metrics != nil {
		m.metrics.SetControls(m.controls.Running(), m.controls.LinkStrength())
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if m.canvas == nil {
		return
	}
	cols, rows := m.canvas.Size()
	col, row := msg.X, msg.Y-headerRows
	inside := col >= 0 && col < cols && row >= 0 && row < rows

	switch {
	case msg.Action == tea.MouseActionMotion:
		if !inside {
			m.tracker.Hover("")
			return
		}
		m.tracker.Move(m.snap, m.canvas.ToCanvas(col, row), m.controls.Eligible())
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if !inside {
			return
		}
		if m.tracker.Click(m.snap, m.canvas.ToCanvas(col, row), m.controls.Eligible()) {
			if id, ok := m.tracker.Selected(); ok {
				m.logger.Debug("node selected", "id", id)
			}
		}
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		running := m.controls.Toggle()
		m.logger.Info("simulation toggled", "running", running)
	case "r":
		m.controls.Reset()
		m.logger.Info("layout reset")
	case "+", "=":
		m.controls.StepLinkStrength(0.1)
	case "-", "_":
		m.controls.StepLinkStrength(-0.1)
	case "]":
		m.stepMinStrength(0.1)
	case "[":
		m.stepMinStrength(-0.1)
	case "tab":
		m.controls.CycleKind()
	case "esc":
		m.tracker.Clear()
	case "y":
		m.copySelected()
		return m, nil
	case "/":
		m.searching = true
		return m, m.search.Focus()
	default:
		return m, nil
	}
	m.recordControls()
	m.refresh()
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.controls.SetSearch("")
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.controls.SetSearch(m.search.Value())
	m.refresh()
	return m, cmd
}

func (m *Model) copySelected() {
	id, ok := m.tracker.Selected()
	if !ok {
		m.status = "nothing selected"
		return
	}
	if err := m.copy(id); err != nil {
		m.status = err.Error()
		m.logger.Warn("copy failed", "id", id, "error", err)
		return
	}
	m.status = "copied " + id
}

func (m *Model) stepMinStrength(delta float64) {
	v := math.Round((m.controls.Filter().MinStrength+delta)*10) / 10
	v = math.Max(0, math.Min(1, v))
	if err := m.controls.SetMinStrength(v); err != nil {
		m.status = err.Error()
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.canvas == nil {
		return "\n  Initializing..."
	}

	m.renderer.Draw(m.canvas, m.controls.FrameOf(m.snap, &m.tracker))
	_, rows := m.canvas.Size()
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.canvas.String(),
		sidebarStyle.Width(sidebarWidth-2).Height(max(rows-2, 0)).Render(m.sidebar()),
	)
	return lipgloss.JoinVertical(lipgloss.Left, m.header(), body, m.footer())
}

func (m Model) header() string {
	state := pausedStyle.Render("paused")
	if m.controls.Running() {
		state = runningStyle.Render("running")
	}
	f := m.controls.Filter()
	line := fmt.Sprintf(" kg  %s  tick %d  link %.1f  kind %s  min %.1f",
		state, m.snap.Tick, m.controls.LinkStrength(), f.Kind, f.MinStrength)
	if f.Search != "" {
		line += fmt.Sprintf("  search %q", f.Search)
	}
	return headerStyle.Width(m.width).Render(line)
}

func (m Model) footer() string {
	if m.searching {
		return m.search.View()
	}
	if m.status != "" {
		return subtleStyle.Render(m.status)
	}
	return subtleStyle.Render("space play/pause  r reset  +/- link  [/] min  tab kind  / search  y copy id  q quit")
}

func (m Model) sidebar() string {
	var sb strings.Builder
	g := m.controls.Runner().Engine().Graph()
	stats := view.Stats(g)

	sb.WriteString(titleStyle.Render("Graph") + "\n")
	for _, k := range graph.Kinds {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(render.Hex(render.KindColor(k)))).Render("●")
		fmt.Fprintf(&sb, "%s %-11s %3d\n", swatch, k, stats.ByKind[k])
	}
	fmt.Fprintf(&sb, "  links       %3d\n", stats.Links)
	if stats.Dangling > 0 {
		fmt.Fprintf(&sb, "  dangling    %3d\n", stats.Dangling)
	}

	if id, ok := m.tracker.Hovered(); ok {
		if n, found := g.Node(id); found {
			sb.WriteString("\n" + subtleStyle.Render("hover: "+n.Label) + "\n")
		}
	}

	id, ok := m.tracker.Selected()
	if !ok {
		sb.WriteString("\n" + subtleStyle.Render("click a node for details"))
		return sb.String()
	}
	d, found := view.Describe(g, id)
	if !found {
		return sb.String()
	}
	sb.WriteString("\n" + titleStyle.Render(d.Label) + "\n")
	fmt.Fprintf(&sb, "%s  influence %.0f\n", d.Kind, d.Influence)
	fmt.Fprintf(&sb, "%d connections\n", d.Degree)
	for _, c := range d.Connections {
		fmt.Fprintf(&sb, " %s %s %d%%\n", truncate(c.Label, sidebarWidth-12), subtleStyle.Render(string(c.LinkKind)), c.Percent)
	}
	return sb.String()
}

// Selected returns the selected node id, if any.
func (m Model) Selected() (string, bool) {
	return m.tracker.Selected()
}

// Hovered returns the hovered node id, if any.
func (m Model) Hovered() (string, bool) {
	return m.tracker.Hovered()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
