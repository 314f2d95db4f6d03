// Package tui provides a Bubble Tea player for sourcecasts.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/sourcereel/internal/bundle"
	"github.com/fakeyudi/sourcereel/internal/playback"
	"github.com/fakeyudi/sourcereel/internal/reel"
	"github.com/fakeyudi/sourcereel/internal/workspace"
)

// ── Styles ────────────

var (
	// Title bar at the very top
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	// Title bar while a freshly applied input is highlighted
	flashStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("214")).
			Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	tabSepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")).
			Background(lipgloss.Color("235"))

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	appliedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	gutterStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)
)

// ── Panes ─────────────────

type paneID int

const (
	paneEditor paneID = iota
	paneOutput
	paneInputs
	paneCount
)

var paneNames = [paneCount]string{"Editor", "REPL", "Inputs"}

const (
	seekStep = 5 * time.Second
	// flashTicks is how many ticks the title stays highlighted after an
	// input is applied.
	flashTicks = 8
)

type tickMsg time.Time

// ── Model ────────────────────

// Model is the root Bubble Tea model for the player.
type Model struct {
	cast     *bundle.Sourcecast
	driver   *playback.Driver
	ws       *workspace.Workspace
	title    string
	interval time.Duration

	activePane paneID
	viewports  [paneCount]viewport.Model
	width      int
	height     int
	ready      bool

	flash    int
	lastSeen int
}

// New creates a player for cast. The driver must have been built over ws.
func New(cast *bundle.Sourcecast, driver *playback.Driver, ws *workspace.Workspace, interval time.Duration) Model {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	title := cast.Title
	if title == "" {
		title = cast.ID
	}
	return Model{
		cast:     cast,
		driver:   driver,
		ws:       ws,
		title:    title,
		interval: interval,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd {
	m.driver.Play()
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.driver.Stop()
			return m, tea.Quit
		case " ":
			m.togglePause()
		case "left", "h":
			m.seek(m.driver.Position() - seekStep)
		case "right", "l":
			m.seek(m.driver.Position() + seekStep)
		case "home", "r":
			m.driver.Play()
			m.refresh()
		case "tab":
			m.activePane = (m.activePane + 1) % paneCount
		case "shift+tab":
			m.activePane = (m.activePane - 1 + paneCount) % paneCount
		case "1", "2", "3":
			m.activePane = paneID(msg.String()[0] - '1')
		default:
			var cmd tea.Cmd
			m.viewports[m.activePane], cmd = m.viewports[m.activePane].Update(msg)
			return m, cmd
		}
		return m, nil

	case tickMsg:
		if m.driver.Tick() {
			m.flash = flashTicks
		} else if m.flash > 0 {
			m.flash--
		}
		m.refresh()
		return m, m.tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.initViewports()
		return m, nil
	}
	return m, nil
}

func (m *Model) togglePause() {
	switch m.driver.Status() {
	case reel.Playing:
		m.driver.Pause()
	case reel.PlaybackPaused:
		m.driver.Resume()
	default:
		m.driver.Play()
		m.refresh()
	}
}

func (m *Model) seek(t time.Duration) {
	if t < 0 {
		t = 0
	}
	if m.driver.Seek(t) {
		m.flash = flashTicks
	}
	m.refresh()
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	// ── Row 1: title bar ──────────────────────────────────────────────────────
	style := titleStyle
	heading := "  sourcereel  " + m.title
	if m.flash > 0 {
		style = flashStyle
		if n := m.driver.Applied(); n > 0 {
			heading += "  ·  " + m.driver.Data().Inputs[n-1].Describe()
		}
	}
	title := style.Width(m.width).Render(heading)

	// ── Row 2: pane tabs and workspace chapter ──────────────────────────────────
	bar := lipgloss.NewStyle().Background(lipgloss.Color("235")).Width(m.width)
	tabRow := bar.Render(m.renderTabs())

	// ── Row 3: side content tabs ──────────────────────────────────────────────
	sideRow := bar.Render(m.renderSideTabs())

	// ── Row 4…N-1: scrollable content ────────────────────────────────────────
	content := m.viewports[m.activePane].View()

	// ── Row N: status / hint bar ──────────────────────────────────────────────
	return lipgloss.JoinVertical(lipgloss.Left, title, tabRow, sideRow, content, m.statusBar())
}

func (m Model) renderTabs() string {
	var parts []string
	for i := paneID(0); i < paneCount; i++ {
		label := fmt.Sprintf(" %d %s ", i+1, paneNames[i])
		if i == m.activePane {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, inactiveTabStyle.Render(label))
		}
		parts = append(parts, tabSepStyle.Render("│"))
	}
	state := m.ws.State()
	parts = append(parts, inactiveTabStyle.Render(fmt.Sprintf(" chapter %d  %s ", state.Chapter, state.ExternalLibrary)))
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// renderSideTabs marks the side content tab the recording has selected.
func (m Model) renderSideTabs() string {
	active := m.ws.State().ActiveTab
	var parts []string
	for i, tab := range reel.SideContentTabs {
		if tab == active {
			parts = append(parts, activeTabStyle.Render(string(tab)))
		} else {
			parts = append(parts, inactiveTabStyle.Render(string(tab)))
		}
		if i < len(reel.SideContentTabs)-1 {
			parts = append(parts, tabSepStyle.Render("│"))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) statusBar() string {
	icon := "■"
	switch m.driver.Status() {
	case reel.Playing:
		icon = "▶"
	case reel.PlaybackPaused:
		icon = "❚❚"
	}
	pos, end := m.driver.Position(), m.driver.End()
	clock := fmt.Sprintf("%s %s / %s", icon, bundle.FormatDuration(pos), bundle.FormatDuration(end))
	hint := "  space pause  ←/→ ∓5s  home restart  tab pane  q quit"
	bar := progressBar(pos, end, 20)
	pad := m.width - lipgloss.Width(clock) - lipgloss.Width(hint) - lipgloss.Width(bar) - 4
	if pad < 1 {
		pad = 1
	}
	return statusBarStyle.Width(m.width).Render(clock + "  " + bar + strings.Repeat(" ", pad) + hint)
}

func progressBar(pos, end time.Duration, width int) string {
	filled := width
	if end > 0 {
		filled = int(int64(width) * int64(pos) / int64(end))
	}
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// ── Viewport management ───────────────────────────────────────────────────────

func (m *Model) initViewports() {
	// title(1) + tabRow(1) + sideRow(1) + statusBar(1) = 4 fixed rows
	vpHeight := m.height - 4
	if vpHeight < 1 {
		vpHeight = 1
	}
	for i := paneID(0); i < paneCount; i++ {
		vp := viewport.New(m.width, vpHeight)
		vp.SetContent(m.renderPane(i))
		m.viewports[i] = vp
	}
}

// refresh re-renders every pane after the workspace changed.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	for i := paneID(0); i < paneCount; i++ {
		m.viewports[i].SetContent(m.renderPane(i))
	}
	if n := len(m.ws.State().Output); n != m.lastSeen {
		m.lastSeen = n
		m.viewports[paneOutput].GotoBottom()
	}
}

// ── Pane renderers ─────────────────────────────────────────────────────────────

func (m *Model) renderPane(p paneID) string {
	switch p {
	case paneEditor:
		return m.renderEditor()
	case paneOutput:
		return m.renderOutput()
	case paneInputs:
		return m.renderInputs()
	}
	return ""
}

func heading(s string) string {
	return "\n" + sectionHeader.Render("  "+s) + "\n\n"
}

func (m *Model) renderEditor() string {
	var sb strings.Builder
	lines := strings.Split(m.ws.EditorValue(), "\n")
	sb.WriteString(heading(fmt.Sprintf("Editor (%d lines)", len(lines))))
	for i, line := range lines {
		sb.WriteString(gutterStyle.Render(fmt.Sprintf("  %4d │ ", i+1)) + line + "\n")
	}
	return sb.String()
}

func (m *Model) renderOutput() string {
	var sb strings.Builder
	out := m.ws.State().Output
	sb.WriteString(heading(fmt.Sprintf("REPL (%d)", len(out))))
	if len(out) == 0 {
		sb.WriteString(dimStyle.Render("  (nothing run yet)") + "\n")
		return sb.String()
	}
	for _, line := range out {
		sb.WriteString("  " + line + "\n")
	}
	return sb.String()
}

func (m *Model) renderInputs() string {
	var sb strings.Builder
	inputs := m.driver.Data().Inputs
	sb.WriteString(heading(fmt.Sprintf("Inputs (%d of %d applied)", m.driver.Applied(), len(inputs))))
	if init := m.driver.Data().Init; init != nil {
		row := func(label, value string) {
			sb.WriteString(labelStyle.Render(fmt.Sprintf("  %-14s", label)) + "  " + value + "\n")
		}
		row("Chapter:", fmt.Sprintf("%d", init.Chapter))
		row("Library:", string(init.ExternalLibrary))
		if m.cast.Author != "" {
			row("Author:", m.cast.Author)
		}
		sb.WriteString("\n")
	}
	if len(inputs) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	for i, in := range inputs {
		mark := dimStyle.Render("  ○ ")
		text := in.Describe()
		if i < m.driver.Applied() {
			mark = appliedStyle.Render("  ● ")
		} else {
			text = dimStyle.Render(text)
		}
		sb.WriteString(mark + timeStyle.Render(bundle.FormatDuration(in.Time)) + "  " + text + "\n")
	}
	return sb.String()
}

// Run plays cast in the terminal until the user quits.
func Run(cast *bundle.Sourcecast, driver *playback.Driver, ws *workspace.Workspace, interval time.Duration) error {
	p := tea.NewProgram(New(cast, driver, ws, interval), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
