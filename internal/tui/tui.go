// Package tui provides a Bubble Tea terminal user interface for the
// deck pipeline: a region/system picker, then live progress while the
// pipeline downloads, renders and packages the deck.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/peaksoaring/alpdeck/internal/config"
	"github.com/peaksoaring/alpdeck/internal/model"
	"github.com/peaksoaring/alpdeck/internal/pipeline"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#88AA66")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	StateSelect State = iota
	StateRunning
	StateComplete
	StateError
)

// target is one selectable region+system combination.
type target struct {
	region string
	system string
}

func (t target) String() string {
	return fmt.Sprintf("%s / %s", t.region, t.system)
}

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   pipeline.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	spinner  spinner.Model
	progress progress.Model
	settings *config.Settings

	targets []target
	cursor  int

	logs        []LogEntry
	archivePath string
	err         error

	// Pipeline run
	ctx    context.Context
	cancel context.CancelFunc
	events chan tea.Msg

	stepsDone  int
	stepsTotal int
	step       string

	// Options
	force   bool
	verbose bool

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(settings *config.Settings) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#88AA66"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:    StateSelect,
		spinner:  sp,
		progress: prog,
		settings: settings,
		targets:  allTargets(),
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan tea.Msg, 64),
	}
}

// allTargets lists every buildable region+system combination in a
// stable order.
func allTargets() []target {
	var out []target
	for _, region := range []string{"ostalpen", "westalpen"} {
		for _, system := range model.ValidCombinations[region] {
			out = append(out, target{region: region, system: system})
		}
	}
	return out
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Message types
type (
	// ProgressMsg carries a pipeline progress event.
	ProgressMsg struct {
		Event pipeline.ProgressEvent
	}

	// StepMsg announces the start of a pipeline step.
	StepMsg struct {
		Name  string
		Done  int
		Total int
	}

	// RunDoneMsg is sent when the pipeline finishes.
	RunDoneMsg struct {
		Path string
		Err  error
	}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateSelect {
				return m, tea.Quit
			}
			if m.state == StateRunning {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "up", "k":
			if m.state == StateSelect && m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.state == StateSelect && m.cursor < len(m.targets)-1 {
				m.cursor++
			}

		case "f":
			if m.state == StateSelect {
				m.force = !m.force
			}

		case "v":
			if m.state == StateSelect {
				m.verbose = !m.verbose
			}

		case "enter":
			if m.state == StateSelect {
				m.state = StateRunning
				return m, tea.Batch(m.startRun(), m.waitForEvent(), m.spinner.Tick)
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.state = StateSelect
				m.logs = nil
				m.err = nil
				m.archivePath = ""
				m.stepsDone = 0
				m.stepsTotal = 0
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.events = make(chan tea.Msg, 64)
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		if msg.Event.Level == pipeline.LevelVerbose && !m.verbose {
			return m, m.waitForEvent()
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		// Keep only last 10 logs
		if len(m.logs) > 10 {
			m.logs = m.logs[len(m.logs)-10:]
		}
		cmds = append(cmds, m.waitForEvent())

	case StepMsg:
		m.step = msg.Name
		m.stepsDone = msg.Done
		m.stepsTotal = msg.Total
		var percent float64
		if msg.Total > 0 {
			percent = float64(msg.Done) / float64(msg.Total)
		}
		cmds = append(cmds, m.progress.SetPercent(percent), m.waitForEvent())

	case RunDoneMsg:
		m.archivePath = msg.Path
		if msg.Err != nil && m.ctx.Err() == nil {
			m.state = StateError
			m.err = msg.Err
		} else if m.ctx.Err() != nil {
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		} else {
			m.state = StateComplete
			cmds = append(cmds, m.progress.SetPercent(1))
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// waitForEvent returns a command that delivers the next pipeline
// message.
func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

// startRun launches the pipeline for the selected target in the
// background. Steps and progress events stream through the events
// channel.
func (m Model) startRun() tea.Cmd {
	t := m.targets[m.cursor]
	events := m.events
	ctx := m.ctx
	settings := m.settings
	force := m.force

	return func() tea.Msg {
		mgr := pipeline.NewManager(settings, func(e pipeline.ProgressEvent) {
			select {
			case events <- ProgressMsg{Event: e}:
			case <-ctx.Done():
			}
		})
		mgr.Force = force

		go func() {
			job, err := mgr.Resolve(t.region, t.system)
			if err != nil {
				events <- RunDoneMsg{Err: err}
				return
			}
			members, err := mgr.Members(job)
			if err != nil {
				events <- RunDoneMsg{Err: err}
				return
			}

			type phase struct {
				name string
				run  func() error
			}
			var phases []phase
			for _, member := range members {
				member := member
				phases = append(phases,
					phase{"download " + member.OutName(), func() error { return mgr.Download(ctx, member) }},
					phase{"basemap", func() error { return mgr.Basemap(ctx, member) }},
					phase{"cards", func() error { return mgr.Cards(ctx, member, nil) }},
				)
			}
			var archive string
			phases = append(phases,
				phase{"build", func() error {
					var err error
					archive, err = mgr.Build(ctx, job)
					return err
				}},
				phase{"verify", func() error { return mgr.Verify(ctx, job, archive) }},
			)

			for i, p := range phases {
				events <- StepMsg{Name: p.name, Done: i, Total: len(phases)}
				if err := p.run(); err != nil {
					events <- RunDoneMsg{Path: archive, Err: err}
					return
				}
			}
			events <- RunDoneMsg{Path: archive}
		}()

		return StepMsg{Name: "starting", Done: 0, Total: 1}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Alpdeck"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Anki decks for Alpine mountain groups"))
	b.WriteString("\n\n")

	switch m.state {
	case StateSelect:
		b.WriteString(m.viewSelect())
	case StateRunning:
		b.WriteString(m.viewRunning())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewSelect() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Select a deck to build:"))
	b.WriteString("\n\n")
	for i, t := range m.targets {
		line := "  " + t.String()
		if i == m.cursor {
			line = selectedStyle.Render("> " + t.String())
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	forceCheck := "[ ]"
	if m.force {
		forceCheck = "[x]"
	}
	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[x]"
	}
	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Force rebuild (f)\n", forceCheck))
	b.WriteString(fmt.Sprintf("  %s Verbose output (v)\n", verboseCheck))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Output: %s", m.settings.DecksDir())))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewRunning() string {
	var b strings.Builder

	t := m.targets[m.cursor]
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Building %s", t)))
	if m.step != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  (%s)", m.step)))
	}
	b.WriteString("\n\n")

	b.WriteString(m.progress.View())
	b.WriteString("\n")
	if m.stepsTotal > 0 {
		b.WriteString(infoStyle.Render(fmt.Sprintf("Step %d/%d", m.stepsDone+1, m.stepsTotal)))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	box := boxStyle.Render(fmt.Sprintf(
		"Deck complete!\n\n%s", m.archivePath,
	))
	return box
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "-"
		switch log.Level {
		case pipeline.LevelError:
			style = errorStyle
			prefix = "x"
		case pipeline.LevelWarning:
			style = warningStyle
			prefix = "!"
		case pipeline.LevelSuccess:
			style = successStyle
			prefix = "+"
		case pipeline.LevelInfo:
			style = infoStyle
			prefix = ">"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateSelect:
		return "up/down: select - enter: build - f: force - v: verbose - esc: quit"
	case StateRunning:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: build another - q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
