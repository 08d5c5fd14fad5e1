// Package tui provides a Bubble Tea terminal user interface for sample-pack-maker.
package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/handiism/sample-pack-maker/internal/config"
	ioutils "github.com/handiism/sample-pack-maker/internal/io"
	"github.com/handiism/sample-pack-maker/internal/model"
	"github.com/handiism/sample-pack-maker/internal/pack"
	"github.com/handiism/sample-pack-maker/internal/selector"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
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

	fileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// maxListedFiles is how many selected files the input view shows.
const maxListedFiles = 8

// maxLogs is how many progress events are kept on screen.
const maxLogs = 10

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateProcessing
	StateComplete
	StateError
)

// Input focus.
const (
	focusPack = iota
	focusPaths
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   pack.ProgressLevel
}

// eventBuffer collects progress events emitted by the batch goroutine
// until the next tick drains them.
type eventBuffer struct {
	mu     sync.Mutex
	events []pack.ProgressEvent
}

func (b *eventBuffer) add(e pack.ProgressEvent) {
	b.mu.Lock()
	b.events = append(b.events, e)
	b.mu.Unlock()
}

func (b *eventBuffer) drain() []pack.ProgressEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	events := b.events
	b.events = nil
	return events
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	packInput textinput.Model
	pathInput textinput.Model
	focus     int
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	session   *pack.Session
	events    *eventBuffer
	logs      []LogEntry

	// Status line shown under the inputs
	status      string
	statusLevel pack.ProgressLevel

	result *pack.Result
	err    error

	done  int
	total int

	verbose bool

	width  int
	height int
}

// NewModel creates a new TUI model. If settings is nil, defaults are used.
func NewModel(settings *config.Settings) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	pi := textinput.New()
	pi.Placeholder = "Drums Vol1"
	pi.Focus()
	pi.CharLimit = 200
	pi.Width = 60

	fi := textinput.New()
	fi.Placeholder = "paste or drop .wav files here, then press enter"
	fi.CharLimit = 0
	fi.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	events := &eventBuffer{}

	return Model{
		state:     StateInput,
		packInput: pi,
		pathInput: fi,
		focus:     focusPack,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		session:   pack.NewSession(pack.NewProcessor(settings, events.add)),
		events:    events,
		logs:      make([]LogEntry, 0),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// DoneMsg is sent when the batch finishes.
	DoneMsg struct {
		Result *pack.Result
		Err    error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
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
		if msg.Paste && m.state == StateInput && m.focus == focusPaths {
			m.addPaths(string(msg.Runes))
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}

		case "tab", "shift+tab":
			if m.state == StateInput {
				m.toggleFocus()
				return m, nil
			}

		case "enter":
			if m.state == StateInput {
				if m.focus == focusPaths {
					m.addPaths(m.pathInput.Value())
					m.pathInput.SetValue("")
					return m, nil
				}
				return m.startRun()
			}

		case "ctrl+e":
			if m.state == StateInput {
				return m.startRun()
			}

		case "ctrl+l":
			if m.state == StateInput {
				m.session.Clear()
				m.setStatus("Selection cleared", pack.LevelInfo)
				return m, nil
			}

		case "ctrl+t":
			if m.state == StateInput {
				if m.settings.Policy() == model.PolicyStripOnly {
					m.settings.MetadataPolicy = model.PolicyStripAndRelabel.String()
				} else {
					m.settings.MetadataPolicy = model.PolicyStripOnly.String()
				}
				return m, nil
			}

		case "ctrl+p":
			if m.state == StateInput {
				m.settings.CreatePlaylist = !m.settings.CreatePlaylist
				return m, nil
			}

		case "ctrl+g":
			if m.state == StateInput {
				m.verbose = !m.verbose
				return m, nil
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Back to input; the selection is kept for another run
				m.state = StateInput
				m.logs = nil
				m.result = nil
				m.err = nil
				m.done = 0
				m.total = 0
				m.status = ""
				m.focus = focusPack
				m.pathInput.Blur()
				m.packInput.Focus()
				return m, textinput.Blink
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case DoneMsg:
		m.appendLogs(m.events.drain())
		m.done, _ = m.session.Processor().Progress()
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.state = StateComplete
			m.result = msg.Result
		}

	case TickMsg:
		if m.state == StateProcessing {
			m.appendLogs(m.events.drain())
			if done, total := m.session.Processor().Progress(); total > 0 {
				m.done, m.total = done, total
			}

			var percent float64
			if m.total > 0 {
				percent = float64(m.done) / float64(m.total)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update the focused text input
	if m.state == StateInput {
		var cmd tea.Cmd
		if m.focus == focusPaths {
			m.pathInput, cmd = m.pathInput.Update(msg)
		} else {
			m.packInput, cmd = m.packInput.Update(msg)
		}
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) toggleFocus() {
	if m.focus == focusPack {
		m.focus = focusPaths
		m.packInput.Blur()
		m.pathInput.Focus()
	} else {
		m.focus = focusPack
		m.pathInput.Blur()
		m.packInput.Focus()
	}
}

// addPaths merges a typed, pasted or dropped payload into the selection.
func (m *Model) addPaths(payload string) {
	raw := selector.SplitPayload(payload)
	if len(raw) == 0 {
		return
	}
	added, total := m.session.AddPaths(raw)
	switch {
	case added == 0:
		m.setStatus(fmt.Sprintf("No new WAV files (%d selected)", total), pack.LevelWarning)
	case added < len(raw):
		m.setStatus(fmt.Sprintf("Added %d of %d path(s), %d selected", added, len(raw), total), pack.LevelInfo)
	default:
		m.setStatus(fmt.Sprintf("Added %d file(s), %d selected", added, total), pack.LevelInfo)
	}
}

// startRun checks the inputs and launches the batch.
func (m Model) startRun() (tea.Model, tea.Cmd) {
	if m.session.Len() == 0 {
		m.setStatus(model.ErrEmptyInput.Error()+": add some files first", pack.LevelError)
		return m, nil
	}

	name := strings.TrimSpace(m.packInput.Value())
	if err := model.ValidatePackName(name); err != nil {
		m.setStatus(packNameHint(name, err), pack.LevelError)
		return m, nil
	}

	settings := *m.settings
	m.session.SetProcessor(pack.NewProcessor(&settings, m.events.add))

	m.state = StateProcessing
	m.logs = nil
	m.status = ""
	m.done, m.total = 0, m.session.Len()
	return m, tea.Batch(m.runBatch(name), m.tickProgress(), m.spinner.Tick)
}

// packNameHint explains why a pack name was rejected and suggests a fix.
func packNameHint(name string, err error) string {
	if !errors.Is(err, model.ErrInvalidPackName) {
		return "Enter a pack name"
	}
	suggestion := ioutils.SanitizeFileName(name)
	if suggestion == "" || model.ValidatePackName(suggestion) != nil {
		return err.Error()
	}
	return fmt.Sprintf("%v, try %q", err, suggestion)
}

func (m *Model) setStatus(message string, level pack.ProgressLevel) {
	m.status = message
	m.statusLevel = level
}

func (m *Model) appendLogs(events []pack.ProgressEvent) {
	for _, e := range events {
		// Filter verbose messages if not in verbose mode
		if e.Level == pack.LevelVerbose && !m.verbose {
			continue
		}
		m.logs = append(m.logs, LogEntry{Message: e.Message, Level: e.Level})
	}
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// runBatch processes the selection off the UI loop.
func (m Model) runBatch(name string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		result, err := session.Run(name)
		return DoneMsg{Result: result, Err: err}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("🎛  Sample Pack Maker"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Rinse WAV samples into a numbered, cleanly tagged pack"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateProcessing:
		b.WriteString(m.viewProcessing())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Pack name:"))
	b.WriteString("\n")
	b.WriteString(m.packInput.View())
	b.WriteString("\n\n")
	b.WriteString(subtitleStyle.Render("Add files:"))
	b.WriteString("\n")
	b.WriteString(m.pathInput.View())
	b.WriteString("\n\n")

	files := m.session.Files()
	b.WriteString(infoStyle.Render(fmt.Sprintf("Selected: %d file(s)", len(files))))
	b.WriteString("\n")
	start := 0
	if len(files) > maxListedFiles {
		start = len(files) - maxListedFiles
		b.WriteString(dimStyle.Render(fmt.Sprintf("  … %d more", start)))
		b.WriteString("\n")
	}
	for i := start; i < len(files); i++ {
		b.WriteString(fileStyle.Render(fmt.Sprintf("  %3d  %s", i+1, filepath.Base(files[i]))))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	relabelCheck := "[ ]"
	if m.settings.Policy() == model.PolicyStripAndRelabel {
		relabelCheck = "[×]"
	}
	playlistCheck := "[ ]"
	if m.settings.CreatePlaylist {
		playlistCheck = "[×]"
	}
	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[×]"
	}

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Relabel tags with file name and pack name (ctrl+t)\n", relabelCheck))
	b.WriteString(fmt.Sprintf("  %s Create playlist (ctrl+p)\n", playlistCheck))
	b.WriteString(fmt.Sprintf("  %s Verbose output (ctrl+g)\n", verboseCheck))
	b.WriteString("\n")

	output := "next to the first file"
	if m.settings.OutputRoot != "" {
		output = m.settings.OutputRoot
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("Output: %s", output)))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(levelStyle(m.statusLevel).Render(m.status))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewProcessing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Rinsing and exporting..."))
	b.WriteString("\n\n")

	var percent float64
	if m.total > 0 {
		percent = float64(m.done) / float64(m.total)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Files: %d/%d", m.done, m.total)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	if m.result != nil {
		box := boxStyle.Render(fmt.Sprintf(
			"✨ Pack exported!\n\n"+
				"Files: %d\n"+
				"Size: %s\n"+
				"Folder: %s",
			m.result.Count,
			humanize.Bytes(uint64(m.result.Bytes)),
			m.result.Folder,
		))
		b.WriteString(box)
		b.WriteString("\n\n")
	}
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Export failed:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("  processed %d of %d file(s), nothing was rolled back", processedBefore(m.err), m.total)))
		b.WriteString("\n")
	}

	return b.String()
}

// processedBefore returns how many files were done when err occurred.
func processedBefore(err error) int {
	var fsErr *pack.FilesystemError
	if errors.As(err, &fsErr) {
		return fsErr.Processed()
	}
	var tagErr *pack.TagIOError
	if errors.As(err, &tagErr) {
		return tagErr.Processed()
	}
	return 0
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		prefix := "•"
		switch log.Level {
		case pack.LevelError:
			prefix = "✗"
		case pack.LevelWarning:
			prefix = "!"
		case pack.LevelSuccess:
			prefix = "✓"
		case pack.LevelInfo:
			prefix = "›"
		}
		b.WriteString(levelStyle(log.Level).Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func levelStyle(level pack.ProgressLevel) lipgloss.Style {
	switch level {
	case pack.LevelError:
		return errorStyle
	case pack.LevelWarning:
		return warningStyle
	case pack.LevelSuccess:
		return successStyle
	case pack.LevelInfo:
		return infoStyle
	default:
		return dimStyle
	}
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "tab: switch field • enter: add files / export • ctrl+e: export • ctrl+l: clear • esc: quit"
	case StateProcessing:
		return "ctrl+c: quit"
	case StateComplete, StateError:
		return "r: new pack • q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
