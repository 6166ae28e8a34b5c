// ABOUTME: Bubbletea model for the channel rack TUI
// ABOUTME: Defines application state, key handling and update logic
package ui

import (
	"fmt"
	"strings"

	"github.com/Resonate-Protocol/stepseq-go/internal/config"
	"github.com/Resonate-Protocol/stepseq-go/pkg/sequencer"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	bpmStep    = 5
	volumeStep = 0.05
)

// Controller is the session surface the TUI drives
type Controller interface {
	AddChannel() sequencer.ChannelID
	DeleteChannel(id sequencer.ChannelID) error
	LoadSample(id sequencer.ChannelID, path string) error
	ToggleStep(id sequencer.ChannelID, index int) error
	SetVolume(id sequencer.ChannelID, v float64) error
	SetPitch(id sequencer.ChannelID, semitones int) error
	SetBPM(bpm int) int
	Start()
	Stop()
	Export(path string) error
	State() sequencer.SessionState
}

type promptKind int

const (
	promptNone promptKind = iota
	promptLoad
	promptExport
)

// Model represents the TUI state
type Model struct {
	ctrl Controller

	// Session
	state sequencer.SessionState

	// Selection
	row int // selected channel
	col int // selected step

	// Prompt
	prompt promptKind
	input  textinput.Model
	dirs   config.Dirs
	busy   bool // a load or export is running

	// Header
	name    string
	port    int
	remotes int

	// Status line
	message string
	isError bool

	// Dimensions
	width  int
	height int

	quitting bool
}

// StatusMsg updates TUI state
type StatusMsg struct {
	State   *sequencer.SessionState
	Remotes *int
	Message string
}

// loadDoneMsg reports a finished sample load
type loadDoneMsg struct {
	channel string
	path    string
	err     error
}

// exportDoneMsg reports a finished export
type exportDoneMsg struct {
	path string
	err  error
}

// NewModel creates a new TUI model. Relative prompt paths resolve against dirs.
func NewModel(ctrl Controller, name string, port int, dirs config.Dirs) Model {
	ti := textinput.New()
	ti.CharLimit = 512
	ti.Width = 48

	return Model{
		ctrl:  ctrl,
		state: ctrl.State(),
		input: ti,
		dirs:  dirs,
		name:  name,
		port:  port,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.prompt != promptNone {
			return m.handlePromptKey(msg)
		}
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	case loadDoneMsg:
		m.busy = false
		if m.report(msg.err) {
			m.setMessage(fmt.Sprintf("Loaded %s into %s", msg.path, msg.channel))
		}
		m.refresh()
	case exportDoneMsg:
		m.busy = false
		if m.report(msg.err) {
			m.setMessage(fmt.Sprintf("Exported %s", msg.path))
		}
	}

	return m, nil
}

// handleKey handles keyboard input on the rack
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case " ":
		if m.state.Playing {
			m.ctrl.Stop()
		} else {
			m.ctrl.Start()
		}

	case "up", "k":
		if m.row > 0 {
			m.row--
		}
	case "down", "j":
		if m.row < len(m.state.Channels)-1 {
			m.row++
		}
	case "left", "h":
		if m.col > 0 {
			m.col--
		}
	case "right", "l":
		if m.col < m.state.Steps-1 {
			m.col++
		}

	case "enter", "x":
		if ch, ok := m.selected(); ok {
			m.report(m.ctrl.ToggleStep(ch.ID, m.col))
		}

	case "a":
		id := m.ctrl.AddChannel()
		m.refresh()
		m.row = len(m.state.Channels) - 1
		m.setMessage(fmt.Sprintf("Added channel %s", shortID(id)))
		return m, nil

	case "D":
		if ch, ok := m.selected(); ok {
			if m.report(m.ctrl.DeleteChannel(ch.ID)) {
				m.setMessage(fmt.Sprintf("Deleted %s", ch.Name))
			}
		}

	case "+", "=":
		m.ctrl.SetBPM(m.state.BPM + bpmStep)
	case "-", "_":
		m.ctrl.SetBPM(m.state.BPM - bpmStep)

	case "]":
		if ch, ok := m.selected(); ok {
			m.report(m.ctrl.SetVolume(ch.ID, ch.Volume+volumeStep))
		}
	case "[":
		if ch, ok := m.selected(); ok {
			m.report(m.ctrl.SetVolume(ch.ID, ch.Volume-volumeStep))
		}
	case ".", ">":
		if ch, ok := m.selected(); ok {
			m.report(m.ctrl.SetPitch(ch.ID, ch.Pitch+1))
		}
	case ",", "<":
		if ch, ok := m.selected(); ok {
			m.report(m.ctrl.SetPitch(ch.ID, ch.Pitch-1))
		}

	case "o":
		if m.busy {
			m.setError("Busy, wait for the current file")
			break
		}
		if _, ok := m.selected(); ok {
			return m.openPrompt(promptLoad, "Sample file: ")
		}
		m.setError("Add a channel first (a)")
	case "e":
		if m.busy {
			m.setError("Busy, wait for the current file")
			break
		}
		return m.openPrompt(promptExport, "Export to: ")
	}

	m.refresh()
	return m, nil
}

// handlePromptKey routes keys to the path prompt
func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePrompt()
		return m, nil
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "enter":
		path := strings.TrimSpace(m.input.Value())
		kind := m.prompt
		m.closePrompt()
		if path == "" {
			return m, nil
		}
		cmd := m.submitPrompt(kind, path)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) openPrompt(kind promptKind, label string) (tea.Model, tea.Cmd) {
	m.prompt = kind
	m.input.Prompt = label
	m.input.SetValue("")
	return m, m.input.Focus()
}

func (m *Model) closePrompt() {
	m.prompt = promptNone
	m.input.Blur()
	m.input.SetValue("")
}

// submitPrompt starts the load or export off the update loop
func (m *Model) submitPrompt(kind promptKind, path string) tea.Cmd {
	ctrl := m.ctrl

	switch kind {
	case promptLoad:
		ch, ok := m.selected()
		if !ok {
			return nil
		}
		path = m.dirs.ResolveSample(path)
		m.busy = true
		m.setMessage(fmt.Sprintf("Loading %s...", path))
		return func() tea.Msg {
			return loadDoneMsg{channel: ch.Name, path: path, err: ctrl.LoadSample(ch.ID, path)}
		}
	case promptExport:
		path = m.dirs.ResolveExport(path)
		m.busy = true
		m.setMessage(fmt.Sprintf("Exporting %s...", path))
		return func() tea.Msg {
			return exportDoneMsg{path: path, err: ctrl.Export(path)}
		}
	}
	return nil
}

// selected returns the channel under the cursor
func (m Model) selected() (sequencer.ChannelState, bool) {
	if m.row < 0 || m.row >= len(m.state.Channels) {
		return sequencer.ChannelState{}, false
	}
	return m.state.Channels[m.row], true
}

// refresh re-reads the session and keeps the selection in range
func (m *Model) refresh() {
	m.state = m.ctrl.State()
	m.clampSelection()
}

func (m *Model) clampSelection() {
	if m.row >= len(m.state.Channels) {
		m.row = len(m.state.Channels) - 1
	}
	if m.row < 0 {
		m.row = 0
	}
	if m.col >= m.state.Steps {
		m.col = m.state.Steps - 1
	}
	if m.col < 0 {
		m.col = 0
	}
}

// report shows err on the status line and reports success
func (m *Model) report(err error) bool {
	if err != nil {
		m.setError(err.Error())
		return false
	}
	return true
}

func (m *Model) setMessage(s string) {
	m.message = s
	m.isError = false
}

func (m *Model) setError(s string) {
	m.message = s
	m.isError = true
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.State != nil {
		m.state = *msg.State
		m.clampSelection()
	}
	if msg.Remotes != nil {
		m.remotes = *msg.Remotes
	}
	if msg.Message != "" {
		m.setMessage(msg.Message)
	}
}

func shortID(id sequencer.ChannelID) string {
	s := string(id)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
