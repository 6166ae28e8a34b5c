// ABOUTME: Tests for TUI model and state management
// ABOUTME: Drives key handling against a real session and checks state transitions
package ui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Resonate-Protocol/stepseq-go/internal/config"
	"github.com/Resonate-Protocol/stepseq-go/pkg/sequencer"
	tea "github.com/charmbracelet/bubbletea"
)

type idleTimer struct{}

func (idleTimer) Stop() bool { return true }

func idleScheduler(time.Duration, func()) sequencer.Timer {
	return idleTimer{}
}

func newTestModel() (Model, *sequencer.Session) {
	session := sequencer.NewSession(sequencer.Config{Steps: 8, Scheduler: idleScheduler})
	return NewModel(session, "Test", 0, config.Dirs{}), session
}

// submit presses enter on an open prompt and delivers the command's result
func submit(t *testing.T, m Model) Model {
	t.Helper()

	updated, cmd := m.Update(keyEnter)
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected a command from prompt submit")
	}
	if !m.busy {
		t.Error("expected model busy while the command runs")
	}

	updated, _ = m.Update(cmd())
	return updated.(Model)
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		updated, _ := m.Update(k)
		m = updated.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEscape}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

func TestNewModel(t *testing.T) {
	m, _ := newTestModel()

	if m.state.BPM != sequencer.DefaultBPM {
		t.Errorf("expected BPM %d, got %d", sequencer.DefaultBPM, m.state.BPM)
	}
	if m.state.Steps != 8 {
		t.Errorf("expected 8 steps, got %d", m.state.Steps)
	}
	if m.prompt != promptNone {
		t.Error("expected no prompt initially")
	}
	if !strings.Contains(m.View(), "No channels") {
		t.Error("expected empty rack hint in view")
	}
}

func TestAddChannelSelectsIt(t *testing.T) {
	m, session := newTestModel()

	m = press(t, m, runes("a"), runes("a"))

	if len(session.State().Channels) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(session.State().Channels))
	}
	if m.row != 1 {
		t.Errorf("expected newest channel selected, got row %d", m.row)
	}
	if !strings.Contains(m.View(), "Channel 2") {
		t.Error("expected channel name in view")
	}
}

func TestMoveAndToggleStep(t *testing.T) {
	m, session := newTestModel()
	m = press(t, m, runes("a"), keyRight, keyRight, keyEnter)

	steps := session.State().Channels[0].Steps
	if !steps[2] {
		t.Errorf("expected step 2 active, got %v", steps)
	}

	m = press(t, m, runes("x"))
	if session.State().Channels[0].Steps[2] {
		t.Error("expected second toggle to clear step 2")
	}

	// Cursor stays inside the grid
	for i := 0; i < 20; i++ {
		m = press(t, m, keyRight)
	}
	if m.col != 7 {
		t.Errorf("expected col clamped to 7, got %d", m.col)
	}
	for i := 0; i < 20; i++ {
		m = press(t, m, keyLeft, keyUp)
	}
	if m.col != 0 || m.row != 0 {
		t.Errorf("expected cursor at origin, got row %d col %d", m.row, m.col)
	}

	m = press(t, m, keyDown)
	if m.row != 0 {
		t.Errorf("expected row to stay 0 with one channel, got %d", m.row)
	}
}

func TestSpaceTogglesTransport(t *testing.T) {
	m, session := newTestModel()

	m = press(t, m, keySpace)
	if !session.State().Playing || !m.state.Playing {
		t.Fatal("expected playing after space")
	}

	m = press(t, m, keySpace)
	if session.State().Playing || m.state.Playing {
		t.Fatal("expected stopped after second space")
	}
}

func TestBPMKeys(t *testing.T) {
	m, session := newTestModel()

	m = press(t, m, runes("+"), runes("+"))
	if session.State().BPM != 130 {
		t.Errorf("expected BPM 130, got %d", session.State().BPM)
	}

	m = press(t, m, runes("-"))
	if m.state.BPM != 125 {
		t.Errorf("expected BPM 125, got %d", m.state.BPM)
	}
}

func TestVolumeAndPitchKeys(t *testing.T) {
	m, session := newTestModel()
	m = press(t, m, runes("a"), runes("]"), runes("."), runes("."), runes(","))

	ch := session.State().Channels[0]
	if ch.Volume < 0.549 || ch.Volume > 0.551 {
		t.Errorf("expected volume 0.55, got %v", ch.Volume)
	}
	if ch.Pitch != 1 {
		t.Errorf("expected pitch 1, got %d", ch.Pitch)
	}

	m = press(t, m, runes("["), runes("["))
	ch = session.State().Channels[0]
	if ch.Volume < 0.449 || ch.Volume > 0.451 {
		t.Errorf("expected volume 0.45, got %v", ch.Volume)
	}
}

func TestDeleteChannel(t *testing.T) {
	m, session := newTestModel()
	m = press(t, m, runes("a"), runes("a"), runes("D"))

	if len(session.State().Channels) != 1 {
		t.Fatalf("expected 1 channel after delete, got %d", len(session.State().Channels))
	}
	if m.row != 0 {
		t.Errorf("expected selection clamped to 0, got %d", m.row)
	}
}

func TestLoadPromptRequiresChannel(t *testing.T) {
	m, _ := newTestModel()
	m = press(t, m, runes("o"))

	if m.prompt != promptNone {
		t.Error("expected no prompt without channels")
	}
	if !m.isError {
		t.Error("expected error message")
	}
}

func TestLoadPromptReportsDecodeError(t *testing.T) {
	m, session := newTestModel()
	m = press(t, m, runes("a"), runes("o"))

	if m.prompt != promptLoad {
		t.Fatal("expected load prompt")
	}

	m.input.SetValue(filepath.Join(t.TempDir(), "missing.wav"))
	m = submit(t, m)

	if m.prompt != promptNone {
		t.Error("expected prompt closed after enter")
	}
	if !m.isError || !strings.Contains(m.message, "missing.wav") {
		t.Errorf("expected decode error message, got %q", m.message)
	}
	if session.State().Channels[0].Sample != "" {
		t.Error("failed load should leave channel empty")
	}
}

func TestExportPrompt(t *testing.T) {
	m, _ := newTestModel()
	path := filepath.Join(t.TempDir(), "mix.wav")

	m = press(t, m, runes("e"))
	if m.prompt != promptExport {
		t.Fatal("expected export prompt")
	}
	if !strings.Contains(m.View(), "Export to") {
		t.Error("expected prompt in view")
	}

	m.input.SetValue(path)
	m = submit(t, m)

	if m.busy {
		t.Error("expected model idle after export finished")
	}
	if m.isError {
		t.Fatalf("export failed: %s", m.message)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected exported file: %v", err)
	}
}

func TestRelativePromptPathsUseConfiguredDirs(t *testing.T) {
	dir := t.TempDir()
	session := sequencer.NewSession(sequencer.Config{Steps: 8, Scheduler: idleScheduler})
	m := NewModel(session, "Test", 0, config.Dirs{Export: dir, Samples: []string{dir}})

	m = press(t, m, runes("e"))
	m.input.SetValue("loop.wav")
	m = submit(t, m)

	if m.isError {
		t.Fatalf("export failed: %s", m.message)
	}
	if _, err := os.Stat(filepath.Join(dir, "loop.wav")); err != nil {
		t.Errorf("expected export in configured dir: %v", err)
	}

	// Load the export back by its relative name
	m = press(t, m, runes("a"), runes("o"))
	m.input.SetValue("loop.wav")
	m = submit(t, m)

	if m.isError {
		t.Fatalf("load failed: %s", m.message)
	}
	if session.State().Channels[0].Sample == "" {
		t.Error("expected sample loaded from configured dir")
	}
}

func TestBusyBlocksNewPrompts(t *testing.T) {
	m, _ := newTestModel()
	m = press(t, m, runes("e"))
	m.input.SetValue(filepath.Join(t.TempDir(), "mix.wav"))

	updated, cmd := m.Update(keyEnter)
	m = updated.(Model)
	if cmd == nil || !m.busy {
		t.Fatal("expected export running")
	}

	m = press(t, m, runes("e"))
	if m.prompt != promptNone || !m.isError {
		t.Error("expected prompt refused while busy")
	}

	updated, _ = m.Update(cmd())
	m = updated.(Model)
	m = press(t, m, runes("e"))
	if m.prompt != promptExport {
		t.Error("expected prompt available after export finished")
	}
}

func TestPromptEscapeCancels(t *testing.T) {
	m, session := newTestModel()
	m = press(t, m, runes("e"), runes("a"), keyEsc)

	if m.prompt != promptNone {
		t.Error("expected prompt closed after esc")
	}
	// Keys typed into the prompt must not reach the rack
	if len(session.State().Channels) != 0 {
		t.Error("prompt input leaked to rack commands")
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel()

	updated, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !updated.(Model).quitting {
		t.Error("expected quitting flag")
	}
}

func TestApplyStatus(t *testing.T) {
	m, _ := newTestModel()
	m.row = 3
	m.col = 7

	state := sequencer.SessionState{BPM: 90, Steps: 4, Playing: true, Playhead: 2,
		Channels: []sequencer.ChannelState{{ID: "a", Name: "Kick", Steps: make([]bool, 4)}}}
	remotes := 2

	m.applyStatus(StatusMsg{State: &state, Remotes: &remotes, Message: "hello"})

	if m.state.BPM != 90 || m.remotes != 2 || m.message != "hello" {
		t.Errorf("status not applied: bpm=%d remotes=%d message=%q", m.state.BPM, m.remotes, m.message)
	}
	if m.row != 0 || m.col != 3 {
		t.Errorf("expected selection clamped to row 0 col 3, got row %d col %d", m.row, m.col)
	}
}

func TestNotifierCoalesces(t *testing.T) {
	n := NewNotifier()
	n.Notify()
	n.Notify()
	n.Notify()

	sent := make(chan tea.Msg, 10)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		n.Run(ctx, func(msg tea.Msg) { sent <- msg },
			func() sequencer.SessionState { return sequencer.SessionState{BPM: 77} },
			func() int { return 1 })
	}()

	select {
	case msg := <-sent:
		status, ok := msg.(StatusMsg)
		if !ok || status.State.BPM != 77 || *status.Remotes != 1 {
			t.Errorf("unexpected message %+v", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for status")
	}

	cancel()
	<-done

	if len(sent) != 0 {
		t.Errorf("expected notifications to coalesce, got %d extra", len(sent))
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{0, "░░░░"},
		{0.5, "██░░"},
		{1, "████"},
	}

	for _, tt := range tests {
		if got := renderBar(tt.value, 4); got != tt.want {
			t.Errorf("renderBar(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}
