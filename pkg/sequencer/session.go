// ABOUTME: Sequencer session boundary
// ABOUTME: Owns channels and transport and exposes the control operations
package sequencer

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Resonate-Protocol/stepseq-go/pkg/audio"
	"github.com/Resonate-Protocol/stepseq-go/pkg/audio/decode"
	"github.com/Resonate-Protocol/stepseq-go/pkg/audio/encode"
	"github.com/Resonate-Protocol/stepseq-go/pkg/mixdown"
)

// Config holds session configuration
type Config struct {
	BPM       int
	Steps     int
	Player    Player
	Scheduler Scheduler

	// OnStep is called after every fired step
	OnStep func(step int)

	// OnChange is called after every successful mutation
	OnChange func()
}

// ChannelState is a read-only view of one channel
type ChannelState struct {
	ID     ChannelID
	Name   string
	Steps  []bool
	Volume float64
	Pitch  int
	Sample string // sample name, empty when none is loaded
}

// SessionState is a read-only view of the whole session
type SessionState struct {
	Playing  bool
	Cursor   int
	Playhead int
	BPM      int
	Steps    int
	Channels []ChannelState
}

// Session is the sequencer's control boundary
type Session struct {
	channels  *ChannelSet
	transport *Transport
	onChange  func()
}

// NewSession creates a stopped session with no channels
func NewSession(config Config) *Session {
	steps := config.Steps
	if steps < 1 {
		steps = DefaultSteps
	}

	channels := NewChannelSet(steps)
	return &Session{
		channels: channels,
		transport: NewTransport(channels, config.Player, TransportConfig{
			BPM:       config.BPM,
			Scheduler: config.Scheduler,
			OnStep:    config.OnStep,
		}),
		onChange: config.OnChange,
	}
}

// Channels returns the session's channel set
func (s *Session) Channels() *ChannelSet {
	return s.channels
}

// Transport returns the session's transport
func (s *Session) Transport() *Transport {
	return s.transport
}

// AddChannel appends an empty channel
func (s *Session) AddChannel() ChannelID {
	ch := s.channels.Add()
	log.Printf("Added %s (%s)", ch.Name(), ch.ID())
	s.changed()
	return ch.ID()
}

// DeleteChannel removes a channel
func (s *Session) DeleteChannel(id ChannelID) error {
	if err := s.channels.Remove(id); err != nil {
		return err
	}
	log.Printf("Deleted channel %s", id)
	s.changed()
	return nil
}

// LoadSample decodes path into the channel. The prior sample is kept on failure.
func (s *Session) LoadSample(id ChannelID, path string) error {
	ch, err := s.channels.Get(id)
	if err != nil {
		return err
	}

	buf, err := decode.Load(path)
	if err != nil {
		return err
	}

	ch.SetSample(buf, filepath.Base(path))
	s.changed()
	return nil
}

// ToggleStep flips one step of a channel
func (s *Session) ToggleStep(id ChannelID, index int) error {
	ch, err := s.channels.Get(id)
	if err != nil {
		return err
	}
	if err := ch.ToggleStep(index); err != nil {
		return err
	}
	s.changed()
	return nil
}

// SetVolume sets a channel's volume; out-of-range values are clamped
func (s *Session) SetVolume(id ChannelID, v float64) error {
	ch, err := s.channels.Get(id)
	if err != nil {
		return err
	}
	ch.SetVolume(v)
	s.changed()
	return nil
}

// SetPitch sets a channel's transposition; out-of-range values are clamped
func (s *Session) SetPitch(id ChannelID, semitones int) error {
	ch, err := s.channels.Get(id)
	if err != nil {
		return err
	}
	ch.SetPitch(semitones)
	s.changed()
	return nil
}

// SetBPM sets the tempo and returns the clamped value
func (s *Session) SetBPM(bpm int) int {
	bpm = s.transport.SetBPM(bpm)
	s.changed()
	return bpm
}

// Start starts playback
func (s *Session) Start() {
	s.transport.Start()
	s.changed()
}

// Stop stops playback and rewinds
func (s *Session) Stop() {
	s.transport.Stop()
	s.changed()
}

// Tracks snapshots every channel for the renderer
func (s *Session) Tracks() []mixdown.Track {
	channels := s.channels.Snapshot()
	tracks := make([]mixdown.Track, len(channels))
	for i, ch := range channels {
		tracks[i] = mixdown.Track{
			Steps:  ch.Steps(),
			Buffer: ch.GainAdjustedBuffer(),
		}
	}
	return tracks
}

// Render mixes one loop of the current pattern
func (s *Session) Render() *audio.SampleBuffer {
	return mixdown.Render(s.Tracks(), s.transport.BPM(), s.channels.NumSteps())
}

// Export renders the pattern and writes it to path as WAV
func (s *Session) Export(path string) error {
	buf := s.Render()

	tmp, err := os.CreateTemp(filepath.Dir(path), ".stepseq-export-*.wav")
	if err != nil {
		return &ExportError{Path: path, Op: "create", Err: err}
	}
	tmpName := tmp.Name()

	if err := encode.WriteWAV(tmp, buf, encode.WAVBitDepth(buf.Format())); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &ExportError{Path: path, Op: "encode", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &ExportError{Path: path, Op: "write", Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &ExportError{Path: path, Op: "write", Err: fmt.Errorf("rename: %w", err)}
	}

	log.Printf("Exported %s: %d frames, %s", path, buf.Frames(), buf.Format())
	return nil
}

// State returns a snapshot of the session for display
func (s *Session) State() SessionState {
	channels := s.channels.Snapshot()
	state := SessionState{
		Playing:  s.transport.Running(),
		Cursor:   s.transport.Cursor(),
		Playhead: s.transport.Playhead(),
		BPM:      s.transport.BPM(),
		Steps:    s.channels.NumSteps(),
		Channels: make([]ChannelState, len(channels)),
	}

	for i, ch := range channels {
		state.Channels[i] = ChannelState{
			ID:     ch.ID(),
			Name:   ch.Name(),
			Steps:  ch.Steps(),
			Volume: ch.Volume(),
			Pitch:  ch.Pitch(),
			Sample: ch.SampleName(),
		}
	}
	return state
}

func (s *Session) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
