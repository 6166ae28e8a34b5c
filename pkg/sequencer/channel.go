// ABOUTME: Sequencer channel implementation
// ABOUTME: One lane of steps with a sample, volume and pitch offset
package sequencer

import (
	"fmt"
	"log"
	"sync"

	"github.com/Resonate-Protocol/stepseq-go/pkg/audio"
)

const (
	// Volume and pitch bounds
	MinVolume     = 0.0
	MaxVolume     = 1.0
	DefaultVolume = 0.5
	MinPitch      = -12
	MaxPitch      = 12
)

// ChannelID identifies a channel within a session
type ChannelID string

// Player receives triggered buffers. Play must not block on playback.
type Player interface {
	Play(buf *audio.SampleBuffer) error
}

// Channel is one sequencer lane
type Channel struct {
	id   ChannelID
	name string

	mu         sync.RWMutex
	steps      []bool
	original   *audio.SampleBuffer
	playable   *audio.SampleBuffer
	adjusted   *audio.SampleBuffer // playable with volume applied
	sampleName string
	volume     float64
	pitch      int
}

// NewChannel creates an empty channel with numSteps inactive steps
func NewChannel(id ChannelID, name string, numSteps int) *Channel {
	if numSteps < 1 {
		numSteps = 1
	}
	return &Channel{
		id:     id,
		name:   name,
		steps:  make([]bool, numSteps),
		volume: DefaultVolume,
	}
}

// ID returns the channel id
func (c *Channel) ID() ChannelID {
	return c.id
}

// Name returns the display name
func (c *Channel) Name() string {
	return c.name
}

// NumSteps returns the pattern length
func (c *Channel) NumSteps() int {
	return len(c.steps)
}

// ToggleStep flips step i
func (c *Channel) ToggleStep(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i < 0 || i >= len(c.steps) {
		return fmt.Errorf("toggle step %d of %d: %w", i, len(c.steps), ErrStepOutOfRange)
	}
	c.steps[i] = !c.steps[i]
	return nil
}

// Step reports whether step i is active
func (c *Channel) Step(i int) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i < 0 || i >= len(c.steps) {
		return false, fmt.Errorf("read step %d of %d: %w", i, len(c.steps), ErrStepOutOfRange)
	}
	return c.steps[i], nil
}

// Steps returns a copy of the step flags
func (c *Channel) Steps() []bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]bool, len(c.steps))
	copy(out, c.steps)
	return out
}

// SetVolume sets the volume, clamped to [0, 1]
func (c *Channel) SetVolume(v float64) {
	if v < MinVolume {
		v = MinVolume
	}
	if v > MaxVolume {
		v = MaxVolume
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.volume = v
	c.refreshAdjusted()
}

// Volume returns the current volume
func (c *Channel) Volume() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.volume
}

// SetPitch sets the transposition in semitones, clamped to [-12, 12].
// The pitch is kept even when no sample is loaded.
func (c *Channel) SetPitch(semitones int) {
	if semitones < MinPitch {
		semitones = MinPitch
	}
	if semitones > MaxPitch {
		semitones = MaxPitch
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pitch = semitones
	c.refreshPlayable()
}

// Pitch returns the current transposition
func (c *Channel) Pitch() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pitch
}

// SetSample replaces the original sample and derives the playable buffer at the current pitch
func (c *Channel) SetSample(buf *audio.SampleBuffer, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.original = buf
	c.sampleName = name
	c.refreshPlayable()
}

// Sample returns the original sample, or nil
func (c *Channel) Sample() *audio.SampleBuffer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.original
}

// SampleName returns the name of the loaded sample
func (c *Channel) SampleName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sampleName
}

// Playable returns the transposed sample, or nil
func (c *Channel) Playable() *audio.SampleBuffer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playable
}

// GainAdjustedBuffer returns the playable buffer attenuated by (1-volume)*60 dB
func (c *Channel) GainAdjustedBuffer() *audio.SampleBuffer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.adjusted
}

// Trigger plays the channel if step is active and a sample is loaded.
// It returns whether the channel fired.
func (c *Channel) Trigger(step int, player Player) bool {
	c.mu.RLock()
	if step < 0 || step >= len(c.steps) || !c.steps[step] || c.adjusted == nil {
		c.mu.RUnlock()
		return false
	}
	buf := c.adjusted
	c.mu.RUnlock()

	if player == nil {
		return false
	}
	if err := player.Play(buf); err != nil {
		log.Printf("Channel %s: trigger on step %d failed: %v", c.name, step, err)
		return false
	}
	return true
}

// StopAll is called when the transport stops. Sounding triggers keep ringing.
func (c *Channel) StopAll() {}

// refreshPlayable derives playable from original. Caller holds c.mu.
func (c *Channel) refreshPlayable() {
	if c.original == nil {
		c.playable = nil
	} else {
		c.playable = c.original.Transpose(c.pitch)
	}
	c.refreshAdjusted()
}

// refreshAdjusted applies the volume to playable. Caller holds c.mu.
func (c *Channel) refreshAdjusted() {
	if c.playable == nil {
		c.adjusted = nil
		return
	}
	c.adjusted = c.playable.Attenuate(audio.VolumeToAttenuation(c.volume))
}
