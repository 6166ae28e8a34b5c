// ABOUTME: Headless audio output implementation
// ABOUTME: Discards trigger audio while counting played voices
package output

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Resonate-Protocol/stepseq-go/pkg/audio"
)

// Headless output that never touches an audio device
type Headless struct {
	mu     sync.Mutex
	format audio.Format
	open   bool
	played atomic.Int64
	onPlay func(*audio.SampleBuffer)
}

// NewHeadless creates a headless output. onPlay, if set, observes each trigger.
func NewHeadless(onPlay func(*audio.SampleBuffer)) *Headless {
	return &Headless{onPlay: onPlay}
}

// Open records the format
func (h *Headless) Open(format audio.Format) error {
	if err := format.Validate(); err != nil {
		return err
	}
	h.mu.Lock()
	h.format = format
	h.open = true
	h.mu.Unlock()
	return nil
}

// Play counts the trigger
func (h *Headless) Play(buf *audio.SampleBuffer) error {
	h.mu.Lock()
	open := h.open
	h.mu.Unlock()

	if !open {
		return fmt.Errorf("output not initialized")
	}
	h.played.Add(1)
	if h.onPlay != nil {
		h.onPlay(buf)
	}
	return nil
}

// Voices is always zero since nothing sounds
func (h *Headless) Voices() int {
	return 0
}

// Played returns the number of triggers received
func (h *Headless) Played() int64 {
	return h.played.Load()
}

// Close marks the output closed
func (h *Headless) Close() error {
	h.mu.Lock()
	h.open = false
	h.mu.Unlock()
	return nil
}
