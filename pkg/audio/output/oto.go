// ABOUTME: Oto-based audio output implementation
// ABOUTME: Plays each trigger on its own oto player so voices overlap
package output

import (
	"bytes"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/stepseq-go/pkg/audio"
	"github.com/Resonate-Protocol/stepseq-go/pkg/audio/encode"
	"github.com/ebitengine/oto/v3"
)

const (
	// How often a voice checks whether its player drained
	voicePollInterval = 10 * time.Millisecond

	// Extra time a voice may run past its buffer length before it is closed
	voiceGrace = 2 * time.Second
)

// Oto output implementation using oto library
type Oto struct {
	mu      sync.Mutex
	otoCtx  *oto.Context
	format  audio.Format
	encoder *encode.PCMEncoder
	ready   bool
	voices  atomic.Int64
}

// NewOto creates a new Oto output
func NewOto() *Oto {
	return &Oto{}
}

// Open initializes the output device
func (o *Oto) Open(format audio.Format) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := format.Validate(); err != nil {
		return err
	}

	// oto allows one context per process, so a reopen keeps the first format
	if o.otoCtx != nil {
		if !o.format.SameLayout(format) {
			log.Printf("Warning: format change detected (%dHz %dch -> %dHz %dch) but oto doesn't support reinitialization. Triggers will be converted.",
				o.format.SampleRate, o.format.Channels, format.SampleRate, format.Channels)
		}
		if err := o.otoCtx.Resume(); err != nil {
			return fmt.Errorf("failed to resume oto context: %w", err)
		}
		o.ready = true
		return nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	encoder, err := encode.NewPCM(16)
	if err != nil {
		return err
	}

	o.otoCtx = ctx
	o.format = format
	o.encoder = encoder
	o.ready = true

	log.Printf("Audio output initialized: %dHz, %d channels", format.SampleRate, format.Channels)
	return nil
}

// Play starts a voice for buf without blocking
func (o *Oto) Play(buf *audio.SampleBuffer) error {
	o.mu.Lock()
	ready := o.ready
	o.mu.Unlock()

	if !ready {
		return fmt.Errorf("output not initialized")
	}
	if buf == nil || buf.Frames() == 0 {
		return nil
	}

	o.voices.Add(1)
	go o.playVoice(buf)
	return nil
}

// playVoice converts, plays and waits for a single trigger
func (o *Oto) playVoice(buf *audio.SampleBuffer) {
	defer o.voices.Add(-1)

	converted := buf.Convert(o.format)
	data, err := o.encoder.Encode(converted.Samples())
	if err != nil {
		log.Printf("Voice encode failed: %v", err)
		return
	}

	player := o.otoCtx.NewPlayer(bytes.NewReader(data))
	defer player.Close()
	player.Play()

	deadline := time.Now().Add(converted.Duration() + voiceGrace)
	for player.IsPlaying() {
		if time.Now().After(deadline) {
			log.Printf("Voice exceeded its length by %v, closing", voiceGrace)
			return
		}
		time.Sleep(voicePollInterval)
	}
}

// Voices returns the number of sounding voices
func (o *Oto) Voices() int {
	return int(o.voices.Load())
}

// Close suspends the device. Sounding voices are not waited for.
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.otoCtx != nil && o.ready {
		o.ready = false
		if err := o.otoCtx.Suspend(); err != nil {
			return fmt.Errorf("failed to suspend oto context: %w", err)
		}
	}
	return nil
}
