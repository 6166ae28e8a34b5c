// ABOUTME: Tempo-driven step transport
// ABOUTME: Re-arms a one-shot timer per tick and fires every channel's current step
package sequencer

import (
	"log"
	"sync"
	"time"
)

const (
	// Tempo bounds in beats per minute
	MinBPM     = 30
	MaxBPM     = 300
	DefaultBPM = 120

	// DefaultSteps is the default pattern length
	DefaultSteps = 16
)

// Timer is a pending tick that can be cancelled
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d
type Scheduler func(d time.Duration, f func()) Timer

// AfterFunc schedules on the wall clock
func AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ClampBPM bounds a tempo to [MinBPM, MaxBPM]
func ClampBPM(bpm int) int {
	if bpm < MinBPM {
		return MinBPM
	}
	if bpm > MaxBPM {
		return MaxBPM
	}
	return bpm
}

// TickInterval returns the time between steps: 60/BPM/4 seconds
func TickInterval(bpm int) time.Duration {
	return time.Minute / time.Duration(ClampBPM(bpm)*4)
}

// TransportConfig holds transport configuration
type TransportConfig struct {
	BPM       int
	Scheduler Scheduler      // defaults to AfterFunc
	OnStep    func(step int) // called after each step has fired
}

// Transport advances the step cursor and fires channels
type Transport struct {
	channels *ChannelSet
	player   Player
	schedule Scheduler
	onStep   func(step int)

	mu         sync.Mutex
	bpm        int
	running    bool
	cursor     int
	playhead   int // last fired step, -1 when stopped
	generation uint64
	timer      Timer
}

// NewTransport creates a stopped transport
func NewTransport(channels *ChannelSet, player Player, config TransportConfig) *Transport {
	bpm := config.BPM
	if bpm == 0 {
		bpm = DefaultBPM
	}
	schedule := config.Scheduler
	if schedule == nil {
		schedule = AfterFunc
	}

	return &Transport{
		channels: channels,
		player:   player,
		schedule: schedule,
		onStep:   config.OnStep,
		bpm:      ClampBPM(bpm),
		playhead: -1,
	}
}

// Start begins playback from the current cursor. No-op when running.
func (t *Transport) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return
	}
	t.running = true
	t.generation++
	gen := t.generation
	t.timer = t.schedule(0, func() { t.tick(gen) })

	log.Printf("Transport started at %d BPM", t.bpm)
}

// Stop cancels future ticks, resets the cursor and notifies channels. No-op when stopped.
func (t *Transport) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	t.generation++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.cursor = 0
	t.playhead = -1
	t.mu.Unlock()

	for _, ch := range t.channels.Snapshot() {
		ch.StopAll()
	}

	log.Printf("Transport stopped")
}

// SetBPM sets the tempo, clamped to [30, 300]. The next scheduled tick uses it.
func (t *Transport) SetBPM(bpm int) int {
	bpm = ClampBPM(bpm)

	t.mu.Lock()
	t.bpm = bpm
	t.mu.Unlock()
	return bpm
}

// BPM returns the tempo
func (t *Transport) BPM() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bpm
}

// Running reports whether the transport is playing
func (t *Transport) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Cursor returns the next step to fire
func (t *Transport) Cursor() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursor
}

// Playhead returns the last fired step, or -1 when stopped
func (t *Transport) Playhead() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playhead
}

// tick fires the current step and re-arms. Stale generations are ignored.
func (t *Transport) tick(gen uint64) {
	t.mu.Lock()
	if !t.running || gen != t.generation {
		t.mu.Unlock()
		return
	}

	step := t.cursor
	t.cursor = (t.cursor + 1) % t.channels.NumSteps()
	t.playhead = step
	t.timer = t.schedule(TickInterval(t.bpm), func() { t.tick(gen) })
	t.mu.Unlock()

	for _, ch := range t.channels.Snapshot() {
		ch.Trigger(step, t.player)
	}

	if t.onStep != nil {
		t.onStep(step)
	}
}
