// ABOUTME: Shared test fakes for the sequencer package
// ABOUTME: Manual scheduler, recording player and sample fixtures
package sequencer

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Resonate-Protocol/stepseq-go/pkg/audio"
	"github.com/Resonate-Protocol/stepseq-go/pkg/audio/encode"
)

type fakeTimer struct {
	delay   time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

// manualScheduler queues callbacks until the test fires them
type manualScheduler struct {
	mu      sync.Mutex
	pending []*fakeTimer
	delays  []time.Duration
}

func (s *manualScheduler) schedule(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &fakeTimer{delay: d, f: f}
	s.pending = append(s.pending, t)
	s.delays = append(s.delays, d)
	return t
}

// next pops the oldest queued timer, or nil
func (s *manualScheduler) next() *fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return nil
	}
	t := s.pending[0]
	s.pending = s.pending[1:]
	return t
}

// fire runs the oldest live timer and reports whether one ran
func (s *manualScheduler) fire() bool {
	for {
		t := s.next()
		if t == nil {
			return false
		}
		if t.stopped {
			continue
		}
		t.f()
		return true
	}
}

func (s *manualScheduler) lastDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delays[len(s.delays)-1]
}

func (s *manualScheduler) livePending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.pending {
		if !t.stopped {
			n++
		}
	}
	return n
}

// recordingPlayer keeps every buffer it is asked to play
type recordingPlayer struct {
	mu     sync.Mutex
	played []*audio.SampleBuffer
	err    error
}

func (p *recordingPlayer) Play(buf *audio.SampleBuffer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.played = append(p.played, buf)
	return nil
}

func (p *recordingPlayer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.played)
}

var errPlayerClosed = errors.New("player closed")

func testFormat() audio.Format {
	return audio.Format{Codec: "wav", SampleRate: 8000, Channels: 1, BitDepth: 16}
}

// rampBuffer builds a mono buffer whose samples rise steadily
func rampBuffer(frames int) *audio.SampleBuffer {
	samples := make([]int32, frames)
	for i := range samples {
		samples[i] = int32(i*256) - 1<<20
	}
	return audio.NewSampleBuffer(testFormat(), samples)
}

func writeWAV(t *testing.T, name string, buf *audio.SampleBuffer) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}
	defer f.Close()

	if err := encode.WriteWAV(f, buf, 16); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}
