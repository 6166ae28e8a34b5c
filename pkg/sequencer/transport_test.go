// ABOUTME: Transport tests
// ABOUTME: Drives ticks through a manual scheduler and checks timing and state
package sequencer

import (
	"sync"
	"testing"
	"time"
)

func newTestTransport(numSteps int) (*Transport, *ChannelSet, *manualScheduler, *recordingPlayer, *[]int) {
	channels := NewChannelSet(numSteps)
	sched := &manualScheduler{}
	player := &recordingPlayer{}
	fired := &[]int{}

	tr := NewTransport(channels, player, TransportConfig{
		Scheduler: sched.schedule,
		OnStep: func(step int) {
			*fired = append(*fired, step)
		},
	})
	return tr, channels, sched, player, fired
}

func TestClampBPM(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{500, 300},
		{301, 300},
		{300, 300},
		{120, 120},
		{30, 30},
		{10, 30},
		{-5, 30},
	}

	for _, tt := range tests {
		if got := ClampBPM(tt.in); got != tt.want {
			t.Errorf("ClampBPM(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTickInterval(t *testing.T) {
	tests := []struct {
		bpm  int
		want time.Duration
	}{
		{120, 125 * time.Millisecond},
		{60, 250 * time.Millisecond},
		{300, 50 * time.Millisecond},
		{30, 500 * time.Millisecond},
		{1000, 50 * time.Millisecond},
	}

	for _, tt := range tests {
		if got := TickInterval(tt.bpm); got != tt.want {
			t.Errorf("TickInterval(%d) = %v, want %v", tt.bpm, got, tt.want)
		}
	}
}

func TestNewTransportDefaults(t *testing.T) {
	tr, _, _, _, _ := newTestTransport(16)

	if tr.BPM() != DefaultBPM {
		t.Errorf("expected %d BPM, got %d", DefaultBPM, tr.BPM())
	}
	if tr.Running() {
		t.Error("transport should start stopped")
	}
	if tr.Cursor() != 0 || tr.Playhead() != -1 {
		t.Errorf("expected cursor 0 and playhead -1, got %d and %d", tr.Cursor(), tr.Playhead())
	}
}

func TestSetBPMClamps(t *testing.T) {
	tr, _, _, _, _ := newTestTransport(16)

	if got := tr.SetBPM(500); got != 300 || tr.BPM() != 300 {
		t.Errorf("SetBPM(500): got %d, BPM() = %d", got, tr.BPM())
	}
	if got := tr.SetBPM(10); got != 30 || tr.BPM() != 30 {
		t.Errorf("SetBPM(10): got %d, BPM() = %d", got, tr.BPM())
	}
}

func TestStartSchedulesImmediateTick(t *testing.T) {
	tr, _, sched, _, fired := newTestTransport(4)

	tr.Start()
	if !tr.Running() {
		t.Fatal("expected running after Start")
	}
	if sched.lastDelay() != 0 {
		t.Errorf("expected first tick with no delay, got %v", sched.lastDelay())
	}

	// A second Start is a no-op
	tr.Start()
	if sched.livePending() != 1 {
		t.Errorf("expected 1 pending tick, got %d", sched.livePending())
	}

	sched.fire()
	if len(*fired) != 1 || (*fired)[0] != 0 {
		t.Errorf("expected step 0 fired, got %v", *fired)
	}
	if sched.lastDelay() != 125*time.Millisecond {
		t.Errorf("expected re-arm after 125ms, got %v", sched.lastDelay())
	}
}

func TestCursorCyclesThroughSteps(t *testing.T) {
	const n = 4
	tr, _, sched, _, fired := newTestTransport(n)
	tr.Start()

	for i := 0; i < 2*n+1; i++ {
		if !sched.fire() {
			t.Fatalf("expected a pending tick at iteration %d", i)
		}
	}

	want := []int{0, 1, 2, 3, 0, 1, 2, 3, 0}
	if len(*fired) != len(want) {
		t.Fatalf("expected %d steps, got %v", len(want), *fired)
	}
	for i := range want {
		if (*fired)[i] != want[i] {
			t.Fatalf("fired steps = %v, want %v", *fired, want)
		}
	}
	if tr.Cursor() != 1 {
		t.Errorf("expected cursor 1, got %d", tr.Cursor())
	}
	if tr.Playhead() != 0 {
		t.Errorf("expected playhead 0, got %d", tr.Playhead())
	}
}

func TestTickTriggersActiveSteps(t *testing.T) {
	tr, channels, sched, player, _ := newTestTransport(4)

	kick := channels.Add()
	kick.SetSample(rampBuffer(100), "kick.wav")
	kick.ToggleStep(0)
	kick.ToggleStep(2)

	snare := channels.Add()
	snare.SetSample(rampBuffer(50), "snare.wav")
	snare.ToggleStep(2)

	empty := channels.Add()
	empty.ToggleStep(1)

	tr.Start()
	for i := 0; i < 4; i++ {
		sched.fire()
	}

	if player.count() != 3 {
		t.Fatalf("expected 3 triggers, got %d", player.count())
	}
	// Step 2 fires in channel order
	if player.played[1] != kick.GainAdjustedBuffer() || player.played[2] != snare.GainAdjustedBuffer() {
		t.Error("expected channels to fire in insertion order")
	}
}

func TestStopResetsCursorAndIsIdempotent(t *testing.T) {
	tr, _, sched, _, _ := newTestTransport(8)
	tr.Start()
	for i := 0; i < 3; i++ {
		sched.fire()
	}
	if tr.Cursor() != 3 {
		t.Fatalf("expected cursor 3, got %d", tr.Cursor())
	}

	tr.Stop()
	if tr.Running() {
		t.Error("expected stopped")
	}
	if tr.Cursor() != 0 {
		t.Errorf("expected cursor reset to 0, got %d", tr.Cursor())
	}
	if tr.Playhead() != -1 {
		t.Errorf("expected playhead -1, got %d", tr.Playhead())
	}
	if sched.livePending() != 0 {
		t.Errorf("expected pending tick cancelled, got %d live", sched.livePending())
	}

	tr.Stop()
	if tr.Running() || tr.Cursor() != 0 {
		t.Error("second Stop changed state")
	}
}

func TestStartAfterStopBeginsAtZero(t *testing.T) {
	tr, _, sched, _, fired := newTestTransport(8)
	tr.Start()
	sched.fire()
	sched.fire()
	tr.Stop()

	*fired = nil
	tr.Start()
	sched.fire()
	if len(*fired) != 1 || (*fired)[0] != 0 {
		t.Errorf("expected restart from step 0, got %v", *fired)
	}
}

func TestStaleTickIgnored(t *testing.T) {
	tr, _, sched, player, fired := newTestTransport(4)
	tr.Start()

	stale := sched.next()
	tr.Stop()

	// Simulate the timer firing after Stop won the race
	stale.f()
	if len(*fired) != 0 || player.count() != 0 {
		t.Errorf("stale tick fired: steps=%v plays=%d", *fired, player.count())
	}

	// A stale tick from a previous run must not drive the new run
	tr.Start()
	stale.f()
	if len(*fired) != 0 {
		t.Errorf("stale tick fired in new run: %v", *fired)
	}
}

func TestBPMChangeAppliesOnNextTick(t *testing.T) {
	tr, _, sched, _, _ := newTestTransport(4)
	tr.Start()
	sched.fire()
	if sched.lastDelay() != 125*time.Millisecond {
		t.Fatalf("expected 125ms, got %v", sched.lastDelay())
	}

	tr.SetBPM(60)
	sched.fire()
	if sched.lastDelay() != 250*time.Millisecond {
		t.Errorf("expected 250ms after tempo change, got %v", sched.lastDelay())
	}
}

func TestTransportWallClock(t *testing.T) {
	channels := NewChannelSet(4)
	var mu sync.Mutex
	var fired []int
	done := make(chan struct{})

	tr := NewTransport(channels, &recordingPlayer{}, TransportConfig{
		BPM: 300,
		OnStep: func(step int) {
			mu.Lock()
			defer mu.Unlock()
			fired = append(fired, step)
			if len(fired) == 5 {
				close(done)
			}
		},
	})

	start := time.Now()
	tr.Start()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for ticks")
	}
	tr.Stop()

	// Five steps span four intervals of 50ms
	if elapsed := time.Since(start); elapsed < 4*TickInterval(300) {
		t.Errorf("ticks fired too fast: %v", elapsed)
	}

	mu.Lock()
	defer mu.Unlock()
	for i := 0; i < 5; i++ {
		if fired[i] != i%4 {
			t.Fatalf("fired steps = %v", fired)
		}
	}
}
