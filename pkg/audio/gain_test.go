// ABOUTME: Tests for the volume gain law
// ABOUTME: Checks unity, the -60 dB floor, clamping and monotonicity
package audio

import (
	"math"
	"testing"
)

func TestVolumeToAttenuationEndpoints(t *testing.T) {
	if db := VolumeToAttenuation(1.0); db != 0 {
		t.Errorf("expected 0 dB at full volume, got %f", db)
	}
	if db := VolumeToAttenuation(0.0); db < 60 {
		t.Errorf("expected at least 60 dB at zero volume, got %f", db)
	}
	if db := VolumeToAttenuation(2.0); db != 0 {
		t.Errorf("expected clamp to unity, got %f", db)
	}
	if db := VolumeToAttenuation(-1.0); db != SilenceFloorDB {
		t.Errorf("expected clamp to floor, got %f", db)
	}
}

func TestGainMonotonicInVolume(t *testing.T) {
	prev := -1.0
	for i := 0; i <= 100; i++ {
		v := float64(i) / 100
		gain := DecibelsToGain(VolumeToAttenuation(v))
		if gain < prev {
			t.Fatalf("gain decreased at volume %.2f: %f < %f", v, gain, prev)
		}
		prev = gain
	}
}

func TestDecibelsToGain(t *testing.T) {
	if g := DecibelsToGain(0); g != 1.0 {
		t.Errorf("expected unity gain, got %f", g)
	}
	if g := DecibelsToGain(60); math.Abs(g-0.001) > 1e-12 {
		t.Errorf("expected 0.001 at 60 dB, got %f", g)
	}
}

func TestAttenuatedBufferAmplitudeMonotonic(t *testing.T) {
	buf := NewSampleBuffer(Format{SampleRate: 1000, Channels: 1}, []int32{Max24Bit})

	var prev int32 = -1
	for i := 0; i <= 10; i++ {
		peak := buf.Attenuate(VolumeToAttenuation(float64(i) / 10)).Peak()
		if peak < prev {
			t.Fatalf("amplitude decreased at volume %d/10", i)
		}
		prev = peak
	}
	if prev != Max24Bit {
		t.Errorf("expected unattenuated peak at full volume, got %d", prev)
	}
}
