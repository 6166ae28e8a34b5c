// ABOUTME: Immutable decoded sample buffer
// ABOUTME: Provides rate transposition, attenuation and format conversion
package audio

import (
	"math"
	"time"

	"github.com/Resonate-Protocol/stepseq-go/pkg/audio/resample"
)

// SampleBuffer holds decoded interleaved PCM in 24-bit range.
// A SampleBuffer is immutable; every transformation returns a new buffer.
type SampleBuffer struct {
	format    Format
	samples   []int32
	rateRatio float64 // effective playback rate relative to the native rate
}

// NewSampleBuffer creates a buffer from interleaved samples. The slice is copied.
// Trailing samples that do not fill a whole frame are dropped.
func NewSampleBuffer(format Format, samples []int32) *SampleBuffer {
	if format.Channels < 1 {
		format.Channels = 1
	}
	frames := len(samples) / format.Channels
	owned := make([]int32, frames*format.Channels)
	copy(owned, samples)
	return &SampleBuffer{
		format:    format,
		samples:   owned,
		rateRatio: 1.0,
	}
}

// Silence creates a buffer of silent frames
func Silence(format Format, frames int) *SampleBuffer {
	if format.Channels < 1 {
		format.Channels = 1
	}
	if frames < 0 {
		frames = 0
	}
	return &SampleBuffer{
		format:    format,
		samples:   make([]int32, frames*format.Channels),
		rateRatio: 1.0,
	}
}

// Format returns the buffer format
func (b *SampleBuffer) Format() Format {
	return b.format
}

// Frames returns the number of sample frames
func (b *SampleBuffer) Frames() int {
	return len(b.samples) / b.format.Channels
}

// Len returns the number of interleaved samples
func (b *SampleBuffer) Len() int {
	return len(b.samples)
}

// Duration returns the playback length at the native sample rate
func (b *SampleBuffer) Duration() time.Duration {
	if b.format.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(b.Frames()) / float64(b.format.SampleRate) * float64(time.Second))
}

// Samples returns a copy of the interleaved samples
func (b *SampleBuffer) Samples() []int32 {
	out := make([]int32, len(b.samples))
	copy(out, b.samples)
	return out
}

// RateRatio returns the playback rate relative to the originally decoded rate
func (b *SampleBuffer) RateRatio() float64 {
	return b.rateRatio
}

// PlaybackRate returns the effective rate the original samples are played at
func (b *SampleBuffer) PlaybackRate() float64 {
	return float64(b.format.SampleRate) * b.rateRatio
}

// Transpose derives a buffer whose samples are reinterpreted at
// rate * 2^(semitones/12) and resampled back to the native rate. Pitch and
// duration change together. Transpose(0) returns the receiver.
func (b *SampleBuffer) Transpose(semitones int) *SampleBuffer {
	if semitones == 0 {
		return b
	}

	ratio := math.Pow(2, float64(semitones)/12.0)
	nativeRate := float64(b.format.SampleRate)
	r := resample.New(nativeRate*ratio, nativeRate, b.format.Channels)

	return &SampleBuffer{
		format:    b.format,
		samples:   r.Resample(b.samples),
		rateRatio: b.rateRatio * ratio,
	}
}

// Attenuate returns a copy scaled down by db decibels. Non-positive values return the receiver.
func (b *SampleBuffer) Attenuate(db float64) *SampleBuffer {
	if db <= 0 {
		return b
	}

	gain := DecibelsToGain(db)
	scaled := make([]int32, len(b.samples))
	for i, sample := range b.samples {
		scaled[i] = Clamp24(int64(math.Round(float64(sample) * gain)))
	}

	return &SampleBuffer{
		format:    b.format,
		samples:   scaled,
		rateRatio: b.rateRatio,
	}
}

// Convert returns the buffer resampled and channel-mapped to the target layout.
// Only rate and channel count are converted; bit depth and codec are carried over.
func (b *SampleBuffer) Convert(target Format) *SampleBuffer {
	if target.Channels < 1 || target.SampleRate <= 0 || b.format.SameLayout(target) {
		return b
	}

	samples := remapChannels(b.samples, b.format.Channels, target.Channels)
	format := b.format
	format.Channels = target.Channels

	if format.SampleRate != target.SampleRate {
		r := resample.New(float64(format.SampleRate), float64(target.SampleRate), format.Channels)
		samples = r.Resample(samples)
		format.SampleRate = target.SampleRate
	}

	return &SampleBuffer{
		format:    format,
		samples:   samples,
		rateRatio: b.rateRatio,
	}
}

// MixInto sums the buffer into an interleaved accumulator starting at frameOffset.
// The accumulator must use the same channel count. Frames beyond len(dst) are dropped.
func (b *SampleBuffer) MixInto(dst []int64, frameOffset int) {
	channels := b.format.Channels
	start := frameOffset * channels
	if start < 0 {
		return
	}
	for i, sample := range b.samples {
		idx := start + i
		if idx >= len(dst) {
			return
		}
		dst[idx] += int64(sample)
	}
}

// Peak returns the largest absolute sample value
func (b *SampleBuffer) Peak() int32 {
	var peak int32
	for _, s := range b.samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	return peak
}

// Equal reports whether two buffers carry identical format and samples
func (b *SampleBuffer) Equal(other *SampleBuffer) bool {
	if b == other {
		return true
	}
	if b == nil || other == nil {
		return false
	}
	if b.format != other.format || len(b.samples) != len(other.samples) {
		return false
	}
	for i := range b.samples {
		if b.samples[i] != other.samples[i] {
			return false
		}
	}
	return true
}

// remapChannels converts interleaved frames between channel counts.
// Downmix to mono averages; other layouts repeat source channels cyclically.
func remapChannels(samples []int32, from, to int) []int32 {
	if from == to {
		return samples
	}

	frames := len(samples) / from
	out := make([]int32, frames*to)
	for f := 0; f < frames; f++ {
		frame := samples[f*from : (f+1)*from]
		if to == 1 {
			var sum int64
			for _, s := range frame {
				sum += int64(s)
			}
			out[f] = int32(sum / int64(from))
			continue
		}
		for ch := 0; ch < to; ch++ {
			out[f*to+ch] = frame[ch%from]
		}
	}
	return out
}
