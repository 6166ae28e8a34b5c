// ABOUTME: Audio format definitions
// ABOUTME: Describes sample rate, channel layout and bit depth of buffers
package audio

import "fmt"

const (
	// Defaults used when no loaded sample dictates a format
	DefaultSampleRate = 44100
	DefaultChannels   = 2
	DefaultBitDepth   = 16
)

// Format describes audio buffer format
type Format struct {
	Codec      string // codec the samples were decoded from ("wav", "mp3", ...)
	SampleRate int
	Channels   int
	BitDepth   int
}

// DefaultFormat returns 44.1kHz stereo 16-bit PCM
func DefaultFormat() Format {
	return Format{
		Codec:      "pcm",
		SampleRate: DefaultSampleRate,
		Channels:   DefaultChannels,
		BitDepth:   DefaultBitDepth,
	}
}

// Validate checks that the format can carry samples
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("invalid channel count: %d", f.Channels)
	}
	return nil
}

// SameLayout reports whether two formats share rate and channel count
func (f Format) SameLayout(other Format) bool {
	return f.SampleRate == other.SampleRate && f.Channels == other.Channels
}

func (f Format) String() string {
	return fmt.Sprintf("%s %dHz %dch %d-bit", f.Codec, f.SampleRate, f.Channels, f.BitDepth)
}
