// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for trigger playback backends
package output

import "github.com/Resonate-Protocol/stepseq-go/pkg/audio"

// Output represents an audio output device
type Output interface {
	// Open initializes the output device
	Open(format audio.Format) error

	// Play starts an independent voice for buf and returns without waiting
	Play(buf *audio.SampleBuffer) error

	// Voices returns the number of voices currently sounding
	Voices() int

	// Close releases output resources
	Close() error
}
