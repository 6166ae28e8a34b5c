// ABOUTME: Audio fundamentals package providing the immutable sample buffer
// ABOUTME: Defines Format, SampleBuffer, gain law and sample conversions
// Package audio provides the decoded sample model shared by the sequencer,
// the mixdown renderer and the playback backends.
//
// This package defines:
//   - Format: Describes a buffer (codec of origin, sample rate, channels, bit depth)
//   - SampleBuffer: Immutable interleaved PCM in 24-bit range
//
// A SampleBuffer is never modified after creation. Transpose, Attenuate and
// Convert all return new buffers, so a buffer handed to a playback goroutine
// can be read without locking.
//
// Example:
//
//	buf := audio.NewSampleBuffer(audio.DefaultFormat(), samples)
//
//	// One semitone up: plays faster and shorter
//	up := buf.Transpose(1)
//
//	// Half volume on the -60 dB law
//	quiet := up.Attenuate(audio.VolumeToAttenuation(0.5))
package audio
