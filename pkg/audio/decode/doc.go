// ABOUTME: Audio file decoder package for sample loading
// ABOUTME: Provides Load and per-codec decoders for WAV, MP3, FLAC, Ogg Opus
// Package decode turns audio files into immutable audio.SampleBuffer values.
//
// Supports: WAV (PCM 8/16/24/32-bit), MP3, FLAC, Ogg Opus
//
// Decoders are selected by file extension. All decoders output int32 samples
// in 24-bit range at the file's native sample rate and channel count.
// Every failure from Load is a *DecodeError.
//
// Example:
//
//	buf, err := decode.Load("kick.wav")
//	var decErr *decode.DecodeError
//	if errors.As(err, &decErr) { ... }
package decode
