// ABOUTME: Audio output package for fire-and-forget sample playback
// ABOUTME: Provides Output interface with oto and headless implementations
// Package output plays sequencer triggers on an audio device.
//
// Every Play call starts an independent voice and returns immediately;
// overlapping voices are mixed by the backend. Voices are never cancelled:
// they play to completion even after the caller stops triggering.
//
// Implementations:
//   - Oto: cross-platform playback via ebitengine/oto (one context per process)
//   - Headless: discards audio but counts voices, for CI and servers without a device
//
// Example:
//
//	out := output.NewOto()
//	err := out.Open(audio.DefaultFormat())
//	err = out.Play(buf)
package output
