// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts whole sample buffers between playback rates
// Package resample provides sample rate conversion for decoded buffers.
//
// Uses linear interpolation. Rates are float64 so that pitch
// transposition can express ratios such as 2^(1/12) exactly.
//
// Example:
//
//	r := resample.New(44100, 48000, 2)
//	out := r.Resample(interleaved)
package resample
