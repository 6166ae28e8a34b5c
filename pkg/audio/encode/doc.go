// ABOUTME: Audio encoder package for exporting and playing sample buffers
// ABOUTME: Provides PCM byte packing and WAV file writing
// Package encode provides audio encoders for rendered buffers.
//
// Supports: PCM (16-bit and 24-bit little-endian), WAV files
//
// All encoders accept int32 samples in 24-bit range.
//
// Example:
//
//	enc, err := encode.NewPCM(16)
//	data, err := enc.Encode(buf.Samples())
//
//	err = encode.WriteWAV(f, rendered, 16)
package encode
