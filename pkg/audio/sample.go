// ABOUTME: Sample conversion helpers
// ABOUTME: Converts between int16, packed 24-bit and the int32 working range
package audio

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// SampleToInt16 converts int32 sample to int16 (for 16-bit playback)
func SampleToInt16(sample int32) int16 {
	// Right-shift to convert 24-bit (or 16-bit) to 16-bit range
	return int16(Clamp24(int64(sample)) >> 8)
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	return int32(sample) << 8
}

// SampleTo24Bit converts int32 to 24-bit packed bytes (little-endian)
func SampleTo24Bit(sample int32) [3]byte {
	return [3]byte{
		byte(sample),
		byte(sample >> 8),
		byte(sample >> 16),
	}
}

// SampleFrom24Bit converts 24-bit packed bytes to int32 (little-endian)
func SampleFrom24Bit(b [3]byte) int32 {
	val := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	// Sign extend from 24-bit to 32-bit
	if val&0x800000 != 0 {
		val |= ^0xFFFFFF
	}
	return val
}

// SampleFromBitDepth scales a signed sample of the given depth into 24-bit range.
// 8-bit input is expected signed (callers convert unsigned WAV bytes first).
func SampleFromBitDepth(sample int32, bitDepth int) int32 {
	switch {
	case bitDepth == 24:
		return sample
	case bitDepth < 24:
		return sample << (24 - bitDepth)
	default:
		return sample >> (bitDepth - 24)
	}
}

// SampleToBitDepth scales a 24-bit range sample to the given depth
func SampleToBitDepth(sample int32, bitDepth int) int32 {
	sample = Clamp24(int64(sample))
	switch {
	case bitDepth == 24:
		return sample
	case bitDepth < 24:
		return sample >> (24 - bitDepth)
	default:
		return sample << (bitDepth - 24)
	}
}

// Clamp24 saturates a wide accumulator value to the 24-bit range
func Clamp24(v int64) int32 {
	if v > Max24Bit {
		return Max24Bit
	}
	if v < Min24Bit {
		return Min24Bit
	}
	return int32(v)
}
