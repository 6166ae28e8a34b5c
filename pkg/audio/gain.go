// ABOUTME: Volume to gain mapping
// ABOUTME: Maps a 0..1 volume onto a 60 dB attenuation range
package audio

import "math"

// SilenceFloorDB is the attenuation applied at volume 0.0
const SilenceFloorDB = 60.0

// VolumeToAttenuation maps volume in [0, 1] to attenuation in dB.
// 1.0 is unity, 0.0 is SilenceFloorDB down; out-of-range input is clamped.
func VolumeToAttenuation(volume float64) float64 {
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	return (1 - volume) * SilenceFloorDB
}

// DecibelsToGain converts an attenuation in dB into a linear multiplier
func DecibelsToGain(db float64) float64 {
	return math.Pow(10, -db/20)
}
