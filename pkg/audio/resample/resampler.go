// ABOUTME: Linear interpolation resampler for interleaved int32 buffers
// ABOUTME: Used for rate transposition and format conversion of samples
package resample

import "math"

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  float64
	outputRate float64
	channels   int
	ratio      float64 // input frames consumed per output frame
}

// New creates a resampler from inputRate to outputRate
func New(inputRate, outputRate float64, channels int) *Resampler {
	if channels < 1 {
		channels = 1
	}
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      inputRate / outputRate,
	}
}

// Ratio returns the number of input frames consumed per output frame
func (r *Resampler) Ratio() float64 {
	return r.ratio
}

// OutputFrames calculates how many frames Resample produces for inputFrames
func (r *Resampler) OutputFrames(inputFrames int) int {
	if inputFrames <= 0 {
		return 0
	}
	n := int(math.Floor(float64(inputFrames) / r.ratio))
	if n < 1 {
		n = 1
	}
	return n
}

// Resample converts a complete interleaved buffer and returns a new slice.
// The input is never modified.
func (r *Resampler) Resample(input []int32) []int32 {
	inputFrames := len(input) / r.channels
	if inputFrames == 0 {
		return []int32{}
	}

	outputFrames := r.OutputFrames(inputFrames)
	output := make([]int32, outputFrames*r.channels)

	for outIdx := 0; outIdx < outputFrames; outIdx++ {
		pos := float64(outIdx) * r.ratio
		inputIdx := int(pos)
		if inputIdx >= inputFrames {
			inputIdx = inputFrames - 1
		}
		nextIdx := inputIdx + 1
		if nextIdx >= inputFrames {
			nextIdx = inputFrames - 1
		}
		frac := pos - float64(int(pos))

		for ch := 0; ch < r.channels; ch++ {
			sample1 := input[inputIdx*r.channels+ch]
			if frac == 0 {
				output[outIdx*r.channels+ch] = sample1
				continue
			}
			sample2 := input[nextIdx*r.channels+ch]
			interpolated := float64(sample1)*(1.0-frac) + float64(sample2)*frac
			output[outIdx*r.channels+ch] = int32(math.Round(interpolated))
		}
	}

	return output
}
