// ABOUTME: Mixdown render implementation
// ABOUTME: Places sample copies on the step grid and sums them with 24-bit saturation
package mixdown

import (
	"math"

	"github.com/Resonate-Protocol/stepseq-go/pkg/audio"
)

// Track is one channel as seen by the renderer
type Track struct {
	Steps  []bool
	Buffer *audio.SampleBuffer // gain-adjusted playable buffer, nil when no sample is loaded
}

// StepSeconds returns the length of one sixteenth-note step
func StepSeconds(bpm int) float64 {
	if bpm <= 0 {
		return 0
	}
	return 60.0 / float64(bpm) / 4.0
}

// PatternSeconds returns the length of one loop of numSteps steps
func PatternSeconds(bpm, numSteps int) float64 {
	if numSteps < 0 {
		numSteps = 0
	}
	return float64(numSteps) * StepSeconds(bpm)
}

// OutputFormat picks the format of the first track with a sample, or the default format
func OutputFormat(tracks []Track) audio.Format {
	for _, t := range tracks {
		if t.Buffer != nil {
			return t.Buffer.Format()
		}
	}
	return audio.DefaultFormat()
}

type placement struct {
	buf   *audio.SampleBuffer
	start int
}

// Render mixes one loop of the pattern. The output lasts the pattern length
// or until the last copy ends, whichever is longer.
func Render(tracks []Track, bpm, numSteps int) *audio.SampleBuffer {
	format := OutputFormat(tracks)
	rate := float64(format.SampleRate)
	step := StepSeconds(bpm)

	totalFrames := int(math.Round(PatternSeconds(bpm, numSteps) * rate))

	var placements []placement
	for _, t := range tracks {
		if t.Buffer == nil {
			continue
		}
		buf := t.Buffer.Convert(format)

		for i, on := range t.Steps {
			if i >= numSteps {
				break
			}
			if !on {
				continue
			}
			start := int(math.Round(float64(i) * step * rate))
			placements = append(placements, placement{buf: buf, start: start})
			if end := start + buf.Frames(); end > totalFrames {
				totalFrames = end
			}
		}
	}

	acc := make([]int64, totalFrames*format.Channels)
	for _, p := range placements {
		p.buf.MixInto(acc, p.start)
	}

	out := make([]int32, len(acc))
	for i, v := range acc {
		out[i] = audio.Clamp24(v)
	}
	return audio.NewSampleBuffer(format, out)
}
