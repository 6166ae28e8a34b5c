// ABOUTME: FLAC file decoder
// ABOUTME: Decodes FLAC frames to int32 samples via mewkiz/flac
package decode

import (
	"fmt"
	"io"

	"github.com/Resonate-Protocol/stepseq-go/pkg/audio"
	"github.com/mewkiz/flac"
)

// FLACDecoder decodes FLAC audio
type FLACDecoder struct{}

// NewFLAC creates a new FLAC decoder
func NewFLAC() Decoder {
	return &FLACDecoder{}
}

// Decode reads every frame of a FLAC stream
func (d *FLACDecoder) Decode(r io.ReadSeeker) (*audio.SampleBuffer, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	channels := int(info.NChannels)
	bitDepth := int(info.BitsPerSample)

	samples := make([]int32, 0, int(info.NSamples)*channels)
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse FLAC frame: %w", err)
		}

		for i := 0; i < int(frame.BlockSize); i++ {
			for ch := 0; ch < channels; ch++ {
				sample := frame.Subframes[ch].Samples[i]
				samples = append(samples, audio.SampleFromBitDepth(sample, bitDepth))
			}
		}
	}

	format := audio.Format{
		Codec:      "flac",
		SampleRate: int(info.SampleRate),
		Channels:   channels,
		BitDepth:   bitDepth,
	}
	if err := format.Validate(); err != nil {
		return nil, err
	}

	return audio.NewSampleBuffer(format, samples), nil
}
