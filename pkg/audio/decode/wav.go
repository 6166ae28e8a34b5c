// ABOUTME: WAV file decoder
// ABOUTME: Decodes integer PCM WAV files via go-audio/wav
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/stepseq-go/pkg/audio"
	"github.com/go-audio/wav"
)

// wavFormatPCM is the RIFF format tag for integer PCM
const wavFormatPCM = 1

// WAVDecoder decodes WAV files
type WAVDecoder struct{}

// NewWAV creates a new WAV decoder
func NewWAV() Decoder {
	return &WAVDecoder{}
}

// Decode reads a whole WAV file
func (d *WAVDecoder) Decode(r io.ReadSeeker) (*audio.SampleBuffer, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode WAV: %w", err)
	}
	if decoder.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: WAV format tag %d (only integer PCM)", ErrUnsupportedFormat, decoder.WavAudioFormat)
	}

	bitDepth := int(decoder.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 8, 16, 24, 32)", bitDepth)
	}

	samples := make([]int32, len(buf.Data))
	for i, v := range buf.Data {
		if bitDepth == 8 {
			// 8-bit WAV is unsigned
			v -= 128
		}
		samples[i] = audio.SampleFromBitDepth(int32(v), bitDepth)
	}

	format := audio.Format{
		Codec:      "wav",
		SampleRate: int(decoder.SampleRate),
		Channels:   int(decoder.NumChans),
		BitDepth:   bitDepth,
	}
	if err := format.Validate(); err != nil {
		return nil, err
	}

	return audio.NewSampleBuffer(format, samples), nil
}
