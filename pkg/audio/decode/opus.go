// ABOUTME: Ogg Opus file decoder
// ABOUTME: Decodes Ogg Opus files to int32 samples via hraban/opus
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/stepseq-go/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

const (
	// libopusfile always decodes at 48kHz
	opusSampleRate = 48000

	// Max frame size per channel (120ms at 48kHz)
	opusMaxFrame = 5760
)

var opusHeadMagic = []byte("OpusHead")

// OpusDecoder decodes Ogg Opus audio
type OpusDecoder struct{}

// NewOpus creates a new Opus decoder
func NewOpus() Decoder {
	return &OpusDecoder{}
}

// Decode reads a whole Ogg Opus file
func (d *OpusDecoder) Decode(r io.ReadSeeker) (*audio.SampleBuffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read opus file: %w", err)
	}

	channels, err := opusChannelCount(data)
	if err != nil {
		return nil, err
	}

	stream, err := opus.NewStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open opus stream: %w", err)
	}
	defer stream.Close()

	pcm16 := make([]int16, opusMaxFrame*channels)
	var samples []int32
	for {
		n, err := stream.Read(pcm16)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("opus decode failed: %w", err)
		}
		for i := 0; i < n*channels; i++ {
			samples = append(samples, audio.SampleFromInt16(pcm16[i]))
		}
	}

	format := audio.Format{
		Codec:      "opus",
		SampleRate: opusSampleRate,
		Channels:   channels,
		BitDepth:   16,
	}
	return audio.NewSampleBuffer(format, samples), nil
}

// opusChannelCount reads the channel count from the OpusHead identification header
func opusChannelCount(data []byte) (int, error) {
	idx := bytes.Index(data, opusHeadMagic)
	// magic(8) + version(1) + channel count(1)
	if idx < 0 || idx+10 > len(data) {
		return 0, errors.New("missing OpusHead header")
	}
	channels := int(data[idx+9])
	if channels < 1 || channels > 2 {
		return 0, fmt.Errorf("unsupported opus channel count: %d (supported: 1, 2)", channels)
	}
	return channels, nil
}
