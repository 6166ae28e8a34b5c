// ABOUTME: WAV file encoder
// ABOUTME: Writes a SampleBuffer as an uncompressed PCM WAV via go-audio/wav
package encode

import (
	"fmt"
	"io"

	"github.com/Resonate-Protocol/stepseq-go/pkg/audio"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavFormatPCM is the RIFF format tag for integer PCM
const wavFormatPCM = 1

// WAVBitDepth picks the export depth for a buffer: 24-bit sources stay
// 24-bit, everything else is written as 16-bit.
func WAVBitDepth(format audio.Format) int {
	if format.BitDepth >= 24 {
		return 24
	}
	return 16
}

// WriteWAV encodes buf as a PCM WAV file at its native rate and channel count
func WriteWAV(w io.WriteSeeker, buf *audio.SampleBuffer, bitDepth int) error {
	if bitDepth != 16 && bitDepth != 24 {
		return fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", bitDepth)
	}

	format := buf.Format()
	if err := format.Validate(); err != nil {
		return err
	}

	samples := buf.Samples()
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(audio.SampleToBitDepth(s, bitDepth))
	}

	enc := wav.NewEncoder(w, format.SampleRate, bitDepth, format.Channels, wavFormatPCM)
	intBuf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: format.Channels,
			SampleRate:  format.SampleRate,
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}

	if err := enc.Write(intBuf); err != nil {
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV header: %w", err)
	}
	return nil
}
