// ABOUTME: Tests for WAV decoder
// ABOUTME: Round-trips 16-bit and 24-bit files and checks 8-bit unsigned input
package decode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Resonate-Protocol/stepseq-go/pkg/audio"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func TestLoadWAV16Bit(t *testing.T) {
	format := audio.Format{Codec: "pcm", SampleRate: 44100, Channels: 2, BitDepth: 16}
	samples := []int32{256 << 8, -256 << 8, 770 << 8, -770 << 8}
	path := writeWAVFixture(t, "kick.wav", audio.NewSampleBuffer(format, samples), 16)

	buf, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	got := buf.Format()
	if got.Codec != "wav" || got.SampleRate != 44100 || got.Channels != 2 || got.BitDepth != 16 {
		t.Errorf("unexpected format: %v", got)
	}
	decoded := buf.Samples()
	for i := range samples {
		if decoded[i] != samples[i] {
			t.Errorf("sample %d: expected %d, got %d", i, samples[i], decoded[i])
		}
	}
}

func TestLoadWAV24BitMono(t *testing.T) {
	format := audio.Format{Codec: "pcm", SampleRate: 96000, Channels: 1, BitDepth: 24}
	samples := []int32{0x123456, -0x123456, audio.Max24Bit, audio.Min24Bit}
	path := writeWAVFixture(t, "snare.wav", audio.NewSampleBuffer(format, samples), 24)

	buf, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if buf.Format().BitDepth != 24 || buf.Format().Channels != 1 {
		t.Errorf("unexpected format: %v", buf.Format())
	}
	decoded := buf.Samples()
	for i := range samples {
		if decoded[i] != samples[i] {
			t.Errorf("sample %d: expected %d, got %d", i, samples[i], decoded[i])
		}
	}
}

func TestLoadWAV8BitUnsigned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lofi.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	enc := wav.NewEncoder(f, 8000, 8, 1, 1)
	err = enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: 8000},
		Data:           []int{128, 255, 0},
		SourceBitDepth: 8,
	})
	if err != nil {
		t.Fatalf("failed to write 8-bit data: %v", err)
	}
	enc.Close()
	f.Close()

	buf, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	expected := []int32{0, 127 << 16, -128 << 16}
	decoded := buf.Samples()
	for i := range expected {
		if decoded[i] != expected[i] {
			t.Errorf("sample %d: expected %d, got %d", i, expected[i], decoded[i])
		}
	}
}

func TestLoadWAVEmptyData(t *testing.T) {
	path := writeWAVFixture(t, "empty.wav", audio.Silence(audio.DefaultFormat(), 0), 16)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for WAV without frames")
	}
}
