// ABOUTME: Tests for Ogg Opus header parsing
// ABOUTME: Checks channel count extraction from the OpusHead packet
package decode

import "testing"

func TestOpusChannelCount(t *testing.T) {
	header := append([]byte("OggS-padding-"), []byte("OpusHead")...)
	header = append(header, 1, 2, 0x38, 0x01)

	channels, err := opusChannelCount(header)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if channels != 2 {
		t.Errorf("expected 2 channels, got %d", channels)
	}
}

func TestOpusChannelCount_Missing(t *testing.T) {
	if _, err := opusChannelCount([]byte("OggS no header here")); err == nil {
		t.Fatal("expected error for missing OpusHead")
	}
}

func TestOpusChannelCount_Surround(t *testing.T) {
	header := append([]byte("OpusHead"), 1, 6)

	if _, err := opusChannelCount(header); err == nil {
		t.Fatal("expected error for 6-channel stream")
	}
}
