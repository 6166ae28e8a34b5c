// ABOUTME: Tests for PCM encoder
// ABOUTME: Tests 16-bit and 24-bit packing and bit depth validation
package encode

import "testing"

func TestNewPCM_UnsupportedBitDepth(t *testing.T) {
	enc, err := NewPCM(32)
	if err == nil {
		t.Fatal("expected error for unsupported bit depth, got nil")
	}
	if enc != nil {
		t.Fatal("expected encoder to be nil for unsupported bit depth")
	}

	expectedError := "unsupported bit depth: 32 (supported: 16, 24)"
	if err.Error() != expectedError {
		t.Errorf("expected error %q, got %q", expectedError, err.Error())
	}
}

func TestPCMEncode16Bit(t *testing.T) {
	enc, err := NewPCM(16)
	if err != nil {
		t.Fatalf("failed to create encoder: %v", err)
	}

	// 256 and 770 in 16-bit range, left-justified into 24-bit
	output, err := enc.Encode([]int32{256 << 8, 770 << 8})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	expected := []byte{0x00, 0x01, 0x02, 0x03}
	if len(output) != len(expected) {
		t.Fatalf("expected %d bytes, got %d", len(expected), len(output))
	}
	for i := range expected {
		if output[i] != expected[i] {
			t.Errorf("byte %d: expected 0x%02x, got 0x%02x", i, expected[i], output[i])
		}
	}
}

func TestPCMEncode24Bit(t *testing.T) {
	enc, err := NewPCM(24)
	if err != nil {
		t.Fatalf("failed to create encoder: %v", err)
	}

	output, err := enc.Encode([]int32{0x020100, 0x050403})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	expected := []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05}
	for i := range expected {
		if output[i] != expected[i] {
			t.Errorf("byte %d: expected 0x%02x, got 0x%02x", i, expected[i], output[i])
		}
	}
	if enc.BytesPerSample() != 3 {
		t.Errorf("expected 3 bytes per sample, got %d", enc.BytesPerSample())
	}
}

func TestPCMEncodeSaturates(t *testing.T) {
	enc, _ := NewPCM(16)

	output, err := enc.Encode([]int32{1 << 30})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if output[0] != 0xFF || output[1] != 0x7F {
		t.Errorf("expected saturated 0x7fff, got %02x%02x", output[1], output[0])
	}
}

func TestPCMEncodeEmptyInput(t *testing.T) {
	enc, _ := NewPCM(16)

	output, err := enc.Encode(nil)
	if err != nil {
		t.Fatalf("encode failed with empty input: %v", err)
	}
	if len(output) != 0 {
		t.Errorf("expected 0 bytes from empty input, got %d", len(output))
	}
}
