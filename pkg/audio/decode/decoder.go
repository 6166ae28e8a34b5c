// ABOUTME: Decoder interface and extension-based dispatch
// ABOUTME: Loads a file into a SampleBuffer and wraps failures in DecodeError
package decode

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Resonate-Protocol/stepseq-go/pkg/audio"
)

// ErrUnsupportedFormat is returned for file extensions without a decoder
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Decoder decodes a complete encoded file into a sample buffer
type Decoder interface {
	Decode(r io.ReadSeeker) (*audio.SampleBuffer, error)
}

// DecodeError reports a sample file that could not be read or decoded
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

var decoders = map[string]func() Decoder{
	".wav":  NewWAV,
	".mp3":  NewMP3,
	".flac": NewFLAC,
	".opus": NewOpus,
	".ogg":  NewOpus,
}

// SupportedExtensions lists the file extensions Load accepts
func SupportedExtensions() []string {
	exts := make([]string, 0, len(decoders))
	for ext := range decoders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ForPath returns the decoder matching the file extension of path
func ForPath(path string) (Decoder, error) {
	ext := strings.ToLower(filepath.Ext(path))
	newDecoder, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, ext, strings.Join(SupportedExtensions(), ", "))
	}
	return newDecoder(), nil
}

// Load decodes the audio file at path
func Load(path string) (*audio.SampleBuffer, error) {
	dec, err := ForPath(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	buf, err := dec.Decode(f)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	if buf.Frames() == 0 {
		return nil, &DecodeError{Path: path, Err: errors.New("file contains no audio frames")}
	}

	log.Printf("Loaded sample: %s (%s, %v)", filepath.Base(path), buf.Format(), buf.Duration())
	return buf, nil
}
