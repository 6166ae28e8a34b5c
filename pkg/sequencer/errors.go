// ABOUTME: Sequencer error values
// ABOUTME: Sentinel errors and the export error type
package sequencer

import (
	"errors"
	"fmt"
)

var (
	// ErrStepOutOfRange is returned for a step index outside [0, N)
	ErrStepOutOfRange = errors.New("step index out of range")

	// ErrUnknownChannel is returned when no channel has the given id
	ErrUnknownChannel = errors.New("unknown channel")
)

// ExportError describes a failed mixdown export
type ExportError struct {
	Path string
	Op   string // "create", "encode" or "write"
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
