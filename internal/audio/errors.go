package audio

import (
	"errors"
	"fmt"
)

var (
	// ErrNotWAV indicates the input is not a RIFF/WAVE file.
	ErrNotWAV = errors.New("not a valid WAV file")
	// ErrBadFormat indicates a WAV header with a nonsensical sample rate or channel count.
	ErrBadFormat = errors.New("invalid sample rate or channel count")
)

// DecodeError is a fatal input failure, reported with the file path.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
