package recompress

import (
	"context"
	"errors"
)

var (
	// ErrUnsupportedInput means the source could not be decoded: not an
	// image, corrupt, or a codec that is not registered.
	ErrUnsupportedInput = errors.New("recompress: unsupported input")

	// ErrEncodeFailure means the encoder produced no usable payload.
	ErrEncodeFailure = errors.New("recompress: encode failed")

	// ErrInvalidQuality means quality was outside [1,100].
	ErrInvalidQuality = errors.New("recompress: invalid quality")

	// ErrBusy is returned by Session.Submit while a job is in flight.
	ErrBusy = errors.New("recompress: session busy")
)

// Kind names the failure class of err for logs and user-facing messages.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidQuality):
		return "invalid_quality"
	case errors.Is(err, ErrUnsupportedInput):
		return "unsupported_input"
	case errors.Is(err, ErrEncodeFailure):
		return "encode_failure"
	case errors.Is(err, ErrBusy):
		return "busy"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "unknown"
	}
}
