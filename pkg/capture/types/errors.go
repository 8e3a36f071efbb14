package types

import (
	"errors"
)

var (
	// ErrAgain means no output is available until more input is provided.
	ErrAgain = errors.New("resource temporarily unavailable")

	ErrNotImplemented = errors.New("not implemented")
)

type ErrNoStream struct {
	MediaType MediaType
}

func (e ErrNoStream) Error() string {
	return "no " + e.MediaType.String() + " stream found"
}
