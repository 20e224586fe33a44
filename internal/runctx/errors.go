package runctx

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateKey is returned when a key is pushed a second time.
	ErrDuplicateKey = errors.New("duplicate context key")
	// ErrMissingKey is returned when a key is pulled before it was pushed.
	ErrMissingKey = errors.New("missing context key")
)

// KeyError names the key involved in a failed Push or Pull.
type KeyError struct {
	Key string
	Err error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("%v: %q", e.Err, e.Key)
}

func (e *KeyError) Unwrap() error {
	return e.Err
}
