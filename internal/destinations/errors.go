package destinations

import "errors"

var (
	ErrNotFound          = errors.New("destination record not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid review transition")
)
