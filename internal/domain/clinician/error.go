package clinician

import "errors"

var (
	ErrNotFound     = errors.New("clinician not found")
	ErrInvalidAuth  = errors.New("invalid credentials")
	ErrInvalidInput = errors.New("invalid input")
)
