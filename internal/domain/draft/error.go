package draft

import (
	"errors"
)

var (
	ErrNotFound     = errors.New("draft not found")
	ErrNotActive    = errors.New("draft is not active")
	ErrInvalidDraft = errors.New("invalid draft")
)
