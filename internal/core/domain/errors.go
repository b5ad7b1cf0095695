package domain

import (
	"errors"
	"fmt"
)

// Error classes returned by the use cases. Callers match them with errors.Is.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("invalid API key")
	ErrModel         = errors.New("model error")
	ErrIO            = errors.New("io error")
)

// ErrArtifactNotFound also matches ErrIO.
var ErrArtifactNotFound = fmt.Errorf("%w: model artifact not found", ErrIO)
