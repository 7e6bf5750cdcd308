package hashing

import (
	"errors"

	"github.com/ironsheep/visual-hash-mcp/internal/pixels"
)

var (
	// ErrUnknownAlgorithm reports an unrecognised algorithm identifier.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")

	// ErrLengthMismatch reports a comparison of bit strings of unequal length.
	ErrLengthMismatch = errors.New("hash length mismatch")

	// ErrAlgorithmMismatch reports a comparison of descriptors produced by
	// different algorithms.
	ErrAlgorithmMismatch = errors.New("hash algorithm mismatch")

	// ErrInvalidInput is pixels.ErrInvalidInput, re-exported for callers that
	// only import this package.
	ErrInvalidInput = pixels.ErrInvalidInput
)
