// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jstream

import (
	"errors"
	"fmt"
)

var (
	// ErrIncomplete is reported by a Decoder when its input is a proper
	// prefix of a value, so that more input may complete it.
	ErrIncomplete = errors.New("incomplete JSON value")

	// ErrCorrupt is reported by a Reader when the maximum number of
	// consecutive decode attempts fail without making progress.
	ErrCorrupt = errors.New("corrupt input")

	// ErrTooLarge is reported by a Reader when a pending value grows beyond
	// the configured maximum size without being decoded.
	ErrTooLarge = errors.New("value too large")
)

// DecodeError is the concrete type of decoding errors reported by a Reader.
// Errors reading from the underlying source are reported as-is and do not
// have this type.
type DecodeError struct {
	Offset int64 // stream offset where the undecodable value begins
	Err    error // the error reported by the decoder
}

// Error satisfies the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("at offset %d: %v", e.Offset, e.Err)
}

// Unwrap supports error wrapping.
func (e *DecodeError) Unwrap() error { return e.Err }
