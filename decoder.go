// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jstream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// A Decoder decodes a single JSON value from the front of a byte slice.
//
// DecodePrefix reports the decoded value and the number of bytes of data
// consumed to produce it, which must be positive and at most len(data).
// Trailing content after the value is ignored. The results fall into four
// classes:
//
//   - Success: err == nil.
//   - No value: err == io.EOF, data holds only insignificant content such
//     as whitespace.
//   - Incomplete: err wraps ErrIncomplete, data is a proper prefix of a
//     value and more input may complete it.
//   - Invalid: any other error; data cannot be the start of a valid value.
//
// A Decoder must not retain or modify data. Implementations should be safe
// to reuse across readers.
type Decoder interface {
	DecodePrefix(data []byte) (value any, n int, err error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(data []byte) (any, int, error)

// DecodePrefix satisfies the Decoder interface.
func (f DecoderFunc) DecodePrefix(data []byte) (any, int, error) { return f(data) }

// StdDecoder is a Decoder that uses the standard library encoding/json
// decoder. Numbers decode as float64 unless UseNumber is set, in which case
// they decode as json.Number.
type StdDecoder struct {
	UseNumber bool
}

// DecodePrefix satisfies the Decoder interface.
func (d StdDecoder) DecodePrefix(data []byte) (any, int, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if d.UseNumber {
		dec.UseNumber()
	}
	var v any
	if err := dec.Decode(&v); err == io.EOF {
		return nil, 0, err
	} else if errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, 0, fmt.Errorf("%w: %w", ErrIncomplete, err)
	} else if err != nil {
		return nil, 0, err
	}
	return v, int(dec.InputOffset()), nil
}

// Framed is a Decoder that locates the first complete value in its input with
// a Framer, and passes exactly that text to Unmarshal. This allows any
// whole-document JSON decoder to be used as a prefix decoder.
type Framed struct {
	// Unmarshal decodes a complete JSON value into v, which is a non-nil *any.
	// If nil, json.Unmarshal from the standard library is used.
	Unmarshal func(data []byte, v any) error

	// If true, skip JWCC comments (// and /* */) between tokens.
	// Unmarshal is responsible for handling comments inside the value.
	AllowComments bool

	// If true, accept trailing commas in objects and arrays.
	// Unmarshal is responsible for handling them.
	AllowTrailingCommas bool
}

// DecodePrefix satisfies the Decoder interface.
func (d Framed) DecodePrefix(data []byte) (any, int, error) {
	f := NewFramer(data)
	f.AllowComments(d.AllowComments)
	f.AllowTrailingCommas(d.AllowTrailingCommas)
	span, err := f.Next()
	if err != nil {
		return nil, 0, err
	}
	unmarshal := d.Unmarshal
	if unmarshal == nil {
		unmarshal = json.Unmarshal
	}
	var v any
	if err := unmarshal(data[span.Pos:span.End], &v); err != nil {
		return nil, 0, err
	}
	return v, int(span.End), nil
}

// Lenient wraps d so that every decoding failure is reported as incomplete.
//
// A lenient decoder cannot tell a truncated value from a malformed one, so a
// Reader using it finds malformed input only when the source is exhausted,
// and waits indefinitely on a source that never ends. Use Options.MaxAttempts
// or Options.MaxValueSize to bound the wait.
func Lenient(d Decoder) Decoder { return lenient{d} }

type lenient struct{ Decoder }

func (d lenient) DecodePrefix(data []byte) (any, int, error) {
	v, n, err := d.Decoder.DecodePrefix(data)
	if err == nil || err == io.EOF || errors.Is(err, ErrIncomplete) {
		return v, n, err
	}
	return nil, 0, &lenientError{err: err}
}

// lenientError marks a decoding failure that a lenient decoder reported as
// incomplete.
type lenientError struct{ err error }

func (e *lenientError) Error() string   { return fmt.Sprintf("%v: %v", ErrIncomplete, e.err) }
func (e *lenientError) Unwrap() []error { return []error{ErrIncomplete, e.err} }

// failedAt reports the offset in data of length n at which err says decoding
// stopped, or -1 if err does not say. A truncated value is taken to fail at
// the end of the data.
func failedAt(err error, n int) int {
	var lerr *lenientError
	if !errors.As(err, &lerr) {
		return n
	}
	var serr *SyntaxError
	var jerr *json.SyntaxError
	if errors.As(lerr.err, &serr) {
		return serr.Offset
	} else if errors.As(lerr.err, &jerr) {
		return int(jerr.Offset)
	}
	return -1
}
