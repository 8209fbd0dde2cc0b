// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package jstream decodes a stream of concatenated JSON values.
//
// # Reading
//
// The Reader type consumes an io.Reader carrying one or more JSON values
// written one after another, not wrapped in an enclosing array, and decodes
// each value as soon as enough input has arrived. It reads its source in
// chunks of a fixed size, so the whole input need not fit in memory and its
// length need not be known in advance.
//
// Construct a Reader and call its Next method to iterate over the values.
// Next returns nil when a value is available, or reports an error:
//
//	rd := jstream.NewReader(input, nil)
//	for rd.Next() == nil {
//	   log.Printf("Next value: %v", rd.Value())
//	}
//
// Next returns io.EOF when the input has been fully consumed. Any other
// error indicates an I/O error from the source, or input that could not be
// decoded:
//
//	if rd.Err() != io.EOF {
//	   log.Fatalf("Reading failed: %v", rd.Err())
//	}
//
// The All method adapts a Reader for use in a range loop.
//
// # Decoders
//
// A Reader does not parse JSON itself. It delegates to a Decoder, which
// decodes one value from the front of a buffer and reports how much of the
// buffer it consumed. The default is StdDecoder, which uses encoding/json.
// The Framed decoder pairs a Framer, which finds the boundaries of a value,
// with any function that unmarshals a complete value; package decoders uses
// it to plug in several third-party JSON libraries.
//
// A Decoder distinguishes input that ends partway through a value
// (ErrIncomplete), which the Reader answers by reading more, from input that
// is malformed, which stops the Reader at once. Wrapping a decoder with
// Lenient erases that distinction, so malformed input is found only when the
// source is exhausted; Options.MaxAttempts and Options.MaxValueSize bound the
// wait on a source that never ends.
//
// # Scanning
//
// The Scanner type implements a lexical scanner for JSON over a byte slice,
// and the Framer type uses it to find the span of each complete value. Both
// report a token or value cut off by the end of their input as an error
// wrapping ErrIncomplete. Comments (// and /* */) and trailing commas in
// objects and arrays, as allowed by JWCC, can be enabled on request.
package jstream
