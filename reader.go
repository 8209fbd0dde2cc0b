// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jstream

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
)

// DefaultChunkSize is the number of bytes a Reader requests from its source
// per read when Options.ChunkSize is zero.
const DefaultChunkSize = 2048

// maxConsecutiveEmptyReads bounds the number of reads in a row that may
// return no data and no error before a Reader gives up.
const maxConsecutiveEmptyReads = 100

// Options are settings for a Reader. A nil *Options is ready for use and
// provides default values as described.
type Options struct {
	// The number of bytes to request from the source per read.
	// If zero, DefaultChunkSize is used. Negative values are invalid.
	ChunkSize int

	// The decoder used to decode values from the buffer.
	// If nil, StdDecoder{} is used.
	Decoder Decoder

	// If positive, the maximum number of consecutive decode attempts that may
	// fail without progress before the Reader reports ErrCorrupt. An attempt
	// makes progress if it fails later in the stream than the one before it,
	// so a value that is merely long never counts against the limit. This
	// matters only for a Lenient decoder, whose failures may not be
	// truncations. Zero means no limit.
	MaxAttempts int

	// If positive, the maximum number of unconsumed bytes the Reader may hold
	// while waiting for a value to complete before it reports ErrTooLarge.
	// Zero means no limit.
	MaxValueSize int

	// If set, debug traces of reads and decode attempts are written here.
	Logger *slog.Logger
}

func (o *Options) chunkSize() int {
	if o == nil || o.ChunkSize == 0 {
		return DefaultChunkSize
	}
	return o.ChunkSize
}

func (o *Options) decoder() Decoder {
	if o == nil || o.Decoder == nil {
		return StdDecoder{}
	}
	return o.Decoder
}

func (o *Options) maxAttempts() int {
	if o == nil {
		return 0
	}
	return o.MaxAttempts
}

func (o *Options) maxValueSize() int {
	if o == nil {
		return 0
	}
	return o.MaxValueSize
}

func (o *Options) logger() *slog.Logger {
	if o == nil || o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger.With("component", "jstream")
}

// A Reader decodes a sequence of concatenated JSON values from an input
// stream. Call Next to advance to each value in turn:
//
//	rd := jstream.NewReader(input, nil)
//	for rd.Next() == nil {
//	   log.Printf("Next value: %v", rd.Value())
//	}
//
// The Reader reads from its source only when its buffer does not contain a
// complete value, and holds no more than the largest value in the stream plus
// one chunk. A Reader does not close its source.
type Reader struct {
	r     io.Reader
	dec   Decoder
	chunk int
	log   *slog.Logger

	maxAttempts int
	maxSize     int

	buf  []byte // input buffer; buf[pos:] is unconsumed
	pos  int
	base int64 // stream offset of buf[0]
	eof  bool  // the source is exhausted
	err  error // sticky error

	fails   int   // consecutive decodes without progress
	failPos int64 // stream offset of the last decode failure, or -1
	val   any
	text  []byte
	span  Span
}

// NewReader constructs a new Reader that consumes input from r. If opts ==
// nil, default options are used. NewReader panics if opts.ChunkSize < 0.
func NewReader(r io.Reader, opts *Options) *Reader {
	chunk := opts.chunkSize()
	if chunk < 0 {
		panic(fmt.Sprintf("invalid chunk size %d", chunk))
	}
	return &Reader{
		r:           r,
		dec:         opts.decoder(),
		chunk:       chunk,
		log:         opts.logger(),
		maxAttempts: opts.maxAttempts(),
		maxSize:     opts.maxValueSize(),
		failPos:     -1,
	}
}

// Next advances r to the next value of the input, or reports an error. At
// the end of the input, Next returns io.EOF.
//
// If the input ends inside a value, or the decoder rejects the input, the
// error has concrete type [*DecodeError]. Errors from the source are returned
// unmodified. Once Next has reported an error, it returns the same error on
// every subsequent call.
func (r *Reader) Next() error {
	if r.err != nil {
		return r.err
	}
	r.val, r.text, r.span = nil, nil, Span{}
	for {
		ok, err := r.decode()
		if ok {
			return nil
		} else if err != nil {
			return r.fail(err)
		} else if r.eof {
			// At the end of input, decode either consumes the remainder of
			// the buffer or reports why it could not.
			return r.fail(io.EOF)
		}
		if err := r.fill(); err != nil {
			return r.fail(err)
		}
	}
}

// Value returns the value decoded by the most recent successful call to
// Next, or nil if there is none.
func (r *Reader) Value() any { return r.val }

// Text returns the undecoded text of the current value. The return value is
// only valid until the next call of Next. The caller must copy the contents of
// the returned slice if it is needed beyond that.
func (r *Reader) Text() []byte { return r.text }

// Span returns the location of the current value in the input stream.
func (r *Reader) Span() Span { return r.span }

// Buffered reports the number of bytes read from the source but not yet
// consumed by a value.
func (r *Reader) Buffered() int { return len(r.buf) - r.pos }

// Err returns the last error reported by Next.
func (r *Reader) Err() error { return r.err }

// All returns an iterator over the remaining values of r. Iteration stops at
// the end of input; if Next reports any other error, the iterator yields a
// nil value with that error and stops.
func (r *Reader) All() iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		for {
			if err := r.Next(); err == io.EOF {
				return
			} else if err != nil {
				yield(nil, err)
				return
			}
			if !yield(r.Value(), nil) {
				return
			}
		}
	}
}

// ReadAll decodes and returns all the JSON values from r. In case of error,
// any complete values already decoded are returned along with the error.
func ReadAll(r io.Reader, opts *Options) ([]any, error) {
	rd := NewReader(r, opts)
	var vs []any
	for {
		if err := rd.Next(); err == io.EOF {
			return vs, nil
		} else if err != nil {
			return vs, err
		}
		vs = append(vs, rd.Value())
	}
}

// decode attempts to decode a value from the front of the buffer.  It reports
// true if a value was found, or false and nil if more data are needed.
func (r *Reader) decode() (bool, error) {
	rest := r.buf[r.pos:]
	if isBlank(rest) {
		// Nothing left but whitespace, which no value will need.
		r.consume(len(rest))
		return false, nil
	}

	// Decode from a view of the buffer that omits leading and trailing tabs
	// and newlines. The decoder reports consumed bytes in the coordinates of
	// the view, which begins lead bytes into the buffer.
	view := bytes.TrimLeft(rest, "\n\t")
	lead := len(rest) - len(view)
	view = bytes.TrimRight(view, "\n\t")

	offset := r.base + int64(r.pos+lead)

	// Errors are reported at the first significant byte of the input.
	at := r.base + int64(r.pos+len(rest)-len(bytes.TrimLeft(rest, " \t\r\n")))

	v, n, err := r.dec.DecodePrefix(view)
	if err == io.EOF {
		// The decoder found nothing but insignificant content. Keep it,
		// since more data may yet turn it into something (e.g., a comment).
		if r.eof {
			r.consume(len(rest))
		}
		return false, nil
	} else if errors.Is(err, ErrIncomplete) {
		if p := failedAt(err, len(view)); p >= 0 && offset+int64(p) > r.failPos {
			r.failPos = offset + int64(p)
			r.fails = 0
		}
		r.fails++
		r.log.Debug("incomplete value", "offset", at, "buffered", len(rest), "attempts", r.fails)
		if r.eof {
			return false, &DecodeError{Offset: at, Err: err}
		} else if r.maxAttempts > 0 && r.fails >= r.maxAttempts {
			return false, &DecodeError{
				Offset: at,
				Err:    fmt.Errorf("%w: no progress after %d attempts: %w", ErrCorrupt, r.fails, err),
			}
		} else if r.maxSize > 0 && len(rest) > r.maxSize {
			return false, &DecodeError{
				Offset: at,
				Err:    fmt.Errorf("%w: %d bytes pending (limit %d)", ErrTooLarge, len(rest), r.maxSize),
			}
		}
		return false, nil
	} else if err != nil {
		return false, &DecodeError{Offset: at, Err: err}
	} else if n <= 0 || n > len(view) {
		return false, &DecodeError{
			Offset: at,
			Err:    fmt.Errorf("decoder consumed %d bytes of %d", n, len(view)),
		}
	}

	// A number that runs to the very end of the buffer may continue in the
	// next chunk, so wait for more data or the end of the stream.
	end := lead + n
	if !r.eof && end == len(rest) && isDigit(rune(rest[end-1])) {
		r.log.Debug("number at end of buffer", "offset", at)
		return false, nil
	}

	// Skip whitespace and comments the decoder may have consumed ahead of
	// the value.
	text := rest[lead:end]
	skip := valueStart(text)

	r.val = v
	r.text = text[skip:]
	r.span = Span{Pos: offset + int64(skip), End: offset + int64(n)}
	r.fails, r.failPos = 0, -1
	r.consume(end)
	r.log.Debug("decoded value", "span", r.span, "bytes", r.span.Len(), "buffered", r.Buffered())
	return true, nil
}

// fill reads the next chunk from the source into the buffer. Consumed input
// is discarded before reading. At the end of the input, fill sets r.eof and
// returns nil.
func (r *Reader) fill() error {
	if r.pos > 0 {
		n := copy(r.buf, r.buf[r.pos:])
		r.buf = r.buf[:n]
		r.base += int64(r.pos)
		r.pos = 0
	}
	if r.chunk > cap(r.buf)-len(r.buf) {
		grown := make([]byte, len(r.buf), len(r.buf)+max(r.chunk, len(r.buf)))
		copy(grown, r.buf)
		r.buf = grown
	}
	for range maxConsecutiveEmptyReads {
		nr, err := r.r.Read(r.buf[len(r.buf) : len(r.buf)+r.chunk])
		if nr < 0 {
			return fmt.Errorf("source returned invalid count %d", nr)
		}
		r.buf = r.buf[:len(r.buf)+nr]
		r.log.Debug("read chunk", "bytes", nr, "buffered", r.Buffered())
		if err == io.EOF {
			r.eof = true
			return nil
		} else if err != nil {
			return err
		} else if nr > 0 {
			return nil
		}
	}
	return io.ErrNoProgress
}

// consume discards n bytes from the front of the unconsumed buffer.
func (r *Reader) consume(n int) { r.pos += n }

func (r *Reader) fail(err error) error {
	r.err = err
	if err != io.EOF {
		r.log.Debug("read failed", "error", err)
	}
	return err
}

// valueStart reports the offset of the first byte of text that is neither
// whitespace nor part of a comment.
func valueStart(text []byte) int {
	skip := len(text) - len(bytes.TrimLeft(text, " \t\r\n"))
	if !bytes.HasPrefix(text[skip:], []byte("/")) {
		return skip
	}
	s := NewScanner(text)
	s.AllowComments(true)
	for s.Next() == nil {
		if tok := s.Token(); tok != LineComment && tok != BlockComment {
			return int(s.Span().Pos)
		}
	}
	return skip
}

// isBlank reports whether data consists only of JSON whitespace.
func isBlank(data []byte) bool { return len(bytes.TrimLeft(data, " \t\r\n")) == 0 }
