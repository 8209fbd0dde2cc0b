// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jstream

import (
	"fmt"
	"io"
	"slices"
	"strings"
)

// A Framer finds the boundaries of complete JSON values in a byte slice
// without decoding them. Each call to Next reports the span of the next value.
//
// A Framer is the structural half of a prefix decoder: it reports whether
// the input holds a complete value, a truncated one, or malformed text.
type Framer struct {
	s      *Scanner
	tcomma bool // allow trailing commas in objects and arrays
	depth  int
}

// NewFramer constructs a new Framer that consumes input from data.
func NewFramer(data []byte) *Framer { return &Framer{s: NewScanner(data)} }

// AllowComments configures the scanner associated with f to skip (true) or
// reject (false) comments.
func (f *Framer) AllowComments(ok bool) { f.s.AllowComments(ok) }

// AllowTrailingCommas configures the framer to allow (true) or reject (false)
// trailing commas in objects and arrays.
func (f *Framer) AllowTrailingCommas(ok bool) { f.tcomma = ok }

func (f *Framer) recoverSyntaxError(errp *error) {
	if serr := recover(); serr != nil {
		if err, ok := serr.(*SyntaxError); ok {
			*errp = err
			return
		}
		panic(serr)
	}
}

// Next reports the span of the next complete value in the input. Spans are
// relative to the start of the input. If no further value begins in the
// input, Next returns io.EOF.
//
// If the input ends before the value is complete, the error is a
// [*SyntaxError] that wraps ErrIncomplete. Any other syntax error means the
// input is malformed and adding more data to it will not help.
func (f *Framer) Next() (_ Span, err error) {
	defer f.recoverSyntaxError(&err)

	if err := f.nextToken(); err == io.EOF {
		return Span{}, err
	} else if err != nil {
		f.syntaxError(err, "%v", err)
	}
	start := f.s.Span().Pos
	f.depth = 0
	f.parseElement()
	return Span{Pos: start, End: f.s.Span().End}, nil
}

// maxDepth bounds the nesting of objects and arrays the framer will follow.
const maxDepth = 10000

// parseElement consumes a single value of any type.
// Precondition: token != Invalid.
func (f *Framer) parseElement() {
	switch tok := f.s.Token(); tok {
	case LBrace:
		f.enter()
		f.parseMembers()
		f.depth--
	case LSquare:
		f.enter()
		f.parseElements()
		f.depth--
	case Integer, Number, String, True, False, Null:
		// OK, a complete scalar
	case RBrace, RSquare, Comma, Colon:
		f.syntaxError(nil, "unexpected %v", tok)
	default:
		f.syntaxError(nil, "unknown token %v", tok)
	}
}

func (f *Framer) enter() {
	if f.depth++; f.depth > maxDepth {
		f.syntaxError(nil, "exceeded maximum nesting depth %d", maxDepth)
	}
}

// parseMembers consumes zero of more key:value object members.
// Precondition: token == LBrace.
// Postcondition: token == RBrace.
func (f *Framer) parseMembers() {
	tok := f.advance(RBrace, String)
	if tok == RBrace {
		return // end of object
	}
	for {
		// Parse a single member: "key": value
		f.advance(Colon)
		f.advance()
		f.parseElement()

		// Check whether we have more members (",") or are done ("}").
		tok := f.advance(RBrace, Comma)
		if tok == RBrace {
			return // end of object
		} else if f.tcomma {
			// If trailing commas are allowed and the next token is a close
			// bracket, consider this a valid end of the object. Otherwise, it
			// must be a key for a subsequent element.
			if next := f.advance(String, RBrace); next == RBrace {
				return // end of object with trailing comma
			}
		} else {
			f.advance(String) // advance to next key
		}
	}
}

// parseElements consumes zero or more comma-separated array values.
// Precondition: token == LSquare.
// Postcondition: token == RSquare.
func (f *Framer) parseElements() {
	if tok := f.advance(); tok == RSquare {
		return // end of array
	}
	f.parseElement()
	for {
		tok := f.advance(RSquare, Comma)
		if tok == RSquare {
			return // end of array
		}

		// If trailing commas are allowed and the next token is a close bracket,
		// consider this a valid end of the array; otherwise it will fail on the
		// next element
		if next := f.advance(); f.tcomma && next == RSquare {
			return // end of array with trailing comma
		}
		f.parseElement()
	}
}

// nextToken advances to the next non-comment token.
func (f *Framer) nextToken() error {
	for {
		if err := f.s.Next(); err != nil {
			return err
		}
		if tok := f.s.Token(); tok != LineComment && tok != BlockComment {
			return nil
		}
	}
}

func (f *Framer) advance(tokens ...Token) Token {
	if err := f.nextToken(); err == io.EOF {
		// The value is open, so the end of input means it was cut short.
		f.syntaxError(ErrIncomplete, "%v", tokLabel(tokens, "end of input"))
	} else if err != nil {
		f.syntaxError(err, "%v", tokLabel(tokens, err))
	}
	tok := f.s.Token()
	if len(tokens) != 0 && !slices.Contains(tokens, tok) {
		f.syntaxError(nil, "%v", tokLabel(tokens, tok))
	}
	return tok
}

func (f *Framer) syntaxError(err error, msg string, args ...any) {
	loc := f.s.Location()
	panic(&SyntaxError{
		Location: loc.First,
		Offset:   int(loc.Pos),
		Message:  fmt.Sprintf(msg, args...),
		err:      err,
	})
}

// tokLabel makes a human-readable summary string for the given token types.
func tokLabel(tokens []Token, got any) string {
	if len(tokens) == 0 {
		return fmt.Sprintf("expected more input, got %v", got)
	}
	var exp string
	if len(tokens) == 1 {
		exp = tokens[0].String()
	} else {
		last := len(tokens) - 1
		ss := make([]string, len(tokens)-1)
		for i, tok := range tokens[:last] {
			ss[i] = tok.String()
		}
		exp = strings.Join(ss, ", ") + " or " + tokens[last].String()
	}
	return fmt.Sprintf("expected %s, got %v", exp, got)
}

// SyntaxError is the concrete type of errors reported by the framer.
type SyntaxError struct {
	Location LineCol // the line and column of the offending token
	Offset   int     // the byte offset of the offending token in the input
	Message  string

	err error
}

// Error satisfies the error interface.
func (s *SyntaxError) Error() string {
	return fmt.Sprintf("at %s: %s", s.Location, s.Message)
}

// Unwrap supports error wrapping.
func (s *SyntaxError) Unwrap() error { return s.err }

// Incomplete reports whether s was caused by the input ending before the
// value was complete.
func (s *SyntaxError) Incomplete() bool { return isIncomplete(s.err) }
