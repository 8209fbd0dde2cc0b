// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jstream

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"go4.org/mem"
)

// Token is the type of a lexical token in the JSON grammar.
type Token byte

// Constants defining the valid Token values.
const (
	Invalid Token = iota // invalid token
	LBrace               // left brace "{"
	RBrace               // right brace "}"
	LSquare              // left square bracket "["
	RSquare              // right square bracket "]"
	Comma                // comma ","
	Colon                // colon ":"
	Integer              // number: integer with no fraction or exponent
	Number               // number with fraction and/or exponent
	String               // quoted string
	True                 // constant: true
	False                // constant: false
	Null                 // constant: null

	BlockComment // comment: /* ... */
	LineComment  // comment: // ... <LF>

	// Do not modify the order of these constants without updating the
	// self-delimiting token check below.
)

var tokenStr = [...]string{
	Invalid: "invalid token",
	LBrace:  `"{"`,
	RBrace:  `"}"`,
	LSquare: `"["`,
	RSquare: `"]"`,
	Comma:   `","`,
	Colon:   `":"`,
	Integer: "integer",
	Number:  "number",
	String:  "string",
	True:    "true",
	False:   "false",
	Null:    "null",

	BlockComment: "block comment",
	LineComment:  "line comment",
}

func (t Token) String() string {
	v := int(t)
	if v >= len(tokenStr) {
		return tokenStr[Invalid]
	}
	return tokenStr[v]
}

// A Scanner reads lexical tokens from a byte slice. Each call to Next
// advances the scanner to the next token, or reports an error.
//
// Unlike a scanner over a complete document, a Scanner distinguishes a token
// that is cut off by the end of its input from one that is malformed: the
// former is reported as an error wrapping ErrIncomplete, since more input
// may complete it.
type Scanner struct {
	data     []byte
	comments bool // allow comments
	tok      Token
	err      error

	pos, end int // start and end offsets of current token
	last     int // size in bytes of last-read input rune

	// Apparent line and column offsets (0-based)
	pline, pcol int
	eline, ecol int
}

// NewScanner constructs a new lexical scanner that consumes input from data.
// The scanner does not copy data; the caller must not modify it while the
// scanner is in use.
func NewScanner(data []byte) *Scanner { return &Scanner{data: data} }

// AllowComments configures the scanner to report (true) or reject (false)
// comment tokens. Comments are a non-standard extension of JSON.  If
// enabled, C++ style block comments (/* ... */) and line comments (// ...)
// are recognized and emitted as tokens.
func (s *Scanner) AllowComments(ok bool) { s.comments = ok }

// Next advances s to the next token of the input, or reports an error.
// At the end of the input, Next returns io.EOF.
func (s *Scanner) Next() error {
	s.err = nil
	s.tok = Invalid
	s.pos, s.pline, s.pcol = s.end, s.eline, s.ecol

	for {
		ch, ok := s.rune()
		if !ok {
			if s.end < len(s.data) {
				// A partial UTF-8 sequence remains at the tail.
				return s.incomplete("partial rune")
			}
			return s.setErr(io.EOF)
		}

		// Discard whitespace.
		if isSpace(ch) {
			s.pos, s.pline, s.pcol = s.end, s.eline, s.ecol
			if ch == '\n' {
				s.eline++
				s.ecol = 0
				s.pline, s.pcol = s.eline, s.ecol
			}
			continue
		}

		// Handle punctuation.
		if t, ok := selfDelim(ch); ok {
			s.tok = t
			return nil
		}

		// Handle numbers.
		if isNumStart(ch) {
			return s.scanNumber(ch)
		}

		// Handle string values.
		if ch == '"' {
			return s.scanString()
		}

		// Handle comments, if enabled.
		if ch == '/' && s.comments {
			return s.scanComment()
		}

		// Handle constants: true, false, null
		var want mem.RO
		switch ch {
		case 't':
			s.tok = True
			want = mem.S("true")
		case 'f':
			s.tok = False
			want = mem.S("false")
		case 'n':
			s.tok = Null
			want = mem.S("null")
		default:
			return s.failf("unexpected %q", ch)
		}
		return s.scanConstant(want) // on success, token is already set
	}
}

// Token returns the type of the current token.
func (s *Scanner) Token() Token { return s.tok }

// Err returns the last error reported by Next.
func (s *Scanner) Err() error { return s.err }

// Text returns the undecoded text of the current token. The return value is
// a view of the scanner's input; the caller must copy the contents of the
// returned slice if it will modify the input.
func (s *Scanner) Text() []byte { return s.data[s.pos:s.end] }

// Copy returns a copy of the undecoded text of the current token.
func (s *Scanner) Copy() []byte { return bytes.Clone(s.Text()) }

// Span returns the location span of the current token.
func (s *Scanner) Span() Span { return Span{Pos: int64(s.pos), End: int64(s.end)} }

// Location returns the complete location of the current token.
func (s *Scanner) Location() Location {
	return Location{
		Span:  s.Span(),
		First: LineCol{Line: s.pline + 1, Column: s.pcol},
		Last:  LineCol{Line: s.eline + 1, Column: s.ecol},
	}
}

func (s *Scanner) scanString() error {
	var esc bool
	for {
		ch, ok := s.rune()
		if !ok {
			return s.incomplete("unterminated string")
		} else if ch == '"' && !esc {
			s.tok = String
			return nil
		}
		if esc {
			// We are awaiting the completion of a \-escape.
			switch ch {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
			case 'u':
				if err := s.readHex4(); err != nil {
					return err
				}
			default:
				return s.failf("invalid %q after escape", ch)
			}
			esc = false
		} else if ch < ' ' {
			return s.failf("unescaped control %q", ch)
		} else {
			esc = ch == '\\'
		}
	}
}

func (s *Scanner) scanNumber(start rune) error {
	if start == '-' {
		// If there is a leading sign, we need at least one digit.
		// Otherwise, we already have one in start.
		if _, err := s.require(isDigit, "digit"); err != nil {
			return err
		}
	}

	// Consume the remainder of an integer.
	_, ch, ok := s.readWhile(isDigit)

	// Check for extra leading zeroes, which are disallowed by the JSON grammar.
	// That is: 0.12 is OK, 01.2 is not.
	if hasExtraLeadingZeroes(s.Text()) {
		return s.failf("extra leading zeroes")
	}
	if !ok {
		s.tok = Integer
		return nil
	}

	// If a decimal point follows, consume a fractional part.
	var isFloat bool
	if ch == '.' {
		var nr int
		nr, ch, ok = s.readWhile(isDigit)
		if nr == 0 {
			if !ok {
				return s.incomplete("fraction")
			}
			return s.failf("no digits after decimal point")
		} else if !ok {
			s.tok = Number
			return nil
		}
		isFloat = true
	}

	// If an exponent follows, consume it.
	if ch != 'E' && ch != 'e' {
		s.unrune()
		if isFloat {
			s.tok = Number
		} else {
			s.tok = Integer
		}
		return nil
	}

	ch, err := s.require(isExpStart, "sign or digit")
	if err != nil {
		return err
	}
	nr, _, ok := s.readWhile(isDigit)
	if nr == 0 && (ch == '-' || ch == '+') {
		// It's OK to have no digits if the previous rune was not a sign,
		// otherwise we have to have at least one.
		if !ok {
			return s.incomplete("exponent")
		}
		s.unrune()
		return s.failf("missing exponent digits")
	} else if ok {
		s.unrune()
	}
	s.tok = Number
	return nil
}

func (s *Scanner) scanComment() error {
	ch, ok := s.rune()
	if !ok {
		return s.incomplete("comment")
	}
	switch ch {
	case '/': // line comment to LF
		if _, _, ok := s.readWhile(isNotLF); ok {
			s.eline++
			s.ecol = 0
		}
		s.tok = LineComment
		return nil

	case '*': // block comment
		for {
			_, end, ok := s.readWhile(isNotStar)
			if !ok {
				return s.incomplete("unterminated block comment")
			} else if end == '\n' {
				s.eline++
				s.ecol = 0
				continue
			}

			// Check whether we have "*/", which would end the comment.
			next, ok := s.rune()
			if !ok {
				return s.incomplete("unterminated block comment")
			} else if next == '/' {
				s.tok = BlockComment
				return nil
			}
			s.unrune()

			// We saw "*" but not "/", so keep scanning for the end of the block.
		}

	default:
		s.unrune()
		return s.failf("invalid %q in comment", ch)
	}
}

// scanConstant consumes the remainder of the constant want, whose first byte
// has already been read. It stops as soon as want is complete, so that a
// constant may be followed directly by another value.
func (s *Scanner) scanConstant(want mem.RO) error {
	for n := s.end - s.pos; n < want.Len(); n++ {
		ch, ok := s.rune()
		if !ok {
			if s.end < len(s.data) {
				return s.failf("unknown constant %q", s.data[s.pos:])
			}
			return s.incomplete("constant " + want.StringCopy())
		} else if ch != rune(want.At(n)) {
			return s.failf("unknown constant %q", s.Text())
		}
	}
	return nil
}

// rune reads the next rune from the input. It reports false if no complete
// rune is available.
func (s *Scanner) rune() (rune, bool) {
	rest := s.data[s.end:]
	if !utf8.FullRune(rest) {
		s.last = 0
		return 0, false
	}
	ch, nb := utf8.DecodeRune(rest)
	s.last = nb
	s.end += nb
	s.ecol += nb
	return ch, true
}

func (s *Scanner) unrune() {
	s.end -= s.last
	s.ecol -= s.last
	s.last = 0
}

// require reads a single rune matching f from the input, or returns an error
// mentioning the desired label.
func (s *Scanner) require(f func(rune) bool, label string) (rune, error) {
	ch, ok := s.rune()
	if !ok {
		return 0, s.incomplete("want " + label)
	} else if !f(ch) {
		s.unrune()
		return 0, s.failf("got %q, want %s", ch, label)
	}
	return ch, nil
}

// readWhile consumes runes matching f from the input until the end of input
// or until a rune not matching f is found. The first non-matching rune (if
// any) is returned, and ok is false if the end of input was reached first.
// It is the caller's responsibility to unread this rune, if desired.
// The int reports the number of runes consumed.
func (s *Scanner) readWhile(f func(rune) bool) (int, rune, bool) {
	var nr int
	for {
		ch, ok := s.rune()
		if !ok {
			return nr, 0, false
		} else if !f(ch) {
			return nr, ch, true
		}
		nr++
	}
}

// readHex4 reads exactly 4 hexadecimal digits from the input.
func (s *Scanner) readHex4() error {
	for i := 0; i < 4; i++ {
		ch, ok := s.rune()
		if !ok {
			return s.incomplete("Unicode escape")
		} else if !isHexDigit(ch) {
			return s.failf("invalid Unicode escape: not a hex digit: %q", ch)
		}
	}
	return nil
}

type posError struct {
	pos int
	err error
}

func (p posError) Error() string {
	return fmt.Sprintf("%s (offset %d)", p.err.Error(), p.pos)
}

func (p posError) Unwrap() error { return p.err }

func (s *Scanner) setErr(err error) error {
	s.err = err
	return err
}

func (s *Scanner) failf(msg string, args ...any) error {
	return s.setErr(posError{s.end, fmt.Errorf(msg, args...)})
}

// incomplete reports that the current token was cut off by the end of the
// input while scanning the named construct.
func (s *Scanner) incomplete(what string) error {
	return s.setErr(posError{s.end, fmt.Errorf("%s: %w", what, ErrIncomplete)})
}

// isIncomplete reports whether err reports a token cut off by end of input.
func isIncomplete(err error) bool { return errors.Is(err, ErrIncomplete) }

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\r' || ch == '\n' || ch == '\t'
}

func isNotStar(ch rune) bool  { return ch != '*' && ch != '\n' }
func isNotLF(ch rune) bool    { return ch != '\n' }
func isNumStart(ch rune) bool { return ch == '-' || isDigit(ch) }
func isExpStart(ch rune) bool { return ch == '-' || ch == '+' || isDigit(ch) }
func isDigit(ch rune) bool    { return '0' <= ch && ch <= '9' }

func isHexDigit(ch rune) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// hasExtraLeadingZeroes reports whether the representation of an integer in
// buf has redundant leading zeroes, disallowed by the JSON grammar.
//
// OK: 0, 0.1, -1.0, -0.1 are all OK.
// Bad: -01, 01.2, -01.0, 00.1.
func hasExtraLeadingZeroes(buf []byte) bool {
	if buf[0] == '-' {
		buf = buf[1:] // skip leading sign
	}
	if len(buf) != 0 && buf[0] == '0' {
		// A leading zero is OK if it's the only digit.
		return len(buf) > 1 && isDigit(rune(buf[1]))
	}
	return false
}

var self = [...]Token{LBrace, RBrace, LSquare, RSquare, Comma, Colon}

func selfDelim(ch rune) (Token, bool) {
	i := strings.IndexRune("{}[],:", ch)
	if i >= 0 {
		return self[i], true
	}
	return Invalid, false
}
