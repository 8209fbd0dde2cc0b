// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package main

import (
	"io"

	"github.com/creachadair/jstream"
)

// Some color ANSI codes
var (
	reset = "\033[0m"

	yellow     = "\033[33m"
	green      = "\033[32m"
	white      = "\033[37m"
	dimWhite   = "\033[37;2m"
	dimCyan    = "\033[36;2m"
	brightBlue = "\033[34;1m"
)

// A colorizer holds the ANSI codes used to highlight output. A nil
// *colorizer writes plain text.
type colorizer struct {
	Key, String, Number, Literal, Offset string
	Reset                                string
}

var defaultColors = colorizer{
	Key:     brightBlue,
	String:  green,
	Number:  yellow,
	Literal: white,
	Offset:  dimCyan,
	Reset:   reset,
}

func (c *colorizer) offset() string {
	if c == nil {
		return ""
	}
	return c.Offset
}

// write writes text to w wrapped in the given color code.
func (c *colorizer) write(w io.Writer, code, text string) {
	if c == nil || code == "" {
		io.WriteString(w, text)
		return
	}
	io.WriteString(w, code)
	io.WriteString(w, text)
	io.WriteString(w, c.Reset)
}

// writeJSON writes the JSON text to w, highlighting its tokens.
// Text that does not scan is written as-is.
func (c *colorizer) writeJSON(w io.Writer, text []byte) {
	if c == nil {
		w.Write(text)
		return
	}
	type token struct {
		tok      jstream.Token
		pos, end int
	}
	var toks []token
	s := jstream.NewScanner(text)
	s.AllowComments(true)
	for s.Next() == nil {
		sp := s.Span()
		toks = append(toks, token{s.Token(), int(sp.Pos), int(sp.End)})
	}
	if s.Err() != io.EOF {
		w.Write(text)
		return
	}

	last := 0
	for i, t := range toks {
		w.Write(text[last:t.pos]) // whitespace between tokens
		var code string
		switch t.tok {
		case jstream.String:
			if i+1 < len(toks) && toks[i+1].tok == jstream.Colon {
				code = c.Key
			} else {
				code = c.String
			}
		case jstream.Integer, jstream.Number:
			code = c.Number
		case jstream.True, jstream.False, jstream.Null:
			code = c.Literal
		case jstream.LineComment, jstream.BlockComment:
			code = dimWhite
		}
		c.write(w, code, string(text[t.pos:t.end]))
		last = t.end
	}
	w.Write(text[last:])
}
