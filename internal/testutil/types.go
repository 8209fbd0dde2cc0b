// Package testutil defines support code for unit tests.
package testutil

import "io"

// A ChunkReader is an io.Reader that returns at most N bytes of its input per
// call to Read, and counts the calls. If N ≤ 0, each read returns as much as
// the caller requests.
type ChunkReader struct {
	N     int // maximum bytes per read
	Reads int // number of calls to Read so far

	data []byte
}

// NewChunkReader constructs a ChunkReader over the given input.
func NewChunkReader(input string, n int) *ChunkReader {
	return &ChunkReader{N: n, data: []byte(input)}
}

// Read satisfies io.Reader.
func (c *ChunkReader) Read(p []byte) (int, error) {
	c.Reads++
	if len(c.data) == 0 {
		return 0, io.EOF
	}
	if c.N > 0 && len(p) > c.N {
		p = p[:c.N]
	}
	n := copy(p, c.data)
	c.data = c.data[n:]
	return n, nil
}

// Remaining reports the number of input bytes not yet read.
func (c *ChunkReader) Remaining() int { return len(c.data) }

// An EndlessReader is an io.Reader that delivers its input and then repeats
// Fill forever, like a live pipe that never closes.
type EndlessReader struct {
	Fill  string
	Reads int

	data []byte
}

// NewEndlessReader constructs an EndlessReader over the given input.
func NewEndlessReader(input, fill string) *EndlessReader {
	return &EndlessReader{Fill: fill, data: []byte(input)}
}

// Read satisfies io.Reader.
func (e *EndlessReader) Read(p []byte) (int, error) {
	e.Reads++
	if len(e.data) == 0 {
		e.data = []byte(e.Fill)
	}
	n := copy(p, e.data)
	e.data = e.data[n:]
	return n, nil
}

// StallReader is an io.Reader that always reports no data and no error.
type StallReader struct{}

// Read satisfies io.Reader.
func (StallReader) Read([]byte) (int, error) { return 0, nil }
