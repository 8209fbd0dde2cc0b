// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jstream_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"testing"

	"github.com/creachadair/jstream"
	"github.com/creachadair/jstream/decoders"
)

// benchInput returns a stream of n small objects separated by newlines.
func benchInput(n int) []byte {
	var buf bytes.Buffer
	for i := range n {
		fmt.Fprintf(&buf, `{"id":%d,"name":"item-%d","tags":["a","b"],"score":%d.5}`+"\n", i, i, i%100)
	}
	return buf.Bytes()
}

func BenchmarkReader(b *testing.B) {
	input := benchInput(2000)
	b.Logf("Benchmark input: %d bytes", len(input))

	b.Run("Decoder", func(b *testing.B) {
		for b.Loop() {
			dec := json.NewDecoder(bytes.NewReader(input))
			for {
				var v any
				if err := dec.Decode(&v); err == io.EOF {
					break
				} else if err != nil {
					b.Fatalf("Unexpected error: %v", err)
				}
			}
		}
	})

	for _, name := range decoders.Names() {
		for _, chunk := range []int{256, jstream.DefaultChunkSize, 16384} {
			dec, err := decoders.ByName(name)
			if err != nil {
				b.Fatalf("ByName(%q): %v", name, err)
			}
			b.Run(fmt.Sprintf("%s/%d", name, chunk), func(b *testing.B) {
				for b.Loop() {
					rd := jstream.NewReader(bytes.NewReader(input), &jstream.Options{
						ChunkSize: chunk,
						Decoder:   dec,
					})
					for {
						err := rd.Next()
						if err == io.EOF {
							break
						} else if err != nil {
							b.Fatalf("Unexpected error: %v", err)
						}
					}
				}
			})
		}
	}
}

func BenchmarkFramer(b *testing.B) {
	input := benchInput(2000)
	for b.Loop() {
		f := jstream.NewFramer(input)
		for {
			_, err := f.Next()
			if err == io.EOF {
				break
			} else if err != nil {
				b.Fatalf("Unexpected error: %v", err)
			}
		}
	}
}
