// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package decoders_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/creachadair/jstream"
	"github.com/creachadair/jstream/decoders"
	"github.com/creachadair/jstream/internal/testutil"
	"github.com/google/go-cmp/cmp"
)

func readAll(t *testing.T, input string, chunk int, dec jstream.Decoder) []any {
	t.Helper()
	vs, err := jstream.ReadAll(strings.NewReader(input), &jstream.Options{
		ChunkSize: chunk,
		Decoder:   dec,
	})
	if err != nil {
		t.Fatalf("ReadAll %#q (chunk %d): %v", input, chunk, err)
	}
	return vs
}

func TestDecodersAgree(t *testing.T) {
	for _, name := range decoders.Names() {
		if name == "number" {
			continue // numbers decode as json.Number, checked separately
		}
		t.Run(name, func(t *testing.T) {
			dec, err := decoders.ByName(name)
			if err != nil {
				t.Fatalf("ByName(%q): %v", name, err)
			}
			for _, input := range testutil.Inputs {
				want := readAll(t, input, 0, jstream.StdDecoder{})
				for _, chunk := range []int{1, 7, 2048} {
					got := readAll(t, input, chunk, dec)
					if diff := cmp.Diff(want, got); diff != "" {
						t.Errorf("Input: %#q, chunk %d\nValues: (-want, +got)\n%s", input, chunk, diff)
					}
				}
			}
		})
	}
}

func TestNumber(t *testing.T) {
	dec, err := decoders.ByName("number")
	if err != nil {
		t.Fatalf("ByName: %v", err)
	}
	got := readAll(t, `[1, 2.50] 3`, 2, dec)
	want := []any{[]any{json.Number("1"), json.Number("2.50")}, json.Number("3")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Values: (-want, +got)\n%s", diff)
	}
}

func TestHuJSON(t *testing.T) {
	const input = `// A stream of JWCC documents.
{
  "name": "first", // the first one
  "tags": ["a", "b",],
}
/* and then */ [1, 2, /* three */ 3,]
"last" // trailing comment`

	want := []any{
		map[string]any{"name": "first", "tags": []any{"a", "b"}},
		[]any{1.0, 2.0, 3.0},
		"last",
	}
	for _, chunk := range []int{1, 4, 16, 2048} {
		got := readAll(t, input, chunk, decoders.HuJSON())
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Chunk %d: values (-want, +got)\n%s", chunk, diff)
		}
	}

	// An unterminated block comment at the end of the stream is truncated input.
	_, err := jstream.ReadAll(strings.NewReader(`1 /* not closed`), &jstream.Options{Decoder: decoders.HuJSON()})
	if !errors.Is(err, jstream.ErrIncomplete) {
		t.Errorf("Unclosed comment: got %v, want %v", err, jstream.ErrIncomplete)
	}
}

func TestMalformed(t *testing.T) {
	for _, name := range decoders.Names() {
		dec, err := decoders.ByName(name)
		if err != nil {
			t.Fatalf("ByName(%q): %v", name, err)
		}
		vs, err := jstream.ReadAll(strings.NewReader(`{"a":1} {"b" 2} [3]`), &jstream.Options{
			ChunkSize: 3,
			Decoder:   dec,
		})
		var derr *jstream.DecodeError
		if !errors.As(err, &derr) || errors.Is(err, jstream.ErrIncomplete) {
			t.Errorf("Decoder %q: got %v, want malformed-input error", name, err)
		} else if derr.Offset != 8 {
			t.Errorf("Decoder %q: error offset %d, want 8", name, derr.Offset)
		}
		if len(vs) != 1 {
			t.Errorf("Decoder %q: got %d values, want 1", name, len(vs))
		}
	}
}

func TestByNameUnknown(t *testing.T) {
	if dec, err := decoders.ByName("nonesuch"); err == nil {
		t.Errorf("ByName(nonesuch): got %v, want error", dec)
	}
}
