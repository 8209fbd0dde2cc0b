// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package decoders provides jstream.Decoder implementations backed by
// third-party JSON libraries.
//
// Each decoder locates the next value with a jstream.Framer and decodes
// exactly that text, so all of them share the framer's treatment of
// truncated and malformed input and differ only in how a complete value is
// turned into Go data. Numbers decode as float64, objects as map[string]any,
// and arrays as []any, matching the standard library.
package decoders

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	gojson "github.com/goccy/go-json"
	jsoniter "github.com/json-iterator/go"
	segjson "github.com/segmentio/encoding/json"
	"github.com/tailscale/hujson"
	"github.com/tidwall/gjson"

	"github.com/creachadair/jstream"
)

// Std returns a decoder using the standard library encoding/json package. If
// useNumber is true, numbers decode as json.Number.
func Std(useNumber bool) jstream.Decoder { return jstream.StdDecoder{UseNumber: useNumber} }

// Goccy returns a decoder using github.com/goccy/go-json.
func Goccy() jstream.Decoder { return jstream.Framed{Unmarshal: gojson.Unmarshal} }

// Jsoniter returns a decoder using github.com/json-iterator/go, configured to
// be compatible with the standard library.
func Jsoniter() jstream.Decoder {
	return jstream.Framed{Unmarshal: jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal}
}

// Segmentio returns a decoder using github.com/segmentio/encoding/json.
func Segmentio() jstream.Decoder { return jstream.Framed{Unmarshal: segjson.Unmarshal} }

// GJSON returns a decoder using github.com/tidwall/gjson.
func GJSON() jstream.Decoder { return jstream.Framed{Unmarshal: gjsonUnmarshal} }

func gjsonUnmarshal(data []byte, v any) error {
	p, ok := v.(*any)
	if !ok {
		return fmt.Errorf("gjson: cannot decode into %T", v)
	} else if !gjson.ValidBytes(data) {
		return errors.New("gjson: invalid JSON value")
	}
	*p = gjson.ParseBytes(data).Value()
	return nil
}

// HuJSON returns a decoder for JWCC ("JSON with commas and comments") using
// github.com/tailscale/hujson. Comments may appear between and within values,
// and objects and arrays may have trailing commas.
func HuJSON() jstream.Decoder {
	return jstream.Framed{
		Unmarshal:           hujsonUnmarshal,
		AllowComments:       true,
		AllowTrailingCommas: true,
	}
}

func hujsonUnmarshal(data []byte, v any) error {
	// Standardize rewrites its input, which belongs to the caller.
	std, err := hujson.Standardize(bytes.Clone(data))
	if err != nil {
		return err
	}
	return json.Unmarshal(std, v)
}

var registry = map[string]func() jstream.Decoder{
	"std":       func() jstream.Decoder { return Std(false) },
	"number":    func() jstream.Decoder { return Std(true) },
	"goccy":     Goccy,
	"jsoniter":  Jsoniter,
	"segmentio": Segmentio,
	"gjson":     GJSON,
	"jwcc":      HuJSON,
}

// Names returns the names accepted by ByName, in sorted order.
func Names() []string { return slices.Sorted(maps.Keys(registry)) }

// ByName returns the decoder with the given name. See Names.
func ByName(name string) (jstream.Decoder, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown decoder %q (known: %v)", name, Names())
	}
	return f(), nil
}
