// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Program jstream reads a stream of concatenated JSON values from files or
// standard input, and writes each value on its own line.
//
// Usage:
//
//	jstream [flags] [file ...]
//
// With no files, or with "-", jstream reads standard input.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/creachadair/jstream"
	"github.com/creachadair/jstream/decoders"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// config carries the settings for a run of the program.
type config struct {
	ChunkSize    int
	Decoder      string
	Lenient      bool
	MaxAttempts  int
	MaxValueSize int
	Indent       int
	Raw          bool
	Offsets      bool
	Colors       *colorizer
	Logger       *slog.Logger
}

func main() {
	// Do not handle SIGPIPE, we'll do it ourselves (see error handling below).
	signal.Ignore(syscall.SIGPIPE)

	var cfg config
	var verbose bool
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		cfg.Colors = &defaultColors
	}
	flag.BoolFunc("color", "force using colors", func(string) error {
		cfg.Colors = &defaultColors
		return nil
	})
	flag.BoolFunc("nocolor", "disable colors", func(string) error {
		cfg.Colors = nil
		return nil
	})
	flag.IntVar(&cfg.ChunkSize, "chunk", jstream.DefaultChunkSize, "read chunk size in bytes")
	flag.StringVar(&cfg.Decoder, "decoder", "std",
		"value decoder ("+strings.Join(decoders.Names(), ", ")+")")
	flag.BoolVar(&cfg.Lenient, "lenient", false, "treat every decoding failure as incomplete input")
	flag.IntVar(&cfg.MaxAttempts, "max-attempts", 0, "give up after this many failed decode attempts (0 = no limit)")
	flag.IntVar(&cfg.MaxValueSize, "max-size", 0, "maximum size in bytes of a pending value (0 = no limit)")
	flag.IntVar(&cfg.Indent, "indent", -1, "indent step for output (negative means one value per line)")
	flag.BoolVar(&cfg.Raw, "raw", false, "write the source text of each value rather than re-encoding it")
	flag.BoolVar(&cfg.Offsets, "offsets", false, "prefix each value with its byte span in the input")
	flag.BoolVar(&verbose, "v", false, "log debug traces to stderr")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [file ...]\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if verbose {
		cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	var stdout io.Writer = os.Stdout
	if cfg.Colors != nil {
		stdout = colorable.NewColorableStdout()
	}
	out := bufio.NewWriter(stdout)

	err := runFiles(cfg, flag.Args(), out)
	if ferr := out.Flush(); err == nil {
		err = ferr
	}
	if err != nil {
		if errors.Is(err, syscall.EPIPE) {
			// stdout is a pipe and something closed it (e.g. 'head' or 'less').
			// In this case we don't want to complain.
			return
		}
		fatalError("jstream: %v\n", err)
	}
}

// runFiles processes each named file in order, or standard input if there
// are none. The caller owns the files, so they are closed here rather than by
// the reader.
func runFiles(cfg config, names []string, out io.Writer) error {
	if len(names) == 0 {
		names = []string{"-"}
	}
	for _, name := range names {
		if name == "-" {
			if err := run(cfg, os.Stdin, out); err != nil {
				return fmt.Errorf("<stdin>: %w", err)
			}
			continue
		}
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		err = run(cfg, f, out)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// run copies the values from in to out according to cfg.
func run(cfg config, in io.Reader, out io.Writer) error {
	dec, err := decoders.ByName(cfg.Decoder)
	if err != nil {
		return err
	}
	if cfg.Lenient {
		dec = jstream.Lenient(dec)
	}
	if cfg.ChunkSize <= 0 {
		return fmt.Errorf("invalid chunk size %d", cfg.ChunkSize)
	}
	rd := jstream.NewReader(in, &jstream.Options{
		ChunkSize:    cfg.ChunkSize,
		Decoder:      dec,
		MaxAttempts:  cfg.MaxAttempts,
		MaxValueSize: cfg.MaxValueSize,
		Logger:       cfg.Logger,
	})
	for {
		if err := rd.Next(); err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		text, err := encode(cfg, rd)
		if err != nil {
			return err
		}
		if cfg.Offsets {
			cfg.Colors.write(out, cfg.Colors.offset(), rd.Span().String()+"\t")
		}
		cfg.Colors.writeJSON(out, text)
		if _, err := io.WriteString(out, "\n"); err != nil {
			return err
		}
	}
}

func encode(cfg config, rd *jstream.Reader) ([]byte, error) {
	if cfg.Raw {
		return rd.Text(), nil
	} else if cfg.Indent < 0 {
		return json.Marshal(rd.Value())
	}
	return json.MarshalIndent(rd.Value(), "", strings.Repeat(" ", cfg.Indent))
}

func fatalError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, msg, args...)
	os.Exit(1)
}
