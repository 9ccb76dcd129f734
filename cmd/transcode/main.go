// transcode converts billing request documents between JSON, YAML, TOML,
// CBOR and MessagePack through the typed request schema.
//
// Usage:
//
//	transcode convert [--input request.json] [--from json] [--to yaml,toml] [--verify]
//	transcode schema [--indent]
//	transcode event
//	transcode formats
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/pflag"

	transcode "github.com/reoring/transcode"
	"github.com/reoring/transcode/billing"
	"github.com/reoring/transcode/format"
	"github.com/reoring/transcode/i18n"
	js "github.com/reoring/transcode/jsonschema"
	"github.com/reoring/transcode/pipeline"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// usageError marks failures caused by arguments or unreadable input.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(msg string, args ...any) error {
	return usageError{fmt.Errorf(msg, args...)}
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return exitUsage
	}
	var err error
	switch args[0] {
	case "convert":
		err = convertCmd(ctx, args[1:], stdout, stderr)
	case "schema":
		err = schemaCmd(args[1:], stdout, stderr)
	case "event":
		err = eventCmd(ctx, args[1:], stdout, stderr)
	case "formats":
		err = formatsCmd(args[1:], stdout, stderr)
	case "-h", "--help", "help":
		usage(stdout)
		return exitOK
	default:
		err = usagef("unknown command %q", args[0])
	}
	if err == nil {
		return exitOK
	}
	if errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	if iss, ok := transcode.AsIssues(err); ok {
		for _, it := range iss {
			fmt.Fprintf(stderr, "  %s: %s\n", it.Path, it.Message)
		}
	}
	var ue usageError
	if errors.As(err, &ue) {
		return exitUsage
	}
	return exitFailure
}

func usage(w io.Writer) {
	fmt.Fprint(w, `transcode converts billing request documents between formats.

Usage:
  transcode convert [--input request.json] [--from json] [--to yaml,toml] [--verify]
                    [--max-bytes N] [--max-depth N] [--strict-duplicates] [--strict-keys]
                    [--log-level info] [--log-format text|json] [--lang en|ja]
  transcode schema [--indent]
  transcode event
  transcode formats
`)
}

type convertFlags struct {
	input            string
	from             string
	to               []string
	verify           bool
	maxBytes         int64
	maxDepth         int
	strictDuplicates bool
	strictKeys       bool
	logLevel         string
	logFormat        string
	lang             string
}

func convertCmd(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	def := transcode.DefaultParseOpt()
	var f convertFlags
	fs := pflag.NewFlagSet("convert", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.input, "input", "request.json", "request document to read")
	fs.StringVar(&f.from, "from", "", "input format (default: from the file extension, else json)")
	fs.StringSliceVar(&f.to, "to", []string{"yaml", "toml"}, "output formats")
	fs.BoolVar(&f.verify, "verify", false, "decode every output again and compare with the input")
	fs.Int64Var(&f.maxBytes, "max-bytes", def.MaxBytes, "reject documents larger than this (0 disables)")
	fs.IntVar(&f.maxDepth, "max-depth", def.MaxDepth, "reject documents nested deeper than this (0 disables)")
	fs.BoolVar(&f.strictDuplicates, "strict-duplicates", true, "fail on duplicate keys instead of warning")
	fs.BoolVar(&f.strictKeys, "strict-keys", false, "fail on unknown keys instead of dropping them")
	fs.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "text", "log format: text or json")
	fs.StringVar(&f.lang, "lang", "en", "language of issue messages: en or ja")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return usageError{err}
	}
	if fs.NArg() > 0 {
		return usagef("unexpected argument: %s", fs.Arg(0))
	}

	logger, err := newLogger(stderr, f.logLevel, f.logFormat)
	if err != nil {
		return err
	}
	switch f.lang {
	case "en", "ja":
		i18n.SetLanguage(f.lang)
	default:
		return usagef("invalid --lang %q (want en or ja)", f.lang)
	}

	from := f.from
	if from == "" {
		from = "json"
		if t, err := format.ForPath(f.input); err == nil {
			from = t.Name()
		}
	}
	want := make(map[string]bool, len(f.to))
	for _, name := range f.to {
		t, err := format.Lookup(name)
		if err != nil {
			return usageError{err}
		}
		want[t.Name()] = true
	}

	opt := def
	opt.MaxBytes = f.maxBytes
	opt.MaxDepth = f.maxDepth
	if !f.strictDuplicates {
		opt.Strictness.OnDuplicateKey = transcode.Warn
		opt.OnWarning = func(it transcode.Issue) {
			logger.Warn("duplicate key", "path", it.Path, "hint", it.Hint)
		}
	}

	data, err := readInput(f.input, opt.MaxBytes)
	if err != nil {
		return err
	}

	var schemaOpts []billing.Option
	if f.strictKeys {
		schemaOpts = append(schemaOpts, billing.Strict())
	}
	res, err := pipeline.Run(ctx, data,
		pipeline.WithLogger(logger),
		pipeline.WithParseOpt(opt),
		pipeline.WithSource(from),
		pipeline.WithTargets(f.to...),
		pipeline.WithVerify(f.verify),
		pipeline.WithSchema(billing.RequestSchema(schemaOpts...)),
	)
	if err != nil {
		return err
	}
	logger.Debug("decoded request", "value", fmt.Sprintf("%+v", res.Decoded))

	for _, o := range res.Outputs {
		if !want[o.Format] {
			continue
		}
		text := string(o.Data)
		if o.Format == "cbor" || o.Format == "msgpack" {
			text = hex.EncodeToString(o.Data) + "\n"
		}
		fmt.Fprintf(stdout, "%s: %s", o.Format, text)
	}
	return nil
}

func readInput(path string, maxBytes int64) ([]byte, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		fh, err := os.Open(path)
		if err != nil {
			return nil, usageError{err}
		}
		defer fh.Close()
		r = fh
	}
	return transcode.ReadAll(r, maxBytes)
}

func newLogger(w io.Writer, level, logFormat string) (*slog.Logger, error) {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		return nil, usagef("invalid --log-level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lv}
	switch strings.ToLower(logFormat) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, usagef("invalid --log-format %q (want text or json)", logFormat)
	}
}

func schemaCmd(args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("schema", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	indent := fs.Bool("indent", true, "indent the JSON output")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return usageError{err}
	}
	s, err := billing.RequestSchema().JSONSchema()
	if err != nil {
		return err
	}
	doc := js.Document(s, "Request")
	var out []byte
	if *indent {
		out, err = json.MarshalIndent(doc, "", "  ")
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, string(out))
	return nil
}

func eventCmd(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		return usagef("event takes no arguments")
	}
	res, err := pipeline.EventDemo(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(stdout, string(res.JSON))
	fmt.Fprintf(stdout, "%+v\n", res.Decoded)
	return nil
}

func formatsCmd(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		return usagef("formats takes no arguments")
	}
	for _, name := range format.Names() {
		t, err := format.Lookup(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s\t%s\n", t.Name(), strings.Join(t.Extensions(), " "))
	}
	return nil
}
