// Package pipeline runs the request document flow: decode a JSON request,
// render it into the other formats and optionally check that every output
// decodes back to the same value.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	transcode "github.com/reoring/transcode"
	"github.com/reoring/transcode/billing"
	"github.com/reoring/transcode/format"
)

// Stage names the step of Run that failed.
type Stage string

const (
	StageDecode Stage = "decode"
	StageRender Stage = "render"
	StageVerify Stage = "verify"
)

// ErrRoundTrip is wrapped when an output does not decode back to the input.
var ErrRoundTrip = errors.New("round trip mismatch")

// Error reports the stage and format of a pipeline failure. Err is usually
// transcode.Issues.
type Error struct {
	Stage  Stage
	Format string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("pipeline: %s %s: %v", e.Stage, e.Format, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Output is one rendered document.
type Output struct {
	Format string
	Data   []byte
}

// Result holds the decoded request and every rendered document. YAML and
// TOML are always present; Outputs lists all renders in target order.
type Result struct {
	Decoded billing.Request
	YAML    []byte
	TOML    []byte
	Outputs []Output
}

// Option configures Run.
type Option func(*config)

type config struct {
	logger  *slog.Logger
	opt     transcode.ParseOpt
	source  string
	targets []string
	verify  bool
	schema  transcode.Schema[billing.Request]
}

// WithLogger sets the logger. slog.Default() is used otherwise.
func WithLogger(l *slog.Logger) Option { return func(c *config) { c.logger = l } }

// WithParseOpt sets the ParseOpt used for every decode.
func WithParseOpt(opt transcode.ParseOpt) Option { return func(c *config) { c.opt = opt } }

// WithSource sets the input format (default "json").
func WithSource(name string) Option { return func(c *config) { c.source = name } }

// WithTargets adds output formats after yaml and toml.
func WithTargets(names ...string) Option {
	return func(c *config) { c.targets = append(c.targets, names...) }
}

// WithVerify re-decodes every output and compares it with the input.
func WithVerify(on bool) Option { return func(c *config) { c.verify = on } }

// WithSchema replaces billing.RequestSchema().
func WithSchema(s transcode.Schema[billing.Request]) Option {
	return func(c *config) { c.schema = s }
}

func newConfig(opts []Option) *config {
	c := &config{
		opt:     transcode.DefaultParseOpt(),
		source:  "json",
		targets: []string{"yaml", "toml"},
	}
	for _, o := range opts {
		o(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.schema == nil {
		c.schema = billing.RequestSchema()
	}
	c.targets = dedupe(c.targets)
	return c
}

// Run decodes input into a billing.Request and renders it into every target
// format. Decoding is all-or-nothing; no partial Result is returned.
func Run(ctx context.Context, input []byte, opts ...Option) (Result, error) {
	c := newConfig(opts)
	log := c.logger.With("source", c.source)

	src, err := format.Lookup(c.source)
	if err != nil {
		return Result{}, &Error{Stage: StageDecode, Format: c.source, Err: err}
	}
	log.DebugContext(ctx, "decoding request", "bytes", len(input))
	req, err := format.Decode(ctx, src, c.schema, input, c.opt)
	if err != nil {
		return Result{}, &Error{Stage: StageDecode, Format: src.Name(), Err: err}
	}
	log.DebugContext(ctx, "decoded request", "type", req.Type.String(), "gifts", len(req.Gifts))

	res := Result{Decoded: req}
	for _, name := range c.targets {
		t, err := format.Lookup(name)
		if err != nil {
			return Result{}, &Error{Stage: StageRender, Format: name, Err: err}
		}
		data, err := format.Encode(ctx, t, c.schema, req)
		if err != nil {
			return Result{}, &Error{Stage: StageRender, Format: t.Name(), Err: err}
		}
		log.DebugContext(ctx, "rendered", "format", t.Name(), "bytes", len(data))
		res.Outputs = append(res.Outputs, Output{Format: t.Name(), Data: data})
		switch t.Name() {
		case "yaml":
			res.YAML = data
		case "toml":
			res.TOML = data
		}
	}

	if c.verify {
		if err := verify(ctx, c, req, res.Outputs); err != nil {
			return Result{}, err
		}
	}
	log.InfoContext(ctx, "transcoded request",
		"bytes", len(input),
		"gifts", len(req.Gifts),
		"outputs", len(res.Outputs),
		"verified", c.verify,
	)
	return res, nil
}

// Verify decodes each output with its format and checks that it equals want.
func Verify(ctx context.Context, want billing.Request, outputs []Output, opts ...Option) error {
	return verify(ctx, newConfig(opts), want, outputs)
}

func verify(ctx context.Context, c *config, want billing.Request, outputs []Output) error {
	for _, o := range outputs {
		t, err := format.Lookup(o.Format)
		if err != nil {
			return &Error{Stage: StageVerify, Format: o.Format, Err: err}
		}
		got, err := format.Decode(ctx, t, c.schema, o.Data, c.opt)
		if err != nil {
			return &Error{Stage: StageVerify, Format: o.Format, Err: err}
		}
		if !want.Equal(got) {
			return &Error{Stage: StageVerify, Format: o.Format, Err: ErrRoundTrip}
		}
		c.logger.DebugContext(ctx, "verified", "format", o.Format)
	}
	return nil
}

// Transcode converts one document between two formats through schema s.
func Transcode[T any](ctx context.Context, s transcode.Schema[T], data []byte, from, to string, opts ...transcode.ParseOpt) ([]byte, error) {
	src, err := format.Lookup(from)
	if err != nil {
		return nil, &Error{Stage: StageDecode, Format: from, Err: err}
	}
	dst, err := format.Lookup(to)
	if err != nil {
		return nil, &Error{Stage: StageRender, Format: to, Err: err}
	}
	v, err := format.Decode(ctx, src, s, data, opts...)
	if err != nil {
		return nil, &Error{Stage: StageDecode, Format: src.Name(), Err: err}
	}
	out, err := format.Encode(ctx, dst, s, v)
	if err != nil {
		return nil, &Error{Stage: StageRender, Format: dst.Name(), Err: err}
	}
	return out, nil
}

// EventResult is the outcome of EventDemo.
type EventResult struct {
	JSON    []byte
	Decoded billing.Event
}

// EventDemo encodes a sample Event as JSON, showing the "Date: " tag on the
// wire, and decodes it back.
func EventDemo(ctx context.Context) (EventResult, error) {
	jsonT, err := format.Lookup("json")
	if err != nil {
		return EventResult{}, err
	}
	s := billing.EventSchema()
	data, err := format.Encode(ctx, jsonT, s, billing.Event{Name: "Event 1", Date: "2021-06-01"})
	if err != nil {
		return EventResult{}, &Error{Stage: StageRender, Format: "json", Err: err}
	}
	ev, err := format.Decode(ctx, jsonT, s, data)
	if err != nil {
		return EventResult{}, &Error{Stage: StageDecode, Format: "json", Err: err}
	}
	return EventResult{JSON: data, Decoded: ev}, nil
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := names[:0]
	for _, n := range names {
		if t, err := format.Lookup(n); err == nil {
			n = t.Name()
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
