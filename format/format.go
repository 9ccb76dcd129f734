// Package format ties the value tree to concrete serialization formats.
//
// A Transcoder converts bytes to and from the format-neutral tree of package
// tree; a transcode.Schema converts that tree to and from a typed value.
// Decode and Encode chain the two.
package format

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	transcode "github.com/reoring/transcode"
	"github.com/reoring/transcode/format/cborfmt"
	"github.com/reoring/transcode/format/jsonfmt"
	"github.com/reoring/transcode/format/msgpackfmt"
	"github.com/reoring/transcode/format/tomlfmt"
	"github.com/reoring/transcode/format/yamlfmt"
	"github.com/reoring/transcode/tree"
)

// Transcoder converts between raw bytes of one format and the value tree.
type Transcoder interface {
	Name() string
	Extensions() []string
	// Parse reads one document. The ParseOpt stored in ctx, if any, applies.
	Parse(ctx context.Context, data []byte) (any, error)
	// Render writes one document. Failures are render_error Issues.
	Render(ctx context.Context, v any) ([]byte, error)
}

// ErrUnknownFormat is returned by Lookup and ForPath for unregistered formats.
var ErrUnknownFormat = errors.New("unknown format")

var builtin = []Transcoder{
	jsonfmt.New(),
	yamlfmt.New(),
	tomlfmt.New(),
	cborfmt.New(),
	msgpackfmt.New(),
}

// Lookup returns the transcoder registered under name (case-insensitive).
// "yml" is accepted for yaml.
func Lookup(name string) (Transcoder, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, t := range builtin {
		if t.Name() == n {
			return t, nil
		}
		for _, ext := range t.Extensions() {
			if "."+n == ext {
				return t, nil
			}
		}
	}
	return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownFormat, name, strings.Join(Names(), ", "))
}

// ForPath picks a transcoder from the extension of path.
func ForPath(path string) (Transcoder, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, t := range builtin {
		for _, e := range t.Extensions() {
			if e == ext {
				return t, nil
			}
		}
	}
	return nil, fmt.Errorf("%w for %q", ErrUnknownFormat, path)
}

// Names lists the registered transcoders in registration order.
func Names() []string {
	out := make([]string, len(builtin))
	for i, t := range builtin {
		out[i] = t.Name()
	}
	return out
}

// Decode parses data with t and maps the tree through s. MaxBytes is
// checked before parsing and MaxDepth after. Nothing is returned on failure.
func Decode[T any](ctx context.Context, t Transcoder, s transcode.Schema[T], data []byte, opts ...transcode.ParseOpt) (T, error) {
	var zero T
	opt := transcode.DefaultParseOpt()
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if err := transcode.CheckSize(data, opt.MaxBytes); err != nil {
		return zero, err
	}
	ctx = transcode.WithParseOpt(ctx, opt)
	v, err := t.Parse(ctx, data)
	if err != nil {
		return zero, err
	}
	if opt.MaxDepth > 0 && tree.Depth(v) > opt.MaxDepth {
		return zero, transcode.Issues{transcode.NewIssue(transcode.CodeParseError, fmt.Sprintf("%s: max depth %d exceeded", t.Name(), opt.MaxDepth), nil)}
	}
	return s.Parse(ctx, v)
}

// Encode maps v through s and renders the tree with t.
func Encode[T any](ctx context.Context, t Transcoder, s transcode.Schema[T], v T) ([]byte, error) {
	w, err := s.Encode(ctx, v)
	if err != nil {
		return nil, err
	}
	return t.Render(ctx, w)
}

// RoundTrip encodes v with t and decodes the result again.
func RoundTrip[T any](ctx context.Context, t Transcoder, s transcode.Schema[T], v T, opts ...transcode.ParseOpt) (T, error) {
	data, err := Encode(ctx, t, s, v)
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode(ctx, t, s, data, opts...)
}
