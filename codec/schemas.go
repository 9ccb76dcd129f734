package codec

import (
	"context"

	transcode "github.com/reoring/transcode"
	"github.com/reoring/transcode/i18n"
	js "github.com/reoring/transcode/jsonschema"
)

// valueSchema is the In/Out schema shape shared by the text codecs: it
// accepts values already of type T and runs an optional check.
type valueSchema[T any] struct {
	code     string // issue code used when check fails
	check    func(T) string
	jsSchema js.Schema
}

func (s valueSchema[T]) Parse(ctx context.Context, v any) (T, error) {
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, transcode.Issues{{Path: "/", Code: transcode.CodeInvalidType, Message: i18n.T(transcode.CodeInvalidType, nil), Hint: "expected " + s.expected()}}
	}
	if err := s.ValidateValue(ctx, t); err != nil {
		var zero T
		return zero, err
	}
	return t, nil
}

func (s valueSchema[T]) Encode(ctx context.Context, v T) (any, error) {
	if err := s.ValidateValue(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s valueSchema[T]) ValidateValue(ctx context.Context, v T) error {
	if s.check == nil {
		return nil
	}
	if hint := s.check(v); hint != "" {
		return transcode.Issues{{Path: "/", Code: s.code, Message: i18n.T(s.code, nil), Hint: hint}}
	}
	return nil
}

func (s valueSchema[T]) JSONSchema() (*js.Schema, error) {
	out := s.jsSchema
	return &out, nil
}

func (s valueSchema[T]) expected() string {
	if s.jsSchema.Format != "" {
		return s.jsSchema.Format
	}
	if s.jsSchema.Type != "" {
		return s.jsSchema.Type
	}
	return "value"
}

// stringSchema is the wire schema of every text codec.
func stringSchema() transcode.Schema[string] {
	return valueSchema[string]{jsSchema: js.Schema{Type: "string"}}
}

// textCodec implements Codec[string, B] from a parse/format pair.
// parse must return transcode.Issues on failure.
type textCodec[B any] struct {
	in     transcode.Schema[string]
	out    transcode.Schema[B]
	parse  func(string) (B, error)
	format func(B) string
	// encodeCheck rejects domain values that have no wire form. Decode skips it.
	encodeCheck func(B) error
}

func (c *textCodec[B]) In() transcode.Schema[string] { return c.in }
func (c *textCodec[B]) Out() transcode.Schema[B]     { return c.out }

func (c *textCodec[B]) Decode(ctx context.Context, a string) (B, error) {
	// wire(string) -> domain(B) -> Out.ValidateValue
	b, err := c.parse(a)
	if err != nil {
		var zero B
		return zero, err
	}
	if err := c.out.ValidateValue(ctx, b); err != nil {
		var zero B
		return zero, err
	}
	return b, nil
}

func (c *textCodec[B]) Encode(ctx context.Context, b B) (string, error) {
	// Validate using Out, convert to wire(string), then re-validate via In
	if err := c.out.ValidateValue(ctx, b); err != nil {
		return "", err
	}
	if c.encodeCheck != nil {
		if err := c.encodeCheck(b); err != nil {
			return "", err
		}
	}
	s := c.format(b)
	if err := c.in.ValidateValue(ctx, s); err != nil {
		return "", err
	}
	return s, nil
}

func fail(code, hint string, cause error) transcode.Issues {
	return transcode.Issues{{Path: "/", Code: code, Message: i18n.T(code, nil), Hint: hint, Cause: cause}}
}
