package dsl

import (
	"context"

	transcode "github.com/reoring/transcode"
	js "github.com/reoring/transcode/jsonschema"
)

// Codec adapts a Codec[A,B] into a Schema[B] that accepts wire A and produces domain B.
// Parse: In.Parse -> Decode -> Out.Normalize -> Out.ValidateValue -> Out.Refine
// Encode: Codec.Encode -> In.Encode.
// ValidateValue and JSONSchema delegate to Out().
func Codec[A, B any](c transcode.Codec[A, B]) transcode.Schema[B] { return codecSchema[A, B]{c: c} }

type codecSchema[A, B any] struct{ c transcode.Codec[A, B] }

func (s codecSchema[A, B]) Parse(ctx context.Context, v any) (B, error) {
	var zero B
	a, err := s.c.In().Parse(ctx, v)
	if err != nil {
		return zero, issuesOf(err)
	}
	b, err := s.c.Decode(ctx, a)
	if err != nil {
		return zero, issuesOf(err)
	}
	b, err = transcode.ApplyNormalize(ctx, b, s.c.Out())
	if err != nil {
		return zero, issuesOf(err)
	}
	if err := s.c.Out().ValidateValue(ctx, b); err != nil {
		return zero, issuesOf(err)
	}
	if err := transcode.ApplyRefine(ctx, b, s.c.Out()); err != nil {
		return zero, issuesOf(err)
	}
	return b, nil
}

func (s codecSchema[A, B]) Encode(ctx context.Context, v B) (any, error) {
	a, err := s.c.Encode(ctx, v)
	if err != nil {
		return nil, issuesOf(err)
	}
	out, err := s.c.In().Encode(ctx, a)
	if err != nil {
		return nil, issuesOf(err)
	}
	return out, nil
}

func (s codecSchema[A, B]) ValidateValue(ctx context.Context, v B) error {
	return s.c.Out().ValidateValue(ctx, v)
}

func (s codecSchema[A, B]) JSONSchema() (*js.Schema, error) { return s.c.Out().JSONSchema() }
