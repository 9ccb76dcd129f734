package codec

import (
	"context"

	transcode "github.com/reoring/transcode"
)

// Identity returns a Codec[T,T] that only validates. In() and Out() are s.
func Identity[T any](s transcode.Schema[T]) transcode.Codec[T, T] {
	return &identityCodec[T]{s: s}
}

type identityCodec[T any] struct {
	s transcode.Schema[T]
}

func (c *identityCodec[T]) In() transcode.Schema[T]  { return c.s }
func (c *identityCodec[T]) Out() transcode.Schema[T] { return c.s }

func (c *identityCodec[T]) Decode(ctx context.Context, a T) (T, error) {
	if err := c.s.ValidateValue(ctx, a); err != nil {
		var zero T
		return zero, err
	}
	return a, nil
}

func (c *identityCodec[T]) Encode(ctx context.Context, b T) (T, error) {
	return c.Decode(ctx, b)
}
