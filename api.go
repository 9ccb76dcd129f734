package transcode

import (
	"context"

	js "github.com/reoring/transcode/jsonschema"
)

// Schema maps between the format-neutral value tree (see package tree) and a
// Go value T.
type Schema[T any] interface {
	// Parse transforms a tree value into T (Coerce -> Normalize -> Validate ->
	// Refine). It returns Issues when the value does not conform.
	Parse(ctx context.Context, v any) (T, error)

	// Encode transforms T back into a tree value. Field codecs run in the
	// encode direction.
	Encode(ctx context.Context, v T) (any, error)

	// ValidateValue verifies a value already typed as T without any conversion.
	ValidateValue(ctx context.Context, v T) error

	// JSONSchema projects the schema into a JSON Schema representation.
	JSONSchema() (*js.Schema, error)
}

// Codec performs bidirectional transformation and validation between the wire
// representation A and the domain representation B.
type Codec[A, B any] interface {
	In() Schema[A]                              // Wire schema (input side).
	Out() Schema[B]                             // Domain schema (output side).
	Decode(ctx context.Context, a A) (B, error) // A (In) -> B (convert) -> Out.ValidateValue.
	Encode(ctx context.Context, b B) (A, error) // Out.ValidateValue -> A -> In.ValidateValue.
}

// Normalizer provides an optional hook to normalize typed values during the
// Normalize phase of parsing. If it is not implemented, the phase is skipped.
type Normalizer[T any] interface {
	Normalize(ctx context.Context, v T) (T, error)
}

// Refiner provides an optional hook at the end of parsing to perform
// cross-field validation. If it is not implemented, the phase is skipped.
type Refiner[T any] interface {
	Refine(ctx context.Context, v T) error
}

// ApplyNormalize calls Normalizer[T] if implemented.
func ApplyNormalize[T any](ctx context.Context, v T, s Schema[T]) (T, error) {
	if n, ok := any(s).(Normalizer[T]); ok {
		return n.Normalize(ctx, v)
	}
	return v, nil
}

// ApplyRefine calls Refiner[T] if implemented.
func ApplyRefine[T any](ctx context.Context, v T, s Schema[T]) error {
	if r, ok := any(s).(Refiner[T]); ok {
		return r.Refine(ctx, v)
	}
	return nil
}

// SafeParse parses v into T, returning (zero, false) on validation error.
func SafeParse[T any](ctx context.Context, s Schema[T], v any) (T, bool) {
	val, err := s.Parse(ctx, v)
	if err != nil {
		var zero T
		return zero, false
	}
	return val, true
}

type contextKey int

const (
	_ctxKeyFailFast contextKey = iota
	_ctxKeyParseOpt
)

// WithFailFast returns a child context that marks fail-fast parsing behavior.
// ParseFrom sets it from ParseOpt and schema implementations consume it.
func WithFailFast(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, _ctxKeyFailFast, enabled)
}

// IsFailFast reports whether the current parse should stop on the first issue.
func IsFailFast(ctx context.Context) bool {
	b, _ := ctx.Value(_ctxKeyFailFast).(bool)
	return b
}

// WithParseOpt returns a child context carrying opt for transcoders that
// parse raw bytes. FailFast is applied as well.
func WithParseOpt(ctx context.Context, opt ParseOpt) context.Context {
	ctx = context.WithValue(ctx, _ctxKeyParseOpt, opt)
	if opt.FailFast {
		ctx = WithFailFast(ctx, true)
	}
	return ctx
}

// ParseOptFromContext returns the ParseOpt stored by WithParseOpt.
func ParseOptFromContext(ctx context.Context) (ParseOpt, bool) {
	opt, ok := ctx.Value(_ctxKeyParseOpt).(ParseOpt)
	return opt, ok
}
