package dsl

import (
	"context"
	"fmt"
	"math"

	transcode "github.com/reoring/transcode"
	js "github.com/reoring/transcode/jsonschema"
	"github.com/reoring/transcode/tree"
)

// String returns the string schema.
func String() transcode.Schema[string] { return stringSchema{} }

// Bool returns the bool schema.
func Bool() transcode.Schema[bool] { return boolSchema{} }

// Uint32 returns the schema of an unsigned 32-bit integer. Negative values
// fail with too_small, values above math.MaxUint32 with overflow, and
// non-integer numbers with invalid_type.
func Uint32() transcode.Schema[uint32] { return uint32Schema{} }

// StringOf returns an AnyAdapter for a string projected to domain type T.
func StringOf[T ~string]() AnyAdapter {
	return SchemaOf[T](projected[string, T]{
		base: stringSchema{},
		to:   func(s string) T { return T(s) },
		from: func(t T) string { return string(t) },
	})
}

// BoolOf returns an AnyAdapter for a bool projected to domain type T.
func BoolOf[T ~bool]() AnyAdapter {
	return SchemaOf[T](projected[bool, T]{
		base: boolSchema{},
		to:   func(b bool) T { return T(b) },
		from: func(t T) bool { return bool(t) },
	})
}

// Uint32Of returns an AnyAdapter for a uint32 projected to domain type T.
func Uint32Of[T ~uint32]() AnyAdapter {
	return SchemaOf[T](projected[uint32, T]{
		base: uint32Schema{},
		to:   func(n uint32) T { return T(n) },
		from: func(t T) uint32 { return uint32(t) },
	})
}

type stringSchema struct{}

func (stringSchema) Parse(ctx context.Context, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", invalidType("string", v)
	}
	return s, nil
}

func (stringSchema) Encode(ctx context.Context, v string) (any, error) { return v, nil }
func (stringSchema) ValidateValue(ctx context.Context, v string) error { return nil }
func (stringSchema) JSONSchema() (*js.Schema, error)                   { return &js.Schema{Type: "string"}, nil }

type boolSchema struct{}

func (boolSchema) Parse(ctx context.Context, v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, invalidType("boolean", v)
	}
	return b, nil
}

func (boolSchema) Encode(ctx context.Context, v bool) (any, error) { return v, nil }
func (boolSchema) ValidateValue(ctx context.Context, v bool) error { return nil }
func (boolSchema) JSONSchema() (*js.Schema, error)                 { return &js.Schema{Type: "boolean"}, nil }

type uint32Schema struct{}

func (uint32Schema) Parse(ctx context.Context, v any) (uint32, error) {
	switch n := v.(type) {
	case int64:
		return checkUint32(n < 0, n > math.MaxUint32, uint64(n))
	case int:
		return checkUint32(n < 0, int64(n) > math.MaxUint32, uint64(n))
	case uint64:
		return checkUint32(false, n > math.MaxUint32, n)
	case uint32:
		return n, nil
	default:
		return 0, invalidType("integer", v)
	}
}

func checkUint32(neg, big bool, n uint64) (uint32, error) {
	switch {
	case neg:
		return 0, transcode.Issues{transcode.NewIssue(transcode.CodeTooSmall, "must be >= 0", nil)}
	case big:
		return 0, transcode.Issues{transcode.NewIssue(transcode.CodeOverflow, fmt.Sprintf("%d exceeds %d", n, uint64(math.MaxUint32)), nil)}
	}
	return uint32(n), nil
}

func (uint32Schema) Encode(ctx context.Context, v uint32) (any, error) { return int64(v), nil }
func (uint32Schema) ValidateValue(ctx context.Context, v uint32) error { return nil }
func (uint32Schema) JSONSchema() (*js.Schema, error) {
	return &js.Schema{Type: "integer", Minimum: js.Float(0), Maximum: js.Float(math.MaxUint32)}, nil
}

// projected lifts a base schema onto a named type sharing its underlying type.
type projected[U, T any] struct {
	base transcode.Schema[U]
	to   func(U) T
	from func(T) U
}

func (p projected[U, T]) Parse(ctx context.Context, v any) (T, error) {
	u, err := p.base.Parse(ctx, v)
	if err != nil {
		var zero T
		return zero, err
	}
	return p.to(u), nil
}

func (p projected[U, T]) Encode(ctx context.Context, v T) (any, error) {
	return p.base.Encode(ctx, p.from(v))
}

func (p projected[U, T]) ValidateValue(ctx context.Context, v T) error {
	return p.base.ValidateValue(ctx, p.from(v))
}

func (p projected[U, T]) JSONSchema() (*js.Schema, error) { return p.base.JSONSchema() }

func invalidType(want string, got any) transcode.Issues {
	return transcode.Issues{transcode.NewIssue(transcode.CodeInvalidType, fmt.Sprintf("expected %s, got %s", want, kindOf(got)), nil)}
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int64, uint64, int:
		return "integer"
	case float64:
		return "number"
	case []any:
		return "array"
	case *tree.Record, map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
