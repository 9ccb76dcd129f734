package dsl

import (
	"context"
	"fmt"
	"reflect"

	transcode "github.com/reoring/transcode"
	js "github.com/reoring/transcode/jsonschema"
)

// AnyAdapter adapts Schema[T] to an any-typed field entry for the builders.
type AnyAdapter struct {
	parse         func(context.Context, any) (any, error)
	encode        func(context.Context, any) (any, error)
	validateValue func(context.Context, any) error
	jsonSchema    func() (*js.Schema, error)
	typ           reflect.Type
}

// SchemaOf adapts a Schema[T] into an AnyAdapter to pass into Field.
func SchemaOf[T any](s transcode.Schema[T]) AnyAdapter {
	return AnyAdapter{
		parse: func(ctx context.Context, v any) (any, error) { return s.Parse(ctx, v) },
		encode: func(ctx context.Context, v any) (any, error) {
			tv, ok := v.(T)
			if !ok {
				return nil, typeMismatch(v)
			}
			return s.Encode(ctx, tv)
		},
		validateValue: func(ctx context.Context, v any) error {
			tv, ok := v.(T)
			if !ok {
				return typeMismatch(v)
			}
			return s.ValidateValue(ctx, tv)
		},
		jsonSchema: s.JSONSchema,
		typ:        reflect.TypeOf((*T)(nil)).Elem(),
	}
}

func typeMismatch(v any) transcode.Issues {
	return transcode.Issues{transcode.NewIssue(transcode.CodeInvalidType, fmt.Sprintf("unexpected Go value %T", v), nil)}
}

// issuesOf converts err into Issues, wrapping foreign errors as parse_error.
func issuesOf(err error) transcode.Issues { return transcode.ToIssues("/", err) }
