package dsl

import (
	"context"
	"fmt"
	"strings"

	transcode "github.com/reoring/transcode"
	js "github.com/reoring/transcode/jsonschema"
)

// Tagged is a closed enumeration whose wire form is its String tag.
type Tagged interface {
	comparable
	fmt.Stringer
}

// Enum returns a schema accepting exactly the tags of values. Any other tag
// on Parse, and any other value on Encode, fails with unknown_variant.
func Enum[T Tagged](values ...T) transcode.Schema[T] {
	s := enumSchema[T]{byTag: make(map[string]T, len(values))}
	for _, v := range values {
		tag := v.String()
		if _, dup := s.byTag[tag]; !dup {
			s.tags = append(s.tags, tag)
		}
		s.byTag[tag] = v
	}
	return s
}

type enumSchema[T Tagged] struct {
	tags  []string
	byTag map[string]T
}

func (s enumSchema[T]) Parse(ctx context.Context, v any) (T, error) {
	var zero T
	tag, ok := v.(string)
	if !ok {
		return zero, invalidType("string", v)
	}
	val, ok := s.byTag[tag]
	if !ok {
		return zero, s.unknown(tag)
	}
	return val, nil
}

func (s enumSchema[T]) Encode(ctx context.Context, v T) (any, error) {
	if err := s.ValidateValue(ctx, v); err != nil {
		return nil, err
	}
	return v.String(), nil
}

func (s enumSchema[T]) ValidateValue(ctx context.Context, v T) error {
	if got, ok := s.byTag[v.String()]; !ok || got != v {
		return s.unknown(v.String())
	}
	return nil
}

func (s enumSchema[T]) JSONSchema() (*js.Schema, error) {
	enum := make([]any, len(s.tags))
	for i, t := range s.tags {
		enum[i] = t
	}
	return &js.Schema{Type: "string", Enum: enum}, nil
}

func (s enumSchema[T]) unknown(tag string) transcode.Issues {
	it := transcode.NewIssue(transcode.CodeUnknownVariant, fmt.Sprintf("%q is not one of %s", tag, strings.Join(s.tags, ", ")), nil)
	it.Params = map[string]any{"variant": tag, "allowed": s.tags}
	return transcode.Issues{it}
}
