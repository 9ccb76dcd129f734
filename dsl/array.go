package dsl

import (
	"context"

	transcode "github.com/reoring/transcode"
	js "github.com/reoring/transcode/jsonschema"
)

// Array returns a schema for an ordered sequence whose elements follow elem.
// Element issues are rebased under their index ("/3/price").
func Array[E any](elem transcode.Schema[E]) transcode.Schema[[]E] {
	return arraySchema[E]{elem: elem}
}

type arraySchema[E any] struct {
	elem transcode.Schema[E]
}

func (s arraySchema[E]) Parse(ctx context.Context, v any) ([]E, error) {
	seq, ok := v.([]any)
	if !ok {
		return nil, invalidType("array", v)
	}
	out := make([]E, 0, len(seq))
	var iss transcode.Issues
	for i, raw := range seq {
		e, err := s.elem.Parse(ctx, raw)
		if err != nil {
			iss = append(iss, transcode.Rebase(transcode.Root().Index(i).Pointer(), issuesOf(err))...)
			if transcode.IsFailFast(ctx) {
				return nil, iss
			}
			continue
		}
		out = append(out, e)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (s arraySchema[E]) Encode(ctx context.Context, v []E) (any, error) {
	out := make([]any, 0, len(v))
	var iss transcode.Issues
	for i, e := range v {
		w, err := s.elem.Encode(ctx, e)
		if err != nil {
			iss = append(iss, transcode.Rebase(transcode.Root().Index(i).Pointer(), issuesOf(err))...)
			continue
		}
		out = append(out, w)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (s arraySchema[E]) ValidateValue(ctx context.Context, v []E) error {
	var iss transcode.Issues
	for i, e := range v {
		if err := s.elem.ValidateValue(ctx, e); err != nil {
			iss = append(iss, transcode.Rebase(transcode.Root().Index(i).Pointer(), issuesOf(err))...)
		}
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

func (s arraySchema[E]) JSONSchema() (*js.Schema, error) {
	items, err := s.elem.JSONSchema()
	if err != nil {
		return nil, err
	}
	return &js.Schema{Type: "array", Items: items}, nil
}
