package dsl

import (
	"context"
	"fmt"
	"reflect"

	transcode "github.com/reoring/transcode"
	js "github.com/reoring/transcode/jsonschema"
	"github.com/reoring/transcode/tree"
)

// ObjectOf returns a typed record builder. Call Bind or MustBind at the end
// of the chain to obtain a Schema[T].
func ObjectOf[T any]() *objectBuilder[T] {
	return &objectBuilder[T]{unknown: transcode.UnknownStrict}
}

type objectBuilder[T any] struct {
	fields  []fieldDef
	unknown transcode.UnknownPolicy
}

type fieldDef struct {
	name     string
	ad       AnyAdapter
	required bool
}

// fieldStep is returned by Field so that Required/Optional can follow it.
type fieldStep[T any] struct {
	b   *objectBuilder[T]
	idx int
}

// Field registers a wire key with its adapter. Fields are optional until
// marked Required.
func (b *objectBuilder[T]) Field(name string, ad AnyAdapter) *fieldStep[T] {
	b.fields = append(b.fields, fieldDef{name: name, ad: ad})
	return &fieldStep[T]{b: b, idx: len(b.fields) - 1}
}

// UnknownStrict rejects keys not declared with Field (the default).
func (b *objectBuilder[T]) UnknownStrict() *objectBuilder[T] { return b.Unknown(transcode.UnknownStrict) }

// UnknownStrip silently drops undeclared keys.
func (b *objectBuilder[T]) UnknownStrip() *objectBuilder[T] { return b.Unknown(transcode.UnknownStrip) }

// Unknown sets the unknown-key policy.
func (b *objectBuilder[T]) Unknown(p transcode.UnknownPolicy) *objectBuilder[T] {
	b.unknown = p
	return b
}

// Bind builds the schema and binds it to struct type T.
func (b *objectBuilder[T]) Bind() (transcode.Schema[T], error) { return bind[T](b) }

// MustBind is like Bind but panics on error.
func (b *objectBuilder[T]) MustBind() transcode.Schema[T] {
	s, err := b.Bind()
	if err != nil {
		panic(err)
	}
	return s
}

// Required marks the current field as required.
func (f *fieldStep[T]) Required() *objectBuilder[T] {
	f.b.fields[f.idx].required = true
	return f.b
}

// Optional marks the current field as optional.
func (f *fieldStep[T]) Optional() *objectBuilder[T] {
	f.b.fields[f.idx].required = false
	return f.b
}

func (f *fieldStep[T]) Field(name string, ad AnyAdapter) *fieldStep[T] { return f.b.Field(name, ad) }
func (f *fieldStep[T]) UnknownStrict() *objectBuilder[T]               { return f.b.UnknownStrict() }
func (f *fieldStep[T]) UnknownStrip() *objectBuilder[T]                { return f.b.UnknownStrip() }
func (f *fieldStep[T]) Bind() (transcode.Schema[T], error)             { return f.b.Bind() }
func (f *fieldStep[T]) MustBind() transcode.Schema[T]                  { return f.b.MustBind() }

type boundField struct {
	fieldDef
	index []int
	ptr   string // JSON Pointer of the field relative to the record
}

type objectSchema[T any] struct {
	fields  []boundField
	byName  map[string]int
	unknown transcode.UnknownPolicy
}

func bind[T any](b *objectBuilder[T]) (transcode.Schema[T], error) {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("dsl: Bind requires a struct type, got %s", rt)
	}
	idxByKey := make(map[string][]int, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		key := transcode.ResolveStructKey(sf)
		if key == "" || key == "-" {
			continue
		}
		idxByKey[key] = sf.Index
	}
	s := &objectSchema[T]{byName: make(map[string]int, len(b.fields)), unknown: b.unknown}
	for _, f := range b.fields {
		if _, dup := s.byName[f.name]; dup {
			return nil, fmt.Errorf("dsl: field %q declared twice on %s", f.name, rt)
		}
		idx, ok := idxByKey[f.name]
		if !ok {
			return nil, fmt.Errorf("dsl: key %q has no field on %s", f.name, rt)
		}
		ft := rt.FieldByIndex(idx).Type
		if f.ad.typ != nil && !f.ad.typ.AssignableTo(ft) {
			return nil, fmt.Errorf("dsl: key %q produces %s, field %s.%s is %s", f.name, f.ad.typ, rt, rt.FieldByIndex(idx).Name, ft)
		}
		s.byName[f.name] = len(s.fields)
		s.fields = append(s.fields, boundField{
			fieldDef: f,
			index:    idx,
			ptr:      transcode.Root().Field(f.name).Pointer(),
		})
	}
	return s, nil
}

func (s *objectSchema[T]) Parse(ctx context.Context, v any) (T, error) {
	var zero T
	rec, err := asRecord(v)
	if err != nil {
		return zero, err
	}
	failFast := transcode.IsFailFast(ctx)
	var iss transcode.Issues
	if s.unknown == transcode.UnknownStrict {
		for _, k := range rec.Keys() {
			if _, ok := s.byName[k]; ok {
				continue
			}
			it := transcode.NewIssue(transcode.CodeUnknownKey, fmt.Sprintf("unknown key %q", k), nil)
			it.Path = transcode.Root().Field(k).Pointer()
			iss = append(iss, it)
			if failFast {
				return zero, iss
			}
		}
	}
	var out T
	rv := reflect.ValueOf(&out).Elem()
	for _, f := range s.fields {
		raw, ok := rec.Get(f.name)
		if !ok {
			if f.required {
				it := transcode.NewIssue(transcode.CodeRequired, fmt.Sprintf("missing key %q", f.name), nil)
				it.Path = f.ptr
				iss = append(iss, it)
				if failFast {
					return zero, iss
				}
			}
			continue
		}
		val, err := f.ad.parse(ctx, raw)
		if err != nil {
			iss = append(iss, transcode.Rebase(f.ptr, issuesOf(err))...)
			if failFast {
				return zero, iss
			}
			continue
		}
		if val != nil {
			rv.FieldByIndex(f.index).Set(reflect.ValueOf(val))
		}
	}
	if len(iss) > 0 {
		return zero, iss
	}
	return out, nil
}

func (s *objectSchema[T]) Encode(ctx context.Context, v T) (any, error) {
	rv := reflect.ValueOf(v)
	rec := tree.NewRecord(len(s.fields))
	var iss transcode.Issues
	for _, f := range s.fields {
		fv := rv.FieldByIndex(f.index)
		if !f.required && fv.IsZero() {
			continue
		}
		w, err := f.ad.encode(ctx, fv.Interface())
		if err != nil {
			iss = append(iss, transcode.Rebase(f.ptr, issuesOf(err))...)
			continue
		}
		rec.Set(f.name, w)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return rec, nil
}

func (s *objectSchema[T]) ValidateValue(ctx context.Context, v T) error {
	rv := reflect.ValueOf(v)
	var iss transcode.Issues
	for _, f := range s.fields {
		fv := rv.FieldByIndex(f.index)
		if !f.required && fv.IsZero() {
			continue
		}
		if err := f.ad.validateValue(ctx, fv.Interface()); err != nil {
			iss = append(iss, transcode.Rebase(f.ptr, issuesOf(err))...)
		}
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

func (s *objectSchema[T]) JSONSchema() (*js.Schema, error) {
	out := &js.Schema{Type: "object", Properties: make(map[string]*js.Schema, len(s.fields))}
	for _, f := range s.fields {
		fs, err := f.ad.jsonSchema()
		if err != nil {
			return nil, fmt.Errorf("dsl: %s: %w", f.name, err)
		}
		out.Properties[f.name] = fs
		if f.required {
			out.Required = append(out.Required, f.name)
		}
	}
	// UnknownStrict => additionalProperties=false, UnknownStrip => true
	out.AdditionalProperties = s.unknown != transcode.UnknownStrict
	return out, nil
}

// asRecord accepts the ordered record of package tree, or a plain map for
// callers building values by hand.
func asRecord(v any) (*tree.Record, error) {
	switch r := v.(type) {
	case *tree.Record:
		if r == nil {
			return nil, invalidType("object", nil)
		}
		return r, nil
	case map[string]any:
		rec, err := tree.FromMap(r)
		if err != nil {
			return nil, transcode.Issues{transcode.NewIssue(transcode.CodeInvalidType, err.Error(), err)}
		}
		return rec, nil
	default:
		return nil, invalidType("object", v)
	}
}
