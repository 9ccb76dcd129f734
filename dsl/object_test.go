package dsl_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	transcode "github.com/reoring/transcode"
	"github.com/reoring/transcode/codec"
	g "github.com/reoring/transcode/dsl"
	"github.com/reoring/transcode/tree"
)

type item struct {
	Name  string `json:"name"`
	Count uint32 `json:"count"`
}

type order struct {
	ID    string        `json:"id"`
	Items []item        `json:"items"`
	Wait  time.Duration `json:"wait"`
	Note  string        `transcode:"name=note" json:"memo"`
}

func itemSchema() transcode.Schema[item] {
	return g.ObjectOf[item]().
		Field("name", g.StringOf[string]()).Required().
		Field("count", g.Uint32Of[uint32]()).Required().
		MustBind()
}

func orderSchema() transcode.Schema[order] {
	return g.ObjectOf[order]().
		Field("id", g.StringOf[string]()).Required().
		Field("items", g.SchemaOf(g.Array(itemSchema()))).Required().
		Field("wait", g.SchemaOf(g.Codec(codec.Duration()))).Optional().
		Field("note", g.StringOf[string]()).
		MustBind()
}

func rec(kv ...any) *tree.Record {
	r := tree.NewRecord(len(kv) / 2)
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i].(string), kv[i+1])
	}
	return r
}

func TestObject_Parse_OK(t *testing.T) {
	ctx := context.Background()
	in := rec(
		"id", "o-1",
		"items", []any{rec("name", "a", "count", int64(2)), rec("name", "b", "count", int64(0))},
		"wait", "1h 30m",
		"note", "hi",
	)
	got, err := orderSchema().Parse(ctx, in)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := order{ID: "o-1", Items: []item{{"a", 2}, {"b", 0}}, Wait: 90 * time.Minute, Note: "hi"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestObject_Parse_AcceptsPlainMap(t *testing.T) {
	ctx := context.Background()
	got, err := itemSchema().Parse(ctx, map[string]any{"name": "x", "count": 7})
	if err != nil || got.Count != 7 {
		t.Fatalf("got %+v err=%v", got, err)
	}
}

func TestObject_Parse_CollectsNestedIssues(t *testing.T) {
	ctx := context.Background()
	in := rec(
		"items", []any{rec("name", "a", "count", int64(1)), rec("name", "b", "count", int64(-1))},
		"wait", "soon",
		"extra", true,
	)
	_, err := orderSchema().Parse(ctx, in)
	iss, ok := transcode.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %v", err)
	}
	got := map[string]string{}
	for _, it := range iss {
		got[it.Path] = it.Code
	}
	want := map[string]string{
		"/extra":         transcode.CodeUnknownKey,
		"/id":            transcode.CodeRequired,
		"/items/1/count": transcode.CodeTooSmall,
		"/wait":          transcode.CodeInvalidDuration,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("issues got %v want %v", got, want)
	}
}

func TestObject_Parse_FailFast(t *testing.T) {
	ctx := transcode.WithFailFast(context.Background(), true)
	_, err := orderSchema().Parse(ctx, rec("extra", 1, "other", 2))
	iss, _ := transcode.AsIssues(err)
	if len(iss) != 1 || iss[0].Path != "/extra" {
		t.Fatalf("expected exactly the first issue, got %v", iss)
	}
}

func TestObject_Parse_UnknownStrip(t *testing.T) {
	ctx := context.Background()
	s := g.ObjectOf[item]().
		Field("name", g.StringOf[string]()).Required().
		Field("count", g.Uint32Of[uint32]()).Required().
		UnknownStrip().
		MustBind()
	got, err := s.Parse(ctx, rec("name", "a", "count", int64(1), "color", "red"))
	if err != nil || got.Name != "a" {
		t.Fatalf("got %+v err=%v", got, err)
	}
}

func TestObject_Parse_NotARecord(t *testing.T) {
	ctx := context.Background()
	for _, v := range []any{nil, "x", []any{}, int64(1)} {
		_, err := itemSchema().Parse(ctx, v)
		iss, ok := transcode.AsIssues(err)
		if !ok || iss[0].Code != transcode.CodeInvalidType || iss[0].Path != "/" {
			t.Fatalf("%v: expected invalid_type at root, got %v", v, err)
		}
	}
}

func TestObject_Encode_OrderAndOmission(t *testing.T) {
	ctx := context.Background()
	v := order{ID: "o-1", Items: []item{{"a", 2}}}
	out, err := orderSchema().Encode(ctx, v)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	r, ok := out.(*tree.Record)
	if !ok {
		t.Fatalf("expected *tree.Record, got %T", out)
	}
	if keys := strings.Join(r.Keys(), ","); keys != "id,items" {
		t.Fatalf("keys %q", keys)
	}
	items, _ := r.Get("items")
	first := items.([]any)[0].(*tree.Record)
	if c, _ := first.Get("count"); c != int64(2) {
		t.Fatalf("count encoded as %#v", c)
	}

	v.Wait = 90 * time.Minute
	out, _ = orderSchema().Encode(ctx, v)
	if w, _ := out.(*tree.Record).Get("wait"); w != "1h30m" {
		t.Fatalf("wait encoded as %#v", w)
	}
}

func TestObject_Encode_RoundTrip(t *testing.T) {
	ctx := context.Background()
	v := order{ID: "o-1", Items: []item{{"a", 2}, {"b", 3}}, Wait: time.Second, Note: "n"}
	w, err := orderSchema().Encode(ctx, v)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := orderSchema().Parse(ctx, w)
	if err != nil || !reflect.DeepEqual(back, v) {
		t.Fatalf("round trip got %+v err=%v", back, err)
	}
}

func TestObject_Encode_Invalid(t *testing.T) {
	ctx := context.Background()
	_, err := orderSchema().Encode(ctx, order{ID: "x", Wait: -time.Second})
	iss, ok := transcode.AsIssues(err)
	if !ok || iss[0].Path != "/wait" || !errors.Is(err, transcode.ErrInvalidDuration) {
		t.Fatalf("expected invalid_duration at /wait, got %v", err)
	}
}

func TestBind_Errors(t *testing.T) {
	if _, err := g.ObjectOf[item]().Field("missing", g.StringOf[string]()).Bind(); err == nil {
		t.Fatalf("expected error for key without struct field")
	}
	if _, err := g.ObjectOf[item]().Field("name", g.BoolOf[bool]()).Bind(); err == nil {
		t.Fatalf("expected error for mismatched field type")
	}
	if _, err := g.ObjectOf[item]().Field("name", g.StringOf[string]()).Field("name", g.StringOf[string]()).Bind(); err == nil {
		t.Fatalf("expected error for duplicate key")
	}
	if _, err := g.ObjectOf[string]().Bind(); err == nil {
		t.Fatalf("expected error for non-struct type")
	}
}

func TestObject_JSONSchema(t *testing.T) {
	s, err := orderSchema().JSONSchema()
	if err != nil {
		t.Fatalf("jsonschema: %v", err)
	}
	if s.Type != "object" || s.AdditionalProperties != false {
		t.Fatalf("unexpected root %+v", s)
	}
	if strings.Join(s.Required, ",") != "id,items" {
		t.Fatalf("required %v", s.Required)
	}
	if s.Properties["items"].Items.Properties["count"].Type != "integer" {
		t.Fatalf("nested items schema not projected")
	}
	if s.Properties["wait"].Format != "duration" {
		t.Fatalf("wait format %q", s.Properties["wait"].Format)
	}
}
