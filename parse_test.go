package transcode_test

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	transcode "github.com/reoring/transcode"
	g "github.com/reoring/transcode/dsl"
	"github.com/reoring/transcode/tree"
)

type gift struct {
	ID    uint32 `json:"id"`
	Label string `json:"label,omitempty"`
}

func giftSchema() transcode.Schema[gift] {
	return g.ObjectOf[gift]().
		Field("id", g.Uint32Of[uint32]()).Required().
		Field("label", g.StringOf[string]()).Optional().
		MustBind()
}

func TestDecodeTree_KeepsKeyOrder(t *testing.T) {
	v, err := transcode.DecodeTree(transcode.JSONBytes([]byte(`{"z":1,"a":{"y":true,"b":null},"m":[1.5,"x"]}`)), transcode.ParseOpt{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	rec := v.(*tree.Record)
	if got := rec.Keys(); !reflect.DeepEqual(got, []string{"z", "a", "m"}) {
		t.Fatalf("keys: %v", got)
	}
	z, _ := rec.Get("z")
	if z != int64(1) {
		t.Fatalf("z: %#v", z)
	}
}

func TestDecodeTree_DuplicateKeys(t *testing.T) {
	in := []byte(`{"a":1,"b":{"c":1,"c":2}}`)
	_, err := transcode.DecodeTree(transcode.JSONBytes(in), transcode.DefaultParseOpt())
	iss, ok := transcode.AsIssues(err)
	if !ok || iss[0].Code != transcode.CodeDuplicateKey || iss[0].Path != "/b/c" {
		t.Fatalf("expected duplicate_key at /b/c, got %v", err)
	}

	var warned []transcode.Issue
	opt := transcode.ParseOpt{
		Strictness: transcode.Strictness{OnDuplicateKey: transcode.Warn},
		OnWarning:  func(it transcode.Issue) { warned = append(warned, it) },
	}
	v, err := transcode.DecodeTree(transcode.JSONBytes(in), opt)
	if err != nil {
		t.Fatalf("warn mode: %v", err)
	}
	if len(warned) != 1 || warned[0].Path != "/b/c" {
		t.Fatalf("warnings: %+v", warned)
	}
	b, _ := v.(*tree.Record).Get("b")
	if c, _ := b.(*tree.Record).Get("c"); c != int64(2) {
		t.Fatalf("last duplicate should win, got %#v", c)
	}
}

func TestDecodeTree_Limits(t *testing.T) {
	deep := []byte(strings.Repeat("[", 10) + strings.Repeat("]", 10))
	_, err := transcode.DecodeTree(transcode.JSONBytes(deep), transcode.ParseOpt{MaxDepth: 5})
	if !errors.Is(err, transcode.ErrMalformedStructure) {
		t.Fatalf("depth: %v", err)
	}
	if iss, _ := transcode.AsIssues(err); iss[0].Code != transcode.CodeParseError {
		t.Fatalf("depth code: %v", iss.Codes())
	}

	_, err = transcode.DecodeTree(transcode.JSONBytes([]byte(`{"a":"`+strings.Repeat("x", 64)+`"}`)), transcode.ParseOpt{MaxBytes: 16})
	if iss, ok := transcode.AsIssues(err); !ok || iss[0].Code != transcode.CodeTruncated {
		t.Fatalf("bytes: %v", err)
	}

	_, err = transcode.DecodeTree(transcode.JSONBytes([]byte(`{"a":`)), transcode.ParseOpt{})
	if iss, ok := transcode.AsIssues(err); !ok || iss[0].Code != transcode.CodeParseError {
		t.Fatalf("eof: %v", err)
	}
}

func TestParseFrom_RejectsBadSeparators(t *testing.T) {
	ctx := context.Background()
	for _, in := range []string{`{"id" 1}`, `{"id":1 "label":"x"}`, `{"id"::1}`, `[{"id":1},,{"id":2}]`} {
		_, err := transcode.ParseFrom(ctx, giftSchema(), transcode.JSONBytes([]byte(in)))
		iss, ok := transcode.AsIssues(err)
		if !ok || iss[0].Code != transcode.CodeParseError {
			t.Fatalf("%s: expected parse_error, got %v", in, err)
		}
	}
	_, err := transcode.DecodeTree(transcode.JSONReader(strings.NewReader(`[1 2]`)), transcode.ParseOpt{})
	if !errors.Is(err, transcode.ErrMalformedStructure) {
		t.Fatalf("reader: expected malformed structure, got %v", err)
	}
}

func TestParseFrom_CollectsOrStopsEarly(t *testing.T) {
	ctx := context.Background()
	in := []byte(`{"label":7,"extra":true}`)
	_, err := transcode.ParseFrom(ctx, giftSchema(), transcode.JSONBytes(in))
	iss, ok := transcode.AsIssues(err)
	if !ok || len(iss) != 3 {
		t.Fatalf("expected 3 issues, got %v", err)
	}
	if got := iss.Codes(); !reflect.DeepEqual(got, []string{transcode.CodeUnknownKey, transcode.CodeRequired, transcode.CodeInvalidType}) {
		t.Fatalf("codes: %v", got)
	}

	_, err = transcode.ParseFrom(ctx, giftSchema(), transcode.JSONBytes(in), transcode.ParseOpt{FailFast: true})
	if iss, _ := transcode.AsIssues(err); len(iss) != 1 {
		t.Fatalf("fail-fast should stop at the first issue, got %v", err)
	}
}

func TestParseFrom_Success(t *testing.T) {
	got, err := transcode.ParseFrom(context.Background(), giftSchema(), transcode.JSONBytes([]byte(`{"id":4}`)))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != (gift{ID: 4}) {
		t.Fatalf("got %+v", got)
	}
	if _, ok := transcode.SafeParse(context.Background(), giftSchema(), "not an object"); ok {
		t.Fatalf("SafeParse should fail on a string")
	}
}

func TestReadAllAndStreamParse(t *testing.T) {
	if _, err := transcode.ReadAll(strings.NewReader("123456"), 5); err == nil {
		t.Fatalf("expected truncated")
	}
	data, err := transcode.ReadAll(strings.NewReader("12345"), 5)
	if err != nil || string(data) != "12345" {
		t.Fatalf("ReadAll: %q %v", data, err)
	}
	if err := transcode.CheckSize(bytes.Repeat([]byte("x"), 10), 9); err == nil {
		t.Fatalf("CheckSize should reject")
	}

	arr := g.Array(giftSchema())
	got, err := transcode.StreamParse(context.Background(), arr, strings.NewReader(`[{"id":1},{"id":2,"label":"b"}]`))
	if err != nil {
		t.Fatalf("StreamParse: %v", err)
	}
	if len(got) != 2 || got[1].Label != "b" {
		t.Fatalf("got %+v", got)
	}
	_, err = transcode.StreamParse(context.Background(), arr, strings.NewReader(`[{"id":1},{"id":-1}]`))
	if iss, ok := transcode.AsIssues(err); !ok || iss[0].Path != "/1/id" {
		t.Fatalf("expected issue at /1/id, got %v", err)
	}
}

type namedFields struct {
	A string `transcode:"name=alpha" json:"a"`
	B string `json:"b,omitempty"`
	C string `json:",omitempty"`
	D string
}

func TestResolveStructKey(t *testing.T) {
	rt := reflect.TypeOf(namedFields{})
	want := []string{"alpha", "b", "C", "D"}
	for i, w := range want {
		if got := transcode.ResolveStructKey(rt.Field(i)); got != w {
			t.Fatalf("field %d: got %q want %q", i, got, w)
		}
	}
}
