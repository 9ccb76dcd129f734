package gojson_test

import (
	"io"
	"testing"

	eng "github.com/reoring/transcode/internal/engine"
	"github.com/reoring/transcode/source/gojson"
)

func TestSource_KeysAndValuesAlternate(t *testing.T) {
	src := gojson.NewBytes([]byte(`{"a":"b","n":[1,{"k":true}],"z":null}`))
	var kinds []eng.Kind
	for {
		tok, err := src.NextToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		kinds = append(kinds, tok.Kind)
	}
	want := []eng.Kind{
		eng.KindBeginObject,
		eng.KindKey, eng.KindString,
		eng.KindKey, eng.KindBeginArray, eng.KindNumber, eng.KindBeginObject, eng.KindKey, eng.KindBool, eng.KindEndObject, eng.KindEndArray,
		eng.KindKey, eng.KindNull,
		eng.KindEndObject,
	}
	if len(kinds) != len(want) {
		t.Fatalf("token count mismatch: got %v want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("token %d: got %v want %v", i, kinds[i], want[i])
		}
	}
}

func TestSource_StringValueEqualToKeyIsNotAKey(t *testing.T) {
	src := gojson.NewBytes([]byte(`{"a":"a"}`))
	_, _ = src.NextToken() // {
	k, _ := src.NextToken()
	v, _ := src.NextToken()
	if k.Kind != eng.KindKey || v.Kind != eng.KindString {
		t.Fatalf("expected key then string, got %v then %v", k.Kind, v.Kind)
	}
}

func TestSource_InvalidSyntaxFailsBeforeTokens(t *testing.T) {
	for _, in := range []string{`{"a" 1}`, `[1 2]`, `["a":1]`, ``} {
		src := gojson.NewBytes([]byte(in))
		if _, err := src.NextToken(); err == nil {
			t.Fatalf("%q: expected syntax error", in)
		}
	}
	src := gojson.NewBytes([]byte(`{"a":1 "b":2}`))
	if _, err := src.NextToken(); err == nil || src.Location() <= 0 {
		t.Fatalf("expected error with offset, got err=%v offset=%d", err, src.Location())
	}
}
