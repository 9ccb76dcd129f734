package engine

import (
	"errors"
	"io"
	"testing"

	"github.com/reoring/transcode/tree"
)

type sliceSource struct {
	toks []Token
	i    int
}

func (s *sliceSource) NextToken() (Token, error) {
	if s.i >= len(s.toks) {
		return Token{}, io.EOF
	}
	t := s.toks[s.i]
	t.Offset = int64(s.i)
	s.i++
	return t, nil
}

func (s *sliceSource) Location() int64 { return int64(s.i) }

func obj(kv ...Token) []Token {
	out := []Token{{Kind: KindBeginObject}}
	out = append(out, kv...)
	return append(out, Token{Kind: KindEndObject})
}

func key(k string) Token    { return Token{Kind: KindKey, String: k} }
func num(n string) Token    { return Token{Kind: KindNumber, Number: n} }
func str(s string) Token    { return Token{Kind: KindString, String: s} }
func arr(t ...Token) []Token { return append(append([]Token{{Kind: KindBeginArray}}, t...), Token{Kind: KindEndArray}) }

func TestDecodeTree_PreservesKeyOrder(t *testing.T) {
	toks := obj(key("z"), num("1"), key("a"), str("x"))
	v, err := DecodeTree(&sliceSource{toks: toks})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	rec := v.(*tree.Record)
	if keys := rec.Keys(); keys[0] != "z" || keys[1] != "a" {
		t.Fatalf("unexpected order: %v", keys)
	}
	if z, _ := rec.Get("z"); z != int64(1) {
		t.Fatalf("expected int64, got %T", z)
	}
}

func TestDecodeTree_RejectsTrailingValue(t *testing.T) {
	toks := append(arr(), str("extra"))
	if _, err := DecodeTree(&sliceSource{toks: toks}); err == nil {
		t.Fatalf("expected trailing data error")
	}
}

func TestParseNumber(t *testing.T) {
	cases := map[string]any{
		"42":                   int64(42),
		"-7":                   int64(-7),
		"18446744073709551615": uint64(18446744073709551615),
		"1.5":                  1.5,
		"1e2":                  100.0,
	}
	for in, want := range cases {
		got, err := ParseNumber(in)
		if err != nil || got != want {
			t.Fatalf("ParseNumber(%q) = %v (%T), %v; want %v", in, got, got, err, want)
		}
	}
	if _, err := ParseNumber("1e999"); err == nil {
		t.Fatalf("expected overflow for 1e999")
	}
}

func TestEnforcement_DuplicateKeyPath(t *testing.T) {
	toks := arr(obj(key("a"), num("1"), key("a"), num("2"))...)
	src := WrapWithEnforcement(&sliceSource{toks: toks}, EnforceOptions{OnDuplicate: DupError})
	_, err := DecodeTree(src)
	var ie IssueError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IssueError, got %v", err)
	}
	if ie.Code != "duplicate_key" || ie.Path != "/0/a" {
		t.Fatalf("unexpected issue: %+v", ie.SimpleIssue)
	}
}

func TestEnforcement_DuplicateKeyWarnGoesToSink(t *testing.T) {
	toks := obj(key("a"), num("1"), key("a"), num("2"))
	var got []SimpleIssue
	src := WrapWithEnforcement(&sliceSource{toks: toks}, EnforceOptions{
		OnDuplicate: DupWarn,
		IssueSink:   func(si SimpleIssue) { got = append(got, si) },
	})
	v, err := DecodeTree(src)
	if err != nil {
		t.Fatalf("warn mode must not fail: %v", err)
	}
	if len(got) != 1 || got[0].Path != "/a" {
		t.Fatalf("expected one warning at /a, got %+v", got)
	}
	if a, _ := v.(*tree.Record).Get("a"); a != int64(2) {
		t.Fatalf("expected last value to win, got %v", a)
	}
}

func TestEnforcement_MaxDepth(t *testing.T) {
	toks := obj(key("a"), Token{Kind: KindBeginObject}, key("b"), num("1"), Token{Kind: KindEndObject})
	src := WrapWithEnforcement(&sliceSource{toks: toks}, EnforceOptions{MaxDepth: 1})
	_, err := DecodeTree(src)
	var ie IssueError
	if !errors.As(err, &ie) || ie.Path != "/a" {
		t.Fatalf("expected depth issue at /a, got %v", err)
	}
}
