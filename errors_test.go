package transcode_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	transcode "github.com/reoring/transcode"
)

func TestIssues_IsMatchesCategory(t *testing.T) {
	cases := []struct {
		code   string
		target error
	}{
		{transcode.CodeInvalidType, transcode.ErrMalformedStructure},
		{transcode.CodeRequired, transcode.ErrMalformedStructure},
		{transcode.CodeDuplicateKey, transcode.ErrMalformedStructure},
		{transcode.CodeTruncated, transcode.ErrMalformedStructure},
		{transcode.CodeUnknownVariant, transcode.ErrUnknownVariant},
		{transcode.CodeInvalidIdentifier, transcode.ErrInvalidIdentifier},
		{transcode.CodeInvalidURL, transcode.ErrInvalidURL},
		{transcode.CodeInvalidDuration, transcode.ErrInvalidDuration},
		{transcode.CodeInvalidTimestamp, transcode.ErrInvalidTimestamp},
		{transcode.CodeRenderError, transcode.ErrFormatRender},
	}
	for _, tc := range cases {
		err := fmt.Errorf("decode: %w", transcode.Issues{transcode.NewIssue(tc.code, "", nil)})
		if !errors.Is(err, tc.target) {
			t.Fatalf("%s: expected category %v", tc.code, tc.target)
		}
		if tc.target != transcode.ErrMalformedStructure && errors.Is(err, transcode.ErrMalformedStructure) {
			t.Fatalf("%s: unexpected malformed-structure match", tc.code)
		}
	}
}

func TestIssues_ErrorSummarizes(t *testing.T) {
	iss := transcode.Issues{
		{Path: "/a", Code: transcode.CodeRequired},
		{Path: "/b", Code: transcode.CodeInvalidType, Hint: "expected string"},
		{Path: "/c", Code: transcode.CodeRequired},
		{Path: "/d", Code: transcode.CodeRequired},
	}
	got := iss.Error()
	want := "required at /a; invalid_type at /b: expected string; required at /c; ... (total 4)"
	if got != want {
		t.Fatalf("Error():\n got %q\nwant %q", got, want)
	}
	if c := iss.Codes(); len(c) != 4 || c[1] != transcode.CodeInvalidType {
		t.Fatalf("Codes: %v", c)
	}
}

func TestRebase(t *testing.T) {
	iss := transcode.Issues{
		{Path: "/", Code: transcode.CodeInvalidURL},
		{Path: "/price", Code: transcode.CodeTooSmall},
		{Path: "0", Code: transcode.CodeRequired},
	}
	out := transcode.Rebase("/gifts/1", iss)
	want := []string{"/gifts/1", "/gifts/1/price", "/gifts/1/0"}
	for i, it := range out {
		if it.Path != want[i] {
			t.Fatalf("issue %d: got %q want %q", i, it.Path, want[i])
		}
	}
	if iss[1].Path != "/price" {
		t.Fatalf("Rebase modified its input: %q", iss[1].Path)
	}
	if same := transcode.Rebase("/", iss); same[1].Path != "/price" {
		t.Fatalf("root rebase changed path: %q", same[1].Path)
	}
}

func TestToIssues(t *testing.T) {
	if transcode.ToIssues("/x", nil) != nil {
		t.Fatalf("nil error should give nil issues")
	}
	iss := transcode.ToIssues("", errors.New("boom"))
	if len(iss) != 1 || iss[0].Path != "/" || iss[0].Code != transcode.CodeParseError {
		t.Fatalf("unexpected wrap: %+v", iss)
	}
	orig := transcode.Issues{{Path: "/k", Code: transcode.CodeUnknownKey}}
	if got := transcode.ToIssues("/other", fmt.Errorf("ctx: %w", orig)); got[0].Path != "/k" {
		t.Fatalf("existing issues should pass through, got %+v", got)
	}
	if _, ok := transcode.AsIssues(errors.New("plain")); ok {
		t.Fatalf("plain error is not Issues")
	}
}

func TestPathRef_EscapesSegments(t *testing.T) {
	p := transcode.Root().Field("a/b").Field("t~n").Index(3)
	if got := p.Pointer(); got != "/a~1b/t~0n/3" {
		t.Fatalf("pointer: %q", got)
	}
	if transcode.Root().Pointer() != "/" {
		t.Fatalf("root pointer")
	}
	it := transcode.At("/stream/shard_url").Issue(transcode.CodeInvalidURL, "bad", "scheme", "ftp")
	if it.Path != "/stream/shard_url" || it.Params["scheme"] != "ftp" {
		t.Fatalf("issue: %+v", it)
	}
	if got := transcode.At("/a~1b/t~0n/3").Pointer(); got != "/a~1b/t~0n/3" {
		t.Fatalf("At round trip: %q", got)
	}
	if it := transcode.At("").Field("x").Issue(transcode.CodeRequired, ""); it.Message != "required property missing" || it.Path != "/x" {
		t.Fatalf("catalogue message: %+v", it)
	}
}

func TestNewIssue_UsesCatalogue(t *testing.T) {
	it := transcode.NewIssue(transcode.CodeInvalidDuration, "unknown unit", nil)
	if it.Message != "invalid duration" || it.Path != "/" {
		t.Fatalf("unexpected issue: %+v", it)
	}
	if !strings.Contains(transcode.Issues{it}.Error(), "unknown unit") {
		t.Fatalf("hint missing from error text")
	}
}
