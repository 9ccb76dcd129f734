package jsonfmt_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	transcode "github.com/reoring/transcode"
	"github.com/reoring/transcode/format/jsonfmt"
	"github.com/reoring/transcode/tree"
)

func TestParse_OrderAndComments(t *testing.T) {
	ctx := context.Background()
	in := []byte(`{
  // leading comment
  "b": 1,
  "a": [true, null, 1.5, "x",],
  /* block */ "c": {"z": 18446744073709551615},
}`)
	v, err := jsonfmt.New().Parse(ctx, in)
	require.NoError(t, err)
	rec := v.(*tree.Record)
	assert.Equal(t, []string{"b", "a", "c"}, rec.Keys())
	a, _ := rec.Get("a")
	assert.Equal(t, []any{true, nil, 1.5, "x"}, a)
	c, _ := rec.Get("c")
	z, _ := c.(*tree.Record).Get("z")
	assert.Equal(t, uint64(18446744073709551615), z)
}

func TestParse_DuplicateKeys(t *testing.T) {
	in := []byte(`{"a":1,"a":2}`)

	ctx := transcode.WithParseOpt(context.Background(), transcode.DefaultParseOpt())
	_, err := jsonfmt.New().Parse(ctx, in)
	iss, ok := transcode.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, transcode.CodeDuplicateKey, iss[0].Code)
	assert.Equal(t, "/a", iss[0].Path)

	var warned []transcode.Issue
	opt := transcode.DefaultParseOpt()
	opt.Strictness.OnDuplicateKey = transcode.Warn
	opt.OnWarning = func(it transcode.Issue) { warned = append(warned, it) }
	v, err := jsonfmt.New().Parse(transcode.WithParseOpt(context.Background(), opt), in)
	require.NoError(t, err)
	assert.Len(t, warned, 1)
	got, _ := v.(*tree.Record).Get("a")
	assert.Equal(t, int64(2), got)
}

func TestParse_Malformed(t *testing.T) {
	ctx := context.Background()
	inputs := []string{
		``, `{`, `{"a":}`, `[1,2`, `{} {}`,
		`{"a" 1}`, `[1 2]`, `{"a":1 "b":2}`, `{"a"::1}`, `[1,,2]`, `["a":1]`,
	}
	for _, in := range inputs {
		_, err := jsonfmt.New().Parse(ctx, []byte(in))
		assert.ErrorIs(t, err, transcode.ErrMalformedStructure, in)
		iss, ok := transcode.AsIssues(err)
		require.True(t, ok, in)
		assert.Equal(t, transcode.CodeParseError, iss[0].Code, in)
	}
}

func TestParse_CommentsAndTrailingCommasStillAccepted(t *testing.T) {
	v, err := jsonfmt.New().Parse(context.Background(), []byte("{\n  // note\n  \"a\": [1, 2,],\n}"))
	require.NoError(t, err)
	a, _ := v.(*tree.Record).Get("a")
	assert.Equal(t, []any{int64(1), int64(2)}, a)
}

func TestRender_Canonical(t *testing.T) {
	ctx := context.Background()
	inner := tree.NewRecord(0)
	inner.Set("url", "https://a.example/?q=<b>&c")
	rec := tree.NewRecord(0)
	rec.Set("z", int64(1))
	rec.Set("a", []any{})
	rec.Set("m", inner)
	rec.Set("e", tree.NewRecord(0))
	rec.Set("n", nil)

	out, err := jsonfmt.New().Render(ctx, rec)
	require.NoError(t, err)
	want := `{
  "z": 1,
  "a": [],
  "m": {
    "url": "https://a.example/?q=<b>&c"
  },
  "e": {},
  "n": null
}
`
	assert.Equal(t, want, string(out))
}

func TestRender_Unsupported(t *testing.T) {
	ctx := context.Background()
	rec := tree.NewRecord(0)
	rec.Set("bad", struct{}{})
	_, err := jsonfmt.New().Render(ctx, rec)
	iss, ok := transcode.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, transcode.CodeRenderError, iss[0].Code)
	assert.Equal(t, "/bad", iss[0].Path)
	assert.ErrorIs(t, err, transcode.ErrFormatRender)
}
