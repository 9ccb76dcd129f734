// Package tomlfmt reads TOML into the value tree and renders trees as TOML
// with sorted keys, tables for nested records and arrays of tables for
// record sequences.
package tomlfmt

import (
	"context"
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	transcode "github.com/reoring/transcode"
	"github.com/reoring/transcode/tree"
)

// Transcoder is the TOML transcoder. The zero value is ready to use.
type Transcoder struct{}

// New returns the TOML transcoder.
func New() *Transcoder { return &Transcoder{} }

func (*Transcoder) Name() string         { return "toml" }
func (*Transcoder) Extensions() []string { return []string{".toml"} }

// Parse decodes a TOML document. Keys come back sorted; local dates and
// times become their TOML text, offset date-times RFC 3339 text.
func (*Transcoder) Parse(ctx context.Context, data []byte) (any, error) {
	var m map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		it := transcode.NewIssue(transcode.CodeParseError, "toml: "+err.Error(), err)
		var de *toml.DecodeError
		if errors.As(err, &de) {
			row, col := de.Position()
			it.Params = map[string]any{"line": row, "column": col}
			if k := de.Key(); len(k) > 0 {
				p := transcode.Root()
				for _, seg := range k {
					p = p.Field(seg)
				}
				it.Path = p.Pointer()
			}
		}
		return nil, transcode.Issues{it}
	}
	if m == nil {
		m = map[string]any{}
	}
	rec, err := tree.FromMap(m)
	if err != nil {
		return nil, transcode.Issues{transcode.NewIssue(transcode.CodeParseError, "toml: "+err.Error(), err)}
	}
	return rec, nil
}

// Render writes v, which must be a record, as TOML. Null values and
// integers beyond the signed 64-bit range have no TOML form.
func (*Transcoder) Render(ctx context.Context, v any) ([]byte, error) {
	switch v.(type) {
	case *tree.Record, map[string]any:
	default:
		return nil, renderIssue(transcode.Root(), fmt.Sprintf("top level must be a table, got %T", v))
	}
	if err := check(v, transcode.Root()); err != nil {
		return nil, err
	}
	out, err := toml.Marshal(tree.ToMap(v))
	if err != nil {
		return nil, renderIssue(transcode.Root(), err.Error())
	}
	return out, nil
}

func check(v any, at transcode.PathRef) error {
	switch t := v.(type) {
	case nil:
		return renderIssue(at, "null has no TOML form")
	case uint64:
		return renderIssue(at, fmt.Sprintf("%d exceeds the TOML integer range", t))
	case *tree.Record:
		var err error
		t.Range(func(k string, val any) bool {
			err = check(val, at.Field(k))
			return err == nil
		})
		return err
	case map[string]any:
		rec, err := tree.FromMap(t)
		if err != nil {
			return renderIssue(at, err.Error())
		}
		return check(rec, at)
	case []any:
		for i, e := range t {
			if err := check(e, at.Index(i)); err != nil {
				return err
			}
		}
	case string, bool, int64, float64:
	default:
		return renderIssue(at, fmt.Sprintf("unsupported value %T", v))
	}
	return nil
}

func renderIssue(at transcode.PathRef, hint string) transcode.Issues {
	it := transcode.NewIssue(transcode.CodeRenderError, "toml: "+hint, nil)
	it.Path = at.Pointer()
	return transcode.Issues{it}
}
