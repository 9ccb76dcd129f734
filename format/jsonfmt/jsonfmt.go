// Package jsonfmt reads JSON (comments and trailing commas allowed) into the
// value tree and renders trees as canonical, two-space indented JSON.
package jsonfmt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/goccy/go-json"
	"github.com/tidwall/jsonc"

	transcode "github.com/reoring/transcode"
	"github.com/reoring/transcode/tree"
)

const indentUnit = "  "

// Transcoder is the JSON transcoder. The zero value is ready to use.
type Transcoder struct{}

// New returns the JSON transcoder.
func New() *Transcoder { return &Transcoder{} }

func (*Transcoder) Name() string         { return "json" }
func (*Transcoder) Extensions() []string { return []string{".json", ".jsonc"} }

// Parse decodes data under the ParseOpt carried by ctx (duplicate keys,
// depth and size caps). Record key order follows the document. Comments
// and trailing commas are removed first; anything else that is not valid
// JSON fails with parse_error.
func (*Transcoder) Parse(ctx context.Context, data []byte) (any, error) {
	opt, _ := transcode.ParseOptFromContext(ctx)
	raw := jsonc.ToJSON(data)
	if !json.Valid(raw) {
		return nil, syntaxIssue(raw)
	}
	return transcode.DecodeTree(transcode.JSONBytes(raw), opt)
}

func syntaxIssue(raw []byte) transcode.Issues {
	var v any
	err := json.Unmarshal(raw, &v)
	it := transcode.NewIssue(transcode.CodeParseError, "json: invalid syntax", err)
	var se *json.SyntaxError
	if errors.As(err, &se) {
		it.Hint = "json: " + se.Error()
		it.Offset = se.Offset
	}
	return transcode.Issues{it}
}

// Render writes v in record order followed by a newline. Rendering the
// result of Parse(Render(v)) yields the same bytes.
func (*Transcoder) Render(ctx context.Context, v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, v, 0, transcode.Root()); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, v any, depth int, at transcode.PathRef) error {
	switch t := v.(type) {
	case *tree.Record:
		if t.Len() == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteString("{\n")
		for i, k := range t.Keys() {
			if i > 0 {
				buf.WriteString(",\n")
			}
			indent(buf, depth+1)
			if err := writeScalar(buf, k, at); err != nil {
				return err
			}
			buf.WriteString(": ")
			val, _ := t.Get(k)
			if err := writeValue(buf, val, depth+1, at.Field(k)); err != nil {
				return err
			}
		}
		buf.WriteByte('\n')
		indent(buf, depth)
		buf.WriteByte('}')
		return nil
	case map[string]any:
		rec, err := tree.FromMap(t)
		if err != nil {
			return renderIssue(at, err.Error())
		}
		return writeValue(buf, rec, depth, at)
	case []any:
		if len(t) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteString("[\n")
		for i, e := range t {
			if i > 0 {
				buf.WriteString(",\n")
			}
			indent(buf, depth+1)
			if err := writeValue(buf, e, depth+1, at.Index(i)); err != nil {
				return err
			}
		}
		buf.WriteByte('\n')
		indent(buf, depth)
		buf.WriteByte(']')
		return nil
	default:
		return writeScalar(buf, v, at)
	}
}

func writeScalar(buf *bytes.Buffer, v any, at transcode.PathRef) error {
	switch t := v.(type) {
	case nil, string, bool, int64, uint64:
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return renderIssue(at, fmt.Sprintf("%v has no JSON form", t))
		}
	default:
		return renderIssue(at, fmt.Sprintf("unsupported value %T", v))
	}
	b, err := json.MarshalNoEscape(v)
	if err != nil {
		return renderIssue(at, err.Error())
	}
	buf.Write(b)
	return nil
}

func indent(buf *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString(indentUnit)
	}
}

func renderIssue(at transcode.PathRef, hint string) transcode.Issues {
	it := transcode.NewIssue(transcode.CodeRenderError, "json: "+hint, nil)
	it.Path = at.Pointer()
	return transcode.Issues{it}
}
