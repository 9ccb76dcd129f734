// Package yamlfmt reads single-document YAML into the value tree and renders
// trees as block-style YAML in record order.
package yamlfmt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	transcode "github.com/reoring/transcode"
	"github.com/reoring/transcode/tree"
)

// maxAliasExpansions bounds alias dereferences per document.
const maxAliasExpansions = 10000

// Transcoder is the YAML transcoder. The zero value is ready to use.
type Transcoder struct{}

// New returns the YAML transcoder.
func New() *Transcoder { return &Transcoder{} }

func (*Transcoder) Name() string         { return "yaml" }
func (*Transcoder) Extensions() []string { return []string{".yaml", ".yml"} }

// Parse decodes exactly one YAML document. Keys must be strings; duplicate
// keys follow the Strictness carried by ctx. Timestamps stay strings.
func (*Transcoder) Parse(ctx context.Context, data []byte) (any, error) {
	opt, _ := transcode.ParseOptFromContext(ctx)
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, transcode.Issues{transcode.NewIssue(transcode.CodeParseError, "yaml: empty document", err)}
		}
		return nil, transcode.Issues{transcode.NewIssue(transcode.CodeParseError, err.Error(), err)}
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, transcode.Issues{transcode.NewIssue(transcode.CodeParseError, "yaml: multiple documents are not supported", err)}
	}
	w := &walker{opt: opt}
	v, err := w.value(&doc, transcode.Root())
	if err != nil {
		return nil, err
	}
	return v, nil
}

type walker struct {
	opt     transcode.ParseOpt
	aliases int
}

func (w *walker) value(n *yaml.Node, at transcode.PathRef) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return w.value(n.Content[0], at)
	case yaml.MappingNode:
		return w.mapping(n, at)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := w.value(c, at.Index(i))
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.AliasNode:
		w.aliases++
		if w.aliases > maxAliasExpansions {
			return nil, issueAt(transcode.CodeParseError, at, n, "too many alias expansions")
		}
		return w.value(n.Alias, at)
	case yaml.ScalarNode:
		return scalar(n, at)
	default:
		return nil, issueAt(transcode.CodeParseError, at, n, fmt.Sprintf("unsupported node kind %d", n.Kind))
	}
}

func (w *walker) mapping(n *yaml.Node, at transcode.PathRef) (any, error) {
	rec := tree.NewRecord(len(n.Content) / 2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, vn := n.Content[i], n.Content[i+1]
		if k.Kind != yaml.ScalarNode || k.ShortTag() != "!!str" {
			return nil, issueAt(transcode.CodeInvalidType, at, k, "mapping keys must be strings, got "+k.ShortTag())
		}
		child := at.Field(k.Value)
		if rec.Has(k.Value) {
			switch w.opt.Strictness.OnDuplicateKey {
			case transcode.Error:
				return nil, issueAt(transcode.CodeDuplicateKey, child, k, fmt.Sprintf("duplicate key %q", k.Value))
			case transcode.Warn:
				if w.opt.OnWarning != nil {
					w.opt.OnWarning(issueAt(transcode.CodeDuplicateKey, child, k, fmt.Sprintf("duplicate key %q", k.Value))[0])
				}
			}
		}
		v, err := w.value(vn, child)
		if err != nil {
			return nil, err
		}
		rec.Set(k.Value, v)
	}
	return rec, nil
}

func scalar(n *yaml.Node, at transcode.PathRef) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, issueAt(transcode.CodeParseError, at, n, err.Error())
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return i, nil
		}
		var u uint64
		if err := n.Decode(&u); err == nil {
			return u, nil
		}
		return nil, issueAt(transcode.CodeOverflow, at, n, "integer out of range: "+n.Value)
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, issueAt(transcode.CodeParseError, at, n, err.Error())
		}
		return f, nil
	default:
		// !!str, !!timestamp, !!binary and custom tags keep their text.
		return n.Value, nil
	}
}

// Render writes v as a single block-style YAML document with two-space
// indentation. Records keep their key order.
func (*Transcoder) Render(ctx context.Context, v any) ([]byte, error) {
	n, err := node(v, transcode.Root())
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return nil, renderIssue(transcode.Root(), err.Error())
	}
	if err := enc.Close(); err != nil {
		return nil, renderIssue(transcode.Root(), err.Error())
	}
	return buf.Bytes(), nil
}

func node(v any, at transcode.PathRef) (*yaml.Node, error) {
	switch t := v.(type) {
	case *tree.Record:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		var err error
		t.Range(func(k string, val any) bool {
			var vn *yaml.Node
			vn, err = node(val, at.Field(k))
			if err != nil {
				return false
			}
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, vn)
			return true
		})
		if err != nil {
			return nil, err
		}
		return n, nil
	case map[string]any:
		rec, err := tree.FromMap(t)
		if err != nil {
			return nil, renderIssue(at, err.Error())
		}
		return node(rec, at)
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i, e := range t {
			en, err := node(e, at.Index(i))
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, en)
		}
		return n, nil
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case string:
		n := &yaml.Node{}
		if err := n.Encode(t); err != nil {
			return nil, renderIssue(at, err.Error())
		}
		return n, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(t)}, nil
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(t, 10)}, nil
	case uint64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatUint(t, 10)}, nil
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(t)}, nil
	default:
		return nil, renderIssue(at, fmt.Sprintf("unsupported value %T", v))
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if f == math.Trunc(f) && !strings.ContainsAny(s, "eEn") {
		s += ".0"
	}
	return s
}

func issueAt(code string, at transcode.PathRef, n *yaml.Node, hint string) transcode.Issues {
	it := transcode.NewIssue(code, "yaml: "+hint, nil)
	it.Path = at.Pointer()
	it.Params = map[string]any{"line": n.Line, "column": n.Column}
	return transcode.Issues{it}
}

func renderIssue(at transcode.PathRef, hint string) transcode.Issues {
	it := transcode.NewIssue(transcode.CodeRenderError, "yaml: "+hint, nil)
	it.Path = at.Pointer()
	return transcode.Issues{it}
}
