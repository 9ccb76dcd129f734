package transcode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reoring/transcode/i18n"
)

// PathRef builds JSON Pointer paths and creates Issues located at them.
// Field and Index never modify the receiver.
type PathRef interface {
	Field(name string) PathRef
	Index(i int) PathRef
	Pointer() string
	Issue(code, msg string, kv ...any) Issue
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")
var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

// Root returns the PathRef of the document root.
func Root() PathRef { return (*pathRef)(nil) }

// At parses an RFC 6901 JSON Pointer into a PathRef. "" and "/" are the root.
func At(pointer string) PathRef {
	var p *pathRef
	for _, seg := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		if seg != "" {
			p = &pathRef{parent: p, seg: pointerUnescaper.Replace(seg)}
		}
	}
	return p
}

// pathRef is a segment linked to its parent; nil is the root.
type pathRef struct {
	parent *pathRef
	seg    string
}

func (p *pathRef) Field(name string) PathRef {
	if name == "" {
		return p
	}
	return &pathRef{parent: p, seg: name}
}

func (p *pathRef) Index(i int) PathRef {
	return &pathRef{parent: p, seg: strconv.Itoa(i)}
}

func (p *pathRef) Pointer() string {
	if p == nil {
		return "/"
	}
	var segs []string
	for n := p; n != nil; n = n.parent {
		segs = append(segs, pointerEscaper.Replace(n.seg))
	}
	var b strings.Builder
	for i := len(segs) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(segs[i])
	}
	return b.String()
}

// Issue builds an Issue at p. An empty msg takes the catalogue message for
// code; kv pairs become Params.
func (p *pathRef) Issue(code, msg string, kv ...any) Issue {
	if msg == "" {
		msg = i18n.T(code, nil)
	}
	var params map[string]any
	if len(kv) > 1 {
		params = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			params[fmt.Sprint(kv[i])] = kv[i+1]
		}
	}
	return Issue{Path: p.Pointer(), Code: code, Message: msg, Params: params}
}
