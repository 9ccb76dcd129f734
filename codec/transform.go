package codec

import (
	"context"
	"strings"

	transcode "github.com/reoring/transcode"
	js "github.com/reoring/transcode/jsonschema"
)

// DatePrefix is the tag carried by event dates on the wire.
const DatePrefix = "Date: "

// Reversible builds a Codec[string,string] from a pair of text transforms.
// enc must invert dec for every value dec produces; name shows up in hints.
// A nil dec or enc is the identity.
func Reversible(name string, enc, dec func(string) (string, error)) transcode.Codec[string, string] {
	return &transformCodec{name: name, enc: enc, dec: dec}
}

// Prefix returns a Codec that removes exactly one leading occurrence of tag
// on decode and prepends tag on encode. Text without the tag decodes
// unchanged, so "Date: Date: x" becomes "Date: x" and "x" stays "x".
func Prefix(tag string) transcode.Codec[string, string] {
	return &transformCodec{
		name: "prefix " + quote(tag),
		dec:  func(s string) (string, error) { return strings.TrimPrefix(s, tag), nil },
		enc:  func(s string) (string, error) { return tag + s, nil },
	}
}

type transformCodec struct {
	name     string
	enc, dec func(string) (string, error)
}

func (c *transformCodec) In() transcode.Schema[string] { return stringSchema() }

func (c *transformCodec) Out() transcode.Schema[string] {
	return valueSchema[string]{jsSchema: js.Schema{Type: "string"}}
}

func (c *transformCodec) Decode(ctx context.Context, a string) (string, error) {
	return c.apply(c.dec, a)
}

func (c *transformCodec) Encode(ctx context.Context, b string) (string, error) {
	return c.apply(c.enc, b)
}

func (c *transformCodec) apply(f func(string) (string, error), s string) (string, error) {
	if f == nil {
		return s, nil
	}
	out, err := f(s)
	if err != nil {
		if iss, ok := transcode.AsIssues(err); ok {
			return "", iss
		}
		return "", fail(transcode.CodeParseError, c.name+": "+err.Error(), err)
	}
	return out, nil
}
