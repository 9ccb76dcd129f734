// Package cborfmt reads and writes CBOR. Output uses Core Deterministic
// Encoding (RFC 8949 §4.2), so equal trees always produce identical bytes.
package cborfmt

import (
	"context"
	"errors"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	transcode "github.com/reoring/transcode"
	"github.com/reoring/transcode/tree"
)

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("cborfmt: CBOR encoder initialization failed: " + err.Error())
	}
}

// Transcoder is the CBOR transcoder. The zero value is ready to use.
type Transcoder struct{}

// New returns the CBOR transcoder.
func New() *Transcoder { return &Transcoder{} }

func (*Transcoder) Name() string         { return "cbor" }
func (*Transcoder) Extensions() []string { return []string{".cbor"} }

// Parse decodes one CBOR data item. Map keys must be text strings and byte
// strings decode as text. Duplicate map keys are rejected unless the
// ParseOpt in ctx ignores or only warns about them.
func (*Transcoder) Parse(ctx context.Context, data []byte) (any, error) {
	opt, _ := transcode.ParseOptFromContext(ctx)
	dm, err := decMode(opt)
	if err != nil {
		return nil, transcode.Issues{transcode.NewIssue(transcode.CodeParseError, "cbor: "+err.Error(), err)}
	}
	var v any
	if err := dm.Unmarshal(data, &v); err != nil {
		code := transcode.CodeParseError
		var dup *cbor.DupMapKeyError
		if errors.As(err, &dup) {
			code = transcode.CodeDuplicateKey
		}
		return nil, transcode.Issues{transcode.NewIssue(code, "cbor: "+err.Error(), err)}
	}
	out, err := tree.Normalize(v)
	if err != nil {
		return nil, transcode.Issues{transcode.NewIssue(transcode.CodeInvalidType, "cbor: "+err.Error(), err)}
	}
	return out, nil
}

func decMode(opt transcode.ParseOpt) (cbor.DecMode, error) {
	o := cbor.DecOptions{
		DefaultMapType:        reflect.TypeOf(map[string]any(nil)),
		DefaultByteStringType: reflect.TypeOf(""),
		ByteStringToString:    cbor.ByteStringToStringAllowed,
	}
	if opt.Strictness.OnDuplicateKey == transcode.Error {
		o.DupMapKey = cbor.DupMapKeyEnforcedAPF
	}
	if opt.MaxDepth > 0 {
		o.MaxNestedLevels = min(max(opt.MaxDepth+1, 4), 65535)
	}
	return o.DecMode()
}

// Render encodes v deterministically.
func (*Transcoder) Render(ctx context.Context, v any) ([]byte, error) {
	out, err := encMode.Marshal(tree.ToMap(v))
	if err != nil {
		it := transcode.NewIssue(transcode.CodeRenderError, "cbor: "+err.Error(), err)
		return nil, transcode.Issues{it}
	}
	return out, nil
}
