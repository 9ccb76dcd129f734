// Package msgpackfmt reads and writes MessagePack documents.
package msgpackfmt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/vmihailenco/msgpack/v5"

	transcode "github.com/reoring/transcode"
	"github.com/reoring/transcode/tree"
)

// Transcoder is the MessagePack transcoder. The zero value is ready to use.
type Transcoder struct{}

// New returns the MessagePack transcoder.
func New() *Transcoder { return &Transcoder{} }

func (*Transcoder) Name() string         { return "msgpack" }
func (*Transcoder) Extensions() []string { return []string{".msgpack", ".mpk"} }

// Parse decodes exactly one MessagePack value. Maps keep their wire order
// and must have string keys.
func (*Transcoder) Parse(ctx context.Context, data []byte) (any, error) {
	opt, _ := transcode.ParseOptFromContext(ctx)
	r := bytes.NewReader(data)
	dec := msgpack.NewDecoder(r)
	var dup error
	dec.SetMapDecoder(func(d *msgpack.Decoder) (any, error) {
		n, err := d.DecodeMapLen()
		if err != nil || n < 0 {
			return nil, err
		}
		rec := tree.NewRecord(n)
		for i := 0; i < n; i++ {
			k, err := d.DecodeString()
			if err != nil {
				return nil, fmt.Errorf("map key: %w", err)
			}
			v, err := d.DecodeInterface()
			if err != nil {
				return nil, err
			}
			if rec.Has(k) {
				switch opt.Strictness.OnDuplicateKey {
				case transcode.Error:
					if dup == nil {
						dup = fmt.Errorf("duplicate key %q", k)
					}
				case transcode.Warn:
					if opt.OnWarning != nil {
						opt.OnWarning(transcode.NewIssue(transcode.CodeDuplicateKey, "msgpack: duplicate key "+k, nil))
					}
				}
			}
			rec.Set(k, v)
		}
		return rec, nil
	})
	v, err := dec.DecodeInterface()
	if err != nil {
		return nil, transcode.Issues{transcode.NewIssue(transcode.CodeParseError, "msgpack: "+err.Error(), err)}
	}
	if dup != nil {
		return nil, transcode.Issues{transcode.NewIssue(transcode.CodeDuplicateKey, "msgpack: "+dup.Error(), dup)}
	}
	if _, err := dec.DecodeInterface(); !errors.Is(err, io.EOF) {
		return nil, transcode.Issues{transcode.NewIssue(transcode.CodeParseError, "msgpack: trailing data after document", err)}
	}
	out, err := tree.Normalize(v)
	if err != nil {
		return nil, transcode.Issues{transcode.NewIssue(transcode.CodeInvalidType, "msgpack: "+err.Error(), err)}
	}
	return out, nil
}

// Render encodes v with records in key order and integers in their most
// compact form.
func (*Transcoder) Render(ctx context.Context, v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := write(enc, v, transcode.Root()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func write(enc *msgpack.Encoder, v any, at transcode.PathRef) error {
	var err error
	switch t := v.(type) {
	case *tree.Record:
		if err = enc.EncodeMapLen(t.Len()); err != nil {
			break
		}
		t.Range(func(k string, val any) bool {
			if err = enc.EncodeString(k); err != nil {
				return false
			}
			err = write(enc, val, at.Field(k))
			return err == nil
		})
	case map[string]any:
		rec, ferr := tree.FromMap(t)
		if ferr != nil {
			return renderIssue(at, ferr.Error())
		}
		return write(enc, rec, at)
	case []any:
		if err = enc.EncodeArrayLen(len(t)); err != nil {
			break
		}
		for i, e := range t {
			if err = write(enc, e, at.Index(i)); err != nil {
				break
			}
		}
	case nil:
		err = enc.EncodeNil()
	case string:
		err = enc.EncodeString(t)
	case bool:
		err = enc.EncodeBool(t)
	case int64:
		err = enc.EncodeInt(t)
	case uint64:
		err = enc.EncodeUint(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return renderIssue(at, "non-finite number")
		}
		err = enc.EncodeFloat64(t)
	default:
		return renderIssue(at, fmt.Sprintf("unsupported value %T", v))
	}
	var iss transcode.Issues
	switch {
	case err == nil:
		return nil
	case errors.As(err, &iss):
		return iss
	default:
		return renderIssue(at, err.Error())
	}
}

func renderIssue(at transcode.PathRef, hint string) transcode.Issues {
	it := transcode.NewIssue(transcode.CodeRenderError, "msgpack: "+hint, nil)
	it.Path = at.Pointer()
	return transcode.Issues{it}
}
