// Package gojson turns JSON bytes into an engine token stream using
// goccy/go-json.
package gojson

import (
	"bytes"
	"errors"
	"io"
	"strconv"

	j "github.com/goccy/go-json"

	eng "github.com/reoring/transcode/internal/engine"
)

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	expectingKey bool
}

type source struct {
	dec   *j.Decoder
	stack []frame
	last  int64
}

// NewReader reads r completely and wraps it like NewBytes.
func NewReader(r io.Reader) eng.TokenSource {
	b, err := io.ReadAll(r)
	if err != nil {
		return &failedSource{err: err, offset: -1}
	}
	return NewBytes(b)
}

// NewBytes wraps a byte slice into an engine.TokenSource. The decoder's
// Token method does not check ':' and ',' separators, so b must pass
// json.Valid first; otherwise the first NextToken returns the syntax error.
func NewBytes(b []byte) eng.TokenSource {
	if !j.Valid(b) {
		return syntaxFailure(b)
	}
	dec := j.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return &source{dec: dec, last: -1}
}

func syntaxFailure(b []byte) *failedSource {
	var v any
	err := j.Unmarshal(b, &v)
	var se *j.SyntaxError
	switch {
	case err == nil:
		return &failedSource{err: errors.New("invalid JSON document"), offset: -1}
	case errors.As(err, &se):
		return &failedSource{err: err, offset: se.Offset}
	default:
		return &failedSource{err: err, offset: -1}
	}
}

// failedSource reports err on every call.
type failedSource struct {
	err    error
	offset int64
}

func (f *failedSource) NextToken() (eng.Token, error) { return eng.Token{}, f.err }
func (f *failedSource) Location() int64               { return f.offset }

func (s *source) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, err
	}
	s.last = s.dec.InputOffset()

	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, frame{kind: kindObject, expectingKey: true})
			return s.token(eng.Token{Kind: eng.KindBeginObject}), nil
		case '[':
			s.stack = append(s.stack, frame{kind: kindArray})
			return s.token(eng.Token{Kind: eng.KindBeginArray}), nil
		case '}':
			s.pop()
			s.valueDone()
			return s.token(eng.Token{Kind: eng.KindEndObject}), nil
		case ']':
			s.pop()
			s.valueDone()
			return s.token(eng.Token{Kind: eng.KindEndArray}), nil
		}
	case string:
		if n := len(s.stack); n > 0 && s.stack[n-1].kind == kindObject && s.stack[n-1].expectingKey {
			s.stack[n-1].expectingKey = false
			return s.token(eng.Token{Kind: eng.KindKey, String: v}), nil
		}
		s.valueDone()
		return s.token(eng.Token{Kind: eng.KindString, String: v}), nil
	case bool:
		s.valueDone()
		return s.token(eng.Token{Kind: eng.KindBool, Bool: v}), nil
	case j.Number:
		s.valueDone()
		return s.token(eng.Token{Kind: eng.KindNumber, Number: string(v)}), nil
	case float64:
		s.valueDone()
		return s.token(eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64)}), nil
	}
	s.valueDone()
	return s.token(eng.Token{Kind: eng.KindNull}), nil
}

func (s *source) token(t eng.Token) eng.Token {
	t.Offset = s.last
	return t
}

func (s *source) pop() {
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
}

// valueDone flips the enclosing object back to expecting a key.
func (s *source) valueDone() {
	if n := len(s.stack); n > 0 && s.stack[n-1].kind == kindObject {
		s.stack[n-1].expectingKey = true
	}
}

func (s *source) Location() int64 { return s.last }
