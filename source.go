package transcode

import (
	"io"
	"sync"

	eng "github.com/reoring/transcode/internal/engine"
	"github.com/reoring/transcode/source/gojson"
)

// TokenKind enumerates JSON token kinds. Values mirror the internal engine kinds.
type TokenKind int

const (
	TokenBeginObject TokenKind = TokenKind(eng.KindBeginObject)
	TokenEndObject   TokenKind = TokenKind(eng.KindEndObject)
	TokenBeginArray  TokenKind = TokenKind(eng.KindBeginArray)
	TokenEndArray    TokenKind = TokenKind(eng.KindEndArray)
	TokenKey         TokenKind = TokenKind(eng.KindKey)
	TokenString      TokenKind = TokenKind(eng.KindString)
	TokenNumber      TokenKind = TokenKind(eng.KindNumber)
	TokenBool        TokenKind = TokenKind(eng.KindBool)
	TokenNull        TokenKind = TokenKind(eng.KindNull)
)

// Token describes a token in the input stream. Offset records the byte position
// when known (-1 otherwise).
type Token struct {
	Kind   TokenKind
	String string // Stored for key/string tokens.
	Number string // Stored as text; converted when the tree is built.
	Bool   bool
	Offset int64
}

// Source abstracts over polymorphic token input.
type Source interface {
	NextToken() (Token, error)
	Location() int64 // byte offset; -1 if unknown
}

// JSONDriver converts JSON input into a Source via a pluggable SPI. The
// default implementation is backed by goccy/go-json and may be swapped with
// SetJSONDriver.
type JSONDriver interface {
	NewReader(r io.Reader) Source
	NewBytes(b []byte) Source
	Name() string
}

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver JSONDriver = defaultJSONDriver{}
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// UseDefaultJSONDriver restores the default go-json driver.
func UseDefaultJSONDriver() { SetJSONDriver(defaultJSONDriver{}) }

// CurrentJSONDriver returns the driver used by JSONBytes and JSONReader.
func CurrentJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	defer jsonDriverMu.RUnlock()
	return currentJSONDriver
}

type defaultJSONDriver struct{}

func (defaultJSONDriver) NewReader(r io.Reader) Source {
	return &engineSourceAdapter{inner: gojson.NewReader(r)}
}
func (defaultJSONDriver) NewBytes(b []byte) Source {
	return &engineSourceAdapter{inner: gojson.NewBytes(b)}
}
func (defaultJSONDriver) Name() string { return "go-json" }

// JSONReader wraps an io.Reader as a JSON Source.
func JSONReader(r io.Reader) Source { return CurrentJSONDriver().NewReader(r) }

// JSONBytes wraps a byte slice as a JSON Source.
func JSONBytes(b []byte) Source { return CurrentJSONDriver().NewBytes(b) }

type engineSourceAdapter struct{ inner eng.TokenSource }

func (s *engineSourceAdapter) NextToken() (Token, error) {
	t, err := s.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	return Token{Kind: TokenKind(t.Kind), String: t.String, Number: t.Number, Bool: t.Bool, Offset: t.Offset}, nil
}
func (s *engineSourceAdapter) Location() int64 { return s.inner.Location() }

type tokenSourceAdapter struct{ inner Source }

func (a *tokenSourceAdapter) NextToken() (eng.Token, error) {
	t, err := a.inner.NextToken()
	if err != nil {
		return eng.Token{}, err
	}
	return eng.Token{Kind: eng.Kind(t.Kind), String: t.String, Number: t.Number, Bool: t.Bool, Offset: t.Offset}, nil
}
func (a *tokenSourceAdapter) Location() int64 { return a.inner.Location() }

func engineTokenSource(s Source) eng.TokenSource {
	if ea, ok := s.(*engineSourceAdapter); ok {
		return ea.inner
	}
	return &tokenSourceAdapter{inner: s}
}
