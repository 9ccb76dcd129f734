package transcode

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType    = "invalid_type"
	CodeRequired       = "required"
	CodeUnknownKey     = "unknown_key"
	CodeDuplicateKey   = "duplicate_key"
	CodeTooSmall       = "too_small"
	CodeOverflow       = "overflow"
	CodeParseError     = "parse_error"
	CodeTruncated      = "truncated"
	CodeUnknownVariant = "unknown_variant"
	// Primitive codec failures
	CodeInvalidIdentifier = "invalid_identifier"
	CodeInvalidURL        = "invalid_url"
	CodeInvalidDuration   = "invalid_duration"
	CodeInvalidTimestamp  = "invalid_timestamp"
	// Encode side
	CodeRenderError = "render_error"
)

// Error categories. Issues match them with errors.Is.
var (
	ErrMalformedStructure = errors.New("transcode: malformed structure")
	ErrUnknownVariant     = errors.New("transcode: unknown variant")
	ErrInvalidIdentifier  = errors.New("transcode: invalid identifier")
	ErrInvalidURL         = errors.New("transcode: invalid url")
	ErrInvalidDuration    = errors.New("transcode: invalid duration")
	ErrInvalidTimestamp   = errors.New("transcode: invalid timestamp")
	ErrFormatRender       = errors.New("transcode: format render error")
)

// Category returns the sentinel error for an issue code. Unknown codes fall
// into ErrMalformedStructure.
func Category(code string) error {
	switch code {
	case CodeUnknownVariant:
		return ErrUnknownVariant
	case CodeInvalidIdentifier:
		return ErrInvalidIdentifier
	case CodeInvalidURL:
		return ErrInvalidURL
	case CodeInvalidDuration:
		return ErrInvalidDuration
	case CodeInvalidTimestamp:
		return ErrInvalidTimestamp
	case CodeRenderError:
		return ErrFormatRender
	default:
		return ErrMalformedStructure
	}
}

// Issue represents a single decode or encode failure.
type Issue struct {
	Path    string // JSON Pointer (for example: /gifts/2/price).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, offending input, format names.
	Cause   error  // Optional: underlying error.
	Offset  int64  // Byte offset in the input source (0 when unknown).
	// Params carries structured parameters (e.g., {"min":0, "got":-1}).
	Params map[string]any
}

// Issues is a collection of issues that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(iss), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_url at /stream/shard_url: missing host
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Hint != "" {
			fmt.Fprintf(b, ": %s", it.Hint)
		}
	}
	if n := len(iss); n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Is reports whether any issue belongs to the target category.
func (iss Issues) Is(target error) bool {
	for _, it := range iss {
		if Category(it.Code) == target {
			return true
		}
	}
	return false
}

// Codes returns the issue codes in order.
func (iss Issues) Codes() []string {
	out := make([]string, len(iss))
	for i, it := range iss {
		out[i] = it.Code
	}
	return out
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// ToIssues converts any error into Issues, wrapping foreign errors with
// CodeParseError at path.
func ToIssues(path string, err error) Issues {
	if err == nil {
		return nil
	}
	if iss, ok := AsIssues(err); ok {
		return iss
	}
	if path == "" {
		path = "/"
	}
	return Issues{{Path: path, Code: CodeParseError, Message: err.Error(), Cause: err}}
}
