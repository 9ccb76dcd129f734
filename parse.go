package transcode

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/reoring/transcode/i18n"
	eng "github.com/reoring/transcode/internal/engine"
)

// ParseFrom is the primary JSON entry point. It builds a tree from the
// Source and delegates to the Schema. Nothing is returned on failure.
func ParseFrom[T any](ctx context.Context, s Schema[T], src Source, opts ...ParseOpt) (T, error) {
	var zero T
	if s == nil {
		return zero, Issues{NewIssue(CodeParseError, "nil schema", nil)}
	}
	opt := lastOpt(opts)
	if opt.FailFast {
		ctx = WithFailFast(ctx, true)
	}
	v, err := DecodeTree(src, opt)
	if err != nil {
		return zero, err
	}
	return s.Parse(ctx, v)
}

// DecodeTree consumes the Source and returns its tree value under the
// enforcement configured in opt. Errors are always Issues.
func DecodeTree(src Source, opt ParseOpt) (any, error) {
	var sink func(eng.SimpleIssue)
	if opt.OnWarning != nil {
		sink = func(si eng.SimpleIssue) {
			opt.OnWarning(Issue{Path: si.Path, Code: si.Code, Message: si.Message, Offset: src.Location()})
		}
	}
	enforced := eng.WrapWithEnforcement(engineTokenSource(src), eng.EnforceOptions{
		OnDuplicate: toEngineDup(opt.Strictness.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		MaxBytes:    opt.MaxBytes,
		IssueSink:   sink,
	})
	v, err := eng.DecodeTree(enforced)
	if err != nil {
		return nil, engineIssues(err, src.Location())
	}
	return v, nil
}

// ReadAll reads r completely, failing with CodeTruncated once more than
// maxBytes would be read. maxBytes <= 0 disables the cap.
func ReadAll(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, Issues{NewIssue(CodeParseError, err.Error(), err)}
		}
		return data, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, Issues{NewIssue(CodeParseError, err.Error(), err)}
	}
	if int64(len(data)) > maxBytes {
		return nil, Issues{NewIssue(CodeTruncated, fmt.Sprintf("document exceeds %d bytes", maxBytes), nil)}
	}
	return data, nil
}

// CheckSize fails with CodeTruncated when data is larger than maxBytes.
func CheckSize(data []byte, maxBytes int64) error {
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return Issues{NewIssue(CodeTruncated, fmt.Sprintf("document exceeds %d bytes", maxBytes), nil)}
	}
	return nil
}

// StreamParse reads a JSON document from r, enforcing MaxBytes up front, and
// parses it with s.
func StreamParse[T any](ctx context.Context, s Schema[T], r io.Reader, opts ...ParseOpt) (T, error) {
	data, err := ReadAll(r, lastOpt(opts).MaxBytes)
	if err != nil {
		var zero T
		return zero, err
	}
	return ParseFrom(ctx, s, JSONBytes(data), opts...)
}

func lastOpt(opts []ParseOpt) ParseOpt {
	if len(opts) == 0 {
		return ParseOpt{}
	}
	return opts[len(opts)-1]
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Warn:
		return eng.DupWarn
	case Error:
		return eng.DupError
	default:
		return eng.DupIgnore
	}
}

func engineIssues(err error, offset int64) Issues {
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return Issues{{Path: ie.Path, Code: ie.Code, Message: i18n.T(ie.Code, nil), Hint: ie.Message, Offset: offset}}
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return Issues{{Path: "/", Code: CodeParseError, Message: i18n.T(CodeParseError, nil), Hint: "unexpected end of input", Cause: err, Offset: offset}}
	}
	return Issues{{Path: "/", Code: CodeParseError, Message: i18n.T(CodeParseError, nil), Hint: err.Error(), Cause: err, Offset: offset}}
}
