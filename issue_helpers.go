package transcode

import "github.com/reoring/transcode/i18n"

// NewIssue creates a root-level issue whose message comes from the i18n catalogue.
func NewIssue(code, hint string, cause error) Issue {
	return Issue{Path: "/", Code: code, Message: i18n.T(code, nil), Hint: hint, Cause: cause}
}

// Rebase prefixes every issue path with base. A root path ("/" or "")
// becomes base itself.
func Rebase(base string, iss Issues) Issues {
	if base == "" || base == "/" {
		return iss
	}
	out := make(Issues, 0, len(iss))
	for _, it := range iss {
		switch p := it.Path; {
		case p == "" || p == "/":
			it.Path = base
		case p[0] == '/':
			it.Path = base + p
		default:
			it.Path = base + "/" + p
		}
		out = append(out, it)
	}
	return out
}
