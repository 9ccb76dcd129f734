package codec

import (
	"net/url"
	"strings"

	transcode "github.com/reoring/transcode"
	js "github.com/reoring/transcode/jsonschema"
)

// URLOption configures the URL codec.
type URLOption func(*urlConfig)

type urlConfig struct {
	schemes map[string]struct{}
}

// URLSchemes restricts accepted URLs to the given schemes (case-insensitive).
func URLSchemes(schemes ...string) URLOption {
	return func(c *urlConfig) {
		c.schemes = make(map[string]struct{}, len(schemes))
		for _, s := range schemes {
			c.schemes[strings.ToLower(s)] = struct{}{}
		}
	}
}

// URL returns a Codec between absolute URL text and *url.URL. A URL must
// carry a scheme and, unless it is opaque (mailto:) or a file URL, a host.
// Scheme and host are lowercased; Encode renders the normalized form.
func URL(opts ...URLOption) transcode.Codec[string, *url.URL] {
	var cfg urlConfig
	for _, o := range opts {
		o(&cfg)
	}
	return &textCodec[*url.URL]{
		in: stringSchema(),
		out: valueSchema[*url.URL]{
			code:     transcode.CodeInvalidURL,
			check:    cfg.check,
			jsSchema: js.Schema{Type: "string", Format: "uri"},
		},
		parse: func(s string) (*url.URL, error) {
			u, err := url.Parse(strings.TrimSpace(s))
			if err != nil {
				return nil, fail(transcode.CodeInvalidURL, err.Error(), err)
			}
			u.Host = strings.ToLower(u.Host)
			if hint := cfg.check(u); hint != "" {
				return nil, fail(transcode.CodeInvalidURL, hint+": "+quote(s), nil)
			}
			return u, nil
		},
		format: func(u *url.URL) string { return u.String() },
	}
}

func (c urlConfig) check(u *url.URL) string {
	switch {
	case u == nil:
		return "nil url"
	case !u.IsAbs():
		return "url is not absolute"
	case u.Opaque == "" && u.Host == "" && u.Scheme != "file":
		return "url has no host"
	}
	if c.schemes != nil {
		if _, ok := c.schemes[u.Scheme]; !ok {
			return "unsupported scheme " + u.Scheme
		}
	}
	return ""
}
