package codec

import (
	"strconv"

	"github.com/google/uuid"

	transcode "github.com/reoring/transcode"
	js "github.com/reoring/transcode/jsonschema"
)

// canonicalUUIDLen is the length of the hyphenated 8-4-4-4-12 form.
const canonicalUUIDLen = 36

// UUID returns a Codec between the canonical hyphenated UUID text and
// uuid.UUID. Braced, URN and unhyphenated forms are rejected. Encode emits
// lowercase.
func UUID() transcode.Codec[string, uuid.UUID] {
	return &textCodec[uuid.UUID]{
		in: stringSchema(),
		out: valueSchema[uuid.UUID]{
			code:     transcode.CodeInvalidIdentifier,
			jsSchema: js.Schema{Type: "string", Format: "uuid"},
		},
		parse:  parseCanonicalUUID,
		format: func(u uuid.UUID) string { return u.String() },
	}
}

func parseCanonicalUUID(s string) (uuid.UUID, error) {
	if len(s) != canonicalUUIDLen {
		return uuid.Nil, fail(transcode.CodeInvalidIdentifier, "expected 36-character hyphenated uuid, got "+quote(s), nil)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fail(transcode.CodeInvalidIdentifier, err.Error(), err)
	}
	return u, nil
}

func quote(s string) string {
	const maxShown = 64
	if len(s) > maxShown {
		s = s[:maxShown] + "..."
	}
	return strconv.Quote(s)
}
