package codec

import (
	"time"

	transcode "github.com/reoring/transcode"
	js "github.com/reoring/transcode/jsonschema"
)

// TimeRFC3339 returns a Codec that converts between RFC3339 strings and
// time.Time. Decoded instants are normalized to UTC; Encode always renders
// UTC with a trailing "Z". The zero instant decodes, but Encode rejects an
// unset time.Time.
func TimeRFC3339() transcode.Codec[string, time.Time] {
	return &textCodec[time.Time]{
		in: stringSchema(),
		out: valueSchema[time.Time]{
			code:     transcode.CodeInvalidTimestamp,
			jsSchema: js.Schema{Type: "string", Format: "date-time"},
		},
		parse:       parseRFC3339,
		format:      formatRFC3339Canonical,
		encodeCheck: rejectZeroTime,
	}
}

func rejectZeroTime(t time.Time) error {
	if t.IsZero() {
		return fail(transcode.CodeInvalidTimestamp, "zero time", nil)
	}
	return nil
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t2, err2 := time.Parse(time.RFC3339, s)
		if err2 != nil {
			return time.Time{}, fail(transcode.CodeInvalidTimestamp, "invalid RFC3339 time "+quote(s), err)
		}
		t = t2
	}
	return t.UTC(), nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}
