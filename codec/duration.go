package codec

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	transcode "github.com/reoring/transcode"
	js "github.com/reoring/transcode/jsonschema"
)

// Duration returns a Codec that converts between human-readable elapsed-time
// strings ("45s", "1h30m", "2 days", "1M") and time.Duration. "M" is a month
// while "m" is a minute.
//
// Encode always emits the compact canonical form: non-zero components in
// h, m, s, ms, us, ns order ("1h30m", "1m500ms"), or "0s".
func Duration() transcode.Codec[string, time.Duration] {
	return &textCodec[time.Duration]{
		in: stringSchema(),
		out: valueSchema[time.Duration]{
			code: transcode.CodeInvalidDuration,
			check: func(d time.Duration) string {
				if d < 0 {
					return "negative duration"
				}
				return ""
			},
			jsSchema: js.Schema{Type: "string", Format: "duration", Pattern: `^(\d+\s*[a-zA-Zµμ]+\s*)+$`},
		},
		parse:  parseHumanDuration,
		format: formatHumanDuration,
	}
}

var durationUnits = map[string]time.Duration{
	"ns": time.Nanosecond, "nsec": time.Nanosecond, "nanos": time.Nanosecond,
	"us": time.Microsecond, "µs": time.Microsecond, "μs": time.Microsecond, "usec": time.Microsecond,
	"ms": time.Millisecond, "msec": time.Millisecond, "millis": time.Millisecond,
	"s": time.Second, "sec": time.Second, "secs": time.Second, "second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hrs": time.Hour, "hour": time.Hour, "hours": time.Hour,
	"d": 24 * time.Hour, "day": 24 * time.Hour, "days": 24 * time.Hour,
	"w": 7 * 24 * time.Hour, "week": 7 * 24 * time.Hour, "weeks": 7 * 24 * time.Hour,
	"M": month, "month": month, "months": month,
	"y": year, "year": year, "years": year,
}

// A month is 30.44 days and a year is 365.25 days.
const (
	month = 2630016 * time.Second
	year  = 31557600 * time.Second
)

func parseHumanDuration(s string) (time.Duration, error) {
	in := strings.TrimSpace(s)
	if in == "" {
		return 0, fail(transcode.CodeInvalidDuration, "empty duration", nil)
	}
	if in[0] == '-' {
		return 0, fail(transcode.CodeInvalidDuration, "negative duration "+strconv.Quote(s), nil)
	}
	var total time.Duration
	rs := []rune(in)
	for i := 0; i < len(rs); {
		for i < len(rs) && unicode.IsSpace(rs[i]) {
			i++
		}
		start := i
		for i < len(rs) && rs[i] >= '0' && rs[i] <= '9' {
			i++
		}
		if start == i {
			return 0, fail(transcode.CodeInvalidDuration, "expected number in "+strconv.Quote(s), nil)
		}
		n, err := strconv.ParseInt(string(rs[start:i]), 10, 64)
		if err != nil {
			return 0, fail(transcode.CodeInvalidDuration, "number too large in "+strconv.Quote(s), err)
		}
		for i < len(rs) && unicode.IsSpace(rs[i]) {
			i++
		}
		ustart := i
		for i < len(rs) && unicode.IsLetter(rs[i]) {
			i++
		}
		if ustart == i {
			return 0, fail(transcode.CodeInvalidDuration, "missing unit in "+strconv.Quote(s), nil)
		}
		word := string(rs[ustart:i])
		unit, ok := durationUnits[word]
		if !ok {
			// "M" is months; every other unit is case-insensitive.
			unit, ok = durationUnits[strings.ToLower(word)]
		}
		if !ok {
			return 0, fail(transcode.CodeInvalidDuration, "unknown unit "+strconv.Quote(string(rs[ustart:i])), nil)
		}
		if n > math.MaxInt64/int64(unit) || total > math.MaxInt64-time.Duration(n)*unit {
			return 0, fail(transcode.CodeInvalidDuration, "duration overflows in "+strconv.Quote(s), nil)
		}
		total += time.Duration(n) * unit
	}
	return total, nil
}

var canonicalUnits = []struct {
	unit   time.Duration
	suffix string
}{
	{time.Hour, "h"},
	{time.Minute, "m"},
	{time.Second, "s"},
	{time.Millisecond, "ms"},
	{time.Microsecond, "us"},
	{time.Nanosecond, "ns"},
}

func formatHumanDuration(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	var b strings.Builder
	for _, u := range canonicalUnits {
		if n := d / u.unit; n > 0 {
			b.WriteString(strconv.FormatInt(int64(n), 10))
			b.WriteString(u.suffix)
			d -= n * u.unit
		}
	}
	return b.String()
}
