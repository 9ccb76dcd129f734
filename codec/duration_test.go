package codec_test

import (
	"context"
	"errors"
	"testing"
	"time"

	transcode "github.com/reoring/transcode"
	"github.com/reoring/transcode/codec"
)

func TestDuration_Decode_Forms(t *testing.T) {
	ctx := context.Background()
	c := codec.Duration()
	cases := map[string]time.Duration{
		"45s":        45 * time.Second,
		"1h30m":      90 * time.Minute,
		"1h 30m":     90 * time.Minute,
		"2 days":     48 * time.Hour,
		"1w":         7 * 24 * time.Hour,
		"500ms":      500 * time.Millisecond,
		"3us":        3 * time.Microsecond,
		"3µs":        3 * time.Microsecond,
		"10ns":       10,
		"0s":         0,
		"2 Hours 5m": 2*time.Hour + 5*time.Minute,
		"1month":     2630016 * time.Second,
		"1M":         2630016 * time.Second,
		"1M 1m":      2630016*time.Second + time.Minute,
		"2y":         2 * 31557600 * time.Second,
		"1 Year":     31557600 * time.Second,
	}
	for in, want := range cases {
		got, err := c.Decode(ctx, in)
		if err != nil {
			t.Fatalf("decode %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("decode %q: got %v want %v", in, got, want)
		}
	}
}

func TestDuration_Decode_Invalid(t *testing.T) {
	ctx := context.Background()
	c := codec.Duration()
	for _, in := range []string{"", "   ", "-5s", "5", "s", "5 fortnights", "1h30", "99999999999999999999s", "9999999999999h"} {
		_, err := c.Decode(ctx, in)
		if err == nil {
			t.Fatalf("expected error for %q", in)
		}
		if !errors.Is(err, transcode.ErrInvalidDuration) {
			t.Fatalf("%q: expected ErrInvalidDuration, got %v", in, err)
		}
	}
}

func TestDuration_Encode_Canonical(t *testing.T) {
	ctx := context.Background()
	c := codec.Duration()
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{45 * time.Second, "45s"},
		{90 * time.Minute, "1h30m"},
		{48 * time.Hour, "48h"},
		{time.Minute + 500*time.Millisecond, "1m500ms"},
		{time.Hour + time.Second + time.Nanosecond, "1h1s1ns"},
	}
	for _, tc := range cases {
		got, err := c.Encode(ctx, tc.in)
		if err != nil {
			t.Fatalf("encode %v: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("encode %v: got %q want %q", tc.in, got, tc.want)
		}
	}
	if _, err := c.Encode(ctx, -time.Second); !errors.Is(err, transcode.ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration for negative, got %v", err)
	}
}

func TestDuration_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := codec.Duration()
	for _, in := range []string{"2 days", "1h 30m", "1w 2d 3h", "7ms"} {
		d, err := c.Decode(ctx, in)
		if err != nil {
			t.Fatalf("decode %q: %v", in, err)
		}
		s, err := c.Encode(ctx, d)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		d2, err := c.Decode(ctx, s)
		if err != nil || d2 != d {
			t.Fatalf("round trip %q -> %q -> %v (err=%v)", in, s, d2, err)
		}
	}
}
