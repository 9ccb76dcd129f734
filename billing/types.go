// Package billing holds the streaming/billing request envelope and the
// schemas that map it to and from the format-neutral value tree.
package billing

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	transcode "github.com/reoring/transcode"
)

// User is a free-form account record.
type User struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Birthdate string `json:"birthdate"`
}

// PublicTariff is the tariff advertised to every viewer of a stream.
type PublicTariff struct {
	ID          uint32        `json:"id"`
	Price       uint32        `json:"price"`
	Duration    time.Duration `json:"duration"`
	Description string        `json:"description"`
}

// PrivateTariff is the per-client tariff of a private stream.
type PrivateTariff struct {
	ClientPrice uint32        `json:"client_price"`
	Duration    time.Duration `json:"duration"`
	Description string        `json:"description"`
}

// Stream describes a user's stream and where it is served from.
type Stream struct {
	UserID        uuid.UUID     `json:"user_id"`
	IsPrivate     bool          `json:"is_private"`
	Settings      uint32        `json:"settings"` // opaque bitmask
	ShardURL      *url.URL      `json:"shard_url"`
	PublicTariff  PublicTariff  `json:"public_tariff"`
	PrivateTariff PrivateTariff `json:"private_tariff"`
}

// Gift is a paid item attached to a request.
type Gift struct {
	ID          uint32 `json:"id"`
	Price       uint32 `json:"price"`
	Description string `json:"description"`
}

// Debug carries timing metadata of the request.
type Debug struct {
	Duration time.Duration `json:"duration"`
	At       time.Time     `json:"at"`
}

// RequestType is the outcome discriminant of a Request.
type RequestType int

const (
	RequestSuccess RequestType = iota + 1
	RequestFailure
)

func (t RequestType) String() string {
	switch t {
	case RequestSuccess:
		return "success"
	case RequestFailure:
		return "failure"
	default:
		return fmt.Sprintf("RequestType(%d)", int(t))
	}
}

// ParseRequestType maps a wire tag to a RequestType.
func ParseRequestType(s string) (RequestType, error) {
	switch s {
	case "success":
		return RequestSuccess, nil
	case "failure":
		return RequestFailure, nil
	default:
		return 0, fmt.Errorf("request type %q: %w", s, transcode.ErrUnknownVariant)
	}
}

// Request is the top-level envelope.
type Request struct {
	Type   RequestType `json:"type"`
	Stream Stream      `json:"stream"`
	Gifts  []Gift      `json:"gifts"`
	Debug  Debug       `json:"debug"`
}

// Event is a named occurrence whose date carries a "Date: " tag on the wire.
type Event struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

// Equal reports whether r and o hold the same values. URLs compare by their
// canonical string and instants by time.Time.Equal.
func (r Request) Equal(o Request) bool {
	if r.Type != o.Type || !r.Stream.Equal(o.Stream) || !r.Debug.Equal(o.Debug) {
		return false
	}
	if len(r.Gifts) != len(o.Gifts) {
		return false
	}
	for i := range r.Gifts {
		if r.Gifts[i] != o.Gifts[i] {
			return false
		}
	}
	return true
}

// Equal reports whether s and o hold the same values.
func (s Stream) Equal(o Stream) bool {
	return s.UserID == o.UserID &&
		s.IsPrivate == o.IsPrivate &&
		s.Settings == o.Settings &&
		urlString(s.ShardURL) == urlString(o.ShardURL) &&
		s.PublicTariff == o.PublicTariff &&
		s.PrivateTariff == o.PrivateTariff
}

// Equal reports whether d and o hold the same values.
func (d Debug) Equal(o Debug) bool {
	return d.Duration == o.Duration && d.At.Equal(o.At)
}

func urlString(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.String()
}
