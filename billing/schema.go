package billing

import (
	transcode "github.com/reoring/transcode"
	"github.com/reoring/transcode/codec"
	g "github.com/reoring/transcode/dsl"
)

// Option tunes the schemas built by this package.
type Option func(*options)

type options struct {
	unknown transcode.UnknownPolicy
}

// Strict makes every record schema reject undeclared keys with unknown_key.
// By default they are dropped.
func Strict() Option {
	return func(o *options) { o.unknown = transcode.UnknownStrict }
}

func build(opts []Option) options {
	o := options{unknown: transcode.UnknownStrip}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func duration() g.AnyAdapter { return g.SchemaOf(g.Codec(codec.Duration())) }

// UserSchema maps User.
func UserSchema(opts ...Option) transcode.Schema[User] {
	o := build(opts)
	return g.ObjectOf[User]().
		Field("name", g.StringOf[string]()).Required().
		Field("email", g.StringOf[string]()).Required().
		Field("birthdate", g.StringOf[string]()).Required().
		Unknown(o.unknown).
		MustBind()
}

// PublicTariffSchema maps PublicTariff.
func PublicTariffSchema(opts ...Option) transcode.Schema[PublicTariff] {
	o := build(opts)
	return g.ObjectOf[PublicTariff]().
		Field("id", g.Uint32Of[uint32]()).Required().
		Field("price", g.Uint32Of[uint32]()).Required().
		Field("duration", duration()).Required().
		Field("description", g.StringOf[string]()).Required().
		Unknown(o.unknown).
		MustBind()
}

// PrivateTariffSchema maps PrivateTariff.
func PrivateTariffSchema(opts ...Option) transcode.Schema[PrivateTariff] {
	o := build(opts)
	return g.ObjectOf[PrivateTariff]().
		Field("client_price", g.Uint32Of[uint32]()).Required().
		Field("duration", duration()).Required().
		Field("description", g.StringOf[string]()).Required().
		Unknown(o.unknown).
		MustBind()
}

// StreamSchema maps Stream. user_id must be a canonical UUID and shard_url
// an absolute URL with a host.
func StreamSchema(opts ...Option) transcode.Schema[Stream] {
	o := build(opts)
	return g.ObjectOf[Stream]().
		Field("user_id", g.SchemaOf(g.Codec(codec.UUID()))).Required().
		Field("is_private", g.BoolOf[bool]()).Required().
		Field("settings", g.Uint32Of[uint32]()).Required().
		Field("shard_url", g.SchemaOf(g.Codec(codec.URL()))).Required().
		Field("public_tariff", g.SchemaOf(PublicTariffSchema(opts...))).Required().
		Field("private_tariff", g.SchemaOf(PrivateTariffSchema(opts...))).Required().
		Unknown(o.unknown).
		MustBind()
}

// GiftSchema maps Gift.
func GiftSchema(opts ...Option) transcode.Schema[Gift] {
	o := build(opts)
	return g.ObjectOf[Gift]().
		Field("id", g.Uint32Of[uint32]()).Required().
		Field("price", g.Uint32Of[uint32]()).Required().
		Field("description", g.StringOf[string]()).Required().
		Unknown(o.unknown).
		MustBind()
}

// DebugSchema maps Debug.
func DebugSchema(opts ...Option) transcode.Schema[Debug] {
	o := build(opts)
	return g.ObjectOf[Debug]().
		Field("duration", duration()).Required().
		Field("at", g.SchemaOf(g.Codec(codec.TimeRFC3339()))).Required().
		Unknown(o.unknown).
		MustBind()
}

// RequestTypeSchema maps RequestType to "success" or "failure".
func RequestTypeSchema() transcode.Schema[RequestType] {
	return g.Enum(RequestSuccess, RequestFailure)
}

// RequestSchema maps Request.
func RequestSchema(opts ...Option) transcode.Schema[Request] {
	o := build(opts)
	return g.ObjectOf[Request]().
		Field("type", g.SchemaOf(RequestTypeSchema())).Required().
		Field("stream", g.SchemaOf(StreamSchema(opts...))).Required().
		Field("gifts", g.SchemaOf(g.Array(GiftSchema(opts...)))).Required().
		Field("debug", g.SchemaOf(DebugSchema(opts...))).Required().
		Unknown(o.unknown).
		MustBind()
}

// EventSchema maps Event. The date field gains a "Date: " prefix on encode
// and loses one leading occurrence on decode.
func EventSchema(opts ...Option) transcode.Schema[Event] {
	o := build(opts)
	return g.ObjectOf[Event]().
		Field("name", g.StringOf[string]()).Required().
		Field("date", g.SchemaOf(g.Codec(codec.Prefix(codec.DatePrefix)))).Required().
		Unknown(o.unknown).
		MustBind()
}
