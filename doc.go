// Package transcode provides:
//
// - Typed decode/encode between a format-neutral value tree and Go values via Schema/Codec
// - A stable error model via Issues (JSON Pointer, code, message) grouped into categories
// - JSON Source parsing with duplicate-key/depth/size enforcement
//
// Design policy:
// - Keep only public APIs in the root package; put detailed implementations under internal/.
// - Place the schema DSL under dsl/, codecs under codec/, transcoders under format/,
//   the billing domain under billing/ and the CLI under cmd/transcode.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	s := billing.RequestSchema()
//	req, err := transcode.ParseFrom(ctx, s, transcode.JSONBytes(data))
//
//	t, _ := format.Lookup("toml")
//	out, err := format.Encode(ctx, t, s, req)
package transcode
