// Package dsl provides a small declarative schema builder for transcode.
//
// A record schema is a table of (wire key, field adapter, required) entries
// bound to a Go struct:
//
//	type Gift struct {
//	    ID          uint32 `json:"id"`
//	    Price       uint32 `json:"price"`
//	    Description string `json:"description"`
//	}
//
//	gift := dsl.ObjectOf[Gift]().
//	    Field("id", dsl.Uint32Of[uint32]()).Required().
//	    Field("price", dsl.Uint32Of[uint32]()).Required().
//	    Field("description", dsl.StringOf[string]()).Required().
//	    MustBind()
//
// Keys are matched to struct fields by transcode.ResolveStructKey. Fields
// keep declaration order on Encode; optional fields holding their zero value
// are omitted. Unknown keys are rejected unless UnknownStrip is set.
//
// Codec wraps a transcode.Codec as a Schema so a field can carry a wire
// transform (durations, UUIDs, prefixed text). Issues raised below a field
// are rebased under the field's JSON Pointer.
package dsl
