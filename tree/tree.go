// Package tree defines the format-neutral value tree shared by every
// transcoder and by the schema layer.
//
// A tree value is one of:
//
//	*Record   ordered string-keyed record
//	[]any     ordered sequence
//	string, bool, int64, float64, nil
//	uint64    only for integers above math.MaxInt64
//
// Transcoders produce and consume exactly these shapes so schemas never see
// format-specific types (json.Number, yaml.Node, toml.LocalDate, ...).
package tree

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"time"
)

// Record is an ordered string-keyed record. Key order is insertion order.
// The zero value is an empty record ready to use.
type Record struct {
	keys []string
	vals map[string]any
}

// NewRecord returns an empty record with room for n keys.
func NewRecord(n int) *Record {
	return &Record{keys: make([]string, 0, n), vals: make(map[string]any, n)}
}

// Set stores v under k. A new key is appended; an existing key keeps its position.
func (r *Record) Set(k string, v any) {
	if r.vals == nil {
		r.vals = map[string]any{}
	}
	if _, ok := r.vals[k]; !ok {
		r.keys = append(r.keys, k)
	}
	r.vals[k] = v
}

// Get returns the value for k.
func (r *Record) Get(k string) (any, bool) {
	if r == nil || r.vals == nil {
		return nil, false
	}
	v, ok := r.vals[k]
	return v, ok
}

// Has reports whether k is present.
func (r *Record) Has(k string) bool {
	_, ok := r.Get(k)
	return ok
}

// Len returns the number of keys.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Keys returns a copy of the keys in order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.keys...)
}

// Range calls fn for each entry in order until fn returns false.
func (r *Record) Range(fn func(k string, v any) bool) {
	if r == nil {
		return
	}
	for _, k := range r.keys {
		if !fn(k, r.vals[k]) {
			return
		}
	}
}

// FromMap builds a record from m with keys in ascending order. Nested values
// are normalized.
func FromMap(m map[string]any) (*Record, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rec := NewRecord(len(keys))
	for _, k := range keys {
		v, err := Normalize(m[k])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		rec.Set(k, v)
	}
	return rec, nil
}

// Normalize converts decoder output (maps, typed slices, sized integers,
// time values) into tree shapes. Maps lose their order and are sorted by key.
func Normalize(v any) (any, error) {
	switch t := v.(type) {
	case nil, string, bool, int64, float64:
		return t, nil
	case []byte:
		return string(t), nil
	case *Record:
		out := NewRecord(t.Len())
		var err error
		t.Range(func(k string, val any) bool {
			var nv any
			nv, err = Normalize(val)
			if err != nil {
				err = fmt.Errorf("%s: %w", k, err)
				return false
			}
			out.Set(k, nv)
			return true
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	case map[string]any:
		return FromMap(t)
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string key %v (%T)", k, k)
			}
			m[ks] = val
		}
		return FromMap(m)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			ne, err := Normalize(e)
			if err != nil {
				return nil, fmt.Errorf("%d: %w", i, err)
			}
			out[i] = ne
		}
		return out, nil
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			ne, err := FromMap(e)
			if err != nil {
				return nil, fmt.Errorf("%d: %w", i, err)
			}
			out[i] = ne
		}
		return out, nil
	case int:
		return int64(t), nil
	case int8:
		return int64(t), nil
	case int16:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case uint:
		return fromUint(uint64(t)), nil
	case uint8:
		return int64(t), nil
	case uint16:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case uint64:
		return fromUint(t), nil
	case float32:
		return float64(t), nil
	case time.Time:
		return t.Format(time.RFC3339Nano), nil
	case fmt.Stringer:
		// go-toml local date/time values and similar textual scalars.
		return t.String(), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ne, err := Normalize(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("%d: %w", i, err)
			}
			out[i] = ne
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value %T", v)
}

func fromUint(u uint64) any {
	if u <= math.MaxInt64 {
		return int64(u)
	}
	return u
}

// Equal reports whether a and b are the same tree. Record key order is not
// significant; sequence order is.
func Equal(a, b any) bool {
	switch x := a.(type) {
	case *Record:
		y, ok := b.(*Record)
		if !ok || x.Len() != y.Len() {
			return false
		}
		eq := true
		x.Range(func(k string, v any) bool {
			w, ok := y.Get(k)
			if !ok || !Equal(v, w) {
				eq = false
			}
			return eq
		})
		return eq
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// ToMap converts records into map[string]any recursively. Sequences whose
// elements are all records become []map[string]any so that table-oriented
// encoders recognise them.
func ToMap(v any) any {
	switch t := v.(type) {
	case *Record:
		m := make(map[string]any, t.Len())
		t.Range(func(k string, val any) bool {
			m[k] = ToMap(val)
			return true
		})
		return m
	case []any:
		if len(t) > 0 && allRecords(t) {
			out := make([]map[string]any, len(t))
			for i, e := range t {
				out[i] = ToMap(e).(map[string]any)
			}
			return out
		}
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = ToMap(e)
		}
		return out
	default:
		return v
	}
}

func allRecords(s []any) bool {
	for _, e := range s {
		if _, ok := e.(*Record); !ok {
			return false
		}
	}
	return true
}

// Depth returns the nesting depth of v; scalars have depth 0.
func Depth(v any) int {
	switch t := v.(type) {
	case *Record:
		d := 0
		t.Range(func(_ string, val any) bool {
			if c := Depth(val); c > d {
				d = c
			}
			return true
		})
		return d + 1
	case []any:
		d := 0
		for _, e := range t {
			if c := Depth(e); c > d {
				d = c
			}
		}
		return d + 1
	default:
		return 0
	}
}
