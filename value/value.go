// Package value implements the intermediate representation that bridges
// SQL rows, document-store documents, and HTTP JSON bodies. Every backend
// decoder in this repository produces a Value and every backend encoder
// consumes one; nothing above the dialect packages ever touches a
// database/sql.Rows, a bson.M, or a json.RawMessage directly.
package value

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies which variant of the Value sum type is populated.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt64
	KindFloat64
	KindString
	KindObjectID
	KindUUID
	KindDateTime
	KindBytes
	KindList
	KindObject
)

// String returns the human-readable name of the kind, used in error
// messages (TypeMismatch, UnsupportedColumnType).
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindObjectID:
		return "object_id"
	case KindUUID:
		return "uuid"
	case KindDateTime:
		return "date_time"
	case KindBytes:
		return "bytes"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is the closed sum type described in spec.md §3: Null | Bool |
// Int64 | Float64 | String | ObjectId | Uuid | DateTime | Bytes |
// List(Value) | Object(map<String,Value>).
//
// Zero value is Null. Values are immutable once constructed; List and
// Object are never mutated in place by any compiler or codec in this
// repository.
type Value struct {
	kind   Kind
	b      bool
	i      int64
	f      float64
	s      string
	t      time.Time
	bytes  []byte
	list   []Value
	object map[string]Value
}

// Null returns the Null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a Bool value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int64 returns an Int64 value.
func Int64(i int64) Value { return Value{kind: KindInt64, i: i} }

// Float64 returns a Float64 value.
func Float64(f float64) Value { return Value{kind: KindFloat64, f: f} }

// String returns a String value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// ObjectID returns an ObjectID value. The hex-string id is kept as the
// canonical string form; backend codecs are responsible for parsing it
// into their native id type (e.g. primitive.ObjectID for the document
// store) and for coercing raw ids back into this form on decode.
func ObjectID(hex string) Value { return Value{kind: KindObjectID, s: hex} }

// UUID returns a Uuid value.
func UUID(id uuid.UUID) Value { return Value{kind: KindUUID, s: id.String()} }

// DateTime returns a DateTime value.
func DateTime(t time.Time) Value { return Value{kind: KindDateTime, t: t} }

// Bytes returns a Bytes value.
func Bytes(b []byte) Value { return Value{kind: KindBytes, bytes: b} }

// List returns a List value. A nil or empty slice still carries KindList
// (distinct from Null) so list-typed fields round-trip an empty IN/$in
// clause correctly.
func List(vs []Value) Value { return Value{kind: KindList, list: vs} }

// Object returns an Object value.
func Object(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{kind: KindObject, object: m}
}

// Kind reports which variant is populated.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean and whether v is a Bool.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// Int64 returns the integer and whether v is an Int64.
func (v Value) Int64() (int64, bool) { return v.i, v.kind == KindInt64 }

// Float64 returns the float and whether v is a Float64.
func (v Value) Float64() (float64, bool) { return v.f, v.kind == KindFloat64 }

// String returns the string and whether v is a String, ObjectID, or Uuid
// (all three are string-backed on the wire).
func (v Value) String() (string, bool) {
	switch v.kind {
	case KindString, KindObjectID, KindUUID:
		return v.s, true
	default:
		return "", false
	}
}

// Time returns the time and whether v is a DateTime.
func (v Value) Time() (time.Time, bool) { return v.t, v.kind == KindDateTime }

// BytesValue returns the bytes and whether v is Bytes.
func (v Value) BytesValue() ([]byte, bool) { return v.bytes, v.kind == KindBytes }

// ListValue returns the elements and whether v is a List.
func (v Value) ListValue() ([]Value, bool) { return v.list, v.kind == KindList }

// ObjectValue returns the fields and whether v is an Object.
func (v Value) ObjectValue() (map[string]Value, bool) { return v.object, v.kind == KindObject }

// Native returns the closest Go native representation of v, for passing to
// a database/sql driver bind slot or a bson document, with no interpretation
// of scalar kind beyond unwrapping the sum type.
func (v Value) Native() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt64:
		return v.i
	case KindFloat64:
		return v.f
	case KindString, KindObjectID, KindUUID:
		return v.s
	case KindDateTime:
		return v.t
	case KindBytes:
		return v.bytes
	case KindList:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = e.Native()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.object))
		for k, e := range v.object {
			out[k] = e.Native()
		}
		return out
	default:
		return nil
	}
}

// Equal reports whether v and other represent the same value: same Kind
// and same content, with DateTime compared by instant and List/Object
// compared element by element.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt64:
		return v.i == other.i
	case KindFloat64:
		return v.f == other.f
	case KindString, KindObjectID, KindUUID:
		return v.s == other.s
	case KindDateTime:
		return v.t.Equal(other.t)
	case KindBytes:
		return string(v.bytes) == string(other.bytes)
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.object) != len(other.object) {
			return false
		}
		for k, e := range v.object {
			oe, ok := other.object[k]
			if !ok || !e.Equal(oe) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
