// Package scalar implements the request-side half of the Scalar Codec
// described in spec.md §4.5: coercing a raw, backend-agnostic input value
// (as received in a predicate's query document or a mutation's values
// document) into the Intermediate Value of the scalar a config.Field
// declares. The response-side half — SQL column-type maps, Mongo document
// accessors, HTTP JSON decoding — is backend-specific and lives in each of
// dialect/sql, dialect/document, dialect/httpds, since spec.md §4.5
// describes those three independently.
package scalar

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	subgraph "github.com/the-devoyage/subgraph-go"
	"github.com/the-devoyage/subgraph-go/config"
	"github.com/the-devoyage/subgraph-go/value"
)

// CoerceRequestValue converts a raw value decoded from a client request
// (typically a JSON/YAML-shaped map[string]any) into the Value of the
// scalar entity.field declares. A nil raw always coerces to value.Null(),
// regardless of scalar. List-typed fields expect raw to be a []any whose
// elements each coerce to the field's base scalar.
func CoerceRequestValue(entity string, field config.Field, raw any) (value.Value, error) {
	if raw == nil {
		return value.Null(), nil
	}
	if field.List {
		elems, ok := raw.([]any)
		if !ok {
			return value.Value{}, subgraph.NewTypeMismatchError(entity, field.Name, field.Scalar, "expected a list")
		}
		out := make([]value.Value, len(elems))
		for i, e := range elems {
			v, err := coerceScalar(entity, field, e)
			if err != nil {
				return value.Value{}, err
			}
			out[i] = v
		}
		return value.List(out), nil
	}
	return coerceScalar(entity, field, raw)
}

func coerceScalar(entity string, field config.Field, raw any) (value.Value, error) {
	switch field.Scalar {
	case config.ScalarString, config.ScalarEnum:
		s, ok := raw.(string)
		if !ok {
			return value.Value{}, mismatch(entity, field, raw, "expected a string")
		}
		return value.String(s), nil
	case config.ScalarInt:
		i, ok := asInt64(raw)
		if !ok {
			return value.Value{}, mismatch(entity, field, raw, "expected an integer")
		}
		return value.Int64(i), nil
	case config.ScalarBoolean:
		b, ok := raw.(bool)
		if !ok {
			return value.Value{}, mismatch(entity, field, raw, "expected a boolean")
		}
		return value.Bool(b), nil
	case config.ScalarObjectID:
		s, ok := raw.(string)
		if !ok || s == "" {
			return value.Value{}, mismatch(entity, field, raw, "expected a non-empty object id string")
		}
		return value.ObjectID(s), nil
	case config.ScalarUUID:
		s, ok := raw.(string)
		if !ok {
			return value.Value{}, mismatch(entity, field, raw, "expected a uuid string")
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return value.Value{}, mismatch(entity, field, raw, "not a valid uuid: "+err.Error())
		}
		return value.UUID(id), nil
	case config.ScalarDateTime:
		switch t := raw.(type) {
		case time.Time:
			return value.DateTime(t), nil
		case string:
			parsed, err := time.Parse(time.RFC3339, t)
			if err != nil {
				return value.Value{}, mismatch(entity, field, raw, "not a valid RFC3339 timestamp: "+err.Error())
			}
			return value.DateTime(parsed), nil
		default:
			return value.Value{}, mismatch(entity, field, raw, "expected an RFC3339 timestamp string")
		}
	case config.ScalarObject:
		m, ok := raw.(map[string]any)
		if !ok {
			return value.Value{}, mismatch(entity, field, raw, "expected an object")
		}
		if len(field.Fields) == 0 {
			// Opaque document (the schema's synthesized JSON scalar, see
			// schema/scalars.go): no declared shape to coerce against, so
			// every key passes through as its JSON-decoded native type.
			out := make(map[string]value.Value, len(m))
			for k, v := range m {
				out[k] = fromNative(v)
			}
			return value.Object(out), nil
		}
		out := make(map[string]value.Value, len(field.Fields))
		for _, nested := range field.Fields {
			v, ok := m[nested.Name]
			if !ok {
				continue
			}
			cv, err := CoerceRequestValue(entity, nested, v)
			if err != nil {
				return value.Value{}, err
			}
			out[nested.Name] = cv
		}
		return value.Object(out), nil
	default:
		return value.Value{}, subgraph.NewTypeMismatchError(entity, field.Name, field.Scalar, fmt.Sprintf("unknown scalar %q", field.Scalar))
	}
}

// fromNative converts an arbitrary JSON/YAML-decoded value into a Value
// with no declared scalar to coerce against, for a ScalarObject field with
// no declared nested Fields (an opaque document).
func fromNative(raw any) value.Value {
	switch v := raw.(type) {
	case nil:
		return value.Null()
	case bool:
		return value.Bool(v)
	case string:
		return value.String(v)
	case int:
		return value.Int64(int64(v))
	case int32:
		return value.Int64(int64(v))
	case int64:
		return value.Int64(v)
	case float32:
		return value.Float64(float64(v))
	case float64:
		return value.Float64(v)
	case []any:
		out := make([]value.Value, len(v))
		for i, e := range v {
			out[i] = fromNative(e)
		}
		return value.List(out)
	case map[string]any:
		out := make(map[string]value.Value, len(v))
		for k, e := range v {
			out[k] = fromNative(e)
		}
		return value.Object(out)
	default:
		return value.String(fmt.Sprintf("%v", v))
	}
}

func mismatch(entity string, field config.Field, raw any, reason string) error {
	return subgraph.NewTypeMismatchError(entity, field.Name, field.Scalar, fmt.Sprintf("%s (got %T)", reason, raw))
}

// asInt64 accepts the numeric shapes a YAML or JSON decoder commonly
// produces for an integral value.
func asInt64(raw any) (int64, bool) {
	switch n := raw.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
		return 0, false
	case float32:
		if float64(n) == float64(int64(n)) {
			return int64(n), true
		}
		return 0, false
	default:
		return 0, false
	}
}
