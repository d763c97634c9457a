package document

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	subgraph "github.com/the-devoyage/subgraph-go"
	"github.com/the-devoyage/subgraph-go/config"
	"github.com/the-devoyage/subgraph-go/value"
)

// DecodeDocument implements the document half of the Scalar Codec (spec.md
// §4.5): documents expose typed accessors per scalar, and ObjectID values
// (which may already be a primitive.ObjectID, or a hex string coming back
// through a projection) are coerced via the hex parser.
func DecodeDocument(entity config.Entity, doc bson.M) (map[string]value.Value, error) {
	return decodeFields(entity.Name, entity.Fields, doc)
}

func decodeFields(entityName string, fields []config.Field, doc bson.M) (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(fields))
	for _, f := range fields {
		raw, present := doc[f.Name]
		if !present || raw == nil {
			out[f.Name] = value.Null()
			continue
		}
		v, err := decodeLeaf(entityName, f, raw)
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}
	return out, nil
}

func decodeLeaf(entityName string, f config.Field, raw any) (value.Value, error) {
	if f.List {
		elems, ok := toSlice(raw)
		if !ok {
			return value.Value{}, subgraph.NewFieldResolutionError(entityName, f.Name, "expected a list")
		}
		out := make([]value.Value, len(elems))
		for i, e := range elems {
			v, err := decodeScalar(entityName, f, e)
			if err != nil {
				return value.Value{}, err
			}
			out[i] = v
		}
		return value.List(out), nil
	}
	return decodeScalar(entityName, f, raw)
}

func toSlice(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case bson.A:
		return []any(v), true
	case []any:
		return v, true
	default:
		return nil, false
	}
}

func decodeScalar(entityName string, f config.Field, raw any) (value.Value, error) {
	switch f.Scalar {
	case config.ScalarObjectID:
		switch id := raw.(type) {
		case primitive.ObjectID:
			return value.ObjectID(id.Hex()), nil
		case string:
			parsed, err := primitive.ObjectIDFromHex(id)
			if err != nil {
				return value.Value{}, subgraph.NewTypeMismatchError(entityName, f.Name, f.Scalar, "not a valid object id: "+err.Error())
			}
			return value.ObjectID(parsed.Hex()), nil
		default:
			return value.Value{}, subgraph.NewFieldResolutionError(entityName, f.Name, "expected an object id")
		}
	case config.ScalarString, config.ScalarEnum:
		s, ok := raw.(string)
		if !ok {
			return value.Value{}, subgraph.NewFieldResolutionError(entityName, f.Name, "expected a string")
		}
		return value.String(s), nil
	case config.ScalarUUID:
		s, ok := raw.(string)
		if !ok {
			return value.Value{}, subgraph.NewFieldResolutionError(entityName, f.Name, "expected a uuid string")
		}
		return value.String(s), nil
	case config.ScalarBoolean:
		b, ok := raw.(bool)
		if !ok {
			return value.Value{}, subgraph.NewFieldResolutionError(entityName, f.Name, "expected a boolean")
		}
		return value.Bool(b), nil
	case config.ScalarInt:
		i, ok := asInt64(raw)
		if !ok {
			return value.Value{}, subgraph.NewFieldResolutionError(entityName, f.Name, "expected an integer")
		}
		return value.Int64(i), nil
	case config.ScalarDateTime:
		t, ok := raw.(primitive.DateTime)
		if ok {
			return value.DateTime(t.Time()), nil
		}
		return value.Value{}, subgraph.NewFieldResolutionError(entityName, f.Name, "expected a date")
	case config.ScalarObject:
		m, ok := raw.(bson.M)
		if !ok {
			if mm, ok2 := raw.(map[string]any); ok2 {
				m = bson.M(mm)
			} else {
				return value.Value{}, subgraph.NewFieldResolutionError(entityName, f.Name, "expected an object")
			}
		}
		nested, err := decodeFields(entityName, f.Fields, m)
		if err != nil {
			return value.Value{}, err
		}
		return value.Object(nested), nil
	default:
		return value.Value{}, subgraph.NewFieldResolutionError(entityName, f.Name, "unknown scalar")
	}
}

func asInt64(raw any) (int64, bool) {
	switch n := raw.(type) {
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
