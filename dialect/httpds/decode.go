package httpds

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	subgraph "github.com/the-devoyage/subgraph-go"
	"github.com/the-devoyage/subgraph-go/config"
	"github.com/the-devoyage/subgraph-go/value"
)

// DecodeResponse implements the HTTP half of the Scalar Codec (spec.md
// §4.5): the response body is parsed as JSON, and each declared field is
// looked up by name and coerced into its scalar. A missing key or a JSON
// null both resolve to Null unless the field is required, in which case
// that is a FieldResolutionError.
func DecodeResponse(entity config.Entity, body []byte) (map[string]value.Value, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, subgraph.NewFieldResolutionError(entity.Name, "", "invalid JSON response: "+err.Error())
	}
	return decodeFields(entity.Name, entity.Fields, raw)
}

// DecodeResponseList decodes a JSON array response body, one element per
// row, for the FindMany shape of spec.md §6.
func DecodeResponseList(entity config.Entity, body []byte) ([]map[string]value.Value, error) {
	var raw []map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, subgraph.NewFieldResolutionError(entity.Name, "", "invalid JSON array response: "+err.Error())
	}
	rows := make([]map[string]value.Value, len(raw))
	for i, doc := range raw {
		row, err := decodeFields(entity.Name, entity.Fields, doc)
		if err != nil {
			return nil, err
		}
		rows[i] = row
	}
	return rows, nil
}

func decodeFields(entityName string, fields []config.Field, raw map[string]any) (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(fields))
	for _, f := range fields {
		jv, present := raw[f.Name]
		if !present || jv == nil {
			if f.Required {
				return nil, subgraph.NewFieldResolutionError(entityName, f.Name, "required field missing or null in response")
			}
			out[f.Name] = value.Null()
			continue
		}
		v, err := decodeLeaf(entityName, f, jv)
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}
	return out, nil
}

func decodeLeaf(entityName string, f config.Field, jv any) (value.Value, error) {
	if f.List {
		elems, ok := jv.([]any)
		if !ok {
			return value.Value{}, subgraph.NewFieldResolutionError(entityName, f.Name, "expected a JSON array")
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
	return decodeScalar(entityName, f, jv)
}

func decodeScalar(entityName string, f config.Field, jv any) (value.Value, error) {
	switch f.Scalar {
	case config.ScalarString, config.ScalarEnum:
		s, ok := jv.(string)
		if !ok {
			return value.Value{}, subgraph.NewFieldResolutionError(entityName, f.Name, "expected a JSON string")
		}
		return value.String(s), nil
	case config.ScalarInt:
		n, ok := jv.(float64)
		if !ok {
			return value.Value{}, subgraph.NewFieldResolutionError(entityName, f.Name, "expected a JSON number")
		}
		return value.Int64(int64(n)), nil
	case config.ScalarBoolean:
		b, ok := jv.(bool)
		if !ok {
			return value.Value{}, subgraph.NewFieldResolutionError(entityName, f.Name, "expected a JSON boolean")
		}
		return value.Bool(b), nil
	case config.ScalarObjectID:
		s, ok := jv.(string)
		if !ok {
			return value.Value{}, subgraph.NewFieldResolutionError(entityName, f.Name, "expected an object id string")
		}
		return value.ObjectID(s), nil
	case config.ScalarUUID:
		s, ok := jv.(string)
		if !ok {
			return value.Value{}, subgraph.NewFieldResolutionError(entityName, f.Name, "expected a uuid string")
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return value.Value{}, subgraph.NewFieldResolutionError(entityName, f.Name, "invalid uuid: "+err.Error())
		}
		return value.UUID(id), nil
	case config.ScalarDateTime:
		s, ok := jv.(string)
		if !ok {
			return value.Value{}, subgraph.NewFieldResolutionError(entityName, f.Name, "expected an RFC3339 timestamp string")
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return value.Value{}, subgraph.NewFieldResolutionError(entityName, f.Name, "invalid timestamp: "+err.Error())
		}
		return value.DateTime(t), nil
	case config.ScalarObject:
		m, ok := jv.(map[string]any)
		if !ok {
			return value.Value{}, subgraph.NewFieldResolutionError(entityName, f.Name, "expected a JSON object")
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
