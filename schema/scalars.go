package schema

import (
	"github.com/99designs/gqlgen/graphql"

	"github.com/the-devoyage/subgraph-go/value"
)

// MarshalJSONScalar adapts an Object-kind Intermediate Value to the "JSON"
// scalar added to the synthesized schema for a ScalarObject field with no
// declared nested Fields (see addJSONScalar): an opaque document rather
// than a structured type. It hands off to gqlgen's own Map scalar, the
// same target the teacher's contrib/graphql.InjectVeloxBindings points its
// "JSON" custom scalar at.
func MarshalJSONScalar(v value.Value) graphql.Marshaler {
	obj, ok := v.ObjectValue()
	if !ok {
		return graphql.Null
	}
	m := make(map[string]any, len(obj))
	for k, fv := range obj {
		m[k] = fv.Native()
	}
	return graphql.MarshalMap(m)
}

// UnmarshalJSONScalar parses a client-supplied JSON scalar argument back
// into a plain map so the Scalar Codec can coerce it field by field.
func UnmarshalJSONScalar(v any) (map[string]any, error) {
	return graphql.UnmarshalMap(v)
}
