package scalar

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-devoyage/subgraph-go/config"
)

func TestCoerceRequestValue_NilAlwaysNull(t *testing.T) {
	v, err := CoerceRequestValue("car", config.Field{Name: "make", Scalar: config.ScalarString}, nil)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestCoerceRequestValue_ScalarKinds(t *testing.T) {
	s, err := CoerceRequestValue("car", config.Field{Name: "make", Scalar: config.ScalarString}, "civic")
	require.NoError(t, err)
	got, _ := s.String()
	assert.Equal(t, "civic", got)

	i, err := CoerceRequestValue("car", config.Field{Name: "year", Scalar: config.ScalarInt}, float64(2024))
	require.NoError(t, err)
	gi, _ := i.Int64()
	assert.Equal(t, int64(2024), gi)

	b, err := CoerceRequestValue("car", config.Field{Name: "used", Scalar: config.ScalarBoolean}, true)
	require.NoError(t, err)
	gb, _ := b.Bool()
	assert.True(t, gb)

	id := uuid.New()
	u, err := CoerceRequestValue("car", config.Field{Name: "id", Scalar: config.ScalarUUID}, id.String())
	require.NoError(t, err)
	assert.Equal(t, id.String(), u.Native())

	ts := time.Now().UTC().Truncate(time.Second)
	dt, err := CoerceRequestValue("car", config.Field{Name: "built_at", Scalar: config.ScalarDateTime}, ts.Format(time.RFC3339))
	require.NoError(t, err)
	got2, _ := dt.Time()
	assert.True(t, ts.Equal(got2))
}

func TestCoerceRequestValue_UUID_RejectsMalformed(t *testing.T) {
	_, err := CoerceRequestValue("car", config.Field{Name: "id", Scalar: config.ScalarUUID}, "not-a-uuid")
	assert.Error(t, err)
}

func TestCoerceRequestValue_List(t *testing.T) {
	v, err := CoerceRequestValue("car", config.Field{Name: "tags", Scalar: config.ScalarString, List: true}, []any{"a", "b"})
	require.NoError(t, err)
	elems, ok := v.ListValue()
	require.True(t, ok)
	require.Len(t, elems, 2)
	first, _ := elems[0].String()
	assert.Equal(t, "a", first)
}

func TestCoerceRequestValue_List_RejectsNonList(t *testing.T) {
	_, err := CoerceRequestValue("car", config.Field{Name: "tags", Scalar: config.ScalarString, List: true}, "not-a-list")
	assert.Error(t, err)
}

func TestCoerceRequestValue_StructuredObject_CoercesDeclaredFields(t *testing.T) {
	f := config.Field{
		Name:   "engine",
		Scalar: config.ScalarObject,
		Fields: []config.Field{
			{Name: "cylinders", Scalar: config.ScalarInt},
			{Name: "turbo", Scalar: config.ScalarBoolean},
		},
	}
	v, err := CoerceRequestValue("car", f, map[string]any{"cylinders": float64(6), "turbo": true, "unused": "ignored"})
	require.NoError(t, err)
	obj, ok := v.ObjectValue()
	require.True(t, ok)
	cyl, _ := obj["cylinders"].Int64()
	assert.Equal(t, int64(6), cyl)
	_, hasUnused := obj["unused"]
	assert.False(t, hasUnused, "undeclared keys are dropped for a structured object")
}

func TestCoerceRequestValue_OpaqueObject_PassesThroughUndeclaredKeys(t *testing.T) {
	f := config.Field{Name: "metadata", Scalar: config.ScalarObject}
	v, err := CoerceRequestValue("car", f, map[string]any{
		"color": "red",
		"specs": map[string]any{"awd": true},
		"tags":  []any{"a", "b"},
	})
	require.NoError(t, err)
	obj, ok := v.ObjectValue()
	require.True(t, ok)

	color, _ := obj["color"].String()
	assert.Equal(t, "red", color)

	specs, ok := obj["specs"].ObjectValue()
	require.True(t, ok)
	awd, _ := specs["awd"].Bool()
	assert.True(t, awd)

	tags, ok := obj["tags"].ListValue()
	require.True(t, ok)
	require.Len(t, tags, 2)
}

func TestCoerceRequestValue_UnknownScalar(t *testing.T) {
	_, err := CoerceRequestValue("car", config.Field{Name: "weird", Scalar: config.Scalar("Bogus")}, "x")
	assert.Error(t, err)
}
