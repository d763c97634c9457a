package schema

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-devoyage/subgraph-go/value"
)

func TestMarshalJSONScalar_RoundTripsObjectValue(t *testing.T) {
	v := value.Object(map[string]value.Value{
		"color": value.String("red"),
		"doors": value.Int64(4),
	})

	var buf bytes.Buffer
	MarshalJSONScalar(v).MarshalGQL(&buf)
	assert.Contains(t, buf.String(), `"color":"red"`)
	assert.Contains(t, buf.String(), `"doors":4`)
}

func TestMarshalJSONScalar_NonObjectYieldsNull(t *testing.T) {
	var buf bytes.Buffer
	MarshalJSONScalar(value.Null()).MarshalGQL(&buf)
	assert.Equal(t, "null", buf.String())
}

func TestUnmarshalJSONScalar_ParsesMap(t *testing.T) {
	m, err := UnmarshalJSONScalar(map[string]any{"color": "red", "doors": 4})
	require.NoError(t, err)
	assert.Equal(t, "red", m["color"])
	assert.EqualValues(t, 4, m["doors"])
}

func TestUnmarshalJSONScalar_RejectsNonMap(t *testing.T) {
	_, err := UnmarshalJSONScalar("not-a-map")
	assert.Error(t, err)
}
