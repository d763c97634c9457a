package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	subgraph "github.com/the-devoyage/subgraph-go"
	"github.com/the-devoyage/subgraph-go/config"
)

func todoEntity() config.Entity {
	return config.Entity{
		Name: "todo",
		Fields: []config.Field{
			{Name: "_id", Scalar: config.ScalarObjectID, Required: true},
			{Name: "title", Scalar: config.ScalarString, Required: true},
			{Name: "done", Scalar: config.ScalarBoolean},
			{Name: "labels", Scalar: config.ScalarString, List: true},
		},
	}
}

func TestCompileFindOne_EmptyFilter(t *testing.T) {
	plan, err := CompileFindOne(todoEntity(), nil)
	require.NoError(t, err)
	assert.Equal(t, bson.M{}, plan.Filter)
}

func TestCompileFindOne_ObjectIDLeaf(t *testing.T) {
	id := primitive.NewObjectID()
	plan, err := CompileFindOne(todoEntity(), map[string]any{"_id": id.Hex()})
	require.NoError(t, err)
	assert.Equal(t, id, plan.Filter["_id"])
}

func TestCompileFindOne_ObjectID_ParseFailure(t *testing.T) {
	_, err := CompileFindOne(todoEntity(), map[string]any{"_id": "not-a-hex-id"})
	assert.True(t, subgraph.IsTypeMismatch(err))
}

func TestCompileFindMany_AndOr(t *testing.T) {
	query := map[string]any{
		"OR": []any{
			map[string]any{"title": "buy milk"},
			map[string]any{"title": "walk dog"},
		},
	}
	plan, err := CompileFindMany(todoEntity(), query)
	require.NoError(t, err)
	or, ok := plan.Filter["$or"].([]bson.M)
	require.True(t, ok)
	assert.Len(t, or, 2)
	assert.Equal(t, "buy milk", or[0]["title"])
}

func TestCompileFindOne_ListField_In(t *testing.T) {
	plan, err := CompileFindOne(todoEntity(), map[string]any{"labels": []any{"home", "urgent"}})
	require.NoError(t, err)
	in, ok := plan.Filter["labels"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, bson.A{"home", "urgent"}, in["$in"])
}

func TestCompileFindOne_UnknownField(t *testing.T) {
	_, err := CompileFindOne(todoEntity(), map[string]any{"bogus": 1})
	assert.True(t, subgraph.IsUnknownField(err))
}

func TestCompileCreateOne_EmptyValues(t *testing.T) {
	_, err := CompileCreateOne(todoEntity(), nil)
	assert.True(t, subgraph.IsInvalidInput(err))
}

func TestCompileCreateOne_MissingRequiredField(t *testing.T) {
	_, err := CompileCreateOne(todoEntity(), map[string]any{"done": false})
	assert.True(t, subgraph.IsInvalidInput(err))
}

func TestCompileCreateOne_Document(t *testing.T) {
	id := primitive.NewObjectID()
	plan, err := CompileCreateOne(todoEntity(), map[string]any{
		"_id": id.Hex(), "title": "buy milk", "done": false,
	})
	require.NoError(t, err)
	assert.Equal(t, id, plan.Document["_id"])
	assert.Equal(t, "buy milk", plan.Document["title"])
	assert.Equal(t, false, plan.Document["done"])
}

func TestCompileUpdateMany_SetAndFilter(t *testing.T) {
	plan, err := CompileUpdateMany(todoEntity(), map[string]any{"done": false}, map[string]any{"done": true})
	require.NoError(t, err)
	assert.Equal(t, false, plan.Filter["done"])
	set, ok := plan.Update["$set"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, true, set["done"])
}

func TestCompileUpdateMany_EmptyQuery(t *testing.T) {
	_, err := CompileUpdateMany(todoEntity(), nil, map[string]any{"done": true})
	assert.True(t, subgraph.IsInvalidInput(err))
}

func TestCompileUpdateOne_EmptyQuery(t *testing.T) {
	_, err := CompileUpdateOne(todoEntity(), nil, map[string]any{"done": true})
	assert.True(t, subgraph.IsInvalidInput(err))
}
