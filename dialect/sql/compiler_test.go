package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	subgraph "github.com/the-devoyage/subgraph-go"
	"github.com/the-devoyage/subgraph-go/config"
)

func carEntity() config.Entity {
	return config.Entity{
		Name: "car",
		Table: "cars",
		Fields: []config.Field{
			{Name: "id", Scalar: config.ScalarUUID, Required: true},
			{Name: "make", Scalar: config.ScalarString, Required: true},
			{Name: "year", Scalar: config.ScalarInt},
			{Name: "tags", Scalar: config.ScalarString, List: true},
			{Name: "internal_note", Scalar: config.ScalarString, Virtual: true},
		},
	}
}

func TestCompileFindOne_EmptyQuery(t *testing.T) {
	plan, err := CompileFindOne(carEntity(), "postgres", nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM cars WHERE 1 = 1", plan.SQL)
	assert.Empty(t, plan.Binds)
}

func TestCompileFindOne_SimpleLeaf(t *testing.T) {
	plan, err := CompileFindOne(carEntity(), "postgres", map[string]any{"make": "Toyota"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM cars WHERE make = $1", plan.SQL)
	assert.Equal(t, []any{"Toyota"}, plan.Binds)
}

func TestCompileFindOne_MySQLPlaceholders(t *testing.T) {
	plan, err := CompileFindOne(carEntity(), "mysql", map[string]any{"make": "Toyota", "year": 2020})
	require.NoError(t, err)
	assert.Contains(t, plan.SQL, "make = ?")
	assert.Contains(t, plan.SQL, "year = ?")
	assert.Len(t, plan.Binds, 2)
}

func TestCompileFindMany_AndOr(t *testing.T) {
	query := map[string]any{
		"OR": []any{
			map[string]any{"make": "Toyota"},
			map[string]any{"make": "Honda"},
		},
	}
	plan, err := CompileFindMany(carEntity(), "postgres", query)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM cars WHERE (make = $1 OR make = $2)", plan.SQL)
	assert.Equal(t, []any{"Toyota", "Honda"}, plan.Binds)
}

func TestCompileFindOne_ListField_In(t *testing.T) {
	query := map[string]any{"tags": []any{"suv", "awd"}}
	plan, err := CompileFindOne(carEntity(), "postgres", query)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM cars WHERE tags IN ($1, $2)", plan.SQL)
}

func TestCompileFindOne_EmptyListField_AlwaysFalse(t *testing.T) {
	query := map[string]any{"tags": []any{}}
	plan, err := CompileFindOne(carEntity(), "postgres", query)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM cars WHERE 1 = 0", plan.SQL)
}

func TestCompileFindOne_UnknownField(t *testing.T) {
	_, err := CompileFindOne(carEntity(), "postgres", map[string]any{"bogus": 1})
	assert.True(t, subgraph.IsUnknownField(err))
}

func TestCompileFindOne_TypeMismatch(t *testing.T) {
	_, err := CompileFindOne(carEntity(), "postgres", map[string]any{"year": "not-a-number"})
	assert.True(t, subgraph.IsTypeMismatch(err))
}

func TestCompileCreateOne_EmptyValues(t *testing.T) {
	_, err := CompileCreateOne(carEntity(), "postgres", nil)
	assert.True(t, subgraph.IsInvalidInput(err))
}

func TestCompileCreateOne_MissingRequiredField(t *testing.T) {
	_, err := CompileCreateOne(carEntity(), "postgres", map[string]any{"year": 2020})
	assert.True(t, subgraph.IsInvalidInput(err))
}

func TestCompileCreateOne_Postgres_Returning(t *testing.T) {
	values := map[string]any{
		"id":   "5f1d2c3b-0000-4000-8000-000000000000",
		"make": "Toyota",
		"year": 2020,
	}
	plan, err := CompileCreateOne(carEntity(), "postgres", values)
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO cars (id, make, year) VALUES ($1, $2, $3) RETURNING *", plan.SQL)
	assert.Equal(t, RefetchNone, plan.Refetch)
	assert.Len(t, plan.Binds, 3)
}

func TestCompileCreateOne_MySQL_RefetchByLastInsertID(t *testing.T) {
	values := map[string]any{
		"id":   "5f1d2c3b-0000-4000-8000-000000000000",
		"make": "Toyota",
	}
	plan, err := CompileCreateOne(carEntity(), "mysql", values)
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO cars (id, make) VALUES (?, ?)", plan.SQL)
	assert.Equal(t, RefetchByLastInsertID, plan.Refetch)
}

func TestCompileCreateOne_RejectsUnknownField(t *testing.T) {
	_, err := CompileCreateOne(carEntity(), "postgres", map[string]any{
		"id": "5f1d2c3b-0000-4000-8000-000000000000", "make": "Toyota", "bogus": "x",
	})
	assert.True(t, subgraph.IsUnknownField(err))
}

func TestCompileUpdateOne_RejectsNonMySQL(t *testing.T) {
	_, err := CompileUpdateOne(carEntity(), "postgres", map[string]any{"make": "Toyota"}, map[string]any{"year": 2021})
	assert.True(t, subgraph.IsInvalidInput(err))
}

func TestCompileUpdateOne_EmptyQuery(t *testing.T) {
	_, err := CompileUpdateOne(carEntity(), "mysql", nil, map[string]any{"year": 2021})
	assert.True(t, subgraph.IsInvalidInput(err))
}

func TestCompileUpdateOne_MySQL_LimitOneAndRefetch(t *testing.T) {
	plan, err := CompileUpdateOne(carEntity(), "mysql", map[string]any{"make": "Toyota"}, map[string]any{"year": 2021})
	require.NoError(t, err)
	assert.Equal(t, "UPDATE cars SET year = ? WHERE make = ? LIMIT 1", plan.SQL)
	assert.Equal(t, RefetchByPredicate, plan.Refetch)
	assert.Equal(t, "SELECT * FROM cars WHERE make = ? LIMIT 1", plan.RefetchSQL)
}

func TestCompileUpdateMany_Postgres_Returning(t *testing.T) {
	plan, err := CompileUpdateMany(carEntity(), "postgres", map[string]any{"make": "Toyota"}, map[string]any{"year": 2021})
	require.NoError(t, err)
	assert.Equal(t, "UPDATE cars SET year = $1 WHERE make = $2 RETURNING *", plan.SQL)
	assert.Equal(t, RefetchNone, plan.Refetch)
}

func TestCompileUpdateMany_SQLite_RefetchByPredicate(t *testing.T) {
	plan, err := CompileUpdateMany(carEntity(), "sqlite", map[string]any{"make": "Toyota"}, map[string]any{"year": 2021})
	require.NoError(t, err)
	assert.Equal(t, "UPDATE cars SET year = ? WHERE make = ?", plan.SQL)
	assert.Equal(t, RefetchByPredicate, plan.Refetch)
	assert.Equal(t, "SELECT * FROM cars WHERE make = ?", plan.RefetchSQL)
}

func TestCompileUpdateMany_EmptyQuery(t *testing.T) {
	_, err := CompileUpdateMany(carEntity(), "postgres", nil, map[string]any{"year": 2021})
	assert.True(t, subgraph.IsInvalidInput(err))
}
