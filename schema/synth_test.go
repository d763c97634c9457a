package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/the-devoyage/subgraph-go/config"
)

func carSubgraph() config.Subgraph {
	return config.Subgraph{
		Service: config.ServiceConfig{
			DataSources: []config.DataSource{
				{Name: "pg", Kind: config.DataSourceSQL, SQL: &config.SQLDataSource{Dialect: config.Postgres, URI: "postgres://localhost/app"}},
			},
			Entities: []config.Entity{
				{
					Name:       "car",
					DataSource: "pg",
					Table:      "cars",
					Fields: []config.Field{
						{Name: "id", Scalar: config.ScalarUUID, Required: true},
						{Name: "make", Scalar: config.ScalarString, Required: true},
						{Name: "metadata", Scalar: config.ScalarObject},
					},
				},
			},
		},
	}
}

func TestSynthesize_PostgresOmitsUpdateOne(t *testing.T) {
	d, err := Synthesize(carSubgraph())
	require.NoError(t, err)
	ed := d.Entities["car"]
	assert.NotContains(t, ed.SupportedKinds, config.UpdateOne)
	assert.Contains(t, ed.SupportedKinds, config.FindOne)
	assert.Contains(t, ed.SupportedKinds, config.FindMany)
	assert.Contains(t, ed.SupportedKinds, config.CreateOne)
	assert.Contains(t, ed.SupportedKinds, config.UpdateMany)
}

func TestSynthesize_UntypedObjectFieldEmitsJSONScalar(t *testing.T) {
	d, err := Synthesize(carSubgraph())
	require.NoError(t, err)

	jsonDef, ok := d.Schema.Types[jsonScalarName]
	require.True(t, ok, "synthesized schema should register the JSON scalar")
	assert.Equal(t, "JSON", jsonDef.Name)

	carDef, ok := d.Schema.Types["car"]
	require.True(t, ok)
	found := false
	for _, f := range carDef.Fields {
		if f.Name == "metadata" {
			found = true
			assert.Equal(t, jsonScalarName, f.Type.Name())
		}
	}
	assert.True(t, found, "metadata field should be present on the car output type")
}

func carPurchaseSubgraph() config.Subgraph {
	return config.Subgraph{
		Service: config.ServiceConfig{
			DataSources: []config.DataSource{
				{Name: "pg", Kind: config.DataSourceSQL, SQL: &config.SQLDataSource{Dialect: config.Postgres, URI: "postgres://localhost/app"}},
			},
			Entities: []config.Entity{
				{
					Name:       "car_purchase",
					DataSource: "pg",
					Table:      "car_purchases",
					Fields: []config.Field{
						{Name: "id", Scalar: config.ScalarUUID, Required: true},
						{Name: "car_id", Scalar: config.ScalarInt, AsType: "car", JoinOn: "car_id"},
						{Name: "co_buyers", Scalar: config.ScalarInt, List: true, AsType: "buyer", JoinOn: "id"},
					},
				},
				{
					Name:       "car",
					DataSource: "pg",
					Table:      "cars",
					Fields: []config.Field{
						{Name: "id", Scalar: config.ScalarInt, Required: true},
						{Name: "make", Scalar: config.ScalarString, Required: true},
					},
				},
				{
					Name:       "buyer",
					DataSource: "pg",
					Table:      "buyers",
					Fields: []config.Field{
						{Name: "id", Scalar: config.ScalarInt, Required: true},
						{Name: "name", Scalar: config.ScalarString, Required: true},
					},
				},
			},
		},
	}
}

func fieldByName(fields []*ast.FieldDefinition, name string) *ast.FieldDefinition {
	for _, f := range fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func TestSynthesize_AsTypeFieldIsTypedAsTheReferencedEntity(t *testing.T) {
	d, err := Synthesize(carPurchaseSubgraph())
	require.NoError(t, err)

	purchaseDef, ok := d.Schema.Types["car_purchase"]
	require.True(t, ok)

	carIDField := fieldByName(purchaseDef.Fields, "car_id")
	require.NotNil(t, carIDField, "as-type field should still be present on the output type")
	assert.Equal(t, "car", carIDField.Type.Name(), "a FindOne as-type field resolves to the referenced entity's object type, not its declared scalar")
	assert.False(t, carIDField.Type.NonNull, "as-type fields are nullable: absent join keys resolve to null")
	require.Len(t, carIDField.Arguments, 1)
	assert.Equal(t, "input", carIDField.Arguments[0].Name)
	assert.Equal(t, "get_car_input", carIDField.Arguments[0].Type.Name())
	assert.False(t, carIDField.Arguments[0].Type.NonNull, "a nested predicate is optional, unlike a top-level operation's input argument")
}

func TestSynthesize_ListAsTypeFieldIsTypedAsAListOfTheReferencedEntity(t *testing.T) {
	d, err := Synthesize(carPurchaseSubgraph())
	require.NoError(t, err)

	purchaseDef, ok := d.Schema.Types["car_purchase"]
	require.True(t, ok)

	coBuyersField := fieldByName(purchaseDef.Fields, "co_buyers")
	require.NotNil(t, coBuyersField)
	assert.Equal(t, "buyer", coBuyersField.Type.Name())
	assert.NotNil(t, coBuyersField.Type.Elem, "a List as-type field compiles to a GraphQL list type")
	require.Len(t, coBuyersField.Arguments, 1)
	assert.Equal(t, "get_buyers_input", coBuyersField.Arguments[0].Type.Name())
}

func TestSynthesize_QueryAndMutationRootsPopulated(t *testing.T) {
	d, err := Synthesize(carSubgraph())
	require.NoError(t, err)
	require.NotNil(t, d.Schema.Query)
	require.NotNil(t, d.Schema.Mutation)

	names := map[string]bool{}
	for _, f := range d.Schema.Query.Fields {
		names[f.Name] = true
	}
	assert.True(t, names["get_car"])
	assert.True(t, names["get_cars"])
}
