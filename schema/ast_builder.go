package schema

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/the-devoyage/subgraph-go/config"
)

// schemaBuilder accumulates ast.Definitions while Synthesize walks
// entities, then assembles a root *ast.Schema with single Query and
// Mutation root types (FindOne/FindMany are queries; Create/Update* are
// mutations).
type schemaBuilder struct {
	types    map[string]*ast.Definition
	query    *ast.Definition
	mutation *ast.Definition
}

func newSchemaBuilder() *schemaBuilder {
	return &schemaBuilder{
		types:    make(map[string]*ast.Definition),
		query:    &ast.Definition{Kind: ast.Object, Name: "Query"},
		mutation: &ast.Definition{Kind: ast.Object, Name: "Mutation"},
	}
}

var scalarGraphQLType = map[config.Scalar]string{
	config.ScalarString:   "String",
	config.ScalarInt:      "Int",
	config.ScalarBoolean:  "Boolean",
	config.ScalarObjectID: "ObjectID",
	config.ScalarUUID:     "UUID",
	config.ScalarDateTime: "DateTime",
	config.ScalarEnum:     "String",
}

func gqlType(shape FieldShape, objectTypeName string) *ast.Type {
	named := objectTypeName
	if shape.Scalar != config.ScalarObject && shape.AsType == "" {
		named = scalarGraphQLType[shape.Scalar]
	}
	var t *ast.Type
	if shape.List {
		elem := ast.NamedType(named, nil)
		if shape.Required {
			elem = ast.NonNullNamedType(named, nil)
		}
		t = ast.ListType(elem, nil)
	} else if shape.Required {
		t = ast.NonNullNamedType(named, nil)
	} else {
		t = ast.NamedType(named, nil)
	}
	return t
}

// jsonScalarName is the GraphQL scalar a ScalarObject field maps to when it
// declares no nested Fields: an opaque document rather than a structured
// type (GraphQL object types must declare at least one field, so a fixed
// shape can't be emitted for it). Client-side it round-trips through
// gqlgen's built-in Map scalar (see MarshalJSONScalar/UnmarshalJSONScalar).
const jsonScalarName = "JSON"

func (b *schemaBuilder) addJSONScalar() {
	if _, ok := b.types[jsonScalarName]; ok {
		return
	}
	b.types[jsonScalarName] = &ast.Definition{Kind: ast.Scalar, Name: jsonScalarName}
}

// asTypeInputName names the input type an as-type field's own "input"
// argument accepts: the same `<op>_input` type already synthesized for
// the as_type entity's own top-level FindOne/FindMany operation
// (addEntity), keyed off whether the field resolves one row or many.
func asTypeInputName(f FieldShape) string {
	kind := config.FindOne
	if f.List {
		kind = config.FindMany
	}
	return operationName(kind, f.AsType) + "_input"
}

// asTypeFieldDefinition builds the output field for an as_type field
// (spec.md §4.1, §4.4): typed as the as_type entity's own object type
// rather than the field's declared scalar, and carrying an optional
// "input" argument so a caller can compose a predicate with the injected
// join-key predicate (spec.md §4.4 step 4) instead of only ever getting
// the bare join-key lookup.
func (b *schemaBuilder) asTypeFieldDefinition(f FieldShape) *ast.FieldDefinition {
	return &ast.FieldDefinition{
		Name: f.Name,
		Type: gqlType(f, f.AsType),
		Arguments: ast.ArgumentDefinitionList{{
			Name: "input",
			Type: ast.NamedType(asTypeInputName(f), nil),
		}},
	}
}

// addObjectType registers an output object type for fields, named typeName,
// recursing into nested Object-scalar fields under the synthetic name
// "<typeName>_<field>" (spec.md §4.1).
func (b *schemaBuilder) addObjectType(typeName string, fields []FieldShape) {
	if _, ok := b.types[typeName]; ok {
		return
	}
	def := &ast.Definition{Kind: ast.Object, Name: typeName}
	for _, f := range fields {
		if f.AsType != "" {
			def.Fields = append(def.Fields, b.asTypeFieldDefinition(f))
			continue
		}
		nestedType := typeName + "_" + f.Name
		if f.Scalar == config.ScalarObject {
			if len(f.Fields) == 0 {
				b.addJSONScalar()
				nestedType = jsonScalarName
			} else {
				b.addObjectType(nestedType, f.Fields)
			}
		}
		def.Fields = append(def.Fields, &ast.FieldDefinition{
			Name: f.Name,
			Type: gqlType(f, nestedType),
		})
	}
	b.types[typeName] = def
}

// addInputType registers an input object type for a values or query
// sub-shape, named typeName.
func (b *schemaBuilder) addInputType(typeName string, fields []FieldShape) {
	if _, ok := b.types[typeName]; ok {
		return
	}
	def := &ast.Definition{Kind: ast.InputObject, Name: typeName}
	for _, f := range fields {
		nestedType := typeName + "_" + f.Name
		if f.Scalar == config.ScalarObject {
			if len(f.Fields) == 0 {
				b.addJSONScalar()
				nestedType = jsonScalarName
			} else {
				b.addInputType(nestedType, f.Fields)
			}
		}
		def.Fields = append(def.Fields, &ast.FieldDefinition{
			Name: f.Name,
			Type: gqlType(f, nestedType),
		})
	}
	b.types[typeName] = def
}

func (b *schemaBuilder) addEntity(e config.Entity, outFields []FieldShape, ops []OperationDescriptor) {
	b.addObjectType(e.Name, outFields)

	for _, op := range ops {
		if op.InputName != "" {
			var inFields []FieldShape
			if op.HasValues {
				inFields = append(inFields, FieldShape{Name: "values", Scalar: config.ScalarObject, Required: true,
					Fields: toFieldShapes(e.Fields, op.Kind, false)})
			}
			if op.HasQuery {
				inFields = append(inFields, FieldShape{Name: "query", Scalar: config.ScalarObject,
					Fields: toFieldShapes(e.Fields, op.Kind, false)})
			}
			b.addInputType(op.InputName, inFields)
		}

		field := &ast.FieldDefinition{Name: op.Name}
		if op.InputName != "" {
			field.Arguments = ast.ArgumentDefinitionList{{
				Name: "input",
				Type: ast.NonNullNamedType(op.InputName, nil),
			}}
		}
		if op.OutputList {
			field.Type = ast.ListType(ast.NamedType(e.Name, nil), nil)
		} else {
			field.Type = ast.NamedType(e.Name, nil)
		}

		switch op.Kind {
		case config.FindOne, config.FindMany:
			b.query.Fields = append(b.query.Fields, field)
		default:
			b.mutation.Fields = append(b.mutation.Fields, field)
		}
	}
}

func (b *schemaBuilder) build() *ast.Schema {
	s := &ast.Schema{
		Types: make(map[string]*ast.Definition, len(b.types)+2),
	}
	for name, def := range b.types {
		s.Types[name] = def
	}
	if len(b.query.Fields) > 0 {
		s.Query = b.query
		s.Types[b.query.Name] = b.query
	}
	if len(b.mutation.Fields) > 0 {
		s.Mutation = b.mutation
		s.Types[b.mutation.Name] = b.mutation
	}
	return s
}
