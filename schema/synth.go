// Package schema implements the Schema Synthesizer of spec.md §4.1: given
// a loaded config.Subgraph, it produces a descriptor tree — one output
// shape per entity, one input shape per (entity × operation kind), and one
// operation per (entity × supported kind) — that the Resolver Dispatcher
// interprets at request time. There is no per-entity bespoke code (spec.md
// §9 Design Notes); every entity is handled by the same descriptor-driven
// path.
//
// As a DOMAIN STACK enrichment, Synthesize also emits an *ast.Schema via
// gqlparser/v2, the same schema representation gqlgen-generated servers
// consume, so an external collaborator wiring a GraphQL transport on top
// of this engine (itself out of scope per spec.md §1) has a ready-made SDL
// description of the synthesized surface.
package schema

import (
	"fmt"
	"sort"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/the-devoyage/subgraph-go/config"
)

// OperationDescriptor names one synthesized operation.
type OperationDescriptor struct {
	Name       string
	Kind       config.OperationKind
	Entity     string
	InputName  string // "" when the operation kind has no input shape
	HasValues  bool
	HasQuery   bool
	OutputList bool // true for FindMany: output is a list of the entity's shape
}

// FieldShape describes one field of a synthesized output or input shape.
type FieldShape struct {
	Name     string
	Scalar   config.Scalar
	List     bool
	Required bool
	Fields   []FieldShape // populated when Scalar == ScalarObject
	AsType   string       // non-empty on an output shape's nested as-type field
}

// EntityDescriptor is the synthesized surface for one entity.
type EntityDescriptor struct {
	Entity         config.Entity
	OutputFields   []FieldShape
	Operations     []OperationDescriptor
	SupportedKinds []config.OperationKind
}

// Descriptor is the full synthesized operation surface for a subgraph.
type Descriptor struct {
	Entities map[string]EntityDescriptor
	Schema   *ast.Schema
}

// supportedKinds implements spec.md §4.1's per-dialect matrix: Postgres and
// SQLite omit UpdateOne (RETURNING+LIMIT composition isn't supported
// uniformly); MySQL, Document, and HTTP expose all five.
func supportedKinds(ds config.DataSource) []config.OperationKind {
	all := []config.OperationKind{config.FindOne, config.FindMany, config.CreateOne, config.UpdateOne, config.UpdateMany}
	if ds.Kind == config.DataSourceSQL && ds.SQL != nil && (ds.SQL.Dialect == config.Postgres || ds.SQL.Dialect == config.SQLite) {
		out := make([]config.OperationKind, 0, 4)
		for _, k := range all {
			if k != config.UpdateOne {
				out = append(out, k)
			}
		}
		return out
	}
	return all
}

// operationName implements the naming rule of spec.md §4.1: get_<entity>,
// get_<entity>s (a naive "+s" plural, preserved for compatibility per
// spec.md §9 Open Questions), create_<entity>, update_<entity>,
// update_<entity>s.
func operationName(kind config.OperationKind, entity string) string {
	switch kind {
	case config.FindOne:
		return "get_" + entity
	case config.FindMany:
		return "get_" + entity + "s"
	case config.CreateOne:
		return "create_" + entity
	case config.UpdateOne:
		return "update_" + entity
	case config.UpdateMany:
		return "update_" + entity + "s"
	default:
		return entity
	}
}

func toFieldShapes(fields []config.Field, kind config.OperationKind, output bool) []FieldShape {
	var out []FieldShape
	for _, f := range fields {
		if output && f.ExcludedFromOutput(kind) {
			continue
		}
		if !output && f.ExcludedFromInput(kind) {
			continue
		}
		shape := FieldShape{Name: f.Name, Scalar: f.Scalar, List: f.List, AsType: f.AsType}
		// Required/nullable rule (spec.md §4.1): in output shapes, Required
		// means non-null; in input shapes, required only bites for CreateOne
		// values — every other input kind treats fields as optional.
		if output {
			shape.Required = f.Required
		} else {
			shape.Required = f.Required && kind == config.CreateOne
		}
		if f.Scalar == config.ScalarObject {
			shape.Fields = toFieldShapes(f.Fields, kind, output)
		}
		out = append(out, shape)
	}
	return out
}

// Synthesize builds the descriptor tree and ast.Schema for every entity in
// cfg.Service.
func Synthesize(cfg config.Subgraph) (*Descriptor, error) {
	d := &Descriptor{Entities: make(map[string]EntityDescriptor, len(cfg.Service.Entities))}
	b := newSchemaBuilder()

	// Sort entities by name for deterministic operation/type ordering —
	// the descriptor's semantics don't depend on it, but a stable SDL
	// output makes diffs and tests reproducible.
	entities := append([]config.Entity(nil), cfg.Service.Entities...)
	sort.Slice(entities, func(i, j int) bool { return entities[i].Name < entities[j].Name })

	for _, e := range entities {
		ds, ok := cfg.Service.DataSourceByName(e.DataSource)
		if !ok {
			return nil, fmt.Errorf("schema: entity %q references unknown data source %q", e.Name, e.DataSource)
		}
		kinds := supportedKinds(ds)
		outFields := toFieldShapes(e.Fields, config.FindOne, true)

		ed := EntityDescriptor{Entity: e, OutputFields: outFields, SupportedKinds: kinds}
		for _, kind := range kinds {
			op := OperationDescriptor{
				Name:       operationName(kind, e.Name),
				Kind:       kind,
				Entity:     e.Name,
				HasValues:  kind == config.CreateOne || kind == config.UpdateOne || kind == config.UpdateMany,
				HasQuery:   kind == config.FindOne || kind == config.FindMany || kind == config.UpdateOne || kind == config.UpdateMany,
				OutputList: kind == config.FindMany,
			}
			if op.HasValues || op.HasQuery {
				op.InputName = op.Name + "_input"
			}
			ed.Operations = append(ed.Operations, op)
		}
		d.Entities[e.Name] = ed

		b.addEntity(e, outFields, ed.Operations)
	}

	d.Schema = b.build()
	return d, nil
}
