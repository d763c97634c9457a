// Package document implements the Input Compiler and Execution Adapter for
// the document-store backend of spec.md §4.3, on top of the official
// MongoDB driver. Document exposes all five operation kinds for every
// collection, so unlike dialect/sql there is no dialect-conditioned
// statement-shape branching here.
package document

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	subgraph "github.com/the-devoyage/subgraph-go"
	"github.com/the-devoyage/subgraph-go/config"
	"github.com/the-devoyage/subgraph-go/scalar"
	"github.com/the-devoyage/subgraph-go/value"
)

// FindPlan is the compiled shape for FindOne/FindMany.
type FindPlan struct {
	Filter bson.M
}

// InsertPlan is the compiled shape for CreateOne.
type InsertPlan struct {
	Document bson.M
}

// UpdatePlan is the compiled shape for UpdateOne/UpdateMany: Update always
// carries the $set document, per spec.md §4.3.
type UpdatePlan struct {
	Filter bson.M
	Update bson.M
}

func toBSON(entity string, field config.Field, v value.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	switch v.Kind() {
	case value.KindObjectID:
		hex, _ := v.String()
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			return nil, subgraph.NewTypeMismatchError(entity, field.Name, field.Scalar, "not a valid object id: "+err.Error())
		}
		return id, nil
	case value.KindUUID, value.KindString:
		s, _ := v.String()
		return s, nil
	case value.KindInt64:
		i, _ := v.Int64()
		return i, nil
	case value.KindFloat64:
		f, _ := v.Float64()
		return f, nil
	case value.KindBool:
		b, _ := v.Bool()
		return b, nil
	case value.KindDateTime:
		t, _ := v.Time()
		return t, nil
	case value.KindBytes:
		b, _ := v.BytesValue()
		return b, nil
	case value.KindList:
		list, _ := v.ListValue()
		out := make(bson.A, len(list))
		for i, e := range list {
			bv, err := toBSON(entity, field, e)
			if err != nil {
				return nil, err
			}
			out[i] = bv
		}
		return out, nil
	case value.KindObject:
		obj, _ := v.ObjectValue()
		out := bson.M{}
		for name, e := range obj {
			nested, ok := fieldByName(field.Fields, name)
			if !ok {
				continue
			}
			bv, err := toBSON(entity, nested, e)
			if err != nil {
				return nil, err
			}
			out[name] = bv
		}
		return out, nil
	default:
		return nil, nil
	}
}

func fieldByName(fields []config.Field, name string) (config.Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return config.Field{}, false
}

func compileLeaf(entity config.Entity, field string, raw any) (string, any, error) {
	f, ok := entity.FieldByName(field)
	if !ok {
		return "", nil, subgraph.NewUnknownFieldError(entity.Name, field)
	}
	v, err := scalar.CoerceRequestValue(entity.Name, f, raw)
	if err != nil {
		return "", nil, err
	}
	if list, ok := v.ListValue(); ok {
		elems := make(bson.A, 0, len(list))
		for _, e := range list {
			bv, err := toBSON(entity.Name, f, e)
			if err != nil {
				return "", nil, err
			}
			elems = append(elems, bv)
		}
		return f.Name, bson.M{"$in": elems}, nil
	}
	bv, err := toBSON(entity.Name, f, v)
	if err != nil {
		return "", nil, err
	}
	return f.Name, bv, nil
}

// compilePredicate implements the grammar of spec.md §4.2/§4.3 over a raw
// query document, rendering Mongo's native $and/$or/$in operators.
func compilePredicate(entity config.Entity, query map[string]any) (bson.M, error) {
	filter := bson.M{}
	for k, raw := range query {
		switch k {
		case "AND":
			sub, err := compileGroup(entity, raw)
			if err != nil {
				return nil, err
			}
			filter["$and"] = sub
		case "OR":
			sub, err := compileGroup(entity, raw)
			if err != nil {
				return nil, err
			}
			filter["$or"] = sub
		default:
			name, bv, err := compileLeaf(entity, k, raw)
			if err != nil {
				return nil, err
			}
			filter[name] = bv
		}
	}
	return filter, nil
}

func compileGroup(entity config.Entity, raw any) ([]bson.M, error) {
	children, ok := raw.([]any)
	if !ok {
		return nil, subgraph.NewInvalidInputError(entity.Name, "AND/OR must be a list of predicates")
	}
	out := make([]bson.M, 0, len(children))
	for _, c := range children {
		sub, ok := c.(map[string]any)
		if !ok {
			return nil, subgraph.NewInvalidInputError(entity.Name, "AND/OR entries must be predicate documents")
		}
		compiled, err := compilePredicate(entity, sub)
		if err != nil {
			return nil, err
		}
		out = append(out, compiled)
	}
	return out, nil
}

// CompileFindOne and CompileFindMany share the same compiled shape; the
// caller distinguishes single-row vs all-rows semantics.
func CompileFindOne(entity config.Entity, query map[string]any) (*FindPlan, error) {
	filter, err := compilePredicate(entity, query)
	if err != nil {
		return nil, err
	}
	return &FindPlan{Filter: filter}, nil
}

func CompileFindMany(entity config.Entity, query map[string]any) (*FindPlan, error) {
	return CompileFindOne(entity, query)
}

// CompileCreateOne compiles the insert document for CreateOne.
func CompileCreateOne(entity config.Entity, values map[string]any) (*InsertPlan, error) {
	if len(values) == 0 {
		return nil, subgraph.NewInvalidInputError(entity.Name, "values must not be empty")
	}
	doc := bson.M{}
	for _, f := range entity.Fields {
		if f.Virtual || f.ExcludedFromInput(config.CreateOne) {
			continue
		}
		raw, present := values[f.Name]
		if !present {
			if f.Required && f.Default == nil {
				return nil, subgraph.NewInvalidInputError(entity.Name, fmt.Sprintf("required field %q is missing", f.Name))
			}
			if f.Default == nil {
				continue
			}
			raw = f.Default
		}
		v, err := scalar.CoerceRequestValue(entity.Name, f, raw)
		if err != nil {
			return nil, err
		}
		bv, err := toBSON(entity.Name, f, v)
		if err != nil {
			return nil, err
		}
		doc[f.Name] = bv
	}
	for k := range values {
		if _, ok := entity.FieldByName(k); !ok {
			return nil, subgraph.NewUnknownFieldError(entity.Name, k)
		}
	}
	return &InsertPlan{Document: doc}, nil
}

func compileSet(entity config.Entity, values map[string]any, kind config.OperationKind) (bson.M, error) {
	for k := range values {
		if _, ok := entity.FieldByName(k); !ok {
			return nil, subgraph.NewUnknownFieldError(entity.Name, k)
		}
	}
	set := bson.M{}
	for _, f := range entity.Fields {
		if f.Virtual || f.ExcludedFromInput(kind) {
			continue
		}
		raw, present := values[f.Name]
		if !present {
			continue
		}
		v, err := scalar.CoerceRequestValue(entity.Name, f, raw)
		if err != nil {
			return nil, err
		}
		bv, err := toBSON(entity.Name, f, v)
		if err != nil {
			return nil, err
		}
		set[f.Name] = bv
	}
	return set, nil
}

// CompileUpdateOne compiles the filter+$set shape for UpdateOne.
func CompileUpdateOne(entity config.Entity, query, values map[string]any) (*UpdatePlan, error) {
	if len(query) == 0 {
		return nil, subgraph.NewInvalidInputError(entity.Name, "no filter provided")
	}
	filter, err := compilePredicate(entity, query)
	if err != nil {
		return nil, err
	}
	set, err := compileSet(entity, values, config.UpdateOne)
	if err != nil {
		return nil, err
	}
	return &UpdatePlan{Filter: filter, Update: bson.M{"$set": set}}, nil
}

// CompileUpdateMany compiles the filter+$set shape for UpdateMany.
func CompileUpdateMany(entity config.Entity, query, values map[string]any) (*UpdatePlan, error) {
	if len(query) == 0 {
		return nil, subgraph.NewInvalidInputError(entity.Name, "no filter provided")
	}
	filter, err := compilePredicate(entity, query)
	if err != nil {
		return nil, err
	}
	set, err := compileSet(entity, values, config.UpdateMany)
	if err != nil {
		return nil, err
	}
	return &UpdatePlan{Filter: filter, Update: bson.M{"$set": set}}, nil
}

// Adapter is the minimal surface the document Execution Adapter needs from
// a *mongo.Collection, narrowed for testability (SPEC_FULL.md's test
// tooling notes: no live server needed to exercise the compiler/adapter
// wiring — a fake satisfying this interface suffices).
type Adapter interface {
	FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) *mongo.SingleResult
	Find(ctx context.Context, filter any, opts ...*options.FindOptions) (*mongo.Cursor, error)
	InsertOne(ctx context.Context, document any, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	UpdateOne(ctx context.Context, filter, update any, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	UpdateMany(ctx context.Context, filter, update any, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

var _ Adapter = (*mongo.Collection)(nil)
