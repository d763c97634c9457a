package resolver

import (
	"context"

	"golang.org/x/sync/errgroup"

	subgraph "github.com/the-devoyage/subgraph-go"
	"github.com/the-devoyage/subgraph-go/config"
	"github.com/the-devoyage/subgraph-go/guard"
	"github.com/the-devoyage/subgraph-go/value"
)

// resolveAsTypeFields runs the Cross-source Resolver algorithm of spec.md
// §4.4 over every as_type field of entity that is present in selection,
// mutating row in place. Siblings run concurrently via errgroup, each
// writing into a pre-sized slot by index so result order matches
// declaration order regardless of completion order (spec.md §5).
func (d *Dispatcher) resolveAsTypeFields(ctx context.Context, token guard.TokenData, entity config.Entity, row map[string]value.Value, selection []string, nested map[string]Nested) error {
	var fields []config.Field
	for _, f := range entity.Fields {
		if f.IsAsType() && selects(selection, f.Name) {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return nil
	}

	resolved := make([]value.Value, len(fields))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range fields {
		i, f := i, f
		g.Go(func() error {
			v, err := d.resolveAsType(gctx, token, entity, f, row, nested[f.Name])
			if err != nil {
				return err
			}
			resolved[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, f := range fields {
		row[f.Name] = resolved[i]
	}
	return nil
}

// resolveAsType implements one field's lookup: determine the child
// operation kind from the field's list-ness, extract the join-key value
// from the parent row, resolve to Null if it's absent, merge the client's
// nested predicate with an injected `K = parent_K` predicate, and dispatch
// recursively to the child entity's own data source.
func (d *Dispatcher) resolveAsType(ctx context.Context, token guard.TokenData, parent config.Entity, f config.Field, row map[string]value.Value, nested Nested) (value.Value, error) {
	joinVal, ok := row[f.JoinOn]
	if !ok || joinVal.IsNull() {
		return value.Null(), nil
	}

	kind := config.FindOne
	if f.List {
		kind = config.FindMany
	}

	injected := map[string]any{f.JoinOn: joinVal.Native()}
	query := injected
	if len(nested.Query) > 0 {
		query = map[string]any{"AND": []any{injected, nested.Query}}
	}

	res, err := d.Resolve(ctx, token, f.AsType, kind, Input{Query: query, Selection: nested.Selection, Nested: nested.Nested})
	if err != nil {
		if kind == config.FindOne && subgraph.IsNotFound(err) {
			return value.Null(), nil
		}
		return value.Value{}, err
	}

	if kind == config.FindOne {
		if res.Row == nil {
			return value.Null(), nil
		}
		return value.Object(res.Row), nil
	}

	list := make([]value.Value, len(res.Rows))
	for i, r := range res.Rows {
		list[i] = value.Object(r)
	}
	return value.List(list), nil
}
