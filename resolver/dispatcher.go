// Package resolver implements the Resolver Dispatcher (spec.md §4.6) and
// the Cross-source Resolver (spec.md §4.4): the two components that sit on
// top of the per-backend Input Compilers, Execution Adapters, and Scalar
// Codecs in dialect/sql, dialect/document, and dialect/httpds, and turn a
// bare (entity, operation, input) request into a fully resolved
// Intermediate Value row, including any as-type nested lookups.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	subgraph "github.com/the-devoyage/subgraph-go"
	"github.com/the-devoyage/subgraph-go/config"
	"github.com/the-devoyage/subgraph-go/dialect"
	"github.com/the-devoyage/subgraph-go/dialect/document"
	"github.com/the-devoyage/subgraph-go/dialect/httpds"
	sqldialect "github.com/the-devoyage/subgraph-go/dialect/sql"
	"github.com/the-devoyage/subgraph-go/guard"
	"github.com/the-devoyage/subgraph-go/value"
)

// Dispatcher is the stateless per-operation façade of spec.md §4.6. Its
// fields are the Execution Adapters wired in by a caller at startup: one
// dialect.Driver per configured Sql data source, one document.Adapter per
// entity backed by a Document data source (Mongo collections are scoped
// per-entity, not per-database), and one httpds.HTTPClient per Http data
// source. None are required to be populated beyond whatever data sources
// the caller's config actually references.
type Dispatcher struct {
	Config config.Subgraph

	SQLDrivers  map[string]dialect.Driver     // keyed by data source name
	Collections map[string]document.Adapter   // keyed by entity name
	HTTPClients map[string]httpds.HTTPClient  // keyed by data source name

	// Guard, if set, is evaluated immediately after the token context is
	// attached to the frame. Nil means every operation is allowed — policy
	// evaluation is out of scope for this repository (spec.md §1).
	Guard guard.Rule
}

// Input is the per-operation request document of spec.md §6: a query
// predicate (FindOne/FindMany/Update*), a values document
// (CreateOne/Update*), path params for Http entities, and the selection
// set the caller wants back (drives which as-type fields get resolved).
// A nil/empty Selection resolves every as-type field the entity declares.
type Input struct {
	Query     map[string]any
	Values    map[string]any
	OpParams  map[string]string
	Selection []string

	// Nested carries, keyed by as-type field name, any caller-supplied
	// query/selection to compose with that field's injected join-key
	// predicate (spec.md §4.4 step 4). A field absent from Nested resolves
	// with only the injected predicate, same as before this existed.
	Nested map[string]Nested
}

// Nested is the caller-supplied half of one as-type field's own
// FindOne/FindMany lookup (spec.md §4.4 step 4): Query is merged under an
// implicit AND with the injected `K = parent_K` predicate, never
// overriding or removing it; Selection and Nested recurse the same way
// Input's own fields do, for as-type fields nested more than one level
// deep (e.g. `project.members(query: {...}) { reviewer { id } }`).
type Nested struct {
	Query     map[string]any
	Selection []string
	Nested    map[string]Nested
}

// Result is the resolved output of one operation: exactly one of Row or
// Rows is populated, matching the operation's single-row/many-row shape.
type Result struct {
	Row  map[string]value.Value
	Rows []map[string]value.Value
}

func selects(selection []string, field string) bool {
	if len(selection) == 0 {
		return true
	}
	for _, s := range selection {
		if s == field {
			return true
		}
	}
	return false
}

// stripVirtual removes virtual and kind-excluded fields from a values
// document before it ever reaches an Input Compiler (spec.md §4.6 step:
// "strip virtual fields from the values sub-document"). The compilers
// independently refuse to write virtual fields too; this is the
// dispatcher-level enforcement of the same invariant.
func stripVirtual(entity config.Entity, kind config.OperationKind, values map[string]any) map[string]any {
	if values == nil {
		return nil
	}
	out := make(map[string]any, len(values))
	for k, v := range values {
		f, ok := entity.FieldByName(k)
		if !ok || f.Virtual || f.ExcludedFromInput(kind) {
			continue
		}
		out[k] = v
	}
	return out
}

func sqlDialectName(d config.Dialect) string {
	switch d {
	case config.Postgres:
		return dialect.Postgres
	case config.MySQL:
		return dialect.MySQL
	case config.SQLite:
		return dialect.SQLite
	default:
		return string(d)
	}
}

// Resolve runs one operation end to end: look up the entity's data source,
// strip virtual fields, compile and execute the backend-native plan,
// decode the result into the Intermediate Value, then resolve any
// selected as-type fields recursively (spec.md §4.4).
func (d *Dispatcher) Resolve(ctx context.Context, token guard.TokenData, entityName string, kind config.OperationKind, in Input) (Result, error) {
	ctx = guard.WithTokenData(ctx, token)

	entity, ok := d.Config.Service.EntityByName(entityName)
	if !ok {
		return Result{}, subgraph.NewConfigError(fmt.Errorf("unknown entity %q", entityName))
	}
	ds, ok := d.Config.Service.DataSourceByName(entity.DataSource)
	if !ok {
		return Result{}, subgraph.NewConfigError(fmt.Errorf("entity %q: unknown data source %q", entity.Name, entity.DataSource))
	}
	if d.Guard != nil {
		if err := d.Guard.Eval(ctx, entity.Name, kind); err != nil {
			return Result{}, err
		}
	}

	values := stripVirtual(entity, kind, in.Values)

	var (
		res Result
		err error
	)
	switch ds.Kind {
	case config.DataSourceSQL:
		res, err = d.resolveSQL(ctx, entity, ds, kind, in.Query, values)
	case config.DataSourceDocument:
		res, err = d.resolveDocument(ctx, entity, kind, in.Query, values)
	case config.DataSourceHTTP:
		res, err = d.resolveHTTP(ctx, entity, ds, kind, in.OpParams, in.Query, values)
	default:
		return Result{}, subgraph.NewConfigError(fmt.Errorf("data source %q: unknown kind %q", ds.Name, ds.Kind))
	}
	if err != nil {
		return Result{}, err
	}

	if res.Row != nil {
		if err := d.resolveAsTypeFields(ctx, token, entity, res.Row, in.Selection, in.Nested); err != nil {
			return Result{}, err
		}
	}
	for _, row := range res.Rows {
		if err := d.resolveAsTypeFields(ctx, token, entity, row, in.Selection, in.Nested); err != nil {
			return Result{}, err
		}
	}
	return res, nil
}

func (d *Dispatcher) resolveSQL(ctx context.Context, entity config.Entity, ds config.DataSource, kind config.OperationKind, query, values map[string]any) (Result, error) {
	if ds.SQL == nil {
		return Result{}, subgraph.NewConfigError(fmt.Errorf("data source %q: not a Sql data source", ds.Name))
	}
	drv, ok := d.SQLDrivers[ds.Name]
	if !ok {
		return Result{}, subgraph.NewBackendUnavailableError("sql", fmt.Sprintf("no driver wired for data source %q", ds.Name))
	}
	dialectName := sqlDialectName(ds.SQL.Dialect)

	switch kind {
	case config.FindOne, config.FindMany:
		plan, err := sqldialect.CompileFindOne(entity, dialectName, query)
		if err != nil {
			return Result{}, err
		}
		rows, err := d.runSQLQuery(ctx, drv, dialectName, plan.SQL, plan.Binds)
		if err != nil {
			return Result{}, err
		}
		if kind == config.FindMany {
			return Result{Rows: rows}, nil
		}
		if len(rows) == 0 {
			return Result{}, subgraph.NewNotFoundError(entity.Name)
		}
		return Result{Row: rows[0]}, nil

	case config.CreateOne:
		plan, err := sqldialect.CompileCreateOne(entity, dialectName, values)
		if err != nil {
			return Result{}, err
		}
		row, err := d.runSQLMutation(ctx, drv, dialectName, entity.Name, plan)
		if err != nil {
			return Result{}, err
		}
		return Result{Row: row}, nil

	case config.UpdateOne:
		plan, err := sqldialect.CompileUpdateOne(entity, dialectName, query, values)
		if err != nil {
			return Result{}, err
		}
		row, err := d.runSQLMutation(ctx, drv, dialectName, entity.Name, plan)
		if err != nil {
			return Result{}, err
		}
		return Result{Row: row}, nil

	case config.UpdateMany:
		plan, err := sqldialect.CompileUpdateMany(entity, dialectName, query, values)
		if err != nil {
			return Result{}, err
		}
		rows, err := d.runSQLUpdateMany(ctx, drv, dialectName, plan)
		if err != nil {
			return Result{}, err
		}
		return Result{Rows: rows}, nil

	default:
		return Result{}, subgraph.NewConfigError(fmt.Errorf("entity %q: unsupported operation %q over Sql", entity.Name, kind))
	}
}

// runSQLQuery executes a read-only plan and decodes every row.
func (d *Dispatcher) runSQLQuery(ctx context.Context, drv dialect.Driver, dialectName, sql string, binds []any) ([]map[string]value.Value, error) {
	var rows sqldialect.Rows
	if err := drv.Query(ctx, sql, binds, &rows); err != nil {
		return nil, subgraph.NewBackendError("sql", "query", err)
	}
	defer rows.Close()
	return sqldialect.ScanRows(dialectName, &rows)
}

// runSQLMutation executes a single-row mutation plan, following its
// Refetch strategy when the dialect can't RETURNING the affected row.
func (d *Dispatcher) runSQLMutation(ctx context.Context, drv dialect.Driver, dialectName, entityName string, plan *sqldialect.Plan) (map[string]value.Value, error) {
	switch plan.Refetch {
	case sqldialect.RefetchNone:
		rows, err := d.runSQLQuery(ctx, drv, dialectName, plan.SQL, plan.Binds)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, subgraph.NewNotFoundError(entityName)
		}
		return rows[0], nil

	case sqldialect.RefetchByLastInsertID:
		var result sqldialect.Result
		if err := drv.Exec(ctx, plan.SQL, plan.Binds, &result); err != nil {
			return nil, subgraph.NewBackendError("sql", "exec", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, subgraph.NewBackendError("sql", "last_insert_id", err)
		}
		rows, err := d.runSQLQuery(ctx, drv, dialectName, plan.RefetchSQL, []any{id})
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, subgraph.NewNotFoundError(entityName)
		}
		return rows[0], nil

	case sqldialect.RefetchByPredicate:
		if err := drv.Exec(ctx, plan.SQL, plan.Binds, nil); err != nil {
			return nil, subgraph.NewBackendError("sql", "exec", err)
		}
		rows, err := d.runSQLQuery(ctx, drv, dialectName, plan.RefetchSQL, plan.RefetchBinds)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, subgraph.NewNotFoundError(entityName)
		}
		return rows[0], nil

	default:
		return nil, fmt.Errorf("resolver: unknown refetch kind %d", plan.Refetch)
	}
}

// runSQLUpdateMany executes a multi-row mutation plan.
func (d *Dispatcher) runSQLUpdateMany(ctx context.Context, drv dialect.Driver, dialectName string, plan *sqldialect.Plan) ([]map[string]value.Value, error) {
	switch plan.Refetch {
	case sqldialect.RefetchNone:
		return d.runSQLQuery(ctx, drv, dialectName, plan.SQL, plan.Binds)
	case sqldialect.RefetchByPredicate:
		if err := drv.Exec(ctx, plan.SQL, plan.Binds, nil); err != nil {
			return nil, subgraph.NewBackendError("sql", "exec", err)
		}
		return d.runSQLQuery(ctx, drv, dialectName, plan.RefetchSQL, plan.RefetchBinds)
	default:
		return nil, fmt.Errorf("resolver: unexpected refetch kind %d for UpdateMany", plan.Refetch)
	}
}

func (d *Dispatcher) resolveDocument(ctx context.Context, entity config.Entity, kind config.OperationKind, query, values map[string]any) (Result, error) {
	coll, ok := d.Collections[entity.Name]
	if !ok {
		return Result{}, subgraph.NewBackendUnavailableError("document", fmt.Sprintf("no collection wired for entity %q", entity.Name))
	}

	switch kind {
	case config.FindOne:
		plan, err := document.CompileFindOne(entity, query)
		if err != nil {
			return Result{}, err
		}
		var doc map[string]any
		if err := coll.FindOne(ctx, plan.Filter).Decode(&doc); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return Result{}, subgraph.NewNotFoundError(entity.Name)
			}
			return Result{}, subgraph.NewBackendError("document", "find_one", err)
		}
		row, err := document.DecodeDocument(entity, doc)
		if err != nil {
			return Result{}, err
		}
		return Result{Row: row}, nil

	case config.FindMany:
		plan, err := document.CompileFindMany(entity, query)
		if err != nil {
			return Result{}, err
		}
		cur, err := coll.Find(ctx, plan.Filter)
		if err != nil {
			return Result{}, subgraph.NewBackendError("document", "find", err)
		}
		defer cur.Close(ctx)
		var rows []map[string]value.Value
		for cur.Next(ctx) {
			var doc map[string]any
			if err := cur.Decode(&doc); err != nil {
				return Result{}, subgraph.NewBackendError("document", "decode", err)
			}
			row, err := document.DecodeDocument(entity, doc)
			if err != nil {
				return Result{}, err
			}
			rows = append(rows, row)
		}
		if err := cur.Err(); err != nil {
			return Result{}, subgraph.NewBackendError("document", "cursor", err)
		}
		return Result{Rows: rows}, nil

	case config.CreateOne:
		plan, err := document.CompileCreateOne(entity, values)
		if err != nil {
			return Result{}, err
		}
		ins, err := coll.InsertOne(ctx, plan.Document)
		if err != nil {
			return Result{}, subgraph.NewBackendError("document", "insert_one", err)
		}
		var doc map[string]any
		if err := coll.FindOne(ctx, map[string]any{"_id": ins.InsertedID}).Decode(&doc); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return Result{}, subgraph.NewNotFoundError(entity.Name)
			}
			return Result{}, subgraph.NewBackendError("document", "find_one", err)
		}
		row, err := document.DecodeDocument(entity, doc)
		if err != nil {
			return Result{}, err
		}
		return Result{Row: row}, nil

	case config.UpdateOne:
		plan, err := document.CompileUpdateOne(entity, query, values)
		if err != nil {
			return Result{}, err
		}
		if _, err := coll.UpdateOne(ctx, plan.Filter, plan.Update); err != nil {
			return Result{}, subgraph.NewBackendError("document", "update_one", err)
		}
		var doc map[string]any
		if err := coll.FindOne(ctx, plan.Filter).Decode(&doc); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return Result{}, subgraph.NewNotFoundError(entity.Name)
			}
			return Result{}, subgraph.NewBackendError("document", "find_one", err)
		}
		row, err := document.DecodeDocument(entity, doc)
		if err != nil {
			return Result{}, err
		}
		return Result{Row: row}, nil

	case config.UpdateMany:
		plan, err := document.CompileUpdateMany(entity, query, values)
		if err != nil {
			return Result{}, err
		}
		if _, err := coll.UpdateMany(ctx, plan.Filter, plan.Update); err != nil {
			return Result{}, subgraph.NewBackendError("document", "update_many", err)
		}
		cur, err := coll.Find(ctx, plan.Filter)
		if err != nil {
			return Result{}, subgraph.NewBackendError("document", "find", err)
		}
		defer cur.Close(ctx)
		var rows []map[string]value.Value
		for cur.Next(ctx) {
			var doc map[string]any
			if err := cur.Decode(&doc); err != nil {
				return Result{}, subgraph.NewBackendError("document", "decode", err)
			}
			row, err := document.DecodeDocument(entity, doc)
			if err != nil {
				return Result{}, err
			}
			rows = append(rows, row)
		}
		if err := cur.Err(); err != nil {
			return Result{}, subgraph.NewBackendError("document", "cursor", err)
		}
		return Result{Rows: rows}, nil

	default:
		return Result{}, subgraph.NewConfigError(fmt.Errorf("entity %q: unsupported operation %q over Document", entity.Name, kind))
	}
}

func (d *Dispatcher) resolveHTTP(ctx context.Context, entity config.Entity, ds config.DataSource, kind config.OperationKind, opParams map[string]string, query, values map[string]any) (Result, error) {
	if ds.HTTP == nil {
		return Result{}, subgraph.NewConfigError(fmt.Errorf("data source %q: not an Http data source", ds.Name))
	}
	client, ok := d.HTTPClients[ds.Name]
	if !ok {
		return Result{}, subgraph.NewBackendUnavailableError("http", fmt.Sprintf("no client wired for data source %q", ds.Name))
	}

	var (
		plan *httpds.RequestPlan
		err  error
	)
	switch kind {
	case config.FindOne:
		plan, err = httpds.CompileFindOne(entity, *ds.HTTP, opParams, query)
	case config.FindMany:
		plan, err = httpds.CompileFindMany(entity, *ds.HTTP, opParams, query)
	case config.CreateOne:
		plan, err = httpds.CompileCreateOne(entity, *ds.HTTP, values)
	case config.UpdateOne:
		plan, err = httpds.CompileUpdateOne(entity, *ds.HTTP, opParams, query, values)
	case config.UpdateMany:
		plan, err = httpds.CompileUpdateMany(entity, *ds.HTTP, opParams, query, values)
	default:
		return Result{}, subgraph.NewConfigError(fmt.Errorf("entity %q: unsupported operation %q over Http", entity.Name, kind))
	}
	if err != nil {
		return Result{}, err
	}

	body, err := httpds.Execute(ctx, client, plan)
	if err != nil {
		return Result{}, err
	}

	if kind == config.FindMany {
		rows, err := httpds.DecodeResponseList(entity, body)
		if err != nil {
			return Result{}, err
		}
		return Result{Rows: rows}, nil
	}

	row, err := httpds.DecodeResponse(entity, body)
	if err != nil {
		return Result{}, err
	}
	return Result{Row: row}, nil
}
