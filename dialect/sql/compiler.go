// compiler.go implements the SQL Input Compiler of spec.md §4.2: recursive
// descent predicate compilation plus the five statement shapes (FindOne,
// FindMany, CreateOne, UpdateOne, UpdateMany), grounded in the teacher's
// Conn/Driver plumbing in driver.go for how the resulting Plan is meant to
// be executed.
package sql

import (
	"fmt"
	"sort"
	"strings"

	subgraph "github.com/the-devoyage/subgraph-go"
	"github.com/the-devoyage/subgraph-go/config"
	"github.com/the-devoyage/subgraph-go/scalar"
)

// RefetchKind describes how the caller must recover the post-mutation
// row(s) when the dialect doesn't support RETURNING.
type RefetchKind int

const (
	// RefetchNone means Plan.SQL itself already returns the relevant rows
	// (a SELECT, or a Postgres statement with RETURNING *).
	RefetchNone RefetchKind = iota
	// RefetchByLastInsertID means the caller must run RefetchSQL after
	// substituting the driver-reported last insert id as its sole bind.
	RefetchByLastInsertID
	// RefetchByPredicate means the caller must run RefetchSQL with
	// RefetchBinds, a SELECT over the same predicate used by the mutation.
	RefetchByPredicate
)

// Plan is the output of the SQL Input Compiler: a statement ready for the
// Execution Adapter plus, where the dialect lacks RETURNING, a second
// statement to recover the affected row(s).
type Plan struct {
	SQL   string
	Binds []any

	Refetch      RefetchKind
	RefetchSQL   string
	RefetchBinds []any
}

func tableName(e config.Entity) string {
	if e.Table != "" {
		return e.Table
	}
	return e.Name
}

// compileLeaf renders one field:value predicate term, validating the field
// exists and the value matches its declared scalar.
func compileLeaf(st *statement, entity config.Entity, field string, raw any) (string, error) {
	f, ok := entity.FieldByName(field)
	if !ok {
		return "", subgraph.NewUnknownFieldError(entity.Name, field)
	}
	v, err := scalar.CoerceRequestValue(entity.Name, f, raw)
	if err != nil {
		return "", err
	}
	if list, ok := v.ListValue(); ok {
		if len(list) == 0 {
			// An empty IN-list matches nothing; render a statically-false
			// predicate rather than emitting "IN ()", which is invalid SQL.
			return "1 = 0", nil
		}
		phs := make([]string, len(list))
		for i, elem := range list {
			phs[i] = st.bind(elem.Native())
		}
		return fmt.Sprintf("%s IN (%s)", f.Name, strings.Join(phs, ", ")), nil
	}
	ph := st.bind(v.Native())
	return fmt.Sprintf("%s = %s", f.Name, ph), nil
}

// compilePredicate implements the recursive-descent grammar of spec.md
// §4.2 over a raw query document: a map whose keys are either field names
// or the reserved "AND"/"OR" operators. An empty or nil document compiles
// to the always-true "1 = 1".
func compilePredicate(st *statement, entity config.Entity, query map[string]any) (string, error) {
	if len(query) == 0 {
		return "1 = 1", nil
	}

	var fragments []string

	// Plain field keys are iterated in sorted order for a deterministic
	// statement and bind order; the grammar itself is order-independent.
	var fieldKeys []string
	for k := range query {
		if k != "AND" && k != "OR" {
			fieldKeys = append(fieldKeys, k)
		}
	}
	sort.Strings(fieldKeys)
	for _, k := range fieldKeys {
		frag, err := compileLeaf(st, entity, k, query[k])
		if err != nil {
			return "", err
		}
		fragments = append(fragments, frag)
	}

	if and, ok := query["AND"]; ok {
		frag, err := compileGroup(st, entity, and, " AND ")
		if err != nil {
			return "", err
		}
		fragments = append(fragments, frag)
	}
	if or, ok := query["OR"]; ok {
		frag, err := compileGroup(st, entity, or, " OR ")
		if err != nil {
			return "", err
		}
		fragments = append(fragments, frag)
	}

	if len(fragments) == 1 {
		return fragments[0], nil
	}
	return "(" + strings.Join(fragments, " AND ") + ")", nil
}

func compileGroup(st *statement, entity config.Entity, raw any, joiner string) (string, error) {
	children, ok := raw.([]any)
	if !ok {
		return "", subgraph.NewInvalidInputError(entity.Name, "AND/OR must be a list of predicates")
	}
	var parts []string
	for _, c := range children {
		sub, ok := c.(map[string]any)
		if !ok {
			return "", subgraph.NewInvalidInputError(entity.Name, "AND/OR entries must be predicate documents")
		}
		frag, err := compilePredicate(st, entity, sub)
		if err != nil {
			return "", err
		}
		parts = append(parts, frag)
	}
	if len(parts) == 0 {
		return "1 = 1", nil
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, joiner) + ")", nil
}

// orderedPresentFields returns the entity's fields, in declaration order,
// filtered to those present in values and not virtual — the Value-key
// ordering invariant of spec.md §4.2, which also governs the binds array.
func orderedPresentFields(entity config.Entity, values map[string]any, kind config.OperationKind) []config.Field {
	var out []config.Field
	for _, f := range entity.Fields {
		if f.Virtual || f.ExcludedFromInput(kind) {
			continue
		}
		if _, ok := values[f.Name]; ok {
			out = append(out, f)
		}
	}
	return out
}

// CompileFindOne compiles the FindOne statement shape.
func CompileFindOne(entity config.Entity, dialectName string, query map[string]any) (*Plan, error) {
	st := newStatement(dialectName)
	pred, err := compilePredicate(st, entity, query)
	if err != nil {
		return nil, err
	}
	return &Plan{SQL: buildSelect(tableName(entity), pred), Binds: st.binds}, nil
}

// CompileFindMany compiles the FindMany statement shape. It is structurally
// identical to FindOne; the caller distinguishes "first row" vs "all rows"
// semantics, not the compiler.
func CompileFindMany(entity config.Entity, dialectName string, query map[string]any) (*Plan, error) {
	return CompileFindOne(entity, dialectName, query)
}

// CompileCreateOne compiles the CreateOne statement shape.
func CompileCreateOne(entity config.Entity, dialectName string, values map[string]any) (*Plan, error) {
	if len(values) == 0 {
		return nil, subgraph.NewInvalidInputError(entity.Name, "values must not be empty")
	}
	for k := range values {
		if _, ok := entity.FieldByName(k); !ok {
			return nil, subgraph.NewUnknownFieldError(entity.Name, k)
		}
	}

	fields := orderedPresentFields(entity, values, config.CreateOne)
	present := make(map[string]bool, len(fields))
	for _, f := range fields {
		present[f.Name] = true
	}
	for _, f := range entity.Fields {
		if f.Virtual || f.ExcludedFromInput(config.CreateOne) || present[f.Name] {
			continue
		}
		if f.Required && f.Default == nil {
			return nil, subgraph.NewInvalidInputError(entity.Name, fmt.Sprintf("required field %q is missing", f.Name))
		}
	}

	st := newStatement(dialectName)
	var cols, phs []string
	for _, f := range fields {
		v, err := scalar.CoerceRequestValue(entity.Name, f, values[f.Name])
		if err != nil {
			return nil, err
		}
		cols = append(cols, f.Name)
		phs = append(phs, st.bind(v.Native()))
	}
	for _, f := range entity.Fields {
		if f.Virtual || f.ExcludedFromInput(config.CreateOne) || present[f.Name] || f.Default == nil {
			continue
		}
		v, err := scalar.CoerceRequestValue(entity.Name, f, f.Default)
		if err != nil {
			return nil, err
		}
		cols = append(cols, f.Name)
		phs = append(phs, st.bind(v.Native()))
	}

	switch dialectName {
	case "postgres":
		return &Plan{SQL: buildInsert(tableName(entity), cols, phs, true), Binds: st.binds}, nil
	default: // mysql, sqlite
		// RefetchSQL carries a single placeholder for the primary key; the
		// caller substitutes the driver-reported last insert id as its sole
		// bind once the insert has executed (spec.md §3 invariant 3).
		refetchSt := newStatement(dialectName)
		pkPlaceholder := refetchSt.bind(nil)
		refetchSQL := buildSelect(tableName(entity), fmt.Sprintf("%s = %s", entity.PrimaryKey(), pkPlaceholder))
		return &Plan{
			SQL:        buildInsert(tableName(entity), cols, phs, false),
			Binds:      st.binds,
			Refetch:    RefetchByLastInsertID,
			RefetchSQL: refetchSQL,
		}, nil
	}
}

// CompileUpdateOne compiles the UpdateOne statement shape. Per spec.md
// §4.1, only MySQL exposes this operation — Postgres and SQLite can't
// compose RETURNING with LIMIT uniformly, so their schemas never surface
// it. The compiler still enforces the restriction defensively.
func CompileUpdateOne(entity config.Entity, dialectName string, query, values map[string]any) (*Plan, error) {
	if dialectName != "mysql" {
		return nil, subgraph.NewInvalidInputError(entity.Name, "UpdateOne is only supported on the MySQL dialect")
	}
	if len(query) == 0 {
		return nil, subgraph.NewInvalidInputError(entity.Name, "no filter provided")
	}
	for k := range values {
		if _, ok := entity.FieldByName(k); !ok {
			return nil, subgraph.NewUnknownFieldError(entity.Name, k)
		}
	}

	st := newStatement(dialectName)
	fields := orderedPresentFields(entity, values, config.UpdateOne)
	var assignments []string
	for _, f := range fields {
		v, err := scalar.CoerceRequestValue(entity.Name, f, values[f.Name])
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, fmt.Sprintf("%s = %s", f.Name, st.bind(v.Native())))
	}
	pred, err := compilePredicate(st, entity, query)
	if err != nil {
		return nil, err
	}

	refetchSt := newStatement(dialectName)
	refetchPred, err := compilePredicate(refetchSt, entity, query)
	if err != nil {
		return nil, err
	}

	return &Plan{
		SQL:          buildUpdate(tableName(entity), assignments, pred, true, false),
		Binds:        st.binds,
		Refetch:      RefetchByPredicate,
		RefetchSQL:   buildSelect(tableName(entity), refetchPred) + " LIMIT 1",
		RefetchBinds: refetchSt.binds,
	}, nil
}

// CompileUpdateMany compiles the UpdateMany statement shape.
func CompileUpdateMany(entity config.Entity, dialectName string, query, values map[string]any) (*Plan, error) {
	if len(query) == 0 {
		return nil, subgraph.NewInvalidInputError(entity.Name, "no filter provided")
	}
	for k := range values {
		if _, ok := entity.FieldByName(k); !ok {
			return nil, subgraph.NewUnknownFieldError(entity.Name, k)
		}
	}

	st := newStatement(dialectName)
	fields := orderedPresentFields(entity, values, config.UpdateMany)
	var assignments []string
	for _, f := range fields {
		v, err := scalar.CoerceRequestValue(entity.Name, f, values[f.Name])
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, fmt.Sprintf("%s = %s", f.Name, st.bind(v.Native())))
	}
	pred, err := compilePredicate(st, entity, query)
	if err != nil {
		return nil, err
	}

	if dialectName == "postgres" {
		return &Plan{SQL: buildUpdate(tableName(entity), assignments, pred, false, true), Binds: st.binds}, nil
	}

	refetchSt := newStatement(dialectName)
	refetchPred, err := compilePredicate(refetchSt, entity, query)
	if err != nil {
		return nil, err
	}
	return &Plan{
		SQL:          buildUpdate(tableName(entity), assignments, pred, false, false),
		Binds:        st.binds,
		Refetch:      RefetchByPredicate,
		RefetchSQL:   buildSelect(tableName(entity), refetchPred),
		RefetchBinds: refetchSt.binds,
	}, nil
}
