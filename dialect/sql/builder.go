package sql

import (
	"strconv"
	"strings"
)

// placeholder renders the n'th (1-indexed) bind placeholder for the given
// dialect: "$n" for Postgres, "?" for MySQL and SQLite.
func placeholder(dialectName string, n int) string {
	if dialectName == "postgres" {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// statement accumulates a SQL string and its positional binds as a plan is
// built up across the predicate compiler and the statement builders below.
type statement struct {
	dialect string
	buf     strings.Builder
	binds   []any
	next    int // next placeholder index, 1-indexed
}

func newStatement(dialectName string) *statement {
	return &statement{dialect: dialectName, next: 1}
}

func (s *statement) bind(v any) string {
	ph := placeholder(s.dialect, s.next)
	s.next++
	s.binds = append(s.binds, v)
	return ph
}

func (s *statement) String() string { return s.buf.String() }

// buildSelect renders "SELECT * FROM <table> WHERE <pred>".
func buildSelect(table, pred string) string {
	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(table)
	b.WriteString(" WHERE ")
	b.WriteString(pred)
	return b.String()
}

// buildInsert renders "INSERT INTO <table> (<cols>) VALUES (<phs>)",
// optionally followed by a Postgres "RETURNING *" suffix.
func buildInsert(table string, cols []string, phs []string, returning bool) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString(") VALUES (")
	b.WriteString(strings.Join(phs, ", "))
	b.WriteString(")")
	if returning {
		b.WriteString(" RETURNING *")
	}
	return b.String()
}

// buildUpdate renders "UPDATE <table> SET <assignments> WHERE <pred>",
// optionally followed by " LIMIT 1" and/or a Postgres "RETURNING *" suffix.
func buildUpdate(table string, assignments []string, pred string, limitOne, returning bool) string {
	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(table)
	b.WriteString(" SET ")
	b.WriteString(strings.Join(assignments, ", "))
	b.WriteString(" WHERE ")
	b.WriteString(pred)
	if limitOne {
		b.WriteString(" LIMIT 1")
	}
	if returning {
		b.WriteString(" RETURNING *")
	}
	return b.String()
}
