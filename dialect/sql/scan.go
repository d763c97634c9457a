package sql

import (
	"github.com/the-devoyage/subgraph-go/value"
)

// ScanRows decodes every row of rows into a map[string]value.Value keyed by
// column name, using DecodeColumn's per-dialect column-type map (spec.md
// §4.5). The caller is responsible for closing rows.
func ScanRows(dialectName string, rows *Rows) ([]map[string]value.Value, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	var out []map[string]value.Value
	for rows.Next() {
		dest := make([]any, len(cols))
		for i := range dest {
			dest[i] = new(any)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := make(map[string]value.Value, len(cols))
		for i, col := range cols {
			native := *(dest[i].(*any))
			v, err := DecodeColumn(dialectName, types[i].DatabaseTypeName(), native)
			if err != nil {
				return nil, err
			}
			row[col] = v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
