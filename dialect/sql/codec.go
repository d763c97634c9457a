package sql

import (
	"strings"
	"time"

	"github.com/google/uuid"

	subgraph "github.com/the-devoyage/subgraph-go"
	"github.com/the-devoyage/subgraph-go/config"
	"github.com/the-devoyage/subgraph-go/value"
)

// DecodeColumn implements the SQL half of the Scalar Codec (spec.md §4.5):
// a per-dialect column-type map from a database/sql scan destination's
// native Go value into the Intermediate Value. columnType is the database
// type name reported by *sql.ColumnType.DatabaseTypeName (case-insensitive).
func DecodeColumn(dialectName, columnType string, native any) (value.Value, error) {
	if native == nil {
		return value.Null(), nil
	}
	ct := strings.ToUpper(columnType)
	switch {
	case isUUIDType(dialectName, ct):
		s, ok := asString(native)
		if !ok {
			return value.Value{}, subgraph.NewUnsupportedColumnTypeError(toConfigDialect(dialectName), columnType)
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return value.Value{}, subgraph.NewUnsupportedColumnTypeError(toConfigDialect(dialectName), columnType)
		}
		return value.UUID(id), nil
	case isStringType(dialectName, ct):
		s, ok := asString(native)
		if !ok {
			return value.Value{}, subgraph.NewUnsupportedColumnTypeError(toConfigDialect(dialectName), columnType)
		}
		return value.String(s), nil
	case isBoolType(dialectName, ct):
		b, ok := asBool(native)
		if !ok {
			return value.Value{}, subgraph.NewUnsupportedColumnTypeError(toConfigDialect(dialectName), columnType)
		}
		return value.Bool(b), nil
	case isIntType(dialectName, ct):
		i, ok := asInt64(native)
		if !ok {
			return value.Value{}, subgraph.NewUnsupportedColumnTypeError(toConfigDialect(dialectName), columnType)
		}
		return value.Int64(i), nil
	case isDateTimeType(dialectName, ct):
		t, ok := native.(time.Time)
		if !ok {
			return value.Value{}, subgraph.NewUnsupportedColumnTypeError(toConfigDialect(dialectName), columnType)
		}
		return value.DateTime(t), nil
	default:
		return value.Value{}, subgraph.NewUnsupportedColumnTypeError(toConfigDialect(dialectName), columnType)
	}
}

func toConfigDialect(dialectName string) config.Dialect {
	switch dialectName {
	case "postgres":
		return config.Postgres
	case "mysql":
		return config.MySQL
	default:
		return config.SQLite
	}
}

func isUUIDType(dialectName, ct string) bool {
	return dialectName == "postgres" && ct == "UUID"
}

func isStringType(dialectName, ct string) bool {
	switch dialectName {
	case "postgres":
		return ct == "TEXT" || ct == "VARCHAR" || ct == "CHAR" || ct == "BPCHAR"
	case "mysql":
		return ct == "TEXT" || ct == "VARCHAR" || ct == "CHAR" || ct == "DATETIME"
	case "sqlite":
		return ct == "TEXT"
	default:
		return false
	}
}

func isIntType(dialectName, ct string) bool {
	switch dialectName {
	case "postgres":
		return strings.HasPrefix(ct, "INT")
	case "mysql":
		return strings.HasPrefix(ct, "INT") || strings.HasPrefix(ct, "BIGINT") || strings.HasPrefix(ct, "TINYINT") || strings.HasPrefix(ct, "SMALLINT")
	case "sqlite":
		return ct == "INTEGER"
	default:
		return false
	}
}

func isBoolType(dialectName, ct string) bool {
	switch dialectName {
	case "postgres":
		return ct == "BOOL" || ct == "BOOLEAN"
	case "mysql":
		return ct == "BOOL" || ct == "BOOLEAN" || ct == "TINYINT"
	case "sqlite":
		return ct == "BOOL" || ct == "BOOLEAN"
	default:
		return false
	}
}

func isDateTimeType(dialectName, ct string) bool {
	switch dialectName {
	case "postgres":
		return ct == "TIMESTAMP" || ct == "TIMESTAMPTZ"
	case "sqlite":
		return ct == "DATETIME"
	default:
		return false
	}
}

func asString(native any) (string, bool) {
	switch v := native.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}

func asInt64(native any) (int64, bool) {
	switch v := native.(type) {
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

func asBool(native any) (bool, bool) {
	switch v := native.(type) {
	case bool:
		return v, true
	case int64:
		return v != 0, true
	default:
		return false, false
	}
}
