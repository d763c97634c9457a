package sql

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	subgraph "github.com/the-devoyage/subgraph-go"
)

func TestDecodeColumn_Null(t *testing.T) {
	v, err := DecodeColumn("postgres", "TEXT", nil)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestDecodeColumn_PostgresUUID(t *testing.T) {
	id := uuid.New()
	v, err := DecodeColumn("postgres", "uuid", id.String())
	require.NoError(t, err)
	s, ok := v.String()
	require.True(t, ok)
	assert.Equal(t, id.String(), s)
}

func TestDecodeColumn_PostgresText(t *testing.T) {
	v, err := DecodeColumn("postgres", "varchar", "hello")
	require.NoError(t, err)
	s, _ := v.String()
	assert.Equal(t, "hello", s)
}

func TestDecodeColumn_PostgresInt(t *testing.T) {
	v, err := DecodeColumn("postgres", "int4", int64(7))
	require.NoError(t, err)
	i, _ := v.Int64()
	assert.Equal(t, int64(7), i)
}

func TestDecodeColumn_PostgresBool(t *testing.T) {
	v, err := DecodeColumn("postgres", "bool", true)
	require.NoError(t, err)
	b, _ := v.Bool()
	assert.True(t, b)
}

func TestDecodeColumn_PostgresTimestamp(t *testing.T) {
	now := time.Now()
	v, err := DecodeColumn("postgres", "timestamp", now)
	require.NoError(t, err)
	tm, ok := v.Time()
	require.True(t, ok)
	assert.True(t, tm.Equal(now))
}

func TestDecodeColumn_MySQLDatetimeStringPassthrough(t *testing.T) {
	v, err := DecodeColumn("mysql", "datetime", "2024-01-02 15:04:05")
	require.NoError(t, err)
	s, ok := v.String()
	require.True(t, ok)
	assert.Equal(t, "2024-01-02 15:04:05", s)
}

func TestDecodeColumn_SQLiteInteger(t *testing.T) {
	v, err := DecodeColumn("sqlite", "INTEGER", int64(1))
	require.NoError(t, err)
	i, _ := v.Int64()
	assert.Equal(t, int64(1), i)
}

func TestDecodeColumn_UnknownType(t *testing.T) {
	_, err := DecodeColumn("postgres", "bytea", []byte{0x01})
	assert.True(t, subgraph.IsUnsupportedColumnType(err))
}
