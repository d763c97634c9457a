package subgraph

import (
	"context"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/the-devoyage/subgraph-go/value"
)

// Cache is the interface for caching compiled plans or resolved rows.
// Nothing in this repository uses a Cache: neither the Schema Synthesizer
// nor the Resolver Dispatcher takes one. A caller wiring in
// Redis/Memcached/an in-memory LRU uses it around those calls, keying a
// resolved row set by CacheKey and storing it with EncodeValues;
// cross-source as-type results are then cached as part of the parent's own
// entry since there is no batching to key on, per spec.md §4.4.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with an optional TTL.
	// If ttl is 0, the value should not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes all values with the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear removes all values from the cache.
	Clear(ctx context.Context) error
}

// CacheKey identifies one resolved operation result for caching.
type CacheKey struct {
	Entity    string
	Operation string
	Backend   string
	Predicate string
}

// String returns the string representation of the cache key.
func (k CacheKey) String() string {
	return k.Entity + ":" + k.Operation + ":" + k.Backend + ":" + k.Predicate
}

// EncodeValues serializes a resolved row/document set for storage in a
// Cache. msgpack is used instead of JSON because the Value Model's sum
// type distinguishes Int64 from Float64 and carries Bytes/DateTime
// natively — JSON would conflate or lossily re-encode those on decode.
// UUID and ObjectID values are encoded as their string form.
func EncodeValues(rows []value.Value) ([]byte, error) {
	natives := make([]any, len(rows))
	for i, r := range rows {
		natives[i] = r.Native()
	}
	return msgpack.Marshal(natives)
}

// DecodeValues is the inverse of EncodeValues. Decoded rows carry only the
// Kinds msgpack can distinguish natively (Null, Bool, Int64, Float64,
// String, DateTime, Bytes, List, Object); UUID and ObjectID come back as
// String, so callers that need that fidelity out of a cache hit re-run the
// scalar codec over the
// decoded Object map using the entity's field schema, the same way a fresh
// backend decode would.
func DecodeValues(data []byte) ([]value.Value, error) {
	var natives []any
	if err := msgpack.Unmarshal(data, &natives); err != nil {
		return nil, err
	}
	rows := make([]value.Value, len(natives))
	for i, n := range natives {
		rows[i] = nativeToValue(n)
	}
	return rows, nil
}

func nativeToValue(n any) value.Value {
	switch v := n.(type) {
	case nil:
		return value.Null()
	case bool:
		return value.Bool(v)
	case int64:
		return value.Int64(v)
	case int8:
		return value.Int64(int64(v))
	case int16:
		return value.Int64(int64(v))
	case int32:
		return value.Int64(int64(v))
	case int:
		return value.Int64(int64(v))
	case uint64:
		return value.Int64(int64(v))
	case float32:
		return value.Float64(float64(v))
	case float64:
		return value.Float64(v)
	case string:
		return value.String(v)
	case []byte:
		return value.Bytes(v)
	case time.Time:
		return value.DateTime(v)
	case []any:
		list := make([]value.Value, len(v))
		for i, e := range v {
			list[i] = nativeToValue(e)
		}
		return value.List(list)
	case map[string]any:
		obj := make(map[string]value.Value, len(v))
		for k, e := range v {
			obj[k] = nativeToValue(e)
		}
		return value.Object(obj)
	default:
		return value.Null()
	}
}
