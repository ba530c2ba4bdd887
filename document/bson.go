package document

import (
	"fmt"
	"math"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FromBSON converts a value decoded by the mongo driver into a Value.
// Types with no counterpart in the model (binary, regex, javascript, ...)
// become their textual form.
func FromBSON(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null{}
	case primitive.Null, primitive.Undefined:
		return Null{}
	case bool:
		return Bool(x)
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case int:
		return Int(int64(x))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return Null{}
		}
		return Float(x)
	case primitive.Decimal128:
		if x.IsNaN() || x.IsInf() != 0 {
			return Null{}
		}
		return Number(x.String())
	case string:
		return String(x)
	case primitive.ObjectID:
		return Identifier(x)
	case primitive.DateTime:
		return Timestamp(x.Time().UTC())
	case time.Time:
		return Timestamp(x.UTC())
	case primitive.Timestamp:
		return Timestamp(time.Unix(int64(x.T), 0).UTC())
	case bson.D:
		m := make(Mapping, 0, len(x))
		for _, e := range x {
			m = append(m, Field{Key: e.Key, Value: FromBSON(e.Value)})
		}
		return m
	case bson.M:
		return fromMap(x)
	case map[string]any:
		return fromMap(x)
	case bson.A:
		s := make(Sequence, 0, len(x))
		for _, e := range x {
			s = append(s, FromBSON(e))
		}
		return s
	case []any:
		s := make(Sequence, 0, len(x))
		for _, e := range x {
			s = append(s, FromBSON(e))
		}
		return s
	case []string:
		s := make(Sequence, 0, len(x))
		for _, e := range x {
			s = append(s, String(e))
		}
		return s
	case Value:
		return x
	default:
		return String(fmt.Sprint(x))
	}
}

// Go maps carry no order, keys are sorted to keep output deterministic.
func fromMap(x map[string]any) Mapping {
	keys := make([]string, 0, len(x))
	for k := range x {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	m := make(Mapping, 0, len(x))
	for _, k := range keys {
		m = append(m, Field{Key: k, Value: FromBSON(x[k])})
	}
	return m
}
