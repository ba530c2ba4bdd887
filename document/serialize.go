// Package document models stored documents as a closed set of value
// variants and rewrites them into a JSON-safe form.
package document

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Serialize returns a copy of v where identifiers are replaced by their hex
// string and timestamps by their ISO-8601 text, at every mapping depth.
// Inside a sequence only mappings and identifiers are rewritten; other
// elements are kept as they are. v is never modified.
func Serialize(v Value) Value {
	switch x := v.(type) {
	case nil:
		return nil
	case Identifier:
		return String(primitive.ObjectID(x).Hex())
	case Timestamp:
		return String(FormatTimestamp(time.Time(x)))
	case Mapping:
		return serializeMapping(x)
	case Sequence:
		return serializeSequence(x)
	case Null, Bool, Number, String:
		return x
	default:
		return x
	}
}

// SerializeAll converts and serializes a batch of raw documents.
func SerializeAll[T any](docs []T) []Value {
	out := make([]Value, 0, len(docs))
	for _, d := range docs {
		out = append(out, Serialize(FromBSON(d)))
	}
	return out
}

func serializeMapping(m Mapping) Value {
	if m == nil {
		return m
	}
	out := make(Mapping, len(m))
	for i, f := range m {
		out[i] = Field{Key: f.Key, Value: Serialize(f.Value)}
	}
	return out
}

func serializeSequence(s Sequence) Value {
	if s == nil {
		return s
	}
	out := make(Sequence, len(s))
	for i, e := range s {
		switch x := e.(type) {
		case Mapping:
			out[i] = serializeMapping(x)
		case Identifier:
			out[i] = String(primitive.ObjectID(x).Hex())
		default:
			out[i] = e
		}
	}
	return out
}
