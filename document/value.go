package document

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Value is one node of a stored document. The set of variants is closed:
// Null, Bool, Number, String, Identifier, Timestamp, Sequence and Mapping.
type Value interface {
	json.Marshaler
	isValue()
}

type Null struct{}

type Bool bool

// Number keeps the decimal text of a numeric value so that int64 values
// survive the trip to JSON without float rounding.
type Number string

type String string

// Identifier is a store-assigned document id.
type Identifier primitive.ObjectID

type Timestamp time.Time

type Sequence []Value

// Field is a single key/value pair of a Mapping.
type Field struct {
	Key   string
	Value Value
}

// Mapping is an ordered set of fields, in the order the store returned them.
type Mapping []Field

func (Null) isValue()       {}
func (Bool) isValue()       {}
func (Number) isValue()     {}
func (String) isValue()     {}
func (Identifier) isValue() {}
func (Timestamp) isValue()  {}
func (Sequence) isValue()   {}
func (Mapping) isValue()    {}

// Int returns the Number for an integer.
func Int(i int64) Number {
	return Number(strconv.FormatInt(i, 10))
}

// Float returns the Number for a float. NaN and infinities have no JSON
// form; callers get Null for those from FromBSON.
func Float(f float64) Number {
	return Number(strconv.FormatFloat(f, 'g', -1, 64))
}

// Get returns the value stored under key.
func (m Mapping) Get(key string) (Value, bool) {
	for _, f := range m {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// FormatTimestamp renders t the way serialized documents carry timestamps.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

func (b Bool) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(b))
}

func (n Number) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("0"), nil
	}
	return []byte(n), nil
}

func (s String) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (id Identifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(primitive.ObjectID(id).Hex())
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(FormatTimestamp(time.Time(t)))
}

func (s Sequence) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := marshalValue(v)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (m Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		b, err := marshalValue(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalValue(v Value) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	return v.MarshalJSON()
}
