package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldError is one violated constraint of an inbound payload.
type FieldError struct {
	Loc  string `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// ValidationError lists every problem found in a payload.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Loc+": "+f.Msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(loc, typ, msg string) {
	e.Fields = append(e.Fields, FieldError{Loc: loc, Msg: msg, Type: typ})
}

// NewValidationError returns a ValidationError holding a single entry.
func NewValidationError(loc, typ, msg string) *ValidationError {
	e := &ValidationError{}
	e.add(loc, typ, msg)
	return e
}

var timeType = reflect.TypeOf(time.Time{})

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses ISO-8601 text. Values without an offset are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q", s)
}

// Bind decodes a JSON object into dst, which must point to a struct with
// json and binding tags. Unlike a plain json.Unmarshal it keeps going after
// the first bad field so that the returned *ValidationError names all of
// them. Fields absent from the body keep the value dst already holds.
// A required field fails only when its key is absent or null; an empty
// string or zero time is a value like any other.
func Bind(body []byte, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind: destination must be a struct pointer, got %T", dst)
	}

	verr := &ValidationError{}

	var raw map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&raw); err != nil || raw == nil {
		verr.add("body", "model_type", "Input should be a valid JSON object")
		return verr
	}

	sv := rv.Elem()
	st := sv.Type()
	names := make(map[string]string, st.NumField())
	failed := make(map[string]bool)

	for i := 0; i < st.NumField(); i++ {
		sf := st.Field(i)
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "" || name == "-" || !sf.IsExported() {
			continue
		}
		names[sf.Name] = name

		data, ok := raw[name]
		if !ok || isNull(data) {
			if isRequired(sf) && sf.Type.Kind() != reflect.Pointer {
				failed[name] = true
				verr.add(name, "missing", "Field required")
				continue
			}
			if !ok {
				continue
			}
		}
		if err := decodeField(data, sv.Field(i)); err != nil {
			failed[name] = true
			verr.add(name, err.typ, err.msg)
		}
	}

	if err := binding.Validator.ValidateStruct(dst); err != nil {
		var ves validator.ValidationErrors
		if !errors.As(err, &ves) {
			return fmt.Errorf("bind: %w", err)
		}
		for _, fe := range ves {
			name := names[fe.StructField()]
			if name == "" {
				name = fe.Field()
			}
			// required is settled above by key presence; validator would
			// also reject present zero values such as ""
			if failed[name] || fe.Tag() == "required" {
				continue
			}
			verr.add(name, fe.Tag(), fmt.Sprintf("Failed on the %q rule", fe.Tag()))
		}
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func isRequired(sf reflect.StructField) bool {
	for _, rule := range strings.Split(sf.Tag.Get("binding"), ",") {
		if rule == "required" {
			return true
		}
	}
	return false
}

func isNull(data json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

type fieldErr struct {
	typ string
	msg string
}

func decodeField(data json.RawMessage, field reflect.Value) *fieldErr {
	null := isNull(data)

	ft := field.Type()
	if ft.Kind() == reflect.Pointer {
		if null {
			field.Set(reflect.Zero(ft))
			return nil
		}
		elem := reflect.New(ft.Elem())
		if err := decodeField(data, elem.Elem()); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	}

	if null {
		// null for a non-nullable field counts as leaving it out
		return nil
	}

	if ft == timeType {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return &fieldErr{typ: "datetime_type", msg: "Input should be a valid datetime"}
		}
		t, err := ParseTimestamp(s)
		if err != nil {
			return &fieldErr{typ: "datetime_parsing", msg: "Input should be a valid datetime"}
		}
		field.Set(reflect.ValueOf(t))
		return nil
	}

	target := reflect.New(ft)
	if err := json.Unmarshal(data, target.Interface()); err != nil {
		return &fieldErr{typ: typeName(ft) + "_type", msg: "Input should be a valid " + typeName(ft)}
	}
	field.Set(target.Elem())
	return nil
}

func typeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice:
		return "list"
	case reflect.Int, reflect.Int32, reflect.Int64, reflect.Float64:
		return "number"
	default:
		return strings.ToLower(t.Kind().String())
	}
}
