// Package schema decodes and validates request payloads. Entity inputs are
// plain structs whose `json`, `db` and `validate` tags are the single source
// of truth for wire names, column names and constraints.
package schema

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Fields is the set of JSON field names present in a payload.
type Fields map[string]bool

// Has reports whether name was present.
func (f Fields) Has(name string) bool { return f[name] }

// Column is a column/value pair taken from an input struct.
type Column struct {
	Name  string
	Value any
	// KeepExisting makes an update write Value only where the stored
	// column is NULL.
	KeepExisting bool
}

// KeepExisting marks the named columns so an update leaves a stored
// non-NULL value in place.
func KeepExisting(cols []Column, names ...string) {
	for i := range cols {
		for _, n := range names {
			if cols[i].Name == n {
				cols[i].KeepExisting = true
			}
		}
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonName)
		// notnull only matters to ValidatePartial; see below.
		_ = validate.RegisterValidation("notnull", func(validator.FieldLevel) bool { return true })
	})
	return validate
}

func jsonName(sf reflect.StructField) string {
	name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return sf.Name
	}
	return name
}

// eachField calls fn for every exported, json-tagged field of the struct rv.
func eachField(rv reflect.Value, fn func(name string, fv reflect.Value, sf reflect.StructField)) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := jsonName(sf)
		if name == "" {
			continue
		}
		fn(name, rv.Field(i), sf)
	}
}

func structValue(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("schema: expected pointer to struct, got %T", v)
	}
	return rv.Elem(), nil
}

// Decode reads a JSON object into dst field by field so that every type
// mismatch is reported, not only the first. Unknown fields are ignored. The
// returned Fields lists the names that were present in the payload.
func Decode(body []byte, dst any) (Fields, error) {
	rv, err := structValue(dst)
	if err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		ve := &ValidationError{}
		ve.Add("", "request body must be a JSON object")
		return nil, ve
	}

	present := Fields{}
	ve := &ValidationError{}
	eachField(rv, func(name string, fv reflect.Value, _ reflect.StructField) {
		msg, ok := raw[name]
		if !ok {
			return
		}
		present[name] = true
		if err := json.Unmarshal(msg, fv.Addr().Interface()); err != nil {
			ve.Add(name, decodeReason(err))
		}
	})
	return present, ve.OrNil()
}

func decodeReason(err error) string {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, errInvalidDate):
		return "invalid date"
	case errors.Is(err, errInvalidNumber):
		return "invalid number"
	case errors.As(err, &typeErr):
		return "invalid type: expected " + kindName(typeErr.Type)
	default:
		return "invalid value"
	}
}

func kindName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}

// Validate checks a complete insert payload.
func Validate(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ve := &ValidationError{}
	for _, fe := range verrs {
		ve.Add(fieldPath(fe), reason(fe))
	}
	return ve
}

// ValidatePartial checks only the fields present in a patch payload. A
// required field may be omitted but not set to null; enum and format rules
// still apply to every field that is present. Optional fields tagged
// "notnull" (NOT NULL columns with a default) may not be nulled either.
func ValidatePartial(v any, present Fields) error {
	rv, err := structValue(v)
	if err != nil {
		return err
	}
	ve := &ValidationError{}
	eachField(rv, func(name string, fv reflect.Value, sf reflect.StructField) {
		if !present.Has(name) {
			return
		}
		required, rules := splitRequired(sf.Tag.Get("validate"))
		if fv.Kind() == reflect.Ptr && fv.IsNil() {
			if required {
				ve.Add(name, "required")
			} else if hasRule(rules, "notnull") {
				ve.Add(name, "must not be null")
			}
			return
		}
		if rules == "" {
			return
		}
		err := validatorInstance().Var(fv.Interface(), rules)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				field := name
				if ns := fe.Namespace(); strings.Contains(ns, "[") {
					field = name + ns[strings.Index(ns, "["):]
				}
				ve.Add(field, reason(fe))
			}
		} else if err != nil {
			ve.Add(name, "invalid value")
		}
	})
	return ve.OrNil()
}

// splitRequired strips the top-level "required" rule from a validate tag.
// Rules after "dive" apply to elements and are kept untouched.
func splitRequired(tag string) (bool, string) {
	if tag == "" {
		return false, ""
	}
	var (
		required bool
		rest     []string
		dived    bool
	)
	for _, rule := range strings.Split(tag, ",") {
		if rule == "dive" {
			dived = true
		}
		if !dived && rule == "required" {
			required = true
			continue
		}
		rest = append(rest, rule)
	}
	return required, strings.Join(rest, ",")
}

func hasRule(tag, rule string) bool {
	for _, r := range strings.Split(tag, ",") {
		if r == "dive" {
			return false
		}
		if r == rule {
			return true
		}
	}
	return false
}

// fieldPath drops the struct name from the validator namespace, leaving the
// JSON path, e.g. "prescriptions[0].medication".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "email":
		return "must be a valid email address"
	case "uuid", "uuid4":
		return "must be a valid identifier"
	case "min":
		if fe.Kind() == reflect.String {
			if fe.Param() == "1" {
				return "must not be empty"
			}
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "failed " + fe.Tag() + " rule"
	}
}

// Columns returns the db-tagged fields of an input as column/value pairs.
// With a nil present set every non-nil field is returned (insert); otherwise
// exactly the present fields are returned, nil meaning SQL NULL (update).
// Columns named in exclude are skipped.
func Columns(v any, present Fields, exclude ...string) []Column {
	rv, err := structValue(v)
	if err != nil {
		return nil
	}
	skip := make(map[string]bool, len(exclude))
	for _, c := range exclude {
		skip[c] = true
	}

	var cols []Column
	eachField(rv, func(name string, fv reflect.Value, sf reflect.StructField) {
		col := sf.Tag.Get("db")
		if col == "" || col == "-" || skip[col] {
			return
		}
		isNil := fv.Kind() == reflect.Ptr && fv.IsNil()
		if present == nil {
			if isNil {
				return
			}
		} else if !present.Has(name) {
			return
		}
		cols = append(cols, Column{Name: col, Value: columnValue(fv)})
	})
	return cols
}

func columnValue(fv reflect.Value) any {
	if fv.Kind() == reflect.Ptr {
		if fv.IsNil() {
			return nil
		}
		fv = fv.Elem()
	}
	val := fv.Interface()
	if dv, ok := val.(driver.Valuer); ok {
		if out, err := dv.Value(); err == nil {
			return out
		}
	}
	return val
}

// DecodeReader reads the whole request body and decodes it with Decode.
// Read errors (e.g. a body over the size limit) are returned unchanged.
func DecodeReader(r io.Reader, dst any) (Fields, error) {
	if r == nil {
		return Decode(nil, dst)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(body, dst)
}
