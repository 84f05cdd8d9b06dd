package types

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// FieldType is the data type of a node configuration field
type FieldType string

// Primitive field types. Values are checked against their Go kind.
const (
	FieldInt    FieldType = "int"
	FieldFloat  FieldType = "float"
	FieldBool   FieldType = "bool"
	FieldDict   FieldType = "dict"
	FieldString FieldType = "str"
	FieldList   FieldType = "list"
)

// Opaque field types. Any value is accepted.
const (
	FieldImage       FieldType = "Image"
	FieldAudio       FieldType = "Audio"
	FieldFile        FieldType = "File"
	FieldQuote       FieldType = "Quote"
	FieldCustom      FieldType = "Custom"
	FieldAny         FieldType = "Any"
	FieldGoogleSheet FieldType = "GoogleSheet"
	FieldSourceType  FieldType = "SourceType"
)

var fieldTypes = map[FieldType]bool{
	FieldInt:         true,
	FieldFloat:       true,
	FieldBool:        true,
	FieldDict:        true,
	FieldString:      true,
	FieldList:        true,
	FieldImage:       false,
	FieldAudio:       false,
	FieldFile:        false,
	FieldQuote:       false,
	FieldCustom:      false,
	FieldAny:         false,
	FieldGoogleSheet: false,
	FieldSourceType:  false,
}

// ParseFieldType returns the field type named by s
func ParseFieldType(s string) (FieldType, error) {
	t := FieldType(s)
	if _, ok := fieldTypes[t]; !ok {
		return "", errors.Errorf("unknown field type %q", s)
	}
	return t, nil
}

// Primitive reports whether values of this type are shape-checked
func (t FieldType) Primitive() bool {
	return fieldTypes[t]
}

func (t FieldType) String() string {
	return string(t)
}

// ValueError is returned when a value does not match a field type
type ValueError struct {
	Type   FieldType
	Value  any
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("value '%v' for data type %s is invalid (%s)", e.Value, e.Type, e.Reason)
}

// Validate checks value against the field type. Booleans never satisfy
// int or float, integers satisfy float, floats never satisfy int.
func (t FieldType) Validate(value any) error {
	primitive, known := fieldTypes[t]
	if !known {
		return &ValueError{Type: t, Value: value, Reason: "unknown data type"}
	}
	if !primitive {
		return nil
	}

	if value == nil {
		return &ValueError{Type: t, Value: value, Reason: "value is nil"}
	}

	if n, ok := value.(json.Number); ok {
		return t.validateNumber(n)
	}

	kind := reflect.TypeOf(value).Kind()
	var ok bool
	switch t {
	case FieldInt:
		ok = isInteger(kind)
	case FieldFloat:
		ok = isInteger(kind) || kind == reflect.Float32 || kind == reflect.Float64
	case FieldBool:
		ok = kind == reflect.Bool
	case FieldString:
		ok = kind == reflect.String
	case FieldDict:
		ok = kind == reflect.Map && reflect.TypeOf(value).Key().Kind() == reflect.String
	case FieldList:
		ok = kind == reflect.Slice || kind == reflect.Array
	}
	if !ok {
		return &ValueError{Type: t, Value: value, Reason: fmt.Sprintf("got %T", value)}
	}
	return nil
}

func (t FieldType) validateNumber(n json.Number) error {
	switch t {
	case FieldInt:
		if _, err := n.Int64(); err != nil {
			return &ValueError{Type: t, Value: n, Reason: "not an integer"}
		}
		return nil
	case FieldFloat:
		if _, err := n.Float64(); err != nil {
			return &ValueError{Type: t, Value: n, Reason: "not a number"}
		}
		return nil
	}
	return &ValueError{Type: t, Value: n, Reason: "got number"}
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
