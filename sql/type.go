package sql

import (
	"fmt"
	"strings"
)

// Kind identifies each one of the variants of Type.
type Kind uint8

const (
	// KindBoolean is the kind of Boolean.
	KindBoolean Kind = iota + 1
	// KindInt64 is the kind of Int64.
	KindInt64
	// KindFloat64 is the kind of Float64.
	KindFloat64
	// KindString is the kind of String.
	KindString
	// KindDate is the kind of Date.
	KindDate
	// KindTimestamp is the kind of Timestamp.
	KindTimestamp
	// KindStruct is the kind of every StructType.
	KindStruct
	// KindArray is the kind of every ArrayType.
	KindArray
	// KindTable is the kind of every TableType.
	KindTable
)

var kindNames = map[Kind]string{
	KindBoolean:   "boolean",
	KindInt64:     "int64",
	KindFloat64:   "float64",
	KindString:    "string",
	KindDate:      "date",
	KindTimestamp: "timestamp",
	KindStruct:    "struct",
	KindArray:     "array",
	KindTable:     "table",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Type is the type of a value or expression. The set of implementations is
// closed: primitive types, StructType, ArrayType and TableType.
type Type interface {
	fmt.Stringer
	// Kind returns the variant of the type.
	Kind() Kind
	// Equals checks whether the given type is structurally equal to this one.
	Equals(Type) bool
	sealed()
}

type primitiveType Kind

var (
	// Boolean is a true or false value.
	Boolean Type = primitiveType(KindBoolean)
	// Int64 is a signed 64 bit integer.
	Int64 Type = primitiveType(KindInt64)
	// Float64 is a double precision floating point number.
	Float64 Type = primitiveType(KindFloat64)
	// String is a UTF-8 string.
	String Type = primitiveType(KindString)
	// Date is a calendar date without time zone.
	Date Type = primitiveType(KindDate)
	// Timestamp is an instant in time with microsecond precision.
	Timestamp Type = primitiveType(KindTimestamp)
)

func (t primitiveType) Kind() Kind     { return Kind(t) }
func (t primitiveType) String() string { return Kind(t).String() }
func (primitiveType) sealed()          {}

func (t primitiveType) Equals(o Type) bool {
	p, ok := o.(primitiveType)
	return ok && p == t
}

// StructField is a named member of a struct type.
type StructField struct {
	Name string
	Type Type
}

// StructType is an ordered list of named fields.
type StructType struct {
	Fields []StructField
}

// CreateStruct returns a new struct type with the given fields. Field names
// must be unique and non empty.
func CreateStruct(fields ...StructField) (StructType, error) {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return StructType{}, ErrInvalidType.New("struct field without name")
		}
		if f.Type == nil {
			return StructType{}, ErrInvalidType.New(fmt.Sprintf("struct field %q without type", f.Name))
		}
		if _, ok := seen[f.Name]; ok {
			return StructType{}, ErrDuplicateField.New(f.Name)
		}
		seen[f.Name] = struct{}{}
	}

	fs := make([]StructField, len(fields))
	copy(fs, fields)
	return StructType{Fields: fs}, nil
}

// MustCreateStruct is like CreateStruct but panics on error.
func MustCreateStruct(fields ...StructField) StructType {
	t, err := CreateStruct(fields...)
	if err != nil {
		panic(err)
	}
	return t
}

// Kind implements the Type interface.
func (StructType) Kind() Kind { return KindStruct }
func (StructType) sealed()    {}

// Field returns the field with the given name and its position.
func (t StructType) Field(name string) (StructField, int, bool) {
	for i, f := range t.Fields {
		if f.Name == name {
			return f, i, true
		}
	}
	return StructField{}, -1, false
}

// Equals implements the Type interface.
func (t StructType) Equals(o Type) bool {
	s, ok := o.(StructType)
	if !ok || len(s.Fields) != len(t.Fields) {
		return false
	}

	for i, f := range t.Fields {
		if f.Name != s.Fields[i].Name || !f.Type.Equals(s.Fields[i].Type) {
			return false
		}
	}
	return true
}

func (t StructType) String() string {
	fields := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		fields[i] = f.Name + ": " + f.Type.String()
	}
	return "struct<" + strings.Join(fields, ", ") + ">"
}

// ArrayType is a sequence of values of the same type.
type ArrayType struct {
	Elem Type
}

// CreateArray returns a new array type of the given element type.
func CreateArray(elem Type) ArrayType {
	return ArrayType{Elem: elem}
}

// Kind implements the Type interface.
func (ArrayType) Kind() Kind { return KindArray }
func (ArrayType) sealed()    {}

// Equals implements the Type interface.
func (t ArrayType) Equals(o Type) bool {
	a, ok := o.(ArrayType)
	return ok && t.Elem.Equals(a.Elem)
}

func (t ArrayType) String() string {
	return "array<" + t.Elem.String() + ">"
}

// TableType is the type of a relation.
type TableType struct {
	Schema Schema
}

// CreateTable returns the type of a relation with the given schema.
func CreateTable(schema Schema) TableType {
	return TableType{Schema: schema}
}

// Kind implements the Type interface.
func (TableType) Kind() Kind { return KindTable }
func (TableType) sealed()    {}

// Equals implements the Type interface.
func (t TableType) Equals(o Type) bool {
	tt, ok := o.(TableType)
	return ok && t.Schema.Equals(tt.Schema)
}

func (t TableType) String() string {
	cols := make([]string, len(t.Schema))
	for i, c := range t.Schema {
		cols[i] = c.Name + ": " + c.Type.String()
	}
	return "table<" + strings.Join(cols, ", ") + ">"
}

// IsNumber checks whether the type is Int64 or Float64.
func IsNumber(t Type) bool {
	return t != nil && (t.Kind() == KindInt64 || t.Kind() == KindFloat64)
}

// IsTemporal checks whether the type is Date or Timestamp.
func IsTemporal(t Type) bool {
	return t != nil && (t.Kind() == KindDate || t.Kind() == KindTimestamp)
}

// IsCompatible checks whether values of the two types can be operands of the
// same binary operation. Numbers are compatible between them, every other
// type is only compatible with a structurally equal type.
func IsCompatible(a, b Type) bool {
	if a == nil || b == nil {
		return false
	}

	if IsNumber(a) && IsNumber(b) {
		return true
	}

	return a.Equals(b)
}

// CommonType returns the type resulting of combining two compatible types,
// widening Int64 to Float64 when needed.
func CommonType(a, b Type) (Type, bool) {
	if !IsCompatible(a, b) {
		return nil, false
	}

	if IsNumber(a) && IsNumber(b) && !a.Equals(b) {
		return Float64, true
	}

	return a, true
}

var castRules = map[Kind][]Kind{
	KindInt64:     {KindFloat64, KindString, KindBoolean},
	KindFloat64:   {KindInt64, KindString},
	KindBoolean:   {KindInt64, KindString},
	KindString:    {KindInt64, KindFloat64, KindBoolean, KindDate, KindTimestamp},
	KindDate:      {KindString, KindTimestamp},
	KindTimestamp: {KindString, KindDate},
}

// CanCast checks whether there is a conversion rule from one type to the
// other. Nested types can only be converted to themselves.
func CanCast(from, to Type) bool {
	if from == nil || to == nil {
		return false
	}

	if from.Equals(to) {
		return true
	}

	for _, k := range castRules[from.Kind()] {
		if k == to.Kind() {
			return true
		}
	}
	return false
}
