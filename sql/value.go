package sql

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// NamedValue is a value of a struct field.
type NamedValue struct {
	Name  string
	Value interface{}
}

// StructValue is an ordered set of named values, the host representation of
// values of a StructType.
type StructValue []NamedValue

// NewStructValue creates a struct value from pairs of name and value.
func NewStructValue(pairs ...interface{}) StructValue {
	if len(pairs)%2 != 0 {
		panic("NewStructValue: odd number of arguments")
	}

	s := make(StructValue, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		s = append(s, NamedValue{Name: pairs[i].(string), Value: pairs[i+1]})
	}
	return s
}

// Get returns the value of the field with the given name.
func (s StructValue) Get(name string) (interface{}, bool) {
	for _, f := range s {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Names returns the field names in order.
func (s StructValue) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// NewDate returns the canonical representation of a Date value.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// TypeOf infers the narrowest type able to hold the given host value.
func TypeOf(v interface{}) (Type, error) {
	switch v := v.(type) {
	case nil:
		return nil, ErrInvalidType.New("cannot infer the type of NULL")
	case bool:
		return Boolean, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
		return Int64, nil
	case float32, float64:
		return Float64, nil
	case string:
		return String, nil
	case time.Time:
		return Timestamp, nil
	case StructValue:
		fields := make([]StructField, len(v))
		for i, f := range v {
			t, err := TypeOf(f.Value)
			if err != nil {
				return nil, err
			}
			fields[i] = StructField{Name: f.Name, Type: t}
		}
		st, err := CreateStruct(fields...)
		if err != nil {
			return nil, err
		}
		return st, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, ErrInvalidType.New(fmt.Sprintf("%T", v))
	}

	var elem Type
	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i).Interface()
		if item == nil {
			continue
		}
		t, err := TypeOf(item)
		if err != nil {
			return nil, err
		}
		if elem == nil {
			elem = t
			continue
		}
		common, ok := CommonType(elem, t)
		if !ok {
			return nil, ErrTypeMismatch.New("array literal", fmt.Sprintf("elements of types %s and %s", elem, t))
		}
		elem = common
	}

	if elem == nil {
		et := rv.Type().Elem()
		if et.Kind() == reflect.Interface {
			return nil, ErrInvalidType.New("cannot infer the element type of an empty array")
		}
		t, err := TypeOf(reflect.Zero(et).Interface())
		if err != nil {
			return nil, err
		}
		elem = t
	}

	return CreateArray(elem), nil
}

// MustTypeOf is like TypeOf but panics on error.
func MustTypeOf(v interface{}) Type {
	t, err := TypeOf(v)
	if err != nil {
		panic(err)
	}
	return t
}

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
	"20060102",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999 MST",
	"2006-01-02 15:04:05.999999999Z07:00",
}

func toTime(v interface{}) (time.Time, error) {
	switch v := v.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range timeLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t.UTC(), nil
			}
		}
	}

	t, err := cast.ToTimeE(v)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// toInt64 converts v to an int64. Strings are always read in base 10 and
// floats must hold an integral value in range.
func toInt64(v interface{}) (int64, error) {
	switch v := v.(type) {
	case float64:
		return floatToInt64(v)
	case float32:
		return floatToInt64(float64(v))
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	}
	return cast.ToInt64E(v)
}

func floatToInt64(f float64) (int64, error) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%v is not an integral int64 value", f)
	}
	return int64(f), nil
}

func toDate(v interface{}) (time.Time, error) {
	t, err := toTime(v)
	if err != nil {
		return time.Time{}, err
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

func coercionError(v interface{}, t Type, cause error) error {
	msg := fmt.Sprintf("cannot coerce %#v to %s", v, t)
	if cause != nil {
		msg += ": " + cause.Error()
	}
	return ErrTypeMismatch.New("coercion", msg)
}

// Coerce converts a host value into the canonical representation of the
// given type: bool, int64, float64, string, time.Time, StructValue or
// []interface{}. NULL is kept as nil.
func Coerce(v interface{}, t Type) (interface{}, error) {
	if v == nil {
		return nil, nil
	}

	switch t := t.(type) {
	case primitiveType:
		var (
			result interface{}
			err    error
		)
		switch t.Kind() {
		case KindBoolean:
			result, err = cast.ToBoolE(v)
		case KindInt64:
			result, err = toInt64(v)
		case KindFloat64:
			result, err = cast.ToFloat64E(v)
		case KindString:
			result, err = cast.ToStringE(v)
		case KindDate:
			result, err = toDate(v)
		case KindTimestamp:
			result, err = toTime(v)
		}
		if err != nil {
			return nil, coercionError(v, t, err)
		}
		return result, nil
	case StructType:
		return coerceStruct(v, t)
	case ArrayType:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, coercionError(v, t, nil)
		}
		result := make([]interface{}, rv.Len())
		for i := range result {
			e, err := Coerce(rv.Index(i).Interface(), t.Elem)
			if err != nil {
				return nil, err
			}
			result[i] = e
		}
		return result, nil
	default:
		return nil, coercionError(v, t, nil)
	}
}

func coerceStruct(v interface{}, t StructType) (StructValue, error) {
	var lookup func(string) (interface{}, bool)
	var names []string
	switch v := v.(type) {
	case StructValue:
		lookup = v.Get
		names = v.Names()
	case map[string]interface{}:
		lookup = func(n string) (interface{}, bool) {
			val, ok := v[n]
			return val, ok
		}
		for n := range v {
			names = append(names, n)
		}
		sort.Strings(names)
	default:
		return nil, coercionError(v, t, nil)
	}

	for _, n := range names {
		if _, _, ok := t.Field(n); !ok {
			return nil, ErrFieldNotFound.New(t, n)
		}
	}

	result := make(StructValue, len(t.Fields))
	for i, f := range t.Fields {
		raw, _ := lookup(f.Name)
		val, err := Coerce(raw, f.Type)
		if err != nil {
			return nil, err
		}
		result[i] = NamedValue{Name: f.Name, Value: val}
	}
	return result, nil
}

// Encode converts a value of the given type into its wire representation:
// scalars become strings, structs positional lists and arrays lists.
func Encode(v interface{}, t Type) (interface{}, error) {
	v, err := Coerce(v, t)
	if err != nil || v == nil {
		return nil, err
	}

	switch t := t.(type) {
	case StructType:
		sv := v.(StructValue)
		result := make([]interface{}, len(sv))
		for i, f := range t.Fields {
			e, err := Encode(sv[i].Value, f.Type)
			if err != nil {
				return nil, err
			}
			result[i] = e
		}
		return result, nil
	case ArrayType:
		items := v.([]interface{})
		result := make([]interface{}, len(items))
		for i, item := range items {
			e, err := Encode(item, t.Elem)
			if err != nil {
				return nil, err
			}
			result[i] = e
		}
		return result, nil
	}

	switch t.Kind() {
	case KindBoolean:
		return strconv.FormatBool(v.(bool)), nil
	case KindInt64:
		return strconv.FormatInt(v.(int64), 10), nil
	case KindFloat64:
		return strconv.FormatFloat(v.(float64), 'g', -1, 64), nil
	case KindDate:
		return v.(time.Time).Format("2006-01-02"), nil
	case KindTimestamp:
		return v.(time.Time).Format(time.RFC3339Nano), nil
	default:
		return v, nil
	}
}

// Decode converts a raw value, as returned by a remote engine or a driver,
// into the canonical representation of the given type. Nested structs and
// arrays are decoded recursively and NULL fields are preserved.
func Decode(raw interface{}, t Type) (interface{}, error) {
	if raw == nil {
		return nil, nil
	}

	switch t := t.(type) {
	case StructType:
		return decodeStruct(raw, t)
	case ArrayType:
		rv := reflect.ValueOf(raw)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, coercionError(raw, t, nil)
		}
		result := make([]interface{}, rv.Len())
		for i := range result {
			e, err := Decode(rv.Index(i).Interface(), t.Elem)
			if err != nil {
				return nil, err
			}
			result[i] = e
		}
		return result, nil
	}

	if t.Kind() == KindTimestamp {
		if secs, ok := epochSeconds(raw); ok {
			whole, frac := math.Modf(secs)
			nsec := math.Round(frac*1e6) * 1e3
			return time.Unix(int64(whole), int64(nsec)).UTC(), nil
		}
	}

	return Coerce(raw, t)
}

// epochSeconds recognizes numeric timestamps, which engines return as the
// number of seconds since the epoch, sometimes in exponent notation.
func epochSeconds(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, !math.IsNaN(v) && !math.IsInf(v, 0)
	case int64:
		return float64(v), true
	case string:
		if isCompactDate(v) {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func isCompactDate(s string) bool {
	if len(s) != 8 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func decodeStruct(raw interface{}, t StructType) (StructValue, error) {
	result := make(StructValue, len(t.Fields))
	switch v := raw.(type) {
	case []interface{}:
		if len(v) != len(t.Fields) {
			return nil, ErrUnexpectedRowLength.New(len(t.Fields), len(v))
		}
		for i, f := range t.Fields {
			val, err := Decode(v[i], f.Type)
			if err != nil {
				return nil, err
			}
			result[i] = NamedValue{Name: f.Name, Value: val}
		}
		return result, nil
	case StructValue, map[string]interface{}:
		var lookup func(string) (interface{}, bool)
		if sv, ok := v.(StructValue); ok {
			lookup = sv.Get
		} else {
			m := v.(map[string]interface{})
			lookup = func(n string) (interface{}, bool) {
				val, ok := m[n]
				return val, ok
			}
		}
		for i, f := range t.Fields {
			fv, _ := lookup(f.Name)
			val, err := Decode(fv, f.Type)
			if err != nil {
				return nil, err
			}
			result[i] = NamedValue{Name: f.Name, Value: val}
		}
		return result, nil
	default:
		return nil, coercionError(raw, t, nil)
	}
}
