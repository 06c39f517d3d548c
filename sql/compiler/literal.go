package compiler

import (
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/src-d/go-bqsql.v0/sql"
)

const timestampLayout = "2006-01-02 15:04:05.999999"

// Literal encodes a value of the given type as a literal of the dialect.
// The value is coerced to the type first.
func (d *Dialect) Literal(v interface{}, t sql.Type) (string, error) {
	v, err := sql.Coerce(v, t)
	if err != nil {
		return "", err
	}

	if v == nil {
		return "NULL", nil
	}

	switch t := t.(type) {
	case sql.ArrayType:
		return d.arrayLiteral(v.([]interface{}), t)
	case sql.StructType:
		return d.structLiteral(v.(sql.StructValue), t)
	}

	switch t.Kind() {
	case sql.KindBoolean:
		if v.(bool) {
			return d.bools[1], nil
		}
		return d.bools[0], nil
	case sql.KindInt64:
		return strconv.FormatInt(v.(int64), 10), nil
	case sql.KindFloat64:
		return d.floatLiteral(v.(float64))
	case sql.KindString:
		return d.stringLiteral(v.(string)), nil
	case sql.KindDate:
		s := d.stringLiteral(v.(time.Time).Format("2006-01-02"))
		if d.typedTimes {
			return "DATE " + s, nil
		}
		return s, nil
	case sql.KindTimestamp:
		s := d.stringLiteral(v.(time.Time).UTC().Format(timestampLayout))
		if d.typedTimes {
			return "TIMESTAMP " + s, nil
		}
		return s, nil
	default:
		return "", sql.ErrUnsupportedBackendType.New(t, d.name)
	}
}

func (d *Dialect) stringLiteral(s string) string {
	return d.str(s)
}

func (d *Dialect) floatLiteral(f float64) (string, error) {
	var special string
	switch {
	case math.IsNaN(f):
		special = "nan"
	case math.IsInf(f, 1):
		special = "inf"
	case math.IsInf(f, -1):
		special = "-inf"
	}

	if special != "" {
		if d.nonFinite == "" {
			return "", sql.ErrUnsupportedBackendType.New("float64 "+special, d.name)
		}
		return strings.Replace(d.nonFinite, "%s", special, 1), nil
	}

	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s, nil
}

func (d *Dialect) arrayLiteral(items []interface{}, t sql.ArrayType) (string, error) {
	if !d.nested {
		return "", sql.ErrUnsupportedBackendType.New(t, d.name)
	}

	if len(items) == 0 {
		name, err := d.TypeName(t)
		if err != nil {
			return "", err
		}
		return name + "[]", nil
	}

	values := make([]string, len(items))
	for i, item := range items {
		v, err := d.Literal(item, t.Elem)
		if err != nil {
			return "", err
		}
		values[i] = v
	}
	return "[" + strings.Join(values, ", ") + "]", nil
}

func (d *Dialect) structLiteral(sv sql.StructValue, t sql.StructType) (string, error) {
	if !d.nested {
		return "", sql.ErrUnsupportedBackendType.New(t, d.name)
	}

	fields := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		v, err := d.Literal(sv[i].Value, f.Type)
		if err != nil {
			return "", err
		}
		fields[i] = v + " AS " + d.Quote(f.Name)
	}
	return "STRUCT(" + strings.Join(fields, ", ") + ")", nil
}
