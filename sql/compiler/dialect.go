package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/src-d/go-bqsql.v0/sql"
)

// Names of the functions a Dialect knows how to spell.
const (
	fnConcat        = "concat"
	fnArrayConcat   = "array_concat"
	fnDivide        = "divide"
	fnMod           = "mod"
	fnFind          = "find"
	fnArrayLength   = "array_length"
	fnArrayIndex    = "array_index"
	fnSplit         = "split"
	fnStringJoin    = "string_join"
	fnIf            = "if"
	fnIfNull        = "ifnull"
	fnCountIf       = "count_if"
	fnCountRows     = "count_rows"
	fnCountDistinct = "nunique"
	fnCollect       = "collect"
	fnToDate        = "to_date"
	fnCast          = "cast"
)

// Dialect describes how a target engine spells identifiers, types,
// literals and functions.
type Dialect struct {
	name        string
	quote       string
	quoteEscape string
	paramPrefix string
	types       map[sql.Kind]string
	nested      bool
	except      bool
	qualified   bool
	bools       [2]string
	typedTimes  bool
	// str renders a string literal, quotes included.
	str       func(string) string
	nonFinite string
	functions map[string]string
	// operators are the functions spelled with infix or postfix syntax,
	// whose arguments need parentheses unless they are atoms.
	operators map[string]bool
}

// BigQuery is the dialect of BigQuery standard SQL.
var BigQuery = &Dialect{
	name:        "bigquery",
	quote:       "`",
	quoteEscape: "\\`",
	paramPrefix: "@",
	types: map[sql.Kind]string{
		sql.KindBoolean:   "BOOL",
		sql.KindInt64:     "INT64",
		sql.KindFloat64:   "FLOAT64",
		sql.KindString:    "STRING",
		sql.KindDate:      "DATE",
		sql.KindTimestamp: "TIMESTAMP",
	},
	nested:     true,
	except:     true,
	qualified:  true,
	bools:      [2]string{"FALSE", "TRUE"},
	typedTimes: true,
	str:        backslashQuote,
	nonFinite:  "CAST('%s' AS FLOAT64)",
	functions: map[string]string{
		fnConcat:        "CONCAT(%s, %s)",
		fnArrayConcat:   "ARRAY_CONCAT(%s, %s)",
		fnDivide:        "IEEE_DIVIDE(%s, %s)",
		fnMod:           "MOD(%s, %s)",
		fnFind:          "STRPOS(%s, %s) - 1",
		fnArrayLength:   "ARRAY_LENGTH(%s)",
		fnArrayIndex:    "%s[OFFSET(%s)]",
		fnSplit:         "SPLIT(%s, %s)",
		fnStringJoin:    "ARRAY_TO_STRING([%s], %s)",
		fnIf:            "IF(%s, %s, NULL)",
		fnIfNull:        "IFNULL(%s, %s)",
		fnCountIf:       "COUNTIF(%s)",
		fnCountRows:     "count(*)",
		fnCountDistinct: "COUNT(DISTINCT %s)",
		fnCollect:       "ARRAY_AGG(%s)",
		fnToDate:        "DATE(%s)",
		fnCast:          "CAST(%s AS %s)",
		"sum":           "sum(%s)",
		"mean":          "avg(%s)",
		"min":           "min(%s)",
		"max":           "max(%s)",
		"count":         "count(%s)",
		"length":        "LENGTH(%s)",
		"lower":         "LOWER(%s)",
		"upper":         "UPPER(%s)",
	},
	operators: map[string]bool{fnArrayIndex: true},
}

// SQLite is the dialect of SQLite. It has no arrays nor structs.
var SQLite = &Dialect{
	name:        "sqlite",
	quote:       `"`,
	quoteEscape: `""`,
	paramPrefix: "@",
	types: map[sql.Kind]string{
		sql.KindBoolean:   "INTEGER",
		sql.KindInt64:     "INTEGER",
		sql.KindFloat64:   "REAL",
		sql.KindString:    "TEXT",
		sql.KindDate:      "TEXT",
		sql.KindTimestamp: "TEXT",
	},
	bools: [2]string{"0", "1"},
	str:   standardQuote,
	functions: map[string]string{
		fnConcat:        "(%s || %s)",
		fnDivide:        "(CAST(%s AS REAL) / %s)",
		fnMod:           "(%s %% %s)",
		fnFind:          "INSTR(%s, %s) - 1",
		fnIf:            "IIF(%s, %s, NULL)",
		fnIfNull:        "IFNULL(%s, %s)",
		fnCountIf:       "COUNT(IIF(%s, 1, NULL))",
		fnCountRows:     "count(*)",
		fnCountDistinct: "COUNT(DISTINCT %s)",
		fnToDate:        "DATE(%s)",
		fnCast:          "CAST(%s AS %s)",
		"sum":           "sum(%s)",
		"mean":          "avg(%s)",
		"min":           "min(%s)",
		"max":           "max(%s)",
		"count":         "count(%s)",
		"length":        "LENGTH(%s)",
		"lower":         "LOWER(%s)",
		"upper":         "UPPER(%s)",
	},
	operators: map[string]bool{fnConcat: true, fnDivide: true, fnMod: true},
}

// DialectByName returns the dialect with the given name.
func DialectByName(name string) (*Dialect, error) {
	switch strings.ToLower(name) {
	case "", BigQuery.name:
		return BigQuery, nil
	case SQLite.name:
		return SQLite, nil
	default:
		return nil, sql.ErrUnsupportedOperation.New("dialect "+name, "compiler")
	}
}

// Name returns the name of the dialect.
func (d *Dialect) Name() string {
	return d.name
}

// Quote quotes an identifier.
func (d *Dialect) Quote(name string) string {
	return d.quote + strings.ReplaceAll(name, d.quote, d.quoteEscape) + d.quote
}

// Placeholder returns the reference to the query parameter with the given
// name.
func (d *Dialect) Placeholder(name string) string {
	return d.paramPrefix + name
}

// TableReference returns how a remote table is referenced.
func (d *Dialect) TableReference(id sql.TableID) string {
	if d.qualified {
		return d.Quote(id.String())
	}
	return d.Quote(id.Name)
}

// TypeName returns the name of the type in the dialect.
func (d *Dialect) TypeName(t sql.Type) (string, error) {
	switch t := t.(type) {
	case sql.ArrayType:
		if !d.nested {
			return "", sql.ErrUnsupportedBackendType.New(t, d.name)
		}
		elem, err := d.TypeName(t.Elem)
		if err != nil {
			return "", err
		}
		return "ARRAY<" + elem + ">", nil
	case sql.StructType:
		if !d.nested {
			return "", sql.ErrUnsupportedBackendType.New(t, d.name)
		}
		fields := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			ft, err := d.TypeName(f.Type)
			if err != nil {
				return "", err
			}
			fields[i] = f.Name + " " + ft
		}
		return "STRUCT<" + strings.Join(fields, ", ") + ">", nil
	}

	if t != nil {
		if name, ok := d.types[t.Kind()]; ok {
			return name, nil
		}
	}
	return "", sql.ErrUnsupportedBackendType.New(t, d.name)
}

func (d *Dialect) call(fn string, args ...string) (string, error) {
	format, ok := d.functions[fn]
	if !ok {
		return "", sql.ErrUnsupportedOperation.New(fn, d.name)
	}

	params := make([]interface{}, len(args))
	for i, a := range args {
		params[i] = a
	}
	return fmt.Sprintf(format, params...), nil
}

func backslashQuote(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// standardQuote renders a string with doubled quotes. Line breaks are
// concatenated as char() calls so that the literal never spans lines.
func standardQuote(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	}

	var (
		parts []string
		start int
	)
	for i, r := range s {
		if r != '\n' && r != '\r' {
			continue
		}

		if i > start {
			parts = append(parts, "'"+strings.ReplaceAll(s[start:i], "'", "''")+"'")
		}
		parts = append(parts, "char("+strconv.Itoa(int(r))+")")
		start = i + 1
	}

	if start < len(s) {
		parts = append(parts, "'"+strings.ReplaceAll(s[start:], "'", "''")+"'")
	}
	return "(" + strings.Join(parts, " || ") + ")"
}
