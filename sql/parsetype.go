package sql

import (
	"strings"
	"unicode"
)

var primitiveNames = map[string]Type{
	"boolean":   Boolean,
	"bool":      Boolean,
	"int64":     Int64,
	"int":       Int64,
	"float64":   Float64,
	"double":    Float64,
	"string":    String,
	"date":      Date,
	"timestamp": Timestamp,
}

// ParseType parses a type in its textual form, e.g.
// "struct<x: array<struct<y: array<double>>>>".
func ParseType(s string) (Type, error) {
	p := &typeParser{input: s}
	t, err := p.parse()
	if err != nil {
		return nil, err
	}

	p.skipSpaces()
	if p.pos != len(p.input) {
		return nil, ErrInvalidType.New(s)
	}
	return t, nil
}

// MustParseType is like ParseType but panics on error.
func MustParseType(s string) Type {
	t, err := ParseType(s)
	if err != nil {
		panic(err)
	}
	return t
}

type typeParser struct {
	input string
	pos   int
}

func (p *typeParser) skipSpaces() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
}

func (p *typeParser) ident() string {
	p.skipSpaces()
	start := p.pos
	for p.pos < len(p.input) {
		c := rune(p.input[p.pos])
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' {
			break
		}
		p.pos++
	}
	return p.input[start:p.pos]
}

func (p *typeParser) expect(c byte) error {
	p.skipSpaces()
	if p.pos >= len(p.input) || p.input[p.pos] != c {
		return ErrInvalidType.New(p.input)
	}
	p.pos++
	return nil
}

func (p *typeParser) peek() byte {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *typeParser) parse() (Type, error) {
	name := strings.ToLower(p.ident())
	switch name {
	case "array":
		if err := p.expect('<'); err != nil {
			return nil, err
		}
		elem, err := p.parse()
		if err != nil {
			return nil, err
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		return CreateArray(elem), nil
	case "struct":
		if err := p.expect('<'); err != nil {
			return nil, err
		}
		var fields []StructField
		for {
			field := p.ident()
			if field == "" {
				return nil, ErrInvalidType.New(p.input)
			}
			if err := p.expect(':'); err != nil {
				return nil, err
			}
			t, err := p.parse()
			if err != nil {
				return nil, err
			}
			fields = append(fields, StructField{Name: field, Type: t})
			if p.peek() != ',' {
				break
			}
			p.pos++
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		st, err := CreateStruct(fields...)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		if t, ok := primitiveNames[name]; ok {
			return t, nil
		}
		return nil, ErrInvalidType.New(p.input)
	}
}
