// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flags

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
)

// ArgumentParser converts a raw command-line string into a typed value.
//
// Implementations must be stateless: Parse may depend only on its input and
// on arguments bound at construction, because one parser can back many flags.
type ArgumentParser interface {
	// Parse converts argument, returning an error that explains why the
	// value is illegal.
	Parse(argument string) (any, error)
	// Type describes the value type, e.g. "int" or "comma separated list
	// of strings".
	Type() string
	// SyntacticHelp describes the legal values, e.g. "a positive integer".
	SyntacticHelp() string
}

// ArgumentSerializer renders a value so that the matching parser reads it
// back to an equal value.
type ArgumentSerializer interface {
	Serialize(value any) string
}

// StringParser accepts any string unchanged.
type StringParser struct{}

func (StringParser) Parse(argument string) (any, error) { return argument, nil }
func (StringParser) Type() string                       { return "string" }
func (StringParser) SyntacticHelp() string              { return "" }

// BooleanParser parses true/t/1 and false/f/0, ignoring case.
type BooleanParser struct{}

func (BooleanParser) Parse(argument string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(argument)) {
	case "true", "t", "1":
		return true, nil
	case "false", "f", "0":
		return false, nil
	}
	return nil, fmt.Errorf("non-boolean argument to boolean flag: %q", argument)
}

func (BooleanParser) Type() string          { return "bool" }
func (BooleanParser) SyntacticHelp() string { return "" }

// Number is the set of value types a NumericParser can produce.
type Number interface {
	int | float64
}

// NumericParser parses an int or float64, optionally bounded on either side.
// A nil bound is unbounded.
type NumericParser[T Number] struct {
	lower, upper *T
	help         string
	typ          string
	convert      func(string) (T, error)
}

// NewIntegerParser returns a parser of integers within [lower, upper].
// Decimal, 0x-prefixed hex, and 0o-prefixed octal input is accepted.
func NewIntegerParser(lower, upper *int) *NumericParser[int] {
	p := &NumericParser[int]{
		lower:   clonePtr(lower),
		upper:   clonePtr(upper),
		typ:     "int",
		convert: parseInt,
	}
	p.help = numericHelp(p.lower, p.upper, "an", "integer", true)
	return p
}

// NewFloatParser returns a parser of floating point numbers within
// [lower, upper].
func NewFloatParser(lower, upper *float64) *NumericParser[float64] {
	p := &NumericParser[float64]{
		lower:   clonePtr(lower),
		upper:   clonePtr(upper),
		typ:     "float",
		convert: parseFloat,
	}
	p.help = numericHelp(p.lower, p.upper, "a", "number", false)
	return p
}

func (p *NumericParser[T]) Parse(argument string) (any, error) {
	v, err := p.convert(argument)
	if err != nil {
		return nil, err
	}
	if p.isOutside(v) {
		return nil, fmt.Errorf("%s is not %s", formatNumber(v), p.help)
	}
	return v, nil
}

func (p *NumericParser[T]) Type() string          { return p.typ }
func (p *NumericParser[T]) SyntacticHelp() string { return p.help }

// Bounds returns copies of the lower and upper bound.
func (p *NumericParser[T]) Bounds() (lower, upper *T) {
	return clonePtr(p.lower), clonePtr(p.upper)
}

// HasBounds reports whether either bound is set.
func (p *NumericParser[T]) HasBounds() bool {
	return p.lower != nil || p.upper != nil
}

// OutsideBounds reports whether v is of the parser's type and violates a
// bound. It returns false for values of any other type.
func (p *NumericParser[T]) OutsideBounds(v any) bool {
	t, ok := v.(T)
	return ok && p.isOutside(t)
}

func (p *NumericParser[T]) isOutside(v T) bool {
	return (p.lower != nil && v < *p.lower) || (p.upper != nil && v > *p.upper)
}

func numericHelp[T Number](lower, upper *T, article, noun string, integral bool) string {
	is := func(p *T, want T) bool { return p != nil && *p == want }
	switch {
	case lower != nil && upper != nil:
		return fmt.Sprintf("%s %s in the range [%s, %s]", article, noun, formatNumber(*lower), formatNumber(*upper))
	case integral && is(lower, 1):
		return "a positive " + noun
	case integral && is(upper, T(0)-1):
		return "a negative " + noun
	case is(lower, 0):
		return "a non-negative " + noun
	case is(upper, 0):
		return "a non-positive " + noun
	case upper != nil:
		return fmt.Sprintf("%s <= %s", noun, formatNumber(*upper))
	case lower != nil:
		return fmt.Sprintf("%s >= %s", noun, formatNumber(*lower))
	}
	return article + " " + noun
}

func parseInt(argument string) (int, error) {
	s := strings.TrimSpace(argument)
	base := 10
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'o':
			base, s = 8, s[2:]
		case 'x':
			base, s = 16, s[2:]
		}
		if base != 10 && (s[0] == '-' || s[0] == '+') {
			return 0, fmt.Errorf("invalid int value %q", argument)
		}
	}
	n, err := strconv.ParseInt(s, base, 0)
	if err != nil {
		return 0, fmt.Errorf("invalid int value %q", argument)
	}
	return int(n), nil
}

func parseFloat(argument string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(argument), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value %q", argument)
	}
	return f, nil
}

func formatNumber[T Number](v T) string {
	switch x := any(v).(type) {
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// EnumParser accepts one of a fixed set of strings and returns the value in
// its declared casing. An empty set accepts any string.
type EnumParser struct {
	values        []string
	caseSensitive bool
}

// NewEnumParser returns an EnumParser for values.
func NewEnumParser(values []string, caseSensitive bool) *EnumParser {
	return &EnumParser{
		values:        append([]string(nil), values...),
		caseSensitive: caseSensitive,
	}
}

func (p *EnumParser) Parse(argument string) (any, error) {
	if len(p.values) == 0 {
		return argument, nil
	}
	for _, v := range p.values {
		if v == argument || (!p.caseSensitive && strings.EqualFold(v, argument)) {
			return v, nil
		}
	}
	return nil, fmt.Errorf("value should be one of <%s>", strings.Join(p.values, "|"))
}

func (p *EnumParser) Type() string          { return "string enum" }
func (p *EnumParser) SyntacticHelp() string { return "<" + strings.Join(p.values, "|") + ">" }

// Values returns the allowed values in declaration order.
func (p *EnumParser) Values() []string { return append([]string(nil), p.values...) }

// CaseSensitive reports whether matching is case sensitive.
func (p *EnumParser) CaseSensitive() bool { return p.caseSensitive }

// ListParser parses a comma separated list of strings with CSV quoting, so
// items may contain commas or newlines when quoted. Items are trimmed.
type ListParser struct{}

func (p ListParser) Parse(argument string) (any, error) {
	if argument == "" {
		return []string{}, nil
	}
	r := csv.NewReader(strings.NewReader(argument))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	record, err := r.Read()
	if err == nil {
		// Anything past the first record means an unquoted newline.
		if _, err2 := r.Read(); err2 == nil {
			err = errors.New("new-line character seen in unquoted field")
		} else if err2 != io.EOF {
			err = err2
		}
	}
	if err != nil {
		return nil, fmt.Errorf("unable to parse the value %q as a %s: %v", argument, p.Type(), err)
	}
	out := make([]string, len(record))
	for i, s := range record {
		out[i] = strings.TrimSpace(s)
	}
	return out, nil
}

func (ListParser) Type() string          { return "comma separated list of strings" }
func (ListParser) SyntacticHelp() string { return "a comma separated list" }

// WhitespaceSeparatedListParser splits on runs of whitespace and, when
// CommaCompat is set, on commas as well for flags that used to be comma
// separated.
type WhitespaceSeparatedListParser struct {
	CommaCompat bool
}

func (p WhitespaceSeparatedListParser) Parse(argument string) (any, error) {
	if p.CommaCompat {
		argument = strings.ReplaceAll(argument, ",", " ")
	}
	return strings.Fields(argument), nil
}

func (p WhitespaceSeparatedListParser) Type() string {
	return p.separatorName() + " separated list of strings"
}

func (p WhitespaceSeparatedListParser) SyntacticHelp() string {
	return "a " + p.separatorName() + " separated list"
}

func (p WhitespaceSeparatedListParser) separatorName() string {
	if p.CommaCompat {
		return "whitespace or comma"
	}
	return "whitespace"
}

// DefaultSerializer renders scalars the way the built-in parsers read them.
type DefaultSerializer struct{}

func (DefaultSerializer) Serialize(value any) string {
	return formatValue(value)
}

// BooleanSerializer renders true and false.
type BooleanSerializer struct{}

func (BooleanSerializer) Serialize(value any) string {
	b, _ := value.(bool)
	return strconv.FormatBool(b)
}

// ListSerializer joins list items with Sep.
type ListSerializer struct {
	Sep string
}

func (s ListSerializer) Serialize(value any) string {
	items := sliceItems(value)
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = formatValue(it)
	}
	return strings.Join(parts, s.Sep)
}

// CsvListSerializer writes list items as one CSV record, quoting items that
// contain the separator, quotes or newlines.
type CsvListSerializer struct {
	Sep rune
}

func (s CsvListSerializer) Serialize(value any) string {
	items := sliceItems(value)
	record := make([]string, len(items))
	for i, it := range items {
		record[i] = formatValue(it)
	}
	if len(record) == 1 && record[0] == "" {
		// An unquoted lone empty field would read back as an empty list.
		return `""`
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if s.Sep != 0 {
		w.Comma = s.Sep
	}
	if err := w.Write(record); err != nil {
		// Only reachable with an invalid separator; fall back to a plain join.
		return strings.Join(record, string(s.Sep))
	}
	w.Flush()
	return strings.TrimSuffix(buf.String(), "\n")
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// sliceItems returns the elements of a slice or array value, or v itself as
// a single element for anything else.
func sliceItems(v any) []any {
	if v == nil {
		return nil
	}
	if items, ok := v.([]any); ok {
		return items
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{v}
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items
}

func isSlice(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}
