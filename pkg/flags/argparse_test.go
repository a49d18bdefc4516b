// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flags

import (
	"reflect"
	"strings"
	"testing"
)

func ptr[T any](v T) *T { return &v }

func TestBooleanParser(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{in: "true", want: true},
		{in: "T", want: true},
		{in: "1", want: true},
		{in: "False"},
		{in: "f"},
		{in: "0"},
		{in: "yes", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := BooleanParser{}.Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIntegerParser(t *testing.T) {
	tests := []struct {
		name    string
		lower   *int
		upper   *int
		in      string
		want    int
		wantErr string
	}{
		{name: "decimal", in: "42", want: 42},
		{name: "negative", in: "-3", want: -3},
		{name: "hex", in: "0x1f", want: 31},
		{name: "octal", in: "0o17", want: 15},
		{name: "signed hex", in: "0x-1", wantErr: "invalid int value"},
		{name: "garbage", in: "abc", wantErr: "invalid int value"},
		{name: "in range", lower: ptr(0), upper: ptr(10), in: "5", want: 5},
		{name: "above range", lower: ptr(0), upper: ptr(10), in: "11", wantErr: "11 is not an integer in the range [0, 10]"},
		{name: "below range", lower: ptr(0), upper: ptr(10), in: "-1", wantErr: "-1 is not an integer in the range [0, 10]"},
		{name: "not positive", lower: ptr(1), in: "0", wantErr: "0 is not a positive integer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewIntegerParser(tt.lower, tt.upper).Parse(tt.in)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Parse(%q) error = %v, want %q", tt.in, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNumericSyntacticHelp(t *testing.T) {
	tests := []struct {
		name string
		p    ArgumentParser
		want string
	}{
		{"int unbounded", NewIntegerParser(nil, nil), "an integer"},
		{"int range", NewIntegerParser(ptr(1), ptr(5)), "an integer in the range [1, 5]"},
		{"int positive", NewIntegerParser(ptr(1), nil), "a positive integer"},
		{"int negative", NewIntegerParser(nil, ptr(-1)), "a negative integer"},
		{"int non-negative", NewIntegerParser(ptr(0), nil), "a non-negative integer"},
		{"int non-positive", NewIntegerParser(nil, ptr(0)), "a non-positive integer"},
		{"int upper", NewIntegerParser(nil, ptr(5)), "integer <= 5"},
		{"int lower", NewIntegerParser(ptr(5), nil), "integer >= 5"},
		{"float unbounded", NewFloatParser(nil, nil), "a number"},
		{"float lower one", NewFloatParser(ptr(1.0), nil), "number >= 1"},
		{"float non-negative", NewFloatParser(ptr(0.0), nil), "a non-negative number"},
		{"float range", NewFloatParser(ptr(0.5), ptr(1.5)), "a number in the range [0.5, 1.5]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.SyntacticHelp(); got != tt.want {
				t.Errorf("SyntacticHelp() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFloatParser(t *testing.T) {
	p := NewFloatParser(ptr(0.0), ptr(1.0))
	got, err := p.Parse("0.25")
	if err != nil || got != 0.25 {
		t.Fatalf("Parse(0.25) = %v, %v", got, err)
	}
	if _, err := p.Parse("1.5"); err == nil || err.Error() != "1.5 is not a number in the range [0, 1]" {
		t.Errorf("Parse(1.5) error = %v", err)
	}
	if !p.OutsideBounds(2.0) || p.OutsideBounds(0.5) || p.OutsideBounds("nope") {
		t.Error("OutsideBounds disagrees with bounds")
	}
}

func TestEnumParser(t *testing.T) {
	sensitive := NewEnumParser([]string{"a", "B"}, true)
	if got, err := sensitive.Parse("B"); err != nil || got != "B" {
		t.Errorf("Parse(B) = %v, %v", got, err)
	}
	_, err := sensitive.Parse("b")
	if err == nil || err.Error() != "value should be one of <a|B>" {
		t.Errorf("Parse(b) error = %v", err)
	}

	insensitive := NewEnumParser([]string{"a", "B"}, false)
	if got, err := insensitive.Parse("b"); err != nil || got != "B" {
		t.Errorf("case-insensitive Parse(b) = %v, %v, want canonical B", got, err)
	}

	open := NewEnumParser(nil, true)
	if got, err := open.Parse("anything"); err != nil || got != "anything" {
		t.Errorf("empty enum Parse = %v, %v", got, err)
	}
}

func TestListParser(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr bool
	}{
		{name: "empty", in: "", want: []string{}},
		{name: "trimmed", in: "a, b ,c", want: []string{"a", "b", "c"}},
		{name: "quoted comma", in: `"x,y",z`, want: []string{"x,y", "z"}},
		{name: "quoted newline", in: "\"x\ny\",z", want: []string{"x\ny", "z"}},
		{name: "naked newline", in: "a\nb", wantErr: true},
		{name: "unterminated quote", in: `"a`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ListParser{}.Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				if !strings.HasPrefix(err.Error(), "unable to parse the value") {
					t.Errorf("error = %q", err)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestWhitespaceSeparatedListParser(t *testing.T) {
	got, _ := WhitespaceSeparatedListParser{}.Parse("a  b\tc,d")
	if want := []string{"a", "b", "c,d"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Parse = %v, want %v", got, want)
	}
	p := WhitespaceSeparatedListParser{CommaCompat: true}
	got, _ = p.Parse("a,b c")
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("CommaCompat Parse = %v, want %v", got, want)
	}
	if p.Type() != "whitespace or comma separated list of strings" {
		t.Errorf("Type() = %q", p.Type())
	}
}

func TestCsvListRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		items []string
	}{
		{"quoting", []string{"plain", "with,comma", `with "quotes"`, "multi\nline"}},
		{"empty list", []string{}},
		{"single empty item", []string{""}},
		{"empty items", []string{"", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := CsvListSerializer{Sep: ','}.Serialize(tt.items)
			got, err := ListParser{}.Parse(s)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", s, err)
			}
			if !reflect.DeepEqual(got, tt.items) {
				t.Errorf("round trip via %q = %#v, want %#v", s, got, tt.items)
			}
		})
	}
}

func TestSerializers(t *testing.T) {
	tests := []struct {
		name string
		s    ArgumentSerializer
		in   any
		want string
	}{
		{"default float", DefaultSerializer{}, 0.1, "0.1"},
		{"default int", DefaultSerializer{}, 7, "7"},
		{"default nil", DefaultSerializer{}, nil, ""},
		{"bool", BooleanSerializer{}, true, "true"},
		{"list", ListSerializer{Sep: " "}, []string{"a", "b"}, "a b"},
		{"csv", CsvListSerializer{Sep: ','}, []string{"a", "b,c"}, `a,"b,c"`},
		{"csv single empty", CsvListSerializer{Sep: ','}, []string{""}, `""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Serialize(tt.in); got != tt.want {
				t.Errorf("Serialize(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
