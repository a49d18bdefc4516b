// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flags

import (
	"fmt"
	"strings"
)

// DefineOption adjusts a flag definition.
type DefineOption func(*defineOptions)

type defineOptions struct {
	shortName       string
	module          Module
	allowOverride   bool
	allowOverwrite  bool
	lower, upper    any
	caseInsensitive bool
	commaCompat     bool
}

func collectOptions(opts []DefineOption) defineOptions {
	o := defineOptions{allowOverwrite: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithShortName registers a one-character alternative name, used as -s.
func WithShortName(s string) DefineOption {
	return func(o *defineOptions) { o.shortName = s }
}

// WithModule attributes the flag to m instead of the registry's main module.
func WithModule(m Module) DefineOption {
	return func(o *defineOptions) { o.module = m }
}

// WithAllowOverride lets a later definition of the same name replace this
// one, provided the later one allows override as well.
func WithAllowOverride() DefineOption {
	return func(o *defineOptions) { o.allowOverride = true }
}

// WithAllowOverwrite controls whether the flag may appear more than once on
// the command line. It defaults to true.
func WithAllowOverwrite(allow bool) DefineOption {
	return func(o *defineOptions) { o.allowOverwrite = allow }
}

// LowerBound sets the inclusive lower bound of a numeric flag.
func LowerBound[T Number](v T) DefineOption {
	return func(o *defineOptions) { o.lower = v }
}

// UpperBound sets the inclusive upper bound of a numeric flag.
func UpperBound[T Number](v T) DefineOption {
	return func(o *defineOptions) { o.upper = v }
}

// CaseInsensitive makes an enum flag match its values ignoring case.
func CaseInsensitive() DefineOption {
	return func(o *defineOptions) { o.caseInsensitive = true }
}

// CommaCompat makes a space separated list flag split on commas too.
func CommaCompat() DefineOption {
	return func(o *defineOptions) { o.commaCompat = true }
}

func (o defineOptions) settings(kind flagKind, boolean bool) flagSettings {
	return flagSettings{
		shortName:      o.shortName,
		boolean:        boolean,
		allowOverride:  o.allowOverride,
		allowOverwrite: o.allowOverwrite,
		kind:           kind,
	}
}

func intBound(v any) (*int, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case int:
		return &x, nil
	case float64:
		if float64(int(x)) != x {
			return nil, fmt.Errorf("bound %v is not an integer", x)
		}
		n := int(x)
		return &n, nil
	}
	return nil, fmt.Errorf("unsupported bound type %T", v)
}

func floatBound(v any) (*float64, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return &x, nil
	case int:
		f := float64(x)
		return &f, nil
	}
	return nil, fmt.Errorf("unsupported bound type %T", v)
}

func (fv *FlagValues) define(parser ArgumentParser, serializer ArgumentSerializer, name string, def any, help string, o defineOptions, s flagSettings) (*Flag, error) {
	f, err := newFlag(parser, serializer, name, def, help, s)
	if err != nil {
		return nil, err
	}
	if err := fv.DefineFlag(f, o.module); err != nil {
		return nil, err
	}
	return fv.registered(f), nil
}

// registered returns the flag that holds f's name after DefineFlag. An
// override that lost to an already parsed flag leaves that flag in place.
func (fv *FlagValues) registered(f *Flag) *Flag {
	if r := fv.flags[f.Name]; r != nil {
		return r
	}
	return f
}

// Define registers a flag using a custom parser and serializer. It returns
// the flag registered under name, which is the existing one when an
// override loses to a flag that already holds a command-line value.
func (fv *FlagValues) Define(parser ArgumentParser, serializer ArgumentSerializer, name string, def any, help string, opts ...DefineOption) (*Flag, error) {
	o := collectOptions(opts)
	return fv.define(parser, serializer, name, def, help, o, o.settings(kindPlain, false))
}

// DefineMulti registers a flag that collects every occurrence as a list
// item, each converted by parser.
func (fv *FlagValues) DefineMulti(parser ArgumentParser, serializer ArgumentSerializer, name string, def any, help string, opts ...DefineOption) (*Flag, error) {
	o := collectOptions(opts)
	return fv.define(parser, serializer, name, def, help, o, o.settings(kindMulti, false))
}

// DefineString registers a string flag.
func (fv *FlagValues) DefineString(name string, def any, help string, opts ...DefineOption) (*Flag, error) {
	return fv.Define(StringParser{}, DefaultSerializer{}, name, def, help, opts...)
}

// DefineBool registers a boolean flag, set with --name and cleared with
// --noname.
func (fv *FlagValues) DefineBool(name string, def any, help string, opts ...DefineOption) (*Flag, error) {
	o := collectOptions(opts)
	return fv.define(BooleanParser{}, BooleanSerializer{}, name, def, help, o, o.settings(kindPlain, true))
}

// DefineInteger registers an int flag. Bounds given with LowerBound and
// UpperBound are enforced on parse and on Set.
func (fv *FlagValues) DefineInteger(name string, def any, help string, opts ...DefineOption) (*Flag, error) {
	o := collectOptions(opts)
	p, err := newIntParser(o)
	if err != nil {
		return nil, err
	}
	f, err := fv.define(p, DefaultSerializer{}, name, def, help, o, o.settings(kindPlain, false))
	if err != nil {
		return nil, err
	}
	return f, fv.registerBoundsValidator(f, p)
}

// DefineFloat registers a float64 flag with optional bounds.
func (fv *FlagValues) DefineFloat(name string, def any, help string, opts ...DefineOption) (*Flag, error) {
	o := collectOptions(opts)
	p, err := newFloatParser(o)
	if err != nil {
		return nil, err
	}
	f, err := fv.define(p, DefaultSerializer{}, name, def, help, o, o.settings(kindPlain, false))
	if err != nil {
		return nil, err
	}
	return f, fv.registerBoundsValidator(f, p)
}

// DefineEnum registers a string flag restricted to values.
func (fv *FlagValues) DefineEnum(name string, def any, values []string, help string, opts ...DefineOption) (*Flag, error) {
	o := collectOptions(opts)
	p := NewEnumParser(values, !o.caseInsensitive)
	return fv.define(p, DefaultSerializer{}, name, def, enumHelp(values, help), o, o.settings(kindPlain, false))
}

// DefineList registers a comma separated list flag holding a []string.
func (fv *FlagValues) DefineList(name string, def any, help string, opts ...DefineOption) (*Flag, error) {
	return fv.Define(ListParser{}, CsvListSerializer{Sep: ','}, name, def, help, opts...)
}

// DefineSpaceSepList registers a whitespace separated list flag holding a
// []string.
func (fv *FlagValues) DefineSpaceSepList(name string, def any, help string, opts ...DefineOption) (*Flag, error) {
	o := collectOptions(opts)
	p := WhitespaceSeparatedListParser{CommaCompat: o.commaCompat}
	return fv.define(p, ListSerializer{Sep: " "}, name, def, help, o, o.settings(kindPlain, false))
}

// DefineMultiString registers a repeatable string flag.
func (fv *FlagValues) DefineMultiString(name string, def any, help string, opts ...DefineOption) (*Flag, error) {
	return fv.DefineMulti(StringParser{}, DefaultSerializer{}, name, def, help, opts...)
}

// DefineMultiInteger registers a repeatable int flag. Bounds apply to each
// item.
func (fv *FlagValues) DefineMultiInteger(name string, def any, help string, opts ...DefineOption) (*Flag, error) {
	o := collectOptions(opts)
	p, err := newIntParser(o)
	if err != nil {
		return nil, err
	}
	f, err := fv.define(p, DefaultSerializer{}, name, def, help, o, o.settings(kindMulti, false))
	if err != nil {
		return nil, err
	}
	return f, fv.registerBoundsValidator(f, p)
}

// DefineMultiFloat registers a repeatable float64 flag.
func (fv *FlagValues) DefineMultiFloat(name string, def any, help string, opts ...DefineOption) (*Flag, error) {
	o := collectOptions(opts)
	p, err := newFloatParser(o)
	if err != nil {
		return nil, err
	}
	f, err := fv.define(p, DefaultSerializer{}, name, def, help, o, o.settings(kindMulti, false))
	if err != nil {
		return nil, err
	}
	return f, fv.registerBoundsValidator(f, p)
}

// DefineMultiEnum registers a repeatable flag whose items are restricted to
// values.
func (fv *FlagValues) DefineMultiEnum(name string, def any, values []string, help string, opts ...DefineOption) (*Flag, error) {
	o := collectOptions(opts)
	p := NewEnumParser(values, !o.caseInsensitive)
	return fv.define(p, DefaultSerializer{}, name, def, enumHelp(values, help), o, o.settings(kindMulti, false))
}

// DefineAlias registers name as another name for the existing flag original.
// Reads and writes through either name reach the same value.
func (fv *FlagValues) DefineAlias(name, original string, opts ...DefineOption) (*Flag, error) {
	target := fv.Lookup(original)
	if target == nil {
		return nil, &UnrecognizedFlagError{Name: original, Suggestions: Suggestions(original, fv.suggestionNames())}
	}
	o := collectOptions(opts)
	a := newAlias(name, target)
	if err := fv.DefineFlag(a, o.module); err != nil {
		return nil, err
	}
	return fv.registered(a), nil
}

func enumHelp(values []string, help string) string {
	if help == "" {
		help = noHelp
	}
	return "<" + strings.Join(values, "|") + ">: " + help
}

func newIntParser(o defineOptions) (*NumericParser[int], error) {
	lo, err := intBound(o.lower)
	if err != nil {
		return nil, err
	}
	hi, err := intBound(o.upper)
	if err != nil {
		return nil, err
	}
	return NewIntegerParser(lo, hi), nil
}

func newFloatParser(o defineOptions) (*NumericParser[float64], error) {
	lo, err := floatBound(o.lower)
	if err != nil {
		return nil, err
	}
	hi, err := floatBound(o.upper)
	if err != nil {
		return nil, err
	}
	return NewFloatParser(lo, hi), nil
}

type boundedParser interface {
	HasBounds() bool
	OutsideBounds(v any) bool
	SyntacticHelp() string
}

// registerBoundsValidator keeps values assigned through Set within the
// parser's bounds. Multi flags are checked item by item.
func (fv *FlagValues) registerBoundsValidator(f *Flag, p boundedParser) error {
	if !p.HasBounds() {
		return nil
	}
	return fv.RegisterValidator(f.Name, func(v any) (bool, error) {
		for _, it := range sliceItems(v) {
			if p.OutsideBounds(it) {
				return false, fmt.Errorf("%s is not %s", formatValue(it), p.SyntacticHelp())
			}
		}
		return true, nil
	}, "")
}

// DefineFlag registers f in CommandLine.
func DefineFlag(f *Flag, m Module) error { return CommandLine.DefineFlag(f, m) }

// Define registers a custom flag in CommandLine.
func Define(parser ArgumentParser, serializer ArgumentSerializer, name string, def any, help string, opts ...DefineOption) (*Flag, error) {
	return CommandLine.Define(parser, serializer, name, def, help, opts...)
}

// DefineMulti registers a custom repeatable flag in CommandLine.
func DefineMulti(parser ArgumentParser, serializer ArgumentSerializer, name string, def any, help string, opts ...DefineOption) (*Flag, error) {
	return CommandLine.DefineMulti(parser, serializer, name, def, help, opts...)
}

// DefineString registers a string flag in CommandLine.
func DefineString(name string, def any, help string, opts ...DefineOption) (*Flag, error) {
	return CommandLine.DefineString(name, def, help, opts...)
}

// DefineBool registers a boolean flag in CommandLine.
func DefineBool(name string, def any, help string, opts ...DefineOption) (*Flag, error) {
	return CommandLine.DefineBool(name, def, help, opts...)
}

// DefineInteger registers an int flag in CommandLine.
func DefineInteger(name string, def any, help string, opts ...DefineOption) (*Flag, error) {
	return CommandLine.DefineInteger(name, def, help, opts...)
}

// DefineFloat registers a float64 flag in CommandLine.
func DefineFloat(name string, def any, help string, opts ...DefineOption) (*Flag, error) {
	return CommandLine.DefineFloat(name, def, help, opts...)
}

// DefineEnum registers an enum flag in CommandLine.
func DefineEnum(name string, def any, values []string, help string, opts ...DefineOption) (*Flag, error) {
	return CommandLine.DefineEnum(name, def, values, help, opts...)
}

// DefineList registers a comma separated list flag in CommandLine.
func DefineList(name string, def any, help string, opts ...DefineOption) (*Flag, error) {
	return CommandLine.DefineList(name, def, help, opts...)
}

// DefineSpaceSepList registers a whitespace separated list flag in CommandLine.
func DefineSpaceSepList(name string, def any, help string, opts ...DefineOption) (*Flag, error) {
	return CommandLine.DefineSpaceSepList(name, def, help, opts...)
}

// DefineMultiString registers a repeatable string flag in CommandLine.
func DefineMultiString(name string, def any, help string, opts ...DefineOption) (*Flag, error) {
	return CommandLine.DefineMultiString(name, def, help, opts...)
}

// DefineMultiInteger registers a repeatable int flag in CommandLine.
func DefineMultiInteger(name string, def any, help string, opts ...DefineOption) (*Flag, error) {
	return CommandLine.DefineMultiInteger(name, def, help, opts...)
}

// DefineMultiFloat registers a repeatable float64 flag in CommandLine.
func DefineMultiFloat(name string, def any, help string, opts ...DefineOption) (*Flag, error) {
	return CommandLine.DefineMultiFloat(name, def, help, opts...)
}

// DefineMultiEnum registers a repeatable enum flag in CommandLine.
func DefineMultiEnum(name string, def any, values []string, help string, opts ...DefineOption) (*Flag, error) {
	return CommandLine.DefineMultiEnum(name, def, values, help, opts...)
}

// DefineAlias registers name as an alias for original in CommandLine.
func DefineAlias(name, original string, opts ...DefineOption) (*Flag, error) {
	return CommandLine.DefineAlias(name, original, opts...)
}
