// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flags

import (
	"fmt"
	"strings"
)

type flagKind int

const (
	kindPlain flagKind = iota
	kindMulti
	kindAlias
)

const noHelp = "(no help available)"

// Flag is a single named command-line flag.
//
// A Flag starts out holding its parsed default. Parse moves it to the
// present state, Unparse moves it back. Flags are normally created by the
// Define functions and owned by a FlagValues.
type Flag struct {
	Name      string
	ShortName string
	Help      string

	Parser     ArgumentParser
	Serializer ArgumentSerializer

	// Boolean flags take no argument on the command line and accept the
	// --no<name> spelling.
	Boolean bool
	// AllowOverride permits a later definition with the same name to
	// replace this flag.
	AllowOverride bool
	// AllowOverwrite permits the flag to be parsed more than once.
	AllowOverwrite bool

	// Present counts successful parses since the last Unparse.
	Present int
	// UsingDefaultValue is false once the value was set from the command
	// line or by FlagValues.Set.
	UsingDefaultValue bool

	def          any
	defaultAsStr string
	value        any
	validators   []*Validator

	kind   flagKind
	target *Flag // kindAlias only
}

// NewFlag builds a plain flag and parses its default. AllowOverwrite is
// enabled; callers may adjust the exported fields afterwards but should call
// SetDefault again if they change the parser.
func NewFlag(parser ArgumentParser, serializer ArgumentSerializer, name string, def any, help string) (*Flag, error) {
	return newFlag(parser, serializer, name, def, help, flagSettings{allowOverwrite: true})
}

// NewMultiFlag builds a flag whose value accumulates one item per
// occurrence on the command line.
func NewMultiFlag(parser ArgumentParser, serializer ArgumentSerializer, name string, def any, help string) (*Flag, error) {
	return newFlag(parser, serializer, name, def, help, flagSettings{allowOverwrite: true, kind: kindMulti})
}

type flagSettings struct {
	shortName      string
	boolean        bool
	allowOverride  bool
	allowOverwrite bool
	kind           flagKind
}

func newFlag(parser ArgumentParser, serializer ArgumentSerializer, name string, def any, help string, s flagSettings) (*Flag, error) {
	if help == "" {
		help = noHelp
	}
	f := &Flag{
		Name:           name,
		ShortName:      s.shortName,
		Help:           help,
		Parser:         parser,
		Serializer:     serializer,
		Boolean:        s.boolean,
		AllowOverride:  s.allowOverride,
		AllowOverwrite: s.allowOverwrite,
		kind:           s.kind,
	}
	if f.kind == kindMulti {
		f.Help += ";\n    repeat this option to specify a list of values"
	}
	if err := f.SetDefault(def); err != nil {
		return nil, err
	}
	return f, nil
}

// newAlias returns a flag that proxies its value to target.
func newAlias(name string, target *Flag) *Flag {
	return &Flag{
		Name:              name,
		Help:              fmt.Sprintf("Alias for --%s.", target.Name),
		Parser:            target.Parser,
		Serializer:        target.Serializer,
		Boolean:           target.Boolean,
		AllowOverwrite:    true,
		UsingDefaultValue: true,
		kind:              kindAlias,
		target:            target,
	}
}

// IsMulti reports whether the flag accumulates repeated occurrences.
func (f *Flag) IsMulti() bool { return f.kind == kindMulti }

// AliasTarget returns the flag an alias proxies to, or nil.
func (f *Flag) AliasTarget() *Flag { return f.target }

// Value returns the current value. Multi flags hold a []any; a nil default
// that was never parsed yields nil.
func (f *Flag) Value() any {
	if f.kind == kindAlias {
		return f.target.Value()
	}
	return f.value
}

func (f *Flag) setValue(v any) {
	if f.kind == kindAlias {
		f.target.setValue(v)
		return
	}
	f.value = v
}

// Default returns the default as it was given, before parsing. An alias
// reports its target's default.
func (f *Flag) Default() any {
	if f.kind == kindAlias {
		return f.target.Default()
	}
	return f.def
}

// DefaultString returns the canonical string form of the parsed default and
// false if the default is nil.
func (f *Flag) DefaultString() (string, bool) {
	if f.kind == kindAlias {
		return f.target.DefaultString()
	}
	if f.def == nil {
		return "", false
	}
	return f.defaultAsStr, true
}

// ValueString returns the canonical string form of the current value, or ""
// for a nil value.
func (f *Flag) ValueString() string {
	return f.serialize(f.Value())
}

// Type describes the flag's value type for help output.
func (f *Flag) Type() string {
	if f.kind == kindAlias {
		return f.target.Type()
	}
	if f.kind == kindMulti {
		return "multi " + f.Parser.Type()
	}
	return f.Parser.Type()
}

// Validators returns the validators that reference this flag.
func (f *Flag) Validators() []*Validator {
	return append([]*Validator(nil), f.validators...)
}

// Parse converts argument and stores it as the new value.
func (f *Flag) Parse(argument string) error {
	if f.Present > 0 && !f.AllowOverwrite {
		return &IllegalFlagValueError{
			Name:  f.Name,
			Value: argument,
			Msg:   fmt.Sprintf("flag --%s=%s: already defined as %s", f.Name, argument, f.ValueString()),
		}
	}
	switch f.kind {
	case kindAlias:
		if err := f.target.Parse(argument); err != nil {
			return err
		}
		f.target.UsingDefaultValue = false
	case kindMulti:
		v, err := f.convert(argument)
		if err != nil {
			return err
		}
		var values []any
		if f.Present > 0 {
			values = append(values, sliceItems(f.value)...)
		}
		f.value = append(values, v)
	default:
		v, err := f.convert(argument)
		if err != nil {
			return err
		}
		f.value = v
	}
	f.Present++
	return nil
}

func (f *Flag) convert(argument string) (any, error) {
	v, err := f.Parser.Parse(argument)
	if err != nil {
		return nil, &IllegalFlagValueError{
			Name:  f.Name,
			Value: argument,
			Msg:   fmt.Sprintf("flag --%s=%s: %v", f.Name, argument, err),
			Err:   err,
		}
	}
	return v, nil
}

// Unparse resets the flag to its default and clears its presence.
func (f *Flag) Unparse() {
	// Defaults were validated by SetDefault; a failure here cannot happen
	// unless Parser was swapped after construction.
	_ = f.reset()
}

func (f *Flag) reset() error {
	f.Present = 0
	f.UsingDefaultValue = true
	if f.kind == kindAlias {
		return nil
	}
	v, err := f.parseDefault()
	if err != nil {
		return err
	}
	f.value = v
	return nil
}

// parseDefault converts the default without touching Present.
func (f *Flag) parseDefault() (any, error) {
	return f.convertAny(f.def)
}

// convertAny turns a programmatic value into the flag's value type. Strings
// are parsed directly; any other value is serialized first so that it passes
// through the same checks as a command-line value. Multi flags convert each
// item of a slice, or a scalar as a single item.
func (f *Flag) convertAny(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if f.kind == kindAlias {
		return f.target.convertAny(v)
	}
	if f.kind != kindMulti {
		return f.convert(f.rawDefault(v))
	}
	var items []any
	if isSlice(v) {
		items = sliceItems(v)
	} else {
		items = []any{v}
	}
	values := make([]any, 0, len(items))
	for _, it := range items {
		c, err := f.convert(f.rawDefault(it))
		if err != nil {
			return nil, err
		}
		values = append(values, c)
	}
	return values, nil
}

func (f *Flag) rawDefault(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if f.Serializer != nil {
		return f.Serializer.Serialize(v)
	}
	return formatValue(v)
}

// SetDefault changes the default and resets the current value to it. On an
// alias it changes the target's default.
func (f *Flag) SetDefault(def any) error {
	if f.kind == kindAlias {
		if err := f.target.SetDefault(def); err != nil {
			return err
		}
		f.Present = 0
		f.UsingDefaultValue = true
		return nil
	}
	if def == nil && f.AllowOverride {
		return &DuplicateFlagError{Name: f.Name, Err: ErrNilOverrideDefault}
	}
	old := f.def
	f.def = def
	if err := f.reset(); err != nil {
		f.def = old
		_ = f.reset()
		return err
	}
	f.defaultAsStr = f.serialize(f.Value())
	return nil
}

func (f *Flag) serialize(v any) string {
	if v == nil {
		return ""
	}
	if f.kind == kindMulti || (f.kind == kindAlias && f.target.kind == kindMulti) {
		items := sliceItems(v)
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = f.serializeItem(it)
		}
		return strings.Join(parts, ",")
	}
	return f.serializeItem(v)
}

func (f *Flag) serializeItem(v any) string {
	if f.Serializer != nil {
		return f.Serializer.Serialize(v)
	}
	return formatValue(v)
}

// SerializeArgs renders the current value as command-line tokens. It
// returns nil for a nil value and one token per item for multi flags.
func (f *Flag) SerializeArgs() []string {
	v := f.Value()
	if v == nil {
		return nil
	}
	if f.Boolean {
		if b, _ := v.(bool); b {
			return []string{"--" + f.Name}
		}
		return []string{"--no" + f.Name}
	}
	if f.kind == kindMulti || (f.kind == kindAlias && f.target.kind == kindMulti) {
		items := sliceItems(v)
		args := make([]string, len(items))
		for i, it := range items {
			args[i] = fmt.Sprintf("--%s=%s", f.Name, f.serializeItem(it))
		}
		return args
	}
	return []string{fmt.Sprintf("--%s=%s", f.Name, f.serializeItem(v))}
}

// Serialize renders the current value as a space separated command line
// fragment, e.g. "--name=value" or "--noverbose".
func (f *Flag) Serialize() string {
	return strings.Join(f.SerializeArgs(), " ")
}
