// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flags

import (
	"fmt"
	"sort"
	"strings"

	"tailscale.com/util/set"
)

const defaultValidatorMessage = "Flag validation failed"

// Checker validates the value of one flag. Returning false reports the
// validator's configured message; returning an error reports the error's
// text instead.
type Checker func(value any) (bool, error)

// MultiChecker validates a snapshot of several flags, keyed by flag name.
type MultiChecker func(values map[string]any) (bool, error)

// Validator is a constraint over one or more flags. It is checked after
// every parse pass and whenever one of its flags is set programmatically.
type Validator struct {
	names   []string
	single  Checker
	multi   MultiChecker
	message string
	seq     int
}

// FlagNames returns the names of the flags the validator reads.
func (v *Validator) FlagNames() []string {
	return append([]string(nil), v.names...)
}

// Message returns the message reported when the checker returns false.
func (v *Validator) Message() string { return v.message }

func (v *Validator) verify(fv *FlagValues) error {
	var (
		ok  bool
		err error
	)
	if v.single != nil {
		ok, err = v.single(fv.valueOf(v.names[0]))
	} else {
		values := make(map[string]any, len(v.names))
		for _, n := range v.names {
			values[n] = fv.valueOf(n)
		}
		ok, err = v.multi(values)
	}
	if err == nil && ok {
		return nil
	}
	msg := v.message
	if err != nil {
		msg = err.Error()
	}
	return &IllegalFlagValueError{
		Name: strings.Join(v.names, ","),
		Msg:  v.describe(fv) + ": " + msg,
		Err:  err,
	}
}

func (v *Validator) describe(fv *FlagValues) string {
	if v.single != nil {
		return fmt.Sprintf("flag --%s=%v", v.names[0], fv.valueOf(v.names[0]))
	}
	parts := make([]string, len(v.names))
	for i, n := range v.names {
		parts[i] = fmt.Sprintf("%s=%v", n, fv.valueOf(n))
	}
	return "flags " + strings.Join(parts, ", ")
}

func (fv *FlagValues) valueOf(name string) any {
	if f := fv.lookupAny(name); f != nil {
		return f.Value()
	}
	return nil
}

// RegisterValidator adds a constraint on the flag name. An empty message
// uses "Flag validation failed".
func (fv *FlagValues) RegisterValidator(name string, check Checker, message string) error {
	return fv.addValidator(&Validator{names: []string{name}, single: check, message: message})
}

// RegisterMultiFlagsValidator adds a constraint over several flags; check
// receives the current value of each.
func (fv *FlagValues) RegisterMultiFlagsValidator(names []string, check MultiChecker, message string) error {
	return fv.addValidator(&Validator{names: append([]string(nil), names...), multi: check, message: message})
}

func (fv *FlagValues) addValidator(v *Validator) error {
	if v.message == "" {
		v.message = defaultValidatorMessage
	}
	targets := make([]*Flag, 0, len(v.names))
	for _, n := range v.names {
		f := fv.Lookup(n)
		if f == nil {
			return &UnrecognizedFlagError{Name: n}
		}
		targets = append(targets, f)
	}
	fv.validatorSeq++
	v.seq = fv.validatorSeq
	for _, f := range targets {
		f.validators = append(f.validators, v)
	}
	if fv.parsed {
		return v.verify(fv)
	}
	return nil
}

// MarkFlagAsRequired registers a validator that fails while the flag's value
// is nil. A flag with a non-nil default always passes, even when the user
// never sets it, so a warning is logged in that case.
func (fv *FlagValues) MarkFlagAsRequired(name string) error {
	if f := fv.Lookup(name); f != nil && f.Default() != nil {
		fv.logf("flags: flag --%s has a non-nil default value; therefore, MarkFlagAsRequired will pass even if the flag is not specified on the command line", name)
	}
	return fv.RegisterValidator(name, func(v any) (bool, error) {
		return v != nil, nil
	}, fmt.Sprintf("Flag --%s must be specified.", name))
}

// MarkFlagsAsRequired marks each named flag as required.
func (fv *FlagValues) MarkFlagsAsRequired(names ...string) error {
	for _, n := range names {
		if err := fv.MarkFlagAsRequired(n); err != nil {
			return err
		}
	}
	return nil
}

// MarkFlagsAsMutualExclusive ensures at most one of names holds a non-nil
// value, or exactly one if required is set.
func (fv *FlagValues) MarkFlagsAsMutualExclusive(names []string, required bool) error {
	for _, n := range names {
		if f := fv.Lookup(n); f != nil && f.Default() != nil {
			fv.logf("flags: flag --%s has a non-nil default value; mutual exclusion checks treat it as always set", n)
		}
	}
	quantifier := "At most"
	if required {
		quantifier = "Exactly"
	}
	msg := fmt.Sprintf("%s one of (%s) must have a value other than nil.", quantifier, strings.Join(names, ", "))
	return fv.RegisterMultiFlagsValidator(names, func(values map[string]any) (bool, error) {
		n := 0
		for _, v := range values {
			if v != nil {
				n++
			}
		}
		return n == 1 || (!required && n == 0), nil
	}, msg)
}

func (fv *FlagValues) assertValidators(vs []*Validator) error {
	seen := make(set.Set[*Validator], len(vs))
	uniq := make([]*Validator, 0, len(vs))
	for _, v := range vs {
		if !seen.Contains(v) {
			seen.Add(v)
			uniq = append(uniq, v)
		}
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i].seq < uniq[j].seq })
	for _, v := range uniq {
		if err := v.verify(fv); err != nil {
			return err
		}
	}
	return nil
}

// affectedValidators returns the validators to re-run after the value behind
// f changed: those of the underlying flag and of every alias for it.
func (fv *FlagValues) affectedValidators(f *Flag) []*Validator {
	base := f
	if f.target != nil {
		base = f.target
	}
	vs := append([]*Validator(nil), base.validators...)
	for _, a := range fv.Flags() {
		if a.target == base {
			vs = append(vs, a.validators...)
		}
	}
	return vs
}

func (fv *FlagValues) assertAllValidators() error {
	var all []*Validator
	for _, f := range fv.Flags() {
		all = append(all, f.validators...)
	}
	return fv.assertValidators(all)
}
