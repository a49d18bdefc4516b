// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flags

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNilOverrideDefault is returned when a flag that allows override is given
// a nil default. A nil default cannot be told apart from "not overridden".
var ErrNilOverrideDefault = errors.New("flag that allows override cannot have a nil default")

// DuplicateFlagError is returned when a flag name is registered twice and the
// override rules do not permit the second definition.
type DuplicateFlagError struct {
	Name         string
	FirstModule  string // module that owns the existing definition
	SecondModule string // module attempting the new definition
	Help         string // help text of the existing definition
	Err          error  // optional cause, e.g. ErrNilOverrideDefault
}

func (e *DuplicateFlagError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("flag %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("The flag '%s' is defined twice. First from %s, Second from %s.  Description from first occurrence: %s",
		e.Name, e.FirstModule, e.SecondModule, e.Help)
}

func (e *DuplicateFlagError) Unwrap() error {
	return e.Err
}

// IllegalFlagValueError is returned when a value fails conversion, a bounds
// check, a validator, or when a non-overwritable flag is parsed twice.
type IllegalFlagValueError struct {
	Name  string // flag name, or comma-joined names for multi-flag validators
	Value string // raw value as given, if any
	Msg   string // user-facing message
	Err   error  // underlying cause for debugging
}

func (e *IllegalFlagValueError) Error() string {
	return e.Msg
}

func (e *IllegalFlagValueError) Unwrap() error {
	return e.Err
}

// UnrecognizedFlagError is returned when the command line names a flag that
// is not registered and not listed in --undefok.
type UnrecognizedFlagError struct {
	Name        string
	Value       string // the full token that carried the name
	Suggestions []string
}

func (e *UnrecognizedFlagError) Error() string {
	var tip string
	if len(e.Suggestions) > 0 {
		tip = ". Did you mean: " + strings.Join(e.Suggestions, ", ") + "?"
	}
	return fmt.Sprintf("Unknown command line flag '%s'%s", e.Name, tip)
}

// CantOpenFlagFileError is returned when a --flagfile cannot be read.
type CantOpenFlagFileError struct {
	Path string
	Err  error
}

func (e *CantOpenFlagFileError) Error() string {
	return fmt.Sprintf("unable to open flagfile %s: %v", e.Path, e.Err)
}

func (e *CantOpenFlagFileError) Unwrap() error {
	return e.Err
}
