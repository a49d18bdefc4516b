// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flags

import (
	"strings"

	"tailscale.com/util/set"
)

// Parse parses args, which must not include the program name, and returns
// the positional arguments.
//
// Flag files are expanded first. Tokens are then applied in order, so a
// failure part way through leaves the earlier flags set. Unknown flags are
// reported after the whole pass unless they are listed in --undefok. On
// success every validator is run.
func (fv *FlagValues) Parse(args []string) ([]string, error) {
	return fv.parse(args, false)
}

// ParseKnown is like Parse but passes unknown flags through to the returned
// arguments instead of failing. A "--" terminator is kept in the result.
func (fv *FlagValues) ParseKnown(args []string) ([]string, error) {
	return fv.parse(args, true)
}

// Parse parses args into CommandLine.
func Parse(args []string) ([]string, error) {
	return CommandLine.Parse(args)
}

type unknownFlag struct {
	name string
	arg  string
}

func (fv *FlagValues) parse(args []string, knownOnly bool) ([]string, error) {
	expanded, err := fv.ReadFlagsFromFiles(args, false)
	if err != nil {
		return nil, err
	}
	rest, unknown, undefok, err := fv.parseArgs(expanded, knownOnly)
	if err != nil {
		return nil, err
	}
	for _, u := range unknown {
		if undefok.Contains(u.name) {
			continue
		}
		return nil, &UnrecognizedFlagError{
			Name:        u.name,
			Value:       u.arg,
			Suggestions: Suggestions(u.name, fv.suggestionNames()),
		}
	}
	fv.MarkAsParsed()
	if err := fv.assertAllValidators(); err != nil {
		return nil, err
	}
	return rest, nil
}

func (fv *FlagValues) parseArgs(args []string, knownOnly bool) (rest []string, unknown []unknownFlag, undefok set.Set[string], err error) {
	undefok = set.Set[string]{}
	rest = []string{}
	i := 0
	for ; i < len(args); i++ {
		arg := args[i]
		stripped := strings.TrimLeft(arg, "-")
		if !strings.HasPrefix(arg, "-") || stripped == "" && arg != "--" {
			rest = append(rest, arg)
			if fv.gnuGetopt {
				continue
			}
			i++
			break
		}
		if arg == "--" {
			if knownOnly {
				rest = append(rest, arg)
			}
			i++
			break
		}

		name, value, hasValue := strings.Cut(stripped, "=")
		next := func() (string, error) {
			if hasValue {
				return value, nil
			}
			if i+1 >= len(args) {
				return "", &IllegalFlagValueError{Name: name, Msg: "Missing value for flag " + arg}
			}
			i++
			return args[i], nil
		}

		if name == "undefok" {
			start := i
			v, err := next()
			if err != nil {
				return nil, nil, nil, err
			}
			if knownOnly {
				rest = append(rest, args[start:i+1]...)
			}
			for _, n := range strings.Split(v, ",") {
				if n = strings.TrimSpace(n); n != "" {
					undefok.Add(n)
					undefok.Add("no" + n)
				}
			}
			if f := fv.lookupAny("undefok"); f != nil {
				if err := f.Parse(v); err != nil {
					return nil, nil, nil, err
				}
				f.UsingDefaultValue = false
			}
			continue
		}

		f := fv.lookupAny(name)
		var raw string
		switch {
		case f != nil && f.Boolean && !hasValue:
			raw = "true"
		case f != nil:
			if raw, err = next(); err != nil {
				return nil, nil, nil, err
			}
		case strings.HasPrefix(name, "no") && len(name) > 2:
			if nf := fv.lookupAny(name[2:]); nf != nil && nf.Boolean {
				if hasValue {
					return nil, nil, nil, &IllegalFlagValueError{
						Name:  nf.Name,
						Value: value,
						Msg:   arg + " does not take an argument",
					}
				}
				f, raw = nf, "false"
			}
		}
		if f != nil {
			if err := f.Parse(raw); err != nil {
				return nil, nil, nil, err
			}
			f.UsingDefaultValue = false
			continue
		}
		if knownOnly {
			rest = append(rest, arg)
			continue
		}
		unknown = append(unknown, unknownFlag{name: name, arg: arg})
	}
	rest = append(rest, args[i:]...)
	return rest, unknown, undefok, nil
}
