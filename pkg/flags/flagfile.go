// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flags

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

func isFlagFileDirective(arg string) bool {
	return arg == "--flagfile" || arg == "-flagfile" ||
		strings.HasPrefix(arg, "--flagfile=") || strings.HasPrefix(arg, "-flagfile=")
}

// flagFilePath returns the path named by a --flagfile=path directive.
func flagFilePath(arg string) (string, error) {
	for _, p := range []string{"--flagfile=", "-flagfile="} {
		if path, ok := strings.CutPrefix(arg, p); ok {
			return expandHome(path), nil
		}
	}
	return "", &IllegalFlagValueError{Name: "flagfile", Value: arg, Msg: "Hit illegal --flagfile type: " + arg}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// ReadFlagsFromFiles returns args with every --flagfile directive replaced
// by the lines of the named file. Expansion stops at "--", and at the first
// positional argument unless GNU mode is on or forceGNU is set.
func (fv *FlagValues) ReadFlagsFromFiles(args []string, forceGNU bool) ([]string, error) {
	out := make([]string, 0, len(args))
	rest := args
	for len(rest) > 0 {
		cur := rest[0]
		rest = rest[1:]
		if isFlagFileDirective(cur) {
			var path string
			if cur == "--flagfile" || cur == "-flagfile" {
				if len(rest) == 0 {
					return nil, &IllegalFlagValueError{Name: "flagfile", Value: cur, Msg: "--flagfile with no argument"}
				}
				path = expandHome(rest[0])
				rest = rest[1:]
			} else {
				p, err := flagFilePath(cur)
				if err != nil {
					return nil, err
				}
				path = p
			}
			lines, err := fv.flagFileLines(path, nil)
			if err != nil {
				return nil, err
			}
			out = append(out, lines...)
			if f := fv.lookupAny("flagfile"); f != nil {
				if err := f.Parse(path); err == nil {
					f.UsingDefaultValue = false
				}
			}
			continue
		}
		out = append(out, cur)
		if cur == "--" {
			break
		}
		if !strings.HasPrefix(cur, "-") {
			if !forceGNU && !fv.gnuGetopt {
				break
			}
			continue
		}
		// Keep "--name value" pairs together so a value that looks like a
		// directive is not expanded.
		if !strings.Contains(cur, "=") && len(rest) > 0 && !strings.HasPrefix(rest[0], "-") {
			if f := fv.lookupAny(strings.TrimLeft(cur, "-")); f != nil && !f.Boolean {
				out = append(out, rest[0])
				rest = rest[1:]
			}
		}
	}
	return append(out, rest...), nil
}

// flagFileLines reads path and returns the flag tokens it holds. stack holds
// the files currently being expanded; a file already on it is skipped.
func (fv *FlagValues) flagFileLines(path string, stack []string) ([]string, error) {
	if slices.Contains(stack, path) {
		fv.logf("flags: circular flagfile dependency, ignoring flagfile: %s", path)
		return nil, nil
	}
	stack = append(stack[:len(stack):len(stack)], path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CantOpenFlagFileError{Path: path, Err: err}
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "", strings.HasPrefix(line, "#"), strings.HasPrefix(line, "//"):
		case isFlagFileDirective(line):
			sub, err := flagFilePath(line)
			if err != nil {
				return nil, err
			}
			nested, err := fv.flagFileLines(sub, stack)
			if err != nil {
				return nil, err
			}
			lines = append(lines, nested...)
		default:
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// FlagsIntoString renders every flag with a non-nil value as one
// --name[=value] line, in name order. Aliases are skipped. The result can be
// read back with --flagfile unless a string value contains a newline.
func (fv *FlagValues) FlagsIntoString() string {
	var b strings.Builder
	for _, f := range fv.Flags() {
		if f.kind == kindAlias {
			continue
		}
		for _, a := range f.SerializeArgs() {
			b.WriteString(a)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// AppendFlagsIntoFile appends FlagsIntoString to the file at path, creating
// it if needed.
func (fv *FlagValues) AppendFlagsIntoFile(path string) (err error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open flag file: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	if _, err := f.WriteString(fv.FlagsIntoString()); err != nil {
		return fmt.Errorf("failed to write flag file: %w", err)
	}
	return nil
}
