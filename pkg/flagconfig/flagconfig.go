// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package flagconfig reads flag values from TOML and YAML files.
//
// A config file is a flat table of flag names to values:
//
//	port = 8080
//	verbose = true
//	hosts = ["a", "b"]
//
// ApplyDefaults turns the entries into flag defaults so the command line
// still wins; Args turns them into arguments for Parse.
package flagconfig

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/yeetrun/gflags/pkg/flags"
	"gopkg.in/yaml.v3"
)

// Format is a config file encoding.
type Format int

const (
	TOML Format = iota
	YAML
)

func (f Format) String() string {
	switch f {
	case TOML:
		return "toml"
	case YAML:
		return "yaml"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return 0, fmt.Errorf("unsupported config file %q (want .toml, .yaml or .yml)", path)
}

// Load reads the config file at path.
func Load(path string) (map[string]any, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return m, nil
}

// Decode parses data as a flat table of flag values. Nested tables are
// rejected.
func Decode(data []byte, format Format) (map[string]any, error) {
	m := map[string]any{}
	switch format {
	case TOML:
		if _, err := toml.Decode(string(data), &m); err != nil {
			return nil, err
		}
	case YAML:
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown format %v", format)
	}
	for k, v := range m {
		nv, err := normalize(v)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		m[k] = nv
	}
	return m, nil
}

// normalize maps decoder types onto the ones the flag parsers accept.
func normalize(v any) (any, error) {
	switch x := v.(type) {
	case int64:
		return int(x), nil
	case []any:
		out := make([]any, len(x))
		for i, it := range x {
			nv, err := normalize(it)
			if err != nil {
				return nil, err
			}
			if _, nested := nv.([]any); nested {
				return nil, errors.New("nested arrays are not supported")
			}
			out[i] = nv
		}
		return out, nil
	case map[string]any:
		return nil, errors.New("nested tables are not supported")
	}
	return v, nil
}

// ApplyDefaults sets the default of every flag named in the config file at
// path. Unknown names fail with an UnrecognizedFlagError before any default
// changes.
func ApplyDefaults(fv *flags.FlagValues, path string) error {
	m, err := Load(path)
	if err != nil {
		return err
	}
	return ApplyMap(fv, m)
}

// ApplyMap sets flag defaults from m, in name order.
func ApplyMap(fv *flags.FlagValues, m map[string]any) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if !fv.Has(k) {
			return &flags.UnrecognizedFlagError{Name: k, Suggestions: flags.Suggestions(k, fv.Names())}
		}
	}
	for _, k := range keys {
		if err := fv.SetDefault(k, m[k]); err != nil {
			return fmt.Errorf("config key %q: %w", k, err)
		}
	}
	return nil
}

// Args returns the config file at path as command-line arguments.
func Args(path string) ([]string, error) {
	m, err := Load(path)
	if err != nil {
		return nil, err
	}
	return flags.MapToArgs(m), nil
}

// Save writes every flag that was set away from its default to path, in the
// format chosen by its extension. The file can be read back with
// ApplyDefaults.
func Save(fv *flags.FlagValues, path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	m := Snapshot(fv)
	var buf bytes.Buffer
	switch format {
	case TOML:
		err = toml.NewEncoder(&buf).Encode(m)
	case YAML:
		enc := yaml.NewEncoder(&buf)
		if err = enc.Encode(m); err == nil {
			err = enc.Close()
		}
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return writeFile(path, buf.Bytes())
}

// writeFile writes data to a temporary file next to path and moves it into
// place, so readers never see a partial config.
func writeFile(path string, data []byte) (err error) {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()
	if _, err = f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err = f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// EnvDefaults sets the default of every flag that has a matching variable in
// environ, a list of KEY=value pairs as returned by os.Environ. The variable
// for flag "log_level" with prefix "APP_" is APP_LOG_LEVEL.
func EnvDefaults(fv *flags.FlagValues, prefix string, environ []string) error {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	for _, f := range fv.Flags() {
		if f.AliasTarget() != nil {
			continue
		}
		key := EnvName(prefix, f.Name)
		v, ok := env[key]
		if !ok {
			continue
		}
		if err := fv.SetDefault(f.Name, v); err != nil {
			return fmt.Errorf("environment variable %s: %w", key, err)
		}
	}
	return nil
}

// EnvName returns the environment variable consulted for flag name.
func EnvName(prefix, name string) string {
	return strings.ToUpper(prefix + strings.ReplaceAll(name, "-", "_"))
}

// Snapshot returns the flags of fv that are not at their default, keyed by
// name. Scalars keep their type; other values are stored in their
// serialized form.
func Snapshot(fv *flags.FlagValues) map[string]any {
	m := map[string]any{}
	for _, f := range fv.Flags() {
		if f.AliasTarget() != nil || f.UsingDefaultValue || f.Value() == nil {
			continue
		}
		m[f.Name] = encodable(f)
	}
	return m
}

func encodable(f *flags.Flag) any {
	switch v := f.Value().(type) {
	case bool, int, float64, string:
		return v
	case []string:
		return slices.Clone(v)
	}
	if f.IsMulti() {
		// One element per occurrence, each in its command-line form.
		args := f.SerializeArgs()
		items := make([]string, len(args))
		for i, a := range args {
			_, items[i], _ = strings.Cut(a, "=")
		}
		return items
	}
	return f.ValueString()
}
