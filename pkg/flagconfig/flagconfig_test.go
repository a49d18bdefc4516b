// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flagconfig

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/yeetrun/gflags/pkg/flags"
)

const tomlConfig = `
name = "from-toml"
count = 7
ratio = 0.25
verbose = true
hosts = ["a", "b"]
tag = ["x", "y"]
`

const yamlConfig = `
name: from-yaml
count: 7
ratio: 0.25
verbose: true
hosts: [a, b]
tag:
  - x
  - y
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func newValues(t *testing.T) *flags.FlagValues {
	t.Helper()
	fv := flags.NewFlagValues(flags.WithMainModule("config_test"), flags.WithLogf(t.Logf))
	for _, err := range []error{
		second(fv.DefineString("name", "", "")),
		second(fv.DefineInteger("count", 1, "")),
		second(fv.DefineFloat("ratio", 1.0, "")),
		second(fv.DefineBool("verbose", false, "")),
		second(fv.DefineList("hosts", nil, "")),
		second(fv.DefineMultiString("tag", nil, "")),
	} {
		if err != nil {
			t.Fatal(err)
		}
	}
	return fv
}

func second(_ *flags.Flag, err error) error { return err }

func TestLoad(t *testing.T) {
	want := map[string]any{
		"count":   7,
		"ratio":   0.25,
		"verbose": true,
		"hosts":   []any{"a", "b"},
		"tag":     []any{"x", "y"},
	}
	tests := []struct {
		file     string
		content  string
		wantName string
	}{
		{"flags.toml", tomlConfig, "from-toml"},
		{"flags.yaml", yamlConfig, "from-yaml"},
		{"flags.yml", yamlConfig, "from-yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			got, err := Load(writeConfig(t, tt.file, tt.content))
			if err != nil {
				t.Fatal(err)
			}
			w := map[string]any{"name": tt.wantName}
			for k, v := range want {
				w[k] = v
			}
			if diff := cmp.Diff(w, got); diff != "" {
				t.Errorf("Load mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"extension", "flags.ini", "a=1"},
		{"nested table", "flags.toml", "[server]\nport = 1\n"},
		{"nested array", "flags.yaml", "a: [[1, 2]]\n"},
		{"bad toml", "flags.toml", "a = \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.file, tt.content)); err == nil {
				t.Error("Load succeeded")
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	fv := newValues(t)
	if err := ApplyDefaults(fv, writeConfig(t, "flags.toml", tomlConfig)); err != nil {
		t.Fatal(err)
	}
	rest, err := fv.Parse([]string{"--count=9", "pos"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rest, []string{"pos"}) {
		t.Errorf("rest = %q", rest)
	}
	want := map[string]any{
		"name":    "from-toml",
		"count":   9,
		"ratio":   0.25,
		"verbose": true,
		"hosts":   []string{"a", "b"},
		"tag":     []any{"x", "y"},
	}
	if diff := cmp.Diff(want, fv.Values()); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	if !fv.Lookup("name").UsingDefaultValue {
		t.Error("config value should count as a default")
	}
}

func TestApplyDefaultsUnknownKey(t *testing.T) {
	fv := newValues(t)
	err := ApplyDefaults(fv, writeConfig(t, "flags.yaml", "naem: x\ncount: 3\n"))
	var unk *flags.UnrecognizedFlagError
	if !errors.As(err, &unk) || unk.Name != "naem" {
		t.Fatalf("error = %v, want UnrecognizedFlagError for naem", err)
	}
	if !reflect.DeepEqual(unk.Suggestions, []string{"name"}) {
		t.Errorf("suggestions = %v", unk.Suggestions)
	}
	if got := fv.Lookup("count").Value(); got != 1 {
		t.Errorf("count = %v; no default should change when a key is unknown", got)
	}
}

func TestApplyDefaultsBadValue(t *testing.T) {
	fv := newValues(t)
	err := ApplyDefaults(fv, writeConfig(t, "flags.toml", "count = \"many\"\n"))
	var ive *flags.IllegalFlagValueError
	if !errors.As(err, &ive) {
		t.Fatalf("error = %v, want IllegalFlagValueError", err)
	}
	if !strings.Contains(err.Error(), `config key "count"`) {
		t.Errorf("error = %q", err)
	}
}

func TestArgs(t *testing.T) {
	args, err := Args(writeConfig(t, "flags.toml", tomlConfig))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"--count=7", "--hosts=a,b", "--name=from-toml", "--ratio=0.25", "--tag=x,y", "--verbose"}
	if diff := cmp.Diff(want, args); diff != "" {
		t.Errorf("Args mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, ext := range []string{".toml", ".yaml"} {
		t.Run(ext, func(t *testing.T) {
			fv := newValues(t)
			if _, err := fv.Parse([]string{"--name=saved", "--hosts=a,b", "--tag=x", "--tag=y", "--verbose"}); err != nil {
				t.Fatal(err)
			}
			p := filepath.Join(t.TempDir(), "saved"+ext)
			if err := Save(fv, p); err != nil {
				t.Fatal(err)
			}

			restored := newValues(t)
			if err := ApplyDefaults(restored, p); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(fv.Values(), restored.Values()); diff != "" {
				t.Errorf("restored mismatch (-want +got):\n%s", diff)
			}
			if got := Snapshot(restored); len(got) != 0 {
				t.Errorf("Snapshot of defaults = %v, want empty", got)
			}
		})
	}
}

func TestEnvDefaults(t *testing.T) {
	fv := newValues(t)
	environ := []string{
		"APP_COUNT=12",
		"APP_HOSTS=x, y",
		"APP_VERBOSE=1",
		"COUNT=99",
		"MALFORMED",
	}
	if err := EnvDefaults(fv, "APP_", environ); err != nil {
		t.Fatal(err)
	}
	if _, err := fv.Parse(nil); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"name":    "",
		"count":   12,
		"ratio":   1.0,
		"verbose": true,
		"hosts":   []string{"x", "y"},
		"tag":     nil,
	}
	if diff := cmp.Diff(want, fv.Values()); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}

	err := EnvDefaults(fv, "APP_", []string{"APP_COUNT=lots"})
	if err == nil || !strings.Contains(err.Error(), "environment variable APP_COUNT") {
		t.Errorf("bad value error = %v", err)
	}
}

func TestEnvName(t *testing.T) {
	if got := EnvName("app_", "log-level"); got != "APP_LOG_LEVEL" {
		t.Errorf("EnvName = %q", got)
	}
}
