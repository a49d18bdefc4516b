// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// flagdump parses its command line, optionally layered over a config file,
// and prints every registered flag grouped by the module that defined it.
// Key flags of a module are marked with '*'.
//
// Usage:
//
//	flagdump [--config=flags.toml] [--flagfile=f] [flags...] [args...]
//
// Defaults are layered: a FLAGDUMP_<NAME> environment variable beats the
// config file, and the command line beats both.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/kballard/go-shellquote"
	"github.com/yeetrun/gflags/pkg/flagconfig"
	"github.com/yeetrun/gflags/pkg/flags"
	"github.com/yeetrun/gflags/pkg/flagtypes"
	"tailscale.com/util/must"
	"tailscale.com/util/set"
)

const (
	envPrefix  = "FLAGDUMP_"
	mainModule = "flagdump"
	netModule  = "flagdump/net"
	logModule  = "flagdump/logging"
)

func init() {
	must.Do(defineFlags(flags.CommandLine))
}

// defineFlags registers the tool's own flags plus a few example flags owned
// by other modules so the dump has something to group.
func defineFlags(fv *flags.FlagValues) error {
	mainMod := flags.WithModule(flags.Module{Name: mainModule})
	netMod := flags.WithModule(flags.Module{Name: netModule})
	// The logging helpers define flags on behalf of their callers.
	logMod := flags.WithModule(flags.Module{Name: logModule, DisclaimKeyFlags: true})

	for _, err := range []error{
		second(fv.DefineString("config", nil, "TOML or YAML file of flag defaults.", mainMod)),
		second(fv.DefineString("write_flagfile", nil, "Append the parsed flags to this file.", mainMod)),
		second(fv.DefineString("write_config", nil, "Write flags that differ from their defaults to this TOML or YAML file.", mainMod)),
		second(fv.DefineBool("key_only", false, "Only list the key flags of each module.", mainMod)),
		second(fv.DefineBool("color", true, "Colorize output.", mainMod)),

		second(flagtypes.DefinePort(fv, "port", 8080, "1-65535", "Listen port.", netMod, flags.WithShortName("p"))),
		second(flagtypes.DefineDuration(fv, "timeout", "30s", "Request timeout.", netMod)),
		second(fv.DefineList("peers", nil, "Comma separated peer addresses.", netMod)),

		second(fv.DefineEnum("log_level", "info", []string{"debug", "info", "warn", "error"}, "Log verbosity.", logMod, flags.CaseInsensitive())),
		second(fv.DefineBool("log_json", false, "Write logs as JSON.", logMod)),
	} {
		if err != nil {
			return err
		}
	}
	if err := fv.DeclareKeyFlag("log_level", flags.Module{Name: mainModule}); err != nil {
		return err
	}
	return fv.DeclareKeyFlag("flagfile", flags.Module{Name: mainModule})
}

func second(_ *flags.Flag, err error) error { return err }

func main() {
	log.SetFlags(0)
	if err := run(flags.CommandLine, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("flagdump: %v", err))
		os.Exit(1)
	}
}

func run(fv *flags.FlagValues, args []string, w io.Writer) error {
	// A first pass finds --config; its entries become defaults that the
	// command line then overrides.
	if _, err := fv.ParseKnown(args); err != nil {
		return err
	}
	path := must.Get(flags.Get[string](fv, "config"))
	fv.Unparse()
	if path != "" {
		if err := flagconfig.ApplyDefaults(fv, path); err != nil {
			return err
		}
	}
	if err := flagconfig.EnvDefaults(fv, envPrefix, os.Environ()); err != nil {
		return err
	}
	rest, err := fv.Parse(args)
	if err != nil {
		return err
	}
	if !must.Get(flags.Get[bool](fv, "color")) {
		color.NoColor = true
	}

	dump(w, fv, must.Get(flags.Get[bool](fv, "key_only")))
	if len(rest) > 0 {
		fmt.Fprintf(w, "args: %s\n", shellquote.Join(rest...))
	}

	if path := must.Get(flags.Get[string](fv, "write_flagfile")); path != "" {
		if err := fv.AppendFlagsIntoFile(path); err != nil {
			return err
		}
		log.Printf("wrote flags to %s", path)
	}
	if path := must.Get(flags.Get[string](fv, "write_config")); path != "" {
		if err := flagconfig.Save(fv, path); err != nil {
			return err
		}
		log.Printf("wrote config to %s", path)
	}
	return nil
}

func dump(w io.Writer, fv *flags.FlagValues, keyOnly bool) {
	for _, m := range fv.Modules() {
		key := make(set.Set[*flags.Flag])
		for _, f := range fv.ModuleKeyFlags(m) {
			key.Add(f)
		}
		fs := fv.ModuleFlags(m)
		if keyOnly {
			fs = fv.ModuleKeyFlags(m)
		}
		if len(fs) == 0 {
			continue
		}
		slices.SortFunc(fs, func(a, b *flags.Flag) int { return strings.Compare(a.Name, b.Name) })

		fmt.Fprintln(w, color.CyanString("%s:", m))
		for _, f := range fs {
			marker := " "
			if key.Contains(f) {
				marker = "*"
			}
			state := "set"
			if f.UsingDefaultValue {
				state = "default"
			}
			fmt.Fprintf(w, "  %s --%s=%s (%s, %s)\n", marker, f.Name, f.ValueString(), f.Type(), state)
		}
	}
}
