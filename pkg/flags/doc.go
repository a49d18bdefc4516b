// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package flags is a registry of typed command-line flags that independent
// packages can declare without coordinating with each other.
//
// Each package defines the flags it needs, usually at init time, and tags them
// with the module that owns them. The program parses the command line once
// and every package reads its values back from the registry.
//
// # Defining flags
//
//	var (
//	    port    = must.Get(flags.DefineInteger("port", 8080, "Listen port.", flags.LowerBound(1), flags.UpperBound(65535)))
//	    verbose = must.Get(flags.DefineBool("verbose", false, "Log more.", flags.WithShortName("v")))
//	)
//
// Values are read through the Flag or with Get:
//
//	p, err := flags.Get[int](flags.CommandLine, "port")
//
// # Command-line syntax
//
//   - --name=value, -name=value, --name value
//   - --name and --noname for boolean flags
//   - -s for a flag with a short name
//   - --flagfile=path reads more arguments from a file, one per line;
//     lines starting with # or // are comments
//   - --undefok=a,b tolerates the listed flags if they are not defined
//   - -- ends flag parsing
//
// By default flags and positional arguments may be interleaved. Set
// WithGNUGetopt(false) to stop at the first positional argument.
//
// # Ownership and key flags
//
// Every flag belongs to a Module. The flags a module defines are its key
// flags unless the module sets DisclaimKeyFlags; DeclareKeyFlag and
// AdoptModuleKeyFlags add more. FlagsByModule and KeyFlagsByModule expose
// the tables for help output.
//
// Defining a name twice is an error unless both definitions allow
// override. Validators registered with RegisterValidator and friends run
// after every Parse and whenever a value is set programmatically.
package flags
