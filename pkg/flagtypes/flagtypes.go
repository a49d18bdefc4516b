// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package flagtypes provides flag parsers for common Go value types that the
// core flags package does not cover.
package flagtypes

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/yeetrun/gflags/pkg/flags"
)

// DurationParser parses values accepted by time.ParseDuration.
type DurationParser struct{}

func (DurationParser) Parse(argument string) (any, error) {
	d, err := time.ParseDuration(strings.TrimSpace(argument))
	if err != nil {
		return nil, fmt.Errorf("invalid duration %q", argument)
	}
	return d, nil
}

func (DurationParser) Type() string          { return "duration" }
func (DurationParser) SyntacticHelp() string { return "a duration such as 300ms or 1h30m" }

// URLParser parses a URL. With RequireAbsolute set, the URL must have a
// scheme and host.
type URLParser struct {
	RequireAbsolute bool
}

func (p URLParser) Parse(argument string) (any, error) {
	u, err := url.Parse(argument)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", argument, err)
	}
	if p.RequireAbsolute && (u.Scheme == "" || u.Host == "") {
		return nil, fmt.Errorf("URL %q must include a scheme and host", argument)
	}
	return u, nil
}

func (URLParser) Type() string { return "url" }

func (p URLParser) SyntacticHelp() string {
	if p.RequireAbsolute {
		return "an absolute URL"
	}
	return "a URL"
}

// Port is an IP port number.
type Port uint16

func (p Port) String() string { return strconv.Itoa(int(p)) }

// PortParser parses a port within [Min, Max].
type PortParser struct {
	Min, Max Port
}

// NewPortParser returns a parser for ports in rangeStr, written "min-max".
// An empty range allows every port.
func NewPortParser(rangeStr string) (*PortParser, error) {
	lo, hi, err := parsePortRange(rangeStr)
	if err != nil {
		return nil, err
	}
	return &PortParser{Min: lo, Max: hi}, nil
}

func (p *PortParser) Parse(argument string) (any, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(argument), 10, 16)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
			return nil, fmt.Errorf("port must be between %d and %d, got %q", p.Min, p.Max, argument)
		}
		return nil, fmt.Errorf("invalid port value %q", argument)
	}
	port := Port(v)
	if port < p.Min || port > p.Max {
		return nil, fmt.Errorf("port must be between %d and %d, got %d", p.Min, p.Max, port)
	}
	return port, nil
}

func (p *PortParser) Type() string { return "port" }

func (p *PortParser) SyntacticHelp() string {
	return fmt.Sprintf("a port in the range [%d, %d]", p.Min, p.Max)
}

func parsePortRange(rangeStr string) (lo, hi Port, err error) {
	if rangeStr == "" {
		return 0, 65535, nil
	}
	minStr, maxStr, ok := strings.Cut(rangeStr, "-")
	if !ok {
		return 0, 0, fmt.Errorf("invalid port range format %q (expected \"min-max\")", rangeStr)
	}
	minVal, err := strconv.ParseUint(minStr, 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid min port in range %q: %w", rangeStr, err)
	}
	maxVal, err := strconv.ParseUint(maxStr, 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid max port in range %q: %w", rangeStr, err)
	}
	if minVal > maxVal {
		return 0, 0, fmt.Errorf("invalid port range %q: min (%d) > max (%d)", rangeStr, minVal, maxVal)
	}
	return Port(minVal), Port(maxVal), nil
}

// SemverParser parses a semantic version, optionally restricted by a
// constraint such as ">= 1.2, < 2".
type SemverParser struct {
	constraint *semver.Constraints
	raw        string
}

// NewSemverParser returns a parser that accepts versions satisfying
// constraint. An empty constraint accepts any valid version.
func NewSemverParser(constraint string) (*SemverParser, error) {
	p := &SemverParser{raw: constraint}
	if constraint != "" {
		c, err := semver.NewConstraint(constraint)
		if err != nil {
			return nil, fmt.Errorf("invalid version constraint %q: %w", constraint, err)
		}
		p.constraint = c
	}
	return p, nil
}

func (p *SemverParser) Parse(argument string) (any, error) {
	v, err := semver.NewVersion(strings.TrimSpace(argument))
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", argument, err)
	}
	if p.constraint != nil && !p.constraint.Check(v) {
		return nil, fmt.Errorf("version %s does not satisfy %q", v, p.raw)
	}
	return v, nil
}

func (p *SemverParser) Type() string { return "version" }

func (p *SemverParser) SyntacticHelp() string {
	if p.raw == "" {
		return "a semantic version"
	}
	return "a semantic version matching " + p.raw
}

// UUIDParser parses a UUID in any form accepted by uuid.Parse.
type UUIDParser struct{}

func (UUIDParser) Parse(argument string) (any, error) {
	id, err := uuid.Parse(strings.TrimSpace(argument))
	if err != nil {
		return nil, fmt.Errorf("invalid UUID %q: %w", argument, err)
	}
	return id, nil
}

func (UUIDParser) Type() string          { return "uuid" }
func (UUIDParser) SyntacticHelp() string { return "a UUID" }

// DefineDuration registers a time.Duration flag in fv.
func DefineDuration(fv *flags.FlagValues, name string, def any, help string, opts ...flags.DefineOption) (*flags.Flag, error) {
	return fv.Define(DurationParser{}, flags.DefaultSerializer{}, name, def, help, opts...)
}

// DefineURL registers a *url.URL flag in fv.
func DefineURL(fv *flags.FlagValues, name string, def any, requireAbsolute bool, help string, opts ...flags.DefineOption) (*flags.Flag, error) {
	return fv.Define(URLParser{RequireAbsolute: requireAbsolute}, flags.DefaultSerializer{}, name, def, help, opts...)
}

// DefinePort registers a Port flag in fv restricted to portRange ("min-max",
// or "" for any port).
func DefinePort(fv *flags.FlagValues, name string, def any, portRange, help string, opts ...flags.DefineOption) (*flags.Flag, error) {
	p, err := NewPortParser(portRange)
	if err != nil {
		return nil, err
	}
	return fv.Define(p, flags.DefaultSerializer{}, name, def, help, opts...)
}

// DefineMultiPort registers a repeatable Port flag in fv.
func DefineMultiPort(fv *flags.FlagValues, name string, def any, portRange, help string, opts ...flags.DefineOption) (*flags.Flag, error) {
	p, err := NewPortParser(portRange)
	if err != nil {
		return nil, err
	}
	return fv.DefineMulti(p, flags.DefaultSerializer{}, name, def, help, opts...)
}

// DefineSemver registers a *semver.Version flag in fv.
func DefineSemver(fv *flags.FlagValues, name string, def any, constraint, help string, opts ...flags.DefineOption) (*flags.Flag, error) {
	p, err := NewSemverParser(constraint)
	if err != nil {
		return nil, err
	}
	return fv.Define(p, flags.DefaultSerializer{}, name, def, help, opts...)
}

// DefineUUID registers a uuid.UUID flag in fv.
func DefineUUID(fv *flags.FlagValues, name string, def any, help string, opts ...flags.DefineOption) (*flags.Flag, error) {
	return fv.Define(UUIDParser{}, flags.DefaultSerializer{}, name, def, help, opts...)
}
