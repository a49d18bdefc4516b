// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flagtypes

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/yeetrun/gflags/pkg/flags"
)

func TestDurationFlag(t *testing.T) {
	fv := flags.NewFlagValues(flags.WithLogf(t.Logf))
	if _, err := DefineDuration(fv, "timeout", 5*time.Second, "Timeout."); err != nil {
		t.Fatal(err)
	}
	if d, _ := flags.Get[time.Duration](fv, "timeout"); d != 5*time.Second {
		t.Errorf("default = %v", d)
	}
	if _, err := fv.Parse([]string{"--timeout=1m30s"}); err != nil {
		t.Fatal(err)
	}
	if d, _ := flags.Get[time.Duration](fv, "timeout"); d != 90*time.Second {
		t.Errorf("timeout = %v", d)
	}
	if _, err := fv.Parse([]string{"--timeout=soon"}); err == nil {
		t.Error("Parse(soon) succeeded")
	}
}

func TestURLParser(t *testing.T) {
	tests := []struct {
		name     string
		absolute bool
		in       string
		wantErr  bool
	}{
		{name: "absolute", absolute: true, in: "https://example.com/x"},
		{name: "relative allowed", in: "/path"},
		{name: "relative rejected", absolute: true, in: "/path", wantErr: true},
		{name: "bad escape", in: "http://%zz", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := URLParser{RequireAbsolute: tt.absolute}.Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got.(*url.URL).String() != tt.in {
				t.Errorf("Parse(%q) = %v", tt.in, got)
			}
		})
	}
}

func TestPortParser(t *testing.T) {
	tests := []struct {
		name      string
		portRange string
		in        string
		want      Port
		wantErr   string
	}{
		{name: "any port", in: "0", want: 0},
		{name: "in range", portRange: "8000-9000", in: "8080", want: 8080},
		{name: "below range", portRange: "8000-9000", in: "80", wantErr: "port must be between 8000 and 9000, got 80"},
		{name: "overflow", in: "70000", wantErr: "port must be between 0 and 65535"},
		{name: "not a number", in: "http", wantErr: `invalid port value "http"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPortParser(tt.portRange)
			if err != nil {
				t.Fatal(err)
			}
			got, err := p.Parse(tt.in)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Parse(%q) error = %v, want %q", tt.in, err, tt.wantErr)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("Parse(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestPortRange(t *testing.T) {
	for _, r := range []string{"8000", "9000-8000", "a-b", "1-70000"} {
		if _, err := NewPortParser(r); err == nil {
			t.Errorf("NewPortParser(%q) succeeded", r)
		}
	}
}

func TestMultiPortFlag(t *testing.T) {
	fv := flags.NewFlagValues(flags.WithLogf(t.Logf))
	if _, err := DefineMultiPort(fv, "listen", []Port{80}, "1-65535", "Ports."); err != nil {
		t.Fatal(err)
	}
	if _, err := fv.Parse([]string{"--listen=80", "--listen=443"}); err != nil {
		t.Fatal(err)
	}
	ports, err := flags.Get[[]Port](fv, "listen")
	if err != nil || len(ports) != 2 || ports[1] != 443 {
		t.Errorf("listen = %v, %v", ports, err)
	}
	if got := fv.Lookup("listen").Serialize(); got != "--listen=80 --listen=443" {
		t.Errorf("Serialize() = %q", got)
	}
}

func TestSemverParser(t *testing.T) {
	p, err := NewSemverParser(">= 1.2, < 2")
	if err != nil {
		t.Fatal(err)
	}
	got, err := p.Parse("1.4.0")
	if err != nil {
		t.Fatal(err)
	}
	if !got.(*semver.Version).Equal(semver.MustParse("1.4.0")) {
		t.Errorf("Parse = %v", got)
	}
	if _, err := p.Parse("2.1.0"); err == nil || !strings.Contains(err.Error(), "does not satisfy") {
		t.Errorf("Parse(2.1.0) error = %v", err)
	}
	if _, err := p.Parse("not-a-version"); err == nil {
		t.Error("Parse(not-a-version) succeeded")
	}
	if _, err := NewSemverParser("bogus"); err == nil {
		t.Error("bad constraint accepted")
	}
}

func TestSemverFlagDefault(t *testing.T) {
	fv := flags.NewFlagValues(flags.WithLogf(t.Logf))
	if _, err := DefineSemver(fv, "min_version", "1.0.0", "^1", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := DefineSemver(fv, "too_old", "0.9.0", "^1", ""); err == nil {
		t.Error("default outside the constraint accepted")
	}
	v, err := flags.Get[*semver.Version](fv, "min_version")
	if err != nil || v.String() != "1.0.0" {
		t.Errorf("min_version = %v, %v", v, err)
	}
}

func TestUUIDFlag(t *testing.T) {
	id := uuid.New()
	fv := flags.NewFlagValues(flags.WithLogf(t.Logf))
	if _, err := DefineUUID(fv, "request_id", id, ""); err != nil {
		t.Fatal(err)
	}
	if got, _ := flags.Get[uuid.UUID](fv, "request_id"); got != id {
		t.Errorf("default = %v, want %v", got, id)
	}
	other := uuid.New()
	if _, err := fv.Parse([]string{"--request_id", strings.ToUpper(other.String())}); err != nil {
		t.Fatal(err)
	}
	if got, _ := flags.Get[uuid.UUID](fv, "request_id"); got != other {
		t.Errorf("request_id = %v, want %v", got, other)
	}
	if _, err := fv.Parse([]string{"--request_id=nope"}); err == nil {
		t.Error("Parse(nope) succeeded")
	}
}
