// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flags

import (
	"fmt"
	"log"
	"os"
	"reflect"
	"slices"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"tailscale.com/types/logger"
	"tailscale.com/util/mak"
	"tailscale.com/util/set"
)

// PackageModule is the module that owns the special flags every registry
// carries (--flagfile and --undefok).
const PackageModule = "github.com/yeetrun/gflags/pkg/flags"

// Module identifies the code that defines a flag.
type Module struct {
	Name string
	// DisclaimKeyFlags records ownership without making the flags key flags
	// of the module. Helper packages that define flags on behalf of their
	// callers set it.
	DisclaimKeyFlags bool
}

// FlagValues is a registry of flags. The zero value is not usable; call
// NewFlagValues. A FlagValues is not safe for concurrent use.
type FlagValues struct {
	flags map[string]*Flag
	order []string // registry keys in registration order

	flagsByModule    map[string][]*Flag
	keyFlagsByModule map[string][]*Flag
	moduleOrder      []string

	special *FlagValues // nil on the special registry itself

	mainModule Module
	logf       logger.Logf
	gnuGetopt  bool
	parsed     bool

	validatorSeq int
}

// Option configures a FlagValues.
type Option func(*FlagValues)

// WithLogf sets the function used for warnings. The default is log.Printf.
func WithLogf(logf logger.Logf) Option {
	return func(fv *FlagValues) { fv.logf = logf }
}

// WithMainModule sets the module used for flags defined without an explicit
// module. The default is the program name.
func WithMainModule(name string) Option {
	return func(fv *FlagValues) { fv.mainModule = Module{Name: name} }
}

// WithGNUGetopt controls whether parsing continues past the first positional
// argument. It is on by default.
func WithGNUGetopt(on bool) Option {
	return func(fv *FlagValues) { fv.gnuGetopt = on }
}

// CommandLine is the process-wide registry used by the package-level Define
// functions.
var CommandLine = NewFlagValues()

// NewFlagValues returns an empty registry.
func NewFlagValues(opts ...Option) *FlagValues {
	fv := newRegistry(opts...)
	fv.special = newRegistry(WithLogf(fv.logf), WithMainModule(PackageModule))
	sm := Module{Name: PackageModule}
	if _, err := fv.special.DefineString("flagfile", "", "Insert flag definitions from the given file into the command line.", WithModule(sm)); err != nil {
		panic(err)
	}
	if _, err := fv.special.DefineString("undefok", "", "comma-separated list of flag names that it is okay to specify on the command line even if the program does not define a flag with that name.  IMPORTANT: flags in this list that have arguments MUST use the --flag=value format.", WithModule(sm)); err != nil {
		panic(err)
	}
	return fv
}

func newRegistry(opts ...Option) *FlagValues {
	fv := &FlagValues{
		flags:      make(map[string]*Flag),
		mainModule: Module{Name: programName()},
		logf:       log.Printf,
		gnuGetopt:  true,
	}
	for _, o := range opts {
		o(fv)
	}
	if fv.logf == nil {
		fv.logf = logger.Discard
	}
	return fv
}

func programName() string {
	if len(os.Args) > 0 && os.Args[0] != "" {
		return os.Args[0]
	}
	return "main"
}

// MainModule returns the module used for untagged definitions.
func (fv *FlagValues) MainModule() string { return fv.mainModule.Name }

func (fv *FlagValues) resolveModule(m Module) Module {
	if m.Name == "" {
		m.Name = fv.mainModule.Name
	}
	return m
}

func checkFlagName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("flag name must not be empty")
	case strings.HasPrefix(name, "-"):
		return fmt.Errorf("flag name %q must not start with '-'", name)
	case strings.Contains(name, "="):
		return fmt.Errorf("flag name %q must not contain '='", name)
	case strings.IndexFunc(name, unicode.IsSpace) >= 0:
		return fmt.Errorf("flag name %q must not contain whitespace", name)
	}
	return nil
}

func canReplace(old, f *Flag) bool {
	return f.AllowOverride && old.AllowOverride && f.Default() != nil
}

// DefineFlag registers f under its name and short name, owned by m. A zero
// Module means the registry's main module. When f overrides a flag that was
// already set from the command line, the existing flag keeps the name and f
// is discarded without an error.
func (fv *FlagValues) DefineFlag(f *Flag, m Module) error {
	if err := checkFlagName(f.Name); err != nil {
		return err
	}
	if f.ShortName != "" {
		if err := checkFlagName(f.ShortName); err != nil {
			return err
		}
		if utf8.RuneCountInString(f.ShortName) != 1 {
			return fmt.Errorf("short name %q of flag --%s must be a single character", f.ShortName, f.Name)
		}
	}
	m = fv.resolveModule(m)
	for _, key := range []string{f.Name, f.ShortName} {
		if key == "" {
			continue
		}
		if old, ok := fv.flags[key]; ok && old != f && !canReplace(old, f) {
			return &DuplicateFlagError{
				Name:         key,
				FirstModule:  fv.FindModuleDefiningFlag(key, "<unknown>"),
				SecondModule: m.Name,
				Help:         old.Help,
			}
		}
	}

	var orphans []*Flag
	took := false
	if old, ok := fv.flags[f.Name]; !ok || old.UsingDefaultValue || !f.UsingDefaultValue {
		if ok && old != f {
			orphans = append(orphans, old)
		}
		fv.put(f.Name, f)
		took = true
	}
	if took && f.ShortName != "" {
		if old, ok := fv.flags[f.ShortName]; ok && old != f {
			orphans = append(orphans, old)
		}
		fv.put(f.ShortName, f)
	}
	for _, o := range orphans {
		fv.cleanupOrphan(o)
	}
	if !took {
		// The existing flag already holds a command-line value; the new
		// definition loses.
		return nil
	}
	fv.registerByModule(m, f)
	return nil
}

func (fv *FlagValues) put(key string, f *Flag) {
	if _, ok := fv.flags[key]; !ok {
		fv.order = append(fv.order, key)
	}
	fv.flags[key] = f
}

func (fv *FlagValues) remove(key string) {
	if _, ok := fv.flags[key]; !ok {
		return
	}
	delete(fv.flags, key)
	fv.order = slices.DeleteFunc(fv.order, func(k string) bool { return k == key })
}

func (fv *FlagValues) isRegistered(f *Flag) bool {
	if fv.flags[f.Name] == f {
		return true
	}
	return f.ShortName != "" && fv.flags[f.ShortName] == f
}

// cleanupOrphan removes f from the per-module tables once no registry key
// refers to it anymore.
func (fv *FlagValues) cleanupOrphan(f *Flag) {
	if fv.isRegistered(f) {
		return
	}
	prune := func(m map[string][]*Flag) {
		for mod, list := range m {
			m[mod] = slices.DeleteFunc(list, func(x *Flag) bool { return x == f })
		}
	}
	prune(fv.flagsByModule)
	prune(fv.keyFlagsByModule)
}

func (fv *FlagValues) registerByModule(m Module, f *Flag) {
	if _, ok := fv.flagsByModule[m.Name]; !ok {
		fv.moduleOrder = append(fv.moduleOrder, m.Name)
	}
	mak.Set(&fv.flagsByModule, m.Name, append(fv.flagsByModule[m.Name], f))
	if !m.DisclaimKeyFlags {
		fv.registerKeyFlag(m.Name, f)
	}
}

func (fv *FlagValues) registerKeyFlag(module string, f *Flag) {
	if slices.Contains(fv.keyFlagsByModule[module], f) {
		return
	}
	mak.Set(&fv.keyFlagsByModule, module, append(fv.keyFlagsByModule[module], f))
}

// Lookup returns the flag registered under name (a long or short name), or
// nil.
func (fv *FlagValues) Lookup(name string) *Flag {
	return fv.flags[name]
}

// lookupAny resolves name against the special flags first.
func (fv *FlagValues) lookupAny(name string) *Flag {
	if fv.special != nil {
		if f := fv.special.flags[name]; f != nil {
			return f
		}
	}
	return fv.flags[name]
}

// Has reports whether name is registered.
func (fv *FlagValues) Has(name string) bool {
	_, ok := fv.flags[name]
	return ok
}

// Names returns every registered key, long and short, in registration order.
func (fv *FlagValues) Names() []string {
	return slices.Clone(fv.order)
}

func (fv *FlagValues) longNames() []string {
	var out []string
	for _, k := range fv.order {
		if fv.flags[k].Name == k {
			out = append(out, k)
		}
	}
	return out
}

// suggestionNames returns the long names of user flags followed by the
// special flags.
func (fv *FlagValues) suggestionNames() []string {
	names := fv.longNames()
	if fv.special != nil {
		names = append(names, fv.special.longNames()...)
	}
	return names
}

// Flags returns each registered flag once, sorted by name.
func (fv *FlagValues) Flags() []*Flag {
	seen := make(set.Set[*Flag], len(fv.flags))
	var out []*Flag
	for _, k := range fv.order {
		f := fv.flags[k]
		if !seen.Contains(f) {
			seen.Add(f)
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Modules returns the modules that defined flags, in order of first
// definition.
func (fv *FlagValues) Modules() []string {
	var out []string
	for _, m := range fv.moduleOrder {
		if len(fv.flagsByModule[m]) > 0 {
			out = append(out, m)
		}
	}
	return out
}

func cloneModuleMap(m map[string][]*Flag) map[string][]*Flag {
	out := make(map[string][]*Flag, len(m))
	for k, v := range m {
		if len(v) > 0 {
			out[k] = slices.Clone(v)
		}
	}
	return out
}

// FlagsByModule returns module name to flags defined by that module.
func (fv *FlagValues) FlagsByModule() map[string][]*Flag {
	return cloneModuleMap(fv.flagsByModule)
}

// KeyFlagsByModule returns module name to the module's key flags.
func (fv *FlagValues) KeyFlagsByModule() map[string][]*Flag {
	return cloneModuleMap(fv.keyFlagsByModule)
}

// ModuleFlags returns the flags defined by module.
func (fv *FlagValues) ModuleFlags(module string) []*Flag {
	return slices.Clone(fv.flagsByModule[module])
}

// ModuleKeyFlags returns the key flags of module. For PackageModule this
// includes the special flags.
func (fv *FlagValues) ModuleKeyFlags(module string) []*Flag {
	out := slices.Clone(fv.keyFlagsByModule[module])
	if module == PackageModule && fv.special != nil {
		for _, f := range fv.special.Flags() {
			if !slices.Contains(out, f) {
				out = append(out, f)
			}
		}
	}
	return out
}

// FindModuleDefiningFlag returns the module that defined the flag known as
// name, or def if there is none.
func (fv *FlagValues) FindModuleDefiningFlag(name, def string) string {
	for _, m := range fv.moduleOrder {
		for _, f := range fv.flagsByModule[m] {
			if f.Name == name || (f.ShortName != "" && f.ShortName == name) {
				return m
			}
		}
	}
	return def
}

// Values returns each flag's current value keyed by long name.
func (fv *FlagValues) Values() map[string]any {
	out := make(map[string]any, len(fv.flags))
	for _, f := range fv.Flags() {
		out[f.Name] = f.Value()
	}
	return out
}

// IsParsed reports whether Parse has completed on the registry.
func (fv *FlagValues) IsParsed() bool { return fv.parsed }

// MarkAsParsed records that the command line was parsed, for programs that
// populate flags by other means.
func (fv *FlagValues) MarkAsParsed() { fv.parsed = true }

// Unparse returns every flag to its default and marks the registry unparsed.
func (fv *FlagValues) Unparse() {
	for _, f := range fv.Flags() {
		f.Unparse()
	}
	if fv.special != nil {
		fv.special.Unparse()
	}
	fv.parsed = false
}

// DeclareKeyFlag makes the flag name a key flag of module. name may be one of
// the special flags.
func (fv *FlagValues) DeclareKeyFlag(name string, m Module) error {
	m = fv.resolveModule(m)
	f := fv.lookupAny(name)
	if f == nil {
		return &UnrecognizedFlagError{Name: name, Suggestions: Suggestions(name, fv.suggestionNames())}
	}
	fv.registerKeyFlag(m.Name, f)
	return nil
}

// AdoptModuleKeyFlags makes every key flag of from a key flag of to.
func (fv *FlagValues) AdoptModuleKeyFlags(from string, to Module) {
	to = fv.resolveModule(to)
	for _, f := range fv.ModuleKeyFlags(from) {
		fv.registerKeyFlag(to.Name, f)
	}
}

// SetDefault changes the default of the named flag and resets its value.
// For an alias the target's default changes. Validators of the flag and its
// aliases are re-run.
func (fv *FlagValues) SetDefault(name string, v any) error {
	f := fv.Lookup(name)
	if f == nil {
		return &UnrecognizedFlagError{Name: name, Suggestions: Suggestions(name, fv.suggestionNames())}
	}
	if err := f.SetDefault(v); err != nil {
		return err
	}
	return fv.assertValidators(fv.affectedValidators(f))
}

// Set assigns v to the named flag as if it came from the command line,
// without counting as an occurrence. Non-string values are converted the
// same way defaults are.
func (fv *FlagValues) Set(name string, v any) error {
	f := fv.Lookup(name)
	if f == nil {
		return &UnrecognizedFlagError{Name: name, Suggestions: Suggestions(name, fv.suggestionNames())}
	}
	val, err := f.convertAny(v)
	if err != nil {
		return err
	}
	f.setValue(val)
	f.UsingDefaultValue = false
	if f.target != nil {
		f.target.UsingDefaultValue = false
	}
	return fv.assertValidators(fv.affectedValidators(f))
}

// Delete removes the named flag under both its long and short name.
func (fv *FlagValues) Delete(name string) error {
	f := fv.Lookup(name)
	if f == nil {
		return &UnrecognizedFlagError{Name: name}
	}
	for _, key := range []string{f.Name, f.ShortName} {
		if key != "" && fv.flags[key] == f {
			fv.remove(key)
		}
	}
	fv.cleanupOrphan(f)
	return nil
}

// Get returns the value of the named flag as a T. Multi flags, which hold a
// []any, can be read as a typed slice such as []int.
func Get[T any](fv *FlagValues, name string) (T, error) {
	var zero T
	f := fv.lookupAny(name)
	if f == nil {
		return zero, &UnrecognizedFlagError{Name: name}
	}
	v := f.Value()
	if t, ok := v.(T); ok {
		return t, nil
	}
	if v == nil {
		return zero, nil
	}
	want := reflect.TypeOf((*T)(nil)).Elem()
	items, ok := v.([]any)
	if !ok || want.Kind() != reflect.Slice {
		return zero, fmt.Errorf("flag --%s holds %T, not %v", name, v, want)
	}
	out := reflect.MakeSlice(want, len(items), len(items))
	for i, it := range items {
		iv := reflect.ValueOf(it)
		if !iv.IsValid() || !iv.Type().AssignableTo(want.Elem()) {
			return zero, fmt.Errorf("flag --%s item %d is %T, not %v", name, i, it, want.Elem())
		}
		out.Index(i).Set(iv)
	}
	return out.Interface().(T), nil
}
