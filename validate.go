package injector

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/junioryono/injector/internal/graph"
	"go.uber.org/multierr"
)

// Validate checks the bindings for problems that would only surface during
// resolution: alias loops, aliases to unknown types, factories and hooks
// that no longer normalize, and definitions naming unknown types.
// Every problem found is reported; the result combines them with multierr.
func (inj *Injector) Validate() error {
	in := inj.b.snapshot()

	var errs []error

	cycles := make(map[string][]string)
	for _, cycle := range inj.bindingGraph(in).Cycles(graph.LabelAlias) {
		cycles[cycle[0]] = cycle
	}

	for _, from := range sortedKeys(in.Aliases) {
		if cycle, ok := cycles[from]; ok {
			errs = append(errs, &CyclicDependencyError{Name: from, Chain: cycle, Cycle: cycle})
			continue
		}
		target := in.Aliases[from]
		if !inj.resolvable(target, in) {
			errs = append(errs, &InstantiationError{Name: target, Cause: fmt.Errorf("alias of %s: %w", from, ErrTypeNotFound)})
		}
	}

	for _, name := range sortedKeys(in.Delegates) {
		if !inj.invokable(in.Delegates[name]) {
			errs = append(errs, &ConfigError{Op: "delegate", Name: name, Argument: describe(in.Delegates[name]), Cause: ErrDelegateArgument})
		}
	}

	for _, name := range in.PrepareOrder {
		if !inj.invokable(in.Prepares[name]) {
			errs = append(errs, &ConfigError{Op: "prepare", Name: name, Argument: describe(in.Prepares[name]), Cause: ErrPrepareArgument})
		}
	}

	for _, name := range sortedKeys(in.Definitions) {
		args := in.Definitions[name]
		for _, key := range sortedKeys(args) {
			if len(key) > 0 && (key[:1] == rawPrefix || key[:1] == delegatePrefix) {
				if key[:1] == delegatePrefix && !inj.invokable(args[key]) {
					errs = append(errs, &InvokableError{Target: describe(args[key]), Reason: fmt.Sprintf("definition of %s for %s", key, name)})
				}
				continue
			}
			if inj.stringParam(name, key) {
				continue
			}
			for _, typeName := range definedTypeNames(args[key]) {
				if !inj.resolvable(Canonical(typeName), in) {
					errs = append(errs, &InstantiationError{Name: typeName, Cause: fmt.Errorf("definition of %s for %s: %w", key, name, ErrTypeNotFound)})
				}
			}
		}
	}

	return multierr.Combine(errs...)
}

// resolvable reports whether name can be looked up or is bound.
func (inj *Injector) resolvable(name string, in Inspection) bool {
	if _, ok := inj.intro.Lookup(name); ok {
		return true
	}
	if _, ok := in.Delegates[name]; ok {
		return true
	}
	if _, ok := in.Aliases[name]; ok {
		return true
	}
	if v, ok := in.Shares[name]; ok && v != nil {
		return true
	}
	return name == injectorKey
}

// stringParam reports whether the constructor of typeName takes a string
// parameter called param. Plain arguments for it are values, not type names.
func (inj *Injector) stringParam(typeName, param string) bool {
	t, ok := inj.intro.Lookup(typeName)
	if !ok || !inj.intro.Constructible(t) {
		return false
	}
	sig, err := inj.constructor(typeName, t)
	if err != nil {
		return false
	}
	for _, p := range sig.Params {
		if p.Name == param {
			return p.Type.Kind() == reflect.String
		}
	}
	return false
}

// definedTypeNames extracts the type names a plain definition argument refers to.
func definedTypeNames(v any) []string {
	switch names := v.(type) {
	case string:
		return []string{names}
	case []string:
		return names
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		var out []string
		for i := 0; i < rv.Len(); i++ {
			if s, ok := rv.Index(i).Interface().(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
