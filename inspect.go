package injector

import (
	"strings"
)

// InspectFlag selects the binding categories returned by Inspect.
type InspectFlag uint8

const (
	InspectDefinitions InspectFlag = 1 << iota
	InspectParams
	InspectDelegates
	InspectPrepares
	InspectAliases
	InspectShares

	// InspectAll selects every category.
	InspectAll = InspectDefinitions | InspectParams | InspectDelegates | InspectPrepares | InspectAliases | InspectShares
)

// Has reports whether f includes every category in other.
func (f InspectFlag) Has(other InspectFlag) bool {
	return f&other == other
}

// String returns the names of the selected categories.
func (f InspectFlag) String() string {
	if f == 0 {
		return "none"
	}
	var names []string
	for _, c := range []struct {
		flag InspectFlag
		name string
	}{
		{InspectDefinitions, "definitions"},
		{InspectParams, "params"},
		{InspectDelegates, "delegates"},
		{InspectPrepares, "prepares"},
		{InspectAliases, "aliases"},
		{InspectShares, "shares"},
	} {
		if f.Has(c.flag) {
			names = append(names, c.name)
		}
	}
	return strings.Join(names, "|")
}

// Inspection is a point-in-time copy of an injector's bindings.
// Categories not selected are nil. Keys are canonical type names, except
// Params, which is keyed by parameter name. A nil value in Shares marks a
// share that has not been built yet.
type Inspection struct {
	ContextID    string
	Definitions  map[string]Args
	Params       map[string]any
	Delegates    map[string]any
	Prepares     map[string]any
	PrepareOrder []string
	Aliases      map[string]string
	Shares       map[string]any
}

// Populated returns the number of categories holding at least one entry.
func (in Inspection) Populated() int {
	n := 0
	for _, size := range []int{
		len(in.Definitions),
		len(in.Params),
		len(in.Delegates),
		len(in.Prepares),
		len(in.Aliases),
		len(in.Shares),
	} {
		if size > 0 {
			n++
		}
	}
	return n
}

// Inspect returns a copy of the bindings selected by flags. A zero flag
// selects everything. A non-empty name restricts each category to that
// name's entry.
func (inj *Injector) Inspect(name string, flags InspectFlag) Inspection {
	if flags == 0 {
		flags = InspectAll
	}

	in := inj.b.snapshot()
	in.ContextID = inj.id

	if !flags.Has(InspectDefinitions) {
		in.Definitions = nil
	}
	if !flags.Has(InspectParams) {
		in.Params = nil
	}
	if !flags.Has(InspectDelegates) {
		in.Delegates = nil
	}
	if !flags.Has(InspectPrepares) {
		in.Prepares = nil
		in.PrepareOrder = nil
	}
	if !flags.Has(InspectAliases) {
		in.Aliases = nil
	}
	if !flags.Has(InspectShares) {
		in.Shares = nil
	}

	if strings.TrimSpace(name) == "" {
		return in
	}

	key := Canonical(name)
	in.Definitions = only(in.Definitions, key)
	in.Params = only(in.Params, strings.TrimSpace(name))
	in.Delegates = only(in.Delegates, key)
	in.Prepares = only(in.Prepares, key)
	in.Aliases = only(in.Aliases, key)
	in.Shares = only(in.Shares, key)
	if in.PrepareOrder != nil {
		if _, ok := in.Prepares[key]; ok {
			in.PrepareOrder = []string{key}
		} else {
			in.PrepareOrder = []string{}
		}
	}
	return in
}

// only narrows m to key, keeping nil maps nil.
func only[V any](m map[string]V, key string) map[string]V {
	if m == nil {
		return nil
	}
	out := make(map[string]V, 1)
	if v, ok := m[key]; ok {
		out[key] = v
	}
	return out
}
