package injector

import (
	"maps"
	"slices"
	"sync"
)

// Args supplies or defines constructor arguments by parameter name.
//
// A plain key names a type to build for the parameter (a list of type
// names for a variadic parameter). A key prefixed with ':' carries a raw
// value used verbatim. A key prefixed with '+' carries a callable whose
// result becomes the argument.
//
//	injector.Args{
//		"logger":   "example.com/app.FileLogger",
//		":path":    "/var/log/app.log",
//		"+clock":   func() time.Time { return fixed },
//	}
type Args map[string]any

const (
	rawPrefix      = ":"
	delegatePrefix = "+"
)

// Raw returns the key under which value is passed verbatim to param.
func Raw(param string) string { return rawPrefix + param }

// Delegated returns the key under which a callable provides param.
func Delegated(param string) string { return delegatePrefix + param }

// merge returns a copy of base overlaid by over. Keys in over win.
func (a Args) merge(over Args) Args {
	if len(a) == 0 {
		return over
	}
	if len(over) == 0 {
		return a
	}
	out := make(Args, len(a)+len(over))
	maps.Copy(out, a)
	maps.Copy(out, over)
	return out
}

// lookup finds the argument for a parameter name in any of its three forms.
func (a Args) lookup(param string) (value any, prefix string, ok bool) {
	if len(a) == 0 {
		return nil, "", false
	}
	if v, ok := a[param]; ok {
		return v, "", true
	}
	if v, ok := a[rawPrefix+param]; ok {
		return v, rawPrefix, true
	}
	if v, ok := a[delegatePrefix+param]; ok {
		return v, delegatePrefix, true
	}
	return nil, "", false
}

// shareSlot holds a shared instance once it has been built.
// A slot that is not filled is pending: the next build of its name fills it.
type shareSlot struct {
	instance any
	filled   bool
}

// bindings is the per-context binding registry. All keys are canonical
// names except params, which are keyed by parameter name.
type bindings struct {
	mu           sync.RWMutex
	aliases      map[string]string
	shares       map[string]*shareSlot
	delegates    map[string]any
	prepares     map[string]any
	prepareOrder []string
	definitions  map[string]Args
	params       map[string]any
}

func newBindings() *bindings {
	return &bindings{
		aliases:     make(map[string]string),
		shares:      make(map[string]*shareSlot),
		delegates:   make(map[string]any),
		prepares:    make(map[string]any),
		definitions: make(map[string]Args),
		params:      make(map[string]any),
	}
}

// resolveAliasLocked follows the alias chain from name. It stops at the
// first name seen twice. The caller must hold b.mu.
func (b *bindings) resolveAliasLocked(name string) string {
	seen := map[string]struct{}{name: {}}
	for {
		next, ok := b.aliases[name]
		if !ok {
			return name
		}
		if _, dup := seen[next]; dup {
			return name
		}
		seen[next] = struct{}{}
		name = next
	}
}

// shared returns the filled instance for name, if any.
func (b *bindings) shared(name string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if slot, ok := b.shares[name]; ok && slot.filled {
		return slot.instance, true
	}
	return nil, false
}

// sharedThrough reports whether resolving name returns an existing shared
// instance, following aliases up to the first delegate.
func (b *bindings) sharedThrough(name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	seen := map[string]struct{}{}
	for {
		if slot, ok := b.shares[name]; ok && slot.filled {
			return true
		}
		if _, ok := b.delegates[name]; ok {
			return false
		}
		if _, dup := seen[name]; dup {
			return false
		}
		seen[name] = struct{}{}

		next, ok := b.aliases[name]
		if !ok {
			return false
		}
		name = next
	}
}

// fill stores instance in a pending slot for name. The first stored
// instance wins; it is returned along with whether a slot exists.
func (b *bindings) fill(name string, instance any) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	slot, ok := b.shares[name]
	if !ok {
		return instance, false
	}
	if !slot.filled {
		slot.instance = instance
		slot.filled = true
	}
	return slot.instance, true
}

func (b *bindings) delegate(name string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	spec, ok := b.delegates[name]
	return spec, ok
}

func (b *bindings) alias(name string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	target, ok := b.aliases[name]
	return target, ok
}

func (b *bindings) definition(name string) Args {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.definitions[name]
}

func (b *bindings) param(name string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.params[name]
	return v, ok
}

// bound reports whether name has an alias, delegate or share.
func (b *bindings) bound(name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if _, ok := b.aliases[name]; ok {
		return true
	}
	if _, ok := b.delegates[name]; ok {
		return true
	}
	_, ok := b.shares[name]
	return ok
}

// hook is a prepare hook registered under a canonical name.
type hook struct {
	name string
	spec any
}

// hooks returns the prepare hooks in registration order.
func (b *bindings) hooks() []hook {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]hook, 0, len(b.prepareOrder))
	for _, name := range b.prepareOrder {
		out = append(out, hook{name: name, spec: b.prepares[name]})
	}
	return out
}

func (b *bindings) setPrepare(name string, spec any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.prepares[name]; !ok {
		b.prepareOrder = append(b.prepareOrder, name)
	}
	b.prepares[name] = spec
}

func (b *bindings) setDelegate(name string, spec any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.delegates[name] = spec
}

func (b *bindings) setDefinition(name string, args Args) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.definitions[name] = maps.Clone(args)
}

func (b *bindings) setParam(name string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.params[name] = value
}

// snapshot copies every category for inspection.
func (b *bindings) snapshot() Inspection {
	b.mu.RLock()
	defer b.mu.RUnlock()

	in := Inspection{
		Definitions: make(map[string]Args, len(b.definitions)),
		Params:      maps.Clone(b.params),
		Delegates:   maps.Clone(b.delegates),
		Prepares:    maps.Clone(b.prepares),
		Aliases:     maps.Clone(b.aliases),
		Shares:      make(map[string]any, len(b.shares)),
	}
	for name, args := range b.definitions {
		in.Definitions[name] = maps.Clone(args)
	}
	for name, slot := range b.shares {
		in.Shares[name] = slot.instance
	}
	in.PrepareOrder = slices.Clone(b.prepareOrder)
	return in
}
