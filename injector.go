package injector

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// injectorKey is the canonical name of the Injector type itself.
var injectorKey = Canonical(NameOf[*Injector]())

// Injector builds objects by reflecting on their declared parameters and
// recursively building what they depend on.
//
// Bindings (aliases, shares, delegates, definitions, parameter values and
// prepare hooks) belong to one Injector. The type registry, the metadata
// cache and the logger are shared with every context created by
// SeparateContext.
//
// An Injector is safe for concurrent use. Configuration and resolution may
// interleave, but a resolution sees whichever bindings were present when it
// consulted them.
type Injector struct {
	id     string
	logger *zap.Logger
	cache  Cache
	intro  Introspector
	types  *Types
	b      *bindings
}

// New creates an Injector.
func New(opts ...Option) *Injector {
	o := newOptions(opts)
	return &Injector{
		id:     uuid.NewString(),
		logger: o.logger,
		cache:  o.cache,
		intro:  o.introspector,
		types:  o.types,
		b:      newBindings(),
	}
}

// ID returns the unique identifier of this context.
func (inj *Injector) ID() string {
	return inj.id
}

// Types returns the type registry, or nil when a custom introspector is in use.
func (inj *Injector) Types() *Types {
	return inj.types
}

// Introspector returns the introspector used to analyze types.
func (inj *Injector) Introspector() Introspector {
	return inj.intro
}

// Register records the types of the given samples so they can be made by name.
// See Types.Register for the accepted sample forms.
func (inj *Injector) Register(samples ...any) error {
	if inj.types != nil {
		return inj.types.Register(samples...)
	}
	for _, sample := range samples {
		t, err := sampleType(sample)
		if err != nil {
			return err
		}
		inj.intro.Observe(t)
	}
	return nil
}

// SeparateContext returns a new Injector with no bindings that shares this
// injector's type registry, cache and logger.
func (inj *Injector) SeparateContext() *Injector {
	child := &Injector{
		id:     uuid.NewString(),
		logger: inj.logger,
		cache:  inj.cache,
		intro:  inj.intro,
		types:  inj.types,
		b:      newBindings(),
	}
	inj.logger.Debug("context separated",
		zap.String("context", inj.id),
		zap.String("child", child.id))
	return child
}

// Alias makes requests for typeName build implementationName instead.
//
// Aliasing a name whose shared instance already exists is an error. A share
// still pending on typeName moves to implementationName. A later alias for
// the same name replaces the earlier one.
func (inj *Injector) Alias(typeName, implementationName string) error {
	if strings.TrimSpace(typeName) == "" || strings.TrimSpace(implementationName) == "" {
		return &ConfigError{Op: "alias", Name: typeName, Argument: implementationName, Cause: ErrNonEmptyStringAlias}
	}

	from, to := Canonical(typeName), Canonical(implementationName)

	inj.b.mu.Lock()
	if slot, ok := inj.b.shares[from]; ok {
		if slot.filled {
			inj.b.mu.Unlock()
			return &ConfigError{Op: "alias", Name: from, Argument: implementationName, Cause: ErrSharedCannotAlias}
		}
		delete(inj.b.shares, from)
		if _, ok := inj.b.shares[to]; !ok {
			inj.b.shares[to] = &shareSlot{}
		}
	}
	inj.b.aliases[from] = to
	inj.b.mu.Unlock()

	inj.logger.Debug("alias registered",
		zap.String("context", inj.id),
		zap.String("name", from),
		zap.String("target", to))
	return nil
}

// Share makes one instance of a type serve every request for it.
//
// Given a type name, the next instance built under that name (after
// following aliases) is retained. Given an object, that object is retained
// under its type name immediately. Sharing the same object twice is
// harmless; sharing a different object of an already shared type is an
// error, as is sharing an object whose type name is aliased.
func (inj *Injector) Share(nameOrInstance any) error {
	switch v := nameOrInstance.(type) {
	case nil:
		return &ConfigError{Op: "share", Argument: "nil", Cause: ErrShareArgument}
	case string:
		return inj.shareName(v)
	}

	if !isObject(nameOrInstance) {
		return &ConfigError{Op: "share", Argument: fmt.Sprintf("%T", nameOrInstance), Cause: ErrShareArgument}
	}
	return inj.shareInstance(nameOrInstance)
}

func (inj *Injector) shareName(name string) error {
	key := Canonical(name)
	if key == "" {
		return &ConfigError{Op: "share", Name: name, Cause: ErrEmptyName}
	}

	inj.b.mu.Lock()
	target := inj.b.resolveAliasLocked(key)
	if _, ok := inj.b.shares[target]; !ok {
		inj.b.shares[target] = &shareSlot{}
	}
	inj.b.mu.Unlock()

	inj.logger.Debug("share registered",
		zap.String("context", inj.id),
		zap.String("name", target),
		zap.Bool("pending", true))
	return nil
}

func (inj *Injector) shareInstance(instance any) error {
	t := reflect.TypeOf(instance)
	inj.intro.Observe(t)
	key := Canonical(TypeName(t))

	inj.b.mu.Lock()
	if target, ok := inj.b.aliases[key]; ok {
		inj.b.mu.Unlock()
		return &ConfigError{Op: "share", Name: key, Argument: target, Cause: ErrAliasedCannotShare}
	}
	if slot, ok := inj.b.shares[key]; ok && slot.filled {
		inj.b.mu.Unlock()
		if sameInstance(slot.instance, instance) {
			return nil
		}
		return &ConfigError{Op: "share", Name: key, Argument: fmt.Sprintf("%T", instance), Cause: ErrDoubleShare}
	}
	inj.b.shares[key] = &shareSlot{instance: instance, filled: true}
	inj.b.mu.Unlock()

	inj.logger.Debug("share registered",
		zap.String("context", inj.id),
		zap.String("name", key),
		zap.Bool("pending", false))
	return nil
}

// Delegate makes requests for typeName call a factory instead of building
// the type. The factory is any callable accepted by BuildExecutable; its
// parameters are provisioned like a constructor's.
func (inj *Injector) Delegate(typeName string, factory any) error {
	key := Canonical(typeName)
	if key == "" {
		return &ConfigError{Op: "delegate", Name: typeName, Cause: ErrEmptyName}
	}
	if !inj.invokable(factory) {
		return &ConfigError{Op: "delegate", Name: key, Argument: describe(factory), Cause: ErrDelegateArgument}
	}

	inj.b.setDelegate(key, factory)

	inj.logger.Debug("delegate registered",
		zap.String("context", inj.id),
		zap.String("name", key),
		zap.String("delegate", describe(factory)))
	return nil
}

// Define sets constructor arguments used whenever typeName itself is built.
// Arguments passed to Make take precedence. Definitions are not applied to
// the type's dependencies.
func (inj *Injector) Define(typeName string, args Args) error {
	key := Canonical(typeName)
	if key == "" {
		return &ConfigError{Op: "define", Name: typeName, Cause: ErrEmptyName}
	}

	inj.b.setDefinition(key, args)

	inj.logger.Debug("definition registered",
		zap.String("context", inj.id),
		zap.String("name", key),
		zap.Int("args", len(args)))
	return nil
}

// DefineParam sets the value of every plain-valued parameter called paramName
// that is not otherwise provided.
func (inj *Injector) DefineParam(paramName string, value any) error {
	name := strings.TrimSpace(paramName)
	if name == "" {
		return &ConfigError{Op: "defineParam", Name: paramName, Cause: ErrEmptyName}
	}

	inj.b.setParam(name, value)

	inj.logger.Debug("definition registered",
		zap.String("context", inj.id),
		zap.String("param", name))
	return nil
}

// Prepare registers a hook run on every instance built under typeName, or
// on every instance implementing typeName when it names an interface.
//
// The hook's first parameter receives the instance; the rest are
// provisioned. If the hook returns a non-nil value of a compatible type,
// that value replaces the instance.
func (inj *Injector) Prepare(typeName string, hook any) error {
	key := Canonical(typeName)
	if key == "" {
		return &ConfigError{Op: "prepare", Name: typeName, Cause: ErrEmptyName}
	}
	if !inj.invokable(hook) {
		return &ConfigError{Op: "prepare", Name: key, Argument: describe(hook), Cause: ErrPrepareArgument}
	}

	inj.b.setPrepare(key, hook)

	inj.logger.Debug("prepare registered",
		zap.String("context", inj.id),
		zap.String("name", key))
	return nil
}

// sameInstance reports whether a and b are the same object.
func sameInstance(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || ta == nil {
		return false
	}
	if !reflect.ValueOf(a).Comparable() {
		return false
	}
	return a == b
}

// describe renders a callable spec for error messages.
func describe(spec any) string {
	switch v := spec.(type) {
	case nil:
		return "nil"
	case string:
		return v
	case Callable:
		return describe(v.fn)
	case *Executable:
		if v == nil {
			return "nil"
		}
		return v.String()
	}

	rv := reflect.ValueOf(spec)
	if rv.Kind() == reflect.Func {
		return funcName(rv, rv.Type().String())
	}
	return fmt.Sprintf("%T", spec)
}
