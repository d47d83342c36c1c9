package injector

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/junioryono/injector/internal/resolution"
	"go.uber.org/zap"
)

// Make builds an instance of the named type.
//
// Arguments in args override definitions for the type's own parameters; they
// are not passed on to its dependencies. A shared type returns its shared
// instance and ignores args.
func (inj *Injector) Make(name string, args Args) (any, error) {
	return inj.make(name, args, resolution.NewStack())
}

// MakeType builds an instance of t. See Make.
func (inj *Injector) MakeType(t reflect.Type, args Args) (any, error) {
	if t == nil {
		return nil, &InstantiationError{Name: "<nil>", Cause: ErrTypeNotFound}
	}
	inj.intro.Observe(t)
	return inj.Make(TypeName(t), args)
}

// Make builds an instance of T.
//
//	svc, err := injector.Make[*app.Service](inj, nil)
func Make[T any](inj *Injector, args Args) (T, error) {
	var zero T

	t := reflect.TypeOf((*T)(nil)).Elem()
	obj, err := inj.MakeType(t, args)
	if err != nil {
		return zero, err
	}

	v, ok := convertArg(obj, t)
	if !ok {
		return zero, &MakingFailedError{Name: TypeName(t), Result: fmt.Sprintf("%T", obj)}
	}
	return v.Interface().(T), nil
}

// MustMake is like Make but panics if the instance cannot be built.
func MustMake[T any](inj *Injector, args Args) T {
	v, err := Make[T](inj, args)
	if err != nil {
		panic(err)
	}
	return v
}

func (inj *Injector) make(name string, args Args, st *resolution.Stack) (any, error) {
	key := Canonical(name)
	if key == "" {
		return nil, &InstantiationError{Name: name, Cause: ErrEmptyName}
	}

	if obj, ok := inj.b.shared(key); ok {
		return obj, nil
	}

	if key == injectorKey && !inj.b.bound(key) {
		return inj, nil
	}

	if !st.Push(key) {
		chain := append(st.Chain(), key)
		return nil, &CyclicDependencyError{Name: key, Chain: chain, Cycle: st.Cycle(key)}
	}
	defer st.Pop(key)

	start := time.Now()
	obj, err := inj.build(key, args, st)
	if err != nil {
		if st.Depth() == 1 {
			inj.logger.Debug("make failed",
				zap.String("context", inj.id),
				zap.String("name", key),
				zap.Bool("user", isUserError(err)),
				zap.Error(err))
		}
		return nil, err
	}

	inj.logger.Debug("made",
		zap.String("context", inj.id),
		zap.String("name", key),
		zap.Duration("duration", time.Since(start)))
	return obj, nil
}

// build runs the binding precedence for one in-progress name.
func (inj *Injector) build(key string, args Args, st *resolution.Stack) (any, error) {
	var (
		obj any
		err error
	)

	if factory, ok := inj.b.delegate(key); ok {
		obj, err = inj.makeDelegated(key, factory, args, st)
	} else if target, ok := inj.b.alias(key); ok {
		built := !inj.b.sharedThrough(target)
		if obj, err = inj.make(target, args, st); err != nil {
			return nil, err
		}
		if t, ok := inj.intro.Lookup(key); !built || (ok && t.Kind() == reflect.Interface) {
			// Shared targets were prepared when first built, and interface
			// hooks run on the target itself.
			return obj, nil
		}
		return inj.prepareExact(key, obj, st)
	} else {
		obj, err = inj.construct(key, args, st)
	}
	if err != nil {
		return nil, err
	}

	obj, err = inj.prepare(key, obj, st)
	if err != nil {
		return nil, err
	}

	if shared, ok := inj.b.fill(key, obj); ok {
		obj = shared
	}
	return obj, nil
}

func (inj *Injector) makeDelegated(key string, factory any, args Args, st *resolution.Stack) (any, error) {
	exe, err := inj.buildExecutable(factory, st)
	if err != nil {
		return nil, err
	}

	obj, err := inj.invoke(exe, inj.b.definition(key).merge(args), st)
	if err != nil {
		return nil, err
	}

	if !isObject(obj) {
		return nil, &MakingFailedError{Name: key, Result: kindOf(obj), Chain: st.Chain()}
	}
	if t, ok := inj.intro.Lookup(key); ok && !assignableTo(obj, t) {
		return nil, &MakingFailedError{Name: key, Result: fmt.Sprintf("%T", obj), Chain: st.Chain()}
	}
	return obj, nil
}

// construct builds a concrete type from its constructor or fields.
func (inj *Injector) construct(key string, args Args, st *resolution.Stack) (any, error) {
	t, ok := inj.intro.Lookup(key)
	if !ok {
		return nil, &InstantiationError{Name: key, Cause: ErrTypeNotFound}
	}

	if !inj.intro.Constructible(t) {
		switch t.Kind() {
		case reflect.Interface:
			return nil, &NeedsDefinitionError{Type: key, Chain: st.Chain()}
		case reflect.Struct:
			return nil, &NonPublicConstructorError{Type: key, Chain: st.Chain()}
		}
		return nil, &InstantiationError{Name: key, Cause: errNoConstructor}
	}

	sig, err := inj.constructor(key, t)
	if err != nil {
		return nil, &InstantiationError{Name: key, Cause: err}
	}

	in, err := inj.provision(sig, inj.b.definition(key).merge(args), st)
	if err != nil {
		return nil, err
	}

	if sig.IsStruct() {
		p := reflect.New(sig.Struct)
		for i, param := range sig.Params {
			p.Elem().FieldByIndex(param.Field).Set(in[i])
		}
		return p.Interface(), nil
	}

	obj, err := results(sig, sig.Func.Call(in))
	if err != nil {
		return nil, err
	}
	if kindOf(obj) == "nil" {
		return nil, &MakingFailedError{Name: key, Result: "nil", Chain: st.Chain()}
	}
	return obj, nil
}

// invoke provisions an executable's parameters and calls it.
func (inj *Injector) invoke(exe *Executable, args Args, st *resolution.Stack) (any, error) {
	in, err := inj.provision(exe.sig, args, st)
	if err != nil {
		return nil, err
	}
	return exe.call(in)
}

// provision resolves every parameter of sig in declaration order.
func (inj *Injector) provision(sig *Signature, args Args, st *resolution.Stack) ([]reflect.Value, error) {
	in := make([]reflect.Value, 0, len(sig.Params))
	for _, p := range sig.Params {
		if p.Variadic {
			vals, err := inj.provisionVariadic(sig, p, args, st)
			if err != nil {
				return nil, err
			}
			in = append(in, vals...)
			continue
		}

		v, err := inj.provisionParam(sig, p, args, st)
		if err != nil {
			return nil, err
		}
		in = append(in, v)
	}
	return in, nil
}

func (inj *Injector) provisionParam(sig *Signature, p Param, args Args, st *resolution.Stack) (reflect.Value, error) {
	if v, prefix, ok := args.lookup(p.Name); ok {
		if prefix == "" && p.Type.Kind() == reflect.String {
			// A string parameter cannot be built, so a plain string is its value.
			return inj.convert(sig, p, v, st)
		}
		arg, err := inj.resolveArg(v, prefix, st)
		if err != nil {
			return reflect.Value{}, err
		}
		return inj.convert(sig, p, arg, st)
	}

	if p.Typed() {
		inj.intro.Observe(p.Type)
		if p.HasDefault && !inj.b.bound(Canonical(p.TypeName)) {
			return inj.convert(sig, p, p.Default, st)
		}
		obj, err := inj.make(p.TypeName, nil, st)
		if err != nil {
			return reflect.Value{}, err
		}
		return inj.convert(sig, p, obj, st)
	}

	if v, ok := inj.b.param(p.Name); ok {
		return inj.convert(sig, p, v, st)
	}
	if p.HasDefault {
		return inj.convert(sig, p, p.Default, st)
	}

	err := &UndefinedParameterError{
		Param:    p.Name,
		Position: p.Position,
		Declarer: sig.Name,
		Chain:    st.Chain(),
	}
	if p.Owner != "" && p.Owner != sig.Name {
		err.DeclaredIn = p.Owner
	}
	return reflect.Value{}, err
}

// provisionVariadic resolves the values of a trailing variadic parameter.
// With nothing supplied the parameter receives no values.
func (inj *Injector) provisionVariadic(sig *Signature, p Param, args Args, st *resolution.Stack) ([]reflect.Value, error) {
	v, prefix, ok := args.lookup(p.Name)
	if !ok {
		v, ok = inj.b.param(p.Name)
		if !ok {
			return nil, nil
		}
		prefix = rawPrefix
	}

	var items []any
	switch prefix {
	case rawPrefix, delegatePrefix:
		arg, err := inj.resolveArg(v, prefix, st)
		if err != nil {
			return nil, err
		}
		items = spread(arg)
	default:
		switch names := v.(type) {
		case string:
			items = []any{names}
		case []string:
			for _, name := range names {
				items = append(items, name)
			}
		default:
			items = spread(v)
		}
		for i, item := range items {
			name, isName := item.(string)
			if !isName || p.Type.Kind() == reflect.String {
				continue
			}
			obj, err := inj.make(name, nil, st)
			if err != nil {
				return nil, err
			}
			items[i] = obj
		}
	}

	out := make([]reflect.Value, 0, len(items))
	for _, item := range items {
		rv, err := inj.convert(sig, p, item, st)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, nil
}

// resolveArg turns a supplied argument into its value according to its key prefix.
func (inj *Injector) resolveArg(v any, prefix string, st *resolution.Stack) (any, error) {
	switch prefix {
	case rawPrefix:
		return v, nil
	case delegatePrefix:
		exe, err := inj.buildExecutable(v, st)
		if err != nil {
			return nil, err
		}
		return inj.invoke(exe, nil, st)
	}

	name, ok := v.(string)
	if !ok {
		// Non-string values under a plain key are used as given.
		return v, nil
	}
	return inj.make(name, nil, st)
}

func (inj *Injector) convert(sig *Signature, p Param, arg any, st *resolution.Stack) (reflect.Value, error) {
	v, ok := convertArg(arg, p.Type)
	if !ok {
		return reflect.Value{}, &ParameterTypeError{
			Param:    p.Name,
			Position: p.Position,
			Declarer: sig.Name,
			Expected: p.Type,
			Actual:   typeOfValue(arg),
			Chain:    st.Chain(),
		}
	}
	return v, nil
}

// prepare runs the hooks registered for key, then those registered on
// interfaces the instance implements.
func (inj *Injector) prepare(key string, obj any, st *resolution.Stack) (any, error) {
	hooks := inj.b.hooks()
	if len(hooks) == 0 {
		return obj, nil
	}

	obj, err := inj.runExact(hooks, key, obj, st)
	if err != nil {
		return nil, err
	}

	for _, h := range hooks {
		if h.name == key {
			continue
		}
		t, ok := inj.intro.Lookup(h.name)
		if !ok || t.Kind() != reflect.Interface || !reflect.TypeOf(obj).Implements(t) {
			continue
		}
		if obj, err = inj.runHook(h, t, obj, st); err != nil {
			return nil, err
		}
	}

	return obj, nil
}

// prepareExact runs only the hooks registered under key itself.
func (inj *Injector) prepareExact(key string, obj any, st *resolution.Stack) (any, error) {
	return inj.runExact(inj.b.hooks(), key, obj, st)
}

func (inj *Injector) runExact(hooks []hook, key string, obj any, st *resolution.Stack) (any, error) {
	var err error
	for _, h := range hooks {
		if h.name != key {
			continue
		}
		t, _ := inj.intro.Lookup(key)
		if obj, err = inj.runHook(h, t, obj, st); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// runHook calls one prepare hook with obj as its first argument.
func (inj *Injector) runHook(h hook, t reflect.Type, obj any, st *resolution.Stack) (any, error) {
	exe, err := inj.buildExecutable(h.spec, st)
	if err != nil {
		return nil, err
	}

	sig := exe.sig
	in := make([]reflect.Value, 0, len(sig.Params))
	for i, p := range sig.Params {
		if i == 0 && !p.Variadic {
			v, err := inj.convert(sig, p, obj, st)
			if err != nil {
				return nil, err
			}
			in = append(in, v)
			continue
		}

		if p.Variadic {
			vals, err := inj.provisionVariadic(sig, p, nil, st)
			if err != nil {
				return nil, err
			}
			in = append(in, vals...)
			continue
		}

		v, err := inj.provisionParam(sig, p, nil, st)
		if err != nil {
			return nil, err
		}
		in = append(in, v)
	}

	result, err := exe.call(in)
	if err != nil {
		return nil, err
	}

	if replacement(result, obj, t) {
		return result, nil
	}
	return obj, nil
}

// replacement reports whether a hook result should replace the instance.
func replacement(result, obj any, t reflect.Type) bool {
	if kindOf(result) == "nil" {
		return false
	}
	if t != nil {
		return assignableTo(result, t)
	}
	return reflect.TypeOf(result) == reflect.TypeOf(obj)
}

// assignableTo reports whether obj can stand for the named type t.
func assignableTo(obj any, t reflect.Type) bool {
	have := reflect.TypeOf(obj)
	if have == nil {
		return false
	}
	switch {
	case t.Kind() == reflect.Interface:
		return have.Implements(t)
	case have == t:
		return true
	case have.Kind() == reflect.Pointer && have.Elem() == t:
		return true
	case t.Kind() == reflect.Pointer && t.Elem() == have:
		return true
	}
	return false
}

// spread flattens a slice or array argument into its elements.
func spread(v any) []any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{v}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// constructor returns the cached constructor signature of t.
func (inj *Injector) constructor(key string, t reflect.Type) (*Signature, error) {
	cacheKey := ctorKeyPrefix + key
	if cached, ok := inj.cache.Fetch(cacheKey); ok {
		if sig, ok := cached.(*Signature); ok {
			return sig, nil
		}
	}

	sig, err := inj.intro.Constructor(t)
	if err != nil {
		return nil, err
	}
	inj.cache.Store(cacheKey, sig)
	return sig, nil
}

// isUserError reports whether err came from user code rather than the injector.
func isUserError(err error) bool {
	var ie InjectionError
	var inst *InstantiationError
	var ce *ConfigError
	return !errors.As(err, &ie) && !errors.As(err, &inst) && !errors.As(err, &ce)
}
