package injector

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/junioryono/injector/internal/reflection"
	"github.com/junioryono/injector/internal/resolution"
)

const parentPrefix = "parent::"

// Execute invokes a callable, building each of its parameters the way Make
// builds constructor parameters. Arguments in args take precedence.
//
// The callable may be anything BuildExecutable accepts. If the callable's
// last result is a non-nil error, it is returned unchanged. Otherwise the
// first result, if any, is returned.
func (inj *Injector) Execute(callable any, args Args) (any, error) {
	st := resolution.NewStack()
	exe, err := inj.buildExecutable(callable, st)
	if err != nil {
		return nil, err
	}
	return inj.invoke(exe, args, st)
}

// BuildExecutable normalizes a callable into an Executable. Accepted forms:
//
//   - an *Executable, returned as is
//   - a function value, or a function wrapped by Named or Func
//   - the name of a function registered with Types.RegisterFunc
//   - the name of a type with an Invoke method; an instance is made
//   - "Type::method", resolved to a static function registered under that
//     name, or else to the method of an instance made by the injector
//   - "Type::parent::method", the method of the instance's first embedded struct
//   - a two-element []any or [2]any holding a receiver (object or type name)
//     and a method name, optionally prefixed with "parent::"
//   - any value with an Invoke method
//
// Anything else fails with an InvokableError.
func (inj *Injector) BuildExecutable(callable any) (*Executable, error) {
	return inj.buildExecutable(callable, resolution.NewStack())
}

func (inj *Injector) buildExecutable(callable any, st *resolution.Stack) (*Executable, error) {
	switch v := callable.(type) {
	case nil:
		return nil, invokableError("nil", "", st)
	case *Executable:
		if v == nil {
			return nil, invokableError("nil", "", st)
		}
		return v, nil
	case Callable:
		return inj.buildFunc(reflect.ValueOf(v.fn), v.opts, true, st)
	case string:
		return inj.buildString(v, st)
	case []any:
		if len(v) != 2 {
			return nil, invokableError(describe(callable), "expected a receiver and a method name", st)
		}
		return inj.buildPair(v[0], v[1], st)
	case [2]any:
		return inj.buildPair(v[0], v[1], st)
	}

	rv := reflect.ValueOf(callable)
	if rv.Kind() == reflect.Func {
		return inj.buildFunc(rv, reflection.FuncOptions{}, false, st)
	}
	if methodExists(rv.Type(), invokeMethod) {
		exe, err := inj.buildMethod(rv, invokeMethod, false, describe(callable), st)
		if err != nil {
			return nil, err
		}
		exe.kind = InvokableObject
		return exe, nil
	}

	return nil, invokableError(describe(callable), "", st)
}

func (inj *Injector) buildFunc(fv reflect.Value, opts reflection.FuncOptions, named bool, st *resolution.Stack) (*Executable, error) {
	if !fv.IsValid() || fv.Kind() != reflect.Func || fv.IsNil() {
		return nil, invokableError("nil", "function required", st)
	}

	name := funcName(fv, fv.Type().String())
	key := fmt.Sprintf("%s%x:%s", closureKeyPrefix, fv.Pointer(), fv.Type())

	var sig *Signature
	if !named {
		if cached, ok := inj.cache.Fetch(key); ok {
			if s, ok := cached.(*Signature); ok {
				copied := *s
				copied.Func = fv
				sig = &copied
			}
		}
	}

	if sig == nil {
		var err error
		sig, err = reflection.AnalyzeFunc(name, fv, opts)
		if err != nil {
			return nil, invokableError(name, err.Error(), st)
		}
		if !named {
			inj.cache.Store(key, sig)
		}
	}

	return &Executable{kind: funcKind(name), name: name, sig: sig}, nil
}

func (inj *Injector) buildString(target string, st *resolution.Stack) (*Executable, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, invokableError(target, "empty name", st)
	}

	if strings.Contains(target, "::") {
		typeName, method, parent, ok := splitMethod(target)
		if !ok {
			return nil, invokableError(target, "expected Type::method", st)
		}

		if !parent {
			if sig, ok := inj.function(typeName + "::" + method); ok {
				return &Executable{kind: StaticMethod, name: target, sig: sig}, nil
			}
		}

		recv, err := inj.makeReceiver(typeName, target, st)
		if err != nil {
			return nil, err
		}
		return inj.buildMethod(reflect.ValueOf(recv), method, parent, target, st)
	}

	if sig, ok := inj.function(target); ok {
		return &Executable{kind: FreeFunction, name: target, sig: sig}, nil
	}

	if t, ok := inj.intro.Lookup(target); ok && methodExists(t, invokeMethod) {
		recv, err := inj.makeReceiver(target, target, st)
		if err != nil {
			return nil, err
		}
		exe, err := inj.buildMethod(reflect.ValueOf(recv), invokeMethod, false, target, st)
		if err != nil {
			return nil, err
		}
		exe.kind = InvokableObject
		return exe, nil
	}

	return nil, invokableError(target, "no such function or invokable type", st)
}

func (inj *Injector) buildPair(receiver, method any, st *resolution.Stack) (*Executable, error) {
	target := fmt.Sprintf("[%s, %v]", describe(receiver), method)

	name, ok := method.(string)
	if !ok || strings.TrimSpace(name) == "" {
		return nil, invokableError(target, "method name must be a non-empty string", st)
	}
	name = strings.TrimSpace(name)

	parent := false
	if strings.HasPrefix(strings.ToLower(name), parentPrefix) {
		parent = true
		name = name[len(parentPrefix):]
	}

	switch r := receiver.(type) {
	case nil:
		return nil, invokableError(target, "receiver is nil", st)
	case string:
		if parent {
			return inj.buildString(r+"::"+parentPrefix+name, st)
		}
		return inj.buildString(r+"::"+name, st)
	}

	return inj.buildMethod(reflect.ValueOf(receiver), name, parent, target, st)
}

// makeReceiver makes the instance a method executable is bound to.
func (inj *Injector) makeReceiver(typeName, target string, st *resolution.Stack) (any, error) {
	recv, err := inj.make(typeName, nil, st)
	if err != nil {
		var inst *InstantiationError
		if errors.As(err, &inst) {
			return nil, invokableError(target, err.Error(), st)
		}
		return nil, err
	}
	return recv, nil
}

func (inj *Injector) buildMethod(recv reflect.Value, method string, parent bool, target string, st *resolution.Stack) (*Executable, error) {
	if !recv.IsValid() {
		return nil, invokableError(target, "receiver is nil", st)
	}

	if recv.Kind() == reflect.Struct {
		p := reflect.New(recv.Type())
		p.Elem().Set(recv)
		recv = p
	}

	if parent {
		pv, ok := parentValue(recv)
		if !ok {
			return nil, invokableError(target, "type has no embedded parent", st)
		}
		recv = pv
	}

	sig, ok := inj.method(recv.Type(), method)
	if !ok {
		return nil, invokableError(target, fmt.Sprintf("method %s not found on %s", method, recv.Type()), st)
	}

	return &Executable{kind: InstanceMethod, name: sig.Name, sig: sig, receiver: recv}, nil
}

// function returns the cached signature of a registered function.
func (inj *Injector) function(name string) (*Signature, bool) {
	key := funcKeyPrefix + Canonical(name)
	if cached, ok := inj.cache.Fetch(key); ok {
		if sig, ok := cached.(*Signature); ok {
			return sig, true
		}
	}

	sig, ok := inj.intro.Function(name)
	if !ok {
		return nil, false
	}
	inj.cache.Store(key, sig)
	return sig, true
}

// method returns the cached signature of a method on t.
func (inj *Injector) method(t reflect.Type, name string) (*Signature, bool) {
	ptr := ""
	if t.Kind() == reflect.Pointer {
		ptr = "*"
	}
	key := methodKeyPrefix + ptr + Canonical(TypeName(t)) + "::" + strings.ToLower(name)
	if cached, ok := inj.cache.Fetch(key); ok {
		if sig, ok := cached.(*Signature); ok {
			return sig, true
		}
	}

	sig, ok := inj.intro.Method(t, name)
	if !ok {
		return nil, false
	}
	inj.cache.Store(key, sig)
	return sig, true
}

// invokable reports whether callable can be normalized, without making any
// receiver it would need.
func (inj *Injector) invokable(callable any) bool {
	switch v := callable.(type) {
	case nil:
		return false
	case *Executable:
		return v != nil
	case Callable:
		fv := reflect.ValueOf(v.fn)
		return fv.Kind() == reflect.Func && !fv.IsNil()
	case string:
		return inj.invokableString(v)
	case []any:
		return len(v) == 2 && inj.invokablePair(v[0], v[1])
	case [2]any:
		return inj.invokablePair(v[0], v[1])
	}

	rv := reflect.ValueOf(callable)
	if rv.Kind() == reflect.Func {
		return !rv.IsNil()
	}
	return methodExists(rv.Type(), invokeMethod)
}

func (inj *Injector) invokableString(target string) bool {
	target = strings.TrimSpace(target)
	if target == "" {
		return false
	}

	if !strings.Contains(target, "::") {
		if _, ok := inj.function(target); ok {
			return true
		}
		t, ok := inj.intro.Lookup(target)
		return ok && methodExists(t, invokeMethod)
	}

	typeName, method, parent, ok := splitMethod(target)
	if !ok {
		return false
	}
	if !parent {
		if _, ok := inj.function(typeName + "::" + method); ok {
			return true
		}
	}

	t, ok := inj.intro.Lookup(typeName)
	if !ok {
		return false
	}
	if parent {
		if t, ok = parentType(t); !ok {
			return false
		}
	}
	return methodExists(t, method)
}

func (inj *Injector) invokablePair(receiver, method any) bool {
	name, ok := method.(string)
	if !ok || strings.TrimSpace(name) == "" {
		return false
	}
	name = strings.TrimSpace(name)

	parent := false
	if strings.HasPrefix(strings.ToLower(name), parentPrefix) {
		parent = true
		name = name[len(parentPrefix):]
	}

	switch r := receiver.(type) {
	case nil:
		return false
	case string:
		if parent {
			return inj.invokableString(r + "::" + parentPrefix + name)
		}
		return inj.invokableString(r + "::" + name)
	}

	t := reflect.TypeOf(receiver)
	if parent {
		if t, ok = parentType(t); !ok {
			return false
		}
	}
	return methodExists(t, name)
}

// splitMethod splits "Type::method" or "Type::parent::method".
func splitMethod(target string) (typeName, method string, parent, ok bool) {
	parts := strings.Split(target, "::")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
		if parts[i] == "" {
			return "", "", false, false
		}
	}

	switch {
	case len(parts) == 2:
		return parts[0], parts[1], false, true
	case len(parts) == 3 && strings.EqualFold(parts[1], "parent"):
		return parts[0], parts[2], true, true
	}
	return "", "", false, false
}

// methodExists reports whether values of t, or pointers to them, have the named method.
func methodExists(t reflect.Type, name string) bool {
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Interface {
		if _, ok := t.MethodByName(name); ok {
			return true
		}
		for i := 0; i < t.NumMethod(); i++ {
			if strings.EqualFold(t.Method(i).Name, name) {
				return true
			}
		}
		return false
	}
	_, ok := findMethod(t, name)
	return ok
}

// parentType returns the type of the first embedded struct of t.
func parentType(t reflect.Type) (reflect.Type, bool) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, false
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous || !f.IsExported() {
			continue
		}
		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct {
			return ft, true
		}
	}
	return nil, false
}

// parentValue returns a pointer to the first embedded struct of recv.
func parentValue(recv reflect.Value) (reflect.Value, bool) {
	v := recv
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous || !f.IsExported() {
			continue
		}
		fv := v.Field(i)
		switch {
		case f.Type.Kind() == reflect.Struct && fv.CanAddr():
			return fv.Addr(), true
		case f.Type.Kind() == reflect.Pointer && f.Type.Elem().Kind() == reflect.Struct && !fv.IsNil():
			return fv, true
		}
	}
	return reflect.Value{}, false
}

func invokableError(target, reason string, st *resolution.Stack) *InvokableError {
	return &InvokableError{Target: target, Reason: reason, Chain: st.Chain()}
}
