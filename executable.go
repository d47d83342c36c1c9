package injector

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/junioryono/injector/internal/reflection"
)

// ExecutableKind classifies a normalized invocable target.
type ExecutableKind int

const (
	// FreeFunction is a package-level function.
	FreeFunction ExecutableKind = iota

	// StaticMethod is a function registered as "Type::method".
	StaticMethod

	// InstanceMethod is a method bound to a receiver.
	InstanceMethod

	// Closure is a function literal or method value.
	Closure

	// InvokableObject is an object called through its Invoke method.
	InvokableObject
)

// String returns the string representation of the kind.
func (k ExecutableKind) String() string {
	switch k {
	case FreeFunction:
		return "FreeFunction"
	case StaticMethod:
		return "StaticMethod"
	case InstanceMethod:
		return "InstanceMethod"
	case Closure:
		return "Closure"
	case InvokableObject:
		return "InvokableObject"
	default:
		return fmt.Sprintf("ExecutableKind(%d)", int(k))
	}
}

// invokeMethod is the method name that makes an object invokable.
const invokeMethod = "Invoke"

// Executable is a callable normalized by BuildExecutable. It carries the
// parameter list the injector provisions and, for methods, the bound receiver.
//
// An Executable is immutable once built and may be invoked concurrently if
// the underlying callable allows it.
type Executable struct {
	kind     ExecutableKind
	name     string
	sig      *Signature
	receiver reflect.Value
}

// Kind returns what kind of callable the executable wraps.
func (e *Executable) Kind() ExecutableKind {
	return e.kind
}

// Params returns a copy of the callable's parameters, receiver excluded.
func (e *Executable) Params() []Param {
	out := make([]Param, len(e.sig.Params))
	copy(out, e.sig.Params)
	return out
}

// IsInstanceMethod reports whether the executable is bound to a receiver.
func (e *Executable) IsInstanceMethod() bool {
	return e.receiver.IsValid()
}

// Receiver returns the bound receiver, or nil.
func (e *Executable) Receiver() any {
	if !e.receiver.IsValid() {
		return nil
	}
	return e.receiver.Interface()
}

// String returns the name of the wrapped callable.
func (e *Executable) String() string {
	return e.name
}

// Invoke calls the executable with positional arguments. Missing trailing
// arguments take their declared defaults; extra arguments fill a variadic
// parameter.
//
// A trailing error result is returned as the error. Otherwise the first
// result, if any, is returned as the value.
func (e *Executable) Invoke(args ...any) (any, error) {
	in := make([]reflect.Value, 0, len(args))

	for _, p := range e.sig.Params {
		if p.Variadic {
			for _, a := range args[min(p.Position, len(args)):] {
				v, err := e.convert(p, a)
				if err != nil {
					return nil, err
				}
				in = append(in, v)
			}
			break
		}

		if p.Position < len(args) {
			v, err := e.convert(p, args[p.Position])
			if err != nil {
				return nil, err
			}
			in = append(in, v)
			continue
		}

		if !p.HasDefault {
			return nil, &UndefinedParameterError{
				Param:    p.Name,
				Position: p.Position,
				Declarer: e.name,
			}
		}
		v, err := e.convert(p, p.Default)
		if err != nil {
			return nil, err
		}
		in = append(in, v)
	}

	return e.call(in)
}

func (e *Executable) convert(p Param, arg any) (reflect.Value, error) {
	v, ok := convertArg(arg, p.Type)
	if !ok {
		return reflect.Value{}, &ParameterTypeError{
			Param:    p.Name,
			Position: p.Position,
			Declarer: e.name,
			Expected: p.Type,
			Actual:   typeOfValue(arg),
		}
	}
	return v, nil
}

// call invokes the underlying function with already provisioned arguments.
func (e *Executable) call(in []reflect.Value) (any, error) {
	if e.receiver.IsValid() {
		in = append([]reflect.Value{e.receiver}, in...)
	}
	return results(e.sig, e.sig.Func.Call(in))
}

// results converts a call's return values into a value and an error.
// A non-nil trailing error is returned untouched.
func results(sig *Signature, out []reflect.Value) (any, error) {
	if sig.HasError {
		last := out[len(out)-1]
		if !last.IsNil() {
			return nil, last.Interface().(error)
		}
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0].Interface(), nil
}

// Callable pairs a function value with the parameter metadata Go does not
// keep at runtime. Pass it anywhere a callable is accepted.
type Callable struct {
	fn   any
	opts reflection.FuncOptions
}

// Named wraps fn with positional parameter names, so that definitions and
// DefineParam values can target its parameters by name.
//
//	inj.Execute(injector.Named(func(host string, port int) {...}, "host", "port"), nil)
func Named(fn any, names ...string) Callable {
	return Func(fn, Params(names...))
}

// Func wraps fn with the given parameter options.
func Func(fn any, opts ...FuncOption) Callable {
	return Callable{fn: fn, opts: newFuncOptions(opts)}
}

// funcKind classifies a function value by its runtime name.
func funcKind(name string) ExecutableKind {
	last := name
	if i := strings.LastIndex(name, "/"); i >= 0 {
		last = name[i+1:]
	}
	switch {
	case strings.HasSuffix(last, "-fm"):
		return Closure
	case strings.Contains(last, ".func"):
		return Closure
	default:
		return FreeFunction
	}
}

// convertArg adapts a supplied value to a parameter type.
func convertArg(arg any, want reflect.Type) (reflect.Value, bool) {
	if arg == nil {
		switch want.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(want), true
		}
		return reflect.Value{}, false
	}

	if rv, ok := arg.(reflect.Value); ok && rv.IsValid() {
		arg = rv.Interface()
	}

	rv := reflect.ValueOf(arg)
	have := rv.Type()

	switch {
	case have.AssignableTo(want):
		return rv, true

	case want.Kind() == reflect.Pointer && have == want.Elem():
		p := reflect.New(have)
		p.Elem().Set(rv)
		return p, true

	case have.Kind() == reflect.Pointer && have.Elem() == want && !rv.IsNil():
		return rv.Elem(), true

	case want.Kind() == reflect.Interface && reflect.PointerTo(have).Implements(want):
		p := reflect.New(have)
		p.Elem().Set(rv)
		return p, true

	case numeric(have) && numeric(want):
		return convertNumber(rv, want)

	case have.Kind() == reflect.String && want.Kind() == reflect.String:
		return rv.Convert(want), true
	}

	return reflect.Value{}, false
}

// convertNumber converts between numeric kinds, refusing values the target
// cannot hold exactly.
func convertNumber(rv reflect.Value, want reflect.Type) (reflect.Value, bool) {
	target := reflect.New(want).Elem()

	switch {
	case signed(rv.Kind()):
		n := rv.Int()
		switch {
		case signed(want.Kind()):
			if target.OverflowInt(n) {
				return reflect.Value{}, false
			}
		case unsigned(want.Kind()):
			if n < 0 || target.OverflowUint(uint64(n)) {
				return reflect.Value{}, false
			}
		}

	case unsigned(rv.Kind()):
		n := rv.Uint()
		switch {
		case signed(want.Kind()):
			if n > math.MaxInt64 || target.OverflowInt(int64(n)) {
				return reflect.Value{}, false
			}
		case unsigned(want.Kind()):
			if target.OverflowUint(n) {
				return reflect.Value{}, false
			}
		}

	default:
		f := rv.Float()
		switch {
		case signed(want.Kind()):
			if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 || target.OverflowInt(int64(f)) {
				return reflect.Value{}, false
			}
		case unsigned(want.Kind()):
			if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 || target.OverflowUint(uint64(f)) {
				return reflect.Value{}, false
			}
		default:
			if target.OverflowFloat(f) {
				return reflect.Value{}, false
			}
		}
	}

	return rv.Convert(want), true
}

func signed(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func unsigned(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func numeric(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
