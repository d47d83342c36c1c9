package injector

import (
	"reflect"
	"runtime"
	"strings"

	"github.com/junioryono/injector/internal/reflection"
)

// Canonical returns the registry key for a type or parameter name.
// Names compare case-insensitively and ignore a leading '*' or '\'.
func Canonical(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimLeft(name, `*\`)
	return strings.ToLower(name)
}

// TypeName returns the name the injector uses for t.
// Pointers to named types share the name of the type they point to.
func TypeName(t reflect.Type) string {
	return reflection.TypeName(t)
}

// NameOf returns the name the injector uses for T.
//
//	injector.NameOf[*app.Service]() == "example.com/app.Service"
//	injector.NameOf[app.Logger]()   == "example.com/app.Logger"
func NameOf[T any]() string {
	return TypeName(reflect.TypeOf((*T)(nil)).Elem())
}

// typeOfValue returns the dynamic type of v, or nil.
func typeOfValue(v any) reflect.Type {
	if v == nil {
		return nil
	}
	return reflect.TypeOf(v)
}

// kindOf renders the kind of a produced value for error messages.
func kindOf(v any) string {
	if v == nil {
		return "nil"
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return "nil"
		}
	}
	return rv.Kind().String()
}

// isObject reports whether v is a usable object: a non-nil pointer to a struct,
// a struct, or any other non-nil reference whose dynamic type has methods.
func isObject(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return false
		}
		return rv.Elem().Kind() == reflect.Struct || rv.Type().NumMethod() > 0
	case reflect.Struct:
		return true
	case reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		if rv.IsNil() {
			return false
		}
		return rv.Type().Name() != "" && rv.Type().NumMethod() > 0
	}
	return rv.Type().Name() != "" && rv.Type().NumMethod() > 0
}

// funcName returns the fully qualified name of a function value.
func funcName(fn reflect.Value, fallback string) string {
	if fn.Kind() == reflect.Func && !fn.IsNil() {
		if f := runtime.FuncForPC(fn.Pointer()); f != nil {
			return f.Name()
		}
	}
	return fallback
}
