package injector

import (
	"errors"
	"fmt"
	"go/token"
	"reflect"
	"strings"
	"sync"

	"github.com/junioryono/injector/internal/reflection"
)

// Param describes one injectable parameter of a constructor, function,
// method or struct field list.
type Param = reflection.Param

// Signature is the analyzed parameter list of an invocable target.
type Signature = reflection.Signature

// Introspector answers the questions the injector asks about types and
// callables. *Types is the default implementation.
type Introspector interface {
	// Lookup returns the type registered or observed under name.
	Lookup(name string) (reflect.Type, bool)

	// Constructor returns the signature used to build values of t.
	Constructor(t reflect.Type) (*Signature, error)

	// Function returns the signature of the function registered under name.
	Function(name string) (*Signature, bool)

	// Method returns the signature of method name on values of type t.
	// The signature's Func takes the receiver as its first argument;
	// Params exclude it.
	Method(t reflect.Type, name string) (*Signature, bool)

	// Constructible reports whether t can be built from outside its package.
	Constructible(t reflect.Type) bool

	// Observe records t so it can later be looked up by name.
	Observe(t reflect.Type)
}

var _ Introspector = (*Types)(nil)

// errNoConstructor is returned for named non-struct types with no registered constructor.
var errNoConstructor = errors.New("no constructor registered")

// FuncOption configures how a registered function or constructor is analyzed.
type FuncOption interface {
	apply(*reflection.FuncOptions)
}

// funcOptionFunc adapts a function to FuncOption.
type funcOptionFunc func(*reflection.FuncOptions)

func (f funcOptionFunc) apply(opts *reflection.FuncOptions) {
	f(opts)
}

// Params names the parameters of a function positionally.
// Unnamed parameters are called arg0, arg1, and so on.
func Params(names ...string) FuncOption {
	return funcOptionFunc(func(opts *reflection.FuncOptions) {
		opts.Names = append([]string(nil), names...)
	})
}

// ParamDefault sets the default value of the named parameter.
func ParamDefault(name string, value any) FuncOption {
	return funcOptionFunc(func(opts *reflection.FuncOptions) {
		if opts.Defaults == nil {
			opts.Defaults = make(map[string]any)
		}
		opts.Defaults[name] = value
	})
}

// ParamDefaults sets several parameter defaults at once.
func ParamDefaults(values map[string]any) FuncOption {
	return funcOptionFunc(func(opts *reflection.FuncOptions) {
		if opts.Defaults == nil {
			opts.Defaults = make(map[string]any, len(values))
		}
		for k, v := range values {
			opts.Defaults[k] = v
		}
	})
}

func newFuncOptions(opts []FuncOption) reflection.FuncOptions {
	var fo reflection.FuncOptions
	for _, opt := range opts {
		if opt != nil {
			opt.apply(&fo)
		}
	}
	return fo
}

// Types is a registry of the types, constructors and functions the injector
// can build by name. Types reached through reflection are observed
// automatically, so only entry points need registering.
//
// A Types value is safe for concurrent use and may be shared by several
// injectors.
type Types struct {
	mu      sync.RWMutex
	types   map[string]reflect.Type
	ctors   map[reflect.Type]*Signature
	funcs   map[string]*Signature
	methods map[string]reflection.FuncOptions
}

// NewTypes creates an empty type registry.
func NewTypes() *Types {
	return &Types{
		types:   make(map[string]reflect.Type),
		ctors:   make(map[reflect.Type]*Signature),
		funcs:   make(map[string]*Signature),
		methods: make(map[string]reflection.FuncOptions),
	}
}

// Register records the types of the given samples.
//
// A sample may be a reflect.Type, a value, a pointer, or a typed nil
// pointer. Interfaces are registered with a nil pointer to the interface:
//
//	types.Register((*Logger)(nil), (*Service)(nil), Config{})
func (r *Types) Register(samples ...any) error {
	for _, sample := range samples {
		t, err := sampleType(sample)
		if err != nil {
			return err
		}
		r.Observe(t)
	}
	return nil
}

// RegisterConstructor records fn as the constructor of its first result type.
// fn must return T or (T, error).
func (r *Types) RegisterConstructor(fn any, opts ...FuncOption) error {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.IsNil() {
		return fmt.Errorf("constructor: %w", reflection.ErrNotFunction)
	}

	ft := fv.Type()
	switch {
	case ft.NumOut() == 1 && !reflection.IsError(ft.Out(0)):
	case ft.NumOut() == 2 && reflection.IsError(ft.Out(1)):
	default:
		return fmt.Errorf("constructor %s must return T or (T, error)", ft)
	}

	out := baseType(ft.Out(0))
	if out.Name() == "" {
		return fmt.Errorf("constructor %s must return a named type", ft)
	}

	sig, err := reflection.AnalyzeFunc(funcName(fv, TypeName(out)), fv, newFuncOptions(opts))
	if err != nil {
		return err
	}

	r.Observe(out)
	r.observeParams(sig)

	r.mu.Lock()
	r.ctors[out] = sig
	r.mu.Unlock()
	return nil
}

// RegisterFunc records fn under name so it can be executed by name.
func (r *Types) RegisterFunc(name string, fn any, opts ...FuncOption) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("function: %w", ErrEmptyName)
	}

	sig, err := reflection.AnalyzeFunc(name, reflect.ValueOf(fn), newFuncOptions(opts))
	if err != nil {
		return err
	}
	r.observeParams(sig)

	r.mu.Lock()
	r.funcs[Canonical(name)] = sig
	r.mu.Unlock()
	return nil
}

// RegisterStatic records fn as the static method "Type::method" of sample's type.
func (r *Types) RegisterStatic(sample any, method string, fn any, opts ...FuncOption) error {
	t, err := sampleType(sample)
	if err != nil {
		return err
	}
	r.Observe(t)
	return r.RegisterFunc(TypeName(t)+"::"+method, fn, opts...)
}

// RegisterMethod records parameter names and defaults for an instance method.
func (r *Types) RegisterMethod(sample any, method string, opts ...FuncOption) error {
	t, err := sampleType(sample)
	if err != nil {
		return err
	}
	r.Observe(t)

	r.mu.Lock()
	r.methods[methodKey(t, method)] = newFuncOptions(opts)
	r.mu.Unlock()
	return nil
}

// Lookup implements Introspector.
func (r *Types) Lookup(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[Canonical(name)]
	return t, ok
}

// Observe implements Introspector.
func (r *Types) Observe(t reflect.Type) {
	if t == nil {
		return
	}
	t = baseType(t)
	if t.Name() == "" {
		return
	}

	key := Canonical(TypeName(t))

	r.mu.RLock()
	_, ok := r.types[key]
	r.mu.RUnlock()
	if ok {
		return
	}

	r.mu.Lock()
	if _, ok := r.types[key]; !ok {
		r.types[key] = t
	}
	r.mu.Unlock()
}

// Constructible implements Introspector.
func (r *Types) Constructible(t reflect.Type) bool {
	t = baseType(t)

	r.mu.RLock()
	_, ok := r.ctors[t]
	r.mu.RUnlock()
	if ok {
		return true
	}

	return t.Kind() == reflect.Struct && token.IsExported(t.Name())
}

// Constructor implements Introspector.
func (r *Types) Constructor(t reflect.Type) (*Signature, error) {
	t = baseType(t)

	r.mu.RLock()
	sig, ok := r.ctors[t]
	r.mu.RUnlock()
	if ok {
		return sig, nil
	}

	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%s: %w", TypeName(t), errNoConstructor)
	}

	sig, err := reflection.AnalyzeStruct(t)
	if err != nil {
		return nil, err
	}
	r.observeParams(sig)
	return sig, nil
}

// Function implements Introspector.
func (r *Types) Function(name string) (*Signature, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sig, ok := r.funcs[Canonical(name)]
	return sig, ok
}

// Method implements Introspector.
func (r *Types) Method(t reflect.Type, name string) (*Signature, bool) {
	if t == nil || t.Kind() == reflect.Interface {
		return nil, false
	}

	m, ok := findMethod(t, name)
	if !ok {
		return nil, false
	}

	r.mu.RLock()
	opts := r.methods[methodKey(t, m.Name)]
	r.mu.RUnlock()

	// Shift names past the receiver; unnamed parameters count from arg0.
	names := make([]string, m.Type.NumIn())
	names[0] = "receiver"
	for i := 1; i < len(names); i++ {
		names[i] = fmt.Sprintf("arg%d", i-1)
		if i-1 < len(opts.Names) && opts.Names[i-1] != "" {
			names[i] = opts.Names[i-1]
		}
	}
	shifted := reflection.FuncOptions{
		Names:    names,
		Defaults: opts.Defaults,
	}

	sig, err := reflection.AnalyzeFunc(TypeName(t)+"::"+m.Name, m.Func, shifted)
	if err != nil {
		return nil, false
	}

	params := sig.Params[1:]
	for i := range params {
		params[i].Position = i
	}
	sig.Params = params
	r.observeParams(sig)
	return sig, true
}

func (r *Types) observeParams(sig *Signature) {
	for _, p := range sig.Params {
		if p.Typed() {
			r.Observe(p.Type)
		}
	}
}

// findMethod finds an exported method of t by case-insensitive name,
// looking at the pointer method set when t is a struct.
func findMethod(t reflect.Type, name string) (reflect.Method, bool) {
	if t.Kind() == reflect.Struct {
		t = reflect.PointerTo(t)
	}
	if m, ok := t.MethodByName(name); ok {
		return m, true
	}
	for i := 0; i < t.NumMethod(); i++ {
		if m := t.Method(i); strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return reflect.Method{}, false
}

func methodKey(t reflect.Type, method string) string {
	return Canonical(TypeName(t) + "::" + method)
}

// baseType strips pointers to named types.
func baseType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer && t.Name() == "" && t.Elem().Name() != "" {
		t = t.Elem()
	}
	return t
}

// sampleType resolves a registration sample to the type it stands for.
func sampleType(sample any) (reflect.Type, error) {
	if t, ok := sample.(reflect.Type); ok {
		if t == nil {
			return nil, errors.New("type sample cannot be nil")
		}
		if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Interface {
			return t.Elem(), nil
		}
		return baseType(t), nil
	}

	t := reflect.TypeOf(sample)
	if t == nil {
		return nil, errors.New("type sample cannot be nil")
	}
	if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Interface {
		return t.Elem(), nil
	}
	return baseType(t), nil
}
