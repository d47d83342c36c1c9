package reflection

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

var (
	errType      = reflect.TypeOf((*error)(nil)).Elem()
	durationType = reflect.TypeOf(time.Duration(0))
)

var (
	// ErrNotFunction is returned when a function signature is requested for a non-func value.
	ErrNotFunction = errors.New("target is not a function")

	// ErrNotStruct is returned when a struct signature is requested for a non-struct type.
	ErrNotStruct = errors.New("target is not a struct type")
)

// Param describes a single constructor, function or struct-field parameter.
type Param struct {
	Name       string
	Position   int
	Type       reflect.Type // element type for variadic parameters
	TypeName   string       // empty when the parameter is a plain value
	HasDefault bool
	Default    any
	Variadic   bool
	Field      []int  // struct field index path, nil for function parameters
	Owner      string // struct type that declares the field
}

// Typed reports whether the parameter is resolved by building its declared type.
func (p Param) Typed() bool {
	return p.TypeName != ""
}

// Signature is the analyzed parameter list of an invocable target.
type Signature struct {
	// Name identifies the declaring callable in error messages.
	Name string

	// Func is the function to call. It is invalid for struct targets, which
	// are allocated and populated field by field instead.
	Func reflect.Value

	// Struct is set for field-populated struct targets.
	Struct reflect.Type

	Params   []Param
	Returns  []reflect.Type
	HasError bool // last return value is an error
	Variadic bool
}

// IsStruct reports whether the signature populates struct fields rather than calling a function.
func (s *Signature) IsStruct() bool {
	return s.Struct != nil && !s.Func.IsValid()
}

// FuncOptions carries the metadata Go does not keep at runtime.
type FuncOptions struct {
	// Names holds positional parameter names. Missing names default to argN.
	Names []string

	// Defaults holds default values keyed by parameter name.
	Defaults map[string]any
}

// AnalyzeFunc builds the signature of fn.
func AnalyzeFunc(name string, fn reflect.Value, opts FuncOptions) (*Signature, error) {
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFunction)
	}
	if fn.IsNil() {
		return nil, fmt.Errorf("%s: function is nil", name)
	}

	fnType := fn.Type()
	sig := &Signature{
		Name:     name,
		Func:     fn,
		Params:   make([]Param, fnType.NumIn()),
		Variadic: fnType.IsVariadic(),
	}

	for i := 0; i < fnType.NumIn(); i++ {
		p := Param{
			Name:     fmt.Sprintf("arg%d", i),
			Position: i,
			Type:     fnType.In(i),
		}
		if i < len(opts.Names) && opts.Names[i] != "" {
			p.Name = opts.Names[i]
		}

		if sig.Variadic && i == fnType.NumIn()-1 {
			p.Variadic = true
			p.Type = p.Type.Elem()
		}

		if Injectable(p.Type) {
			p.TypeName = TypeName(p.Type)
		}

		if def, ok := opts.Defaults[p.Name]; ok && !p.Variadic {
			p.HasDefault = true
			p.Default = def
		}

		sig.Params[i] = p
	}

	sig.Returns = make([]reflect.Type, fnType.NumOut())
	for i := 0; i < fnType.NumOut(); i++ {
		sig.Returns[i] = fnType.Out(i)
	}
	if n := len(sig.Returns); n > 0 && sig.Returns[n-1] == errType {
		sig.HasError = true
	}

	return sig, nil
}

// AnalyzeStruct builds a field-population signature for a struct type.
//
// Every exported field is a parameter. Fields of embedded structs are
// promoted. Supported tags:
//
//	inject:"-"              skip the field
//	inject:"name"           parameter name (defaults to the field name with a lower-case first letter)
//	inject:"name,optional"  zero value when nothing else applies
//	default:"value"         default parsed into the field's kind
func AnalyzeStruct(t reflect.Type) (*Signature, error) {
	if t == nil {
		return nil, ErrNotStruct
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%s: %w", TypeName(t), ErrNotStruct)
	}

	sig := &Signature{
		Name:   TypeName(t),
		Struct: t,
	}
	if err := collectFields(sig, t, nil); err != nil {
		return nil, err
	}
	return sig, nil
}

func collectFields(sig *Signature, t reflect.Type, prefix []int) error {
	owner := TypeName(t)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := parseInjectTag(field.Tag.Get("inject"))
		if tag.skip {
			continue
		}

		index := append(append([]int(nil), prefix...), i)

		// Embedded structs contribute their own fields, the way method sets are promoted.
		if field.Anonymous && field.Type.Kind() == reflect.Struct && tag.name == "" {
			if !field.IsExported() {
				// Promoted fields of unexported embedded structs are read-only through reflect.
				continue
			}
			if err := collectFields(sig, field.Type, index); err != nil {
				return err
			}
			continue
		}

		if !field.IsExported() {
			continue
		}

		p := Param{
			Name:     tag.name,
			Position: len(sig.Params),
			Type:     field.Type,
			Field:    index,
			Owner:    owner,
		}
		if p.Name == "" {
			p.Name = lowerFirst(field.Name)
		}
		if Injectable(field.Type) {
			p.TypeName = TypeName(field.Type)
		}

		if raw, ok := field.Tag.Lookup("default"); ok {
			def, err := ParseDefault(raw, field.Type)
			if err != nil {
				return fmt.Errorf("%s.%s: %w", owner, field.Name, err)
			}
			p.HasDefault = true
			p.Default = def
		} else if tag.optional {
			p.HasDefault = true
			p.Default = reflect.Zero(field.Type).Interface()
		}

		sig.Params = append(sig.Params, p)
	}

	return nil
}

type injectTag struct {
	skip     bool
	name     string
	optional bool
}

func parseInjectTag(tag string) injectTag {
	var opts injectTag
	if tag == "-" {
		opts.skip = true
		return opts
	}

	for i, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "optional":
			opts.optional = true
		case i == 0:
			opts.name = part
		}
	}

	return opts
}

// ParseDefault converts a struct tag default into a value of type t.
func ParseDefault(raw string, t reflect.Type) (any, error) {
	v := reflect.New(t).Elem()

	if t == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, err
		}
		v.SetInt(int64(d))
		return v.Interface(), nil
	}

	switch t.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 0, t.Bits())
		if err != nil {
			return nil, err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(raw, 0, t.Bits())
		if err != nil {
			return nil, err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, t.Bits())
		if err != nil {
			return nil, err
		}
		v.SetFloat(f)
	case reflect.Interface:
		if t.NumMethod() != 0 {
			return nil, fmt.Errorf("cannot use default %q for interface %s", raw, t)
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("defaults are not supported for %s", t)
	}

	return v.Interface(), nil
}

// TypeName returns the display name of t. Pointers to named types share the
// name of the type they point to.
func TypeName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer && t.Name() == "" && t.Elem().Name() != "" {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

// Injectable reports whether values of t are built by the engine rather than
// supplied as plain values.
func Injectable(t reflect.Type) bool {
	if t == nil {
		return false
	}

	switch t.Kind() {
	case reflect.Interface:
		return t.NumMethod() > 0 && t != errType
	case reflect.Pointer:
		elem := t.Elem()
		return elem.Kind() == reflect.Struct && elem.Name() != ""
	case reflect.Struct:
		return t.Name() != ""
	}

	return false
}

// IsError reports whether t is the error interface.
func IsError(t reflect.Type) bool {
	return t == errType
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
