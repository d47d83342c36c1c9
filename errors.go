package injector

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ========================================
// Core Error Values (Sentinel Errors)
// ========================================
// Sentinels are wrapped by the typed errors below and matched with errors.Is.

var (
	// Configuration errors.
	ErrNonEmptyStringAlias = errors.New("invalid alias: non-empty string required at arguments 1 and 2")
	ErrSharedCannotAlias   = errors.New("type is currently shared and cannot be aliased")
	ErrAliasedCannotShare  = errors.New("type is currently aliased and cannot be shared")
	ErrDoubleShare         = errors.New("a different instance is already shared for this type")
	ErrShareArgument       = errors.New("share requires a type name or object instance")
	ErrDelegateArgument    = errors.New("delegate requires a valid callable or executable type::method string")
	ErrPrepareArgument     = errors.New("prepare requires a valid callable or executable type::method string")
	ErrEmptyName           = errors.New("name cannot be empty")

	// Injection errors.
	ErrNeedsDefinition      = errors.New("injection definition required")
	ErrUndefinedParam       = errors.New("no definition available to provision typeless parameter")
	ErrNonPublicConstructor = errors.New("cannot instantiate non-public constructor")
	ErrCyclicDependency     = errors.New("detected a cyclic dependency")
	ErrInvokable            = errors.New("invalid invokable: callable or provisional string required")
	ErrMakingFailed         = errors.New("making did not result in an object")
	ErrParameterType        = errors.New("argument is not assignable to parameter")

	// Environment errors.
	ErrTypeNotFound = errors.New("type does not exist")
)

var (
	_ error = (*ConfigError)(nil)
	_ error = (*InstantiationError)(nil)

	_ InjectionError = (*NeedsDefinitionError)(nil)
	_ InjectionError = (*UndefinedParameterError)(nil)
	_ InjectionError = (*NonPublicConstructorError)(nil)
	_ InjectionError = (*CyclicDependencyError)(nil)
	_ InjectionError = (*InvokableError)(nil)
	_ InjectionError = (*MakingFailedError)(nil)
	_ InjectionError = (*ParameterTypeError)(nil)
)

// ========================================
// Configuration Errors
// ========================================

// ConfigError reports malformed or conflicting binding configuration.
// It is always returned by the configuration call that caused it.
type ConfigError struct {
	Op       string // "alias", "share", "delegate", "prepare", "define", "defineParam"
	Name     string
	Argument string // offending argument, rendered for humans
	Cause    error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("injector.")
	b.WriteString(e.Op)
	b.WriteString(": ")

	switch {
	case errors.Is(e.Cause, ErrSharedCannotAlias):
		fmt.Fprintf(&b, "cannot alias type %s to %s because it is currently shared", e.Name, e.Argument)
	case errors.Is(e.Cause, ErrAliasedCannotShare):
		fmt.Fprintf(&b, "cannot share type %s because it is currently aliased to %s", e.Name, e.Argument)
	case errors.Is(e.Cause, ErrDoubleShare):
		fmt.Fprintf(&b, "cannot share a second instance of %s: %v", e.Name, e.Cause)
	case errors.Is(e.Cause, ErrDelegateArgument), errors.Is(e.Cause, ErrPrepareArgument):
		fmt.Fprintf(&b, "%v at argument 2 but received '%s'", e.Cause, e.Argument)
	case errors.Is(e.Cause, ErrShareArgument):
		fmt.Fprintf(&b, "%v at argument 1; %s specified", e.Cause, e.Argument)
	default:
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// ========================================
// Injection Errors
// ========================================

// InjectionError is implemented by every error that reports a gap in the
// binding configuration for a make or execute call.
type InjectionError interface {
	error

	// Code returns the sentinel identifying the failure kind.
	Code() error

	// DependencyChain returns the canonical names being built when the
	// failure occurred, outermost first.
	DependencyChain() []string
}

// NeedsDefinitionError reports an abstract type with no alias or delegate.
type NeedsDefinitionError struct {
	Type  string
	Chain []string
}

func (e *NeedsDefinitionError) Error() string {
	return fmt.Sprintf("%v for interface %s", ErrNeedsDefinition, e.Type)
}

func (e *NeedsDefinitionError) Code() error               { return ErrNeedsDefinition }
func (e *NeedsDefinitionError) DependencyChain() []string { return e.Chain }
func (e *NeedsDefinitionError) Unwrap() error             { return ErrNeedsDefinition }

// UndefinedParameterError reports a value parameter with no override,
// definition or default.
type UndefinedParameterError struct {
	Param      string
	Position   int
	Declarer   string // the constructor or function being provisioned
	DeclaredIn string // the type declaring the parameter, when different from Declarer
	Chain      []string
}

func (e *UndefinedParameterError) Error() string {
	declared := e.DeclaredIn
	if declared == "" {
		declared = e.Declarer
	}
	return fmt.Sprintf("%v %s at position %d in %s declared in %s",
		ErrUndefinedParam, e.Param, e.Position, e.Declarer, declared)
}

func (e *UndefinedParameterError) Code() error               { return ErrUndefinedParam }
func (e *UndefinedParameterError) DependencyChain() []string { return e.Chain }
func (e *UndefinedParameterError) Unwrap() error             { return ErrUndefinedParam }

// NonPublicConstructorError reports a type that exists but cannot be built
// from outside its package.
type NonPublicConstructorError struct {
	Type  string
	Chain []string
}

func (e *NonPublicConstructorError) Error() string {
	return fmt.Sprintf("%v in type %s", ErrNonPublicConstructor, e.Type)
}

func (e *NonPublicConstructorError) Code() error               { return ErrNonPublicConstructor }
func (e *NonPublicConstructorError) DependencyChain() []string { return e.Chain }
func (e *NonPublicConstructorError) Unwrap() error             { return ErrNonPublicConstructor }

// CyclicDependencyError reports a re-entrant build of a name.
// Chain runs from the outermost request to the repeated name; Cycle holds only
// the looping part, with the repeated name at both ends.
type CyclicDependencyError struct {
	Name  string
	Chain []string
	Cycle []string
}

func (e *CyclicDependencyError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v while provisioning %s", ErrCyclicDependency, e.Name)
	if len(e.Chain) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Chain, " -> "))
	}
	return b.String()
}

func (e *CyclicDependencyError) Code() error               { return ErrCyclicDependency }
func (e *CyclicDependencyError) DependencyChain() []string { return e.Chain }
func (e *CyclicDependencyError) Unwrap() error             { return ErrCyclicDependency }

// InvokableError reports a target that cannot be normalized into an Executable.
type InvokableError struct {
	Target string
	Reason string
	Chain  []string
}

func (e *InvokableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%v: %s: %s", ErrInvokable, e.Target, e.Reason)
	}
	return fmt.Sprintf("%v: %s", ErrInvokable, e.Target)
}

func (e *InvokableError) Code() error               { return ErrInvokable }
func (e *InvokableError) DependencyChain() []string { return e.Chain }
func (e *InvokableError) Unwrap() error             { return ErrInvokable }

// MakingFailedError reports a delegate whose result is not a usable object.
type MakingFailedError struct {
	Name   string
	Result string // kind of the value actually produced
	Chain  []string
}

func (e *MakingFailedError) Error() string {
	return fmt.Sprintf("making %s did not result in an object, instead result is of type '%s'", e.Name, e.Result)
}

func (e *MakingFailedError) Code() error               { return ErrMakingFailed }
func (e *MakingFailedError) DependencyChain() []string { return e.Chain }
func (e *MakingFailedError) Unwrap() error             { return ErrMakingFailed }

// ParameterTypeError reports a supplied argument that does not fit its parameter.
type ParameterTypeError struct {
	Param    string
	Position int
	Declarer string
	Expected reflect.Type
	Actual   reflect.Type
	Chain    []string
}

func (e *ParameterTypeError) Error() string {
	return fmt.Sprintf("%v: %s at position %d in %s expects %s, got %s",
		ErrParameterType, e.Param, e.Position, e.Declarer, formatType(e.Expected), formatType(e.Actual))
}

func (e *ParameterTypeError) Code() error               { return ErrParameterType }
func (e *ParameterTypeError) DependencyChain() []string { return e.Chain }
func (e *ParameterTypeError) Unwrap() error             { return ErrParameterType }

// ========================================
// Environment Errors
// ========================================

// InstantiationError reports a type name the introspector cannot load.
// It reflects an environment problem rather than a configuration gap.
type InstantiationError struct {
	Name  string
	Cause error
}

func (e *InstantiationError) Error() string {
	return fmt.Sprintf("could not make %s: %v", e.Name, e.Cause)
}

func (e *InstantiationError) Unwrap() error {
	return e.Cause
}

// ========================================
// Helpers
// ========================================

// IsInjectionError reports whether err is, or wraps, an InjectionError.
func IsInjectionError(err error) bool {
	var ie InjectionError
	return errors.As(err, &ie)
}

// IsCyclicDependency reports whether err is, or wraps, a CyclicDependencyError.
func IsCyclicDependency(err error) bool {
	return errors.Is(err, ErrCyclicDependency)
}

// IsConfigError reports whether err is, or wraps, a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// DependencyChain extracts the dependency chain from err, if it carries one.
func DependencyChain(err error) ([]string, bool) {
	var ie InjectionError
	if errors.As(err, &ie) {
		return ie.DependencyChain(), true
	}
	return nil, false
}

// formatType formats a reflect.Type for error messages.
func formatType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
