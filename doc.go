// Package injector provides an auto-wiring dependency injector for Go.
// Given a type or a callable, it reflects on the declared parameters and
// builds everything they need, recursively, so bootstrap code does not have
// to wire object graphs by hand.
//
// # Overview
//
// There is no service registration step. The injector builds:
//   - structs, by populating their exported fields
//   - types with a registered constructor, by calling it
//   - callables, by provisioning their parameters (see Execute)
//
// Bindings adjust how names are resolved:
//   - Alias maps an interface or type to the implementation to build
//   - Share keeps one instance of a type for every later request
//   - Delegate hands construction of a type to a factory
//   - Define supplies constructor arguments for one type
//   - DefineParam supplies a value for every parameter with a given name
//   - Prepare runs a hook on each instance after it is built
//
// # Basic Usage
//
//	type Mailer interface{ Send(to, body string) error }
//
//	type SMTPMailer struct {
//	    Host string
//	    Port int `default:"25"`
//	}
//
//	type Signup struct {
//	    Mailer Mailer
//	}
//
//	inj := injector.New()
//	inj.Register((*Mailer)(nil), (*SMTPMailer)(nil), (*Signup)(nil))
//	inj.Alias(injector.NameOf[Mailer](), injector.NameOf[*SMTPMailer]())
//	inj.DefineParam("host", "mail.example.com")
//
//	signup, err := injector.Make[*Signup](inj, nil)
//
// # Names
//
// Types are identified by name: the package path and type name, as
// returned by NameOf and TypeName. Pointers to named types share the name of
// the type they point to. Names compare case-insensitively.
//
// Go cannot find a type from its name, so types that are only ever requested
// by name must be registered first (Injector.Register or Types.Register).
// Types reached through reflection are recorded automatically.
//
// # Parameters
//
// A parameter whose type is a struct, a pointer to a struct, or an interface
// is built by the injector. Any other parameter is a plain value and must be
// supplied by an argument, a definition, DefineParam or a default.
//
// Struct fields take their parameter name from the field name with a
// lower-case first letter. Tags adjust this:
//
//	type Server struct {
//	    Addr    string        `inject:"listen"`
//	    Timeout time.Duration `default:"5s"`
//	    Cache   *Cache        `inject:",optional"`
//	    secret  string        // unexported fields are ignored
//	    Debug   bool          `inject:"-"`
//	}
//
// Function parameter names are not available at runtime. Name them with
// Params when registering a constructor or function, or with Named when
// passing a closure.
//
// # Arguments
//
// Args maps parameter names to arguments. A plain key names a type to build,
// a key prefixed with ':' passes a raw value, and a key prefixed with '+'
// passes a callable whose result becomes the argument:
//
//	inj.Make(injector.NameOf[*Server](), injector.Args{
//	    ":listen": ":8080",
//	    "cache":   injector.NameOf[*RedisCache](),
//	})
//
// # Errors
//
// Configuration mistakes are reported by the configuration call as a
// *ConfigError. Resolution failures implement InjectionError and carry the
// chain of names being built. Errors returned by constructors, factories and
// hooks are passed through unchanged.
//
//	_, err := inj.Make("example.com/app.Service", nil)
//	var cycle *injector.CyclicDependencyError
//	if errors.As(err, &cycle) {
//	    log.Printf("cycle: %v", cycle.Chain)
//	}
//
// # Contexts
//
// SeparateContext returns an injector with its own bindings that shares the
// type registry, metadata cache and logger of its parent.
package injector
