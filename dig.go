package injector

import (
	"reflect"

	"go.uber.org/dig"
)

// FromDig returns a factory that resolves T from a dig container.
// Use it with Delegate to let an existing dig graph provide a type:
//
//	inj.Delegate(injector.NameOf[*sql.DB](), injector.FromDig[*sql.DB](c))
//
// Errors from the container are returned unchanged.
func FromDig[T any](c *dig.Container) func() (T, error) {
	return func() (T, error) {
		var out T
		err := c.Invoke(func(v T) {
			out = v
		})
		return out, err
	}
}

// DelegateToDig registers T for lookup and delegates it to c.
func DelegateToDig[T any](inj *Injector, c *dig.Container) error {
	t := reflect.TypeOf((*T)(nil)).Elem()
	inj.intro.Observe(t)
	return inj.Delegate(TypeName(t), FromDig[T](c))
}
