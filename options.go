package injector

import (
	"go.uber.org/zap"
)

// Option configures an Injector.
type Option interface {
	apply(*options)
}

// options holds injector configuration.
type options struct {
	logger       *zap.Logger
	cache        Cache
	introspector Introspector
	types        *Types
}

// optionFunc adapts a function to Option.
type optionFunc func(*options)

func (f optionFunc) apply(opts *options) {
	f(opts)
}

// WithLogger sets the logger that receives binding and resolution events.
// Events are logged at debug level. The default logger discards everything.
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(opts *options) {
		opts.logger = logger
	})
}

// WithCache sets the store for introspection results.
func WithCache(cache Cache) Option {
	return optionFunc(func(opts *options) {
		opts.cache = cache
	})
}

// WithIntrospector replaces the type registry with a custom introspector.
func WithIntrospector(introspector Introspector) Option {
	return optionFunc(func(opts *options) {
		opts.introspector = introspector
		opts.types = nil
	})
}

// WithTypes uses an existing type registry, typically one shared between
// several injectors.
func WithTypes(types *Types) Option {
	return optionFunc(func(opts *options) {
		opts.types = types
		opts.introspector = types
	})
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(o)
		}
	}

	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.cache == nil {
		o.cache = NewMemoryCache()
	}
	if o.introspector == nil {
		o.types = NewTypes()
		o.introspector = o.types
	}

	return o
}
