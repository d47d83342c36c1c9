package injector

import (
	"sync/atomic"
)

// defaultInjector holds the default Injector.
var defaultInjector atomic.Pointer[Injector]

// SetDefault sets the Injector returned by Default.
// This is similar to slog.SetDefault. Pass nil to remove the default injector.
func SetDefault(inj *Injector) {
	defaultInjector.Store(inj)
}

// Default returns the current default Injector.
// Returns nil if no default injector has been set.
func Default() *Injector {
	return defaultInjector.Load()
}
