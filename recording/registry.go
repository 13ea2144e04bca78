package recording

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownBackend is returned by NewBackend for a name nobody registered.
var ErrUnknownBackend = errors.New("recording: unknown backend")

// BackendFactory creates a fresh backend for one render.
type BackendFactory func() Backend

type registration struct {
	factory  BackendFactory
	features Features
}

var (
	registryMu sync.RWMutex
	registry   = map[string]registration{}
)

// Register makes a backend available to NewBackend under name. Backend
// packages call it from init, so importing them for side effects is
// enough:
//
//	import _ "github.com/gogpu/sg/recording/backends/raster"
//
// The factory is called once here to capture the backend's features.
// Register panics on an empty name, a nil factory or a duplicate name.
func Register(name string, factory BackendFactory) {
	if name == "" || factory == nil {
		panic("recording: Register needs a name and a factory")
	}
	features := factory().Features()

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("recording: backend %q registered twice", name))
	}
	registry[name] = registration{factory: factory, features: features}
}

// Unregister removes name from the registry. Unknown names are ignored.
func Unregister(name string) {
	registryMu.Lock()
	delete(registry, name)
	registryMu.Unlock()
}

func lookup(name string) (registration, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	r, ok := registry[name]
	return r, ok
}

// NewBackend creates the backend registered under name. The error wraps
// ErrUnknownBackend when the backend package was never imported.
func NewBackend(name string) (Backend, error) {
	r, ok := lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w %q (forgotten import?)", ErrUnknownBackend, name)
	}
	return r.factory(), nil
}

// MustBackend is NewBackend for names known to be registered.
func MustBackend(name string) Backend {
	b, err := NewBackend(name)
	if err != nil {
		panic(err)
	}
	return b
}

// BackendFeatures reports what the backend registered under name supports.
func BackendFeatures(name string) (Features, bool) {
	r, ok := lookup(name)
	return r.features, ok
}

// IsRegistered reports whether name has a backend.
func IsRegistered(name string) bool {
	_, ok := lookup(name)
	return ok
}

// Backends returns the registered names in sorted order.
func Backends() []string {
	registryMu.RLock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	registryMu.RUnlock()
	sort.Strings(names)
	return names
}
