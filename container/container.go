package container

import (
	"context"
	"fmt"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// Factory constructs a service instance. It receives the container so
// factories can resolve their own dependencies.
type Factory func(ctx context.Context, c *Container) (any, error)

// ServiceNotFoundError reports a resolve for a name nothing registered.
type ServiceNotFoundError struct {
	Name string
}

func (e *ServiceNotFoundError) Error() string {
	return "service not registered: " + e.Name
}

// definition moves from registered to instantiated on the first successful
// singleton resolve. Transient definitions stay factories forever.
type definition struct {
	factory   Factory
	singleton bool

	// mu serializes the first resolve per name so concurrent resolves of one
	// singleton cannot construct two instances, even when the factory
	// suspends on I/O.
	mu       sync.Mutex
	resolved bool
	instance any
}

// Container is a minimal service registry with singleton and transient
// lifetimes. Construct one at process start and pass it by reference; the
// package exports no shared instance.
type Container struct {
	defs *xsync.MapOf[string, *definition]
}

// New creates an empty container.
func New() *Container {
	return &Container{defs: xsync.NewMapOf[string, *definition]()}
}

// RegisterOption customizes a registration.
type RegisterOption func(*definition)

// Singleton caches the first successful factory result for the container's
// lifetime.
func Singleton() RegisterOption {
	return func(d *definition) { d.singleton = true }
}

// Register binds name to factory. Registering an existing name replaces the
// previous definition, dropping any cached singleton instance.
func (c *Container) Register(name string, factory Factory, opts ...RegisterOption) {
	def := &definition{factory: factory}
	for _, opt := range opts {
		opt(def)
	}
	c.defs.Store(name, def)
}

// Has reports whether name is registered.
func (c *Container) Has(name string) bool {
	_, ok := c.defs.Load(name)
	return ok
}

// Resolve returns the instance bound to name. Singletons are constructed at
// most once; a factory error is not cached, so the next resolve retries.
// Transient definitions invoke the factory on every call.
func (c *Container) Resolve(ctx context.Context, name string) (any, error) {
	def, ok := c.defs.Load(name)
	if !ok {
		return nil, &ServiceNotFoundError{Name: name}
	}

	if !def.singleton {
		return def.factory(ctx, c)
	}

	def.mu.Lock()
	defer def.mu.Unlock()

	if def.resolved {
		return def.instance, nil
	}

	instance, err := def.factory(ctx, c)
	if err != nil {
		return nil, err
	}
	def.instance = instance
	def.resolved = true
	return instance, nil
}

// Resolve is the type-safe counterpart of Container.Resolve. Since Go methods
// cannot have type parameters, this is a package-level function.
func Resolve[T any](ctx context.Context, c *Container, name string) (T, error) {
	var zero T

	instance, err := c.Resolve(ctx, name)
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("service %q has type %T, not %T", name, instance, zero)
	}
	return typed, nil
}
