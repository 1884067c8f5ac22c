// Package di provides a minimal service container with typed tokens.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry is the read side of the container.
type ServiceRegistry interface {
	// Get returns the service registered under name, or panics if absent.
	Get(name string) any
	// Lookup returns the service and whether it was registered.
	Lookup(name string) (any, bool)
}

// Container is the full container: registration plus lookup.
type Container interface {
	ServiceRegistry
	// Register stores a ready value under name.
	Register(name string, value any)
	// RegisterFactory stores a lazily-evaluated constructor under name.
	// The factory runs once on first Get; its result is cached.
	RegisterFactory(name string, factory func(ServiceRegistry) any)
}

type container struct {
	mu        sync.RWMutex
	values    map[string]any
	factories map[string]func(ServiceRegistry) any
}

// NewContainer creates an empty container.
func NewContainer() Container {
	return &container{
		values:    make(map[string]any),
		factories: make(map[string]func(ServiceRegistry) any),
	}
}

func (c *container) Register(name string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[name] = value
}

func (c *container) RegisterFactory(name string, factory func(ServiceRegistry) any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[name] = factory
}

func (c *container) Get(name string) any {
	v, ok := c.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("di: service %q not registered", name))
	}
	return v
}

func (c *container) Lookup(name string) (any, bool) {
	c.mu.RLock()
	v, ok := c.values[name]
	factory := c.factories[name]
	c.mu.RUnlock()

	if ok {
		return v, true
	}
	if factory == nil {
		return nil, false
	}

	// Build outside the lock so factories can resolve their own deps.
	built := factory(c)

	c.mu.Lock()
	// Another goroutine may have built it meanwhile; first write wins.
	if existing, ok := c.values[name]; ok {
		c.mu.Unlock()
		return existing, true
	}
	c.values[name] = built
	delete(c.factories, name)
	c.mu.Unlock()

	return built, true
}

// Token is a typed service key. The string form keys the container, the
// type parameter keeps Get/Register calls type-safe.
type Token[T any] struct {
	name string
}

// NewToken creates a typed token with a unique name.
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

// String returns the token's container key.
func (t Token[T]) String() string {
	return t.name
}

// RegisterToken registers a factory under a typed token.
func RegisterToken[T any](c Container, token Token[T], factory func(ServiceRegistry) T) {
	c.RegisterFactory(token.name, func(sr ServiceRegistry) any {
		return factory(sr)
	})
}

// GetToken resolves a typed token from the registry.
func GetToken[T any](sr ServiceRegistry, token Token[T]) T {
	return sr.Get(token.name).(T)
}
