// Package keygraph implements the scoped, lazily evaluated binding graph:
// keys, binding holders, scopes built by layering configurations over a
// project, modifier ordering, evaluation caching, and a listener protocol
// for tracing evaluation. It is the engine that the query and CLI layers
// drive to produce a value for "project/config:key".
package keygraph

import "fmt"

// Key identifies a named, typed setting or task. Keys are comparable by
// name and own no state; the same Key value can be bound differently in
// every holder.
type Key struct {
	id          string
	Name        string
	Description string
	hasDefault  bool
	defaultVal  any
	Pretty      func(any) string
	InputKeys   []string
}

// NewKey creates a key with no default value; evaluation fails with
// ErrKeyNotAssigned unless some holder in scope binds it.
func NewKey(name, description string) *Key {
	return &Key{id: name, Name: name, Description: description}
}

// NewKeyWithDefault creates a key whose default is used when no holder
// in scope binds it.
func NewKeyWithDefault(name, description string, def any) *Key {
	return &Key{id: name, Name: name, Description: description, hasDefault: true, defaultVal: def}
}

func (k *Key) String() string { return k.Name }

// ID is the stable identity used to index bindings, independent of any
// display changes to Name.
func (k *Key) ID() string { return k.id }

// HasDefault reports whether Default is meaningful.
func (k *Key) HasDefault() bool { return k.hasDefault }

// Default returns the key's declared default value.
func (k *Key) Default() any { return k.defaultVal }

// TypedKey adds compile-time type safety over Key for a known value
// type V, matching the K⟨V⟩ notation in the data model.
type TypedKey[V any] struct {
	*Key
}

// NewTypedKey creates a TypedKey with no default.
func NewTypedKey[V any](name, description string) TypedKey[V] {
	return TypedKey[V]{Key: NewKey(name, description)}
}

// NewTypedKeyWithDefault creates a TypedKey with a default value.
func NewTypedKeyWithDefault[V any](name, description string, def V) TypedKey[V] {
	return TypedKey[V]{Key: NewKeyWithDefault(name, description, def)}
}

// Cast narrows an untyped evaluation result to V, matching the
// TypedKey's declared value type.
func (k TypedKey[V]) Cast(v any) (V, error) {
	typed, ok := v.(V)
	if !ok {
		var zero V
		return zero, fmt.Errorf("key %s: value %v is not of the expected type", k.Name, v)
	}
	return typed, nil
}
