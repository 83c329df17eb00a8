package utils

import (
	"fmt"
	"sort"
	"sync"
)

// RegistryValidator is a function that validates a key-value pair before registration
type RegistryValidator[K comparable, V any] func(key K, value V, existing map[K]V) error

// BaseRegistry provides a generic, thread-safe registry implementation
// with built-in validation support that can be extended by specific registry types
type BaseRegistry[K comparable, V any] struct {
	mu           sync.RWMutex
	items        map[K]V
	validator    RegistryValidator[K, V]
	registryName string
}

// NewBaseRegistry creates a new base registry with the specified configuration
func NewBaseRegistry[K comparable, V any](registryName string) *BaseRegistry[K, V] {
	return &BaseRegistry[K, V]{
		items:        make(map[K]V),
		registryName: registryName,
	}
}

// SetValidator sets the validation function for this registry
func (r *BaseRegistry[K, V]) SetValidator(validator RegistryValidator[K, V]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validator = validator
}

// Register adds an item to the registry with validation
func (r *BaseRegistry[K, V]) Register(key K, value V) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.validator != nil {
		if err := r.validator(key, value, r.items); err != nil {
			return fmt.Errorf("%s registry: %w", r.registryName, err)
		}
	}

	r.items[key] = value
	return nil
}

// Get retrieves an item from the registry
func (r *BaseRegistry[K, V]) Get(key K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, exists := r.items[key]
	return value, exists
}

// List returns all keys in the registry, sorted by their formatted value
func (r *BaseRegistry[K, V]) List() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]K, 0, len(r.items))
	for key := range r.items {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
	})
	return keys
}

// NotEmptyKeyValidator validates that a string key is not empty
func NotEmptyKeyValidator[V any](keyDesc string) RegistryValidator[string, V] {
	return func(key string, value V, existing map[string]V) error {
		if key == "" {
			return fmt.Errorf("%s cannot be empty", keyDesc)
		}
		return nil
	}
}

// NoDuplicateValidator validates that a key doesn't already exist
func NoDuplicateValidator[K comparable, V any](keyDesc string) RegistryValidator[K, V] {
	return func(key K, value V, existing map[K]V) error {
		if _, exists := existing[key]; exists {
			return fmt.Errorf("%s '%v' is already registered", keyDesc, key)
		}
		return nil
	}
}

// ChainValidators combines multiple validators into one
func ChainValidators[K comparable, V any](validators ...RegistryValidator[K, V]) RegistryValidator[K, V] {
	return func(key K, value V, existing map[K]V) error {
		for _, validator := range validators {
			if validator != nil {
				if err := validator(key, value, existing); err != nil {
					return err
				}
			}
		}
		return nil
	}
}
