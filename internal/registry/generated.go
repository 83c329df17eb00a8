// Package registry tracks matcher types generated ahead of time. Generated
// files register their constructors from init functions.
package registry

import (
	"fmt"
	"reflect"

	"github.com/toyz/smog/internal/contract"
	"github.com/toyz/smog/internal/utils"
)

// Constructor builds a fresh instance of a generated matcher.
type Constructor func() any

// Entry is one registered generated type.
type Entry struct {
	Contract reflect.Type
	New      Constructor
}

// Generated maps contract keys to constructors.
type Generated struct {
	base *utils.BaseRegistry[string, Entry]
}

// Default is the process-wide registry used by generated code.
var Default = New()

// New returns an empty registry.
func New() *Generated {
	base := utils.NewBaseRegistry[string, Entry]("generated matcher")
	base.SetValidator(utils.ChainValidators(
		utils.NotEmptyKeyValidator[Entry]("contract key"),
		utils.NoDuplicateValidator[string, Entry]("contract"),
		func(key string, e Entry, _ map[string]Entry) error {
			if e.New == nil {
				return fmt.Errorf("contract %s: constructor is nil", key)
			}
			return nil
		},
	))
	return &Generated{base: base}
}

// ContractName returns the canonical name of a contract type.
func ContractName(t reflect.Type) string {
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// Register records the constructor for the contract interface t.
func (g *Generated) Register(t reflect.Type, ctor Constructor) error {
	if t == nil || t.Kind() != reflect.Interface {
		return fmt.Errorf("generated matchers must be registered under their contract interface, got %v", t)
	}
	return g.base.Register(contract.Key(ContractName(t)), Entry{Contract: t, New: ctor})
}

// Lookup returns the entry registered for key.
func (g *Generated) Lookup(key string) (Entry, bool) {
	return g.base.Get(key)
}

// Keys lists registered keys in order.
func (g *Generated) Keys() []string {
	return g.base.List()
}
