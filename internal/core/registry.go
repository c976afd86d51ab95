package core

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
)

var (
	registry   = make(map[string]TableDefinition)
	registryMu sync.RWMutex
)

// Register adds a table definition to the registry.
// Panics if a table with the same key or relation is already registered.
func Register(def TableDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Info.Key]; exists {
		panic(fmt.Sprintf("table already registered: %s", def.Info.Key))
	}
	for _, other := range registry {
		if other.Info.Relation == def.Info.Relation {
			panic(fmt.Sprintf("relation already registered: %s", def.Info.Relation))
		}
	}

	if len(def.Info.Columns) == 0 {
		for _, f := range def.FieldSpecs {
			def.Info.Columns = append(def.Info.Columns, f.Name)
		}
	}

	registry[def.Info.Key] = def
}

// Get returns a table definition by key.
// Returns false if not found.
func Get(key string) (TableDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// All returns all registered table definitions in ingestion order.
func All() []TableDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	defs := make([]TableDefinition, 0, len(registry))
	for _, def := range registry {
		defs = append(defs, def)
	}
	slices.SortFunc(defs, func(a, b TableDefinition) int {
		return cmp.Or(cmp.Compare(a.Info.Order, b.Info.Order), cmp.Compare(a.Info.Key, b.Info.Key))
	})
	return defs
}

// Relations returns the relation names of all registered tables, in ingestion order.
func Relations() []string {
	defs := All()
	out := make([]string, len(defs))
	for i, def := range defs {
		out[i] = def.Info.Relation
	}
	return out
}

// TableCount returns the number of registered tables.
func TableCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear empties the registry. Tests only.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]TableDefinition)
}
