// Package tables registers the five Marvel relations with the core registry.
// Blank-import it wherever core.All must return them.
package tables
