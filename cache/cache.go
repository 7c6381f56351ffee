// Package cache provides stores for loaded translation namespaces.
//
// Keys are opaque strings built by the caller; the backend composes them from
// a language and a namespace so that all namespaces of one language share a
// common prefix.
package cache

// Store is the interface for namespace caching.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get retrieves a cached namespace. Returns nil and false if not found or expired.
	Get(key string) (map[string]any, bool)

	// Set stores a namespace, replacing any previous entry and resetting its age.
	Set(key string, value map[string]any) error

	// Delete removes a single entry.
	Delete(key string)

	// DeletePrefix removes every entry whose key starts with prefix.
	DeletePrefix(prefix string)

	// Clear removes all entries.
	Clear()
}
