// Package store provides the shared durable key-value store that holds every
// cache record and per-agent state the coordination layer owns. Values are
// JSON-encoded; keys are slash-prefixed by record family (safety/, access/,
// survey/, profit/, transit/, explore/, assign/, rr/, meta/).
//
// Three backends: in-memory for tests and ephemeral runs, SQLite for the
// default single-file durable store, and Badger for write-heavy setups.
package store

import "fmt"

// Store is the injected persistence abstraction. Get reports found=false for
// a missing key without error; decode failures and backend failures surface
// as errors and are treated by callers as cache misses.
type Store interface {
	Get(key string, into any) (bool, error)
	Set(key string, v any) error
	Delete(key string) error
	Keys(prefix string) ([]string, error)
	Close() error
}

// Backend names accepted by Open and the run command.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Open creates a store for the named backend. path is ignored for memory and
// names a file (sqlite) or directory (badger) otherwise.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendMemory, "":
		return NewMemory(), nil
	case BackendSQLite:
		return OpenSQLite(path)
	case BackendBadger:
		return OpenBadger(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
