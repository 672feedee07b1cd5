package paths

import (
	"fmt"
	"sync/atomic"
)

// Mapping is a single source-to-target path remapping. There is no
// requirement that either path exist on disk at registration time.
type Mapping struct {
	Source NormalizedPath
	Target NormalizedPath
}

// Registry is an ordered, append-only sequence of mappings. It is built
// once during shim initialization and published exactly once via
// Publish; every reader after that sees the same immutable snapshot
// without needing to take a lock, matching the teacher's "read-only
// after publication" treatment of long-lived process state (see, e.g.,
// the teacher's PATH_REGISTRY OnceLock in the original Rust
// implementation, and the write-once initialization pattern used
// throughout mutagen's daemon bootstrap).
//
// Callers register more specific (longer) source prefixes before less
// specific ones; the registry does not sort mappings, and first-match
// wins.
type Registry struct {
	mappings []Mapping
}

// NewRegistry constructs an empty, mutable registry. Call Register to
// populate it, then Handle.Publish to hand it over for
// concurrent, read-only use.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a mapping to the registry. It must only be called
// before Publish; the registry performs no synchronization of its own
// during the build phase because it is expected to be built
// single-threaded during shim initialization, before any hook can fire.
func (r *Registry) Register(source, target NormalizedPath) {
	r.mappings = append(r.mappings, Mapping{Source: source, Target: target})
}

// Len reports the number of registered mappings.
func (r *Registry) Len() int {
	return len(r.mappings)
}

// TryRemap scans the registry's mappings in insertion order and returns
// the first successful splice.
func (r *Registry) TryRemap(path NormalizedPath) (NormalizedPath, bool) {
	for _, mapping := range r.mappings {
		if remapped, ok := Splice(path, mapping.Source, mapping.Target); ok {
			return remapped, true
		}
	}
	return NormalizedPath{}, false
}

// WouldRemap is the predicate form of TryRemap.
func (r *Registry) WouldRemap(path NormalizedPath) bool {
	_, ok := r.TryRemap(path)
	return ok
}

// VirtualRoots returns the source side of every registered mapping, in
// registration order. The enumeration state table uses this to
// synthesize directory entries for a virtualized root (spec.md §4.E):
// the host is told that each configured virtual source exists as a
// subdirectory, even when the physical directory on disk is empty.
func (r *Registry) VirtualRoots() []NormalizedPath {
	roots := make([]NormalizedPath, len(r.mappings))
	for i, m := range r.mappings {
		roots[i] = m.Source
	}
	return roots
}

// handle is a write-once cell holding a published *Registry. Unlike a
// plain global variable, a second Publish is rejected rather than
// silently clobbering the first writer — mirroring the teacher's
// OnceCell/OnceLock publication pattern for process-wide singletons.
type handle struct {
	published atomic.Pointer[Registry]
}

// Handle is the process-wide registry singleton. It starts out
// unpublished; hooks that fire before Publish has run must treat the
// registry as empty (see Snapshot).
var Handle = &handle{}

// Publish installs registry as the process-wide snapshot. The first
// caller wins; subsequent calls are rejected (returning false) without
// error, matching spec.md §4.D's "publishing writer wins" rule.
func (h *handle) Publish(registry *Registry) (accepted bool) {
	return h.published.CompareAndSwap(nil, registry)
}

// Snapshot returns the published registry, or an empty registry if
// Publish has not yet been called. It never returns nil, so callers
// never need a nil check before calling TryRemap.
func (h *handle) Snapshot() *Registry {
	if r := h.published.Load(); r != nil {
		return r
	}
	return emptyRegistry
}

var emptyRegistry = NewRegistry()

// Published reports whether Publish has been called successfully.
func (h *handle) Published() bool {
	return h.published.Load() != nil
}

// String renders a mapping for debug logging.
func (m Mapping) String() string {
	return fmt.Sprintf("%s -> %s", m.Source, m.Target)
}
