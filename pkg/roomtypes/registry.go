// Package roomtypes maintains the registry of room type tags and their
// search-related capabilities. Hosts register additional types at startup;
// the spotlight core only reads the registry.
package roomtypes

import (
	"sort"
	"sync"

	"github.com/harborchat/spotlight/pkg/model"
)

// Definition describes one registered room type.
type Definition struct {
	// Tag is the single-character type tag stored on rooms.
	Tag model.RoomKind
	// Name is a human-readable label for diagnostics.
	Name string
	// IncludeInRoomSearch marks the type as enumerable by room search.
	IncludeInRoomSearch bool
}

// Registry holds room type definitions keyed by tag.
type Registry struct {
	mu   sync.RWMutex
	defs map[model.RoomKind]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[model.RoomKind]Definition),
	}
}

// DefaultRegistry returns a registry pre-populated with the built-in room
// types. Channels and private groups are searchable; direct and restricted
// rooms are reachable only through user search.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Definition{Tag: model.RoomKindDirect, Name: "direct"})
	r.Register(Definition{Tag: model.RoomKindRestricted, Name: "restricted"})
	r.Register(Definition{Tag: model.RoomKindChannel, Name: "channel", IncludeInRoomSearch: true})
	r.Register(Definition{Tag: model.RoomKindPrivate, Name: "private", IncludeInRoomSearch: true})
	return r
}

// Register adds or replaces a room type definition.
func (r *Registry) Register(def Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[def.Tag] = def
}

// Get returns the definition for a tag, if registered.
func (r *Registry) Get(tag model.RoomKind) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[tag]
	return def, ok
}

// SearchableTags returns the tags flagged as includable in room search,
// sorted for deterministic query construction.
func (r *Registry) SearchableTags() []model.RoomKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]model.RoomKind, 0, len(r.defs))
	for tag, def := range r.defs {
		if def.IncludeInRoomSearch {
			tags = append(tags, tag)
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}
