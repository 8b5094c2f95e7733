package roomtypes

import (
	"testing"

	"github.com/harborchat/spotlight/pkg/model"
)

func TestDefaultRegistry_SearchableTags(t *testing.T) {
	r := DefaultRegistry()

	tags := r.SearchableTags()
	if len(tags) != 2 {
		t.Fatalf("SearchableTags() returned %d tags, want 2", len(tags))
	}

	// Sorted order: "c" before "p"
	if tags[0] != model.RoomKindChannel || tags[1] != model.RoomKindPrivate {
		t.Errorf("SearchableTags() = %v, want [c p]", tags)
	}
}

func TestRegistry_RegisterOverride(t *testing.T) {
	r := DefaultRegistry()

	// Hosts can make direct rooms searchable
	r.Register(Definition{Tag: model.RoomKindDirect, Name: "direct", IncludeInRoomSearch: true})

	tags := r.SearchableTags()
	if len(tags) != 3 {
		t.Fatalf("SearchableTags() returned %d tags, want 3", len(tags))
	}

	def, ok := r.Get(model.RoomKindDirect)
	if !ok {
		t.Fatal("Get(direct) not found")
	}
	if !def.IncludeInRoomSearch {
		t.Error("direct should be includable after override")
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()

	if _, ok := r.Get(model.RoomKindChannel); ok {
		t.Error("Get on empty registry should return false")
	}

	if tags := r.SearchableTags(); len(tags) != 0 {
		t.Errorf("SearchableTags() on empty registry = %v, want empty", tags)
	}
}
