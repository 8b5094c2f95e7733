package spotlight

import "github.com/harborchat/spotlight/pkg/model"

// Request is one spotlight invocation. ActorID is empty for anonymous
// callers. RoomID optionally targets a room for insider scoping.
type Request struct {
	ActorID        string
	RoomID         string
	Text           string
	KnownUsernames []string
	WantUsers      bool
	WantRooms      bool
}

// Result carries the bounded, ordered search results. Both slices are
// always non-nil so the JSON encoding stays stable for clients.
type Result struct {
	Users []model.UserMatch `json:"users"`
	Rooms []model.Room      `json:"rooms"`
}
