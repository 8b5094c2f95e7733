package model

import "time"

// RoomKind identifies the behavior class of a room.
type RoomKind string

const (
	// RoomKindDirect is a direct-message room between a fixed set of users.
	RoomKindDirect RoomKind = "d"
	// RoomKindRestricted is an externally managed room whose participants are
	// tracked through subscriptions rather than a member list.
	RoomKindRestricted RoomKind = "l"
	// RoomKindChannel is a standard public channel.
	RoomKindChannel RoomKind = "c"
	// RoomKindPrivate is an invite-only group.
	RoomKindPrivate RoomKind = "p"
)

// RoomKindStrings converts a slice of kinds to their string tags.
func RoomKindStrings(kinds []RoomKind) []string {
	tags := make([]string, len(kinds))
	for i, k := range kinds {
		tags[i] = string(k)
	}
	return tags
}

// LastMessage is the redactable preview of the most recent message in a room.
type LastMessage struct {
	ID       string    `json:"_id"`
	Text     string    `json:"msg"`
	Username string    `json:"username,omitempty"`
	SentAt   time.Time `json:"ts"`
}

// Room is the room projection returned by spotlight search.
//
// MemberIDs is populated only for direct and restricted rooms; standard
// channels track participation through the user membership index instead.
type Room struct {
	ID               string       `json:"_id"`
	Kind             RoomKind     `json:"t"`
	Name             string       `json:"name"`
	JoinCodeRequired bool         `json:"joinCodeRequired,omitempty"`
	LastMessage      *LastMessage `json:"lastMessage,omitempty"`
	MemberIDs        []string     `json:"-"`
	Default          bool         `json:"-"`
}

// OtherMemberIDs returns the room's member ids excluding the given user.
func (r *Room) OtherMemberIDs(userID string) []string {
	others := make([]string, 0, len(r.MemberIDs))
	for _, id := range r.MemberIDs {
		if id != userID {
			others = append(others, id)
		}
	}
	return others
}
