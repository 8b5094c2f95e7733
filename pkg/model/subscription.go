package model

// Subscription links a user to a room they participate in.
type Subscription struct {
	ID       string
	RoomID   string
	UserID   string
	RoomKind RoomKind
}
