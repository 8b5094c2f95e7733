package model

// User is the limited account projection exposed through search. No other
// profile fields leak through this type.
type User struct {
	ID         string `json:"_id"`
	Username   string `json:"username"`
	Nickname   string `json:"nickname,omitempty"`
	Name       string `json:"name,omitempty"`
	Status     string `json:"status,omitempty"`
	StatusText string `json:"statusText,omitempty"`
	AvatarETag string `json:"avatarETag,omitempty"`
}

// UserMatch pairs a user with the transient outsider annotation added by the
// search cascade. Outside is true for globally visible users with no existing
// relationship to the target room; it is never persisted.
type UserMatch struct {
	User
	Outside bool `json:"outside,omitempty"`
}
