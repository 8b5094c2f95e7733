// Package store exposes the filtered, sorted, limited lookups the spotlight
// core needs from the room, user, and subscription stores. Implementations
// own indexing and timeouts; the search core only composes queries.
package store

import (
	"context"

	"github.com/harborchat/spotlight/pkg/model"
)

// Match controls how query text is anchored against a name. Both flags set
// means an exact (case-insensitive) match; StartsWith alone is a prefix
// match; neither is a substring match.
type Match struct {
	StartsWith bool
	EndsWith   bool
}

// InsiderFilter scopes a user query to room insiders. When RoomID is set,
// the store filters on the user membership index; otherwise UserIDs is an
// explicit id list (possibly empty, which matches nobody).
type InsiderFilter struct {
	UserIDs []string
	RoomID  string
}

// UserQueryOptions bounds and orders a user lookup.
type UserQueryOptions struct {
	// Limit caps the number of returned users. Non-positive means no rows.
	Limit int
	// SortByRealName orders by display name instead of username.
	SortByRealName bool
	// ExcludeUserID drops a single user id from the results, regardless of
	// username exclusions.
	ExcludeUserID string
}

// RoomQueryOptions bounds a room lookup. Results are sorted by name
// ascending.
type RoomQueryOptions struct {
	Limit int
}

// RoomStore looks up rooms. Query text is matched literally: stores escape
// it before any regex compilation.
type RoomStore interface {
	// FindOneByID returns the room or (nil, nil) when absent.
	FindOneByID(ctx context.Context, id string) (*model.Room, error)

	// FindOneByNameAndType returns a room whose name equals the text
	// exactly and whose kind is in kinds, or (nil, nil).
	FindOneByNameAndType(ctx context.Context, name string, kinds []model.RoomKind) (*model.Room, error)

	// FindByNameAndTypeNotDefault returns non-default rooms of one kind
	// whose name contains the text, case-insensitively.
	FindByNameAndTypeNotDefault(ctx context.Context, text string, kind model.RoomKind, opts RoomQueryOptions) ([]model.Room, error)

	// FindByNameAndTypesNotInIDs returns rooms of the given kinds whose
	// name contains the text, excluding the given room ids.
	FindByNameAndTypesNotInIDs(ctx context.Context, text string, kinds []model.RoomKind, excludeIDs []string, opts RoomQueryOptions) ([]model.Room, error)
}

// SubscriptionStore looks up room participation.
type SubscriptionStore interface {
	// FindRoomIDsByUserIDAndTypes returns the ids of rooms of the given
	// kinds the user is subscribed to.
	FindRoomIDsByUserIDAndTypes(ctx context.Context, userID string, kinds []model.RoomKind) ([]string, error)

	// FindByRoomID returns all subscriptions to a room.
	FindByRoomID(ctx context.Context, roomID string) ([]model.Subscription, error)

	// IsSubscribed reports whether the user is subscribed to the room.
	IsSubscribed(ctx context.Context, roomID, userID string) (bool, error)
}

// UserStore looks up active users.
type UserStore interface {
	// FindActiveUsersExcept returns active users whose username or display
	// name matches the text under the given match mode, excluding the given
	// usernames. A non-nil insiders filter restricts the search to room
	// insiders. Results carry only the search projection fields.
	FindActiveUsersExcept(ctx context.Context, text string, exceptions []string, opts UserQueryOptions, insiders *InsiderFilter, match Match) ([]model.User, error)
}

// TokenStore resolves API tokens to user ids.
type TokenStore interface {
	// FindUserIDByToken returns the user id owning an unexpired token, or
	// "" when the token is unknown.
	FindUserIDByToken(ctx context.Context, token string) (string, error)
}
