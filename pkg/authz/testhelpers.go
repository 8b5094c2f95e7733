package authz

import (
	"context"

	"github.com/harborchat/spotlight/pkg/model"
)

// StaticChecker is a fixed-grant Checker for tests and embedded hosts.
// The zero value denies everything.
type StaticChecker struct {
	// Grants maps a user id to the capabilities they hold.
	Grants map[string][]string
	// AccessibleRooms maps a user id to the room ids they may access.
	// When nil, room access follows the default policy: channels are open
	// to authenticated users, other kinds require membership.
	AccessibleRooms map[string][]string
}

// HasPermission reports whether the user was granted the capability.
func (c *StaticChecker) HasPermission(_ context.Context, userID, permission string) (bool, error) {
	for _, p := range c.Grants[userID] {
		if p == permission {
			return true, nil
		}
	}
	return false, nil
}

// HasAllPermissions reports whether the user was granted every capability.
func (c *StaticChecker) HasAllPermissions(ctx context.Context, userID string, permissions ...string) (bool, error) {
	for _, permission := range permissions {
		ok, err := c.HasPermission(ctx, userID, permission)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// CanAccessRoom reports whether the user may access the room.
func (c *StaticChecker) CanAccessRoom(_ context.Context, room *model.Room, userID string) (bool, error) {
	if room == nil || userID == "" {
		return false, nil
	}

	if c.AccessibleRooms != nil {
		for _, id := range c.AccessibleRooms[userID] {
			if id == room.ID {
				return true, nil
			}
		}
		return false, nil
	}

	if room.Kind == model.RoomKindChannel {
		return true, nil
	}
	for _, id := range room.MemberIDs {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}
