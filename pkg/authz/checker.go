package authz

import (
	"context"

	"github.com/harborchat/spotlight/pkg/model"
)

// Capability names consumed by spotlight search.
const (
	// PermViewOutsideRoom allows searching beyond the actor's own rooms.
	PermViewOutsideRoom = "view-outside-room"
	// PermViewChannel allows searching standard channels.
	PermViewChannel = "view-c-room"
	// PermViewDirect allows listing users for direct messaging.
	PermViewDirect = "view-d-room"
	// PermPreviewChannel allows seeing last-message previews in results.
	PermPreviewChannel = "preview-c-room"
)

// Checker answers capability checks for an identity. Implementations must
// be safe for concurrent use.
type Checker interface {
	// HasPermission reports whether the user holds the named capability.
	HasPermission(ctx context.Context, userID, permission string) (bool, error)

	// HasAllPermissions reports whether the user holds every named capability.
	HasAllPermissions(ctx context.Context, userID string, permissions ...string) (bool, error)

	// CanAccessRoom reports whether the user may access the given room.
	CanAccessRoom(ctx context.Context, room *model.Room, userID string) (bool, error)
}
