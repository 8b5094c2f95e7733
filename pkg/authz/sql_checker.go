package authz

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/harborchat/spotlight/pkg/model"
	"github.com/harborchat/spotlight/pkg/observability"
)

// MembershipLookup answers whether a user participates in a room. The
// subscription store satisfies this.
type MembershipLookup interface {
	IsSubscribed(ctx context.Context, roomID, userID string) (bool, error)
}

const permissionCacheSize = 4096

// SQLChecker resolves capabilities from the role tables, with an in-process
// TTL cache in front of the permission query.
type SQLChecker struct {
	db          *sql.DB
	memberships MembershipLookup
	cache       *expirable.LRU[string, bool]
	metrics     *observability.Metrics
}

// NewSQLChecker creates a checker backed by the role tables. A cacheTTL of
// zero disables caching; metrics may be nil.
func NewSQLChecker(db *sql.DB, memberships MembershipLookup, cacheTTL time.Duration, metrics *observability.Metrics) *SQLChecker {
	c := &SQLChecker{
		db:          db,
		memberships: memberships,
		metrics:     metrics,
	}
	if cacheTTL > 0 {
		c.cache = expirable.NewLRU[string, bool](permissionCacheSize, nil, cacheTTL)
	}
	return c
}

// HasPermission reports whether the user holds the named capability through
// any of their roles.
func (c *SQLChecker) HasPermission(ctx context.Context, userID, permission string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	cacheKey := userID + "\x00" + permission
	if c.cache != nil {
		if allowed, ok := c.cache.Get(cacheKey); ok {
			if c.metrics != nil {
				c.metrics.PermissionCacheHitsTotal.Inc()
			}
			return allowed, nil
		}
		if c.metrics != nil {
			c.metrics.PermissionCacheMissesTotal.Inc()
		}
	}

	const query = `
		SELECT EXISTS (
			SELECT 1
			FROM user_roles ur
			JOIN role_permissions rp ON rp.role_id = ur.role_id
			WHERE ur.user_id = $1 AND rp.permission = $2
		)`

	var allowed bool
	if err := c.db.QueryRowContext(ctx, query, userID, permission).Scan(&allowed); err != nil {
		return false, fmt.Errorf("failed to check permission %q: %w", permission, err)
	}

	if c.cache != nil {
		c.cache.Add(cacheKey, allowed)
	}
	return allowed, nil
}

// HasAllPermissions reports whether the user holds every named capability.
func (c *SQLChecker) HasAllPermissions(ctx context.Context, userID string, permissions ...string) (bool, error) {
	for _, permission := range permissions {
		allowed, err := c.HasPermission(ctx, userID, permission)
		if err != nil {
			return false, err
		}
		if !allowed {
			return false, nil
		}
	}
	return true, nil
}

// CanAccessRoom reports whether the user may access the room. Standard
// channels are open to any authenticated user; every other kind requires
// membership or a subscription.
func (c *SQLChecker) CanAccessRoom(ctx context.Context, room *model.Room, userID string) (bool, error) {
	if room == nil || userID == "" {
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

	subscribed, err := c.memberships.IsSubscribed(ctx, room.ID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check room membership: %w", err)
	}
	return subscribed, nil
}

// InvalidateCache drops all cached permission results. Call after role
// assignments change.
func (c *SQLChecker) InvalidateCache() {
	if c.cache != nil {
		c.cache.Purge()
	}
}
