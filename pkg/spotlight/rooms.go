package spotlight

import (
	"context"

	"github.com/harborchat/spotlight/pkg/authz"
	"github.com/harborchat/spotlight/pkg/model"
	"github.com/harborchat/spotlight/pkg/store"
)

// roomSearchLimit caps the room list of every spotlight response.
const roomSearchLimit = 5

// searchRooms returns up to roomSearchLimit rooms whose name contains the
// text, sorted by name ascending. Rooms the actor is already subscribed to
// and the room matching the text exactly are excluded; clients surface
// those through their own channel lists.
//
// Permission denials yield an empty list, never an error, so callers
// cannot probe for the existence of rooms they may not see.
func (s *Service) searchRooms(ctx context.Context, actorID, text string) ([]model.Room, error) {
	if actorID == "" {
		if !s.settings.AllowAnonymousRead() {
			return nil, nil
		}
		rooms, err := s.rooms.FindByNameAndTypeNotDefault(ctx, text, model.RoomKindChannel,
			store.RoomQueryOptions{Limit: roomSearchLimit})
		if err != nil {
			return nil, err
		}
		return s.redactLastMessages(ctx, actorID, rooms), nil
	}

	allowed, err := s.authz.HasAllPermissions(ctx, actorID, authz.PermViewOutsideRoom, authz.PermViewChannel)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", actorID).Warn("room search permission check failed")
		return nil, nil
	}
	if !allowed {
		return nil, nil
	}

	searchable := s.registry.SearchableTags()

	excludeIDs, err := s.subs.FindRoomIDsByUserIDAndTypes(ctx, actorID, searchable)
	if err != nil {
		return nil, err
	}

	exact, err := s.rooms.FindOneByNameAndType(ctx, text, searchable)
	if err != nil {
		return nil, err
	}
	if exact != nil {
		excludeIDs = append(excludeIDs, exact.ID)
	}

	rooms, err := s.rooms.FindByNameAndTypesNotInIDs(ctx, text, searchable, excludeIDs,
		store.RoomQueryOptions{Limit: roomSearchLimit})
	if err != nil {
		return nil, err
	}

	return s.redactLastMessages(ctx, actorID, rooms), nil
}

// redactLastMessages strips the last-message preview from every room when
// previews are disabled globally or the actor may not see them. The
// decision is made once for the whole result set.
func (s *Service) redactLastMessages(ctx context.Context, actorID string, rooms []model.Room) []model.Room {
	keep := s.settings.StoreLastMessage()
	if keep {
		allowed, err := s.authz.HasPermission(ctx, actorID, authz.PermPreviewChannel)
		if err != nil {
			s.logger.WithError(err).Warn("preview permission check failed, redacting")
			allowed = false
		}
		keep = allowed
	}
	if keep {
		return rooms
	}

	for i := range rooms {
		rooms[i].LastMessage = nil
	}
	return rooms
}
