package spotlight

import (
	"context"

	"github.com/harborchat/spotlight/pkg/authz"
	"github.com/harborchat/spotlight/pkg/model"
	"github.com/harborchat/spotlight/pkg/store"
)

// tierDescriptor is one (class, match-mode) pass of the user cascade.
type tierDescriptor struct {
	outsider bool
	match    store.Match
}

// cascadeTiers fixes the precedence of the user search: exact matches
// first, then prefix, then substring, with room insiders queried before
// globally visible outsiders at the exact tier and again ahead of the
// remaining outsider tiers.
var cascadeTiers = []tierDescriptor{
	{outsider: false, match: store.Match{StartsWith: true, EndsWith: true}},
	{outsider: true, match: store.Match{StartsWith: true, EndsWith: true}},
	{outsider: false, match: store.Match{StartsWith: true}},
	{outsider: false, match: store.Match{}},
	{outsider: true, match: store.Match{StartsWith: true}},
	{outsider: true, match: store.Match{}},
}

// cascadeState is the accumulator threaded through the tier fold. The
// exclusion set grows after every tier so no username repeats across
// tiers, and remaining is the quota left for later tiers.
type cascadeState struct {
	results   []model.UserMatch
	excluded  []string
	remaining int
}

// searchUsers resolves text into a bounded list of users, insiders of the
// target room ahead of outsiders. The result never exceeds the configured
// suggestion limit: each tier queries at most the remaining quota.
//
// Permission denials return an empty list rather than an error; store
// failures propagate.
func (s *Service) searchUsers(ctx context.Context, actorID, roomID, text string, knownUsernames []string) ([]model.UserMatch, error) {
	canListOutsiders, err := s.authz.HasAllPermissions(ctx, actorID, authz.PermViewOutsideRoom, authz.PermViewDirect)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", actorID).Warn("outsider permission check failed")
		canListOutsiders = false
	}

	var room *model.Room
	if roomID != "" {
		// An unresolved room id means no insider context, not a failure.
		room, err = s.rooms.FindOneByID(ctx, roomID)
		if err != nil {
			return nil, err
		}
	}

	canListInsiders := canListOutsiders
	if !canListInsiders && room != nil {
		ok, err := s.authz.CanAccessRoom(ctx, room, actorID)
		if err != nil {
			s.logger.WithError(err).WithField("room_id", roomID).Warn("room access check failed")
			ok = false
		}
		canListInsiders = ok
	}

	if !canListOutsiders && !canListInsiders {
		return nil, nil
	}

	var insiders *store.InsiderFilter
	if room != nil && canListInsiders {
		insiders, err = s.insiderFilter(ctx, room, actorID)
		if err != nil {
			return nil, err
		}
	}

	opts := store.UserQueryOptions{
		SortByRealName: s.settings.UseRealName(),
		ExcludeUserID:  actorID,
	}

	state := cascadeState{
		excluded:  append([]string(nil), knownUsernames...),
		remaining: s.settings.SuggestionLimit(),
	}

	tiersQueried := 0
	for _, tier := range cascadeTiers {
		if state.remaining <= 0 {
			break
		}
		if tier.outsider && !canListOutsiders {
			continue
		}
		if !tier.outsider && insiders == nil {
			continue
		}

		filter := insiders
		if tier.outsider {
			filter = nil
		}

		opts.Limit = state.remaining
		batch, err := s.users.FindActiveUsersExcept(ctx, text, state.excluded, opts, filter, tier.match)
		if err != nil {
			return nil, err
		}
		tiersQueried++

		for _, u := range batch {
			state.results = append(state.results, model.UserMatch{User: u, Outside: tier.outsider})
			state.excluded = append(state.excluded, u.Username)
		}
		state.remaining -= len(batch)
	}

	if s.metrics != nil {
		s.metrics.SearchTiersQueried.WithLabelValues("users").Observe(float64(tiersQueried))
	}

	return state.results, nil
}

// insiderFilter computes the room's insider candidate scope once per
// request. Direct rooms enumerate their member list, restricted rooms
// their current subscribers, and every other kind is filtered at the
// store through the membership index.
func (s *Service) insiderFilter(ctx context.Context, room *model.Room, actorID string) (*store.InsiderFilter, error) {
	switch room.Kind {
	case model.RoomKindDirect:
		return &store.InsiderFilter{UserIDs: room.OtherMemberIDs(actorID)}, nil

	case model.RoomKindRestricted:
		subs, err := s.subs.FindByRoomID(ctx, room.ID)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(subs))
		for _, sub := range subs {
			// Subscriptions without a user reference are stale; skip them.
			if sub.UserID == "" || sub.UserID == actorID {
				continue
			}
			ids = append(ids, sub.UserID)
		}
		return &store.InsiderFilter{UserIDs: ids}, nil

	default:
		return &store.InsiderFilter{RoomID: room.ID}, nil
	}
}
