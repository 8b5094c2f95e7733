package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/lib/pq"

	"github.com/harborchat/spotlight/pkg/model"
)

// Postgres implements RoomStore, SubscriptionStore, UserStore, and
// TokenStore against PostgreSQL. Name matching uses the case-insensitive
// regex operator with patterns built from escaped text, so query input is
// always matched literally.
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates a store backed by the given database handle.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// regexPattern builds an anchored, escaped pattern for the ~* operator.
// Escaping is mandatory: raw query text never reaches regex compilation.
func regexPattern(text string, match Match) string {
	p := regexp.QuoteMeta(strings.TrimSpace(text))
	if match.StartsWith {
		p = "^" + p
	}
	if match.EndsWith {
		p = p + "$"
	}
	return p
}

const roomColumns = `id, kind, name, join_code_required, last_message, member_ids, is_default`

// scanRoom scans one room row, decoding the last-message JSON when present.
func scanRoom(scanner interface{ Scan(dest ...interface{}) error }) (*model.Room, error) {
	var room model.Room
	var kind string
	var lastMessageJSON []byte
	var memberIDs pq.StringArray

	err := scanner.Scan(
		&room.ID,
		&kind,
		&room.Name,
		&room.JoinCodeRequired,
		&lastMessageJSON,
		&memberIDs,
		&room.Default,
	)
	if err != nil {
		return nil, err
	}

	room.Kind = model.RoomKind(kind)
	room.MemberIDs = []string(memberIDs)

	if len(lastMessageJSON) > 0 {
		var lm model.LastMessage
		if err := json.Unmarshal(lastMessageJSON, &lm); err == nil {
			room.LastMessage = &lm
		}
	}

	return &room, nil
}

// FindOneByID returns the room or (nil, nil) when absent.
func (s *Postgres) FindOneByID(ctx context.Context, id string) (*model.Room, error) {
	query := fmt.Sprintf(`SELECT %s FROM rooms WHERE id = $1`, roomColumns)

	room, err := scanRoom(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find room %s: %w", id, err)
	}
	return room, nil
}

// FindOneByNameAndType returns a room matching the name exactly, or (nil, nil).
func (s *Postgres) FindOneByNameAndType(ctx context.Context, name string, kinds []model.RoomKind) (*model.Room, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM rooms
		WHERE lower(name) = lower($1) AND kind = ANY($2)
		LIMIT 1`, roomColumns)

	room, err := scanRoom(s.db.QueryRowContext(ctx, query, strings.TrimSpace(name), pq.Array(model.RoomKindStrings(kinds))))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find room by name: %w", err)
	}
	return room, nil
}

// FindByNameAndTypeNotDefault returns non-default rooms of one kind whose
// name contains the text, sorted by name.
func (s *Postgres) FindByNameAndTypeNotDefault(ctx context.Context, text string, kind model.RoomKind, opts RoomQueryOptions) ([]model.Room, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM rooms
		WHERE name ~* $1 AND kind = $2 AND NOT is_default
		ORDER BY name ASC
		LIMIT $3`, roomColumns)

	return s.queryRooms(ctx, query, regexPattern(text, Match{}), string(kind), opts.Limit)
}

// FindByNameAndTypesNotInIDs returns rooms of the given kinds whose name
// contains the text, excluding the given ids, sorted by name.
func (s *Postgres) FindByNameAndTypesNotInIDs(ctx context.Context, text string, kinds []model.RoomKind, excludeIDs []string, opts RoomQueryOptions) ([]model.Room, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM rooms
		WHERE name ~* $1 AND kind = ANY($2) AND NOT (id = ANY($3))
		ORDER BY name ASC
		LIMIT $4`, roomColumns)

	return s.queryRooms(ctx, query,
		regexPattern(text, Match{}),
		pq.Array(model.RoomKindStrings(kinds)),
		pq.Array(excludeIDs),
		opts.Limit,
	)
}

func (s *Postgres) queryRooms(ctx context.Context, query string, args ...interface{}) ([]model.Room, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}
	defer rows.Close()

	var rooms []model.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, *room)
	}
	return rooms, rows.Err()
}

// FindRoomIDsByUserIDAndTypes returns ids of rooms of the given kinds the
// user is subscribed to.
func (s *Postgres) FindRoomIDsByUserIDAndTypes(ctx context.Context, userID string, kinds []model.RoomKind) ([]string, error) {
	const query = `
		SELECT room_id FROM subscriptions
		WHERE user_id = $1 AND room_kind = ANY($2)`

	rows, err := s.db.QueryContext(ctx, query, userID, pq.Array(model.RoomKindStrings(kinds)))
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FindByRoomID returns all subscriptions to a room. Rows with no user
// reference come back with an empty UserID; callers discard them.
func (s *Postgres) FindByRoomID(ctx context.Context, roomID string) ([]model.Subscription, error) {
	const query = `
		SELECT id, room_id, COALESCE(user_id, ''), room_kind
		FROM subscriptions
		WHERE room_id = $1`

	rows, err := s.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions for room %s: %w", roomID, err)
	}
	defer rows.Close()

	var subs []model.Subscription
	for rows.Next() {
		var sub model.Subscription
		var kind string
		if err := rows.Scan(&sub.ID, &sub.RoomID, &sub.UserID, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		sub.RoomKind = model.RoomKind(kind)
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// IsSubscribed reports whether the user is subscribed to the room.
func (s *Postgres) IsSubscribed(ctx context.Context, roomID, userID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM subscriptions WHERE room_id = $1 AND user_id = $2
		)`

	var subscribed bool
	if err := s.db.QueryRowContext(ctx, query, roomID, userID).Scan(&subscribed); err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}
	return subscribed, nil
}

// FindActiveUsersExcept returns active users matching the text under the
// given match mode, excluding the given usernames. The projection is fixed
// to the search fields; nothing else leaves the store.
func (s *Postgres) FindActiveUsersExcept(ctx context.Context, text string, exceptions []string, opts UserQueryOptions, insiders *InsiderFilter, match Match) ([]model.User, error) {
	if opts.Limit <= 0 {
		return nil, nil
	}

	var query strings.Builder
	query.WriteString(`
		SELECT id, username,
		       COALESCE(nickname, ''), COALESCE(name, ''),
		       COALESCE(status, ''), COALESCE(status_text, ''),
		       COALESCE(avatar_etag, '')
		FROM users
		WHERE active AND (username ~* $1 OR name ~* $1)`)

	args := []interface{}{regexPattern(text, match)}
	argIndex := 2

	if len(exceptions) > 0 {
		query.WriteString(fmt.Sprintf(` AND NOT (username = ANY($%d))`, argIndex))
		args = append(args, pq.Array(exceptions))
		argIndex++
	}

	if opts.ExcludeUserID != "" {
		query.WriteString(fmt.Sprintf(` AND id <> $%d`, argIndex))
		args = append(args, opts.ExcludeUserID)
		argIndex++
	}

	if insiders != nil {
		if insiders.RoomID != "" {
			// Membership index filter for standard rooms
			query.WriteString(fmt.Sprintf(` AND $%d = ANY(room_ids)`, argIndex))
			args = append(args, insiders.RoomID)
		} else {
			query.WriteString(fmt.Sprintf(` AND id = ANY($%d)`, argIndex))
			args = append(args, pq.Array(insiders.UserIDs))
		}
		argIndex++
	}

	if opts.SortByRealName {
		query.WriteString(` ORDER BY name ASC`)
	} else {
		query.WriteString(` ORDER BY username ASC`)
	}

	query.WriteString(fmt.Sprintf(` LIMIT $%d`, argIndex))
	args = append(args, opts.Limit)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		err := rows.Scan(&u.ID, &u.Username, &u.Nickname, &u.Name, &u.Status, &u.StatusText, &u.AvatarETag)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// FindUserIDByToken returns the user id owning an unexpired API token, or
// "" when the token is unknown.
func (s *Postgres) FindUserIDByToken(ctx context.Context, token string) (string, error) {
	const query = `
		SELECT user_id FROM api_tokens
		WHERE token = $1 AND (expires_at IS NULL OR expires_at > NOW())`

	var userID string
	err := s.db.QueryRowContext(ctx, query, token).Scan(&userID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up token: %w", err)
	}
	return userID, nil
}
