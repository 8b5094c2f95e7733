package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborchat/spotlight/pkg/model"
)

func roomRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "kind", "name", "join_code_required", "last_message", "member_ids", "is_default",
	})
}

func TestRegexPattern(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		match    Match
		expected string
	}{
		{"substring", "dev", Match{}, "dev"},
		{"prefix", "dev", Match{StartsWith: true}, "^dev"},
		{"exact", "dev", Match{StartsWith: true, EndsWith: true}, "^dev$"},
		{"escapes metacharacters", "a.b*c", Match{}, `a\.b\*c`},
		{"trims whitespace", "  dev  ", Match{StartsWith: true}, "^dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, regexPattern(tt.text, tt.match))
		})
	}
}

func TestFindOneByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgres(db)

	rows := roomRows().AddRow(
		"room-1", "c", "general", false,
		[]byte(`{"_id":"msg-1","msg":"hello","username":"alice"}`),
		[]byte("{}"), true,
	)
	mock.ExpectQuery("SELECT (.+) FROM rooms WHERE id").
		WithArgs("room-1").
		WillReturnRows(rows)

	room, err := store.FindOneByID(context.Background(), "room-1")
	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Equal(t, model.RoomKindChannel, room.Kind)
	assert.Equal(t, "general", room.Name)
	require.NotNil(t, room.LastMessage)
	assert.Equal(t, "hello", room.LastMessage.Text)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOneByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgres(db)

	mock.ExpectQuery("SELECT (.+) FROM rooms WHERE id").
		WithArgs("missing").
		WillReturnRows(roomRows())

	room, err := store.FindOneByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, room)
}

func TestFindByNameAndTypesNotInIDs_EscapesPattern(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgres(db)

	mock.ExpectQuery("SELECT (.+) FROM rooms").
		WithArgs(`a\.b`, pq.Array([]string{"c", "p"}), pq.Array([]string{"sub-1"}), 5).
		WillReturnRows(roomRows().AddRow(
			"room-2", "c", "a.b", false, nil, []byte("{}"), false,
		))

	rooms, err := store.FindByNameAndTypesNotInIDs(context.Background(), "a.b",
		[]model.RoomKind{model.RoomKindChannel, model.RoomKindPrivate},
		[]string{"sub-1"}, RoomQueryOptions{Limit: 5})
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Nil(t, rooms[0].LastMessage)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindRoomIDsByUserIDAndTypes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgres(db)

	rows := sqlmock.NewRows([]string{"room_id"}).AddRow("room-1").AddRow("room-2")
	mock.ExpectQuery("SELECT room_id FROM subscriptions").
		WithArgs("user-1", pq.Array([]string{"c", "p"})).
		WillReturnRows(rows)

	ids, err := store.FindRoomIDsByUserIDAndTypes(context.Background(), "user-1",
		[]model.RoomKind{model.RoomKindChannel, model.RoomKindPrivate})
	require.NoError(t, err)
	assert.Equal(t, []string{"room-1", "room-2"}, ids)
}

func TestIsSubscribed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgres(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("room-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	subscribed, err := store.IsSubscribed(context.Background(), "room-1", "user-1")
	require.NoError(t, err)
	assert.True(t, subscribed)
}

func TestFindActiveUsersExcept(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgres(db)

	rows := sqlmock.NewRows([]string{
		"id", "username", "nickname", "name", "status", "status_text", "avatar_etag",
	}).AddRow("user-2", "bob", "", "Bob", "online", "", "")

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("^bob", pq.Array([]string{"alice"}), "user-1", 8).
		WillReturnRows(rows)

	users, err := store.FindActiveUsersExcept(context.Background(), "bob",
		[]string{"alice"},
		UserQueryOptions{Limit: 8, ExcludeUserID: "user-1"},
		nil, Match{StartsWith: true})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Username)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindActiveUsersExcept_InsiderRoomFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgres(db)

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("dev", "room-1", 3).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "nickname", "name", "status", "status_text", "avatar_etag",
		}))

	_, err = store.FindActiveUsersExcept(context.Background(), "dev", nil,
		UserQueryOptions{Limit: 3},
		&InsiderFilter{RoomID: "room-1"}, Match{})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindActiveUsersExcept_InsiderIDList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgres(db)

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("dev", pq.Array([]string{"user-2", "user-3"}), 3).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "nickname", "name", "status", "status_text", "avatar_etag",
		}))

	_, err = store.FindActiveUsersExcept(context.Background(), "dev", nil,
		UserQueryOptions{Limit: 3},
		&InsiderFilter{UserIDs: []string{"user-2", "user-3"}}, Match{})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindActiveUsersExcept_ZeroLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgres(db)

	users, err := store.FindActiveUsersExcept(context.Background(), "dev", nil,
		UserQueryOptions{Limit: 0}, nil, Match{})
	require.NoError(t, err)
	assert.Empty(t, users)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindUserIDByToken_Unknown(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgres(db)

	mock.ExpectQuery("SELECT user_id FROM api_tokens").
		WithArgs("bad-token").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	userID, err := store.FindUserIDByToken(context.Background(), "bad-token")
	require.NoError(t, err)
	assert.Empty(t, userID)
}
