package handlers

import (
	"context"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fanbase-app/fanbase-api/db/fanbase_db/model"
	"github.com/fanbase-app/fanbase-api/membership"
	"github.com/fanbase-app/fanbase-api/security_helpers"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { mockDb.Close() })

	return sqlx.NewDb(mockDb, "sqlmock"), mock
}

var communityColumns = []string{"id", "created_at", "updated_at", "object_salt", "artist_id", "name", "slug", "description", "cover_image_url", "profile_image_url", "subscription_price"}

func communityRow(id uint64, artistID uint64) *sqlmock.Rows {
	return sqlmock.NewRows(communityColumns).
		AddRow(id, time.Now(), nil, "salt", artistID, "Aurora's Studio", "auroras-studio", nil, nil, nil, 500)
}

// The client never connects until something is enqueued, so the tests
// below can hand handlers a queue without a broker behind it.
func testQueue() *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{Addr: "127.0.0.1:1"})
}

func joinApp(db *sqlx.DB, viewer *model.Users) *fiber.App {
	app := fiber.New()
	subs := membership.NewStore(db)
	queue := testQueue()

	app.Post("/api/communities/:id/join", func(c *fiber.Ctx) error {
		if viewer != nil {
			c.Locals("viewer", *viewer)
		}

		return JoinCommunity(c, context.Background(), db, subs, queue)
	})

	return app
}

func TestJoinCommunityGuest(t *testing.T) {
	db, mock := newMockDB(t)

	app := joinApp(db, nil)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/communities/whatever/join", nil))

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// No identity, no row.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinCommunityOwnCommunity(t *testing.T) {
	t.Setenv("AES_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("AES_IV", "fedcba9876543210")

	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM communities WHERE id = ? LIMIT 1")).
		WithArgs(uint64(7)).
		WillReturnRows(communityRow(7, 42))

	app := joinApp(db, &model.Users{ID: 42, Email: "aurora@example.com"})

	communityId := security_helpers.Encode(7, model.COMMUNITIES_TYPE, "salt")

	resp, err := app.Test(httptest.NewRequest("POST", "/api/communities/"+communityId+"/join", nil))

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// The artist never reaches the subscription store.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinCommunityUnknownCommunity(t *testing.T) {
	t.Setenv("AES_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("AES_IV", "fedcba9876543210")

	db, mock := newMockDB(t)

	app := joinApp(db, &model.Users{ID: 9})

	resp, err := app.Test(httptest.NewRequest("POST", "/api/communities/garbage-token/join", nil))

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
