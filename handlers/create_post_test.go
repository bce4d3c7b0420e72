package handlers

import (
	"context"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fanbase-app/fanbase-api/db/fanbase_db/model"
	"github.com/fanbase-app/fanbase-api/security_helpers"
)

func createPostApp(db *sqlx.DB, viewer *model.Users) *fiber.App {
	app := fiber.New()
	queue := testQueue()

	app.Post("/api/communities/:id/posts", func(c *fiber.Ctx) error {
		if viewer != nil {
			c.Locals("viewer", *viewer)
		}

		return CreatePost(c, context.Background(), db, queue)
	})

	return app
}

func TestCreatePostGuest(t *testing.T) {
	db, mock := newMockDB(t)

	app := createPostApp(db, nil)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/communities/whatever/posts", nil))

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// No identity, no row.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePostNonOwner(t *testing.T) {
	t.Setenv("AES_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("AES_IV", "fedcba9876543210")

	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM communities WHERE id = ? LIMIT 1")).
		WithArgs(uint64(7)).
		WillReturnRows(communityRow(7, 42))

	app := createPostApp(db, &model.Users{ID: 9})

	communityId := security_helpers.Encode(7, model.COMMUNITIES_TYPE, "salt")

	req := httptest.NewRequest("POST", "/api/communities/"+communityId+"/posts",
		strings.NewReader(`{"media_type":"text","content":"hi","is_public":true}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// The fan's request is rejected before any insert.
	assert.NoError(t, mock.ExpectationsWereMet())
}
