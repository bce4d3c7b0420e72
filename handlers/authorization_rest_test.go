package handlers

import (
	"context"
	"errors"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
}

func authApp(db *sqlx.DB, claims jwt.MapClaims) *fiber.App {
	app := fiber.New()

	wRdb := testRedis()
	rRdb := testRedis()

	app.Use(func(c *fiber.Ctx) error {
		if claims != nil {
			c.Locals("user", &jwt.Token{Claims: claims})
		}

		return AuthorizationREST(c, context.Background(), db, wRdb, rRdb)
	})

	app.Get("/api/me", func(c *fiber.Ctx) error {
		if Viewer(c) == nil {
			return NotAllowed(c)
		}

		return c.SendString("ok")
	})

	return app
}

func TestAuthorizationRESTDatabaseOutage(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM users WHERE external_id = ?")).
		WithArgs("auth0|abc").
		WillReturnError(errors.New("connection gone"))

	app := authApp(db, jwt.MapClaims{"sub": "auth0|abc"})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/me", nil), 5000)

	require.NoError(t, err)

	// An infrastructure failure must not present as an auth failure.
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorizationRESTResolvesKnownViewer(t *testing.T) {
	db, mock := newMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "object_salt", "external_id", "email", "first_name", "last_name", "profile_image_url"}).
		AddRow(9, time.Now(), nil, "salt", "auth0|abc", "fan@example.com", "Kasper", nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM users WHERE external_id = ?")).
		WithArgs("auth0|abc").
		WillReturnRows(rows)

	app := authApp(db, jwt.MapClaims{"sub": "auth0|abc"})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/me", nil), 5000)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorizationRESTGuestPassesThrough(t *testing.T) {
	db, mock := newMockDB(t)

	app := authApp(db, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/me", nil), 5000)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
