package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fanbase-app/fanbase-api/db/fanbase_db/model"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"golang.org/x/exp/slog"
)

// AuthorizationREST resolves the identity provider's token into a local
// users row and parks it in c.Locals("viewer"). Guests pass straight
// through with no viewer set. The row is created on first sight of a new
// subject, so this service never handles credentials itself.
func AuthorizationREST(c *fiber.Ctx, ctx context.Context, db *sqlx.DB, wRdb *redis.Client, rRdb *redis.Client) error {
	jwtToken, ok := c.Locals("user").(*jwt.Token)

	if !ok {
		slog.Info("Guest request 👀")

		return c.Next()
	}

	claims, ok := jwtToken.Claims.(jwt.MapClaims)

	if !ok {
		return c.Next()
	}

	subject, _ := claims["sub"].(string)

	if subject == "" {
		slog.Error("💀 Token with no subject 💀")

		return c.Status(fiber.StatusUnauthorized).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to authorize",
			}},
		})
	}

	rk := fmt.Sprintf("viewer-%s", subject)

	if val, err := rRdb.Get(ctx, rk).Result(); err == nil {
		user := model.Users{}

		if err := json.Unmarshal([]byte(val), &user); err == nil && user.ID > 0 {
			c.Locals("viewer", user)

			return c.Next()
		}
	}

	user := model.Users{}

	err := db.Get(&user, "SELECT * FROM users WHERE external_id = ?", subject)

	if err == sql.ErrNoRows {
		email, _ := claims["email"].(string)
		firstName, _ := claims["first_name"].(string)
		lastName, _ := claims["last_name"].(string)
		profileImageUrl, _ := claims["profile_image_url"].(string)

		slog.Info("First sight of subject, creating user ✅")

		iu := `INSERT INTO users
		(created_at, object_salt, external_id, email, first_name, last_name, profile_image_url)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		`

		_, err = db.Exec(iu, time.Now(), uuid.New().String(), subject, email,
			sql.NullString{String: firstName, Valid: firstName != ""},
			sql.NullString{String: lastName, Valid: lastName != ""},
			sql.NullString{String: profileImageUrl, Valid: profileImageUrl != ""})

		if err != nil {
			// A parallel first request may have inserted the row already.
			slog.Warn("User insert failed, retrying select 👀",
				slog.String("error", err.Error()))
		}

		err = db.Get(&user, "SELECT * FROM users WHERE external_id = ?", subject)
	}

	// A database outage is not an auth failure.
	if err != nil && err != sql.ErrNoRows {
		slog.Error("💀 Database problem resolving viewer 💀",
			slog.String("error", err.Error()))

		return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Something went wrong.",
			}},
		})
	}

	if err != nil || user.ID == 0 {
		slog.Error("💀 Unable to resolve viewer 💀")

		return c.Status(fiber.StatusUnauthorized).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to authorize",
			}},
		})
	}

	if p, err := json.Marshal(user); err == nil {
		go func() {
			if _, err := wRdb.Set(ctx, rk, p, 15*time.Minute).Result(); err != nil {
				slog.Warn("Couldn't cache viewer 💀",
					slog.String("error", err.Error()))
			}
		}()
	}

	c.Locals("viewer", user)

	return c.Next()
}
