package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/fanbase-app/fanbase-api/membership"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"golang.org/x/exp/slog"
)

// LikePost is idempotent: the composite primary key on (post_id, user_id)
// makes a second like a no-op rather than a second row.
func LikePost(c *fiber.Ctx, ctx context.Context, db *sqlx.DB, subs *membership.Store) error {
	slog.Info("Liking post ✅")

	user := Viewer(c)

	if user == nil {
		return NotAllowed(c)
	}

	post, _, err := loadVisiblePost(c, ctx, db, subs)

	if post == nil {
		return err
	}

	_, dbErr := db.Exec("INSERT INTO likes (post_id, user_id, created_at) VALUES (?, ?, ?)",
		post.ID, user.ID, time.Now())

	if dbErr != nil && !strings.Contains(strings.ToLower(dbErr.Error()), "duplicate") {
		slog.Error("Couldn't insert likes, db error 💀",
			slog.String("error", dbErr.Error()))

		return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to like post.",
			}},
		})
	}

	var likesCount uint64

	if dbErr := db.Get(&likesCount, "SELECT count(*) FROM likes WHERE post_id = ?", post.ID); dbErr != nil {
		slog.Warn("Couldn't count likes 💀",
			slog.String("error", dbErr.Error()))
	}

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{
		"ok":          true,
		"likes_count": likesCount,
	})
}

func UnlikePost(c *fiber.Ctx, ctx context.Context, db *sqlx.DB, subs *membership.Store) error {
	slog.Info("Unliking post ✅")

	user := Viewer(c)

	if user == nil {
		return NotAllowed(c)
	}

	post, _, err := loadVisiblePost(c, ctx, db, subs)

	if post == nil {
		return err
	}

	_, dbErr := db.Exec("DELETE FROM likes WHERE post_id = ? AND user_id = ?", post.ID, user.ID)

	if dbErr != nil {
		slog.Error("Couldn't delete likes, db error 💀",
			slog.String("error", dbErr.Error()))

		return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to unlike post.",
			}},
		})
	}

	var likesCount uint64

	if dbErr := db.Get(&likesCount, "SELECT count(*) FROM likes WHERE post_id = ?", post.ID); dbErr != nil {
		slog.Warn("Couldn't count likes 💀",
			slog.String("error", dbErr.Error()))
	}

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{
		"ok":          true,
		"likes_count": likesCount,
	})
}
