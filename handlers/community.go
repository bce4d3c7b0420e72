package handlers

import (
	"context"
	"strings"

	"github.com/fanbase-app/fanbase-api/db/fanbase_db/model"
	"github.com/fanbase-app/fanbase-api/membership"
	"github.com/fanbase-app/fanbase-api/security_helpers"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"golang.org/x/exp/slog"
)

// Community is the public community page. The is_subscribed flag uses the
// same membership resolution as the posts feed, so the two can never
// disagree about who is a member.
func Community(c *fiber.Ctx, ctx context.Context, db *sqlx.DB, subs *membership.Store) error {
	slog.Info("Starting fetch community ✅")

	slug := Truncate(strings.ToLower(c.Params("slug")), 64)

	community := model.Communities{}

	err := db.Get(&community, "SELECT * FROM communities WHERE slug = ? LIMIT 1", slug)

	if err != nil {
		slog.Info("No community found 💀 " + slug)

		return NotFound(c, "Community not found.")
	}

	m, err := membership.Resolve(ctx, subs, Viewer(c), community)

	if err != nil {
		slog.Error("Database problem 💀",
			slog.String("error", err.Error()),
			slog.String("area", "resolving membership"))

		return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to fetch community.",
			}},
		})
	}

	artist := model.Users{}

	err = db.Get(&artist, "SELECT * FROM users WHERE id = ?", community.ArtistID)

	if err != nil {
		slog.Error("Database problem 💀",
			slog.String("error", err.Error()),
			slog.String("area", "selecting the artist"))

		return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to fetch community.",
			}},
		})
	}

	var subscriberCount uint64

	err = db.Get(&subscriberCount,
		"SELECT count(*) FROM subscriptions WHERE community_id = ? AND status = ?",
		community.ID, model.SubscriptionStatusActive)

	if err != nil {
		slog.Warn("Couldn't count subscribers 💀",
			slog.String("error", err.Error()))
	}

	response := community.ToFiberMap()

	response["artist"] = fiber.Map{
		"id":                security_helpers.Encode(artist.ID, model.USERS_TYPE, artist.Salt),
		"name":              artist.DisplayName(),
		"profile_image_url": artist.ProfileImageURL.String,
	}
	response["subscriber_count"] = subscriberCount
	response["is_subscribed"] = m.IsActiveSubscriber
	response["is_owner"] = m.IsOwner

	return c.Status(fiber.StatusOK).JSON(&response)
}
