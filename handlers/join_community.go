package handlers

import (
	"context"
	"os"

	"github.com/fanbase-app/fanbase-api/db/fanbase_db/model"
	"github.com/fanbase-app/fanbase-api/membership"
	"github.com/fanbase-app/fanbase-api/security_helpers"
	"github.com/fanbase-app/fanbase-api/tasks"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"golang.org/x/exp/slog"
)

// JoinCommunity subscribes the viewer to a community. No payment is taken:
// the subscription is created active unconditionally, and joining twice is
// a no-op returning the existing row.
func JoinCommunity(c *fiber.Ctx, ctx context.Context, db *sqlx.DB, subs *membership.Store, queue *asynq.Client) error {
	slog.Info("Joining community ✅")

	user := Viewer(c)

	if user == nil {
		slog.Warn("Guest tried to join 👀")

		return NotAllowed(c)
	}

	communityId, objectType := security_helpers.Decode(c.Params("id"))

	if communityId == 0 || objectType != model.COMMUNITIES_TYPE {
		return NotFound(c, "Community not found.")
	}

	community := model.Communities{}

	err := db.Get(&community, "SELECT * FROM communities WHERE id = ? LIMIT 1", communityId)

	if err != nil {
		slog.Info("No community found 💀")

		return NotFound(c, "Community not found.")
	}

	// Owners already see everything; a subscription row for the artist
	// would also put them on their own fan-out list.
	if community.ArtistID == user.ID {
		slog.Warn("Artist tried to subscribe to their own community 👀",
			slog.Uint64("userId", user.ID),
			slog.Uint64("communityId", community.ID))

		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "You already own this community.",
			}},
		})
	}

	sub, err := subs.Subscribe(ctx, user.ID, community.ID)

	if err != nil {
		slog.Error("Couldn't subscribe, db error 💀",
			slog.String("error", err.Error()))

		return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to join community.",
			}},
		})
	}

	if user.Email != "" {
		task, err := tasks.NewEmailDeliveryTask("subscription-confirmed", os.Getenv("EMAIL_FROM"), user.Email, map[string]interface{}{
			"community_name": community.Name,
			"community_url":  os.Getenv("WEB_URL") + "/c/" + community.Slug,
		})

		if err == nil {
			if _, err := queue.Enqueue(task, asynq.Queue("low")); err != nil {
				slog.Warn("Couldn't enqueue confirmation email 💀",
					slog.String("error", err.Error()))
			}
		}
	}

	response := sub.ToFiberMap()

	response["community"] = community.ToFiberMap()

	return c.Status(fiber.StatusOK).JSON(&response)
}
