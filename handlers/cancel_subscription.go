package handlers

import (
	"context"
	"errors"

	"github.com/fanbase-app/fanbase-api/db/fanbase_db/model"
	"github.com/fanbase-app/fanbase-api/membership"
	"github.com/fanbase-app/fanbase-api/security_helpers"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"golang.org/x/exp/slog"
)

// CancelSubscription runs the active -> cancelled transition. The row
// stays behind so the pair's uniqueness holds; a later join reactivates it
// instead of inserting a second one.
func CancelSubscription(c *fiber.Ctx, ctx context.Context, db *sqlx.DB, subs *membership.Store) error {
	slog.Info("Cancelling subscription ✅")

	user := Viewer(c)

	if user == nil {
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

	sub, err := subs.Cancel(ctx, user.ID, community.ID)

	if errors.Is(err, membership.ErrNotSubscribed) {
		return NotFound(c, "No subscription to cancel.")
	}

	if err != nil {
		slog.Error("Couldn't cancel, db error 💀",
			slog.String("error", err.Error()))

		return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to cancel subscription.",
			}},
		})
	}

	return c.Status(fiber.StatusOK).JSON(sub.ToFiberMap())
}
