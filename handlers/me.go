package handlers

import (
	"context"
	"database/sql"

	"github.com/fanbase-app/fanbase-api/db/fanbase_db/model"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"golang.org/x/exp/slog"
)

func Me(c *fiber.Ctx, ctx context.Context, db *sqlx.DB) error {
	slog.Info("Starting me ✅")

	user := Viewer(c)

	if user == nil {
		return NotAllowed(c)
	}

	handleDbProblem := func(err error) error {
		slog.Error("Database problem 💀",
			slog.String("error", err.Error()))

		return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Cannot fetch profile.",
			}},
		})
	}

	profile := model.UserProfiles{}

	hasProfile := true

	err := db.Get(&profile, "SELECT * FROM user_profiles WHERE user_id = ? LIMIT 1", user.ID)

	if err == sql.ErrNoRows {
		hasProfile = false
	} else if err != nil {
		return handleDbProblem(err)
	}

	subscriptions := []model.Subscriptions{}

	err = db.Select(&subscriptions, "SELECT * FROM subscriptions WHERE user_id = ? ORDER BY created_at DESC", user.ID)

	if err != nil {
		return handleDbProblem(err)
	}

	communities := map[uint64]model.Communities{}

	if len(subscriptions) > 0 {
		communityIds := make([]uint64, len(subscriptions))

		for i, sub := range subscriptions {
			communityIds[i] = sub.CommunityID
		}

		query, args, err := sqlx.In("SELECT * FROM communities WHERE id IN (?)", communityIds)

		if err != nil {
			return handleDbProblem(err)
		}

		query = db.Rebind(query)

		rows := []model.Communities{}

		if err := db.Select(&rows, query, args...); err != nil {
			return handleDbProblem(err)
		}

		for _, community := range rows {
			communities[community.ID] = community
		}
	}

	mappedSubscriptions := make([]fiber.Map, len(subscriptions))

	for i, sub := range subscriptions {
		m := sub.ToFiberMap()

		if community, ok := communities[sub.CommunityID]; ok {
			m["community"] = community.ToFiberMap()
		}

		mappedSubscriptions[i] = m
	}

	owned := []model.Communities{}

	err = db.Select(&owned, "SELECT * FROM communities WHERE artist_id = ? ORDER BY created_at DESC", user.ID)

	if err != nil {
		return handleDbProblem(err)
	}

	mappedOwned := make([]fiber.Map, len(owned))

	for i, community := range owned {
		mappedOwned[i] = community.ToFiberMap()
	}

	response := user.ToFiberMap()

	response["email"] = user.Email
	response["subscriptions"] = mappedSubscriptions
	response["communities"] = mappedOwned

	if hasProfile {
		response["profile"] = profile.ToFiberMap()
	} else {
		response["profile"] = nil
	}

	return c.Status(fiber.StatusOK).JSON(&response)
}
