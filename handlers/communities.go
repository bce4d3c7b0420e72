package handlers

import (
	"context"

	"github.com/fanbase-app/fanbase-api/db/fanbase_db/model"
	"github.com/fanbase-app/fanbase-api/security_helpers"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"golang.org/x/exp/slog"
)

func Communities(c *fiber.Ctx, ctx context.Context, db *sqlx.DB) error {
	slog.Info("Listing communities ✅")

	communities := []model.Communities{}

	err := db.Select(&communities, "SELECT * FROM communities ORDER BY created_at DESC")

	if err != nil {
		slog.Error("Database problem 💀",
			slog.String("error", err.Error()),
			slog.String("area", "selecting communities"))

		return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to list communities.",
			}},
		})
	}

	artists := map[uint64]model.Users{}

	if len(communities) > 0 {
		artistIds := make([]uint64, len(communities))

		for i, community := range communities {
			artistIds[i] = community.ArtistID
		}

		query, args, err := sqlx.In("SELECT * FROM users WHERE id IN (?)", artistIds)

		if err != nil {
			slog.Error("Database problem 💀",
				slog.String("error", err.Error()),
				slog.String("area", "building artists query"))

			return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
				"errors": []fiber.Map{{
					"message": "Unable to list communities.",
				}},
			})
		}

		query = db.Rebind(query)

		rows := []model.Users{}

		if err := db.Select(&rows, query, args...); err != nil {
			slog.Error("Database problem 💀",
				slog.String("error", err.Error()),
				slog.String("area", "selecting artists"))

			return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
				"errors": []fiber.Map{{
					"message": "Unable to list communities.",
				}},
			})
		}

		for _, artist := range rows {
			artists[artist.ID] = artist
		}
	}

	mapped := make([]fiber.Map, len(communities))

	for i, community := range communities {
		m := community.ToFiberMap()

		if artist, ok := artists[community.ArtistID]; ok {
			m["artist"] = fiber.Map{
				"id":                security_helpers.Encode(artist.ID, model.USERS_TYPE, artist.Salt),
				"name":              artist.DisplayName(),
				"profile_image_url": artist.ProfileImageURL.String,
			}
		}

		mapped[i] = m
	}

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{
		"communities": mapped,
	})
}
