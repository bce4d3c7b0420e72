package internal_handlers

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/exp/slog"
)

type seedArtist struct {
	externalId  string
	email       string
	firstName   string
	community   string
	slug        string
	description string
	price       uint
}

var seedArtists = []seedArtist{
	{
		externalId:  "seed|aurora",
		email:       "aurora@example.com",
		firstName:   "Aurora",
		community:   "Aurora's Studio",
		slug:        "auroras-studio",
		description: "Demos, studio diaries and early mixes.",
		price:       500,
	},
	{
		externalId:  "seed|kasper",
		email:       "kasper@example.com",
		firstName:   "Kasper",
		community:   "Kasper Live",
		slug:        "kasper-live",
		description: "Tour footage and soundcheck recordings.",
		price:       300,
	},
}

// Seed fills an empty database with a couple of demo artists, their
// communities and a mix of public and gated posts. It refuses to touch a
// database that already has communities in it, so hitting it twice is safe.
func Seed(c *fiber.Ctx, ctx context.Context, db *sqlx.DB) error {
	slog.Info("Starting seed ✅")

	var existing int64

	err := db.GetContext(ctx, &existing, "SELECT COUNT(*) FROM communities")

	if err != nil {
		slog.Error("Database problem 💀",
			slog.String("error", err.Error()),
			slog.String("area", "counting communities"))

		return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Seed error",
			}},
		})
	}

	if existing > 0 {
		slog.Info("Database already seeded, skipping 👀")

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"seeded": false,
		})
	}

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: false})

	if err != nil {
		slog.Error("Couldn't tx, db error 💀")

		return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Seed error",
			}},
		})
	}

	handleTxError := func(err error) error {
		tx.Rollback()

		slog.Error("Unable to seed database 💀")

		if err != nil {
			slog.Error(err.Error())
		}

		return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Seed error",
			}},
		})
	}

	now := time.Now()

	communities := 0
	posts := 0

	for _, artist := range seedArtists {
		res, err := tx.Exec("INSERT INTO users (created_at, object_salt, external_id, email, first_name) VALUES (?, ?, ?, ?, ?)",
			now, uuid.NewString(), artist.externalId, artist.email, artist.firstName)

		if err != nil {
			return handleTxError(err)
		}

		artistId, err := res.LastInsertId()

		if err != nil {
			return handleTxError(err)
		}

		res, err = tx.Exec("INSERT INTO communities (created_at, object_salt, artist_id, name, slug, description, subscription_price) VALUES (?, ?, ?, ?, ?, ?, ?)",
			now, uuid.NewString(), artistId, artist.community, artist.slug, artist.description, artist.price)

		if err != nil {
			return handleTxError(err)
		}

		communityId, err := res.LastInsertId()

		if err != nil {
			return handleTxError(err)
		}

		communities += 1

		_, err = tx.Exec("INSERT INTO posts (created_at, object_salt, community_id, author_id, title, content, media_type, is_public) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			now, uuid.NewString(), communityId, artistId, "Welcome!", "Thanks for stopping by. Subscribe to see everything else.", "text", true)

		if err != nil {
			return handleTxError(err)
		}

		posts += 1

		_, err = tx.Exec("INSERT INTO posts (created_at, object_salt, community_id, author_id, title, content, media_type, is_public) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			now, uuid.NewString(), communityId, artistId, "Subscribers only", "An early listen, just for members.", "text", false)

		if err != nil {
			return handleTxError(err)
		}

		posts += 1
	}

	err = tx.Commit()

	if err != nil {
		return handleTxError(err)
	}

	slog.Info("Seeded database ✅",
		slog.Int("communities", communities),
		slog.Int("posts", posts))

	return c.Status(fiber.StatusCreated).JSON(&fiber.Map{
		"seeded":      true,
		"communities": communities,
		"posts":       posts,
	})
}
