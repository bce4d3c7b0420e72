package handlers

import (
	"context"

	"github.com/fanbase-app/fanbase-api/db/fanbase_db/model"
	"github.com/fanbase-app/fanbase-api/membership"
	"github.com/fanbase-app/fanbase-api/security_helpers"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"golang.org/x/exp/slog"
)

// PostComments lists a post's comments. Visibility is inherited from the
// parent post: if the viewer can't see the post, they can't see the
// conversation under it either.
func PostComments(c *fiber.Ctx, ctx context.Context, db *sqlx.DB, subs *membership.Store) error {
	slog.Info("Fetching comments ✅")

	post, _, err := loadVisiblePost(c, ctx, db, subs)

	if post == nil {
		return err
	}

	comments := []model.Comments{}

	dbErr := db.Select(&comments,
		"SELECT * FROM comments WHERE post_id = ? ORDER BY created_at DESC, id DESC",
		post.ID)

	if dbErr != nil {
		slog.Error("Database problem 💀",
			slog.String("error", dbErr.Error()),
			slog.String("area", "selecting comments"))

		return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to fetch comments.",
			}},
		})
	}

	authors := map[uint64]model.Users{}

	if len(comments) > 0 {
		authorIds := make([]uint64, len(comments))

		for i, comment := range comments {
			authorIds[i] = comment.AuthorID
		}

		query, args, err := sqlx.In("SELECT * FROM users WHERE id IN (?)", authorIds)

		if err != nil {
			slog.Error("Database problem 💀",
				slog.String("error", err.Error()),
				slog.String("area", "building comment authors query"))

			return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
				"errors": []fiber.Map{{
					"message": "Unable to fetch comments.",
				}},
			})
		}

		query = db.Rebind(query)

		rows := []model.Users{}

		if err := db.Select(&rows, query, args...); err != nil {
			slog.Error("Database problem 💀",
				slog.String("error", err.Error()),
				slog.String("area", "selecting comment authors"))

			return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
				"errors": []fiber.Map{{
					"message": "Unable to fetch comments.",
				}},
			})
		}

		for _, author := range rows {
			authors[author.ID] = author
		}
	}

	mapped := make([]fiber.Map, len(comments))

	for i, comment := range comments {
		m := comment.ToFiberMap()

		if author, ok := authors[comment.AuthorID]; ok {
			m["author"] = fiber.Map{
				"id":                security_helpers.Encode(author.ID, model.USERS_TYPE, author.Salt),
				"name":              author.DisplayName(),
				"profile_image_url": author.ProfileImageURL.String,
			}
		}

		mapped[i] = m
	}

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{
		"comments": mapped,
	})
}
