package handlers

import (
	"context"
	"strings"

	"github.com/fanbase-app/fanbase-api/db/fanbase_db/model"
	"github.com/fanbase-app/fanbase-api/membership"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"golang.org/x/exp/slog"
)

type postCount struct {
	PostID uint64 `db:"post_id"`
	Count  uint64 `db:"c"`
}

// CommunityPosts returns the community feed. Owners and active
// subscribers get every post; everyone else, including guests, gets the
// public subset. The membership decision is made once, by the membership
// package, and the filter never reorders what storage returned.
func CommunityPosts(c *fiber.Ctx, ctx context.Context, db *sqlx.DB, subs *membership.Store) error {
	slog.Info("Fetching community posts ✅")

	slug := Truncate(strings.ToLower(c.Params("slug")), 64)

	community := model.Communities{}

	err := db.Get(&community, "SELECT * FROM communities WHERE slug = ? LIMIT 1", slug)

	if err != nil {
		slog.Info("No community found 💀 " + slug)

		return NotFound(c, "Community not found.")
	}

	viewer := Viewer(c)

	m, err := membership.Resolve(ctx, subs, viewer, community)

	if err != nil {
		slog.Error("Database problem 💀",
			slog.String("error", err.Error()),
			slog.String("area", "resolving membership"))

		return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to fetch posts.",
			}},
		})
	}

	posts := []model.Posts{}

	err = db.Select(&posts,
		"SELECT * FROM posts WHERE community_id = ? ORDER BY created_at DESC, id DESC",
		community.ID)

	if err != nil {
		slog.Error("Database problem 💀",
			slog.String("error", err.Error()),
			slog.String("area", "selecting posts"))

		return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to fetch posts.",
			}},
		})
	}

	visible := membership.FilterPosts(posts, m)

	handleDbProblem := func(err error) error {
		slog.Error("Database problem 💀",
			slog.String("error", err.Error()),
			slog.String("area", "enriching posts"))

		return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to fetch posts.",
			}},
		})
	}

	authors := map[uint64]model.Users{}
	likeCounts := map[uint64]uint64{}
	commentCounts := map[uint64]uint64{}
	likedByViewer := map[uint64]bool{}

	if len(visible) > 0 {
		postIds := make([]uint64, len(visible))
		authorIds := make([]uint64, len(visible))

		for i, post := range visible {
			postIds[i] = post.ID
			authorIds[i] = post.AuthorID
		}

		query, args, err := sqlx.In("SELECT * FROM users WHERE id IN (?)", authorIds)

		if err != nil {
			return handleDbProblem(err)
		}

		query = db.Rebind(query)

		authorRows := []model.Users{}

		if err := db.Select(&authorRows, query, args...); err != nil {
			return handleDbProblem(err)
		}

		for _, author := range authorRows {
			authors[author.ID] = author
		}

		query, args, err = sqlx.In("SELECT post_id, count(*) AS c FROM likes WHERE post_id IN (?) GROUP BY post_id", postIds)

		if err != nil {
			return handleDbProblem(err)
		}

		query = db.Rebind(query)

		counts := []postCount{}

		if err := db.Select(&counts, query, args...); err != nil {
			return handleDbProblem(err)
		}

		for _, count := range counts {
			likeCounts[count.PostID] = count.Count
		}

		query, args, err = sqlx.In("SELECT post_id, count(*) AS c FROM comments WHERE post_id IN (?) GROUP BY post_id", postIds)

		if err != nil {
			return handleDbProblem(err)
		}

		query = db.Rebind(query)

		counts = []postCount{}

		if err := db.Select(&counts, query, args...); err != nil {
			return handleDbProblem(err)
		}

		for _, count := range counts {
			commentCounts[count.PostID] = count.Count
		}

		if viewer != nil {
			query, args, err = sqlx.In("SELECT post_id FROM likes WHERE user_id = ? AND post_id IN (?)", viewer.ID, postIds)

			if err != nil {
				return handleDbProblem(err)
			}

			query = db.Rebind(query)

			likedIds := []uint64{}

			if err := db.Select(&likedIds, query, args...); err != nil {
				return handleDbProblem(err)
			}

			for _, id := range likedIds {
				likedByViewer[id] = true
			}
		}
	}

	mapped := make([]fiber.Map, len(visible))

	for i, post := range visible {
		var author *model.Users = nil

		if a, ok := authors[post.AuthorID]; ok {
			author = &a
		}

		mapped[i] = PostResponse(post, author, likeCounts[post.ID], commentCounts[post.ID], likedByViewer[post.ID])
	}

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{
		"posts":          mapped,
		"can_view_gated": m.CanViewGated(),
	})
}
