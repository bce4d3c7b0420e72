package internal_handlers

import (
	"cmp"
	"context"
	"slices"

	"github.com/fanbase-app/fanbase-api/db/fanbase_db/model"
	"github.com/fanbase-app/fanbase-api/security_helpers"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"golang.org/x/exp/slog"
)

func Sitemap(c *fiber.Ctx, ctx context.Context, db *sqlx.DB) error {
	slog.Info("Starting site map ✅")

	var communities []model.Communities

	err := db.Select(&communities, "SELECT * FROM communities")

	if err != nil {
		slog.Error("Database problem 💀",
			slog.String("error", err.Error()),
			slog.String("area", "selecting the communities"))

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Sitemap error",
			}},
		})
	}

	if len(communities) == 0 {
		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"communities": []fiber.Map{},
		})
	}

	var communitiesIds = []uint64{}

	for _, community := range communities {
		communitiesIds = append(communitiesIds, community.ID)
	}

	postsQuery, postsArgs, err := sqlx.In("SELECT * FROM posts WHERE community_id IN (?) AND is_public = ?", communitiesIds, true)

	if err != nil {
		slog.Error("Database problem 💀",
			slog.String("error", err.Error()),
			slog.String("area", "creating the query for posts"))

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Sitemap error",
			}},
		})
	}

	postsQuery = db.Rebind(postsQuery)

	posts := []model.Posts{}

	err = db.Select(&posts, postsQuery, postsArgs...)

	if err != nil {
		slog.Error("Database problem 💀",
			slog.String("error", err.Error()),
			slog.String("area", "after the bind to community_id query"))

		return c.Status(fiber.StatusOK).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Sitemap error",
			}},
		})
	}

	postsMap := make(map[uint64][]model.Posts)

	for _, post := range posts {
		list, ok := postsMap[post.CommunityID]

		if ok {
			postsMap[post.CommunityID] = append(list, post)
		} else {
			postsMap[post.CommunityID] = []model.Posts{post}
		}
	}

	var mappedCommunities = []fiber.Map{}

	sortCommunities := func(a, b model.Communities) int {
		return cmp.Compare(a.Slug, b.Slug)
	}

	sortPosts := func(a, b model.Posts) int {
		return cmp.Compare(b.ID, a.ID)
	}

	slices.SortFunc(communities, sortCommunities)

	for _, community := range communities {

		communityPosts := postsMap[community.ID]

		slices.SortFunc(communityPosts, sortPosts)

		var mappedPosts = []fiber.Map{}

		for _, post := range communityPosts {
			mappedPosts = append(mappedPosts, fiber.Map{
				"id": security_helpers.Encode(post.ID, model.POSTS_TYPE, post.Salt),
			})
		}

		mappedCommunities = append(mappedCommunities, fiber.Map{
			"slug":  community.Slug,
			"posts": mappedPosts,
		})
	}

	return c.Status(fiber.StatusOK).JSON(&fiber.Map{
		"communities": mappedCommunities,
	})
}
