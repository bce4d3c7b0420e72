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

// loadVisiblePost fetches a post and runs the membership check against
// its community. Gating is transitive: everything hanging off a post
// (comments, likes) goes through this before touching rows.
func loadVisiblePost(c *fiber.Ctx, ctx context.Context, db *sqlx.DB, subs *membership.Store) (*model.Posts, *membership.Membership, error) {
	postId, objectType := security_helpers.Decode(c.Params("id"))

	if postId == 0 || objectType != model.POSTS_TYPE {
		return nil, nil, NotFound(c, "Post not found.")
	}

	post := model.Posts{}

	err := db.Get(&post, "SELECT * FROM posts WHERE id = ? LIMIT 1", postId)

	if err != nil {
		slog.Info("No post found 💀")

		return nil, nil, NotFound(c, "Post not found.")
	}

	community := model.Communities{}

	err = db.Get(&community, "SELECT * FROM communities WHERE id = ? LIMIT 1", post.CommunityID)

	if err != nil {
		slog.Error("Post without a community 💀",
			slog.Uint64("postId", post.ID))

		return nil, nil, NotFound(c, "Post not found.")
	}

	m, err := membership.Resolve(ctx, subs, Viewer(c), community)

	if err != nil {
		slog.Error("Database problem 💀",
			slog.String("error", err.Error()),
			slog.String("area", "resolving membership"))

		return nil, nil, c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to fetch post.",
			}},
		})
	}

	if !post.IsPublic && !m.CanViewGated() {
		return nil, nil, Forbidden(c, "Subscribe to see this post.")
	}

	return &post, &m, nil
}

func Post(c *fiber.Ctx, ctx context.Context, db *sqlx.DB, subs *membership.Store) error {
	slog.Info("Fetching post ✅")

	post, _, err := loadVisiblePost(c, ctx, db, subs)

	if post == nil {
		return err
	}

	author := model.Users{}

	hasAuthor := true

	if err := db.Get(&author, "SELECT * FROM users WHERE id = ?", post.AuthorID); err != nil {
		slog.Warn("Couldn't load post author 💀",
			slog.String("error", err.Error()))

		hasAuthor = false
	}

	var likesCount uint64
	var commentsCount uint64

	if err := db.Get(&likesCount, "SELECT count(*) FROM likes WHERE post_id = ?", post.ID); err != nil {
		slog.Warn("Couldn't count likes 💀",
			slog.String("error", err.Error()))
	}

	if err := db.Get(&commentsCount, "SELECT count(*) FROM comments WHERE post_id = ?", post.ID); err != nil {
		slog.Warn("Couldn't count comments 💀",
			slog.String("error", err.Error()))
	}

	isLiked := false

	if viewer := Viewer(c); viewer != nil {
		var likeCount int

		if err := db.Get(&likeCount, "SELECT count(*) FROM likes WHERE post_id = ? AND user_id = ?", post.ID, viewer.ID); err == nil {
			isLiked = likeCount > 0
		}
	}

	var authorRef *model.Users = nil

	if hasAuthor {
		authorRef = &author
	}

	return c.Status(fiber.StatusOK).JSON(PostResponse(*post, authorRef, likesCount, commentsCount, isLiked))
}
