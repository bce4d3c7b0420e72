package handlers

import (
	"github.com/fanbase-app/fanbase-api/db/fanbase_db/model"
	"github.com/fanbase-app/fanbase-api/security_helpers"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/exp/slog"
)

// PostResponse renders a post for a viewer that has already passed the
// membership check. Stored media locations are swapped for short signed
// proxy URLs so the raw bucket is never exposed.
func PostResponse(post model.Posts, author *model.Users, likesCount uint64, commentsCount uint64, isLiked bool) fiber.Map {
	response := post.ToFiberMap()

	if post.MediaURL.Valid {
		switch post.MediaType {
		case model.MediaTypeImage:
			if signed, err := security_helpers.ImageUrl(post.MediaURL.String, 1280, 0); err == nil {
				response["media_url"] = signed
			} else {
				slog.Warn("Couldn't sign image url 💀",
					slog.String("error", err.Error()))
			}
		case model.MediaTypeVideo:
			if signed, err := security_helpers.VideoUrl(post.MediaURL.String, 1280, 720); err == nil {
				response["media_url"] = signed
			} else {
				slog.Warn("Couldn't sign video url 💀",
					slog.String("error", err.Error()))
			}
		}
	}

	if author != nil {
		response["author"] = fiber.Map{
			"id":                security_helpers.Encode(author.ID, model.USERS_TYPE, author.Salt),
			"name":              author.DisplayName(),
			"profile_image_url": author.ProfileImageURL.String,
		}
	}

	response["likes_count"] = likesCount
	response["comments_count"] = commentsCount
	response["is_liked"] = isLiked

	return response
}
