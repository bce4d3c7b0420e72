package handlers

import (
	"context"
	"database/sql"
	"time"

	"github.com/fanbase-app/fanbase-api/db/fanbase_db/model"
	"github.com/fanbase-app/fanbase-api/security_helpers"
	"github.com/fanbase-app/fanbase-api/tasks"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"golang.org/x/exp/slog"
)

type CreatePostInput struct {
	Title     *string `json:"title" validate:"omitempty,lte=255"`
	Content   *string `json:"content" validate:"omitempty,lte=50000"`
	MediaUrl  *string `json:"media_url" validate:"omitempty,lte=1024"`
	MediaType string  `json:"media_type" validate:"required,oneof=text image video audio"`
	IsPublic  *bool   `json:"is_public" validate:"required"`
}

// CreatePost publishes to a community. Only the owning artist may post;
// everyone else with a valid identity gets a 403 and no row is written.
func CreatePost(c *fiber.Ctx, ctx context.Context, db *sqlx.DB, queue *asynq.Client) error {
	slog.Info("Creating post ✅")

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

	if community.ArtistID != user.ID {
		slog.Warn("Non-owner tried to post 👀",
			slog.Uint64("userId", user.ID),
			slog.Uint64("communityId", community.ID))

		return Forbidden(c, "Only the artist can post.")
	}

	input := new(CreatePostInput)

	if err := c.BodyParser(input); err != nil {
		slog.Warn("Invalid input 💀")

		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Invalid input.",
			}},
		})
	}

	validate := validator.New()
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	en_translations.RegisterDefaultTranslations(validate, trans)
	err = validate.Struct(input)

	var errors []fiber.Map

	if err != nil {
		slog.Info("Unable to create post, input 💀")
		slog.Info(err.Error())

		errs := err.(validator.ValidationErrors)

		for _, v := range errs {
			errors = append(errors, fiber.Map{
				"field":   v.Field(),
				"message": v.Translate(trans),
			})
		}
	}

	if input.MediaType != model.MediaTypeText && (input.MediaUrl == nil || *input.MediaUrl == "") {
		errors = append(errors, fiber.Map{
			"field":   "media_url",
			"message": "Media posts need a media_url.",
		})
	}

	if len(errors) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"errors": errors,
		})
	}

	var title sql.NullString
	var content sql.NullString
	var mediaUrl sql.NullString

	if input.Title != nil {
		title = sql.NullString{String: Truncate(*input.Title, 255), Valid: true}
	}

	if input.Content != nil {
		content = sql.NullString{String: *input.Content, Valid: true}
	}

	if input.MediaUrl != nil {
		mediaUrl = sql.NullString{String: *input.MediaUrl, Valid: true}
	}

	createdAt := time.Now()
	salt := uuid.New().String()

	ip := `INSERT INTO posts
	(created_at, object_salt, community_id, author_id, title, content, media_url, media_type, is_public)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := db.Exec(ip, createdAt, salt, community.ID, user.ID, title, content, mediaUrl, input.MediaType, *input.IsPublic)

	if err != nil {
		slog.Error("Couldn't insert posts, db error 💀",
			slog.String("error", err.Error()))

		return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to create post.",
			}},
		})
	}

	postId, err := res.LastInsertId()

	if err != nil {
		slog.Error("Couldn't get last insert for posts, db error 💀",
			slog.String("error", err.Error()))

		return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to create post.",
			}},
		})
	}

	post := model.Posts{}

	err = db.Get(&post, "SELECT * FROM posts WHERE id = ? LIMIT 1", postId)

	if err != nil {
		slog.Error("Couldn't reload post, db error 💀",
			slog.String("error", err.Error()))

		return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to create post.",
			}},
		})
	}

	task, err := tasks.NewPostFanoutTask(post.ID, community.ID)

	if err == nil {
		if _, err := queue.Enqueue(task, asynq.Queue("default")); err != nil {
			slog.Warn("Couldn't enqueue post fanout 💀",
				slog.String("error", err.Error()))
		}
	}

	return c.Status(fiber.StatusCreated).JSON(PostResponse(post, user, 0, 0, false))
}
