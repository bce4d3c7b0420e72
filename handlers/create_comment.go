package handlers

import (
	"context"
	"time"

	"github.com/fanbase-app/fanbase-api/db/fanbase_db/model"
	"github.com/fanbase-app/fanbase-api/membership"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/exp/slog"
)

type CreateCommentInput struct {
	Content string `json:"content" validate:"required,gte=1,lte=2000"`
}

func CreateComment(c *fiber.Ctx, ctx context.Context, db *sqlx.DB, subs *membership.Store) error {
	slog.Info("Creating comment ✅")

	user := Viewer(c)

	if user == nil {
		return NotAllowed(c)
	}

	post, _, err := loadVisiblePost(c, ctx, db, subs)

	if post == nil {
		return err
	}

	input := new(CreateCommentInput)

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
	vErr := validate.Struct(input)

	if vErr != nil {
		slog.Info("Unable to create comment, input 💀")
		slog.Info(vErr.Error())

		var errors []fiber.Map

		errs := vErr.(validator.ValidationErrors)

		for _, v := range errs {
			errors = append(errors, fiber.Map{
				"field":   v.Field(),
				"message": v.Translate(trans),
			})
		}

		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"errors": errors,
		})
	}

	ic := `INSERT INTO comments
	(created_at, object_salt, post_id, author_id, content)
	VALUES (?, ?, ?, ?, ?)
	`

	res, dbErr := db.Exec(ic, time.Now(), uuid.New().String(), post.ID, user.ID, input.Content)

	if dbErr != nil {
		slog.Error("Couldn't insert comments, db error 💀",
			slog.String("error", dbErr.Error()))

		return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to create comment.",
			}},
		})
	}

	commentId, dbErr := res.LastInsertId()

	if dbErr != nil {
		slog.Error("Couldn't get last insert for comments, db error 💀",
			slog.String("error", dbErr.Error()))

		return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to create comment.",
			}},
		})
	}

	comment := model.Comments{}

	if dbErr := db.Get(&comment, "SELECT * FROM comments WHERE id = ? LIMIT 1", commentId); dbErr != nil {
		slog.Error("Couldn't reload comment, db error 💀",
			slog.String("error", dbErr.Error()))

		return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to create comment.",
			}},
		})
	}

	response := comment.ToFiberMap()

	response["author"] = user.ToFiberMap()

	return c.Status(fiber.StatusCreated).JSON(&response)
}
