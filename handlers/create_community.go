package handlers

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fanbase-app/fanbase-api/db/fanbase_db/model"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/exp/slog"
)

type CreateCommunityInput struct {
	Name              string  `json:"name" validate:"required,gte=3,lte=255"`
	Slug              string  `json:"slug" validate:"required,gte=3,lte=32"`
	Description       *string `json:"description" validate:"omitempty,lte=2000"`
	CoverImageUrl     *string `json:"cover_image_url" validate:"omitempty,url,lte=1024"`
	ProfileImageUrl   *string `json:"profile_image_url" validate:"omitempty,url,lte=1024"`
	SubscriptionPrice *uint32 `json:"subscription_price" validate:"omitempty,lte=100000000"`
}

func CreateCommunity(c *fiber.Ctx, ctx context.Context, db *sqlx.DB) error {
	slog.Info("Creating community ✅")

	user := Viewer(c)

	if user == nil {
		return NotAllowed(c)
	}

	input := new(CreateCommunityInput)

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
	err := validate.Struct(input)

	var errors []fiber.Map

	if err != nil {
		slog.Info("Unable to create community, input 💀")
		slog.Info(err.Error())

		errs := err.(validator.ValidationErrors)

		for _, v := range errs {
			errors = append(errors, fiber.Map{
				"field":   v.Field(),
				"message": v.Translate(trans),
			})
		}
	}

	lowerSlug := strings.ToLower(input.Slug)

	if !ValidSlug(lowerSlug) {
		errors = append(errors, fiber.Map{
			"field":   "slug",
			"message": "Slug must be lowercase letters, digits and dashes.",
		})
	}

	var slugCount int

	err = db.Get(&slugCount, "SELECT count(*) FROM communities WHERE slug = ?", lowerSlug)

	if err != nil {
		slog.Error("Unable to create community, db error 💀",
			slog.String("error", err.Error()))

		return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to create community.",
			}},
		})
	}

	if slugCount > 0 {
		slog.Info("Slug already taken 💀 " + lowerSlug)

		errors = append(errors, fiber.Map{
			"field":   "slug",
			"message": "Slug already taken.",
		})
	}

	if len(errors) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"errors": errors,
		})
	}

	var description sql.NullString
	var coverImageUrl sql.NullString
	var profileImageUrl sql.NullString
	var subscriptionPrice uint32

	if input.Description != nil {
		description = sql.NullString{String: Truncate(*input.Description, 2000), Valid: true}
	}

	if input.CoverImageUrl != nil {
		coverImageUrl = sql.NullString{String: *input.CoverImageUrl, Valid: true}
	}

	if input.ProfileImageUrl != nil {
		profileImageUrl = sql.NullString{String: *input.ProfileImageUrl, Valid: true}
	}

	if input.SubscriptionPrice != nil {
		subscriptionPrice = *input.SubscriptionPrice
	}

	ic := `INSERT INTO communities
	(created_at, object_salt, artist_id, name, slug, description, cover_image_url, profile_image_url, subscription_price)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = db.Exec(ic, time.Now(), uuid.New().String(), user.ID, input.Name, lowerSlug,
		description, coverImageUrl, profileImageUrl, subscriptionPrice)

	if err != nil {
		slog.Error("Couldn't insert communities, db error 💀",
			slog.String("error", err.Error()))

		if strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
				"errors": []fiber.Map{{
					"field":   "slug",
					"message": "Slug already taken.",
				}},
			})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to create community.",
			}},
		})
	}

	community := model.Communities{}

	err = db.Get(&community, "SELECT * FROM communities WHERE slug = ? LIMIT 1", lowerSlug)

	if err != nil {
		slog.Error("Couldn't reload community, db error 💀",
			slog.String("error", err.Error()))

		return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to create community.",
			}},
		})
	}

	response := community.ToFiberMap()

	response["is_owner"] = true
	response["is_subscribed"] = false

	return c.Status(fiber.StatusCreated).JSON(&response)
}
