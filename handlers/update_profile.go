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
	"github.com/jmoiron/sqlx"
	"golang.org/x/exp/slog"
)

type UpdateProfileInput struct {
	Bio      *string `json:"bio" validate:"omitempty,lte=2000"`
	Location *string `json:"location" validate:"omitempty,lte=255"`
	Website  *string `json:"website" validate:"omitempty,url,lte=1024"`
}

// UpdateProfile upserts the extended profile row. The unique key on
// user_id turns a first-write race into an update on retry.
func UpdateProfile(c *fiber.Ctx, ctx context.Context, db *sqlx.DB) error {
	slog.Info("Updating profile ✅")

	user := Viewer(c)

	if user == nil {
		return NotAllowed(c)
	}

	input := new(UpdateProfileInput)

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
		slog.Info("Unable to update profile, input 💀")
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

	handleDbProblem := func(err error) error {
		slog.Error("Couldn't upsert profile, db error 💀",
			slog.String("error", err.Error()))

		return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Unable to update profile.",
			}},
		})
	}

	var bio sql.NullString
	var location sql.NullString
	var website sql.NullString

	if input.Bio != nil {
		bio = sql.NullString{String: *input.Bio, Valid: true}
	}

	if input.Location != nil {
		location = sql.NullString{String: *input.Location, Valid: true}
	}

	if input.Website != nil {
		website = sql.NullString{String: *input.Website, Valid: true}
	}

	existing := model.UserProfiles{}

	err := db.Get(&existing, "SELECT * FROM user_profiles WHERE user_id = ? LIMIT 1", user.ID)

	if err == sql.ErrNoRows {
		ip := `INSERT INTO user_profiles
		(created_at, user_id, bio, location, website)
		VALUES (?, ?, ?, ?, ?)
		`

		_, err = db.Exec(ip, time.Now(), user.ID, bio, location, website)

		if err != nil && !strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			return handleDbProblem(err)
		}
	} else if err != nil {
		return handleDbProblem(err)
	} else {
		up := `UPDATE user_profiles
		SET bio = ?, location = ?, website = ?, updated_at = ?
		WHERE user_id = ?
		`

		if _, err := db.Exec(up, bio, location, website, time.Now(), user.ID); err != nil {
			return handleDbProblem(err)
		}
	}

	profile := model.UserProfiles{}

	if err := db.Get(&profile, "SELECT * FROM user_profiles WHERE user_id = ? LIMIT 1", user.ID); err != nil {
		return handleDbProblem(err)
	}

	return c.Status(fiber.StatusOK).JSON(profile.ToFiberMap())
}
