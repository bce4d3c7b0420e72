package model

import (
	"database/sql"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/fanbase-app/fanbase-api/security_helpers"
)

type Users struct {
	ID              uint64         `db:"id"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       sql.NullTime   `db:"updated_at"`
	Salt            string         `db:"object_salt"`
	ExternalID      string         `db:"external_id"`
	Email           string         `db:"email"`
	FirstName       sql.NullString `db:"first_name"`
	LastName        sql.NullString `db:"last_name"`
	ProfileImageURL sql.NullString `db:"profile_image_url"`
}

func (u Users) DisplayName() string {
	name := strings.TrimSpace(u.FirstName.String + " " + u.LastName.String)

	if name == "" {
		return "A fan"
	}

	return name
}

func (u Users) ToFiberMap() fiber.Map {
	var profileImageUrl *string = nil

	if u.ProfileImageURL.Valid {
		profileImageUrl = &u.ProfileImageURL.String
	}

	return fiber.Map{
		"id":                security_helpers.Encode(u.ID, USERS_TYPE, u.Salt),
		"created_at":        u.CreatedAt.Format(time.RFC3339),
		"first_name":        u.FirstName.String,
		"last_name":         u.LastName.String,
		"profile_image_url": profileImageUrl,
	}
}

var USERS_TYPE = "Users"
