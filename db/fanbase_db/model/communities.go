package model

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/fanbase-app/fanbase-api/security_helpers"
)

type Communities struct {
	ID                uint64         `db:"id"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         sql.NullTime   `db:"updated_at"`
	Salt              string         `db:"object_salt"`
	ArtistID          uint64         `db:"artist_id"`
	Name              string         `db:"name"`
	Slug              string         `db:"slug"`
	Description       sql.NullString `db:"description"`
	CoverImageURL     sql.NullString `db:"cover_image_url"`
	ProfileImageURL   sql.NullString `db:"profile_image_url"`
	SubscriptionPrice uint32         `db:"subscription_price"`
}

func (c Communities) ToFiberMap() fiber.Map {
	var coverImageUrl *string = nil
	var profileImageUrl *string = nil

	if c.CoverImageURL.Valid {
		coverImageUrl = &c.CoverImageURL.String
	}

	if c.ProfileImageURL.Valid {
		profileImageUrl = &c.ProfileImageURL.String
	}

	return fiber.Map{
		"id":                 security_helpers.Encode(c.ID, COMMUNITIES_TYPE, c.Salt),
		"created_at":         c.CreatedAt.Format(time.RFC3339),
		"name":               c.Name,
		"slug":               c.Slug,
		"description":        c.Description.String,
		"cover_image_url":    coverImageUrl,
		"profile_image_url":  profileImageUrl,
		"subscription_price": c.SubscriptionPrice,
	}
}

var COMMUNITIES_TYPE = "Communities"
