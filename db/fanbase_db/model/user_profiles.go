package model

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
)

type UserProfiles struct {
	ID        uint64         `db:"id"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt sql.NullTime   `db:"updated_at"`
	UserID    uint64         `db:"user_id"`
	Bio       sql.NullString `db:"bio"`
	Location  sql.NullString `db:"location"`
	Website   sql.NullString `db:"website"`
}

func (p UserProfiles) ToFiberMap() fiber.Map {
	return fiber.Map{
		"bio":      p.Bio.String,
		"location": p.Location.String,
		"website":  p.Website.String,
	}
}

var USER_PROFILES_TYPE = "UserProfiles"
