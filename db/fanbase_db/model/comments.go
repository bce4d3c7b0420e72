package model

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/fanbase-app/fanbase-api/security_helpers"
)

type Comments struct {
	ID        uint64    `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	Salt      string    `db:"object_salt"`
	PostID    uint64    `db:"post_id"`
	AuthorID  uint64    `db:"author_id"`
	Content   string    `db:"content"`
}

func (c Comments) ToFiberMap() fiber.Map {
	return fiber.Map{
		"id":         security_helpers.Encode(c.ID, COMMENTS_TYPE, c.Salt),
		"created_at": c.CreatedAt.Format(time.RFC3339),
		"content":    c.Content,
	}
}

var COMMENTS_TYPE = "Comments"
