package model

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/fanbase-app/fanbase-api/security_helpers"
)

const (
	MediaTypeText  = "text"
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
	MediaTypeAudio = "audio"
)

type Posts struct {
	ID          uint64         `db:"id"`
	CreatedAt   time.Time      `db:"created_at"`
	Salt        string         `db:"object_salt"`
	CommunityID uint64         `db:"community_id"`
	AuthorID    uint64         `db:"author_id"`
	Title       sql.NullString `db:"title"`
	Content     sql.NullString `db:"content"`
	MediaURL    sql.NullString `db:"media_url"`
	MediaType   string         `db:"media_type"`
	IsPublic    bool           `db:"is_public"`
}

func (p Posts) ToFiberMap() fiber.Map {
	var mediaUrl *string = nil

	if p.MediaURL.Valid {
		mediaUrl = &p.MediaURL.String
	}

	return fiber.Map{
		"id":         security_helpers.Encode(p.ID, POSTS_TYPE, p.Salt),
		"created_at": p.CreatedAt.Format(time.RFC3339),
		"title":      p.Title.String,
		"content":    p.Content.String,
		"media_url":  mediaUrl,
		"media_type": p.MediaType,
		"is_public":  p.IsPublic,
	}
}

var POSTS_TYPE = "Posts"
