package handlers

import (
	"database/sql"
	"testing"
	"time"

	"github.com/fanbase-app/fanbase-api/db/fanbase_db/model"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostResponseTextPost(t *testing.T) {
	t.Setenv("AES_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("AES_IV", "fedcba9876543210")

	post := model.Posts{
		ID:        11,
		CreatedAt: time.Now(),
		Salt:      "post-salt",
		Title:     sql.NullString{String: "Studio diary", Valid: true},
		Content:   sql.NullString{String: "New mix is up.", Valid: true},
		MediaType: model.MediaTypeText,
		IsPublic:  true,
	}

	author := model.Users{
		ID:        3,
		Salt:      "user-salt",
		FirstName: sql.NullString{String: "Aurora", Valid: true},
	}

	response := PostResponse(post, &author, 5, 2, true)

	assert.Equal(t, "Studio diary", response["title"])
	assert.Equal(t, uint64(5), response["likes_count"])
	assert.Equal(t, uint64(2), response["comments_count"])
	assert.Equal(t, true, response["is_liked"])

	mapped, ok := response["author"].(fiber.Map)
	require.True(t, ok)
	assert.Equal(t, "Aurora", mapped["name"])
}

func TestPostResponseSignsImageUrl(t *testing.T) {
	t.Setenv("AES_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("AES_IV", "fedcba9876543210")
	t.Setenv("PRIVATE_FILES_URL", "https://files.example.com")
	t.Setenv("IMG_PROXY", "https://img.example.com")
	t.Setenv("IMGPROXY_KEY", "736563726574")
	t.Setenv("IMGPROXY_SALT", "73616c74")

	post := model.Posts{
		ID:        12,
		CreatedAt: time.Now(),
		Salt:      "post-salt",
		MediaURL:  sql.NullString{String: "uploads/cover.png", Valid: true},
		MediaType: model.MediaTypeImage,
	}

	response := PostResponse(post, nil, 0, 0, false)

	mediaUrl, ok := response["media_url"].(string)
	require.True(t, ok)
	assert.Contains(t, mediaUrl, "https://img.example.com/")
	assert.NotContains(t, mediaUrl, "uploads/cover.png")

	_, hasAuthor := response["author"]
	assert.False(t, hasAuthor)
}
