package model

import (
	"time"
)

type Likes struct {
	PostID    uint64    `db:"post_id"`
	UserID    uint64    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

var LIKES_TYPE = "Likes"
