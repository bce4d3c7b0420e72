package model

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/fanbase-app/fanbase-api/security_helpers"
)

const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusExpired   = "expired"
)

type Subscriptions struct {
	ID               uint64       `db:"id"`
	CreatedAt        time.Time    `db:"created_at"`
	UpdatedAt        sql.NullTime `db:"updated_at"`
	Salt             string       `db:"object_salt"`
	UserID           uint64       `db:"user_id"`
	CommunityID      uint64       `db:"community_id"`
	Status           string       `db:"status"`
	CurrentPeriodEnd sql.NullTime `db:"current_period_end"`
}

func (s Subscriptions) IsActive() bool {
	return s.Status == SubscriptionStatusActive
}

// Cancelled and expired are terminal. Reactivation goes through the join
// path, which resets the row in place rather than transitioning it.
func (s Subscriptions) CanTransitionTo(status string) bool {
	if s.Status != SubscriptionStatusActive {
		return false
	}

	return status == SubscriptionStatusCancelled || status == SubscriptionStatusExpired
}

func (s Subscriptions) ToFiberMap() fiber.Map {
	var currentPeriodEnd *string = nil

	if s.CurrentPeriodEnd.Valid {
		e := s.CurrentPeriodEnd.Time.Format(time.RFC3339)
		currentPeriodEnd = &e
	}

	return fiber.Map{
		"id":                 security_helpers.Encode(s.ID, SUBSCRIPTIONS_TYPE, s.Salt),
		"created_at":         s.CreatedAt.Format(time.RFC3339),
		"status":             s.Status,
		"current_period_end": currentPeriodEnd,
	}
}

var SUBSCRIPTIONS_TYPE = "Subscriptions"
