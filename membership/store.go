package membership

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fanbase-app/fanbase-api/db/fanbase_db/model"
)

var ErrNotSubscribed = errors.New("no subscription for this community")

// Store is the durable (user, community) -> subscription mapping. The
// schema carries a composite unique key on that pair, so two joins racing
// to insert leave exactly one row behind.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Find pushes both predicates into the WHERE clause. Fetching by user and
// scanning for the community in memory does not survive users with many
// subscriptions.
func (s *Store) Find(ctx context.Context, userID uint64, communityID uint64) (*model.Subscriptions, error) {
	sub := model.Subscriptions{}

	err := s.db.GetContext(ctx, &sub,
		"SELECT * FROM subscriptions WHERE user_id = ? AND community_id = ? LIMIT 1",
		userID, communityID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &sub, nil
}

// Subscribe is the find-or-create behind the join endpoint. Joining twice
// returns the same active row. A cancelled or expired row is reset to
// active in place; a second row for the pair is never inserted. When two
// requests race, the loser of the insert sees a duplicate key error and
// returns the winner's row.
func (s *Store) Subscribe(ctx context.Context, userID uint64, communityID uint64) (*model.Subscriptions, error) {
	sub, err := s.Find(ctx, userID, communityID)

	if err != nil {
		return nil, err
	}

	if sub != nil {
		if sub.IsActive() {
			return sub, nil
		}

		slog.Info("Reactivating subscription ✅",
			slog.Uint64("userId", userID),
			slog.Uint64("communityId", communityID))

		_, err = s.db.ExecContext(ctx,
			"UPDATE subscriptions SET status = ?, current_period_end = NULL, updated_at = ? WHERE id = ?",
			model.SubscriptionStatusActive, time.Now(), sub.ID)

		if err != nil {
			return nil, err
		}

		return s.Find(ctx, userID, communityID)
	}

	ic := `INSERT INTO subscriptions
	(created_at, object_salt, user_id, community_id, status)
	VALUES (?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, ic, time.Now(), uuid.New().String(), userID, communityID, model.SubscriptionStatusActive)

	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			slog.Info("Lost a join race, keeping the existing row 👀",
				slog.Uint64("userId", userID),
				slog.Uint64("communityId", communityID))

			return s.Find(ctx, userID, communityID)
		}

		return nil, err
	}

	return s.Find(ctx, userID, communityID)
}

// Cancel performs the active -> cancelled transition. Cancelling a row
// that is already terminal is a no-op returning the current row.
func (s *Store) Cancel(ctx context.Context, userID uint64, communityID uint64) (*model.Subscriptions, error) {
	sub, err := s.Find(ctx, userID, communityID)

	if err != nil {
		return nil, err
	}

	if sub == nil {
		return nil, ErrNotSubscribed
	}

	if !sub.CanTransitionTo(model.SubscriptionStatusCancelled) {
		return sub, nil
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE subscriptions SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		model.SubscriptionStatusCancelled, time.Now(), sub.ID, model.SubscriptionStatusActive)

	if err != nil {
		return nil, err
	}

	return s.Find(ctx, userID, communityID)
}

// ExpireDue flips active rows whose paid period has lapsed to expired.
// Rows without a period end never expire.
func (s *Store) ExpireDue(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE subscriptions SET status = ?, updated_at = ? WHERE status = ? AND current_period_end IS NOT NULL AND current_period_end < ?",
		model.SubscriptionStatusExpired, time.Now(), model.SubscriptionStatusActive, time.Now())

	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// ActiveSubscriberEmails feeds the new-post fan-out. The status filter
// lives in the query so cancelled fans never get mail.
func (s *Store) ActiveSubscriberEmails(ctx context.Context, communityID uint64) ([]string, error) {
	emails := []string{}

	q := `SELECT u.email
	      FROM subscriptions s
	      INNER JOIN users u ON u.id = s.user_id
	      WHERE s.community_id = ?
	      AND s.status = ?
	      AND u.email != ''`

	err := s.db.SelectContext(ctx, &emails, q, communityID, model.SubscriptionStatusActive)

	if err != nil {
		return nil, err
	}

	return emails, nil
}
