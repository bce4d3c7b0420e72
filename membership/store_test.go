package membership

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fanbase-app/fanbase-api/db/fanbase_db/model"
)

const findSubscriptionQuery = "SELECT * FROM subscriptions WHERE user_id = ? AND community_id = ? LIMIT 1"

var subscriptionColumns = []string{"id", "created_at", "updated_at", "object_salt", "user_id", "community_id", "status", "current_period_end"}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { mockDb.Close() })

	return NewStore(sqlx.NewDb(mockDb, "sqlmock")), mock
}

func subscriptionRow(id uint64, userID uint64, communityID uint64, status string) *sqlmock.Rows {
	return sqlmock.NewRows(subscriptionColumns).
		AddRow(id, time.Now(), nil, "salt", userID, communityID, status, nil)
}

func noSubscriptionRow() *sqlmock.Rows {
	return sqlmock.NewRows(subscriptionColumns)
}

func TestSubscribeReturnsExistingActiveRow(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(findSubscriptionQuery)).
		WithArgs(uint64(9), uint64(7)).
		WillReturnRows(subscriptionRow(1, 9, 7, model.SubscriptionStatusActive))

	sub, err := store.Subscribe(context.Background(), 9, 7)

	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, uint64(1), sub.ID)
	assert.True(t, sub.IsActive())

	// No INSERT and no UPDATE, joining twice is a read.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscribeReactivatesTerminalRow(t *testing.T) {
	for _, status := range []string{model.SubscriptionStatusCancelled, model.SubscriptionStatusExpired} {
		t.Run(status, func(t *testing.T) {
			store, mock := newMockStore(t)

			mock.ExpectQuery(regexp.QuoteMeta(findSubscriptionQuery)).
				WithArgs(uint64(9), uint64(7)).
				WillReturnRows(subscriptionRow(1, 9, 7, status))

			mock.ExpectExec(regexp.QuoteMeta("UPDATE subscriptions SET status = ?, current_period_end = NULL, updated_at = ? WHERE id = ?")).
				WithArgs(model.SubscriptionStatusActive, sqlmock.AnyArg(), uint64(1)).
				WillReturnResult(sqlmock.NewResult(0, 1))

			mock.ExpectQuery(regexp.QuoteMeta(findSubscriptionQuery)).
				WithArgs(uint64(9), uint64(7)).
				WillReturnRows(subscriptionRow(1, 9, 7, model.SubscriptionStatusActive))

			sub, err := store.Subscribe(context.Background(), 9, 7)

			require.NoError(t, err)
			require.NotNil(t, sub)
			assert.Equal(t, uint64(1), sub.ID)
			assert.True(t, sub.IsActive())

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSubscribeInsertsWhenMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(findSubscriptionQuery)).
		WithArgs(uint64(9), uint64(7)).
		WillReturnRows(noSubscriptionRow())

	mock.ExpectExec("INSERT INTO subscriptions").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), uint64(9), uint64(7), model.SubscriptionStatusActive).
		WillReturnResult(sqlmock.NewResult(5, 1))

	mock.ExpectQuery(regexp.QuoteMeta(findSubscriptionQuery)).
		WithArgs(uint64(9), uint64(7)).
		WillReturnRows(subscriptionRow(5, 9, 7, model.SubscriptionStatusActive))

	sub, err := store.Subscribe(context.Background(), 9, 7)

	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, uint64(5), sub.ID)
	assert.True(t, sub.IsActive())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscribeLosesInsertRace(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(findSubscriptionQuery)).
		WithArgs(uint64(9), uint64(7)).
		WillReturnRows(noSubscriptionRow())

	mock.ExpectExec("INSERT INTO subscriptions").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '9-7' for key 'uniq_subscriptions_user_community'"))

	mock.ExpectQuery(regexp.QuoteMeta(findSubscriptionQuery)).
		WithArgs(uint64(9), uint64(7)).
		WillReturnRows(subscriptionRow(5, 9, 7, model.SubscriptionStatusActive))

	sub, err := store.Subscribe(context.Background(), 9, 7)

	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, uint64(5), sub.ID)
	assert.True(t, sub.IsActive())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelMissingSubscription(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(findSubscriptionQuery)).
		WithArgs(uint64(9), uint64(7)).
		WillReturnRows(noSubscriptionRow())

	_, err := store.Cancel(context.Background(), 9, 7)

	require.ErrorIs(t, err, ErrNotSubscribed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelActiveSubscription(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(findSubscriptionQuery)).
		WithArgs(uint64(9), uint64(7)).
		WillReturnRows(subscriptionRow(3, 9, 7, model.SubscriptionStatusActive))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE subscriptions SET status = ?, updated_at = ? WHERE id = ? AND status = ?")).
		WithArgs(model.SubscriptionStatusCancelled, sqlmock.AnyArg(), uint64(3), model.SubscriptionStatusActive).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(regexp.QuoteMeta(findSubscriptionQuery)).
		WithArgs(uint64(9), uint64(7)).
		WillReturnRows(subscriptionRow(3, 9, 7, model.SubscriptionStatusCancelled))

	sub, err := store.Cancel(context.Background(), 9, 7)

	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, model.SubscriptionStatusCancelled, sub.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelTerminalIsNoOp(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(findSubscriptionQuery)).
		WithArgs(uint64(9), uint64(7)).
		WillReturnRows(subscriptionRow(3, 9, 7, model.SubscriptionStatusExpired))

	sub, err := store.Cancel(context.Background(), 9, 7)

	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, model.SubscriptionStatusExpired, sub.Status)

	// Terminal rows are never written to.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpireDue(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE subscriptions SET status = ?, updated_at = ? WHERE status = ? AND current_period_end IS NOT NULL AND current_period_end < ?")).
		WithArgs(model.SubscriptionStatusExpired, sqlmock.AnyArg(), model.SubscriptionStatusActive, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	expired, err := store.ExpireDue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), expired)

	assert.NoError(t, mock.ExpectationsWereMet())
}
