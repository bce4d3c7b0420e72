package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnitSubscriptionTransitions(t *testing.T) {
	active := Subscriptions{Status: SubscriptionStatusActive}

	require.True(t, active.CanTransitionTo(SubscriptionStatusCancelled))
	require.True(t, active.CanTransitionTo(SubscriptionStatusExpired))
	require.False(t, active.CanTransitionTo(SubscriptionStatusActive))

	t.Run("terminal statuses stay terminal", func(t *testing.T) {
		for _, status := range []string{SubscriptionStatusCancelled, SubscriptionStatusExpired} {
			sub := Subscriptions{Status: status}

			require.False(t, sub.CanTransitionTo(SubscriptionStatusActive))
			require.False(t, sub.CanTransitionTo(SubscriptionStatusCancelled))
			require.False(t, sub.CanTransitionTo(SubscriptionStatusExpired))
		}
	})
}

func TestUnitSubscriptionIsActive(t *testing.T) {
	require.True(t, Subscriptions{Status: SubscriptionStatusActive}.IsActive())
	require.False(t, Subscriptions{Status: SubscriptionStatusCancelled}.IsActive())
	require.False(t, Subscriptions{Status: SubscriptionStatusExpired}.IsActive())
	require.False(t, Subscriptions{}.IsActive())
}
