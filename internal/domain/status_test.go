package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition_HappyPath(t *testing.T) {
	chain := []OrderStatus{
		StatusPendingPayment,
		StatusPaid,
		StatusProcessing,
		StatusShipping,
		StatusCompleted,
	}
	for i := 0; i < len(chain)-1; i++ {
		assert.True(t, CanTransition(chain[i], chain[i+1]),
			"%s -> %s should be legal", chain[i], chain[i+1])
	}
}

func TestCanTransition_NoSkipping(t *testing.T) {
	assert.False(t, CanTransition(StatusPendingPayment, StatusCompleted))
	assert.False(t, CanTransition(StatusPendingPayment, StatusShipping))
	assert.False(t, CanTransition(StatusPaid, StatusShipping))
}

func TestCanTransition_NoCancelOnceShipping(t *testing.T) {
	assert.False(t, CanTransition(StatusShipping, StatusCancelledByAdmin))
	assert.False(t, CanTransition(StatusShipping, StatusCancelledByUser))
}

func TestCanTransition_TerminalStatesAreDeadEnds(t *testing.T) {
	terminals := []OrderStatus{
		StatusCompleted,
		StatusCancelledByUser,
		StatusCancelledByAdmin,
		StatusExpired,
	}
	targets := []OrderStatus{
		StatusPendingPayment, StatusPaid, StatusProcessing,
		StatusShipping, StatusCompleted, StatusCancelledByUser,
		StatusCancelledByAdmin, StatusExpired,
	}
	for _, from := range terminals {
		assert.True(t, from.IsTerminal())
		for _, to := range targets {
			assert.False(t, CanTransition(from, to), "%s -> %s must be illegal", from, to)
		}
	}
}

func TestActorAllowed_CustomerOnlyCancelsOwnPending(t *testing.T) {
	assert.True(t, ActorAllowed(ActorCustomer, StatusCancelledByUser))
	assert.False(t, ActorAllowed(ActorCustomer, StatusCancelledByAdmin))
	assert.False(t, ActorAllowed(ActorCustomer, StatusPaid))
	assert.False(t, ActorAllowed(ActorCustomer, StatusCompleted))
}

func TestActorAllowed_AdminCannotMarkPaid(t *testing.T) {
	assert.False(t, ActorAllowed(ActorAdmin, StatusPaid))
	assert.False(t, ActorAllowed(ActorAdmin, StatusExpired))
	assert.True(t, ActorAllowed(ActorAdmin, StatusProcessing))
	assert.True(t, ActorAllowed(ActorAdmin, StatusCancelledByAdmin))
}

func TestActorAllowed_SystemOwnsPaymentAndExpiry(t *testing.T) {
	assert.True(t, ActorAllowed(ActorSystem, StatusPaid))
	assert.True(t, ActorAllowed(ActorSystem, StatusExpired))
	assert.False(t, ActorAllowed(ActorSystem, StatusCancelledByAdmin))
}

func TestReleasesStock(t *testing.T) {
	assert.True(t, StatusCancelledByUser.ReleasesStock())
	assert.True(t, StatusCancelledByAdmin.ReleasesStock())
	assert.True(t, StatusExpired.ReleasesStock())
	assert.False(t, StatusCompleted.ReleasesStock())
	assert.False(t, StatusPaid.ReleasesStock())
}

func TestParseStatus_Canonical(t *testing.T) {
	s, err := ParseStatus("PAID")
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, s)
}

func TestParseStatus_Aliases(t *testing.T) {
	cases := map[string]OrderStatus{
		"PENDING":        StatusPendingPayment,
		"pending":        StatusPendingPayment,
		"CANCELLED_AUTO": StatusExpired,
		"SHIPPED":        StatusShipping,
		"DELIVERED":      StatusCompleted,
		" processing ":   StatusProcessing,
	}
	for raw, want := range cases {
		s, err := ParseStatus(raw)
		require.NoError(t, err, "parsing %q", raw)
		assert.Equal(t, want, s)
	}
}

func TestParseStatus_Unknown(t *testing.T) {
	_, err := ParseStatus("TELEPORTED")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}
