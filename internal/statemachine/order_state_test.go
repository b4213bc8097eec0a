package statemachine

import (
	"errors"
	"testing"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestAdminHappyPath(t *testing.T) {
	path := []models.OrderStatus{
		models.StatusProcessing, models.StatusConfirmed, models.StatusPreparing,
		models.StatusOutForDelivery, models.StatusDelivered,
	}
	for i := 0; i < len(path)-1; i++ {
		assert.NoError(t, CanTransition(path[i], path[i+1], ActorAdmin), "%s -> %s", path[i], path[i+1])
	}
}

func TestCancellationWindow(t *testing.T) {
	for _, status := range models.OrderStatuses {
		for _, actor := range []Actor{ActorAdmin, ActorCustomer} {
			err := CanTransition(status, models.StatusCancelled, actor)
			if status == models.StatusProcessing || status == models.StatusConfirmed {
				assert.NoError(t, err, "%s may cancel from %s", actor, status)
			} else {
				assert.Error(t, err, "%s must not cancel from %s", actor, status)
			}
		}
	}
}

func TestCustomerCannotAdvance(t *testing.T) {
	assert.Error(t, CanTransition(models.StatusProcessing, models.StatusConfirmed, ActorCustomer))
	assert.Error(t, CanTransition(models.StatusOutForDelivery, models.StatusDelivered, ActorCustomer))
}

func TestIllegalJumpsAndTerminalStates(t *testing.T) {
	err := CanTransition(models.StatusProcessing, models.StatusDelivered, ActorAdmin)
	var te *TransitionError
	assert.True(t, errors.As(err, &te))
	assert.Contains(t, err.Error(), "confirmed, cancelled")

	assert.Error(t, CanTransition(models.StatusDelivered, models.StatusProcessing, ActorAdmin))
	assert.Error(t, CanTransition(models.StatusCancelled, models.StatusProcessing, ActorAdmin))
	assert.Error(t, CanTransition(models.StatusProcessing, models.StatusProcessing, ActorAdmin))

	assert.True(t, IsTerminal(models.StatusDelivered))
	assert.True(t, IsTerminal(models.StatusCancelled))
	assert.False(t, IsTerminal(models.StatusPreparing))
}
