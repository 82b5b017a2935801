package dispatch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/healx-platform/healx-api/dispatch"
	"github.com/healx-platform/healx-api/models"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct {
		from, to models.EmergencyStatus
	}{
		{models.StatusPending, models.StatusAccepted},
		{models.StatusPending, models.StatusCancelled},
		{models.StatusAccepted, models.StatusArrived},
		{models.StatusAccepted, models.StatusCancelled},
		{models.StatusArrived, models.StatusInTransit},
		{models.StatusInTransit, models.StatusAtHospital},
		{models.StatusAtHospital, models.StatusCompleted},
		{models.StatusAtHospital, models.StatusCancelled},
	}
	for _, tc := range allowed {
		assert.True(t, dispatch.CanTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct {
		from, to models.EmergencyStatus
	}{
		{models.StatusPending, models.StatusArrived},
		{models.StatusPending, models.StatusCompleted},
		{models.StatusAccepted, models.StatusAtHospital},
		{models.StatusArrived, models.StatusAccepted},
		{models.StatusInTransit, models.StatusArrived},
		{models.StatusCompleted, models.StatusPending},
		{models.StatusCancelled, models.StatusAccepted},
		{models.StatusAccepted, models.StatusAccepted},
	}
	for _, tc := range denied {
		assert.False(t, dispatch.CanTransition(tc.from, tc.to), "%s -> %s should be denied", tc.from, tc.to)
	}
}

func TestValidateTransition(t *testing.T) {
	err := dispatch.ValidateTransition(models.StatusCompleted, models.StatusPending)
	assert.ErrorIs(t, err, dispatch.ErrTerminalStatus)

	err = dispatch.ValidateTransition(models.StatusPending, models.StatusArrived)
	assert.ErrorIs(t, err, dispatch.ErrInvalidTransition)

	err = dispatch.ValidateTransition(models.StatusPending, models.StatusAccepted)
	assert.NoError(t, err)
}
