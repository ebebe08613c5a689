package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ovmelnikov/uslugi-backend/internal/models"
	"github.com/ovmelnikov/uslugi-backend/internal/pkg/apperror"
)

func TestCheckTransition_DisputedFreezesOrder(t *testing.T) {
	order := &models.Order{Status: models.OrderStatusDisputed}

	for _, to := range []string{
		models.OrderStatusDelivered,
		models.OrderStatusCompleted,
		models.OrderStatusCancelled,
	} {
		err := checkTransition(order, to)
		assert.Error(t, err)
		assert.True(t, apperror.IsInvalidState(err))
		assert.Contains(t, err.Error(), "открыт спор")
	}
}

func TestCheckTransition_TerminalStatusesImmutable(t *testing.T) {
	for _, from := range []string{models.OrderStatusCompleted, models.OrderStatusCancelled} {
		order := &models.Order{Status: from}
		err := checkTransition(order, models.OrderStatusInProgress)
		assert.Error(t, err)
		assert.True(t, apperror.IsInvalidState(err))
	}
}

func TestCheckTransition_AllowedAndForbiddenPaths(t *testing.T) {
	tests := []struct {
		from, to string
		ok       bool
	}{
		{models.OrderStatusInProgress, models.OrderStatusDelivered, true},
		{models.OrderStatusDelivered, models.OrderStatusCompleted, true},
		{models.OrderStatusDelivered, models.OrderStatusRevisionRequested, true},
		{models.OrderStatusRevisionRequested, models.OrderStatusDelivered, true},
		{models.OrderStatusPendingAcceptance, models.OrderStatusInProgress, true},
		{models.OrderStatusInProgress, models.OrderStatusCompleted, false},
		{models.OrderStatusPendingAcceptance, models.OrderStatusDelivered, false},
	}

	for _, tc := range tests {
		err := checkTransition(&models.Order{Status: tc.from}, tc.to)
		if tc.ok {
			assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
		} else {
			assert.Error(t, err, "%s -> %s", tc.from, tc.to)
			assert.True(t, apperror.IsInvalidState(err))
		}
	}
}

func TestTerminalStatusForAction(t *testing.T) {
	tests := []struct {
		action  string
		status  string
		changed bool
	}{
		{models.DisputeActionRefundClient, models.OrderStatusCancelled, true},
		{models.DisputeActionPayFreelancer, models.OrderStatusCompleted, true},
		{models.DisputeActionSplit, models.OrderStatusCompleted, true},
		{models.DisputeActionNone, "", false},
		{"", "", false},
	}

	for _, tc := range tests {
		status, changed := terminalStatusForAction(tc.action)
		assert.Equal(t, tc.changed, changed, "action %q", tc.action)
		assert.Equal(t, tc.status, status, "action %q", tc.action)
	}
}

func TestCheckDisputeOpen_ActiveDisputeBlocks(t *testing.T) {
	order := &models.Order{Status: models.OrderStatusDisputed}

	err := checkDisputeOpen(order, true)
	assert.Error(t, err)
	code, ok := apperror.CodeOf(err)
	assert.True(t, ok)
	assert.Equal(t, apperror.ErrCodeDisputeAlreadyOpen, code)
}

func TestCheckDisputeOpen_DisputedOrderWithoutActiveDispute(t *testing.T) {
	// Спор разрешили без действия над заказом: заказ остался в disputed,
	// новый спор по нему должен открываться.
	order := &models.Order{Status: models.OrderStatusDisputed}

	assert.NoError(t, checkDisputeOpen(order, false))
}

func TestCheckDisputeOpen_TerminalOrderRejected(t *testing.T) {
	for _, status := range []string{models.OrderStatusCompleted, models.OrderStatusCancelled} {
		err := checkDisputeOpen(&models.Order{Status: status}, false)
		assert.Error(t, err)
		assert.True(t, apperror.IsInvalidState(err))
	}
}

func TestCheckDisputeOpen_ActiveOrderAllowed(t *testing.T) {
	for _, status := range []string{
		models.OrderStatusInProgress,
		models.OrderStatusDelivered,
		models.OrderStatusRevisionRequested,
	} {
		assert.NoError(t, checkDisputeOpen(&models.Order{Status: status}, false))
	}
}
