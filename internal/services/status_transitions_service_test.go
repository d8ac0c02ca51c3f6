package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealdesk/internal/models"
)

func dealIn(status models.DealStatus) *models.Deal {
	return &models.Deal{ID: 1, Number: "PRJ-202608-0001", Status: status}
}

func TestValidateTransition_ForwardChain(t *testing.T) {
	steps := []struct {
		from, to models.DealStatus
	}{
		{models.DealProspect, models.DealMeetingScheduled},
		{models.DealMeetingScheduled, models.DealPreSales},
		{models.DealProposalDelivered, models.DealNegotiation},
		{models.DealNegotiation, models.DealWon},
		{models.DealNegotiation, models.DealLost},
		{models.DealNegotiation, models.DealOnHold},
	}
	for _, s := range steps {
		t.Run(string(s.from)+"_to_"+string(s.to), func(t *testing.T) {
			assert.NoError(t, ValidateTransition(dealIn(s.from), s.to))
		})
	}
}

func TestValidateTransition_UnknownStatus(t *testing.T) {
	err := ValidateTransition(dealIn(models.DealProspect), "archived")
	require.Error(t, err)
	assert.True(t, IsRuleError(err))
}

func TestValidateTransition_ProspectCannotSkipToNegotiation(t *testing.T) {
	err := ValidateTransition(dealIn(models.DealProspect), models.DealNegotiation)
	require.Error(t, err)
	assert.True(t, IsRuleError(err))
	// остальные прыжки из prospect не запрещены
	assert.NoError(t, ValidateTransition(dealIn(models.DealProspect), models.DealPreSales))
}

func TestValidateTransition_ProposalNeedsApprovedEstimation(t *testing.T) {
	t.Run("no estimation yet", func(t *testing.T) {
		err := ValidateTransition(dealIn(models.DealPreSales), models.DealProposalDelivered)
		require.Error(t, err)
		assert.True(t, IsRuleError(err))
	})

	t.Run("draft estimation", func(t *testing.T) {
		d := dealIn(models.DealPreSales)
		st := models.EstimationDraft
		d.EstimationStatus = &st
		assert.Error(t, ValidateTransition(d, models.DealProposalDelivered))
	})

	t.Run("pending discount", func(t *testing.T) {
		d := dealIn(models.DealPreSales)
		st := models.EstimationPendingDiscount
		d.EstimationStatus = &st
		assert.Error(t, ValidateTransition(d, models.DealProposalDelivered))
	})

	t.Run("approved", func(t *testing.T) {
		d := dealIn(models.DealPreSales)
		st := models.EstimationApproved
		d.EstimationStatus = &st
		assert.NoError(t, ValidateTransition(d, models.DealProposalDelivered))
	})

	t.Run("discount approved counts as approved", func(t *testing.T) {
		d := dealIn(models.DealPreSales)
		st := models.EstimationDiscountApproved
		d.EstimationStatus = &st
		assert.NoError(t, ValidateTransition(d, models.DealProposalDelivered))
	})

	t.Run("discount rejected does not", func(t *testing.T) {
		d := dealIn(models.DealPreSales)
		st := models.EstimationDiscountRejected
		d.EstimationStatus = &st
		assert.Error(t, ValidateTransition(d, models.DealProposalDelivered))
	})
}

func TestValidateTransition_TerminalStatesAreFinal(t *testing.T) {
	targets := []models.DealStatus{
		models.DealProspect, models.DealMeetingScheduled, models.DealPreSales,
		models.DealProposalDelivered, models.DealNegotiation, models.DealOnHold,
		models.DealWon, models.DealLost,
	}
	for _, from := range []models.DealStatus{models.DealWon, models.DealLost} {
		for _, to := range targets {
			err := ValidateTransition(dealIn(from), to)
			require.Errorf(t, err, "%s -> %s must be denied", from, to)
			assert.True(t, IsRuleError(err))
		}
	}
}

func TestValidateTransition_BackwardAndHoldMovesAllowed(t *testing.T) {
	// явного запрета нет — значит разрешено
	assert.NoError(t, ValidateTransition(dealIn(models.DealNegotiation), models.DealPreSales))
	assert.NoError(t, ValidateTransition(dealIn(models.DealOnHold), models.DealNegotiation))
	assert.NoError(t, ValidateTransition(dealIn(models.DealProspect), models.DealOnHold))
	assert.NoError(t, ValidateTransition(dealIn(models.DealProposalDelivered), models.DealPreSales))
}
