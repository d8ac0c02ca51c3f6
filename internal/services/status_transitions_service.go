package services

import (
	"dealdesk/internal/models"
)

// Воронка сделки:
// prospect -> meeting_scheduled -> pre_sales -> proposal_delivered -> negotiation -> won/lost/on_hold.
// Правила проверяются по порядку; всё, что не запрещено явно, разрешено
// (возвраты назад и выход из on_hold в том числе).

// ValidateTransition — чистая функция, без I/O: снапшот сделки приходит
// целиком, решение allow/deny по нему.
func ValidateTransition(deal *models.Deal, to models.DealStatus) error {
	if !models.KnownDealStatus(to) {
		return ruleErr("invalid status")
	}
	if deal.Status == models.DealProspect && to == models.DealNegotiation {
		return ruleErr("cannot skip to negotiation from prospect")
	}
	if deal.Status == models.DealPreSales && to == models.DealProposalDelivered {
		if deal.EstimationStatus == nil || !deal.EstimationStatus.ApprovedForProposal() {
			return ruleErr("cannot issue proposal before estimate is approved")
		}
	}
	if deal.Status.Terminal() {
		return ruleErr("cannot reactivate a closed deal")
	}
	return nil
}
