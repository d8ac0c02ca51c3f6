package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DealStatus string

const (
	DealProspect          DealStatus = "prospect"
	DealMeetingScheduled  DealStatus = "meeting_scheduled"
	DealPreSales          DealStatus = "pre_sales"
	DealProposalDelivered DealStatus = "proposal_delivered"
	DealNegotiation       DealStatus = "negotiation"
	DealWon               DealStatus = "won"
	DealLost              DealStatus = "lost"
	DealOnHold            DealStatus = "on_hold"
)

// Terminal: won/lost закрывают сделку окончательно.
func (s DealStatus) Terminal() bool {
	return s == DealWon || s == DealLost
}

func KnownDealStatus(s DealStatus) bool {
	switch s {
	case DealProspect, DealMeetingScheduled, DealPreSales,
		DealProposalDelivered, DealNegotiation,
		DealWon, DealLost, DealOnHold:
		return true
	}
	return false
}

type Deal struct {
	ID       int    `json:"id"`
	Number   string `json:"number"`
	Title    string `json:"title"`
	ClientID int    `json:"client_id"`
	OwnerID  int    `json:"owner_id"`

	Status DealStatus `json:"status"`
	// Зеркало статуса последней сметы; nil, пока сметы нет.
	EstimationStatus *EstimationStatus `json:"estimation_status,omitempty"`

	EstimatedValue decimal.Decimal     `json:"estimated_value"`
	ContractValue  decimal.NullDecimal `json:"contract_value"`

	Priority  string     `json:"priority"`
	UpdatedBy int        `json:"updated_by"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
