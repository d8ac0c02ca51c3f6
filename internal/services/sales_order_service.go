package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"dealdesk/internal/authz"
	"dealdesk/internal/models"
	"dealdesk/internal/notify"
	"dealdesk/internal/pdf"
	"dealdesk/internal/repositories"
)

// Финализация сделки: проверки -> расчёт стоимости -> одна транзакция
// (заказ + won + журнал) -> боковые эффекты, которые уже ничего не откатывают.
type SalesOrderService struct {
	Orders      repositories.SalesOrderRepository
	Deals       repositories.DealRepository
	Estimations repositories.EstimationRepository
	Notifier    notify.Notifier
	PDFGen      pdf.Generator // может быть nil — тогда без документа
}

func NewSalesOrderService(
	orders repositories.SalesOrderRepository,
	deals repositories.DealRepository,
	estimations repositories.EstimationRepository,
	notifier notify.Notifier,
	pdfGen pdf.Generator,
) *SalesOrderService {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &SalesOrderService{Orders: orders, Deals: deals, Estimations: estimations, Notifier: notifier, PDFGen: pdfGen}
}

func (s *SalesOrderService) FinalizeAsWon(dealID int, poNumber string, orderDate time.Time, p authz.Principal) (*models.SalesOrder, error) {
	deal, err := s.Deals.GetByID(dealID)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, ErrNotFound
	}
	if !p.CanTouchDeal(deal.OwnerID) {
		return nil, ErrForbidden
	}
	if deal.Status == models.DealWon {
		return nil, fmt.Errorf("%w: already won", ErrConflict)
	}
	if deal.Status != models.DealProposalDelivered {
		return nil, fmt.Errorf("%w: only proposal-delivered deals can be won", ErrConflict)
	}
	if strings.TrimSpace(poNumber) == "" {
		return nil, ruleErr("po_number is required")
	}
	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	value, err := s.contractValue(deal)
	if err != nil {
		return nil, err
	}
	if value.Sign() <= 0 {
		return nil, ruleErr("contract value must be positive")
	}

	now := time.Now()
	prefix := OrderNumberPrefix(now)
	last, err := s.Orders.LastNumber(prefix)
	if err != nil {
		return nil, err
	}
	seq := NextOrderSequence(last)

	// Коллизию номера ловит уникальный индекс; на неё отвечаем следующим
	// значением последовательности, в пределах бюджета.
	var order *models.SalesOrder
	for attempt := 0; ; attempt++ {
		if attempt >= NumberRetryBudget {
			return nil, fmt.Errorf("order number allocation exhausted after %d attempts", NumberRetryBudget)
		}
		order = &models.SalesOrder{
			Number:        OrderNumber(now, seq),
			DealID:        deal.ID,
			PONumber:      strings.TrimSpace(poNumber),
			OrderDate:     orderDate,
			ContractValue: value,
			CreatedBy:     p.UserID,
			CreatedAt:     now,
		}
		entry := &models.ActivityLog{
			DealID:      deal.ID,
			Description: fmt.Sprintf("won: sales order %s, contract value %s", order.Number, value.String()),
			OldStatus:   string(deal.Status),
			NewStatus:   string(models.DealWon),
			ActorID:     p.UserID,
			CreatedAt:   now,
		}
		ok, err := s.Orders.Finalize(order, deal, entry)
		if errors.Is(err, repositories.ErrDuplicate) {
			seq++
			continue
		}
		if err != nil {
			return nil, err
		}
		if !ok {
			// Сделка успела уйти из proposal_delivered — повторная подача.
			return nil, fmt.Errorf("%w: deal status changed", ErrConflict)
		}
		break
	}

	// Дальше только best-effort: доставка и документ не откатывают закрытие.
	_ = s.Notifier.Notify(notify.Event{
		Kind:    notify.KindDealWon,
		DealID:  deal.ID,
		Message: fmt.Sprintf("deal %s won, order %s, contract value %s", deal.Number, order.Number, value.String()),
	})
	s.attachDocument(order, deal)

	return order, nil
}

// contractValue: последняя одобренная смета, иначе сохранённые на сделке цифры.
func (s *SalesOrderService) contractValue(deal *models.Deal) (decimal.Decimal, error) {
	est, err := s.Estimations.LatestByDeal(deal.ID)
	if err != nil {
		return decimal.Zero, err
	}
	if est != nil && est.Status.ApprovedForProposal() {
		discount := decimal.Zero
		if est.ApprovedDiscount.Valid {
			discount = est.ApprovedDiscount.Decimal
		}
		breakdown := ComputeContractValue(est.Items, discount, TaxRatePct).Rounded()
		return breakdown.GrandTotal, nil
	}
	if deal.ContractValue.Valid {
		return deal.ContractValue.Decimal, nil
	}
	return deal.EstimatedValue, nil
}

func (s *SalesOrderService) attachDocument(order *models.SalesOrder, deal *models.Deal) {
	if s.PDFGen == nil {
		return
	}
	relPath, err := s.PDFGen.GenerateOrderConfirmation(pdf.OrderData{
		OrderNumber:   order.Number,
		DealNumber:    deal.Number,
		DealTitle:     deal.Title,
		PONumber:      order.PONumber,
		ContractValue: order.ContractValue.StringFixed(2),
		OrderDate:     order.OrderDate,
	})
	if err != nil {
		log.Printf("[order][%s] warning: pdf generation failed: %v", order.Number, err)
		return
	}
	if err := s.Orders.SetDocumentPath(order.ID, relPath); err != nil {
		log.Printf("[order][%s] warning: store document path failed: %v", order.Number, err)
		return
	}
	order.DocumentPath = &relPath
}

func (s *SalesOrderService) GetByID(id int, p authz.Principal) (*models.SalesOrder, error) {
	order, err := s.Orders.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	deal, err := s.Deals.GetByID(order.DealID)
	if err != nil {
		return nil, err
	}
	if deal != nil && !p.CanTouchDeal(deal.OwnerID) && !p.Roles.Has(authz.RoleAudit) {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *SalesOrderService) GetByDealID(dealID int, p authz.Principal) (*models.SalesOrder, error) {
	deal, err := s.Deals.GetByID(dealID)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, ErrNotFound
	}
	if !p.CanTouchDeal(deal.OwnerID) && !p.Roles.Has(authz.RoleAudit) {
		return nil, ErrForbidden
	}
	order, err := s.Orders.GetByDealID(dealID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	return order, nil
}
