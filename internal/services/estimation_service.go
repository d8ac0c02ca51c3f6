package services

import (
	"time"

	"dealdesk/internal/authz"
	"dealdesk/internal/models"
	"dealdesk/internal/repositories"
)

type EstimationService struct {
	Repo     repositories.EstimationRepository
	DealRepo repositories.DealRepository
}

func NewEstimationService(repo repositories.EstimationRepository, dealRepo repositories.DealRepository) *EstimationService {
	return &EstimationService{Repo: repo, DealRepo: dealRepo}
}

// Create открывает новую версию сметы. Цены позиций замораживаются здесь:
// total_price считается один раз и дальше не пересчитывается.
func (s *EstimationService) Create(dealID int, items []models.EstimationItem, p authz.Principal) (*models.Estimation, error) {
	deal, err := s.DealRepo.GetByID(dealID)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, ErrNotFound
	}
	if !p.CanTouchDeal(deal.OwnerID) {
		return nil, ErrForbidden
	}
	if len(items) == 0 {
		return nil, ruleErr("estimation needs at least one line item")
	}
	for i := range items {
		it := &items[i]
		if it.Quantity.Sign() <= 0 || it.UnitPrice.Sign() < 0 {
			return nil, ruleErr("invalid line item")
		}
		it.TotalPrice = it.Quantity.Mul(it.UnitPrice)
	}

	version, err := s.Repo.NextVersion(dealID)
	if err != nil {
		return nil, err
	}
	est := &models.Estimation{
		DealID:    dealID,
		Version:   version,
		Status:    models.EstimationDraft,
		CreatedBy: p.UserID,
		CreatedAt: time.Now(),
		Items:     items,
	}
	// Репозиторий пишет смету, позиции и зеркало статуса на сделке
	// одной транзакцией.
	id, err := s.Repo.Create(est)
	if err != nil {
		return nil, err
	}
	est.ID = int(id)
	return est, nil
}

// Approve — обычное утверждение сметы руководителем (без скидочной ветки).
func (s *EstimationService) Approve(estimationID int, p authz.Principal) (*models.Estimation, error) {
	if !p.IsElevated() {
		return nil, ErrForbidden
	}
	est, err := s.Repo.GetByID(estimationID)
	if err != nil {
		return nil, err
	}
	if est == nil {
		return nil, ErrNotFound
	}
	if est.Status != models.EstimationDraft {
		return nil, ErrConflict
	}

	now := time.Now()
	est.Status = models.EstimationApproved
	est.DecidedBy = &p.UserID
	est.DecidedAt = &now
	ok, err := s.Repo.UpdateWorkflow(est, models.EstimationDraft)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	return est, nil
}

func (s *EstimationService) GetByID(id int, p authz.Principal) (*models.Estimation, error) {
	est, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if est == nil {
		return nil, ErrNotFound
	}
	deal, err := s.DealRepo.GetByID(est.DealID)
	if err != nil {
		return nil, err
	}
	if deal != nil && !p.CanTouchDeal(deal.OwnerID) && !p.Roles.Has(authz.RoleAudit) {
		return nil, ErrForbidden
	}
	return est, nil
}

func (s *EstimationService) LatestByDeal(dealID int, p authz.Principal) (*models.Estimation, error) {
	deal, err := s.DealRepo.GetByID(dealID)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, ErrNotFound
	}
	if !p.CanTouchDeal(deal.OwnerID) && !p.Roles.Has(authz.RoleAudit) {
		return nil, ErrForbidden
	}
	est, err := s.Repo.LatestByDeal(dealID)
	if err != nil {
		return nil, err
	}
	if est == nil {
		return nil, ErrNotFound
	}
	return est, nil
}
