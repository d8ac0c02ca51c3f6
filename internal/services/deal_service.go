package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"dealdesk/internal/authz"
	"dealdesk/internal/models"
	"dealdesk/internal/repositories"
)

type DealService struct {
	Repo     repositories.DealRepository
	Activity repositories.ActivityRepository
}

func NewDealService(repo repositories.DealRepository, activity repositories.ActivityRepository) *DealService {
	return &DealService{Repo: repo, Activity: activity}
}

// Create заводит сделку в начале воронки. Автономер — PRJ-поток со
// случайным суффиксом и бюджетом перегенераций; явный номер при коллизии
// возвращает ErrDuplicateNumber без ретраев: клиент просил именно его.
func (s *DealService) Create(deal *models.Deal, p authz.Principal) error {
	if strings.TrimSpace(deal.Title) == "" {
		return ruleErr("title is required")
	}
	if deal.ClientID == 0 {
		return ruleErr("client_id is required")
	}
	deal.OwnerID = p.UserID
	deal.UpdatedBy = p.UserID
	if deal.Status == "" {
		deal.Status = models.DealProspect
	}
	if !models.KnownDealStatus(deal.Status) {
		return ruleErr("invalid status")
	}
	if deal.CreatedAt.IsZero() {
		deal.CreatedAt = time.Now()
	}

	if deal.Number != "" {
		id, err := s.Repo.Create(deal)
		if errors.Is(err, repositories.ErrDuplicate) {
			return ErrDuplicateNumber
		}
		if err != nil {
			return err
		}
		deal.ID = int(id)
	} else {
		var lastErr error
		for attempt := 0; attempt < NumberRetryBudget; attempt++ {
			number, err := ProjectNumber(time.Now())
			if err != nil {
				return err
			}
			deal.Number = number
			id, err := s.Repo.Create(deal)
			if errors.Is(err, repositories.ErrDuplicate) {
				lastErr = err
				continue
			}
			if err != nil {
				return err
			}
			deal.ID = int(id)
			lastErr = nil
			break
		}
		if lastErr != nil {
			return fmt.Errorf("project number allocation exhausted after %d attempts: %w", NumberRetryBudget, lastErr)
		}
	}

	if err := s.Activity.Append(&models.ActivityLog{
		DealID:      deal.ID,
		Description: fmt.Sprintf("deal %s created", deal.Number),
		NewStatus:   string(deal.Status),
		ActorID:     p.UserID,
		CreatedAt:   time.Now(),
	}); err != nil {
		log.Printf("[deal][create] warning: activity append failed for deal=%d: %v", deal.ID, err)
	}
	return nil
}

// MoveStage — перевод по воронке: загрузка -> авторизация -> валидация ->
// атомарный UPDATE со строкой журнала. Проигранная гонка отдаёт ErrConflict.
func (s *DealService) MoveStage(dealID int, to models.DealStatus, p authz.Principal) (*models.Deal, error) {
	deal, err := s.Repo.GetByID(dealID)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, ErrNotFound
	}
	if !p.CanTouchDeal(deal.OwnerID) {
		return nil, ErrForbidden
	}
	if err := ValidateTransition(deal, to); err != nil {
		return nil, err
	}

	entry := &models.ActivityLog{
		DealID:      deal.ID,
		Description: fmt.Sprintf("status %s -> %s", deal.Status, to),
		OldStatus:   string(deal.Status),
		NewStatus:   string(to),
		ActorID:     p.UserID,
		CreatedAt:   time.Now(),
	}
	ok, err := s.Repo.MoveStatus(deal.ID, deal.Status, to, entry)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	return s.Repo.GetByID(deal.ID)
}

func (s *DealService) GetByID(id int, p authz.Principal) (*models.Deal, error) {
	deal, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, ErrNotFound
	}
	if !p.CanTouchDeal(deal.OwnerID) && !p.Roles.Has(authz.RoleAudit) {
		return nil, ErrForbidden
	}
	return deal, nil
}

func (s *DealService) Update(deal *models.Deal, p authz.Principal) error {
	current, err := s.Repo.GetByID(deal.ID)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrNotFound
	}
	if !p.CanTouchDeal(current.OwnerID) {
		return ErrForbidden
	}
	if !p.IsElevated() {
		deal.OwnerID = current.OwnerID
	}
	deal.UpdatedBy = p.UserID
	return s.Repo.Update(deal)
}

func (s *DealService) Delete(id int, p authz.Principal) error {
	deal, err := s.Repo.GetByID(id)
	if err != nil {
		return err
	}
	if deal == nil {
		return ErrNotFound
	}
	if !p.CanTouchDeal(deal.OwnerID) {
		return ErrForbidden
	}
	return s.Repo.Delete(id)
}

func (s *DealService) ListPaginated(p authz.Principal, limit, offset int) ([]*models.Deal, error) {
	if p.IsElevated() || p.Roles.Has(authz.RoleAudit) {
		return s.Repo.ListPaginated(limit, offset)
	}
	return s.Repo.ListByOwner(p.UserID, limit, offset)
}

func (s *DealService) ListByStatus(status models.DealStatus, p authz.Principal, limit, offset int) ([]*models.Deal, error) {
	if !models.KnownDealStatus(status) {
		return nil, ruleErr("invalid status")
	}
	ownerID := 0
	if !p.IsElevated() && !p.Roles.Has(authz.RoleAudit) {
		ownerID = p.UserID
	}
	return s.Repo.ListByStatus(status, ownerID, limit, offset)
}

func (s *DealService) ActivityFeed(dealID int, p authz.Principal, limit, offset int) ([]*models.ActivityLog, error) {
	deal, err := s.Repo.GetByID(dealID)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, ErrNotFound
	}
	if !p.CanTouchDeal(deal.OwnerID) && !p.Roles.Has(authz.RoleAudit) {
		return nil, ErrForbidden
	}
	return s.Activity.ListByDeal(dealID, limit, offset)
}
