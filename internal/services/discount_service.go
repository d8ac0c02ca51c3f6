package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"dealdesk/internal/authz"
	"dealdesk/internal/models"
	"dealdesk/internal/notify"
	"dealdesk/internal/repositories"
)

// Скидочный workflow на смете: request -> pending -> approved/rejected.
// Границы полномочий: requested <= authority_limit — согласование не нужно
// (жёсткий отказ, не автоаппрув); requested > max_discount_limit — нельзя
// даже с согласованием; ровно max_discount_limit — можно.
type DiscountService struct {
	Estimations repositories.EstimationRepository
	Policies    repositories.DiscountPolicyRepository
	Notifier    notify.Notifier
}

func NewDiscountService(
	estimations repositories.EstimationRepository,
	policies repositories.DiscountPolicyRepository,
	notifier notify.Notifier,
) *DiscountService {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &DiscountService{Estimations: estimations, Policies: policies, Notifier: notifier}
}

// bestPolicy выбирает среди ролей пользователя политику с наибольшим
// authority_limit.
func bestPolicy(policies []models.DiscountPolicy) *models.DiscountPolicy {
	var best *models.DiscountPolicy
	for i := range policies {
		p := &policies[i]
		if best == nil || p.AuthorityLimit.GreaterThan(best.AuthorityLimit) {
			best = p
		}
	}
	return best
}

func (s *DiscountService) RequestApproval(estimationID int, p authz.Principal, requestedPct decimal.Decimal) (*models.Estimation, error) {
	est, err := s.Estimations.GetByID(estimationID)
	if err != nil {
		return nil, err
	}
	if est == nil {
		return nil, ErrNotFound
	}
	if est.Status == models.EstimationPendingDiscount {
		return nil, ErrConflict
	}

	policies, err := s.Policies.ByRoles(p.Roles.Tags())
	if err != nil {
		return nil, err
	}
	policy := bestPolicy(policies)
	if policy == nil {
		return nil, ruleErr("no policy for your role")
	}

	if requestedPct.Sign() <= 0 || requestedPct.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return nil, ruleErr("requested discount out of range")
	}
	if requestedPct.LessThanOrEqual(policy.AuthorityLimit) {
		return nil, ruleErr("no approval needed; within your authority")
	}
	if requestedPct.GreaterThan(policy.MaxDiscountLimit) {
		return nil, ruleErr("exceeds maximum allowed discount for your role")
	}

	now := time.Now()
	from := est.Status
	est.Status = models.EstimationPendingDiscount
	est.RequestedDiscount = decimal.NewNullDecimal(requestedPct)
	est.RequestedBy = &p.UserID
	est.RequestedAt = &now
	est.DecidedBy = nil
	est.DecidedAt = nil
	ok, err := s.Estimations.UpdateWorkflow(est, from)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: estimation changed concurrently", ErrConflict)
	}

	_ = s.Notifier.Notify(notify.Event{
		Kind:    notify.KindDiscountRequested,
		DealID:  est.DealID,
		Message: fmt.Sprintf("discount %s%% requested on estimation v%d", requestedPct.String(), est.Version),
	})
	return est, nil
}

// Decide — решение по запросу. Только executive; только из pending.
func (s *DiscountService) Decide(estimationID int, p authz.Principal, approve bool) (*models.Estimation, error) {
	est, err := s.Estimations.GetByID(estimationID)
	if err != nil {
		return nil, err
	}
	if est == nil {
		return nil, ErrNotFound
	}
	if !p.IsExecutive() {
		return nil, ErrForbidden
	}
	if est.Status != models.EstimationPendingDiscount {
		return nil, fmt.Errorf("%w: not awaiting discount approval", ErrConflict)
	}

	now := time.Now()
	est.DecidedBy = &p.UserID
	est.DecidedAt = &now
	verdict := "rejected"
	if approve {
		est.Status = models.EstimationDiscountApproved
		est.ApprovedDiscount = est.RequestedDiscount
		verdict = "approved"
	} else {
		est.Status = models.EstimationDiscountRejected
		// approved_discount остаётся NULL
	}
	// Условный UPDATE по pending: из двух конкурентных решений выигрывает одно.
	ok, err := s.Estimations.UpdateWorkflow(est, models.EstimationPendingDiscount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: not awaiting discount approval", ErrConflict)
	}

	_ = s.Notifier.Notify(notify.Event{
		Kind:    notify.KindDiscountDecided,
		DealID:  est.DealID,
		Message: fmt.Sprintf("discount request on estimation v%d %s", est.Version, verdict),
	})
	return est, nil
}
