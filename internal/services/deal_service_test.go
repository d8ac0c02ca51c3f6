package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealdesk/internal/authz"
	"dealdesk/internal/models"
)

func salesPrincipal(userID int) authz.Principal {
	return authz.Principal{UserID: userID, Roles: authz.NewRoleSet("sales")}
}

func managerPrincipal(userID int) authz.Principal {
	return authz.Principal{UserID: userID, Roles: authz.NewRoleSet("manager")}
}

func newDealService() (*DealService, *fakeDealRepo, *fakeActivityRepo) {
	deals := newFakeDealRepo()
	activity := &fakeActivityRepo{}
	deals.sink = activity
	return NewDealService(deals, activity), deals, activity
}

func seedDeal(repo *fakeDealRepo, owner int, status models.DealStatus) *models.Deal {
	return repo.put(&models.Deal{
		Number:         "PRJ-202608-1234",
		Title:          "CRM rollout",
		ClientID:       7,
		OwnerID:        owner,
		Status:         status,
		EstimatedValue: decimal.NewFromInt(500000),
	})
}

func TestDealCreate_AutoNumber(t *testing.T) {
	svc, deals, activity := newDealService()

	d := &models.Deal{Title: "New deal", ClientID: 3}
	require.NoError(t, svc.Create(d, salesPrincipal(10)))

	assert.Regexp(t, `^PRJ-\d{6}-\d{4}$`, d.Number)
	assert.Equal(t, models.DealProspect, d.Status)
	assert.Equal(t, 10, d.OwnerID)
	assert.NotZero(t, d.ID)

	stored, _ := deals.GetByID(d.ID)
	require.NotNil(t, stored)
	assert.Equal(t, d.Number, stored.Number)

	// запись в журнале о создании
	require.Len(t, activity.entries, 1)
	assert.Equal(t, d.ID, activity.entries[0].DealID)
	assert.Equal(t, string(models.DealProspect), activity.entries[0].NewStatus)
}

func TestDealCreate_Validation(t *testing.T) {
	svc, _, _ := newDealService()

	err := svc.Create(&models.Deal{ClientID: 3}, salesPrincipal(10))
	require.Error(t, err)
	assert.True(t, IsRuleError(err))

	err = svc.Create(&models.Deal{Title: "x"}, salesPrincipal(10))
	require.Error(t, err)
	assert.True(t, IsRuleError(err))

	err = svc.Create(&models.Deal{Title: "x", ClientID: 3, Status: "bogus"}, salesPrincipal(10))
	require.Error(t, err)
	assert.True(t, IsRuleError(err))
}

func TestDealCreate_SuppliedNumberCollision(t *testing.T) {
	svc, deals, _ := newDealService()
	seedDeal(deals, 10, models.DealProspect)

	err := svc.Create(&models.Deal{
		Title: "Dup", ClientID: 3, Number: "PRJ-202608-1234",
	}, salesPrincipal(10))
	assert.ErrorIs(t, err, ErrDuplicateNumber)
}

func TestDealCreate_ActivityFailureDoesNotFailCreate(t *testing.T) {
	svc, _, activity := newDealService()
	activity.failing = true

	d := &models.Deal{Title: "Best effort", ClientID: 3}
	assert.NoError(t, svc.Create(d, salesPrincipal(10)))
	assert.NotZero(t, d.ID)
}

func TestMoveStage_HappyPath(t *testing.T) {
	svc, deals, activity := newDealService()
	d := seedDeal(deals, 10, models.DealProspect)

	got, err := svc.MoveStage(d.ID, models.DealMeetingScheduled, salesPrincipal(10))
	require.NoError(t, err)
	assert.Equal(t, models.DealMeetingScheduled, got.Status)

	// переход и строка журнала пишутся вместе
	require.Len(t, activity.entries, 1)
	e := activity.entries[0]
	assert.Equal(t, string(models.DealProspect), e.OldStatus)
	assert.Equal(t, string(models.DealMeetingScheduled), e.NewStatus)
	assert.Equal(t, 10, e.ActorID)
}

func TestMoveStage_NotFound(t *testing.T) {
	svc, _, _ := newDealService()
	_, err := svc.MoveStage(404, models.DealPreSales, salesPrincipal(10))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMoveStage_ForbiddenForStranger(t *testing.T) {
	svc, deals, _ := newDealService()
	d := seedDeal(deals, 10, models.DealProspect)

	_, err := svc.MoveStage(d.ID, models.DealMeetingScheduled, salesPrincipal(99))
	assert.ErrorIs(t, err, ErrForbidden)

	// менеджер двигает чужую сделку
	_, err = svc.MoveStage(d.ID, models.DealMeetingScheduled, managerPrincipal(99))
	assert.NoError(t, err)
}

func TestMoveStage_RuleViolationsNotPersisted(t *testing.T) {
	svc, deals, activity := newDealService()
	d := seedDeal(deals, 10, models.DealProspect)

	_, err := svc.MoveStage(d.ID, models.DealNegotiation, salesPrincipal(10))
	require.Error(t, err)
	assert.True(t, IsRuleError(err))

	stored, _ := deals.GetByID(d.ID)
	assert.Equal(t, models.DealProspect, stored.Status)
	assert.Empty(t, activity.entries)
}

func TestMoveStage_LostRaceIsConflict(t *testing.T) {
	svc, deals, _ := newDealService()
	d := seedDeal(deals, 10, models.DealProspect)

	// конкурент вклинивается между чтением снапшота и условным UPDATE
	deals.beforeMove = func() {
		deals.beforeMove = nil
		ok, err := deals.MoveStatus(d.ID, models.DealProspect, models.DealOnHold, &models.ActivityLog{DealID: d.ID})
		require.NoError(t, err)
		require.True(t, ok)
	}

	_, err := svc.MoveStage(d.ID, models.DealMeetingScheduled, salesPrincipal(10))
	assert.ErrorIs(t, err, ErrConflict)

	stored, _ := deals.GetByID(d.ID)
	assert.Equal(t, models.DealOnHold, stored.Status, "concurrent move wins")
}

func TestDealGetByID_AuditCanRead(t *testing.T) {
	svc, deals, _ := newDealService()
	d := seedDeal(deals, 10, models.DealProspect)

	audit := authz.Principal{UserID: 50, Roles: authz.NewRoleSet("audit")}
	got, err := svc.GetByID(d.ID, audit)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)

	// но посторонний sales — нет
	_, err = svc.GetByID(d.ID, salesPrincipal(99))
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDealUpdate_OwnerFrozenForPlainSales(t *testing.T) {
	svc, deals, _ := newDealService()
	d := seedDeal(deals, 10, models.DealProspect)

	upd := *d
	upd.OwnerID = 99
	upd.Title = "renamed"
	require.NoError(t, svc.Update(&upd, salesPrincipal(10)))

	stored, _ := deals.GetByID(d.ID)
	assert.Equal(t, 10, stored.OwnerID, "sales cannot reassign owner")
	assert.Equal(t, "renamed", stored.Title)

	// менеджер может переназначить
	upd2 := *stored
	upd2.OwnerID = 99
	require.NoError(t, svc.Update(&upd2, managerPrincipal(5)))
	stored, _ = deals.GetByID(d.ID)
	assert.Equal(t, 99, stored.OwnerID)
}

func TestDealListByStatus_ScopedToOwner(t *testing.T) {
	svc, deals, _ := newDealService()
	seedDeal(deals, 10, models.DealProspect)
	deals.put(&models.Deal{Number: "PRJ-202608-5678", Title: "other", ClientID: 1, OwnerID: 20, Status: models.DealProspect})

	mine, err := svc.ListByStatus(models.DealProspect, salesPrincipal(10), 50, 0)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, 10, mine[0].OwnerID)

	all, err := svc.ListByStatus(models.DealProspect, managerPrincipal(1), 50, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.ListByStatus("bogus", salesPrincipal(10), 50, 0)
	assert.True(t, IsRuleError(err))
}

func TestDealCreate_NumberRetryExhaustion(t *testing.T) {
	// все 10000 случайных суффиксов занять нельзя, но поведение ретраев
	// проверяем через фейк, который всегда отвечает дубликатом
	svc := NewDealService(alwaysDuplicateDealRepo{}, &fakeActivityRepo{})
	err := svc.Create(&models.Deal{Title: "x", ClientID: 1}, salesPrincipal(1))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrDuplicateNumber), "auto-number exhaustion is not the supplied-number error")
}
