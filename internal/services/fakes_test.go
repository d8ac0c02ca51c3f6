package services

import (
	"errors"
	"strconv"
	"strings"
	"sync"

	"dealdesk/internal/models"
	"dealdesk/internal/notify"
	"dealdesk/internal/repositories"
)

// In-memory фейки репозиториев для юнит-тестов workflow-сервисов.

var errFakeActivity = errors.New("activity append failed")

type fakeDealRepo struct {
	mu     sync.Mutex
	deals  map[int]*models.Deal
	nextID int

	// occupied имитирует уникальный индекс по number.
	occupied map[string]bool

	// sink получает записи журнала, сделанные «внутри транзакций» фейка.
	sink activitySink

	// beforeMove вызывается в начале MoveStatus — окно для имитации гонки.
	beforeMove func()
}

func newFakeDealRepo() *fakeDealRepo {
	return &fakeDealRepo{deals: map[int]*models.Deal{}, occupied: map[string]bool{}}
}

func (f *fakeDealRepo) put(d *models.Deal) *models.Deal {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	d.ID = f.nextID
	cp := *d
	f.deals[d.ID] = &cp
	f.occupied[d.Number] = true
	return d
}

func (f *fakeDealRepo) Create(deal *models.Deal) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.occupied[deal.Number] {
		return 0, repositories.ErrDuplicate
	}
	f.nextID++
	cp := *deal
	cp.ID = f.nextID
	f.deals[cp.ID] = &cp
	f.occupied[cp.Number] = true
	return int64(cp.ID), nil
}

func (f *fakeDealRepo) GetByID(id int) (*models.Deal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.deals[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDealRepo) Update(deal *models.Deal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cur, ok := f.deals[deal.ID]; ok {
		cur.Title = deal.Title
		cur.ClientID = deal.ClientID
		cur.OwnerID = deal.OwnerID
		cur.EstimatedValue = deal.EstimatedValue
		cur.Priority = deal.Priority
		cur.UpdatedBy = deal.UpdatedBy
	}
	return nil
}

func (f *fakeDealRepo) Delete(id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.deals, id)
	return nil
}

func (f *fakeDealRepo) ListPaginated(limit, offset int) ([]*models.Deal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Deal
	for _, d := range f.deals {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeDealRepo) ListByOwner(ownerID, limit, offset int) ([]*models.Deal, error) {
	all, _ := f.ListPaginated(limit, offset)
	var out []*models.Deal
	for _, d := range all {
		if d.OwnerID == ownerID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDealRepo) ListByStatus(status models.DealStatus, ownerID, limit, offset int) ([]*models.Deal, error) {
	all, _ := f.ListPaginated(limit, offset)
	var out []*models.Deal
	for _, d := range all {
		if d.Status == status && (ownerID <= 0 || d.OwnerID == ownerID) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDealRepo) MoveStatus(dealID int, from, to models.DealStatus, entry *models.ActivityLog) (bool, error) {
	if f.beforeMove != nil {
		f.beforeMove()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.deals[dealID]
	if !ok || d.Status != from {
		return false, nil
	}
	d.Status = to
	d.UpdatedBy = entry.ActorID
	f.logTo(entry)
	return true, nil
}

// activitySink подключается тестом, чтобы проверить атомарную запись журнала.
type activitySink interface {
	Append(entry *models.ActivityLog) error
}

func (f *fakeDealRepo) logTo(entry *models.ActivityLog) {
	if f.sink != nil {
		_ = f.sink.Append(entry)
	}
}

func (f *fakeDealRepo) CountByStatus() (map[models.DealStatus]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[models.DealStatus]int{}
	for _, d := range f.deals {
		out[d.Status]++
	}
	return out, nil
}

// alwaysDuplicateDealRepo отвечает дубликатом на любой Create.
type alwaysDuplicateDealRepo struct{ repositories.DealRepository }

func (alwaysDuplicateDealRepo) Create(*models.Deal) (int64, error) {
	return 0, repositories.ErrDuplicate
}

type fakeActivityRepo struct {
	mu      sync.Mutex
	entries []*models.ActivityLog
	failing bool
}

func (f *fakeActivityRepo) Append(entry *models.ActivityLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errFakeActivity
	}
	cp := *entry
	f.entries = append(f.entries, &cp)
	return nil
}

func (f *fakeActivityRepo) ListByDeal(dealID, limit, offset int) ([]*models.ActivityLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ActivityLog
	for _, e := range f.entries {
		if e.DealID == dealID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeEstimationRepo struct {
	mu     sync.Mutex
	ests   map[int]*models.Estimation
	deals  *fakeDealRepo
	nextID int

	// mirrorErr имитирует сбой записи зеркала: «транзакция» целиком
	// откатывается, смета остаётся нетронутой.
	mirrorErr error

	// beforeUpdate вызывается в начале UpdateWorkflow — окно для
	// имитации конкурентного решения.
	beforeUpdate func()
}

func newFakeEstimationRepo(deals *fakeDealRepo) *fakeEstimationRepo {
	return &fakeEstimationRepo{ests: map[int]*models.Estimation{}, deals: deals}
}

func (f *fakeEstimationRepo) mirror(dealID int, status models.EstimationStatus) {
	f.deals.mu.Lock()
	defer f.deals.mu.Unlock()
	if d, ok := f.deals.deals[dealID]; ok {
		s := status
		d.EstimationStatus = &s
	}
}

func (f *fakeEstimationRepo) Create(est *models.Estimation) (int64, error) {
	f.mu.Lock()
	if f.mirrorErr != nil {
		f.mu.Unlock()
		return 0, f.mirrorErr
	}
	f.nextID++
	cp := *est
	cp.ID = f.nextID
	f.ests[cp.ID] = &cp
	f.mu.Unlock()

	f.mirror(est.DealID, est.Status)
	return int64(cp.ID), nil
}

func (f *fakeEstimationRepo) GetByID(id int) (*models.Estimation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.ests[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEstimationRepo) LatestByDeal(dealID int) (*models.Estimation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *models.Estimation
	for _, e := range f.ests {
		if e.DealID != dealID {
			continue
		}
		if latest == nil || e.Version > latest.Version {
			latest = e
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeEstimationRepo) NextVersion(dealID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := 0
	for _, e := range f.ests {
		if e.DealID == dealID && e.Version > max {
			max = e.Version
		}
	}
	return max + 1, nil
}

func (f *fakeEstimationRepo) UpdateWorkflow(est *models.Estimation, from models.EstimationStatus) (bool, error) {
	if f.beforeUpdate != nil {
		f.beforeUpdate()
	}
	f.mu.Lock()
	cur, ok := f.ests[est.ID]
	if !ok || cur.Status != from {
		f.mu.Unlock()
		return false, nil
	}
	if f.mirrorErr != nil {
		f.mu.Unlock()
		return false, f.mirrorErr
	}
	cp := *est
	f.ests[est.ID] = &cp
	f.mu.Unlock()

	f.mirror(est.DealID, est.Status)
	return true, nil
}

type fakePolicyRepo struct {
	policies []models.DiscountPolicy
}

func (f *fakePolicyRepo) ByRoles(roles []string) ([]models.DiscountPolicy, error) {
	want := map[string]bool{}
	for _, r := range roles {
		want[r] = true
	}
	var out []models.DiscountPolicy
	for _, p := range f.policies {
		if want[p.Role] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePolicyRepo) List() ([]models.DiscountPolicy, error) {
	return f.policies, nil
}

type fakeOrderRepo struct {
	mu      sync.Mutex
	orders  map[int]*models.SalesOrder
	numbers map[string]bool
	deals   *fakeDealRepo
	nextID  int

	// hidden — номера, которые видит «уникальный индекс», но не LastNumber:
	// имитация чужой вставки между чтением последнего номера и нашей.
	hidden map[string]bool
}

func newFakeOrderRepo(deals *fakeDealRepo) *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:  map[int]*models.SalesOrder{},
		numbers: map[string]bool{},
		hidden:  map[string]bool{},
		deals:   deals,
	}
}

func (f *fakeOrderRepo) GetByID(id int) (*models.SalesOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepo) GetByDealID(dealID int) (*models.SalesOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.DealID == dealID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeOrderRepo) LastNumber(prefix string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Как и настоящий репозиторий, сравниваем числовые суффиксы, не строки.
	last, lastSeq := "", -1
	for n := range f.numbers {
		if !strings.HasPrefix(n, prefix) {
			continue
		}
		seq, err := strconv.Atoi(n[strings.LastIndex(n, "-")+1:])
		if err == nil && seq > lastSeq {
			last, lastSeq = n, seq
		}
	}
	return last, nil
}

func (f *fakeOrderRepo) Finalize(order *models.SalesOrder, deal *models.Deal, entry *models.ActivityLog) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deals.mu.Lock()
	defer f.deals.mu.Unlock()
	current, ok := f.deals.deals[deal.ID]
	if !ok || current.Status != deal.Status {
		return false, nil
	}
	if f.numbers[order.Number] || f.hidden[order.Number] {
		return false, repositories.ErrDuplicate
	}

	f.nextID++
	order.ID = f.nextID
	cp := *order
	f.orders[order.ID] = &cp
	f.numbers[order.Number] = true

	current.Status = models.DealWon
	current.ContractValue.Decimal = order.ContractValue
	current.ContractValue.Valid = true
	closed := order.OrderDate
	current.ClosedAt = &closed

	f.deals.logTo(entry)
	return true, nil
}

func (f *fakeOrderRepo) SetDocumentPath(orderID int, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[orderID]; ok {
		p := path
		o.DocumentPath = &p
	}
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recordingNotifier) Notify(e notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}
