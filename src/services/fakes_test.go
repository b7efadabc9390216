package services_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"brokerage/src/models"
	"brokerage/src/repositories"

	"github.com/shopspring/decimal"
)

var errDatabaseDown = errors.New("connection reset by peer")

type holdingKey struct {
	userID  int64
	assetID int64
}

// memLedger is an in-memory Ledger. One mutex held for the whole unit of work
// stands in for row locks; a failed unit restores the snapshot taken at start.
type memLedger struct {
	mu sync.Mutex

	users        map[int64]models.User
	assets       map[int64]models.Asset
	holdings     map[holdingKey]models.Holding
	transactions []models.Transaction
	nextID       int64

	// failOn names a LedgerTx method that returns errDatabaseDown.
	failOn string
	// commitErr is returned instead of committing.
	commitErr error
}

func newMemLedger() *memLedger {
	return &memLedger{
		users:    map[int64]models.User{},
		assets:   map[int64]models.Asset{},
		holdings: map[holdingKey]models.Holding{},
	}
}

func (l *memLedger) addUser(id int64, balance string) {
	l.users[id] = models.User{ID: id, Username: "user", Balance: decimal.RequireFromString(balance)}
}

func (l *memLedger) addAsset(id int64, price, available string) {
	count := decimal.RequireFromString(available)
	l.assets[id] = models.Asset{
		ID: id, Ticker: "TCK", Price: decimal.RequireFromString(price),
		AvailableCount: count, IssuedCount: count,
	}
}

func (l *memLedger) addHolding(userID, assetID int64, amount string) {
	l.holdings[holdingKey{userID, assetID}] = models.Holding{
		ID: 1000 + userID, UserID: userID, AssetID: assetID, Amount: decimal.RequireFromString(amount),
	}
}

func (l *memLedger) balance(userID int64) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.users[userID].Balance
}

func (l *memLedger) available(assetID int64) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.assets[assetID].AvailableCount
}

// holding returns the held amount and whether a row exists.
func (l *memLedger) holding(userID, assetID int64) (decimal.Decimal, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	h, ok := l.holdings[holdingKey{userID, assetID}]
	return h.Amount, ok
}

func (l *memLedger) heldTotal(assetID int64) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := decimal.Zero
	for key, h := range l.holdings {
		if key.assetID == assetID {
			total = total.Add(h.Amount)
		}
	}
	return total
}

func (l *memLedger) log() []models.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Transaction(nil), l.transactions...)
}

type ledgerSnapshot struct {
	users        map[int64]models.User
	assets       map[int64]models.Asset
	holdings     map[holdingKey]models.Holding
	transactions []models.Transaction
	nextID       int64
}

func (l *memLedger) snapshot() ledgerSnapshot {
	s := ledgerSnapshot{
		users:        make(map[int64]models.User, len(l.users)),
		assets:       make(map[int64]models.Asset, len(l.assets)),
		holdings:     make(map[holdingKey]models.Holding, len(l.holdings)),
		transactions: append([]models.Transaction(nil), l.transactions...),
		nextID:       l.nextID,
	}
	for k, v := range l.users {
		s.users[k] = v
	}
	for k, v := range l.assets {
		s.assets[k] = v
	}
	for k, v := range l.holdings {
		s.holdings[k] = v
	}
	return s
}

func (l *memLedger) restore(s ledgerSnapshot) {
	l.users, l.assets, l.holdings = s.users, s.assets, s.holdings
	l.transactions, l.nextID = s.transactions, s.nextID
}

func (l *memLedger) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repositories.LedgerTx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := l.snapshot()
	if err := fn(ctx, &memTx{l: l}); err != nil {
		l.restore(snap)
		return err
	}
	if err := ctx.Err(); err != nil {
		l.restore(snap)
		return err
	}
	if l.commitErr != nil {
		l.restore(snap)
		return l.commitErr
	}
	return nil
}

type memTx struct {
	l *memLedger
}

func (t *memTx) fail(method string) error {
	if t.l.failOn == method {
		return errDatabaseDown
	}
	return nil
}

func (t *memTx) LockUser(_ context.Context, userID int64) (*models.User, error) {
	if err := t.fail("LockUser"); err != nil {
		return nil, err
	}
	u, ok := t.l.users[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (t *memTx) LockAsset(_ context.Context, assetID int64) (*models.Asset, error) {
	if err := t.fail("LockAsset"); err != nil {
		return nil, err
	}
	a, ok := t.l.assets[assetID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &a, nil
}

func (t *memTx) LockHolding(_ context.Context, userID, assetID int64) (*models.Holding, error) {
	if err := t.fail("LockHolding"); err != nil {
		return nil, err
	}
	h, ok := t.l.holdings[holdingKey{userID, assetID}]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

func (t *memTx) FindTransactionByKey(_ context.Context, userID int64, key string) (*models.Transaction, error) {
	if err := t.fail("FindTransactionByKey"); err != nil {
		return nil, err
	}
	for _, tr := range t.l.transactions {
		if tr.UserID == userID && tr.IdempotencyKey == key {
			found := tr
			return &found, nil
		}
	}
	return nil, nil
}

func (t *memTx) SetBalance(_ context.Context, userID int64, balance decimal.Decimal) error {
	if err := t.fail("SetBalance"); err != nil {
		return err
	}
	u := t.l.users[userID]
	u.Balance = balance
	t.l.users[userID] = u
	return nil
}

func (t *memTx) SetAvailableCount(_ context.Context, assetID int64, count decimal.Decimal) error {
	if err := t.fail("SetAvailableCount"); err != nil {
		return err
	}
	a := t.l.assets[assetID]
	a.AvailableCount = count
	t.l.assets[assetID] = a
	return nil
}

func (t *memTx) SaveHolding(_ context.Context, h *models.Holding) error {
	if err := t.fail("SaveHolding"); err != nil {
		return err
	}
	if h.ID == 0 {
		t.l.nextID++
		h.ID = t.l.nextID
	}
	h.UpdatedAt = time.Now()
	t.l.holdings[holdingKey{h.UserID, h.AssetID}] = *h
	return nil
}

func (t *memTx) DeleteHolding(_ context.Context, userID, assetID int64) error {
	if err := t.fail("DeleteHolding"); err != nil {
		return err
	}
	delete(t.l.holdings, holdingKey{userID, assetID})
	return nil
}

func (t *memTx) AppendTransaction(_ context.Context, tr *models.Transaction) error {
	if err := t.fail("AppendTransaction"); err != nil {
		return err
	}
	t.l.nextID++
	tr.ID = t.l.nextID
	tr.CreatedAt = time.Now()
	t.l.transactions = append(t.l.transactions, *tr)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.Transaction
	err    error
}

func (p *recordingPublisher) TradeExecuted(_ context.Context, t *models.Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *t)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type fakeAssetRepo struct {
	assets    map[int64]models.Asset
	getCalls  int
	lastTerms []string
	err       error
}

func newFakeAssetRepo() *fakeAssetRepo {
	return &fakeAssetRepo{assets: map[int64]models.Asset{}}
}

func (r *fakeAssetRepo) GetAll(_ context.Context, filter repositories.AssetFilter, page repositories.Page) ([]models.Asset, error) {
	if r.err != nil {
		return nil, r.err
	}
	ids := make([]int64, 0, len(r.assets))
	for id, a := range r.assets {
		if filter.CompanyID != 0 && (a.CompanyID == nil || *a.CompanyID != filter.CompanyID) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := []models.Asset{}
	for i, id := range ids {
		if uint64(i) < page.Offset {
			continue
		}
		if page.Limit > 0 && uint64(len(out)) == page.Limit {
			break
		}
		out = append(out, r.assets[id])
	}
	return out, nil
}

func (r *fakeAssetRepo) GetByID(_ context.Context, id int64) (*models.Asset, error) {
	r.getCalls++
	if r.err != nil {
		return nil, r.err
	}
	a, ok := r.assets[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &a, nil
}

func (r *fakeAssetRepo) Search(_ context.Context, terms []string, _ repositories.Page) ([]models.Asset, error) {
	r.lastTerms = terms
	return []models.Asset{}, r.err
}

func (r *fakeAssetRepo) Create(_ context.Context, asset *models.Asset) error {
	if r.err != nil {
		return r.err
	}
	for _, a := range r.assets {
		if a.Ticker == asset.Ticker {
			return repositories.ErrAlreadyExists
		}
	}
	asset.ID = int64(len(r.assets) + 1)
	asset.IssuedCount = asset.AvailableCount
	r.assets[asset.ID] = *asset
	return nil
}

func (r *fakeAssetRepo) UpdatePrice(_ context.Context, id int64, price decimal.Decimal) (*models.Asset, error) {
	if r.err != nil {
		return nil, r.err
	}
	a, ok := r.assets[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	a.Price = price
	r.assets[id] = a
	return &a, nil
}

type fakeTransactionRepo struct {
	transactions []models.Transaction
	lastFilter   repositories.TransactionFilter
}

func (r *fakeTransactionRepo) GetByID(_ context.Context, id int64) (*models.Transaction, error) {
	for _, t := range r.transactions {
		if t.ID == id {
			found := t
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeTransactionRepo) List(_ context.Context, filter repositories.TransactionFilter, _ repositories.Page) ([]models.Transaction, error) {
	r.lastFilter = filter
	out := []models.Transaction{}
	for _, t := range r.transactions {
		if filter.UserID != 0 && t.UserID != filter.UserID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

type fakeAuditRepo struct {
	violations []models.InvariantViolation
	err        error
}

func (r *fakeAuditRepo) FindViolations(context.Context) ([]models.InvariantViolation, error) {
	return r.violations, r.err
}

type fakeCompanyRepo struct {
	companies map[int64]models.Company
	err       error
}

func newFakeCompanyRepo(companies ...models.Company) *fakeCompanyRepo {
	r := &fakeCompanyRepo{companies: map[int64]models.Company{}}
	for _, c := range companies {
		r.companies[c.ID] = c
	}
	return r
}

func (r *fakeCompanyRepo) GetAll(_ context.Context, _ repositories.Page) ([]models.Company, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := []models.Company{}
	for _, c := range r.companies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCompanyRepo) GetByID(_ context.Context, id int64) (*models.Company, error) {
	if r.err != nil {
		return nil, r.err
	}
	c, ok := r.companies[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (r *fakeCompanyRepo) Create(_ context.Context, company *models.Company) error {
	if r.err != nil {
		return r.err
	}
	for _, c := range r.companies {
		if c.Name == company.Name {
			return repositories.ErrAlreadyExists
		}
	}
	company.ID = int64(len(r.companies) + 1)
	r.companies[company.ID] = *company
	return nil
}

func (r *fakeCompanyRepo) Update(_ context.Context, company *models.Company) error {
	if r.err != nil {
		return r.err
	}
	if _, ok := r.companies[company.ID]; !ok {
		return repositories.ErrNotFound
	}
	for id, c := range r.companies {
		if id != company.ID && c.Name == company.Name {
			return repositories.ErrAlreadyExists
		}
	}
	r.companies[company.ID] = *company
	return nil
}
