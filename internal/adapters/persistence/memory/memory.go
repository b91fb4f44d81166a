// Package memory provides in-process stores used in development mode and
// tests. Every operation runs under the store's lock and is atomic.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"finance-backoffice/internal/core/domain"
)

// Stores bundles every in-memory collaborator
type Stores struct {
	Credentials  *CredentialStore
	Transactions *TransactionStore
	Revocations  *RevocationList
	Dashboard    *DashboardProvider
}

// NewStores creates empty stores
func NewStores() *Stores {
	creds := NewCredentialStore()
	txs := NewTransactionStore()
	return &Stores{
		Credentials:  creds,
		Transactions: txs,
		Revocations:  NewRevocationList(),
		Dashboard:    NewDashboardProvider(creds, txs),
	}
}

// CredentialStore keeps principals keyed by id and username
type CredentialStore struct {
	mu         sync.RWMutex
	nextID     uint
	byID       map[uint]*domain.Principal
	byUsername map[string]uint
	now        func() time.Time
}

// NewCredentialStore creates an empty credential store
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		byID:       make(map[uint]*domain.Principal),
		byUsername: make(map[string]uint),
		now:        time.Now,
	}
}

func (s *CredentialStore) FindByUsername(_ context.Context, username string) (*domain.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *CredentialStore) FindByID(_ context.Context, id uint) (*domain.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// Create inserts principal, assigning its id and creation time. The
// uniqueness check and insert happen under one lock.
func (s *CredentialStore) Create(_ context.Context, principal *domain.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUsername[principal.Username]; taken {
		return domain.ErrUsernameTaken
	}

	s.nextID++
	principal.ID = s.nextID
	if principal.CreatedAt.IsZero() {
		principal.CreatedAt = s.now()
	}
	cp := *principal
	s.byID[cp.ID] = &cp
	s.byUsername[cp.Username] = cp.ID
	return nil
}

func (s *CredentialStore) ExistsWithRole(_ context.Context, role domain.Role) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.byID {
		if p.Role == role {
			return true, nil
		}
	}
	return false, nil
}

// Len returns the number of stored principals
func (s *CredentialStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *CredentialStore) countByRole() map[domain.Role]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[domain.Role]int64, len(domain.AllRoles()))
	for _, p := range s.byID {
		out[p.Role]++
	}
	return out
}

// TransactionStore keeps transactions keyed by id
type TransactionStore struct {
	mu     sync.RWMutex
	nextID uint
	byID   map[uint]*domain.Transaction
	now    func() time.Time
}

// NewTransactionStore creates an empty transaction store
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{
		byID: make(map[uint]*domain.Transaction),
		now:  time.Now,
	}
}

func (s *TransactionStore) Create(_ context.Context, tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	now := s.now()
	tx.ID = s.nextID
	tx.CreatedAt = now
	tx.UpdatedAt = now
	cp := *tx
	s.byID[cp.ID] = &cp
	return nil
}

// Replace overwrites the record with tx.ID. Creation metadata is kept.
func (s *TransactionStore) Replace(_ context.Context, tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byID[tx.ID]
	if !ok {
		return domain.ErrNotFound
	}
	tx.CreatedAt = existing.CreatedAt
	tx.UpdatedAt = s.now()
	cp := *tx
	s.byID[cp.ID] = &cp
	return nil
}

func (s *TransactionStore) FindByID(_ context.Context, id uint) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *tx
	return &cp, nil
}

// List returns matching records ordered by id ascending
func (s *TransactionStore) List(_ context.Context, filter domain.StatusFilter, offset, limit int) ([]*domain.Transaction, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.matching(filter)
	total := int64(len(matched))

	if offset < 0 || offset >= len(matched) {
		return []*domain.Transaction{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(matched) {
		end = len(matched)
	}

	out := make([]*domain.Transaction, 0, end-offset)
	for _, tx := range matched[offset:end] {
		cp := *tx
		out = append(out, &cp)
	}
	return out, total, nil
}

func (s *TransactionStore) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

// matching must be called with the lock held
func (s *TransactionStore) matching(filter domain.StatusFilter) []*domain.Transaction {
	status, filtered := filter.Status()
	out := make([]*domain.Transaction, 0, len(s.byID))
	for _, tx := range s.byID {
		if filtered && tx.Status != status {
			continue
		}
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *TransactionStore) snapshot() []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Transaction, 0, len(s.byID))
	for _, tx := range s.matching(domain.NoStatusFilter()) {
		out = append(out, *tx)
	}
	return out
}

// RevocationList records revoked token ids until they expire
type RevocationList struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

// NewRevocationList creates an empty revocation list
func NewRevocationList() *RevocationList {
	return &RevocationList{entries: make(map[string]time.Time)}
}

// Revoke adds tokenID. The first caller wins; later callers get
// domain.ErrTokenRevoked.
func (r *RevocationList) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[tokenID]; ok {
		return domain.ErrTokenRevoked
	}
	r.entries[tokenID] = expiresAt
	return nil
}

func (r *RevocationList) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.entries[tokenID]
	return ok, nil
}

// PurgeExpired drops entries whose token has expired by now
func (r *RevocationList) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, exp := range r.entries {
		if !exp.After(now) {
			delete(r.entries, id)
			n++
		}
	}
	return n, nil
}

// DashboardProvider computes dashboard aggregates over the memory stores
type DashboardProvider struct {
	creds *CredentialStore
	txs   *TransactionStore
}

// NewDashboardProvider creates a provider reading from the given stores
func NewDashboardProvider(creds *CredentialStore, txs *TransactionStore) *DashboardProvider {
	return &DashboardProvider{creds: creds, txs: txs}
}

// RecentLimit is the number of transactions listed on the dashboard
const RecentLimit = 10

func (d *DashboardProvider) DashboardData(_ context.Context) (map[string]any, error) {
	all := d.txs.snapshot()

	counts := make(map[string]int64, len(domain.AllStatuses()))
	for _, s := range domain.AllStatuses() {
		counts[string(s)] = 0
	}
	for _, tx := range all {
		counts[string(tx.Status)]++
	}

	recent := make([]domain.Transaction, len(all))
	copy(recent, all)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].ID > recent[j].ID })
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}

	return map[string]any{
		"totalTransactions":  int64(len(all)),
		"countsByStatus":     counts,
		"recentTransactions": recent,
	}, nil
}

func (d *DashboardProvider) DashboardSummary(_ context.Context) (map[string]any, error) {
	all := d.txs.snapshot()

	byStatus := make(map[string]map[string]any, len(domain.AllStatuses()))
	for _, s := range domain.AllStatuses() {
		byStatus[string(s)] = map[string]any{"count": int64(0), "amount": 0.0}
	}
	var total float64
	for _, tx := range all {
		entry, ok := byStatus[string(tx.Status)]
		if !ok {
			entry = map[string]any{"count": int64(0), "amount": 0.0}
			byStatus[string(tx.Status)] = entry
		}
		entry["count"] = entry["count"].(int64) + 1
		entry["amount"] = entry["amount"].(float64) + tx.Amount
		total += tx.Amount
	}

	roles := d.creds.countByRole()
	usersByRole := make(map[string]int64, len(domain.AllRoles()))
	for _, r := range domain.AllRoles() {
		usersByRole[string(r)] = roles[r]
	}

	return map[string]any{
		"totalTransactions": int64(len(all)),
		"totalAmount":       total,
		"byStatus":          byStatus,
		"usersByRole":       usersByRole,
	}, nil
}
