package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"banktrack/models"
	"banktrack/pkg/ledger"
)

var (
	_ ledger.Store = (*Gorm)(nil)
	_ ledger.Store = (*Memory)(nil)
)

// Memory is a thread-safe in-memory Ledger Store. It backs the test suite
// and the dev server when no DB_DSN is configured. One mutex guards all
// state, so every read-then-write (duplicate checks, cascading deletes) is a
// single critical section — the same atomicity the SQL store gets from
// constraints and transactions.
type Memory struct {
	mu       sync.Mutex
	nextUser uint
	nextAcc  uint
	nextTxn  uint
	users    map[uint]*models.User
	emails   map[string]uint
	banks    []models.Bank // insertion order
	bankSet  map[string]bool
	accounts []*models.Account // insertion order
	txns     []*models.Transaction
}

func NewMemory() *Memory {
	return &Memory{
		users:   make(map[uint]*models.User),
		emails:  make(map[string]uint),
		bankSet: make(map[string]bool),
	}
}

func (s *Memory) CreateUser(ctx context.Context, u *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.emails[u.Email]; dup {
		return ledger.ErrDuplicateEmail
	}
	s.nextUser++
	u.ID = s.nextUser
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	s.users[u.ID] = &cp
	s.emails[u.Email] = u.ID
	return nil
}

func (s *Memory) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.emails[email]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *Memory) UserByID(ctx context.Context, id uint) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Memory) TouchUser(ctx context.Context, id uint, seen time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ledger.ErrNotFound
	}
	u.LastSeenAt = seen
	u.UpdatedAt = time.Now()
	return nil
}

func (s *Memory) DeleteUser(ctx context.Context, id uint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ledger.ErrNotFound
	}
	delete(s.emails, u.Email)
	delete(s.users, id)
	s.accounts = filterAccounts(s.accounts, func(a *models.Account) bool { return a.UserID != id })
	s.txns = filterTxns(s.txns, func(t *models.Transaction) bool { return t.UserID != id })
	return nil
}

func (s *Memory) ArchiveUsersInactiveSince(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, u := range s.users {
		if u.Active && u.LastSeenAt.Before(cutoff) {
			u.Active = false
			u.UpdatedAt = time.Now()
			n++
		}
	}
	return n, nil
}

func (s *Memory) CreateBank(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bankSet[name] {
		return nil
	}
	s.bankSet[name] = true
	s.banks = append(s.banks, models.Bank{Name: name, CreatedAt: time.Now()})
	return nil
}

func (s *Memory) Banks(ctx context.Context) ([]models.Bank, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Bank, len(s.banks))
	copy(out, s.banks)
	return out, nil
}

func (s *Memory) BankExists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bankSet[name], nil
}

func (s *Memory) SumBalancesAtBank(ctx context.Context, bank string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum int64
	for _, a := range s.accounts {
		if a.BankName == bank {
			sum += a.Balance
		}
	}
	return sum, nil
}

func (s *Memory) CreateAccount(ctx context.Context, a *models.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, have := range s.accounts {
		if have.UserID == a.UserID && have.BankName == a.BankName && have.Type == a.Type {
			return ledger.ErrDuplicateAccount
		}
	}
	s.nextAcc++
	a.ID = s.nextAcc
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	s.accounts = append(s.accounts, &cp)
	return nil
}

func (s *Memory) DeleteAccount(ctx context.Context, userID uint, bank string, typ models.AccountType) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.accounts)
	s.accounts = filterAccounts(s.accounts, func(a *models.Account) bool {
		return !(a.UserID == userID && a.BankName == bank && a.Type == typ)
	})
	if len(s.accounts) == before {
		return ledger.ErrNotFound
	}
	s.txns = filterTxns(s.txns, func(t *models.Transaction) bool {
		return !(t.UserID == userID && t.BankName == bank && t.AccountType == typ)
	})
	return nil
}

func (s *Memory) AccountsForUserAtBank(ctx context.Context, userID uint, bank string) ([]models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Account{}
	for _, a := range s.accounts {
		if a.UserID == userID && a.BankName == bank {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *Memory) AccountBalance(ctx context.Context, userID uint, bank string, typ models.AccountType) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.UserID == userID && a.BankName == bank && a.Type == typ {
			return a.Balance, nil
		}
	}
	return 0, ledger.ErrNotFound
}

func (s *Memory) AccountExists(ctx context.Context, userID uint, bank string, typ models.AccountType) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.UserID == userID && a.BankName == bank && a.Type == typ {
			return true, nil
		}
	}
	return false, nil
}

func (s *Memory) SumBalancesForUser(ctx context.Context, userID uint) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum int64
	for _, a := range s.accounts {
		if a.UserID == userID {
			sum += a.Balance
		}
	}
	return sum, nil
}

func (s *Memory) InsertTransaction(ctx context.Context, t *models.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTxn++
	t.ID = s.nextTxn
	t.CreatedAt = time.Now()
	cp := *t
	s.txns = append(s.txns, &cp)
	return nil
}

func (s *Memory) RecentTransactions(ctx context.Context, userID uint, bank string, typ models.AccountType, limit int) ([]models.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Transaction{}
	for _, t := range s.txns {
		if t.UserID == userID && t.BankName == bank && t.AccountType == typ {
			out = append(out, *t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].At.Equal(out[j].At) {
			return out[i].ID > out[j].ID
		}
		return out[i].At.After(out[j].At)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Memory) TransactionsBetween(ctx context.Context, userID uint, bank string, typ models.AccountType, from, to time.Time) ([]models.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Transaction{}
	for _, t := range s.txns {
		if t.UserID != userID || t.BankName != bank || t.AccountType != typ {
			continue
		}
		if t.At.Before(from) || !t.At.Before(to) {
			continue
		}
		out = append(out, *t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].At.Equal(out[j].At) {
			return out[i].ID < out[j].ID
		}
		return out[i].At.Before(out[j].At)
	})
	return out, nil
}

func filterAccounts(in []*models.Account, keep func(*models.Account) bool) []*models.Account {
	out := in[:0]
	for _, a := range in {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func filterTxns(in []*models.Transaction, keep func(*models.Transaction) bool) []*models.Transaction {
	out := in[:0]
	for _, t := range in {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
