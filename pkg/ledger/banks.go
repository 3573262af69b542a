package ledger

import (
	"context"
	"errors"
	"strings"

	"banktrack/models"
)

// Registry manages the shared set of banks. Banks are identified by name and
// never deleted.
type Registry struct {
	store Store
}

func NewRegistry(st Store) *Registry {
	return &Registry{store: st}
}

// Create registers a bank name. Creating an existing bank is a no-op
// success, mirroring IF NOT EXISTS semantics in the store.
func (r *Registry) Create(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("bank name required")
	}
	return wrap("create bank", r.store.CreateBank(ctx, name))
}

// List returns all banks in insertion order.
func (r *Registry) List(ctx context.Context) ([]models.Bank, error) {
	banks, err := r.store.Banks(ctx)
	return banks, wrap("list banks", err)
}

// Balance sums the balances of every account at the bank, across all users.
// A bank with no accounts has balance 0; an unknown bank is ErrNotFound.
func (r *Registry) Balance(ctx context.Context, name string) (int64, error) {
	ok, err := r.store.BankExists(ctx, name)
	if err != nil {
		return 0, wrap("bank balance", err)
	}
	if !ok {
		return 0, ErrNotFound
	}
	sum, err := r.store.SumBalancesAtBank(ctx, name)
	return sum, wrap("bank balance", err)
}
