package ledger

import (
	"context"
	"time"

	"banktrack/models"
)

// DefaultRecentLimit bounds Recent queries when the caller passes no limit.
const DefaultRecentLimit = 20

// History provides read-only queries over recorded transactions, scoped to
// one account. Posting transactions is future work; history never mutates.
type History struct {
	store Store
}

func NewHistory(st Store) *History {
	return &History{store: st}
}

// scopeExists checks the scoping account; history queries against a deleted
// or never-created account are ErrNotFound rather than an empty result.
func (h *History) scopeExists(ctx context.Context, userID uint, bank string, typ models.AccountType) error {
	ok, err := h.store.AccountExists(ctx, userID, bank, typ)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Recent returns up to limit transactions for the account, newest first.
// limit <= 0 falls back to DefaultRecentLimit.
func (h *History) Recent(ctx context.Context, userID uint, bank string, typ models.AccountType, limit int) ([]models.Transaction, error) {
	if err := h.scopeExists(ctx, userID, bank, typ); err != nil {
		return nil, wrap("recent transactions", err)
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	txns, err := h.store.RecentTransactions(ctx, userID, bank, typ, limit)
	return txns, wrap("recent transactions", err)
}

// Monthly returns the account's transactions within the calendar month
// containing ref, in ref's location: from the first instant of that month
// inclusive to the first instant of the next month exclusive.
func (h *History) Monthly(ctx context.Context, userID uint, bank string, typ models.AccountType, ref time.Time) ([]models.Transaction, error) {
	if err := h.scopeExists(ctx, userID, bank, typ); err != nil {
		return nil, wrap("monthly transactions", err)
	}
	from := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	to := from.AddDate(0, 1, 0)
	txns, err := h.store.TransactionsBetween(ctx, userID, bank, typ, from, to)
	return txns, wrap("monthly transactions", err)
}
