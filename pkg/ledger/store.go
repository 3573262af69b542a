package ledger

import (
	"context"
	"time"

	"banktrack/models"
)

// Store is the persistence capability the domain layer depends on. It is
// deliberately narrow: uniqueness-constrained inserts, keyed lookups, keyed
// deletes with cascade, aggregate sums and timestamp range queries.
//
// Implementations must return ErrNotFound, ErrDuplicateEmail and
// ErrDuplicateAccount for the corresponding conditions so the domain layer
// never has to parse driver error text. Uniqueness checks happen inside the
// store (constraint or single critical section), not in the caller: multiple
// process instances may share one store.
type Store interface {
	// Users. CreateUser assigns u.ID on success. DeleteUser cascades to the
	// user's accounts and transactions. ArchiveUsersInactiveSince deactivates
	// active users whose last-seen time is strictly before cutoff and reports
	// how many rows changed; rerunning with the same cutoff archives nothing
	// further.
	CreateUser(ctx context.Context, u *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id uint) (*models.User, error)
	TouchUser(ctx context.Context, id uint, seen time.Time) error
	DeleteUser(ctx context.Context, id uint) error
	ArchiveUsersInactiveSince(ctx context.Context, cutoff time.Time) (int64, error)

	// Banks. CreateBank is idempotent (IF NOT EXISTS semantics). Banks lists
	// in insertion order. SumBalancesAtBank returns 0 for a bank that exists
	// but has no accounts.
	CreateBank(ctx context.Context, name string) error
	Banks(ctx context.Context) ([]models.Bank, error)
	BankExists(ctx context.Context, name string) (bool, error)
	SumBalancesAtBank(ctx context.Context, bank string) (int64, error)

	// Accounts. CreateAccount enforces the (user, bank, type) uniqueness.
	// DeleteAccount cascades to the account's transactions.
	CreateAccount(ctx context.Context, a *models.Account) error
	DeleteAccount(ctx context.Context, userID uint, bank string, typ models.AccountType) error
	AccountsForUserAtBank(ctx context.Context, userID uint, bank string) ([]models.Account, error)
	AccountBalance(ctx context.Context, userID uint, bank string, typ models.AccountType) (int64, error)
	AccountExists(ctx context.Context, userID uint, bank string, typ models.AccountType) (bool, error)
	SumBalancesForUser(ctx context.Context, userID uint) (int64, error)

	// Transactions are append-only history. InsertTransaction exists for
	// seeding and future posting logic; nothing mutates or deletes a recorded
	// transaction except the cascades above.
	InsertTransaction(ctx context.Context, t *models.Transaction) error
	RecentTransactions(ctx context.Context, userID uint, bank string, typ models.AccountType, limit int) ([]models.Transaction, error)
	TransactionsBetween(ctx context.Context, userID uint, bank string, typ models.AccountType, from, to time.Time) ([]models.Transaction, error)
}
