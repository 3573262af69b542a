package ledger

import (
	"context"
	"errors"

	"banktrack/models"
)

// Accounts manages per-user, per-bank, per-type account lifecycle. Balances
// are accepted as given; nothing here stops a balance from being negative.
type Accounts struct {
	store Store
}

func NewAccounts(st Store) *Accounts {
	return &Accounts{store: st}
}

// Open creates an account with an opening balance. The bank must already be
// registered, and the (user, bank, type) triple must be unused; the duplicate
// check is the store's uniqueness constraint, so concurrent opens race safely.
func (a *Accounts) Open(ctx context.Context, userID uint, bank string, typ models.AccountType, openingBalance int64) error {
	if !typ.Valid() {
		return errors.New("unknown account type")
	}
	ok, err := a.store.BankExists(ctx, bank)
	if err != nil {
		return wrap("open account", err)
	}
	if !ok {
		return ErrNotFound
	}
	acc := models.Account{UserID: userID, BankName: bank, Type: typ, Balance: openingBalance}
	return wrap("open account", a.store.CreateAccount(ctx, &acc))
}

// Close deletes the account and its transaction history. Irreversible.
func (a *Accounts) Close(ctx context.Context, userID uint, bank string, typ models.AccountType) error {
	return wrap("close account", a.store.DeleteAccount(ctx, userID, bank, typ))
}

// AtBank lists the user's accounts at one bank. A user with no accounts
// there gets an empty slice, not an error.
func (a *Accounts) AtBank(ctx context.Context, userID uint, bank string) ([]models.Account, error) {
	accs, err := a.store.AccountsForUserAtBank(ctx, userID, bank)
	return accs, wrap("list accounts", err)
}

// Balance returns the balance of one account, ErrNotFound if it does not
// exist.
func (a *Accounts) Balance(ctx context.Context, userID uint, bank string, typ models.AccountType) (int64, error) {
	bal, err := a.store.AccountBalance(ctx, userID, bank, typ)
	return bal, wrap("account balance", err)
}
