package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"banktrack/models"
	"banktrack/pkg/ledger"
)

func TestMemoryDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()

	u := models.User{FirstName: "A", LastName: "B", Email: "a@example.com", HashedPassword: []byte("x"), Active: true}
	if err := st.CreateUser(ctx, &u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := st.CreateBank(ctx, "Chase"); err != nil {
		t.Fatalf("create bank: %v", err)
	}
	acc := models.Account{UserID: u.ID, BankName: "Chase", Type: models.Checking, Balance: 100}
	if err := st.CreateAccount(ctx, &acc); err != nil {
		t.Fatalf("create account: %v", err)
	}
	txn := models.Transaction{UserID: u.ID, BankName: "Chase", AccountType: models.Checking, At: time.Now(), Amount: 5}
	if err := st.InsertTransaction(ctx, &txn); err != nil {
		t.Fatalf("insert txn: %v", err)
	}

	if err := st.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if _, err := st.UserByEmail(ctx, "a@example.com"); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("email index not cleaned: %v", err)
	}
	if ok, _ := st.AccountExists(ctx, u.ID, "Chase", models.Checking); ok {
		t.Fatal("account survived cascade")
	}
	txns, err := st.RecentTransactions(ctx, u.ID, "Chase", models.Checking, 10)
	if err != nil || len(txns) != 0 {
		t.Fatalf("transactions survived cascade: %v, %v", txns, err)
	}

	// the freed email can be registered again
	again := models.User{FirstName: "A", LastName: "B", Email: "a@example.com", HashedPassword: []byte("x"), Active: true}
	if err := st.CreateUser(ctx, &again); err != nil {
		t.Fatalf("re-register freed email: %v", err)
	}
}

func TestMemoryBankOrderingStable(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()
	names := []string{"Zeta", "Alpha", "Mid"}
	for _, n := range names {
		if err := st.CreateBank(ctx, n); err != nil {
			t.Fatalf("create bank %s: %v", n, err)
		}
	}
	// duplicate create must not reorder or duplicate
	if err := st.CreateBank(ctx, "Zeta"); err != nil {
		t.Fatalf("idempotent create: %v", err)
	}
	banks, err := st.Banks(ctx)
	if err != nil {
		t.Fatalf("banks: %v", err)
	}
	if len(banks) != 3 {
		t.Fatalf("expected 3 banks, got %d", len(banks))
	}
	for i, n := range names {
		if banks[i].Name != n {
			t.Fatalf("order broken at %d: got %s want %s", i, banks[i].Name, n)
		}
	}
}

func TestMemoryRespectsContext(t *testing.T) {
	st := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := st.CreateBank(ctx, "Chase"); err == nil {
		t.Fatal("expected an error on cancelled context")
	}
}

func TestMemoryStoredValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()
	u := models.User{FirstName: "A", LastName: "B", Email: "a@example.com", HashedPassword: []byte("x"), Active: true}
	if err := st.CreateUser(ctx, &u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	got, err := st.UserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	got.Email = "mutated@example.com"
	again, err := st.UserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if again.Email != "a@example.com" {
		t.Fatal("caller mutation leaked into the store")
	}
}
