// Seeds a demo user, two banks, three accounts and a month of transaction
// history. Intended for manual testing against a fresh database:
//
//	DB_DSN=... go run ./cmd/seed <email> <password>
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"banktrack/models"
	"banktrack/pkg/ledger"
	"banktrack/store"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("usage: go run ./cmd/seed <email> <password>")
		os.Exit(2)
	}
	email := os.Args[1]
	password := os.Args[2]

	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DB_DSN not set in environment")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	for _, m := range []any{&models.User{}, &models.Bank{}, &models.Account{}, &models.Transaction{}} {
		if err := db.AutoMigrate(m); err != nil {
			log.Printf("migration warning: %v", err)
		}
	}

	st := store.NewGorm(db)
	identity := ledger.NewIdentity(st, 0)
	banks := ledger.NewRegistry(st)
	accounts := ledger.NewAccounts(st)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userID, err := identity.Register(ctx, "Demo", "User", email, password)
	if errors.Is(err, ledger.ErrDuplicateEmail) {
		log.Fatalf("user %s already exists; pick another email", email)
	}
	if err != nil {
		log.Fatalf("failed to create user: %v", err)
	}

	for _, name := range []string{"Chase", "Wells Fargo"} {
		if err := banks.Create(ctx, name); err != nil {
			log.Fatalf("failed to create bank %s: %v", name, err)
		}
	}

	seedAccounts := []struct {
		bank    string
		typ     models.AccountType
		opening int64
	}{
		{"Chase", models.Checking, 250_00},
		{"Chase", models.Savings, 1_200_00},
		{"Wells Fargo", models.Checking, 87_50},
	}
	for _, sa := range seedAccounts {
		if err := accounts.Open(ctx, userID, sa.bank, sa.typ, sa.opening); err != nil {
			log.Fatalf("failed to open %s %s account: %v", sa.bank, sa.typ, err)
		}
	}

	// A spread of history on the Chase checking account: some this month,
	// some last month, so recent and monthly queries both return data.
	now := time.Now()
	balance := seedAccounts[0].opening
	for i, txn := range []struct {
		daysAgo  int
		location string
		summary  string
		kind     string
		amount   int64
	}{
		{40, "Main St Market", "groceries", "purchase", -42_10},
		{33, "Employer Inc", "salary", "deposit", 1_500_00},
		{12, "City Utilities", "electric bill", "payment", -88_31},
		{3, "Corner Cafe", "coffee", "purchase", -4_75},
	} {
		balance += txn.amount
		rec := models.Transaction{
			UserID:      userID,
			BankName:    "Chase",
			AccountType: models.Checking,
			At:          now.AddDate(0, 0, -txn.daysAgo),
			Location:    txn.location,
			Summary:     txn.summary,
			Kind:        txn.kind,
			Amount:      txn.amount,
			NetBalance:  balance,
		}
		if err := st.InsertTransaction(ctx, &rec); err != nil {
			log.Fatalf("failed to insert transaction %d: %v", i, err)
		}
	}

	fmt.Printf("seeded user %s id=%d with %d accounts\n", email, userID, len(seedAccounts))
}
