package models

import "time"

// AccountType is the closed set of account kinds a user may hold.
type AccountType string

const (
	Checking AccountType = "checking"
	Savings  AccountType = "savings"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	return t == Checking || t == Savings
}

// Account represents one account a user holds at a bank. A user may hold at
// most one account of each type per bank, hence the composite unique index.
// Balance is in the smallest currency unit (e.g. cents) and may go negative.
type Account struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uint        `gorm:"index;not null;uniqueIndex:idx_owner_bank_type"`
	BankName  string      `gorm:"size:255;not null;uniqueIndex:idx_owner_bank_type"`
	Type      AccountType `gorm:"size:16;not null;uniqueIndex:idx_owner_bank_type"`
	Balance   int64       `gorm:"not null"`
}
