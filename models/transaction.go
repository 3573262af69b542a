package models

import "time"

// Transaction is an immutable history record scoped to one account by the
// (user, bank, account type) composite rather than a numeric account id.
// NetBalance snapshots the account balance after the transaction applied.
type Transaction struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UserID      uint        `gorm:"index;not null;index:idx_txn_scope"`
	BankName    string      `gorm:"size:255;not null;index:idx_txn_scope"`
	AccountType AccountType `gorm:"size:16;not null;index:idx_txn_scope"`
	At          time.Time   `gorm:"column:trans_at;index;not null"`
	Location    string      `gorm:"size:255"`
	Summary     string      `gorm:"size:512"`
	Kind        string      `gorm:"size:32"`
	Amount      int64       `gorm:"not null"`
	NetBalance  int64       `gorm:"not null"`
}
