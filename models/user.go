package models

import (
	"time"
)

// User model
type User struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	FirstName      string `gorm:"size:255;not null"`
	LastName       string `gorm:"size:255;not null"`
	Email          string `gorm:"size:255;not null;unique"`
	HashedPassword []byte `gorm:"not null" json:"-"`
	// Active marks the soft-deactivation state. Archival flips it to false;
	// permanent deletion removes the row (and cascades to accounts).
	Active     bool      `gorm:"default:true;not null"`
	LastSeenAt time.Time `gorm:"index"`
	Accounts   []Account `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
