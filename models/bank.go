package models

import "time"

// Bank is shared across all users; the name is the primary key (there is no
// separate numeric id). CreatedAt preserves insertion order for listings.
type Bank struct {
	Name      string `gorm:"primaryKey;size:255"`
	CreatedAt time.Time
}
