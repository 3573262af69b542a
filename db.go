package main

import (
	"log"

	"banktrack/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func openDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	return db
}

// autoMigrate migrates models individually so a failure on one doesn't block
// the others.
func autoMigrate(db *gorm.DB) {
	if err := db.AutoMigrate(&models.User{}); err != nil {
		log.Printf("migration warning (users): %v", err)
	}
	if err := db.AutoMigrate(&models.Bank{}); err != nil {
		log.Printf("migration warning (banks): %v", err)
	}
	if err := db.AutoMigrate(&models.Account{}); err != nil {
		log.Printf("migration warning (accounts): %v", err)
	}
	if err := db.AutoMigrate(&models.Transaction{}); err != nil {
		log.Printf("migration warning (transactions): %v", err)
	}
}
