// Command seed populates a development database with a demo test.
package main

import (
	"log"

	"github.com/parikshasetu/api/config"
	"github.com/parikshasetu/api/database"
	"gorm.io/gorm"
)

func main() {
	if err := config.LoadENV(); err != nil {
		log.Fatalf("Failed to load environment: %v", err)
	}

	store, err := database.StartGORM()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	if err := database.SeedDemoTest(db); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding completed")
}
