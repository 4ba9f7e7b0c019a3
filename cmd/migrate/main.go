// Command migrate copies the three JSON collections from the flat-file
// store into the database store selected by STORAGE_DRIVER (sqlite or
// postgres), for deployments moving off flat files.
package main

import (
	"log"

	"blueme/internal/config"
	"blueme/internal/models"
	"blueme/internal/store"
)

func main() {
	cfg := config.LoadConfig()
	if cfg.StorageDriver == "json" || cfg.StorageDriver == "" {
		log.Fatal("Set STORAGE_DRIVER=sqlite or postgres to pick the migration destination")
	}

	source := store.NewFileStore(cfg.DataDir)
	dest, err := store.NewDatabaseStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open destination store: %v", err)
	}

	log.Printf("Migrating %s -> %s storage", cfg.DataDir, cfg.StorageDriver)

	migrate := func(collection string, value interface{}) {
		if err := source.Load(collection, value); err != nil {
			log.Fatalf("Failed to read %s: %v", collection, err)
		}
		if err := dest.Save(collection, value); err != nil {
			log.Fatalf("Failed to write %s: %v", collection, err)
		}
		log.Printf("Migrated collection %s", collection)
	}

	users := []models.User{}
	migrate(store.CollectionUsers, &users)
	log.Printf("  %d users", len(users))

	contacts := map[string][]models.Contact{}
	migrate(store.CollectionContacts, &contacts)
	log.Printf("  %d contact lists", len(contacts))

	messages := []models.Message{}
	migrate(store.CollectionMessages, &messages)
	log.Printf("  %d messages", len(messages))

	log.Println("Migration completed")
}
