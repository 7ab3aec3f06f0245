package database

import (
	"log"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"ragchat/entities"
)

// OpenSQLite opens (or creates) the metadata store and migrates its
// schema. The vector index lives elsewhere; sqlite only records which
// files each job carries and when ingestion finished.
func OpenSQLite(path string) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		log.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&entities.UploadedFile{},
		&entities.JobMetadata{},
	); err != nil {
		log.Fatalf("automigrate: %v", err)
	}

	return db
}
