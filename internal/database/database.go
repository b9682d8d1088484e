package database

import (
	"fmt"
	"log"

	"github.com/babaearn/Pnl-sharing-card-bot/internal/config"
	"github.com/babaearn/Pnl-sharing-card-bot/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config) *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)

	// TranslateError turns driver unique-violations into gorm.ErrDuplicatedKey,
	// which the submission and participant services rely on as the duplicate
	// signal.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	log.Println("database connected")
	return db
}

func AutoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.Participant{},
		&models.Submission{},
		&models.Adjustment{},
		&models.Setting{},
		&models.Winner{},
		&models.PhotoHash{},
		&models.DeletedSubmission{},
		&models.DeletedAdjustment{},
	)
	if err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}
	log.Println("database migrated")
}
