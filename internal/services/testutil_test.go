package services

import (
	"testing"

	"github.com/babaearn/Pnl-sharing-card-bot/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB opens an in-memory sqlite database pinned to a single connection so
// every goroutine in a test sees the same data. TranslateError is on, same as
// production, because the services depend on gorm.ErrDuplicatedKey.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.Participant{},
		&models.Submission{},
		&models.Adjustment{},
		&models.Setting{},
		&models.Winner{},
		&models.PhotoHash{},
		&models.DeletedSubmission{},
		&models.DeletedAdjustment{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if err := NewSettingService(db).InitDefaults(); err != nil {
		t.Fatalf("seed settings: %v", err)
	}
	return db
}

func int64Ptr(n int64) *int64 { return &n }

func strPtr(s string) *string { return &s }

// mustResolve creates or finds a participant keyed by a Telegram user id.
func mustResolve(t *testing.T, svc *ParticipantService, tgID int64, name string) *models.Participant {
	t.Helper()
	p, err := svc.Resolve(int64Ptr(tgID), nil, name)
	if err != nil {
		t.Fatalf("resolve %d: %v", tgID, err)
	}
	return p
}
