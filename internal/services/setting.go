package services

import (
	"log"
	"strconv"
	"time"

	"github.com/babaearn/Pnl-sharing-card-bot/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingService struct {
	db *gorm.DB
}

func NewSettingService(db *gorm.DB) *SettingService {
	return &SettingService{db: db}
}

// InitDefaults seeds the settings rows on first start. Existing values are
// left untouched.
func (s *SettingService) InitDefaults() error {
	defaults := []models.Setting{
		{Key: models.SettingShowPoints, Value: "true"},
		{Key: models.SettingNextCodeNumber, Value: "1"},
		{Key: models.SettingTotalSubmissions, Value: "0"},
		{Key: models.SettingDuplicates, Value: "0"},
		{Key: models.SettingManualAdjustments, Value: "0"},
		{Key: models.SettingResetAt, Value: time.Now().Format(time.RFC3339)},
		{Key: models.SettingCurrentWeek, Value: "1"},
		{Key: models.SettingWeekLabel, Value: "Week 1"},
	}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&defaults).Error
}

func (s *SettingService) Get(key, fallback string) string {
	var setting models.Setting
	if err := s.db.Where("key = ?", key).First(&setting).Error; err != nil {
		return fallback
	}
	return setting.Value
}

func (s *SettingService) Set(key, value string) error {
	setting := models.Setting{Key: key, Value: value}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&setting).Error
}

func (s *SettingService) ShowPoints() bool {
	return s.Get(models.SettingShowPoints, "true") == "true"
}

func (s *SettingService) SetShowPoints(show bool) error {
	return s.Set(models.SettingShowPoints, strconv.FormatBool(show))
}

// currentWeek reads the week marker inside the caller's transaction so new
// submissions are stamped with the value current at submission time.
func currentWeek(tx *gorm.DB) int {
	var setting models.Setting
	if err := tx.Where("key = ?", models.SettingCurrentWeek).First(&setting).Error; err != nil {
		return 1
	}
	n, err := strconv.Atoi(setting.Value)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// incrementCounter bumps a text-valued settings counter. Safe inside a
// transaction; outside one it is best effort.
func incrementCounter(tx *gorm.DB, key string) error {
	var setting models.Setting
	if err := tx.Where("key = ?", key).First(&setting).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return tx.Create(&models.Setting{Key: key, Value: "1"}).Error
		}
		return err
	}
	n, err := strconv.Atoi(setting.Value)
	if err != nil {
		log.Printf("[settings] counter %s holds %q, resetting", key, setting.Value)
		n = 0
	}
	return tx.Model(&models.Setting{}).Where("key = ?", key).
		Update("value", strconv.Itoa(n+1)).Error
}

func counterValue(db *gorm.DB, key string) int {
	var setting models.Setting
	if err := db.Where("key = ?", key).First(&setting).Error; err != nil {
		return 0
	}
	n, _ := strconv.Atoi(setting.Value)
	return n
}
