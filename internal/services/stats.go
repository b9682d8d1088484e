package services

import (
	"log"
	"time"

	"github.com/babaearn/Pnl-sharing-card-bot/internal/models"

	"gorm.io/gorm"
)

type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

type Stats struct {
	TotalParticipants int64   `json:"total_participants"`
	TotalSubmissions  int     `json:"total_submissions"`
	Duplicates        int     `json:"duplicates"`
	ManualAdjustments int     `json:"manual_adjustments"`
	MostActive        string  `json:"most_active"`
	MaxPoints         int     `json:"max_points"`
	AvgPoints         float64 `json:"avg_points"`
	ResetAt           string  `json:"reset_at"`
}

// Engagement reports the since-reset counters plus a few aggregates over
// participants with points.
func (s *StatsService) Engagement() (*Stats, error) {
	stats := &Stats{
		TotalSubmissions:  counterValue(s.db, models.SettingTotalSubmissions),
		Duplicates:        counterValue(s.db, models.SettingDuplicates),
		ManualAdjustments: counterValue(s.db, models.SettingManualAdjustments),
	}

	var setting models.Setting
	if err := s.db.Where("key = ?", models.SettingResetAt).First(&setting).Error; err == nil {
		stats.ResetAt = setting.Value
	}

	if err := s.db.Model(&models.Participant{}).Where("points > 0").
		Count(&stats.TotalParticipants).Error; err != nil {
		return nil, err
	}

	var top models.Participant
	err := s.db.Where("points > 0").Order("points DESC").First(&top).Error
	switch err {
	case nil:
		stats.MostActive = top.DisplayName
		stats.MaxPoints = top.Points
	case gorm.ErrRecordNotFound:
		stats.MostActive = "None"
	default:
		return nil, err
	}

	if stats.TotalParticipants > 0 {
		var avg *float64
		if err := s.db.Model(&models.Participant{}).Where("points > 0").
			Select("AVG(points)").Scan(&avg).Error; err != nil {
			return nil, err
		}
		if avg != nil {
			stats.AvgPoints = *avg
		}
	}
	return stats, nil
}

// ResetAll wipes every participant, submission, adjustment and winner and
// rewinds the counters, starting the campaign over from #01. Callers gate
// this behind an explicit confirmation.
func (s *StatsService) ResetAll() error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&models.Winner{}, &models.Adjustment{}, &models.Submission{},
			&models.PhotoHash{}, &models.Participant{},
		} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}
		resets := map[string]string{
			models.SettingNextCodeNumber:    "1",
			models.SettingTotalSubmissions:  "0",
			models.SettingDuplicates:        "0",
			models.SettingManualAdjustments: "0",
			models.SettingResetAt:           time.Now().Format(time.RFC3339),
		}
		for key, value := range resets {
			if err := setValue(tx, key, value); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		log.Println("[stats] ALL DATA RESET, starting fresh from #01")
	}
	return err
}
