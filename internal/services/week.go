package services

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/babaearn/Pnl-sharing-card-bot/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrBadWeek = errors.New("week number must be 1 or greater")

// ErrNoBackup means a restore was requested for a week that was never purged.
var ErrNoBackup = errors.New("no backup data for that week")

type WeekService struct {
	db *gorm.DB
}

func NewWeekService(db *gorm.DB) *WeekService {
	return &WeekService{db: db}
}

func (s *WeekService) Current() (int, string) {
	week := currentWeek(s.db)
	var setting models.Setting
	label := fmt.Sprintf("Week %d", week)
	if err := s.db.Where("key = ?", models.SettingWeekLabel).First(&setting).Error; err == nil {
		label = setting.Value
	}
	return week, label
}

// Set overrides the week marker. Existing submissions keep the week they
// were stamped with.
func (s *WeekService) Set(week int, label string) (string, error) {
	if week < 1 {
		return "", ErrBadWeek
	}
	if label == "" {
		label = fmt.Sprintf("Week %d", week)
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := setValue(tx, models.SettingCurrentWeek, strconv.Itoa(week)); err != nil {
			return err
		}
		return setValue(tx, models.SettingWeekLabel, label)
	})
	if err != nil {
		return "", err
	}
	log.Printf("[week] marker set to %d (%s)", week, label)
	return label, nil
}

// StartNew increments the week counter. No data is deleted.
func (s *WeekService) StartNew(label string) (oldLabel, newLabel string, oldWeek, newWeek int, err error) {
	err = s.db.Transaction(func(tx *gorm.DB) error {
		oldWeek = currentWeek(tx)
		var setting models.Setting
		oldLabel = fmt.Sprintf("Week %d", oldWeek)
		if err := tx.Where("key = ?", models.SettingWeekLabel).First(&setting).Error; err == nil {
			oldLabel = setting.Value
		}

		newWeek = oldWeek + 1
		newLabel = label
		if newLabel == "" {
			newLabel = fmt.Sprintf("Week %d", newWeek)
		}
		if err := setValue(tx, models.SettingCurrentWeek, strconv.Itoa(newWeek)); err != nil {
			return err
		}
		return setValue(tx, models.SettingWeekLabel, newLabel)
	})
	if err == nil {
		log.Printf("[week] started new week: %s -> %s", oldLabel, newLabel)
	}
	return
}

// DeleteData removes a week's submissions and adjustments after copying them
// into the backup tables, so RestoreData can undo the purge. Participants and
// cumulative totals stay as they are.
func (s *WeekService) DeleteData(week int, adminID int64) (subs int64, adjs int64, err error) {
	if week < 1 {
		return 0, 0, ErrBadWeek
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var submissions []models.Submission
		if err := tx.Where("week_number = ?", week).Find(&submissions).Error; err != nil {
			return err
		}
		for _, sub := range submissions {
			backup := models.DeletedSubmission{
				OriginalID:        sub.ID,
				ParticipantID:     sub.ParticipantID,
				PhotoFileID:       sub.PhotoFileID,
				Source:            sub.Source,
				TgMessageID:       sub.TgMessageID,
				WeekNumber:        sub.WeekNumber,
				OriginalCreatedAt: sub.CreatedAt,
				DeletedByAdmin:    adminID,
			}
			if err := tx.Create(&backup).Error; err != nil {
				return err
			}
		}

		var adjustments []models.Adjustment
		if err := tx.Where("week_number = ?", week).Find(&adjustments).Error; err != nil {
			return err
		}
		for _, adj := range adjustments {
			backup := models.DeletedAdjustment{
				OriginalID:        adj.ID,
				ParticipantID:     adj.ParticipantID,
				Delta:             adj.Delta,
				AdminTgUserID:     adj.AdminTgUserID,
				Note:              adj.Note,
				WeekNumber:        adj.WeekNumber,
				OriginalCreatedAt: adj.CreatedAt,
				DeletedByAdmin:    adminID,
			}
			if err := tx.Create(&backup).Error; err != nil {
				return err
			}
		}

		subs = int64(len(submissions))
		adjs = int64(len(adjustments))
		if err := tx.Where("week_number = ?", week).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		return tx.Where("week_number = ?", week).Delete(&models.Adjustment{}).Error
	})
	if err == nil {
		log.Printf("[week] deleted week %d data (backed up): %d submissions, %d adjustments", week, subs, adjs)
	}
	return
}

// RestoreData reinserts a purged week from the backup tables and clears the
// backup. Submissions that reappeared since the purge are skipped by the
// unique constraint. Cumulative totals are not recomputed here; that is what
// the reconciliation command is for.
func (s *WeekService) RestoreData(week int) (subs int64, adjs int64, err error) {
	if week < 1 {
		return 0, 0, ErrBadWeek
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var backupSubs []models.DeletedSubmission
		if err := tx.Where("week_number = ?", week).Find(&backupSubs).Error; err != nil {
			return err
		}
		var backupAdjs []models.DeletedAdjustment
		if err := tx.Where("week_number = ?", week).Find(&backupAdjs).Error; err != nil {
			return err
		}
		if len(backupSubs) == 0 && len(backupAdjs) == 0 {
			return ErrNoBackup
		}

		for _, b := range backupSubs {
			sub := models.Submission{
				ParticipantID: b.ParticipantID,
				PhotoFileID:   b.PhotoFileID,
				Source:        b.Source,
				TgMessageID:   b.TgMessageID,
				WeekNumber:    b.WeekNumber,
				CreatedAt:     b.OriginalCreatedAt,
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&sub).Error; err != nil {
				return err
			}
		}
		for _, b := range backupAdjs {
			adj := models.Adjustment{
				ParticipantID: b.ParticipantID,
				Delta:         b.Delta,
				AdminTgUserID: b.AdminTgUserID,
				Note:          b.Note,
				WeekNumber:    b.WeekNumber,
				CreatedAt:     b.OriginalCreatedAt,
			}
			if err := tx.Create(&adj).Error; err != nil {
				return err
			}
		}

		subs = int64(len(backupSubs))
		adjs = int64(len(backupAdjs))
		if err := tx.Where("week_number = ?", week).Delete(&models.DeletedSubmission{}).Error; err != nil {
			return err
		}
		return tx.Where("week_number = ?", week).Delete(&models.DeletedAdjustment{}).Error
	})
	if err == nil {
		log.Printf("[week] restored week %d data: %d submissions, %d adjustments", week, subs, adjs)
	}
	return
}

func setValue(tx *gorm.DB, key, value string) error {
	setting := models.Setting{Key: key, Value: value}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&setting).Error
}
