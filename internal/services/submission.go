package services

import (
	"errors"

	"github.com/babaearn/Pnl-sharing-card-bot/internal/models"

	"gorm.io/gorm"
)

type SubmissionService struct {
	db *gorm.DB
}

func NewSubmissionService(db *gorm.DB) *SubmissionService {
	return &SubmissionService{db: db}
}

type SubmitResult struct {
	Added      bool
	WeekNumber int
}

// Submit credits one photo to a participant at most once. The insert, the
// point increment and the week stamp share a single transaction; the
// (participant_id, photo_file_id) unique index rejecting the insert is the
// authoritative duplicate signal, not a prior existence check.
func (s *SubmissionService) Submit(participantID uint, photoFileID, source string, tgMessageID *int64) (SubmitResult, error) {
	week := 1
	err := s.db.Transaction(func(tx *gorm.DB) error {
		week = currentWeek(tx)
		sub := models.Submission{
			ParticipantID: participantID,
			PhotoFileID:   photoFileID,
			Source:        source,
			TgMessageID:   tgMessageID,
			WeekNumber:    week,
		}
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Participant{}).Where("id = ?", participantID).
			Update("points", gorm.Expr("points + 1")).Error; err != nil {
			return err
		}
		return incrementCounter(tx, models.SettingTotalSubmissions)
	})
	if err == nil {
		return SubmitResult{Added: true, WeekNumber: week}, nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// The transaction rolled back, so the duplicate counter is bumped on
		// its own. Losing it on a crash is tolerable; losing a point is not.
		_ = incrementCounter(s.db, models.SettingDuplicates)
		return SubmitResult{Added: false, WeekNumber: week}, nil
	}
	return SubmitResult{}, err
}

func (s *SubmissionService) TotalCount() (int64, error) {
	var n int64
	err := s.db.Model(&models.Submission{}).Count(&n).Error
	return n, err
}
