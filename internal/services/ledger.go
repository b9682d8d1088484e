package services

import (
	"github.com/babaearn/Pnl-sharing-card-bot/internal/models"

	"gorm.io/gorm"
)

type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

type AdjustResult struct {
	Code        string
	DisplayName string
	Delta       int
	// OldPoints/NewPoints are only meaningful for cumulative adjustments.
	OldPoints  int
	NewPoints  int
	WeekNumber *int
}

// Adjust records a manual point correction. A nil week mutates the cumulative
// total (clamped at zero); a set week is append-only and only visible in that
// week's leaderboard.
func (l *LedgerService) Adjust(code string, delta int, adminID int64, note string, week *int) (*AdjustResult, error) {
	result := &AdjustResult{Delta: delta, WeekNumber: week}
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var p models.Participant
		if err := tx.Where("code = ?", NormalizeCode(code)).First(&p).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrParticipantNotFound
			}
			return err
		}
		result.Code = p.Code
		result.DisplayName = p.DisplayName
		result.OldPoints = p.Points

		var notePtr *string
		if note != "" {
			notePtr = &note
		}
		adj := models.Adjustment{
			ParticipantID: p.ID,
			Delta:         delta,
			AdminTgUserID: adminID,
			Note:          notePtr,
			WeekNumber:    week,
		}

		if week == nil {
			newPoints := p.Points + delta
			if newPoints < 0 {
				newPoints = 0
			}
			if err := tx.Model(&p).Update("points", newPoints).Error; err != nil {
				return err
			}
			result.NewPoints = newPoints
		}

		if err := tx.Create(&adj).Error; err != nil {
			return err
		}
		return incrementCounter(tx, models.SettingManualAdjustments)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type Correction struct {
	Code        string
	DisplayName string
	OldPoints   int
	NewPoints   int
}

// Recalculate recounts submissions per participant and corrects any drift in
// the denormalized cumulative totals. Running it twice in a row yields no
// corrections on the second run.
func (l *LedgerService) Recalculate() ([]Correction, error) {
	var corrections []Correction
	err := l.db.Transaction(func(tx *gorm.DB) error {
		type countRow struct {
			ParticipantID uint
			Total         int
		}
		var counts []countRow
		if err := tx.Model(&models.Submission{}).
			Select("participant_id, COUNT(*) as total").
			Group("participant_id").
			Scan(&counts).Error; err != nil {
			return err
		}

		for _, row := range counts {
			var p models.Participant
			if err := tx.First(&p, row.ParticipantID).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					continue
				}
				return err
			}
			if p.Points == row.Total {
				continue
			}
			if err := tx.Model(&p).Update("points", row.Total).Error; err != nil {
				return err
			}
			corrections = append(corrections, Correction{
				Code:        p.Code,
				DisplayName: p.DisplayName,
				OldPoints:   p.Points,
				NewPoints:   row.Total,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return corrections, nil
}
