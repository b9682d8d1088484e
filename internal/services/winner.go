package services

import (
	"errors"
	"log"

	"github.com/babaearn/Pnl-sharing-card-bot/internal/models"

	"gorm.io/gorm"
)

var ErrNoSubmissionsForWeek = errors.New("no submissions for that week")

type WinnerService struct {
	db          *gorm.DB
	leaderboard *LeaderboardService
}

func NewWinnerService(db *gorm.DB, leaderboard *LeaderboardService) *WinnerService {
	return &WinnerService{db: db, leaderboard: leaderboard}
}

type WinnerEntry struct {
	Rank         int    `json:"rank"`
	Code         string `json:"code"`
	DisplayName  string `json:"display_name"`
	PointsAtTime int    `json:"points_at_time"`
}

// Select snapshots the top of a week's leaderboard into the winners table.
// Reselecting the same week replaces the previous snapshot.
func (s *WinnerService) Select(week, topN int) ([]WinnerEntry, error) {
	if week < 1 {
		return nil, ErrBadWeek
	}
	board, err := s.leaderboard.Top(topN, &week)
	if err != nil {
		return nil, err
	}
	if len(board) == 0 {
		return nil, ErrNoSubmissionsForWeek
	}

	var winners []WinnerEntry
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("week = ?", week).Delete(&models.Winner{}).Error; err != nil {
			return err
		}
		for i, entry := range board {
			w := models.Winner{
				Week:          week,
				Rank:          i + 1,
				ParticipantID: entry.ParticipantID,
				PointsAtTime:  entry.Points,
			}
			if err := tx.Create(&w).Error; err != nil {
				return err
			}
			winners = append(winners, WinnerEntry{
				Rank:         i + 1,
				Code:         entry.Code,
				DisplayName:  entry.DisplayName,
				PointsAtTime: entry.Points,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[winners] saved %d winners for week %d", len(winners), week)
	return winners, nil
}

func (s *WinnerService) Winners(week int) ([]WinnerEntry, error) {
	var winners []WinnerEntry
	err := s.db.Table("winners w").
		Select("w.rank, p.code, p.display_name, w.points_at_time").
		Joins("JOIN participants p ON p.id = w.participant_id").
		Where("w.week = ?", week).
		Order("w.rank ASC").
		Scan(&winners).Error
	if err != nil {
		return nil, err
	}
	return winners, nil
}
