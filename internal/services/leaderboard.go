package services

import (
	"gorm.io/gorm"
)

type LeaderboardService struct {
	db *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{db: db}
}

type LeaderboardEntry struct {
	ParticipantID uint    `json:"participant_id"`
	Code          string  `json:"code"`
	DisplayName   string  `json:"display_name"`
	TgUserID      *int64  `json:"tg_user_id,omitempty"`
	Username      *string `json:"username,omitempty"`
	Points        int     `json:"points"`
}

// Top returns the ranked board. A nil week means cumulative points; a set
// week computes count(submissions in week) + sum(adjustment deltas in week)
// per participant. Zero-activity participants are excluded either way, and
// ties go to the earliest first seen. limit <= 0 returns everyone.
func (s *LeaderboardService) Top(limit int, week *int) ([]LeaderboardEntry, error) {
	var entries []LeaderboardEntry
	if week == nil {
		q := s.db.Table("participants").
			Select("id as participant_id, code, display_name, tg_user_id, username, points").
			Where("points > 0").
			Order("points DESC, first_seen ASC")
		if limit > 0 {
			q = q.Limit(limit)
		}
		if err := q.Scan(&entries).Error; err != nil {
			return nil, err
		}
		return entries, nil
	}

	// Correlated subqueries instead of a double LEFT JOIN: joining both
	// submissions and adjustments would multiply the rows.
	inner := s.db.Table("participants p").
		Select(`p.id as participant_id, p.code, p.display_name, p.tg_user_id, p.username, p.first_seen,
			(SELECT COUNT(*) FROM submissions s WHERE s.participant_id = p.id AND s.week_number = ?)
			+ (SELECT COALESCE(SUM(a.delta), 0) FROM adjustments a WHERE a.participant_id = p.id AND a.week_number = ?)
			as points`, *week, *week)
	q := s.db.Table("(?) as ranked", inner).
		Select("participant_id, code, display_name, tg_user_id, username, points").
		Where("points > 0").
		Order("points DESC, first_seen ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
