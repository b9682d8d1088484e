package models

import "time"

// Winner is a snapshot of one leaderboard slot at selection time. Reselecting
// a week replaces its rows; (week, rank) stays unique.
type Winner struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	Week          int         `gorm:"not null;uniqueIndex:idx_week_rank" json:"week"`
	Rank          int         `gorm:"not null;uniqueIndex:idx_week_rank" json:"rank"`
	ParticipantID uint        `gorm:"not null" json:"participant_id"`
	Participant   Participant `gorm:"foreignKey:ParticipantID;constraint:OnDelete:CASCADE" json:"-"`
	PointsAtTime  int         `gorm:"not null" json:"points_at_time"`
	CreatedAt     time.Time   `json:"created_at"`
}
