package models

import "time"

// Adjustment is an append-only manual point correction. WeekNumber nil means
// cumulative (applied to Participant.Points, clamped at zero); a set week
// only affects that week's leaderboard.
type Adjustment struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	ParticipantID uint        `gorm:"not null;index" json:"participant_id"`
	Participant   Participant `gorm:"foreignKey:ParticipantID;constraint:OnDelete:CASCADE" json:"-"`
	Delta         int         `gorm:"not null" json:"delta"`
	AdminTgUserID int64       `gorm:"not null" json:"admin_tg_user_id"`
	Note          *string     `json:"note,omitempty"`
	WeekNumber    *int        `gorm:"index" json:"week_number,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}
