package models

import "time"

// DeletedSubmission backs up a submission removed by a week purge so the
// purge can be undone.
type DeletedSubmission struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	OriginalID        uint      `gorm:"not null" json:"original_id"`
	ParticipantID     uint      `gorm:"not null" json:"participant_id"`
	PhotoFileID       string    `gorm:"size:255;not null" json:"photo_file_id"`
	Source            string    `gorm:"size:10;not null" json:"source"`
	TgMessageID       *int64    `json:"tg_message_id,omitempty"`
	WeekNumber        int       `gorm:"not null;index" json:"week_number"`
	OriginalCreatedAt time.Time `gorm:"not null" json:"original_created_at"`
	DeletedAt         time.Time `json:"deleted_at"`
	DeletedByAdmin    int64     `gorm:"not null" json:"deleted_by_admin"`
}

// DeletedAdjustment is the adjustment counterpart of DeletedSubmission.
type DeletedAdjustment struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	OriginalID        uint      `gorm:"not null" json:"original_id"`
	ParticipantID     uint      `gorm:"not null" json:"participant_id"`
	Delta             int       `gorm:"not null" json:"delta"`
	AdminTgUserID     int64     `gorm:"not null" json:"admin_tg_user_id"`
	Note              *string   `json:"note,omitempty"`
	WeekNumber        *int      `gorm:"index" json:"week_number,omitempty"`
	OriginalCreatedAt time.Time `gorm:"not null" json:"original_created_at"`
	DeletedAt         time.Time `json:"deleted_at"`
	DeletedByAdmin    int64     `gorm:"not null" json:"deleted_by_admin"`
}
