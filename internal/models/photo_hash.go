package models

import "time"

// PhotoHash is advisory fraud-detection data. Near matches are logged only;
// a hash never blocks a submission.
type PhotoHash struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ParticipantID *uint     `gorm:"index" json:"participant_id,omitempty"`
	Phash         string    `gorm:"size:64;not null" json:"phash"`
	CreatedAt     time.Time `json:"created_at"`
}
