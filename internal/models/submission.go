package models

import "time"

const (
	SourceTopic   = "topic"
	SourceForward = "forward"
	SourceManual  = "manual"
)

// Submission is one credited photo. The (participant, photo) unique index is
// the at-most-once-credit guarantee; a duplicate insert is rejected by the
// database, not by an application-level existence check.
type Submission struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	ParticipantID uint        `gorm:"not null;uniqueIndex:idx_participant_photo" json:"participant_id"`
	Participant   Participant `gorm:"foreignKey:ParticipantID;constraint:OnDelete:CASCADE" json:"-"`
	PhotoFileID   string      `gorm:"size:255;not null;uniqueIndex:idx_participant_photo;index" json:"photo_file_id"`
	Source        string      `gorm:"size:10;not null" json:"source"`
	TgMessageID   *int64      `json:"tg_message_id,omitempty"`
	WeekNumber    int         `gorm:"not null;default:1;index" json:"week_number"`
	CreatedAt     time.Time   `json:"created_at"`
}
