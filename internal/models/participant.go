package models

import "time"

// Participant is one tracked person. IdentityKey is "tg:<user_id>" when the
// Telegram id is known and "name:<normalized name>" otherwise; it is the
// dedup key for "same person". Code is assigned once and never changes.
type Participant struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"size:16;uniqueIndex;not null" json:"code"`
	IdentityKey string    `gorm:"size:255;uniqueIndex;not null" json:"-"`
	TgUserID    *int64    `gorm:"index" json:"tg_user_id,omitempty"`
	Username    *string   `gorm:"size:100" json:"username,omitempty"`
	DisplayName string    `gorm:"size:255;not null" json:"display_name"`
	Points      int       `gorm:"not null;default:0" json:"points"`
	FirstSeen   time.Time `json:"first_seen"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
