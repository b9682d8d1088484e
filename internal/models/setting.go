package models

// Setting is a key-value row. Holds the current week marker, the next-code
// counter, the show-points flag and the since-reset counters.
type Setting struct {
	Key   string `gorm:"primaryKey;size:64" json:"key"`
	Value string `gorm:"not null" json:"value"`
}

const (
	SettingShowPoints        = "show_points"
	SettingNextCodeNumber    = "next_code_number"
	SettingTotalSubmissions  = "since_reset_total_submissions"
	SettingDuplicates        = "since_reset_duplicates"
	SettingManualAdjustments = "since_reset_manual_adjustments"
	SettingResetAt           = "reset_at"
	SettingCurrentWeek       = "current_week"
	SettingWeekLabel         = "week_label"
)
