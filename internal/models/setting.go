package models

// Setting is a flat key→value configuration row.
type Setting struct {
	Key   string `gorm:"primaryKey;size:64"`
	Value string `gorm:"type:text;not null"`
}

// Well-known setting keys.
const (
	SettingGitHubToken     = "github_token"
	SettingNotifyThreshold = "notify_threshold"
	SettingSyncInterval    = "sync_interval"
)
