package models

import "time"

// Project source values.
const (
	SourceDiscovered = "github_discovered"
	SourceManual     = "github_manual"
	SourceLocal      = "local"
)

// Project is a tracked or discovered repository.
type Project struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Name         string     `gorm:"not null" json:"name"`
	GitHubURL    string     `gorm:"column:github_url;size:512" json:"githubUrl"`
	LocalPath    string     `gorm:"size:512" json:"localPath"`
	Source       string     `gorm:"size:32;not null" json:"source"`
	IsTracked    bool       `gorm:"default:false;index" json:"isTracked"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastSyncedAt *time.Time `json:"lastSyncedAt"`

	Plans          []Plan          `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	AttentionItems []AttentionItem `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	PullRequests   []PullRequest   `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
}

// ValidSource reports whether s is one of the known project sources.
func ValidSource(s string) bool {
	switch s {
	case SourceDiscovered, SourceManual, SourceLocal:
		return true
	}
	return false
}
