package models

import "time"

// Plan is one parsed planning document belonging to a project. Phases holds
// the parsed phase tree as JSON text.
type Plan struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ProjectID string    `gorm:"size:36;not null;uniqueIndex:idx_plans_project_path" json:"projectId"`
	FilePath  string    `gorm:"size:512;not null;uniqueIndex:idx_plans_project_path" json:"filePath"`
	Title     string    `gorm:"not null" json:"title"`
	Format    string    `gorm:"size:64;not null" json:"format"`
	Phases    string    `gorm:"type:text;not null" json:"-"`
	FileHash  string    `gorm:"size:64;not null" json:"fileHash"`
	ParsedAt  time.Time `json:"parsedAt"`
}
