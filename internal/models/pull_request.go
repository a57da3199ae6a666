package models

import (
	"fmt"
	"time"
)

// Pull request states.
const (
	PRStateOpen   = "open"
	PRStateMerged = "merged"
	PRStateClosed = "closed"
)

// PullRequest is a mirrored snapshot of one remote pull request. The ID is
// deterministic ("projectID:number") so sync passes can upsert in place.
type PullRequest struct {
	ID         string     `gorm:"primaryKey;size:48" json:"id"`
	ProjectID  string     `gorm:"size:36;not null;index" json:"projectId"`
	Number     int        `gorm:"not null" json:"number"`
	Title      string     `gorm:"not null" json:"title"`
	BranchRef  string     `gorm:"size:255" json:"branchRef"`
	SpecNumber *string    `gorm:"size:8" json:"specNumber"`
	State      string     `gorm:"size:16;not null" json:"state"`
	MergedAt   *time.Time `json:"mergedAt"`
	HTMLURL    string     `gorm:"size:512" json:"htmlUrl"`
}

// PullRequestID builds the deterministic row ID for a project's PR number.
func PullRequestID(projectID string, number int) string {
	return fmt.Sprintf("%s:%d", projectID, number)
}
