package models

import "time"

// Attention item types. At most one active item per (project, type) exists;
// dedup is enforced by attention.Create, not by a DB constraint.
const (
	AttentionPRNeedsReview = "pr_needs_review"
	AttentionChecksFailing = "checks_failing"
	AttentionPRMergeReady  = "pr_merge_ready"
	AttentionPlanChanged   = "plan_changed"
	AttentionPhaseBlocked  = "phase_blocked"
	AttentionNewProject    = "new_project"
	AttentionStaleProject  = "stale_project"
)

// AttentionItem is an actionable notification. ResolvedAt nil means active.
type AttentionItem struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	ProjectID  string     `gorm:"size:36;not null;index" json:"projectId"`
	PlanID     *string    `gorm:"size:36" json:"planId"`
	Type       string     `gorm:"size:32;not null;index" json:"type"`
	Title      string     `gorm:"not null" json:"title"`
	Detail     string     `gorm:"type:text" json:"detail"`
	Priority   int        `gorm:"not null" json:"priority"`
	SourceURL  string     `gorm:"size:512" json:"sourceUrl"`
	CreatedAt  time.Time  `json:"createdAt"`
	ResolvedAt *time.Time `json:"resolvedAt"`

	Plan *Plan `gorm:"foreignKey:PlanID;constraint:OnDelete:SET NULL" json:"-"`
}

// ValidAttentionType reports whether t is one of the known attention types.
func ValidAttentionType(t string) bool {
	switch t {
	case AttentionPRNeedsReview, AttentionChecksFailing, AttentionPRMergeReady,
		AttentionPlanChanged, AttentionPhaseBlocked, AttentionNewProject,
		AttentionStaleProject:
		return true
	}
	return false
}
