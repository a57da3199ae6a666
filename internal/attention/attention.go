// Package attention manages the lifecycle of actionable notification items:
// deduplicated creation, explicit and condition-based resolution, and the
// prioritized active queue.
package attention

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/morgan8889/design-flow/internal/models"
	"gorm.io/gorm"
)

// CreateOpts holds parameters for creating an attention item.
type CreateOpts struct {
	ProjectID string
	PlanID    string // optional
	Type      string
	Title     string
	Detail    string // optional
	Priority  int    // 1 lowest – 5 highest
	SourceURL string // optional
}

// Create inserts a new attention item unless an active item with the same
// (project, type) already exists, in which case the existing item is returned
// unchanged and created is false. Callers invoke this unconditionally whenever
// a triggering condition is observed; this dedup check is the sole guard
// against duplicate items.
func Create(db *gorm.DB, opts CreateOpts) (item *models.AttentionItem, created bool, err error) {
	if opts.ProjectID == "" {
		return nil, false, fmt.Errorf("attention: project ID is required")
	}
	if !models.ValidAttentionType(opts.Type) {
		return nil, false, fmt.Errorf("attention: unknown type %q", opts.Type)
	}

	var existing models.AttentionItem
	result := db.Where("project_id = ? AND type = ? AND resolved_at IS NULL",
		opts.ProjectID, opts.Type).First(&existing)
	if result.Error == nil {
		return &existing, false, nil
	}
	if result.Error != gorm.ErrRecordNotFound {
		return nil, false, fmt.Errorf("attention: dedup lookup: %w", result.Error)
	}

	row := models.AttentionItem{
		ID:        uuid.NewString(),
		ProjectID: opts.ProjectID,
		Type:      opts.Type,
		Title:     opts.Title,
		Detail:    opts.Detail,
		Priority:  opts.Priority,
		SourceURL: opts.SourceURL,
	}
	if opts.PlanID != "" {
		row.PlanID = &opts.PlanID
	}

	if err := db.Create(&row).Error; err != nil {
		return nil, false, fmt.Errorf("attention: create %s item: %w", opts.Type, err)
	}
	return &row, true, nil
}

// Resolve stamps the item resolved now. Resolving an already-resolved or
// absent item is a no-op.
func Resolve(db *gorm.DB, id string) error {
	now := time.Now()
	result := db.Model(&models.AttentionItem{}).
		Where("id = ? AND resolved_at IS NULL", id).
		Update("resolved_at", now)
	if result.Error != nil {
		return fmt.Errorf("attention: resolve %s: %w", id, result.Error)
	}
	return nil
}

// AutoResolve stamps every active item matching (project, type) resolved now.
// The sync engine calls this when a triggering condition has cleared.
func AutoResolve(db *gorm.DB, projectID, itemType string) error {
	now := time.Now()
	result := db.Model(&models.AttentionItem{}).
		Where("project_id = ? AND type = ? AND resolved_at IS NULL", projectID, itemType).
		Update("resolved_at", now)
	if result.Error != nil {
		return fmt.Errorf("attention: auto-resolve %s/%s: %w", projectID, itemType, result.Error)
	}
	return nil
}

// Active returns all unresolved items, optionally filtered by project,
// ordered most urgent and most recent first.
func Active(db *gorm.DB, projectID string) ([]models.AttentionItem, error) {
	query := db.Where("resolved_at IS NULL")
	if projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	var items []models.AttentionItem
	if err := query.Order("priority DESC, created_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("attention: list active: %w", err)
	}
	return items, nil
}

// Resolved returns recently resolved items, newest resolution first.
func Resolved(db *gorm.DB, limit int) ([]models.AttentionItem, error) {
	if limit <= 0 {
		limit = 50
	}

	var items []models.AttentionItem
	err := db.Where("resolved_at IS NOT NULL").
		Order("resolved_at DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("attention: list resolved: %w", err)
	}
	return items, nil
}

// Get loads one item by ID.
func Get(db *gorm.DB, id string) (*models.AttentionItem, error) {
	var item models.AttentionItem
	if err := db.Where("id = ?", id).First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("attention: get %s: %w", id, err)
	}
	return &item, nil
}
