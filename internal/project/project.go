// Package project provides project lifecycle operations.
package project

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/morgan8889/design-flow/internal/models"
	"gorm.io/gorm"
)

// CreateOpts holds parameters for creating a project.
type CreateOpts struct {
	Name      string
	GitHubURL string
	LocalPath string
	Source    string
	Tracked   bool
}

// UpdateOpts holds optional project updates. Nil pointer fields are left
// unchanged.
type UpdateOpts struct {
	IsTracked *bool
	GitHubURL *string
	LocalPath *string
}

// Create inserts a new project. At least one of GitHubURL or LocalPath must
// be set.
func Create(db *gorm.DB, opts CreateOpts) (*models.Project, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("project: name is required: %w", models.ErrInvalidArgument)
	}
	if opts.GitHubURL == "" && opts.LocalPath == "" {
		return nil, fmt.Errorf("project: at least one of GitHub URL or local path is required: %w", models.ErrInvalidArgument)
	}
	if !models.ValidSource(opts.Source) {
		return nil, fmt.Errorf("project: unknown source %q: %w", opts.Source, models.ErrInvalidArgument)
	}

	p := models.Project{
		ID:        uuid.NewString(),
		Name:      opts.Name,
		GitHubURL: opts.GitHubURL,
		LocalPath: opts.LocalPath,
		Source:    opts.Source,
		IsTracked: opts.Tracked,
	}
	if err := db.Create(&p).Error; err != nil {
		return nil, fmt.Errorf("project: create %q: %w", opts.Name, err)
	}
	return &p, nil
}

// Get loads one project by ID.
func Get(db *gorm.DB, id string) (*models.Project, error) {
	var p models.Project
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("project: get %s: %w", id, err)
	}
	return &p, nil
}

// List returns all projects, optionally restricted to tracked ones.
func List(db *gorm.DB, trackedOnly bool) ([]models.Project, error) {
	query := db.Order("created_at")
	if trackedOnly {
		query = query.Where("is_tracked = ?", true)
	}

	var projects []models.Project
	if err := query.Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("project: list: %w", err)
	}
	return projects, nil
}

// Update applies the non-nil fields of opts.
func Update(db *gorm.DB, id string, opts UpdateOpts) (*models.Project, error) {
	updates := map[string]interface{}{}
	if opts.IsTracked != nil {
		updates["is_tracked"] = *opts.IsTracked
	}
	if opts.GitHubURL != nil {
		updates["github_url"] = *opts.GitHubURL
	}
	if opts.LocalPath != nil {
		updates["local_path"] = *opts.LocalPath
	}

	if len(updates) > 0 {
		result := db.Model(&models.Project{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("project: update %s: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, models.ErrNotFound
		}
	}
	return Get(db, id)
}

// Delete removes a project and everything it owns. Child rows are removed
// explicitly rather than relying on driver-level cascade support.
func Delete(db *gorm.DB, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var p models.Project
		if err := tx.Where("id = ?", id).First(&p).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return models.ErrNotFound
			}
			return fmt.Errorf("project: load %s: %w", id, err)
		}

		for _, del := range []interface{}{
			&models.AttentionItem{},
			&models.PullRequest{},
			&models.Plan{},
		} {
			if err := tx.Where("project_id = ?", id).Delete(del).Error; err != nil {
				return fmt.Errorf("project: cascade delete %T: %w", del, err)
			}
		}
		if err := tx.Delete(&p).Error; err != nil {
			return fmt.Errorf("project: delete %s: %w", id, err)
		}
		return nil
	})
}

// StampSynced records a successful sync pass.
func StampSynced(db *gorm.DB, id string) error {
	now := time.Now()
	result := db.Model(&models.Project{}).Where("id = ?", id).Update("last_synced_at", now)
	if result.Error != nil {
		return fmt.Errorf("project: stamp synced %s: %w", id, result.Error)
	}
	return nil
}
