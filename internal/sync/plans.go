package sync

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/morgan8889/design-flow/internal/attention"
	"github.com/morgan8889/design-flow/internal/models"
	"gorm.io/gorm"
)

// Plan document locations, merged per sync pass.
const (
	plansDir    = "docs/plans"
	specsDir    = "specs"
	roadmapFile = "ROADMAP.md"
)

// hashContent fingerprints plan file content for change detection.
func hashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// planCandidates merges the three plan sources, keeping only markdown files
// and deduplicating paths. Listing failures degrade to an empty source.
func (e *Engine) planCandidates(ctx context.Context, owner, repo string) []string {
	var paths []string

	flat, err := e.host.ListDirectoryContents(ctx, owner, repo, plansDir)
	if err != nil {
		log.Printf("sync: list %s for %s/%s: %v", plansDir, owner, repo, err)
	}
	paths = append(paths, flat...)

	recursive, err := e.host.ListFilesRecursively(ctx, owner, repo, specsDir)
	if err != nil {
		log.Printf("sync: list %s for %s/%s: %v", specsDir, owner, repo, err)
	}
	paths = append(paths, recursive...)

	// The roadmap joins the candidate list unconditionally; the content fetch
	// below drops it when the file does not exist.
	paths = append(paths, roadmapFile)

	seen := make(map[string]bool, len(paths))
	var out []string
	for _, path := range paths {
		if !strings.HasSuffix(path, ".md") || seen[path] {
			continue
		}
		seen[path] = true
		out = append(out, path)
	}
	return out
}

// syncPlans reconciles plan files: unchanged content (same hash) is a strict
// no-op, changed content updates the row and raises plan_changed, new files
// insert silently.
func (e *Engine) syncPlans(ctx context.Context, p *models.Project, owner, repo string) error {
	for _, filePath := range e.planCandidates(ctx, owner, repo) {
		file, err := e.host.GetFileContent(ctx, owner, repo, filePath)
		if err != nil {
			log.Printf("sync: fetch %s for %s: %v", filePath, p.Name, err)
			continue
		}
		if file == nil {
			continue
		}

		newHash := hashContent(file.Content)

		var existing models.Plan
		lookupErr := e.db.Where("project_id = ? AND file_path = ?", p.ID, filePath).First(&existing).Error
		if lookupErr != nil && lookupErr != gorm.ErrRecordNotFound {
			return fmt.Errorf("sync: load plan %s/%s: %w", p.ID, filePath, lookupErr)
		}
		hasExisting := lookupErr == nil

		if hasExisting && existing.FileHash == newHash {
			continue
		}

		parsed, ok := e.registry.DetectAndParse(file.Content)
		if !ok {
			continue
		}
		phasesJSON, err := json.Marshal(parsed.Phases)
		if err != nil {
			return fmt.Errorf("sync: marshal phases for %s: %w", filePath, err)
		}

		if hasExisting {
			updates := map[string]interface{}{
				"title":     parsed.Title,
				"format":    parsed.Format,
				"phases":    string(phasesJSON),
				"file_hash": newHash,
				"parsed_at": time.Now(),
			}
			if err := e.db.Model(&models.Plan{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
				return fmt.Errorf("sync: update plan %s: %w", existing.ID, err)
			}

			e.createItem(p, attention.CreateOpts{
				ProjectID: p.ID,
				PlanID:    existing.ID,
				Type:      models.AttentionPlanChanged,
				Title:     "Plan updated: " + parsed.Title,
				Priority:  2,
			})
			continue
		}

		// First discovery of a file is not itself a change.
		row := models.Plan{
			ID:        uuid.NewString(),
			ProjectID: p.ID,
			FilePath:  filePath,
			Title:     parsed.Title,
			Format:    parsed.Format,
			Phases:    string(phasesJSON),
			FileHash:  newHash,
			ParsedAt:  time.Now(),
		}
		if err := e.db.Create(&row).Error; err != nil {
			return fmt.Errorf("sync: insert plan %s: %w", filePath, err)
		}
	}
	return nil
}
