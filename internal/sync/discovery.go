package sync

import (
	"context"
	"fmt"
	"log"

	"github.com/morgan8889/design-flow/internal/attention"
	"github.com/morgan8889/design-flow/internal/models"
	"github.com/morgan8889/design-flow/internal/project"
	"gorm.io/gorm"
)

// DiscoverRepos lists the authenticated user's repositories and records any
// not yet known as untracked discovered projects, each flagged with a
// new_project attention item. Returns the projects created this call.
func (e *Engine) DiscoverRepos(ctx context.Context) ([]models.Project, error) {
	repos, err := e.host.ListRepos(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync: discover repos: %w", err)
	}

	known := make(map[string]bool)
	var existing []models.Project
	if err := e.db.Where("github_url != ''").Find(&existing).Error; err != nil {
		return nil, fmt.Errorf("sync: load known projects: %w", err)
	}
	for _, p := range existing {
		known[p.GitHubURL] = true
	}

	var created []models.Project
	for _, repo := range repos {
		if known[repo.HTMLURL] {
			continue
		}

		p, err := project.Create(e.db, project.CreateOpts{
			Name:      repo.Name,
			GitHubURL: repo.HTMLURL,
			Source:    models.SourceDiscovered,
			Tracked:   false,
		})
		if err != nil {
			log.Printf("sync: record discovered repo %s: %v", repo.FullName, err)
			continue
		}

		e.createItem(p, attention.CreateOpts{
			ProjectID: p.ID,
			Type:      models.AttentionNewProject,
			Title:     "New repository discovered: " + repo.FullName,
			Priority:  1,
			SourceURL: repo.HTMLURL,
		})
		created = append(created, *p)
	}
	return created, nil
}

// sweepStale raises stale_project when a project shows no pull-request
// activity: zero open PRs and the newest merged PR older than the stale
// window. Projects with no merged PRs at all never count as stale. The item
// auto-resolves as soon as activity resumes.
func (e *Engine) sweepStale(p *models.Project) {
	var openCount int64
	e.db.Model(&models.PullRequest{}).
		Where("project_id = ? AND state = ?", p.ID, models.PRStateOpen).
		Count(&openCount)

	var newest models.PullRequest
	err := e.db.Where("project_id = ? AND merged_at IS NOT NULL", p.ID).
		Order("merged_at DESC").
		First(&newest).Error

	stale := openCount == 0 &&
		err == nil &&
		newest.MergedAt != nil &&
		e.now().Sub(*newest.MergedAt) > e.staleAfter
	if err != nil && err != gorm.ErrRecordNotFound {
		log.Printf("sync: stale sweep for %s: %v", p.Name, err)
		return
	}

	if stale {
		e.createItem(p, attention.CreateOpts{
			ProjectID: p.ID,
			Type:      models.AttentionStaleProject,
			Title:     fmt.Sprintf("No activity in %s since %s", p.Name, newest.MergedAt.Format("2006-01-02")),
			Priority:  1,
			SourceURL: p.GitHubURL,
		})
		return
	}

	if err := attention.AutoResolve(e.db, p.ID, models.AttentionStaleProject); err != nil {
		log.Printf("sync: auto-resolve stale_project for %s: %v", p.Name, err)
	}
}
