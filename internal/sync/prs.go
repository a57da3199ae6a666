package sync

import (
	"context"
	"fmt"
	"regexp"

	"github.com/morgan8889/design-flow/internal/attention"
	"github.com/morgan8889/design-flow/internal/github"
	"github.com/morgan8889/design-flow/internal/models"
	"gorm.io/gorm/clause"
)

// specNumberRe matches a three-digit spec identifier prefix in a branch name,
// e.g. "016-portfolio-management".
var specNumberRe = regexp.MustCompile(`(\d{3})-`)

// extractSpecNumber pulls a spec identifier out of a branch ref, or nil.
func extractSpecNumber(branchRef string) *string {
	m := specNumberRe.FindStringSubmatch(branchRef)
	if m == nil {
		return nil
	}
	return &m[1]
}

// syncPullRequests reconciles open PR state into attention items and mirrors
// the full PR set into storage. Auto-resolution afterwards makes the active
// item set a pure function of the current remote snapshot.
func (e *Engine) syncPullRequests(ctx context.Context, p *models.Project, owner, repo string) error {
	open, err := e.host.ListOpenPRs(ctx, owner, repo)
	if err != nil {
		return fmt.Errorf("sync: open PRs for %s: %w", p.Name, err)
	}

	hasFailingChecks := false
	hasReviewRequests := false

	for _, pr := range open {
		if pr.Draft {
			continue
		}

		if len(pr.RequestedReviewers) > 0 {
			hasReviewRequests = true
			e.createItem(p, attention.CreateOpts{
				ProjectID: p.ID,
				Type:      models.AttentionPRNeedsReview,
				Title:     fmt.Sprintf("PR #%d: %s", pr.Number, pr.Title),
				Priority:  4,
				SourceURL: pr.HTMLURL,
			})
		}

		if pr.HeadSHA == "" {
			continue
		}
		checks, err := e.host.GetCheckRuns(ctx, owner, repo, pr.HeadSHA)
		if err != nil {
			return fmt.Errorf("sync: check runs for %s#%d: %w", p.Name, pr.Number, err)
		}

		anyFailing := false
		allPassing := len(checks) > 0
		for _, c := range checks {
			if c.Status == "completed" && c.Conclusion == "failure" {
				anyFailing = true
			}
			if c.Status != "completed" || c.Conclusion != "success" {
				allPassing = false
			}
		}

		if anyFailing {
			hasFailingChecks = true
			e.createItem(p, attention.CreateOpts{
				ProjectID: p.ID,
				Type:      models.AttentionChecksFailing,
				Title:     fmt.Sprintf("Checks failing on PR #%d: %s", pr.Number, pr.Title),
				Priority:  5,
				SourceURL: pr.HTMLURL,
			})
		}

		if allPassing && len(pr.RequestedReviewers) == 0 {
			e.createItem(p, attention.CreateOpts{
				ProjectID: p.ID,
				Type:      models.AttentionPRMergeReady,
				Title:     fmt.Sprintf("PR #%d ready to merge: %s", pr.Number, pr.Title),
				Priority:  3,
				SourceURL: pr.HTMLURL,
			})
		}
	}

	if !hasFailingChecks {
		if err := attention.AutoResolve(e.db, p.ID, models.AttentionChecksFailing); err != nil {
			return err
		}
	}
	if !hasReviewRequests {
		if err := attention.AutoResolve(e.db, p.ID, models.AttentionPRNeedsReview); err != nil {
			return err
		}
	}
	if len(open) == 0 {
		if err := attention.AutoResolve(e.db, p.ID, models.AttentionPRMergeReady); err != nil {
			return err
		}
	}

	return e.mirrorPullRequests(ctx, p, owner, repo, open)
}

// mirrorPullRequests unions the merged/closed set with the open set and
// upserts every PR by its deterministic row ID.
func (e *Engine) mirrorPullRequests(ctx context.Context, p *models.Project, owner, repo string, open []github.PullRequest) error {
	closed, err := e.host.ListMergedPRs(ctx, owner, repo)
	if err != nil {
		return fmt.Errorf("sync: merged PRs for %s: %w", p.Name, err)
	}

	seen := make(map[int]bool, len(closed))
	for _, pr := range closed {
		seen[pr.Number] = true
	}
	// Open PRs carry no head branch in the list payload; they join the union
	// with the branch unknown.
	for _, pr := range open {
		if !seen[pr.Number] {
			closed = append(closed, github.ClosedPullRequest{
				Number:  pr.Number,
				Title:   pr.Title,
				HTMLURL: pr.HTMLURL,
				State:   models.PRStateOpen,
			})
		}
	}

	for _, pr := range closed {
		row := models.PullRequest{
			ID:         models.PullRequestID(p.ID, pr.Number),
			ProjectID:  p.ID,
			Number:     pr.Number,
			Title:      pr.Title,
			BranchRef:  pr.HeadRef,
			SpecNumber: extractSpecNumber(pr.HeadRef),
			State:      pr.State,
			MergedAt:   pr.MergedAt,
			HTMLURL:    pr.HTMLURL,
		}
		result := e.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "state", "merged_at"}),
		}).Create(&row)
		if result.Error != nil {
			return fmt.Errorf("sync: upsert PR %s#%d: %w", p.Name, pr.Number, result.Error)
		}
	}
	return nil
}
