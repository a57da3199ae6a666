// Package sync reconciles remote repository state (pull requests, check runs,
// planning documents) into local records and maintains the attention queue
// from what it observes.
package sync

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/morgan8889/design-flow/internal/attention"
	"github.com/morgan8889/design-flow/internal/github"
	"github.com/morgan8889/design-flow/internal/models"
	"github.com/morgan8889/design-flow/internal/notify"
	"github.com/morgan8889/design-flow/internal/parser"
	"github.com/morgan8889/design-flow/internal/project"
	"github.com/morgan8889/design-flow/internal/settings"
	"gorm.io/gorm"
)

const (
	defaultNotifyThreshold = 4
	defaultStaleAfter      = 14 * 24 * time.Hour
)

// Options configures optional engine collaborators.
type Options struct {
	// Notifier receives newly created attention items whose priority crosses
	// the notify threshold. Nil disables notifications.
	Notifier notify.Notifier
	// NotifyThreshold is the default minimum priority that triggers a
	// notification; the notify_threshold setting overrides it per pass.
	NotifyThreshold int
	// StaleAfter is how long a project may show no pull-request activity
	// before a stale_project item is raised.
	StaleAfter time.Duration
	// Registry overrides the plan parser registry (defaults to the builtins).
	Registry *parser.Registry
}

// Engine runs per-project synchronization. Safe for concurrent callers: a
// second sync for a project already in flight is skipped rather than run
// concurrently, since overlapping passes would race on row upserts.
type Engine struct {
	db         *gorm.DB
	host       github.Client
	notifier   notify.Notifier
	threshold  int
	staleAfter time.Duration
	registry   *parser.Registry
	now        func() time.Time

	mu       sync.Mutex
	inFlight map[string]bool
}

// New builds a sync engine over the store and host client.
func New(db *gorm.DB, host github.Client, opts Options) *Engine {
	threshold := opts.NotifyThreshold
	if threshold <= 0 {
		threshold = defaultNotifyThreshold
	}
	staleAfter := opts.StaleAfter
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}
	registry := opts.Registry
	if registry == nil {
		registry = parser.NewRegistry()
	}
	return &Engine{
		db:         db,
		host:       host,
		notifier:   opts.Notifier,
		threshold:  threshold,
		staleAfter: staleAfter,
		registry:   registry,
		now:        time.Now,
		inFlight:   make(map[string]bool),
	}
}

// SyncProject reconciles one project. Absent or untracked projects are a
// no-op. A project whose remote URL cannot be parsed skips remote
// reconciliation but still gets its synced timestamp stamped.
func (e *Engine) SyncProject(ctx context.Context, projectID string) error {
	if !e.acquire(projectID) {
		log.Printf("sync: project %s already syncing, skipped", projectID)
		return nil
	}
	defer e.release(projectID)

	p, err := project.Get(e.db, projectID)
	if err != nil {
		if err == models.ErrNotFound {
			return nil
		}
		return fmt.Errorf("sync: load project %s: %w", projectID, err)
	}
	if !p.IsTracked {
		return nil
	}

	if p.GitHubURL != "" {
		if owner, repo, ok := github.ExtractOwnerRepo(p.GitHubURL); ok {
			// PRs reconcile fully before plans so plan notifications never
			// race PR-derived ones.
			if err := e.syncPullRequests(ctx, p, owner, repo); err != nil {
				return err
			}
			if err := e.syncPlans(ctx, p, owner, repo); err != nil {
				return err
			}
			e.sweepStale(p)
		}
	}

	if err := project.StampSynced(e.db, p.ID); err != nil {
		return err
	}
	return nil
}

// SyncAll runs the per-project sync over every tracked project sequentially.
// One project's failure is logged and does not abort the batch.
func (e *Engine) SyncAll(ctx context.Context) error {
	tracked, err := project.List(e.db, true)
	if err != nil {
		return fmt.Errorf("sync: list tracked projects: %w", err)
	}

	for _, p := range tracked {
		if err := e.SyncProject(ctx, p.ID); err != nil {
			log.Printf("sync: project %s (%s) failed: %v", p.Name, p.ID, err)
		}
	}
	return nil
}

// createItem runs the deduplicated create and dispatches a notification for
// genuinely new items that cross the threshold.
func (e *Engine) createItem(p *models.Project, opts attention.CreateOpts) {
	item, created, err := attention.Create(e.db, opts)
	if err != nil {
		log.Printf("sync: create %s item for %s: %v", opts.Type, p.Name, err)
		return
	}
	if !created {
		return
	}

	threshold := settings.GetInt(e.db, models.SettingNotifyThreshold, e.threshold)
	if e.notifier != nil && notify.ShouldNotify(item.Priority, threshold) {
		notify.Dispatch(e.notifier, item.Title, p.Name, item.SourceURL)
	}
}

func (e *Engine) acquire(projectID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight[projectID] {
		return false
	}
	e.inFlight[projectID] = true
	return true
}

func (e *Engine) release(projectID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inFlight, projectID)
}
