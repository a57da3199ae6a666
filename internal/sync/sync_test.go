package sync

import (
	"context"
	"testing"
	"time"

	"github.com/morgan8889/design-flow/internal/attention"
	"github.com/morgan8889/design-flow/internal/github"
	"github.com/morgan8889/design-flow/internal/models"
	"github.com/morgan8889/design-flow/internal/project"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB creates an in-memory SQLite database with all required tables.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Project{},
		&models.Plan{},
		&models.AttentionItem{},
		&models.PullRequest{},
		&models.Setting{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// mockHost is a test double for the GitHub client.
type mockHost struct {
	repos     []github.Repo
	openPRs   []github.PullRequest
	closedPRs []github.ClosedPullRequest
	checks    map[string][]github.CheckRun
	files     map[string]string
	dirFiles  []string
	treeFiles []string
}

func (m *mockHost) ListRepos(ctx context.Context) ([]github.Repo, error) {
	return m.repos, nil
}

func (m *mockHost) ListOpenPRs(ctx context.Context, owner, repo string) ([]github.PullRequest, error) {
	return m.openPRs, nil
}

func (m *mockHost) ListMergedPRs(ctx context.Context, owner, repo string) ([]github.ClosedPullRequest, error) {
	return m.closedPRs, nil
}

func (m *mockHost) GetCheckRuns(ctx context.Context, owner, repo, ref string) ([]github.CheckRun, error) {
	return m.checks[ref], nil
}

func (m *mockHost) GetFileContent(ctx context.Context, owner, repo, path string) (*github.FileContent, error) {
	content, ok := m.files[path]
	if !ok {
		return nil, nil
	}
	return &github.FileContent{Content: content, SHA: hashContent(content)[:8]}, nil
}

func (m *mockHost) ListDirectoryContents(ctx context.Context, owner, repo, path string) ([]string, error) {
	return m.dirFiles, nil
}

func (m *mockHost) ListFilesRecursively(ctx context.Context, owner, repo, pathPrefix string) ([]string, error) {
	return m.treeFiles, nil
}

func seedTracked(t *testing.T, db *gorm.DB) *models.Project {
	t.Helper()
	p, err := project.Create(db, project.CreateOpts{
		Name:      "test-project",
		GitHubURL: "https://github.com/user/test-project",
		Source:    models.SourceDiscovered,
		Tracked:   true,
	})
	if err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return p
}

func activeTypes(t *testing.T, db *gorm.DB, projectID string) map[string]bool {
	t.Helper()
	items, err := attention.Active(db, projectID)
	if err != nil {
		t.Fatalf("active items: %v", err)
	}
	types := make(map[string]bool, len(items))
	for _, item := range items {
		types[item.Type] = true
	}
	return types
}

func TestSyncProject_FailingChecksCreateItem(t *testing.T) {
	db := testDB(t)
	p := seedTracked(t, db)

	host := &mockHost{
		openPRs: []github.PullRequest{{
			Number:  1,
			Title:   "Add feature",
			HTMLURL: "https://github.com/user/test-project/pull/1",
			HeadSHA: "abc123",
		}},
		checks: map[string][]github.CheckRun{
			"abc123": {{Name: "test", Status: "completed", Conclusion: "failure"}},
		},
	}

	if err := New(db, host, Options{}).SyncProject(context.Background(), p.ID); err != nil {
		t.Fatalf("sync: %v", err)
	}

	if !activeTypes(t, db, p.ID)[models.AttentionChecksFailing] {
		t.Error("expected checks_failing item")
	}
}

func TestSyncProject_ReviewRequestCreatesItem(t *testing.T) {
	db := testDB(t)
	p := seedTracked(t, db)

	host := &mockHost{
		openPRs: []github.PullRequest{{
			Number:             2,
			Title:              "Fix bug",
			HTMLURL:            "https://github.com/user/test-project/pull/2",
			RequestedReviewers: []string{"reviewer"},
			HeadSHA:            "def456",
		}},
	}

	if err := New(db, host, Options{}).SyncProject(context.Background(), p.ID); err != nil {
		t.Fatalf("sync: %v", err)
	}

	if !activeTypes(t, db, p.ID)[models.AttentionPRNeedsReview] {
		t.Error("expected pr_needs_review item")
	}
}

func TestSyncProject_DraftPRsIgnored(t *testing.T) {
	db := testDB(t)
	p := seedTracked(t, db)

	host := &mockHost{
		openPRs: []github.PullRequest{{
			Number:             3,
			Title:              "WIP",
			RequestedReviewers: []string{"reviewer"},
			Draft:              true,
			HeadSHA:            "aaa",
		}},
		checks: map[string][]github.CheckRun{
			"aaa": {{Name: "test", Status: "completed", Conclusion: "failure"}},
		},
	}

	if err := New(db, host, Options{}).SyncProject(context.Background(), p.ID); err != nil {
		t.Fatalf("sync: %v", err)
	}

	types := activeTypes(t, db, p.ID)
	if types[models.AttentionPRNeedsReview] || types[models.AttentionChecksFailing] {
		t.Errorf("draft PRs must not raise items, got %v", types)
	}
}

func TestSyncProject_AutoResolveLifecycle(t *testing.T) {
	db := testDB(t)
	p := seedTracked(t, db)
	engine := New(db, nil, Options{})

	// Pass 1: one PR with a failing check and a requested reviewer.
	engine.host = &mockHost{
		openPRs: []github.PullRequest{{
			Number:             1,
			Title:              "PR",
			HTMLURL:            "url",
			RequestedReviewers: []string{"user"},
			HeadSHA:            "abc",
		}},
		checks: map[string][]github.CheckRun{
			"abc": {{Name: "test", Status: "completed", Conclusion: "failure"}},
		},
	}
	if err := engine.SyncProject(context.Background(), p.ID); err != nil {
		t.Fatalf("pass 1: %v", err)
	}

	types := activeTypes(t, db, p.ID)
	if !types[models.AttentionChecksFailing] || !types[models.AttentionPRNeedsReview] {
		t.Fatalf("pass 1 items missing: %v", types)
	}

	// Pass 2: checks pass, reviewers cleared.
	engine.host = &mockHost{
		openPRs: []github.PullRequest{{
			Number:  1,
			Title:   "PR",
			HTMLURL: "url",
			HeadSHA: "abc",
		}},
		checks: map[string][]github.CheckRun{
			"abc": {{Name: "test", Status: "completed", Conclusion: "success"}},
		},
	}
	if err := engine.SyncProject(context.Background(), p.ID); err != nil {
		t.Fatalf("pass 2: %v", err)
	}

	types = activeTypes(t, db, p.ID)
	if types[models.AttentionChecksFailing] {
		t.Error("checks_failing should auto-resolve when checks pass")
	}
	if types[models.AttentionPRNeedsReview] {
		t.Error("pr_needs_review should auto-resolve when reviewers clear")
	}
	if !types[models.AttentionPRMergeReady] {
		t.Error("pr_merge_ready should appear for passing checks and no reviewers")
	}

	// Pass 3: no open PRs at all clears merge-ready too.
	engine.host = &mockHost{}
	if err := engine.SyncProject(context.Background(), p.ID); err != nil {
		t.Fatalf("pass 3: %v", err)
	}
	if len(activeTypes(t, db, p.ID)) != 0 {
		t.Errorf("all PR-derived items should be resolved, got %v", activeTypes(t, db, p.ID))
	}
}

func TestSyncProject_MirrorsMergedPRsWithSpecNumber(t *testing.T) {
	db := testDB(t)
	p := seedTracked(t, db)

	mergedAt := time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC)
	host := &mockHost{
		closedPRs: []github.ClosedPullRequest{
			{
				Number:   16,
				Title:    "Portfolio Management",
				HTMLURL:  "https://github.com/user/repo/pull/16",
				HeadRef:  "016-portfolio-management",
				State:    models.PRStateMerged,
				MergedAt: &mergedAt,
			},
			{
				Number:  99,
				Title:   "Bugfix",
				HTMLURL: "https://github.com/user/repo/pull/99",
				HeadRef: "fix/some-bug",
				State:   models.PRStateClosed,
			},
		},
	}

	if err := New(db, host, Options{}).SyncProject(context.Background(), p.ID); err != nil {
		t.Fatalf("sync: %v", err)
	}

	var prs []models.PullRequest
	if err := db.Order("number").Find(&prs).Error; err != nil {
		t.Fatalf("load PRs: %v", err)
	}
	if len(prs) != 2 {
		t.Fatalf("PR rows = %d, want 2", len(prs))
	}

	spec := prs[0]
	if spec.SpecNumber == nil || *spec.SpecNumber != "016" {
		t.Errorf("spec number = %v, want 016", spec.SpecNumber)
	}
	if spec.State != models.PRStateMerged || spec.BranchRef != "016-portfolio-management" {
		t.Errorf("merged PR row mismatch: %+v", spec)
	}
	if spec.MergedAt == nil || !spec.MergedAt.Equal(mergedAt) {
		t.Errorf("mergedAt = %v, want %v", spec.MergedAt, mergedAt)
	}

	bugfix := prs[1]
	if bugfix.SpecNumber != nil {
		t.Errorf("spec number for non-spec branch = %v, want nil", *bugfix.SpecNumber)
	}
}

func TestSyncProject_UpsertUpdatesInPlace(t *testing.T) {
	db := testDB(t)
	p := seedTracked(t, db)
	engine := New(db, nil, Options{})

	// Pass 1: PR is open.
	engine.host = &mockHost{
		openPRs: []github.PullRequest{{Number: 7, Title: "Feature", HTMLURL: "u"}},
	}
	if err := engine.SyncProject(context.Background(), p.ID); err != nil {
		t.Fatalf("pass 1: %v", err)
	}

	// Pass 2: same PR now merged.
	mergedAt := time.Now().UTC().Truncate(time.Second)
	engine.host = &mockHost{
		closedPRs: []github.ClosedPullRequest{{
			Number:   7,
			Title:    "Feature (final)",
			HTMLURL:  "u",
			HeadRef:  "feature-branch",
			State:    models.PRStateMerged,
			MergedAt: &mergedAt,
		}},
	}
	if err := engine.SyncProject(context.Background(), p.ID); err != nil {
		t.Fatalf("pass 2: %v", err)
	}

	var prs []models.PullRequest
	db.Find(&prs)
	if len(prs) != 1 {
		t.Fatalf("upsert duplicated the row: %d rows", len(prs))
	}
	if prs[0].State != models.PRStateMerged || prs[0].Title != "Feature (final)" {
		t.Errorf("row not updated in place: %+v", prs[0])
	}
}

func TestSyncProject_UntrackedIsNoop(t *testing.T) {
	db := testDB(t)
	p, _ := project.Create(db, project.CreateOpts{
		Name:      "untracked",
		GitHubURL: "https://github.com/user/untracked",
		Source:    models.SourceManual,
		Tracked:   false,
	})

	host := &mockHost{
		openPRs: []github.PullRequest{{Number: 1, Title: "x", HeadSHA: "s"}},
	}
	if err := New(db, host, Options{}).SyncProject(context.Background(), p.ID); err != nil {
		t.Fatalf("sync: %v", err)
	}

	got, _ := project.Get(db, p.ID)
	if got.LastSyncedAt != nil {
		t.Error("untracked project must not be synced")
	}
}

func TestSyncProject_MissingProjectIsNoop(t *testing.T) {
	db := testDB(t)
	if err := New(db, &mockHost{}, Options{}).SyncProject(context.Background(), "missing"); err != nil {
		t.Fatalf("missing project should be a no-op, got %v", err)
	}
}

func TestSyncProject_BadURLSkipsRemoteButStamps(t *testing.T) {
	db := testDB(t)
	p, _ := project.Create(db, project.CreateOpts{
		Name:      "elsewhere",
		GitHubURL: "https://example.com/not/github",
		Source:    models.SourceManual,
		Tracked:   true,
	})

	if err := New(db, &mockHost{}, Options{}).SyncProject(context.Background(), p.ID); err != nil {
		t.Fatalf("sync: %v", err)
	}

	got, _ := project.Get(db, p.ID)
	if got.LastSyncedAt == nil {
		t.Error("synced timestamp must be stamped even when remote reconciliation is skipped")
	}
}

const planV1 = "# Auth System\n\n## Phase 1: Design\n- [x] Wireframes\n- [ ] Review\n"
const planV2 = "# Auth System\n\n## Phase 1: Design\n- [x] Wireframes\n- [x] Review\n"

func TestSyncProject_PlanFirstDiscoveryInsertsSilently(t *testing.T) {
	db := testDB(t)
	p := seedTracked(t, db)

	host := &mockHost{
		dirFiles: []string{"docs/plans/auth.md"},
		files:    map[string]string{"docs/plans/auth.md": planV1},
	}
	if err := New(db, host, Options{}).SyncProject(context.Background(), p.ID); err != nil {
		t.Fatalf("sync: %v", err)
	}

	var plans []models.Plan
	db.Find(&plans)
	if len(plans) != 1 {
		t.Fatalf("plan rows = %d, want 1", len(plans))
	}
	if plans[0].Title != "Auth System" || plans[0].Format != "generic-markdown" {
		t.Errorf("plan row mismatch: %+v", plans[0])
	}

	if activeTypes(t, db, p.ID)[models.AttentionPlanChanged] {
		t.Error("first discovery must not raise plan_changed")
	}
}

func TestSyncProject_UnchangedPlanIsIdempotent(t *testing.T) {
	db := testDB(t)
	p := seedTracked(t, db)

	host := &mockHost{
		dirFiles: []string{"docs/plans/auth.md"},
		files:    map[string]string{"docs/plans/auth.md": planV1},
	}
	engine := New(db, host, Options{})

	if err := engine.SyncProject(context.Background(), p.ID); err != nil {
		t.Fatalf("pass 1: %v", err)
	}
	var before models.Plan
	db.First(&before)

	if err := engine.SyncProject(context.Background(), p.ID); err != nil {
		t.Fatalf("pass 2: %v", err)
	}

	var plans []models.Plan
	db.Find(&plans)
	if len(plans) != 1 {
		t.Fatalf("plan rows = %d, want 1", len(plans))
	}
	if !plans[0].ParsedAt.Equal(before.ParsedAt) {
		t.Error("unchanged content must not trigger a re-parse")
	}
	if activeTypes(t, db, p.ID)[models.AttentionPlanChanged] {
		t.Error("unchanged content must not raise plan_changed")
	}
}

func TestSyncProject_ChangedPlanUpdatesAndNotifies(t *testing.T) {
	db := testDB(t)
	p := seedTracked(t, db)

	host := &mockHost{
		dirFiles: []string{"docs/plans/auth.md"},
		files:    map[string]string{"docs/plans/auth.md": planV1},
	}
	engine := New(db, host, Options{})
	if err := engine.SyncProject(context.Background(), p.ID); err != nil {
		t.Fatalf("pass 1: %v", err)
	}

	host.files["docs/plans/auth.md"] = planV2
	if err := engine.SyncProject(context.Background(), p.ID); err != nil {
		t.Fatalf("pass 2: %v", err)
	}

	var plan models.Plan
	db.First(&plan)
	if plan.FileHash != hashContent(planV2) {
		t.Error("plan hash not updated")
	}

	items, _ := attention.Active(db, p.ID)
	var changed *models.AttentionItem
	for i := range items {
		if items[i].Type == models.AttentionPlanChanged {
			changed = &items[i]
		}
	}
	if changed == nil {
		t.Fatal("expected plan_changed item")
	}
	if changed.PlanID == nil || *changed.PlanID != plan.ID {
		t.Error("plan_changed item should reference the plan")
	}
}

func TestSyncProject_UndetectablePlanSkipped(t *testing.T) {
	db := testDB(t)
	p := seedTracked(t, db)

	host := &mockHost{
		dirFiles: []string{"docs/plans/notes.md"},
		files:    map[string]string{"docs/plans/notes.md": "just prose, no structure\n"},
	}
	if err := New(db, host, Options{}).SyncProject(context.Background(), p.ID); err != nil {
		t.Fatalf("sync: %v", err)
	}

	var count int64
	db.Model(&models.Plan{}).Count(&count)
	if count != 0 {
		t.Error("undetected documents must not be stored")
	}
}

func TestSyncProject_MergesPlanSources(t *testing.T) {
	db := testDB(t)
	p := seedTracked(t, db)

	host := &mockHost{
		dirFiles:  []string{"docs/plans/a.md", "docs/plans/skip.txt"},
		treeFiles: []string{"specs/001-first/tasks.md", "specs/001-first/diagram.png"},
		files: map[string]string{
			"docs/plans/a.md":          planV1,
			"specs/001-first/tasks.md": "## Setup\n- [x] T001 Init\n",
			"ROADMAP.md":               "# Roadmap\n\n## Q3\n- [ ] ship\n",
		},
	}
	if err := New(db, host, Options{}).SyncProject(context.Background(), p.ID); err != nil {
		t.Fatalf("sync: %v", err)
	}

	var plans []models.Plan
	db.Order("file_path").Find(&plans)
	wantPaths := []string{"ROADMAP.md", "docs/plans/a.md", "specs/001-first/tasks.md"}
	if len(plans) != len(wantPaths) {
		t.Fatalf("plan rows = %d, want %d", len(plans), len(wantPaths))
	}
	for i, want := range wantPaths {
		if plans[i].FilePath != want {
			t.Errorf("path %d = %q, want %q", i, plans[i].FilePath, want)
		}
	}
}

func TestSyncAll_ContinuesPastFailures(t *testing.T) {
	db := testDB(t)

	// Two tracked projects; the first has no parseable remote URL, the
	// second syncs normally. Both must end up stamped.
	a, _ := project.Create(db, project.CreateOpts{Name: "a", GitHubURL: "https://example.com/x", Source: models.SourceManual, Tracked: true})
	b, _ := project.Create(db, project.CreateOpts{Name: "b", GitHubURL: "https://github.com/u/b", Source: models.SourceManual, Tracked: true})

	if err := New(db, &mockHost{}, Options{}).SyncAll(context.Background()); err != nil {
		t.Fatalf("sync all: %v", err)
	}

	for _, id := range []string{a.ID, b.ID} {
		got, _ := project.Get(db, id)
		if got.LastSyncedAt == nil {
			t.Errorf("project %s not stamped", got.Name)
		}
	}
}

// recordingNotifier captures notification dispatches.
type recordingNotifier struct {
	sent []string
}

func (r *recordingNotifier) Send(title, message, url string) error {
	r.sent = append(r.sent, message)
	return nil
}

func TestNotification_OnlyForNewItemsAboveThreshold(t *testing.T) {
	db := testDB(t)
	p := seedTracked(t, db)

	notifier := &recordingNotifier{}
	host := &mockHost{
		openPRs: []github.PullRequest{{
			Number:  1,
			Title:   "Broken",
			HTMLURL: "u",
			HeadSHA: "sha",
		}},
		checks: map[string][]github.CheckRun{
			"sha": {{Name: "ci", Status: "completed", Conclusion: "failure"}},
		},
	}
	engine := New(db, host, Options{Notifier: notifier, NotifyThreshold: 4})

	if err := engine.SyncProject(context.Background(), p.ID); err != nil {
		t.Fatalf("pass 1: %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("notifications = %d, want 1 (checks_failing at priority 5)", len(notifier.sent))
	}

	// Same condition on the next pass dedups; no second notification.
	if err := engine.SyncProject(context.Background(), p.ID); err != nil {
		t.Fatalf("pass 2: %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Errorf("deduplicated item must not re-notify, got %d", len(notifier.sent))
	}
}

func TestNotification_BelowThresholdSuppressed(t *testing.T) {
	db := testDB(t)
	p := seedTracked(t, db)

	notifier := &recordingNotifier{}
	host := &mockHost{
		dirFiles: []string{"docs/plans/a.md"},
		files:    map[string]string{"docs/plans/a.md": planV1},
	}
	engine := New(db, host, Options{Notifier: notifier, NotifyThreshold: 4})

	if err := engine.SyncProject(context.Background(), p.ID); err != nil {
		t.Fatalf("pass 1: %v", err)
	}
	host.files["docs/plans/a.md"] = planV2
	if err := engine.SyncProject(context.Background(), p.ID); err != nil {
		t.Fatalf("pass 2: %v", err)
	}

	// plan_changed is priority 2, below the threshold of 4.
	if len(notifier.sent) != 0 {
		t.Errorf("notifications = %d, want 0", len(notifier.sent))
	}
}

func TestExtractSpecNumber(t *testing.T) {
	tests := []struct {
		ref  string
		want string // "" for nil
	}{
		{"016-portfolio-management", "016"},
		{"feature/023-new-thing", "023"},
		{"fix/some-bug", ""},
		{"12-too-short", ""},
		{"", ""},
	}
	for _, tt := range tests {
		got := extractSpecNumber(tt.ref)
		if tt.want == "" {
			if got != nil {
				t.Errorf("extractSpecNumber(%q) = %q, want nil", tt.ref, *got)
			}
			continue
		}
		if got == nil || *got != tt.want {
			t.Errorf("extractSpecNumber(%q) = %v, want %q", tt.ref, got, tt.want)
		}
	}
}
