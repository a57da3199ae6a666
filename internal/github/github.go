// Package github wraps the GitHub REST API behind the minimal client surface
// the sync engine consumes, so tests and alternative hosts can substitute
// their own implementation.
package github

import (
	"context"
	"time"
)

// Repo is a repository visible to the authenticated user.
type Repo struct {
	Name     string
	FullName string
	HTMLURL  string
}

// PullRequest is an open pull request snapshot.
type PullRequest struct {
	Number             int
	Title              string
	HTMLURL            string
	RequestedReviewers []string
	Draft              bool
	HeadSHA            string
}

// ClosedPullRequest is a merged or closed pull request snapshot.
type ClosedPullRequest struct {
	Number   int
	Title    string
	HTMLURL  string
	HeadRef  string
	State    string // "merged" | "closed"
	MergedAt *time.Time
}

// CheckRun is one CI check attached to a commit.
type CheckRun struct {
	Name       string
	Status     string
	Conclusion string // empty until the run completes
}

// FileContent is a decoded repository file.
type FileContent struct {
	Content string
	SHA     string
}

// Client is the host surface the sync engine needs. GetFileContent returns
// (nil, nil) for an absent file; listing calls return empty slices rather
// than errors when the path does not exist.
type Client interface {
	ListRepos(ctx context.Context) ([]Repo, error)
	ListOpenPRs(ctx context.Context, owner, repo string) ([]PullRequest, error)
	ListMergedPRs(ctx context.Context, owner, repo string) ([]ClosedPullRequest, error)
	GetCheckRuns(ctx context.Context, owner, repo, ref string) ([]CheckRun, error)
	GetFileContent(ctx context.Context, owner, repo, path string) (*FileContent, error)
	ListDirectoryContents(ctx context.Context, owner, repo, path string) ([]string, error)
	ListFilesRecursively(ctx context.Context, owner, repo, pathPrefix string) ([]string, error)
}
