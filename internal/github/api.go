package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	ghapi "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

// APIClient implements Client against the real GitHub REST API.
type APIClient struct {
	gh *ghapi.Client
}

var _ Client = (*APIClient)(nil)

// NewAPIClient builds a token-authenticated GitHub client.
func NewAPIClient(ctx context.Context, token string) *APIClient {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &APIClient{gh: ghapi.NewClient(oauth2.NewClient(ctx, ts))}
}

// ListRepos returns the authenticated user's repositories, most recently
// updated first.
func (c *APIClient) ListRepos(ctx context.Context) ([]Repo, error) {
	repos, _, err := c.gh.Repositories.ListByAuthenticatedUser(ctx, &ghapi.RepositoryListByAuthenticatedUserOptions{
		Sort:        "updated",
		ListOptions: ghapi.ListOptions{PerPage: 100},
	})
	if err != nil {
		return nil, fmt.Errorf("github: list repos: %w", err)
	}

	out := make([]Repo, 0, len(repos))
	for _, r := range repos {
		out = append(out, Repo{
			Name:     r.GetName(),
			FullName: r.GetFullName(),
			HTMLURL:  r.GetHTMLURL(),
		})
	}
	return out, nil
}

// ListOpenPRs returns the repository's open pull requests.
func (c *APIClient) ListOpenPRs(ctx context.Context, owner, repo string) ([]PullRequest, error) {
	prs, _, err := c.gh.PullRequests.List(ctx, owner, repo, &ghapi.PullRequestListOptions{
		State:       "open",
		ListOptions: ghapi.ListOptions{PerPage: 100},
	})
	if err != nil {
		return nil, fmt.Errorf("github: list open PRs for %s/%s: %w", owner, repo, err)
	}

	out := make([]PullRequest, 0, len(prs))
	for _, pr := range prs {
		reviewers := make([]string, 0, len(pr.RequestedReviewers))
		for _, r := range pr.RequestedReviewers {
			reviewers = append(reviewers, r.GetLogin())
		}
		out = append(out, PullRequest{
			Number:             pr.GetNumber(),
			Title:              pr.GetTitle(),
			HTMLURL:            pr.GetHTMLURL(),
			RequestedReviewers: reviewers,
			Draft:              pr.GetDraft(),
			HeadSHA:            pr.GetHead().GetSHA(),
		})
	}
	return out, nil
}

// ListMergedPRs returns the repository's merged and closed pull requests.
func (c *APIClient) ListMergedPRs(ctx context.Context, owner, repo string) ([]ClosedPullRequest, error) {
	prs, _, err := c.gh.PullRequests.List(ctx, owner, repo, &ghapi.PullRequestListOptions{
		State:       "closed",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: ghapi.ListOptions{PerPage: 100},
	})
	if err != nil {
		return nil, fmt.Errorf("github: list closed PRs for %s/%s: %w", owner, repo, err)
	}

	out := make([]ClosedPullRequest, 0, len(prs))
	for _, pr := range prs {
		state := "closed"
		closed := ClosedPullRequest{
			Number:  pr.GetNumber(),
			Title:   pr.GetTitle(),
			HTMLURL: pr.GetHTMLURL(),
			HeadRef: pr.GetHead().GetRef(),
		}
		if pr.MergedAt != nil {
			state = "merged"
			t := pr.MergedAt.Time
			closed.MergedAt = &t
		}
		closed.State = state
		out = append(out, closed)
	}
	return out, nil
}

// GetCheckRuns returns the check runs attached to a commit ref.
func (c *APIClient) GetCheckRuns(ctx context.Context, owner, repo, ref string) ([]CheckRun, error) {
	result, _, err := c.gh.Checks.ListCheckRunsForRef(ctx, owner, repo, ref, &ghapi.ListCheckRunsOptions{
		ListOptions: ghapi.ListOptions{PerPage: 100},
	})
	if err != nil {
		return nil, fmt.Errorf("github: check runs for %s/%s@%s: %w", owner, repo, ref, err)
	}

	out := make([]CheckRun, 0, len(result.CheckRuns))
	for _, run := range result.CheckRuns {
		out = append(out, CheckRun{
			Name:       run.GetName(),
			Status:     run.GetStatus(),
			Conclusion: run.GetConclusion(),
		})
	}
	return out, nil
}

// GetFileContent fetches and decodes one repository file. Returns (nil, nil)
// when the path does not exist or is not a regular file.
func (c *APIClient) GetFileContent(ctx context.Context, owner, repo, path string) (*FileContent, error) {
	file, _, resp, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("github: get %s/%s:%s: %w", owner, repo, path, err)
	}
	if file == nil {
		// Path resolved to a directory.
		return nil, nil
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("github: decode %s/%s:%s: %w", owner, repo, path, err)
	}
	return &FileContent{Content: content, SHA: file.GetSHA()}, nil
}

// ListDirectoryContents returns the file paths directly inside a directory.
// A missing directory yields an empty slice.
func (c *APIClient) ListDirectoryContents(ctx context.Context, owner, repo, path string) ([]string, error) {
	_, entries, resp, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("github: list %s/%s:%s: %w", owner, repo, path, err)
	}

	var out []string
	for _, entry := range entries {
		if entry.GetType() == "file" {
			out = append(out, entry.GetPath())
		}
	}
	return out, nil
}

// ListFilesRecursively returns every blob path under pathPrefix in the HEAD
// tree. A missing prefix yields an empty slice.
func (c *APIClient) ListFilesRecursively(ctx context.Context, owner, repo, pathPrefix string) ([]string, error) {
	tree, _, err := c.gh.Git.GetTree(ctx, owner, repo, "HEAD", true)
	if err != nil {
		return nil, fmt.Errorf("github: tree for %s/%s: %w", owner, repo, err)
	}

	var out []string
	for _, entry := range tree.Entries {
		if entry.GetType() == "blob" && strings.HasPrefix(entry.GetPath(), pathPrefix+"/") {
			out = append(out, entry.GetPath())
		}
	}
	return out, nil
}
