package github

import (
	"regexp"
	"strings"
)

var ownerRepoRe = regexp.MustCompile(`github\.com/([^/]+)/([^/?#]+)`)

// ExtractOwnerRepo pulls the owner and repository name out of a GitHub URL.
// Returns ok=false when the URL does not match; callers skip remote
// reconciliation in that case rather than raising an error.
func ExtractOwnerRepo(url string) (owner, repo string, ok bool) {
	m := ownerRepoRe.FindStringSubmatch(url)
	if m == nil {
		return "", "", false
	}
	return m[1], strings.TrimSuffix(m[2], ".git"), true
}
