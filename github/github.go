// Package github is a REST client for the GitHub contents API, used to
// assemble a free-text repository analysis prompt. It shares no state with
// the conversation store; the prompt it produces goes through the normal
// model-call seam.
package github

import (
	"fmt"
	"regexp"
)

const defaultBaseURL = "https://api.github.com"

var repoURLPattern = regexp.MustCompile(`github\.com/([^/]+)/([^/\s]+)`)

// RepoInfo identifies a repository by owner and name.
type RepoInfo struct {
	Owner string
	Repo  string
}

// String returns "owner/repo".
func (r RepoInfo) String() string {
	return r.Owner + "/" + r.Repo
}

// ParseRepoURL extracts owner and repository from a GitHub URL.
func ParseRepoURL(url string) (RepoInfo, error) {
	m := repoURLPattern.FindStringSubmatch(url)
	if m == nil {
		return RepoInfo{}, fmt.Errorf("invalid repository URL: %q", url)
	}
	return RepoInfo{Owner: m[1], Repo: m[2]}, nil
}

// File is one file discovered in a repository tree.
type File struct {
	Name        string
	Path        string
	DownloadURL string
}

// Issue is a potential problem detected by the structural checks.
type Issue struct {
	Type     string // "missing-file", "missing-tests", "dependencies"
	Severity string // "warning" or "info"
	Message  string
}

// Dependencies holds the parsed package manifests found in the repository.
type Dependencies struct {
	NPM    string   // raw package.json contents
	Python []string // requirements.txt entries, comments stripped
}

// Analysis summarizes a repository's structure.
type Analysis struct {
	Repo         RepoInfo
	TotalFiles   int
	FileTypes    map[string]int // extension → count
	Dependencies Dependencies
	Issues       []Issue
}
