package github

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// testPathPatterns match files that count as tests or specs.
var testPathPatterns = []string{
	"**/test/**",
	"**/tests/**",
	"**/spec/**",
	"**/*_test.*",
	"**/*.test.*",
	"**/*.spec.*",
}

// Analyze walks the repository and builds a structural summary: file-type
// histogram, package manifests, and common-issue checks.
func (c *Client) Analyze(ctx context.Context, repo RepoInfo) (*Analysis, error) {
	files, err := c.ListFiles(ctx, repo)
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		Repo:       repo,
		TotalFiles: len(files),
		FileTypes:  make(map[string]int),
	}

	for _, f := range files {
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(f.Name), "."))
		if ext == "" {
			ext = f.Name
		}
		a.FileTypes[ext]++
	}

	if err := c.collectDependencies(ctx, files, a); err != nil {
		return nil, err
	}
	a.Issues = checkCommonIssues(files, a)

	return a, nil
}

func (c *Client) collectDependencies(ctx context.Context, files []File, a *Analysis) error {
	for _, f := range files {
		switch f.Name {
		case "package.json":
			raw, err := c.FetchFile(ctx, f.DownloadURL)
			if err != nil {
				return err
			}
			a.Dependencies.NPM = raw
		case "requirements.txt":
			raw, err := c.FetchFile(ctx, f.DownloadURL)
			if err != nil {
				return err
			}
			for _, line := range strings.Split(raw, "\n") {
				line = strings.TrimSpace(line)
				if line != "" && !strings.HasPrefix(line, "#") {
					a.Dependencies.Python = append(a.Dependencies.Python, line)
				}
			}
		}
	}
	return nil
}

// checkCommonIssues runs structural checks over the file list.
func checkCommonIssues(files []File, a *Analysis) []Issue {
	var issues []Issue

	hasGitignore := false
	hasReadme := false
	hasTests := false
	for _, f := range files {
		if f.Name == ".gitignore" {
			hasGitignore = true
		}
		if strings.Contains(strings.ToLower(f.Name), "readme") {
			hasReadme = true
		}
		if !hasTests && matchesAny(testPathPatterns, f.Path) {
			hasTests = true
		}
	}

	if !hasGitignore {
		issues = append(issues, Issue{
			Type:     "missing-file",
			Severity: "warning",
			Message:  "Missing .gitignore file",
		})
	}
	if !hasReadme {
		issues = append(issues, Issue{
			Type:     "missing-file",
			Severity: "warning",
			Message:  "Missing README file",
		})
	}
	if !hasTests {
		issues = append(issues, Issue{
			Type:     "missing-tests",
			Severity: "warning",
			Message:  "No test files found",
		})
	}
	if a.Dependencies.NPM != "" && !strings.Contains(a.Dependencies.NPM, `"devDependencies"`) {
		issues = append(issues, Issue{
			Type:     "dependencies",
			Severity: "info",
			Message:  "No development dependencies specified",
		})
	}

	return issues
}

func matchesAny(patterns []string, p string) bool {
	for _, pattern := range patterns {
		// Patterns are static and known-valid, so Match cannot error here.
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}
	return false
}

// Prompt renders the analysis as the free-text message sent to the model.
func (a *Analysis) Prompt() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Please analyze this GitHub repository:\n\n")
	fmt.Fprintf(&sb, "Repository: %s\n\n", a.Repo)
	fmt.Fprintf(&sb, "Project Statistics:\n")
	fmt.Fprintf(&sb, "- Total Files: %d\n", a.TotalFiles)
	fmt.Fprintf(&sb, "- File Types: %s\n", formatFileTypes(a.FileTypes))
	if a.Dependencies.NPM != "" {
		fmt.Fprintf(&sb, "- NPM Manifest:\n%s\n", a.Dependencies.NPM)
	}
	if len(a.Dependencies.Python) > 0 {
		fmt.Fprintf(&sb, "- Python Dependencies: %s\n", strings.Join(a.Dependencies.Python, ", "))
	}
	if len(a.Issues) > 0 {
		fmt.Fprintf(&sb, "- Potential Issues:\n")
		for _, issue := range a.Issues {
			fmt.Fprintf(&sb, "  - [%s] %s\n", issue.Severity, issue.Message)
		}
	}
	sb.WriteString(`
Please provide:
1. Project structure analysis
2. Potential problems and their solutions
3. Security concerns
4. Performance optimization suggestions
5. Best practices recommendations
6. Code quality assessment

Focus on practical solutions and specific improvements.`)
	return sb.String()
}

func formatFileTypes(types map[string]int) string {
	if len(types) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(types))
	for ext, count := range types {
		parts = append(parts, fmt.Sprintf("%s: %d", ext, count))
	}
	// Deterministic order for reproducible prompts.
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}
