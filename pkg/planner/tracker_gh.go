// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package planner

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// GhTracker implements Tracker against GitHub Issues through the gh CLI.
// Parent-child links use the sub-issues API; blocking links use the issue
// dependencies API. Both need the target issue's database id, fetched per
// call; relationship calls are rare enough that no cache is kept.
type GhTracker struct {
	Repo string
}

// NewGhTracker resolves the GitHub owner/repo and returns a tracker.
// Resolution order:
//  1. cfg.Repo if set (explicit override, used for testing)
//  2. `gh repo view --json nameWithOwner` run in repoRoot (reads git remote)
//  3. Strip "github.com/" from go.mod module path
func NewGhTracker(repoRoot string, cfg Config) (*GhTracker, error) {
	if cfg.Repo != "" {
		return &GhTracker{Repo: cfg.Repo}, nil
	}

	cmd := exec.Command(binGh, "repo", "view", "--json", "nameWithOwner", "-q", ".nameWithOwner")
	cmd.Dir = repoRoot
	if out, err := cmd.Output(); err == nil {
		if repo := strings.TrimSpace(string(out)); repo != "" {
			return &GhTracker{Repo: repo}, nil
		}
	}

	modPath := goModModulePath(repoRoot)
	if strings.HasPrefix(modPath, "github.com/") {
		return &GhTracker{Repo: strings.TrimPrefix(modPath, "github.com/")}, nil
	}

	return nil, fmt.Errorf("cannot determine GitHub repo: set repo in cordwain.yaml or ensure the project has a github.com module path")
}

// CreateItem creates a GitHub issue and returns its handle. Labels are
// ensured on the repo first (gh issue create rejects unknown labels).
//
// Note: gh issue create does not support --json; it outputs the issue URL
// (https://github.com/owner/repo/issues/123) on success.
func (t *GhTracker) CreateItem(title, body string, labels []string) (ItemHandle, error) {
	args := []string{"issue", "create",
		"--repo", t.Repo,
		"--title", title,
		"--body", body,
	}
	for _, label := range labels {
		t.EnsureLabel(label, "ededed", "") // nolint:errcheck // best-effort
		args = append(args, "--label", label)
	}

	out, err := exec.Command(binGh, args...).Output()
	if err != nil {
		return ItemHandle{}, fmt.Errorf("gh issue create: %w", err)
	}

	url := strings.TrimSpace(string(out))
	number, err := parseIssueURLNumber(url)
	if err != nil {
		return ItemHandle{}, err
	}
	logf("created issue #%d %q on %s", number, title, t.Repo)
	return ItemHandle{Number: number, URL: url}, nil
}

// UpdateItemBody replaces an issue's body. The body is passed on stdin to
// avoid argument-length limits on large renderings.
func (t *GhTracker) UpdateItemBody(h ItemHandle, body string) error {
	cmd := exec.Command(binGh, "issue", "edit",
		"--repo", t.Repo,
		strconv.Itoa(h.Number),
		"--body-file", "-",
	)
	cmd.Stdin = strings.NewReader(body)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("gh issue edit body #%d: %w", h.Number, err)
	}
	return nil
}

// AddLabel attaches a label to an issue.
func (t *GhTracker) AddLabel(h ItemHandle, label string) error {
	if err := exec.Command(binGh, "issue", "edit",
		"--repo", t.Repo,
		strconv.Itoa(h.Number),
		"--add-label", label,
	).Run(); err != nil {
		return fmt.Errorf("gh issue edit add-label #%d: %w", h.Number, err)
	}
	return nil
}

// EnsureLabel creates a label on the repo if absent. GitHub answers 422
// with "already_exists" for duplicates; that is success here.
func (t *GhTracker) EnsureLabel(name, color, description string) error {
	out, err := exec.Command(binGh, "api", "repos/"+t.Repo+"/labels",
		"--method", "POST",
		"--field", "name="+name,
		"--field", "color="+color,
		"--field", "description="+description,
	).CombinedOutput()
	if err != nil {
		if strings.Contains(string(out), "already_exists") {
			return nil
		}
		return fmt.Errorf("gh api create label %q: %w (output: %s)", name, err, string(out))
	}
	logf("created label %q on %s", name, t.Repo)
	return nil
}

// CreateParentChildLink registers child as a sub-issue of parent.
func (t *GhTracker) CreateParentChildLink(parent, child ItemHandle) error {
	childID, err := t.issueDatabaseID(child.Number)
	if err != nil {
		return err
	}
	if out, err := exec.Command(binGh, "api",
		fmt.Sprintf("repos/%s/issues/%d/sub_issues", t.Repo, parent.Number),
		"--method", "POST",
		"-F", "sub_issue_id="+childID,
	).CombinedOutput(); err != nil {
		return fmt.Errorf("gh api sub_issues #%d -> #%d: %w (output: %s)", parent.Number, child.Number, err, string(out))
	}
	return nil
}

// CreateBlockingLink records that blocker blocks blocked via the issue
// dependencies API.
func (t *GhTracker) CreateBlockingLink(blocker, blocked ItemHandle) error {
	blockerID, err := t.issueDatabaseID(blocker.Number)
	if err != nil {
		return err
	}
	if out, err := exec.Command(binGh, "api",
		fmt.Sprintf("repos/%s/issues/%d/dependencies/blocked_by", t.Repo, blocked.Number),
		"--method", "POST",
		"-F", "issue_id="+blockerID,
	).CombinedOutput(); err != nil {
		return fmt.Errorf("gh api blocked_by #%d -> #%d: %w (output: %s)", blocker.Number, blocked.Number, err, string(out))
	}
	return nil
}

// AddComment appends a comment to an issue.
func (t *GhTracker) AddComment(h ItemHandle, text string) error {
	cmd := exec.Command(binGh, "issue", "comment",
		"--repo", t.Repo,
		strconv.Itoa(h.Number),
		"--body-file", "-",
	)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("gh issue comment #%d: %w", h.Number, err)
	}
	return nil
}

// issueDatabaseID fetches the REST database id for an issue number; the
// sub-issue and dependency endpoints take ids, not numbers.
func (t *GhTracker) issueDatabaseID(number int) (string, error) {
	out, err := exec.Command(binGh, "api",
		fmt.Sprintf("repos/%s/issues/%d", t.Repo, number),
		"--jq", ".id",
	).Output()
	if err != nil {
		return "", fmt.Errorf("gh api issue id #%d: %w", number, err)
	}
	id := strings.TrimSpace(string(out))
	if id == "" {
		return "", fmt.Errorf("gh api issue id #%d: empty response", number)
	}
	return id, nil
}

// parseIssueURLNumber extracts the issue number from a gh issue create
// URL (e.g. "https://github.com/owner/repo/issues/123").
func parseIssueURLNumber(url string) (int, error) {
	parts := strings.Split(url, "/")
	if len(parts) == 0 || url == "" {
		return 0, fmt.Errorf("parsing gh issue create output: empty URL")
	}
	number, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil || number == 0 {
		return 0, fmt.Errorf("parsing gh issue create output: could not extract number from %q", url)
	}
	return number, nil
}

// goModModulePath reads the module path from the go.mod in repoRoot.
func goModModulePath(repoRoot string) string {
	data, err := os.ReadFile(filepath.Join(repoRoot, "go.mod"))
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "module ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "module "))
		}
	}
	return ""
}
