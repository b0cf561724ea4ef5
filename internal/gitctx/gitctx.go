package gitctx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrNotRepo is returned when a git-backed diff source is used outside a work tree.
var ErrNotRepo = errors.New("not a git repository and no diff file was provided")

// NoGitHead labels run directories for repositories that are not git work trees.
const NoGitHead = "NO_GIT"

// GitError reports a failed git invocation.
type GitError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *GitError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *GitError) Unwrap() error { return e.Err }

// PRRef identifies a GitHub pull request.
type PRRef struct {
	Owner  string
	Repo   string
	Number int
}

func (r PRRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

var prRefPattern = regexp.MustCompile(`^([\w.-]+)/([\w.-]+)#(\d+)$`)

// ParsePRRef parses "owner/repo#123".
func ParsePRRef(s string) (PRRef, error) {
	m := prRefPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return PRRef{}, fmt.Errorf("invalid pull request reference %q (want owner/repo#number)", s)
	}
	n, err := strconv.Atoi(m[3])
	if err != nil || n <= 0 {
		return PRRef{}, fmt.Errorf("invalid pull request number in %q", s)
	}
	return PRRef{Owner: m[1], Repo: m[2], Number: n}, nil
}

// PRFetcher downloads the unified diff of a pull request.
type PRFetcher interface {
	GetPRDiff(ctx context.Context, owner, repo string, number int) (string, error)
}

// Source selects where a diff comes from. Precedence: DiffFile, PR, Base...Head, HEAD.
type Source struct {
	Base     string
	Head     string
	DiffFile string
	PR       *PRRef
	Fetcher  PRFetcher
}

func (s Source) headRef() string {
	if s.Head == "" {
		return "HEAD"
	}
	return s.Head
}

// External reports whether the diff comes from outside the local git repository.
func (s Source) External() bool {
	return s.DiffFile != "" || s.PR != nil
}

// ScopeLabel describes the diff source for context headers and reports.
func ScopeLabel(s Source) string {
	switch {
	case s.DiffFile != "":
		return "Diff file: " + s.DiffFile
	case s.PR != nil:
		return "GitHub PR: " + s.PR.String()
	case s.Base != "":
		return fmt.Sprintf("git diff %s...%s", s.Base, s.headRef())
	default:
		return "git diff HEAD (staged + unstaged)"
	}
}

// IsRepo reports whether dir is inside a git work tree.
func IsRepo(dir string) bool {
	out, err := gitOutput(dir, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// HeadSHA resolves ref to a commit SHA.
func HeadSHA(dir, ref string) (string, error) {
	if ref == "" {
		ref = "HEAD"
	}
	out, err := gitOutput(dir, "rev-parse", ref)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ShortSHA returns the abbreviated HEAD commit of dir, or "" when dir is not a git checkout.
func ShortSHA(dir string) string {
	out, err := gitOutput(dir, "rev-parse", "--short", "HEAD")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// RunHead returns the label used for run directories: the resolved head SHA,
// "pr-<n>" for pull requests, or NoGitHead outside a git work tree.
func RunHead(dir string, s Source) (string, error) {
	if s.PR != nil {
		return fmt.Sprintf("pr-%d", s.PR.Number), nil
	}
	if !IsRepo(dir) {
		if !s.External() {
			return "", ErrNotRepo
		}
		return NoGitHead, nil
	}
	return HeadSHA(dir, s.headRef())
}

// ReadDiff returns the raw unified diff for the source.
func ReadDiff(ctx context.Context, dir string, s Source) (string, error) {
	if !s.External() && !IsRepo(dir) {
		return "", ErrNotRepo
	}
	switch {
	case s.DiffFile != "":
		data, err := os.ReadFile(s.DiffFile)
		if err != nil {
			return "", fmt.Errorf("reading diff file: %w", err)
		}
		return string(data), nil
	case s.PR != nil:
		if s.Fetcher == nil {
			return "", errors.New("no pull request fetcher configured")
		}
		diff, err := s.Fetcher.GetPRDiff(ctx, s.PR.Owner, s.PR.Repo, s.PR.Number)
		if err != nil {
			return "", fmt.Errorf("fetching %s: %w", s.PR, err)
		}
		return diff, nil
	case s.Base != "":
		return gitOutput(dir, "diff", "--patch", "--no-color", s.Base+"..."+s.headRef())
	default:
		return gitOutput(dir, "diff", "--patch", "--no-color", "HEAD")
	}
}

// Truncate caps diff text at maxChars, leaving room for a marker.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	cut := maxChars - 200
	if cut < 0 {
		cut = 0
	}
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "\n\n[... diff truncated ...]\n"
}

func gitOutput(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		ge := &GitError{Args: args, Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			ge.Stderr = string(exitErr.Stderr)
		}
		return string(out), ge
	}
	return string(out), nil
}
