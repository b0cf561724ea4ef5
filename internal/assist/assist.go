package assist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/crucible/internal/gitctx"
	"github.com/dshills/crucible/internal/providers"
	"github.com/dshills/crucible/internal/redact"
	"github.com/dshills/crucible/internal/repotext"
	"github.com/dshills/crucible/internal/rundir"
	"github.com/dshills/crucible/internal/stage"
	"github.com/dshills/crucible/internal/validate"
)

// Artifact names shared by every assist run.
const (
	ContextFile = "0-context.txt"
	PromptFile  = "0-prompt.txt"
)

const (
	defaultOutRoot         = ".codex"
	defaultMaxExcerptLines = 200
	defaultMaxSpecChars    = 80000
	defaultMaxSpecFiles    = 60
	topLevelEntries        = 200

	contractCorrection = "rewrite strictly to the output contract."
	hintsHeading       = "DEEP CHECKLIST (enterprise-software-playbook skill hints)"
)

// Common holds the settings every assist task shares.
type Common struct {
	RepoDir   string
	SkillsDir string
	// OutDir overrides <RepoDir>/<OutputRoot>/<task>/<head>.
	OutDir     string
	OutputRoot string

	HintMaxChars int
	MaxAttempts  int
	MaxTokens    int
	Temperature  float64

	RedactSecrets bool
	RedactPaths   []string
	DryRun        bool
}

// DiffOptions selects and bounds the diff evidence of progress and alignment runs.
type DiffOptions struct {
	Source          gitctx.Source
	Include         []string
	Exclude         []string
	ContextLines    int
	MaxDiffChars    int
	MaxExcerptLines int
}

// Result describes a finished (or dry) assist run.
type Result struct {
	RunID string
	Dir   string
	Head  string
	// Artifact is the path of the validated output (empty for dry runs).
	Artifact string
	Text     string
	Attempts int
}

// Runner executes assist tasks against a model.
type Runner struct {
	// Model may be nil for dry runs.
	Model providers.Model
	Log   *zap.Logger
	Now   func() time.Time
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

// job is one fully prepared assist run.
type job struct {
	kind     string
	head     string
	scope    string
	common   Common
	context  string
	prompt   string
	system   string
	artifact string
	label    string
	validate validate.Validator
}

func (r *Runner) execute(ctx context.Context, j job) (res *Result, err error) {
	repoDir := j.common.RepoDir
	outDir := j.common.OutDir
	if outDir == "" {
		root := j.common.OutputRoot
		if root == "" {
			root = defaultOutRoot
		}
		outDir = filepath.Join(repoDir, root, j.kind, j.head)
	}

	runID := rundir.NewRunID()
	log := r.logger().With(zap.String("run_id", runID), zap.String("task", j.kind))
	dir, err := rundir.Open(outDir, log)
	if err != nil {
		return nil, err
	}
	res = &Result{RunID: runID, Dir: outDir, Head: j.head}

	manifest := rundir.Manifest{
		RunID:     runID,
		Tool:      "crucible",
		Kind:      j.kind,
		Head:      j.head,
		Scope:     j.scope,
		DryRun:    j.common.DryRun,
		State:     "ContextBuilt",
		StartedAt: r.now().UTC(),
	}
	if r.Model != nil {
		manifest.Provider = r.Model.Name()
	}
	defer func() {
		manifest.FinishedAt = r.now().UTC()
		if res.Attempts > 0 {
			manifest.Attempts = map[string]int{j.label: res.Attempts}
		}
		if err != nil {
			manifest.Error = err.Error()
		}
		if merr := dir.WriteManifest(manifest); merr != nil && err == nil {
			err = merr
		}
	}()

	if err := dir.Write(ContextFile, j.context); err != nil {
		return res, err
	}
	if err := dir.Write(PromptFile, j.prompt); err != nil {
		return res, err
	}

	if j.common.DryRun {
		if err := dir.Placeholder(j.artifact); err != nil {
			return res, err
		}
		log.Info("dry run; context and prompt written", zap.String("path", outDir))
		return res, nil
	}
	if r.Model == nil {
		return res, errors.New("no model configured")
	}

	runner := &stage.Runner{Model: r.Model, MaxAttempts: j.common.MaxAttempts, Log: log}
	out, err := runner.Run(ctx, stage.Spec{
		Name:        j.label,
		System:      j.system,
		User:        j.prompt,
		Correction:  contractCorrection,
		Validate:    j.validate,
		MaxTokens:   j.common.MaxTokens,
		Temperature: j.common.Temperature,
	})
	res.Attempts = out.Attempts
	if err != nil {
		return res, err
	}
	if err := dir.Write(j.artifact, out.Text); err != nil {
		return res, err
	}
	res.Artifact = dir.File(j.artifact)
	res.Text = out.Text
	manifest.State = "Reported"
	log.Info("assist run complete", zap.String("artifact", res.Artifact), zap.Int("attempts", out.Attempts))
	return res, nil
}

// evidence is the diff and excerpts shared by progress and alignment contexts.
type evidence struct {
	head     string
	scope    string
	diff     string
	excerpts gitctx.Excerpts
}

func loadEvidence(ctx context.Context, c Common, d DiffOptions) (evidence, error) {
	head, err := gitctx.RunHead(c.RepoDir, d.Source)
	if err != nil {
		return evidence{}, err
	}
	raw, err := gitctx.ReadDiff(ctx, c.RepoDir, d.Source)
	if err != nil {
		return evidence{}, fmt.Errorf("reading diff: %w", err)
	}
	diff := gitctx.Truncate(gitctx.FilterDiff(raw, d.Include, d.Exclude), d.MaxDiffChars)

	ev := evidence{head: head, scope: gitctx.ScopeLabel(d.Source), diff: diff, excerpts: gitctx.Excerpts{}}
	if strings.TrimSpace(diff) == "" {
		return ev, nil
	}
	maxLines := d.MaxExcerptLines
	if maxLines <= 0 {
		maxLines = defaultMaxExcerptLines
	}
	ev.excerpts = gitctx.BuildExcerpts(os.DirFS(c.RepoDir), gitctx.ParseUnifiedDiff(diff), gitctx.ExcerptOptions{
		ContextLines:    d.ContextLines,
		MaxLinesPerFile: maxLines,
	})
	if c.RedactSecrets {
		for p, text := range ev.excerpts {
			ev.excerpts[p] = redact.Content(text, p, c.RedactPaths)
		}
		ev.diff = redact.Diff(ev.diff, c.RedactPaths)
	}
	return ev, nil
}

func (ev evidence) excerptSection() []string {
	if len(ev.excerpts) == 0 {
		return nil
	}
	parts := []string{"=== Line-numbered excerpts (for anchoring) ==="}
	for _, p := range gitctx.SortedPaths(ev.excerpts) {
		parts = append(parts, strings.TrimRight(ev.excerpts[p], " \t\r\n"))
	}
	return parts
}

// SpecOptions bounds the spec folder bundled into ideation and alignment contexts.
type SpecOptions struct {
	// Dir defaults to <repo>/specs when that directory exists.
	Dir      string
	MaxChars int
	MaxFiles int
}

func resolveSpecDir(repoDir string, o SpecOptions) string {
	if o.Dir != "" {
		if abs, err := filepath.Abs(o.Dir); err == nil {
			return abs
		}
		return o.Dir
	}
	candidate := filepath.Join(repoDir, "specs")
	if info, err := os.Stat(candidate); err == nil && info.IsDir() {
		return candidate
	}
	return ""
}

func bundleSpecs(dir string, o SpecOptions) string {
	if dir == "" {
		return ""
	}
	maxChars, maxFiles := o.MaxChars, o.MaxFiles
	if maxChars <= 0 {
		maxChars = defaultMaxSpecChars
	}
	if maxFiles <= 0 {
		maxFiles = defaultMaxSpecFiles
	}
	return repotext.BundleDirectory(dir, repotext.BundleOptions{
		Exts:     repotext.SpecExts,
		MaxFiles: maxFiles,
		MaxChars: maxChars,
	})
}

// finishContext joins context parts and scrubs secrets when configured.
func finishContext(c Common, parts []string) string {
	text := strings.TrimRight(strings.Join(parts, "\n"), " \t\r\n") + "\n"
	if c.RedactSecrets {
		text = redact.Secrets(text)
	}
	return text
}

func buildPrompt(instructions, hints, context string) string {
	parts := []string{"INSTRUCTIONS", strings.TrimSpace(instructions)}
	if h := strings.TrimSpace(hints); h != "" {
		parts = append(parts, "\n"+hintsHeading+"\n", h)
	}
	parts = append(parts, "\nCONTEXT\n", strings.TrimSpace(context))
	return strings.TrimSpace(strings.Join(parts, "\n\n")) + "\n"
}

func absRepo(c Common) (Common, error) {
	abs, err := filepath.Abs(c.RepoDir)
	if err != nil {
		return c, fmt.Errorf("resolving repo dir: %w", err)
	}
	c.RepoDir = abs
	return c, nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
