package review

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
	"github.com/dshills/crucible/internal/output"
	"github.com/dshills/crucible/internal/providers"
	"github.com/dshills/crucible/internal/redact"
	"github.com/dshills/crucible/internal/report"
	"github.com/dshills/crucible/internal/rundir"
	"github.com/dshills/crucible/internal/skills"
	"github.com/dshills/crucible/internal/stage"
	"github.com/dshills/crucible/internal/validate"
)

// Artifact file names inside a review run directory.
const (
	ContextFile    = "0-context.txt"
	PromptsFile    = "0-prompts.txt"
	SpecialistsDir = "0-specialists"
	CritiqueFile   = "1-critique.txt"
	DefenseFile    = "2-defense.txt"
	RebuttalFile   = "3-rebuttal.txt"
	VerdictFile    = "4-verdict.txt"
	ReportFile     = "5-report.md"
	ReportJSONFile = "5-report.json"
)

const (
	runKind        = "review-protocol"
	defaultOutRoot = ".codex"

	defaultMaxFindings           = 12
	defaultSpecialistMaxFindings = 5
	defaultSpecialistValidateMax = 7
	defaultMaxExcerptLines       = 200
)

// Config describes one review run.
type Config struct {
	ReviewType ReviewType
	RepoDir    string
	SkillsDir  string
	// OutDir overrides <RepoDir>/<OutputRoot>/review-protocol/<head>/<type>.
	OutDir     string
	OutputRoot string
	Source     gitctx.Source

	Include         []string
	Exclude         []string
	ContextLines    int
	MaxDiffChars    int
	MaxExcerptLines int

	Rigor                 int
	MaxFindings           int
	SpecialistMaxFindings int
	SpecialistValidateMax int
	HintMaxChars          int
	MaxAttempts           int
	MaxTokens             int
	Temperature           float64

	RedactSecrets bool
	// RedactPaths are globs of files whose excerpts are withheld entirely
	// when RedactSecrets is set.
	RedactPaths []string
	DryRun      bool
}

func (c Config) withDefaults() Config {
	if c.OutputRoot == "" {
		c.OutputRoot = defaultOutRoot
	}
	if c.MaxFindings <= 0 {
		c.MaxFindings = defaultMaxFindings
	}
	if c.SpecialistMaxFindings <= 0 {
		c.SpecialistMaxFindings = defaultSpecialistMaxFindings
	}
	if c.SpecialistValidateMax <= 0 {
		c.SpecialistValidateMax = defaultSpecialistValidateMax
	}
	if c.MaxExcerptLines <= 0 {
		c.MaxExcerptLines = defaultMaxExcerptLines
	}
	if c.ReviewType == "" {
		c.ReviewType = General
	}
	return c
}

// Result describes a finished (or dry) run.
type Result struct {
	RunID string
	Dir   string
	Head  string
	State State
	// Report is nil for dry runs.
	Report   *report.Report
	Attempts map[string]int
}

// Path returns the location of an artifact of this run.
func (r *Result) Path(name string) string {
	return filepath.Join(r.Dir, name)
}

// Orchestrator drives the critique, defense, rebuttal and verdict stages.
type Orchestrator struct {
	// Model may be nil for dry runs.
	Model providers.Model
	Log   *zap.Logger
	// Now stamps reports and manifests; defaults to time.Now.
	Now func() time.Time
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Run executes the review protocol. Each artifact is written as soon as it is
// accepted, so a failed run leaves every completed stage on disk.
func (o *Orchestrator) Run(ctx context.Context, cfg Config) (res *Result, err error) {
	cfg = cfg.withDefaults()
	log := o.Log
	if log == nil {
		log = zap.NewNop()
	}

	repoDir, err := filepath.Abs(cfg.RepoDir)
	if err != nil {
		return nil, fmt.Errorf("resolving repo dir: %w", err)
	}
	head, err := gitctx.RunHead(repoDir, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("resolving head of %s: %w", repoDir, err)
	}
	outDir := cfg.OutDir
	if outDir == "" {
		outDir = filepath.Join(repoDir, cfg.OutputRoot, runKind, head, string(cfg.ReviewType))
	}

	runID := rundir.NewRunID()
	log = log.With(zap.String("run_id", runID))
	dir, err := rundir.Open(outDir, log)
	if err != nil {
		return nil, err
	}

	tpl, err := LoadTemplates(cfg.SkillsDir)
	if err != nil {
		return nil, err
	}
	rigor := EffectiveRigor(cfg.ReviewType, cfg.Rigor)
	specialists := Specialists(cfg.ReviewType, rigor)
	for _, rt := range append([]ReviewType{cfg.ReviewType}, specialists...) {
		if _, err := tpl.PrefixFor(rt); err != nil {
			return nil, err
		}
	}

	scope := gitctx.ScopeLabel(cfg.Source)
	res = &Result{RunID: runID, Dir: outDir, Head: head, Attempts: map[string]int{}}
	manifest := rundir.Manifest{
		RunID:      runID,
		Tool:       "crucible",
		Kind:       runKind,
		Head:       head,
		ReviewType: string(cfg.ReviewType),
		Scope:      scope,
		DryRun:     cfg.DryRun,
		StartedAt:  o.now().UTC(),
	}
	if o.Model != nil {
		manifest.Provider = o.Model.Name()
	}
	defer func() {
		manifest.State = res.State.String()
		manifest.Attempts = res.Attempts
		manifest.FinishedAt = o.now().UTC()
		if err != nil {
			manifest.Error = err.Error()
		}
		if merr := dir.WriteManifest(manifest); merr != nil && err == nil {
			err = merr
		}
	}()

	raw, err := gitctx.ReadDiff(ctx, repoDir, cfg.Source)
	if err != nil {
		return res, fmt.Errorf("reading diff: %w", err)
	}
	diff := gitctx.Truncate(gitctx.FilterDiff(raw, cfg.Include, cfg.Exclude), cfg.MaxDiffChars)

	meta := report.Meta{
		ReviewType: string(cfg.ReviewType),
		RepoLabel:  filepath.Base(repoDir),
		Head:       head,
		Scope:      scope,
		Date:       o.now(),
		RunID:      runID,
	}

	if strings.TrimSpace(diff) == "" {
		log.Info("empty diff; nothing to review")
		for _, name := range []string{CritiqueFile, DefenseFile, RebuttalFile, VerdictFile} {
			if err := dir.Write(name, ""); err != nil {
				return res, err
			}
		}
		if err := o.writeReport(dir, res, meta, "", ""); err != nil {
			return res, err
		}
		return res, nil
	}

	changes := gitctx.ParseUnifiedDiff(diff)
	excerpts := gitctx.BuildExcerpts(os.DirFS(repoDir), changes, gitctx.ExcerptOptions{
		ContextLines:    cfg.ContextLines,
		MaxLinesPerFile: cfg.MaxExcerptLines,
	})
	if cfg.RedactSecrets {
		for p, text := range excerpts {
			excerpts[p] = redact.Content(text, p, cfg.RedactPaths)
		}
		diff = redact.Diff(diff, cfg.RedactPaths)
	}
	reviewCtx := BuildContext(ContextInput{
		Repo:       repoDir,
		Head:       head,
		ReviewType: cfg.ReviewType,
		Scope:      scope,
		Diff:       diff,
		Excerpts:   excerpts,
	})
	if cfg.RedactSecrets {
		reviewCtx = redact.Secrets(reviewCtx)
	}
	if err := dir.Write(ContextFile, reviewCtx); err != nil {
		return res, err
	}

	base, addon, err := tpl.AttackerPrompt(cfg.ReviewType, cfg.MaxFindings)
	if err != nil {
		return res, err
	}
	prefix, _ := tpl.PrefixFor(cfg.ReviewType)
	if err := dir.Write(PromptsFile, BuildPromptsDebug(cfg.ReviewType, prefix, head, scope, base, addon, reviewCtx)); err != nil {
		return res, err
	}
	res.State = ContextBuilt

	if cfg.DryRun {
		for _, name := range []string{CritiqueFile, DefenseFile, RebuttalFile, VerdictFile, ReportFile} {
			if err := dir.Placeholder(name); err != nil {
				return res, err
			}
		}
		log.Info("dry run; context and prompts written", zap.String("path", outDir))
		return res, nil
	}
	if o.Model == nil {
		return res, errors.New("no model configured")
	}

	candidates, err := o.runSpecialists(ctx, dir, tpl, cfg, specialists, reviewCtx, log)
	if err != nil {
		return res, err
	}

	runner := &stage.Runner{Model: o.Model, MaxAttempts: cfg.MaxAttempts, Log: log}
	run := func(spec stage.Spec, file string, next State) (string, error) {
		spec.MaxTokens, spec.Temperature = cfg.MaxTokens, cfg.Temperature
		out, err := runner.Run(ctx, spec)
		res.Attempts[spec.Name] = out.Attempts
		if err != nil {
			return "", err
		}
		if err := dir.Write(file, out.Text); err != nil {
			return "", err
		}
		res.State = next
		return out.Text, nil
	}

	hints := skills.HintsForReviewType(cfg.SkillsDir, string(cfg.ReviewType), cfg.HintMaxChars)
	critique, err := run(stage.Spec{
		Name:       "critique",
		System:     attackerSystem,
		User:       synthesisPrompt(base, addon, hints, candidates, reviewCtx),
		Correction: critiqueCorrection,
		Validate:   func(text string) error { return validate.Critique(text, cfg.MaxFindings) },
	}, CritiqueFile, Critiqued)
	if err != nil {
		return res, err
	}

	defense, err := run(stage.Spec{
		Name:       "defense",
		System:     defenderSystem,
		User:       defensePrompt(tpl.Defender, critique, reviewCtx),
		Correction: defenseCorrection,
		Validate:   func(text string) error { return validate.Defense(text, critique) },
	}, DefenseFile, Defended)
	if err != nil {
		return res, err
	}

	rebuttal, err := run(stage.Spec{
		Name:       "rebuttal",
		System:     rebuttalSystem,
		User:       rebuttalPrompt(tpl.Rebuttal, critique, defense, reviewCtx),
		Correction: rebuttalCorrection,
		Validate:   func(text string) error { return validate.Rebuttal(text, critique) },
	}, RebuttalFile, Rebutted)
	if err != nil {
		return res, err
	}

	verdict, err := run(stage.Spec{
		Name:       "verdict",
		System:     judgeSystem,
		User:       verdictPrompt(tpl.Judge, critique, defense, rebuttal),
		Correction: verdictCorrection,
		Validate:   func(text string) error { return validate.Verdict(text, critique) },
	}, VerdictFile, Verdicted)
	if err != nil {
		return res, err
	}

	if err := o.writeReport(dir, res, meta, critique, verdict); err != nil {
		return res, err
	}
	log.Info("review complete",
		zap.Int("confirmed", res.Report.Counts.Confirmed),
		zap.Int("dismissed", res.Report.Counts.Dismissed),
		zap.Int("contested", res.Report.Counts.Contested))
	return res, nil
}

// runSpecialists collects candidate critiques. A specialist's output is kept
// even when it fails validation; synthesis is told to keep only provable items.
func (o *Orchestrator) runSpecialists(ctx context.Context, dir *rundir.Dir, tpl *Templates, cfg Config, types []ReviewType, reviewCtx string, log *zap.Logger) ([]string, error) {
	var outputs []string
	for _, rt := range types {
		base, addon, err := tpl.AttackerPrompt(rt, cfg.SpecialistMaxFindings)
		if err != nil {
			return nil, err
		}
		hints := skills.HintsForReviewType(cfg.SkillsDir, string(rt), cfg.HintMaxChars)
		resp, err := o.Model.Complete(ctx, providers.Request{
			System:      specialistSystem,
			User:        specialistPrompt(base, addon, hints, reviewCtx),
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("specialist %s: %w", rt, err)
		}
		if verr := validate.Critique(resp.Content, cfg.SpecialistValidateMax); verr != nil {
			log.Warn("specialist output off-format", zap.String("specialist", string(rt)), zap.Error(verr))
		}
		if err := dir.Write(SpecialistsDir+"/"+string(rt)+".txt", resp.Content); err != nil {
			return nil, err
		}
		outputs = append(outputs, resp.Content)
	}
	return outputs, nil
}

func (o *Orchestrator) writeReport(dir *rundir.Dir, res *Result, meta report.Meta, critique, verdict string) error {
	r := report.Build(meta, critique, verdict)
	if err := dir.Write(ReportFile, output.Markdown(r)); err != nil {
		return err
	}
	f, err := os.Create(dir.File(ReportJSONFile))
	if err != nil {
		return fmt.Errorf("creating %s: %w", ReportJSONFile, err)
	}
	defer f.Close()
	if err := (&output.JSONWriter{}).Write(f, r); err != nil {
		return err
	}
	res.Report = r
	res.State = Reported
	return nil
}
