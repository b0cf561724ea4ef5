package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dshills/crucible/internal/assist"
	"github.com/dshills/crucible/internal/config"
	"github.com/dshills/crucible/internal/providers"
)

// Assist task flags
var (
	flagFocus          string
	flagNumIdeas       int
	flagSpecDir        string
	flagMaxReadmeChars int
	flagMaxSpecChars   int
	flagMaxSpecFiles   int
	flagFeature        string
	flagAudience       string
	flagUpdateFormat   string
)

// assistTask runs one assist task with a ready config and skills directory.
type assistTask func(ctx context.Context, r *assist.Runner, cfg config.Config, common assist.Common) (*assist.Result, error)

// runAssist loads config, resolves skills and the model, runs task and prints
// the run directory.
func runAssist(cmd *cobra.Command, title string, task assistTask) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	skillsDir, err := resolveSkillsDir(cfg)
	if err != nil {
		fail(err)
		return nil
	}
	var model providers.Model
	if !flagDryRun {
		if model, err = buildModel(cfg); err != nil {
			fail(err)
			return nil
		}
	}

	r := &assist.Runner{Model: model, Log: appLogger()}
	res, err := task(cmd.Context(), r, cfg, assistCommon(cfg, skillsDir))
	out := cmd.OutOrStdout()
	if err != nil {
		fail(err)
		if res != nil {
			printRunDir(out, "Partial "+title, res.Dir)
		}
		return nil
	}
	printRunDir(out, title, res.Dir)
	if res.Artifact == "" {
		printStatus(out, true, "Dry run: context and prompt written.")
	}
	return nil
}

func assistCommon(cfg config.Config, skillsDir string) assist.Common {
	return assist.Common{
		RepoDir:       flagRepo,
		SkillsDir:     skillsDir,
		OutDir:        flagOutDir,
		OutputRoot:    cfg.OutputRoot,
		HintMaxChars:  cfg.HintMaxChars,
		MaxAttempts:   cfg.MaxAttempts,
		MaxTokens:     cfg.MaxTokens,
		Temperature:   cfg.Temperature,
		RedactSecrets: cfg.Privacy.RedactSecrets,
		RedactPaths:   cfg.Privacy.RedactPaths,
		DryRun:        flagDryRun,
	}
}

func assistSpec(cfg config.Config) assist.SpecOptions {
	return assist.SpecOptions{Dir: flagSpecDir, MaxChars: cfg.MaxSpecChars, MaxFiles: cfg.MaxSpecFiles}
}

// assistDiff builds the diff options; a malformed --github-pr is reported by
// the caller as a usage error.
func assistDiff(cfg config.Config) (assist.DiffOptions, error) {
	src, err := diffSource()
	if err != nil {
		return assist.DiffOptions{}, err
	}
	return assist.DiffOptions{
		Source:          src,
		Include:         cfg.Include,
		Exclude:         cfg.Exclude,
		ContextLines:    cfg.ContextLines,
		MaxDiffChars:    cfg.MaxDiffChars,
		MaxExcerptLines: cfg.MaxExcerptLines,
	}, nil
}

var ideateCmd = &cobra.Command{
	Use:   "ideate",
	Short: "Propose prioritized next features from the README and specs",
	Long: `Ideate reads the README, the top-level layout and the spec folder and asks
the model for prioritized feature ideas. It works outside a git repository.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAssist(cmd, "Feature ideation artifacts", func(ctx context.Context, r *assist.Runner, cfg config.Config, c assist.Common) (*assist.Result, error) {
			return r.Ideate(ctx, assist.IdeationConfig{
				Common:         c,
				Spec:           assistSpec(cfg),
				Focus:          flagFocus,
				NumIdeas:       flagNumIdeas,
				MaxReadmeChars: cfg.MaxReadmeChars,
			})
		})
	},
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Write a stakeholder progress update from a diff",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := assist.ParseFormat(flagUpdateFormat)
		if err != nil {
			usageError(cmd.ErrOrStderr(), err)
			return nil
		}
		if _, err := diffSource(); err != nil {
			usageError(cmd.ErrOrStderr(), err)
			return nil
		}
		return runAssist(cmd, "Progress update artifacts", func(ctx context.Context, r *assist.Runner, cfg config.Config, c assist.Common) (*assist.Result, error) {
			diff, err := assistDiff(cfg)
			if err != nil {
				return nil, err
			}
			return r.Progress(ctx, assist.ProgressConfig{
				Common:   c,
				Diff:     diff,
				Feature:  flagFeature,
				Audience: flagAudience,
				Format:   format,
			})
		})
	},
}

var alignCmd = &cobra.Command{
	Use:   "align",
	Short: "Check whether a diff aligns with the project's specs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := diffSource(); err != nil {
			usageError(cmd.ErrOrStderr(), err)
			return nil
		}
		return runAssist(cmd, "Spec alignment artifacts", func(ctx context.Context, r *assist.Runner, cfg config.Config, c assist.Common) (*assist.Result, error) {
			diff, err := assistDiff(cfg)
			if err != nil {
				return nil, err
			}
			return r.Align(ctx, assist.AlignmentConfig{Common: c, Diff: diff, Spec: assistSpec(cfg)})
		})
	},
}

func addSpecFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagSpecDir, "spec-dir", "", "Spec folder (default: <repo>/specs when present)")
	cmd.Flags().IntVar(&flagMaxSpecChars, "max-spec-chars", 0, "Maximum characters bundled from the spec folder")
	cmd.Flags().IntVar(&flagMaxSpecFiles, "max-spec-files", 0, "Maximum files bundled from the spec folder")
}

func init() {
	ideateCmd.Flags().StringVar(&flagFocus, "focus", "", "Focus area for the ideas")
	ideateCmd.Flags().IntVar(&flagNumIdeas, "num-ideas", assist.DefaultNumIdeas, "Number of ideas to request")
	ideateCmd.Flags().IntVar(&flagMaxReadmeChars, "max-readme-chars", 0, "Maximum README characters in the context")
	addSpecFlags(ideateCmd)
	addRunFlags(ideateCmd)

	progressCmd.Flags().StringVar(&flagFeature, "feature", "", "Feature name")
	progressCmd.Flags().StringVar(&flagAudience, "audience", "", "Audience of the update")
	progressCmd.Flags().StringVar(&flagUpdateFormat, "format", "markdown", "Update format (markdown, slack)")
	addRunFlags(progressCmd)
	addDiffFlags(progressCmd)

	addSpecFlags(alignCmd)
	addRunFlags(alignCmd)
	addDiffFlags(alignCmd)
}
