package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/crucible/internal/config"
	"github.com/dshills/crucible/internal/gitctx"
	"github.com/dshills/crucible/internal/output"
	"github.com/dshills/crucible/internal/providers"
	"github.com/dshills/crucible/internal/report"
	"github.com/dshills/crucible/internal/review"
)

// Review flags
var (
	flagType            string
	flagRigor           int
	flagMaxFindings     int
	flagFailOnConfirmed bool
	flagFormat          string
	flagReviewOut       string
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Run the adversarial review protocol on a diff",
	Long: `Review builds line-anchored context from a diff, then runs a critique, a
defense, a rebuttal and a verdict. Every artifact is written to
<repo>/.codex/review-protocol/<head>/<type> as soon as it is accepted.

The diff comes from the working tree by default, from <base>...<head> with
--git-base, from a file with --diff-file, or from a pull request with
--github-pr.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := review.ParseReviewType(flagType)
		if err != nil {
			usageError(cmd.ErrOrStderr(), err)
			return nil
		}
		if flagReviewOut != "" && flagFormat == "" {
			flagFormat = "markdown"
		}
		if flagFormat != "" {
			if _, err := output.GetWriter(flagFormat); err != nil {
				usageError(cmd.ErrOrStderr(), err)
				return nil
			}
		}
		src, err := diffSource()
		if err != nil {
			usageError(cmd.ErrOrStderr(), err)
			return nil
		}
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

		orch := &review.Orchestrator{Model: model, Log: appLogger()}
		res, err := orch.Run(cmd.Context(), reviewConfig(cfg, rt, skillsDir, src))
		out := cmd.OutOrStdout()
		if err != nil {
			fail(err)
			if res != nil {
				printRunDir(out, fmt.Sprintf("Partial review artifacts (%s)", res.State), res.Dir)
			}
			return nil
		}

		printRunDir(out, "Review artifacts", res.Dir)
		if res.Report == nil {
			printStatus(out, true, "Dry run: context and prompts written.")
			return nil
		}
		c := res.Report.Counts
		printStatus(out, c.Confirmed == 0, fmt.Sprintf("Confirmed: %d  Contested: %d  Dismissed: %d", c.Confirmed, c.Contested, c.Dismissed))
		if err := writeReviewReport(out, res.Report); err != nil {
			fail(fmt.Errorf("writing report: %w", err))
			return nil
		}
		if flagFailOnConfirmed && res.Report.HasConfirmed() {
			exitCode = ExitFindings
		}
		return nil
	},
}

// writeReviewReport prints the report in --format to --out, or to out when
// --out is unset. Nothing is written without --format.
func writeReviewReport(out io.Writer, r *report.Report) error {
	if flagFormat == "" {
		return nil
	}
	return output.WriteReport(out, r, flagFormat, flagReviewOut)
}

func reviewConfig(cfg config.Config, rt review.ReviewType, skillsDir string, src gitctx.Source) review.Config {
	return review.Config{
		ReviewType:            rt,
		RepoDir:               flagRepo,
		SkillsDir:             skillsDir,
		OutDir:                flagOutDir,
		OutputRoot:            cfg.OutputRoot,
		Source:                src,
		Include:               cfg.Include,
		Exclude:               cfg.Exclude,
		ContextLines:          cfg.ContextLines,
		MaxDiffChars:          cfg.MaxDiffChars,
		MaxExcerptLines:       cfg.MaxExcerptLines,
		Rigor:                 cfg.Rigor,
		MaxFindings:           cfg.MaxFindings,
		SpecialistMaxFindings: cfg.SpecialistMaxFindings,
		SpecialistValidateMax: cfg.SpecialistValidateMax,
		HintMaxChars:          cfg.HintMaxChars,
		MaxAttempts:           cfg.MaxAttempts,
		MaxTokens:             cfg.MaxTokens,
		Temperature:           cfg.Temperature,
		RedactSecrets:         cfg.Privacy.RedactSecrets,
		RedactPaths:           cfg.Privacy.RedactPaths,
		DryRun:                flagDryRun,
	}
}

func init() {
	reviewCmd.Flags().StringVar(&flagType, "type", "general", "Review type (general, security, correctness, performance, maintainability, testing, architecture, resilience, api-design, accessibility)")
	reviewCmd.Flags().IntVar(&flagRigor, "rigor", 0, "Specialist depth for general reviews (0=type default, 1-3)")
	reviewCmd.Flags().IntVar(&flagMaxFindings, "max-findings", 0, "Maximum findings in the critique")
	reviewCmd.Flags().BoolVar(&flagFailOnConfirmed, "fail-on-confirmed", false, "Exit 1 when the judge confirms any finding")
	reviewCmd.Flags().StringVar(&flagFormat, "format", "", "Also print the report to stdout (markdown, json, text, terminal)")
	reviewCmd.Flags().StringVar(&flagReviewOut, "out", "", "Write the formatted report to this file instead of stdout (default format markdown)")
	addRunFlags(reviewCmd)
	addDiffFlags(reviewCmd)
}
