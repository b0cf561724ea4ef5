package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/crucible/internal/cache"
	"github.com/dshills/crucible/internal/config"
	"github.com/dshills/crucible/internal/github"
	"github.com/dshills/crucible/internal/gitctx"
	"github.com/dshills/crucible/internal/providers"
	"github.com/dshills/crucible/internal/skills"
)

// Diff-source flags shared by review, progress and align.
var (
	flagRepo            string
	flagGitBase         string
	flagGitHead         string
	flagDiffFile        string
	flagGitHubPR        string
	flagContextLines    int
	flagMaxDiffChars    int
	flagMaxExcerptLines int
	flagPaths           string
	flagExclude         string
)

// Model and run flags shared by every model-backed command.
var (
	flagProvider    string
	flagModel       string
	flagSkillsDir   string
	flagOutDir      string
	flagMaxAttempts int
	flagDryRun      bool
	flagNoRedact    bool
)

func addDiffFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagGitBase, "git-base", "", "Base ref; reviews <base>...<head> instead of the working tree")
	cmd.Flags().StringVar(&flagGitHead, "git-head", "HEAD", "Head ref used with --git-base")
	cmd.Flags().StringVar(&flagDiffFile, "diff-file", "", "Read the unified diff from a file")
	cmd.Flags().StringVar(&flagGitHubPR, "github-pr", "", "Fetch the diff of a GitHub pull request (owner/repo#N)")
	cmd.Flags().IntVar(&flagContextLines, "context-lines", 0, "Lines of context around each hunk in excerpts")
	cmd.Flags().IntVar(&flagMaxDiffChars, "max-diff-chars", 0, "Truncate the diff beyond this many characters")
	cmd.Flags().IntVar(&flagMaxExcerptLines, "max-excerpt-lines", 0, "Maximum excerpt lines per file")
	cmd.Flags().StringVar(&flagPaths, "paths", "", "Include file path globs (comma-separated)")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "Exclude file path globs (comma-separated)")
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagRepo, "repo", ".", "Repository directory")
	cmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (anthropic, openai, gemini, ollama)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	cmd.Flags().StringVar(&flagSkillsDir, "skills-dir", "", "Skills library directory")
	cmd.Flags().StringVar(&flagOutDir, "out-dir", "", "Run directory (default: <repo>/.codex/<task>/<head>)")
	cmd.Flags().IntVar(&flagMaxAttempts, "max-attempts", 0, "Attempts per stage before giving up")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Write context and prompts without calling the model")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagSkillsDir != "" {
		m["skillsDir"] = flagSkillsDir
	}
	for key, n := range map[string]int{
		"contextLines":    flagContextLines,
		"maxDiffChars":    flagMaxDiffChars,
		"maxExcerptLines": flagMaxExcerptLines,
		"maxAttempts":     flagMaxAttempts,
		"maxFindings":     flagMaxFindings,
		"rigor":           flagRigor,
		"maxReadmeChars":  flagMaxReadmeChars,
		"maxSpecChars":    flagMaxSpecChars,
		"maxSpecFiles":    flagMaxSpecFiles,
	} {
		if n > 0 {
			m[key] = strconv.Itoa(n)
		}
	}
	if flagPaths != "" {
		m["include"] = flagPaths
	}
	return m
}

// loadConfig merges flags into the effective config. Exclude globs from the
// flag are added to the configured ones.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(buildOverrides())
	if err != nil {
		return cfg, err
	}
	if flagExclude != "" {
		cfg.Exclude = append(cfg.Exclude, splitComma(flagExclude)...)
	}
	if flagNoRedact {
		cfg.Privacy.RedactSecrets = false
		fmt.Fprintln(os.Stderr, "WARNING: secret redaction is disabled")
	}
	return cfg, nil
}

func splitComma(s string) []string {
	var result []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

// diffSource builds the diff source from the shared flags. A malformed
// --github-pr is a usage error.
func diffSource() (gitctx.Source, error) {
	src := gitctx.Source{Base: flagGitBase, Head: flagGitHead, DiffFile: flagDiffFile}
	if flagGitHubPR != "" {
		ref, err := gitctx.ParsePRRef(flagGitHubPR)
		if err != nil {
			return src, err
		}
		src.PR = &ref
		src.Fetcher = github.NewClient()
	}
	return src, nil
}

// buildModel creates the configured provider, wrapped in the response cache
// when caching is enabled.
func buildModel(cfg config.Config) (providers.Model, error) {
	m, err := providers.New(cfg.Provider, cfg.Model)
	if err != nil {
		return nil, err
	}
	if !cfg.Cache.Enabled {
		return m, nil
	}
	c, err := cache.New(true, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return providers.NewCached(m, cfg.Model, c, appLogger()), nil
}

func resolveSkillsDir(cfg config.Config) (string, error) {
	return skills.ResolveDir(cfg.SkillsDir)
}

// fail reports err on stderr and records the exit code it maps to.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	exitCode = exitCodeFor(err)
}

// exitCodeFor maps a command error to an exit code. Setup, input and
// exhausted-retry errors are all runtime failures.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case providers.IsAuthError(err):
		return ExitAuthError
	default:
		return ExitRuntimeError
	}
}

// usageError reports a bad flag value.
func usageError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	exitCode = ExitUsageError
}
