package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/crucible/internal/output"
	"github.com/dshills/crucible/internal/review"
)

var (
	flagReportFormat string
	flagReportStyle  string
	flagReportWidth  int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Inspect finished review runs",
}

var reportShowCmd = &cobra.Command{
	Use:   "show <run-dir>",
	Short: "Print the report of a review run",
	Long: `Show prints the synthesized report of a review run directory. The terminal
format renders the markdown report with ANSI styling; markdown and json print
the stored files unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := review.ReportFile
		switch flagReportFormat {
		case "terminal", "markdown", "md":
		case "json":
			name = review.ReportJSONFile
		default:
			usageError(cmd.ErrOrStderr(), fmt.Errorf("unsupported report format: %s (want terminal, markdown or json)", flagReportFormat))
			return nil
		}

		data, err := os.ReadFile(filepath.Join(args[0], name))
		if err != nil {
			fail(fmt.Errorf("reading report: %w", err))
			return nil
		}
		text := string(data)
		if flagReportFormat == "terminal" {
			if text, err = output.RenderMarkdown(text, flagReportStyle, flagReportWidth); err != nil {
				fail(err)
				return nil
			}
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	reportShowCmd.Flags().StringVar(&flagReportFormat, "format", "terminal", "Output format (terminal, markdown, json)")
	reportShowCmd.Flags().StringVar(&flagReportStyle, "style", "", "Glamour style for terminal output (dark, light, notty)")
	reportShowCmd.Flags().IntVar(&flagReportWidth, "width", 0, "Wrap width for terminal output (default 80)")
	reportCmd.AddCommand(reportShowCmd)
}
