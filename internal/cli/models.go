package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/crucible/internal/config"
	"github.com/dshills/crucible/internal/providers"
)

const doctorTimeout = 30 * time.Second

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List providers and check credentials",
}

type modelInfo struct {
	Provider string
	Env      string
	Models   []string
}

// knownModels lists suggested models per provider. Any model name the
// provider accepts can be configured.
var knownModels = []modelInfo{
	{Provider: "anthropic", Env: "ANTHROPIC_API_KEY", Models: []string{"claude-sonnet-4-5", "claude-opus-4-1", "claude-haiku-4-5"}},
	{Provider: "openai", Env: "OPENAI_API_KEY", Models: []string{"gpt-4.1", "gpt-4.1-mini", "gpt-5", "o3-mini"}},
	{Provider: "gemini", Env: "GEMINI_API_KEY", Models: []string{"gemini-2.5-pro", "gemini-2.5-flash"}},
	{Provider: "ollama", Env: "OLLAMA_HOST", Models: []string{"llama3.3", "qwen2.5-coder", "deepseek-coder-v2"}},
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List providers and suggested models",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, info := range knownModels {
			fmt.Fprintf(out, "%s %s\n", headerStyle.Render(info.Provider+":"), faintStyle.Render("("+info.Env+")"))
			for _, m := range info.Models {
				fmt.Fprintf(out, "  - %s\n", m)
			}
			fmt.Fprintln(out)
		}
	},
}

var modelsDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Send a one-line request to the configured provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Checking %s (%s)...\n", cfg.Provider, cfg.Model)

		m, err := providers.New(cfg.Provider, cfg.Model)
		if err != nil {
			printStatus(cmd.ErrOrStderr(), false, "FAIL: "+err.Error())
			exitCode = ExitAuthError
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), doctorTimeout)
		defer cancel()
		if _, err := m.Complete(ctx, providers.Request{
			System:    "Respond with exactly: ok",
			User:      "ping",
			MaxTokens: 10,
		}); err != nil {
			printStatus(cmd.ErrOrStderr(), false, "FAIL: "+err.Error())
			exitCode = exitCodeFor(err)
			return nil
		}
		printStatus(out, true, fmt.Sprintf("OK: %s is configured and responding", m.Name()))
		return nil
	},
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsDoctorCmd)
	modelsDoctorCmd.Flags().StringVar(&flagProvider, "provider", "", "Provider to check")
	modelsDoctorCmd.Flags().StringVar(&flagModel, "model", "", "Model to check")
}
