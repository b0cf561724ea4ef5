package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/crucible/internal/skills"
)

var (
	flagProjectDir   string
	flagPrompt       string
	flagSkillsConfig string
	flagJSON         bool
	flagTool         string
	flagForce        bool
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "Work with the skills library",
}

var skillsRecommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend skills for a project and a task prompt",
	Long: `Recommend selects skills from project markers (package.json, tsconfig.json)
and keywords in the prompt, using the library's skills-config.json. The prompt
is read from stdin when --prompt is not given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		skillsDir, err := resolveSkillsDir(cfg)
		if err != nil {
			fail(err)
			return nil
		}
		prompt := flagPrompt
		if prompt == "" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				fail(fmt.Errorf("reading prompt: %w", err))
				return nil
			}
			prompt = strings.TrimSpace(string(data))
		}
		cfgPath := flagSkillsConfig
		if cfgPath == "" {
			cfgPath = filepath.Join(skillsDir, "skills-config.json")
		}
		rc, err := skills.LoadRecommendConfig(cfgPath)
		if err != nil {
			fail(err)
			return nil
		}
		projectDir, err := filepath.Abs(flagProjectDir)
		if err != nil {
			fail(err)
			return nil
		}

		recs, meta := skills.Recommend(projectDir, prompt, rc)
		out := cmd.OutOrStdout()
		if !flagJSON {
			fmt.Fprint(out, skills.RenderRecommendations(recs, skillsDir))
			return nil
		}
		data, err := json.MarshalIndent(struct {
			Recommendations []skills.Recommendation `json:"recommendations"`
			Meta            skills.RecommendMeta    `json:"meta"`
		}{recs, meta}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	},
}

var skillsRulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Write coding-assistant rules files that point at the skills library",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		skillsDir, err := resolveSkillsDir(cfg)
		if err != nil {
			fail(err)
			return nil
		}
		projectDir, err := filepath.Abs(flagProjectDir)
		if err != nil {
			fail(err)
			return nil
		}
		written, err := skills.GenerateRules(skills.RulesOptions{
			ProjectDir: projectDir,
			SkillsDir:  skillsDir,
			Tool:       flagTool,
			Force:      flagForce,
		})
		out := cmd.OutOrStdout()
		for _, p := range written {
			fmt.Fprintf(out, "Wrote %s\n", p)
		}
		if err != nil {
			fail(err)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{skillsRecommendCmd, skillsRulesCmd} {
		c.Flags().StringVar(&flagProjectDir, "project-dir", ".", "Project directory")
		c.Flags().StringVar(&flagSkillsDir, "skills-dir", "", "Skills library directory")
	}
	skillsRecommendCmd.Flags().StringVar(&flagPrompt, "prompt", "", "Task prompt (default: read from stdin)")
	skillsRecommendCmd.Flags().StringVar(&flagSkillsConfig, "config", "", "skills-config.json path (default: <skills-dir>/skills-config.json)")
	skillsRecommendCmd.Flags().BoolVar(&flagJSON, "json", false, "Print recommendations as JSON")
	skillsRulesCmd.Flags().StringVar(&flagTool, "tool", "all", "Target tool (codex, claude, cursor, copilot, all)")
	skillsRulesCmd.Flags().BoolVar(&flagForce, "force", false, "Overwrite existing rules files")

	skillsCmd.AddCommand(skillsRecommendCmd)
	skillsCmd.AddCommand(skillsRulesCmd)
}
