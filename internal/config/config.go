package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Config represents the crucible configuration.
type Config struct {
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"maxTokens"`
	SkillsDir   string  `json:"skillsDir,omitempty"`
	OutputRoot  string  `json:"outputRoot"`

	ContextLines    int      `json:"contextLines"`
	MaxDiffChars    int      `json:"maxDiffChars"`
	MaxExcerptLines int      `json:"maxExcerptLines"`
	Include         []string `json:"include"`
	Exclude         []string `json:"exclude"`

	MaxFindings           int `json:"maxFindings"`
	SpecialistMaxFindings int `json:"specialistMaxFindings"`
	SpecialistValidateMax int `json:"specialistValidateMax"`
	MaxAttempts           int `json:"maxAttempts"`
	Rigor                 int `json:"rigor"`

	MaxReadmeChars int `json:"maxReadmeChars"`
	MaxSpecChars   int `json:"maxSpecChars"`
	MaxSpecFiles   int `json:"maxSpecFiles"`
	HintMaxChars   int `json:"hintMaxChars"`

	Cache   CacheConfig   `json:"cache"`
	Privacy PrivacyConfig `json:"privacy"`
}

// CacheConfig controls response caching.
type CacheConfig struct {
	Enabled    bool   `json:"enabled"`
	Dir        string `json:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds"`
}

// PrivacyConfig controls redaction of context before it is sent to a model.
type PrivacyConfig struct {
	RedactSecrets bool     `json:"redactSecrets"`
	RedactPaths   []string `json:"redactPaths,omitempty"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:              "openai",
		Model:                 "gpt-4.1",
		Temperature:           0.0,
		MaxTokens:             8192,
		OutputRoot:            ".codex",
		ContextLines:          12,
		MaxDiffChars:          60000,
		MaxExcerptLines:       200,
		Include:               []string{"**"},
		MaxFindings:           12,
		SpecialistMaxFindings: 5,
		SpecialistValidateMax: 7,
		MaxAttempts:           3,
		MaxReadmeChars:        25000,
		MaxSpecChars:          80000,
		MaxSpecFiles:          60,
		HintMaxChars:          8000,
		Cache: CacheConfig{
			Enabled:    false,
			TTLSeconds: 86400,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
			RedactPaths:   []string{"**/.env", "**/.env.*", "**/*.pem", "**/*.key", "**/id_rsa*"},
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for crucible.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "crucible"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "crucible"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "crucible"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "crucible"), nil
	default:
		return filepath.Join(home, ".config", "crucible"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile reads the config file over Default. Keys absent from the file keep
// their defaults, and explicit values (false, 0, empty lists) win. A missing
// file yields Default and nil error.
func LoadFile() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envKeys maps environment variables to config keys understood by SetField.
var envKeys = []struct{ env, key string }{
	{"CRUCIBLE_PROVIDER", "provider"},
	{"CRUCIBLE_MODEL", "model"},
	{"CRUCIBLE_TEMPERATURE", "temperature"},
	{"ESB_SKILLS_DIR", "skillsDir"},
	{"CRUCIBLE_SKILLS_DIR", "skillsDir"},
	{"CRUCIBLE_MAX_ATTEMPTS", "maxAttempts"},
	{"CRUCIBLE_CONTEXT_LINES", "contextLines"},
	{"CRUCIBLE_RIGOR", "rigor"},
}

func mergeEnv(cfg *Config) error {
	for _, e := range envKeys {
		v := os.Getenv(e.env)
		if v == "" {
			continue
		}
		if err := SetField(cfg, e.key, v); err != nil {
			return fmt.Errorf("%s: %w", e.env, err)
		}
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for key, v := range overrides {
		if v == "" {
			continue
		}
		if err := SetField(cfg, key, v); err != nil {
			return err
		}
	}
	return nil
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "skillsDir":
		cfg.SkillsDir = value
	case "outputRoot":
		cfg.OutputRoot = value
	case "include":
		cfg.Include = splitList(value)
	case "exclude":
		cfg.Exclude = splitList(value)
	case "privacy.redactPaths":
		cfg.Privacy.RedactPaths = splitList(value)
	case "temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("temperature must be a number: %w", err)
		}
		cfg.Temperature = f
	case "cache.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cache.enabled must be a boolean: %w", err)
		}
		cfg.Cache.Enabled = b
	case "privacy.redactSecrets":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("privacy.redactSecrets must be a boolean: %w", err)
		}
		cfg.Privacy.RedactSecrets = b
	default:
		dst, ok := intFields(cfg)[key]
		if !ok {
			return fmt.Errorf("unknown config key: %s", key)
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", key, err)
		}
		if n < 0 {
			return fmt.Errorf("%s must not be negative", key)
		}
		*dst = n
	}
	return nil
}

func intFields(cfg *Config) map[string]*int {
	return map[string]*int{
		"maxTokens":             &cfg.MaxTokens,
		"contextLines":          &cfg.ContextLines,
		"maxDiffChars":          &cfg.MaxDiffChars,
		"maxExcerptLines":       &cfg.MaxExcerptLines,
		"maxFindings":           &cfg.MaxFindings,
		"specialistMaxFindings": &cfg.SpecialistMaxFindings,
		"specialistValidateMax": &cfg.SpecialistValidateMax,
		"maxAttempts":           &cfg.MaxAttempts,
		"rigor":                 &cfg.Rigor,
		"maxReadmeChars":        &cfg.MaxReadmeChars,
		"maxSpecChars":          &cfg.MaxSpecChars,
		"maxSpecFiles":          &cfg.MaxSpecFiles,
		"hintMaxChars":          &cfg.HintMaxChars,
		"cache.ttlSeconds":      &cfg.Cache.TTLSeconds,
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
