// Package config loads and merges crucible configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (CRUCIBLE_PROVIDER, CRUCIBLE_MODEL, CRUCIBLE_SKILLS_DIR, etc.)
//  3. Config file ($XDG_CONFIG_HOME/crucible/config.json)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config] and [SetField] to update a single key.
package config
