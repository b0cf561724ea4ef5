package rundir

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ManifestName is the per-run metadata file.
const ManifestName = "run.json"

// Manifest records what produced the artifacts in a run directory.
type Manifest struct {
	RunID      string         `json:"runId"`
	Tool       string         `json:"tool"`
	Kind       string         `json:"kind"`
	Head       string         `json:"head"`
	ReviewType string         `json:"reviewType,omitempty"`
	Scope      string         `json:"scope,omitempty"`
	Provider   string         `json:"provider,omitempty"`
	DryRun     bool           `json:"dryRun"`
	State      string         `json:"state"`
	Attempts   map[string]int `json:"attempts,omitempty"`
	Error      string         `json:"error,omitempty"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
}

// Dir is a run directory. Artifacts are written whole, one file per stage.
type Dir struct {
	Path string
	log  *zap.Logger
}

// Open creates path (and parents) and returns the run directory. A manifest
// left by an earlier run is reported and will be overwritten.
func Open(path string, log *zap.Logger) (*Dir, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("creating run directory: %w", err)
	}
	if _, err := os.Stat(filepath.Join(path, ManifestName)); err == nil {
		log.Warn("run directory already used; artifacts will be overwritten", zap.String("path", path))
	}
	return &Dir{Path: path, log: log}, nil
}

// File returns the path of name inside the run directory.
func (d *Dir) File(name string) string {
	return filepath.Join(d.Path, filepath.FromSlash(name))
}

// Write replaces name with content.
func (d *Dir) Write(name, content string) error {
	p := d.File(name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(p), err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	d.log.Debug("artifact written", zap.String("path", p), zap.Int("bytes", len(content)))
	return nil
}

// Placeholder creates an empty name unless it already exists.
func (d *Dir) Placeholder(name string) error {
	if _, err := os.Stat(d.File(name)); err == nil {
		return nil
	}
	return d.Write(name, "")
}

// WriteManifest stores m as run.json.
func (d *Dir) WriteManifest(m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return d.Write(ManifestName, string(data)+"\n")
}

// ReadManifest loads run.json from dir.
func ReadManifest(dir string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return m, fmt.Errorf("reading manifest: %w", err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parsing manifest: %w", err)
	}
	return m, nil
}

// NewRunID returns a random run identifier.
func NewRunID() string {
	return uuid.NewString()
}
