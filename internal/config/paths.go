// ABOUTME: Sample and export directory handling
// ABOUTME: Resolves user paths against configured dirs and confines remote paths to them
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathNotAllowed is returned when a path falls outside the configured directories
var ErrPathNotAllowed = errors.New("path outside allowed directories")

// Dirs holds the directories samples are loaded from and exports are written to
type Dirs struct {
	Export  string
	Samples []string
}

// Dirs returns the configured directories. An empty export dir means the
// working directory; no sample dirs means the export dir.
func (c *Config) Dirs() Dirs {
	export := expandHome(c.ExportDir)
	if export == "" {
		export = "."
	}

	var samples []string
	for _, dir := range c.SampleDirs {
		if dir = expandHome(dir); dir != "" {
			samples = append(samples, dir)
		}
	}
	if len(samples) == 0 {
		samples = []string{export}
	}

	return Dirs{Export: export, Samples: samples}
}

// ResolveExport places a relative export path in the export dir
func (d Dirs) ResolveExport(path string) string {
	if filepath.IsAbs(path) || d.Export == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(d.Export, path)
}

// ResolveSample finds a relative sample path in the first sample dir that has it.
// When no dir has it, the path is placed in the first sample dir.
func (d Dirs) ResolveSample(path string) string {
	if filepath.IsAbs(path) || len(d.Samples) == 0 {
		return filepath.Clean(path)
	}
	for _, dir := range d.Samples {
		candidate := filepath.Join(dir, path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return filepath.Join(d.Samples[0], path)
}

// ConfineExport resolves path and requires it to lie inside the export dir
func (d Dirs) ConfineExport(path string) (string, error) {
	if d.Export == "" {
		return "", fmt.Errorf("%w: no export directory configured", ErrPathNotAllowed)
	}
	return confine(d.ResolveExport(path), []string{d.Export})
}

// ConfineSample resolves path and requires it to lie inside a sample dir
func (d Dirs) ConfineSample(path string) (string, error) {
	if len(d.Samples) == 0 {
		return "", fmt.Errorf("%w: no sample directories configured", ErrPathNotAllowed)
	}
	return confine(d.ResolveSample(path), d.Samples)
}

func confine(path string, roots []string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	for _, root := range roots {
		rootAbs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		if within(abs, rootAbs) {
			return abs, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrPathNotAllowed, path)
}

// within reports whether path is strictly below root
func within(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
