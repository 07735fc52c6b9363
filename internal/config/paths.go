package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFileName is the file searched for when no -config flag is given
const ConfigFileName = "tabprofile.yaml"

// Paths contains the locations tabprofile looks in relative to its executable
type Paths struct {
	ExecutableDir string
	ConfigsDir    string
}

// GetPaths returns the application paths relative to the executable location
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	return NewPaths(filepath.Dir(exe)), nil
}

// NewPaths lays out the application directories under baseDir
func NewPaths(baseDir string) *Paths {
	return &Paths{
		ExecutableDir: baseDir,
		ConfigsDir:    filepath.Join(baseDir, "configs"),
	}
}

// ConfigCandidates lists config file locations in search order: the working
// directory first, then next to the executable.
func (p *Paths) ConfigCandidates() []string {
	locations := []string{
		ConfigFileName,
		filepath.Join("configs", ConfigFileName),
	}
	if p != nil && p.ExecutableDir != "" {
		locations = append(locations,
			filepath.Join(p.ExecutableDir, ConfigFileName),
			filepath.Join(p.ConfigsDir, ConfigFileName),
		)
	}
	return locations
}

// FileExists checks if a regular file exists
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
