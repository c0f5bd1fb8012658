// Package paths resolves where the config document lives on disk.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AppDirName is the directory created under the user config directory.
const AppDirName = "callisto"

// DefaultDataDir returns the per-user application data directory.
func DefaultDataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get app data directory: %w", err)
	}
	return filepath.Join(base, AppDirName), nil
}

// ConfigPath joins fileName onto dataDir, creates dataDir if needed and
// returns the absolute path of the config file. fileName may not escape
// dataDir.
func ConfigPath(dataDir, fileName string) (string, error) {
	if fileName == "" {
		return "", fmt.Errorf("config file name is required")
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create app data directory: %w", err)
	}

	absPath, err := ValidatePathWithinDir(fileName, dataDir)
	if err != nil {
		return "", err
	}
	if absPath == filepath.Clean(mustAbs(dataDir)) {
		return "", fmt.Errorf("config file name %q resolves to the data directory itself", fileName)
	}
	return absPath, nil
}

// ValidatePathWithinDir checks if a given path is within the allowed directory.
// This prevents path traversal (e.g., "../../../etc/passwd").
//
// Parameters:
//   - filePath: The path to validate (can be relative or absolute)
//   - dir: The allowed directory
//
// Returns:
//   - absPath: The resolved absolute path (only valid if err is nil)
//   - err: An error if the path is outside dir or invalid
func ValidatePathWithinDir(filePath, dir string) (absPath string, err error) {
	targetPath := filePath
	if !filepath.IsAbs(targetPath) {
		targetPath = filepath.Join(dir, targetPath)
	}

	// Get absolute path (resolves "..", ".", and cleans the path)
	absPath, err = filepath.Abs(targetPath)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve data directory: %w", err)
	}

	// Ensure directory ends with separator for proper prefix matching
	// This prevents bypasses like /data-evil matching /data
	if !strings.HasSuffix(absDir, string(filepath.Separator)) {
		absDir += string(filepath.Separator)
	}

	if absPath != strings.TrimSuffix(absDir, string(filepath.Separator)) &&
		!strings.HasPrefix(absPath, absDir) {
		return "", fmt.Errorf("access denied: path outside data directory")
	}

	return absPath, nil
}

func mustAbs(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
