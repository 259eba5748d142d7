package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandHomePath rewrites a leading "~" to the current user's home
// directory. Paths that do not start with "~" pass through unchanged.
func ExpandHomePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// ResolveStateDir expands and cleans the configured state directory,
// falling back to fallback when the configured value is blank.
func ResolveStateDir(configured, fallback string) string {
	dir := strings.TrimSpace(configured)
	if dir == "" {
		dir = fallback
	}
	return filepath.Clean(ExpandHomePath(dir))
}

// ResolveStateFile joins a filename under the resolved state directory.
func ResolveStateFile(configured, fallback, filename string) string {
	return filepath.Join(ResolveStateDir(configured, fallback), filename)
}
