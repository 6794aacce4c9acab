package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/deckhand/internal/config"
	"github.com/hpungsan/deckhand/internal/errors"
)

// PathCheckMode says whether a path is about to be read or written.
type PathCheckMode int

const (
	PathCheckRead  PathCheckMode = iota // deck source for import
	PathCheckWrite                      // standalone HTML for export
)

// importExtensions are the source file types import reads.
var importExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".html":     true,
	".htm":      true,
}

// exportExtension is the file type export writes.
const exportExtension = ".html"

// checkExtension rejects files import cannot read or export does not write.
func checkExtension(path string, mode PathCheckMode) error {
	ext := strings.ToLower(filepath.Ext(path))
	if mode == PathCheckWrite {
		if ext != exportExtension {
			return errors.NewInvalidRequest("path must have .html extension")
		}
		return nil
	}
	if !importExtensions[ext] {
		return errors.NewInvalidRequest("path must have one of the extensions .md, .markdown, .txt, .html, .htm")
	}
	return nil
}

// ValidatePath checks a path given to import or export:
//   - no ".." components and an extension the mode accepts
//   - the file sits directly in ~/.deckhand/exports or a configured allowed
//     path, never in a subdirectory of one (skipped with allow_unsafe_paths)
//   - neither the file nor its directory is a symlink
//   - in read mode, the file exists
//
// Only admitting files directly inside an allowed directory leaves no
// intermediate directory that could be swapped for a symlink between this
// check and the open; the final component is opened with O_NOFOLLOW.
func ValidatePath(path string, mode PathCheckMode, cfg *config.Config) error {
	if path == "" {
		return errors.NewInvalidRequest("path is required")
	}
	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if err := checkExtension(cleaned, mode); err != nil {
		return err
	}
	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	if cfg == nil || !cfg.AllowUnsafePaths {
		if err := checkAllowedDir(filepath.Dir(absPath), cfg); err != nil {
			return err
		}
	}

	return checkTarget(path, absPath, mode)
}

// checkAllowedDir requires dir to be one of the allowed directories and not
// itself a symlink.
func checkAllowedDir(dir string, cfg *config.Config) error {
	allowed, err := allowedDirs(cfg)
	if err != nil {
		return err
	}

	dir = filepath.Clean(dir)
	found := false
	for _, a := range allowed {
		if dir == a {
			found = true
			break
		}
	}
	if !found {
		return errors.NewInvalidRequest(fmt.Sprintf(
			"file must be directly in an allowed directory (no subdirectories); allowed: %v", allowed))
	}

	if isSymlink(dir) {
		return errors.NewInvalidRequest("parent directory must not be a symlink")
	}
	return nil
}

// checkTarget applies the per-file rules that hold even with unsafe paths:
// sources must exist and no target may be a symlink.
func checkTarget(path, absPath string, mode PathCheckMode) error {
	if mode == PathCheckRead {
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			return errors.NewFileNotFound(path)
		}
	}
	if isSymlink(absPath) {
		return errors.NewInvalidRequest("path must not be a symlink")
	}
	return nil
}

func isSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// allowedDirs returns the exports directory plus every absolute entry of
// allowed_paths, cleaned. Entries that are themselves symlinks are resolved
// so they compare against real parent directories.
func allowedDirs(cfg *config.Config) ([]string, error) {
	exports, err := DefaultExportsDir()
	if err != nil {
		return nil, err
	}

	dirs := []string{exports}
	if cfg != nil {
		for _, p := range cfg.AllowedPaths {
			if filepath.IsAbs(p) {
				dirs = append(dirs, p)
			}
		}
	}

	for i, d := range dirs {
		d = filepath.Clean(d)
		if isSymlink(d) {
			resolved, err := filepath.EvalSymlinks(d)
			if err != nil {
				return nil, errors.NewInvalidRequest(fmt.Sprintf("cannot resolve symlink in allowed path: %v", err))
			}
			d = resolved
		}
		dirs[i] = d
	}
	return dirs, nil
}

// DefaultExportsDir returns ~/.deckhand/exports.
func DefaultExportsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
	}
	return filepath.Join(homeDir, ".deckhand", "exports"), nil
}

// containsTraversal reports whether any component of path is "..". Both
// separators are checked so Windows-style input is caught everywhere.
func containsTraversal(path string) bool {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\' || r == filepath.Separator
	})
	for _, part := range parts {
		if part == ".." {
			return true
		}
	}
	return false
}

// filenameReplacer turns separators and ".." runs into dashes.
var filenameReplacer = strings.NewReplacer("/", "-", "\\", "-", "..", "-")

// SanitizeForFilename makes a deck name safe to embed in an export filename.
// Separators and ".." become dashes, control characters are dropped, dash
// runs collapse, and an empty result becomes "unnamed".
func SanitizeForFilename(s string) string {
	s = filenameReplacer.Replace(s)
	s = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)

	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' })
	if len(parts) == 0 {
		return "unnamed"
	}
	return strings.Join(parts, "-")
}
