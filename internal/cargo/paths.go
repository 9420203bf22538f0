package cargo

import (
	"fmt"
	"path/filepath"
	"strings"
)

// relativeTo returns dir relative to root in slash form. Relative inputs are
// taken relative to root. Symlinked roots (e.g. /var vs /private/var) are
// resolved before giving up. Paths outside root are an error.
func relativeTo(root, dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	if rel, ok := within(root, dir); ok {
		return rel, nil
	}

	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("%s is outside %s", dir, root)
	}
	realDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		realDir = dir
	}
	if rel, ok := within(realRoot, realDir); ok {
		return rel, nil
	}
	return "", fmt.Errorf("%s is outside %s", dir, root)
}

func within(root, dir string) (string, bool) {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(dir))
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
