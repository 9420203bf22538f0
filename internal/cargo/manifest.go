// Package cargo enumerates the packages of a Cargo repository: every member
// of a multi-crate workspace, or one implicit package for a single crate.
package cargo

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/NielsdaWheelz/cibootstrap/internal/errors"
	"github.com/NielsdaWheelz/cibootstrap/internal/fs"
)

// ManifestName is the package manifest file name.
const ManifestName = "Cargo.toml"

// manifest is the subset of Cargo.toml this tool reads.
type manifest struct {
	Package   *packageSection   `toml:"package"`
	Workspace *workspaceSection `toml:"workspace"`
}

type packageSection struct {
	Name string `toml:"name"`
}

type workspaceSection struct {
	Members []string `toml:"members"`
	Exclude []string `toml:"exclude"`
}

// readManifest decodes <dir>/Cargo.toml.
// Returns E_NO_MANIFEST when the file is missing and E_INVALID_MANIFEST when
// it cannot be read or decoded.
func readManifest(fsys fs.FS, dir string) (manifest, error) {
	path := filepath.Join(dir, ManifestName)
	data, err := fsys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return manifest{}, errors.NewWithDetails(errors.ENoManifest, "no "+ManifestName+" found",
				map[string]string{"path": path})
		}
		return manifest{}, errors.WrapWithDetails(errors.EInvalidManifest, "failed to read "+ManifestName, err,
			map[string]string{"path": path})
	}

	var m manifest
	if _, err := toml.Decode(string(data), &m); err != nil {
		return manifest{}, errors.WrapWithDetails(errors.EInvalidManifest, "failed to parse "+ManifestName, err,
			map[string]string{"path": path})
	}
	return m, nil
}
