package workspace

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/otiai10/copy"
)

// SnapshotLibraryPaths copies every directory in dirs into its own
// subdirectory of cacheDir and returns the snapshot paths in the same
// order. A long-running server resolves Library imports against these
// snapshots rather than the live search paths directly, so a library
// directory being edited out from under the server (a package manager
// re-installing dependencies, for instance) can't hand back a half-written
// file mid-resolution; WatchLibraryPaths + Graph.InvalidateLibraryPaths is
// what notices the change and triggers the next snapshot.
func SnapshotLibraryPaths(cacheDir string, dirs []string) ([]string, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(dirs))
	for i, dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		dest := filepath.Join(cacheDir, filepath.Base(dir)+"-"+strconv.Itoa(i))
		if err := os.RemoveAll(dest); err != nil {
			return nil, err
		}
		if err := copy.Copy(dir, dest); err != nil {
			return nil, err
		}
		out = append(out, dest)
	}
	return out, nil
}
