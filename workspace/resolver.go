package workspace

import (
	"os"
	"path/filepath"

	"github.com/carn181/lever/langdef"
	"github.com/carn181/lever/util"
)

// Resolver turns an import literal (already stripped of its surrounding
// delimiters) into a filesystem path, for Local imports relative to the
// importing file's directory, and for Library imports by searching the
// language definition's configured search paths in order: first any
// directory named by an env_variables entry, then the OS-appropriate fixed
// paths.
type Resolver struct {
	lib LibraryPathProvider
}

// LibraryPathProvider supplies the ordered list of directories to search for
// a Library import. Implemented by langdef-backed search-path resolution
// (EnvAndStaticSearchDirs below); kept as an interface here so tests can
// supply a fixed list.
type LibraryPathProvider interface {
	SearchDirs() []string
}

// NewResolver builds a Resolver over the given library search path
// provider.
func NewResolver(lib LibraryPathProvider) *Resolver {
	return &Resolver{lib: lib}
}

// ResolveLocal resolves a Local import literal relative to fromFile's
// directory.
func (r *Resolver) ResolveLocal(fromFile, literal string) (string, bool) {
	path := filepath.Join(filepath.Dir(fromFile), literal)
	if !util.IsValidPath(path) {
		return "", false
	}
	return path, true
}

// ResolveLibrary searches the configured library paths in order and
// returns the first one under which literal exists.
func (r *Resolver) ResolveLibrary(literal string) (string, bool) {
	for _, dir := range r.lib.SearchDirs() {
		candidate := filepath.Join(dir, literal)
		if util.IsValidPath(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// EnvAndStaticSearchDirs is the default LibraryPathProvider: the directory
// named by each configured environment variable (if set), followed by the
// OS-appropriate fixed search paths from the language definition.
type EnvAndStaticSearchDirs struct {
	Paths langdef.LibraryPaths
}

func (e EnvAndStaticSearchDirs) SearchDirs() []string {
	var dirs []string
	for _, envVar := range e.Paths.EnvVariables {
		if v := os.Getenv(envVar); v != "" {
			dirs = append(dirs, v)
		}
	}
	dirs = append(dirs, e.Paths.SearchPaths()...)
	return dirs
}
