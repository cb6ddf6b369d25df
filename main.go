package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/carn181/lever/ast"
	"github.com/carn181/lever/cst"
	"github.com/carn181/lever/langdef"
	"github.com/carn181/lever/logging"
	"github.com/carn181/lever/plugin"
	"github.com/carn181/lever/server"
	"github.com/carn181/lever/transport"
	"github.com/carn181/lever/util"
	"github.com/carn181/lever/workspace"
)

// fixedLibraryDirs implements workspace.LibraryPathProvider over an
// already-resolved, already-snapshotted directory list.
type fixedLibraryDirs []string

func (d fixedLibraryDirs) SearchDirs() []string { return d }

func main() {
	langdefPath := flag.String("langdef", "", "path to the language definition YAML file")
	socket := flag.Bool("socket", false, "communicate over a TCP socket instead of stdio")
	flag.Parse()

	if *langdefPath == "" {
		fmt.Fprintln(os.Stderr, "lever: -langdef is required")
		os.Exit(1)
	}

	def, err := langdef.Load(*langdefPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lever:", err)
		os.Exit(1)
	}

	if err := logging.Init(def.Language.Name); err != nil {
		fmt.Fprintln(os.Stderr, "lever: could not open log file:", err)
		os.Exit(1)
	}
	defer logging.Close()
	logging.Logger.Info("starting", "language", def.Language.Name, "log", logging.LogPath(def.Language.Name))

	// The concrete tree-sitter grammar is supplied by whoever embeds lever
	// for a specific language; it is out of this repository's scope (the
	// generic core never names a grammar), so a language's launcher binary
	// is expected to construct *tree_sitter.Language itself and either
	// vendor that construction here or link it in via a build tag. Wiring
	// that is left to the embedder; cst.NewParser takes it as a parameter
	// for exactly this reason.
	parser := cst.NewParser(nil)
	defer parser.Close()

	translator := ast.NewTranslator(def)
	libDirs := workspace.EnvAndStaticSearchDirs{Paths: def.Language.LibraryPaths}
	rawSearchDirs := libDirs.SearchDirs()

	cacheDir := filepath.Join(os.TempDir(), "lever-"+def.Language.Name+"-libs")
	snapshotDirs, err := workspace.SnapshotLibraryPaths(cacheDir, rawSearchDirs)
	if err != nil {
		logging.Logger.Warn("could not snapshot library paths, resolving against live paths", "err", err)
		snapshotDirs = rawSearchDirs
	}

	resolver := workspace.NewResolver(fixedLibraryDirs(snapshotDirs))
	graph := workspace.NewGraph(parser, translator, resolver)

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	resnapshot := func() {
		if dirs, err := workspace.SnapshotLibraryPaths(cacheDir, rawSearchDirs); err == nil {
			graph.InvalidateLibraryPaths()
			_ = dirs
		}
	}
	if err := util.WatchLibraryPaths(watchCtx, rawSearchDirs, resnapshot); err != nil {
		logging.Logger.Warn("could not watch library paths", "err", err)
	}

	var t transport.Transport
	method := transport.Stdin
	if *socket {
		method = transport.Socket
	}
	t.Init(transport.Server, method)
	defer t.Close()

	srv := server.New(&t, graph, def, parser, translator, plugin.NopPlugin{})
	srv.Run()
}
