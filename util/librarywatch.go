package util

import (
	"context"

	"github.com/fsnotify/fsnotify"
)

// WatchLibraryPaths watches every directory in dirs and calls onChange
// whenever a file is created, removed, written or renamed under one of
// them. It's the library-search-path analogue of a source file watcher:
// lever doesn't need to know what changed, only that a Library import may
// now resolve differently, so a language definition's embedder can wire
// this straight to workspace.Graph's re-resolution of every open file's
// imports.
func WatchLibraryPaths(ctx context.Context, dirs []string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			// A missing/unreadable search path is not fatal - it simply
			// never yields a match, same as an empty directory would.
			continue
		}
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) ||
					event.Has(fsnotify.Write) || event.Has(fsnotify.Rename) {
					onChange()
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}
