// Package devreload is a local-testing convenience, never active inside
// a real provided.al2023 container: it watches the compiled bootstrap
// binary's own path with fsnotify and logs when it has been rebuilt out
// from under a running `go run`-based loop, so a developer iterating on
// a handler locally knows to restart.
//
// Adapted from the teacher's internal/hotreloading.ChangeListener, which
// watches task-code directories to trigger a full sandbox reset. This is
// a much smaller surface: there is nothing to reset in-process (a linked
// Go binary cannot swap its own handler code at runtime), so the watcher
// only ever logs a suggestion to restart.
package devreload

import (
	"context"

	"github.com/fsnotify/fsnotify"
	"github.com/localstack/go-lambda-runtime/internal/rtlog"
)

// Watch blocks, logging a restart suggestion whenever path changes, until
// ctx is cancelled. It is a no-op helper meant to be launched on its own
// goroutine by local development tooling — the production event loop in
// rtbootstrap.Run never calls it.
func Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				rtlog.Log(rtlog.Info, "handler binary changed on disk, restart the bootstrap process to pick it up: "+path)
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			rtlog.Log(rtlog.Warn, "devreload watcher error: "+watchErr.Error())
		}
	}
}
