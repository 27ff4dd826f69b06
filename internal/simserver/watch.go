package simserver

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the burst of events an editor emits on save
// (write, chmod, rename-replace) into a single reload.
const reloadDebounce = 300 * time.Millisecond

// WatchFixtures reloads world from the fixture file at path whenever it
// changes on disk. Editors commonly replace files via rename, which drops
// a watch placed on the file itself, so the parent directory is watched
// and events are filtered down to the fixture path. A fixture that fails
// to parse is logged and skipped; the world keeps its previous seed.
//
// The returned func stops the watcher.
func WatchFixtures(path string, world *World, logger Logger) (func() error, error) {
	if world == nil {
		return nil, fmt.Errorf("simserver: watch fixtures: nil world")
	}
	if logger == nil {
		logger = nopLogger{}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("simserver: resolve fixtures path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("simserver: create fixtures watcher: %w", err)
	}
	dir := filepath.Dir(abs)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("simserver: watch %s: %w", dir, err)
	}

	go func() {
		var pending *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
					continue
				}
				if pending != nil {
					pending.Stop()
				}
				pending = time.NewTimer(reloadDebounce)
				fire = pending.C
			case <-fire:
				pending = nil
				fire = nil
				fixture, err := LoadFixture(abs)
				if err != nil {
					logger.Printf("simserver: fixtures reload skipped: %v", err)
					continue
				}
				world.Reset(fixture)
				logger.Printf("simserver: fixtures reloaded from %s", abs)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Printf("simserver: fixtures watcher: %v", err)
			}
		}
	}()

	return w.Close, nil
}
