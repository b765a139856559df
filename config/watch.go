package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch observes the config file for rewrites and invokes onChange for
// each one. Editors replace files with rename+create as often as they
// write in place, so the watch is on the directory and filtered by
// name. The returned stop function releases the watcher.
func Watch(path string, onChange func()) (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}

	base := filepath.Base(path)
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != base {
					continue
				}
				if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) {
					onChange()
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return func() { w.Close() }, nil
}
