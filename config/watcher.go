package config

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher signals when the config file has been written, replaced or
// recreated. Bursts of file system events collapse into one signal.
type Watcher struct {
	fsw     *fsnotify.Watcher
	file    string
	changes chan struct{}
	done    chan struct{}
}

// NewWatcher watches the directory of cfile, since editors and the web
// handler may replace the file rather than write it in place.
func NewWatcher(cfile string) (*Watcher, error) {
	abs, err := filepath.Abs(cfile)
	if err != nil {
		return nil, fmt.Errorf("can't resolve config path %s: %w", cfile, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("can't create config watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("can't watch %s: %w", filepath.Dir(abs), err)
	}
	w := &Watcher{
		fsw:     fsw,
		file:    abs,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Changes delivers one value per burst of modifications.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.file {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			slog.Debug("Config file changed", "file", ev.Name, "op", ev.Op.String())
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Error("Config watcher error", "error", err)
		}
	}
}
