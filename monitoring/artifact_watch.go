package monitoring

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ArtifactWatcher reports changes to the model artifact on disk. The running
// model is never reloaded; a change only means a restart is needed to serve it.
type ArtifactWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	log      *zap.Logger
	onChange func(fsnotify.Op)
	done     chan struct{}
	once     sync.Once
}

// WatchArtifact watches the directory containing path so that the artifact
// being created, replaced or removed is seen. onChange may be nil.
func WatchArtifact(path string, log *zap.Logger, onChange func(fsnotify.Op)) (*ArtifactWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}

	w := &ArtifactWatcher{
		path:     abs,
		watcher:  watcher,
		log:      log,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *ArtifactWatcher) run() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.log.Warn("model artifact changed on disk; restart the service to serve it",
				zap.String("path", w.path), zap.String("op", event.Op.String()))
			if w.onChange != nil {
				w.onChange(event.Op)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("artifact watcher error", zap.Error(err))
		}
	}
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *ArtifactWatcher) Close() error {
	var err error
	w.once.Do(func() {
		err = w.watcher.Close()
		<-w.done
	})
	return err
}
