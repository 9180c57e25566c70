package monitoring

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

func TestArtifactWatcherReportsChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "house_price_model.json")

	changes := make(chan fsnotify.Op, 16)
	watcher, err := WatchArtifact(path, zap.NewNop(), func(op fsnotify.Op) {
		changes <- op
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer watcher.Close()

	if err := os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("expected a change notification for the artifact")
	}
}

func TestArtifactWatcherCloseIsIdempotent(t *testing.T) {
	watcher, err := WatchArtifact(filepath.Join(t.TempDir(), "m.json"), zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := watcher.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := watcher.Close(); err != nil {
		t.Fatalf("unexpected error on second close: %v", err)
	}
}
