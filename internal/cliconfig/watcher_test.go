package cliconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/meshkit/meshdeploy/internal/ports"
)

type testLogger struct{}

func (testLogger) Debug(msg string, fields ...ports.Field) {}
func (testLogger) Info(msg string, fields ...ports.Field)  {}
func (testLogger) Warn(msg string, fields ...ports.Field)  {}
func (testLogger) Error(msg string, fields ...ports.Field) {}

func TestSpecWatcherDetectsChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`replicas = 1`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	changes := make(chan FileConfig, 4)
	w := NewSpecWatcher(path, testLogger{}, func(fc FileConfig) {
		changes <- fc
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	// Give the watcher time to register before modifying the file.
	time.Sleep(200 * time.Millisecond)

	if err := os.WriteFile(path, []byte(`replicas = 3`), 0o644); err != nil {
		t.Fatalf("modify config: %v", err)
	}

	select {
	case fc := <-changes:
		if fc.Replicas != 3 {
			t.Errorf("Replicas = %d, want 3", fc.Replicas)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change callback")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestSpecWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`replicas = 1`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	changes := make(chan FileConfig, 4)
	w := NewSpecWatcher(path, testLogger{}, func(fc FileConfig) {
		changes <- fc
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	time.Sleep(200 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte(`replicas = 9`), 0o644); err != nil {
		t.Fatalf("write other file: %v", err)
	}

	select {
	case fc := <-changes:
		t.Errorf("unexpected callback for unrelated file: %+v", fc)
	case <-time.After(500 * time.Millisecond):
	}
}
