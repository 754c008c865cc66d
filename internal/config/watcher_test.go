package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherFiresOnTargetChange(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(target, []byte("a: 1\n"), 0o644); err != nil {
		t.Fatalf("failed to seed config: %v", err)
	}

	changed := make(chan struct{}, 1)
	watcher, err := NewWatcher(target, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	defer watcher.Close()

	if err := os.WriteFile(target, []byte("a: 2\n"), 0o644); err != nil {
		t.Fatalf("failed to modify config: %v", err)
	}

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not report the change")
	}
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(target, []byte("a: 1\n"), 0o644); err != nil {
		t.Fatalf("failed to seed config: %v", err)
	}

	changed := make(chan struct{}, 1)
	watcher, err := NewWatcher(target, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	defer watcher.Close()

	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("b: 1\n"), 0o644); err != nil {
		t.Fatalf("failed to write sibling: %v", err)
	}

	select {
	case <-changed:
		t.Fatal("watcher fired for an unrelated file")
	case <-time.After(600 * time.Millisecond):
	}
}
