package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer lets the watcher log while the test reads.
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func waitRun(t *testing.T, runs <-chan int, want int) {
	t.Helper()
	select {
	case n := <-runs:
		if n != want {
			t.Fatalf("run %d, want %d", n, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for run %d", want)
	}
}

func TestWatchRerunsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "program.tir.yaml")
	if err := os.WriteFile(path, []byte("name: a\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var logs syncBuffer
	runs := make(chan int, 16)
	count := 0
	fn := func() error {
		count++
		runs <- count
		if count == 1 {
			return errors.New("first run fails")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- watch(ctx, path, newLogger(&logs, false), fn) }()

	// The directory is watched before the first run, so this write is seen.
	waitRun(t, runs, 1)
	if err := os.WriteFile(path, []byte("name: b\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitRun(t, runs, 2)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watch returned %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not return after cancel")
	}
	if !strings.Contains(logs.String(), "first run fails") {
		t.Errorf("failed run not logged: %q", logs.String())
	}
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "program.tir.yaml")
	if err := os.WriteFile(path, []byte("name: a\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	runs := make(chan int, 16)
	count := 0
	fn := func() error {
		count++
		runs <- count
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- watch(ctx, path, newLogger(&syncBuffer{}, false), fn) }()

	waitRun(t, runs, 1)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case n := <-runs:
		t.Errorf("unexpected run %d after writing another file", n)
	case <-time.After(3 * debounce):
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("watch returned %v, want nil", err)
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone", "program.tir.yaml")
	err := watch(context.Background(), path, newLogger(&syncBuffer{}, false), func() error { return nil })
	if err == nil {
		t.Fatal("expected an error for a missing directory")
	}
}
