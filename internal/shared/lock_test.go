package shared

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestRunLock(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "music.db3")

	first := NewRunLock(dbPath)
	if first.Path() != dbPath+".lock" {
		t.Errorf("unexpected lock path %s", first.Path())
	}
	if err := first.Acquire(); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	second := NewRunLock(dbPath)
	if err := second.Acquire(); !errors.Is(err, ErrLocked) {
		t.Errorf("expected ErrLocked while held, got %v", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := second.Acquire(); err != nil {
		t.Errorf("acquire after release: %v", err)
	}
	_ = second.Release()
}
