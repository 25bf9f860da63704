package linehistory

import (
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")

	s, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	lines := []string{"ls -l", "git status", "echo hi"}
	for _, line := range lines {
		if err := s.Append(line); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(lines) {
		t.Fatalf("loaded %d lines", len(got))
	}
	for i := range lines {
		if got[i] != lines[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], lines[i])
		}
	}
}

func TestFileStoreLoadMissing(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	got, err := s.Load()
	if err != nil || got != nil {
		t.Fatalf("Load missing file: %v, %v", got, err)
	}
}

func TestFileStoreEscaping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	line := "echo 'a\nb' \\ done"
	if err := s.Append(line); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != line {
		t.Fatalf("got %q, want %q", got, line)
	}
}

func TestFileStoreSaveReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.Append("old")
	if err := s.Save([]string{"new-1", "new-2"}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "new-1" {
		t.Fatalf("got %v", got)
	}
}

func TestFileStoreSharedFile(t *testing.T) {
	// Two stores on the same path model two concurrent shells.
	path := filepath.Join(t.TempDir(), "history")

	a, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	b, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	a.Append("from-a")
	b.Append("from-b")

	got, err := a.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "from-a" || got[1] != "from-b" {
		t.Fatalf("got %v", got)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	s.Append("x")
	s.Save([]string{"a", "b"})
	got, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "a" {
		t.Fatalf("got %v", got)
	}
}
