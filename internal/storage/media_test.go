package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *MediaStore {
	t.Helper()
	store, err := NewMediaStore(t.TempDir(), "http://localhost:8080")
	if err != nil {
		t.Fatalf("NewMediaStore: %v", err)
	}
	return store
}

func TestSave(t *testing.T) {
	store := newTestStore(t)

	url, err := store.Save("pitch-deck.PDF", strings.NewReader("%PDF-1.4 fake"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !strings.HasPrefix(url, "http://localhost:8080/media/") {
		t.Errorf("url = %q, want /media/ prefix", url)
	}
	if !strings.HasSuffix(url, ".pdf") {
		t.Errorf("url = %q, want lowercased extension kept", url)
	}

	// The file is actually on disk with the served name.
	name := url[strings.LastIndex(url, "/")+1:]
	data, err := os.ReadFile(filepath.Join(store.Dir(), name))
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if string(data) != "%PDF-1.4 fake" {
		t.Errorf("stored content = %q", data)
	}
}

func TestSave_RejectsUnknownTypes(t *testing.T) {
	store := newTestStore(t)
	for _, name := range []string{"script.sh", "binary.exe", "noext"} {
		if _, err := store.Save(name, strings.NewReader("x")); err == nil {
			t.Errorf("Save(%q) should be rejected", name)
		}
	}
}

func TestSave_NamesAreOpaque(t *testing.T) {
	store := newTestStore(t)

	a, err := store.Save("../../etc/passwd.png", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if strings.Contains(a, "..") || strings.Contains(a, "passwd") {
		t.Errorf("url %q leaks the client filename", a)
	}

	b, _ := store.Save("image.png", strings.NewReader("x"))
	if a == b {
		t.Error("two uploads got the same URL")
	}
}

func TestSaveJSON(t *testing.T) {
	store := newTestStore(t)

	url, err := store.SaveJSON(map[string]string{"name": "Starship Quest"})
	if err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}
	if !strings.HasSuffix(url, ".json") {
		t.Errorf("url = %q, want .json suffix", url)
	}
}
