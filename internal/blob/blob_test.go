package blob

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDiskStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskStore(dir, "/uploads")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	url, err := s.Store(context.Background(), "fiche technique.pdf", strings.NewReader("contenu"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/") {
		t.Errorf("url = %q, want /uploads/ prefix", url)
	}
	if strings.Contains(url, " ") {
		t.Errorf("url %q should not contain spaces", url)
	}

	name := strings.TrimPrefix(url, "/uploads/")
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "contenu" {
		t.Errorf("content = %q, want contenu", data)
	}

	if err := s.Delete(context.Background(), url); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
		t.Error("file should be removed")
	}

	// Deleting again (or an unknown URL) is not an error.
	if err := s.Delete(context.Background(), url); err != nil {
		t.Errorf("second delete: %v", err)
	}
	if err := s.Delete(context.Background(), "https://elsewhere/file"); err != nil {
		t.Errorf("foreign url delete: %v", err)
	}
}

func TestDiskStore_UniqueNames(t *testing.T) {
	s, err := NewDiskStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	u1, err := s.Store(context.Background(), "photo.jpg", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	u2, err := s.Store(context.Background(), "photo.jpg", strings.NewReader("b"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if u1 == u2 {
		t.Error("same filename stored twice should get distinct URLs")
	}
}
