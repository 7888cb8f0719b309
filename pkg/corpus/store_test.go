package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"ai-docs-assistant-be/internal/pkg/logger"
)

func TestLoadPrefersPrimaryPath(t *testing.T) {
	dir := t.TempDir()
	primary := filepath.Join(dir, "flattened.txt")
	os.WriteFile(primary, []byte("primary content"), 0o644)
	os.WriteFile(filepath.Join(dir, "bucket_metadata.txt"), []byte("secondary"), 0o644)

	store := NewStore(primary, dir, logger.NewNop())
	c := store.Load()

	if !c.Loaded {
		t.Fatal("expected corpus to load")
	}
	if c.Text != "primary content" {
		t.Errorf("got %q, want primary file content", c.Text)
	}
	if c.Path != primary {
		t.Errorf("loaded from %q", c.Path)
	}
}

func TestLoadFallsBackThroughCandidates(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "metadata.txt"), []byte("last resort"), 0o644)

	store := NewStore(filepath.Join(dir, "missing.txt"), dir, logger.NewNop())
	c := store.Load()

	if !c.Loaded || c.Text != "last resort" {
		t.Errorf("expected fallback candidate, got loaded=%v text=%q", c.Loaded, c.Text)
	}
}

func TestLoadEmptyFileStillCountsAsLoaded(t *testing.T) {
	dir := t.TempDir()
	primary := filepath.Join(dir, "flattened.txt")
	os.WriteFile(primary, []byte(""), 0o644)

	store := NewStore(primary, dir, logger.NewNop())
	c := store.Load()

	if !c.Loaded {
		t.Error("a readable empty file is loaded data, not missing data")
	}
	if c.Text != "" {
		t.Errorf("got %q", c.Text)
	}
}

func TestLoadNothingReadable(t *testing.T) {
	store := NewStore("", t.TempDir(), logger.NewNop())
	c := store.Load()

	if c.Loaded {
		t.Error("expected unloaded corpus when no candidate exists")
	}
	if got := store.Current(); got.Loaded {
		t.Error("snapshot must reflect the failed load")
	}
}

func TestLoadDocumentsFiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "guide.txt"), []byte("text doc"), 0o644)
	os.WriteFile(filepath.Join(dir, "notes.md"), []byte("markdown doc"), 0o644)
	os.WriteFile(filepath.Join(dir, "meta.json"), []byte(`{"k":"v"}`), 0o644)
	os.WriteFile(filepath.Join(dir, "archive.pdf"), []byte("binary"), 0o644)
	os.WriteFile(filepath.Join(dir, "empty.txt"), []byte("   \n"), 0o644)

	docs, err := LoadDocuments(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 3 {
		t.Fatalf("got %d documents, want 3 (txt, md, json)", len(docs))
	}
	for _, doc := range docs {
		if doc.Content == "" {
			t.Errorf("document %s loaded empty", doc.Path)
		}
	}
}

func TestLoadDocumentsMissingDir(t *testing.T) {
	if _, err := LoadDocuments(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}
