package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Output.Dir != "." {
		t.Errorf("Output.Dir = %q, want %q", cfg.Output.Dir, ".")
	}
	if cfg.Extract.Furigana != "omit" {
		t.Errorf("Extract.Furigana = %q, want %q", cfg.Extract.Furigana, "omit")
	}
	if cfg.Extract.ChunkSize != 15000 {
		t.Errorf("Extract.ChunkSize = %d, want 15000", cfg.Extract.ChunkSize)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoad_File(t *testing.T) {
	p := filepath.Join(t.TempDir(), "chapterize.toml")
	content := `[output]
dir = "/tmp/books"

[extract]
subchapters = true
furigana = "inline"

[logging]
level = "debug"
`
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := Load(p)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("exists = false, want true")
	}
	if resolved != p {
		t.Errorf("resolved = %q, want %q", resolved, p)
	}
	if cfg.Output.Dir != "/tmp/books" {
		t.Errorf("Output.Dir = %q, want %q", cfg.Output.Dir, "/tmp/books")
	}
	if !cfg.Extract.Subchapters {
		t.Error("Extract.Subchapters = false, want true")
	}
	if cfg.Extract.Furigana != "inline" {
		t.Errorf("Extract.Furigana = %q, want %q", cfg.Extract.Furigana, "inline")
	}
	// Unset values keep their defaults.
	if cfg.Extract.ChunkSize != 15000 {
		t.Errorf("Extract.ChunkSize = %d, want default 15000", cfg.Extract.ChunkSize)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nope.toml")

	cfg, _, exists, err := Load(p)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Error("exists = true for missing file, want false")
	}
	if cfg.Extract.Furigana != "omit" {
		t.Errorf("Extract.Furigana = %q, want default %q", cfg.Extract.Furigana, "omit")
	}
}

func TestLoad_InvalidFurigana(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(p, []byte("[extract]\nfurigana = \"sideways\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, _, err := Load(p); err == nil {
		t.Fatal("Load succeeded with invalid furigana mode, want error")
	}
}

func TestLoad_MalformedTOML(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(p, []byte("[extract\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, _, err := Load(p); err == nil {
		t.Fatal("Load succeeded on malformed TOML, want error")
	}
}
