package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
debug: true
server:
  host: 0.0.0.0
  port: 9090
storage:
  database_path: ./store.db
search:
  chunk_size: 500
  chunk_overlap: 50
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true")
	}
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9090 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Search.ChunkSize != 500 || cfg.Search.ChunkOverlap != 50 {
		t.Errorf("search = %+v", cfg.Search)
	}
	// ./-relative paths resolve against the config file's directory.
	if want := filepath.Join(dir, "store.db"); cfg.Storage.DatabasePath != want {
		t.Errorf("database path = %q, want %q", cfg.Storage.DatabasePath, want)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("debug: false\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Embedding.Dimensions != 768 {
		t.Errorf("default dimensions = %d, want 768", cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.Model != "text-embedding-004" {
		t.Errorf("default embedding model = %q", cfg.Embedding.Model)
	}
	if cfg.Search.ChunkSize != 1000 || cfg.Search.ChunkOverlap != 200 {
		t.Errorf("default chunking = %d/%d, want 1000/200", cfg.Search.ChunkSize, cfg.Search.ChunkOverlap)
	}
	if cfg.Search.TopK != 5 || cfg.Search.ContextChunks != 4 {
		t.Errorf("default retrieval = %d/%d, want 5/4", cfg.Search.TopK, cfg.Search.ContextChunks)
	}
	if cfg.Search.KeywordWeight != 0.7 || cfg.Search.VectorWeight != 0.3 {
		t.Errorf("default weights = %v/%v, want 0.7/0.3", cfg.Search.KeywordWeight, cfg.Search.VectorWeight)
	}
	if cfg.Embedding.APIKeyEnv != "GEMINI_API_KEY" {
		t.Errorf("default api key env = %q", cfg.Embedding.APIKeyEnv)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Server.Port = 7171
	cfg.Storage.DatabasePath = filepath.Join(dir, "db.sqlite")
	cfg.Storage.UploadDir = filepath.Join(dir, "uploads")

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 7171 {
		t.Errorf("port = %d, want 7171", loaded.Server.Port)
	}
	if loaded.Storage.DatabasePath != cfg.Storage.DatabasePath {
		t.Errorf("database path = %q, want %q", loaded.Storage.DatabasePath, cfg.Storage.DatabasePath)
	}
}
