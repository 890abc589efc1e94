package embedcache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists the embedding cache as a JSON file. JSON encodes float32
// values in their shortest uniquely-decodable form, so vectors round-trip
// bit-identically across restarts.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed cache store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

type fileCache struct {
	Model      string               `json:"model"`
	Dimension  int                  `json:"dimension"`
	Embeddings map[string][]float32 `json:"embeddings"`
}

// Load reads the cache file. A missing file or a cache recorded under a
// different model yields an empty map.
func (f *FileStore) Load(_ context.Context, model string) (map[string][]float32, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string][]float32{}, nil
		}
		return nil, fmt.Errorf("failed to read embedding cache %s: %w", f.path, err)
	}

	var cache fileCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("embedding cache %s is corrupt: %w", f.path, err)
	}

	if cache.Model != model {
		// A different model produced these vectors; they cannot be compared
		// against the configured model's embeddings.
		return map[string][]float32{}, nil
	}
	if cache.Embeddings == nil {
		return map[string][]float32{}, nil
	}
	return cache.Embeddings, nil
}

// Save writes the full cache to disk, creating parent directories as needed.
func (f *FileStore) Save(_ context.Context, model string, embeddings map[string][]float32) error {
	dimension := 0
	for _, vec := range embeddings {
		dimension = len(vec)
		break
	}

	data, err := json.MarshalIndent(fileCache{
		Model:      model,
		Dimension:  dimension,
		Embeddings: embeddings,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal embedding cache: %w", err)
	}

	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write embedding cache %s: %w", f.path, err)
	}
	return nil
}

// Ensure FileStore implements CacheStore
var _ CacheStore = (*FileStore)(nil)
