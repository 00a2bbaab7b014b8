package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CatalogStore provides file-based storage for catalog files.
type CatalogStore struct {
	basePath string
}

// NewCatalogStore creates a new CatalogStore and ensures the base directory exists.
func NewCatalogStore(basePath string) (*CatalogStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &CatalogStore{basePath: basePath}, nil
}

// getPath returns the full path for a named catalog.
func (s *CatalogStore) getPath(name string) string {
	return filepath.Join(s.basePath, strings.TrimSuffix(name, ".json")+".json")
}

// Save writes a catalog file under the given name.
func (s *CatalogStore) Save(name string, file *CatalogFile) error {
	data, err := json.MarshalIndent(file, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	if err := os.WriteFile(s.getPath(name), data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}

// Load reads a named catalog file from the store.
func (s *CatalogStore) Load(name string) (*CatalogFile, error) {
	return LoadFile(s.getPath(name))
}

// Exists checks if a named catalog file exists.
func (s *CatalogStore) Exists(name string) bool {
	_, err := os.Stat(s.getPath(name))
	return !os.IsNotExist(err)
}

// LoadFile reads a catalog file from an arbitrary path.
func LoadFile(path string) (*CatalogFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var file CatalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}
	return &file, nil
}
