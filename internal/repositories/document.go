package repositories

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/desertthunder/fishstation/internal/models"
	"github.com/desertthunder/fishstation/internal/shared"
	"gopkg.in/yaml.v3"
)

// DocumentStore persists the playlist collection as one YAML document.
//
// The top level of the document is the ordered sequence of playlists.
type DocumentStore struct {
	path string
}

// NewDocumentStore creates a DocumentStore backed by the file at path
func NewDocumentStore(path string) *DocumentStore {
	return &DocumentStore{path: path}
}

// Path returns the document location.
func (s *DocumentStore) Path() string { return s.path }

// Load reads the document. A missing or empty document is an empty collection.
func (s *DocumentStore) Load() (models.Collection, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.Collection{}, nil
	}
	if err != nil {
		return nil, s.fail("load", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return models.Collection{}, nil
	}

	var collection models.Collection
	if err := yaml.Unmarshal(data, &collection); err != nil {
		return nil, s.fail("load", fmt.Errorf("unexpected document shape: %w", err))
	}
	if err := collection.Validate(); err != nil {
		return nil, s.fail("load", err)
	}

	for i := range collection {
		if collection[i].Tracks == nil {
			collection[i].Tracks = []models.Track{}
		}
	}

	return collection, nil
}

// Save overwrites the document with collection using write-temp-then-rename.
func (s *DocumentStore) Save(collection models.Collection) error {
	if collection == nil {
		collection = models.Collection{}
	}

	data, err := yaml.Marshal(collection)
	if err != nil {
		return s.fail("save", fmt.Errorf("failed to encode playlists: %w", err))
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return s.fail("save", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return s.fail("save", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return s.fail("save", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return s.fail("save", err)
	}
	if err := tmp.Close(); err != nil {
		return s.fail("save", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return s.fail("save", err)
	}

	return nil
}

// Close is a no-op; the document is not held open between calls.
func (s *DocumentStore) Close() error { return nil }

func (s *DocumentStore) fail(op string, err error) error {
	return &shared.StorageError{Op: op, Path: s.path, Err: err}
}
