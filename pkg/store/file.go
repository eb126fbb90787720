package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pedigraph/pedigraph/pkg/errors"
	"github.com/pedigraph/pedigraph/pkg/kin"
)

// FileStore is a file-based snapshot store for CLI usage.
// Each snapshot is one JSON document pairing the record with the data, named
// after the snapshot name.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// fileDoc is the on-disk document format.
type fileDoc struct {
	Record   Record       `json:"record"`
	Snapshot kin.Snapshot `json:"snapshot"`
}

// NewFileStore creates a file-based store in the given directory.
// If baseDir is empty, defaults to ~/.local/share/pedigraph/snapshots/.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "get home dir")
		}
		baseDir = filepath.Join(home, ".local", "share", "pedigraph", "snapshots")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create store dir %s", baseDir)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// path converts a snapshot name to a file path. Names pass through
// url-style escaping so they can't traverse out of the store directory.
func (s *FileStore) path(name string) string {
	safe := strings.NewReplacer("/", "%2F", "\\", "%5C", "..", "%2E%2E").Replace(name)
	return filepath.Join(s.baseDir, safe+".json")
}

// Save stores a snapshot under a name, creating or replacing it.
func (s *FileStore) Save(ctx context.Context, name string, snap kin.Snapshot) (Record, error) {
	if name == "" {
		return Record{}, errors.New(errors.ErrCodeInvalidInput, "snapshot name must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var prev *Record
	if doc, err := s.read(name); err == nil {
		prev = &doc.Record
	}
	rec := recordFor(prev, name, snap, uuid.NewString)

	data, err := json.MarshalIndent(fileDoc{Record: rec, Snapshot: snap}, "", "  ")
	if err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeStore, err, "marshal snapshot %q", name)
	}
	if err := os.WriteFile(s.path(name), data, 0644); err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeStore, err, "write snapshot %q", name)
	}
	return rec, nil
}

// Load retrieves a snapshot by name.
func (s *FileStore) Load(ctx context.Context, name string) (kin.Snapshot, Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.read(name)
	if err != nil {
		return kin.Snapshot{}, Record{}, err
	}
	return doc.Snapshot, doc.Record, nil
}

func (s *FileStore) read(name string) (fileDoc, error) {
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return fileDoc{}, errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %q not found", name)
	}
	if err != nil {
		return fileDoc{}, errors.Wrap(errors.ErrCodeStore, err, "read snapshot %q", name)
	}

	var doc fileDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fileDoc{}, errors.Wrap(errors.ErrCodeStore, err, "parse snapshot %q", name)
	}
	return doc, nil
}

// List returns all records sorted by name.
func (s *FileStore) List(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list store dir")
	}

	var recs []Record
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, e.Name()))
		if err != nil {
			continue
		}
		var doc fileDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			// Skip foreign or corrupt files rather than failing the listing.
			continue
		}
		recs = append(recs, doc.Record)
	}
	slices.SortFunc(recs, func(a, b Record) int {
		return strings.Compare(a.Name, b.Name)
	})
	return recs, nil
}

// Delete removes a snapshot by name.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %q not found", name)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete snapshot %q", name)
	}
	return nil
}

// Close does nothing for the file store.
func (s *FileStore) Close(ctx context.Context) error {
	return nil
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
