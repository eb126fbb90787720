package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pedigraph/pedigraph/pkg/errors"
	"github.com/pedigraph/pedigraph/pkg/kin"
)

// MemoryStore is an in-process snapshot store for development and testing.
// Snapshots are copied on save and load so callers can't mutate stored data.
type MemoryStore struct {
	mu      sync.RWMutex
	byName  map[string]kin.Snapshot
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byName:  make(map[string]kin.Snapshot),
		records: make(map[string]Record),
	}
}

// Save stores a snapshot under a name, creating or replacing it.
func (s *MemoryStore) Save(ctx context.Context, name string, snap kin.Snapshot) (Record, error) {
	if name == "" {
		return Record{}, errors.New(errors.ErrCodeInvalidInput, "snapshot name must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var prev *Record
	if r, ok := s.records[name]; ok {
		prev = &r
	}
	rec := recordFor(prev, name, snap, uuid.NewString)

	s.byName[name] = copySnapshot(snap)
	s.records[name] = rec
	return rec, nil
}

// Load retrieves a snapshot by name.
func (s *MemoryStore) Load(ctx context.Context, name string) (kin.Snapshot, Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.byName[name]
	if !ok {
		return kin.Snapshot{}, Record{}, errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %q not found", name)
	}
	return copySnapshot(snap), s.records[name], nil
}

// List returns all records sorted by name.
func (s *MemoryStore) List(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		recs = append(recs, r)
	}
	slices.SortFunc(recs, func(a, b Record) int {
		return strings.Compare(a.Name, b.Name)
	})
	return recs, nil
}

// Delete removes a snapshot by name.
func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[name]; !ok {
		return errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %q not found", name)
	}
	delete(s.byName, name)
	delete(s.records, name)
	return nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// copySnapshot makes a shallow-safe copy of the people and edge slices.
func copySnapshot(snap kin.Snapshot) kin.Snapshot {
	return kin.Snapshot{
		People: slices.Clone(snap.People),
		Edges:  slices.Clone(snap.Edges),
	}
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
