// Package store provides named snapshot persistence for pedigraph.
//
// A store keeps family snapshots under user-chosen names so the CLI and the
// HTTP API can refer to a tree without shipping the full file every time.
// Three backends cover the deployment spectrum:
//   - memory: in-process storage for development and testing
//   - file: JSON files in a directory for CLI usage
//   - mongo: MongoDB for server deployments
//
// # Usage
//
//	st, err := store.NewFileStore("")  // uses ~/.local/share/pedigraph/
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	rec, err := st.Save(ctx, "smith-family", snap)
//	snap, rec, err = st.Load(ctx, "smith-family")
package store

import (
	"context"
	"time"

	"github.com/pedigraph/pedigraph/pkg/kin"
)

// Record is the stored metadata for one named snapshot.
type Record struct {
	// ID is a stable identifier assigned on first save.
	ID string `json:"id" bson:"_id"`
	// Name is the user-chosen snapshot name, unique within a store.
	Name string `json:"name" bson:"name"`

	People int `json:"people" bson:"people"`
	Edges  int `json:"edges" bson:"edges"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Store is the interface for snapshot storage backends.
type Store interface {
	// Save stores a snapshot under a name, creating or replacing it.
	// The returned record carries the assigned ID and timestamps.
	Save(ctx context.Context, name string, snap kin.Snapshot) (Record, error)

	// Load retrieves a snapshot by name.
	// Returns a SNAPSHOT_NOT_FOUND error when the name is unknown.
	Load(ctx context.Context, name string) (kin.Snapshot, Record, error)

	// List returns the records of all stored snapshots, sorted by name.
	List(ctx context.Context) ([]Record, error)

	// Delete removes a snapshot by name.
	// Returns a SNAPSHOT_NOT_FOUND error when the name is unknown.
	Delete(ctx context.Context, name string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// recordFor builds the metadata for a snapshot being saved, preserving
// identity and creation time when a previous record exists.
func recordFor(prev *Record, name string, snap kin.Snapshot, newID func() string) Record {
	now := time.Now().UTC()
	rec := Record{
		Name:      name,
		People:    len(snap.People),
		Edges:     len(snap.Edges),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if prev != nil {
		rec.ID = prev.ID
		rec.CreatedAt = prev.CreatedAt
	} else {
		rec.ID = newID()
	}
	return rec
}
