package store

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pedigraph/pedigraph/pkg/errors"
	"github.com/pedigraph/pedigraph/pkg/kin"
)

// MongoStore is a MongoDB-backed snapshot store for server deployments.
// Each snapshot is one document in the "snapshots" collection, keyed by
// name with a unique index.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// mongoDoc is the stored document shape.
type mongoDoc struct {
	Record   Record       `bson:"record"`
	Snapshot kin.Snapshot `bson:"snapshot"`
}

// NewMongoStore connects to MongoDB and prepares the snapshots collection.
// The connection is verified with a ping before the store is returned.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "ping mongo")
	}

	coll := client.Database(database).Collection("snapshots")
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "record.name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create name index")
	}

	return &MongoStore{client: client, coll: coll}, nil
}

// Save stores a snapshot under a name, creating or replacing it.
func (s *MongoStore) Save(ctx context.Context, name string, snap kin.Snapshot) (Record, error) {
	if name == "" {
		return Record{}, errors.New(errors.ErrCodeInvalidInput, "snapshot name must not be empty")
	}

	var prev *Record
	var existing mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"record.name": name}).Decode(&existing)
	if err == nil {
		prev = &existing.Record
	} else if err != mongo.ErrNoDocuments {
		return Record{}, errors.Wrap(errors.ErrCodeStore, err, "look up snapshot %q", name)
	}

	rec := recordFor(prev, name, snap, uuid.NewString)
	doc := mongoDoc{Record: rec, Snapshot: snap}

	_, err = s.coll.ReplaceOne(ctx,
		bson.M{"record.name": name},
		doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeStore, err, "save snapshot %q", name)
	}
	return rec, nil
}

// Load retrieves a snapshot by name.
func (s *MongoStore) Load(ctx context.Context, name string) (kin.Snapshot, Record, error) {
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"record.name": name}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return kin.Snapshot{}, Record{}, errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %q not found", name)
	}
	if err != nil {
		return kin.Snapshot{}, Record{}, errors.Wrap(errors.ErrCodeStore, err, "load snapshot %q", name)
	}
	return doc.Snapshot, doc.Record, nil
}

// List returns all records sorted by name.
func (s *MongoStore) List(ctx context.Context) ([]Record, error) {
	cur, err := s.coll.Find(ctx, bson.M{},
		options.Find().
			SetProjection(bson.M{"record": 1}).
			SetSort(bson.D{{Key: "record.name", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list snapshots")
	}
	defer cur.Close(ctx)

	var recs []Record
	for cur.Next(ctx) {
		var doc mongoDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "decode snapshot record")
		}
		recs = append(recs, doc.Record)
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "iterate snapshots")
	}
	return recs, nil
}

// Delete removes a snapshot by name.
func (s *MongoStore) Delete(ctx context.Context, name string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"record.name": name})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete snapshot %q", name)
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %q not found", name)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
