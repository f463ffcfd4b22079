// Package mongo stores the canonical diagram as a MongoDB document.
//
// The diagram is kept as its canonical JSON text in a single document keyed by
// the configured diagram id, next to a few indexed summary fields. Set is an
// upsert, so the first Set creates the document.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/witview/pkg/diagram"
	werrors "github.com/matzehuels/witview/pkg/errors"
	"github.com/matzehuels/witview/pkg/store"
)

// Defaults used when Config leaves a field empty.
const (
	DefaultDatabase   = "witview"
	DefaultCollection = "diagrams"
	DefaultDiagramID  = "default"
)

// Config configures a MongoDB store.
type Config struct {
	URI        string
	Database   string
	Collection string
	// DiagramID is the document id the diagram is kept under.
	DiagramID string
}

// Document is the stored form of a diagram.
type Document struct {
	ID          string    `bson:"_id"`
	DiagramID   string    `bson:"diagram_id"`
	DiagramType string    `bson:"diagram_type"`
	Revision    int       `bson:"revision"`
	Nodes       int       `bson:"nodes"`
	Edges       int       `bson:"edges"`
	Content     string    `bson:"content"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

// ToDocument encodes d for storage under key.
func ToDocument(key string, d *diagram.Model) (Document, error) {
	data, err := diagram.Marshal(d)
	if err != nil {
		return Document{}, err
	}
	return Document{
		ID:          key,
		DiagramID:   d.ID,
		DiagramType: string(d.Type),
		Revision:    d.Revision,
		Nodes:       d.NodeCount(),
		Edges:       d.EdgeCount(),
		Content:     string(data),
		UpdatedAt:   time.Now().UTC(),
	}, nil
}

// FromDocument decodes a stored diagram.
func FromDocument(doc Document) (*diagram.Model, error) {
	d, err := diagram.Unmarshal([]byte(doc.Content))
	if err != nil {
		return nil, fmt.Errorf("decode stored diagram %s: %w", doc.ID, err)
	}
	return d, nil
}

// Store is a store.Store backed by one MongoDB document.
type Store struct {
	// Subscribers see changes made through this Store only; writes by other
	// processes are not observed.
	store.Subscribers

	client *mongo.Client
	coll   *mongo.Collection
	key    string
}

// Connect opens a client and checks the server is reachable.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, werrors.New(werrors.ErrCodeInvalidInput, "mongo uri is required")
	}
	if err := werrors.ValidateURI(cfg.URI, "mongodb", "mongodb+srv"); err != nil {
		return nil, err
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.DiagramID == "" {
		cfg.DiagramID = DefaultDiagramID
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Store{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		key:    cfg.DiagramID,
	}, nil
}

// Current implements store.Store.
func (s *Store) Current(ctx context.Context) (*diagram.Model, error) {
	var doc Document
	err := s.coll.FindOne(ctx, bson.M{"_id": s.key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find diagram %s: %w", s.key, err)
	}
	return FromDocument(doc)
}

// Set implements store.Store.
func (s *Store) Set(ctx context.Context, d *diagram.Model) error {
	if d == nil {
		return s.Clear(ctx)
	}
	previous, err := s.Current(ctx)
	if err != nil {
		return err
	}

	stored := store.Prepare(d, previous)
	doc, err := ToDocument(s.key, stored)
	if err != nil {
		return err
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": s.key}, doc, opts); err != nil {
		return fmt.Errorf("store diagram %s: %w", s.key, err)
	}
	s.Publish(ctx, stored)
	return nil
}

// Clear implements store.Store.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": s.key}); err != nil {
		return fmt.Errorf("delete diagram %s: %w", s.key, err)
	}
	s.Publish(ctx, nil)
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
