// Package store defines the document store the rest of ontohin persists
// through. Backends live in the memstore, oxistore and mongostore
// subpackages; services only ever see DocumentStore.
package store

import (
	"context"
	"errors"
)

// IDField is the key under which every backend exposes a document's id.
// Ids are always strings at this layer, whatever the backend stores.
const IDField = "_id"

// ErrNotFound is returned by Get, FindOne, Replace and Delete when no
// document matches.
var ErrNotFound = errors.New("store: document not found")

// ErrDuplicate is returned by Insert and Replace when the write would
// break a unique index.
var ErrDuplicate = errors.New("store: duplicate key")

// Document is a JSON-shaped record.
type Document = map[string]any

// Query matches documents whose top-level keys equal the given values.
// An empty Query matches everything.
type Query map[string]any

// Sort orders a result set by a single top-level field.
type Sort struct {
	Field string
	Desc  bool
}

// FindOptions narrows a Find call. Zero Skip and Limit mean "none".
type FindOptions struct {
	Sort  *Sort
	Skip  int
	Limit int
}

// Snapshot is the complete, ordered result set of a subscribed query at
// one point in time.
type Snapshot struct {
	Docs []Document
}

// DocumentStore is the persistence contract. Writes become visible to
// subscribers eventually; concurrent writers to the same document resolve
// as last writer wins.
type DocumentStore interface {
	Insert(ctx context.Context, collection string, doc Document) (string, error)
	Replace(ctx context.Context, collection, id string, doc Document) error
	Delete(ctx context.Context, collection, id string) error
	Get(ctx context.Context, collection, id string) (Document, error)
	FindOne(ctx context.Context, collection string, q Query) (Document, error)
	Find(ctx context.Context, collection string, q Query, opts FindOptions) ([]Document, error)
	Count(ctx context.Context, collection string, q Query) (int, error)

	// Subscribe pushes a Snapshot immediately and again after every change
	// to the collection. A slow reader only ever sees the latest snapshot.
	// The channel is closed once ctx is done.
	Subscribe(ctx context.Context, collection string, q Query, sort *Sort) (<-chan Snapshot, error)

	EnsureIndex(ctx context.Context, collection, field string, unique bool) error
	Close(ctx context.Context) error
}
