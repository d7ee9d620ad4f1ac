package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ontohin26/ontohin/internal/store"
)

const (
	FormsCollection         = "forms"
	SubmissionsCollection   = "submissions"
	EventsCollection        = "events"
	RegistrationsCollection = "registrations"
	UsersCollection         = "users"
	AnnouncementsCollection = "announcements"
	GalleryCollection       = "gallery"
	LinksCollection         = "links"
	MetadataCollection      = "metadata"
)

// toDoc converts a model into the JSON shape the store keeps. The id is
// owned by the store and never written as a field.
func toDoc(v any) (store.Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc store.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	delete(doc, store.IDField)
	return doc, nil
}

func fromDoc[T any](doc store.Document) (*T, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal doc: %w", err)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("unmarshal doc: %w", err)
	}
	return &v, nil
}

// fromDocs decodes a result set, skipping documents that no longer fit the
// model.
func fromDocs[T any](docs []store.Document) []T {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		v, err := fromDoc[T](d)
		if err != nil {
			continue
		}
		out = append(out, *v)
	}
	return out
}

func insert(ctx context.Context, s store.DocumentStore, coll string, v any) (string, error) {
	doc, err := toDoc(v)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", coll, err)
	}
	return s.Insert(ctx, coll, doc)
}

func replace(ctx context.Context, s store.DocumentStore, coll, id string, v any) error {
	doc, err := toDoc(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", coll, err)
	}
	return s.Replace(ctx, coll, id, doc)
}

// findOne returns nil, nil when nothing matches.
func findOne[T any](ctx context.Context, s store.DocumentStore, coll string, q store.Query) (*T, error) {
	doc, err := s.FindOne(ctx, coll, q)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return fromDoc[T](doc)
}

// get returns nil, nil when the id is unknown.
func get[T any](ctx context.Context, s store.DocumentStore, coll, id string) (*T, error) {
	doc, err := s.Get(ctx, coll, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return fromDoc[T](doc)
}

func find[T any](ctx context.Context, s store.DocumentStore, coll string, q store.Query, opts store.FindOptions) ([]T, error) {
	docs, err := s.Find(ctx, coll, q, opts)
	if err != nil {
		return nil, err
	}
	return fromDocs[T](docs), nil
}

// watch decodes every snapshot of a subscription. The returned channel
// closes when the subscription ends.
func watch[T any](ctx context.Context, s store.DocumentStore, coll string, q store.Query, sort *store.Sort) (<-chan []T, error) {
	snaps, err := s.Subscribe(ctx, coll, q, sort)
	if err != nil {
		return nil, err
	}
	out := make(chan []T, 1)
	go func() {
		defer close(out)
		for snap := range snaps {
			items := fromDocs[T](snap.Docs)
			// Drop a stale pending set so the reader gets the newest.
			select {
			case <-out:
			default:
			}
			select {
			case out <- items:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
