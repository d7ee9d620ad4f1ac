// Package mongostore runs the DocumentStore contract against MongoDB.
// Subscriptions re-query on every change-stream event; deployments without
// change streams (standalone mongod) fall back to polling.
package mongostore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ontohin26/ontohin/internal/store"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	poll   time.Duration
	log    *zap.Logger
}

var _ store.DocumentStore = (*Store)(nil)

// Connect dials uri, pings the primary and returns a store on database.
func Connect(ctx context.Context, uri, database string, poll time.Duration, log *zap.Logger) (*Store, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ping: %w", err)
	}

	if poll <= 0 {
		poll = 2 * time.Second
	}
	return &Store{client: client, db: client.Database(database), poll: poll, log: log.Named("mongostore")}, nil
}

func (s *Store) Insert(ctx context.Context, coll string, doc store.Document) (string, error) {
	body := store.Clone(doc)
	delete(body, store.IDField)
	res, err := s.db.Collection(coll).InsertOne(ctx, body)
	if err != nil {
		return "", fmt.Errorf("mongostore: insert %s: %w", coll, wrapDuplicate(err))
	}
	oid, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return fmt.Sprint(res.InsertedID), nil
	}
	return oid.Hex(), nil
}

func (s *Store) Replace(ctx context.Context, coll, id string, doc store.Document) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return store.ErrNotFound
	}
	body := store.Clone(doc)
	delete(body, store.IDField)
	res, err := s.db.Collection(coll).ReplaceOne(ctx, bson.M{"_id": oid}, body)
	if err != nil {
		return fmt.Errorf("mongostore: replace %s/%s: %w", coll, id, wrapDuplicate(err))
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, coll, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return store.ErrNotFound
	}
	res, err := s.db.Collection(coll).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongostore: delete %s/%s: %w", coll, id, err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Get(ctx context.Context, coll, id string) (store.Document, error) {
	return s.FindOne(ctx, coll, store.Query{store.IDField: id})
}

func (s *Store) FindOne(ctx context.Context, coll string, q store.Query) (store.Document, error) {
	filter, ok := toFilter(q)
	if !ok {
		return nil, store.ErrNotFound
	}
	raw, err := s.db.Collection(coll).FindOne(ctx, filter).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongostore: find_one %s: %w", coll, err)
	}
	return fromRaw(raw)
}

func (s *Store) Find(ctx context.Context, coll string, q store.Query, opts store.FindOptions) ([]store.Document, error) {
	filter, ok := toFilter(q)
	if !ok {
		return []store.Document{}, nil
	}

	findOpts := options.Find()
	if opts.Sort != nil && opts.Sort.Field != "" {
		dir := 1
		if opts.Sort.Desc {
			dir = -1
		}
		// _id breaks ties so equal sort keys keep insertion order.
		findOpts.SetSort(bson.D{{Key: opts.Sort.Field, Value: dir}, {Key: "_id", Value: 1}})
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(int64(opts.Skip))
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	cur, err := s.db.Collection(coll).Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("mongostore: find %s: %w", coll, err)
	}
	defer cur.Close(ctx)

	docs := []store.Document{}
	for cur.Next(ctx) {
		doc, err := fromRaw(cur.Current)
		if err != nil {
			s.log.Warn("skipping undecodable document", zap.String("collection", coll), zap.Error(err))
			continue
		}
		docs = append(docs, doc)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongostore: find %s: %w", coll, err)
	}
	return docs, nil
}

func (s *Store) Count(ctx context.Context, coll string, q store.Query) (int, error) {
	filter, ok := toFilter(q)
	if !ok {
		return 0, nil
	}
	n, err := s.db.Collection(coll).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("mongostore: count %s: %w", coll, err)
	}
	return int(n), nil
}

func (s *Store) Subscribe(ctx context.Context, coll string, q store.Query, by *store.Sort) (<-chan store.Snapshot, error) {
	opts := store.FindOptions{Sort: by}
	first, err := s.Find(ctx, coll, q, opts)
	if err != nil {
		return nil, err
	}
	feed := store.NewFeed()
	feed.Push(store.Snapshot{Docs: first})

	go func() {
		defer feed.Close()
		last := first
		refresh := func() {
			docs, err := s.Find(ctx, coll, q, opts)
			if err != nil {
				if ctx.Err() == nil {
					s.log.Warn("refresh failed", zap.String("collection", coll), zap.Error(err))
				}
				return
			}
			if !store.SameDocs(last, docs) {
				last = docs
				feed.Push(store.Snapshot{Docs: docs})
			}
		}

		cs, err := s.db.Collection(coll).Watch(ctx, mongo.Pipeline{})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Info("change streams unavailable, polling", zap.String("collection", coll), zap.Error(err))
			s.pollLoop(ctx, refresh)
			return
		}
		defer cs.Close(context.Background())

		// A change that landed between the first query and Watch is
		// picked up here.
		refresh()
		for cs.Next(ctx) {
			refresh()
		}
		if err := cs.Err(); err != nil && ctx.Err() == nil {
			s.log.Warn("change stream ended, polling", zap.String("collection", coll), zap.Error(err))
			s.pollLoop(ctx, refresh)
		}
	}()
	return feed.C(), nil
}

func (s *Store) pollLoop(ctx context.Context, refresh func()) {
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}

func (s *Store) EnsureIndex(ctx context.Context, coll, field string, unique bool) error {
	_, err := s.db.Collection(coll).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(unique),
	})
	if err != nil {
		return fmt.Errorf("mongostore: index %s.%s: %w", coll, field, err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// toFilter maps a Query onto a bson filter. A string _id that is not an
// ObjectID can never match, reported as ok=false.
func toFilter(q store.Query) (bson.M, bool) {
	filter := bson.M{}
	for k, v := range q {
		if k == store.IDField {
			if hex, isString := v.(string); isString {
				oid, err := bson.ObjectIDFromHex(hex)
				if err != nil {
					return nil, false
				}
				v = oid
			}
		}
		filter[k] = v
	}
	return filter, true
}

// fromRaw turns a stored document back into the JSON shape the rest of the
// service works with, with _id as a hex string.
func fromRaw(raw bson.Raw) (store.Document, error) {
	ext, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, fmt.Errorf("mongostore: decode: %w", err)
	}
	var doc store.Document
	if err := json.Unmarshal(ext, &doc); err != nil {
		return nil, fmt.Errorf("mongostore: decode: %w", err)
	}
	if oid, ok := raw.Lookup("_id").ObjectIDOK(); ok {
		doc[store.IDField] = oid.Hex()
	}
	return doc, nil
}

func wrapDuplicate(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	return err
}
