// Package oxistore runs the DocumentStore contract against oxidb-server
// through the round-robin connection pool. oxidb has no change feed, so
// subscriptions poll and only publish when the result set changed.
package oxistore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ontohin26/ontohin/internal/db"
	"github.com/ontohin26/ontohin/internal/oxidb"
	"github.com/ontohin26/ontohin/internal/store"
	"go.uber.org/zap"
)

type Store struct {
	pool *db.Pool
	poll time.Duration
	log  *zap.Logger
}

var _ store.DocumentStore = (*Store)(nil)

func New(pool *db.Pool, poll time.Duration, log *zap.Logger) *Store {
	if poll <= 0 {
		poll = 2 * time.Second
	}
	return &Store{pool: pool, poll: poll, log: log.Named("oxistore")}
}

func (s *Store) Insert(ctx context.Context, coll string, doc store.Document) (string, error) {
	body := store.Clone(doc)
	delete(body, store.IDField)
	result, err := s.pool.Get().Insert(ctx, coll, body)
	if err != nil {
		return "", fmt.Errorf("oxistore: insert %s: %w", coll, wrapDuplicate(err))
	}
	id := extractID(result)
	if id == "" {
		return "", fmt.Errorf("oxistore: insert %s: server returned no id", coll)
	}
	return id, nil
}

// Replace makes doc the whole stored document. oxidb only merges with
// $set, so keys the stored document has and doc lacks are set to null,
// and reads drop null keys again.
func (s *Store) Replace(ctx context.Context, coll, id string, doc store.Document) error {
	key, ok := toNumericID(id)
	if !ok {
		return store.ErrNotFound
	}
	c := s.pool.Get()
	existing, err := c.FindOne(ctx, coll, map[string]any{store.IDField: key})
	if err != nil {
		return fmt.Errorf("oxistore: replace %s/%s: %w", coll, id, err)
	}
	if existing == nil {
		return store.ErrNotFound
	}

	body := store.Clone(doc)
	delete(body, store.IDField)
	for k := range existing {
		if _, keep := body[k]; !keep && k != store.IDField {
			body[k] = nil
		}
	}
	if _, err := c.UpdateOne(ctx, coll, map[string]any{store.IDField: key}, map[string]any{"$set": body}); err != nil {
		return fmt.Errorf("oxistore: replace %s/%s: %w", coll, id, wrapDuplicate(err))
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, coll, id string) error {
	key, ok := toNumericID(id)
	if !ok {
		return store.ErrNotFound
	}
	result, err := s.pool.Get().DeleteOne(ctx, coll, map[string]any{store.IDField: key})
	if err != nil {
		return fmt.Errorf("oxistore: delete %s/%s: %w", coll, id, err)
	}
	if n, ok := result["deleted"].(float64); ok && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Get(ctx context.Context, coll, id string) (store.Document, error) {
	key, ok := toNumericID(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	return s.FindOne(ctx, coll, store.Query{store.IDField: key})
}

func (s *Store) FindOne(ctx context.Context, coll string, q store.Query) (store.Document, error) {
	doc, err := s.pool.Get().FindOne(ctx, coll, toWireQuery(q))
	if err != nil {
		return nil, fmt.Errorf("oxistore: find_one %s: %w", coll, err)
	}
	if doc == nil {
		return nil, store.ErrNotFound
	}
	normalizeID(doc)
	return doc, nil
}

func (s *Store) Find(ctx context.Context, coll string, q store.Query, opts store.FindOptions) ([]store.Document, error) {
	wire := &oxidb.FindOptions{}
	if opts.Sort != nil && opts.Sort.Field != "" {
		dir := 1
		if opts.Sort.Desc {
			dir = -1
		}
		wire.Sort = map[string]any{opts.Sort.Field: dir}
	}
	if opts.Skip > 0 {
		wire.Skip = &opts.Skip
	}
	if opts.Limit > 0 {
		wire.Limit = &opts.Limit
	}

	docs, err := s.pool.Get().Find(ctx, coll, toWireQuery(q), wire)
	if err != nil {
		return nil, fmt.Errorf("oxistore: find %s: %w", coll, err)
	}
	for _, d := range docs {
		normalizeID(d)
	}
	return docs, nil
}

func (s *Store) Count(ctx context.Context, coll string, q store.Query) (int, error) {
	n, err := s.pool.Get().Count(ctx, coll, toWireQuery(q))
	if err != nil {
		return 0, fmt.Errorf("oxistore: count %s: %w", coll, err)
	}
	return n, nil
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
		ticker := time.NewTicker(s.poll)
		defer ticker.Stop()
		last := first
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				docs, err := s.Find(ctx, coll, q, opts)
				if err != nil {
					if ctx.Err() == nil {
						s.log.Warn("poll failed", zap.String("collection", coll), zap.Error(err))
					}
					continue
				}
				if store.SameDocs(last, docs) {
					continue
				}
				last = docs
				feed.Push(store.Snapshot{Docs: docs})
			}
		}
	}()
	return feed.C(), nil
}

func (s *Store) EnsureIndex(ctx context.Context, coll, field string, unique bool) error {
	c := s.pool.Get()
	if unique {
		return c.CreateUniqueIndex(ctx, coll, field)
	}
	return c.CreateIndex(ctx, coll, field)
}

func (s *Store) Close(ctx context.Context) error {
	s.pool.Close()
	return nil
}

// toNumericID converts a string id to the number oxidb keys documents by.
func toNumericID(id string) (float64, bool) {
	n, err := strconv.ParseFloat(id, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// toWireQuery rewrites a string _id into oxidb's numeric form.
func toWireQuery(q store.Query) map[string]any {
	out := make(map[string]any, len(q))
	for k, v := range q {
		if k == store.IDField {
			if s, ok := v.(string); ok {
				if n, ok := toNumericID(s); ok {
					v = n
				}
			}
		}
		out[k] = v
	}
	return out
}

// normalizeID converts the numeric _id oxidb returns into a string and
// drops the null keys Replace leaves behind.
func normalizeID(doc map[string]any) {
	for k, v := range doc {
		if v == nil {
			delete(doc, k)
		}
	}
	switch v := doc[store.IDField].(type) {
	case float64:
		doc[store.IDField] = strconv.FormatFloat(v, 'f', 0, 64)
	case int:
		doc[store.IDField] = strconv.Itoa(v)
	}
}

// extractID gets the inserted document id from an insert response.
func extractID(result map[string]any) string {
	switch v := result["id"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return ""
}

// wrapDuplicate tags unique index violations with store.ErrDuplicate and
// keeps the server's message.
func wrapDuplicate(err error) error {
	var dup *oxidb.DuplicateKeyError
	if errors.As(err, &dup) {
		return fmt.Errorf("%w: %s", store.ErrDuplicate, dup.Msg)
	}
	return err
}
