// Package memstore is an in-process DocumentStore. It backs the test
// suites and single-node development runs; nothing survives a restart.
package memstore

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/ontohin26/ontohin/internal/store"
)

type entry struct {
	seq uint64
	doc store.Document
}

type subscription struct {
	coll  string
	query store.Query
	sort  *store.Sort
	feed  *store.Feed
}

type Store struct {
	mu    sync.RWMutex
	colls map[string]map[string]entry
	subs  map[*subscription]struct{}
	seq   uint64

	unique map[string][]string
}

var _ store.DocumentStore = (*Store)(nil)

func New() *Store {
	return &Store{
		colls: make(map[string]map[string]entry),
		subs:  make(map[*subscription]struct{}),

		unique: make(map[string][]string),
	}
}

func (s *Store) Insert(ctx context.Context, coll string, doc store.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conflictLocked(coll, id, doc) {
		return "", store.ErrDuplicate
	}
	s.put(coll, id, doc, 0)
	s.publishLocked(coll)
	return id, nil
}

func (s *Store) Replace(ctx context.Context, coll, id string, doc store.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.colls[coll][id]
	if !ok {
		return store.ErrNotFound
	}
	if s.conflictLocked(coll, id, doc) {
		return store.ErrDuplicate
	}
	s.put(coll, id, doc, old.seq)
	s.publishLocked(coll)
	return nil
}

func (s *Store) Delete(ctx context.Context, coll, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.colls[coll][id]; !ok {
		return store.ErrNotFound
	}
	delete(s.colls[coll], id)
	s.publishLocked(coll)
	return nil
}

func (s *Store) Get(ctx context.Context, coll, id string) (store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.colls[coll][id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return store.Clone(e.doc), nil
}

func (s *Store) FindOne(ctx context.Context, coll string, q store.Query) (store.Document, error) {
	docs, err := s.Find(ctx, coll, q, store.FindOptions{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, store.ErrNotFound
	}
	return docs[0], nil
}

func (s *Store) Find(ctx context.Context, coll string, q store.Query, opts store.FindOptions) ([]store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := s.queryLocked(coll, q, opts.Sort)
	return store.Page(docs, opts.Skip, opts.Limit), nil
}

func (s *Store) Count(ctx context.Context, coll string, q store.Query) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.colls[coll] {
		if store.Matches(e.doc, q) {
			n++
		}
	}
	return n, nil
}

func (s *Store) Subscribe(ctx context.Context, coll string, q store.Query, by *store.Sort) (<-chan store.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sub := &subscription{coll: coll, query: q, sort: by, feed: store.NewFeed()}

	s.mu.Lock()
	s.subs[sub] = struct{}{}
	sub.feed.Push(store.Snapshot{Docs: s.queryLocked(coll, q, by)})
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, sub)
		s.mu.Unlock()
		sub.feed.Close()
	}()
	return sub.feed.C(), nil
}

// EnsureIndex only records unique constraints; every query is a scan.
func (s *Store) EnsureIndex(ctx context.Context, coll, field string, unique bool) error {
	if !unique {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.unique[coll], field) {
		s.unique[coll] = append(s.unique[coll], field)
	}
	return nil
}

// conflictLocked reports whether another document in coll already holds
// one of doc's uniquely indexed values. Missing values never conflict.
func (s *Store) conflictLocked(coll, id string, doc store.Document) bool {
	for _, field := range s.unique[coll] {
		v, ok := doc[field]
		if !ok || v == nil {
			continue
		}
		for otherID, e := range s.colls[coll] {
			if otherID != id && store.Matches(e.doc, store.Query{field: v}) {
				return true
			}
		}
	}
	return false
}

func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	subs := s.subs
	s.subs = make(map[*subscription]struct{})
	s.mu.Unlock()
	for sub := range subs {
		sub.feed.Close()
	}
	return nil
}

func (s *Store) put(coll, id string, doc store.Document, seq uint64) {
	c, ok := s.colls[coll]
	if !ok {
		c = make(map[string]entry)
		s.colls[coll] = c
	}
	if seq == 0 {
		s.seq++
		seq = s.seq
	}
	stored := store.Clone(doc)
	if stored == nil {
		stored = store.Document{}
	}
	stored[store.IDField] = id
	c[id] = entry{seq: seq, doc: stored}
}

// queryLocked returns matching documents in insertion order, then sorted.
func (s *Store) queryLocked(coll string, q store.Query, by *store.Sort) []store.Document {
	matched := make([]entry, 0, len(s.colls[coll]))
	for _, e := range s.colls[coll] {
		if store.Matches(e.doc, q) {
			matched = append(matched, e)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })

	docs := make([]store.Document, len(matched))
	for i, e := range matched {
		docs[i] = store.Clone(e.doc)
	}
	store.SortDocs(docs, by)
	return docs
}

// publishLocked pushes a fresh snapshot to every subscriber of coll.
// Feeds never block, so this is safe under the write lock and keeps
// snapshots in write order.
func (s *Store) publishLocked(coll string) {
	for sub := range s.subs {
		if sub.coll != coll {
			continue
		}
		sub.feed.Push(store.Snapshot{Docs: s.queryLocked(coll, sub.query, sub.sort)})
	}
}
