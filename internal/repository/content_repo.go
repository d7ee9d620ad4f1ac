package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ontohin26/ontohin/internal/models"
	"github.com/ontohin26/ontohin/internal/store"
)

type AnnouncementRepo struct {
	store store.DocumentStore
}

func NewAnnouncementRepo(s store.DocumentStore) *AnnouncementRepo {
	return &AnnouncementRepo{store: s}
}

var latestDateFirst = &store.Sort{Field: "date", Desc: true}

func (r *AnnouncementRepo) EnsureIndexes(ctx context.Context) error {
	return r.store.EnsureIndex(ctx, AnnouncementsCollection, "priority", false)
}

func (r *AnnouncementRepo) Create(ctx context.Context, a *models.Announcement) (string, error) {
	return insert(ctx, r.store, AnnouncementsCollection, a)
}

func (r *AnnouncementRepo) Update(ctx context.Context, id string, a *models.Announcement) error {
	return replace(ctx, r.store, AnnouncementsCollection, id, a)
}

// FindAll lists announcements latest first. An empty priority matches all.
func (r *AnnouncementRepo) FindAll(ctx context.Context, priority models.Priority) ([]models.Announcement, error) {
	q := store.Query{}
	if priority != "" {
		q["priority"] = string(priority)
	}
	return find[models.Announcement](ctx, r.store, AnnouncementsCollection, q, store.FindOptions{Sort: latestDateFirst})
}

func (r *AnnouncementRepo) FindByID(ctx context.Context, id string) (*models.Announcement, error) {
	return get[models.Announcement](ctx, r.store, AnnouncementsCollection, id)
}

func (r *AnnouncementRepo) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, AnnouncementsCollection, id)
}

type GalleryRepo struct {
	store store.DocumentStore
}

func NewGalleryRepo(s store.DocumentStore) *GalleryRepo {
	return &GalleryRepo{store: s}
}

func (r *GalleryRepo) EnsureIndexes(ctx context.Context) error {
	return r.store.EnsureIndex(ctx, GalleryCollection, "category", false)
}

func (r *GalleryRepo) Create(ctx context.Context, item *models.GalleryItem) (string, error) {
	return insert(ctx, r.store, GalleryCollection, item)
}

func (r *GalleryRepo) Update(ctx context.Context, id string, item *models.GalleryItem) error {
	return replace(ctx, r.store, GalleryCollection, id, item)
}

func (r *GalleryRepo) FindAll(ctx context.Context, category string) ([]models.GalleryItem, error) {
	q := store.Query{}
	if category != "" {
		q["category"] = category
	}
	return find[models.GalleryItem](ctx, r.store, GalleryCollection, q, store.FindOptions{Sort: latestDateFirst})
}

func (r *GalleryRepo) FindByID(ctx context.Context, id string) (*models.GalleryItem, error) {
	return get[models.GalleryItem](ctx, r.store, GalleryCollection, id)
}

func (r *GalleryRepo) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, GalleryCollection, id)
}

type LinkRepo struct {
	store store.DocumentStore
}

func NewLinkRepo(s store.DocumentStore) *LinkRepo {
	return &LinkRepo{store: s}
}

func (r *LinkRepo) Create(ctx context.Context, l *models.RedirectLink) (string, error) {
	return insert(ctx, r.store, LinksCollection, l)
}

func (r *LinkRepo) Update(ctx context.Context, id string, l *models.RedirectLink) error {
	return replace(ctx, r.store, LinksCollection, id, l)
}

func (r *LinkRepo) FindAll(ctx context.Context) ([]models.RedirectLink, error) {
	return find[models.RedirectLink](ctx, r.store, LinksCollection, store.Query{}, store.FindOptions{Sort: &store.Sort{Field: "label"}})
}

func (r *LinkRepo) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, LinksCollection, id)
}

const sectionKey = "key"

// SectionRepo keeps one document of the metadata collection, found by its
// key rather than its id so every backend can hold it.
type SectionRepo[T any] struct {
	store store.DocumentStore
	key   string
}

func NewSectionRepo[T any](s store.DocumentStore, key string) *SectionRepo[T] {
	return &SectionRepo[T]{store: s, key: key}
}

func (r *SectionRepo[T]) EnsureIndexes(ctx context.Context) error {
	return r.store.EnsureIndex(ctx, MetadataCollection, sectionKey, true)
}

// Get returns nil, nil when the section was never saved.
func (r *SectionRepo[T]) Get(ctx context.Context) (*T, error) {
	return findOne[T](ctx, r.store, MetadataCollection, store.Query{sectionKey: r.key})
}

// Put replaces the section, creating it on first save. Two first saves
// racing meet the unique key index; the loser replaces the winner.
func (r *SectionRepo[T]) Put(ctx context.Context, v *T) error {
	doc, err := toDoc(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.key, err)
	}
	doc[sectionKey] = r.key
	for attempt := 0; attempt < 2; attempt++ {
		existing, err := r.store.FindOne(ctx, MetadataCollection, store.Query{sectionKey: r.key})
		switch {
		case errors.Is(err, store.ErrNotFound):
			_, err = r.store.Insert(ctx, MetadataCollection, doc)
			if errors.Is(err, store.ErrDuplicate) {
				continue
			}
			return err
		case err != nil:
			return err
		}
		id, _ := existing[store.IDField].(string)
		err = r.store.Replace(ctx, MetadataCollection, id, doc)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		return err
	}
	return fmt.Errorf("save %s: concurrent writers", r.key)
}
