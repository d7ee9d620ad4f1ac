package repository

import (
	"context"

	"github.com/ontohin26/ontohin/internal/models"
	"github.com/ontohin26/ontohin/internal/store"
)

type EventRepo struct {
	store store.DocumentStore
}

func NewEventRepo(s store.DocumentStore) *EventRepo {
	return &EventRepo{store: s}
}

var latestEventFirst = &store.Sort{Field: "date", Desc: true}

func (r *EventRepo) EnsureIndexes(ctx context.Context) error {
	return r.store.EnsureIndex(ctx, EventsCollection, "status", false)
}

func (r *EventRepo) Create(ctx context.Context, ev *models.Event) (string, error) {
	return insert(ctx, r.store, EventsCollection, ev)
}

func (r *EventRepo) Update(ctx context.Context, id string, ev *models.Event) error {
	return replace(ctx, r.store, EventsCollection, id, ev)
}

func (r *EventRepo) FindAll(ctx context.Context) ([]models.Event, error) {
	return find[models.Event](ctx, r.store, EventsCollection, store.Query{}, store.FindOptions{Sort: latestEventFirst})
}

func (r *EventRepo) FindByStatus(ctx context.Context, status models.EventStatus) ([]models.Event, error) {
	return find[models.Event](ctx, r.store, EventsCollection, store.Query{"status": string(status)}, store.FindOptions{Sort: latestEventFirst})
}

func (r *EventRepo) FindByID(ctx context.Context, id string) (*models.Event, error) {
	return get[models.Event](ctx, r.store, EventsCollection, id)
}

func (r *EventRepo) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, EventsCollection, id)
}

func (r *EventRepo) Count(ctx context.Context, status models.EventStatus) (int, error) {
	q := store.Query{}
	if status != "" {
		q["status"] = string(status)
	}
	return r.store.Count(ctx, EventsCollection, q)
}
