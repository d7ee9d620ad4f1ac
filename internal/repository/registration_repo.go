package repository

import (
	"context"

	"github.com/ontohin26/ontohin/internal/models"
	"github.com/ontohin26/ontohin/internal/store"
)

type RegistrationRepo struct {
	store store.DocumentStore
}

func NewRegistrationRepo(s store.DocumentStore) *RegistrationRepo {
	return &RegistrationRepo{store: s}
}

var newestRegistrationFirst = &store.Sort{Field: "submittedAt", Desc: true}

func (r *RegistrationRepo) EnsureIndexes(ctx context.Context) error {
	return r.store.EnsureIndex(ctx, RegistrationsCollection, "eventId", false)
}

func (r *RegistrationRepo) Create(ctx context.Context, reg *models.Registration) (string, error) {
	return insert(ctx, r.store, RegistrationsCollection, reg)
}

func (r *RegistrationRepo) FindAll(ctx context.Context) ([]models.Registration, error) {
	return find[models.Registration](ctx, r.store, RegistrationsCollection, store.Query{}, store.FindOptions{
		Sort: newestRegistrationFirst,
	})
}

func (r *RegistrationRepo) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	return get[models.Registration](ctx, r.store, RegistrationsCollection, id)
}

func (r *RegistrationRepo) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, RegistrationsCollection, id)
}

func (r *RegistrationRepo) Count(ctx context.Context) (int, error) {
	return r.store.Count(ctx, RegistrationsCollection, store.Query{})
}

func (r *RegistrationRepo) Watch(ctx context.Context) (<-chan []models.Registration, error) {
	return watch[models.Registration](ctx, r.store, RegistrationsCollection, store.Query{}, newestRegistrationFirst)
}
