package repository

import (
	"context"

	"github.com/ontohin26/ontohin/internal/models"
	"github.com/ontohin26/ontohin/internal/store"
)

type FormRepo struct {
	store store.DocumentStore
}

func NewFormRepo(s store.DocumentStore) *FormRepo {
	return &FormRepo{store: s}
}

// EnsureIndexes indexes shareToken for public lookups. It is not unique:
// legacy forms may carry no token at all.
func (r *FormRepo) EnsureIndexes(ctx context.Context) error {
	return r.store.EnsureIndex(ctx, FormsCollection, "shareToken", false)
}

func (r *FormRepo) Create(ctx context.Context, form *models.Form) (string, error) {
	return insert(ctx, r.store, FormsCollection, form)
}

func (r *FormRepo) Update(ctx context.Context, id string, form *models.Form) error {
	return replace(ctx, r.store, FormsCollection, id, form)
}

func (r *FormRepo) FindAll(ctx context.Context) ([]models.Form, error) {
	return find[models.Form](ctx, r.store, FormsCollection, store.Query{}, store.FindOptions{
		Sort: &store.Sort{Field: "createdAt", Desc: true},
	})
}

func (r *FormRepo) FindByID(ctx context.Context, id string) (*models.Form, error) {
	return get[models.Form](ctx, r.store, FormsCollection, id)
}

func (r *FormRepo) FindByShareToken(ctx context.Context, token string) (*models.Form, error) {
	return findOne[models.Form](ctx, r.store, FormsCollection, store.Query{"shareToken": token})
}

func (r *FormRepo) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, FormsCollection, id)
}

// Watch streams every form, newest first, on each change.
func (r *FormRepo) Watch(ctx context.Context) (<-chan []models.Form, error) {
	return watch[models.Form](ctx, r.store, FormsCollection, store.Query{}, &store.Sort{Field: "createdAt", Desc: true})
}
