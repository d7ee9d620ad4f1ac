package repository

import (
	"context"

	"github.com/ontohin26/ontohin/internal/models"
	"github.com/ontohin26/ontohin/internal/store"
)

type SubmissionRepo struct {
	store store.DocumentStore
}

func NewSubmissionRepo(s store.DocumentStore) *SubmissionRepo {
	return &SubmissionRepo{store: s}
}

var newestSubmissionFirst = &store.Sort{Field: "submittedAt", Desc: true}

func (r *SubmissionRepo) EnsureIndexes(ctx context.Context) error {
	if err := r.store.EnsureIndex(ctx, SubmissionsCollection, "formId", false); err != nil {
		return err
	}
	return r.store.EnsureIndex(ctx, SubmissionsCollection, "submittedAt", false)
}

func (r *SubmissionRepo) Create(ctx context.Context, sub *models.Submission) (string, error) {
	return insert(ctx, r.store, SubmissionsCollection, sub)
}

// FindAll returns submissions newest first. An empty formID means every
// form.
func (r *SubmissionRepo) FindAll(ctx context.Context, formID string) ([]models.Submission, error) {
	return find[models.Submission](ctx, r.store, SubmissionsCollection, byForm(formID), store.FindOptions{
		Sort: newestSubmissionFirst,
	})
}

func (r *SubmissionRepo) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	return get[models.Submission](ctx, r.store, SubmissionsCollection, id)
}

func (r *SubmissionRepo) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, SubmissionsCollection, id)
}

// Count counts submissions, optionally for one form.
func (r *SubmissionRepo) Count(ctx context.Context, formID string) (int, error) {
	return r.store.Count(ctx, SubmissionsCollection, byForm(formID))
}

// Watch streams the full, newest-first submission list on every change.
func (r *SubmissionRepo) Watch(ctx context.Context, formID string) (<-chan []models.Submission, error) {
	return watch[models.Submission](ctx, r.store, SubmissionsCollection, byForm(formID), newestSubmissionFirst)
}

func byForm(formID string) store.Query {
	if formID == "" {
		return store.Query{}
	}
	return store.Query{"formId": formID}
}
