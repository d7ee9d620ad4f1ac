package repository

import (
	"context"

	"github.com/ontohin26/ontohin/internal/models"
	"github.com/ontohin26/ontohin/internal/store"
)

type UserRepo struct {
	store store.DocumentStore
}

func NewUserRepo(s store.DocumentStore) *UserRepo {
	return &UserRepo{store: s}
}

func (r *UserRepo) EnsureIndexes(ctx context.Context) error {
	return r.store.EnsureIndex(ctx, UsersCollection, "email", true)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, r.store, UsersCollection, store.Query{"email": email})
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return get[models.User](ctx, r.store, UsersCollection, id)
}

// Create stores user. passwordHash is kept in the document even though the
// model omits it from API responses.
func (r *UserRepo) Create(ctx context.Context, user *models.User) (string, error) {
	return r.store.Insert(ctx, UsersCollection, store.Document{
		"email":        user.Email,
		"passwordHash": user.PasswordHash,
		"name":         user.Name,
		"role":         user.Role,
		"createdAt":    user.CreatedAt,
	})
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	return r.store.Count(ctx, UsersCollection, store.Query{})
}
