package repository

import (
	"context"

	"github.com/chameleon/server/internal/kv"
	"github.com/chameleon/server/internal/models"
)

// UserRepo defines read access to the user directory
type UserRepo interface {
	GetAll(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// UserRepository exposes the fixed user directory. The directory is seeded on
// first read and never mutated by this service.
type UserRepository struct {
	collection *Collection[models.User]
}

// NewUserRepository creates a user repository seeded with the default users
func NewUserRepository(store kv.Store) *UserRepository {
	return &UserRepository{
		collection: NewCollection(store, UsersKey, models.DefaultUsers()),
	}
}

// GetAll returns the full user directory
func (r *UserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	return r.collection.ReadAll(ctx)
}

// GetByID returns the user with the given id, or nil if unknown
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	users, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, nil
}
