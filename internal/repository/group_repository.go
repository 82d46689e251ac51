package repository

import (
	"context"

	"github.com/chameleon/server/internal/kv"
	"github.com/chameleon/server/internal/models"
)

// GroupRepo defines document-level access to the group collection
type GroupRepo interface {
	ReadAll(ctx context.Context) ([]models.Group, error)
	WriteAll(ctx context.Context, groups []models.Group) error
	GetByID(ctx context.Context, id string) (*models.Group, error)
}

// GroupRepository owns the persisted group collection
type GroupRepository struct {
	collection *Collection[models.Group]
}

// NewGroupRepository creates a group repository backed by an initially empty
// collection.
func NewGroupRepository(store kv.Store) *GroupRepository {
	return &GroupRepository{
		collection: NewCollection(store, GroupsKey, []models.Group{}),
	}
}

// ReadAll returns every stored group in storage order
func (r *GroupRepository) ReadAll(ctx context.Context) ([]models.Group, error) {
	return r.collection.ReadAll(ctx)
}

// WriteAll overwrites the full group collection
func (r *GroupRepository) WriteAll(ctx context.Context, groups []models.Group) error {
	return r.collection.WriteAll(ctx, groups)
}

// GetByID returns the group with the given id, or nil if absent
func (r *GroupRepository) GetByID(ctx context.Context, id string) (*models.Group, error) {
	groups, err := r.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	for i := range groups {
		if groups[i].ID == id {
			return &groups[i], nil
		}
	}
	return nil, nil
}
