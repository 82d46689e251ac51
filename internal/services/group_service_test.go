package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chameleon/server/internal/kv"
	"github.com/chameleon/server/internal/models"
	"github.com/chameleon/server/internal/repository"
)

func newGroupService(t *testing.T) *GroupService {
	t.Helper()
	store := kv.NewMemoryStore()
	return NewGroupService(
		repository.NewGroupRepository(store),
		repository.NewUserRepository(store),
		nil,
	)
}

func TestGroupService_CreateGroup(t *testing.T) {
	ctx := context.Background()
	svc := newGroupService(t)

	t.Run("owner is always a member", func(t *testing.T) {
		group, err := svc.CreateGroup(ctx, "user_1", "Family")
		require.NoError(t, err)
		assert.Equal(t, "Family", group.Name)
		assert.Equal(t, "user_1", group.OwnerID)
		assert.True(t, group.HasMember("user_1"))
		assert.NotEmpty(t, group.ID)
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		_, err := svc.CreateGroup(ctx, "user_1", "   ")
		assert.ErrorIs(t, err, models.ErrGroupNameRequired)
	})
}

func TestGroupService_AddMember(t *testing.T) {
	ctx := context.Background()
	svc := newGroupService(t)

	group, err := svc.CreateGroup(ctx, "user_1", "Roommates")
	require.NoError(t, err)

	t.Run("adds a new member", func(t *testing.T) {
		updated, err := svc.AddMember(ctx, group.ID, "user_3")
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.ElementsMatch(t, []string{"user_1", "user_3"}, updated.Members)
	})

	t.Run("adding twice changes nothing", func(t *testing.T) {
		updated, err := svc.AddMember(ctx, group.ID, "user_3")
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Len(t, updated.Members, 2)
	})

	t.Run("unknown group yields nil", func(t *testing.T) {
		updated, err := svc.AddMember(ctx, "missing", "user_3")
		require.NoError(t, err)
		assert.Nil(t, updated)
	})

	t.Run("unknown user is rejected", func(t *testing.T) {
		_, err := svc.AddMember(ctx, group.ID, "user_999")
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})
}

func TestGroupService_RemoveMember(t *testing.T) {
	ctx := context.Background()
	svc := newGroupService(t)

	group, err := svc.CreateGroup(ctx, "user_1", "Dinner Club")
	require.NoError(t, err)
	_, err = svc.AddMember(ctx, group.ID, "user_2")
	require.NoError(t, err)

	t.Run("removes a member", func(t *testing.T) {
		updated, err := svc.RemoveMember(ctx, group.ID, "user_2")
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.False(t, updated.HasMember("user_2"))
	})

	t.Run("removing an absent member changes nothing", func(t *testing.T) {
		updated, err := svc.RemoveMember(ctx, group.ID, "user_2")
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, []string{"user_1"}, updated.Members)
	})

	t.Run("the owner can be removed", func(t *testing.T) {
		updated, err := svc.RemoveMember(ctx, group.ID, "user_1")
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Empty(t, updated.Members)
		assert.Equal(t, "user_1", updated.OwnerID)
	})

	t.Run("unknown group yields nil", func(t *testing.T) {
		updated, err := svc.RemoveMember(ctx, "missing", "user_1")
		require.NoError(t, err)
		assert.Nil(t, updated)
	})
}

func TestGroupService_GetGroupsForUser(t *testing.T) {
	ctx := context.Background()
	svc := newGroupService(t)

	first, err := svc.CreateGroup(ctx, "user_1", "Family")
	require.NoError(t, err)
	second, err := svc.CreateGroup(ctx, "user_2", "Book Club")
	require.NoError(t, err)
	_, err = svc.AddMember(ctx, second.ID, "user_1")
	require.NoError(t, err)
	_, err = svc.CreateGroup(ctx, "user_3", "Others")
	require.NoError(t, err)

	groups, err := svc.GetGroupsForUser(ctx, "user_1")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, first.ID, groups[0].ID)
	assert.Equal(t, second.ID, groups[1].ID)

	ids, err := svc.GroupIDsForUser(ctx, "user_1")
	require.NoError(t, err)
	assert.True(t, ids[first.ID])
	assert.True(t, ids[second.ID])
	assert.Len(t, ids, 2)
}

func TestGroupService_DeleteGroup(t *testing.T) {
	ctx := context.Background()
	svc := newGroupService(t)

	group, err := svc.CreateGroup(ctx, "user_1", "Short Lived")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteGroup(ctx, group.ID))

	groups, err := svc.GetGroupsForUser(ctx, "user_1")
	require.NoError(t, err)
	assert.Empty(t, groups)

	t.Run("deleting again is a no-op", func(t *testing.T) {
		assert.NoError(t, svc.DeleteGroup(ctx, group.ID))
	})
}
