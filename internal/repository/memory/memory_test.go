package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatescout/internal/models"
	"estatescout/internal/repository"
)

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()

	require.NoError(t, s.Create(ctx, models.User{ID: "u1", Email: "a@x.com", Name: "A"}))
	require.ErrorIs(t, s.Create(ctx, models.User{ID: "u2", Email: "a@x.com"}), repository.ErrEmailTaken)
	require.NoError(t, s.Create(ctx, models.User{ID: "u3", Email: "c@x.com", Name: "C"}))
	assert.Equal(t, 2, s.Count())

	u, err := s.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.NotNil(t, u.Posts)

	_, err = s.GetByID(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrUserNotFound)

	many, err := s.GetMany(ctx, []string{"u1", "missing", "u3"})
	require.NoError(t, err)
	assert.Len(t, many, 2)

	require.NoError(t, s.AddPost(ctx, "u1", "p1"))
	require.NoError(t, s.AddPost(ctx, "u1", "p1"))
	require.NoError(t, s.AddPost(ctx, "u1", "p2"))
	u, err = s.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, u.Posts)

	require.NoError(t, s.RemovePost(ctx, "u1", "p1"))
	u, _ = s.GetByID(ctx, "u1")
	assert.Equal(t, []string{"p2"}, u.Posts)

	// Returned values are copies.
	u.Posts[0] = "mutated"
	u, _ = s.GetByID(ctx, "u1")
	assert.Equal(t, []string{"p2"}, u.Posts)

	require.NoError(t, s.Delete(ctx, "u1"))
	require.ErrorIs(t, s.Delete(ctx, "u1"), repository.ErrUserNotFound)
	_, err = s.FindByEmail(ctx, "a@x.com")
	require.ErrorIs(t, err, repository.ErrUserNotFound)
	require.NoError(t, s.Create(ctx, models.User{ID: "u4", Email: "a@x.com"}))
}

func TestPropertyStore(t *testing.T) {
	ctx := context.Background()
	s := NewPropertyStore()

	for _, p := range []models.Property{
		{ID: "p1", Title: "first", OwnerID: "u1"},
		{ID: "p2", Title: "second", OwnerID: "u2"},
		{ID: "p3", Title: "third", OwnerID: "u1"},
	} {
		require.NoError(t, s.Create(ctx, p))
	}

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"p3", "p2", "p1"}, []string{all[0].ID, all[1].ID, all[2].ID})

	owned, err := s.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, "p3", owned[0].ID)

	none, err := s.ListByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	title := "renamed"
	updated, err := s.Update(ctx, "p1", models.PropertyUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "u1", updated.OwnerID)

	_, err = s.Update(ctx, "missing", models.PropertyUpdate{})
	require.ErrorIs(t, err, repository.ErrPropertyNotFound)

	require.NoError(t, s.Delete(ctx, "p2"))
	require.ErrorIs(t, s.Delete(ctx, "p2"), repository.ErrPropertyNotFound)
	_, err = s.GetByID(ctx, "p2")
	require.ErrorIs(t, err, repository.ErrPropertyNotFound)
}
