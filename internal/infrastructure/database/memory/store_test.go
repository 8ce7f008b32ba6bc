package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devilmonastery/jobfinder/internal/domain/entities"
	"github.com/devilmonastery/jobfinder/internal/domain/repositories"
)

func TestUsers(t *testing.T) {
	ctx := context.Background()
	repos := New()

	u := &entities.User{Email: "a@example.com", IsActive: true, Role: entities.RoleUser}
	require.NoError(t, repos.Users.Create(ctx, u))
	assert.NotEmpty(t, u.ID)

	err := repos.Users.Create(ctx, &entities.User{Email: "A@example.com", IsActive: true})
	assert.ErrorIs(t, err, repositories.ErrDuplicateEmail)

	got, err := repos.Users.GetByEmail(ctx, " A@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got.IsActive = false
	require.NoError(t, repos.Users.Update(ctx, got))
	_, err = repos.Users.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, repositories.ErrUserInactive)

	_, err = repos.Users.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)

	inactive := false
	list, total, err := repos.Users.List(ctx, repositories.ListUsersOptions{IsActive: &inactive})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)
}

func TestProfiles(t *testing.T) {
	ctx := context.Background()
	repos := New()

	exists, err := repos.Profiles.Exists(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.ErrorIs(t, repos.Profiles.SetAvatar(ctx, "u1", "x"), repositories.ErrProfileNotFound)

	require.NoError(t, repos.Profiles.Upsert(ctx, &entities.Profile{UserID: "u1", Name: "Asha", Skills: []string{"Go"}}))
	require.NoError(t, repos.Profiles.SetAvatar(ctx, "u1", "https://cdn/x.png"))
	require.NoError(t, repos.Profiles.Upsert(ctx, &entities.Profile{UserID: "u1", Name: "Asha R"}))

	p, err := repos.Profiles.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Asha R", p.Name)
	assert.True(t, p.HasAvatar(), "upsert keeps the avatar")
}

func TestBookmarks(t *testing.T) {
	ctx := context.Background()
	repos := New()

	for _, id := range []string{"j1", "j2", "j3", "j1"} {
		require.NoError(t, repos.Bookmarks.Create(ctx, &entities.Bookmark{UserID: "u1", JobID: id}))
	}
	n, err := repos.Bookmarks.CountByUser(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	list, total, err := repos.Bookmarks.ListByUser(ctx, "u1", repositories.ListBookmarksOptions{Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, list, 2)
	assert.Equal(t, "j3", list[0].JobID)

	require.NoError(t, repos.Bookmarks.Delete(ctx, "u1", "j2"))
	assert.ErrorIs(t, repos.Bookmarks.Delete(ctx, "u1", "j2"), repositories.ErrBookmarkNotFound)
}
