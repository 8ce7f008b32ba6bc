package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devilmonastery/jobfinder/internal/domain/entities"
	"github.com/devilmonastery/jobfinder/internal/domain/repositories"
	"github.com/devilmonastery/jobfinder/migrations"
)

// openTestDB connects to JOBFINDER_TEST_POSTGRES_DSN and migrates it.
// Tests are skipped when it is unset.
func openTestDB(t *testing.T) *Connection {
	t.Helper()
	dsn := os.Getenv("JOBFINDER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("JOBFINDER_TEST_POSTGRES_DSN not set")
	}

	conn, err := NewConnection(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, conn.RunMigrations(migrations.FS))
	_, err = conn.DB.Exec(`TRUNCATE bookmarks, profiles, users CASCADE`)
	require.NoError(t, err)
	return conn
}

func createUser(t *testing.T, repo repositories.UserRepository, email string) *entities.User {
	t.Helper()
	hash, err := entities.HashPassword("secret1")
	require.NoError(t, err)
	u := &entities.User{Email: email, PasswordHash: &hash, IsActive: true}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestUserRepository(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(conn.DB)

	u := createUser(t, repo, "Asha@Example.com")
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, entities.RoleUser, u.Role)

	got, err := repo.GetByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.True(t, got.VerifyPassword("secret1"))

	err = repo.Create(ctx, &entities.User{Email: "ASHA@example.com", IsActive: true})
	assert.ErrorIs(t, err, repositories.ErrDuplicateEmail)

	exists, err := repo.ExistsByEmail(ctx, "asha@EXAMPLE.com")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.UpdateLastLogin(ctx, u.ID, time.Now()))
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LastLogin)

	got.IsActive = false
	require.NoError(t, repo.Update(ctx, got))
	_, err = repo.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, repositories.ErrUserInactive)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
}

func TestProfileRepository(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	u := createUser(t, NewUserRepository(conn.DB), "ravi@example.com")
	repo := NewProfileRepository(conn.DB)

	exists, err := repo.Exists(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.Get(ctx, u.ID)
	assert.ErrorIs(t, err, repositories.ErrProfileNotFound)
	assert.ErrorIs(t, repo.SetAvatar(ctx, u.ID, "https://cdn/x.jpg"), repositories.ErrProfileNotFound)

	p := &entities.Profile{
		UserID: u.ID, Name: "Ravi", City: "Pune", Education: "Bachelors",
		PreferredRole: "Backend Developer", Experience: "1-2", Skills: []string{"Go", "SQL"},
	}
	require.NoError(t, repo.Upsert(ctx, p))
	created := p.CreatedAt

	exists, err = repo.Exists(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.SetAvatar(ctx, u.ID, "https://cdn/x.jpg"))

	p.City = "Mumbai"
	require.NoError(t, repo.Upsert(ctx, p))
	assert.True(t, p.CreatedAt.Equal(created), "created_at survives replacement")
	require.NotNil(t, p.AvatarURL, "avatar survives replacement")

	got, err := repo.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", got.City)
	assert.Equal(t, []string{"Go", "SQL"}, got.Skills)
	assert.Equal(t, "https://cdn/x.jpg", *got.AvatarURL)
}

func TestBookmarkRepository(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	u := createUser(t, NewUserRepository(conn.DB), "meera@example.com")
	repo := NewBookmarkRepository(conn.DB)

	first := &entities.Bookmark{UserID: u.ID, JobID: "j1", Title: "Go Dev", BookmarkedAt: time.Now().Add(-time.Hour)}
	second := &entities.Bookmark{UserID: u.ID, JobID: "j2", Title: "SRE"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, &entities.Bookmark{UserID: u.ID, JobID: "j1", Title: "dup"}))

	count, err := repo.CountByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	list, total, err := repo.ListByUser(ctx, u.ID, repositories.ListBookmarksOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, list, 2)
	assert.Equal(t, "j2", list[0].JobID, "newest first")
	assert.Equal(t, "Go Dev", list[1].Title, "duplicate create keeps the first bookmark")

	require.NoError(t, repo.Delete(ctx, u.ID, "j1"))
	err = repo.Delete(ctx, u.ID, "j1")
	assert.True(t, errors.Is(err, repositories.ErrBookmarkNotFound))

	exists, err := repo.Exists(ctx, u.ID, "j2")
	require.NoError(t, err)
	assert.True(t, exists)
}
