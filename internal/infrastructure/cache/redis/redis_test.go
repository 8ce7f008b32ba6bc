package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devilmonastery/jobfinder/internal/domain/entities"
	"github.com/devilmonastery/jobfinder/internal/pkg/idgen"
)

// openTestClient connects to JOBFINDER_TEST_REDIS_ADDR; tests skip when it is unset
func openTestClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("JOBFINDER_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("JOBFINDER_TEST_REDIS_ADDR not set")
	}
	c, err := New(addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSearchCache(t *testing.T) {
	client := openTestClient(t)
	ctx := context.Background()
	cache := NewSearchCache(client, time.Minute)
	cache.prefix = "test:" + idgen.GenerateID() + ":"

	_, ok, err := cache.GetSearch(ctx, "Backend Developer", "in", 1)
	require.NoError(t, err)
	assert.False(t, ok)

	jobs := []*entities.Job{{ID: "a1", Title: "Backend Developer"}}
	require.NoError(t, cache.PutSearch(ctx, "Backend Developer", "in", 1, jobs))

	got, ok, err := cache.GetSearch(ctx, "  backend developer ", "in", 1)
	require.NoError(t, err)
	require.True(t, ok, "normalized query should hit")
	require.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].ID)

	require.NoError(t, cache.PutJob(ctx, jobs[0]))
	job, ok, err := cache.GetJob(ctx, "a1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Backend Developer", job.Title)
}

func TestTokenDenylist(t *testing.T) {
	client := openTestClient(t)
	ctx := context.Background()
	list := NewTokenDenylist(client)
	list.prefix = "test:" + idgen.GenerateID() + ":"

	revoked, err := list.IsRevoked(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, list.Revoke(ctx, "t1", time.Now().Add(time.Minute)))
	require.NoError(t, list.Revoke(ctx, "t2", time.Now().Add(-time.Minute)))

	revoked, err = list.IsRevoked(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = list.IsRevoked(ctx, "t2")
	require.NoError(t, err)
	assert.False(t, revoked, "expired tokens are not stored")
}
