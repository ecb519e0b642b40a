package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return client, mr
}

func TestRedis_CreateIsConditional(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()
	repo := NewRedis(client)

	ok, err := repo.Create(ctx, "lock:a", []byte("v1"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Create(ctx, "lock:a", []byte("v2"))
	require.NoError(t, err)
	assert.False(t, ok)

	v, err := repo.Get(ctx, "lock:a")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(v))
}

func TestRedis_GetMissingReturnsNil(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	repo := NewRedis(client)
	v, err := repo.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestRedis_PutAndDelete(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()
	repo := NewRedis(client)

	require.NoError(t, repo.Put(ctx, "k", []byte("a")))
	require.NoError(t, repo.Put(ctx, "k", []byte("b")))

	v, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "b", string(v))

	existed, err := repo.Delete(ctx, "k")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = repo.Delete(ctx, "k")
	require.NoError(t, err)
	assert.False(t, existed)
}
