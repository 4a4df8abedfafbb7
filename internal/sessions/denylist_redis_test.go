package sessions

import (
	"context"
	"strings"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisDenylist_RevokeIsRevoked(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	dl := NewRedisDenylist(client, "")

	ctx := context.Background()
	token := "header.payload.signature"
	require.NoError(t, dl.Revoke(ctx, token, 2*time.Second))

	ok, err := dl.IsRevoked(ctx, token)
	require.NoError(t, err)
	require.True(t, ok)

	// the raw token never appears in a key
	for _, k := range m.Keys() {
		require.False(t, strings.Contains(k, token), k)
	}

	// advance past TTL
	m.FastForward(3 * time.Second)

	ok, err = dl.IsRevoked(ctx, token)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisDenylist_ExpiredTokenNotStored(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	dl := NewRedisDenylist(redis.NewClient(&redis.Options{Addr: m.Addr()}), "")
	require.NoError(t, dl.Revoke(context.Background(), "t", 0))
	require.Empty(t, m.Keys())
}

func TestRedisDenylist_ErrorWhenRedisDown(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	dl := NewRedisDenylist(redis.NewClient(&redis.Options{Addr: m.Addr(), MaxRetries: -1}), "")
	m.Close()

	_, err = dl.IsRevoked(context.Background(), "t")
	require.Error(t, err)
}
