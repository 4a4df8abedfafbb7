package credentials

import (
	"context"
	"errors"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/CrowdUp-org/CrowdUp-sub002/internal/models"
	"github.com/CrowdUp-org/CrowdUp-sub002/internal/sessions"
	"github.com/CrowdUp-org/CrowdUp-sub002/internal/users"
)

type memUsers struct {
	byID map[string]*models.User
	err  error
}

func (m *memUsers) FindByLoginIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.byID {
		if u.Username == identifier || u.Email == identifier {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	return m.byID[id], m.err
}

func (m *memUsers) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	u, ok := m.byID[id]
	if !ok {
		return users.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memUsers) Create(ctx context.Context, u *models.User) error {
	m.byID[u.ID] = u
	return nil
}

func newStore(t *testing.T, u *memUsers) *Store {
	t.Helper()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	return NewStore(u, sessions.NewRedisRepository(client, ""))
}

func TestStore_UserLookupAndPasswords(t *testing.T) {
	hash, err := users.HashPassword("secretpass")
	require.NoError(t, err)
	u := &models.User{ID: "u1", Username: "alice", Email: "alice@example.com", PasswordHash: hash}
	s := newStore(t, &memUsers{byID: map[string]*models.User{"u1": u}})
	ctx := context.Background()

	for _, ident := range []string{"alice", "alice@example.com"} {
		got, err := s.FindUserByLoginIdentifier(ctx, ident)
		require.NoError(t, err)
		require.NotNil(t, got, ident)
		require.Equal(t, "u1", got.ID)
	}
	got, err := s.FindUserByLoginIdentifier(ctx, "mallory")
	require.NoError(t, err)
	require.Nil(t, got)

	require.True(t, s.VerifyPassword("secretpass", u.PasswordHash))
	require.False(t, s.VerifyPassword("nope", u.PasswordHash))

	newHash, err := s.HashPassword("another-pass")
	require.NoError(t, err)
	require.NoError(t, s.UpdatePasswordHash(ctx, "u1", newHash))
	require.True(t, s.VerifyPassword("another-pass", u.PasswordHash))
	require.ErrorIs(t, s.UpdatePasswordHash(ctx, "missing", newHash), users.ErrNotFound)
}

func TestStore_RepositoryErrorsAreWrapped(t *testing.T) {
	boom := errors.New("connection refused")
	s := newStore(t, &memUsers{byID: map[string]*models.User{}, err: boom})

	_, err := s.FindUserByLoginIdentifier(context.Background(), "x")
	require.ErrorIs(t, err, boom)
	_, err = s.GetUserByID(context.Background(), "x")
	require.ErrorIs(t, err, boom)
}

func TestStore_RevocationRecords(t *testing.T) {
	s := newStore(t, &memUsers{byID: map[string]*models.User{}})
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	require.NoError(t, s.PutRevocationRecord(ctx, sessions.Record{TokenID: "a", UserID: "u1", ExpiresAt: exp}))
	live, err := s.IsRevocationRecordLive(ctx, "a")
	require.NoError(t, err)
	require.True(t, live)

	ok, err := s.RotateRevocationRecord(ctx, "a", sessions.Record{TokenID: "b", UserID: "u1", ExpiresAt: exp})
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = s.RotateRevocationRecord(ctx, "a", sessions.Record{TokenID: "c", UserID: "u1", ExpiresAt: exp})
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.PutRevocationRecord(ctx, sessions.Record{TokenID: "d", UserID: "u1", ExpiresAt: exp}))
	require.NoError(t, s.DeleteRevocationRecord(ctx, "d"))
	require.NoError(t, s.DeleteRevocationRecord(ctx, "d"))
	live, _ = s.IsRevocationRecordLive(ctx, "d")
	require.False(t, live)

	require.NoError(t, s.DeleteUserRevocationRecords(ctx, "u1"))
	live, _ = s.IsRevocationRecordLive(ctx, "b")
	require.False(t, live)
}
