// Package credentials exposes user lookup, password hashing and refresh-token
// revocation records behind one typed store.
package credentials

import (
	"context"
	"fmt"

	"github.com/CrowdUp-org/CrowdUp-sub002/internal/models"
	"github.com/CrowdUp-org/CrowdUp-sub002/internal/sessions"
	"github.com/CrowdUp-org/CrowdUp-sub002/internal/users"
)

// Store composes the user and revocation-record repositories.
type Store struct {
	users    users.Repository
	sessions sessions.Repository
}

func NewStore(u users.Repository, s sessions.Repository) *Store {
	return &Store{users: u, sessions: s}
}

// FindUserByLoginIdentifier returns nil, nil when no user matches.
func (s *Store) FindUserByLoginIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	u, err := s.users.FindByLoginIdentifier(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// GetUserByID returns nil, nil when the user does not exist.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

func (s *Store) VerifyPassword(plain, hash string) bool {
	return users.CheckPassword(plain, hash)
}

func (s *Store) HashPassword(plain string) (string, error) {
	return users.HashPassword(plain)
}

// UpdatePasswordHash returns users.ErrNotFound when the user row is absent.
func (s *Store) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	return s.users.UpdatePasswordHash(ctx, userID, hash)
}

func (s *Store) PutRevocationRecord(ctx context.Context, rec sessions.Record) error {
	if err := s.sessions.Put(ctx, &rec); err != nil {
		return fmt.Errorf("put revocation record: %w", err)
	}
	return nil
}

func (s *Store) IsRevocationRecordLive(ctx context.Context, tokenID string) (bool, error) {
	live, err := s.sessions.IsLive(ctx, tokenID)
	if err != nil {
		return false, fmt.Errorf("lookup revocation record: %w", err)
	}
	return live, nil
}

func (s *Store) DeleteRevocationRecord(ctx context.Context, tokenID string) error {
	return s.sessions.Delete(ctx, tokenID)
}

// RotateRevocationRecord replaces oldTokenID with next. It reports false when
// oldTokenID was already consumed or expired.
func (s *Store) RotateRevocationRecord(ctx context.Context, oldTokenID string, next sessions.Record) (bool, error) {
	ok, err := s.sessions.Rotate(ctx, oldTokenID, &next)
	if err != nil {
		return false, fmt.Errorf("rotate revocation record: %w", err)
	}
	return ok, nil
}

func (s *Store) DeleteUserRevocationRecords(ctx context.Context, userID string) error {
	if err := s.sessions.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("delete revocation records for %s: %w", userID, err)
	}
	return nil
}
