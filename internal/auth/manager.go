package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/CrowdUp-org/CrowdUp-sub002/internal/models"
	"github.com/CrowdUp-org/CrowdUp-sub002/internal/sessions"
	"github.com/CrowdUp-org/CrowdUp-sub002/internal/tokens"
	"github.com/CrowdUp-org/CrowdUp-sub002/internal/users"
	"github.com/CrowdUp-org/CrowdUp-sub002/pkg/logger"
	"github.com/CrowdUp-org/CrowdUp-sub002/pkg/metrics"
)

const usernameClaim = "username"

// CredentialStore is the persistence the Manager depends on.
type CredentialStore interface {
	FindUserByLoginIdentifier(ctx context.Context, identifier string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	VerifyPassword(plain, hash string) bool
	HashPassword(plain string) (string, error)
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
	PutRevocationRecord(ctx context.Context, rec sessions.Record) error
	IsRevocationRecordLive(ctx context.Context, tokenID string) (bool, error)
	DeleteRevocationRecord(ctx context.Context, tokenID string) error
	RotateRevocationRecord(ctx context.Context, oldTokenID string, next sessions.Record) (bool, error)
	DeleteUserRevocationRecords(ctx context.Context, userID string) error
}

// Session is an issued token pair.
type Session struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	User             models.PublicUser
}

// Manager runs login, refresh, logout and password change.
type Manager struct {
	codec                  *tokens.Codec
	store                  CredentialStore
	denylist               sessions.Denylist
	revokeOnPasswordChange bool
	now                    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

type ManagerOption func(*Manager)

// WithDenylist makes Logout deny the presented access token until it expires.
func WithDenylist(d sessions.Denylist) ManagerOption {
	return func(m *Manager) { m.denylist = d }
}

// WithRevokeOnPasswordChange controls whether ChangePassword revokes every
// refresh token of the user. Enabled by default.
func WithRevokeOnPasswordChange(v bool) ManagerOption {
	return func(m *Manager) { m.revokeOnPasswordChange = v }
}

func NewManager(codec *tokens.Codec, store CredentialStore, opts ...ManagerOption) *Manager {
	m := &Manager{
		codec:                  codec,
		store:                  store,
		revokeOnPasswordChange: true,
		now:                    time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Login checks identifier and password and opens a new session.
func (m *Manager) Login(ctx context.Context, identifier, password string) (*Session, error) {
	u, err := m.store.FindUserByLoginIdentifier(ctx, identifier)
	if err != nil {
		metrics.AuthEvent("login", "error")
		return nil, fmt.Errorf("login: %w", err)
	}
	if u == nil {
		// keep the unknown-user path as slow as a password mismatch
		m.store.VerifyPassword(password, m.dummy())
		metrics.AuthEvent("login", "rejected")
		return nil, ErrInvalidCredentials
	}
	if !m.store.VerifyPassword(password, u.PasswordHash) {
		metrics.AuthEvent("login", "rejected")
		return nil, ErrInvalidCredentials
	}
	s, err := m.open(ctx, u)
	if err != nil {
		metrics.AuthEvent("login", "error")
		return nil, fmt.Errorf("login: %w", err)
	}
	metrics.AuthEvent("login", "success")
	return s, nil
}

func (m *Manager) dummy() string {
	m.dummyOnce.Do(func() {
		h, err := m.store.HashPassword("crowdup-timing-equalizer")
		if err != nil {
			logger.Errorf("failed to prepare dummy password hash: %v", err)
			return
		}
		m.dummyHash = h
	})
	return m.dummyHash
}

// open issues a token pair for u and persists its revocation record.
func (m *Manager) open(ctx context.Context, u *models.User) (*Session, error) {
	access, refresh, err := m.issuePair(u.ID, u.Username)
	if err != nil {
		return nil, err
	}
	if err := m.store.PutRevocationRecord(ctx, recordFor(refresh)); err != nil {
		return nil, err
	}
	return newSession(access, refresh, u.Public()), nil
}

func (m *Manager) issuePair(userID, username string) (*tokens.Issued, *tokens.Issued, error) {
	extra := map[string]any{usernameClaim: username}
	access, err := m.codec.Issue(userID, tokens.Access, extra)
	if err != nil {
		return nil, nil, err
	}
	refresh, err := m.codec.Issue(userID, tokens.Refresh, extra)
	if err != nil {
		return nil, nil, err
	}
	return access, refresh, nil
}

func recordFor(refresh *tokens.Issued) sessions.Record {
	return sessions.Record{
		TokenID:   refresh.Claims.TokenID,
		UserID:    refresh.Claims.Subject,
		CreatedAt: refresh.Claims.IssuedAt,
		ExpiresAt: refresh.Claims.ExpiresAt,
	}
}

func newSession(access, refresh *tokens.Issued, u models.PublicUser) *Session {
	return &Session{
		AccessToken:      access.Token,
		RefreshToken:     refresh.Token,
		AccessExpiresAt:  access.Claims.ExpiresAt,
		RefreshExpiresAt: refresh.Claims.ExpiresAt,
		User:             u,
	}
}

// Refresh exchanges a live refresh token for a new pair and retires the old one.
// The returned Session.User carries only the id and username.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := m.codec.Verify(refreshToken, tokens.Refresh)
	if err != nil {
		metrics.AuthEvent("refresh", "rejected")
		return nil, ErrInvalidToken
	}
	live, err := m.store.IsRevocationRecordLive(ctx, claims.TokenID)
	if err != nil {
		metrics.AuthEvent("refresh", "error")
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if !live {
		logger.Debugf("refresh rejected: record %s is not live (user=%s)", claims.TokenID, claims.Subject)
		metrics.AuthEvent("refresh", "rejected")
		return nil, ErrInvalidToken
	}

	username := claims.StringClaim(usernameClaim)
	access, refresh, err := m.issuePair(claims.Subject, username)
	if err != nil {
		metrics.AuthEvent("refresh", "error")
		return nil, fmt.Errorf("refresh: %w", err)
	}
	ok, err := m.store.RotateRevocationRecord(ctx, claims.TokenID, recordFor(refresh))
	if err != nil {
		metrics.AuthEvent("refresh", "error")
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if !ok {
		// a concurrent refresh consumed the record first
		metrics.AuthEvent("refresh", "rejected")
		return nil, ErrInvalidToken
	}
	metrics.AuthEvent("refresh", "success")
	return newSession(access, refresh, models.PublicUser{ID: claims.Subject, Username: username}), nil
}

// Logout revokes whatever it can verify. Failures are logged, never returned.
func (m *Manager) Logout(ctx context.Context, refreshToken, accessToken string) {
	if refreshToken != "" {
		if claims, err := m.codec.Verify(refreshToken, tokens.Refresh); err == nil {
			if err := m.store.DeleteRevocationRecord(ctx, claims.TokenID); err != nil {
				logger.Errorf("logout: failed to delete revocation record %s: %v", claims.TokenID, err)
			}
		}
	}
	if m.denylist != nil && accessToken != "" {
		if claims, err := m.codec.Verify(accessToken, tokens.Access); err == nil {
			ttl := claims.ExpiresAt.Sub(m.now())
			if err := m.denylist.Revoke(ctx, accessToken, ttl); err != nil {
				logger.Errorf("logout: failed to deny access token for %s: %v", claims.Subject, err)
			}
		}
	}
	metrics.AuthEvent("logout", "success")
}

// ChangePassword replaces the password of userID after re-checking current.
// When revocation on password change is enabled every refresh token of the
// user is revoked and a new session is returned; otherwise the session is nil.
func (m *Manager) ChangePassword(ctx context.Context, userID, current, next string) (*Session, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if err := users.ValidatePassword(next); err != nil {
		metrics.AuthEvent("change_password", "rejected")
		return nil, ErrWeakPassword
	}
	u, err := m.store.GetUserByID(ctx, userID)
	if err != nil {
		metrics.AuthEvent("change_password", "error")
		return nil, fmt.Errorf("change password: %w", err)
	}
	if u == nil {
		metrics.AuthEvent("change_password", "rejected")
		return nil, ErrNotFound
	}
	if !m.store.VerifyPassword(current, u.PasswordHash) {
		metrics.AuthEvent("change_password", "rejected")
		return nil, ErrInvalidCredentials
	}
	hash, err := m.store.HashPassword(next)
	if err != nil {
		metrics.AuthEvent("change_password", "error")
		return nil, fmt.Errorf("change password: %w", err)
	}
	// revoke before the hash changes so a failure leaves the old password in place
	if m.revokeOnPasswordChange {
		if err := m.store.DeleteUserRevocationRecords(ctx, userID); err != nil {
			metrics.AuthEvent("change_password", "error")
			return nil, fmt.Errorf("change password: revoke sessions: %w", err)
		}
	}
	if err := m.store.UpdatePasswordHash(ctx, userID, hash); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			metrics.AuthEvent("change_password", "rejected")
			return nil, ErrNotFound
		}
		metrics.AuthEvent("change_password", "error")
		return nil, fmt.Errorf("change password: %w", err)
	}
	metrics.AuthEvent("change_password", "success")

	if !m.revokeOnPasswordChange {
		return nil, nil
	}
	u.PasswordHash = hash
	s, err := m.open(ctx, u)
	if err != nil {
		// the password is already changed; the caller signs in again
		logger.Errorf("change password: open session for %s: %v", userID, err)
		return nil, nil
	}
	return s, nil
}
