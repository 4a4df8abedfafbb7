package auth

import (
	"context"
	"net/http"

	"github.com/CrowdUp-org/CrowdUp-sub002/internal/sessions"
	"github.com/CrowdUp-org/CrowdUp-sub002/internal/tokens"
	"github.com/CrowdUp-org/CrowdUp-sub002/pkg/logger"
)

// AccessCookieName and RefreshCookieName are the cookies carrying the token pair.
const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"
)

// Authenticator resolves the principal of a request from its access cookie.
type Authenticator struct {
	codec    *tokens.Codec
	denylist sessions.Denylist
}

// NewAuthenticator builds an Authenticator. denylist may be nil.
func NewAuthenticator(codec *tokens.Codec, denylist sessions.Denylist) *Authenticator {
	return &Authenticator{codec: codec, denylist: denylist}
}

// Authenticate returns the principal for the access_token cookie, or nil when
// the request is anonymous. It never reads the refresh cookie and never fails.
func (a *Authenticator) Authenticate(ctx context.Context, cookies []*http.Cookie) *Principal {
	raw := ""
	for _, c := range cookies {
		if c.Name == AccessCookieName {
			raw = c.Value
			break
		}
	}
	if raw == "" {
		return nil
	}
	claims, err := a.codec.Verify(raw, tokens.Access)
	if err != nil {
		return nil
	}
	if a.denylist != nil {
		revoked, err := a.denylist.IsRevoked(ctx, raw)
		if err != nil {
			logger.Warnf("access denylist lookup failed, treating request as anonymous: %v", err)
			return nil
		}
		if revoked {
			return nil
		}
	}
	return &Principal{
		UserID:    claims.Subject,
		Username:  claims.StringClaim(usernameClaim),
		ExpiresAt: claims.ExpiresAt,
	}
}
