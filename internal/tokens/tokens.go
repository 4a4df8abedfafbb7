package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/CrowdUp-org/CrowdUp-sub002/pkg/logger"
)

// TokenType distinguishes access from refresh credentials. A token of one type never verifies as the other.
type TokenType string

const (
	Access  TokenType = "access"
	Refresh TokenType = "refresh"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// DevFallbackSecret signs tokens when no secret is configured. Development only.
const DevFallbackSecret = "crowdup-dev-signing-secret-do-not-use-in-production"

// ErrInvalidToken is the single failure returned by Verify: bad signature, expiry,
// wrong type and malformed input are deliberately indistinguishable.
var ErrInvalidToken = errors.New("invalid token")

const claimType = "typ"

var reservedClaims = map[string]bool{
	"sub": true, "typ": true, "iat": true, "exp": true,
	"jti": true, "nbf": true, "iss": true, "aud": true,
}

// Claims is the decoded content of a verified token.
type Claims struct {
	Subject   string
	Type      TokenType
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Extra     map[string]any
}

// Issued is a freshly signed token together with the claims it carries.
type Issued struct {
	Token  string
	Claims Claims
}

// Codec signs and verifies HS256 credential tokens with one process-wide secret.
type Codec struct {
	secret   []byte
	fallback bool
	now      func() time.Time
}

type Option func(*Codec)

// WithClock overrides the time source used for iat/exp and for verification.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// NewCodec builds a codec around secret. An empty secret selects DevFallbackSecret and logs a warning.
func NewCodec(secret string, opts ...Option) *Codec {
	c := &Codec{secret: []byte(secret), now: time.Now}
	if secret == "" {
		c.secret = []byte(DevFallbackSecret)
		c.fallback = true
		logger.Warn("SIGNING_SECRET is not set; using the development fallback key (never do this in production)")
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// UsingFallbackSecret reports whether the codec signs with DevFallbackSecret.
func (c *Codec) UsingFallbackSecret() bool { return c.fallback }

func ttlFor(typ TokenType) (time.Duration, bool) {
	switch typ {
	case Access:
		return AccessTokenTTL, true
	case Refresh:
		return RefreshTokenTTL, true
	}
	return 0, false
}

// Issue signs a token of the given type for subject. Refresh tokens always get a fresh jti.
func (c *Codec) Issue(subject string, typ TokenType, extra map[string]any) (*Issued, error) {
	ttl, ok := ttlFor(typ)
	if !ok {
		return nil, fmt.Errorf("unknown token type %q", typ)
	}
	if subject == "" {
		return nil, errors.New("token subject is required")
	}
	now := c.now().UTC().Truncate(time.Second)
	exp := now.Add(ttl)

	claims := jwt.MapClaims{}
	kept := map[string]any{}
	for k, v := range extra {
		if reservedClaims[k] {
			continue
		}
		claims[k] = v
		kept[k] = v
	}
	claims["sub"] = subject
	claims[claimType] = string(typ)
	claims["iat"] = now.Unix()
	claims["exp"] = exp.Unix()

	var jti string
	if typ == Refresh {
		jti = uuid.NewString()
		claims["jti"] = jti
	}

	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := jt.SignedString(c.secret)
	if err != nil {
		return nil, fmt.Errorf("sign %s token: %w", typ, err)
	}
	return &Issued{
		Token: signed,
		Claims: Claims{
			Subject:   subject,
			Type:      typ,
			TokenID:   jti,
			IssuedAt:  now,
			ExpiresAt: exp,
			Extra:     kept,
		},
	}, nil
}

// Verify checks signature, expiry and type. Any failure yields ErrInvalidToken.
func (c *Codec) Verify(token string, expected TokenType) (*Claims, error) {
	claims, err := c.verify(token, expected)
	if err != nil {
		logger.Debugf("token rejected (expected=%s): %v", expected, err)
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (c *Codec) verify(token string, expected TokenType) (*Claims, error) {
	if _, ok := ttlFor(expected); !ok {
		return nil, fmt.Errorf("unknown expected type %q", expected)
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	mc := jwt.MapClaims{}
	parsed, err := parser.ParseWithClaims(token, mc, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("token not valid")
	}

	typ, _ := mc[claimType].(string)
	if TokenType(typ) != expected {
		return nil, fmt.Errorf("token type %q, want %q", typ, expected)
	}
	sub, err := mc.GetSubject()
	if err != nil || sub == "" {
		return nil, errors.New("missing subject")
	}
	jti, _ := mc["jti"].(string)
	if expected == Refresh && jti == "" {
		return nil, errors.New("refresh token without jti")
	}
	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, errors.New("missing exp")
	}
	out := &Claims{
		Subject:   sub,
		Type:      expected,
		TokenID:   jti,
		ExpiresAt: exp.Time.UTC(),
		Extra:     map[string]any{},
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time.UTC()
	}
	for k, v := range mc {
		if !reservedClaims[k] {
			out.Extra[k] = v
		}
	}
	return out, nil
}

// StringClaim returns an extra claim as a string, or "" when absent or not a string.
func (c *Claims) StringClaim(name string) string {
	s, _ := c.Extra[name].(string)
	return s
}
