package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingSigningSecret is returned by LoadConfig when a production deployment has no SIGNING_SECRET.
var ErrMissingSigningSecret = errors.New("SIGNING_SECRET is required in production")

// Config holds application configuration
type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	Redis   RedisConfig
	Auth    AuthConfig
	CORS    CORSConfig
	OAuth   OAuthConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	APIPrefix    string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Production reports whether cookies must be marked Secure and a real secret is mandatory.
func (s ServerConfig) Production() bool {
	return strings.EqualFold(s.Environment, "production")
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	// SigningSecret is the HS256 key shared by access and refresh tokens.
	// Empty means the token codec falls back to its development key.
	SigningSecret                  string
	RevokeSessionsOnPasswordChange bool
}

type CORSConfig struct {
	PublicAppURL   string
	AllowedOrigins []string
	ExemptPrefixes []string
}

type OAuthConfig struct {
	ClientID     string
	IssuerURL    string
	AuthorizeURL string
	RedirectURL  string
	Scopes       []string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "5001")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("API_PREFIX", "/api")
	viper.SetDefault("MONGODB_DATABASE", "crowdup")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("PUBLIC_APP_URL", "http://localhost:3000")
	viper.SetDefault("CSRF_EXEMPT_PREFIXES", "/api/auth/callback/,/api/webhooks/")
	viper.SetDefault("OAUTH_SCOPES", "openid,email,profile")
	viper.SetDefault("AUTH_REVOKE_SESSIONS_ON_PASSWORD_CHANGE", true)

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			APIPrefix:    "/" + strings.Trim(viper.GetString("API_PREFIX"), "/"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Auth: AuthConfig{
			SigningSecret:                  viper.GetString("SIGNING_SECRET"),
			RevokeSessionsOnPasswordChange: viper.GetBool("AUTH_REVOKE_SESSIONS_ON_PASSWORD_CHANGE"),
		},
		CORS: CORSConfig{
			PublicAppURL:   viper.GetString("PUBLIC_APP_URL"),
			AllowedOrigins: SplitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
			ExemptPrefixes: SplitList(viper.GetString("CSRF_EXEMPT_PREFIXES")),
		},
		OAuth: OAuthConfig{
			ClientID:     viper.GetString("OAUTH_CLIENT_ID"),
			IssuerURL:    viper.GetString("OAUTH_ISSUER_URL"),
			AuthorizeURL: viper.GetString("OAUTH_AUTHORIZE_URL"),
			RedirectURL:  viper.GetString("OAUTH_REDIRECT_URL"),
			Scopes:       SplitList(viper.GetString("OAUTH_SCOPES")),
		},
	}

	if cfg.Auth.SigningSecret == "" && cfg.Server.Production() {
		return nil, ErrMissingSigningSecret
	}

	return cfg, nil
}

// Origins returns the origin allow-list: PUBLIC_APP_URL followed by CORS_ALLOWED_ORIGINS, de-duplicated.
func (c *Config) Origins() []string {
	seen := map[string]bool{}
	var out []string
	for _, o := range append([]string{c.CORS.PublicAppURL}, c.CORS.AllowedOrigins...) {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		out = append(out, o)
	}
	return out
}

// AuthPrefix is the path prefix of the auth routes; the refresh cookie is scoped to it.
func (c *Config) AuthPrefix() string {
	return strings.TrimRight(c.Server.APIPrefix, "/") + "/auth"
}

// SplitList parses a comma-separated env value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
