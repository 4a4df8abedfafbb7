package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CrowdUp-org/CrowdUp-sub002/handlers"
	"github.com/CrowdUp-org/CrowdUp-sub002/internal/auth"
	"github.com/CrowdUp-org/CrowdUp-sub002/internal/config"
	"github.com/CrowdUp-org/CrowdUp-sub002/internal/credentials"
	"github.com/CrowdUp-org/CrowdUp-sub002/internal/csrf"
	"github.com/CrowdUp-org/CrowdUp-sub002/internal/database"
	"github.com/CrowdUp-org/CrowdUp-sub002/internal/oidc"
	posthandler "github.com/CrowdUp-org/CrowdUp-sub002/internal/posts/handler"
	postrepo "github.com/CrowdUp-org/CrowdUp-sub002/internal/posts/repository"
	postservice "github.com/CrowdUp-org/CrowdUp-sub002/internal/posts/service"
	"github.com/CrowdUp-org/CrowdUp-sub002/internal/sessions"
	"github.com/CrowdUp-org/CrowdUp-sub002/internal/tokens"
	"github.com/CrowdUp-org/CrowdUp-sub002/internal/users"
	"github.com/CrowdUp-org/CrowdUp-sub002/pkg/logger"
	"github.com/CrowdUp-org/CrowdUp-sub002/pkg/metrics"
	"github.com/CrowdUp-org/CrowdUp-sub002/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.Server.Production() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger.UseConsole()
	}
	logger.Infof("config loaded: env=%s mongo=%v redis=%v oauth=%v", cfg.Server.Environment, cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.OAuth.ClientID != "")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := map[string]handlers.ReadinessCheck{}
	if cfg.MongoDB.URI == "" {
		logger.Fatalf("MONGODB_URI is required: user accounts are stored in MongoDB")
	}
	mongoClient, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5)
	if err != nil {
		logger.Fatalf("could not connect to MongoDB: %v", err)
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	db := mongoClient.Database(cfg.MongoDB.Database)

	ur := users.NewMongoRepository(db.Collection("users"))
	if err := ur.EnsureIndexes(ctx); err != nil {
		logger.Warnf("failed to ensure user indexes: %v", err)
	}
	pr := postrepo.NewMongoRepo(db.Collection("posts"))
	if err := pr.EnsureIndexes(ctx); err != nil {
		logger.Warnf("failed to ensure post indexes: %v", err)
	}
	checks["mongodb"] = func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }

	var (
		records  sessions.Repository
		denylist sessions.Denylist
	)
	// Redis is preferred for revocation records when configured
	if cfg.Redis.Host != "" {
		rc, err := database.ConnectRedis(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatalf("could not connect to Redis: %v", err)
		}
		defer func() { _ = rc.Close() }()
		records = sessions.NewRedisRepository(rc, "refresh:")
		denylist = sessions.NewRedisDenylist(rc, "")
		checks["redis"] = func(ctx context.Context) error { return rc.Ping(ctx).Err() }
		logger.Infof("using Redis for revocation records: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
	} else {
		sr := sessions.NewMongoRepository(db.Collection("refresh_tokens"))
		if err := sr.EnsureIndexes(ctx); err != nil {
			logger.Warnf("failed to ensure refresh token indexes: %v", err)
		}
		records = sr
		logger.Infof("using MongoDB for revocation records; access-token denylist disabled")
	}

	codec := tokens.NewCodec(cfg.Auth.SigningSecret)
	if codec.UsingFallbackSecret() {
		logger.Warnf("tokens are signed with the development key (env=%s)", cfg.Server.Environment)
	}
	store := credentials.NewStore(ur, records)
	mgr := auth.NewManager(codec, store,
		auth.WithDenylist(denylist),
		auth.WithRevokeOnPasswordChange(cfg.Auth.RevokeSessionsOnPasswordChange),
	)
	authn := auth.NewAuthenticator(codec, denylist)

	var provider *oidc.Provider
	if cfg.OAuth.ClientID != "" {
		provider, err = oidc.NewProvider(ctx, oidc.Config{
			ClientID:     cfg.OAuth.ClientID,
			IssuerURL:    cfg.OAuth.IssuerURL,
			AuthorizeURL: cfg.OAuth.AuthorizeURL,
			RedirectURL:  cfg.OAuth.RedirectURL,
			Scopes:       cfg.OAuth.Scopes,
		})
		if err != nil {
			logger.Warnf("failed to initialize OAuth provider: %v", err)
			provider = nil
		}
	}

	guard := csrf.NewGuard(csrf.Policy{AllowedOrigins: cfg.Origins(), ExemptPrefixes: cfg.CORS.ExemptPrefixes})
	logger.Debugf("allowed origins: %v", cfg.Origins())

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.CORS(guard), middleware.OriginGuard(guard))

	handlers.RegisterHealth(r, startTime, checks)
	handlers.RegisterSwagger(r)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group(cfg.Server.APIPrefix)
	api.Use(middleware.Authenticate(authn))
	cookies := handlers.CookiePolicy{Secure: cfg.Server.Production(), RefreshPath: cfg.AuthPrefix()}
	handlers.NewAuthHandler(mgr, store, provider, cookies).Register(api)
	posthandler.RegisterPostRoutes(api, postservice.New(pr))

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("starting crowdup api on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}
