// Command useradd creates a local user account with a bcrypt password hash.
//
//	useradd -username alice -email alice@example.com -name Alice
//
// The password is read from USERADD_PASSWORD so it stays out of shell history.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/CrowdUp-org/CrowdUp-sub002/internal/config"
	"github.com/CrowdUp-org/CrowdUp-sub002/internal/database"
	"github.com/CrowdUp-org/CrowdUp-sub002/internal/users"
	"github.com/CrowdUp-org/CrowdUp-sub002/pkg/logger"
)

func main() {
	username := flag.String("username", "", "login name")
	email := flag.String("email", "", "email address")
	name := flag.String("name", "", "display name")
	flag.Parse()

	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.UseConsole()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.MongoDB.URI == "" {
		logger.Fatalf("MONGODB_URI is required")
	}

	ctx := context.Background()
	client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	if err != nil {
		logger.Fatalf("cannot connect to MongoDB: %v", err)
	}
	defer func() { _ = client.Disconnect(ctx) }()

	repo := users.NewMongoRepository(client.Database(cfg.MongoDB.Database).Collection("users"))
	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Warnf("failed to ensure user indexes: %v", err)
	}

	u, err := users.NewService(repo).Register(ctx, users.NewUser{
		Username: *username,
		Email:    *email,
		Name:     *name,
		Password: os.Getenv("USERADD_PASSWORD"),
	})
	if err != nil {
		logger.Errorf("create user: %v", err)
		_ = client.Disconnect(ctx)
		os.Exit(1)
	}
	logger.Infof("created user %s (%s)", u.Username, u.ID)
}
