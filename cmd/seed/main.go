package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/campuspress/newsroom/internal/db"
	"github.com/campuspress/newsroom/internal/models"
	"github.com/campuspress/newsroom/pkg/config"
	"github.com/campuspress/newsroom/pkg/logging"
)

// Seeds the admin allowlist. Accounts are created without a password;
// each admin activates their own via the setup endpoint.
func main() {
	admins := flag.String("admins", "admin@school.edu:Admin User,editor@school.edu:Editor User",
		"comma-separated email:name pairs to allowlist")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Seeding admin allowlist")

	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	ctx := context.Background()
	repo := db.NewAdminRepository(db.NewRepository(database.DB))

	seeded := 0
	for _, entry := range strings.Split(*admins, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		email, name, _ := strings.Cut(entry, ":")
		email = strings.TrimSpace(email)
		name = strings.TrimSpace(name)
		if email == "" {
			continue
		}
		if name == "" {
			name = email
		}

		existing, err := repo.GetByEmail(ctx, email)
		if err != nil {
			logger.Fatal("Lookup failed", zap.String("email", email), zap.Error(err))
		}
		if existing != nil {
			logger.Info("Admin already allowlisted", zap.String("email", email))
			continue
		}

		if err := repo.Create(ctx, &models.Admin{Email: email, Name: name}); err != nil {
			logger.Fatal("Failed to create admin", zap.String("email", email), zap.Error(err))
		}
		logger.Info("Admin allowlisted", zap.String("email", email))
		seeded++
	}

	logger.Info("Seeding completed", zap.Int("created", seeded))
}
